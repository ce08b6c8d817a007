package engine

import (
	"testing"
	"time"

	"github.com/verte-zerg/schoolbell/internal/model"
)

func slot(lesson int, student, teacher, exit string) model.LessonSlot {
	s := model.LessonSlot{Lesson: lesson}
	s.Bells[model.StudentEntry].At = student
	s.Bells[model.TeacherEntry].At = teacher
	s.Bells[model.ClassExit].At = exit
	return s
}

func timetableWith(w time.Weekday, day model.DayProgram) *model.Timetable {
	tt := &model.Timetable{}
	for i := range tt.Days {
		tt.Days[i] = &model.SimpleDay{}
	}
	tt.Days[w] = day
	return tt
}

// 2026-10-19 is a Monday.
func at(day int, hh, mm, ss int) time.Time {
	return time.Date(2026, time.October, day, hh, mm, ss, 0, time.Local)
}

func TestTickInactiveDayNeverRings(t *testing.T) {
	day := &model.SimpleDay{Enabled: false, Slots: []model.LessonSlot{slot(1, "08:28", "08:30", "09:10")}}
	e := New(timetableWith(time.Monday, day))
	for _, now := range []time.Time{at(19, 8, 28, 0), at(19, 8, 30, 5), at(19, 9, 10, 59)} {
		if ev, ok := e.Tick(now, nil); ok {
			t.Fatalf("expected no event on inactive day at %s, got %+v", now, ev)
		}
	}
}

func TestTickAtMostOncePerDay(t *testing.T) {
	day := &model.SimpleDay{Enabled: true, Slots: []model.LessonSlot{slot(1, "08:28", "08:30", "09:10")}}
	tt := timetableWith(time.Monday, day)
	tt.Days[time.Tuesday] = day
	e := New(tt)

	count := 0
	for sec := 0; sec < 60; sec++ {
		if _, ok := e.Tick(at(19, 8, 28, sec), nil); ok {
			count++
		}
	}
	if _, ok := e.Tick(at(19, 8, 29, 0), nil); ok {
		t.Fatalf("expected no event at non-matching minute")
	}
	if count != 1 {
		t.Fatalf("expected exactly one event in the minute, got %d", count)
	}

	ev, ok := e.Tick(at(20, 8, 28, 0), nil)
	if !ok {
		t.Fatalf("expected the bell to ring again the next day")
	}
	if ev.Kind != model.StudentEntry || ev.Lesson != 1 {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestTickFirstMatchWins(t *testing.T) {
	// Both slots ring at 09:10; slot order decides.
	day := &model.SimpleDay{Enabled: true, Slots: []model.LessonSlot{
		slot(1, "08:28", "08:30", "09:10"),
		slot(2, "09:10", "09:12", "09:50"),
	}}
	e := New(timetableWith(time.Monday, day))

	ev, ok := e.Tick(at(19, 9, 10, 0), nil)
	if !ok || ev.Lesson != 1 || ev.Kind != model.ClassExit {
		t.Fatalf("expected lesson 1 exit first, got %+v ok=%v", ev, ok)
	}
	ev, ok = e.Tick(at(19, 9, 10, 1), nil)
	if !ok || ev.Lesson != 2 || ev.Kind != model.StudentEntry {
		t.Fatalf("expected lesson 2 entry on the next tick, got %+v ok=%v", ev, ok)
	}
	if _, ok := e.Tick(at(19, 9, 10, 2), nil); ok {
		t.Fatalf("expected nothing left to ring")
	}
}

func TestTickDescriptionAndAnnouncement(t *testing.T) {
	s := slot(3, "10:18", "10:20", "11:00")
	s.Bells[model.TeacherEntry].Announcement = "anons/ogretmen.mp3"
	day := &model.SimpleDay{Enabled: true, Slots: []model.LessonSlot{s}}
	e := New(timetableWith(time.Monday, day))

	ev, ok := e.Tick(at(19, 10, 20, 0), map[string]string{model.CategoryTeacher: "custom.mp3"})
	if !ok {
		t.Fatalf("expected event")
	}
	if ev.Description != "3. Ders Öğretmen Giriş" {
		t.Fatalf("unexpected description %q", ev.Description)
	}
	if ev.Announcement != "anons/ogretmen.mp3" {
		t.Fatalf("announcement must come from the slot, got %q", ev.Announcement)
	}
	ev, ok = e.Tick(at(19, 11, 0, 0), nil)
	if !ok || ev.Description != "3. Ders Çıkış" {
		t.Fatalf("unexpected exit event %+v", ev)
	}
}

func TestTickMalformedTimeNeverMatches(t *testing.T) {
	day := &model.SimpleDay{Enabled: true, Slots: []model.LessonSlot{slot(1, "8h28", "", "09:10")}}
	e := New(timetableWith(time.Monday, day))
	for m := 0; m < 60; m++ {
		if ev, ok := e.Tick(at(19, 8, m, 0), nil); ok {
			t.Fatalf("unexpected event %+v", ev)
		}
	}
}

func TestResolveSoundPriority(t *testing.T) {
	s := slot(1, "08:28", "08:30", "09:10")
	s.Sound = "generic.mp3"
	s.Bells[model.StudentEntry].Sound = "field.mp3"
	settings := map[string]string{model.CategoryStudent: "settings.mp3"}

	if got := ResolveSound(s, model.StudentEntry, settings); got != "settings.mp3" {
		t.Fatalf("level 1: got %q", got)
	}
	settings[model.CategoryStudent] = "   "
	if got := ResolveSound(s, model.StudentEntry, settings); got != "field.mp3" {
		t.Fatalf("level 2: got %q", got)
	}
	s.Bells[model.StudentEntry].Sound = ""
	if got := ResolveSound(s, model.StudentEntry, settings); got != "generic.mp3" {
		t.Fatalf("level 3: got %q", got)
	}
	s.Sound = ""
	if got := ResolveSound(s, model.StudentEntry, nil); got != model.DefaultSound {
		t.Fatalf("level 4: got %q", got)
	}
}

func shiftDay(morningActive, afternoonActive bool, split string) *model.ShiftDay {
	return &model.ShiftDay{
		Morning: model.Shift{Active: morningActive, Slots: []model.LessonSlot{
			slot(1, "07:58", "08:00", "08:40"),
			slot(2, "11:59", "", ""),
		}},
		Afternoon: model.Shift{Active: afternoonActive, Slots: []model.LessonSlot{
			slot(11, "12:00", "12:02", "12:42"),
		}},
		Split: split,
	}
}

func TestActiveSlotsShiftResolution(t *testing.T) {
	day := shiftDay(true, true, "12:00")
	morning := ActiveSlots(day, model.MustTime("11:59"))
	if len(morning) != 2 || morning[0].Lesson != 1 {
		t.Fatalf("11:59 should resolve to the morning shift, got %+v", morning)
	}
	afternoon := ActiveSlots(day, model.MustTime("12:00"))
	if len(afternoon) != 1 || afternoon[0].Lesson != 11 {
		t.Fatalf("12:00 should resolve to the afternoon shift, got %+v", afternoon)
	}

	day = shiftDay(true, false, "12:00")
	if got := ActiveSlots(day, model.MustTime("12:00")); len(got) != 0 {
		t.Fatalf("inactive afternoon shift should yield no slots, got %+v", got)
	}
	if got := ActiveSlots(shiftDay(true, true, "noon"), model.MustTime("08:00")); len(got) != 0 {
		t.Fatalf("malformed split should yield no slots, got %+v", got)
	}
	if got := ActiveSlots(shiftDay(true, true, ""), model.MustTime("08:00")); len(got) != 2 {
		t.Fatalf("empty split should default to 12:00, got %+v", got)
	}
}

func TestTickShiftDay(t *testing.T) {
	e := New(timetableWith(time.Monday, shiftDay(true, true, "12:00")))
	ev, ok := e.Tick(at(19, 11, 59, 0), nil)
	if !ok || ev.Lesson != 2 {
		t.Fatalf("expected morning lesson 2 at 11:59, got %+v ok=%v", ev, ok)
	}
	ev, ok = e.Tick(at(19, 12, 0, 0), nil)
	if !ok || ev.Lesson != 11 {
		t.Fatalf("expected afternoon lesson 11 at 12:00, got %+v ok=%v", ev, ok)
	}
}

func TestTickMissingDayIsNoop(t *testing.T) {
	tt := &model.Timetable{}
	e := New(tt)
	if _, ok := e.Tick(at(19, 8, 0, 0), nil); ok {
		t.Fatalf("expected no event for a missing day")
	}
}
