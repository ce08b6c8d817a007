package engine

import (
	"testing"
	"time"

	"github.com/verte-zerg/schoolbell/internal/model"
)

func TestNextSameDay(t *testing.T) {
	day := &model.SimpleDay{Enabled: true, Slots: []model.LessonSlot{
		slot(1, "08:28", "08:30", "09:10"),
		slot(2, "09:18", "09:20", "10:00"),
	}}
	tt := timetableWith(time.Monday, day)

	p, ok := Next(at(19, 9, 10, 30), tt)
	if !ok {
		t.Fatalf("expected a prediction")
	}
	if p.Lesson != 2 || p.Kind != model.StudentEntry || !p.At.Equal(at(19, 9, 18, 0)) {
		t.Fatalf("unexpected prediction %+v", p)
	}
	if p.Description() != "2. Ders Öğrenci Giriş" || p.Sound != model.DefaultSound {
		t.Fatalf("unexpected description or sound: %q %q", p.Description(), p.Sound)
	}
}

func TestNextRollsToTomorrow(t *testing.T) {
	day := &model.SimpleDay{Enabled: true, Slots: []model.LessonSlot{
		slot(1, "08:28", "08:30", "09:10"),
		slot(2, "13:50", "13:52", "14:30"),
	}}
	tt := timetableWith(time.Monday, day)
	now := at(19, 15, 0, 0)

	p, ok := Next(now, tt)
	if !ok {
		t.Fatalf("expected a prediction")
	}
	if !p.At.Equal(at(20, 8, 28, 0)) {
		t.Fatalf("expected tomorrow 08:28, got %s", p.At)
	}
	if p.At.Before(now) {
		t.Fatalf("prediction must never be before now")
	}
}

func TestNextExactMinuteIsNow(t *testing.T) {
	day := &model.SimpleDay{Enabled: true, Slots: []model.LessonSlot{slot(1, "08:28", "08:30", "09:10")}}
	now := at(19, 8, 30, 0)
	p, ok := Next(now, timetableWith(time.Monday, day))
	if !ok || !p.At.Equal(now) || p.Kind != model.TeacherEntry {
		t.Fatalf("unexpected prediction %+v ok=%v", p, ok)
	}
}

func TestNextTieKeepsFirst(t *testing.T) {
	day := &model.SimpleDay{Enabled: true, Slots: []model.LessonSlot{
		slot(1, "08:28", "08:30", "09:10"),
		slot(2, "09:10", "09:12", "09:50"),
	}}
	p, ok := Next(at(19, 9, 0, 0), timetableWith(time.Monday, day))
	if !ok || p.Lesson != 1 || p.Kind != model.ClassExit {
		t.Fatalf("expected lesson 1 exit on tie, got %+v", p)
	}
}

func TestNextInactiveOrEmpty(t *testing.T) {
	inactive := &model.SimpleDay{Enabled: false, Slots: []model.LessonSlot{slot(1, "08:28", "08:30", "09:10")}}
	if _, ok := Next(at(19, 8, 0, 0), timetableWith(time.Monday, inactive)); ok {
		t.Fatalf("inactive day must not predict")
	}
	empty := &model.SimpleDay{Enabled: true}
	if _, ok := Next(at(19, 8, 0, 0), timetableWith(time.Monday, empty)); ok {
		t.Fatalf("empty day must not predict")
	}
}

func TestNextShiftUnion(t *testing.T) {
	cases := []struct {
		name   string
		day    *model.ShiftDay
		now    time.Time
		lesson int
		want   time.Time
	}{
		{"both shifts", shiftDay(true, true, "12:00"), at(19, 9, 0, 0), 2, at(19, 11, 59, 0)},
		{"afternoon bell seen in the morning", shiftDay(false, true, "12:00"), at(19, 9, 0, 0), 11, at(19, 12, 0, 0)},
		{"inactive afternoon skipped", shiftDay(true, false, "12:00"), at(19, 13, 0, 0), 1, at(20, 7, 58, 0)},
	}
	for _, tc := range cases {
		p, ok := Next(tc.now, timetableWith(time.Monday, tc.day))
		if !ok {
			t.Fatalf("%s: expected a prediction", tc.name)
		}
		if p.Lesson != tc.lesson || p.Kind != model.StudentEntry || !p.At.Equal(tc.want) {
			t.Fatalf("%s: unexpected prediction %+v", tc.name, p)
		}
	}

	if _, ok := Next(at(19, 9, 0, 0), timetableWith(time.Monday, shiftDay(true, true, "noon"))); ok {
		t.Fatalf("malformed split should predict nothing")
	}
}
