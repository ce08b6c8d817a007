package generator

import (
	"errors"
	"testing"
	"time"

	"github.com/verte-zerg/schoolbell/internal/model"
)

func times(s model.LessonSlot) [3]string {
	return [3]string{s.Bells[model.StudentEntry].At, s.Bells[model.TeacherEntry].At, s.Bells[model.ClassExit].At}
}

func TestBuildWithLunch(t *testing.T) {
	p, err := PlanFrom(model.DefaultScheduleDefaults(), true)
	if err != nil {
		t.Fatalf("PlanFrom: %v", err)
	}
	slots, err := Build(p)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(slots) != 8 {
		t.Fatalf("expected 8 lessons, got %d", len(slots))
	}
	want := map[int][3]string{
		0: {"08:28", "08:30", "09:10"},
		1: {"09:18", "09:20", "10:00"},
		3: {"10:58", "11:00", "11:40"},
		// 11:40 + 10 recess + 40 lunch.
		4: {"12:28", "12:30", "13:10"},
		7: {"14:58", "15:00", "15:40"},
	}
	for i, w := range want {
		if got := times(slots[i]); got != w {
			t.Fatalf("lesson %d: expected %v, got %v", i+1, w, got)
		}
	}
	if slots[7].Lesson != 8 || slots[7].Sound != model.DefaultSound {
		t.Fatalf("unexpected last slot %+v", slots[7])
	}
}

func TestBuildWithoutLunch(t *testing.T) {
	p := Plan{FirstLesson: model.MustTime("09:00"), Lessons: 2, Duration: 30, Gap: 5, StudentLead: 0, LunchAfter: 1, LunchDuration: 60}
	slots, err := Build(p)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := times(slots[1]); got != [3]string{"09:35", "09:35", "10:05"} {
		t.Fatalf("unexpected second lesson %v", got)
	}
}

func TestValidate(t *testing.T) {
	bad := []Plan{
		{Lessons: 0, Duration: 40},
		{Lessons: 5, Duration: 0},
		{Lessons: 5, Duration: 40, Gap: -1},
		{Lessons: 5, Duration: 40, StudentLead: 61},
	}
	for _, p := range bad {
		if _, err := Build(p); !errors.Is(err, ErrInvalidPlan) {
			t.Fatalf("expected ErrInvalidPlan for %+v, got %v", p, err)
		}
	}
	sd := model.DefaultScheduleDefaults()
	sd.FirstLesson = "8.30"
	if _, err := PlanFrom(sd, false); !errors.Is(err, ErrInvalidPlan) {
		t.Fatalf("expected ErrInvalidPlan for bad first lesson, got %v", err)
	}
}

func TestApply(t *testing.T) {
	tt := &model.Timetable{}
	for i := range tt.Days {
		tt.Days[i] = &model.SimpleDay{}
	}
	p, err := PlanFrom(model.DefaultScheduleDefaults(), false)
	if err != nil {
		t.Fatalf("PlanFrom: %v", err)
	}
	out, err := Apply(tt, p, time.Monday, time.Wednesday)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for _, w := range []time.Weekday{time.Monday, time.Wednesday} {
		if !out.Days[w].Active() || len(out.Days[w].(*model.SimpleDay).Slots) != 8 {
			t.Fatalf("%s not generated", w)
		}
	}
	if out.Days[time.Tuesday].Active() || tt.Days[time.Monday].Active() {
		t.Fatalf("unexpected mutation")
	}
}
