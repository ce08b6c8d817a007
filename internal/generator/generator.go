// Package generator builds a day's slot list from a handful of numbers.
package generator

import (
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/schoolbell/internal/model"
)

// ErrInvalidPlan reports a plan that cannot produce a slot list.
var ErrInvalidPlan = errors.New("invalid plan")

// Plan describes a regular school day. The teacher bell marks the lesson
// start, the student bell rings StudentLead minutes earlier and the exit
// bell Duration minutes after the start. Lessons are Gap minutes apart;
// with Lunch set, LunchDuration more minutes are added before lesson
// LunchAfter+1.
type Plan struct {
	FirstLesson   model.TimeOfDay
	Lessons       int
	Duration      int
	Gap           int
	StudentLead   int
	Lunch         bool
	LunchAfter    int
	LunchDuration int
	Sound         string
}

// PlanFrom builds a plan from the settings defaults.
func PlanFrom(sd model.ScheduleDefaults, lunch bool) (Plan, error) {
	first, err := model.ParseTimeOfDay(sd.FirstLesson)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: first lesson: %w", ErrInvalidPlan, err)
	}
	return Plan{
		FirstLesson:   first,
		Lessons:       sd.LessonsPerDay,
		Duration:      sd.LessonDuration,
		Gap:           sd.Gap,
		StudentLead:   sd.StudentLead,
		Lunch:         lunch,
		LunchAfter:    sd.LunchAfterLesson,
		LunchDuration: sd.LunchDuration,
		Sound:         model.DefaultSound,
	}, nil
}

// Validate checks the numeric ranges.
func (p Plan) Validate() error {
	switch {
	case p.Lessons < 1 || p.Lessons > 20:
		return fmt.Errorf("%w: lessons %d not in 1..20", ErrInvalidPlan, p.Lessons)
	case p.Duration < 1 || p.Duration > 180:
		return fmt.Errorf("%w: duration %d not in 1..180", ErrInvalidPlan, p.Duration)
	case p.Gap < 0 || p.Gap > 120:
		return fmt.Errorf("%w: recess %d not in 0..120", ErrInvalidPlan, p.Gap)
	case p.StudentLead < 0 || p.StudentLead > 60:
		return fmt.Errorf("%w: student lead %d not in 0..60", ErrInvalidPlan, p.StudentLead)
	case p.Lunch && p.LunchDuration < 0:
		return fmt.Errorf("%w: negative lunch", ErrInvalidPlan)
	}
	return nil
}

// Build computes the slot list.
func Build(p Plan) ([]model.LessonSlot, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	sound := p.Sound
	if sound == "" {
		sound = model.DefaultSound
	}

	slots := make([]model.LessonSlot, 0, p.Lessons)
	start := p.FirstLesson
	for lesson := 1; lesson <= p.Lessons; lesson++ {
		if p.Lunch && lesson == p.LunchAfter+1 {
			start = start.Add(p.LunchDuration)
		}
		exit := start.Add(p.Duration)
		s := model.LessonSlot{Lesson: lesson, Sound: sound}
		s = s.WithTime(model.StudentEntry, start.Add(-p.StudentLead))
		s = s.WithTime(model.TeacherEntry, start)
		s = s.WithTime(model.ClassExit, exit)
		slots = append(slots, s)
		start = exit.Add(p.Gap)
	}
	return slots, nil
}

// Apply returns a copy of tt where each of days is an active simple day
// running plan.
func Apply(tt *model.Timetable, p Plan, days ...time.Weekday) (*model.Timetable, error) {
	slots, err := Build(p)
	if err != nil {
		return nil, err
	}
	out := tt.Clone()
	for _, w := range days {
		out.Days[w] = &model.SimpleDay{Enabled: true, Slots: model.CloneSlots(slots)}
	}
	return out, nil
}
