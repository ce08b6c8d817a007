// Package cascade edits one day's slot list so that a changed time or
// recess propagates to every later slot.
//
// All operations are pure: they return a new Table and never modify the
// slots they were given.
package cascade

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/schoolbell/internal/model"
)

var (
	// ErrIndex reports a slot index outside the table.
	ErrIndex = errors.New("slot index out of range")
	// ErrGapRange reports a recess outside MinGap..MaxGap minutes.
	ErrGapRange = errors.New("recess out of range")
)

// Recess bounds accepted by SetGap.
const (
	MinGap = 1
	MaxGap = 60
)

// Defaults are substituted whenever a lag, duration or recess cannot be
// derived from the existing times.
type Defaults struct {
	FirstLesson model.TimeOfDay
	Gap         int
	TeacherLag  int
	Duration    int
}

// DefaultsFrom maps the settings document defaults.
func DefaultsFrom(sd model.ScheduleDefaults) Defaults {
	first, err := model.ParseTimeOfDay(sd.FirstLesson)
	if err != nil {
		first = model.MustTime(model.DefaultScheduleDefaults().FirstLesson)
	}
	return Defaults{
		FirstLesson: first,
		Gap:         sd.Gap,
		TeacherLag:  sd.StudentLead,
		Duration:    sd.LessonDuration,
	}
}

// Table is the editable view of a slot list.
type Table struct {
	Slots []model.LessonSlot
	// Gaps[i] is the recess in minutes between slot i's exit and slot
	// i+1's student entry. The entry for the last slot is only used by
	// AddSlot.
	Gaps []int

	defaults Defaults
}

// NewTable copies slots and derives the recess column from them.
func NewTable(slots []model.LessonSlot, d Defaults) Table {
	t := Table{Slots: model.CloneSlots(slots), Gaps: make([]int, len(slots)), defaults: d}
	for i := range t.Slots {
		t.Gaps[i] = d.Gap
		if i+1 >= len(t.Slots) {
			continue
		}
		exit, ok1 := t.Slots[i].Time(model.ClassExit)
		next, ok2 := t.Slots[i+1].Time(model.StudentEntry)
		if !ok1 || !ok2 {
			continue
		}
		if g := next.Sub(exit); g >= 0 {
			t.Gaps[i] = g
		}
	}
	return t
}

// Defaults returns the fallbacks the table was built with.
func (t Table) Defaults() Defaults {
	return t.defaults
}

// GapLabel renders the recess column; the last slot has none.
func (t Table) GapLabel(i int) string {
	if i < 0 || i >= len(t.Gaps) || i == len(t.Gaps)-1 {
		return "-"
	}
	return fmt.Sprintf("%d", t.Gaps[i])
}

func (t Table) clone() Table {
	return Table{
		Slots:    model.CloneSlots(t.Slots),
		Gaps:     append([]int(nil), t.Gaps...),
		defaults: t.defaults,
	}
}

// ValidateGap checks a recess typed by the operator.
func ValidateGap(minutes int) error {
	if minutes < MinGap || minutes > MaxGap {
		return fmt.Errorf("%w: %d not in %d..%d minutes", ErrGapRange, minutes, MinGap, MaxGap)
	}
	return nil
}

// SetGap changes the recess after slot i and moves every later slot so
// that all other lags, durations and recesses stay as they were. The
// current recess is always accepted, even outside MinGap..MaxGap.
func (t Table) SetGap(i, minutes int) (Table, error) {
	if i < 0 || i >= len(t.Slots) {
		return t, fmt.Errorf("%w: %d", ErrIndex, i)
	}
	if minutes != t.Gaps[i] {
		if err := ValidateGap(minutes); err != nil {
			return t, err
		}
	}
	out := t.clone()
	out.Gaps[i] = minutes
	if i+1 >= len(out.Slots) {
		return out, nil
	}
	exit, ok := out.Slots[i].Time(model.ClassExit)
	if !ok {
		return out, nil
	}
	out.cascadeFrom(i+1, exit.Add(minutes))
	return out, nil
}

// SetTime sets field f of slot i. The recess before slot i is refreshed
// for display when it stays positive, slot i-1 itself is untouched, and
// later slots follow slot i's exit using the recess after it.
func (t Table) SetTime(i int, f model.Field, at model.TimeOfDay) (Table, error) {
	if i < 0 || i >= len(t.Slots) {
		return t, fmt.Errorf("%w: %d", ErrIndex, i)
	}
	out := t.clone()
	out.Slots[i] = out.Slots[i].WithTime(f, at)

	if i > 0 {
		prevExit, ok1 := out.Slots[i-1].Time(model.ClassExit)
		student, ok2 := out.Slots[i].Time(model.StudentEntry)
		if ok1 && ok2 {
			if g := student.Sub(prevExit); g > 0 {
				out.Gaps[i-1] = g
			}
		}
	}

	if i+1 >= len(out.Slots) {
		return out, nil
	}
	exit, ok := out.Slots[i].Time(model.ClassExit)
	if !ok {
		return out, nil
	}
	out.cascadeFrom(i+1, exit.Add(out.Gaps[i]))
	return out, nil
}

// cascadeFrom moves slot j to start at start, re-deriving its teacher bell
// and exit from its own previous lag and duration, then repeats for the
// following slots. A slot without a usable student entry or exit stops
// the walk and leaves the rest untouched.
func (t *Table) cascadeFrom(j int, start model.TimeOfDay) {
	for ; j < len(t.Slots); j++ {
		s := t.Slots[j]
		oldStudent, ok := s.Time(model.StudentEntry)
		if !ok {
			return
		}

		lag := t.defaults.TeacherLag
		oldTeacher, hasTeacher := s.Time(model.TeacherEntry)
		if hasTeacher {
			lag = oldTeacher.Sub(oldStudent)
		}
		// Duration runs from the teacher bell. A teacher bell that is set
		// but unreadable leaves the duration at its default.
		duration := t.defaults.Duration
		if exit, ok := s.Time(model.ClassExit); ok {
			switch {
			case hasTeacher:
				duration = exit.Sub(oldTeacher)
			case !s.Bell(model.TeacherEntry).Defined():
				duration = exit.Sub(oldStudent)
			}
		}

		s = s.WithTime(model.StudentEntry, start)
		newBase := start
		if s.Bell(model.TeacherEntry).Defined() {
			newBase = start.Add(lag)
			s = s.WithTime(model.TeacherEntry, newBase)
		}
		if !s.Bell(model.ClassExit).Defined() {
			t.Slots[j] = s
			return
		}
		exit := newBase.Add(duration)
		s = s.WithTime(model.ClassExit, exit)
		t.Slots[j] = s

		start = exit.Add(t.Gaps[j])
	}
}

// AddSlot appends a slot starting one default recess after the last exit,
// or at the first lesson when the table is empty.
func (t Table) AddSlot() Table {
	out := t.clone()
	d := out.defaults
	student := d.FirstLesson.Add(-d.TeacherLag)
	lesson := 1
	if n := len(out.Slots); n > 0 {
		if exit, ok := out.Slots[n-1].Time(model.ClassExit); ok {
			student = exit.Add(out.Gaps[n-1])
		}
		for _, s := range out.Slots {
			if s.Lesson >= lesson {
				lesson = s.Lesson + 1
			}
		}
	}
	teacher := student.Add(d.TeacherLag)
	slot := model.LessonSlot{Lesson: lesson, Sound: model.DefaultSound}
	slot = slot.WithTime(model.StudentEntry, student)
	slot = slot.WithTime(model.TeacherEntry, teacher)
	slot = slot.WithTime(model.ClassExit, teacher.Add(d.Duration))
	out.Slots = append(out.Slots, slot)
	out.Gaps = append(out.Gaps, d.Gap)
	return out
}

// RemoveSlot drops slot i. Later slots keep their times.
func (t Table) RemoveSlot(i int) (Table, error) {
	if i < 0 || i >= len(t.Slots) {
		return t, fmt.Errorf("%w: %d", ErrIndex, i)
	}
	slots := make([]model.LessonSlot, 0, len(t.Slots)-1)
	slots = append(slots, t.Slots[:i]...)
	slots = append(slots, t.Slots[i+1:]...)
	return NewTable(slots, t.defaults), nil
}
