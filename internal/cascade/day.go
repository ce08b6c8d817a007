package cascade

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/schoolbell/internal/model"
)

// ErrShape reports an edit addressed to a part the day does not have.
var ErrShape = errors.New("day shape mismatch")

// Part selects the slot list being edited.
type Part int

// Slot lists of a day.
const (
	Lessons Part = iota
	Morning
	Afternoon
)

func (p Part) String() string {
	switch p {
	case Morning:
		return "sabahci"
	case Afternoon:
		return "oglenci"
	default:
		return "lessons"
	}
}

// ParsePart accepts the document key or the English name.
func ParsePart(s string) (Part, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lessons", "simple":
		return Lessons, true
	case "sabahci", "sabahçı", "morning":
		return Morning, true
	case "oglenci", "öğlenci", "afternoon":
		return Afternoon, true
	default:
		return Lessons, false
	}
}

// SlotsOf returns the slot list of part p.
func SlotsOf(day model.DayProgram, p Part) ([]model.LessonSlot, error) {
	switch d := day.(type) {
	case *model.SimpleDay:
		if p != Lessons {
			return nil, fmt.Errorf("%w: simple day has no %s", ErrShape, p)
		}
		return d.Slots, nil
	case *model.ShiftDay:
		switch p {
		case Morning:
			return d.Morning.Slots, nil
		case Afternoon:
			return d.Afternoon.Slots, nil
		default:
			return nil, fmt.Errorf("%w: shift day has no simple list", ErrShape)
		}
	default:
		return nil, fmt.Errorf("%w: empty day", ErrShape)
	}
}

// WithSlots returns a copy of day with part p replaced by slots.
func WithSlots(day model.DayProgram, p Part, slots []model.LessonSlot) (model.DayProgram, error) {
	if _, err := SlotsOf(day, p); err != nil {
		return nil, err
	}
	out := model.CloneDay(day)
	switch d := out.(type) {
	case *model.SimpleDay:
		d.Slots = model.CloneSlots(slots)
	case *model.ShiftDay:
		if p == Morning {
			d.Morning.Slots = model.CloneSlots(slots)
		} else {
			d.Afternoon.Slots = model.CloneSlots(slots)
		}
	}
	return out, nil
}

// SetActive returns a copy of day with the active flag of part p set.
// For a shift day the day flag follows the shifts.
func SetActive(day model.DayProgram, p Part, active bool) (model.DayProgram, error) {
	if _, err := SlotsOf(day, p); err != nil {
		return nil, err
	}
	out := model.CloneDay(day)
	switch d := out.(type) {
	case *model.SimpleDay:
		d.Enabled = active
	case *model.ShiftDay:
		if p == Morning {
			d.Morning.Active = active
		} else {
			d.Afternoon.Active = active
		}
	}
	return out, nil
}

// ToShift converts a simple day into a shift day. The current list
// becomes the morning shift and the afternoon shift starts empty and
// inactive.
func ToShift(day model.DayProgram) model.DayProgram {
	switch d := day.(type) {
	case *model.SimpleDay:
		return &model.ShiftDay{
			Morning: model.Shift{Active: d.Enabled, Slots: model.CloneSlots(d.Slots)},
			Split:   model.DefaultSplit,
		}
	case *model.ShiftDay:
		return model.CloneDay(d)
	default:
		return &model.ShiftDay{Split: model.DefaultSplit}
	}
}

// ToSimple converts a shift day into a simple day. The morning shift is
// kept and the afternoon shift is discarded.
func ToSimple(day model.DayProgram) model.DayProgram {
	switch d := day.(type) {
	case *model.ShiftDay:
		return &model.SimpleDay{Enabled: d.Morning.Active, Slots: model.CloneSlots(d.Morning.Slots)}
	case *model.SimpleDay:
		return model.CloneDay(d)
	default:
		return &model.SimpleDay{}
	}
}

// CopyDay returns a timetable where every target day is a copy of from,
// shape and active flags included.
func CopyDay(tt *model.Timetable, from time.Weekday, to ...time.Weekday) (*model.Timetable, error) {
	src := tt.Day(from)
	if src == nil {
		return nil, fmt.Errorf("copy from %s: %w", model.DayName(from), ErrShape)
	}
	out := tt.Clone()
	for _, w := range to {
		if w == from {
			continue
		}
		out.Days[w] = model.CloneDay(src)
	}
	return out, nil
}

// WithDay returns a copy of tt with weekday w replaced.
func WithDay(tt *model.Timetable, w time.Weekday, day model.DayProgram) *model.Timetable {
	out := tt.Clone()
	out.Days[w] = day
	return out
}
