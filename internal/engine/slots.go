package engine

import (
	"strings"

	"github.com/verte-zerg/schoolbell/internal/model"
)

// ActiveSlots resolves the slot list that rings at clock on day.
//
// Shift days pick the morning shift before the split time and the
// afternoon shift from it on; an inactive shift yields no slots. A
// malformed split time falls back to the simple slot list, which a shift
// day does not have, so nothing rings.
func ActiveSlots(day model.DayProgram, clock model.TimeOfDay) []model.LessonSlot {
	switch d := day.(type) {
	case *model.SimpleDay:
		return d.Slots
	case *model.ShiftDay:
		split, err := model.ParseTimeOfDay(splitOrDefault(d.Split))
		if err != nil {
			return nil
		}
		shift := d.Afternoon
		if clock.Before(split) {
			shift = d.Morning
		}
		if !shift.Active {
			return nil
		}
		return shift.Slots
	default:
		return nil
	}
}

// CandidateSlots returns every slot that can ring at some point of the
// day: the simple list, or the union of the active shifts.
func CandidateSlots(day model.DayProgram) []model.LessonSlot {
	switch d := day.(type) {
	case *model.SimpleDay:
		return d.Slots
	case *model.ShiftDay:
		if _, err := model.ParseTimeOfDay(splitOrDefault(d.Split)); err != nil {
			return nil
		}
		var out []model.LessonSlot
		if d.Morning.Active {
			out = append(out, d.Morning.Slots...)
		}
		if d.Afternoon.Active {
			out = append(out, d.Afternoon.Slots...)
		}
		return out
	default:
		return nil
	}
}

func splitOrDefault(s string) string {
	if strings.TrimSpace(s) == "" {
		return model.DefaultSplit
	}
	return s
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
