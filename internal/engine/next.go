package engine

import (
	"time"

	"github.com/verte-zerg/schoolbell/internal/model"
)

// Prediction is the next scheduled bell.
type Prediction struct {
	At     time.Time
	Kind   model.Field
	Lesson int
	Sound  string
}

// Description renders the prediction like a ring event description.
func (p Prediction) Description() string {
	return Describe(p.Lesson, p.Kind)
}

// Next returns the soonest bell at or after now from today's program.
// Bells earlier than now roll over to the same time tomorrow. It does not
// know which bells already rang; it only feeds countdown displays.
func Next(now time.Time, tt *model.Timetable) (Prediction, bool) {
	day := tt.Day(now.Weekday())
	if day == nil || !day.Active() {
		return Prediction{}, false
	}

	var best Prediction
	var bestDelta time.Duration
	found := false
	tomorrow := now.AddDate(0, 0, 1)
	for _, slot := range CandidateSlots(day) {
		for _, field := range model.Fields {
			clock, ok := slot.Time(field)
			if !ok {
				continue
			}
			at := clock.On(now)
			if at.Before(now) {
				at = clock.On(tomorrow)
			}
			delta := at.Sub(now)
			if found && delta >= bestDelta {
				continue
			}
			found = true
			bestDelta = delta
			best = Prediction{
				At:     at,
				Kind:   field,
				Lesson: slot.Lesson,
				Sound:  slotSound(slot, field),
			}
		}
	}
	return best, found
}
