// Package engine matches the wall clock against the timetable and decides
// which bell rings.
package engine

import (
	"fmt"
	"time"

	"github.com/verte-zerg/schoolbell/internal/model"
)

type dedupKey struct {
	year   int
	month  time.Month
	day    int
	lesson int
	field  model.Field
}

// Engine is the match and dispatch loop body. It is driven by a single
// goroutine and is not safe for concurrent use.
type Engine struct {
	timetable *model.Timetable

	lastYear  int
	lastMonth time.Month
	lastDay   int
	fired     map[dedupKey]struct{}
}

// New returns an engine reading from tt.
func New(tt *model.Timetable) *Engine {
	return &Engine{
		timetable: tt,
		fired:     map[dedupKey]struct{}{},
	}
}

// Reload swaps in a new timetable. Bells already rung today stay recorded.
func (e *Engine) Reload(tt *model.Timetable) {
	e.timetable = tt
}

// Timetable returns the timetable currently matched against.
func (e *Engine) Timetable() *model.Timetable {
	return e.timetable
}

// Tick evaluates one instant. sounds holds the per-category defaults from
// the user settings. At most one event is returned per call.
func (e *Engine) Tick(now time.Time, sounds map[string]string) (model.RingEvent, bool) {
	y, m, d := now.Date()
	if y != e.lastYear || m != e.lastMonth || d != e.lastDay {
		e.fired = map[dedupKey]struct{}{}
		e.lastYear, e.lastMonth, e.lastDay = y, m, d
	}

	day := e.timetable.Day(now.Weekday())
	if day == nil || !day.Active() {
		return model.RingEvent{}, false
	}

	clock := model.ClockOf(now)
	for _, slot := range ActiveSlots(day, clock) {
		for _, field := range model.Fields {
			at, ok := slot.Time(field)
			if !ok || at != clock {
				continue
			}
			key := dedupKey{year: y, month: m, day: d, lesson: slot.Lesson, field: field}
			if _, done := e.fired[key]; done {
				continue
			}
			e.fired[key] = struct{}{}
			bell := slot.Bell(field)
			return model.RingEvent{
				Kind:         field,
				Lesson:       slot.Lesson,
				Description:  Describe(slot.Lesson, field),
				Sound:        ResolveSound(slot, field, sounds),
				Announcement: bell.Announcement,
				At:           now,
			}, true
		}
	}
	return model.RingEvent{}, false
}

// Describe renders the event description, e.g. "3. Ders Öğrenci Giriş".
func Describe(lesson int, field model.Field) string {
	if field == model.ClassExit {
		return fmt.Sprintf("%d. Ders Çıkış", lesson)
	}
	return fmt.Sprintf("%d. Ders %s", lesson, field.Label())
}

// ResolveSound applies the priority chain: settings category sound, the
// slot's field override, the slot's generic sound, then DefaultSound.
func ResolveSound(slot model.LessonSlot, field model.Field, sounds map[string]string) string {
	if s := trimmed(sounds[field.Category()]); s != "" {
		return s
	}
	return slotSound(slot, field)
}

func slotSound(slot model.LessonSlot, field model.Field) string {
	if s := trimmed(slot.Bell(field).Sound); s != "" {
		return s
	}
	if s := trimmed(slot.Sound); s != "" {
		return s
	}
	return model.DefaultSound
}
