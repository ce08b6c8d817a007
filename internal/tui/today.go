package tui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/verte-zerg/schoolbell/internal/engine"
	"github.com/verte-zerg/schoolbell/internal/model"
)

type rowState int

const (
	rowPending rowState = iota
	rowActive
	rowDone
)

// slotState places clock relative to a slot: done once the exit bell time
// has passed, active from the student bell on.
func slotState(slot model.LessonSlot, clock model.TimeOfDay) rowState {
	if exit, ok := slot.Time(model.ClassExit); ok && !clock.Before(exit) {
		return rowDone
	}
	if start, ok := slot.Time(model.StudentEntry); ok && !clock.Before(start) {
		return rowActive
	}
	return rowPending
}

func todaySlots(tt *model.Timetable, day model.DayProgram) []model.LessonSlot {
	if tt == nil || day == nil || !day.Active() {
		return nil
	}
	return engine.CandidateSlots(day)
}

func stateLabel(s rowState) string {
	switch s {
	case rowDone:
		return "Bitti"
	case rowActive:
		return "Devam"
	default:
		return ""
	}
}

func cellTime(slot model.LessonSlot, f model.Field) string {
	if at := slot.Bell(f).At; at != "" {
		return at
	}
	return "-"
}

// RenderDay renders the bells of the day containing now, marking the
// lessons already over.
func RenderDay(tt *model.Timetable, now time.Time, width int) string {
	var day model.DayProgram
	if tt != nil {
		day = tt.Day(now.Weekday())
	}
	return renderToday(todaySlots(tt, day), model.ClockOf(now), width)
}

func renderToday(slots []model.LessonSlot, clock model.TimeOfDay, width int) string {
	if len(slots) == 0 {
		return mutedStyle.Render(bannerNone)
	}
	states := make([]rowState, len(slots))
	rows := make([][]string, len(slots))
	for i, slot := range slots {
		states[i] = slotState(slot, clock)
		rows[i] = []string{
			strconv.Itoa(slot.Lesson),
			cellTime(slot, model.StudentEntry),
			cellTime(slot, model.TeacherEntry),
			cellTime(slot, model.ClassExit),
			stateLabel(states[i]),
		}
	}

	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("Ders", "Öğrenci Giriş", "Öğretmen Giriş", "Ders Çıkış", "Durum").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return tableHeaderStyle
			}
			if row < 0 || row >= len(states) {
				return cellStyle
			}
			switch states[row] {
			case rowDone:
				return doneRowStyle
			case rowActive:
				return activeRowStyle
			default:
				return cellStyle
			}
		})
	if width > 0 {
		t = t.Width(min(width, 80))
	}
	return t.Render()
}
