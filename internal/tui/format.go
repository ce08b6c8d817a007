package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/schoolbell/internal/engine"
	"github.com/verte-zerg/schoolbell/internal/model"
)

var monthNames = [12]string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

// turkishDate renders e.g. "19 Ekim 2026 Pazartesi".
func turkishDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d %s", t.Day(), monthNames[t.Month()-1], t.Year(), model.DayName(t.Weekday()))
}

// formatRemaining renders d as HH:MM:SS, clamping negatives to zero.
func formatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total/60%60, total%60)
}

const (
	bannerClosed = "Zil kapalı veya tatil modunda"
	bannerNone   = "Bugün için zil zamanı yok"
)

// Countdown renders the banner above the day table.
func Countdown(now time.Time, next engine.Prediction, ok, canRing bool) string {
	if !canRing {
		return bannerClosed
	}
	if !ok {
		return bannerNone
	}
	return fmt.Sprintf("%s - %s (%s kaldı)", next.Description(), next.At.Format("15:04"), formatRemaining(next.At.Sub(now)))
}

func gateText(open bool, reenableAt *model.TimeOfDay) string {
	switch {
	case open:
		return "Zil: AÇIK"
	case reenableAt != nil:
		return fmt.Sprintf("Zil: KAPALI (%s'e kadar)", reenableAt)
	default:
		return "Zil: KAPALI"
	}
}

func nextMode(m model.Mode) model.Mode {
	switch m {
	case model.ModeNormal:
		return model.ModeExam
	case model.ModeExam:
		return model.ModeHoliday
	default:
		return model.ModeNormal
	}
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
