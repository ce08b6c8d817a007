// Package model defines shared data structures.
package model

import (
	"encoding/json"
	"strings"
	"time"
)

// RingEvent is emitted by the engine when a bell time matches.
type RingEvent struct {
	Kind         Field
	Lesson       int
	Description  string
	Sound        string
	Announcement string
	At           time.Time
}

// Mode is the operating mode of the bell.
type Mode string

// Modes as stored in the settings document.
const (
	ModeNormal  Mode = "normal"
	ModeHoliday Mode = "tatil"
	ModeExam    Mode = "sinav"
)

// ParseMode accepts the document value or its English name.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return ModeNormal, true
	case "tatil", "holiday":
		return ModeHoliday, true
	case "sinav", "sınav", "exam":
		return ModeExam, true
	default:
		return ModeNormal, false
	}
}

// Label is the on-screen mode name.
func (m Mode) Label() string {
	switch m {
	case ModeHoliday:
		return "Tatil"
	case ModeExam:
		return "Sınav"
	default:
		return "Normal"
	}
}

// ScheduleDefaults drive generation and the cascade fallbacks.
type ScheduleDefaults struct {
	FirstLesson      string
	Gap              int
	LessonsPerDay    int
	LunchDuration    int
	LunchAfterLesson int
	LessonDuration   int
	StudentLead      int
}

// DefaultScheduleDefaults mirrors the built-in editor defaults.
func DefaultScheduleDefaults() ScheduleDefaults {
	return ScheduleDefaults{
		FirstLesson:      "08:30",
		Gap:              10,
		LessonsPerDay:    8,
		LunchDuration:    40,
		LunchAfterLesson: 4,
		LessonDuration:   40,
		StudentLead:      2,
	}
}

// SystemSettings holds desktop integration flags.
type SystemSettings struct {
	Startup bool
	Tray    bool
}

// Settings is the user settings document.
type Settings struct {
	Sounds       map[string]string
	Volumes      map[string]int
	Mode         Mode
	System       SystemSettings
	PasswordHash *string
	Defaults     ScheduleDefaults
	// Extra keeps top-level keys this program does not interpret.
	Extra map[string]json.RawMessage
}

// Sound returns the configured sound for a category, or "".
func (s Settings) Sound(category string) string {
	return strings.TrimSpace(s.Sounds[category])
}

// Volume returns the 0-100 volume for a category, defaulting to 100.
func (s Settings) Volume(category string) int {
	v, ok := s.Volumes[category]
	if !ok {
		return 100
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// LogSource classifies ring log entries.
type LogSource string

// Log sources.
const (
	SourceAutomatic  LogSource = "automatic"
	SourceManual     LogSource = "manual"
	SourceSuppressed LogSource = "suppressed"
	SourceSystem     LogSource = "system"
	SourceError      LogSource = "error"
)

// LogEntry is one persisted ring log line.
type LogEntry struct {
	ID          int64
	RunID       string
	At          time.Time
	Source      LogSource
	Kind        string
	Lesson      int
	Description string
	Sound       string
}

// LogFilter narrows ring log queries.
type LogFilter struct {
	Since  *time.Time
	Source LogSource
	Last   int
}

// SourceCount aggregates log entries per day and source.
type SourceCount struct {
	Day    string
	Source LogSource
	Count  int
}
