package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Field names one of the three bells a lesson slot can carry.
type Field int

// Bell fields in evaluation order.
const (
	StudentEntry Field = iota
	TeacherEntry
	ClassExit
)

// FieldCount is the number of bell fields per slot.
const FieldCount = 3

// Fields lists the bell fields in the fixed order the engine tests them.
var Fields = [FieldCount]Field{StudentEntry, TeacherEntry, ClassExit}

// DefaultSound is the bell used when nothing else is configured.
const DefaultSound = "ziller/zil1.mp3"

// Sound categories used in the settings document.
const (
	CategoryStudent         = "ogrenci"
	CategoryTeacher         = "ogretmen"
	CategoryExit            = "cikis"
	CategoryMarch           = "mars"
	CategorySiren           = "siren"
	CategoryTribute         = "saygi"
	CategorySirenMarchSiren = "siren_mars_siren"
	CategorySirenMarchMarch = "siren_mars_mars"
)

func (f Field) String() string {
	switch f {
	case StudentEntry:
		return "student-entry"
	case TeacherEntry:
		return "teacher-entry"
	case ClassExit:
		return "class-exit"
	default:
		return "unknown"
	}
}

// Key is the document key holding the bell time.
func (f Field) Key() string {
	switch f {
	case StudentEntry:
		return "ogrenci_giris"
	case TeacherEntry:
		return "ogretmen_giris"
	case ClassExit:
		return "ders_cikis"
	default:
		return ""
	}
}

// Category is the settings category for sounds and volumes.
func (f Field) Category() string {
	switch f {
	case StudentEntry:
		return CategoryStudent
	case TeacherEntry:
		return CategoryTeacher
	case ClassExit:
		return CategoryExit
	default:
		return ""
	}
}

// Label is the human readable bell name shown on screen.
func (f Field) Label() string {
	switch f {
	case StudentEntry:
		return "Öğrenci Giriş"
	case TeacherEntry:
		return "Öğretmen Giriş"
	case ClassExit:
		return "Ders Çıkış"
	default:
		return ""
	}
}

// ParseField accepts both the canonical and the document spelling.
func ParseField(s string) (Field, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range Fields {
		if s == f.String() || s == f.Key() || s == f.Category() {
			return f, true
		}
	}
	switch s {
	case "student":
		return StudentEntry, true
	case "teacher":
		return TeacherEntry, true
	case "exit":
		return ClassExit, true
	}
	return 0, false
}

// Bell is one scheduled ring of a slot. At stays as written in the
// document; an empty At means the slot has no bell of this kind.
type Bell struct {
	At           string
	Sound        string
	Announcement string
}

// Defined reports whether the bell has a time at all.
func (b Bell) Defined() bool {
	return strings.TrimSpace(b.At) != ""
}

// Time parses the bell time. Malformed or missing times report false.
func (b Bell) Time() (TimeOfDay, bool) {
	if !b.Defined() {
		return TimeOfDay{}, false
	}
	t, err := ParseTimeOfDay(b.At)
	if err != nil {
		return TimeOfDay{}, false
	}
	return t, true
}

// LessonSlot is one lesson with up to three bells.
type LessonSlot struct {
	Lesson int
	Sound  string
	Bells  [FieldCount]Bell
}

// Bell returns the bell for f.
func (s LessonSlot) Bell(f Field) Bell {
	return s.Bells[f]
}

// Time returns the parsed time of field f.
func (s LessonSlot) Time(f Field) (TimeOfDay, bool) {
	return s.Bells[f].Time()
}

// WithTime returns a copy of s with field f set to t, keeping its sounds.
func (s LessonSlot) WithTime(f Field, t TimeOfDay) LessonSlot {
	s.Bells[f].At = t.String()
	return s
}

// Shift is one of the two parallel sub-schedules of a shift day.
type Shift struct {
	Active bool
	Slots  []LessonSlot
}

// DayProgram is either a *SimpleDay or a *ShiftDay.
type DayProgram interface {
	Active() bool
	isDayProgram()
}

// SimpleDay is a single ordered slot list.
type SimpleDay struct {
	Enabled bool
	Slots   []LessonSlot
}

// Active implements DayProgram.
func (d *SimpleDay) Active() bool { return d.Enabled }

func (*SimpleDay) isDayProgram() {}

// ShiftDay splits the day into morning and afternoon cohorts.
type ShiftDay struct {
	Morning   Shift
	Afternoon Shift
	// Split is the HH:MM boundary; before it the morning shift rings.
	Split string
}

// DefaultSplit is the shift boundary used when none is configured.
const DefaultSplit = "12:00"

// Active is derived from the two shifts.
func (d *ShiftDay) Active() bool { return d.Morning.Active || d.Afternoon.Active }

func (*ShiftDay) isDayProgram() {}

// Timetable is the weekly schedule. Days is indexed by time.Weekday.
type Timetable struct {
	Days [7]DayProgram
	// SpecialScenarios is carried through load and save untouched.
	SpecialScenarios json.RawMessage
	// Extra keeps top-level document keys this program does not interpret.
	Extra map[string]json.RawMessage
}

// Day returns the program for a weekday.
func (t *Timetable) Day(w time.Weekday) DayProgram {
	if t == nil || w < time.Sunday || w > time.Saturday {
		return nil
	}
	return t.Days[w]
}

// Clone deep-copies the timetable so edits never touch a published value.
func (t *Timetable) Clone() *Timetable {
	if t == nil {
		return nil
	}
	out := &Timetable{}
	if t.SpecialScenarios != nil {
		out.SpecialScenarios = append(json.RawMessage(nil), t.SpecialScenarios...)
	}
	if t.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(t.Extra))
		for k, v := range t.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	for i, d := range t.Days {
		out.Days[i] = CloneDay(d)
	}
	return out
}

// CloneDay deep-copies a single day program.
func CloneDay(d DayProgram) DayProgram {
	switch day := d.(type) {
	case *SimpleDay:
		return &SimpleDay{Enabled: day.Enabled, Slots: CloneSlots(day.Slots)}
	case *ShiftDay:
		return &ShiftDay{
			Morning:   Shift{Active: day.Morning.Active, Slots: CloneSlots(day.Morning.Slots)},
			Afternoon: Shift{Active: day.Afternoon.Active, Slots: CloneSlots(day.Afternoon.Slots)},
			Split:     day.Split,
		}
	default:
		return nil
	}
}

// CloneSlots copies a slot list.
func CloneSlots(slots []LessonSlot) []LessonSlot {
	if slots == nil {
		return nil
	}
	return append([]LessonSlot(nil), slots...)
}

// Weekday names as used in the timetable document, indexed by time.Weekday.
var dayNames = [7]string{"Pazar", "Pazartesi", "Salı", "Çarşamba", "Perşembe", "Cuma", "Cumartesi"}

// WeekOrder lists weekdays Monday first, the order schools think in.
var WeekOrder = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// DayName returns the document name of w.
func DayName(w time.Weekday) string {
	if w < time.Sunday || w > time.Saturday {
		return ""
	}
	return dayNames[w]
}

// ParseDay accepts the document name or the English weekday name.
func ParseDay(s string) (time.Weekday, bool) {
	s = strings.TrimSpace(s)
	for i, name := range dayNames {
		if strings.EqualFold(s, name) || strings.EqualFold(s, time.Weekday(i).String()) {
			return time.Weekday(i), true
		}
	}
	return 0, false
}
