// Package document reads and writes the timetable and settings JSON
// documents. Comments and trailing commas are tolerated on read.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/verte-zerg/schoolbell/internal/model"
)

const (
	keyDays             = "days"
	keySpecialScenarios = "special_scenarios"
)

// text decodes a JSON string, or keeps the raw text of any other value so
// a malformed time survives as a never-matching bell.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = text(s)
		return nil
	}
	*t = text(strings.TrimSpace(string(data)))
	return nil
}

type slotDoc struct {
	Lesson       *int   `json:"lesson,omitempty"`
	StudentEntry text   `json:"ogrenci_giris,omitempty"`
	TeacherEntry text   `json:"ogretmen_giris,omitempty"`
	ClassExit    text   `json:"ders_cikis,omitempty"`
	Sound        string `json:"sound,omitempty"`
	StudentSound string `json:"ogrenci_sound,omitempty"`
	TeacherSound string `json:"ogretmen_sound,omitempty"`
	ExitSound    string `json:"cikis_sound,omitempty"`
	StudentAnons string `json:"ogrenci_anons,omitempty"`
	TeacherAnons string `json:"ogretmen_anons,omitempty"`
	ExitAnons    string `json:"cikis_anons,omitempty"`
}

type shiftDoc struct {
	Active  bool      `json:"active"`
	Lessons []slotDoc `json:"lessons"`
}

// dayDoc is the read shape. Both shift objects present means shift mode.
type dayDoc struct {
	Active    bool      `json:"active"`
	Lessons   []slotDoc `json:"lessons"`
	Morning   *shiftDoc `json:"sabahci"`
	Afternoon *shiftDoc `json:"oglenci"`
	Split     *text     `json:"shift_ayirma_saati"`
}

type simpleDayOut struct {
	Active  bool      `json:"active"`
	Lessons []slotDoc `json:"lessons"`
}

type shiftDayOut struct {
	Active    bool     `json:"active"`
	Morning   shiftDoc `json:"sabahci"`
	Afternoon shiftDoc `json:"oglenci"`
	Split     string   `json:"shift_ayirma_saati"`
}

func slotFromDoc(d slotDoc, index int) model.LessonSlot {
	s := model.LessonSlot{Lesson: index + 1, Sound: d.Sound}
	if d.Lesson != nil {
		s.Lesson = *d.Lesson
	}
	s.Bells[model.StudentEntry] = model.Bell{At: string(d.StudentEntry), Sound: d.StudentSound, Announcement: d.StudentAnons}
	s.Bells[model.TeacherEntry] = model.Bell{At: string(d.TeacherEntry), Sound: d.TeacherSound, Announcement: d.TeacherAnons}
	s.Bells[model.ClassExit] = model.Bell{At: string(d.ClassExit), Sound: d.ExitSound, Announcement: d.ExitAnons}
	return s
}

func slotToDoc(s model.LessonSlot) slotDoc {
	lesson := s.Lesson
	student := s.Bell(model.StudentEntry)
	teacher := s.Bell(model.TeacherEntry)
	exit := s.Bell(model.ClassExit)
	return slotDoc{
		Lesson:       &lesson,
		StudentEntry: text(student.At),
		TeacherEntry: text(teacher.At),
		ClassExit:    text(exit.At),
		Sound:        s.Sound,
		StudentSound: student.Sound,
		TeacherSound: teacher.Sound,
		ExitSound:    exit.Sound,
		StudentAnons: student.Announcement,
		TeacherAnons: teacher.Announcement,
		ExitAnons:    exit.Announcement,
	}
}

func slotsFromDoc(docs []slotDoc) []model.LessonSlot {
	out := make([]model.LessonSlot, 0, len(docs))
	for i, d := range docs {
		out = append(out, slotFromDoc(d, i))
	}
	return out
}

func slotsToDoc(slots []model.LessonSlot) []slotDoc {
	out := make([]slotDoc, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotToDoc(s))
	}
	return out
}

func dayFromDoc(d dayDoc) model.DayProgram {
	if d.Morning != nil && d.Afternoon != nil {
		split := ""
		if d.Split != nil {
			split = string(*d.Split)
		}
		return &model.ShiftDay{
			Morning:   model.Shift{Active: d.Morning.Active, Slots: slotsFromDoc(d.Morning.Lessons)},
			Afternoon: model.Shift{Active: d.Afternoon.Active, Slots: slotsFromDoc(d.Afternoon.Lessons)},
			Split:     split,
		}
	}
	return &model.SimpleDay{Enabled: d.Active, Slots: slotsFromDoc(d.Lessons)}
}

func dayToDoc(day model.DayProgram) any {
	switch d := day.(type) {
	case *model.ShiftDay:
		split := d.Split
		if strings.TrimSpace(split) == "" {
			split = model.DefaultSplit
		}
		return shiftDayOut{
			Active:    d.Active(),
			Morning:   shiftDoc{Active: d.Morning.Active, Lessons: slotsToDoc(d.Morning.Slots)},
			Afternoon: shiftDoc{Active: d.Afternoon.Active, Lessons: slotsToDoc(d.Afternoon.Slots)},
			Split:     split,
		}
	case *model.SimpleDay:
		return simpleDayOut{Active: d.Enabled, Lessons: slotsToDoc(d.Slots)}
	default:
		return simpleDayOut{Lessons: []slotDoc{}}
	}
}

// DecodeTimetable parses a timetable document. Days missing from the
// document come back inactive and empty so all seven are always present.
func DecodeTimetable(data []byte) (*model.Timetable, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &top); err != nil {
		return nil, fmt.Errorf("failed to parse timetable: %w", err)
	}
	if top == nil {
		return nil, fmt.Errorf("failed to parse timetable: document is null")
	}

	tt := &model.Timetable{}
	var days map[string]json.RawMessage
	if raw, ok := top[keyDays]; ok {
		if err := json.Unmarshal(raw, &days); err != nil {
			return nil, fmt.Errorf("failed to parse timetable days: %w", err)
		}
	}
	for name, raw := range days {
		w, ok := model.ParseDay(name)
		if !ok {
			continue
		}
		var d dayDoc
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		tt.Days[w] = dayFromDoc(d)
	}
	for i := range tt.Days {
		if tt.Days[i] == nil {
			tt.Days[i] = &model.SimpleDay{Slots: []model.LessonSlot{}}
		}
	}

	if raw, ok := top[keySpecialScenarios]; ok {
		tt.SpecialScenarios = append(json.RawMessage(nil), raw...)
	}
	for k, v := range top {
		if k == keyDays || k == keySpecialScenarios {
			continue
		}
		if tt.Extra == nil {
			tt.Extra = map[string]json.RawMessage{}
		}
		tt.Extra[k] = append(json.RawMessage(nil), v...)
	}
	return tt, nil
}

// EncodeTimetable renders tt as indented JSON with the days in week order.
func EncodeTimetable(tt *model.Timetable) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"days":{`)
	for i, w := range model.WeekOrder {
		if i > 0 {
			buf.WriteByte(',')
		}
		day, err := marshal(dayToDoc(tt.Day(w)))
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", model.DayName(w), err)
		}
		name, err := marshal(model.DayName(w))
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(day)
	}
	buf.WriteString(`},"special_scenarios":`)
	if len(bytes.TrimSpace(tt.SpecialScenarios)) == 0 {
		buf.WriteString("{}")
	} else {
		buf.Write(tt.SpecialScenarios)
	}
	if err := writeExtra(&buf, tt.Extra); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return indent(buf.Bytes())
}

func writeExtra(buf *bytes.Buffer, extra map[string]json.RawMessage) error {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		name, err := marshal(k)
		if err != nil {
			return err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(extra[k])
	}
	return nil
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func indent(data []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to format document: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// DefaultTimetable is written when no timetable document exists yet.
func DefaultTimetable() *model.Timetable {
	monday := [][3]string{
		{"08:30", "08:25", "09:10"},
		{"09:20", "09:15", "10:00"},
		{"10:20", "10:15", "11:00"},
		{"11:20", "11:15", "12:00"},
		{"13:00", "12:55", "13:40"},
		{"13:50", "13:45", "14:30"},
	}
	slots := make([]model.LessonSlot, 0, len(monday))
	for i, times := range monday {
		s := model.LessonSlot{Lesson: i + 1, Sound: model.DefaultSound}
		for f, at := range times {
			s.Bells[f].At = at
		}
		slots = append(slots, s)
	}

	tt := &model.Timetable{SpecialScenarios: json.RawMessage("{}")}
	for _, w := range model.WeekOrder {
		active := w != time.Saturday && w != time.Sunday
		tt.Days[w] = &model.SimpleDay{Enabled: active, Slots: []model.LessonSlot{}}
	}
	tt.Days[time.Monday] = &model.SimpleDay{Enabled: true, Slots: slots}
	return tt
}
