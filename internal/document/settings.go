package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/tidwall/jsonc"

	"github.com/verte-zerg/schoolbell/internal/model"
)

const (
	keyVolumes          = "volumes"
	keySounds           = "sounds"
	keySystem           = "system"
	keySecurity         = "security"
	keyMode             = "mode"
	keyScheduleDefaults = "schedule_defaults"
)

var settingsKeys = []string{keyVolumes, keySounds, keySystem, keySecurity, keyMode, keyScheduleDefaults}

type systemDoc struct {
	Startup *bool `json:"startup"`
	Tray    *bool `json:"tray"`
}

type securityDoc struct {
	PasswordHash *string `json:"password_hash"`
}

type defaultsDoc struct {
	FirstLesson      *string `json:"ilk_ders_baslangic"`
	Gap              *int    `json:"standart_teneffus"`
	LessonsPerDay    *int    `json:"gunluk_ders_sayisi"`
	LunchDuration    *int    `json:"ogle_arasi_suresi"`
	LunchAfterLesson *int    `json:"ogle_arasi_ders_no"`
	LessonDuration   *int    `json:"standart_ders_suresi"`
	StudentLead      *int    `json:"ogrenci_giris_farki"`
}

// DefaultSettings mirrors a freshly installed bell.
func DefaultSettings() model.Settings {
	return model.Settings{
		Volumes: map[string]int{
			model.CategoryStudent: 100,
			model.CategoryTeacher: 100,
			model.CategoryExit:    100,
			model.CategoryMarch:   100,
			model.CategorySiren:   100,
		},
		// Bell categories stay empty so slot sounds apply until the
		// operator picks one.
		Sounds: map[string]string{
			model.CategoryStudent:         "",
			model.CategoryTeacher:         "",
			model.CategoryExit:            "",
			model.CategoryMarch:           "marslar/istiklal.mp3",
			model.CategorySiren:           "siren/siren.mp3",
			model.CategoryTribute:         "",
			model.CategorySirenMarchSiren: "siren/siren.mp3",
			model.CategorySirenMarchMarch: "marslar/istiklal.mp3",
		},
		Mode:     model.ModeNormal,
		System:   model.SystemSettings{Startup: false, Tray: true},
		Defaults: model.DefaultScheduleDefaults(),
	}
}

// DecodeSettings parses a settings document. Only a document that is not
// a JSON object is rejected outright; in that case DefaultSettings comes
// back with the error. Otherwise a bad value falls back to its default
// alone: the rest of the document is kept and the problems are returned
// joined, next to usable settings.
func DecodeSettings(data []byte) (model.Settings, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &top); err != nil {
		return DefaultSettings(), fmt.Errorf("failed to parse settings: %w", err)
	}

	def := DefaultSettings()
	s := model.Settings{
		Sounds:   map[string]string{},
		Volumes:  map[string]int{},
		Mode:     model.ModeNormal,
		System:   def.System,
		Defaults: def.Defaults,
	}
	var errs []error

	if raw, ok := top[keySounds]; ok {
		errs = append(errs, decodeSounds(raw, s.Sounds)...)
	}
	if raw, ok := top[keyVolumes]; ok {
		errs = append(errs, decodeVolumes(raw, s.Volumes)...)
	}
	if raw, ok := top[keyMode]; ok {
		var mode string
		if err := json.Unmarshal(raw, &mode); err != nil {
			errs = append(errs, fmt.Errorf("failed to parse mode: %w", err))
		} else if m, ok := model.ParseMode(mode); ok {
			s.Mode = m
		}
	}
	if raw, ok := top[keySystem]; ok {
		var sys systemDoc
		if err := json.Unmarshal(raw, &sys); err != nil {
			errs = append(errs, fmt.Errorf("failed to parse system: %w", err))
		}
		if sys.Startup != nil {
			s.System.Startup = *sys.Startup
		}
		if sys.Tray != nil {
			s.System.Tray = *sys.Tray
		}
	}
	if raw, ok := top[keySecurity]; ok {
		var sec securityDoc
		if err := json.Unmarshal(raw, &sec); err != nil {
			errs = append(errs, fmt.Errorf("failed to parse security: %w", err))
		}
		s.PasswordHash = sec.PasswordHash
	}
	if raw, ok := top[keyScheduleDefaults]; ok {
		errs = append(errs, decodeDefaults(raw, &s.Defaults)...)
	}

	for k, v := range top {
		if isSettingsKey(k) {
			continue
		}
		if s.Extra == nil {
			s.Extra = map[string]json.RawMessage{}
		}
		s.Extra[k] = append(json.RawMessage(nil), v...)
	}
	return s, errors.Join(errs...)
}

func decodeSounds(raw json.RawMessage, dst map[string]string) []error {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return []error{fmt.Errorf("failed to parse sounds: %w", err)}
	}
	var errs []error
	for k, v := range entries {
		var sound string
		if err := json.Unmarshal(v, &sound); err != nil {
			errs = append(errs, fmt.Errorf("failed to parse sound %q: %w", k, err))
			continue
		}
		dst[k] = sound
	}
	return errs
}

// decodeVolumes rounds fractional volumes; anything that is not a number
// is skipped so the category plays at its default volume.
func decodeVolumes(raw json.RawMessage, dst map[string]int) []error {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return []error{fmt.Errorf("failed to parse volumes: %w", err)}
	}
	var errs []error
	for k, v := range entries {
		var volume float64
		if err := json.Unmarshal(v, &volume); err != nil {
			errs = append(errs, fmt.Errorf("failed to parse volume %q: %w", k, err))
			continue
		}
		dst[k] = int(math.Round(volume))
	}
	return errs
}

func decodeDefaults(raw json.RawMessage, dst *model.ScheduleDefaults) []error {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return []error{fmt.Errorf("failed to parse schedule defaults: %w", err)}
	}
	var errs []error
	for k, v := range entries {
		// Each key is decoded alone so one bad value keeps its default.
		single, err := json.Marshal(map[string]json.RawMessage{k: v})
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to parse schedule default %q: %w", k, err))
			continue
		}
		var d defaultsDoc
		if err := json.Unmarshal(single, &d); err != nil {
			errs = append(errs, fmt.Errorf("failed to parse schedule default %q: %w", k, err))
			continue
		}
		applyDefaults(dst, d)
	}
	return errs
}

func applyDefaults(dst *model.ScheduleDefaults, d defaultsDoc) {
	if d.FirstLesson != nil {
		dst.FirstLesson = *d.FirstLesson
	}
	setInt(&dst.Gap, d.Gap)
	setInt(&dst.LessonsPerDay, d.LessonsPerDay)
	setInt(&dst.LunchDuration, d.LunchDuration)
	setInt(&dst.LunchAfterLesson, d.LunchAfterLesson)
	setInt(&dst.LessonDuration, d.LessonDuration)
	setInt(&dst.StudentLead, d.StudentLead)
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func isSettingsKey(k string) bool {
	for _, known := range settingsKeys {
		if k == known {
			return true
		}
	}
	return false
}

// EncodeSettings renders s as indented JSON. Unknown keys from the
// original document are written back after the known ones.
func EncodeSettings(s model.Settings) ([]byte, error) {
	mode := s.Mode
	if mode == "" {
		mode = model.ModeNormal
	}
	startup, tray := s.System.Startup, s.System.Tray
	d := s.Defaults
	known := []struct {
		key   string
		value any
	}{
		{keyVolumes, nonNilInts(s.Volumes)},
		{keySounds, nonNilStrings(s.Sounds)},
		{keySystem, systemDoc{Startup: &startup, Tray: &tray}},
		{keySecurity, securityDoc{PasswordHash: s.PasswordHash}},
		{keyMode, string(mode)},
		{keyScheduleDefaults, defaultsDoc{
			FirstLesson:      &d.FirstLesson,
			Gap:              &d.Gap,
			LessonsPerDay:    &d.LessonsPerDay,
			LunchDuration:    &d.LunchDuration,
			LunchAfterLesson: &d.LunchAfterLesson,
			LessonDuration:   &d.LessonDuration,
			StudentLead:      &d.StudentLead,
		}},
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range known {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := marshal(kv.key)
		if err != nil {
			return nil, err
		}
		value, err := marshal(kv.value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", kv.key, err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	if err := writeExtra(&buf, s.Extra); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return indent(buf.Bytes())
}

func nonNilInts(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}

func nonNilStrings(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
