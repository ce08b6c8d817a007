package document

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/schoolbell/internal/engine"
	"github.com/verte-zerg/schoolbell/internal/model"
)

const sampleTimetable = `{
  // weekly program
  "days": {
    "Pazartesi": {
      "active": true,
      "lessons": [
        {"lesson": 1, "ogrenci_giris": "08:28", "ogretmen_giris": "08:30", "ders_cikis": "09:10",
         "sound": "ziller/zil2.mp3", "ogretmen_sound": "ziller/ogretmen.mp3", "cikis_anons": "anons/cikis.mp3"},
        {"ogrenci_giris": 920, "ders_cikis": "10:00"},
      ]
    },
    "Salı": {
      "active": true,
      "sabahci": {"active": true, "lessons": [{"lesson": 1, "ogrenci_giris": "07:30"}]},
      "oglenci": {"active": false, "lessons": []},
      "shift_ayirma_saati": "12:30"
    },
    "Çarşamba": {"active": true, "lessons": [], "sabahci": {"active": true, "lessons": []}},
    "Someday": {"active": true, "lessons": []}
  },
  "special_scenarios": {"sinav_haftasi": {"aktif": false}},
  "version": 3,
}`

func TestDecodeTimetable(t *testing.T) {
	tt, err := DecodeTimetable([]byte(sampleTimetable))
	if err != nil {
		t.Fatalf("DecodeTimetable: %v", err)
	}
	for w, d := range tt.Days {
		if d == nil {
			t.Fatalf("%s missing", time.Weekday(w))
		}
	}

	mon, ok := tt.Days[time.Monday].(*model.SimpleDay)
	if !ok || !mon.Enabled || len(mon.Slots) != 2 {
		t.Fatalf("unexpected Monday %+v", tt.Days[time.Monday])
	}
	first := mon.Slots[0]
	if first.Sound != "ziller/zil2.mp3" || first.Bell(model.TeacherEntry).Sound != "ziller/ogretmen.mp3" {
		t.Fatalf("sounds not decoded: %+v", first)
	}
	if first.Bell(model.ClassExit).Announcement != "anons/cikis.mp3" {
		t.Fatalf("announcement not decoded: %+v", first)
	}
	second := mon.Slots[1]
	if second.Lesson != 2 {
		t.Fatalf("missing lesson number should default to position, got %d", second.Lesson)
	}
	if second.Bell(model.StudentEntry).At != "920" {
		t.Fatalf("non-string time should survive as text, got %q", second.Bell(model.StudentEntry).At)
	}
	if _, ok := second.Time(model.StudentEntry); ok {
		t.Fatalf("non-string time must not parse")
	}
	if second.Bell(model.TeacherEntry).Defined() {
		t.Fatalf("absent teacher bell should be undefined")
	}

	tue, ok := tt.Days[time.Tuesday].(*model.ShiftDay)
	if !ok || tue.Split != "12:30" || !tue.Morning.Active || tue.Afternoon.Active {
		t.Fatalf("unexpected Tuesday %+v", tt.Days[time.Tuesday])
	}

	if _, ok := tt.Days[time.Wednesday].(*model.SimpleDay); !ok {
		t.Fatalf("a single shift object must not switch to shift mode")
	}
	if tt.Days[time.Sunday].Active() {
		t.Fatalf("missing day must be inactive")
	}
	if string(tt.Extra["version"]) != "3" {
		t.Fatalf("unknown key not kept: %v", tt.Extra)
	}
}

func TestTimetableRoundTrip(t *testing.T) {
	tt, err := DecodeTimetable([]byte(sampleTimetable))
	if err != nil {
		t.Fatalf("DecodeTimetable: %v", err)
	}
	data, err := EncodeTimetable(tt)
	if err != nil {
		t.Fatalf("EncodeTimetable: %v", err)
	}
	if !strings.Contains(string(data), `"Pazartesi"`) || strings.Index(string(data), "Pazartesi") > strings.Index(string(data), "Pazar\"") {
		t.Fatalf("days should be written Monday first:\n%s", data)
	}
	if strings.Contains(string(data), "Someday") {
		t.Fatalf("unknown day names are dropped")
	}

	again, err := DecodeTimetable(data)
	if err != nil {
		t.Fatalf("DecodeTimetable(encoded): %v", err)
	}
	var a, b any
	if err := json.Unmarshal(tt.SpecialScenarios, &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := json.Unmarshal(again.SpecialScenarios, &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !jsonEqual(a, b) {
		t.Fatalf("special scenarios changed: %s vs %s", tt.SpecialScenarios, again.SpecialScenarios)
	}
	if string(again.Extra["version"]) != "3" {
		t.Fatalf("extra key lost: %v", again.Extra)
	}

	mon := again.Days[time.Monday].(*model.SimpleDay)
	orig := tt.Days[time.Monday].(*model.SimpleDay)
	for i := range orig.Slots {
		if mon.Slots[i] != orig.Slots[i] {
			t.Fatalf("slot %d changed: %+v vs %+v", i, orig.Slots[i], mon.Slots[i])
		}
	}
	tue := again.Days[time.Tuesday].(*model.ShiftDay)
	if tue.Split != "12:30" || len(tue.Morning.Slots) != 1 {
		t.Fatalf("shift day changed: %+v", tue)
	}
}

func jsonEqual(a, b any) bool {
	x, _ := json.Marshal(a)
	y, _ := json.Marshal(b)
	return string(x) == string(y)
}

func TestDecodeTimetableRejectsGarbage(t *testing.T) {
	if _, err := DecodeTimetable([]byte("{days: nope")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadTimetableWritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "schedule.json")
	tt, err := LoadTimetable(path)
	if err != nil {
		t.Fatalf("LoadTimetable: %v", err)
	}
	mon := tt.Days[time.Monday].(*model.SimpleDay)
	if len(mon.Slots) != 6 || mon.Slots[5].Bell(model.ClassExit).At != "14:30" {
		t.Fatalf("unexpected default Monday %+v", mon)
	}
	if tt.Days[time.Saturday].Active() || !tt.Days[time.Friday].Active() {
		t.Fatalf("unexpected default active flags")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default document not written: %v", err)
	}

	again, err := LoadTimetable(path)
	if err != nil {
		t.Fatalf("LoadTimetable(existing): %v", err)
	}
	if got := again.Days[time.Monday].(*model.SimpleDay).Slots[0]; got != mon.Slots[0] {
		t.Fatalf("reloaded slot differs: %+v vs %+v", got, mon.Slots[0])
	}
}

func TestLoadTimetableCorruptReturnsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tt, err := LoadTimetable(path)
	if err == nil {
		t.Fatalf("expected error for corrupt document")
	}
	if tt == nil || len(tt.Days[time.Monday].(*model.SimpleDay).Slots) != 6 {
		t.Fatalf("expected default timetable alongside the error")
	}
	data, _ := os.ReadFile(path)
	if string(data) != "not json" {
		t.Fatalf("corrupt document must not be overwritten")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	input := `{
  "volumes": {"ogrenci": 80, "cikis": 120},
  "sounds": {"ogrenci": "ziller/ozel.mp3", "mars": "marslar/istiklal.mp3"},
  "mode": "sinav",
  "system": {"tray": false},
  "security": {"password_hash": "abc"},
  "schedule_defaults": {"standart_teneffus": 15},
  "theme": "dark"
}`
	s, err := DecodeSettings([]byte(input))
	if err != nil {
		t.Fatalf("DecodeSettings: %v", err)
	}
	if s.Mode != model.ModeExam {
		t.Fatalf("unexpected mode %q", s.Mode)
	}
	if s.Volume(model.CategoryStudent) != 80 || s.Volume(model.CategoryExit) != 100 || s.Volume(model.CategoryTeacher) != 100 {
		t.Fatalf("unexpected volumes %v", s.Volumes)
	}
	if s.Sound(model.CategoryStudent) != "ziller/ozel.mp3" || s.Sound(model.CategoryTeacher) != "" {
		t.Fatalf("unexpected sounds %v", s.Sounds)
	}
	if s.System.Tray || s.System.Startup {
		t.Fatalf("unexpected system %+v", s.System)
	}
	if s.PasswordHash == nil || *s.PasswordHash != "abc" {
		t.Fatalf("password hash not decoded")
	}
	if s.Defaults.Gap != 15 || s.Defaults.LessonDuration != 40 {
		t.Fatalf("unexpected defaults %+v", s.Defaults)
	}

	path := filepath.Join(t.TempDir(), "settings.json")
	if err := SaveSettings(path, s); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	again, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if string(again.Extra["theme"]) != `"dark"` {
		t.Fatalf("unknown key lost: %v", again.Extra)
	}
	if again.Mode != model.ModeExam || again.Defaults.Gap != 15 || again.Volumes[model.CategoryExit] != 120 {
		t.Fatalf("settings changed on round trip: %+v", again)
	}
}

func TestLoadSettingsMissingAndCorrupt(t *testing.T) {
	dir := t.TempDir()
	s, err := LoadSettings(filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("missing settings must not be an error: %v", err)
	}
	if s.Sound(model.CategoryMarch) != "marslar/istiklal.mp3" || !s.System.Tray {
		t.Fatalf("expected defaults, got %+v", s)
	}

	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, []byte(`{"volumes": "loud"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err = LoadSettings(path)
	if err == nil {
		t.Fatalf("expected error for broken settings")
	}
	if s.Volume(model.CategoryStudent) != 100 || s.Mode != model.ModeNormal {
		t.Fatalf("expected defaults alongside the error, got %+v", s)
	}
}

func TestMissingSettingsLeaveSlotSoundsInCharge(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	slot := model.LessonSlot{Lesson: 1, Sound: "ziller/genel.mp3"}
	slot.Bells[model.StudentEntry].Sound = "ziller/ogrenci.mp3"
	if got := engine.ResolveSound(slot, model.StudentEntry, s.Sounds); got != "ziller/ogrenci.mp3" {
		t.Fatalf("field sound should win without settings, got %q", got)
	}
	if got := engine.ResolveSound(slot, model.ClassExit, s.Sounds); got != "ziller/genel.mp3" {
		t.Fatalf("slot sound should win without settings, got %q", got)
	}
}

func TestDecodeSettingsKeepsGoodValues(t *testing.T) {
	input := `{
  "volumes": {"ogrenci": 80.5, "ogretmen": "loud", "cikis": 60},
  "sounds": {"ogrenci": "ziller/ozel.mp3", "ogretmen": 7},
  "security": {"password_hash": "abc"},
  "schedule_defaults": {"standart_teneffus": "on", "standart_ders_suresi": 35},
  "mode": "tatil"
}`
	s, err := DecodeSettings([]byte(input))
	if err == nil {
		t.Fatalf("expected the bad values to be reported")
	}
	if s.PasswordHash == nil || *s.PasswordHash != "abc" {
		t.Fatalf("password hash must survive a bad volume")
	}
	if s.Volume(model.CategoryStudent) != 81 || s.Volume(model.CategoryExit) != 60 || s.Volume(model.CategoryTeacher) != 100 {
		t.Fatalf("unexpected volumes %v", s.Volumes)
	}
	if s.Sound(model.CategoryStudent) != "ziller/ozel.mp3" || s.Sound(model.CategoryTeacher) != "" {
		t.Fatalf("unexpected sounds %v", s.Sounds)
	}
	if s.Defaults.Gap != 10 || s.Defaults.LessonDuration != 35 {
		t.Fatalf("unexpected defaults %+v", s.Defaults)
	}
	if s.Mode != model.ModeHoliday {
		t.Fatalf("unexpected mode %q", s.Mode)
	}

	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(input), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	loaded, err := LoadSettings(path)
	if err == nil || loaded.PasswordHash == nil {
		t.Fatalf("LoadSettings should return the readable values with the error, got %+v err=%v", loaded, err)
	}
}
