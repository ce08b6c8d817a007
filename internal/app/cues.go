package app

import (
	"strings"

	"github.com/verte-zerg/schoolbell/internal/model"
	"github.com/verte-zerg/schoolbell/internal/player"
)

// Built-in sounds for the ceremonial cues.
const (
	DefaultMarch = "marslar/istiklal.mp3"
	DefaultSiren = "siren/siren.mp3"
)

// CueKind names a manual cue.
type CueKind string

// Manual cues.
const (
	CueStudent    CueKind = "student"
	CueTeacher    CueKind = "teacher"
	CueExit       CueKind = "exit"
	CueMarch      CueKind = "march"
	CueSiren      CueKind = "siren"
	CueTribute    CueKind = "tribute"
	CueSirenMarch CueKind = "siren-march"
	CueStop       CueKind = "stop"
)

// CueKinds lists the cues in menu order.
var CueKinds = []CueKind{CueStudent, CueTeacher, CueExit, CueMarch, CueSiren, CueTribute, CueSirenMarch, CueStop}

// ParseCue accepts the English name or the settings category.
func ParseCue(s string) (CueKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "student", "ogrenci":
		return CueStudent, true
	case "teacher", "ogretmen":
		return CueTeacher, true
	case "exit", "cikis":
		return CueExit, true
	case "march", "mars":
		return CueMarch, true
	case "siren":
		return CueSiren, true
	case "tribute", "saygi":
		return CueTribute, true
	case "siren-march", "siren_mars":
		return CueSirenMarch, true
	case "stop", "dur":
		return CueStop, true
	default:
		return "", false
	}
}

// Label is the on-screen and log name of the cue.
func (k CueKind) Label() string {
	switch k {
	case CueStudent:
		return "Öğrenci Zili"
	case CueTeacher:
		return "Öğretmen Zili"
	case CueExit:
		return "Çıkış Zili"
	case CueMarch:
		return "İstiklal Marşı"
	case CueSiren:
		return "Siren"
	case CueTribute:
		return "Saygı Duruşu + İstiklal Marşı"
	case CueSirenMarch:
		return "Siren + İstiklal Marşı"
	case CueStop:
		return "Ses Durduruldu"
	default:
		return string(k)
	}
}

func soundOr(s model.Settings, category, fallback string) string {
	if v := s.Sound(category); v != "" {
		return v
	}
	return fallback
}

// ManualCue builds the player cue for kind from the settings. CueStop has
// no cue.
func ManualCue(kind CueKind, s model.Settings) (player.Cue, bool) {
	cue := player.Cue{Label: kind.Label()}
	bell := func(category string) player.Step {
		return player.Step{Sound: soundOr(s, category, model.DefaultSound), Volume: s.Volume(category)}
	}
	march := player.Step{Sound: soundOr(s, model.CategoryMarch, DefaultMarch), Volume: s.Volume(model.CategoryMarch)}

	switch kind {
	case CueStudent:
		cue.Primary = bell(model.CategoryStudent)
	case CueTeacher:
		cue.Primary = bell(model.CategoryTeacher)
	case CueExit:
		cue.Primary = bell(model.CategoryExit)
	case CueMarch:
		cue.Primary = march
	case CueSiren:
		cue.Primary = player.Step{Sound: soundOr(s, model.CategorySiren, DefaultSiren), Volume: s.Volume(model.CategorySiren)}
	case CueTribute:
		// Without a tribute sound the march plays alone.
		tribute := s.Sound(model.CategoryTribute)
		if tribute == "" {
			cue.Primary = march
			break
		}
		cue.Primary = player.Step{Sound: tribute, Volume: s.Volume(model.CategoryMarch), Optional: true}
		cue.Secondary = &march
	case CueSirenMarch:
		siren := soundOr(s, model.CategorySirenMarchSiren, soundOr(s, model.CategorySiren, DefaultSiren))
		cue.Primary = player.Step{Sound: siren, Volume: s.Volume(model.CategorySiren)}
		cue.Secondary = &player.Step{
			Sound:  soundOr(s, model.CategorySirenMarchMarch, soundOr(s, model.CategoryMarch, DefaultMarch)),
			Volume: s.Volume(model.CategoryMarch),
		}
	default:
		return player.Cue{}, false
	}
	return cue, true
}

// RingCue builds the cue for an automatic bell. The announcement, if any,
// follows the bell at the same volume.
func RingCue(ev model.RingEvent, s model.Settings) player.Cue {
	volume := s.Volume(ev.Kind.Category())
	cue := player.Cue{
		Label:   ev.Description,
		Primary: player.Step{Sound: ev.Sound, Volume: volume},
	}
	if a := strings.TrimSpace(ev.Announcement); a != "" {
		cue.Secondary = &player.Step{Sound: a, Volume: volume}
	}
	return cue
}
