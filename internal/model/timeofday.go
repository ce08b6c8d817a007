package model

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// ErrBadTime reports a clock string that is not in 24-hour HH:MM form.
var ErrBadTime = errors.New("invalid time of day")

var clockPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):([0-5][0-9])$`)

// TimeOfDay is a local wall-clock time with minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "H:MM" or "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrBadTime, s)
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	return TimeOfDay{Hour: h, Minute: min}, nil
}

// ParseLooseTimeOfDay accepts HH:MM as well as bare digits typed into an
// editor cell: "830" becomes 08:30 and "1430" becomes 14:30.
func ParseLooseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if t, err := ParseTimeOfDay(s); err == nil {
		return t, nil
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return TimeOfDay{}, fmt.Errorf("%w: %q", ErrBadTime, s)
		}
	}
	var h, min int
	switch len(s) {
	case 3:
		h, _ = strconv.Atoi(s[:1])
		min, _ = strconv.Atoi(s[1:])
	case 4:
		h, _ = strconv.Atoi(s[:2])
		min, _ = strconv.Atoi(s[2:])
	default:
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrBadTime, s)
	}
	if h > 23 || min > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrBadTime, s)
	}
	return TimeOfDay{Hour: h, Minute: min}, nil
}

// MustTime parses s and panics on failure. Intended for literals.
func MustTime(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ClockOf returns the wall-clock minute of t.
func ClockOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// FromMinutes builds a TimeOfDay from minutes since midnight, wrapping
// around the day in both directions.
func FromMinutes(m int) TimeOfDay {
	m %= minutesPerDay
	if m < 0 {
		m += minutesPerDay
	}
	return TimeOfDay{Hour: m / 60, Minute: m % 60}
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Add shifts t by the given number of minutes, wrapping at midnight.
func (t TimeOfDay) Add(minutes int) TimeOfDay {
	return FromMinutes(t.Minutes() + minutes)
}

// Sub returns t - o in minutes. The result may be negative.
func (t TimeOfDay) Sub(o TimeOfDay) int {
	return t.Minutes() - o.Minutes()
}

// Before reports whether t is strictly earlier in the day than o.
func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.Minutes() < o.Minutes()
}

// On returns t on the calendar date of day, in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, 0, 0, day.Location())
}

// String formats as zero-padded HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}
