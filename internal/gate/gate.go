// Package gate holds the operational state that decides whether an
// automatic bell may ring.
package gate

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/verte-zerg/schoolbell/internal/model"
)

// State is a snapshot of the gate.
type State struct {
	Open bool
	// ReenableAt is set only while closed until a time of day.
	ReenableAt *model.TimeOfDay
	Mode       model.Mode
}

// Gate is safe for concurrent use. Reads may mutate: CanRing performs the
// lazy re-enable when the deadline has passed.
type Gate struct {
	mu           sync.Mutex
	open         bool
	reenableAt   *model.TimeOfDay
	mode         model.Mode
	passwordHash string
}

// New returns an open gate in the given mode.
func New(mode model.Mode) *Gate {
	if mode == "" {
		mode = model.ModeNormal
	}
	return &Gate{open: true, mode: mode}
}

// CanRing reports whether an automatic bell may ring at now. A closed
// gate with a passed deadline opens as a side effect.
func (g *Gate) CanRing(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reopenLocked(now)
	return g.open && g.mode != model.ModeHoliday
}

// Reopened reports whether the call performed the lazy re-enable. It is
// CanRing for callers that want to log the transition.
func (g *Gate) Reopened(now time.Time) (canRing, reopened bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	reopened = g.reopenLocked(now)
	return g.open && g.mode != model.ModeHoliday, reopened
}

func (g *Gate) reopenLocked(now time.Time) bool {
	if g.open || g.reenableAt == nil {
		return false
	}
	if model.ClockOf(now).Before(*g.reenableAt) {
		return false
	}
	g.open = true
	g.reenableAt = nil
	return true
}

// Open enables ringing and drops any pending deadline.
func (g *Gate) Open() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open = true
	g.reenableAt = nil
}

// Close disables ringing until Open is called.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open = false
	g.reenableAt = nil
}

// CloseUntil disables ringing until the first query at or after at.
func (g *Gate) CloseUntil(at model.TimeOfDay) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open = false
	g.reenableAt = &at
}

// SetMode changes the operating mode.
func (g *Gate) SetMode(m model.Mode) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mode = m
}

// Mode returns the operating mode.
func (g *Gate) Mode() model.Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

// Snapshot returns the current state without re-evaluating the deadline.
func (g *Gate) Snapshot() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := State{Open: g.open, Mode: g.mode}
	if g.reenableAt != nil {
		at := *g.reenableAt
		st.ReenableAt = &at
	}
	return st
}

// SetPasswordHash installs the hex SHA-256 of the operator password.
// An empty hash disables the check.
func (g *Gate) SetPasswordHash(hash string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.passwordHash = hash
}

// CheckPassword reports whether password matches the installed hash.
func (g *Gate) CheckPassword(password string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.passwordHash == "" {
		return true
	}
	return HashPassword(password) == g.passwordHash
}

// HashPassword returns the hex SHA-256 stored in the settings document.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
