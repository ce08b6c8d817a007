package player

import (
	"fmt"
)

// State of the sequencer.
type State int

// Sequencer states.
const (
	Idle State = iota
	PlayingPrimary
	PlayingSecondary
)

func (s State) String() string {
	switch s {
	case PlayingPrimary:
		return "playing-primary"
	case PlayingSecondary:
		return "playing-secondary"
	default:
		return "idle"
	}
}

// Step is one sound of a cue.
type Step struct {
	Sound  string
	Volume int
	// Optional steps are skipped when their sound cannot be resolved.
	Optional bool
}

// Cue is a primary sound and at most one follow-up.
type Cue struct {
	Label     string
	Primary   Step
	Secondary *Step
}

// Resolver maps a sound identifier to a playable path.
type Resolver interface {
	Resolve(name string) (string, error)
}

// Started describes a sound that began playing.
type Started struct {
	Label     string
	Sound     string
	Path      string
	Secondary bool
}

// Sequencer drives Output through Idle, PlayingPrimary and
// PlayingSecondary. It is owned by one goroutine; Output completions are
// reported through notify with the generation they belong to and must be
// fed back through Finished on that goroutine.
type Sequencer struct {
	out      Output
	resolver Resolver
	notify   func(gen uint64)

	state   State
	gen     uint64
	pending *Step
	label   string
}

// NewSequencer wires an output. notify is called from the output's
// goroutine.
func NewSequencer(out Output, resolver Resolver, notify func(gen uint64)) *Sequencer {
	return &Sequencer{out: out, resolver: resolver, notify: notify}
}

// State returns the current state.
func (s *Sequencer) State() State {
	return s.state
}

// Generation returns the id of the current playback.
func (s *Sequencer) Generation() uint64 {
	return s.gen
}

// Play stops anything in flight, drops any pending follow-up and starts
// cue. An optional primary that cannot be resolved falls through to the
// secondary.
func (s *Sequencer) Play(cue Cue) (Started, error) {
	s.reset()
	s.label = cue.Label

	primary := cue.Primary
	secondary := cue.Secondary
	path, err := s.resolver.Resolve(primary.Sound)
	if err != nil && primary.Optional && secondary != nil {
		primary, secondary = *secondary, nil
		path, err = s.resolver.Resolve(primary.Sound)
	}
	if err != nil {
		return Started{Label: cue.Label, Sound: primary.Sound}, err
	}
	if err := s.start(path, primary.Volume); err != nil {
		return Started{Label: cue.Label, Sound: primary.Sound, Path: path}, err
	}
	s.state = PlayingPrimary
	s.pending = secondary
	return Started{Label: cue.Label, Sound: primary.Sound, Path: path}, nil
}

// Finished handles a completion for generation gen. Stale completions are
// ignored. When a follow-up is pending it is started and returned.
func (s *Sequencer) Finished(gen uint64) (*Started, error) {
	if gen != s.gen || s.state == Idle {
		return nil, nil
	}
	if s.state == PlayingSecondary || s.pending == nil {
		s.state = Idle
		return nil, nil
	}

	next := *s.pending
	s.pending = nil
	s.gen++
	path, err := s.resolver.Resolve(next.Sound)
	if err != nil {
		s.state = Idle
		return &Started{Label: s.label, Sound: next.Sound, Secondary: true}, err
	}
	if err := s.start(path, next.Volume); err != nil {
		return &Started{Label: s.label, Sound: next.Sound, Path: path, Secondary: true}, err
	}
	s.state = PlayingSecondary
	return &Started{Label: s.label, Sound: next.Sound, Path: path, Secondary: true}, nil
}

// Stop silences the output and cancels any pending follow-up.
func (s *Sequencer) Stop() {
	s.reset()
}

func (s *Sequencer) reset() {
	s.gen++
	s.pending = nil
	s.state = Idle
	s.out.Stop()
}

func (s *Sequencer) start(path string, volume int) error {
	gen := s.gen
	err := s.out.Start(path, clampVolume(volume), func() {
		if s.notify != nil {
			s.notify(gen)
		}
	})
	if err != nil {
		s.state = Idle
		return fmt.Errorf("play %s: %w", path, err)
	}
	return nil
}
