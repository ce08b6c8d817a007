package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/verte-zerg/schoolbell/internal/clock"
	"github.com/verte-zerg/schoolbell/internal/engine"
	"github.com/verte-zerg/schoolbell/internal/gate"
	"github.com/verte-zerg/schoolbell/internal/model"
	"github.com/verte-zerg/schoolbell/internal/player"
	"github.com/verte-zerg/schoolbell/internal/sounds"
	"go.uber.org/zap"
)

// TickInterval is how often the wall clock is matched.
const TickInterval = time.Second

const eventBuffer = 64

// Options configures a Scheduler. Clock defaults to the real clock, Gate
// to an open gate in the settings mode and Logger to a no-op logger.
type Options struct {
	Clock     clock.Clock
	Timetable *model.Timetable
	Settings  model.Settings
	Gate      *gate.Gate
	Output    player.Output
	Resolver  player.Resolver
	Journal   *Journal
	Logger    *zap.Logger
}

// Scheduler owns the engine and the sequencer. Both are touched only by
// the Run goroutine; other goroutines talk to it through channels.
type Scheduler struct {
	clock   clock.Clock
	engine  *engine.Engine
	gate    *gate.Gate
	seq     *player.Sequencer
	journal *Journal
	logger  *zap.Logger

	settings model.Settings

	cues      chan CueKind
	finished  chan uint64
	reloads   chan *model.Timetable
	settingsC chan model.Settings
	events    chan model.LogEntry
	stopChan  chan struct{}

	mu        sync.Mutex
	timetable *model.Timetable
	playing   string
}

// NewScheduler wires a scheduler.
func NewScheduler(opts Options) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Gate == nil {
		opts.Gate = gate.New(opts.Settings.Mode)
	}
	if opts.Journal == nil {
		opts.Journal = NewJournal(nil, "", opts.Logger)
	}
	if opts.Timetable == nil {
		opts.Timetable = &model.Timetable{}
	}
	s := &Scheduler{
		clock:     opts.Clock,
		engine:    engine.New(opts.Timetable),
		gate:      opts.Gate,
		journal:   opts.Journal,
		logger:    opts.Logger,
		settings:  opts.Settings,
		cues:      make(chan CueKind, 8),
		finished:  make(chan uint64, 8),
		reloads:   make(chan *model.Timetable, 1),
		settingsC: make(chan model.Settings, 1),
		events:    make(chan model.LogEntry, eventBuffer),
		stopChan:  make(chan struct{}),
		timetable: opts.Timetable,
	}
	s.seq = player.NewSequencer(opts.Output, opts.Resolver, s.notifyFinished)
	return s
}

// Gate returns the gate consulted before every automatic bell.
func (s *Scheduler) Gate() *gate.Gate {
	return s.gate
}

// Journal returns the ring log.
func (s *Scheduler) Journal() *Journal {
	return s.journal
}

// Events delivers every ring log entry recorded by the scheduler. Entries
// are dropped when nobody reads.
func (s *Scheduler) Events() <-chan model.LogEntry {
	return s.events
}

// Timetable returns the timetable currently in effect.
func (s *Scheduler) Timetable() *model.Timetable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timetable
}

// Playing returns the label of the cue being played, or "".
func (s *Scheduler) Playing() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Now reads the scheduler clock.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// Recent returns the latest ring log entries, oldest first.
func (s *Scheduler) Recent() []model.LogEntry {
	return s.journal.Recent()
}

// Next predicts the next bell from the current timetable.
func (s *Scheduler) Next() (engine.Prediction, bool) {
	return engine.Next(s.clock.Now(), s.Timetable())
}

// Ring queues a manual cue. It bypasses the gate.
func (s *Scheduler) Ring(kind CueKind) {
	select {
	case s.cues <- kind:
	case <-s.stopChan:
	}
}

// Reload replaces the timetable. Bells already rung today are not rung
// again.
func (s *Scheduler) Reload(tt *model.Timetable) {
	s.mu.Lock()
	s.timetable = tt
	s.mu.Unlock()
	s.replace(s.reloads, tt)
}

// UpdateSettings replaces the sounds and volumes used for the next bell.
func (s *Scheduler) UpdateSettings(st model.Settings) {
	select {
	case <-s.settingsC:
	default:
	}
	select {
	case s.settingsC <- st:
	case <-s.stopChan:
	}
}

func (s *Scheduler) replace(ch chan *model.Timetable, tt *model.Timetable) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- tt:
	case <-s.stopChan:
	}
}

func (s *Scheduler) notifyFinished(gen uint64) {
	select {
	case s.finished <- gen:
	case <-s.stopChan:
	}
}

// Run drives the scheduler until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Starting bell scheduler", zap.String("run_id", s.journal.RunID()))
	s.record(model.LogEntry{Source: model.SourceSystem, Kind: "start", Description: "Zil sistemi başlatıldı"})

	ticker := s.clock.NewTicker(TickInterval)
	defer ticker.Stop()
	defer close(s.stopChan)

	for {
		select {
		case now := <-ticker.C:
			s.tick(now)
		case kind := <-s.cues:
			s.manual(kind)
		case gen := <-s.finished:
			s.completed(gen)
		case tt := <-s.reloads:
			s.engine.Reload(tt)
			s.logger.Info("Timetable reloaded")
		case st := <-s.settingsC:
			s.settings = st
			s.logger.Info("Settings reloaded")
		case <-ctx.Done():
			s.seq.Stop()
			s.setPlaying("")
			s.record(model.LogEntry{Source: model.SourceSystem, Kind: "stop", Description: "Zil sistemi durduruldu"})
			s.logger.Info("Bell scheduler stopped")
			return nil
		}
	}
}

func (s *Scheduler) tick(now time.Time) {
	canRing, reopened := s.gate.Reopened(now)
	if reopened {
		s.record(model.LogEntry{At: now, Source: model.SourceSystem, Kind: "gate", Description: "Zil otomatik olarak açıldı"})
	}

	ev, ok := s.engine.Tick(now, s.settings.Sounds)
	if !ok {
		return
	}
	entry := model.LogEntry{
		At:          now,
		Kind:        ev.Kind.String(),
		Lesson:      ev.Lesson,
		Description: ev.Description,
		Sound:       ev.Sound,
	}
	if !canRing {
		entry.Source = model.SourceSuppressed
		entry.Description = fmt.Sprintf("%s (zil kapalı: %s)", ev.Description, s.gate.Mode().Label())
		s.record(entry)
		return
	}

	started, err := s.seq.Play(RingCue(ev, s.settings))
	if err != nil {
		s.playError(entry, started.Sound, err)
		return
	}
	s.setPlaying(ev.Description)
	entry.Source = model.SourceAutomatic
	s.record(entry)
}

func (s *Scheduler) manual(kind CueKind) {
	now := s.clock.Now()
	entry := model.LogEntry{At: now, Source: model.SourceManual, Kind: string(kind), Description: kind.Label()}
	if kind == CueStop {
		s.seq.Stop()
		s.setPlaying("")
		s.record(entry)
		return
	}
	cue, ok := ManualCue(kind, s.settings)
	if !ok {
		s.logger.Warn("Unknown cue", zap.String("cue", string(kind)))
		return
	}
	started, err := s.seq.Play(cue)
	if err != nil {
		s.playError(entry, started.Sound, err)
		return
	}
	s.setPlaying(cue.Label)
	entry.Sound = started.Sound
	s.record(entry)
}

func (s *Scheduler) completed(gen uint64) {
	started, err := s.seq.Finished(gen)
	if err != nil && started != nil {
		s.playError(model.LogEntry{At: s.clock.Now(), Kind: "follow-up", Description: started.Label}, started.Sound, err)
	}
	if s.seq.State() == player.Idle {
		s.setPlaying("")
		return
	}
	if started != nil {
		s.logger.Debug("Playing follow-up", zap.String("cue", started.Label), zap.String("sound", started.Sound))
	}
}

func (s *Scheduler) playError(entry model.LogEntry, sound string, err error) {
	entry.Source = model.SourceError
	entry.Sound = sound
	if errors.Is(err, sounds.ErrNotFound) {
		entry.Description = fmt.Sprintf("%s: ses dosyası bulunamadı (%s)", entry.Description, sound)
	} else {
		entry.Description = fmt.Sprintf("%s: ses çalınamadı (%v)", entry.Description, err)
	}
	s.setPlaying("")
	s.record(entry)
}

func (s *Scheduler) setPlaying(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = label
}

func (s *Scheduler) record(e model.LogEntry) {
	if e.At.IsZero() {
		e.At = s.clock.Now()
	}
	e = s.journal.Record(e)
	select {
	case s.events <- e:
	default:
	}
}
