package app

import (
	"context"
	"sync"

	"github.com/verte-zerg/schoolbell/internal/model"
	"go.uber.org/zap"
)

const (
	journalBuffer = 256
	recentSize    = 50
)

// EntryWriter persists ring log entries.
type EntryWriter interface {
	InsertEntries(ctx context.Context, entries []model.LogEntry) error
}

// Journal is the ring log. Record never blocks the scheduler; entries are
// written in batches by Run. A nil writer keeps entries in memory only.
type Journal struct {
	writer EntryWriter
	runID  string
	logger *zap.Logger

	entries chan model.LogEntry
	done    chan struct{}

	mu     sync.Mutex
	closed bool
	recent []model.LogEntry
}

// NewJournal returns a journal stamping entries with runID.
func NewJournal(writer EntryWriter, runID string, logger *zap.Logger) *Journal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Journal{
		writer:  writer,
		runID:   runID,
		logger:  logger,
		entries: make(chan model.LogEntry, journalBuffer),
		done:    make(chan struct{}),
	}
}

// RunID returns the id stamped on every entry.
func (j *Journal) RunID() string {
	return j.runID
}

// Record stamps and queues an entry. When the queue is full the entry is
// kept in memory and logged but not persisted.
func (j *Journal) Record(e model.LogEntry) model.LogEntry {
	e.RunID = j.runID

	fields := []zap.Field{
		zap.String("source", string(e.Source)),
		zap.String("kind", e.Kind),
		zap.String("description", e.Description),
	}
	if e.Sound != "" {
		fields = append(fields, zap.String("sound", e.Sound))
	}
	switch e.Source {
	case model.SourceError:
		j.logger.Error("ring log", fields...)
	case model.SourceSuppressed:
		j.logger.Warn("ring log", fields...)
	default:
		j.logger.Info("ring log", fields...)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.recent = append(j.recent, e)
	if len(j.recent) > recentSize {
		j.recent = j.recent[len(j.recent)-recentSize:]
	}
	if j.closed || j.writer == nil {
		return e
	}
	select {
	case j.entries <- e:
	default:
		j.logger.Warn("ring log queue full, entry not persisted", zap.String("description", e.Description))
	}
	return e
}

// Recent returns the latest entries, oldest first.
func (j *Journal) Recent() []model.LogEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]model.LogEntry, len(j.recent))
	copy(out, j.recent)
	return out
}

// Run writes queued entries until Close is called. Entries still queued
// when ctx is cancelled are flushed before returning.
func (j *Journal) Run(ctx context.Context) {
	defer close(j.done)
	for {
		select {
		case e, ok := <-j.entries:
			if !ok {
				return
			}
			j.write(ctx, j.drain([]model.LogEntry{e}))
		case <-ctx.Done():
			j.write(context.Background(), j.drain(nil))
			return
		}
	}
}

// Close stops accepting entries and waits for Run to flush. Run must have
// been started.
func (j *Journal) Close() {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return
	}
	j.closed = true
	close(j.entries)
	j.mu.Unlock()
	<-j.done
}

func (j *Journal) drain(batch []model.LogEntry) []model.LogEntry {
	for {
		select {
		case e, ok := <-j.entries:
			if !ok {
				return batch
			}
			batch = append(batch, e)
		default:
			return batch
		}
	}
}

func (j *Journal) write(ctx context.Context, batch []model.LogEntry) {
	if len(batch) == 0 || j.writer == nil {
		return
	}
	if err := j.writer.InsertEntries(ctx, batch); err != nil {
		j.logger.Error("Failed to persist ring log", zap.Int("entries", len(batch)), zap.Error(err))
	}
}
