// Package stats renders ring log reports.
package stats

import (
	"context"
	"time"

	"github.com/verte-zerg/schoolbell/internal/model"
	"github.com/verte-zerg/schoolbell/internal/store"
)

// Report contains precomputed data for log rendering.
type Report struct {
	Entries []model.LogEntry
	Counts  []model.SourceCount
}

// BuildReport loads the entries matching filter and the per-day counts
// over the same period.
func BuildReport(ctx context.Context, st *store.Store, filter model.LogFilter) (Report, error) {
	entries, err := st.ListEntries(ctx, filter)
	if err != nil {
		return Report{}, err
	}
	since := filter.Since
	if since == nil && filter.Last > 0 && len(entries) > 0 {
		first := startOfDay(entries[0].At)
		since = &first
	}
	counts, err := st.CountBySource(ctx, since)
	if err != nil {
		return Report{}, err
	}
	return Report{Entries: entries, Counts: counts}, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
