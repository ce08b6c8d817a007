package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/schoolbell/internal/model"
	"github.com/verte-zerg/schoolbell/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "schoolbell.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestBuildReport(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()

	day1 := time.Date(2026, time.October, 19, 8, 28, 0, 0, time.Local)
	day2 := day1.AddDate(0, 0, 1)
	entries := []model.LogEntry{
		{RunID: "r", At: day1, Source: model.SourceAutomatic, Kind: "student", Lesson: 1, Description: "1. Ders Öğrenci Giriş"},
		{RunID: "r", At: day1.Add(2 * time.Minute), Source: model.SourceSuppressed, Kind: "teacher", Lesson: 1, Description: "1. Ders Öğretmen Giriş"},
		{RunID: "r", At: day2, Source: model.SourceAutomatic, Kind: "student", Lesson: 1, Description: "1. Ders Öğrenci Giriş"},
		{RunID: "r", At: day2.Add(time.Minute), Source: model.SourceManual, Kind: "march", Description: "İstiklal Marşı"},
	}
	if err := st.InsertEntries(ctx, entries); err != nil {
		t.Fatalf("insert entries: %v", err)
	}

	report, err := BuildReport(ctx, st, model.LogFilter{Last: 2})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Entries) != 2 || report.Entries[1].Description != "İstiklal Marşı" {
		t.Fatalf("unexpected entries %+v", report.Entries)
	}
	days := GroupByDay(report.Counts)
	if len(days) != 1 || days[0].Day != "2026-10-20" || days[0].Total() != 2 {
		t.Fatalf("counts should cover only the listed days, got %+v", days)
	}

	report, err = BuildReport(ctx, st, model.LogFilter{})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	days = GroupByDay(report.Counts)
	if len(days) != 2 || days[0].Counts[model.SourceSuppressed] != 1 {
		t.Fatalf("unexpected day counts %+v", days)
	}
}

func TestRenderDailyAndSummary(t *testing.T) {
	days := []DayCounts{
		{Day: "2026-10-19", Counts: map[model.LogSource]int{model.SourceAutomatic: 24, model.SourceError: 1}},
		{Day: "2026-10-20", Counts: map[model.LogSource]int{model.SourceAutomatic: 12}},
	}
	var buf bytes.Buffer
	if err := RenderSummary(&buf, days); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if err := RenderDaily(&buf, days); err != nil {
		t.Fatalf("render daily: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Özet (2 gün)", "OTOMATİK: 36", "HATA: 1", "TOPLAM", "2026-10-19"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderEntriesTruncates(t *testing.T) {
	at := time.Date(2026, time.October, 19, 8, 28, 0, 0, time.Local)
	entries := []model.LogEntry{{
		At:          at,
		Source:      model.SourceError,
		Description: strings.Repeat("uzun açıklama ", 10),
		Sound:       "ziller/zil1.mp3",
	}}
	var buf bytes.Buffer
	if err := RenderEntries(&buf, entries, 80); err != nil {
		t.Fatalf("render entries: %v", err)
	}
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if displayWidth(line) > 80 {
			t.Fatalf("line wider than 80 cells: %q", line)
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 5, 10}); got != " +@" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{3, 3}); got != "++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
}
