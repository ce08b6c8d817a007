package stats

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/verte-zerg/schoolbell/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Sources lists log sources in report column order.
var Sources = []model.LogSource{
	model.SourceAutomatic,
	model.SourceManual,
	model.SourceSuppressed,
	model.SourceSystem,
	model.SourceError,
}

// SourceLabel is the Turkish column and log label of a source.
func SourceLabel(s model.LogSource) string {
	switch s {
	case model.SourceAutomatic:
		return "OTOMATİK"
	case model.SourceManual:
		return "MANUEL"
	case model.SourceSuppressed:
		return "UYARI"
	case model.SourceSystem:
		return "SİSTEM"
	case model.SourceError:
		return "HATA"
	default:
		return strings.ToUpper(string(s))
	}
}

// DayCounts is one report row.
type DayCounts struct {
	Day    string
	Counts map[model.LogSource]int
}

// Total sums all sources.
func (d DayCounts) Total() int {
	total := 0
	for _, c := range d.Counts {
		total += c
	}
	return total
}

// GroupByDay folds per-source counts into rows, keeping day order.
func GroupByDay(counts []model.SourceCount) []DayCounts {
	var out []DayCounts
	index := map[string]int{}
	for _, c := range counts {
		i, ok := index[c.Day]
		if !ok {
			i = len(out)
			index[c.Day] = i
			out = append(out, DayCounts{Day: c.Day, Counts: map[model.LogSource]int{}})
		}
		out[i].Counts[c.Source] += c.Count
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints totals per source.
func RenderSummary(w io.Writer, days []DayCounts) error {
	if len(days) == 0 {
		_, err := fmt.Fprintln(w, "Kayıt bulunamadı.")
		return err
	}
	totals := map[model.LogSource]int{}
	rung := make([]float64, len(days))
	for i, d := range days {
		for s, c := range d.Counts {
			totals[s] += c
		}
		rung[i] = float64(d.Counts[model.SourceAutomatic])
	}
	if _, err := fmt.Fprintf(w, "Özet (%d gün)\n", len(days)); err != nil {
		return err
	}
	for _, s := range Sources {
		if _, err := fmt.Fprintf(w, "%s: %d\n", SourceLabel(s), totals[s]); err != nil {
			return err
		}
	}
	if len(days) > 1 {
		if _, err := fmt.Fprintf(w, "Otomatik zil eğrisi: [%s]\n", Sparkline(rung)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderDaily prints one row per day with a column per source.
func RenderDaily(w io.Writer, days []DayCounts) error {
	if len(days) == 0 {
		return nil
	}
	headers := []string{"Gün"}
	rightAlign := map[int]bool{}
	for i, s := range Sources {
		headers = append(headers, SourceLabel(s))
		rightAlign[i+1] = true
	}
	headers = append(headers, "TOPLAM")
	rightAlign[len(headers)-1] = true

	rows := make([][]string, 0, len(days))
	for _, d := range days {
		row := []string{d.Day}
		for _, s := range Sources {
			row = append(row, strconv.Itoa(d.Counts[s]))
		}
		row = append(row, strconv.Itoa(d.Total()))
		rows = append(rows, row)
	}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderEntries prints log entries oldest first. A positive width
// truncates the description column to fit.
func RenderEntries(w io.Writer, entries []model.LogEntry, width int) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "Kayıt bulunamadı.")
		return err
	}
	headers := []string{"Zaman", "Kaynak", "Açıklama", "Ses"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.At.Format("2006-01-02 15:04:05"),
			SourceLabel(e.Source),
			e.Description,
			e.Sound,
		})
	}
	if width > 0 {
		fixed := displayWidth("2006-01-02 15:04:05") + displayWidth("OTOMATİK") + 3
		sound := 0
		for _, r := range rows {
			sound = max(sound, displayWidth(r[3]))
		}
		descWidth := max(12, width-fixed-sound-1)
		for _, r := range rows {
			r[2] = truncateCell(r[2], descWidth)
		}
	}
	for _, line := range formatTable(headers, rows, nil) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
