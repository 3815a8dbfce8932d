// Package report renders the plain-text processing report of a merge run.
package report

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"bibliofusion/internal/formatter"
	"bibliofusion/internal/models"
)

const (
	bannerWidth = 50
	dateLayout  = "2006-01-02 15:04:05"
)

// Files names the outputs listed in the report. SQLite is optional.
type Files struct {
	Dataset string
	Report  string
	SQLite  string
}

// Summary carries everything the report describes.
type Summary struct {
	Dataset           *models.Dataset
	Labels            []string
	DuplicatesRemoved int
	Elapsed           time.Duration
	Generated         time.Time
	Files             Files
	Log               *models.ProcessingLog
}

// Span is the range of numeric years found in a dataset.
type Span struct {
	Min      int
	Max      int
	Distinct int
}

// YearSpan returns the span of numeric Year values. It reports false when no record has one.
func YearSpan(ds *models.Dataset) (Span, bool) {
	if ds == nil || !ds.HasColumn(models.ColumnYear) {
		return Span{}, false
	}

	seen := make(map[int]bool)

	for _, rec := range ds.Records {
		year, err := strconv.Atoi(strings.TrimSpace(rec.Value(models.ColumnYear)))
		if err != nil {
			continue
		}

		seen[year] = true
	}

	if len(seen) == 0 {
		return Span{}, false
	}

	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}

	sort.Ints(years)

	return Span{Min: years[0], Max: years[len(years)-1], Distinct: len(years)}, true
}

// CountBySource counts records per Source tag, for every label in order.
func CountBySource(ds *models.Dataset, labels []string) []int {
	counts := make([]int, len(labels))
	if ds == nil {
		return counts
	}

	pos := make(map[string]int, len(labels))
	for i, l := range labels {
		pos[l] = i
	}

	for _, rec := range ds.Records {
		if i, ok := pos[rec.Value(models.ColumnSource)]; ok {
			counts[i]++
		}
	}

	return counts
}

// Render builds the report text. Output is fully determined by s.
func Render(s Summary) string {
	p := message.NewPrinter(language.English)
	rule := strings.Repeat("=", bannerWidth)

	total := 0
	if s.Dataset != nil {
		total = s.Dataset.Len()
	}

	lines := []string{
		rule,
		"BIBLIOFUSION REPORT",
		rule,
		"Processing date: " + s.Generated.Format(dateLayout),
		p.Sprintf("Processing time: %.2f seconds", s.Elapsed.Seconds()),
		"",
		"📊 STATISTICS:",
		p.Sprintf("  Total records: %d", total),
	}

	sources := formatter.NewTable(formatter.AlignLeft, formatter.AlignRight, formatter.AlignRight)
	sources.Indent = "  - "

	for i, count := range CountBySource(s.Dataset, s.Labels) {
		if total == 0 {
			sources.AddRow(s.Labels[i], p.Sprintf("%d", count))
			continue
		}

		pct := float64(count) / float64(total) * 100
		sources.AddRow(s.Labels[i], p.Sprintf("%d", count), p.Sprintf("(%.1f%%)", pct))
	}

	lines = append(lines, sources.Lines()...)
	lines = append(lines, p.Sprintf("  Duplicates removed: %d", s.DuplicatesRemoved))

	if span, ok := YearSpan(s.Dataset); ok {
		lines = append(lines,
			"",
			"📅 TIME SPAN:",
			"  Period: "+strconv.Itoa(span.Min)+" - "+strconv.Itoa(span.Max),
			p.Sprintf("  Years covered: %d years", span.Distinct),
		)
	}

	lines = append(lines,
		"",
		"💾 GENERATED FILES:",
		"  Merged dataset: "+s.Files.Dataset,
		"  This report: "+s.Files.Report,
	)

	if s.Files.SQLite != "" {
		lines = append(lines, "  SQLite database: "+s.Files.SQLite)
	}

	lines = append(lines, "", "📝 PROCESSING LOG:")

	if s.Log != nil {
		for _, entry := range s.Log.Lines() {
			lines = append(lines, "  "+entry)
		}
	}

	lines = append(lines, "", "🎉 PROCESSING COMPLETED SUCCESSFULLY!", rule)

	return strings.Join(lines, "\n")
}
