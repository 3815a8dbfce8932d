package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bibliofusion/internal/models"
)

var (
	generated = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	labels    = []string{models.SourceWebOfScience, models.SourceScopus}
	files     = Files{Dataset: "bibliofusion_output.csv", Report: "processing_report.txt"}
)

func merged(rows ...[2]string) *models.Dataset {
	ds := models.NewDataset(models.ColumnYear, models.ColumnSource)
	for _, r := range rows {
		ds.Append(models.Record{models.ColumnYear: r[0], models.ColumnSource: r[1]})
	}

	return ds
}

func TestRender_Statistics(t *testing.T) {
	ds := merged(
		[2]string{"2019", models.SourceWebOfScience},
		[2]string{"2021", models.SourceWebOfScience},
		[2]string{"2019", models.SourceScopus},
	)

	plog := models.NewProcessingLog(func() time.Time { return generated })
	plog.Add("🚀 STARTING BIBLIOFUSION")

	out := Render(Summary{
		Dataset:           ds,
		Labels:            labels,
		DuplicatesRemoved: 1234,
		Elapsed:           1500 * time.Millisecond,
		Generated:         generated,
		Files:             files,
		Log:               plog,
	})

	want := strings.Join([]string{
		strings.Repeat("=", 50),
		"BIBLIOFUSION REPORT",
		strings.Repeat("=", 50),
		"Processing date: 2026-10-19 09:30:00",
		"Processing time: 1.50 seconds",
		"",
		"📊 STATISTICS:",
		"  Total records: 3",
		"  - Web of Science  2  (66.7%)",
		"  - Scopus          1  (33.3%)",
		"  Duplicates removed: 1,234",
		"",
		"📅 TIME SPAN:",
		"  Period: 2019 - 2021",
		"  Years covered: 2 years",
		"",
		"💾 GENERATED FILES:",
		"  Merged dataset: bibliofusion_output.csv",
		"  This report: processing_report.txt",
		"",
		"📝 PROCESSING LOG:",
		"  [2026-10-19 09:30:00] 🚀 STARTING BIBLIOFUSION",
		"",
		"🎉 PROCESSING COMPLETED SUCCESSFULLY!",
		strings.Repeat("=", 50),
	}, "\n")

	assert.Equal(t, want, out)
}

func TestRender_EmptyDataset(t *testing.T) {
	out := Render(Summary{
		Dataset:   merged(),
		Labels:    labels,
		Generated: generated,
		Files:     files,
	})

	assert.Contains(t, out, "  Total records: 0")
	assert.Contains(t, out, "  - Web of Science  0\n")
	assert.Contains(t, out, "  - Scopus          0\n")
	assert.NotContains(t, out, "%")
	assert.NotContains(t, out, "NaN")
	assert.NotContains(t, out, "TIME SPAN")
	assert.True(t, strings.HasSuffix(out, "🎉 PROCESSING COMPLETED SUCCESSFULLY!\n"+strings.Repeat("=", 50)))
}

func TestRender_SQLiteListed(t *testing.T) {
	f := files
	f.SQLite = "bibliofusion.sqlite"

	out := Render(Summary{Dataset: merged(), Labels: labels, Generated: generated, Files: f})

	assert.Contains(t, out, "  SQLite database: bibliofusion.sqlite")
}

func TestRender_Deterministic(t *testing.T) {
	s := Summary{
		Dataset:   merged([2]string{"2020", models.SourceScopus}),
		Labels:    labels,
		Generated: generated,
		Files:     files,
	}

	assert.Equal(t, Render(s), Render(s))
}

func TestYearSpan(t *testing.T) {
	t.Run("Skips blank years", func(t *testing.T) {
		span, ok := YearSpan(merged(
			[2]string{"", models.SourceScopus},
			[2]string{"2001", models.SourceScopus},
			[2]string{"1999", models.SourceScopus},
			[2]string{"2001", models.SourceScopus},
		))

		require.True(t, ok)
		assert.Equal(t, Span{Min: 1999, Max: 2001, Distinct: 2}, span)
	})

	t.Run("No numeric year", func(t *testing.T) {
		_, ok := YearSpan(merged([2]string{"", models.SourceScopus}))
		assert.False(t, ok)
	})

	t.Run("No Year column", func(t *testing.T) {
		_, ok := YearSpan(models.NewDataset(models.ColumnTitle))
		assert.False(t, ok)
	})
}

func TestCountBySource(t *testing.T) {
	ds := merged(
		[2]string{"2019", models.SourceScopus},
		[2]string{"2019", "Other"},
		[2]string{"2019", models.SourceScopus},
	)

	assert.Equal(t, []int{0, 2}, CountBySource(ds, labels))
	assert.Equal(t, []int{0, 0}, CountBySource(nil, labels))
}
