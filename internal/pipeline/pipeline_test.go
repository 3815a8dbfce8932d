package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bibliofusion/internal/config"
	"bibliofusion/internal/models"
	"bibliofusion/pkg/metadata"
)

var fixedTime = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func testConfig(t *testing.T) config.Config {
	t.Helper()

	root := t.TempDir()

	cfg := config.Default()
	cfg.Paths.InputDir = filepath.Join(root, "inputs")
	cfg.Paths.OutputDir = filepath.Join(root, "outputs")
	cfg.Paths.DocsDir = filepath.Join(root, "docs")

	return cfg
}

func writeInputs(t *testing.T, cfg config.Config, wos, scopus string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(cfg.Paths.InputDir, 0755))

	paths := cfg.InputPaths()
	require.NoError(t, os.WriteFile(paths[0], []byte(wos), 0644))
	require.NoError(t, os.WriteFile(paths[1], []byte(scopus), 0644))
}

func TestRun_MergesAndWrites(t *testing.T) {
	cfg := testConfig(t)
	writeInputs(t, cfg,
		"Title\tYear\tDOI\nFoo\t2020.5\t10.1/x\nOld\t1899\t10.1/old\n",
		"Title,Year,DOI,Authors\nFoo,2020,10.1/x,Doe J.\nBaz,2021,10.1/z,Roe R.\n",
	)

	p := New(cfg, nil, WithClock(fixedNow))

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Records)
	assert.Equal(t, 1, res.DuplicatesRemoved)
	assert.Equal(t, time.Duration(0), res.Elapsed)
	assert.Len(t, res.Written, 2)

	data, err := os.ReadFile(cfg.OutputPath(cfg.Output.DatasetFilename))
	require.NoError(t, err)

	assert.Equal(t, metadata.Checksum(data), res.Checksum)

	lines := strings.Split(strings.TrimPrefix(string(data), "\ufeff"), "\n")
	assert.Equal(t, "Title,Year,DOI,Source,Authors,Source title,Abstract,Cited by,References", lines[0])
	assert.Equal(t, "Foo,2020,10.1/x,Web of Science,,,,,", lines[1])
	assert.Equal(t, "Baz,2021,10.1/z,Scopus,Roe R.,,,,", lines[2])

	text, err := os.ReadFile(cfg.OutputPath(cfg.Output.ReportFilename))
	require.NoError(t, err)

	ok, err := metadata.Verify(string(text), data)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Contains(t, string(text), "  Total records: 2")
	assert.Contains(t, string(text), "  Duplicates removed: 1")
	assert.Contains(t, string(text), "✅ Duplicates removed by DOI: 1")
	assert.Contains(t, string(text), "Processing time: 0.00 seconds")

	messages := journalMessages(p)
	assert.Contains(t, messages, "🚀 STARTING BIBLIOFUSION")
	assert.Contains(t, messages, "✅ Web of Science: 2 records")
	assert.Contains(t, messages, "✅ Scopus: 2 records")
	assert.Contains(t, messages, "🎉 BIBLIOFUSION COMPLETED SUCCESSFULLY!")
}

func TestRun_CreatesDirectories(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg, nil, WithClock(fixedNow))

	_, err := p.Run(context.Background())
	require.Error(t, err)

	for _, dir := range []string{cfg.Paths.InputDir, cfg.Paths.OutputDir, cfg.Paths.DocsDir} {
		assert.DirExists(t, dir)
	}

	assert.Contains(t, journalMessages(p), "✅ Directory created: "+cfg.Paths.OutputDir)
}

func TestRun_MissingInputs(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg, nil, WithClock(fixedNow))

	_, err := p.Run(context.Background())

	var missing *models.MissingInputError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, cfg.InputPaths(), missing.Paths)

	messages := journalMessages(p)
	assert.Contains(t, messages, "❌ Files not found: wos_data.txt, scopus_data.csv")
	assert.Contains(t, messages, "   - scopus_data.csv")

	assertNoOutputs(t, cfg)
}

func TestRun_LoadFailureWritesNothing(t *testing.T) {
	cfg := testConfig(t)
	writeInputs(t, cfg, "Title\tYear\nFoo\t2020\n", "Title,Year\n\xff\xfe,2020\n")

	_, err := New(cfg, nil, WithClock(fixedNow)).Run(context.Background())

	var loadErr *models.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, models.SourceScopus, loadErr.Source)

	assertNoOutputs(t, cfg)
}

func TestRun_EmptyResult(t *testing.T) {
	cfg := testConfig(t)
	writeInputs(t, cfg, "Title\tYear\nOld\t1800\n", "Title,Year\nFuture,2999\n")

	res, err := New(cfg, nil, WithClock(fixedNow)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, res.Records)
	assert.Contains(t, res.Report, "  Total records: 0")
	assert.NotContains(t, res.Report, "TIME SPAN")
}

func TestRun_SQLiteExport(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.SQLiteFilename = "bibliofusion.sqlite"
	writeInputs(t, cfg, "Title\tYear\nFoo\t2020\n", "Title,Year\nBar,2021\n")

	res, err := New(cfg, nil, WithClock(fixedNow)).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Written, 3)
	assert.FileExists(t, cfg.OutputPath("bibliofusion.sqlite"))
	assert.Contains(t, res.Report, "  SQLite database: bibliofusion.sqlite")
}

func TestRun_Cancelled(t *testing.T) {
	cfg := testConfig(t)
	writeInputs(t, cfg, "Title\tYear\nFoo\t2020\n", "Title,Year\nBar,2021\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(cfg, nil, WithClock(fixedNow)).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	assertNoOutputs(t, cfg)
}

func journalMessages(p *Pipeline) []string {
	entries := p.Journal().Entries()
	out := make([]string, len(entries))

	for i, e := range entries {
		out[i] = e.Message
	}

	return out
}

func assertNoOutputs(t *testing.T, cfg config.Config) {
	t.Helper()

	for _, name := range cfg.OutputFiles() {
		assert.NoFileExists(t, cfg.OutputPath(name))
	}
}
