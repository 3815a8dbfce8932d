// Package pipeline drives a complete merge run: directory bootstrap, input checks,
// loading, normalization, reporting and persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"bibliofusion/internal/config"
	"bibliofusion/internal/loader"
	"bibliofusion/internal/logger"
	"bibliofusion/internal/models"
	"bibliofusion/internal/normalizer"
	"bibliofusion/internal/report"
	"bibliofusion/internal/store"
	"bibliofusion/pkg/metadata"
)

// Result describes a successful run.
type Result struct {
	Records           int
	DuplicatesRemoved int
	Elapsed           time.Duration
	Written           []string
	Checksum          string
	Report            string
	Processing        *normalizer.Result
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock replaces time.Now for timestamps, the year ceiling and elapsed time.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// Pipeline runs one merge per Run call.
type Pipeline struct {
	cfg     config.Config
	log     *logger.Logger
	now     func() time.Time
	journal *models.ProcessingLog
}

// New creates a pipeline for cfg. A nil logger discards output.
func New(cfg config.Config, log *logger.Logger, opts ...Option) *Pipeline {
	if log == nil {
		log = logger.Discard()
	}

	p := &Pipeline{cfg: cfg, log: log, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Journal returns the processing log of the last run, including a failed one.
func (p *Pipeline) Journal() *models.ProcessingLog {
	return p.journal
}

// Run executes the merge. It returns *models.MissingInputError, *models.LoadError or
// *models.SaveError for the failures that end a run; nothing is written unless every stage succeeded.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := p.now()
	printer := message.NewPrinter(language.English)

	plog := models.NewProcessingLog(p.now)
	plog.OnAppend(func(e models.LogEntry) {
		p.log.Info(e.Message)
	})
	p.journal = plog

	// 1. Directories
	dirs, err := p.cfg.EnsureDirectories()
	for _, d := range dirs {
		if d.Created {
			plog.Addf("✅ Directory created: %s", d.Path)
		} else {
			plog.Addf("📁 Directory found: %s", d.Path)
		}
	}

	if err != nil {
		plog.Addf("❌ Failed to prepare directories: %v", err)
		return nil, err
	}

	plog.Add("🚀 STARTING BIBLIOFUSION")
	plog.Add(strings.Repeat("=", 50))

	// 2. Inputs
	sources := loader.SourcesFromConfig(p.cfg)

	if err := loader.CheckInputs(sources); err != nil {
		p.logMissing(plog, err)
		return nil, err
	}

	plog.Add("✅ All input files found")

	// 3. Load
	ld := loader.New(p.log)
	parts := make([]*models.Dataset, 0, len(sources))
	labels := make([]string, 0, len(sources))

	for _, src := range sources {
		plog.Addf("📥 Loading %s...", src.Label)

		ds, err := ld.Load(ctx, src)
		if err != nil {
			plog.Addf("❌ Failed to load data: %v", err)
			return nil, err
		}

		plog.Addf("✅ %s: %d records", src.Label, ds.Len())

		parts = append(parts, ds)
		labels = append(labels, src.Label)
	}

	// 4. Combine and normalize
	plog.Add("🔄 Combining datasets...")

	merged := parts[0]
	for _, ds := range parts[1:] {
		merged = models.Concat(merged, ds)
	}

	processor := normalizer.NewProcessor(normalizer.Options{
		Labels:         labels,
		YearCandidates: p.cfg.Years.Candidates,
		MinYear:        p.cfg.Years.MinYear,
		KeepBlankKeys:  p.cfg.Dedup.KeepBlankKeys,
		Now:            p.now,
	})

	processed, err := processor.Process(merged, plog)
	if err != nil {
		plog.Addf("❌ Processing failed: %v", err)
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	elapsed := p.now().Sub(start)

	// 5. Report
	dataset, err := store.EncodeCSV(merged)
	if err != nil {
		saveErr := &models.SaveError{Path: p.cfg.OutputPath(p.cfg.Output.DatasetFilename), Err: err}
		plog.Addf("❌ Failed to save results: %v", saveErr)

		return nil, saveErr
	}

	generated := p.now()
	text := report.Render(report.Summary{
		Dataset:           merged,
		Labels:            labels,
		DuplicatesRemoved: processed.Dedup.Removed,
		Elapsed:           elapsed,
		Generated:         generated,
		Files: report.Files{
			Dataset: p.cfg.Output.DatasetFilename,
			Report:  p.cfg.Output.ReportFilename,
			SQLite:  p.cfg.Output.SQLiteFilename,
		},
		Log: plog,
	})

	text = metadata.Sign(text, dataset, metadata.Metadata{
		Generated: generated,
		Dataset:   p.cfg.Output.DatasetFilename,
		Records:   merged.Len(),
	})

	// 6. Save
	artifacts := []store.Artifact{
		store.Bytes(p.cfg.Output.DatasetFilename, dataset),
		store.Bytes(p.cfg.Output.ReportFilename, []byte(text)),
	}

	if p.cfg.Output.SQLiteFilename != "" {
		artifacts = append(artifacts, store.SQLite(p.cfg.Output.SQLiteFilename, merged))
	}

	written, err := store.New(p.cfg.Paths.OutputDir, p.log).Save(ctx, artifacts...)
	if err != nil {
		plog.Addf("❌ Failed to save results: %v", err)
		return nil, err
	}

	for _, path := range written {
		switch filepath.Base(path) {
		case p.cfg.Output.DatasetFilename:
			plog.Addf("💾 Dataset saved: %s", path)
		case p.cfg.Output.ReportFilename:
			plog.Addf("📄 Report saved: %s", path)
		default:
			plog.Addf("🗄️ SQLite database saved: %s", path)
		}
	}

	plog.Add("")
	plog.Add("🎉 BIBLIOFUSION COMPLETED SUCCESSFULLY!")
	plog.Add(printer.Sprintf("📊 %d records processed", merged.Len()))
	plog.Add(printer.Sprintf("⏱️  Total time: %.2f seconds", elapsed.Seconds()))

	return &Result{
		Records:           merged.Len(),
		DuplicatesRemoved: processed.Dedup.Removed,
		Elapsed:           elapsed,
		Written:           written,
		Checksum:          metadata.Checksum(dataset),
		Report:            text,
		Processing:        processed,
	}, nil
}

func (p *Pipeline) logMissing(plog *models.ProcessingLog, err error) {
	var missing *models.MissingInputError
	if !errors.As(err, &missing) {
		plog.Addf("❌ %v", err)
		return
	}

	names := make([]string, len(missing.Paths))
	for i, path := range missing.Paths {
		names[i] = filepath.Base(path)
	}

	plog.Addf("❌ Files not found: %s", strings.Join(names, ", "))
	plog.Addf("💡 Place the files in the '%s/' folder:", p.cfg.Paths.InputDir)

	for _, n := range names {
		plog.Add("   - " + n)
	}
}

// String summarizes the result for the console.
func (r *Result) String() string {
	return fmt.Sprintf("%d records, %d duplicates removed, %.2fs", r.Records, r.DuplicatesRemoved, r.Elapsed.Seconds())
}
