// Package normalizer turns the concatenated source exports into the merged dataset:
// year normalization, schema harmonization and duplicate removal.
package normalizer

import (
	"fmt"
	"strings"
	"time"

	"bibliofusion/internal/models"
)

// Options configures a Processor.
type Options struct {
	Labels         []string
	YearCandidates []string
	MinYear        int
	KeepBlankKeys  bool
	Now            func() time.Time
}

// Result describes what a Process call did to the dataset.
type Result struct {
	Years   YearResult
	Added   []string
	Dedup   DedupResult
	Initial int
}

// Processor runs the normalization stages in order.
type Processor struct {
	validator  *Validator
	years      *YearNormalizer
	harmonizer *Harmonizer
	dedup      *Deduplicator
}

// NewProcessor creates a new processor instance.
func NewProcessor(opts Options) *Processor {
	return &Processor{
		validator:  NewValidator(opts.Labels...),
		years:      NewYearNormalizer(opts.YearCandidates, opts.MinYear, opts.Now),
		harmonizer: NewHarmonizer(),
		dedup:      NewDeduplicator(opts.KeepBlankKeys),
	}
}

// Process normalizes years, harmonizes columns and removes duplicates, in place.
// Every stage appends its outcome to plog.
func (p *Processor) Process(ds *models.Dataset, plog *models.ProcessingLog) (*Result, error) {
	// 1. Validate the input data
	if err := p.validator.Validate(ds); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	res := &Result{Initial: ds.Len()}

	// 2. Years
	plog.Add("📅 Processing dates...")

	res.Years = p.years.Normalize(ds)
	if res.Years.Found {
		plog.Addf("✅ Dates processed from column '%s': %d rows dropped (%d without a year, %d outside %d-%d)",
			res.Years.Column, res.Years.Dropped(), res.Years.Unparseable, res.Years.OutOfRange,
			p.years.minYear, res.Years.MaxYear)
	} else {
		plog.Addf("⚠️ No year column found (tried %s). Year left empty.", strings.Join(p.years.candidates, ", "))
	}

	// 3. Essential columns
	res.Added = p.harmonizer.Harmonize(ds)
	for _, c := range res.Added {
		plog.Addf("⚠️ Column '%s' not found. Created empty column.", c)
	}

	if err := p.validator.ValidateHarmonized(ds); err != nil {
		return nil, fmt.Errorf("harmonization failed: %w", err)
	}

	// 4. Duplicates
	plog.Add("🎯 Removing duplicates...")

	res.Dedup = p.dedup.Deduplicate(ds)
	if res.Dedup.ByDOI() {
		plog.Addf("✅ Duplicates removed by DOI: %d", res.Dedup.Removed)
	} else {
		plog.Addf("✅ Duplicates removed by Title/Year: %d", res.Dedup.Removed)
	}

	return res, nil
}
