package normalizer

import (
	"errors"
	"fmt"

	"bibliofusion/internal/models"
)

// Validation errors.
var (
	ErrNilDataset             = errors.New("dataset is nil")
	ErrUnknownSource          = errors.New("record has an unknown source tag")
	ErrMissingEssentialColumn = errors.New("essential column missing")
	ErrMissingCell            = errors.New("record has a missing cell")
)

// Validator checks the invariants the stages rely on.
type Validator struct {
	labels map[string]bool
}

// NewValidator creates a validator accepting the given source labels.
func NewValidator(labels ...string) *Validator {
	if len(labels) == 0 {
		labels = []string{models.SourceWebOfScience, models.SourceScopus}
	}

	v := &Validator{labels: make(map[string]bool, len(labels))}
	for _, l := range labels {
		v.labels[l] = true
	}

	return v
}

// Validate checks the concatenated input: every record must carry a known source tag.
func (v *Validator) Validate(ds *models.Dataset) error {
	if ds == nil {
		return ErrNilDataset
	}

	for i, rec := range ds.Records {
		if tag := rec.Value(models.ColumnSource); !v.labels[tag] {
			return fmt.Errorf("%w %q at index %d", ErrUnknownSource, tag, i)
		}
	}

	return nil
}

// ValidateHarmonized checks that every essential column exists and no cell is missing.
func (v *Validator) ValidateHarmonized(ds *models.Dataset) error {
	if ds == nil {
		return ErrNilDataset
	}

	for _, c := range models.EssentialColumns {
		if !ds.HasColumn(c) {
			return fmt.Errorf("%w: %s", ErrMissingEssentialColumn, c)
		}
	}

	columns := ds.Columns()

	for i, rec := range ds.Records {
		for _, c := range columns {
			if _, ok := rec.Get(c); !ok {
				return fmt.Errorf("%w %q at index %d", ErrMissingCell, c, i)
			}
		}
	}

	return nil
}
