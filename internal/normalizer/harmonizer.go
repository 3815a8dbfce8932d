package normalizer

import "bibliofusion/internal/models"

// Harmonizer guarantees the essential column set.
type Harmonizer struct {
	columns []string
}

// NewHarmonizer creates a harmonizer for models.EssentialColumns.
func NewHarmonizer() *Harmonizer {
	return &Harmonizer{columns: models.EssentialColumns}
}

// Harmonize appends every essential column the dataset lacks, filled with "", then replaces every
// missing cell with "". Existing values are never touched. It returns the columns it added.
func (h *Harmonizer) Harmonize(ds *models.Dataset) []string {
	var added []string

	for _, c := range h.columns {
		if ds.Synthesize(c, "") {
			added = append(added, c)
		}
	}

	columns := ds.Columns()

	for _, rec := range ds.Records {
		for _, c := range columns {
			if _, ok := rec[c]; !ok {
				rec[c] = ""
			}
		}
	}

	return added
}
