package normalizer

import (
	"strings"

	"bibliofusion/internal/models"
)

// keySeparator joins multi-column keys; it does not occur in bibliographic text.
const keySeparator = "\x1f"

// DedupResult summarizes one deduplication pass.
type DedupResult struct {
	Key     []string
	Removed int
}

// ByDOI reports whether the DOI column was used as the key.
func (r DedupResult) ByDOI() bool {
	return len(r.Key) == 1 && r.Key[0] == models.ColumnDOI
}

// Deduplicator removes records whose key repeats an earlier record's key.
type Deduplicator struct {
	keepBlankKeys bool
}

// NewDeduplicator creates a deduplicator. With keepBlankKeys, records whose key values are all
// blank are never treated as duplicates.
func NewDeduplicator(keepBlankKeys bool) *Deduplicator {
	return &Deduplicator{keepBlankKeys: keepBlankKeys}
}

// DedupKey returns DOI when an input carried that column, otherwise Title and Year.
func DedupKey(ds *models.Dataset) []string {
	if ds.IsNative(models.ColumnDOI) {
		return []string{models.ColumnDOI}
	}

	return []string{models.ColumnTitle, models.ColumnYear}
}

// Deduplicate keeps the first record of every key, in dataset order.
func (d *Deduplicator) Deduplicate(ds *models.Dataset) DedupResult {
	key := DedupKey(ds)
	seen := make(map[string]struct{}, ds.Len())

	removed := ds.Filter(func(rec models.Record) bool {
		k, blank := recordKey(rec, key)
		if blank && d.keepBlankKeys {
			return true
		}

		if _, dup := seen[k]; dup {
			return false
		}

		seen[k] = struct{}{}

		return true
	})

	return DedupResult{Key: key, Removed: removed}
}

func recordKey(rec models.Record, key []string) (string, bool) {
	values := make([]string, len(key))
	blank := true

	for i, c := range key {
		values[i] = rec.Value(c)
		if values[i] != "" {
			blank = false
		}
	}

	return strings.Join(values, keySeparator), blank
}
