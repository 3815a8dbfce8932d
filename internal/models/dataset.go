// Package models defines the record, dataset and processing log types shared by the pipeline stages.
package models

// Source tags written to the Source column.
const (
	SourceWebOfScience = "Web of Science"
	SourceScopus       = "Scopus"
)

// Well-known column names.
const (
	ColumnTitle       = "Title"
	ColumnAuthors     = "Authors"
	ColumnYear        = "Year"
	ColumnSourceTitle = "Source title"
	ColumnDOI         = "DOI"
	ColumnAbstract    = "Abstract"
	ColumnCitedBy     = "Cited by"
	ColumnReferences  = "References"
	ColumnSource      = "Source"
)

// EssentialColumns lists the columns every output record must carry, in the order they are appended.
var EssentialColumns = []string{
	ColumnTitle,
	ColumnAuthors,
	ColumnYear,
	ColumnSourceTitle,
	ColumnDOI,
	ColumnAbstract,
	ColumnCitedBy,
	ColumnReferences,
	ColumnSource,
}

// Record is one bibliographic entry keyed by column name.
// A column without a key in the map is missing, as opposed to present and empty.
type Record map[string]string

// Get returns the value of a column and whether it is present.
func (r Record) Get(column string) (string, bool) {
	v, ok := r[column]
	return v, ok
}

// Value returns the value of a column, or "" when it is missing.
func (r Record) Value(column string) string {
	return r[column]
}

// Dataset is an ordered sequence of records sharing one column set.
type Dataset struct {
	columns     []string
	index       map[string]int
	synthesized map[string]bool
	Records     []Record
}

// NewDataset creates an empty dataset with the given header.
// Repeated column names are kept once.
func NewDataset(columns ...string) *Dataset {
	ds := &Dataset{
		index:       make(map[string]int, len(columns)),
		synthesized: make(map[string]bool),
	}

	for _, c := range columns {
		ds.addColumn(c)
	}

	return ds
}

// Columns returns a copy of the column list in the order it was established.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	copy(out, d.columns)

	return out
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// HasColumn reports whether the column is part of the dataset's column set.
func (d *Dataset) HasColumn(column string) bool {
	_, ok := d.index[column]
	return ok
}

// IsNative reports whether the column came from an input rather than being synthesized empty.
func (d *Dataset) IsNative(column string) bool {
	return d.HasColumn(column) && !d.synthesized[column]
}

// Append adds a record. Keys outside the column set are carried but not exported.
func (d *Dataset) Append(rec Record) {
	d.Records = append(d.Records, rec)
}

// SetColumn assigns value to the column on every record, adding the column if needed.
func (d *Dataset) SetColumn(column, value string) {
	d.addColumn(column)
	delete(d.synthesized, column)

	for _, rec := range d.Records {
		rec[column] = value
	}
}

// Synthesize appends a column that no input carried, filled with value on every record.
// It does nothing when the column already exists.
func (d *Dataset) Synthesize(column, value string) bool {
	if d.HasColumn(column) {
		return false
	}

	d.addColumn(column)
	d.synthesized[column] = true

	for _, rec := range d.Records {
		rec[column] = value
	}

	return true
}

// RenameColumn renames a column in place, keeping its position.
func (d *Dataset) RenameColumn(from, to string) {
	if from == to {
		return
	}

	pos, ok := d.index[from]
	if !ok {
		return
	}

	if existing, taken := d.index[to]; taken {
		d.columns = append(d.columns[:existing], d.columns[existing+1:]...)
		d.reindex()
		pos = d.index[from]
	}

	d.columns[pos] = to
	delete(d.index, from)
	d.index[to] = pos

	if d.synthesized[from] {
		d.synthesized[to] = true
	} else {
		delete(d.synthesized, to)
	}

	delete(d.synthesized, from)

	for _, rec := range d.Records {
		v, present := rec[from]
		delete(rec, from)
		delete(rec, to)

		if present {
			rec[to] = v
		}
	}
}

// Filter keeps the records for which keep returns true, preserving order.
// It returns the number of records removed.
func (d *Dataset) Filter(keep func(Record) bool) int {
	kept := d.Records[:0]

	for _, rec := range d.Records {
		if keep(rec) {
			kept = append(kept, rec)
		}
	}

	removed := len(d.Records) - len(kept)

	for i := len(kept); i < len(d.Records); i++ {
		d.Records[i] = nil
	}

	d.Records = kept

	return removed
}

// Row returns the record's values in column order. Missing values are returned as "".
func (d *Dataset) Row(i int) []string {
	rec := d.Records[i]
	row := make([]string, len(d.columns))

	for j, c := range d.columns {
		row[j] = rec[c]
	}

	return row
}

// Concat returns a new dataset holding a's records followed by b's.
// The column set is a's columns followed by b's columns not already present.
func Concat(a, b *Dataset) *Dataset {
	out := NewDataset(a.columns...)

	for _, c := range b.columns {
		out.addColumn(c)
	}

	for _, c := range out.columns {
		if !a.IsNative(c) && !b.IsNative(c) {
			out.synthesized[c] = true
		}
	}

	out.Records = make([]Record, 0, len(a.Records)+len(b.Records))
	out.Records = append(out.Records, a.Records...)
	out.Records = append(out.Records, b.Records...)

	return out
}

func (d *Dataset) addColumn(column string) {
	if _, ok := d.index[column]; ok {
		return
	}

	d.index[column] = len(d.columns)
	d.columns = append(d.columns, column)
}

func (d *Dataset) reindex() {
	d.index = make(map[string]int, len(d.columns))
	for i, c := range d.columns {
		d.index[c] = i
	}
}
