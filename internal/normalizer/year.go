package normalizer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/width"

	"bibliofusion/internal/models"
)

// DefaultYearCandidates lists the year column names tried in priority order.
var DefaultYearCandidates = []string{"Year", "Publication Year", "Year of publication"}

// DefaultMinYear is the earliest year kept.
const DefaultMinYear = 1900

// YearCell is the result of coercing one year value: either a parsed number or empty.
type YearCell struct {
	value float64
	ok    bool
}

// Parsed returns a cell holding year.
func Parsed(year int) YearCell {
	return YearCell{value: float64(year), ok: true}
}

// Empty returns a cell holding no year.
func Empty() YearCell {
	return YearCell{}
}

// Year returns the integer year, truncated toward zero, and whether the cell holds one.
func (c YearCell) Year() (int, bool) {
	if !c.ok {
		return 0, false
	}

	return int(c.value), true
}

// IsEmpty reports whether the cell holds no year.
func (c YearCell) IsEmpty() bool {
	return !c.ok
}

// within reports whether the cell's numeric value lies in [lo, hi].
func (c YearCell) within(lo, hi int) bool {
	return c.ok && c.value >= float64(lo) && c.value <= float64(hi)
}

// FirstPresent returns the first candidate found among the available columns.
func FirstPresent(candidates, available []string) (string, bool) {
	set := make(map[string]bool, len(available))
	for _, c := range available {
		set[c] = true
	}

	for _, c := range candidates {
		if set[c] {
			return c, true
		}
	}

	return "", false
}

// ExtractYear reduces a raw value to year text. Missing, empty and "nan" values yield "".
// Values with a decimal point or made only of digits are parsed and truncated to their integer part,
// failing to ""; anything else is returned unchanged.
func ExtractYear(raw string, present bool) string {
	if !present {
		return ""
	}

	v := width.Fold.String(raw)
	if v == "" || v == "nan" {
		return ""
	}

	if !strings.Contains(v, ".") && !isDigits(strings.ReplaceAll(v, ".", "")) {
		return v
	}

	f, ok := parseFinite(v)
	if !ok {
		return ""
	}

	return strconv.FormatFloat(math.Trunc(f), 'f', -1, 64)
}

// CoerceYear turns a raw value into a YearCell. It never fails: anything non-numeric is Empty.
func CoerceYear(raw string, present bool) YearCell {
	text := ExtractYear(raw, present)
	if text == "" {
		return Empty()
	}

	f, ok := parseFinite(text)
	if !ok {
		return Empty()
	}

	return YearCell{value: f, ok: true}
}

// YearResult summarizes one normalization pass.
type YearResult struct {
	Column      string
	Found       bool
	Unparseable int
	OutOfRange  int
	MaxYear     int
}

// Dropped returns the number of rows removed.
func (r YearResult) Dropped() int {
	return r.Unparseable + r.OutOfRange
}

// YearNormalizer coerces the year column into canonical integer years.
type YearNormalizer struct {
	candidates []string
	minYear    int
	now        func() time.Time
}

// NewYearNormalizer creates a normalizer. Zero values select the defaults; a nil clock uses time.Now.
func NewYearNormalizer(candidates []string, minYear int, now func() time.Time) *YearNormalizer {
	if len(candidates) == 0 {
		candidates = DefaultYearCandidates
	}

	if minYear <= 0 {
		minYear = DefaultMinYear
	}

	if now == nil {
		now = time.Now
	}

	return &YearNormalizer{candidates: candidates, minYear: minYear, now: now}
}

// MaxYear returns the latest year kept: the current year plus one.
func (y *YearNormalizer) MaxYear() int {
	return y.now().Year() + 1
}

// Normalize picks the first candidate column present, drops rows whose year is missing or outside
// [minYear, MaxYear], stores survivors as integer text and renames the column to Year.
// Without any candidate column every record gets an empty Year and nothing is dropped.
func (y *YearNormalizer) Normalize(ds *models.Dataset) YearResult {
	res := YearResult{MaxYear: y.MaxYear()}

	column, found := FirstPresent(y.candidates, ds.Columns())
	if !found {
		if !ds.Synthesize(models.ColumnYear, "") {
			ds.SetColumn(models.ColumnYear, "")
		}

		return res
	}

	res.Column = column
	res.Found = true

	ds.Filter(func(rec models.Record) bool {
		cell := CoerceYear(rec.Get(column))

		if cell.IsEmpty() {
			res.Unparseable++
			return false
		}

		if !cell.within(y.minYear, res.MaxYear) {
			res.OutOfRange++
			return false
		}

		year, _ := cell.Year()
		rec[column] = strconv.Itoa(year)

		return true
	})

	ds.RenameColumn(column, models.ColumnYear)

	return res
}

func parseFinite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
