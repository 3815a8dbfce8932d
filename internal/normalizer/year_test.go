package normalizer

import (
	"testing"
	"time"

	"bibliofusion/internal/models"
)

// fixedNow pins the clock to 2026, so the latest accepted year is 2027.
func fixedNow() time.Time {
	return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
}

func yearDataset(column string, values ...string) *models.Dataset {
	ds := models.NewDataset("Title", column)
	for i, v := range values {
		ds.Append(models.Record{"Title": string(rune('A' + i)), column: v})
	}

	return ds
}

func TestFirstPresent(t *testing.T) {
	tests := []struct {
		name      string
		available []string
		want      string
		found     bool
	}{
		{name: "Year wins", available: []string{"Publication Year", "Year"}, want: "Year", found: true},
		{name: "Second candidate", available: []string{"Title", "Publication Year"}, want: "Publication Year", found: true},
		{name: "Third candidate", available: []string{"Year of publication"}, want: "Year of publication", found: true},
		{name: "None", available: []string{"Title", "PY"}, found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := FirstPresent(DefaultYearCandidates, tt.available)
			if got != tt.want || found != tt.found {
				t.Errorf("FirstPresent = (%q, %v), want (%q, %v)", got, found, tt.want, tt.found)
			}
		})
	}
}

func TestExtractYear(t *testing.T) {
	tests := []struct {
		raw     string
		present bool
		want    string
	}{
		{raw: "", present: false, want: ""},
		{raw: "", present: true, want: ""},
		{raw: "nan", present: true, want: ""},
		{raw: "2020", present: true, want: "2020"},
		{raw: "2020.0", present: true, want: "2020"},
		{raw: "2024.6", present: true, want: "2024"},
		{raw: " 2019.9 ", present: true, want: "2019"},
		{raw: "２０２１", present: true, want: "2021"},
		{raw: "abc.def", present: true, want: ""},
		{raw: ".", present: true, want: ""},
		{raw: "In press", present: true, want: "In press"},
		{raw: "1e3", present: true, want: "1e3"},
	}

	for _, tt := range tests {
		if got := ExtractYear(tt.raw, tt.present); got != tt.want {
			t.Errorf("ExtractYear(%q, %v) = %q, want %q", tt.raw, tt.present, got, tt.want)
		}
	}
}

func TestCoerceYear(t *testing.T) {
	tests := []struct {
		raw   string
		want  int
		empty bool
	}{
		{raw: "2020.5", want: 2020},
		{raw: "1999", want: 1999},
		{raw: " 2018", want: 2018},
		{raw: "2e3", want: 2000},
		{raw: "nan", empty: true},
		{raw: "NaN", empty: true},
		{raw: "inf", empty: true},
		{raw: "Early access", empty: true},
		{raw: "", empty: true},
	}

	for _, tt := range tests {
		cell := CoerceYear(tt.raw, true)
		if cell.IsEmpty() != tt.empty {
			t.Errorf("CoerceYear(%q).IsEmpty() = %v, want %v", tt.raw, cell.IsEmpty(), tt.empty)
			continue
		}

		if got, ok := cell.Year(); ok && got != tt.want {
			t.Errorf("CoerceYear(%q).Year() = %d, want %d", tt.raw, got, tt.want)
		}
	}

	if y, ok := Parsed(2001).Year(); !ok || y != 2001 {
		t.Errorf("Parsed(2001).Year() = (%d, %v)", y, ok)
	}

	if _, ok := Empty().Year(); ok {
		t.Error("Empty().Year() reported a year")
	}
}

func TestYearNormalizer_Boundaries(t *testing.T) {
	ds := yearDataset("Year", "1899", "1900", "2027", "2028", "2099")

	res := NewYearNormalizer(nil, 0, fixedNow).Normalize(ds)

	if res.MaxYear != 2027 {
		t.Errorf("MaxYear = %d, want 2027", res.MaxYear)
	}

	if ds.Len() != 2 {
		t.Fatalf("Expected 2 rows kept, got %d", ds.Len())
	}

	if ds.Records[0].Value("Year") != "1900" || ds.Records[1].Value("Year") != "2027" {
		t.Errorf("Unexpected survivors: %v, %v", ds.Records[0], ds.Records[1])
	}

	if res.OutOfRange != 3 || res.Unparseable != 0 {
		t.Errorf("OutOfRange = %d, Unparseable = %d, want 3 and 0", res.OutOfRange, res.Unparseable)
	}
}

func TestYearNormalizer_DropsUnparseable(t *testing.T) {
	ds := yearDataset("Year", "nan", "", "In press", "2021.7")
	ds.Append(models.Record{"Title": "missing"})

	res := NewYearNormalizer(nil, 0, fixedNow).Normalize(ds)

	if ds.Len() != 1 || ds.Records[0].Value("Year") != "2021" {
		t.Fatalf("Expected only the 2021 row, got %v", ds.Records)
	}

	if res.Unparseable != 4 || res.Dropped() != 4 {
		t.Errorf("Unparseable = %d, Dropped = %d, want 4", res.Unparseable, res.Dropped())
	}
}

func TestYearNormalizer_RenamesCandidate(t *testing.T) {
	ds := models.NewDataset("Title", "Publication Year", "DOI")
	ds.Append(models.Record{"Title": "A", "Publication Year": "2015.0", "DOI": "x"})

	res := NewYearNormalizer(nil, 0, fixedNow).Normalize(ds)

	if res.Column != "Publication Year" {
		t.Errorf("Column = %s, want Publication Year", res.Column)
	}

	cols := ds.Columns()
	if cols[1] != "Year" || ds.HasColumn("Publication Year") {
		t.Errorf("Column not renamed in place: %v", cols)
	}

	if ds.Records[0].Value("Year") != "2015" {
		t.Errorf("Year = %s, want 2015", ds.Records[0].Value("Year"))
	}
}

func TestYearNormalizer_OnlyFirstCandidateIsUsed(t *testing.T) {
	ds := models.NewDataset("Year", "Publication Year")
	ds.Append(models.Record{"Year": "2010", "Publication Year": "2011"})
	ds.Append(models.Record{"Publication Year": "2012"})

	NewYearNormalizer(nil, 0, fixedNow).Normalize(ds)

	if ds.Len() != 1 {
		t.Fatalf("Expected the row without Year to be dropped, got %d rows", ds.Len())
	}

	if ds.Records[0].Value("Publication Year") != "2011" {
		t.Error("Other candidate columns must be left untouched")
	}
}

func TestYearNormalizer_NoCandidate(t *testing.T) {
	ds := models.NewDataset("Title")
	ds.Append(models.Record{"Title": "A"})
	ds.Append(models.Record{"Title": "B"})

	res := NewYearNormalizer(nil, 0, fixedNow).Normalize(ds)

	if res.Found {
		t.Error("Expected no candidate to be found")
	}

	if ds.Len() != 2 {
		t.Errorf("No rows may be dropped without a year column, got %d", ds.Len())
	}

	for _, rec := range ds.Records {
		if v, ok := rec.Get("Year"); !ok || v != "" {
			t.Errorf("Year = (%q, %v), want empty and present", v, ok)
		}
	}
}

func TestYearNormalizer_Idempotent(t *testing.T) {
	ds := yearDataset("Year", "2001", "2002.9", "1850", "nan", "2026")
	n := NewYearNormalizer(nil, 0, fixedNow)

	n.Normalize(ds)
	first := make([]string, ds.Len())

	for i, rec := range ds.Records {
		first[i] = rec.Value("Year")
	}

	res := n.Normalize(ds)

	if res.Dropped() != 0 || ds.Len() != len(first) {
		t.Fatalf("Second pass dropped %d rows", res.Dropped())
	}

	for i, rec := range ds.Records {
		if rec.Value("Year") != first[i] {
			t.Errorf("row %d: %s != %s", i, rec.Value("Year"), first[i])
		}
	}
}

func TestYearNormalizer_CustomMinYear(t *testing.T) {
	ds := yearDataset("Year", "1949", "1950")

	NewYearNormalizer([]string{"Year"}, 1950, fixedNow).Normalize(ds)

	if ds.Len() != 1 || ds.Records[0].Value("Year") != "1950" {
		t.Errorf("Expected only 1950 to survive, got %v", ds.Records)
	}
}
