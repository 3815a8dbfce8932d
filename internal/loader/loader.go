// Package loader reads the delimited source exports into tagged datasets.
package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"bibliofusion/internal/config"
	"bibliofusion/internal/logger"
	"bibliofusion/internal/models"
)

// Parse errors wrapped in a models.LoadError.
var (
	ErrEmptyInput    = errors.New("input has no header row")
	ErrInvalidUTF8   = errors.New("input is not valid UTF-8")
	ErrTooManyFields = errors.New("row has more fields than the header")
	ErrNotDelimited  = errors.New("input is not delimited text")
)

// Source is one export to load.
type Source struct {
	Label string
	Path  string
	Comma rune
}

// SourcesFromConfig returns the configured sources in load order: WoS first, then Scopus.
func SourcesFromConfig(cfg config.Config) []Source {
	paths := cfg.InputPaths()

	return []Source{
		{Label: cfg.Inputs.WoS.Label, Path: paths[0], Comma: cfg.Inputs.WoS.Comma()},
		{Label: cfg.Inputs.Scopus.Label, Path: paths[1], Comma: cfg.Inputs.Scopus.Comma()},
	}
}

// CheckInputs returns a *models.MissingInputError naming every source whose file does not exist.
func CheckInputs(sources []Source) error {
	var missing []string

	for _, src := range sources {
		if _, err := os.Stat(src.Path); errors.Is(err, fs.ErrNotExist) {
			missing = append(missing, src.Path)
		}
	}

	if len(missing) > 0 {
		return &models.MissingInputError{Paths: missing}
	}

	return nil
}

// Loader reads source exports.
type Loader struct {
	log *logger.Logger
}

// New creates a loader. A nil logger discards output.
func New(log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Discard()
	}

	return &Loader{log: log}
}

// Load reads one export and tags every row with the source label.
func (l *Loader) Load(ctx context.Context, src Source) (*models.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(src.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &models.MissingInputError{Paths: []string{src.Path}}
		}

		return nil, &models.LoadError{Source: src.Label, Path: src.Path, Err: err}
	}

	ds, err := Parse(data, src.Comma)
	if err != nil {
		return nil, &models.LoadError{Source: src.Label, Path: src.Path, Err: err}
	}

	ds.SetColumn(models.ColumnSource, src.Label)

	l.log.Debug("source loaded",
		"source", src.Label,
		"path", src.Path,
		"records", ds.Len(),
		"columns", len(ds.Columns()),
	)

	return ds, nil
}

// Parse decodes UTF-8 delimited text with a header row. A leading byte order mark is ignored.
func Parse(data []byte, comma rune) (*models.Dataset, error) {
	if !utf8.Valid(data) {
		return nil, ErrInvalidUTF8
	}

	if bytes.IndexByte(data, 0) >= 0 {
		return nil, ErrNotDelimited
	}

	data, err := unicode.UTF8BOM.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = comma
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}

	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}

	columns := headerNames(header)
	ds := models.NewDataset(columns...)

	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, err
		}

		if len(fields) > len(columns) {
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d has %d fields, expected %d",
				ErrTooManyFields, line, len(fields), len(columns))
		}

		rec := make(models.Record, len(columns))
		for i, v := range fields {
			rec[columns[i]] = v
		}

		ds.Append(rec)
	}

	return ds, nil
}

// headerNames names blank header cells "Unnamed: <index>" and suffixes repeated names with ".1", ".2", ...
func headerNames(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	repeats := make(map[string]int)

	for i, h := range header {
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}

		name := h
		for used[name] {
			repeats[h]++
			name = h + "." + strconv.Itoa(repeats[h])
		}

		used[name] = true
		names[i] = name
	}

	return names
}
