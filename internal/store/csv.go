package store

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"bibliofusion/internal/models"
)

// EncodeCSV renders the dataset as comma-separated UTF-8 with a byte order mark,
// header first, columns in dataset order.
func EncodeCSV(ds *models.Dataset) ([]byte, error) {
	var buf bytes.Buffer

	bom := transform.NewWriter(&buf, unicode.UTF8BOM.NewEncoder())
	w := csv.NewWriter(bom)

	if err := w.Write(ds.Columns()); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i := range ds.Records {
		if err := w.Write(ds.Row(i)); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush: %w", err)
	}

	if err := bom.Close(); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	return buf.Bytes(), nil
}
