// Package metadata writes and checks the integrity block that ties a processing report
// to the dataset file it describes.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// TagStart is the start of the metadata block.
	TagStart = "--- METADATA_START"
	// TagEnd is the end of the metadata block.
	TagEnd = "METADATA_END ---"
)

// Metadata verification errors.
var (
	ErrNoMetadataBlock = errors.New("no metadata block found")
	ErrNoHashFound     = errors.New("no hash found in metadata")
	ErrHashMismatch    = errors.New("hash mismatch")
)

// Metadata describes the dataset a report was generated for.
type Metadata struct {
	Generated time.Time
	Dataset   string
	Hash      string
	Records   int
}

// metadataRegex matches the entire metadata block including tags.
var metadataRegex = regexp.MustCompile(`(?s)\n*---\s*METADATA_START\s*\n(.*?)\n\s*METADATA_END\s*---\n?`)

// Checksum computes the SHA-256 of data as lowercase hex.
func Checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Block renders the metadata block.
func Block(meta Metadata) string {
	return fmt.Sprintf("%s\nDATASET: %s\nRECORDS: %d\nGENERATED: %s\nSHA256: %s\n%s\n",
		TagStart, meta.Dataset, meta.Records, meta.Generated.UTC().Format(time.RFC3339), meta.Hash, TagEnd)
}

// Sign appends a metadata block for data to report, replacing any existing block.
func Sign(report string, data []byte, meta Metadata) string {
	_, clean := Extract(report)

	meta.Hash = Checksum(data)

	return clean + "\n\n" + Block(meta)
}

// Extract removes the metadata block from report and returns both the metadata and the cleaned text.
func Extract(report string) (*Metadata, string) {
	match := metadataRegex.FindStringSubmatch(report)
	clean := metadataRegex.ReplaceAllString(report, "")
	clean = strings.TrimRight(clean, "\n")

	if len(match) < 2 {
		return nil, clean
	}

	meta := &Metadata{}

	for _, line := range strings.Split(match[1], "\n") {
		parts := strings.SplitN(strings.TrimSpace(line), ":", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])

		switch key {
		case "DATASET":
			meta.Dataset = val
		case "RECORDS":
			if n, err := strconv.Atoi(val); err == nil {
				meta.Records = n
			}
		case "GENERATED":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				meta.Generated = t
			}
		case "SHA256":
			meta.Hash = val
		}
	}

	return meta, clean
}

// Verify checks that data matches the hash recorded in report.
func Verify(report string, data []byte) (bool, error) {
	meta, _ := Extract(report)
	if meta == nil {
		return false, ErrNoMetadataBlock
	}

	if meta.Hash == "" {
		return false, ErrNoHashFound
	}

	calculated := Checksum(data)
	if calculated != meta.Hash {
		return false, fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, meta.Hash, calculated)
	}

	return true, nil
}
