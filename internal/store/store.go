// Package store persists the merged dataset, its report and the optional SQLite export.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"bibliofusion/internal/logger"
	"bibliofusion/internal/models"
)

// Artifact is one output file. Write must fully produce the file at path.
type Artifact struct {
	Name  string
	Write func(ctx context.Context, path string) error
}

// Bytes returns an artifact holding data verbatim.
func Bytes(name string, data []byte) Artifact {
	return Artifact{
		Name: name,
		Write: func(_ context.Context, path string) error {
			return os.WriteFile(path, data, 0644)
		},
	}
}

// SQLite returns an artifact holding the dataset as a SQLite database.
func SQLite(name string, ds *models.Dataset) Artifact {
	return Artifact{
		Name: name,
		Write: func(ctx context.Context, path string) error {
			return WriteSQLite(ctx, path, ds)
		},
	}
}

// Store writes artifacts into one directory.
type Store struct {
	dir string
	log *logger.Logger
}

// New creates a store rooted at dir. A nil logger discards output.
func New(dir string, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Discard()
	}

	return &Store{dir: dir, log: log}
}

// Path returns the final location of name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Save stages every artifact into a temporary file next to its destination and renames
// them into place only after all of them were written. On failure staged files are
// removed and a *models.SaveError is returned. It returns the written paths in order.
func (s *Store) Save(ctx context.Context, artifacts ...Artifact) ([]string, error) {
	staged := make([]string, 0, len(artifacts))

	cleanup := func() {
		for _, tmp := range staged {
			if err := os.Remove(tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
				s.log.Warn("failed to remove staged file", "path", tmp, "error", err)
			}
		}
	}

	for _, a := range artifacts {
		dest := s.Path(a.Name)

		if err := ctx.Err(); err != nil {
			cleanup()
			return nil, &models.SaveError{Path: dest, Err: err}
		}

		tmp, err := s.stage(ctx, a)
		if tmp != "" {
			staged = append(staged, tmp)
		}

		if err != nil {
			cleanup()
			return nil, &models.SaveError{Path: dest, Err: err}
		}

		s.log.Debug("artifact staged", "name", a.Name, "tmp", tmp)
	}

	written := make([]string, 0, len(artifacts))

	for i, a := range artifacts {
		dest := s.Path(a.Name)

		if err := os.Rename(staged[i], dest); err != nil {
			staged = staged[i:]
			cleanup()

			return written, &models.SaveError{Path: dest, Err: err}
		}

		written = append(written, dest)
	}

	return written, nil
}

func (s *Store) stage(ctx context.Context, a Artifact) (string, error) {
	f, err := os.CreateTemp(s.dir, "."+a.Name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}

	tmp := f.Name()

	if err := f.Close(); err != nil {
		return tmp, err
	}

	if err := a.Write(ctx, tmp); err != nil {
		return tmp, err
	}

	return tmp, os.Chmod(tmp, 0644)
}
