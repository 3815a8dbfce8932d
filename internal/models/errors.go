package models

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failures that end a run.
var (
	ErrMissingInput = errors.New("missing input file")
	ErrLoad         = errors.New("failed to load input")
	ErrSave         = errors.New("failed to save results")
)

// MissingInputError reports required input files that do not exist.
type MissingInputError struct {
	Paths []string
}

// Error implements the error interface.
func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingInput, strings.Join(e.Paths, ", "))
}

// Is implements errors.Is support.
func (e *MissingInputError) Is(target error) bool {
	return target == ErrMissingInput
}

// LoadError reports an input that exists but cannot be read as delimited UTF-8 text.
type LoadError struct {
	Source string
	Path   string
	Err    error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("%s %s (%s): %v", ErrLoad, e.Source, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoad
}

// SaveError reports an output that could not be written.
type SaveError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *SaveError) Error() string {
	return fmt.Sprintf("%s to %s: %v", ErrSave, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *SaveError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *SaveError) Is(target error) bool {
	return target == ErrSave
}
