// Package config provides configuration management for the merge pipeline.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"bibliofusion/internal/models"
)

// Configuration validation errors.
var (
	ErrMissingInputDir     = errors.New("paths.input_dir is required")
	ErrMissingOutputDir    = errors.New("paths.output_dir is required")
	ErrMissingInputFile    = errors.New("input file is required")
	ErrInvalidDelimiter    = errors.New("input delimiter must be a single character")
	ErrMissingLabel        = errors.New("input label is required")
	ErrDuplicateLabel      = errors.New("input labels must differ")
	ErrMissingOutputFile   = errors.New("output.dataset_filename and output.report_filename are required")
	ErrOutputNameCollision = errors.New("output file names must differ")
	ErrNoYearCandidates    = errors.New("years.candidates must list at least one column")
	ErrInvalidMinYear      = errors.New("years.min_year must be positive")
	ErrInvalidLogLevel     = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat    = errors.New("logging.format must be 'text' or 'json'")
)

// Config represents the complete merge configuration. It is built once and passed by value.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Inputs  InputsConfig  `yaml:"inputs"`
	Output  OutputConfig  `yaml:"output"`
	Years   YearsConfig   `yaml:"years"`
	Dedup   DedupConfig   `yaml:"dedup"`
	Logging LoggingConfig `yaml:"logging"`
}

// PathsConfig holds the working directories.
type PathsConfig struct {
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`
	DocsDir   string `yaml:"docs_dir"`
}

// InputsConfig describes the two source exports, loaded in this order.
type InputsConfig struct {
	WoS    InputConfig `yaml:"wos"`
	Scopus InputConfig `yaml:"scopus"`
}

// InputConfig describes one delimited export.
type InputConfig struct {
	File      string `yaml:"file"`
	Delimiter string `yaml:"delimiter"`
	Label     string `yaml:"label"`
}

// Comma returns the delimiter as a rune.
func (in InputConfig) Comma() rune {
	r, _ := utf8.DecodeRuneInString(in.Delimiter)
	return r
}

// OutputConfig names the files written to the output directory.
// SQLiteFilename is optional; an empty value disables the SQLite export.
type OutputConfig struct {
	DatasetFilename string `yaml:"dataset_filename"`
	ReportFilename  string `yaml:"report_filename"`
	SQLiteFilename  string `yaml:"sqlite_filename"`
}

// YearsConfig drives year normalization.
type YearsConfig struct {
	Candidates []string `yaml:"candidates"`
	MinYear    int      `yaml:"min_year"`
}

// DedupConfig drives duplicate removal.
type DedupConfig struct {
	// KeepBlankKeys keeps every record whose key is blank instead of collapsing them into the first.
	KeepBlankKeys bool `yaml:"keep_blank_keys"`
}

// LoggingConfig defines console logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Paths: PathsConfig{
			InputDir:  "inputs",
			OutputDir: "outputs",
			DocsDir:   "docs",
		},
		Inputs: InputsConfig{
			WoS:    InputConfig{File: "wos_data.txt", Delimiter: "\t", Label: models.SourceWebOfScience},
			Scopus: InputConfig{File: "scopus_data.csv", Delimiter: ",", Label: models.SourceScopus},
		},
		Output: OutputConfig{
			DatasetFilename: "bibliofusion_output.csv",
			ReportFilename:  "processing_report.txt",
		},
		Years: YearsConfig{
			Candidates: []string{"Year", "Publication Year", "Year of publication"},
			MinYear:    1900,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig loads configuration from a YAML file layered over Default.
func LoadConfig(filepath string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.Paths.InputDir == "" {
		return ErrMissingInputDir
	}

	if c.Paths.OutputDir == "" {
		return ErrMissingOutputDir
	}

	inputs := map[string]InputConfig{"wos": c.Inputs.WoS, "scopus": c.Inputs.Scopus}
	for _, name := range []string{"wos", "scopus"} {
		in := inputs[name]

		if in.File == "" {
			return fmt.Errorf("%w: inputs.%s.file", ErrMissingInputFile, name)
		}

		if utf8.RuneCountInString(in.Delimiter) != 1 {
			return fmt.Errorf("%w: inputs.%s.delimiter %q", ErrInvalidDelimiter, name, in.Delimiter)
		}

		if in.Label == "" {
			return fmt.Errorf("%w: inputs.%s.label", ErrMissingLabel, name)
		}
	}

	if c.Inputs.WoS.Label == c.Inputs.Scopus.Label {
		return ErrDuplicateLabel
	}

	if c.Output.DatasetFilename == "" || c.Output.ReportFilename == "" {
		return ErrMissingOutputFile
	}

	names := map[string]bool{}
	for _, n := range c.OutputFiles() {
		if names[n] {
			return fmt.Errorf("%w: %s", ErrOutputNameCollision, n)
		}

		names[n] = true
	}

	if len(c.Years.Candidates) == 0 {
		return ErrNoYearCandidates
	}

	if c.Years.MinYear <= 0 {
		return ErrInvalidMinYear
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	return nil
}

// InputPaths returns the WoS and Scopus paths, in load order.
func (c Config) InputPaths() []string {
	return []string{
		filepath.Join(c.Paths.InputDir, c.Inputs.WoS.File),
		filepath.Join(c.Paths.InputDir, c.Inputs.Scopus.File),
	}
}

// OutputPath joins a file name onto the output directory.
func (c Config) OutputPath(name string) string {
	return filepath.Join(c.Paths.OutputDir, name)
}

// OutputFiles returns the names of every file a successful run writes.
func (c Config) OutputFiles() []string {
	files := []string{c.Output.DatasetFilename, c.Output.ReportFilename}
	if c.Output.SQLiteFilename != "" {
		files = append(files, c.Output.SQLiteFilename)
	}

	return files
}

// DirStatus reports whether EnsureDirectories had to create a directory.
type DirStatus struct {
	Path    string
	Created bool
}

// EnsureDirectories creates the input, output and docs directories when missing.
func (c Config) EnsureDirectories() ([]DirStatus, error) {
	var statuses []DirStatus

	for _, dir := range []string{c.Paths.InputDir, c.Paths.OutputDir, c.Paths.DocsDir} {
		if dir == "" {
			continue
		}

		if _, err := os.Stat(dir); err == nil {
			statuses = append(statuses, DirStatus{Path: dir})
			continue
		}

		if err := os.MkdirAll(dir, 0755); err != nil {
			return statuses, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}

		statuses = append(statuses, DirStatus{Path: dir, Created: true})
	}

	return statuses, nil
}

// String returns a string representation of the config.
func (c Config) String() string {
	return fmt.Sprintf(
		"Config{Input: %s, Output: %s, YearCandidates: %d}",
		c.Paths.InputDir,
		c.Paths.OutputDir,
		len(c.Years.Candidates),
	)
}
