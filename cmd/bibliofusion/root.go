package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bibliofusion/internal/config"
	"bibliofusion/internal/logger"
	"bibliofusion/internal/pipeline"
)

const envPrefix = "BIBLIOFUSION"

// Flag names, also used as viper keys. Environment variables are
// BIBLIOFUSION_ followed by the upper-cased name with dashes as underscores.
const (
	flagConfig        = "config"
	flagInputDir      = "input-dir"
	flagOutputDir     = "output-dir"
	flagSQLite        = "sqlite"
	flagLogLevel      = "log-level"
	flagLogFormat     = "log-format"
	flagKeepBlankKeys = "keep-blank-keys"
)

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bibliofusion",
		Short: "Merge Web of Science and Scopus exports into one deduplicated dataset",
		Long: `BiblioFusion merges a Web of Science tab-separated export and a Scopus CSV export
into a single dataset: years are normalized, essential columns harmonized and
duplicates removed by DOI (or by Title and Year when no DOI column exists).

It writes the merged CSV and a processing report to the output directory.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, stdout, stderr)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.PersistentFlags()
	flags.String(flagConfig, "", "YAML configuration file")
	flags.String(flagInputDir, "", "directory holding wos_data.txt and scopus_data.csv")
	flags.String(flagOutputDir, "", "directory receiving the merged dataset and report")
	flags.String(flagSQLite, "", "also write the merged dataset to this SQLite file in the output directory")
	flags.String(flagLogLevel, "", "log level (debug, info, warn, error)")
	flags.String(flagLogFormat, "", "log format (text, json)")
	flags.Bool(flagKeepBlankKeys, false, "keep every record with a blank dedup key")

	cmd.AddCommand(newVersionCmd(stdout), newVerifyCmd(stdout))

	return cmd
}

func run(cmd *cobra.Command, stdout, stderr io.Writer) error {
	fmt.Fprintln(stdout, "\n"+strings.Repeat("=", 60))
	fmt.Fprintln(stdout, "🎯 BIBLIOFUSION - Intelligent Bibliographic Fusion")
	fmt.Fprintln(stdout, strings.Repeat("=", 60))

	cfg, err := resolveConfig(cmd)
	if err != nil {
		fmt.Fprintf(stdout, "\n❌ Invalid configuration: %v\n", err)
		return err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, stderr)
	log.Debug("configuration resolved", "config", cfg.String())

	res, err := pipeline.New(cfg, log).Run(cmd.Context())
	if err != nil {
		log.Error("run failed", "error", err)
		fmt.Fprintln(stdout, "\n❌ An error occurred during processing")
		fmt.Fprintf(stdout, "📖 See the documentation in '%s/' for help\n", cfg.Paths.DocsDir)

		return err
	}

	log.Debug("run finished", "result", res.String(), "sha256", res.Checksum)
	fmt.Fprintf(stdout, "\n✅ Processing complete! Check the '%s/' folder\n", cfg.Paths.OutputDir)

	return nil
}

// resolveConfig layers, highest first: flags, environment (including .env files),
// the YAML file named by --config, built-in defaults.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return config.Config{}, fmt.Errorf("failed to bind flags: %w", err)
	}

	cfg := config.Default()

	if path := v.GetString(flagConfig); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, err
		}

		cfg = loaded
	}

	if v.IsSet(flagInputDir) {
		cfg.Paths.InputDir = v.GetString(flagInputDir)
	}

	if v.IsSet(flagOutputDir) {
		cfg.Paths.OutputDir = v.GetString(flagOutputDir)
	}

	if v.IsSet(flagSQLite) {
		cfg.Output.SQLiteFilename = v.GetString(flagSQLite)
	}

	if v.IsSet(flagLogLevel) {
		cfg.Logging.Level = strings.ToLower(v.GetString(flagLogLevel))
	}

	if v.IsSet(flagLogFormat) {
		cfg.Logging.Format = strings.ToLower(v.GetString(flagLogFormat))
	}

	if v.IsSet(flagKeepBlankKeys) {
		cfg.Dedup.KeepBlankKeys = v.GetBool(flagKeepBlankKeys)
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadEnvFiles loads .env.local then .env; variables already set are never overridden,
// so .env.local wins over .env and the real environment wins over both.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
