package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"bibliofusion/pkg/metadata"
)

func newVerifyCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that the merged dataset matches the checksum recorded in the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}

			reportPath := cfg.OutputPath(cfg.Output.ReportFilename)
			datasetPath := cfg.OutputPath(cfg.Output.DatasetFilename)

			report, err := os.ReadFile(reportPath)
			if err != nil {
				return fmt.Errorf("failed to read report: %w", err)
			}

			dataset, err := os.ReadFile(datasetPath)
			if err != nil {
				return fmt.Errorf("failed to read dataset: %w", err)
			}

			fmt.Fprintf(stdout, "📂 Reading: %s (%d bytes)\n", datasetPath, len(dataset))

			if _, err := metadata.Verify(string(report), dataset); err != nil {
				fmt.Fprintf(stdout, "❌ Verification failed: %v\n", err)
				return err
			}

			meta, _ := metadata.Extract(string(report))
			fmt.Fprintf(stdout, "✅ Checksum verified: %s (%d records)\n", meta.Hash, meta.Records)

			return nil
		},
	}
}
