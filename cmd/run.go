// File: cmd/run.go
package cmd

import (
	"fmt"

	"filetamer/pkg/config"
	"filetamer/pkg/fsops"
	"filetamer/pkg/logging"
	"filetamer/pkg/pipeline"
	"filetamer/pkg/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCommand(root *rootOptions) *cobra.Command {
	var (
		configPath string
		dryRun     bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "run SOURCE TARGET",
		Short: "Select, clean up and transfer files from SOURCE into TARGET",
		Long: `Run the full pipeline: select files under SOURCE, apply the cleanup policy
(archive, delete or nothing), then move or copy the remaining files into
TARGET. With --dry-run nothing on disk changes; every intended action is
logged instead.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := root.logger
			cfg, err := config.Load(configPath, logger)
			if err != nil {
				return err
			}

			done := logging.LogOperationStart(logger, "run")
			defer done()

			summary, runErr := pipeline.Run(pipeline.Options{
				Source: args[0],
				Target: args[1],
				Config: cfg,
				Mode:   fsops.ModeFor(dryRun),
				Logger: logger,
			})

			printer := report.NewPrinter(cmd.OutOrStdout(), verbose)
			if summary.Cleanup != nil {
				printer.Print(summary.Cleanup, dryRun)
			}
			if summary.Transfer != nil {
				printer.Print(summary.Transfer, dryRun)
			}
			if n := len(summary.Warnings); n > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d paths could not be read during selection\n", n)
			}

			if runErr != nil {
				return runErr
			}
			if summary.HasFailures() {
				logger.Warn("Run finished with failures", zap.String("runID", summary.RunID))
				return fmt.Errorf("run %s finished with failed files", summary.RunID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML, TOML or JSON config file")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Log intended actions without changing anything")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List every file outcome, not only failures")

	return cmd
}
