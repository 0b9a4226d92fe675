package cmd

import (
	"fmt"
	"io"
	"os"

	"filetamer/pkg/logging"
	"filetamer/pkg/version"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootOptions carries the persistent flags and the logger built from them
// to every subcommand.
type rootOptions struct {
	logLevel string
	logFile  string
	logger   *zap.Logger
}

// NewRootCommand creates the root command with all subcommands attached.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{logger: zap.NewNop()}

	cmd := &cobra.Command{
		Use:   version.AppName,
		Short: "Filetamer selects, cleans up and relocates files",
		Long: `Filetamer walks a source directory, selects files by include/exclude globs,
age and size, optionally deletes them or bundles them into a zip, tar or
tar.gz archive, and moves or copies what remains into a target tree without
ever overwriting an existing file.`,
		Version:      version.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.Setup(logging.Options{
				Level:      opts.logLevel,
				File:       opts.logFile,
				AppName:    version.AppName,
				AppVersion: version.Version,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.logger = logger
			color.NoColor = !colorOutput(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "Log file path (default $XDG_STATE_HOME/filetamer/filetamer.log)")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newConfigCommand(opts))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// colorOutput reports whether w is a terminal.
func colorOutput(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
