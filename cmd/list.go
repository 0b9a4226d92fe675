// File: cmd/list.go
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"filetamer/pkg/config"
	"filetamer/pkg/pipeline"
	"filetamer/pkg/selector"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newListCommand(root *rootOptions) *cobra.Command {
	var (
		configPath string
		long       bool
		tree       bool
	)

	cmd := &cobra.Command{
		Use:   "list SOURCE",
		Short: "Print the files a run would select, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := root.logger
			cfg, err := config.Load(configPath, logger)
			if err != nil {
				return err
			}

			result, err := pipeline.List(args[0], cfg, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if tree {
				abs, err := filepath.Abs(args[0])
				if err != nil {
					return fmt.Errorf("failed to resolve %s: %w", args[0], err)
				}
				fmt.Fprint(out, selector.RenderTree(abs, result.Files))
				return nil
			}

			for _, file := range result.Files {
				if !long {
					fmt.Fprintln(out, file)
					continue
				}
				info, err := os.Stat(file)
				if err != nil {
					logger.Warn("Failed to stat selected file", zap.String("filePath", file), zap.Error(err))
					fmt.Fprintf(out, "%10s  %-16s  %s\n", "?", "?", file)
					continue
				}
				fmt.Fprintf(out, "%10s  %-16s  %s\n",
					humanize.Bytes(uint64(info.Size())),
					humanize.Time(info.ModTime()),
					file)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML, TOML or JSON config file")
	cmd.Flags().BoolVarP(&long, "long", "l", false, "Show size and age for each file")
	cmd.Flags().BoolVarP(&tree, "tree", "t", false, "Render the selection as a directory tree")
	cmd.MarkFlagsMutuallyExclusive("long", "tree")

	return cmd
}
