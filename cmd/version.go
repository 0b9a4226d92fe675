// File: cmd/version.go
package cmd

import (
	"fmt"

	"filetamer/pkg/version"

	"github.com/spf13/cobra"
)

// newVersionCommand displays the current version of filetamer.
// The --short flag allows users to retrieve a concise version string.
func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display the version of filetamer",
		Long:  `Display the current version information of the filetamer CLI tool.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			short, err := cmd.Flags().GetBool("short")
			if err != nil {
				return fmt.Errorf("error reading flags: %w", err)
			}

			v := version.Get()
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), v.Version)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), v.String())
			}
			return nil
		},
	}

	cmd.Flags().BoolP("short", "s", false, "Print the version number only")
	return cmd
}
