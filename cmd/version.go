package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dirtree/pkg/version"
)

// newVersionCommand reports build information. --short prints only the version number.
func newVersionCommand() *cobra.Command {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Display the version of dirtree",
		Long:  `Display the current version information of the dirtree CLI tool.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			short, err := cmd.Flags().GetBool("short")
			if err != nil {
				return fmt.Errorf("error reading flags: %w", err)
			}

			v := version.Get()
			if short {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), v.Version)
			} else {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), v.String())
			}
			return err
		},
	}
	versionCmd.Flags().BoolP("short", "s", false, "Print the version number only")
	return versionCmd
}
