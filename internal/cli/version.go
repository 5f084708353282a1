package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"catlab/pkg/contracts"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print version information",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(cmd, rootOpts)
			if formatter.Format == "json" {
				return formatter.Success(contracts.GetVersionInfo())
			}
			if rootOpts.Verbose {
				fmt.Fprintln(formatter.Writer, contracts.GetFullVersionString())
				return nil
			}
			fmt.Fprintln(formatter.Writer, contracts.GetVersionString())
			return nil
		},
	}
}
