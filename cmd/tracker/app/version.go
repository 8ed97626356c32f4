package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/symcn/tracker/pkg/version"
)

// NewVersionCmd ...
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of tracker",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetVersion().String())
		},
	}
}
