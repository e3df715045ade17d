package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"ramble/internal/version"
)

// Cmd represents the version command
var Cmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of ramble",
	Long:  `All software has versions. This is ramble's.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(version.Version)
		return nil
	},
}
