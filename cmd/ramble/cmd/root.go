package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"ramble/cmd/ramble/cmd/export"
	"ramble/cmd/ramble/cmd/models"
	"ramble/cmd/ramble/cmd/serve"
	"ramble/cmd/ramble/cmd/transcribe"
	"ramble/cmd/ramble/cmd/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ramble",
	Short: "Audio transcription service with speaker labels",
	Long: `Ramble turns speech recordings into text with detected language,
timed segments and heuristic speaker labels.

- serve runs the HTTP service
- transcribe uploads audio files to a running server
- models lists the model catalog of a running server
- export writes stored transcription history to csv, json or xlsx`,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(transcribe.Cmd)
	rootCmd.AddCommand(models.Cmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(version.Cmd)
}
