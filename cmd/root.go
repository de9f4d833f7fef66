package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the appointed application
var rootCmd = &cobra.Command{
	Use:   "appointed",
	Short: "Appointment booking service backed by Google Calendar",
	Long: `appointed exposes appointment availability and booking for a single
Google Calendar. Free slots are computed from the calendar's busy times
within configured work hours, with a buffer kept around existing events.

It can run as:
  - An HTTP API server (default)
  - An MCP (Model Context Protocol) server for AI assistants`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "appointed version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMCPCmd())
	rootCmd.AddCommand(newVersionCmd())
}
