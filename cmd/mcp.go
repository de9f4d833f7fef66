package cmd

import (
	"context"
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/appointed/internal/calendar"
	"github.com/teemow/appointed/internal/config"
	"github.com/teemow/appointed/internal/instrumentation"
	"github.com/teemow/appointed/internal/logging"
	"github.com/teemow/appointed/internal/tools/booking_tools"
)

// newMCPCmd creates the mcp command
func newMCPCmd() *cobra.Command {
	var debugMode bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server for AI assistants",
		Long: `Start an MCP (Model Context Protocol) server over stdio that exposes
the booking calendar to AI assistants.

Tools:
  booking_list_slots    List available appointment start times for a date
  booking_book_slot     Book an appointment slot
  booking_list_events   List the events already on the calendar for a date

The server uses the same environment configuration and Google credentials
as the serve command.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runMCP(debugMode)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	return cmd
}

func runMCP(debugMode bool) error {
	// Logs go to stderr, keeping stdout clean for the MCP transport.
	logger := logging.Setup(debugMode)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx := context.Background()

	provider, err := credentialProvider(logger)
	if err != nil {
		return err
	}

	client, err := calendar.NewClient(ctx, provider)
	if err != nil {
		return fmt.Errorf("failed to create calendar client: %w", err)
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	// Prometheus scraping makes no sense over stdio; keep the in-process
	// recorder unless an exporter was requested explicitly.
	if instrConfig.MetricsExporter == instrumentation.ExporterPrometheus {
		instrConfig.Enabled = false
	}

	instr, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := instr.Shutdown(context.Background()); err != nil {
			logger.Error("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	mcpSrv := mcpserver.NewMCPServer("appointed", version,
		mcpserver.WithToolCapabilities(true),
	)

	if err := booking_tools.RegisterBookingTools(mcpSrv, cfg, client, instr.Metrics()); err != nil {
		return fmt.Errorf("failed to register booking tools: %w", err)
	}

	return mcpserver.ServeStdio(mcpSrv)
}
