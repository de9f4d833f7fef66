package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/appointed/internal/calendar"
	"github.com/teemow/appointed/internal/config"
	"github.com/teemow/appointed/internal/google"
	"github.com/teemow/appointed/internal/instrumentation"
	"github.com/teemow/appointed/internal/logging"
	"github.com/teemow/appointed/internal/server"
)

// MetricsConfig holds the metrics server settings for the serve command.
type MetricsConfig struct {
	Enabled bool
	Addr    string
}

// newServeCmd creates the serve command
func newServeCmd() *cobra.Command {
	var (
		debugMode      bool
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the appointment booking HTTP API",
		Long: `Start the appointment booking HTTP API server.

The server computes free appointment slots from the configured Google
Calendar's busy times and creates calendar events for confirmed bookings.

Endpoints:
  GET  /health               Health check
  GET  /api/slots            Available slots for a date
  POST /api/book             Book a slot

Configuration is read from environment variables:
  PORT                 Listen port (default: 8080)
  TZ                   IANA timezone for work hours (default: America/Los_Angeles)
  GOOGLE_CALENDAR_ID   Calendar to book against (default: primary)
  WORK_START           Start of the bookable day, HH:mm (default: 09:00)
  WORK_END             End of the bookable day, HH:mm (default: 17:00)
  BUFFER_MIN           Buffer around events in minutes (default: 30)

Google credentials are read from GOOGLE_SERVICE_ACCOUNT_BASE64,
GOOGLE_SERVICE_ACCOUNT_JSON, or the GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET /
GOOGLE_REFRESH_TOKEN triple, in that order of precedence.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(debugMode, MetricsConfig{Enabled: metricsEnabled, Addr: metricsAddr})
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(debugMode bool, metricsConfig MetricsConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := logging.Setup(debugMode)

	// Load metrics config from environment if not set via flags
	if os.Getenv("METRICS_ENABLED") == "false" {
		metricsConfig.Enabled = false
	}
	if metricsConfig.Addr == "" || metricsConfig.Addr == server.DefaultMetricsAddr {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			metricsConfig.Addr = addr
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	provider, err := credentialProvider(logger)
	if err != nil {
		return err
	}

	client, err := calendar.NewClient(shutdownCtx, provider)
	if err != nil {
		return fmt.Errorf("failed to create calendar client: %w", err)
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	instr, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := instr.Shutdown(context.Background()); err != nil {
			logger.Error("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	// Start metrics server if enabled
	var metricsServer *server.MetricsServer
	if metricsConfig.Enabled && instr.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			InstrumentationProvider: instr,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
			logger.Info("metrics server started", "addr", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	apiServer := server.NewAPIServer(cfg, client, instr.Metrics(), logger)

	apiErr := make(chan error, 1)
	go func() {
		if err := apiServer.Start(); err != nil && err != http.ErrServerClosed {
			apiErr <- err
		}
		close(apiErr)
	}()

	select {
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-apiErr:
		if err != nil {
			return fmt.Errorf("booking API server failed: %w", err)
		}
		return nil
	}

	ctx, cancelShutdown := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancelShutdown()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("error during API server shutdown", logging.Err(err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Error("error during metrics server shutdown", logging.Err(err))
		}
	}

	return nil
}

// credentialProvider resolves Google credentials from the environment and
// logs which scheme was selected.
func credentialProvider(logger *slog.Logger) (google.CredentialProvider, error) {
	provider, err := google.FromEnvironment()
	if err != nil {
		return nil, err
	}
	logger.Info("using Google credentials", "scheme", provider.Name())
	return provider, nil
}
