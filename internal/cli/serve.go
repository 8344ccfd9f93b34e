package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sitelens/sitelens/internal/api/handlers"
	"github.com/sitelens/sitelens/internal/jobs"
	"github.com/sitelens/sitelens/internal/server"
	"github.com/sitelens/sitelens/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the sitelens API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().Bool("ingest-on-start", false, "Run a full ingestion pass before accepting requests")

	return cmd
}

// resolvePort prefers an explicitly set --port flag over the configured port,
// even when the flag value equals the flag default.
func resolvePort(cmd *cobra.Command, configPort string) string {
	if cmd.Flags().Changed("port") {
		p, _ := cmd.Flags().GetString("port")
		return p
	}
	return configPort
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	app, err := BuildApp(ctx, !noMigrate)
	if err != nil {
		return err
	}
	defer app.Close()

	if app.Config.SentryDSN != "" {
		environment := app.Config.Environment

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              app.Config.SentryDSN,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			app.Logger.Warn().Err(err).Msg("telemetry init failed (continuing without tracing)")
		} else {
			defer shutdownTelemetry()
		}
	}

	port := resolvePort(cmd, app.Config.Port)

	if ingestOnStart, _ := cmd.Flags().GetBool("ingest-on-start"); ingestOnStart {
		report, err := app.Ingest.Run(ctx)
		if err != nil {
			return fmt.Errorf("initial ingestion failed: %w", err)
		}
		app.Logger.Info().
			Int("succeeded", report.Succeeded).
			Int("failed", report.Failed).
			Int("chunks", report.Chunks).
			Msg("initial ingestion complete")
	}

	var rescanWorker *jobs.Worker
	if interval := app.Retrieval.Ingest.RescanIntervalMS; interval > 0 {
		rescanner := jobs.NewRescanner(app.Ingest, app.Index, app.Logger)
		rescanWorker = jobs.NewWorker(rescanner, time.Duration(interval)*time.Millisecond, app.Logger)
		go rescanWorker.Start(ctx)
		app.Logger.Info().Int("interval_ms", interval).Msg("rescan worker started")
	}

	routerCfg := server.RouterConfig{
		SearchHandler: handlers.NewSearchHandler(app.Search),
		IngestHandler: handlers.NewIngestHandler(app.Ingest, app.Index),
		Logger:        app.Logger,
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		app.Logger.Info().Str("port", port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	app.Logger.Info().Msg("shutting down...")

	if rescanWorker != nil {
		rescanWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	app.Logger.Info().Msg("server exited")
	return nil
}
