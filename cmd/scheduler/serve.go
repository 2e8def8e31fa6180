package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/example/clinic-scheduler/internal/backup"
	"github.com/example/clinic-scheduler/internal/config"
	"github.com/example/clinic-scheduler/internal/gateway"
	httptransport "github.com/example/clinic-scheduler/internal/http"
)

func serveCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the local scheduler API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withApp(cmd, func(ctx context.Context, a *app) error {
				ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
				defer stop()
				return runServer(ctx, a)
			})
		},
	}
}

func runServer(ctx context.Context, a *app) error {
	logger := a.logger

	if a.cfg.AutoBackup() {
		debouncer := backup.NewDebouncer(a.cfg.BackupDebounce)
		a.backups.EnableAuto(debouncer)
		logger.Info("automatic backup enabled", "debounce", debouncer.Delay(), "gateway", a.cfg.GatewayURL)
	}

	if a.cfg.ArchiveCron != "" {
		scheduler, err := archiveScheduler(a)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
		logger.Info("archive job scheduled", "cron", a.cfg.ArchiveCron, "timezone", a.cfg.TimezoneName)
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Appointments: httptransport.NewAppointmentHandler(a.appointments, logger),
		Roster:       httptransport.NewRosterHandler(a.roster, logger),
		Calendar:     httptransport.NewCalendarHandler(a.calendar, logger),
		Transfer:     httptransport.NewTransferHandler(a.transfer, logger),
		Backup:       httptransport.NewBackupHandler(a.backups, logger),
		Health:       a.storage.Ping,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.Recoverer(logger),
			httptransport.RequestLogger(logger),
		},
	})

	server := newServer(a.cfg.HTTPPort, router)
	err := serveUntilDone(ctx, server, logger.With("component", "api"))

	flushCtx, cancel := context.WithTimeout(context.Background(), a.cfg.BackupTimeout)
	defer cancel()
	a.backups.Flush(flushCtx)
	return err
}

// archiveScheduler runs ArchivePast on the configured cron spec in the
// configured timezone.
func archiveScheduler(a *app) (*cron.Cron, error) {
	scheduler := cron.New(cron.WithLocation(a.cfg.Location))
	_, err := scheduler.AddFunc(a.cfg.ArchiveCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		moved, err := a.appointments.ArchivePast(ctx)
		if err != nil {
			a.logger.Error("scheduled archive failed", "error", err)
			return
		}
		a.logger.Info("scheduled archive completed", "moved", moved)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule archive job: %w", err)
	}
	return scheduler, nil
}

func gatewayCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "gateway",
		Short: "Start the backup gateway in front of GitHub gists",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := env.logger().With("component", "gateway")

			store, err := gateway.NewGistStore(&http.Client{Timeout: cfg.BackupTimeout}, cfg.GitHubToken, cfg.GitHubAPIURL)
			if err != nil {
				return err
			}
			gw := gateway.New(store, gateway.Config{Token: cfg.GitHubToken, BlobID: cfg.GistID}, time.Now, logger)
			handler := httptransport.RequestLogger(logger)(gateway.NewHandler(gw, logger).Routes())

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serveUntilDone(ctx, newServer(cfg.GatewayPort, handler), logger)
		},
	}
}

func newServer(port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// serveUntilDone runs server until ctx is cancelled, then shuts it down.
func serveUntilDone(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server encountered error: %w", err)
	}
	return nil
}
