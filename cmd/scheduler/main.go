package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/example/clinic-scheduler/internal/application"
	"github.com/example/clinic-scheduler/internal/backup"
	"github.com/example/clinic-scheduler/internal/config"
	"github.com/example/clinic-scheduler/internal/logging"
	"github.com/example/clinic-scheduler/internal/persistence/sqlite"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out, logOut io.Writer) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "scheduler",
		Short:         "Appointment scheduler for a vet and grooming practice",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(out)
	root.SetErr(logOut)
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")

	env := &cliEnv{out: out, logOut: logOut, logLevel: &logLevel}
	root.AddCommand(
		serveCmd(env),
		gatewayCmd(env),
		exportCmd(env),
		importCmd(env),
		calendarCmd(env),
		archiveCmd(env),
		backupCmd(env),
		restoreCmd(env),
	)
	return root
}

// cliEnv carries what every subcommand needs before it opens the app.
type cliEnv struct {
	out      io.Writer
	logOut   io.Writer
	logLevel *string
}

func (e *cliEnv) logger() *slog.Logger {
	return logging.New(e.logOut, logging.ParseLevel(*e.logLevel))
}

// app is the wired local side of the scheduler.
type app struct {
	cfg          config.Config
	logger       *slog.Logger
	storage      *sqlite.Storage
	workspace    *application.Workspace
	appointments *application.AppointmentService
	roster       *application.RosterService
	calendar     *application.CalendarService
	transfer     *application.TransferService
	backups      *application.BackupService
}

func openApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	storage, err := sqlite.Open(cfg.SQLitePath, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if err := storage.Migrate(ctx); err != nil {
		storage.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	now := func() time.Time { return time.Now().In(cfg.Location) }
	newID := func() string { return uuid.NewString() }

	ws, err := application.OpenWorkspace(ctx, storage.Snapshots(), now, logger)
	if err != nil {
		storage.Close()
		return nil, err
	}

	return &app{
		cfg:          cfg,
		logger:       logger,
		storage:      storage,
		workspace:    ws,
		appointments: application.NewAppointmentServiceWithLogger(ws, newID, now, logger),
		roster:       application.NewRosterServiceWithLogger(ws, logger),
		calendar:     application.NewCalendarService(ws, now, logger),
		transfer:     application.NewTransferService(ws, newID, now, logger),
		backups: application.NewBackupService(application.BackupServiceConfig{
			Workspace: ws,
			Remote:    backup.NewClient(cfg.GatewayURL, cfg.BackupTimeout),
			History:   storage.BackupLog(),
			Site:      cfg.Site,
			Timeout:   cfg.BackupTimeout,
			Now:       now,
			Logger:    logger,
		}),
	}, nil
}

func (a *app) Close() error {
	return a.storage.Close()
}

// withApp loads configuration, opens the app and runs fn.
func (e *cliEnv) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := e.logger()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := openApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()
	return fn(ctx, a)
}
