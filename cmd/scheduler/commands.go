package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/clinic-scheduler/internal/application"
	"github.com/example/clinic-scheduler/internal/calendar"
	"github.com/example/clinic-scheduler/internal/clinic"
)

func exportCmd(env *cliEnv) *cobra.Command {
	var format, scope, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export appointments as JSON or CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withApp(cmd, func(ctx context.Context, a *app) error {
				var (
					buf      bytes.Buffer
					filename string
					err      error
				)
				switch strings.ToLower(format) {
				case "json":
					filename, err = a.transfer.ExportJSON(ctx, &buf)
				case "csv":
					parsed, scopeErr := application.ParseScope(scope)
					if scopeErr != nil {
						return scopeErr
					}
					filename, err = a.transfer.ExportCSV(ctx, &buf, parsed)
				default:
					return fmt.Errorf("unknown format %q, want json or csv", format)
				}
				if err != nil {
					return err
				}

				if output == "-" {
					_, err = env.out.Write(buf.Bytes())
					return err
				}
				if output == "" {
					output = filename
				} else if info, statErr := os.Stat(output); statErr == nil && info.IsDir() {
					output = filepath.Join(output, filename)
				}
				if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				fmt.Fprintf(env.out, "wrote %s\n", output)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "export format: json or csv")
	cmd.Flags().StringVar(&scope, "scope", "all", "csv scope: active, archived or all")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file or directory to write, - for stdout")
	return cmd
}

func importCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Merge a JSON array of appointments into the active list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw []byte
				err error
			)
			if args[0] == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}

			return env.withApp(cmd, func(ctx context.Context, a *app) error {
				report, err := a.transfer.Import(ctx, raw)
				if err != nil {
					var vErr *application.ValidationError
					if errors.As(err, &vErr) {
						return fmt.Errorf("import rejected: %w", vErr)
					}
					return err
				}
				fmt.Fprintf(env.out, "Imported %d appointments (%d added, %d updated).\n", report.Total, report.Added, report.Replaced)
				return nil
			})
		},
	}
}

func calendarCmd(env *cliEnv) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print the month grid with cat counts and doctors",
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withApp(cmd, func(ctx context.Context, a *app) error {
				var (
					grid calendar.Grid
					err  error
				)
				if month != "" {
					year, m, parseErr := calendar.ParseMonth(month)
					if parseErr != nil {
						return parseErr
					}
					grid, err = a.calendar.Month(ctx, year, m)
				} else {
					grid, err = a.calendar.CurrentMonth(ctx)
				}
				if err != nil {
					return err
				}
				return renderGrid(env.out, grid)
			})
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month to show as YYYY-MM, defaults to the current month")
	return cmd
}

// renderGrid writes the grid as a week-per-row table. Each dated cell shows
// the day, the number of cats and the doctor's initials.
func renderGrid(w io.Writer, grid calendar.Grid) error {
	fmt.Fprintf(w, "%s %d\n", grid.Month, grid.Year)
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintln(tw, "Sun\tMon\tTue\tWed\tThu\tFri\tSat\t")

	for i, cell := range grid.Cells {
		fmt.Fprintf(tw, "%s\t", cellLabel(cell))
		if i%7 == 6 {
			fmt.Fprintln(tw)
		}
	}
	if len(grid.Cells)%7 != 0 {
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func cellLabel(cell calendar.Cell) string {
	if cell.Blank() {
		return ""
	}
	label := fmt.Sprintf("%2d", cell.Date.Day)
	if cell.TotalCats > 0 {
		label += fmt.Sprintf(" (%d)", cell.TotalCats)
	}
	if cell.Doctor != nil {
		label += " " + initials(cell.Doctor.Name)
	}
	return label
}

func initials(name string) string {
	var out strings.Builder
	for _, part := range strings.Fields(name) {
		part = strings.TrimSuffix(part, ".")
		if strings.EqualFold(part, "dr") || part == "" {
			continue
		}
		out.WriteString(strings.ToUpper(part[:1]))
	}
	return out.String()
}

func archiveCmd(env *cliEnv) *cobra.Command {
	var cutoff string
	var restore bool

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Move past appointments into the archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withApp(cmd, func(ctx context.Context, a *app) error {
				if restore {
					n, err := a.appointments.RestoreAll(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintf(env.out, "Restored %d appointments from the archive.\n", n)
					return nil
				}

				var (
					moved int
					err   error
				)
				if cutoff != "" {
					date, parseErr := clinic.ParseDate(cutoff)
					if parseErr != nil {
						return parseErr
					}
					moved, err = a.appointments.Archive(ctx, date)
				} else {
					moved, err = a.appointments.ArchivePast(ctx)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(env.out, "Archived %d appointments.\n", moved)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&cutoff, "cutoff", "", "archive appointments dated before YYYY-MM-DD, defaults to today")
	cmd.Flags().BoolVar(&restore, "restore-all", false, "move every archived appointment back instead")
	return cmd
}

func backupCmd(env *cliEnv) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Push the current state to the backup gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withApp(cmd, func(ctx context.Context, a *app) error {
				result, err := a.backups.BackupNow(ctx, force)
				if errors.Is(err, application.ErrEmptySnapshot) {
					return errors.New("data looks empty; rerun with --force to overwrite the cloud backup with an empty snapshot")
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(env.out, "Backed up at %s (digest %s).\n", result.At.Format("2006-01-02 15:04:05"), result.Digest[:12])
				if result.BlobID != "" {
					fmt.Fprintf(env.out, "Created gist %s; set GIST_ID on the gateway to keep using it after a restart.\n", result.BlobID)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "push even when there is no data")
	return cmd
}

func restoreCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Replace the local state with the latest backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withApp(cmd, func(ctx context.Context, a *app) error {
				result, err := a.backups.Restore(ctx)
				if errors.Is(err, application.ErrNotFound) {
					return errors.New("no backup found")
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(env.out, "Restored %d appointments and %d archived from the backup of %s.\n",
					result.Appointments, result.ArchivedAppointments, result.When)
				return nil
			})
		},
	}
}
