package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/nao1215/filizer/internal/config"
	"github.com/nao1215/filizer/internal/database"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past scans or show one of them",
		Long: `History shows the scans saved in the history database.

Without --id it lists the most recent scans. With --id it renders the saved
report of that scan in any report format.

Examples:
  # List the 20 most recent scans
  filizer history

  # List every scan of one directory
  filizer history --root /data --limit 0

  # Show scan 12 as Markdown
  filizer history --id 12 -f markdown`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64P("id", "i", 0, "Show the report of the scan with this ID")
	cmd.Flags().StringP("format", "f", config.FormatText, "Report format for --id: text, json, markdown or yaml")
	cmd.Flags().IntP("limit", "n", 20, "Maximum number of scans to list (0 lists all)")
	cmd.Flags().String("root", "", "Only list scans of this directory")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "History database directory")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	id, err := flags.GetInt64("id")
	if err != nil {
		return err
	}
	format, err := flags.GetString("format")
	if err != nil {
		return err
	}
	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}
	root, err := flags.GetString("root")
	if err != nil {
		return err
	}
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}

	db, err := openHistory(dbDir)
	if err != nil {
		return err
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	if id != 0 {
		scanReport, err := db.GetScanReportByID(ctx, id)
		if err != nil {
			return err
		}
		cfg := config.NewConfig()
		cfg.Format = format
		return outputReport(out, cfg, scanReport)
	}

	var reports []database.ScanReportMetadata
	if root != "" {
		reports, err = db.ListScanReportsForRoot(ctx, root, limit)
	} else {
		reports, err = db.ListScanReports(ctx, limit)
	}
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Fprintln(out, "No scans recorded.")
		return nil
	}

	printHistory(out, reports)
	return nil
}

// openHistory opens an existing history database.
func openHistory(dbDir string) (*database.ScanDB, error) {
	db, err := database.Open(dbDir, database.Options{EnableWAL: true})
	if errors.Is(err, database.ErrDatabaseNotFound) {
		return nil, errNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return db, nil
}

func printHistory(out io.Writer, reports []database.ScanReportMetadata) {
	fmt.Fprintf(out, "Scan history (%d scans):\n\n", len(reports))
	fmt.Fprintf(out, "  %-6s  %-19s  %-8s  %5s  %5s  %5s  %5s  %5s  %s\n",
		"ID", "Started", "Status", "New", "Dup", "Path", "Acts", "Fail", "Root")
	for _, r := range reports {
		fmt.Fprintf(out, "  %-6d  %-19s  %-8s  %5d  %5d  %5d  %5d  %5d  %s\n",
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			runStatus(r),
			r.Stats.New,
			r.Stats.Duplicate,
			r.Stats.PathMatch,
			r.Stats.ActionsTaken,
			r.Stats.Failed,
			r.Root,
		)
	}
}

func runStatus(r database.ScanReportMetadata) string {
	switch {
	case r.Aborted:
		return "aborted"
	case r.Preview:
		return "dry-run"
	default:
		return "complete"
	}
}
