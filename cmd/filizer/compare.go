package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/nao1215/filizer/internal/config"
	"github.com/nao1215/filizer/internal/database"
	"github.com/spf13/cobra"
)

// Change directions of a counter between two scans.
const (
	directionUp        = "up"
	directionDown      = "down"
	directionUnchanged = "unchanged"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [path]",
		Short: "Compare the two most recent scans of a directory",
		Long: `Compare shows how the counters changed between two saved scans of the
same directory.

By default the two most recent scans are compared. Use --with-scan-id to
compare the latest scan with an older one.

Examples:
  # Compare the last two scans of the current directory
  filizer compare

  # Compare the latest scan of /data with scan 3
  filizer compare /data --with-scan-id 3 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().Int64P("with-scan-id", "i", 0, "Compare the latest scan with the scan with this ID")
	cmd.Flags().BoolP("json", "j", false, "Output the comparison as JSON")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "History database directory")

	return cmd
}

// CounterChange is the change of one counter between two scans.
type CounterChange struct {
	Name      string `json:"name"`
	Previous  int    `json:"previous"`
	Current   int    `json:"current"`
	Delta     int    `json:"delta"`
	Direction string `json:"direction"`
}

// ScanRef identifies a saved scan in a comparison.
type ScanRef struct {
	ID        int64     `json:"id"`
	StartedAt time.Time `json:"started_at"`
}

// CompareResult is the comparison of two scans of one root.
type CompareResult struct {
	Root     string          `json:"root"`
	Previous ScanRef         `json:"previous"`
	Current  ScanRef         `json:"current"`
	Changes  []CounterChange `json:"changes"`
}

func runCompareCmd(cmd *cobra.Command, args []string) error {
	root := config.DefaultPath
	if len(args) > 0 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	// Scans record the root with symlinks resolved.
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	withID, err := cmd.Flags().GetInt64("with-scan-id")
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}

	db, err := openHistory(dbDir)
	if err != nil {
		return err
	}
	defer db.Close()

	scans, err := db.ListScanReportsForRoot(cmd.Context(), root, 2)
	if err != nil {
		return err
	}
	if len(scans) == 0 {
		return fmt.Errorf("%w for %s", errNoHistory, root)
	}

	current := scans[0]
	var previous database.ScanReportMetadata
	switch {
	case withID != 0:
		old, err := db.GetScanReportByID(cmd.Context(), withID)
		if err != nil {
			return err
		}
		previous = database.ScanReportMetadata{ID: old.ID, Root: old.Root, StartedAt: old.StartedAt, Stats: old.Stats}
	case len(scans) < 2:
		return fmt.Errorf("only one scan recorded for %s, nothing to compare", root)
	default:
		previous = scans[1]
	}

	result := compareScans(root, previous, current)
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printComparison(cmd.OutOrStdout(), result)
	return nil
}

func compareScans(root string, previous, current database.ScanReportMetadata) CompareResult {
	counter := func(name string, prev, cur int) CounterChange {
		return CounterChange{
			Name:      name,
			Previous:  prev,
			Current:   cur,
			Delta:     cur - prev,
			Direction: direction(cur - prev),
		}
	}

	p, c := previous.Stats, current.Stats
	return CompareResult{
		Root:     root,
		Previous: ScanRef{ID: previous.ID, StartedAt: previous.StartedAt},
		Current:  ScanRef{ID: current.ID, StartedAt: current.StartedAt},
		Changes: []CounterChange{
			counter("new", p.New, c.New),
			counter("duplicate", p.Duplicate, c.Duplicate),
			counter("path_match", p.PathMatch, c.PathMatch),
			counter("actions_taken", p.ActionsTaken, c.ActionsTaken),
			counter("failed", p.Failed, c.Failed),
		},
	}
}

func direction(delta int) string {
	switch {
	case delta > 0:
		return directionUp
	case delta < 0:
		return directionDown
	default:
		return directionUnchanged
	}
}

func printComparison(out io.Writer, result CompareResult) {
	fmt.Fprintf(out, "Scan Comparison: %s\n\n", result.Root)
	fmt.Fprintf(out, "Previous scan: #%d  %s\n", result.Previous.ID, result.Previous.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(out, "Current scan:  #%d  %s\n\n", result.Current.ID, result.Current.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(out, "  %-14s  %-8s  %-8s  %s\n", "Counter", "Previous", "Current", "Change")
	for _, ch := range result.Changes {
		fmt.Fprintf(out, "  %-14s  %-8d  %-8d  %+d\n", ch.Name, ch.Previous, ch.Current, ch.Delta)
	}
}
