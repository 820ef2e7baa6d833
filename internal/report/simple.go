package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/filizer/internal/model"
)

const (
	summaryWidth = 40
	labelWidth   = 23
)

// SimpleWriter outputs the fixed text summary.
type SimpleWriter struct {
	baseWriter

	// verbose adds the scan details and the conflict list around the summary.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables the scan details section.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary.
func (w *SimpleWriter) Write(report *model.ScanReport) (int, error) {
	var sb strings.Builder

	if w.verbose {
		w.writeDetails(&sb, report)
	}
	writeSummary(&sb, report.Stats)
	w.writeNotes(&sb, report)

	return io.WriteString(w.output, sb.String())
}

// writeSummary writes the summary block.
func writeSummary(sb *strings.Builder, stats model.Stats) {
	rule := strings.Repeat("=", summaryWidth)

	sb.WriteString(rule + "\n")
	sb.WriteString("SCAN SUMMARY REPORT\n")
	sb.WriteString(rule + "\n")
	writeCounter(sb, "New Files Posted:", stats.New)
	writeCounter(sb, "Duplicates Found:", stats.Duplicate)
	writeCounter(sb, "Exact Path Matches:", stats.PathMatch)
	writeCounter(sb, "Actions Executed:", stats.ActionsTaken)
	writeCounter(sb, "Failed Operations:", stats.Failed)
	sb.WriteString(strings.Repeat("-", summaryWidth) + "\n")
	sb.WriteString("Parent Directories with Duplicates:\n")
	if len(stats.DuplicateParents) == 0 {
		sb.WriteString(" - None\n")
	}
	for _, parent := range stats.DuplicateParents {
		sb.WriteString(" - " + parent + "\n")
	}
	sb.WriteString(rule + "\n")
}

func writeCounter(sb *strings.Builder, label string, n int) {
	fmt.Fprintf(sb, "%-*s%d\n", labelWidth, label, n)
}

// writeDetails writes the scan information shown before the summary.
func (w *SimpleWriter) writeDetails(sb *strings.Builder, report *model.ScanReport) {
	fmt.Fprintf(sb, "Root:      %s\n", report.Root)
	fmt.Fprintf(sb, "Registry:  %s\n", report.Registry)
	fmt.Fprintf(sb, "Started:   %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Duration:  %s\n", report.Duration().Round(time.Millisecond))
	fmt.Fprintf(sb, "Mode:      %s\n", mode(report))
	fmt.Fprintf(sb, "Status:    %s\n", report.Status())
	sb.WriteString("\n")
}

// writeNotes writes the abort reason and, in verbose mode, the conflicts.
func (w *SimpleWriter) writeNotes(sb *strings.Builder, report *model.ScanReport) {
	if report.Aborted {
		fmt.Fprintf(sb, "Scan aborted: %s\n", report.AbortReason)
	}
	if w.verbose && len(report.Conflicts) > 0 {
		sb.WriteString("Files with conflicting registry actions:\n")
		for _, path := range report.Conflicts {
			sb.WriteString(" - " + path + "\n")
		}
	}
}

func mode(report *model.ScanReport) string {
	if report.Preview {
		return "dry-run"
	}
	return "live"
}
