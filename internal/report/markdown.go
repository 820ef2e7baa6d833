package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/filizer/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
type MarkdownWriter struct {
	baseWriter

	version string
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, version string) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		version:    version,
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeParents(md, report)
	w.writeConflicts(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ScanReport) {
	md.H1("Scan Summary Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Root", "`" + report.Root + "`"},
			{"Registry", "`" + report.Registry + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration().Round(time.Millisecond).String()},
			{"Mode", mode(report)},
			{"Status", statusText(report)},
		},
	})
	md.PlainText("")
}

func statusText(report *model.ScanReport) string {
	if report.Aborted {
		return "❌ Aborted - " + report.AbortReason
	}
	return "✅ Complete"
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.ScanReport) {
	stats := report.Stats

	md.H2("Counters")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Count"},
		Rows: [][]string{
			{"New Files Posted", strconv.Itoa(stats.New)},
			{"Duplicates Found", strconv.Itoa(stats.Duplicate)},
			{"Exact Path Matches", strconv.Itoa(stats.PathMatch)},
			{"Actions Executed", strconv.Itoa(stats.ActionsTaken)},
			{"Failed Operations", strconv.Itoa(stats.Failed)},
		},
	})
	md.PlainText("")

	if stats.New+stats.Duplicate+stats.Failed > 0 {
		w.writePieChart(md, stats)
	}

	switch {
	case report.Aborted:
		md.Cautionf("The scan was aborted: %s. Counters cover only the files processed before that.", report.AbortReason)
	case stats.Failed > 0:
		md.Warningf("%d file(s) could not be processed. See the log for details.", stats.Failed)
	case report.Preview:
		md.Note("Dry run: no files were changed and nothing was submitted to the registry.")
	default:
		md.Tip("All files were processed.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, stats model.Stats) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("File Outcomes"),
		piechart.WithShowData(true),
	)

	if stats.New > 0 {
		chart.LabelAndIntValue("New", uint64(stats.New))
	}
	if unique := stats.Duplicate - stats.PathMatch; unique > 0 {
		chart.LabelAndIntValue("Duplicate", uint64(unique))
	}
	if stats.PathMatch > 0 {
		chart.LabelAndIntValue("Exact Path Match", uint64(stats.PathMatch))
	}
	if stats.Failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(stats.Failed))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeParents(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Parent Directories with Duplicates")
	md.PlainText("")

	if len(report.Stats.DuplicateParents) == 0 {
		md.PlainText("None")
		md.PlainText("")
		return
	}

	md.BulletList(report.Stats.DuplicateParents...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeConflicts(md *markdown.Markdown, report *model.ScanReport) {
	if len(report.Conflicts) == 0 {
		return
	}

	md.H2("Conflicting Registry Actions")
	md.PlainText("")
	md.PlainText("The registry returned matches with different actions for these files. Only the first action was honored.")
	md.PlainText("")
	md.BulletList(report.Conflicts...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by filizer %s*", w.version)
}
