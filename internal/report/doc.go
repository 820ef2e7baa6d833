// Package report renders scan reports.
//
// Writers render a model.ScanReport in one format each:
//   - SimpleWriter: the fixed text summary printed at the end of a scan
//   - JSONWriter: JSON for tool integration
//   - YAMLWriter: YAML for configuration-style consumers
//   - MarkdownWriter: Markdown for sharing and documentation
//
// All writers implement Writer, so they can be selected by format name with
// New and combined with MultiWriter.
package report
