package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/filizer/internal/model"
)

// Format names accepted by New.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
)

// ErrUnknownFormat is returned by New for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown report format")

// Writer renders scan reports.
type Writer interface {
	// Write renders the report to the configured destination and returns the
	// number of bytes written.
	Write(report *model.ScanReport) (int, error)
}

// New returns the writer for the named format.
// "md" is accepted as an alias for markdown and "yml" for yaml.
func New(format string, output io.Writer, version string) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return NewSimpleWriter(output), nil
	case FormatJSON:
		return NewFullJSONWriter(output, version, WithPrettyPrint()), nil
	case FormatYAML, "yml":
		return NewYAMLWriter(output), nil
	case FormatMarkdown, "md":
		return NewMarkdownWriter(output, version), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// MultiWriter writes to multiple Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders the report with every writer. It stops on the first error.
func (m *MultiWriter) Write(report *model.ScanReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter holds the output destination shared by all writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	if output == nil {
		output = io.Discard
	}
	return baseWriter{output: output}
}
