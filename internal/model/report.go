package model

import "time"

// ScanReport is the result of one scan run.
// Report writers render it and the history store persists it as JSON.
type ScanReport struct {
	// ID is the history store identifier. Zero until the report is saved.
	ID int64 `json:"id,omitempty" yaml:"id,omitempty"`

	// Root is the absolute path of the scanned directory.
	Root string `json:"root" yaml:"root"`

	// Registry is the registry base URL the scan talked to.
	Registry string `json:"registry" yaml:"registry"`

	// Preview is set when the scan ran in dry-run mode.
	Preview bool `json:"preview" yaml:"preview"`

	// StartedAt and FinishedAt bound the scan.
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`

	// Aborted is set when the scan stopped before the walk finished,
	// either on an authentication failure or on cancellation.
	Aborted bool `json:"aborted" yaml:"aborted"`

	// AbortReason describes why the scan was aborted.
	AbortReason string `json:"abort_reason,omitempty" yaml:"abort_reason,omitempty"`

	// Stats are the final counters.
	Stats Stats `json:"stats" yaml:"stats"`

	// Conflicts lists files whose registry matches disagreed on the
	// directed action.
	Conflicts []string `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
}

// NewScanReport creates a report for a scan of root.
func NewScanReport(root, registry string, preview bool) *ScanReport {
	return &ScanReport{
		Root:      root,
		Registry:  registry,
		Preview:   preview,
		StartedAt: time.Now(),
	}
}

// Duration returns how long the scan took.
func (r *ScanReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Status returns a short status string for display.
func (r *ScanReport) Status() string {
	if r.Aborted {
		return "aborted"
	}
	return "complete"
}
