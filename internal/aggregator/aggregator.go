// Package aggregator accumulates the counters of a scan.
//
// An Aggregator is owned by the single goroutine running the scan and is not
// safe for concurrent use.
package aggregator

import (
	"slices"

	"github.com/nao1215/filizer/internal/model"
)

// Aggregator counts validation outcomes, failures and performed actions.
type Aggregator struct {
	stats   model.Stats
	parents map[string]struct{}
}

// New returns an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{parents: make(map[string]struct{})}
}

// Record counts a validated outcome for a file whose parent directory is
// parentDir. Duplicates also remember parentDir, and exact path matches are
// counted both as duplicates and as path matches. Outcomes that were not
// validated are ignored.
func (a *Aggregator) Record(outcome model.Outcome, parentDir string) {
	switch {
	case outcome == model.OutcomeNew:
		a.stats.New++
	case outcome.IsDuplicate():
		a.stats.Duplicate++
		if outcome == model.OutcomeExactPathMatch {
			a.stats.PathMatch++
		}
		a.parents[parentDir] = struct{}{}
	}
}

// Failed counts one failed operation.
func (a *Aggregator) Failed() {
	a.stats.Failed++
}

// ActionTaken counts one performed action.
func (a *Aggregator) ActionTaken() {
	a.stats.ActionsTaken++
}

// Stats returns a snapshot of the counters with the duplicate parent
// directories sorted.
func (a *Aggregator) Stats() model.Stats {
	stats := a.stats
	stats.DuplicateParents = make([]string, 0, len(a.parents))
	for parent := range a.parents {
		stats.DuplicateParents = append(stats.DuplicateParents, parent)
	}
	slices.Sort(stats.DuplicateParents)
	return stats
}
