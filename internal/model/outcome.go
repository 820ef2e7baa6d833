package model

// Outcome is the classification of a scanned file after validation.
type Outcome int

const (
	// OutcomeUnknown is the zero value; the file has not been validated yet.
	OutcomeUnknown Outcome = iota

	// OutcomeNew means the registry holds no matching record.
	OutcomeNew

	// OutcomeDuplicate means the registry holds at least one record with the
	// same name, parent directory name and digest under a different path.
	OutcomeDuplicate

	// OutcomeExactPathMatch means one of the matching records is this very
	// file. It is always a duplicate and is never submitted again.
	OutcomeExactPathMatch

	// OutcomeFailed means hashing or validation failed for the file.
	OutcomeFailed
)

// String returns a human-readable representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeUnknown:
		return "unknown"
	case OutcomeNew:
		return "new"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeExactPathMatch:
		return "path_match"
	case OutcomeFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// IsDuplicate reports whether the outcome counts as a duplicate.
// An exact path match is a duplicate.
func (o Outcome) IsDuplicate() bool {
	return o == OutcomeDuplicate || o == OutcomeExactPathMatch
}

// IsValidated reports whether the registry answered for the file.
func (o Outcome) IsValidated() bool {
	return o == OutcomeNew || o.IsDuplicate()
}
