package model

// Stats holds the counters of one scan.
//
// Duplicate counts every duplicate, exact path matches included; PathMatch
// is the subset of those that were exact path matches. New plus Duplicate
// is therefore the number of files the registry validated.
type Stats struct {
	New          int `json:"new" yaml:"new"`
	Duplicate    int `json:"duplicate" yaml:"duplicate"`
	PathMatch    int `json:"path_match" yaml:"path_match"`
	Failed       int `json:"failed" yaml:"failed"`
	ActionsTaken int `json:"actions_taken" yaml:"actions_taken"`

	// DuplicateParents lists, sorted, the names of the directories that
	// contained at least one duplicate.
	DuplicateParents []string `json:"duplicate_parents" yaml:"duplicate_parents"`
}

// Validated returns the number of files the registry answered for.
func (s Stats) Validated() int {
	return s.New + s.Duplicate
}
