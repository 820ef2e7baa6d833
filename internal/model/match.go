package model

// RegistryMatch is a prior registry entry matching a validation query on
// (name, parent directory name, digest).
type RegistryMatch struct {
	// FullPath is the path the registry recorded for the matching file.
	FullPath string `json:"full_path"`

	// Action is the action the registry directs for duplicates of this entry.
	Action string `json:"action"`

	// ActionArgs holds the arguments for Action.
	ActionArgs string `json:"action_args"`
}

// DirectedAction returns the match's action as a typed Action.
func (m RegistryMatch) DirectedAction() Action {
	return NewAction(m.Action, m.ActionArgs)
}
