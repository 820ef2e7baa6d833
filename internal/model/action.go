package model

import "strings"

// ActionKind is a remote-directed local action.
// Every kind the registry may send maps to exactly one constant; strings
// that match none of them become ActionUnknown so callers can handle them
// explicitly instead of falling through.
type ActionKind int

const (
	// ActionNone means the registry did not direct any action.
	ActionNone ActionKind = iota

	// ActionCopy copies the file to the destination in the action arguments.
	ActionCopy

	// ActionMove moves the file to the destination in the action arguments.
	ActionMove

	// ActionDelete deletes the file. It is destructive and gated by a
	// confirmation unless forced.
	ActionDelete

	// ActionUnknown is an action string the executor does not recognize.
	ActionUnknown
)

// String returns the canonical name of the action kind.
func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case ActionCopy:
		return "copy"
	case ActionMove:
		return "move"
	case ActionDelete:
		return "delete"
	case ActionUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// ParseActionKind maps a registry action string to an ActionKind.
// Matching is case-insensitive and accepts both the short forms the
// registry sends (cp, mv, rm) and the long names.
func ParseActionKind(s string) ActionKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ActionNone
	case "cp", "copy":
		return ActionCopy
	case "mv", "move":
		return ActionMove
	case "rm", "delete", "del":
		return ActionDelete
	default:
		return ActionUnknown
	}
}

// Action is a directed action together with its raw form and arguments.
type Action struct {
	// Kind is the parsed action kind.
	Kind ActionKind `json:"kind"`

	// Raw is the action string exactly as the registry sent it.
	Raw string `json:"raw,omitempty"`

	// Args holds the action arguments. For copy and move it is the
	// destination path.
	Args string `json:"args,omitempty"`
}

// NewAction builds an Action from the registry's action and action_args.
func NewAction(raw, args string) Action {
	return Action{
		Kind: ParseActionKind(raw),
		Raw:  raw,
		Args: args,
	}
}

// IsZero reports whether no action was directed.
func (a Action) IsZero() bool {
	return a.Kind == ActionNone
}
