package action

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// ErrMissingDestination is returned when a copy or move has no destination.
var ErrMissingDestination = errors.New("action has no destination path")

// ErrSameFile is returned when the destination is the source file itself.
var ErrSameFile = errors.New("destination is the source file")

// Reason categorizes why an action failed.
type Reason int

const (
	// ReasonUnknown is used when the failure matches no other category.
	ReasonUnknown Reason = iota
	// ReasonPermissionDenied means the process lacks access.
	ReasonPermissionDenied
	// ReasonNotFound means the source or a destination component is missing.
	ReasonNotFound
	// ReasonNoSpace means the destination device is full.
	ReasonNoSpace
	// ReasonInvalidDestination means the destination cannot be used.
	ReasonInvalidDestination
)

// String returns a human-readable reason.
func (r Reason) String() string {
	switch r {
	case ReasonPermissionDenied:
		return "permission denied"
	case ReasonNotFound:
		return "not found"
	case ReasonNoSpace:
		return "no space left"
	case ReasonInvalidDestination:
		return "invalid destination"
	case ReasonUnknown:
		return "unknown"
	default:
		return "unspecified"
	}
}

// Error describes a failed file action.
type Error struct {
	// Op is the action that failed ("copy", "move" or "delete").
	Op string
	// Path is the file the action was applied to.
	Path string
	// Reason is the failure category.
	Reason Reason
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Path, e.Reason, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// categorize wraps err in an *Error with its failure category.
func categorize(op, path string, err error) *Error {
	if err == nil {
		return nil
	}

	actionErr := &Error{Op: op, Path: path, Reason: ReasonUnknown, Err: err}

	switch {
	case errors.Is(err, ErrMissingDestination), errors.Is(err, ErrSameFile):
		actionErr.Reason = ReasonInvalidDestination
		return actionErr
	case os.IsNotExist(err):
		actionErr.Reason = ReasonNotFound
		return actionErr
	case os.IsPermission(err):
		actionErr.Reason = ReasonPermissionDenied
		return actionErr
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EACCES, syscall.EPERM, syscall.EROFS:
			actionErr.Reason = ReasonPermissionDenied
		case syscall.ENOENT:
			actionErr.Reason = ReasonNotFound
		case syscall.ENOSPC:
			actionErr.Reason = ReasonNoSpace
		case syscall.EISDIR, syscall.ENOTDIR:
			actionErr.Reason = ReasonInvalidDestination
		}
	}
	return actionErr
}
