package action

import (
	"context"
	"log/slog"
	"os"

	"github.com/nao1215/filizer/internal/model"
)

// Status is the outcome of executing one action.
type Status int

const (
	// StatusNone means no action was directed.
	StatusNone Status = iota
	// StatusPerformed means the action changed the filesystem.
	StatusPerformed
	// StatusDeclined means the user declined a deletion.
	StatusDeclined
	// StatusPreview means the action was only logged.
	StatusPreview
	// StatusUnsupported means the directed action is not recognized.
	StatusUnsupported
	// StatusFailed means the action was attempted and failed.
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusPerformed:
		return "performed"
	case StatusDeclined:
		return "declined"
	case StatusPreview:
		return "preview"
	case StatusUnsupported:
		return "unsupported"
	case StatusFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// Result describes what happened when an action was executed.
type Result struct {
	Status      Status
	Kind        model.ActionKind
	Destination string
	Err         error
}

// Performed reports whether the action changed the filesystem.
func (r Result) Performed() bool {
	return r.Status == StatusPerformed
}

// Executor runs directed actions against local files.
type Executor struct {
	force   bool
	preview bool
	confirm Confirmer
	logger  *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithForce skips the delete confirmation.
func WithForce(force bool) Option {
	return func(e *Executor) {
		e.force = force
	}
}

// WithPreview makes the executor log actions without performing them.
func WithPreview(preview bool) Option {
	return func(e *Executor) {
		e.preview = preview
	}
}

// WithConfirmer sets how delete confirmations are asked.
func WithConfirmer(confirm Confirmer) Option {
	return func(e *Executor) {
		if confirm != nil {
			e.confirm = confirm
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Executor. Without a confirmer every deletion is declined
// unless the executor is forced.
func New(opts ...Option) *Executor {
	e := &Executor{
		confirm: Always(false),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute applies act to the file at path.
// It never panics on filesystem problems; failures come back as a Result
// with StatusFailed and a categorized *Error.
func (e *Executor) Execute(ctx context.Context, act model.Action, path string) Result {
	result := Result{Kind: act.Kind, Destination: act.Args}

	switch act.Kind {
	case model.ActionNone:
		result.Status = StatusNone
		return result
	case model.ActionUnknown:
		e.logger.Warn("unsupported action directed by registry, skipping",
			slog.String("action", act.Raw),
			slog.String("file", path))
		result.Status = StatusUnsupported
		return result
	}

	if err := ctx.Err(); err != nil {
		result.Status = StatusFailed
		result.Err = err
		return result
	}

	if e.preview {
		e.logger.Info("[DRY-RUN] would "+act.Kind.String()+" file",
			slog.String("file", path),
			slog.String("destination", act.Args))
		result.Status = StatusPreview
		return result
	}

	switch act.Kind {
	case model.ActionCopy:
		return e.copy(result, path)
	case model.ActionMove:
		return e.move(result, path)
	case model.ActionDelete:
		return e.delete(result, path)
	default:
		result.Status = StatusUnsupported
		return result
	}
}

func (e *Executor) copy(result Result, path string) Result {
	dest, err := destinationFor(path, result.Destination)
	if err == nil {
		result.Destination = dest
		err = copyFile(path, dest)
	}
	if err != nil {
		return e.fail(result, "copy", path, err)
	}
	e.logger.Info("ACTION: copied file",
		slog.String("file", path),
		slog.String("destination", dest))
	result.Status = StatusPerformed
	return result
}

func (e *Executor) move(result Result, path string) Result {
	dest, err := destinationFor(path, result.Destination)
	if err == nil {
		result.Destination = dest
		err = moveFile(path, dest)
	}
	if err != nil {
		return e.fail(result, "move", path, err)
	}
	e.logger.Info("ACTION: moved file",
		slog.String("file", path),
		slog.String("destination", dest))
	result.Status = StatusPerformed
	return result
}

func (e *Executor) delete(result Result, path string) Result {
	result.Destination = ""
	if !e.force && !e.confirm(DeletePrompt(path)) {
		e.logger.Info("ACTION: skipped deletion", slog.String("file", path))
		result.Status = StatusDeclined
		return result
	}
	if err := os.Remove(path); err != nil {
		return e.fail(result, "delete", path, err)
	}
	e.logger.Info("ACTION: removed file", slog.String("file", path))
	result.Status = StatusPerformed
	return result
}

func (e *Executor) fail(result Result, op, path string, err error) Result {
	actionErr := categorize(op, path, err)
	e.logger.Error("action failed",
		slog.String("action", op),
		slog.String("file", path),
		slog.String("reason", actionErr.Reason.String()),
		slog.Any("error", err))
	result.Status = StatusFailed
	result.Err = actionErr
	return result
}
