package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/filizer/internal/model"
)

// ErrFatal marks a step error that must abort the whole scan.
var ErrFatal = errors.New("fatal scan error")

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the file state
// accumulated by previous steps.
type Step interface {
	// Do executes the pipeline step.
	// Failures that only affect the current step's side effects should be
	// recorded on the FileScan and return nil.
	Do(ctx context.Context, file *model.FileScan) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// StepError reports which step failed.
type StepError struct {
	Step string
	Err  error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence for one file.
// Cancellation is checked before each step; a step that is already running
// handles its own cancellation.
//
// The first step error is returned as a *StepError and no further steps run.
func (p *Pipeline) Execute(ctx context.Context, file *model.FileScan) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Debug("pipeline cancelled",
				"step", step.Name(),
				"file", file.Path,
				"reason", err,
			)
			return err
		}

		if err := step.Do(ctx, file); err != nil {
			return &StepError{Step: step.Name(), Err: err}
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"file", file.Path,
		)
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
