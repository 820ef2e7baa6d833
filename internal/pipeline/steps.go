package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/nao1215/filizer/internal/action"
	"github.com/nao1215/filizer/internal/fingerprint"
	"github.com/nao1215/filizer/internal/model"
	"github.com/nao1215/filizer/internal/registry"
)

// Hasher computes the content digest of the file at path.
type Hasher func(path string) (string, error)

// Validator looks up prior registry entries for a file.
type Validator interface {
	Validate(ctx context.Context, name, parentDir, digest string) ([]model.RegistryMatch, error)
}

// Submitter reports a file record to the registry.
type Submitter interface {
	Submit(ctx context.Context, record model.FileRecord) error
}

// Registry is the registry client used by the default pipeline.
type Registry interface {
	Validator
	Submitter
}

// Executor runs directed file actions.
type Executor interface {
	Execute(ctx context.Context, act model.Action, path string) action.Result
}

// HashStep computes the file's content digest.
type HashStep struct {
	hash   Hasher
	logger *slog.Logger
}

// NewHashStep creates a hashing step. A nil hasher uses fingerprint.File.
func NewHashStep(hash Hasher, logger *slog.Logger) *HashStep {
	if hash == nil {
		hash = fingerprint.File
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HashStep{hash: hash, logger: logger}
}

// Name returns the step name.
func (s *HashStep) Name() string {
	return "hash"
}

// Do executes the hash step.
func (s *HashStep) Do(_ context.Context, file *model.FileScan) error {
	digest, err := s.hash(file.Path)
	if err != nil {
		s.logger.Debug("failed to fingerprint file", "file", file.Path, "error", err)
		file.Outcome = model.OutcomeFailed
		return err
	}
	file.Digest = digest
	return nil
}

// ValidateStep classifies the file from the registry's answer.
type ValidateStep struct {
	validator Validator
	logger    *slog.Logger
}

// NewValidateStep creates a validation step.
func NewValidateStep(validator Validator, logger *slog.Logger) *ValidateStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ValidateStep{validator: validator, logger: logger}
}

// Name returns the step name.
func (s *ValidateStep) Name() string {
	return "validate"
}

// Do executes the validate step.
// A rejected credential is returned wrapped in ErrFatal.
func (s *ValidateStep) Do(ctx context.Context, file *model.FileScan) error {
	matches, err := s.validator.Validate(ctx, file.Name, file.ParentDir, file.Digest)
	if err != nil {
		file.Outcome = model.OutcomeFailed
		if registry.IsFatal(err) {
			return fmt.Errorf("%w: %w", ErrFatal, err)
		}
		s.logger.Error("validation failed", "file", file.Path, "error", err)
		return err
	}

	file.Matches = matches
	file.Outcome = classify(file.Path, matches)
	if len(matches) == 0 {
		return nil
	}

	file.Action = matches[0].DirectedAction()
	for _, m := range matches[1:] {
		if a := m.DirectedAction(); a.Kind != file.Action.Kind || a.Args != file.Action.Args {
			file.ConflictingActions = true
			break
		}
	}
	if file.ConflictingActions {
		s.logger.Warn("registry entries direct different actions, honoring the first",
			"file", file.Path,
			"action", file.Action.Raw,
			"matches", len(matches),
		)
	}

	s.logger.Debug("file validated",
		"file", file.Path,
		"outcome", file.Outcome.String(),
		"matches", len(matches),
	)
	return nil
}

// classify derives the outcome from the registry entries.
func classify(path string, matches []model.RegistryMatch) model.Outcome {
	if len(matches) == 0 {
		return model.OutcomeNew
	}
	for _, m := range matches {
		if m.FullPath == path {
			return model.OutcomeExactPathMatch
		}
	}
	return model.OutcomeDuplicate
}

// ActionStep runs the action directed for a duplicate file.
type ActionStep struct {
	executor Executor
	logger   *slog.Logger
}

// NewActionStep creates an action step.
func NewActionStep(executor Executor, logger *slog.Logger) *ActionStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActionStep{executor: executor, logger: logger}
}

// Name returns the step name.
func (s *ActionStep) Name() string {
	return "action"
}

// Do executes the action step.
// Action failures are recorded on the file and never returned.
func (s *ActionStep) Do(ctx context.Context, file *model.FileScan) error {
	if !file.Outcome.IsDuplicate() || file.Action.IsZero() {
		return nil
	}

	result := s.executor.Execute(ctx, file.Action, file.Path)
	file.ActionPerformed = result.Performed()
	if result.Status == action.StatusFailed {
		file.ActionError = result.Err
	}
	return nil
}

// SubmitStep reports the file to the registry.
type SubmitStep struct {
	submitter Submitter
	preview   bool
	logger    *slog.Logger
}

// NewSubmitStep creates a submit step. In preview mode nothing is sent.
func NewSubmitStep(submitter Submitter, preview bool, logger *slog.Logger) *SubmitStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmitStep{submitter: submitter, preview: preview, logger: logger}
}

// Name returns the step name.
func (s *SubmitStep) Name() string {
	return "submit"
}

// Do executes the submit step.
// Exact path matches are already recorded and are never submitted again.
// A file that an action moved or deleted is not submitted either.
func (s *SubmitStep) Do(ctx context.Context, file *model.FileScan) error {
	if s.preview || file.Outcome == model.OutcomeExactPathMatch {
		return nil
	}

	info, err := os.Stat(file.Path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("cannot stat file before submit", "file", file.Path, "error", err)
		}
		return nil
	}

	if err := s.submitter.Submit(ctx, file.Record(info.Size())); err != nil {
		s.logger.Error("failed to submit file", "file", file.Path, "error", err)
		return err
	}
	file.Submitted = true
	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// Preview disables submissions. Actions are previewed by the executor.
	Preview bool

	// Hasher overrides the content fingerprint function.
	Hasher Hasher
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelinePreview sets preview mode for the pipeline.
func WithPipelinePreview(preview bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Preview = preview
	}
}

// WithPipelineHasher sets the fingerprint function.
func WithPipelineHasher(hash Hasher) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Hasher = hash
	}
}

// DefaultPipeline creates a pipeline with the hash, validate, action and
// submit steps in that order.
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelinePreview, etc).
func DefaultPipeline(reg Registry, executor Executor, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{Hasher: fingerprint.File}
	for _, opt := range configOpts {
		opt(cfg)
	}

	p.AddSteps(
		NewHashStep(cfg.Hasher, p.logger),
		NewValidateStep(reg, p.logger),
		NewActionStep(executor, p.logger),
		NewSubmitStep(reg, cfg.Preview, p.logger),
	)
	return p
}
