package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/nao1215/filizer/internal/aggregator"
	"github.com/nao1215/filizer/internal/model"
	"github.com/nao1215/filizer/internal/pipeline"
)

// ErrNotDirectory is returned when the scan root is not an existing directory.
var ErrNotDirectory = errors.New("scan root is not a directory")

// DefaultExcludes are the directory names skipped when none are configured.
var DefaultExcludes = []string{".git", "node_modules", "__pycache__", ".venv"}

// Runner processes one file.
type Runner interface {
	Execute(ctx context.Context, file *model.FileScan) error
}

// Options configures a Scanner.
type Options struct {
	// Exclude lists directory names that are never entered.
	Exclude []string

	// Registry is the registry URL recorded in the report.
	Registry string

	// Preview is recorded in the report.
	Preview bool
}

// Scanner walks a directory tree and runs each file through a Runner.
// A Scanner runs one scan at a time on the calling goroutine.
type Scanner struct {
	opts     Options
	runner   Runner
	counters *aggregator.Aggregator
	logger   *slog.Logger
}

// New creates a Scanner. A nil aggregator or logger is replaced with a
// fresh aggregator or the default logger, and a nil exclude list with
// DefaultExcludes.
func New(opts Options, runner Runner, counters *aggregator.Aggregator, logger *slog.Logger) *Scanner {
	if counters == nil {
		counters = aggregator.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Exclude == nil {
		opts.Exclude = DefaultExcludes
	}
	return &Scanner{
		opts:     opts,
		runner:   runner,
		counters: counters,
		logger:   logger,
	}
}

// Scan walks root and returns the report of the run.
//
// When the registry rejects the credentials or ctx is cancelled, Scan stops
// the walk and returns the partial report, marked aborted, together with
// the error.
func (s *Scanner) Scan(ctx context.Context, root string) (*model.ScanReport, error) {
	resolved, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}

	report := model.NewScanReport(resolved, s.opts.Registry, s.opts.Preview)
	s.logger.Info("scan started", "root", resolved, "preview", s.opts.Preview)

	walkErr := filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == resolved {
				return err
			}
			s.logger.Warn("cannot read directory entry, skipping", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			if path != resolved && s.excluded(d.Name()) {
				s.logger.Debug("skipping excluded directory", "path", path)
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return s.processFile(ctx, report, path)
	})

	report.FinishedAt = time.Now()
	report.Stats = s.counters.Stats()

	switch {
	case walkErr == nil:
		s.logger.Info("scan finished",
			"root", resolved,
			"validated", report.Stats.Validated(),
			"failed", report.Stats.Failed,
			"duration", report.Duration().Round(time.Millisecond),
		)
		return report, nil
	case errors.Is(walkErr, pipeline.ErrFatal):
		report.Aborted = true
		report.AbortReason = "registry rejected credentials"
		s.logger.Error("authentication failed, check your token; scan aborted", "error", walkErr)
	case errors.Is(walkErr, context.Canceled), errors.Is(walkErr, context.DeadlineExceeded):
		report.Aborted = true
		report.AbortReason = "interrupted"
		s.logger.Warn("scan interrupted", "error", walkErr)
	default:
		report.Aborted = true
		report.AbortReason = walkErr.Error()
	}
	return report, walkErr
}

// processFile runs one file through the pipeline and updates the counters.
// It returns an error only when the walk must stop.
func (s *Scanner) processFile(ctx context.Context, report *model.ScanReport, path string) error {
	// Files can vanish between listing and processing.
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("file vanished before processing", "file", path)
			return nil
		}
		s.logger.Warn("cannot stat file", "file", path, "error", err)
		s.counters.Failed()
		return nil
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	file := model.NewFileScan(path, filepath.Base(path), filepath.Base(filepath.Dir(path)), info.Size())
	runErr := s.runner.Execute(ctx, file)

	if file.Outcome.IsValidated() {
		s.counters.Record(file.Outcome, file.ParentDir)
	}
	if file.ActionPerformed {
		s.counters.ActionTaken()
	}
	if file.ConflictingActions {
		report.Conflicts = append(report.Conflicts, path)
	}

	if runErr == nil {
		return nil
	}
	if errors.Is(runErr, pipeline.ErrFatal) {
		return runErr
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	s.counters.Failed()
	return nil
}

func (s *Scanner) excluded(name string) bool {
	return slices.Contains(s.opts.Exclude, name)
}

// resolveRoot returns the absolute, symlink-free form of root, which must
// be a directory.
func resolveRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNotDirectory, root, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNotDirectory, root, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNotDirectory, root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}
	return resolved, nil
}
