package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/filizer/internal/action"
	"github.com/nao1215/filizer/internal/aggregator"
	"github.com/nao1215/filizer/internal/config"
	"github.com/nao1215/filizer/internal/database"
	"github.com/nao1215/filizer/internal/log"
	"github.com/nao1215/filizer/internal/model"
	"github.com/nao1215/filizer/internal/pipeline"
	"github.com/nao1215/filizer/internal/registry"
	"github.com/nao1215/filizer/internal/report"
	"github.com/nao1215/filizer/internal/scanner"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a directory and check every file against the registry",
		Long: `Scan walks a directory tree, fingerprints every regular file and asks the
registry whether it is new or a duplicate.

For each file:
- A duplicate may carry an action from the registry: copy, move or delete.
  Deletion asks for confirmation unless --force is given.
- Files that are not exact path matches are reported back to the registry.
- --dry-run only logs what would happen.

Settings are read from flags, then FILIZER_* environment variables, then the
config file ($XDG_CONFIG_HOME/filizer/config.yaml or --config), then defaults.

Examples:
  # Scan the current directory
  filizer scan --url https://registry.example.com/api/files

  # Preview what would happen in ~/Pictures
  FILIZER_TOKEN=secret filizer scan ~/Pictures --dry-run

  # Delete duplicates without prompting and save a Markdown report
  filizer scan /data --force -f markdown -o report.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScanCmd,
	}

	config.RegisterFlags(cmd.Flags())

	return cmd
}

func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.Path = args[0]
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, closer, err := log.New(cmd.ErrOrStderr(), log.Options{
		Level:   cfg.Level,
		Verbose: cfg.Verbose,
		File:    cfg.LogFile,
		Secrets: []string{cfg.Token},
	})
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScan(ctx, cmd, cfg, logger)
}

// runScan wires the components for one scan, runs it and writes the report.
func runScan(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	client, err := registry.New(cfg.URL,
		registry.WithToken(cfg.Token),
		registry.WithTimeout(cfg.Timeout),
		registry.WithMaxAttempts(cfg.MaxAttempts),
		registry.WithProxy(cfg.Proxy),
		registry.WithUserAgent(userAgent()),
		registry.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if cfg.ConfigFile != "" {
		logger.Debug("configuration file loaded", "path", cfg.ConfigFile)
	}

	executor := newExecutor(cmd, cfg, logger)
	p := pipeline.DefaultPipeline(client, executor,
		[]pipeline.Option{pipeline.WithLogger(logger)},
		pipeline.WithPipelinePreview(cfg.DryRun),
	)

	sc := scanner.New(scanner.Options{
		Exclude:  cfg.Exclude,
		Registry: client.Endpoint(),
		Preview:  cfg.DryRun,
	}, p, aggregator.New(), logger)

	scanReport, scanErr := sc.Scan(ctx, cfg.Path)
	if scanReport == nil {
		return fmt.Errorf("scan failed: %w", scanErr)
	}

	// The report is still written and saved after an interrupt.
	saveCtx := context.WithoutCancel(ctx)
	if cfg.History {
		if err := saveScanReport(saveCtx, cfg.DBDir, scanReport, logger); err != nil {
			logger.Error("failed to save scan report", "error", err)
		}
	}

	if err := outputReport(cmd.OutOrStdout(), cfg, scanReport); err != nil {
		return err
	}

	if scanErr != nil {
		if registry.IsFatal(scanErr) {
			return fmt.Errorf("scan aborted: authentication failed, check your token: %w", scanErr)
		}
		return fmt.Errorf("scan aborted: %w", scanErr)
	}
	return nil
}

// newExecutor builds the action executor. Deletions are confirmed on the
// command's input unless forced.
func newExecutor(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) *action.Executor {
	in := cmd.InOrStdin()
	if !cfg.Force && !cfg.DryRun && !action.IsTerminal(in) {
		logger.Warn("standard input is not a terminal; deletions are confirmed from piped input and declined at end of input")
	}

	return action.New(
		action.WithForce(cfg.Force),
		action.WithPreview(cfg.DryRun),
		action.WithConfirmer(action.NewPromptConfirmer(in, cmd.ErrOrStderr())),
		action.WithLogger(logger),
	)
}

// outputReport writes the report in the configured format to stdout or
// cfg.Output.
func outputReport(stdout io.Writer, cfg *config.Config, scanReport *model.ScanReport) error {
	output := stdout
	if cfg.Output != "" {
		if dir := filepath.Dir(cfg.Output); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports list local paths, keep them private to the owner.
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	writer, err := report.New(cfg.Format, output, getVersion())
	if err != nil {
		return err
	}
	if _, err := writer.Write(scanReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// saveScanReport stores the report in the history database in dbDir.
func saveScanReport(ctx context.Context, dbDir string, scanReport *model.ScanReport, logger *slog.Logger) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := db.SaveScanReport(ctx, scanReport)
	if err != nil {
		return err
	}

	logger.Info("scan report saved to history", "id", id, "db", db.Path())
	return nil
}

// errNoHistory is returned by history commands when nothing was saved yet.
var errNoHistory = errors.New("no scan history found (run 'filizer scan' first)")
