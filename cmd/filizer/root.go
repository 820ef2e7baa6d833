package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// exitInterrupted is the exit status after an interrupt, as shells report
// for SIGINT.
const exitInterrupted = 130

// NewRootCmd creates the root command for filizer.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filizer",
		Short: "Find duplicate files against a remote registry",
		Long: `filizer scans a directory tree, fingerprints each file's content and asks a
remote registry whether the file is new or a duplicate of a recorded file.

Depending on the registry's answer it copies, moves or deletes duplicates
and reports new files back to the registry. Use --dry-run to preview
everything without changing files or the registry.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if errors.Is(err, context.Canceled) {
		return exitInterrupted
	}
	return 1
}
