// Command reprocess re-runs the content pipeline over stored records, so
// that renderer or sanitizer changes reach existing content.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"folio/internal/app"
	"folio/internal/config"
	contentSvc "folio/internal/domain/services/content"
	"folio/internal/service/content"
)

// buildFunc supplies the reprocessor and a cleanup func.
type buildFunc func(ctx context.Context) (contentSvc.ContentReprocessor, func(), error)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	build := func(ctx context.Context) (contentSvc.ContentReprocessor, func(), error) {
		logger, closeLog, err := app.NewLogger(cfg)
		if err != nil {
			return nil, nil, err
		}
		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			closeLog()
			return nil, nil, err
		}
		cleanup := func() {
			a.Close()
			closeLog()
		}
		return content.NewReprocessor(a.Contents, a.Processor, a.Tracker, logger), cleanup, nil
	}

	if err := newRootCmd(build, cfg.ReprocessBatchSize).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(build buildFunc, defaultBatchSize int) *cobra.Command {
	var opts contentSvc.ReprocessOptions

	cmd := &cobra.Command{
		Use:   "reprocess",
		Short: "Re-run content processing over stored records",
		Long: `Pages through stored content in id order and re-runs classification,
rendering, sanitizing and extraction with each record's stored type.
Records whose derived fields changed are written back and their inline
asset claims reconciled. A record that fails is reported and skipped.

Interrupted runs print the last visited id; pass it to --after-id to resume.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReprocess(cmd, build, opts)
		},
	}

	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", defaultBatchSize, "records per batch")
	cmd.Flags().StringVar(&opts.AfterID, "after-id", "", "resume after this record id")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum records to visit (0 = all)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report changes without writing")

	return cmd
}

func runReprocess(cmd *cobra.Command, build buildFunc, opts contentSvc.ReprocessOptions) error {
	if opts.BatchSize <= 0 {
		return fmt.Errorf("--batch-size must be positive")
	}
	if opts.Limit < 0 {
		return fmt.Errorf("--limit cannot be negative")
	}

	reprocessor, cleanup, err := build(cmd.Context())
	if err != nil {
		return fmt.Errorf("initialise: %w", err)
	}
	defer cleanup()

	report, runErr := reprocessor.Reprocess(cmd.Context(), opts)

	if report != nil {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("reprocessing stopped: %w", runErr)
	}
	if len(report.Failed) > 0 {
		return fmt.Errorf("%d records failed", len(report.Failed))
	}
	return nil
}
