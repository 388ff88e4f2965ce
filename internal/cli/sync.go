package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/chartmeta/internal/config"
	"github.com/hupe1980/chartmeta/internal/keywordsync"
	"github.com/hupe1980/chartmeta/internal/logging"
	"github.com/hupe1980/chartmeta/internal/metadata"
)

type syncOptions struct {
	sourceOptions

	dryRun bool
	chart  string
	diff   bool
}

func newSyncCommand() *cobra.Command {
	opts := &syncOptions{}

	cmd := &cobra.Command{
		Use:   "sync-keywords",
		Short: "Copy keywords from charts-metadata.yaml into each Chart.yaml",
		Long: `Synchronize the keywords of every chart's Chart.yaml with charts-metadata.yaml.

Keyword lists are compared as sets, so order and duplicates are ignored.
When they differ, only the keywords block of Chart.yaml is rewritten;
comments and all other lines are left untouched. Charts without a
Chart.yaml or without keywords in the metadata are skipped.

Use --dry-run to preview the changes and --diff to see them as a
unified diff.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd.Context(), cmd, opts)
		},
	}

	registerMetadataFlag(cmd, &opts.sourceOptions, metadata.FileName)
	registerChartsDirFlag(cmd, &opts.sourceOptions)

	f := cmd.Flags()
	f.BoolVar(&opts.dryRun, "dry-run", false, "preview changes without applying them")
	f.StringVar(&opts.chart, "chart", "", "sync a single chart only")
	f.BoolVar(&opts.diff, "diff", false, "show a unified diff of each Chart.yaml change")

	_ = cmd.RegisterFlagCompletionFunc("chart", completeChartNames(&opts.sourceOptions))

	return cmd
}

func runSync(ctx context.Context, cmd *cobra.Command, opts *syncOptions) error {
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)
	metadataPath, chartsDir := opts.resolve(cfg)
	out := cmd.OutOrStdout()

	keywordsync.WriteHeader(out, opts.dryRun)

	meta, err := loadMetadata(metadataPath, logger)
	if err != nil {
		return err
	}

	report, err := keywordsync.New(logger).Run(ctx, meta, keywordsync.Options{
		ChartsDir: chartsDir,
		Chart:     opts.chart,
		DryRun:    opts.dryRun,
		Diff:      opts.diff,
	})
	if err != nil {
		if errors.Is(err, keywordsync.ErrUnknownChart) {
			return failf("chart %q not found in metadata", opts.chart)
		}

		if report != nil {
			for _, res := range report.Results {
				_, _ = fmt.Fprintln(out, keywordsync.FormatResult(res))
			}
		}

		return &ExitError{Code: ExitFailure, Err: err}
	}

	keywordsync.WriteReport(out, report, !cfg.NoColor)

	return nil
}
