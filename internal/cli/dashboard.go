package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/chartmeta/internal/config"
	"github.com/hupe1980/chartmeta/internal/dashboard"
	"github.com/hupe1980/chartmeta/internal/logging"
	"github.com/hupe1980/chartmeta/internal/metadata"
	"github.com/hupe1980/chartmeta/internal/output"
	"github.com/hupe1980/chartmeta/internal/watch"
)

type dashboardOptions struct {
	sourceOptions

	output   string
	stdout   bool
	watch    bool
	debounce time.Duration
}

func newDashboardCommand() *cobra.Command {
	opts := &dashboardOptions{}

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Generate the Artifact Hub dashboard",
		Long: `Generate the Artifact Hub statistics dashboard from charts-metadata.yaml.

Charts are grouped by category. Each chart gets a badge, its description,
tags, keywords and links to its Artifact Hub package and local README.
The output file is overwritten on every run.

With --watch the dashboard is regenerated whenever the metadata file
changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(cmd.Context(), cmd, opts)
		},
	}

	registerMetadataFlag(cmd, &opts.sourceOptions, metadata.FileName)

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", dashboard.DefaultOutputPath, "dashboard output path")
	f.BoolVar(&opts.stdout, "stdout", false, "print the dashboard instead of writing it")
	f.BoolVarP(&opts.watch, "watch", "w", false, "regenerate when the metadata file changes")
	f.DurationVar(&opts.debounce, "debounce", 500*time.Millisecond, "debounce interval for --watch")

	return cmd
}

func runDashboard(ctx context.Context, cmd *cobra.Command, opts *dashboardOptions) error {
	if opts.watch && opts.stdout {
		return &ExitError{Code: ExitUsage, Err: errors.New("--watch cannot be combined with --stdout")}
	}

	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)
	metadataPath := cfg.ResolvePath(opts.metadataPath)
	outputPath := cfg.ResolvePath(opts.output)

	generate := func() (*dashboard.Result, error) {
		meta, err := loadMetadata(metadataPath, logger)
		if err != nil {
			return nil, err
		}

		res, err := dashboard.Generate(meta, dashboard.Options{Repository: cfg.Repository})
		if err != nil {
			return nil, &ExitError{Code: ExitFailure, Err: fmt.Errorf("%s: %w", metadataPath, err)}
		}

		var w output.Writer
		if opts.stdout {
			w = output.NewStdoutWriter(cmd.OutOrStdout())
		} else {
			w = output.NewFileWriter(outputPath, output.WithLogger(logger))
		}

		if err := w.Write(res.Content); err != nil {
			return nil, &ExitError{Code: ExitFailure, Err: err}
		}

		return res, nil
	}

	if opts.watch {
		return watchDashboard(ctx, cmd, opts, metadataPath, outputPath, logger, generate)
	}

	out := cmd.OutOrStdout()
	if !opts.stdout {
		_, _ = fmt.Fprintln(out, "Generating Artifact Hub dashboard...")
	}

	res, err := generate()
	if err != nil {
		return err
	}

	if opts.stdout {
		return nil
	}

	_, _ = fmt.Fprintf(out, "✅ Generated Artifact Hub dashboard: %s\n", outputPath)
	_, _ = fmt.Fprintf(out, "   Total charts: %d\n", res.Charts)
	_, _ = fmt.Fprintf(out, "   Categories: %d\n", res.Categories)
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "✅ Dashboard generation complete!")

	return nil
}

func watchDashboard(
	ctx context.Context,
	cmd *cobra.Command,
	opts *dashboardOptions,
	metadataPath, outputPath string,
	logger *slog.Logger,
	generate func() (*dashboard.Result, error),
) error {
	wopts := watch.DefaultOptions()
	wopts.Files = []string{metadataPath}
	wopts.Debounce = opts.debounce
	wopts.Logger = logger
	wopts.Out = cmd.ErrOrStderr()

	runFn := func(_ context.Context) (*watch.RunResult, error) {
		res, err := generate()
		if err != nil {
			return nil, err
		}

		return &watch.RunResult{
			Charts:     res.Charts,
			Categories: res.Categories,
			OutputPath: outputPath,
		}, nil
	}

	if err := watch.Run(ctx, wopts, runFn); err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	return nil
}
