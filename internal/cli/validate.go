package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hupe1980/chartmeta/internal/config"
	"github.com/hupe1980/chartmeta/internal/logging"
	"github.com/hupe1980/chartmeta/internal/validate"
)

type validateOptions struct {
	sourceOptions

	strict bool
}

func newValidateCommand() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that every chart agrees with charts-metadata.yaml",
		Long: `Validate every chart directory against the chart metadata file.

A chart fails when it has no metadata entry or when its Chart.yaml keywords
differ from the metadata keywords (compared case-insensitively, ignoring
order). Metadata entries without a chart directory and chart versions that
are not valid SemVer are reported as warnings.

Returns exit code 1 on validation failure (or on warnings with --strict).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd.Context(), cmd, opts)
		},
	}

	registerMetadataFlag(cmd, &opts.sourceOptions, validate.DefaultMetadataPath)
	registerChartsDirFlag(cmd, &opts.sourceOptions)

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on warnings in addition to errors")

	return cmd
}

func runValidate(ctx context.Context, cmd *cobra.Command, opts *validateOptions) error {
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)
	metadataPath, chartsDir := opts.resolve(cfg)
	out := cmd.OutOrStdout()

	meta, err := loadMetadata(metadataPath, logger)
	if err != nil {
		return err
	}

	report, err := validate.Run(ctx, validate.Options{
		ChartsDir: chartsDir,
		Metadata:  meta,
		Logger:    logger,
	})
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	validate.WriteHeader(out, report)
	validate.WriteReport(out, report, opts.strict)

	if !report.Valid() {
		invalid := 0

		for _, c := range report.Charts {
			if !c.Valid() {
				invalid++
			}
		}

		return failf("validation failed for %d chart(s)", invalid)
	}

	if opts.strict && report.HasWarnings() {
		return failf("validation failed with warnings (strict mode)")
	}

	return nil
}
