package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/chartmeta/internal/config"
	"github.com/hupe1980/chartmeta/internal/metadata"
)

// sourceOptions holds the input locations shared by the subcommands.
type sourceOptions struct {
	metadataPath string
	chartsDir    string
}

func registerMetadataFlag(cmd *cobra.Command, opts *sourceOptions, def string) {
	cmd.Flags().StringVar(&opts.metadataPath, "metadata", def, "path to the chart metadata file")
}

func registerChartsDirFlag(cmd *cobra.Command, opts *sourceOptions) {
	cmd.Flags().StringVar(&opts.chartsDir, "charts-dir", "charts", "directory holding one subdirectory per chart")
}

// resolve returns the metadata path and charts directory against the
// configured repository root.
func (o *sourceOptions) resolve(cfg *config.Config) (metadataPath, chartsDir string) {
	return cfg.ResolvePath(o.metadataPath), cfg.ResolvePath(o.chartsDir)
}

// loadMetadata loads the metadata file, mapping failures to exit code 1.
func loadMetadata(path string, logger *slog.Logger) (*metadata.File, error) {
	f, err := metadata.Load(path)
	if err != nil {
		return nil, &ExitError{Code: ExitFailure, Err: err}
	}

	logger.Debug("metadata loaded", slog.String("path", path), slog.Int("charts", f.Len()))

	return f, nil
}

// failf returns an exit-code-1 error with a formatted message.
func failf(format string, args ...any) error {
	return &ExitError{Code: ExitFailure, Err: fmt.Errorf(format, args...)}
}
