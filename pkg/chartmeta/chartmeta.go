// Package chartmeta provides a public Go API for maintaining Helm chart
// catalog metadata.
//
// charts-metadata.yaml is the source of truth for each chart's display name,
// category, tags and keywords. This package renders the Artifact Hub
// dashboard from it, synchronizes chart keywords into Chart.yaml files and
// validates charts against it, allowing programmatic use without the CLI.
//
// Basic usage:
//
//	res, err := chartmeta.Validate(ctx, "charts/charts-metadata.yaml", "charts")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Valid)
//
// With options:
//
//	res, err := chartmeta.SyncKeywords(ctx, "charts-metadata.yaml", "charts",
//	    chartmeta.WithDryRun(),
//	    chartmeta.WithChart("redis"),
//	)
package chartmeta

import (
	"context"
	"log/slog"
	"time"

	"github.com/hupe1980/chartmeta/internal/config"
	"github.com/hupe1980/chartmeta/internal/dashboard"
	"github.com/hupe1980/chartmeta/internal/keywordsync"
	"github.com/hupe1980/chartmeta/internal/logging"
	"github.com/hupe1980/chartmeta/internal/metadata"
	"github.com/hupe1980/chartmeta/internal/validate"
	"github.com/hupe1980/chartmeta/internal/yamlutil"
)

// ErrUnknownChart is returned by SyncKeywords when WithChart names a chart
// that has no metadata entry.
var ErrUnknownChart = keywordsync.ErrUnknownChart

// Option configures an operation. Use the With* functions to create Options.
type Option func(*options)

type options struct {
	repository string
	now        func() time.Time
	logger     *slog.Logger

	dryRun bool
	chart  string
	diff   bool

	strict bool
}

func defaultOptions() *options {
	return &options{
		repository: config.DefaultRepository,
		now:        time.Now,
		logger:     logging.Discard(),
	}
}

// WithRepository sets the Artifact Hub repository name used in dashboard
// badges and links.
func WithRepository(repo string) Option {
	return func(o *options) { o.repository = repo }
}

// WithClock sets the clock used for the dashboard timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger. Operations are silent by default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithDryRun makes SyncKeywords report changes without writing them.
func WithDryRun() Option {
	return func(o *options) { o.dryRun = true }
}

// WithChart restricts SyncKeywords to a single chart.
func WithChart(name string) Option {
	return func(o *options) { o.chart = name }
}

// WithDiff makes SyncKeywords compute a unified diff for each change.
func WithDiff() Option {
	return func(o *options) { o.diff = true }
}

// WithStrict makes Validate treat warnings as failures.
func WithStrict() Option {
	return func(o *options) { o.strict = true }
}

func apply(opts []Option) *options {
	o := defaultOptions()
	for _, fn := range opts {
		fn(o)
	}

	if o.logger == nil {
		o.logger = logging.Discard()
	}

	if o.now == nil {
		o.now = time.Now
	}

	return o
}

// DashboardResult is a rendered dashboard.
type DashboardResult struct {
	Markdown   []byte
	Charts     int
	Categories int
}

// GenerateDashboard renders the Artifact Hub dashboard Markdown from the
// metadata file at metadataPath. Writing the result is left to the caller.
func GenerateDashboard(ctx context.Context, metadataPath string, opts ...Option) (*DashboardResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o := apply(opts)

	meta, err := metadata.Load(metadataPath)
	if err != nil {
		return nil, err
	}

	res, err := dashboard.Generate(meta, dashboard.Options{Repository: o.repository, Now: o.now})
	if err != nil {
		return nil, err
	}

	return &DashboardResult{Markdown: res.Content, Charts: res.Charts, Categories: res.Categories}, nil
}

// ChartSync is the sync outcome for one chart.
type ChartSync struct {
	Chart string
	// Status is one of "skipped", "in-sync", "would-update" or "updated".
	Status string
	// Reason explains a skip.
	Reason  string
	Current []string
	Desired []string
	// Diff is the unified diff of the change, when WithDiff was given.
	Diff string
}

// SyncResult is the outcome of SyncKeywords.
type SyncResult struct {
	DryRun  bool
	Changed bool
	Charts  []ChartSync
}

// SyncKeywords copies keywords from the metadata file into the Chart.yaml of
// each chart under chartsDir. On a descriptor error the partial result is
// returned together with the error.
func SyncKeywords(ctx context.Context, metadataPath, chartsDir string, opts ...Option) (*SyncResult, error) {
	o := apply(opts)

	meta, err := metadata.Load(metadataPath)
	if err != nil {
		return nil, err
	}

	report, err := keywordsync.New(o.logger).Run(ctx, meta, keywordsync.Options{
		ChartsDir: chartsDir,
		Chart:     o.chart,
		DryRun:    o.dryRun,
		Diff:      o.diff,
	})
	if report == nil {
		return nil, err
	}

	out := &SyncResult{DryRun: report.DryRun, Changed: report.Changed()}

	for _, r := range report.Results {
		cs := ChartSync{
			Chart:   r.Chart,
			Status:  r.Status.String(),
			Reason:  r.Reason,
			Current: r.Current,
			Desired: r.Desired,
		}

		if r.Diff != nil {
			cs.Diff = r.Diff.Unified
		}

		out.Charts = append(out.Charts, cs)
	}

	return out, err
}

// Finding is a single validation issue.
type Finding struct {
	Chart string
	// Severity is "error" or "warning".
	Severity string
	Message  string
	Detail   []string
}

// ValidationResult is the outcome of Validate.
type ValidationResult struct {
	// Valid is the overall verdict, taking WithStrict into account.
	Valid bool
	// Charts lists the discovered chart names in lexical order.
	Charts   []string
	Findings []Finding
}

// Errors returns only error-severity findings.
func (r *ValidationResult) Errors() []Finding {
	var out []Finding

	for _, f := range r.Findings {
		if f.Severity == validate.SeverityError.String() {
			out = append(out, f)
		}
	}

	return out
}

// Validate checks every chart directory under chartsDir against the metadata
// file at metadataPath.
func Validate(ctx context.Context, metadataPath, chartsDir string, opts ...Option) (*ValidationResult, error) {
	o := apply(opts)

	meta, err := metadata.Load(metadataPath)
	if err != nil {
		return nil, err
	}

	report, err := validate.Run(ctx, validate.Options{
		ChartsDir: chartsDir,
		Metadata:  meta,
		Logger:    o.logger,
	})
	if err != nil {
		return nil, err
	}

	out := &ValidationResult{Valid: validate.Passed(report, o.strict)}

	for _, c := range report.Charts {
		out.Charts = append(out.Charts, c.Name)
	}

	for _, f := range report.Findings() {
		out.Findings = append(out.Findings, Finding{
			Chart:    f.Chart,
			Severity: f.Severity.String(),
			Message:  f.Message,
			Detail:   f.Detail,
		})
	}

	return out, nil
}

// IsNotFound reports whether err was caused by a missing input file.
func IsNotFound(err error) bool {
	return yamlutil.IsNotFound(err)
}

// IsParseError reports whether err was caused by malformed YAML or an
// unexpected document shape.
func IsParseError(err error) bool {
	return yamlutil.IsParse(err)
}
