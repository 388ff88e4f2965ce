// Package keywordsync copies chart keywords from charts-metadata.yaml into
// each chart's Chart.yaml.
//
// Keyword lists are compared as sets of exact strings. Charts whose sets
// differ get their keywords block rewritten in place; every other line of the
// descriptor is preserved byte for byte.
package keywordsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hupe1980/chartmeta/internal/chartfile"
	"github.com/hupe1980/chartmeta/internal/diff"
	"github.com/hupe1980/chartmeta/internal/keywords"
	"github.com/hupe1980/chartmeta/internal/metadata"
)

// DefaultChartsDir is the charts directory relative to the repository root.
const DefaultChartsDir = "charts"

// ErrUnknownChart is returned when Options.Chart names a chart that has no
// metadata entry.
var ErrUnknownChart = errors.New("chart not found in metadata")

// ErrPatchMismatch is returned when a rewritten descriptor would not parse
// back to the metadata keywords. The descriptor is left untouched.
var ErrPatchMismatch = errors.New("rewritten Chart.yaml does not round-trip")

// Status is the outcome of syncing one chart.
type Status int

const (
	// StatusSkipped means the chart was not touched (no descriptor or no
	// metadata keywords).
	StatusSkipped Status = iota
	// StatusInSync means the keyword sets already match.
	StatusInSync
	// StatusWouldUpdate means the sets differ and this was a dry run.
	StatusWouldUpdate
	// StatusUpdated means the descriptor was rewritten.
	StatusUpdated
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusInSync:
		return "in-sync"
	case StatusWouldUpdate:
		return "would-update"
	case StatusUpdated:
		return "updated"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Skip reasons.
const (
	ReasonNoDescriptor = "Chart.yaml not found"
	ReasonNoKeywords   = "No keywords in metadata"
)

// Result is the outcome for a single chart.
type Result struct {
	Chart  string
	Status Status
	// Reason explains a skip.
	Reason string
	// Current holds the descriptor's keywords before the sync.
	Current []string
	// Desired holds the metadata keywords.
	Desired []string
	// Diff is the descriptor change, set when Options.Diff is enabled and
	// the chart changed or would change.
	Diff *diff.Result
}

// Changed reports whether the chart was or would be rewritten.
func (r Result) Changed() bool {
	return r.Status == StatusWouldUpdate || r.Status == StatusUpdated
}

// Report collects the per-chart results of a run.
type Report struct {
	DryRun bool
	// Selected is the number of charts chosen for syncing.
	Selected int
	Results  []Result
}

// Changed reports whether any chart was or would be rewritten.
func (r *Report) Changed() bool {
	for _, res := range r.Results {
		if res.Changed() {
			return true
		}
	}

	return false
}

// Count returns how many results have status s.
func (r *Report) Count(s Status) int {
	n := 0

	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}

	return n
}

// Options configures a sync run.
type Options struct {
	// ChartsDir holds one directory per chart. Defaults to DefaultChartsDir.
	ChartsDir string
	// Chart restricts the run to a single chart.
	Chart string
	// DryRun reports changes without writing.
	DryRun bool
	// Diff computes a unified diff for each changed descriptor.
	Diff bool
}

// Syncer rewrites chart keywords from metadata.
type Syncer struct {
	logger *slog.Logger
	write  func(path string, data []byte) error
}

// New returns a Syncer. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Syncer{logger: logger, write: chartfile.WriteFile}
}

// Run syncs the charts of meta in metadata file order. A descriptor that
// cannot be read or parsed, a patch that does not parse back to the desired
// keywords, or a failed write aborts the run; the report
// returned alongside the error holds the charts processed so far.
func (s *Syncer) Run(ctx context.Context, meta *metadata.File, opts Options) (*Report, error) {
	if opts.ChartsDir == "" {
		opts.ChartsDir = DefaultChartsDir
	}

	selected, err := selectCharts(meta, opts.Chart)
	if err != nil {
		return nil, err
	}

	report := &Report{DryRun: opts.DryRun, Selected: len(selected)}

	for _, c := range selected {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res, err := s.syncChart(c, opts)
		if err != nil {
			return report, err
		}

		report.Results = append(report.Results, res)
	}

	s.logger.Debug("keyword sync finished",
		slog.Int("charts", report.Selected),
		slog.Bool("dryRun", opts.DryRun),
		slog.Bool("changed", report.Changed()),
	)

	return report, nil
}

func selectCharts(meta *metadata.File, name string) ([]metadata.Chart, error) {
	if meta == nil {
		return nil, nil
	}

	if name == "" {
		return meta.Charts(), nil
	}

	entry, ok := meta.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChart, name)
	}

	return []metadata.Chart{{Key: name, Entry: entry}}, nil
}

func (s *Syncer) syncChart(c metadata.Chart, opts Options) (Result, error) {
	res := Result{Chart: c.Key, Desired: c.Entry.Keywords}
	path := chartfile.PathFor(opts.ChartsDir, c.Key)

	if !chartfile.Exists(path) {
		res.Reason = ReasonNoDescriptor
		s.logger.Debug("skipping chart", slog.String("chart", c.Key), slog.String("reason", res.Reason))

		return res, nil
	}

	if len(c.Entry.Keywords) == 0 {
		res.Reason = ReasonNoKeywords
		s.logger.Debug("skipping chart", slog.String("chart", c.Key), slog.String("reason", res.Reason))

		return res, nil
	}

	desc, err := chartfile.Load(path)
	if err != nil {
		return res, err
	}

	res.Current = desc.Keywords()

	if keywords.Equal(res.Current, res.Desired) {
		res.Status = StatusInSync
		return res, nil
	}

	before, after, err := chartfile.PlanKeywords(path, res.Desired)
	if err != nil {
		return res, err
	}

	if err := verifyPatch(path, after, res.Desired); err != nil {
		return res, err
	}

	if opts.Diff {
		d, err := diff.Compute(string(before), string(after), diff.ForFile(path))
		if err != nil {
			return res, err
		}

		res.Diff = d
	}

	if opts.DryRun {
		res.Status = StatusWouldUpdate
		return res, nil
	}

	if err := s.write(path, after); err != nil {
		return res, err
	}

	res.Status = StatusUpdated

	delta := keywords.Diff(res.Current, res.Desired)
	s.logger.Info("updated chart keywords",
		slog.String("chart", c.Key),
		slog.String("path", path),
		slog.Any("added", delta.Added),
		slog.Any("removed", delta.Removed),
	)

	return res, nil
}

func verifyPatch(path string, after []byte, desired []string) error {
	md, err := chartfile.Parse(after)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPatchMismatch, path, err)
	}

	if !keywords.Equal(md.Keywords, desired) {
		return fmt.Errorf("%w: %s: got %s", ErrPatchMismatch, path, keywords.Format(md.Keywords))
	}

	return nil
}
