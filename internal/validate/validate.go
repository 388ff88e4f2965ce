// Package validate checks every chart directory against charts-metadata.yaml.
//
// A chart is valid when it has a metadata entry and its Chart.yaml keywords
// match the entry's keywords as lower-cased, trimmed sets. Metadata entries
// without a chart directory and non-SemVer chart versions are reported as
// warnings.
package validate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/semver/v3"

	"github.com/hupe1980/chartmeta/internal/chartfile"
	"github.com/hupe1980/chartmeta/internal/keywords"
	"github.com/hupe1980/chartmeta/internal/metadata"
)

// DefaultMetadataPath is where the validator looks for the metadata file,
// relative to the repository root.
const DefaultMetadataPath = "charts/" + metadata.FileName

// DefaultChartsDir is the charts directory relative to the repository root.
const DefaultChartsDir = "charts"

// ErrNoCharts is returned when the charts directory holds no chart.
var ErrNoCharts = errors.New("no charts found")

// Severity indicates how serious a finding is.
type Severity int

const (
	// SeverityError makes the chart invalid.
	SeverityError Severity = iota
	// SeverityWarning is reported but does not affect the verdict.
	SeverityWarning
)

// String returns the severity name.
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}

	return "warning"
}

// Finding is a single validation issue.
type Finding struct {
	Chart    string
	Severity Severity
	Message  string
	// Detail holds extra lines, such as both sides of a keyword mismatch.
	Detail []string
}

// Error implements the error interface.
func (f *Finding) Error() string {
	return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Chart, f.Message)
}

// Finding messages.
const (
	MsgNotInMetadata    = "Chart not found in charts-metadata.yaml"
	MsgKeywordsMismatch = "Keywords mismatch"
	MsgOrphaned         = "exists in metadata but not in charts/ directory"
	MsgInvalidVersion   = "version is not valid SemVer"
)

// ChartResult holds the findings for one discovered chart.
type ChartResult struct {
	Name     string
	Findings []Finding
}

// Valid reports whether the chart has no error findings.
func (c ChartResult) Valid() bool {
	for _, f := range c.Findings {
		if f.Severity == SeverityError {
			return false
		}
	}

	return true
}

// Errors returns only error-severity findings.
func (c ChartResult) Errors() []Finding {
	return filter(c.Findings, SeverityError)
}

// Warnings returns only warning-severity findings.
func (c ChartResult) Warnings() []Finding {
	return filter(c.Findings, SeverityWarning)
}

// Report is the outcome of a validation run.
type Report struct {
	// Charts holds one result per discovered chart, in lexical order.
	Charts []ChartResult
	// Orphans holds a warning per metadata entry with no chart directory,
	// in metadata file order.
	Orphans []Finding
	// MetadataEntries is the number of entries in the metadata file.
	MetadataEntries int
}

// Valid reports whether every discovered chart is valid. Warnings never
// affect the verdict.
func (r *Report) Valid() bool {
	for _, c := range r.Charts {
		if !c.Valid() {
			return false
		}
	}

	return true
}

// HasWarnings reports whether any warning was produced.
func (r *Report) HasWarnings() bool {
	if len(r.Orphans) > 0 {
		return true
	}

	for _, c := range r.Charts {
		if len(c.Warnings()) > 0 {
			return true
		}
	}

	return false
}

// Findings returns every finding, chart findings first.
func (r *Report) Findings() []Finding {
	var out []Finding
	for _, c := range r.Charts {
		out = append(out, c.Findings...)
	}

	return append(out, r.Orphans...)
}

// Options configures a validation run.
type Options struct {
	// ChartsDir holds one directory per chart. Defaults to DefaultChartsDir.
	ChartsDir string
	// Metadata is the loaded metadata file.
	Metadata *metadata.File
	// Logger receives debug output. Defaults to slog.Default().
	Logger *slog.Logger
}

// Run validates every chart directory under opts.ChartsDir. A missing or
// empty charts directory and an unparsable Chart.yaml are returned as errors;
// consistency problems are reported as findings.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.ChartsDir == "" {
		opts.ChartsDir = DefaultChartsDir
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	meta := opts.Metadata
	if meta == nil {
		meta = metadata.New()
	}

	names, err := chartfile.Discover(opts.ChartsDir)
	if err != nil {
		return nil, err
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoCharts, opts.ChartsDir)
	}

	report := &Report{MetadataEntries: meta.Len()}
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		seen[name] = true

		desc, err := chartfile.Load(chartfile.PathFor(opts.ChartsDir, name))
		if err != nil {
			return nil, err
		}

		result := CheckChart(name, desc, meta)
		logger.Debug("validated chart", slog.String("chart", name), slog.Bool("valid", result.Valid()))

		report.Charts = append(report.Charts, result)
	}

	for _, key := range meta.Keys() {
		if !seen[key] {
			report.Orphans = append(report.Orphans, Finding{
				Chart:    key,
				Severity: SeverityWarning,
				Message:  MsgOrphaned,
			})
		}
	}

	return report, nil
}

// CheckChart validates one loaded descriptor against its metadata entry.
func CheckChart(name string, desc *chartfile.Descriptor, meta *metadata.File) ChartResult {
	result := ChartResult{Name: name}

	entry, ok := meta.Get(name)
	if !ok {
		result.Findings = append(result.Findings, Finding{
			Chart:    name,
			Severity: SeverityError,
			Message:  MsgNotInMetadata,
		})

		return result
	}

	chartKeywords := keywords.Normalized(desc.Keywords())
	metaKeywords := keywords.Normalized(entry.Keywords)

	if !chartKeywords.Equal(metaKeywords) {
		result.Findings = append(result.Findings, Finding{
			Chart:    name,
			Severity: SeverityError,
			Message:  MsgKeywordsMismatch,
			Detail: []string{
				"Chart.yaml:          " + keywords.Format(keywords.Sorted(chartKeywords)),
				metadata.FileName + ": " + keywords.Format(keywords.Sorted(metaKeywords)),
			},
		})
	}

	if v := desc.Version(); v != "" {
		if _, err := semver.NewVersion(v); err != nil {
			result.Findings = append(result.Findings, Finding{
				Chart:    name,
				Severity: SeverityWarning,
				Message:  MsgInvalidVersion,
				Detail:   []string{fmt.Sprintf("version %q: %v", v, err)},
			})
		}
	}

	return result
}

func filter(findings []Finding, s Severity) []Finding {
	var out []Finding

	for _, f := range findings {
		if f.Severity == s {
			out = append(out, f)
		}
	}

	return out
}
