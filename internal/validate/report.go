package validate

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

const banner = "================================================================================"

// WriteHeader writes the run banner and the discovery counts.
func WriteHeader(w io.Writer, r *Report) {
	fmt.Fprintln(w, banner)
	fmt.Fprintln(w, "Chart Metadata Validation")
	fmt.Fprintln(w, banner)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Found %d charts to validate\n", len(r.Charts))
	fmt.Fprintf(w, "Metadata file contains %d chart entries\n", r.MetadataEntries)
	fmt.Fprintln(w)
}

// WriteReport writes the per-chart results, orphan warnings, a summary table
// and the verdict. With strict set, warnings count against the verdict.
func WriteReport(w io.Writer, r *Report, strict bool) {
	for _, c := range r.Charts {
		writeChartResult(w, c)
	}

	for _, o := range r.Orphans {
		fmt.Fprintf(w, "⚠️  Warning: %s %s\n", o.Chart, o.Message)
		fmt.Fprintln(w)
	}

	WriteSummaryTable(w, r)
	fmt.Fprintln(w)

	fmt.Fprintln(w, banner)

	if Passed(r, strict) {
		fmt.Fprintln(w, "✅ All validations passed!")
	} else {
		fmt.Fprintln(w, "❌ Validation failed - please fix the errors above")
	}

	fmt.Fprintln(w, banner)
}

// Passed reports the overall verdict. In strict mode any warning fails.
func Passed(r *Report, strict bool) bool {
	if !r.Valid() {
		return false
	}

	return !strict || !r.HasWarnings()
}

func writeChartResult(w io.Writer, c ChartResult) {
	fmt.Fprintf(w, "Checking %s...\n", c.Name)

	errs := c.Errors()
	missing := len(errs) == 1 && errs[0].Message == MsgNotInMetadata

	switch {
	case missing:
		fmt.Fprintf(w, "  ❌ %s\n", MsgNotInMetadata)
	case len(errs) > 0:
		fmt.Fprintln(w, "  ❌ Validation failed:")

		for _, f := range errs {
			fmt.Fprintf(w, "  %s:\n", f.Message)

			for _, d := range f.Detail {
				fmt.Fprintf(w, "    %s\n", d)
			}
		}
	default:
		fmt.Fprintln(w, "  ✅ Valid")
	}

	for _, f := range c.Warnings() {
		fmt.Fprintf(w, "  ⚠️  %s\n", f.Message)

		for _, d := range f.Detail {
			fmt.Fprintf(w, "    %s\n", d)
		}
	}

	if !missing {
		fmt.Fprintln(w)
	}
}

// WriteSummaryTable renders one row per chart with its status and finding
// counts, followed by the orphaned metadata entries.
func WriteSummaryTable(w io.Writer, r *Report) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Chart", "Status", "Errors", "Warnings"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)

	for _, c := range r.Charts {
		status := "valid"
		if !c.Valid() {
			status = "invalid"
		}

		table.Append([]string{c.Name, status, fmt.Sprint(len(c.Errors())), fmt.Sprint(len(c.Warnings()))})
	}

	for _, o := range r.Orphans {
		table.Append([]string{o.Chart, "orphaned", "0", "1"})
	}

	table.Render()
}
