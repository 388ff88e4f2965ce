package keywordsync

import (
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/chartmeta/internal/diff"
	"github.com/hupe1980/chartmeta/internal/keywords"
)

const banner = "================================================================================"

// WriteHeader writes the run banner.
func WriteHeader(w io.Writer, dryRun bool) {
	title := "Chart Keywords Sync"
	if dryRun {
		title += " (DRY RUN)"
	}

	fmt.Fprintln(w, banner)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, banner)
	fmt.Fprintln(w)
}

// WriteReport writes one block per chart followed by the summary. Diffs are
// printed under their chart when present.
func WriteReport(w io.Writer, r *Report, color bool) {
	fmt.Fprintf(w, "Syncing %d chart(s)...\n", r.Selected)
	fmt.Fprintln(w)

	for _, res := range r.Results {
		fmt.Fprintln(w, FormatResult(res))

		if res.Diff != nil {
			diff.Write(w, res.Diff, "     ", color)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, banner)
	fmt.Fprintln(w, Summary(r))
	fmt.Fprintln(w, banner)
}

// FormatResult renders the status line(s) for one chart.
func FormatResult(res Result) string {
	switch res.Status {
	case StatusSkipped:
		return fmt.Sprintf("  ⚠️  %s: %s, skipping", res.Chart, res.Reason)
	case StatusInSync:
		return fmt.Sprintf("  ℹ️  %s: Keywords already synchronized", res.Chart)
	case StatusWouldUpdate:
		return fmt.Sprintf("  🔄 %s: Would update keywords\n     Current: %s\n     New:     %s",
			res.Chart, keywords.Format(res.Current), keywords.Format(res.Desired))
	case StatusUpdated:
		return fmt.Sprintf("  ✅ %s: Keywords updated\n     Old: %s\n     New: %s",
			res.Chart, keywords.Format(res.Current), keywords.Format(res.Desired))
	default:
		return fmt.Sprintf("  %s: %s", res.Chart, res.Status)
	}
}

// Summary returns the closing message of a run.
func Summary(r *Report) string {
	var lines []string

	switch {
	case r.DryRun && r.Changed():
		lines = []string{"✅ Preview complete - changes would be applied", "   Run without --dry-run to apply changes"}
	case r.DryRun:
		lines = []string{"✅ Preview complete - no changes needed"}
	case r.Changed():
		lines = []string{"✅ Keywords synchronized successfully!", "   Don't forget to commit the changes"}
	default:
		lines = []string{"✅ All keywords already synchronized"}
	}

	return strings.Join(lines, "\n")
}
