// Package diff renders unified diffs of chart descriptor rewrites.
package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Result holds a unified diff between two versions of a file.
type Result struct {
	Unified        string
	HasDifferences bool
	OldLabel       string
	NewLabel       string
}

// Options configures diff computation.
type Options struct {
	OldLabel string
	NewLabel string
	Context  int
}

// ForFile returns options labelling both sides after path, the way git does.
func ForFile(path string) Options {
	return Options{
		OldLabel: "a/" + path,
		NewLabel: "b/" + path,
		Context:  2,
	}
}

// Compute computes a unified diff between two documents.
func Compute(oldDoc, newDoc string, opts Options) (*Result, error) {
	ud := difflib.UnifiedDiff{
		A:        splitLines(oldDoc),
		B:        splitLines(newDoc),
		FromFile: opts.OldLabel,
		ToFile:   opts.NewLabel,
		Context:  opts.Context,
	}

	unified, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return nil, fmt.Errorf("computing diff: %w", err)
	}

	return &Result{
		Unified:        unified,
		HasDifferences: unified != "",
		OldLabel:       opts.OldLabel,
		NewLabel:       opts.NewLabel,
	}, nil
}

// Write writes the diff to w, indented by prefix, with optional ANSI colors.
func Write(w io.Writer, result *Result, prefix string, color bool) {
	if !result.HasDifferences {
		return
	}

	for _, line := range strings.Split(strings.TrimSuffix(result.Unified, "\n"), "\n") {
		if color {
			writeColorLine(w, prefix, line)
		} else {
			_, _ = fmt.Fprintf(w, "%s%s\n", prefix, line)
		}
	}
}

func writeColorLine(w io.Writer, prefix, line string) {
	const (
		red   = "\033[31m"
		green = "\033[32m"
		cyan  = "\033[36m"
		bold  = "\033[1m"
		reset = "\033[0m"
	)

	var code string

	switch {
	case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
		code = bold
	case strings.HasPrefix(line, "@@"):
		code = cyan
	case strings.HasPrefix(line, "-"):
		code = red
	case strings.HasPrefix(line, "+"):
		code = green
	default:
		_, _ = fmt.Fprintf(w, "%s%s\n", prefix, line)
		return
	}

	_, _ = fmt.Fprintf(w, "%s%s%s%s\n", prefix, code, line, reset)
}

// splitLines splits s into lines, each keeping its trailing newline as
// difflib expects.
func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}

	return strings.SplitAfter(s, "\n")
}
