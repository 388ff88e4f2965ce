package chartfile

import (
	"fmt"
	"os"
	"strings"

	"github.com/hupe1980/chartmeta/internal/yamlutil"
)

const keywordsKey = "keywords:"

// PatchKeywords replaces the keywords block of a Chart.yaml document with
// keywords, leaving every other line untouched.
//
// The block starts at the first top-level "keywords:" line (or, failing that,
// the first indented one). Any inline value on that line is dropped, the list
// items that follow it are removed, and one "<indent>  - <keyword>" line is
// inserted per keyword. A flow sequence that continues past the key line is
// dropped up to its closing bracket. The block ends at the first blank line
// or the first non-indented line that is not a list item. When the document
// has no keywords key, a new block is appended at the end.
func PatchKeywords(content string, keywords []string) string {
	lines := strings.Split(content, "\n")

	target := findKeywordsLine(lines)
	if target < 0 {
		return appendKeywords(content, keywords)
	}

	out := make([]string, 0, len(lines)+len(keywords))
	inSection := false
	depth := 0

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case depth > 0:
			depth += flowDepth(line)
			continue
		case i == target:
			indent := leadingWhitespace(line)
			eol := lineEnding(line)

			out = append(out, keyLine(line, indent, eol))
			for _, kw := range keywords {
				out = append(out, indent+"  - "+yamlutil.QuoteScalar(kw)+eol)
			}

			depth = flowDepth(inlineValue(line))
			inSection = true
		case inSection && isListItem(trimmed):
			continue
		case inSection && trimmed == "":
			inSection = false

			out = append(out, line)
		case inSection && !startsIndented(line):
			inSection = false

			out = append(out, line)
		default:
			out = append(out, line)
		}
	}

	return strings.Join(out, "\n")
}

// PlanKeywords reads the descriptor at path and returns its current content
// together with the content PatchKeywords would produce.
func PlanKeywords(path string, keywords []string) (before, after []byte, err error) {
	data, err := yamlutil.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	return data, []byte(PatchKeywords(string(data), keywords)), nil
}

// SaveKeywords rewrites the keywords block of the descriptor at path in place,
// preserving the file's permissions.
func SaveKeywords(path string, keywords []string) error {
	_, after, err := PlanKeywords(path, keywords)
	if err != nil {
		return err
	}

	return WriteFile(path, after)
}

// WriteFile overwrites an existing descriptor, keeping its permission bits.
func WriteFile(path string, data []byte) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

func findKeywordsLine(lines []string) int {
	nested := -1

	for i, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), keywordsKey) {
			continue
		}

		if !startsIndented(line) {
			return i
		}

		if nested < 0 {
			nested = i
		}
	}

	return nested
}

// keyLine keeps the original key line when it carries no inline value (a
// trailing comment is fine) and otherwise reduces it to the bare key.
func keyLine(line, indent, eol string) string {
	rest := inlineValue(line)
	if rest == "" || strings.HasPrefix(rest, "#") {
		return line
	}

	return indent + keywordsKey + eol
}

func inlineValue(line string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), keywordsKey))
}

// flowDepth returns the net number of flow brackets opened on line, ignoring
// quoted text and comments.
func flowDepth(line string) int {
	depth := 0

	var quote rune

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '#':
			return depth
		case r == '[' || r == '{':
			depth++
		case r == ']' || r == '}':
			depth--
		}
	}

	return depth
}

func appendKeywords(content string, keywords []string) string {
	var b strings.Builder

	b.WriteString(content)

	if content != "" && !strings.HasSuffix(content, "\n") {
		b.WriteString("\n")
	}

	b.WriteString(keywordsKey)
	b.WriteString("\n")

	for _, kw := range keywords {
		b.WriteString("  - ")
		b.WriteString(yamlutil.QuoteScalar(kw))
		b.WriteString("\n")
	}

	return b.String()
}

func isListItem(trimmed string) bool {
	return trimmed == "-" || strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "-\t")
}

func startsIndented(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}

func leadingWhitespace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

func lineEnding(line string) string {
	if strings.HasSuffix(line, "\r") {
		return "\r"
	}

	return ""
}
