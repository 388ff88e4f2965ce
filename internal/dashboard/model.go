// Package dashboard renders the Artifact Hub status dashboard
// (docs/ARTIFACTHUB_DASHBOARD.md) from charts-metadata.yaml.
package dashboard

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hupe1980/chartmeta/internal/metadata"
)

// DefaultOutputPath is where the dashboard is written, relative to the
// repository root.
const DefaultOutputPath = "docs/ARTIFACTHUB_DASHBOARD.md"

// maxKeywords is how many keywords a chart section lists before truncating.
const maxKeywords = 5

// ErrNoCharts is returned when the metadata file has no chart entries.
var ErrNoCharts = errors.New("no charts found in metadata")

// ChartInfo is one chart section of the dashboard.
type ChartInfo struct {
	Key            string
	DisplayName    string
	Description    string
	Path           string
	Tags           []string
	Keywords       []string
	ProductionNote string
}

// KeywordSummary returns the first five keywords joined by commas, with a
// "(+N more)" suffix when the list was truncated.
func (c ChartInfo) KeywordSummary() string {
	if len(c.Keywords) <= maxKeywords {
		return strings.Join(c.Keywords, ", ")
	}

	return strings.Join(c.Keywords[:maxKeywords], ", ") +
		" (+" + strconv.Itoa(len(c.Keywords)-maxKeywords) + " more)"
}

// Category groups the charts sharing a category value.
type Category struct {
	Name   string
	Charts []ChartInfo
}

// Title returns the human-readable category title ("ai_ml" -> "Ai Ml").
// Every run of letters is title-cased on its own, so "k8s_tools" becomes
// "K8S Tools".
func (c Category) Title() string {
	caser := cases.Title(language.English)
	name := strings.ReplaceAll(c.Name, "_", " ")

	var b strings.Builder

	start := -1

	for i, r := range name {
		switch {
		case unicode.IsLetter(r) && start < 0:
			start = i
		case !unicode.IsLetter(r) && start >= 0:
			b.WriteString(caser.String(name[start:i]))
			b.WriteRune(r)

			start = -1
		case !unicode.IsLetter(r):
			b.WriteRune(r)
		}
	}

	if start >= 0 {
		b.WriteString(caser.String(name[start:]))
	}

	return b.String()
}

// Anchor returns the table-of-contents anchor for the category section.
func (c Category) Anchor() string {
	return strings.ReplaceAll(c.Name, "_", "-") + "-charts"
}

// Stats holds the aggregate counts shown under Quick Statistics.
type Stats struct {
	Total          int
	Application    int
	Infrastructure int
}

// Model is everything the Markdown renderer needs.
type Model struct {
	Repository  string
	GeneratedAt time.Time
	Stats       Stats
	Categories  []Category
}

// BuildModel groups the metadata entries by category. Categories are ordered
// lexically and so are the charts inside each category.
func BuildModel(f *metadata.File, repository string, now time.Time) (*Model, error) {
	if f == nil || f.Len() == 0 {
		return nil, ErrNoCharts
	}

	model := &Model{
		Repository:  repository,
		GeneratedAt: now,
	}

	groups := make(map[string][]ChartInfo)

	for _, c := range f.Sorted() {
		e := c.Entry
		category := e.CategoryOrDefault()

		groups[category] = append(groups[category], ChartInfo{
			Key:            c.Key,
			DisplayName:    e.DisplayName(c.Key),
			Description:    e.DescriptionOrDefault(),
			Path:           e.PathOrDefault(c.Key),
			Tags:           e.Tags,
			Keywords:       e.Keywords,
			ProductionNote: e.ProductionNote,
		})

		model.Stats.Total++

		switch e.Category {
		case "application":
			model.Stats.Application++
		case "infrastructure":
			model.Stats.Infrastructure++
		}
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		model.Categories = append(model.Categories, Category{Name: name, Charts: groups[name]})
	}

	return model, nil
}
