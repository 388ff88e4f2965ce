package dashboard

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hupe1980/chartmeta/internal/metadata"
)

const (
	artifactHubURL = "https://artifacthub.io"
	badgeEndpoint  = "https://img.shields.io/endpoint?url=https://artifacthub.io/badge/repository/"
)

// Options configures dashboard generation.
type Options struct {
	// Repository is the Artifact Hub repository identifier.
	Repository string
	// Now returns the generation time. Defaults to time.Now.
	Now func() time.Time
}

// Result is a rendered dashboard.
type Result struct {
	Content    []byte
	Charts     int
	Categories int
}

// Generate renders the dashboard for f.
func Generate(f *metadata.File, opts Options) (*Result, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	model, err := BuildModel(f, opts.Repository, now())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := Render(&buf, model); err != nil {
		return nil, err
	}

	return &Result{
		Content:    buf.Bytes(),
		Charts:     model.Stats.Total,
		Categories: len(model.Categories),
	}, nil
}

// RepositoryURL returns the Artifact Hub search page for the repository.
func RepositoryURL(repo string) string {
	return artifactHubURL + "/packages/search?repo=" + repo
}

// PackageURL returns the Artifact Hub package page for a chart.
func PackageURL(repo, chart string) string {
	return artifactHubURL + "/packages/helm/" + repo + "/" + chart
}

// Badge returns the Artifact Hub badge Markdown. With an empty chart name the
// badge links to the repository page, otherwise to the chart's package page.
func Badge(repo, chart string) string {
	link := RepositoryURL(repo)
	if chart != "" {
		link = PackageURL(repo, chart)
	}

	return fmt.Sprintf("[![Artifact Hub](%s%s)](%s)", badgeEndpoint, repo, link)
}

// Render writes the dashboard Markdown for model to w.
func Render(w io.Writer, model *Model) error {
	md := &mdWriter{w: w}

	writeHeader(md, model)
	writeRepositoryStatus(md, model)
	writeStats(md, model)
	writeTOC(md, model)

	for _, category := range model.Categories {
		writeCategory(md, model.Repository, category)
	}

	writePublishingGuide(md, model.Repository)

	md.line("---")
	md.blank()
	md.line("**Last Updated**: %s", model.GeneratedAt.Format("2006-01-02"))

	return md.err
}

func writeHeader(md *mdWriter, model *Model) {
	md.line("# Artifact Hub Statistics Dashboard")
	md.blank()
	md.line("<!-- AUTO-GENERATED FILE - DO NOT EDIT MANUALLY -->")
	md.line("<!-- Generated: %s -->", model.GeneratedAt.Format("2006-01-02 15:04:05"))
	md.line("<!-- To update, run: make generate-artifacthub-dashboard -->")
	md.blank()
	md.line("> **Note**: This dashboard is automatically generated from `%s`.", metadata.FileName)
	md.line("> To update the dashboard, run `make generate-artifacthub-dashboard`.")
	md.blank()
}

func writeRepositoryStatus(md *mdWriter, model *Model) {
	md.line("## Repository Status")
	md.blank()
	md.line("**Repository**: %s", model.Repository)
	md.blank()
	md.line("%s", Badge(model.Repository, ""))
	md.blank()
	md.line("**Artifact Hub URL**: %s", RepositoryURL(model.Repository))
	md.blank()
}

func writeStats(md *mdWriter, model *Model) {
	md.line("## Quick Statistics")
	md.blank()
	md.line("- **Total Charts**: %d", model.Stats.Total)
	md.line("- **Application Charts**: %d", model.Stats.Application)
	md.line("- **Infrastructure Charts**: %d", model.Stats.Infrastructure)
	md.blank()
}

func writeTOC(md *mdWriter, model *Model) {
	md.line("## Table of Contents")
	md.blank()

	for _, c := range model.Categories {
		md.line("- [%s Charts](#%s)", c.Title(), c.Anchor())
	}

	md.blank()
	md.line("---")
	md.blank()
}

func writeCategory(md *mdWriter, repo string, category Category) {
	md.line("## %s Charts", category.Title())
	md.blank()

	for _, c := range category.Charts {
		md.line("### %s", c.DisplayName)
		md.blank()
		md.line("%s", Badge(repo, c.Key))
		md.blank()
		md.line("**Description**: %s", c.Description)
		md.blank()
		md.line("**Artifact Hub Package**: %s", PackageURL(repo, c.Key))
		md.blank()

		if len(c.Tags) > 0 {
			md.line("**Tags**: %s", strings.Join(c.Tags, ", "))
			md.blank()
		}

		if len(c.Keywords) > 0 {
			md.line("**Keywords**: %s", c.KeywordSummary())
			md.blank()
		}

		if c.ProductionNote != "" {
			md.line("> ⚠️ **Production Note**: %s", c.ProductionNote)
			md.blank()
		}

		md.line("**Local Documentation**: [%s/README.md](../%s/README.md)", c.Path, c.Path)
		md.blank()
		md.line("---")
		md.blank()
	}
}

func writePublishingGuide(md *mdWriter, repo string) {
	md.line("## Publishing to Artifact Hub")
	md.blank()
	md.line("If your charts are not yet published to Artifact Hub, follow these steps:")
	md.blank()
	md.line("### Prerequisites")
	md.blank()
	md.line("1. Charts must be published to a Helm repository (GitHub Pages, etc.)")
	md.line("2. Repository must be publicly accessible")
	md.line("3. Charts must follow Helm best practices")
	md.blank()
	md.line("### Publishing Steps")
	md.blank()
	md.line("1. **Create Artifact Hub Repository Metadata**")
	md.blank()
	md.line("   Add `artifacthub-repo.yml` to your chart repository root:")
	md.blank()
	md.line("   ```yaml")
	md.line("   repositoryID: <your-repository-id>")
	md.line("   owners:")
	md.line("     - name: <your-name>")
	md.line("       email: <your-email>")
	md.line("   ```")
	md.blank()
	md.line("2. **Add Repository to Artifact Hub**")
	md.blank()
	md.line("   - Go to https://artifacthub.io/")
	md.line("   - Sign in with GitHub")
	md.line("   - Navigate to Control Panel > Add Repository")
	md.line("   - Enter your Helm repository URL")
	md.blank()
	md.line("3. **Verify Publisher**")
	md.blank()
	md.line("   Add the provided verification metadata file to your GitHub repository root.")
	md.blank()
	md.line("### Chart Annotations")
	md.blank()
	md.line("Enhance chart metadata with Artifact Hub annotations in `Chart.yaml`:")
	md.blank()
	md.line("```yaml")
	md.line("annotations:")
	md.line("  artifacthub.io/changes: |")
	md.line("    - kind: added")
	md.line("      description: Initial release")
	md.line("  artifacthub.io/containsSecurityUpdates: \"false\"")
	md.line("  artifacthub.io/prerelease: \"false\"")
	md.line("```")
	md.blank()
	md.line("## Artifact Hub Badges")
	md.blank()
	md.line("Once published, you can add Artifact Hub badges to your READMEs:")
	md.blank()
	md.line("### Repository Badge")
	md.blank()
	md.line("```markdown")
	md.line("%s", Badge(repo, ""))
	md.line("```")
	md.blank()
	md.line("### Package Badge")
	md.blank()
	md.line("```markdown")
	md.line("%s", Badge(repo, "{chart-name}"))
	md.line("```")
	md.blank()
	md.line("## Resources")
	md.blank()
	md.line("- [Artifact Hub Documentation](https://artifacthub.io/docs)")
	md.line("- [Helm Chart Annotations](https://artifacthub.io/docs/topics/annotations/helm/)")
	md.line("- [Repository Metadata](https://artifacthub.io/docs/topics/repositories/)")
	md.line("- [Chart Catalog](CHARTS.md) - Browse all available charts")
	md.blank()
}

// mdWriter writes newline-terminated lines and keeps the first write error.
type mdWriter struct {
	w   io.Writer
	err error
}

func (m *mdWriter) line(format string, args ...any) {
	if m.err != nil {
		return
	}

	_, m.err = fmt.Fprintf(m.w, format+"\n", args...)
}

func (m *mdWriter) blank() {
	m.line("")
}
