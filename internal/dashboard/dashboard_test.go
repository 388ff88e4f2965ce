package dashboard

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/chartmeta/internal/metadata"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func sampleFile(t *testing.T) *metadata.File {
	t.Helper()

	f, err := metadata.Parse([]byte(`charts:
  redis:
    name: Redis
    description: In-memory data store
    category: infrastructure
    tags: [cache, nosql]
    keywords: [cache, database, redis, kv, memory, fast, nosql]
  keycloak:
    name: Keycloak
    description: Identity and access management
    category: application
    keywords: [iam, sso]
    production_note: Use an external PostgreSQL database.
  mlflow:
    category: ai_ml
  adminer: {}
`))
	require.NoError(t, err)

	return f
}

func generate(t *testing.T, f *metadata.File) string {
	t.Helper()

	res, err := Generate(f, Options{Repository: "sb-helm-charts", Now: fixedClock})
	require.NoError(t, err)

	return string(res.Content)
}

func TestGenerate_Summary(t *testing.T) {
	res, err := Generate(sampleFile(t), Options{Repository: "sb-helm-charts", Now: fixedClock})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Charts)
	assert.Equal(t, 4, res.Categories)
}

func TestGenerate_NoCharts(t *testing.T) {
	_, err := Generate(metadata.New(), Options{Repository: "r"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoCharts))

	_, err = Generate(nil, Options{Repository: "r"})
	assert.ErrorIs(t, err, ErrNoCharts)
}

func TestGenerate_HeaderAndTimestamps(t *testing.T) {
	out := generate(t, sampleFile(t))

	assert.True(t, strings.HasPrefix(out, "# Artifact Hub Statistics Dashboard\n\n<!-- AUTO-GENERATED FILE - DO NOT EDIT MANUALLY -->\n"))
	assert.Contains(t, out, "<!-- Generated: 2026-03-14 09:26:53 -->\n")
	assert.Contains(t, out, "> **Note**: This dashboard is automatically generated from `charts-metadata.yaml`.\n")
	assert.True(t, strings.HasSuffix(out, "---\n\n**Last Updated**: 2026-03-14\n"))
}

func TestGenerate_RepositoryBadge(t *testing.T) {
	out := generate(t, sampleFile(t))

	assert.Contains(t, out, "**Repository**: sb-helm-charts\n")
	assert.Contains(t, out, "[![Artifact Hub](https://img.shields.io/endpoint?url=https://artifacthub.io/badge/repository/sb-helm-charts)](https://artifacthub.io/packages/search?repo=sb-helm-charts)\n")
	assert.Contains(t, out, "**Artifact Hub URL**: https://artifacthub.io/packages/search?repo=sb-helm-charts\n")
}

func TestGenerate_Stats(t *testing.T) {
	out := generate(t, sampleFile(t))

	assert.Contains(t, out, "- **Total Charts**: 4\n- **Application Charts**: 1\n- **Infrastructure Charts**: 1\n")
}

func TestGenerate_TableOfContents(t *testing.T) {
	out := generate(t, sampleFile(t))

	toc := "- [Ai Ml Charts](#ai-ml-charts)\n" +
		"- [Application Charts](#application-charts)\n" +
		"- [Infrastructure Charts](#infrastructure-charts)\n" +
		"- [Uncategorized Charts](#uncategorized-charts)\n"
	assert.Contains(t, out, toc)
}

func TestGenerate_CategoryOrder(t *testing.T) {
	out := generate(t, sampleFile(t))

	ai := strings.Index(out, "## Ai Ml Charts")
	app := strings.Index(out, "## Application Charts")
	infra := strings.Index(out, "## Infrastructure Charts")
	uncat := strings.Index(out, "## Uncategorized Charts")

	require.True(t, ai > 0 && app > 0 && infra > 0 && uncat > 0)
	assert.Less(t, ai, app)
	assert.Less(t, app, infra)
	assert.Less(t, infra, uncat)
}

func TestGenerate_ChartSection(t *testing.T) {
	out := generate(t, sampleFile(t))

	section := "### Redis\n\n" +
		"[![Artifact Hub](https://img.shields.io/endpoint?url=https://artifacthub.io/badge/repository/sb-helm-charts)](https://artifacthub.io/packages/helm/sb-helm-charts/redis)\n\n" +
		"**Description**: In-memory data store\n\n" +
		"**Artifact Hub Package**: https://artifacthub.io/packages/helm/sb-helm-charts/redis\n\n" +
		"**Tags**: cache, nosql\n\n" +
		"**Keywords**: cache, database, redis, kv, memory (+2 more)\n\n" +
		"**Local Documentation**: [charts/redis/README.md](../charts/redis/README.md)\n\n" +
		"---\n\n"
	assert.Contains(t, out, section)
}

func TestGenerate_Fallbacks(t *testing.T) {
	out := generate(t, sampleFile(t))

	// No name, description, tags or keywords.
	section := "### adminer\n\n" +
		"[![Artifact Hub](https://img.shields.io/endpoint?url=https://artifacthub.io/badge/repository/sb-helm-charts)](https://artifacthub.io/packages/helm/sb-helm-charts/adminer)\n\n" +
		"**Description**: No description\n\n" +
		"**Artifact Hub Package**: https://artifacthub.io/packages/helm/sb-helm-charts/adminer\n\n" +
		"**Local Documentation**: [charts/adminer/README.md](../charts/adminer/README.md)\n"
	assert.Contains(t, out, section)
}

func TestGenerate_ProductionNote(t *testing.T) {
	out := generate(t, sampleFile(t))

	assert.Contains(t, out, "**Keywords**: iam, sso\n\n> ⚠️ **Production Note**: Use an external PostgreSQL database.\n\n")
}

func TestGenerate_PublishingGuide(t *testing.T) {
	out := generate(t, sampleFile(t))

	assert.Contains(t, out, "## Publishing to Artifact Hub\n")
	assert.Contains(t, out, "(https://artifacthub.io/packages/helm/sb-helm-charts/{chart-name})\n")
	assert.Contains(t, out, "- [Chart Catalog](CHARTS.md) - Browse all available charts\n")
}

func TestGenerate_Deterministic(t *testing.T) {
	a := generate(t, sampleFile(t))
	b := generate(t, sampleFile(t))
	assert.Equal(t, a, b)
}

func TestBuildModel_UncategorizedAndTotals(t *testing.T) {
	f := metadata.New(
		metadata.Chart{Key: "zeta"},
		metadata.Chart{Key: "alpha"},
		metadata.Chart{Key: "beta", Entry: metadata.Entry{Category: "application"}},
	)

	model, err := BuildModel(f, "repo", fixedNow)
	require.NoError(t, err)

	assert.Equal(t, f.Len(), model.Stats.Total)
	assert.Equal(t, 1, model.Stats.Application)
	assert.Equal(t, 0, model.Stats.Infrastructure)

	require.Len(t, model.Categories, 2)
	assert.Equal(t, "application", model.Categories[0].Name)
	assert.Equal(t, metadata.DefaultCategory, model.Categories[1].Name)

	uncat := model.Categories[1].Charts
	require.Len(t, uncat, 2)
	assert.Equal(t, "alpha", uncat[0].Key)
	assert.Equal(t, "zeta", uncat[1].Key)
}

func TestKeywordSummary(t *testing.T) {
	assert.Equal(t, "a, b", ChartInfo{Keywords: []string{"a", "b"}}.KeywordSummary())
	assert.Equal(t, "a, b, c, d, e", ChartInfo{Keywords: []string{"a", "b", "c", "d", "e"}}.KeywordSummary())
	assert.Equal(t, "a, b, c, d, e (+1 more)", ChartInfo{Keywords: []string{"a", "b", "c", "d", "e", "f"}}.KeywordSummary())
}

func TestCategory_TitleAndAnchor(t *testing.T) {
	tests := []struct {
		name, title, anchor string
	}{
		{"application", "Application", "application-charts"},
		{"ai_ml", "Ai Ml", "ai-ml-charts"},
		{"message_queue_systems", "Message Queue Systems", "message-queue-systems-charts"},
		{"k8s_tools", "K8S Tools", "k8s-tools-charts"},
		{"DEV_ops", "Dev Ops", "DEV-ops-charts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Category{Name: tt.name}
			assert.Equal(t, tt.title, c.Title())
			assert.Equal(t, tt.anchor, c.Anchor())
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRender_PropagatesWriteError(t *testing.T) {
	model, err := BuildModel(sampleFile(t), "repo", fixedNow)
	require.NoError(t, err)

	assert.ErrorContains(t, Render(failingWriter{}, model), "disk full")

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, model))
	assert.NotEmpty(t, buf.String())
}
