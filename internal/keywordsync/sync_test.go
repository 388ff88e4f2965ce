package keywordsync

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/chartmeta/internal/logging"
	"github.com/hupe1980/chartmeta/internal/metadata"
)

const redisChart = `apiVersion: v2
name: redis
# in-memory store
version: 1.2.3
keywords:
  - cache
maintainers:
  - name: ops
`

func writeChart(t *testing.T, chartsDir, name, content string) string {
	t.Helper()

	dir := filepath.Join(chartsDir, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	path := filepath.Join(dir, "Chart.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func newSyncer() *Syncer {
	return New(logging.Discard())
}

func redisMetadata() *metadata.File {
	return metadata.New(metadata.Chart{
		Key:   "redis",
		Entry: metadata.Entry{Keywords: []string{"cache", "database"}},
	})
}

func TestRun_RedisScenario(t *testing.T) {
	chartsDir := t.TempDir()
	path := writeChart(t, chartsDir, "redis", redisChart)
	meta := redisMetadata()
	ctx := context.Background()

	// Dry run reports the change and leaves the file alone.
	report, err := newSyncer().Run(ctx, meta, Options{ChartsDir: chartsDir, DryRun: true})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)

	res := report.Results[0]
	assert.Equal(t, StatusWouldUpdate, res.Status)
	assert.Equal(t, []string{"cache"}, res.Current)
	assert.Equal(t, []string{"cache", "database"}, res.Desired)
	assert.True(t, report.Changed())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, redisChart, string(data))

	// Apply rewrites only the keywords block.
	report, err = newSyncer().Run(ctx, meta, Options{ChartsDir: chartsDir})
	require.NoError(t, err)
	assert.Equal(t, StatusUpdated, report.Results[0].Status)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `apiVersion: v2
name: redis
# in-memory store
version: 1.2.3
keywords:
  - cache
  - database
maintainers:
  - name: ops
`, string(data))

	// A second run finds nothing to do.
	report, err = newSyncer().Run(ctx, meta, Options{ChartsDir: chartsDir})
	require.NoError(t, err)
	assert.Equal(t, StatusInSync, report.Results[0].Status)
	assert.False(t, report.Changed())
}

func TestRun_OrderAndDuplicatesIgnored(t *testing.T) {
	chartsDir := t.TempDir()
	content := "name: redis\nkeywords:\n  - database\n  - cache\n  - cache\n"
	path := writeChart(t, chartsDir, "redis", content)

	report, err := newSyncer().Run(context.Background(), redisMetadata(), Options{ChartsDir: chartsDir})
	require.NoError(t, err)
	assert.Equal(t, StatusInSync, report.Results[0].Status)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestRun_CaseDifferenceIsAChange(t *testing.T) {
	chartsDir := t.TempDir()
	writeChart(t, chartsDir, "redis", "name: redis\nkeywords:\n  - Cache\n  - Database\n")

	report, err := newSyncer().Run(context.Background(), redisMetadata(), Options{ChartsDir: chartsDir, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, StatusWouldUpdate, report.Results[0].Status)
}

func TestRun_Skips(t *testing.T) {
	chartsDir := t.TempDir()
	writeChart(t, chartsDir, "nokw", "name: nokw\n")

	meta := metadata.New(
		metadata.Chart{Key: "missing", Entry: metadata.Entry{Keywords: []string{"a"}}},
		metadata.Chart{Key: "nokw"},
	)

	report, err := newSyncer().Run(context.Background(), meta, Options{ChartsDir: chartsDir})
	require.NoError(t, err)
	require.Len(t, report.Results, 2)

	assert.Equal(t, "missing", report.Results[0].Chart)
	assert.Equal(t, StatusSkipped, report.Results[0].Status)
	assert.Equal(t, ReasonNoDescriptor, report.Results[0].Reason)

	assert.Equal(t, "nokw", report.Results[1].Chart)
	assert.Equal(t, StatusSkipped, report.Results[1].Status)
	assert.Equal(t, ReasonNoKeywords, report.Results[1].Reason)

	assert.Equal(t, 2, report.Count(StatusSkipped))
	assert.False(t, report.Changed())
}

func TestRun_MetadataOrderPreserved(t *testing.T) {
	chartsDir := t.TempDir()
	writeChart(t, chartsDir, "b", "name: b\nkeywords:\n  - x\n")
	writeChart(t, chartsDir, "a", "name: a\nkeywords:\n  - x\n")

	meta := metadata.New(
		metadata.Chart{Key: "b", Entry: metadata.Entry{Keywords: []string{"x"}}},
		metadata.Chart{Key: "a", Entry: metadata.Entry{Keywords: []string{"x"}}},
	)

	report, err := newSyncer().Run(context.Background(), meta, Options{ChartsDir: chartsDir})
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	assert.Equal(t, "b", report.Results[0].Chart)
	assert.Equal(t, "a", report.Results[1].Chart)
}

func TestRun_SingleChart(t *testing.T) {
	chartsDir := t.TempDir()
	writeChart(t, chartsDir, "redis", redisChart)
	writeChart(t, chartsDir, "other", "name: other\n")

	meta := metadata.New(
		metadata.Chart{Key: "other", Entry: metadata.Entry{Keywords: []string{"x"}}},
		metadata.Chart{Key: "redis", Entry: metadata.Entry{Keywords: []string{"cache", "database"}}},
	)

	report, err := newSyncer().Run(context.Background(), meta, Options{ChartsDir: chartsDir, Chart: "redis", DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Selected)
	require.Len(t, report.Results, 1)
	assert.Equal(t, "redis", report.Results[0].Chart)
}

func TestRun_UnknownChart(t *testing.T) {
	_, err := newSyncer().Run(context.Background(), redisMetadata(), Options{ChartsDir: t.TempDir(), Chart: "nope"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownChart)
	assert.Contains(t, err.Error(), "nope")
}

func TestRun_ParseErrorAborts(t *testing.T) {
	chartsDir := t.TempDir()
	writeChart(t, chartsDir, "a", "name: a\nkeywords:\n  - x\n")
	writeChart(t, chartsDir, "broken", "name: [unterminated\n")
	writeChart(t, chartsDir, "c", "name: c\n")

	meta := metadata.New(
		metadata.Chart{Key: "a", Entry: metadata.Entry{Keywords: []string{"x"}}},
		metadata.Chart{Key: "broken", Entry: metadata.Entry{Keywords: []string{"x"}}},
		metadata.Chart{Key: "c", Entry: metadata.Entry{Keywords: []string{"x"}}},
	)

	report, err := newSyncer().Run(context.Background(), meta, Options{ChartsDir: chartsDir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	require.NotNil(t, report)
	require.Len(t, report.Results, 1)
	assert.Equal(t, "a", report.Results[0].Chart)
}

func TestRun_MultilineFlowKeywords(t *testing.T) {
	chartsDir := t.TempDir()
	path := writeChart(t, chartsDir, "redis", "apiVersion: v2\nname: redis\nkeywords: [cache,\n  kv]\nversion: 1.0.0\n")

	report, err := newSyncer().Run(context.Background(), redisMetadata(), Options{ChartsDir: chartsDir})
	require.NoError(t, err)
	assert.Equal(t, StatusUpdated, report.Results[0].Status)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "apiVersion: v2\nname: redis\nkeywords:\n  - cache\n  - database\nversion: 1.0.0\n", string(data))

	report, err = newSyncer().Run(context.Background(), redisMetadata(), Options{ChartsDir: chartsDir})
	require.NoError(t, err)
	assert.Equal(t, StatusInSync, report.Results[0].Status)
}

func TestRun_UnverifiablePatchLeavesFileUntouched(t *testing.T) {
	chartsDir := t.TempDir()
	content := "apiVersion: v2\nname: redis\nversion: 1.0.0\nannotations:\n  keywords: legacy\n"
	path := writeChart(t, chartsDir, "redis", content)

	report, err := newSyncer().Run(context.Background(), redisMetadata(), Options{ChartsDir: chartsDir})
	require.ErrorIs(t, err, ErrPatchMismatch)
	assert.Contains(t, err.Error(), path)
	assert.Empty(t, report.Results)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestRun_WriteErrorAbortsWithPartialReport(t *testing.T) {
	chartsDir := t.TempDir()
	writeChart(t, chartsDir, "a", "name: a\nkeywords:\n  - x\n")
	writeChart(t, chartsDir, "b", "name: b\nkeywords:\n  - old\n")
	writeChart(t, chartsDir, "c", "name: c\n")

	meta := metadata.New(
		metadata.Chart{Key: "a", Entry: metadata.Entry{Keywords: []string{"x"}}},
		metadata.Chart{Key: "b", Entry: metadata.Entry{Keywords: []string{"new"}}},
		metadata.Chart{Key: "c", Entry: metadata.Entry{Keywords: []string{"y"}}},
	)

	var written []string

	s := newSyncer()
	s.write = func(path string, _ []byte) error {
		written = append(written, path)
		return errors.New("read-only file system")
	}

	report, err := s.Run(context.Background(), meta, Options{ChartsDir: chartsDir})
	require.ErrorContains(t, err, "read-only file system")
	require.NotNil(t, report)
	require.Len(t, report.Results, 1)
	assert.Equal(t, StatusInSync, report.Results[0].Status)
	assert.Len(t, written, 1)
}

func TestRun_CancelledContext(t *testing.T) {
	chartsDir := t.TempDir()
	writeChart(t, chartsDir, "redis", redisChart)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := newSyncer().Run(ctx, redisMetadata(), Options{ChartsDir: chartsDir})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Results)
}

func TestRun_Diff(t *testing.T) {
	chartsDir := t.TempDir()
	writeChart(t, chartsDir, "redis", redisChart)

	report, err := newSyncer().Run(context.Background(), redisMetadata(), Options{ChartsDir: chartsDir, DryRun: true, Diff: true})
	require.NoError(t, err)

	d := report.Results[0].Diff
	require.NotNil(t, d)
	assert.True(t, d.HasDifferences)
	assert.Contains(t, d.Unified, "+  - database")
}

func TestRun_NilMetadata(t *testing.T) {
	report, err := newSyncer().Run(context.Background(), nil, Options{})
	require.NoError(t, err)
	assert.Zero(t, report.Selected)
	assert.Empty(t, report.Results)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "skipped", StatusSkipped.String())
	assert.Equal(t, "in-sync", StatusInSync.String())
	assert.Equal(t, "would-update", StatusWouldUpdate.String())
	assert.Equal(t, "updated", StatusUpdated.String())
	assert.Equal(t, "Status(9)", Status(9).String())
}

func TestFormatResult(t *testing.T) {
	tests := []struct {
		name string
		res  Result
		want string
	}{
		{
			name: "skipped",
			res:  Result{Chart: "x", Status: StatusSkipped, Reason: ReasonNoDescriptor},
			want: "  ⚠️  x: Chart.yaml not found, skipping",
		},
		{
			name: "in sync",
			res:  Result{Chart: "x", Status: StatusInSync},
			want: "  ℹ️  x: Keywords already synchronized",
		},
		{
			name: "would update",
			res:  Result{Chart: "redis", Status: StatusWouldUpdate, Current: []string{"cache"}, Desired: []string{"cache", "database"}},
			want: "  🔄 redis: Would update keywords\n     Current: [cache]\n     New:     [cache, database]",
		},
		{
			name: "updated",
			res:  Result{Chart: "redis", Status: StatusUpdated, Desired: []string{"cache"}},
			want: "  ✅ redis: Keywords updated\n     Old: []\n     New: [cache]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatResult(tt.res))
		})
	}
}

func TestSummary(t *testing.T) {
	changed := []Result{{Status: StatusUpdated}}
	unchanged := []Result{{Status: StatusInSync}}

	assert.Contains(t, Summary(&Report{DryRun: true, Results: changed}), "changes would be applied")
	assert.Contains(t, Summary(&Report{DryRun: true, Results: unchanged}), "no changes needed")
	assert.Contains(t, Summary(&Report{Results: changed}), "synchronized successfully")
	assert.Contains(t, Summary(&Report{Results: unchanged}), "already synchronized")
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer

	WriteHeader(&buf, true)
	WriteReport(&buf, &Report{
		DryRun:   true,
		Selected: 1,
		Results:  []Result{{Chart: "redis", Status: StatusInSync}},
	}, false)

	out := buf.String()
	assert.Contains(t, out, "Chart Keywords Sync (DRY RUN)")
	assert.Contains(t, out, "Syncing 1 chart(s)...")
	assert.Contains(t, out, "redis: Keywords already synchronized")
	assert.Contains(t, out, "Preview complete - no changes needed")
}
