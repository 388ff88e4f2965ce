package yamlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitDocuments(t *testing.T) {
	tests := []struct {
		name string
		data string
		want int
	}{
		{"empty", "", 0},
		{"single doc", "apiVersion: v1\nkind: Service\n", 1},
		{"two docs", "apiVersion: v1\nkind: Service\n---\napiVersion: apps/v1\nkind: Deployment\n", 2},
		{"leading separator", "---\napiVersion: v1\nkind: Service\n", 1},
		{"trailing separator", "apiVersion: v1\nkind: Service\n---\n", 1},
		{"separator with trailing spaces", "apiVersion: v1\n---   \napiVersion: apps/v1\n", 2},
		{"empty doc between separators", "apiVersion: v1\n---\n\n---\napiVersion: apps/v1\n", 2},
		{"whitespace-only doc", "apiVersion: v1\n---\n   \n---\napiVersion: apps/v1\n", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := SplitDocuments([]byte(tt.data))
			assert.Len(t, docs, tt.want)
		})
	}
}

func TestRequireSingleDocument(t *testing.T) {
	assert.NoError(t, RequireSingleDocument([]byte("charts: {}\n")))
	assert.NoError(t, RequireSingleDocument([]byte("---\ncharts: {}\n")))
	assert.NoError(t, RequireSingleDocument(nil))

	err := RequireSingleDocument([]byte("charts: {}\n---\ncharts: {}\n"))
	assert.ErrorContains(t, err, "found 2")
}
