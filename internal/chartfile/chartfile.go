// Package chartfile reads chart descriptors (Chart.yaml), discovers chart
// directories, and rewrites the keywords block of a descriptor in place.
package chartfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"helm.sh/helm/v3/pkg/chart"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/hupe1980/chartmeta/internal/yamlutil"
)

// FileName is the chart descriptor file name.
const FileName = "Chart.yaml"

// Descriptor is a loaded Chart.yaml. Only Keywords and Version are consumed;
// the rest of the Helm metadata is carried along untouched.
type Descriptor struct {
	Path     string
	Metadata *chart.Metadata
}

// Keywords returns the descriptor's keywords in file order.
func (d *Descriptor) Keywords() []string {
	if d == nil || d.Metadata == nil {
		return nil
	}

	return d.Metadata.Keywords
}

// Version returns the chart version.
func (d *Descriptor) Version() string {
	if d == nil || d.Metadata == nil {
		return ""
	}

	return d.Metadata.Version
}

// PathFor returns <chartsDir>/<name>/Chart.yaml.
func PathFor(chartsDir, name string) string {
	return filepath.Join(chartsDir, name, FileName)
}

// Exists reports whether a regular descriptor file exists at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Load reads and decodes the descriptor at path. An empty file yields a
// descriptor without keywords.
func Load(path string) (*Descriptor, error) {
	data, err := yamlutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	md, err := Parse(data)
	if err != nil {
		return nil, yamlutil.ParseError(path, err)
	}

	return &Descriptor{Path: path, Metadata: md}, nil
}

// Parse decodes Chart.yaml content into Helm's chart metadata.
func Parse(data []byte) (*chart.Metadata, error) {
	if err := yamlutil.RequireSingleDocument(data); err != nil {
		return nil, err
	}

	md := &chart.Metadata{}
	if err := sigsyaml.Unmarshal(data, md); err != nil {
		return nil, err
	}

	return md, nil
}

// Discover returns the names of the immediate subdirectories of chartsDir
// that contain a Chart.yaml, in lexical order.
func Discover(chartsDir string) ([]string, error) {
	entries, err := os.ReadDir(chartsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("charts directory %s: %w", chartsDir, err)
		}

		return nil, fmt.Errorf("reading charts directory %s: %w", chartsDir, err)
	}

	var names []string

	for _, e := range entries {
		dir := filepath.Join(chartsDir, e.Name())

		info, statErr := os.Stat(dir)
		if statErr != nil || !info.IsDir() {
			continue
		}

		if Exists(filepath.Join(dir, FileName)) {
			names = append(names, e.Name())
		}
	}

	return names, nil
}
