// Package metadata loads charts-metadata.yaml, the central source of truth
// for per-chart catalog data (display name, category, tags, keywords).
package metadata

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/chartmeta/internal/yamlutil"
)

// FileName is the conventional name of the metadata file.
const FileName = "charts-metadata.yaml"

// DefaultCategory is used for entries without a category.
const DefaultCategory = "uncategorized"

// DefaultDescription is rendered for entries without a description.
const DefaultDescription = "No description"

// Entry is one chart's record under the top-level charts mapping.
type Entry struct {
	Name           string   `yaml:"name"`
	Description    string   `yaml:"description"`
	Category       string   `yaml:"category"`
	Path           string   `yaml:"path"`
	Tags           []string `yaml:"tags"`
	Keywords       []string `yaml:"keywords"`
	ProductionNote string   `yaml:"production_note"`
}

// CategoryOrDefault returns the entry's category, or DefaultCategory.
func (e Entry) CategoryOrDefault() string {
	if e.Category == "" {
		return DefaultCategory
	}

	return e.Category
}

// DisplayName returns the entry's name, falling back to the chart key.
func (e Entry) DisplayName(key string) string {
	if e.Name == "" {
		return key
	}

	return e.Name
}

// DescriptionOrDefault returns the description or DefaultDescription.
func (e Entry) DescriptionOrDefault() string {
	if e.Description == "" {
		return DefaultDescription
	}

	return e.Description
}

// PathOrDefault returns the chart's repository-relative path, defaulting to
// charts/<key>.
func (e Entry) PathOrDefault(key string) string {
	if e.Path == "" {
		return "charts/" + key
	}

	return e.Path
}

// Chart pairs a chart key with its metadata entry.
type Chart struct {
	Key   string
	Entry Entry
}

// File is a parsed metadata file. Charts keep the order in which their keys
// appear in the file.
type File struct {
	// Path is the file the metadata was loaded from, if any.
	Path string

	charts []Chart
	index  map[string]int
}

// Len returns the number of chart entries.
func (f *File) Len() int { return len(f.charts) }

// Charts returns the entries in file order.
func (f *File) Charts() []Chart {
	out := make([]Chart, len(f.charts))
	copy(out, f.charts)

	return out
}

// Sorted returns the entries ordered lexically by chart key.
func (f *File) Sorted() []Chart {
	out := f.Charts()
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	return out
}

// Get returns the entry for key.
func (f *File) Get(key string) (Entry, bool) {
	i, ok := f.index[key]
	if !ok {
		return Entry{}, false
	}

	return f.charts[i].Entry, true
}

// Has reports whether key has an entry.
func (f *File) Has(key string) bool {
	_, ok := f.index[key]
	return ok
}

// Keys returns the chart keys in file order.
func (f *File) Keys() []string {
	keys := make([]string, 0, len(f.charts))
	for _, c := range f.charts {
		keys = append(keys, c.Key)
	}

	return keys
}

func (f *File) add(key string, e Entry) {
	if f.index == nil {
		f.index = make(map[string]int)
	}

	f.index[key] = len(f.charts)
	f.charts = append(f.charts, Chart{Key: key, Entry: e})
}

// New builds a File from charts in the given order. Later duplicates replace
// earlier entries in place.
func New(charts ...Chart) *File {
	f := &File{}

	for _, c := range charts {
		if i, ok := f.index[c.Key]; ok {
			f.charts[i].Entry = c.Entry
			continue
		}

		f.add(c.Key, c.Entry)
	}

	return f
}

// Load reads and parses the metadata file at path. A missing file yields a
// yamlutil.KindNotFound error; malformed YAML or a shape mismatch yields
// yamlutil.KindParse.
func Load(path string) (*File, error) {
	data, err := yamlutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	f, err := Parse(data)
	if err != nil {
		return nil, yamlutil.ParseError(path, err)
	}

	f.Path = path

	return f, nil
}

// Parse decodes metadata file content. An empty document or a missing or
// null charts key produces an empty File.
func Parse(data []byte) (*File, error) {
	if err := yamlutil.RequireSingleDocument(data); err != nil {
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	f := &File{index: map[string]int{}}

	if len(doc.Content) == 0 {
		return f, nil
	}

	root := resolve(doc.Content[0])
	if isNull(root) {
		return f, nil
	}

	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: top level must be a mapping, got %s", root.Line, kindName(root))
	}

	charts := lookup(root, "charts")
	if charts == nil || isNull(charts) {
		return f, nil
	}

	if charts.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: charts must be a mapping of chart name to entry, got %s", charts.Line, kindName(charts))
	}

	for i := 0; i+1 < len(charts.Content); i += 2 {
		keyNode, valNode := resolve(charts.Content[i]), resolve(charts.Content[i+1])

		if keyNode.Kind != yaml.ScalarNode || keyNode.Value == "" {
			return nil, fmt.Errorf("line %d: chart name must be a non-empty string", keyNode.Line)
		}

		key := keyNode.Value
		if f.Has(key) {
			return nil, fmt.Errorf("line %d: duplicate chart %q", keyNode.Line, key)
		}

		if valNode.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: chart %q must be a mapping, got %s", valNode.Line, key, kindName(valNode))
		}

		var e Entry
		if err := valNode.Decode(&e); err != nil {
			return nil, fmt.Errorf("chart %q: %w", key, err)
		}

		f.add(key, e)
	}

	return f, nil
}

// lookup returns the value node for key in a mapping node.
func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return resolve(m.Content[i+1])
		}
	}

	return nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}

	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar " + n.Tag
	default:
		return "unknown node"
	}
}
