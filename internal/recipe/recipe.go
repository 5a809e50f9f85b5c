// Package recipe reads YAML report recipes: the report metadata, the
// datasets to load and the ordered list of fragments to append.
package recipe

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/unbound-force/edareport/internal/dataset"
	"github.com/unbound-force/edareport/internal/document"
)

// Step kinds.
const (
	KindSection           = "section"
	KindMarkdown          = "markdown"
	KindDataframe         = "dataframe"
	KindCountplot         = "countplot"
	KindDonut             = "donut"
	KindHistogram         = "histogram"
	KindBox               = "box"
	KindViolin            = "violin"
	KindPairplot          = "pairplot"
	KindHistoplot         = "histoplot"
	KindBoxplot           = "boxplot"
	KindDensityplot       = "densityplot"
	KindHistogramFigure   = "histogram_figure"
	KindViolinFigure      = "violin_figure"
	KindHistogramSubplots = "histogram_subplots"
	KindViolinSubplots    = "violin_subplots"
	KindRow               = "row"
)

// Recipe describes one report.
type Recipe struct {
	Meta document.Meta `yaml:"meta"`

	// Output is the report path, relative to the recipe file.
	Output string `yaml:"output"`

	// Datasets maps names used by steps to CSV, TSV or JSON-records
	// files, relative to the recipe file.
	Datasets map[string]string `yaml:"datasets"`

	Steps []Step `yaml:"steps"`

	// dir is the directory relative paths are resolved against.
	dir string
}

// Step is one fragment. In YAML it is a mapping with a single key, the
// step kind, whose value holds the step's arguments.
type Step struct {
	Kind string
	Line int
	args yaml.Node
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Step) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return fmt.Errorf("line %d: a step must be a mapping with exactly one key", n.Line)
	}
	s.Kind = n.Content[0].Value
	s.Line = n.Line
	s.args = *n.Content[1]
	return nil
}

// decode fills v from the step's arguments. A bare string fills text
// when it is non-nil.
func (s Step) decode(v any, text *string) error {
	if s.args.Kind == yaml.ScalarNode {
		if s.args.Tag == "!!null" {
			return nil
		}
		if text != nil && s.args.Tag == "!!str" {
			*text = s.args.Value
			return nil
		}
	}
	if err := s.args.Decode(v); err != nil {
		return fmt.Errorf("line %d: %w", s.Line, err)
	}
	return nil
}

// Load reads, validates and decodes the recipe at path.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recipe: %w", err)
	}
	rc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rc.dir = filepath.Dir(path)
	return rc, nil
}

// Parse validates data against Schema and decodes it. Relative paths
// resolve against the working directory.
func Parse(data []byte) (*Recipe, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var rc Recipe
	if err := yaml.Unmarshal(data, &rc); err != nil {
		return nil, fmt.Errorf("decoding recipe: %w", err)
	}
	rc.dir = "."
	return &rc, nil
}

// Resolve returns p relative to the recipe's directory. Absolute paths
// are returned unchanged.
func (rc *Recipe) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(rc.dir, p)
}

// LoadDatasets reads every dataset the recipe names.
func (rc *Recipe) LoadDatasets() (map[string]*dataset.Table, error) {
	tables := make(map[string]*dataset.Table, len(rc.Datasets))
	for _, name := range slices.Sorted(maps.Keys(rc.Datasets)) {
		t, err := dataset.Load(name, rc.Resolve(rc.Datasets[name]))
		if err != nil {
			return nil, fmt.Errorf("dataset %q: %w", name, err)
		}
		tables[name] = t
	}
	return tables, nil
}
