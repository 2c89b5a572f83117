package catalog

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/feral-file/gamebot/internal/domain"
)

// ContextColumn is the grouping-context column shared by season scoped datasets
const ContextColumn = "version_season"

var datasetNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Column describes one expected upstream column
type Column struct {
	Name     string             `yaml:"name"`
	Type     domain.LogicalType `yaml:"type"`
	Nullable bool               `yaml:"nullable"`
	// IgnoreDrift excludes the column from drift comparison
	IgnoreDrift bool `yaml:"ignore_drift,omitempty"`
}

// Reference declares a cross-dataset reference checked by the remediator
type Reference struct {
	Column        string `yaml:"column"`
	TargetDataset string `yaml:"target_dataset"`
	TargetColumn  string `yaml:"target_column"`
	// Context scopes resolution to rows sharing this column value. Empty means global.
	Context string `yaml:"context,omitempty"`
	// AlignOn names an attribute present on both sides used for contextual alignment
	AlignOn string `yaml:"align_on,omitempty"`
	// FuzzySource is the display value on the referencing row compared during fuzzy matching.
	// Defaults to the reference value itself.
	FuzzySource string `yaml:"fuzzy_source,omitempty"`
	// FuzzyTarget lists display name columns on the target compared during fuzzy matching.
	// Fuzzy matching is disabled when empty.
	FuzzyTarget []string `yaml:"fuzzy_target,omitempty"`
}

// Dataset describes one upstream dataset
type Dataset struct {
	Name       string   `yaml:"name"`
	NaturalKey []string `yaml:"natural_key"`
	Columns    []Column `yaml:"columns"`
	// FanOut whitelists datasets whose natural key legitimately repeats
	FanOut bool `yaml:"fan_out,omitempty"`
	// FullReplace deletes keys absent from the extract, for upstreams that ship full snapshots
	FullReplace bool        `yaml:"full_replace,omitempty"`
	TagColumns  []string    `yaml:"tag_columns,omitempty"`
	References  []Reference `yaml:"references,omitempty"`
}

// Catalog is a versioned set of dataset schemas
type Catalog struct {
	Version  string    `yaml:"version"`
	Datasets []Dataset `yaml:"datasets"`

	index map[string]int
}

// New builds a catalog and validates it
func New(version string, datasets []Dataset) (*Catalog, error) {
	c := &Catalog{Version: version, Datasets: datasets}
	if err := c.init(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads a YAML catalog from path
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path) //nolint:gosec,G304 // This should be a trusted file
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	if err := c.init(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadOrDefault loads the catalog at path, or returns the built-in catalog when path is empty
func LoadOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func (c *Catalog) init() error {
	if c.Version == "" {
		return errors.New("catalog version is required")
	}
	c.index = make(map[string]int, len(c.Datasets))
	for i, d := range c.Datasets {
		if _, dup := c.index[d.Name]; dup {
			return fmt.Errorf("dataset %s declared twice", d.Name)
		}
		c.index[d.Name] = i
	}
	for _, d := range c.Datasets {
		if err := c.validateDataset(d); err != nil {
			return fmt.Errorf("invalid dataset %s: %w", d.Name, err)
		}
	}
	return nil
}

func (c *Catalog) validateDataset(d Dataset) error {
	if !datasetNamePattern.MatchString(d.Name) {
		return errors.New("name must be lower snake case")
	}
	if len(d.NaturalKey) == 0 {
		return errors.New("natural key is required")
	}
	seen := make(map[string]bool, len(d.Columns))
	for _, col := range d.Columns {
		if seen[col.Name] {
			return fmt.Errorf("column %s declared twice", col.Name)
		}
		seen[col.Name] = true
		if !domain.IsValidLogicalType(col.Type) {
			return fmt.Errorf("column %s has unsupported type %q", col.Name, col.Type)
		}
	}
	for _, k := range d.NaturalKey {
		col, ok := d.Column(k)
		if !ok {
			return fmt.Errorf("natural key column %s is not declared", k)
		}
		if col.Nullable {
			return fmt.Errorf("natural key column %s must not be nullable", k)
		}
	}
	for _, tag := range d.TagColumns {
		col, ok := d.Column(tag)
		if !ok || col.Type != domain.TypeBoolean {
			return fmt.Errorf("tag column %s must be a declared boolean column", tag)
		}
	}
	for _, ref := range d.References {
		if _, ok := d.Column(ref.Column); !ok {
			return fmt.Errorf("reference column %s is not declared", ref.Column)
		}
		target, err := c.Dataset(ref.TargetDataset)
		if err != nil {
			return fmt.Errorf("reference %s: %w", ref.Column, err)
		}
		if _, ok := target.Column(ref.TargetColumn); !ok {
			return fmt.Errorf("reference %s: target column %s.%s is not declared", ref.Column, target.Name, ref.TargetColumn)
		}
		for _, attr := range []string{ref.Context, ref.AlignOn} {
			if attr == "" {
				continue
			}
			if _, ok := d.Column(attr); !ok {
				return fmt.Errorf("reference %s: attribute %s missing on %s", ref.Column, attr, d.Name)
			}
			if _, ok := target.Column(attr); !ok {
				return fmt.Errorf("reference %s: attribute %s missing on %s", ref.Column, attr, target.Name)
			}
		}
		if ref.FuzzySource != "" {
			if _, ok := d.Column(ref.FuzzySource); !ok {
				return fmt.Errorf("reference %s: fuzzy source %s is not declared", ref.Column, ref.FuzzySource)
			}
		}
		for _, name := range ref.FuzzyTarget {
			if _, ok := target.Column(name); !ok {
				return fmt.Errorf("reference %s: fuzzy target %s.%s is not declared", ref.Column, target.Name, name)
			}
		}
	}
	return nil
}

// Dataset returns the named dataset
func (c *Catalog) Dataset(name string) (*Dataset, error) {
	i, ok := c.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownDataset, name)
	}
	return &c.Datasets[i], nil
}

// Names returns dataset names in declaration order
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Datasets))
	for _, d := range c.Datasets {
		names = append(names, d.Name)
	}
	return names
}

// Select resolves a dataset selection, keeping catalog order.
// An empty selection means every dataset.
func (c *Catalog) Select(names []string) ([]string, error) {
	if len(names) == 0 {
		return c.Names(), nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, err := c.Dataset(n); err != nil {
			return nil, err
		}
		want[n] = true
	}
	selected := make([]string, 0, len(names))
	for _, d := range c.Datasets {
		if want[d.Name] {
			selected = append(selected, d.Name)
		}
	}
	return selected, nil
}

// Column returns the named column
func (d *Dataset) Column(name string) (Column, bool) {
	for _, col := range d.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the declared column names in order
func (d *Dataset) ColumnNames() []string {
	names := make([]string, 0, len(d.Columns))
	for _, col := range d.Columns {
		names = append(names, col.Name)
	}
	return names
}

// RawTable returns the name of the raw-layer table backing the dataset
func (d *Dataset) RawTable() string {
	return RawTableName(d.Name)
}

// RawTableName returns the raw-layer table name for a dataset
func RawTableName(dataset string) string {
	return "raw_" + dataset
}
