// Package semantic loads and serves the semantic layer: business-facing
// descriptions of tables and columns, derived business metrics, and mappings
// from colloquial entity names to canonical database values. The layer is a
// single YAML document kept in the XDG config dir and is read once at startup.
package semantic

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Column describes a single column in business terms.
type Column struct {
	Type         string `yaml:"type"`
	Description  string `yaml:"description"`
	BusinessTerm string `yaml:"business_term"`
}

// Table is a data-dictionary entry for one table.
type Table struct {
	TableID      string            `yaml:"table_id"`
	BusinessName string            `yaml:"business_name"`
	Description  string            `yaml:"description"`
	Columns      map[string]Column `yaml:"columns"`
}

// Metric is a named business metric and the tables needed to compute it.
type Metric struct {
	Name           string   `yaml:"name"`
	Description    string   `yaml:"description"`
	Calculation    string   `yaml:"calculation"`
	RequiredTables []string `yaml:"required_tables"`
}

// ValueMapping maps one canonical database value to the aliases users say.
type ValueMapping struct {
	CanonicalValue string   `yaml:"canonical_value"`
	Aliases        []string `yaml:"aliases"`
}

// EntityMapping binds a set of value mappings to a concrete column.
type EntityMapping struct {
	SourceTable  string         `yaml:"source_table"`
	SourceColumn string         `yaml:"source_column"`
	Values       []ValueMapping `yaml:"values"`
}

// CategoricalColumn is a column known to hold a closed set of values.
type CategoricalColumn struct {
	Name         string
	BusinessTerm string
}

// Layer is the full semantic layer document.
type Layer struct {
	DataDictionary  map[string]Table         `yaml:"data_dictionary"`
	BusinessMetrics map[string]Metric        `yaml:"business_metrics"`
	EntityMappings  map[string]EntityMapping `yaml:"entity_mappings"`
	JoinPaths       map[string][]string      `yaml:"join_paths"`

	// Lexicon maps a table id to colloquial terms that imply it,
	// e.g. users: [login, admin, role]. Used by schema selection.
	Lexicon map[string][]string `yaml:"lexicon"`

	// DefaultTables are returned by schema selection when no table matches,
	// so synthesis always has something to work with.
	DefaultTables []string `yaml:"default_tables"`
}

// Load reads the semantic layer from path. A missing file yields an empty
// layer rather than an error, so the pipeline degrades to raw-schema prompts.
func Load(path string) (*Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Layer{}, nil
		}
		return nil, fmt.Errorf("read semantic layer: %w", err)
	}

	var l Layer
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse semantic layer %s: %w", path, err)
	}
	return &l, nil
}

// CategoricalColumns returns the columns of tableID that have entity mappings.
// These are the columns worth attempting value resolution on.
func (l *Layer) CategoricalColumns(tableID string) []CategoricalColumn {
	var cols []CategoricalColumn
	for name, m := range l.EntityMappings {
		if m.SourceTable == tableID {
			cols = append(cols, CategoricalColumn{
				Name:         m.SourceColumn,
				BusinessTerm: name,
			})
		}
	}
	return cols
}

// EntityValues returns the value mappings for one table column, or nil when
// the column has no mapping.
func (l *Layer) EntityValues(tableID, column string) []ValueMapping {
	for _, m := range l.EntityMappings {
		if m.SourceTable == tableID && m.SourceColumn == column {
			return m.Values
		}
	}
	return nil
}

// Tables hydrates table ids into dictionary entries, skipping unknown ids.
func (l *Layer) Tables(ids []string) []Table {
	var out []Table
	for _, id := range ids {
		if t, ok := l.DataDictionary[id]; ok {
			if t.TableID == "" {
				t.TableID = id
			}
			out = append(out, t)
		}
	}
	return out
}

// MetricsByMention returns metrics whose key or display name appears in the
// question. Keys are matched with underscores replaced by spaces.
func (l *Layer) MetricsByMention(question string) []Metric {
	q := strings.ToLower(question)
	var out []Metric
	for key, m := range l.BusinessMetrics {
		if strings.Contains(q, strings.ReplaceAll(key, "_", " ")) ||
			(m.Name != "" && strings.Contains(q, strings.ToLower(m.Name))) {
			out = append(out, m)
		}
	}
	return out
}
