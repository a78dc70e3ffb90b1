// Copyright (c) 2026 SQLSage
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pipeline

import (
	"sort"
	"strings"

	"sqlsage/cli/internal/semantic"
	"sqlsage/cli/internal/store"
)

// Selector narrows the full schema to the tables relevant to a question.
type Selector struct {
	layer *semantic.Layer
}

// NewSelector builds a selector over the given semantic layer.
func NewSelector(layer *semantic.Layer) *Selector {
	return &Selector{layer: layer}
}

// Select returns descriptors for every table the question plausibly needs.
// Three passes feed the candidate set: the keyword lexicon, table/column
// name and business-term mentions, and business-metric mentions (which pull
// in each metric's required tables). When nothing matches, the configured
// default tables are returned, or failing that the whole schema, so callers
// never proceed with zero schema context.
func (s *Selector) Select(question string, schema *store.Schema) []TableDescriptor {
	q := strings.ToLower(question)
	candidates := make(map[string]struct{})

	// Pass 1: keyword lexicon.
	for table, terms := range s.layer.Lexicon {
		for _, term := range terms {
			if strings.Contains(q, strings.ToLower(term)) {
				candidates[table] = struct{}{}
				break
			}
		}
	}

	// Pass 2: table and column mentions, in names or business terms.
	for table, columns := range schema.Tables {
		if s.tableMentioned(q, table) {
			candidates[table] = struct{}{}
			continue
		}
		dict := s.layer.DataDictionary[table]
		for col := range columns {
			if strings.Contains(q, strings.ToLower(col)) {
				candidates[table] = struct{}{}
				break
			}
			if term := dict.Columns[col].BusinessTerm; term != "" &&
				strings.Contains(q, strings.ToLower(term)) {
				candidates[table] = struct{}{}
				break
			}
		}
	}

	// Pass 3: metric mentions pull in required tables.
	for _, m := range s.layer.MetricsByMention(question) {
		for _, table := range m.RequiredTables {
			candidates[table] = struct{}{}
		}
	}

	// Drop candidates the live schema does not actually have.
	for table := range candidates {
		if !schema.HasTable(table) {
			delete(candidates, table)
		}
	}

	if len(candidates) == 0 {
		for _, table := range s.layer.DefaultTables {
			if schema.HasTable(table) {
				candidates[table] = struct{}{}
			}
		}
	}
	if len(candidates) == 0 {
		for table := range schema.Tables {
			candidates[table] = struct{}{}
		}
	}

	ids := make([]string, 0, len(candidates))
	for table := range candidates {
		ids = append(ids, table)
	}
	sort.Strings(ids)

	out := make([]TableDescriptor, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.describe(id, schema))
	}
	return out
}

func (s *Selector) tableMentioned(q, table string) bool {
	if strings.Contains(q, strings.ToLower(table)) {
		return true
	}
	dict, ok := s.layer.DataDictionary[table]
	return ok && dict.BusinessName != "" &&
		strings.Contains(q, strings.ToLower(dict.BusinessName))
}

// describe merges the live column types with the semantic dictionary entry.
func (s *Selector) describe(tableID string, schema *store.Schema) TableDescriptor {
	dict := s.layer.DataDictionary[tableID]
	d := TableDescriptor{
		TableID:      tableID,
		BusinessName: dict.BusinessName,
		Description:  dict.Description,
		Columns:      make(map[string]ColumnInfo),
	}
	if d.BusinessName == "" {
		d.BusinessName = tableID
	}
	for col, typ := range schema.Tables[tableID] {
		d.Columns[col] = ColumnInfo{
			Type:        typ,
			Description: dict.Columns[col].Description,
		}
	}
	return d
}
