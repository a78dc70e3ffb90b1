// Copyright (c) 2026 SQLSage
// Licensed under the MIT License. See LICENSE file in the project root for details.

package pipeline

import (
	"sort"
	"strings"

	"sqlsage/cli/internal/semantic"
)

// Resolver maps natural-language value mentions to canonical database
// values using the semantic layer's entity mappings.
type Resolver struct {
	layer *semantic.Layer
}

// NewResolver builds a resolver over the given semantic layer.
func NewResolver(layer *semantic.Layer) *Resolver {
	return &Resolver{layer: layer}
}

// Resolve scans the question for canonical values and their aliases across
// every categorical column of the selected tables. Matching is a plain
// substring containment scan on the lower-cased question; multi-word
// aliases must appear verbatim. The first hit wins per column; other
// columns are still checked. Keys are "table.column".
func (r *Resolver) Resolve(question string, tables []TableDescriptor) map[string]string {
	q := strings.ToLower(question)
	resolutions := make(map[string]string)

	for _, table := range tables {
		cols := r.layer.CategoricalColumns(table.TableID)
		// Deterministic scan order so resolving twice yields the same map.
		sort.Slice(cols, func(i, j int) bool { return cols[i].Name < cols[j].Name })

		for _, col := range cols {
			key := table.TableID + "." + col.Name
			for _, mapping := range r.layer.EntityValues(table.TableID, col.Name) {
				if canonical := strings.ToLower(mapping.CanonicalValue); canonical != "" &&
					strings.Contains(q, canonical) {
					resolutions[key] = mapping.CanonicalValue
					break
				}
				matched := false
				for _, alias := range mapping.Aliases {
					if strings.Contains(q, strings.ToLower(alias)) {
						resolutions[key] = mapping.CanonicalValue
						matched = true
						break
					}
				}
				if matched {
					break
				}
			}
		}
	}
	return resolutions
}
