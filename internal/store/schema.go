// Copyright (c) 2026 SQLSage
// Licensed under the MIT License. See LICENSE file in the project root for details.

package store

import (
	"context"
	"sort"
	"strings"

	sgerrors "sqlsage/cli/internal/errors"
)

// Relationship is one foreign-key edge between tables.
type Relationship struct {
	FromTable  string
	FromColumn string
	ToTable    string
	ToColumn   string
}

// Schema is a point-in-time snapshot of the public schema: every table with
// its columns and types, plus the foreign-key graph. Snapshots are taken
// fresh per request cycle and never mutated afterwards.
type Schema struct {
	// Tables maps table name to column name to data type.
	Tables        map[string]map[string]string
	Relationships []Relationship
}

// HasTable reports whether name exists in the snapshot, case-insensitively.
func (s *Schema) HasTable(name string) bool {
	lower := strings.ToLower(name)
	for t := range s.Tables {
		if strings.ToLower(t) == lower {
			return true
		}
	}
	return false
}

// TableForColumn returns the first table containing column, scanning in
// sorted order so the answer is deterministic.
func (s *Schema) TableForColumn(column string) (string, bool) {
	names := make([]string, 0, len(s.Tables))
	for t := range s.Tables {
		names = append(names, t)
	}
	sort.Strings(names)

	for _, t := range names {
		if _, ok := s.Tables[t][column]; ok {
			return t, true
		}
	}
	return "", false
}

// Text renders the snapshot as prompt-ready plain text: tables with typed
// columns, then the foreign-key relationships.
func (s *Schema) Text() string {
	var b strings.Builder
	b.WriteString("TABLES AND COLUMNS:\n")

	tables := make([]string, 0, len(s.Tables))
	for t := range s.Tables {
		tables = append(tables, t)
	}
	sort.Strings(tables)

	for _, t := range tables {
		b.WriteString("\n" + t + ":\n")
		cols := make([]string, 0, len(s.Tables[t]))
		for c := range s.Tables[t] {
			cols = append(cols, c)
		}
		sort.Strings(cols)
		for _, c := range cols {
			b.WriteString("  - " + c + " (" + s.Tables[t][c] + ")\n")
		}
	}

	if len(s.Relationships) > 0 {
		b.WriteString("\nTABLE RELATIONSHIPS (Foreign Keys):\n")
		for _, r := range s.Relationships {
			b.WriteString("  - " + r.FromTable + "." + r.FromColumn +
				" -> " + r.ToTable + "." + r.ToColumn + "\n")
		}
	}
	return b.String()
}

const tablesQuery = `
SELECT table_name
FROM information_schema.tables
WHERE table_schema = 'public'
ORDER BY table_name`

const columnsQuery = `
SELECT column_name, data_type
FROM information_schema.columns
WHERE table_name = $1 AND table_schema = 'public'
ORDER BY ordinal_position`

const foreignKeysQuery = `
SELECT
    tc.table_name   AS from_table,
    kcu.column_name AS from_column,
    ccu.table_name  AS to_table,
    ccu.column_name AS to_column
FROM information_schema.table_constraints AS tc
JOIN information_schema.key_column_usage AS kcu
    ON tc.constraint_name = kcu.constraint_name
    AND tc.table_schema = kcu.table_schema
JOIN information_schema.constraint_column_usage AS ccu
    ON ccu.constraint_name = tc.constraint_name
    AND ccu.table_schema = tc.table_schema
WHERE tc.constraint_type = 'FOREIGN KEY'
    AND tc.table_schema = 'public'`

// FetchSchema queries information_schema for all public tables, their typed
// columns, and foreign-key relationships.
func (s *Store) FetchSchema(ctx context.Context) (*Schema, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, sgerrors.Wrap(sgerrors.StoreUnreachable, "acquire connection", err)
	}
	defer conn.Release()

	schema := &Schema{Tables: make(map[string]map[string]string)}

	rows, err := conn.Query(ctx, tablesQuery)
	if err != nil {
		return nil, err
	}
	var tableNames []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, err
		}
		tableNames = append(tableNames, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, table := range tableNames {
		cols, err := conn.Query(ctx, columnsQuery, table)
		if err != nil {
			return nil, err
		}
		columns := make(map[string]string)
		for cols.Next() {
			var name, dataType string
			if err := cols.Scan(&name, &dataType); err != nil {
				cols.Close()
				return nil, err
			}
			columns[name] = dataType
		}
		cols.Close()
		if err := cols.Err(); err != nil {
			return nil, err
		}
		schema.Tables[table] = columns
	}

	fks, err := conn.Query(ctx, foreignKeysQuery)
	if err != nil {
		return nil, err
	}
	defer fks.Close()
	for fks.Next() {
		var r Relationship
		if err := fks.Scan(&r.FromTable, &r.FromColumn, &r.ToTable, &r.ToColumn); err != nil {
			return nil, err
		}
		schema.Relationships = append(schema.Relationships, r)
	}
	return schema, fks.Err()
}
