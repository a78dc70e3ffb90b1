package store

import (
	"strings"
	"testing"
)

func sampleSchema() *Schema {
	return &Schema{
		Tables: map[string]map[string]string{
			"demands": {
				"id":            "integer",
				"practice_name": "text",
				"status":        "text",
			},
			"users": {
				"id":    "integer",
				"email": "text",
			},
		},
		Relationships: []Relationship{
			{FromTable: "demands", FromColumn: "user_id", ToTable: "users", ToColumn: "id"},
		},
	}
}

func TestHasTable(t *testing.T) {
	s := sampleSchema()

	if !s.HasTable("demands") {
		t.Error("demands should exist")
	}
	if !s.HasTable("DEMANDS") {
		t.Error("lookup should be case-insensitive")
	}
	if s.HasTable("ghost_table") {
		t.Error("ghost_table should not exist")
	}
}

func TestTableForColumn(t *testing.T) {
	s := sampleSchema()

	if table, ok := s.TableForColumn("practice_name"); !ok || table != "demands" {
		t.Errorf("practice_name -> %q, %v", table, ok)
	}
	if table, ok := s.TableForColumn("email"); !ok || table != "users" {
		t.Errorf("email -> %q, %v", table, ok)
	}
	// id exists in both; sorted scan makes demands the deterministic winner.
	if table, _ := s.TableForColumn("id"); table != "demands" {
		t.Errorf("id -> %q, want demands", table)
	}
	if _, ok := s.TableForColumn("nope"); ok {
		t.Error("unknown column should not resolve")
	}
}

func TestSchemaText(t *testing.T) {
	text := sampleSchema().Text()

	for _, want := range []string{
		"TABLES AND COLUMNS:",
		"demands:",
		"  - practice_name (text)",
		"TABLE RELATIONSHIPS (Foreign Keys):",
		"  - demands.user_id -> users.id",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("schema text missing %q:\n%s", want, text)
		}
	}

	// Tables render in sorted order.
	if strings.Index(text, "demands:") > strings.Index(text, "users:") {
		t.Error("tables should be sorted")
	}
}
