package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableSet(tables []TableDescriptor) map[string]bool {
	set := make(map[string]bool)
	for _, t := range tables {
		set[t.TableID] = true
	}
	return set
}

func TestSelectByTableName(t *testing.T) {
	s := NewSelector(testLayer())

	got := tableSet(s.Select("how many demands are open", testSchema()))
	assert.True(t, got["demands"])
	assert.False(t, got["sales"])
}

func TestSelectByLexicon(t *testing.T) {
	s := NewSelector(testLayer())

	got := tableSet(s.Select("who can login as admin", testSchema()))
	assert.True(t, got["users"])
}

func TestSelectByBusinessTerm(t *testing.T) {
	s := NewSelector(testLayer())

	// "practice" is the business term of demands.practice_name.
	got := tableSet(s.Select("average time per practice", testSchema()))
	assert.True(t, got["demands"])
}

func TestSelectByMetricPullsRequiredTables(t *testing.T) {
	s := NewSelector(testLayer())

	got := tableSet(s.Select("show me monthly revenue trends", testSchema()))
	assert.True(t, got["sales"], "metric's required table should be pulled in")
}

func TestSelectFallbackNeverEmpty(t *testing.T) {
	s := NewSelector(testLayer())

	got := s.Select("xyzzy plugh nothing matches this", testSchema())
	require.NotEmpty(t, got, "fallback invariant: selection is never empty")
	set := tableSet(got)
	assert.True(t, set["demands"])
	assert.True(t, set["users"])
}

func TestSelectDescriptorsCarryFullContext(t *testing.T) {
	s := NewSelector(testLayer())

	tables := s.Select("demands", testSchema())
	require.Len(t, tables, 1)
	d := tables[0]
	assert.Equal(t, "demands", d.TableID)
	assert.Equal(t, "Demands", d.BusinessName)
	assert.Equal(t, "text", d.Columns["practice_name"].Type)
	assert.Equal(t, "timestamp", d.Columns["created_at"].Type)
}

func TestSelectUnknownDictionaryTableDropped(t *testing.T) {
	layer := testLayer()
	layer.Lexicon["retired_table"] = []string{"retired"}
	s := NewSelector(layer)

	got := tableSet(s.Select("show retired things", testSchema()))
	assert.False(t, got["retired_table"], "tables absent from the live schema are dropped")
}
