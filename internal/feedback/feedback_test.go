package feedback

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "feedback.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLogAndStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Log(ctx, "how many demands", "SELECT count(*) FROM demands", true, ""))
	require.NoError(t, s.Log(ctx, "list ghosts", "SELECT * FROM ghost_table", false, "relation does not exist"))
	require.NoError(t, s.AddExample(ctx, "how many demands", "SELECT count(*) FROM demands"))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, st.Total)
	require.Equal(t, 1, st.Success)
	require.InDelta(t, 50.0, st.SuccessRate, 0.01)
	require.Equal(t, 1, st.FewShots)
}

func TestSimilarFiltersByThreshold(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddExample(ctx, "how many open demands are there", "SELECT count(*) FROM demands WHERE status = 'open'"))
	require.NoError(t, s.AddExample(ctx, "average salary by department", "SELECT dept, avg(salary) FROM employees GROUP BY dept"))
	require.NoError(t, s.Log(ctx, "how many open demands in java", "SELECT bogus", false, "syntax error"))

	positives, negatives, err := s.Similar(ctx, "how many open demands", 3)
	require.NoError(t, err)

	require.Len(t, positives, 1, "unrelated example should be filtered out")
	require.Equal(t, "how many open demands are there", positives[0].Question)

	require.Len(t, negatives, 1)
	require.Equal(t, "syntax error", negatives[0].Error)
}

func TestSimilarKeepsTopKMostRelevant(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// All overlap with the question, with increasing similarity.
	require.NoError(t, s.AddExample(ctx, "open demands for java practice today", "SELECT 1"))
	require.NoError(t, s.AddExample(ctx, "open demands for java", "SELECT 2"))
	require.NoError(t, s.AddExample(ctx, "open demands", "SELECT 3"))

	positives, _, err := s.Similar(ctx, "open demands", 2)
	require.NoError(t, err)
	require.Len(t, positives, 2)
	// Ascending relevance order: best match last.
	require.Equal(t, "SELECT 3", positives[1].SQL)
}

func TestRecentFailures(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Log(ctx, "q1", "SELECT 1", false, "err1"))
	require.NoError(t, s.Log(ctx, "q2", "SELECT 2", true, ""))
	require.NoError(t, s.Log(ctx, "q3", "SELECT 3", false, "err3"))

	failures, err := s.RecentFailures(ctx, 5)
	require.NoError(t, err)
	require.Len(t, failures, 2)
	for _, f := range failures {
		require.False(t, f.Success)
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"open demands", "open demands", 1.0},
		{"open demands", "closed invoices", 0.0},
		{"", "anything", 0.0},
		{"how many demands", "how many users", 0.5},
	}
	for _, tt := range tests {
		require.InDelta(t, tt.want, jaccard(tt.a, tt.b), 0.001, "jaccard(%q, %q)", tt.a, tt.b)
	}
}
