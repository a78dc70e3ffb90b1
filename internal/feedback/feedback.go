// Package feedback persists the active-learning loop: an append-only log of
// every terminal pipeline outcome, and a curated set of verified
// question→SQL pairs used as few-shot examples during synthesis.
//
// Records are immutable once appended. A correction never edits an earlier
// record, it produces a new one.
package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// similarityThreshold is the minimum Jaccard score for an example to count
// as relevant to the current question.
const similarityThreshold = 0.3

// Record is one logged pipeline outcome.
type Record struct {
	ID        string
	Question  string
	SQL       string
	Success   bool
	Error     string
	CreatedAt time.Time
}

// Example is a verified question→SQL pair for prompt injection.
type Example struct {
	ID       string
	Question string
	SQL      string
}

// Stats summarizes the log.
type Stats struct {
	Total       int
	Success     int
	SuccessRate float64
	FewShots    int
}

// Store is the sqlite-backed feedback store. Writes are serialized with a
// mutex on top of sqlite's single-writer pool.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS feedback_log (
  id TEXT PRIMARY KEY,
  question TEXT NOT NULL,
  sql_text TEXT NOT NULL,
  success INTEGER NOT NULL,
  error TEXT NOT NULL DEFAULT '',
  created_at_unix_ms INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_feedback_created ON feedback_log(created_at_unix_ms DESC);

CREATE TABLE IF NOT EXISTS few_shot_examples (
  id TEXT PRIMARY KEY,
  question TEXT NOT NULL,
  sql_text TEXT NOT NULL,
  created_at_unix_ms INTEGER NOT NULL
);
`

// Open opens (creating if needed) the feedback database at path.
// WAL mode and a busy timeout make concurrent readers safe; writes go
// through a single connection.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create feedback dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open feedback db: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect feedback db: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create feedback schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Log appends one outcome record. Append-only: existing rows are never
// touched.
func (s *Store) Log(ctx context.Context, question, sqlText string, success bool, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback_log (id, question, sql_text, success, error, created_at_unix_ms)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), question, sqlText, boolToInt(success), errMsg, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("log feedback: %w", err)
	}
	return nil
}

// AddExample stores a verified question→SQL pair for future few-shot use.
func (s *Store) AddExample(ctx context.Context, question, sqlText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO few_shot_examples (id, question, sql_text, created_at_unix_ms)
		VALUES (?, ?, ?, ?)`,
		uuid.NewString(), question, sqlText, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("add few-shot example: %w", err)
	}
	return nil
}

// Similar returns up to topK positive examples (verified pairs to emulate)
// and topK negative records (past failures to avoid), each ranked by Jaccard
// similarity to question and filtered at the relevance threshold.
func (s *Store) Similar(ctx context.Context, question string, topK int) ([]Example, []Record, error) {
	positives, err := s.similarExamples(ctx, question, topK)
	if err != nil {
		return nil, nil, err
	}
	negatives, err := s.similarFailures(ctx, question, topK)
	if err != nil {
		return nil, nil, err
	}
	return positives, negatives, nil
}

type scored[T any] struct {
	score float64
	item  T
}

// topByScore sorts ascending and keeps the last k, so the highest-scoring
// items come back in ascending-relevance order.
func topByScore[T any](items []scored[T], k int) []T {
	sort.SliceStable(items, func(i, j int) bool { return items[i].score < items[j].score })
	if len(items) > k {
		items = items[len(items)-k:]
	}
	out := make([]T, len(items))
	for i, s := range items {
		out[i] = s.item
	}
	return out
}

func (s *Store) similarExamples(ctx context.Context, question string, topK int) ([]Example, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question, sql_text FROM few_shot_examples`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matched []scored[Example]
	for rows.Next() {
		var e Example
		if err := rows.Scan(&e.ID, &e.Question, &e.SQL); err != nil {
			return nil, err
		}
		if score := jaccard(question, e.Question); score > similarityThreshold {
			matched = append(matched, scored[Example]{score: score, item: e})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return topByScore(matched, topK), nil
}

func (s *Store) similarFailures(ctx context.Context, question string, topK int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question, sql_text, error, created_at_unix_ms
		FROM feedback_log WHERE success = 0`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matched []scored[Record]
	for rows.Next() {
		var r Record
		var createdMs int64
		if err := rows.Scan(&r.ID, &r.Question, &r.SQL, &r.Error, &createdMs); err != nil {
			return nil, err
		}
		r.CreatedAt = time.UnixMilli(createdMs)
		if score := jaccard(question, r.Question); score > similarityThreshold {
			matched = append(matched, scored[Record]{score: score, item: r})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return topByScore(matched, topK), nil
}

// RecentFailures returns the n most recent failed records, newest first.
func (s *Store) RecentFailures(ctx context.Context, n int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question, sql_text, error, created_at_unix_ms
		FROM feedback_log WHERE success = 0
		ORDER BY created_at_unix_ms DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var createdMs int64
		if err := rows.Scan(&r.ID, &r.Question, &r.SQL, &r.Error, &createdMs); err != nil {
			return nil, err
		}
		r.CreatedAt = time.UnixMilli(createdMs)
		r.Success = false
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stats reports log totals and the verified-example count.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(success), 0) FROM feedback_log`).
		Scan(&st.Total, &st.Success)
	if err != nil {
		return Stats{}, err
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM few_shot_examples`).Scan(&st.FewShots); err != nil {
		return Stats{}, err
	}
	if st.Total > 0 {
		st.SuccessRate = float64(st.Success) / float64(st.Total) * 100
	}
	return st, nil
}

// jaccard computes token-set similarity between two questions.
func jaccard(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	sa := tokenSet(a)
	sb := tokenSet(b)

	intersection := 0
	for tok := range sa {
		if _, ok := sb[tok]; ok {
			intersection++
		}
	}
	union := len(sa) + len(sb) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		set[tok] = struct{}{}
	}
	return set
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
