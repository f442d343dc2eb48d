package db

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/yumyai/protclass/pkg/embedding"
	"github.com/yumyai/protclass/pkg/model"

	_ "modernc.org/sqlite"
)

var ErrResultNotFound = errors.New("classification result not found")

// Fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS classification_results (
	result_id     TEXT PRIMARY KEY,
	sequence_id   TEXT NOT NULL,
	sequence      TEXT NOT NULL,
	length        INTEGER NOT NULL,
	confidence    REAL NOT NULL,
	top_function  TEXT NOT NULL,
	result_json   TEXT NOT NULL,
	embedding     BLOB,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_created ON classification_results(created_at);
`

// ResultStore persists classification results and the vectors behind them.
type ResultStore struct {
	db *sql.DB
}

// NewResultStore opens (creating if needed) the SQLite database at path.
func NewResultStore(path string) (*ResultStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// modernc sqlite serialises writers; one connection avoids SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &ResultStore{db: db}, nil
}

func (s *ResultStore) Close() error {
	return s.db.Close()
}

// Ping is used by the health check.
func (s *ResultStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Save stores res; vector may be nil.
func (s *ResultStore) Save(ctx context.Context, res *model.ClassificationResult, vector []float64) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	summary := res.Summarize()

	var blob []byte
	if len(vector) > 0 {
		blob = encodeVector(vector)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO classification_results
		 (result_id, sequence_id, sequence, length, confidence, top_function, result_json, embedding, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID, res.SequenceID, res.Sequence, res.Length, res.Confidence, summary.TopFunction,
		string(payload), blob, res.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert result %s: %w", res.ID, err)
	}
	return nil
}

// Get loads one result by ID.
func (s *ResultStore) Get(ctx context.Context, id string) (*model.ClassificationResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT result_json FROM classification_results WHERE result_id = ?`, id,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrResultNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query result %s: %w", id, err)
	}

	var res model.ClassificationResult
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return nil, fmt.Errorf("decode result %s: %w", id, err)
	}
	return &res, nil
}

// Vector returns the embedding stored with a result, nil if there was none.
func (s *ResultStore) Vector(ctx context.Context, id string) ([]float64, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT embedding FROM classification_results WHERE result_id = ?`, id,
	).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrResultNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query vector %s: %w", id, err)
	}
	return decodeVector(blob)
}

// List returns the most recent results, newest first.
func (s *ResultStore) List(ctx context.Context, limit int) ([]model.Summary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT result_id, sequence_id, length, confidence, top_function, created_at
		 FROM classification_results ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	summaries := make([]model.Summary, 0, limit)
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Similar ranks stored results by cosine similarity between their embedding
// and vector. Results without an embedding, of another dimension, or with ID
// excludeID are skipped.
func (s *ResultStore) Similar(ctx context.Context, vector []float64, excludeID string, topK int) ([]model.Summary, error) {
	if topK <= 0 {
		topK = 5
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT result_id, sequence_id, length, confidence, top_function, created_at, embedding
		 FROM classification_results WHERE embedding IS NOT NULL AND result_id != ?`, excludeID)
	if err != nil {
		return nil, fmt.Errorf("similar results: %w", err)
	}
	defer rows.Close()

	var ranked []model.Summary
	for rows.Next() {
		var blob []byte
		summary, err := scanSummary(rows, &blob)
		if err != nil {
			return nil, err
		}
		other, err := decodeVector(blob)
		if err != nil {
			return nil, err
		}
		sim, err := embedding.CosineSimilarity(vector, other)
		var mismatch *embedding.DimensionMismatchError
		if errors.As(err, &mismatch) {
			continue
		}
		if err != nil {
			return nil, err
		}
		summary.Similarity = sim
		ranked = append(ranked, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Similarity > ranked[j].Similarity })
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked, nil
}

func scanSummary(rows *sql.Rows, extra ...any) (model.Summary, error) {
	var s model.Summary
	var created string
	dest := append([]any{&s.ID, &s.SequenceID, &s.Length, &s.Confidence, &s.TopFunction, &created}, extra...)
	if err := rows.Scan(dest...); err != nil {
		return model.Summary{}, fmt.Errorf("scan result row: %w", err)
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return model.Summary{}, fmt.Errorf("parse created_at: %w", err)
	}
	s.CreatedAt = t
	return s, nil
}

func encodeVector(v []float64) []byte {
	buf := make([]byte, 8*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(x))
	}
	return buf
}

func decodeVector(buf []byte) ([]float64, error) {
	if len(buf) == 0 {
		return nil, nil
	}
	if len(buf)%8 != 0 {
		return nil, fmt.Errorf("vector blob has %d bytes, not a multiple of 8", len(buf))
	}
	v := make([]float64, len(buf)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return v, nil
}
