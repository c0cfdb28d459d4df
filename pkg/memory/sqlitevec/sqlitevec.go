// Package sqlitevec provides a SQLite-backed memory.Store using sqlite-vec
// for KNN search.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/smartread/pkg/embeddings"
	"github.com/papercomputeco/smartread/pkg/logger"
	"github.com/papercomputeco/smartread/pkg/memory"
)

// maxK is sqlite-vec's upper bound for k in a KNN query.
const maxK = 4096

// overFetch widens the KNN window before filtering by user id.
const overFetch = 4

// Config holds configuration for the sqlite-vec memory store.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database.
	DBPath string

	// Dimensions must match the embedder's output size.
	Dimensions uint

	Embedder embeddings.Embedder
	Logger   *slog.Logger
}

// Store implements memory.Store on SQLite. Memories live in a regular table;
// their embeddings live in a vec0 virtual table under the same rowid.
type Store struct {
	db       *sql.DB
	embedder embeddings.Embedder
	logger   *slog.Logger
	now      func() time.Time
}

// NewStore opens (or creates) the database and its tables.
func NewStore(c Config) (*Store, error) {
	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	if c.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if c.Dimensions == 0 {
		return nil, fmt.Errorf("sqlite-vec embedding dimensions cannot be 0, must be configured")
	}
	if c.Embedder == nil {
		return nil, fmt.Errorf("sqlite-vec memory store requires an embedder")
	}

	log := c.Logger
	if log == nil {
		log = logger.Nop()
	}

	db, err := sql.Open("sqlite3", c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// ":memory:" databases are per-connection.
	db.SetMaxOpenConns(1)

	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite-vec not available: %w", err)
	}

	// vec0 virtual tables use integer rowids, so memories carry both the
	// integer rowid and the public string id.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS memories (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			user_id TEXT NOT NULL,
			text TEXT NOT NULL,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating memories table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS memories_user_id ON memories(user_id)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating user index: %w", err)
	}

	createVec := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS memory_embeddings USING vec0(embedding float[%d])`,
		c.Dimensions,
	)
	if _, err := db.Exec(createVec); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vec0 table: %w", err)
	}

	log.Info("sqlite-vec memory store initialized",
		"db_path", c.DBPath,
		"dimensions", c.Dimensions,
		"vec_version", vecVersion,
	)

	return &Store{
		db:       db,
		embedder: c.Embedder,
		logger:   log,
		now:      time.Now,
	}, nil
}

// serializeFloat32 converts a float32 slice to the little-endian BLOB format
// sqlite-vec expects.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func (s *Store) Write(ctx context.Context, text, userID string, metadata map[string]any) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", memory.ErrEmptyText
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("embedding memory: %w", err)
	}

	meta, err := json.Marshal(orEmpty(metadata))
	if err != nil {
		return "", fmt.Errorf("encoding metadata: %w", err)
	}

	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO memories(id, user_id, text, metadata, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, userID, text, string(meta), s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("inserting memory: %w", err)
	}

	rowID, err := result.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("getting rowid for memory %s: %w", id, err)
	}

	// Insert embedding into vec0 table with matching rowid
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO memory_embeddings(rowid, embedding) VALUES (?, ?)`,
		rowID, serializeFloat32(vec),
	); err != nil {
		return "", fmt.Errorf("inserting embedding for memory %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing transaction: %w", err)
	}

	s.logger.Debug("wrote memory to sqlite-vec", "id", id, "user_id", userID)
	return id, nil
}

// Search runs a KNN query and keeps the caller's memories. Scores are
// 1/(1+distance), so closer vectors score higher.
func (s *Store) Search(ctx context.Context, query, userID string, limit int) ([]memory.Memory, error) {
	if limit <= 0 {
		return nil, nil
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	k := min(limit*overFetch, maxK)

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			m.id,
			m.text,
			m.metadata,
			m.created_at,
			knn.distance
		FROM (
			SELECT rowid, distance
			FROM memory_embeddings
			WHERE embedding MATCH ?
				AND k = ?
		) knn
		INNER JOIN memories m ON m.rowid = knn.rowid
		WHERE m.user_id = ?
		ORDER BY knn.distance
		LIMIT ?
	`, serializeFloat32(vec), k, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var results []memory.Memory
	for rows.Next() {
		var distance float64
		m, err := scanMemory(rows, &distance)
		if err != nil {
			return nil, err
		}
		m.Score = 1.0 / (1.0 + distance)
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	s.logger.Debug("queried sqlite-vec", "results", len(results))
	return results, nil
}

func (s *Store) List(ctx context.Context, userID string) ([]memory.Memory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, metadata, created_at
		FROM memories
		WHERE user_id = ?
		ORDER BY rowid
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing memories: %w", err)
	}
	defer rows.Close()

	var out []memory.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating memories: %w", err)
	}
	return out, nil
}

func (s *Store) DeleteAll(ctx context.Context, userID string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// vec0 does not support joins in DELETE, so remove embeddings by rowid
	// first.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM memory_embeddings WHERE rowid IN (SELECT rowid FROM memories WHERE user_id = ?)`,
		userID,
	); err != nil {
		return 0, fmt.Errorf("deleting embeddings: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM memories WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("deleting memories: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted memories: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	s.logger.Debug("deleted memories from sqlite-vec", "user_id", userID, "count", n)
	return int(n), nil
}

// Close releases the database and the embedder.
func (s *Store) Close() error {
	if err := s.embedder.Close(); err != nil {
		s.logger.Warn("closing embedder", "error", err)
	}
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMemory(row scanner, extra ...any) (memory.Memory, error) {
	var (
		m         memory.Memory
		meta      string
		createdAt string
	)
	dest := append([]any{&m.ID, &m.Text, &meta, &createdAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return memory.Memory{}, fmt.Errorf("scanning memory: %w", err)
	}

	if err := json.Unmarshal([]byte(meta), &m.Metadata); err != nil {
		return memory.Memory{}, fmt.Errorf("decoding metadata for memory %s: %w", m.ID, err)
	}
	if len(m.Metadata) == 0 {
		m.Metadata = nil
	}

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return memory.Memory{}, fmt.Errorf("parsing created_at for memory %s: %w", m.ID, err)
	}
	m.CreatedAt = t

	return m, nil
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

var _ memory.Store = (*Store)(nil)
