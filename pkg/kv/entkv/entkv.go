// Package entkv implements kv.Store over any database/sql connection using
// ent's dialect-aware SQL builder. The sqlite, postgres and libsql packages
// wrap it with their connection setup.
package entkv

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const (
	// Table is the name of the key/value table.
	Table = "smartread_kv"

	deleteChunk = 500
)

// Driver is a kv.Store backed by a single SQL table.
type Driver struct {
	drv     *entsql.Driver
	dialect string
}

// New wraps db for the given ent dialect and creates the key/value table if
// it does not exist.
func New(ctx context.Context, dialectName string, db *sql.DB) (*Driver, error) {
	d := &Driver{
		drv:     entsql.OpenDB(dialectName, db),
		dialect: dialectName,
	}

	if err := d.migrate(ctx); err != nil {
		d.drv.Close()
		return nil, err
	}

	return d, nil
}

func (d *Driver) migrate(ctx context.Context) error {
	blob := "BLOB"
	if d.dialect == dialect.Postgres {
		blob = "BYTEA"
	}

	ddl := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, value %s NOT NULL)`,
		Table, blob,
	)
	if err := d.drv.Exec(ctx, ddl, []any{}, nil); err != nil {
		return fmt.Errorf("creating %s table: %w", Table, err)
	}
	return nil
}

func (d *Driver) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query, args := entsql.Dialect(d.dialect).
		Select("value").
		From(entsql.Table(Table)).
		Where(entsql.EQ("key", key)).
		Query()

	rows := &entsql.Rows{}
	if err := d.drv.Query(ctx, query, args, rows); err != nil {
		return nil, false, fmt.Errorf("querying key %q: %w", key, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, false, rows.Err()
	}

	var value []byte
	if err := rows.Scan(&value); err != nil {
		return nil, false, fmt.Errorf("scanning key %q: %w", key, err)
	}
	return value, true, rows.Err()
}

func (d *Driver) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}

	query, args := entsql.Dialect(d.dialect).
		Insert(Table).
		Columns("key", "value").
		Values(key, value).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if err := d.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("writing key %q: %w", key, err)
	}
	return nil
}

func (d *Driver) Scan(ctx context.Context, prefix string) (map[string][]byte, error) {
	sel := entsql.Dialect(d.dialect).
		Select("key", "value").
		From(entsql.Table(Table))
	if prefix != "" {
		sel.Where(entsql.HasPrefix("key", prefix))
	}
	query, args := sel.OrderBy("key").Query()

	rows := &entsql.Rows{}
	if err := d.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("scanning prefix %q: %w", prefix, err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning prefix %q: %w", prefix, err)
		}
		// LIKE is case-insensitive on some backends.
		if strings.HasPrefix(key, prefix) {
			out[key] = value
		}
	}
	return out, rows.Err()
}

func (d *Driver) DeleteMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	tx, err := d.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("starting delete: %w", err)
	}

	for start := 0; start < len(keys); start += deleteChunk {
		end := min(start+deleteChunk, len(keys))

		chunk := make([]any, 0, end-start)
		for _, k := range keys[start:end] {
			chunk = append(chunk, k)
		}

		query, args := entsql.Dialect(d.dialect).
			Delete(Table).
			Where(entsql.In("key", chunk...)).
			Query()

		if err := tx.Exec(ctx, query, args, nil); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("deleting keys: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	return nil
}

func (d *Driver) Close() error {
	return d.drv.Close()
}
