//go:build libsql

// Package libsql provides a libSQL-backed kv.Store. go-libsql bundles its own
// SQLite build, which collides with mattn/go-sqlite3 at link time, so the
// driver is only compiled with the "libsql" build tag.
package libsql

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	_ "github.com/tursodatabase/go-libsql" // registers the "libsql" driver

	"github.com/papercomputeco/smartread/pkg/kv/entkv"
)

// Driver implements kv.Store using libSQL via the entkv driver.
type Driver struct {
	*entkv.Driver
}

// NewDriver opens a libSQL database. dsn is either "file:<path>" for a local
// database or a libsql:// URL with an authToken query parameter.
func NewDriver(ctx context.Context, dsn string) (*Driver, error) {
	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// libSQL speaks the SQLite dialect.
	d, err := entkv.New(ctx, dialect.SQLite, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Driver{Driver: d}, nil
}
