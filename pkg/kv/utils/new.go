// Package kvutils builds a kv.Store from configuration.
package kvutils

import (
	"context"
	"errors"
	"fmt"

	"github.com/papercomputeco/smartread/pkg/kv"
	"github.com/papercomputeco/smartread/pkg/kv/inmemory"
	"github.com/papercomputeco/smartread/pkg/kv/postgres"
	"github.com/papercomputeco/smartread/pkg/kv/sqlite"
)

type NewStoreOpts struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
	LibSQLDSN   string
}

func NewStore(ctx context.Context, o *NewStoreOpts) (kv.Store, error) {
	switch o.Driver {
	case "inmemory":
		return inmemory.NewStore(), nil

	case "", "sqlite":
		if o.SQLitePath == "" {
			return nil, errors.New("sqlite storage requires a database path")
		}
		return sqlite.NewDriver(ctx, o.SQLitePath)

	case "postgres":
		if o.PostgresDSN == "" {
			return nil, errors.New("postgres storage requires a DSN")
		}
		return postgres.NewDriver(ctx, o.PostgresDSN)

	case "libsql":
		if o.LibSQLDSN == "" {
			return nil, errors.New("libsql storage requires a DSN")
		}
		return newLibSQL(ctx, o.LibSQLDSN)

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", o.Driver)
	}
}
