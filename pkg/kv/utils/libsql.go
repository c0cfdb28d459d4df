//go:build libsql

package kvutils

import (
	"context"

	"github.com/papercomputeco/smartread/pkg/kv"
	"github.com/papercomputeco/smartread/pkg/kv/libsql"
)

func newLibSQL(ctx context.Context, dsn string) (kv.Store, error) {
	return libsql.NewDriver(ctx, dsn)
}
