//go:build !libsql

package kvutils

import (
	"context"
	"errors"

	"github.com/papercomputeco/smartread/pkg/kv"
)

func newLibSQL(context.Context, string) (kv.Store, error) {
	return nil, errors.New("libsql storage requires building with -tags libsql")
}
