package kv

import "errors"

// ErrClosed is returned by stores that have been closed.
var ErrClosed = errors.New("kv store is closed")
