package eventstream

import "errors"

var (
	// ErrNilEvent is returned by publishers handed a nil event.
	ErrNilEvent = errors.New("nil event")
)
