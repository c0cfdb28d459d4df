package fingerprint

import "errors"

// ErrInvalidInput is returned for empty or non-UTF-8 text or source ids.
var ErrInvalidInput = errors.New("invalid input: text and source id must be non-empty UTF-8 strings")
