package memory

import "errors"

// ErrNotConfigured is returned when memory operations are attempted
// but no memory driver has been configured.
var ErrNotConfigured = errors.New("memory not configured")

// ErrEmptyText is returned by Write for blank text.
var ErrEmptyText = errors.New("memory text is empty")
