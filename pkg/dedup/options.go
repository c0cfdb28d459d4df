package dedup

import (
	"log/slog"
	"time"

	"github.com/papercomputeco/smartread/pkg/eventstream"
)

// DefaultMaxSize is the record bound used when WithMaxSize is not given.
const DefaultMaxSize = 1000

// Option configures a Cache.
type Option func(*Cache)

// WithMaxSize bounds the number of content records. CacheContent trims down
// to n after every write. n <= 0 disables the bound.
func WithMaxSize(n int) Option {
	return func(c *Cache) {
		c.maxSize.Store(int64(n))
	}
}

// WithExpiry treats records older than d as misses in CheckDuplicate.
// Zero disables expiry.
func WithExpiry(d time.Duration) Option {
	return func(c *Cache) {
		c.expiry.Store(int64(d))
	}
}

func WithNotifier(n eventstream.Notifier) Option {
	return func(c *Cache) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithClock overrides time.Now for record timestamps and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}
