// Package dedup implements the content-addressed cache that prevents the same
// page content from being ingested twice.
package dedup

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/papercomputeco/smartread/pkg/eventstream"
	"github.com/papercomputeco/smartread/pkg/fingerprint"
	"github.com/papercomputeco/smartread/pkg/kv"
	"github.com/papercomputeco/smartread/pkg/logger"
)

// Cache is the deduplication cache. Content records live under
// dedup_cnt_<fingerprint>; dedup_url_<normalized source> points at the most
// recent fingerprint recorded for a source.
type Cache struct {
	store    kv.Store
	maxSize  atomic.Int64
	expiry   atomic.Int64
	notifier eventstream.Notifier
	now      func() time.Time
	logger   *slog.Logger

	// serializes write-then-trim so concurrent CacheContent calls do not
	// interleave their trims.
	writeMu sync.Mutex
}

// New creates a Cache on top of store.
func New(store kv.Store, opts ...Option) *Cache {
	c := &Cache{
		store:    store,
		notifier: eventstream.Nop(),
		now:      time.Now,
		logger:   logger.Nop(),
	}
	c.maxSize.Store(DefaultMaxSize)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxSize returns the configured record bound.
func (c *Cache) MaxSize() int {
	return int(c.maxSize.Load())
}

// SetMaxSize changes the record bound for subsequent writes.
func (c *Cache) SetMaxSize(n int) {
	c.maxSize.Store(int64(n))
}

// SetExpiry changes the expiry window. Zero disables expiry.
func (c *Cache) SetExpiry(d time.Duration) {
	c.expiry.Store(int64(d))
}

// CheckDuplicate returns the stored record for (text, sourceID), or nil when
// the content has not been processed. It never writes.
func (c *Cache) CheckDuplicate(ctx context.Context, text, sourceID string) (*Record, error) {
	fp, err := fingerprint.Fingerprint(text, sourceID)
	if err != nil {
		return nil, err
	}

	rec, err := c.load(ctx, contentKey(fp))
	if err != nil {
		return nil, err
	}

	if rec != nil && c.expired(rec) {
		c.logger.Debug("dedup record expired", "fingerprint", fp, "processed_at", rec.ProcessedAt)
		rec = nil
	}

	payload := map[string]any{"fingerprint": fp, "source_id": sourceID}
	if rec == nil {
		c.notifier.Notify(ctx, eventstream.KindDedupMiss, payload)
		return nil, nil
	}

	c.notifier.Notify(ctx, eventstream.KindDedupHit, payload)
	return rec, nil
}

// CheckSource returns the latest record cached for sourceID, regardless of
// content. It emits no events.
func (c *Cache) CheckSource(ctx context.Context, sourceID string) (*Record, error) {
	norm := fingerprint.NormalizeSource(sourceID)
	if norm == "" {
		return nil, fingerprint.ErrInvalidInput
	}

	fp, ok, err := c.store.Get(ctx, sourceKey(norm))
	if err != nil {
		return nil, fmt.Errorf("reading source index: %w", err)
	}
	if !ok {
		return nil, nil
	}

	rec, err := c.load(ctx, contentKey(string(fp)))
	if err != nil || rec == nil {
		return nil, err
	}
	if c.expired(rec) {
		return nil, nil
	}
	return rec, nil
}

// CacheContent records (text, sourceID) as processed. Repeating it for the
// same content overwrites the record with a fresh timestamp.
func (c *Cache) CacheContent(ctx context.Context, text, sourceID string, metadata map[string]any) error {
	fp, err := fingerprint.Fingerprint(text, sourceID)
	if err != nil {
		return err
	}

	rec := &Record{
		Fingerprint:   fp,
		SourceID:      sourceID,
		ProcessedAt:   c.now().UTC(),
		ContentLength: utf8.RuneCountInString(text),
		Metadata:      maps.Clone(metadata),
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding dedup record: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.store.Set(ctx, contentKey(fp), raw); err != nil {
		return fmt.Errorf("writing dedup record: %w", err)
	}
	if norm := fingerprint.NormalizeSource(sourceID); norm != "" {
		if err := c.store.Set(ctx, sourceKey(norm), []byte(fp)); err != nil {
			return fmt.Errorf("writing source index: %w", err)
		}
	}

	if maxSize := c.MaxSize(); maxSize > 0 {
		removed, err := c.trim(ctx, maxSize)
		if err != nil {
			return err
		}
		if len(removed) > 0 {
			c.logger.Debug("trimmed dedup cache", "removed", len(removed), "max_size", maxSize)
		}
	}
	return nil
}

// TrimCache deletes the oldest records until at most maxSize remain and
// returns the removed record keys. maxSize <= 0 is a no-op.
func (c *Cache) TrimCache(ctx context.Context, maxSize int) ([]string, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.trim(ctx, maxSize)
}

func (c *Cache) trim(ctx context.Context, maxSize int) ([]string, error) {
	if maxSize <= 0 {
		return nil, nil
	}

	records, err := c.records(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) <= maxSize {
		return nil, nil
	}

	keys := slices.Collect(maps.Keys(records))
	slices.SortFunc(keys, func(a, b string) int {
		if n := records[a].ProcessedAt.Compare(records[b].ProcessedAt); n != 0 {
			return n
		}
		return cmp.Compare(a, b)
	})

	evicted := keys[:len(keys)-maxSize]
	evictedFPs := make(map[string]struct{}, len(evicted))
	for _, k := range evicted {
		evictedFPs[strings.TrimPrefix(k, contentPrefix)] = struct{}{}
	}

	index, err := c.store.Scan(ctx, sourcePrefix)
	if err != nil {
		return nil, fmt.Errorf("scanning source index: %w", err)
	}

	toDelete := slices.Clone(evicted)
	for k, fp := range index {
		if _, ok := evictedFPs[string(fp)]; ok {
			toDelete = append(toDelete, k)
		}
	}

	if err := c.store.DeleteMany(ctx, toDelete); err != nil {
		return nil, fmt.Errorf("deleting dedup records: %w", err)
	}
	return evicted, nil
}

// Clear removes every record and index entry and returns the number of
// records removed.
func (c *Cache) Clear(ctx context.Context) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	content, err := c.store.Scan(ctx, contentPrefix)
	if err != nil {
		return 0, fmt.Errorf("scanning dedup records: %w", err)
	}
	index, err := c.store.Scan(ctx, sourcePrefix)
	if err != nil {
		return 0, fmt.Errorf("scanning source index: %w", err)
	}

	keys := slices.Collect(maps.Keys(content))
	keys = slices.AppendSeq(keys, maps.Keys(index))
	if len(keys) == 0 {
		return 0, nil
	}

	if err := c.store.DeleteMany(ctx, keys); err != nil {
		return 0, fmt.Errorf("clearing dedup cache: %w", err)
	}
	return len(content), nil
}

// Stats reports the record count and the processed-at range.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	records, err := c.records(ctx)
	if err != nil {
		return Stats{}, err
	}

	s := Stats{Records: len(records)}
	for _, rec := range records {
		t := rec.ProcessedAt
		if s.Oldest == nil || t.Before(*s.Oldest) {
			s.Oldest = &t
		}
		if s.Newest == nil || t.After(*s.Newest) {
			s.Newest = &t
		}
	}
	return s, nil
}

// Close closes the underlying store.
func (c *Cache) Close() error {
	return c.store.Close()
}

func (c *Cache) expired(rec *Record) bool {
	expiry := time.Duration(c.expiry.Load())
	return expiry > 0 && c.now().Sub(rec.ProcessedAt) > expiry
}

func (c *Cache) load(ctx context.Context, key string) (*Record, error) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("reading dedup record: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decoding dedup record %s: %w", key, err)
	}
	return &rec, nil
}

// records loads every content record keyed by its storage key. Entries that
// fail to decode are skipped and logged.
func (c *Cache) records(ctx context.Context) (map[string]*Record, error) {
	raw, err := c.store.Scan(ctx, contentPrefix)
	if err != nil {
		return nil, fmt.Errorf("scanning dedup records: %w", err)
	}

	out := make(map[string]*Record, len(raw))
	for k, v := range raw {
		var rec Record
		if err := json.Unmarshal(v, &rec); err != nil {
			c.logger.Warn("skipping undecodable dedup record", "key", k, "error", err)
			continue
		}
		out[k] = &rec
	}
	return out, nil
}
