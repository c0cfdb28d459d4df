// Package qdrant provides a memory.Store backed by a Qdrant collection over
// gRPC.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	qc "github.com/qdrant/go-client/qdrant"

	"github.com/papercomputeco/smartread/pkg/embeddings"
	"github.com/papercomputeco/smartread/pkg/logger"
	"github.com/papercomputeco/smartread/pkg/memory"
)

const (
	DefaultHost       = "localhost"
	DefaultPort       = 6334
	DefaultCollection = "smart_read_memories"

	payloadUserID    = "user_id"
	payloadText      = "text"
	payloadMetadata  = "metadata"
	payloadCreatedAt = "created_at"

	scrollPageSize = 256
)

// Config holds configuration for the Qdrant memory store.
type Config struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string

	// Dimensions is the vector size used when the collection is created.
	Dimensions uint

	Embedder embeddings.Embedder
	Logger   *slog.Logger
}

// client is the subset of *qc.Client the store uses.
type client interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qc.CreateCollection) error
	Upsert(ctx context.Context, request *qc.UpsertPoints) (*qc.UpdateResult, error)
	Query(ctx context.Context, request *qc.QueryPoints) ([]*qc.ScoredPoint, error)
	Count(ctx context.Context, request *qc.CountPoints) (uint64, error)
	Delete(ctx context.Context, request *qc.DeletePoints) (*qc.UpdateResult, error)
	ScrollPage(ctx context.Context, request *qc.ScrollPoints) ([]*qc.RetrievedPoint, *qc.PointId, error)
	Close() error
}

// grpcClient adds offset-aware scrolling on top of the high-level client.
type grpcClient struct {
	*qc.Client
}

func (c grpcClient) ScrollPage(ctx context.Context, request *qc.ScrollPoints) ([]*qc.RetrievedPoint, *qc.PointId, error) {
	resp, err := c.GetPointsClient().Scroll(ctx, request)
	if err != nil {
		return nil, nil, err
	}
	return resp.GetResult(), resp.GetNextPageOffset(), nil
}

// Store implements memory.Store on a Qdrant collection. Every point carries
// the owning user id in its payload and all reads filter on it.
type Store struct {
	client     client
	collection string
	embedder   embeddings.Embedder
	logger     *slog.Logger
	now        func() time.Time
}

// NewStore connects to Qdrant and creates the collection (cosine distance)
// when it does not exist.
func NewStore(ctx context.Context, c Config) (*Store, error) {
	if c.Embedder == nil {
		return nil, errors.New("qdrant memory store requires an embedder")
	}
	if c.Dimensions == 0 {
		return nil, errors.New("qdrant embedding dimensions cannot be 0, must be configured")
	}

	host := c.Host
	if host == "" {
		host = DefaultHost
	}
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}

	qclient, err := qc.NewClient(&qc.Config{
		Host:   host,
		Port:   port,
		APIKey: c.APIKey,
		UseTLS: c.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant at %s:%d: %w", host, port, err)
	}

	s, err := newStore(ctx, grpcClient{qclient}, c)
	if err != nil {
		qclient.Close()
		return nil, err
	}
	return s, nil
}

func newStore(ctx context.Context, cl client, c Config) (*Store, error) {
	collection := c.Collection
	if collection == "" {
		collection = DefaultCollection
	}
	log := c.Logger
	if log == nil {
		log = logger.Nop()
	}

	exists, err := cl.CollectionExists(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("checking qdrant collection %s: %w", collection, err)
	}
	if !exists {
		err := cl.CreateCollection(ctx, &qc.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qc.NewVectorsConfig(&qc.VectorParams{
				Size:     uint64(c.Dimensions),
				Distance: qc.Distance_Cosine,
			}),
		})
		if err != nil {
			return nil, fmt.Errorf("creating qdrant collection %s: %w", collection, err)
		}
		log.Info("created qdrant collection", "collection", collection, "dimensions", c.Dimensions)
	}

	return &Store{
		client:     cl,
		collection: collection,
		embedder:   c.Embedder,
		logger:     log,
		now:        time.Now,
	}, nil
}

func (s *Store) Write(ctx context.Context, text, userID string, metadata map[string]any) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", memory.ErrEmptyText
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("embedding memory: %w", err)
	}

	payload, err := qc.TryValueMap(map[string]any{
		payloadUserID:    userID,
		payloadText:      text,
		payloadMetadata:  normalizeMetadata(metadata),
		payloadCreatedAt: s.now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return "", fmt.Errorf("encoding payload: %w", err)
	}

	id := uuid.NewString()
	_, err = s.client.Upsert(ctx, &qc.UpsertPoints{
		CollectionName: s.collection,
		Wait:           qc.PtrOf(true),
		Points: []*qc.PointStruct{{
			Id:      qc.NewID(id),
			Vectors: qc.NewVectors(vec...),
			Payload: payload,
		}},
	})
	if err != nil {
		return "", fmt.Errorf("upserting memory: %w", err)
	}

	s.logger.Debug("wrote memory to qdrant", "id", id, "user_id", userID)
	return id, nil
}

func (s *Store) Search(ctx context.Context, query, userID string, limit int) ([]memory.Memory, error) {
	if limit <= 0 {
		return nil, nil
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	points, err := s.client.Query(ctx, &qc.QueryPoints{
		CollectionName: s.collection,
		Query:          qc.NewQuery(vec...),
		Filter:         userFilter(userID),
		Limit:          qc.PtrOf(uint64(limit)),
		WithPayload:    qc.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying qdrant: %w", err)
	}

	out := make([]memory.Memory, 0, len(points))
	for _, p := range points {
		m := toMemory(p.GetId(), p.GetPayload())
		m.Score = float64(p.GetScore())
		out = append(out, m)
	}
	return out, nil
}

// List scrolls the whole collection for userID and returns memories oldest
// first.
func (s *Store) List(ctx context.Context, userID string) ([]memory.Memory, error) {
	var (
		out    []memory.Memory
		offset *qc.PointId
	)
	for {
		points, next, err := s.client.ScrollPage(ctx, &qc.ScrollPoints{
			CollectionName: s.collection,
			Filter:         userFilter(userID),
			Limit:          qc.PtrOf(uint32(scrollPageSize)),
			Offset:         offset,
			WithPayload:    qc.NewWithPayload(true),
		})
		if err != nil {
			return nil, fmt.Errorf("scrolling qdrant: %w", err)
		}
		for _, p := range points {
			out = append(out, toMemory(p.GetId(), p.GetPayload()))
		}
		if next == nil || len(points) == 0 {
			break
		}
		offset = next
	}

	slices.SortStableFunc(out, func(a, b memory.Memory) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (s *Store) DeleteAll(ctx context.Context, userID string) (int, error) {
	n, err := s.client.Count(ctx, &qc.CountPoints{
		CollectionName: s.collection,
		Filter:         userFilter(userID),
		Exact:          qc.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("counting qdrant points: %w", err)
	}
	if n == 0 {
		return 0, nil
	}

	_, err = s.client.Delete(ctx, &qc.DeletePoints{
		CollectionName: s.collection,
		Wait:           qc.PtrOf(true),
		Points:         qc.NewPointsSelectorFilter(userFilter(userID)),
	})
	if err != nil {
		return 0, fmt.Errorf("deleting qdrant points: %w", err)
	}
	return int(n), nil
}

func (s *Store) Close() error {
	if err := s.embedder.Close(); err != nil {
		s.logger.Warn("closing embedder", "error", err)
	}
	return s.client.Close()
}

func userFilter(userID string) *qc.Filter {
	return &qc.Filter{
		Must: []*qc.Condition{qc.NewMatch(payloadUserID, userID)},
	}
}

func toMemory(id *qc.PointId, payload map[string]*qc.Value) memory.Memory {
	m := memory.Memory{
		ID:   pointID(id),
		Text: payload[payloadText].GetStringValue(),
	}

	if meta, ok := valueToAny(payload[payloadMetadata]).(map[string]any); ok && len(meta) > 0 {
		m.Metadata = meta
	}
	if ts := payload[payloadCreatedAt].GetStringValue(); ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			m.CreatedAt = t
		}
	}
	return m
}

func pointID(id *qc.PointId) string {
	if id == nil {
		return ""
	}
	if u := id.GetUuid(); u != "" {
		return u
	}
	return fmt.Sprintf("%d", id.GetNum())
}

// valueToAny converts a payload value back into plain Go values. Integers
// come back as int64.
func valueToAny(v *qc.Value) any {
	if v == nil {
		return nil
	}
	switch k := v.GetKind().(type) {
	case *qc.Value_StringValue:
		return k.StringValue
	case *qc.Value_IntegerValue:
		return k.IntegerValue
	case *qc.Value_DoubleValue:
		return k.DoubleValue
	case *qc.Value_BoolValue:
		return k.BoolValue
	case *qc.Value_StructValue:
		fields := k.StructValue.GetFields()
		out := make(map[string]any, len(fields))
		for name, fv := range fields {
			out[name] = valueToAny(fv)
		}
		return out
	case *qc.Value_ListValue:
		values := k.ListValue.GetValues()
		out := make([]any, 0, len(values))
		for _, lv := range values {
			out = append(out, valueToAny(lv))
		}
		return out
	default:
		return nil
	}
}

// normalizeMetadata converts values TryValueMap cannot encode into strings.
func normalizeMetadata(meta map[string]any) map[string]any {
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		switch t := v.(type) {
		case time.Time:
			out[k] = t.UTC().Format(time.RFC3339Nano)
		case fmt.Stringer:
			out[k] = t.String()
		default:
			out[k] = v
		}
	}
	return out
}

var _ memory.Store = (*Store)(nil)
