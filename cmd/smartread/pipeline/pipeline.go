// Package pipeline assembles the smartread components from a config.Config.
// The serve command builds one Pipeline for the life of the process; the
// one-shot CLI commands build one per invocation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/papercomputeco/smartread/cmd/smartread/sqlitepath"
	"github.com/papercomputeco/smartread/pkg/config"
	"github.com/papercomputeco/smartread/pkg/credentials"
	"github.com/papercomputeco/smartread/pkg/dedup"
	embeddingutils "github.com/papercomputeco/smartread/pkg/embeddings/utils"
	"github.com/papercomputeco/smartread/pkg/eventstream"
	"github.com/papercomputeco/smartread/pkg/eventstream/kafka"
	"github.com/papercomputeco/smartread/pkg/eventstream/nop"
	"github.com/papercomputeco/smartread/pkg/ingest"
	kvutils "github.com/papercomputeco/smartread/pkg/kv/utils"
	"github.com/papercomputeco/smartread/pkg/llm"
	llmutils "github.com/papercomputeco/smartread/pkg/llm/utils"
	"github.com/papercomputeco/smartread/pkg/logger"
	"github.com/papercomputeco/smartread/pkg/memory"
	memoryutils "github.com/papercomputeco/smartread/pkg/memory/utils"
	"github.com/papercomputeco/smartread/pkg/rephrase"
	"github.com/papercomputeco/smartread/pkg/retrieval"
	"github.com/papercomputeco/smartread/pkg/session"
	"github.com/papercomputeco/smartread/pkg/topics"
)

// Options selects which parts of the pipeline New builds.
type Options struct {
	Config *config.Config

	// ConfigDir overrides the .smartread/ directory used for credentials
	// and default database paths.
	ConfigDir string

	// Generator replaces the configured LLM provider.
	Generator llm.Generator

	// Memories replaces the configured memory store.
	Memories memory.Store

	// SkipGenerator leaves Ingester and Rephraser nil. Commands that only
	// touch the dedup cache or the memory store use it so they do not need
	// provider credentials.
	SkipGenerator bool

	// SkipMemory leaves Memories, Ingester and Rephraser nil.
	SkipMemory bool

	Logger *slog.Logger
}

// Pipeline holds the constructed components. Fields that were skipped are
// nil.
type Pipeline struct {
	Config    *config.Config
	Dedup     *dedup.Cache
	Events    *eventstream.Dispatcher
	Memories  memory.Store
	Generator llm.Generator
	Retriever *retrieval.Retriever
	Ingester  *ingest.Ingester
	Rephraser *rephrase.Rephraser
	Sessions  *session.Registry

	logger  *slog.Logger
	closers []io.Closer
}

// New builds a Pipeline. On error everything constructed so far is closed.
func New(ctx context.Context, o Options) (*Pipeline, error) {
	cfg := o.Config
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	log := o.Logger
	if log == nil {
		log = logger.Nop()
	}

	p := &Pipeline{
		Config:   cfg,
		Sessions: session.NewRegistry(cfg.Server.SessionCacheSize),
		logger:   log,
	}
	if err := p.build(ctx, o); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

func (p *Pipeline) build(ctx context.Context, o Options) error {
	log := p.logger

	if err := p.buildEvents(); err != nil {
		return err
	}

	if err := p.buildDedup(ctx, o.ConfigDir); err != nil {
		return err
	}

	if o.SkipMemory {
		return nil
	}

	creds, credErr := credentials.NewManager(o.ConfigDir)
	if credErr != nil {
		log.Warn("credentials unavailable, falling back to environment", "error", credErr)
		creds = nil
	}

	if err := p.buildMemories(ctx, o, creds); err != nil {
		return err
	}

	if o.SkipGenerator {
		return nil
	}

	if err := p.buildGenerator(ctx, o, creds); err != nil {
		return err
	}

	userID := p.Config.Memory.UserID
	p.Retriever = retrieval.New(
		topics.New(p.Generator, topics.WithLogger(log)),
		p.Memories,
		retrieval.WithUserID(userID),
		retrieval.WithLogger(log),
	)
	p.Rephraser = rephrase.New(p.Retriever, p.Generator,
		rephrase.WithNotifier(p.Events),
		rephrase.WithLogger(log),
	)
	p.Ingester = ingest.New(p.Dedup, p.Generator, p.Memories,
		ingest.WithUserID(userID),
		ingest.WithNotifier(p.Events),
		ingest.WithLogger(log),
	)

	return nil
}

// RephraseDefaults returns the configured per-request rephrase defaults.
func (p *Pipeline) RephraseDefaults() rephrase.Options {
	return RephraseOptions(p.Config)
}

// RephraseOptions maps the [rephrase] config section onto rephrase.Options,
// keeping the built-in default for a non-positive max_memories.
func RephraseOptions(cfg *config.Config) rephrase.Options {
	opts := rephrase.DefaultOptions()
	if cfg.Rephrase.MaxMemories > 0 {
		opts.MaxMemories = cfg.Rephrase.MaxMemories
	}
	opts.RelevanceThreshold = cfg.Rephrase.RelevanceThreshold
	return opts
}

// Close releases every component in reverse construction order. The event
// dispatcher is drained last so late notifications still reach publishers.
func (p *Pipeline) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	p.closers = nil
	return errors.Join(errs...)
}

func (p *Pipeline) buildEvents() error {
	ec := p.Config.Events

	var publisher eventstream.Publisher = nop.NewPublisher()
	if len(ec.KafkaBrokers) > 0 {
		kp, err := kafka.NewPublisher(kafka.Config{
			Brokers: ec.KafkaBrokers,
			Topic:   ec.KafkaTopic,
		})
		if err != nil {
			return fmt.Errorf("creating kafka publisher: %w", err)
		}
		publisher = kp
		p.logger.Info("publishing events to kafka", "brokers", ec.KafkaBrokers, "topic", ec.KafkaTopic)
	}

	d, err := eventstream.NewDispatcher(&eventstream.DispatcherConfig{
		Publishers:  []eventstream.Publisher{publisher},
		NumWorkers:  uint(max(ec.Workers, 0)),
		QueueSize:   uint(max(ec.Buffer, 0)),
		HistorySize: ec.History,
		Logger:      p.logger,
	})
	if err != nil {
		_ = publisher.Close()
		return fmt.Errorf("creating event dispatcher: %w", err)
	}

	d.SubscribeAll(func(_ context.Context, e *eventstream.Event) {
		p.logger.Debug("event", "kind", e.Kind, "event_id", e.EventID, "payload", e.Payload)
	})

	p.Events = d
	p.closers = append(p.closers, d)
	return nil
}

func (p *Pipeline) buildDedup(ctx context.Context, configDir string) error {
	sc := p.Config.Storage

	sqlitePath := sc.SQLitePath
	if sc.Driver == "" || sc.Driver == "sqlite" {
		var err error
		sqlitePath, err = sqlitepath.Resolve(sc.SQLitePath, configDir, sqlitepath.DedupFile)
		if err != nil {
			return fmt.Errorf("resolving dedup database: %w", err)
		}
	}

	store, err := kvutils.NewStore(ctx, &kvutils.NewStoreOpts{
		Driver:      sc.Driver,
		SQLitePath:  sqlitePath,
		PostgresDSN: sc.PostgresDSN,
		LibSQLDSN:   sc.LibSQLDSN,
	})
	if err != nil {
		return fmt.Errorf("creating dedup storage: %w", err)
	}

	p.Dedup = dedup.New(store,
		dedup.WithMaxSize(p.Config.Dedup.MaxCacheSize),
		dedup.WithExpiry(p.Config.Dedup.Expiry()),
		dedup.WithNotifier(p.Events),
		dedup.WithLogger(p.logger),
	)
	p.closers = append(p.closers, p.Dedup)
	p.logger.Debug("dedup cache ready", "driver", sc.Driver, "sqlite_path", sqlitePath)
	return nil
}

func (p *Pipeline) buildMemories(ctx context.Context, o Options, creds *credentials.Manager) error {
	if o.Memories != nil {
		p.Memories = o.Memories
		return nil
	}

	ec := p.Config.Embedding
	mc := p.Config.Memory

	embedKey := ""
	if ec.Provider == "openai" {
		var err error
		embedKey, err = creds.Resolve("openai", "")
		if err != nil {
			return fmt.Errorf("resolving openai credentials: %w", err)
		}
	}

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: ec.Provider,
		TargetURL:    ec.Target,
		Model:        ec.Model,
		APIKey:       embedKey,
		Dimensions:   int(ec.Dimensions),
	})
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	if embedder != nil {
		p.closers = append(p.closers, embedder)
	}

	opts := &memoryutils.NewStoreOpts{
		Provider:   mc.Provider,
		Embedder:   embedder,
		Dimensions: ec.Dimensions,
		QdrantHost: mc.QdrantHost,
		QdrantPort: mc.QdrantPort,
		Collection: mc.Collection,
		Logger:     p.logger,
	}

	switch mc.Provider {
	case "qdrant":
		opts.QdrantAPIKey, err = creds.Resolve("qdrant", "")
		if err != nil {
			return fmt.Errorf("resolving qdrant credentials: %w", err)
		}
	case "sqlitevec":
		opts.SQLitePath, err = sqlitepath.Resolve(mc.SQLitePath, o.ConfigDir, sqlitepath.MemoryFile)
		if err != nil {
			return fmt.Errorf("resolving memory database: %w", err)
		}
	}

	store, err := memoryutils.NewStore(ctx, opts)
	if err != nil {
		return fmt.Errorf("creating memory store: %w", err)
	}

	p.Memories = store
	p.closers = append(p.closers, store)
	p.logger.Debug("memory store ready", "provider", mc.Provider, "embedding", ec.Provider)
	return nil
}

func (p *Pipeline) buildGenerator(ctx context.Context, o Options, creds *credentials.Manager) error {
	if o.Generator != nil {
		p.Generator = o.Generator
		return nil
	}

	lc := p.Config.LLM
	gen, closer, err := llmutils.NewGenerator(ctx, &llmutils.NewGeneratorOpts{
		Provider:    lc.Provider,
		Model:       lc.Model,
		BaseURL:     lc.BaseURL,
		Credentials: creds,
	})
	if err != nil {
		return fmt.Errorf("creating %s generator: %w", lc.Provider, err)
	}

	p.Generator = gen
	p.closers = append(p.closers, closer)
	p.logger.Debug("generator ready", "provider", lc.Provider, "model", lc.Model)
	return nil
}

// Builder constructs a Pipeline. Commands hold one so tests can substitute
// fakes for the configured providers.
type Builder func(ctx context.Context, o Options) (*Pipeline, error)
