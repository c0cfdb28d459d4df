package eventstream

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/papercomputeco/smartread/pkg/logger"
)

var (
	defaultNumWorkers  uint = 2
	defaultQueueSize   uint = 256
	defaultHistorySize      = 100
)

// Handler receives delivered events on a dispatcher worker goroutine.
type Handler func(ctx context.Context, event *Event)

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	// Publishers receive every event after the subscribers.
	Publishers []Publisher

	// NumWorkers is the number of delivery goroutines (defaults to 2).
	NumWorkers uint

	// QueueSize is the capacity of the buffered event channel (defaults to 256).
	QueueSize uint

	// HistorySize bounds the in-memory event history (defaults to 100).
	// Negative values disable history.
	HistorySize int

	Logger *slog.Logger
}

// Dispatcher is a Notifier that queues events and delivers them
// asynchronously to subscribers and publishers. Notify never blocks: when
// the queue is full the event is dropped and logged.
type Dispatcher struct {
	config *DispatcherConfig
	queue  chan *Event
	wg     sync.WaitGroup
	logger *slog.Logger

	closeMu sync.RWMutex
	closed  bool

	subMu sync.RWMutex
	subs  map[Kind][]Handler
	all   []Handler

	histMu  sync.Mutex
	history []*Event
}

// NewDispatcher creates a Dispatcher and starts its workers.
func NewDispatcher(c *DispatcherConfig) (*Dispatcher, error) {
	if c == nil {
		c = &DispatcherConfig{}
	}
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}
	if c.QueueSize == 0 {
		c.QueueSize = defaultQueueSize
	}
	if c.HistorySize == 0 {
		c.HistorySize = defaultHistorySize
	}
	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	d := &Dispatcher{
		config: c,
		queue:  make(chan *Event, c.QueueSize),
		logger: c.Logger,
		subs:   make(map[Kind][]Handler),
	}

	d.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go d.worker(i)
	}

	return d, nil
}

// Subscribe registers h for events of the given kind.
func (d *Dispatcher) Subscribe(kind Kind, h Handler) {
	d.subMu.Lock()
	defer d.subMu.Unlock()
	d.subs[kind] = append(d.subs[kind], h)
}

// SubscribeAll registers h for every event.
func (d *Dispatcher) SubscribeAll(h Handler) {
	d.subMu.Lock()
	defer d.subMu.Unlock()
	d.all = append(d.all, h)
}

// Notify records the event in history and queues it for delivery.
func (d *Dispatcher) Notify(_ context.Context, kind Kind, payload map[string]any) {
	d.Enqueue(NewEvent(kind, payload))
}

// Enqueue queues an already-built event. Returns true if enqueued, false if
// the dispatcher is closed or the queue is full, resulting in the event
// being dropped.
func (d *Dispatcher) Enqueue(event *Event) bool {
	d.closeMu.RLock()
	defer d.closeMu.RUnlock()

	if d.closed {
		d.logger.Warn("event dropped, dispatcher closed", "kind", event.Kind)
		return false
	}

	d.record(event)

	select {
	case d.queue <- event:
		return true
	default:
		d.logger.Warn("event dropped, queue full", "kind", event.Kind, "event_id", event.EventID)
		return false
	}
}

// History returns up to limit of the most recent events, newest last.
// limit <= 0 returns the whole retained history.
func (d *Dispatcher) History(limit int) []*Event {
	d.histMu.Lock()
	defer d.histMu.Unlock()

	start := 0
	if limit > 0 && limit < len(d.history) {
		start = len(d.history) - limit
	}

	out := make([]*Event, len(d.history)-start)
	copy(out, d.history[start:])
	return out
}

// Close stops accepting events, drains the queue and closes publishers.
// Call this during graceful shutdown after the HTTP server has stopped.
func (d *Dispatcher) Close() error {
	d.closeMu.Lock()
	if d.closed {
		d.closeMu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.closeMu.Unlock()

	d.wg.Wait()

	var firstErr error
	for _, p := range d.config.Publishers {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (d *Dispatcher) record(event *Event) {
	if d.config.HistorySize < 0 {
		return
	}

	d.histMu.Lock()
	defer d.histMu.Unlock()

	d.history = append(d.history, event)
	if over := len(d.history) - d.config.HistorySize; over > 0 {
		d.history = append(d.history[:0:0], d.history[over:]...)
	}
}

func (d *Dispatcher) worker(id uint) {
	defer d.wg.Done()
	d.logger.Debug("event worker started", "worker_id", id)

	for event := range d.queue {
		d.deliver(event)
	}

	d.logger.Debug("event worker stopped", "worker_id", id)
}

func (d *Dispatcher) deliver(event *Event) {
	ctx := context.Background()

	d.subMu.RLock()
	handlers := make([]Handler, 0, len(d.subs[event.Kind])+len(d.all))
	handlers = append(handlers, d.subs[event.Kind]...)
	handlers = append(handlers, d.all...)
	d.subMu.RUnlock()

	for _, h := range handlers {
		d.call(ctx, h, event)
	}

	for _, p := range d.config.Publishers {
		if err := p.Publish(ctx, event); err != nil {
			d.logger.Error("event publish failed",
				"kind", event.Kind,
				"event_id", event.EventID,
				"error", err,
			)
		}
	}
}

func (d *Dispatcher) call(ctx context.Context, h Handler, event *Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panicked", "kind", event.Kind, "panic", r)
		}
	}()
	h(ctx, event)
}
