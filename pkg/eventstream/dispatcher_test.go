package eventstream_test

import (
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/smartread/pkg/eventstream"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*eventstream.Event
	err    error
	closed bool
}

func (p *recordingPublisher) Publish(_ context.Context, e *eventstream.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

var _ = Describe("Dispatcher", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("delivers to kind subscribers, catch-all subscribers and publishers", func() {
		pub := &recordingPublisher{}
		d, err := eventstream.NewDispatcher(&eventstream.DispatcherConfig{
			Publishers: []eventstream.Publisher{pub},
		})
		Expect(err).NotTo(HaveOccurred())

		var (
			mu   sync.Mutex
			hits int
			all  []eventstream.Kind
		)
		d.Subscribe(eventstream.KindDedupHit, func(_ context.Context, _ *eventstream.Event) {
			mu.Lock()
			defer mu.Unlock()
			hits++
		})
		d.SubscribeAll(func(_ context.Context, e *eventstream.Event) {
			mu.Lock()
			defer mu.Unlock()
			all = append(all, e.Kind)
		})

		d.Notify(ctx, eventstream.KindDedupHit, map[string]any{"fingerprint": "a"})
		d.Notify(ctx, eventstream.KindDedupMiss, nil)
		Expect(d.Close()).To(Succeed())

		Expect(hits).To(Equal(1))
		Expect(all).To(ConsistOf(eventstream.KindDedupHit, eventstream.KindDedupMiss))
		Expect(pub.count()).To(Equal(2))
		Expect(pub.closed).To(BeTrue())
	})

	It("keeps delivering when a publisher fails or a handler panics", func() {
		pub := &recordingPublisher{err: errors.New("broker down")}
		d, err := eventstream.NewDispatcher(&eventstream.DispatcherConfig{
			Publishers: []eventstream.Publisher{pub},
			NumWorkers: 1,
		})
		Expect(err).NotTo(HaveOccurred())

		d.SubscribeAll(func(context.Context, *eventstream.Event) { panic("boom") })

		d.Notify(ctx, eventstream.KindRephraseFailed, nil)
		d.Notify(ctx, eventstream.KindRephraseSuccess, nil)
		Expect(d.Close()).To(Succeed())

		Expect(pub.count()).To(Equal(2))
	})

	It("never blocks when the queue is full", func() {
		release := make(chan struct{})
		d, err := eventstream.NewDispatcher(&eventstream.DispatcherConfig{
			NumWorkers: 1,
			QueueSize:  1,
		})
		Expect(err).NotTo(HaveOccurred())

		started := make(chan struct{}, 1)
		d.SubscribeAll(func(context.Context, *eventstream.Event) {
			select {
			case started <- struct{}{}:
			default:
			}
			<-release
		})

		Expect(d.Enqueue(eventstream.NewEvent(eventstream.KindDedupMiss, nil))).To(BeTrue())
		Eventually(started).Should(Receive())

		// The worker is parked; one slot in the queue, then drops.
		Expect(d.Enqueue(eventstream.NewEvent(eventstream.KindDedupMiss, nil))).To(BeTrue())
		Expect(d.Enqueue(eventstream.NewEvent(eventstream.KindDedupMiss, nil))).To(BeFalse())

		close(release)
		Expect(d.Close()).To(Succeed())
	})

	It("drops events after Close", func() {
		d, err := eventstream.NewDispatcher(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Close()).To(Succeed())
		Expect(d.Close()).To(Succeed())

		Expect(d.Enqueue(eventstream.NewEvent(eventstream.KindDedupHit, nil))).To(BeFalse())
	})

	Describe("History", func() {
		It("keeps the most recent events in emission order", func() {
			d, err := eventstream.NewDispatcher(&eventstream.DispatcherConfig{HistorySize: 3})
			Expect(err).NotTo(HaveOccurred())
			defer d.Close()

			for _, k := range eventstream.Kinds() {
				d.Notify(ctx, k, nil)
			}

			kinds := func(events []*eventstream.Event) []eventstream.Kind {
				out := make([]eventstream.Kind, 0, len(events))
				for _, e := range events {
					out = append(out, e.Kind)
				}
				return out
			}

			Expect(kinds(d.History(0))).To(Equal([]eventstream.Kind{
				eventstream.KindMemoryAddDuplicate,
				eventstream.KindRephraseSuccess,
				eventstream.KindRephraseFailed,
			}))
			Expect(kinds(d.History(1))).To(Equal([]eventstream.Kind{eventstream.KindRephraseFailed}))
		})

		It("can be disabled", func() {
			d, err := eventstream.NewDispatcher(&eventstream.DispatcherConfig{HistorySize: -1})
			Expect(err).NotTo(HaveOccurred())
			defer d.Close()

			d.Notify(ctx, eventstream.KindDedupHit, nil)
			Expect(d.History(0)).To(BeEmpty())
		})
	})
})
