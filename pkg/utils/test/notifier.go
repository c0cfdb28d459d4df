package testutils

import (
	"context"
	"maps"
	"sync"

	"github.com/papercomputeco/smartread/pkg/eventstream"
)

// Notification is one call recorded by RecordingNotifier.
type Notification struct {
	Kind    eventstream.Kind
	Payload map[string]any
}

// RecordingNotifier records every notification it receives.
type RecordingNotifier struct {
	mu     sync.Mutex
	events []Notification
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (r *RecordingNotifier) Notify(_ context.Context, kind eventstream.Kind, payload map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Notification{Kind: kind, Payload: maps.Clone(payload)})
}

// Events returns a copy of the recorded notifications in order.
func (r *RecordingNotifier) Events() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the recorded kinds in order.
func (r *RecordingNotifier) Kinds() []eventstream.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]eventstream.Kind, 0, len(r.events))
	for _, e := range r.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

// Count returns how many notifications of kind were recorded.
func (r *RecordingNotifier) Count(kind eventstream.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func (r *RecordingNotifier) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
