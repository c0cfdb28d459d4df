// Package nop provides the publisher used when no event backend is
// configured. The dispatcher still keeps history and feeds subscribers.
package nop

import (
	"context"

	"github.com/papercomputeco/smartread/pkg/eventstream"
)

// Publisher drops every event it is given.
type Publisher struct{}

func NewPublisher() *Publisher {
	return &Publisher{}
}

// Publish rejects nil events and drops the rest.
func (*Publisher) Publish(_ context.Context, event *eventstream.Event) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	return nil
}

func (*Publisher) Close() error { return nil }
