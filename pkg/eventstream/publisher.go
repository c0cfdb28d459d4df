package eventstream

import "context"

// Publisher ships dispatched events to an external backend such as Kafka.
// The Dispatcher calls Publish from its workers; failures are logged there
// and never reach the code that raised the event.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}
