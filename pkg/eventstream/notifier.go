package eventstream

import "context"

// Notifier observes pipeline outcomes. Implementations must return quickly
// and must not fail the caller: a notification never changes the result of
// the operation that emitted it.
type Notifier interface {
	Notify(ctx context.Context, kind Kind, payload map[string]any)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, kind Kind, payload map[string]any)

func (f NotifierFunc) Notify(ctx context.Context, kind Kind, payload map[string]any) {
	f(ctx, kind, payload)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Kind, map[string]any) {}

// Nop returns a Notifier that drops every notification.
func Nop() Notifier {
	return nopNotifier{}
}
