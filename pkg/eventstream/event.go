package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1
)

// Kind names an observable pipeline outcome.
type Kind string

const (
	KindDedupHit           Kind = "dedup:hit"
	KindDedupMiss          Kind = "dedup:miss"
	KindMemoryAddSuccess   Kind = "memory:add:success"
	KindMemoryAddFailed    Kind = "memory:add:failed"
	KindMemoryAddDuplicate Kind = "memory:add:duplicate"
	KindRephraseSuccess    Kind = "rephrase:success"
	KindRephraseFailed     Kind = "rephrase:failed"
)

// Kinds lists every event kind in pipeline order.
func Kinds() []Kind {
	return []Kind{
		KindDedupHit,
		KindDedupMiss,
		KindMemoryAddSuccess,
		KindMemoryAddFailed,
		KindMemoryAddDuplicate,
		KindRephraseSuccess,
		KindRephraseFailed,
	}
}

// Event is a transport-neutral envelope for a pipeline notification.
type Event struct {
	SchemaVersion int            `json:"schema_version"`
	EventID       string         `json:"event_id"`
	Kind          Kind           `json:"kind"`
	EmittedAt     time.Time      `json:"emitted_at"`
	Payload       map[string]any `json:"payload,omitempty"`
}

// NewEvent stamps a new event with an id, the current time and the schema
// version.
func NewEvent(kind Kind, payload map[string]any) *Event {
	return &Event{
		SchemaVersion: SchemaVersionV1,
		EventID:       uuid.NewString(),
		Kind:          kind,
		EmittedAt:     time.Now().UTC(),
		Payload:       payload,
	}
}
