// Package outbox implements a postgres-backed transactional outbox.
// Producers enqueue messages in the same transaction as their domain
// writes; a relay claims unpublished rows with FOR UPDATE SKIP LOCKED
// and hands them to a Dispatcher, retrying with exponential backoff
// until the attempt budget is exhausted.
package outbox

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Message is the unit stored in an outbox table.
type Message struct {
	TenantID uuid.UUID
	Topic    string
	EventID  uuid.UUID
	Payload  json.RawMessage
}

// Meta is the stable dispatch metadata carried with every delivery.
type Meta struct {
	Table    pgx.Identifier
	TenantID uuid.UUID
	Topic    string
	EventID  uuid.UUID
	Sequence int64
	Attempts int
}

// DispatchedMessage is the unit delivered by Relay to a Dispatcher.
type DispatchedMessage struct {
	Meta    Meta
	Payload json.RawMessage
}

// Dispatcher consumes claimed messages. A returned error triggers a
// retry with backoff; nil acknowledges the message.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg DispatchedMessage) error
}
