// Package eventbus bridges outbox deliveries onto the in-process
// event bus so workers subscribe with plain typed handlers.
package eventbus

import (
	"context"

	"github.com/vantagecrm/vantage/pkg/eventbus"
	"github.com/vantagecrm/vantage/pkg/outbox"
)

type Dispatcher struct {
	bus eventbus.EventBusWithError
}

func New(bus eventbus.EventBusWithError) *Dispatcher {
	return &Dispatcher{bus: bus}
}

// Dispatch publishes the message to the bus. Handler errors propagate
// back to the relay so delivery is retried.
func (d *Dispatcher) Dispatch(_ context.Context, msg outbox.DispatchedMessage) error {
	return d.bus.PublishE(&msg.Meta, msg.Meta.Topic, msg.Payload)
}
