package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/account"
	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/lead"
	"github.com/vantagecrm/vantage/pkg/eventbus"
	"github.com/vantagecrm/vantage/pkg/outbox"
	"github.com/vantagecrm/vantage/pkg/repo"
)

type recordingPublisher struct {
	messages []outbox.Message
	err      error
}

func (p *recordingPublisher) Enqueue(_ context.Context, _ repo.Tx, _ pgx.Identifier, msg outbox.Message) (int64, error) {
	if p.err != nil {
		return 0, p.err
	}
	p.messages = append(p.messages, msg)
	return int64(len(p.messages)), nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func dispatchHandler(pub outbox.Publisher) (*AssignmentDispatchHandler, eventbus.EventBus) {
	h := &AssignmentDispatchHandler{publisher: pub, logger: quietLogger()}
	bus := eventbus.NewEventPublisher(quietLogger())
	bus.Subscribe(h.onAccountCreated)
	bus.Subscribe(h.onLeadCreated)
	bus.Subscribe(h.onCaseCreated)
	return h, bus
}

func TestDispatchHandler_EnqueuesOnCreate(t *testing.T) {
	pub := &recordingPublisher{}
	_, bus := dispatchHandler(pub)

	tenantID := uuid.New()
	acc := account.New(tenantID, "Acme")
	bus.Publish(account.CreatedEvent{Result: acc})

	require.Len(t, pub.messages, 1)
	msg := pub.messages[0]
	require.Equal(t, tenantID, msg.TenantID)
	require.Equal(t, TopicAssignmentEvaluate, msg.Topic)
	require.NotEqual(t, uuid.Nil, msg.EventID)

	var payload AssignmentEvaluateMessage
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	require.Equal(t, "accounts.Account", payload.RecordType)
	require.Equal(t, acc.ID(), payload.RecordID)
}

func TestDispatchHandler_IgnoresUpdates(t *testing.T) {
	pub := &recordingPublisher{}
	_, bus := dispatchHandler(pub)

	tenantID := uuid.New()
	bus.Publish(account.UpdatedEvent{Result: account.New(tenantID, "Acme")})
	bus.Publish(lead.UpdatedEvent{Result: lead.New(tenantID, "Globex")})

	require.Empty(t, pub.messages)
}

func TestDispatchHandler_EnqueueFailureOnlyWarns(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("connection refused")}
	_, bus := dispatchHandler(pub)

	// Publish must not panic and the event flow must continue.
	bus.Publish(account.CreatedEvent{Result: account.New(uuid.New(), "Acme")})

	require.Empty(t, pub.messages)
}

func TestEvaluateHandler_IgnoresOtherTopics(t *testing.T) {
	h := &AssignmentEvaluateHandler{logger: quietLogger()}

	require.NoError(t, h.onOutboxMessage(&outbox.Meta{TenantID: uuid.New()}, "crm.other.v1", nil))
	require.NoError(t, h.onOutboxMessage(nil, TopicAssignmentEvaluate, nil))
}

func TestEvaluateHandler_RejectsMalformedPayload(t *testing.T) {
	h := &AssignmentEvaluateHandler{logger: quietLogger()}

	err := h.onOutboxMessage(&outbox.Meta{TenantID: uuid.New()}, TopicAssignmentEvaluate, json.RawMessage(`{`))
	require.Error(t, err)
}
