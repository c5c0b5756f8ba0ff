// Package handlers connects CRM domain events to the assignment
// pipeline: creation events are turned into outbox jobs, and outbox
// deliveries drive rule evaluation in the worker.
package handlers

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/account"
	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/kase"
	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/lead"
	"github.com/vantagecrm/vantage/modules/crm/services"
	"github.com/vantagecrm/vantage/pkg/application"
	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/outbox"
)

// TopicAssignmentEvaluate is the outbox topic for assignment jobs.
const TopicAssignmentEvaluate = "crm.assignment.evaluate.v1"

// OutboxTable is the CRM module's outbox table.
var OutboxTable = pgx.Identifier{"crm_outbox"}

// AssignmentEvaluateMessage is the outbox payload.
type AssignmentEvaluateMessage struct {
	RecordType string    `json:"record_type"`
	RecordID   uuid.UUID `json:"record_id"`
}

// AssignmentDispatchHandler listens for record creation and enqueues
// one assignment job per created record. Updates are ignored. The
// enqueue runs on its own pool connection, outside the creating
// transaction, which may still be open when the message lands; if the
// relay delivers before the record is visible, the evaluator's
// not-found error makes it retry. A failed enqueue is logged and
// dropped, it never fails the creation.
type AssignmentDispatchHandler struct {
	pool      *pgxpool.Pool
	publisher outbox.Publisher
	logger    *logrus.Logger
}

func RegisterAssignmentDispatchHandler(app application.Application, logger *logrus.Logger) *AssignmentDispatchHandler {
	h := &AssignmentDispatchHandler{
		pool:      app.DB(),
		publisher: outbox.NewPublisher(),
		logger:    logger,
	}
	bus := app.EventPublisher()
	bus.Subscribe(h.onAccountCreated)
	bus.Subscribe(h.onLeadCreated)
	bus.Subscribe(h.onCaseCreated)
	return h
}

func (h *AssignmentDispatchHandler) onAccountCreated(ev account.CreatedEvent) {
	h.enqueue(ev.Result.TenantID(), ev.Result.EntityType(), ev.Result.ID())
}

func (h *AssignmentDispatchHandler) onLeadCreated(ev lead.CreatedEvent) {
	h.enqueue(ev.Result.TenantID(), ev.Result.EntityType(), ev.Result.ID())
}

func (h *AssignmentDispatchHandler) onCaseCreated(ev kase.CreatedEvent) {
	h.enqueue(ev.Result.TenantID(), ev.Result.EntityType(), ev.Result.ID())
}

func (h *AssignmentDispatchHandler) enqueue(tenantID uuid.UUID, recordType string, recordID uuid.UUID) {
	payload, err := json.Marshal(AssignmentEvaluateMessage{
		RecordType: recordType,
		RecordID:   recordID,
	})
	if err != nil {
		h.logger.WithError(err).Warn("assignment: failed to encode job payload")
		return
	}

	_, err = h.publisher.Enqueue(context.Background(), h.pool, OutboxTable, outbox.Message{
		TenantID: tenantID,
		Topic:    TopicAssignmentEvaluate,
		EventID:  uuid.New(),
		Payload:  payload,
	})
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"record_type": recordType,
			"record_id":   recordID.String(),
			"tenant_id":   tenantID.String(),
		}).Warn("assignment: failed to enqueue job")
	}
}

// AssignmentEvaluateHandler consumes outbox deliveries in the worker
// and runs rule evaluation. Returned errors make the relay retry.
type AssignmentEvaluateHandler struct {
	svc    *services.AssignmentService
	pool   *pgxpool.Pool
	logger *logrus.Logger
}

func RegisterAssignmentEvaluateHandler(app application.Application, logger *logrus.Logger) *AssignmentEvaluateHandler {
	h := &AssignmentEvaluateHandler{
		svc:    app.Service(services.AssignmentService{}).(*services.AssignmentService),
		pool:   app.DB(),
		logger: logger,
	}
	app.EventPublisher().Subscribe(h.onOutboxMessage)
	return h
}

func (h *AssignmentEvaluateHandler) onOutboxMessage(meta *outbox.Meta, topic string, payload json.RawMessage) error {
	if topic != TopicAssignmentEvaluate || meta == nil {
		return nil
	}

	var msg AssignmentEvaluateMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return err
	}

	ctx := composables.WithPool(context.Background(), h.pool)
	ctx = composables.WithTenantID(ctx, meta.TenantID)

	owner, err := h.svc.Evaluate(ctx, msg.RecordType, msg.RecordID)
	if err != nil {
		return err
	}
	if owner != uuid.Nil {
		h.logger.WithFields(logrus.Fields{
			"record_type": msg.RecordType,
			"record_id":   msg.RecordID.String(),
			"owner_id":    owner.String(),
		}).Info("assignment: record routed")
	}
	return nil
}
