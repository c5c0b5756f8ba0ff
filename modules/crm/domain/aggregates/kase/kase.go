// Package kase holds the support case aggregate. The package is named
// kase because case is a reserved word.
package kase

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusOnHold     Status = "on_hold"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusOnHold, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// IsOpen reports whether the case still counts against its SLA.
func (s Status) IsOpen() bool {
	return s == StatusNew || s == StatusInProgress || s == StatusOnHold
}

type Case struct {
	id          uuid.UUID
	tenantID    uuid.UUID
	ownerID     uuid.UUID
	accountID   uuid.UUID
	subject     string
	description string
	priority    Priority
	status      Status
	country     string
	slaDueAt    time.Time
	slaBreached bool
	createdAt   time.Time
	updatedAt   time.Time
}

type Option func(*Case)

func WithID(id uuid.UUID) Option {
	return func(c *Case) { c.id = id }
}

func WithOwnerID(ownerID uuid.UUID) Option {
	return func(c *Case) { c.ownerID = ownerID }
}

func WithAccountID(accountID uuid.UUID) Option {
	return func(c *Case) { c.accountID = accountID }
}

func WithDescription(description string) Option {
	return func(c *Case) { c.description = strings.TrimSpace(description) }
}

func WithPriority(priority Priority) Option {
	return func(c *Case) { c.priority = priority }
}

func WithStatus(status Status) Option {
	return func(c *Case) { c.status = status }
}

func WithCountry(country string) Option {
	return func(c *Case) { c.country = strings.TrimSpace(country) }
}

func WithSLADueAt(dueAt time.Time) Option {
	return func(c *Case) { c.slaDueAt = dueAt }
}

func WithSLABreached(breached bool) Option {
	return func(c *Case) { c.slaBreached = breached }
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(c *Case) { c.createdAt = createdAt }
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(c *Case) { c.updatedAt = updatedAt }
}

func New(tenantID uuid.UUID, subject string, opts ...Option) Case {
	c := Case{
		id:       uuid.New(),
		tenantID: tenantID,
		subject:  strings.TrimSpace(subject),
		priority: PriorityNormal,
		status:   StatusNew,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c Case) ID() uuid.UUID        { return c.id }
func (c Case) AccountID() uuid.UUID { return c.accountID }
func (c Case) Subject() string      { return c.subject }
func (c Case) Description() string  { return c.description }
func (c Case) Priority() Priority   { return c.priority }
func (c Case) Status() Status       { return c.status }
func (c Case) Country() string      { return c.country }
func (c Case) SLADueAt() time.Time  { return c.slaDueAt }
func (c Case) SLABreached() bool    { return c.slaBreached }
func (c Case) CreatedAt() time.Time { return c.createdAt }
func (c Case) UpdatedAt() time.Time { return c.updatedAt }

func (c Case) EntityType() string  { return "cases.Case" }
func (c Case) TenantID() uuid.UUID { return c.tenantID }
func (c Case) OwnerID() uuid.UUID  { return c.ownerID }

func (c Case) WithOwner(ownerID uuid.UUID) Case {
	c.ownerID = ownerID
	return c
}

func (c Case) MarkSLABreached() Case {
	c.slaBreached = true
	return c
}

func (c Case) Attributes() map[string]any {
	return map[string]any{
		"subject":  c.subject,
		"priority": string(c.priority),
		"status":   string(c.status),
		"country":  c.country,
	}
}
