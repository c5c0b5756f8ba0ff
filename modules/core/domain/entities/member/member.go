package member

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusOnboarding Status = "onboarding"
	StatusActive     Status = "active"
	StatusLeave      Status = "leave"
	StatusTerminated Status = "terminated"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusOnboarding, StatusActive, StatusLeave, StatusTerminated:
		return true
	}
	return false
}

// Member is a user's membership inside one tenant: employment status,
// quota and commission settings, and whether the member administers
// the tenant roster.
type Member struct {
	id             uuid.UUID
	tenantID       uuid.UUID
	userID         uuid.UUID
	managerID      uuid.UUID
	status         Status
	tenantAdmin    bool
	hireDate       time.Time
	quotaAmount    decimal.Decimal
	commissionRate decimal.Decimal
	phone          string
	createdAt      time.Time
	updatedAt      time.Time
}

type Option func(*Member)

func WithID(id uuid.UUID) Option {
	return func(m *Member) {
		m.id = id
	}
}

func WithManagerID(managerID uuid.UUID) Option {
	return func(m *Member) {
		m.managerID = managerID
	}
}

func WithStatus(status Status) Option {
	return func(m *Member) {
		m.status = status
	}
}

func WithTenantAdmin(admin bool) Option {
	return func(m *Member) {
		m.tenantAdmin = admin
	}
}

func WithHireDate(hireDate time.Time) Option {
	return func(m *Member) {
		m.hireDate = hireDate
	}
}

func WithQuota(amount decimal.Decimal) Option {
	return func(m *Member) {
		m.quotaAmount = amount
	}
}

func WithCommissionRate(rate decimal.Decimal) Option {
	return func(m *Member) {
		m.commissionRate = rate
	}
}

func WithPhone(phone string) Option {
	return func(m *Member) {
		m.phone = phone
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(m *Member) {
		m.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(m *Member) {
		m.updatedAt = updatedAt
	}
}

func New(tenantID, userID uuid.UUID, opts ...Option) Member {
	m := Member{
		id:        uuid.New(),
		tenantID:  tenantID,
		userID:    userID,
		status:    StatusOnboarding,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m Member) ID() uuid.UUID                   { return m.id }
func (m Member) UserID() uuid.UUID               { return m.userID }
func (m Member) ManagerID() uuid.UUID            { return m.managerID }
func (m Member) Status() Status                  { return m.status }
func (m Member) IsTenantAdmin() bool             { return m.tenantAdmin }
func (m Member) HireDate() time.Time             { return m.hireDate }
func (m Member) QuotaAmount() decimal.Decimal    { return m.quotaAmount }
func (m Member) CommissionRate() decimal.Decimal { return m.commissionRate }
func (m Member) Phone() string                   { return m.phone }
func (m Member) CreatedAt() time.Time            { return m.createdAt }
func (m Member) UpdatedAt() time.Time            { return m.updatedAt }

func (m Member) EntityType() string  { return "tenants.TenantMember" }
func (m Member) TenantID() uuid.UUID { return m.tenantID }

// OwnerID is the member's user: a membership record belongs to the
// person it describes.
func (m Member) OwnerID() uuid.UUID { return m.userID }
