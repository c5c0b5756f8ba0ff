package account

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// Account is a company record. Ownership is strict: without a domain
// grant only the owner sees the record, tenant co-workers do not.
type Account struct {
	id            uuid.UUID
	tenantID      uuid.UUID
	ownerID       uuid.UUID
	name          string
	website       string
	industry      string
	country       string
	annualRevenue decimal.Decimal
	status        Status
	createdAt     time.Time
	updatedAt     time.Time
}

type Option func(*Account)

func WithID(id uuid.UUID) Option {
	return func(a *Account) { a.id = id }
}

func WithOwnerID(ownerID uuid.UUID) Option {
	return func(a *Account) { a.ownerID = ownerID }
}

func WithWebsite(website string) Option {
	return func(a *Account) { a.website = strings.TrimSpace(website) }
}

func WithIndustry(industry string) Option {
	return func(a *Account) { a.industry = strings.TrimSpace(industry) }
}

func WithCountry(country string) Option {
	return func(a *Account) { a.country = strings.TrimSpace(country) }
}

func WithAnnualRevenue(revenue decimal.Decimal) Option {
	return func(a *Account) { a.annualRevenue = revenue }
}

func WithStatus(status Status) Option {
	return func(a *Account) { a.status = status }
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(a *Account) { a.createdAt = createdAt }
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(a *Account) { a.updatedAt = updatedAt }
}

func New(tenantID uuid.UUID, name string, opts ...Option) Account {
	a := Account{
		id:       uuid.New(),
		tenantID: tenantID,
		name:     strings.TrimSpace(name),
		status:   StatusActive,
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

func (a Account) ID() uuid.UUID                  { return a.id }
func (a Account) Name() string                   { return a.name }
func (a Account) Website() string                { return a.website }
func (a Account) Industry() string               { return a.industry }
func (a Account) Country() string                { return a.country }
func (a Account) AnnualRevenue() decimal.Decimal { return a.annualRevenue }
func (a Account) Status() Status                 { return a.status }
func (a Account) CreatedAt() time.Time           { return a.createdAt }
func (a Account) UpdatedAt() time.Time           { return a.updatedAt }

func (a Account) EntityType() string  { return "accounts.Account" }
func (a Account) TenantID() uuid.UUID { return a.tenantID }
func (a Account) OwnerID() uuid.UUID  { return a.ownerID }

func (a Account) WithOwner(ownerID uuid.UUID) Account {
	a.ownerID = ownerID
	return a
}

// Attributes exposes the fields assignment rule criteria can match on.
func (a Account) Attributes() map[string]any {
	return map[string]any{
		"name":           a.name,
		"website":        a.website,
		"industry":       a.industry,
		"country":        a.country,
		"annual_revenue": a.annualRevenue,
		"status":         string(a.status),
	}
}
