package tenant

import (
	"time"

	"github.com/google/uuid"
)

type Tenant struct {
	id        uuid.UUID
	name      string
	subdomain string
	plan      string
	timezone  string
	currency  string
	isActive  bool
	createdAt time.Time
	updatedAt time.Time
}

type Option func(*Tenant)

func WithID(id uuid.UUID) Option {
	return func(t *Tenant) {
		t.id = id
	}
}

func WithSubdomain(subdomain string) Option {
	return func(t *Tenant) {
		t.subdomain = subdomain
	}
}

func WithPlan(plan string) Option {
	return func(t *Tenant) {
		t.plan = plan
	}
}

func WithTimezone(tz string) Option {
	return func(t *Tenant) {
		t.timezone = tz
	}
}

func WithCurrency(currency string) Option {
	return func(t *Tenant) {
		t.currency = currency
	}
}

func WithIsActive(isActive bool) Option {
	return func(t *Tenant) {
		t.isActive = isActive
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(t *Tenant) {
		t.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(t *Tenant) {
		t.updatedAt = updatedAt
	}
}

func New(name string, opts ...Option) *Tenant {
	t := &Tenant{
		id:        uuid.New(),
		name:      name,
		plan:      "free",
		timezone:  "UTC",
		currency:  "USD",
		isActive:  true,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tenant) ID() uuid.UUID        { return t.id }
func (t *Tenant) Name() string         { return t.name }
func (t *Tenant) Subdomain() string    { return t.subdomain }
func (t *Tenant) Plan() string         { return t.plan }
func (t *Tenant) Timezone() string     { return t.timezone }
func (t *Tenant) Currency() string     { return t.currency }
func (t *Tenant) IsActive() bool       { return t.isActive }
func (t *Tenant) CreatedAt() time.Time { return t.createdAt }
func (t *Tenant) UpdatedAt() time.Time { return t.updatedAt }

func (t *Tenant) SetPlan(plan string) {
	t.plan = plan
	t.updatedAt = time.Now()
}

func (t *Tenant) SetTimezone(tz string) {
	t.timezone = tz
	t.updatedAt = time.Now()
}

func (t *Tenant) SetCurrency(currency string) {
	t.currency = currency
	t.updatedAt = time.Now()
}

func (t *Tenant) Deactivate() {
	t.isActive = false
	t.updatedAt = time.Now()
}
