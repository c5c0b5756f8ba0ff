package lead

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusConverted Status = "converted"
	StatusLost      Status = "lost"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusQualified, StatusConverted, StatusLost:
		return true
	}
	return false
}

type Lead struct {
	id        uuid.UUID
	tenantID  uuid.UUID
	ownerID   uuid.UUID
	firstName string
	lastName  string
	company   string
	email     string
	phone     string
	source    string
	country   string
	status    Status
	createdAt time.Time
	updatedAt time.Time
}

type Option func(*Lead)

func WithID(id uuid.UUID) Option {
	return func(l *Lead) { l.id = id }
}

func WithOwnerID(ownerID uuid.UUID) Option {
	return func(l *Lead) { l.ownerID = ownerID }
}

func WithName(firstName, lastName string) Option {
	return func(l *Lead) {
		l.firstName = strings.TrimSpace(firstName)
		l.lastName = strings.TrimSpace(lastName)
	}
}

func WithEmail(email string) Option {
	return func(l *Lead) { l.email = strings.TrimSpace(email) }
}

func WithPhone(phone string) Option {
	return func(l *Lead) { l.phone = strings.TrimSpace(phone) }
}

func WithSource(source string) Option {
	return func(l *Lead) { l.source = strings.TrimSpace(source) }
}

func WithCountry(country string) Option {
	return func(l *Lead) { l.country = strings.TrimSpace(country) }
}

func WithStatus(status Status) Option {
	return func(l *Lead) { l.status = status }
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(l *Lead) { l.createdAt = createdAt }
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(l *Lead) { l.updatedAt = updatedAt }
}

func New(tenantID uuid.UUID, company string, opts ...Option) Lead {
	l := Lead{
		id:       uuid.New(),
		tenantID: tenantID,
		company:  strings.TrimSpace(company),
		status:   StatusNew,
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

func (l Lead) ID() uuid.UUID        { return l.id }
func (l Lead) FirstName() string    { return l.firstName }
func (l Lead) LastName() string     { return l.lastName }
func (l Lead) Company() string      { return l.company }
func (l Lead) Email() string        { return l.email }
func (l Lead) Phone() string        { return l.phone }
func (l Lead) Source() string       { return l.source }
func (l Lead) Country() string      { return l.country }
func (l Lead) Status() Status       { return l.status }
func (l Lead) CreatedAt() time.Time { return l.createdAt }
func (l Lead) UpdatedAt() time.Time { return l.updatedAt }

func (l Lead) EntityType() string  { return "leads.Lead" }
func (l Lead) TenantID() uuid.UUID { return l.tenantID }
func (l Lead) OwnerID() uuid.UUID  { return l.ownerID }

func (l Lead) WithOwner(ownerID uuid.UUID) Lead {
	l.ownerID = ownerID
	return l
}

func (l Lead) Attributes() map[string]any {
	return map[string]any{
		"first_name": l.firstName,
		"last_name":  l.lastName,
		"company":    l.company,
		"email":      l.email,
		"source":     l.source,
		"country":    l.country,
		"status":     string(l.status),
	}
}
