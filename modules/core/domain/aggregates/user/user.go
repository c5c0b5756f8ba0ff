package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the authenticated principal evaluated by object policies.
// A zero tenantID means the user has no tenant affiliation, which only
// superusers normally have.
type User struct {
	id          uuid.UUID
	tenantID    uuid.UUID
	email       string
	firstName   string
	lastName    string
	superuser   bool
	active      bool
	permissions map[string]struct{}
	createdAt   time.Time
	updatedAt   time.Time
}

type Option func(*User)

func WithID(id uuid.UUID) Option {
	return func(u *User) {
		u.id = id
	}
}

func WithTenantID(tenantID uuid.UUID) Option {
	return func(u *User) {
		u.tenantID = tenantID
	}
}

func WithName(first, last string) Option {
	return func(u *User) {
		u.firstName = strings.TrimSpace(first)
		u.lastName = strings.TrimSpace(last)
	}
}

func WithSuperuser(superuser bool) Option {
	return func(u *User) {
		u.superuser = superuser
	}
}

func WithActive(active bool) Option {
	return func(u *User) {
		u.active = active
	}
}

func WithPermissions(perms []string) Option {
	return func(u *User) {
		u.permissions = make(map[string]struct{}, len(perms))
		for _, p := range perms {
			p = strings.TrimSpace(p)
			if p != "" {
				u.permissions[p] = struct{}{}
			}
		}
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(u *User) {
		u.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(u *User) {
		u.updatedAt = updatedAt
	}
}

func New(email string, opts ...Option) User {
	u := User{
		id:          uuid.New(),
		email:       strings.ToLower(strings.TrimSpace(email)),
		active:      true,
		permissions: map[string]struct{}{},
		createdAt:   time.Now(),
		updatedAt:   time.Now(),
	}
	for _, opt := range opts {
		opt(&u)
	}
	return u
}

func (u User) ID() uuid.UUID       { return u.id }
func (u User) TenantID() uuid.UUID { return u.tenantID }
func (u User) Email() string       { return u.email }
func (u User) FirstName() string   { return u.firstName }
func (u User) LastName() string    { return u.lastName }
func (u User) IsSuperuser() bool   { return u.superuser }
func (u User) IsActive() bool      { return u.active }
func (u User) IsZero() bool        { return u.id == uuid.Nil && u.email == "" }

func (u User) FullName() string {
	name := strings.TrimSpace(u.firstName + " " + u.lastName)
	if name == "" {
		return u.email
	}
	return name
}

// Can reports whether the user holds the exact permission string.
func (u User) Can(permission string) bool {
	_, ok := u.permissions[permission]
	return ok
}

// Permissions returns a copy of the granted permission strings.
func (u User) Permissions() []string {
	out := make([]string, 0, len(u.permissions))
	for p := range u.permissions {
		out = append(out, p)
	}
	return out
}

func (u User) CreatedAt() time.Time { return u.createdAt }
func (u User) UpdatedAt() time.Time { return u.updatedAt }

// EntityType implements policy.Object so users themselves are subject
// to object-level checks (profile pages, user administration).
func (u User) EntityType() string { return "core.User" }

// OwnerID for a user record is the user: one owns one's own profile.
func (u User) OwnerID() uuid.UUID { return u.id }
