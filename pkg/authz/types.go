// Package authz wraps casbin as a coarse-grained guard evaluated at
// service entry. It answers "may this subject perform this action on
// this resource class at all"; per-object decisions stay with the
// object-permission policies.
package authz

import (
	"strings"

	"github.com/google/uuid"
)

// Mode controls how enforcement results are applied.
type Mode string

const (
	ModeDisabled Mode = "disabled"
	ModeShadow   Mode = "shadow"
	ModeEnforce  Mode = "enforce"
)

func sanitizeMode(m Mode) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(string(m)))) {
	case ModeDisabled:
		return ModeDisabled
	case ModeEnforce:
		return ModeEnforce
	default:
		return ModeShadow
	}
}

const (
	globalDomain        = "global"
	subjectTenantPrefix = "tenant"
	subjectUserPrefix   = "user"
	objectSeparator     = "."
	subjectSeparator    = ":"
	actionWildcard      = "*"
)

// Request encapsulates all parameters required to evaluate a casbin rule.
type Request struct {
	Subject string
	Domain  string
	Object  string
	Action  string
}

// NewRequest constructs a Request.
func NewRequest(subject, domain, object, action string) Request {
	return Request{Subject: subject, Domain: domain, Object: object, Action: action}
}

// SubjectForUser builds a subject identifier in the form tenant:{tenantID}:user:{userID}.
func SubjectForUser(tenantID, userID uuid.UUID) string {
	userPart := "anonymous"
	if userID != uuid.Nil {
		userPart = userID.String()
	}
	builder := strings.Builder{}
	builder.WriteString(subjectTenantPrefix)
	builder.WriteString(subjectSeparator)
	builder.WriteString(DomainFromTenant(tenantID))
	builder.WriteString(subjectSeparator)
	builder.WriteString(subjectUserPrefix)
	builder.WriteString(subjectSeparator)
	builder.WriteString(userPart)
	return builder.String()
}

// DomainFromTenant converts a tenant ID into a casbin domain string.
func DomainFromTenant(id uuid.UUID) string {
	if id == uuid.Nil {
		return globalDomain
	}
	return strings.ToLower(id.String())
}

// ObjectName returns the canonical module.resource string, lowercased.
func ObjectName(module, resource string) string {
	module = strings.ToLower(strings.TrimSpace(module))
	resource = strings.ToLower(strings.TrimSpace(resource))
	if module == "" {
		module = "global"
	}
	if resource == "" {
		resource = "resource"
	}
	return module + objectSeparator + resource
}

// NormalizeAction returns a normalized action string.
func NormalizeAction(action string) string {
	action = strings.ToLower(strings.TrimSpace(action))
	if action == "" {
		return actionWildcard
	}
	return action
}
