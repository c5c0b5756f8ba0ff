// Package policies holds the object-permission policies for core
// entity types. Each policy implements the fixed decision chain:
// superuser, domain wildcard, ownership, tenant isolation, deny —
// earlier rules short-circuit later ones.
package policies

import (
	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/modules/core/domain/entities/member"
	"github.com/vantagecrm/vantage/modules/core/permissions"
	"github.com/vantagecrm/vantage/pkg/policy"
)

// MemberPolicy is the roster-visible variant: any actor may view the
// members of their own tenant. Changing a membership requires the
// named permission within the tenant, or being a tenant admin editing
// one's own record.
type MemberPolicy struct{}

func NewMemberPolicy() MemberPolicy { return MemberPolicy{} }

func (MemberPolicy) CanView(actor policy.Actor, obj policy.Object) bool {
	if actor.IsSuperuser() {
		return true
	}
	// The tenants wildcard stays fenced to the actor's own tenant, so
	// the boolean check and ViewableClause agree row for row.
	if actor.Can(permissions.TenantsWildcard) && sameTenant(actor, obj) {
		return true
	}
	if obj.OwnerID() != uuid.Nil && obj.OwnerID() == actor.ID() {
		return true
	}
	return sameTenant(actor, obj)
}

func (MemberPolicy) CanChange(actor policy.Actor, obj policy.Object) bool {
	if actor.IsSuperuser() {
		return true
	}
	if actor.Can(permissions.ChangeTenantMember) && sameTenant(actor, obj) {
		return true
	}
	m, ok := obj.(member.Member)
	if !ok {
		return false
	}
	// Tenant admins may edit their own membership record.
	return m.UserID() == actor.ID() && m.IsTenantAdmin()
}

func (MemberPolicy) CanDelete(actor policy.Actor, obj policy.Object) bool {
	if actor.IsSuperuser() {
		return true
	}
	return actor.Can(permissions.DeleteTenantMember) && sameTenant(actor, obj)
}

func (MemberPolicy) ViewableClause(actor policy.Actor) policy.Clause {
	if actor.IsSuperuser() {
		return policy.AllowAll
	}
	if actor.TenantID() == uuid.Nil {
		// Own memberships stay visible even without tenant context.
		return policy.Clause{Expr: "user_id = $1", Args: []any{actor.ID()}}
	}
	// Roster of the actor's tenant plus the actor's own memberships in
	// other tenants.
	return policy.Clause{Expr: "(tenant_id = $1 OR user_id = $2)", Args: []any{actor.TenantID(), actor.ID()}}
}

// sameTenant treats a missing tenant on either side as no access.
func sameTenant(actor policy.Actor, obj policy.Object) bool {
	return actor.TenantID() != uuid.Nil && actor.TenantID() == obj.TenantID()
}
