// Package policies holds the object-permission policies for CRM
// records. Accounts, leads, and cases are ownership-strict: being in
// the same tenant as a record grants nothing by itself.
package policies

import (
	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/modules/core/permissions"
	"github.com/vantagecrm/vantage/pkg/policy"
)

// ownershipPolicy implements the decision chain shared by all CRM
// record types: superuser, domain wildcard, named permission within
// the tenant, ownership, deny.
type ownershipPolicy struct {
	wildcard   string
	changePerm string
	deletePerm string
}

func NewAccountPolicy() policy.Policy {
	return ownershipPolicy{
		wildcard:   permissions.AccountsWildcard,
		changePerm: permissions.ChangeAccount,
		deletePerm: permissions.DeleteAccount,
	}
}

func NewLeadPolicy() policy.Policy {
	return ownershipPolicy{
		wildcard:   permissions.LeadsWildcard,
		changePerm: permissions.ChangeLead,
		deletePerm: permissions.DeleteLead,
	}
}

func NewCasePolicy() policy.Policy {
	return ownershipPolicy{
		wildcard:   permissions.CasesWildcard,
		changePerm: permissions.ChangeCase,
		deletePerm: permissions.DeleteCase,
	}
}

func (p ownershipPolicy) CanView(actor policy.Actor, obj policy.Object) bool {
	if actor.IsSuperuser() {
		return true
	}
	if actor.Can(p.wildcard) && sameTenant(actor, obj) {
		return true
	}
	return isOwner(actor, obj)
}

func (p ownershipPolicy) CanChange(actor policy.Actor, obj policy.Object) bool {
	if actor.IsSuperuser() {
		return true
	}
	if actor.Can(p.wildcard) && sameTenant(actor, obj) {
		return true
	}
	if actor.Can(p.changePerm) && sameTenant(actor, obj) {
		return true
	}
	return isOwner(actor, obj)
}

func (p ownershipPolicy) CanDelete(actor policy.Actor, obj policy.Object) bool {
	if actor.IsSuperuser() {
		return true
	}
	if actor.Can(p.wildcard) && sameTenant(actor, obj) {
		return true
	}
	if actor.Can(p.deletePerm) && sameTenant(actor, obj) {
		return true
	}
	return isOwner(actor, obj)
}

func (p ownershipPolicy) ViewableClause(actor policy.Actor) policy.Clause {
	if actor.IsSuperuser() {
		return policy.AllowAll
	}
	if actor.TenantID() == uuid.Nil {
		return policy.DenyAll
	}
	if actor.Can(p.wildcard) {
		return policy.Clause{Expr: "tenant_id = $1", Args: []any{actor.TenantID()}}
	}
	return policy.Clause{
		Expr: "tenant_id = $1 AND owner_id = $2",
		Args: []any{actor.TenantID(), actor.ID()},
	}
}

// isOwner treats an unassigned record as owned by nobody. Ownership
// is scoped to the actor's tenant so the predicate agrees with the
// tenant-isolated viewable clause.
func isOwner(actor policy.Actor, obj policy.Object) bool {
	return sameTenant(actor, obj) && obj.OwnerID() != uuid.Nil && obj.OwnerID() == actor.ID()
}

func sameTenant(actor policy.Actor, obj policy.Object) bool {
	return actor.TenantID() != uuid.Nil && actor.TenantID() == obj.TenantID()
}
