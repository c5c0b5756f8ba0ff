package policies

import (
	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/modules/core/permissions"
	"github.com/vantagecrm/vantage/pkg/policy"
)

// UserPolicy guards user accounts. Viewing another user requires an
// explicit grant; every actor can always view and edit themselves.
// Deleting accounts stays superuser only.
type UserPolicy struct{}

func NewUserPolicy() UserPolicy { return UserPolicy{} }

func (UserPolicy) CanView(actor policy.Actor, obj policy.Object) bool {
	if actor.IsSuperuser() {
		return true
	}
	if (actor.Can(permissions.UsersWildcard) || actor.Can(permissions.ViewUser)) && sameTenant(actor, obj) {
		return true
	}
	return isSelf(actor, obj)
}

func (UserPolicy) CanChange(actor policy.Actor, obj policy.Object) bool {
	if actor.IsSuperuser() {
		return true
	}
	if (actor.Can(permissions.UsersWildcard) || actor.Can(permissions.ChangeUser)) && sameTenant(actor, obj) {
		return true
	}
	return isSelf(actor, obj)
}

func (UserPolicy) CanDelete(actor policy.Actor, _ policy.Object) bool {
	return actor.IsSuperuser()
}

func (UserPolicy) ViewableClause(actor policy.Actor) policy.Clause {
	if actor.IsSuperuser() {
		return policy.AllowAll
	}
	if actor.Can(permissions.UsersWildcard) || actor.Can(permissions.ViewUser) {
		if actor.TenantID() == uuid.Nil {
			return policy.Clause{Expr: "id = $1", Args: []any{actor.ID()}}
		}
		return policy.Clause{Expr: "(tenant_id = $1 OR id = $2)", Args: []any{actor.TenantID(), actor.ID()}}
	}
	return policy.Clause{Expr: "id = $1", Args: []any{actor.ID()}}
}

func isSelf(actor policy.Actor, obj policy.Object) bool {
	return obj.OwnerID() != uuid.Nil && obj.OwnerID() == actor.ID()
}
