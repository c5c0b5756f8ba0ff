package policy

import "github.com/google/uuid"

// Actor is the authenticated principal a policy evaluates. A zero
// tenant ID means the actor has no tenant affiliation.
type Actor interface {
	ID() uuid.UUID
	TenantID() uuid.UUID
	IsSuperuser() bool
	// Can reports whether the actor holds the given permission string,
	// e.g. "accounts:*" or "tenants.change_tenantmember".
	Can(permission string) bool
}

// Object is a domain record subject to object-level permission checks.
// Zero tenant or owner IDs mean the record carries no such reference.
type Object interface {
	EntityType() string
	TenantID() uuid.UUID
	OwnerID() uuid.UUID
}

// Clause is a declarative SQL predicate over a single entity table,
// produced by a policy so repositories can narrow list queries without
// per-row checks. Args are bound to $1..$n in Expr.
type Clause struct {
	Expr string
	Args []any
}

var (
	AllowAll = Clause{Expr: "TRUE"}
	DenyAll  = Clause{Expr: "FALSE"}
)

// Policy decides object-level access for exactly one entity type.
// Implementations are stateless and must not mutate the actor or the
// object they evaluate.
//
// The decision chain is fixed: superuser, then domain wildcard, then
// ownership, then tenant isolation plus named permission, then deny.
// Earlier rules short-circuit later ones.
type Policy interface {
	CanView(actor Actor, obj Object) bool
	CanChange(actor Actor, obj Object) bool
	CanDelete(actor Actor, obj Object) bool
	// ViewableClause returns the predicate equivalent to filtering a
	// collection by CanView element-wise.
	ViewableClause(actor Actor) Clause
}

// FilterViewable narrows an in-memory collection to the subset the
// actor may see. Repositories use ViewableClause instead; this helper
// serves handlers that already hold a slice, and the equivalence tests.
func FilterViewable[T Object](p Policy, actor Actor, objs []T) []T {
	out := make([]T, 0, len(objs))
	for _, o := range objs {
		if p.CanView(actor, o) {
			out = append(out, o)
		}
	}
	return out
}
