package policy_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vantagecrm/vantage/pkg/policy"
)

type stubActor struct {
	id        uuid.UUID
	tenantID  uuid.UUID
	superuser bool
	perms     map[string]bool
}

func (a stubActor) ID() uuid.UUID        { return a.id }
func (a stubActor) TenantID() uuid.UUID  { return a.tenantID }
func (a stubActor) IsSuperuser() bool    { return a.superuser }
func (a stubActor) Can(perm string) bool { return a.perms[perm] }

type stubObject struct {
	entityType string
	tenantID   uuid.UUID
	ownerID    uuid.UUID
}

func (o stubObject) EntityType() string  { return o.entityType }
func (o stubObject) TenantID() uuid.UUID { return o.tenantID }
func (o stubObject) OwnerID() uuid.UUID  { return o.ownerID }

type allowOwnerPolicy struct{}

func (allowOwnerPolicy) CanView(actor policy.Actor, obj policy.Object) bool {
	return actor.IsSuperuser() || obj.OwnerID() == actor.ID()
}
func (p allowOwnerPolicy) CanChange(actor policy.Actor, obj policy.Object) bool {
	return p.CanView(actor, obj)
}
func (p allowOwnerPolicy) CanDelete(actor policy.Actor, obj policy.Object) bool {
	return p.CanView(actor, obj)
}
func (allowOwnerPolicy) ViewableClause(actor policy.Actor) policy.Clause {
	if actor.IsSuperuser() {
		return policy.AllowAll
	}
	return policy.Clause{Expr: "owner_id = $1", Args: []any{actor.ID()}}
}

func TestRegistry_LookupRegistered(t *testing.T) {
	r := policy.NewRegistry()
	r.Register("accounts.Account", allowOwnerPolicy{})
	r.Freeze()

	p, err := r.Lookup("accounts.Account")
	require.NoError(t, err)
	require.NotNil(t, p)
}

func TestRegistry_LookupMissingFailsClosed(t *testing.T) {
	r := policy.NewRegistry()
	r.Freeze()

	_, err := r.Lookup("accounts.Account")
	require.ErrorIs(t, err, policy.ErrPolicyNotFound)

	actor := stubActor{id: uuid.New(), superuser: true}
	obj := stubObject{entityType: "accounts.Account"}
	require.False(t, r.CanView(actor, obj), "unregistered type must deny even superusers")
	require.False(t, r.CanChange(actor, obj))
	require.False(t, r.CanDelete(actor, obj))
}

func TestRegistry_VerifyReportsMissing(t *testing.T) {
	r := policy.NewRegistry()
	r.Register("leads.Lead", allowOwnerPolicy{})

	missing := r.Verify("leads.Lead", "cases.Case", "accounts.Account")
	require.Equal(t, []string{"accounts.Account", "cases.Case"}, missing)

	require.Empty(t, r.Verify("leads.Lead"))
}

func TestRegistry_DuplicateRegistrationPanics(t *testing.T) {
	r := policy.NewRegistry()
	r.Register("leads.Lead", allowOwnerPolicy{})

	require.Panics(t, func() {
		r.Register("leads.Lead", allowOwnerPolicy{})
	})
}

func TestRegistry_RegisterAfterFreezePanics(t *testing.T) {
	r := policy.NewRegistry()
	r.Freeze()

	require.Panics(t, func() {
		r.Register("leads.Lead", allowOwnerPolicy{})
	})
}

func TestFilterViewable_MatchesElementwiseCanView(t *testing.T) {
	p := allowOwnerPolicy{}
	owner := uuid.New()
	actor := stubActor{id: owner}

	objs := []stubObject{
		{entityType: "leads.Lead", ownerID: owner},
		{entityType: "leads.Lead", ownerID: uuid.New()},
		{entityType: "leads.Lead", ownerID: owner},
	}

	got := policy.FilterViewable(p, actor, objs)

	var want []stubObject
	for _, o := range objs {
		if p.CanView(actor, o) {
			want = append(want, o)
		}
	}
	require.Equal(t, want, got)
	require.Len(t, got, 2)
}

func TestPolicyPredicatesAreIdempotent(t *testing.T) {
	p := allowOwnerPolicy{}
	actor := stubActor{id: uuid.New()}
	obj := stubObject{entityType: "leads.Lead", ownerID: actor.id}

	first := p.CanView(actor, obj)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, p.CanView(actor, obj))
	}
}
