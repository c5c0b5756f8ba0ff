package policies

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vantagecrm/vantage/modules/core/domain/entities/member"
	"github.com/vantagecrm/vantage/modules/core/permissions"
	"github.com/vantagecrm/vantage/pkg/policy"
)

type testActor struct {
	id        uuid.UUID
	tenantID  uuid.UUID
	superuser bool
	perms     map[string]bool
}

func (a testActor) ID() uuid.UUID        { return a.id }
func (a testActor) TenantID() uuid.UUID  { return a.tenantID }
func (a testActor) IsSuperuser() bool    { return a.superuser }
func (a testActor) Can(perm string) bool { return a.perms[perm] }

type testObject struct {
	entityType string
	tenantID   uuid.UUID
	ownerID    uuid.UUID
}

func (o testObject) EntityType() string   { return o.entityType }
func (o testObject) TenantID() uuid.UUID  { return o.tenantID }
func (o testObject) OwnerID() uuid.UUID   { return o.ownerID }

func TestMemberPolicy_View(t *testing.T) {
	p := NewMemberPolicy()
	tenantA := uuid.New()
	tenantB := uuid.New()
	self := uuid.New()
	obj := testObject{entityType: "tenants.TenantMember", tenantID: tenantA, ownerID: self}

	tests := []struct {
		name  string
		actor testActor
		want  bool
	}{
		{"superuser crosses tenants", testActor{id: uuid.New(), tenantID: tenantB, superuser: true}, true},
		{"wildcard within tenant", testActor{id: uuid.New(), tenantID: tenantA, perms: map[string]bool{permissions.TenantsWildcard: true}}, true},
		{"wildcard does not cross tenants", testActor{id: uuid.New(), tenantID: tenantB, perms: map[string]bool{permissions.TenantsWildcard: true}}, false},
		{"owner sees own membership", testActor{id: self, tenantID: tenantA}, true},
		{"same tenant sees roster", testActor{id: uuid.New(), tenantID: tenantA}, true},
		{"other tenant denied", testActor{id: uuid.New(), tenantID: tenantB}, false},
		{"no tenant denied", testActor{id: uuid.New()}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, p.CanView(tt.actor, obj))
		})
	}
}

func TestMemberPolicy_Change(t *testing.T) {
	p := NewMemberPolicy()
	tenantA := uuid.New()
	selfUser := uuid.New()

	adminSelf := member.New(tenantA, selfUser, member.WithTenantAdmin(true))
	plainSelf := member.New(tenantA, selfUser)
	other := member.New(tenantA, uuid.New())

	granted := testActor{id: uuid.New(), tenantID: tenantA, perms: map[string]bool{permissions.ChangeTenantMember: true}}
	require.True(t, p.CanChange(granted, other))

	crossTenant := testActor{id: uuid.New(), tenantID: uuid.New(), perms: map[string]bool{permissions.ChangeTenantMember: true}}
	require.False(t, p.CanChange(crossTenant, other))

	// Self-edit depends on the tenant-admin flag of the membership.
	require.True(t, p.CanChange(testActor{id: selfUser, tenantID: tenantA}, adminSelf))
	require.False(t, p.CanChange(testActor{id: selfUser, tenantID: tenantA}, plainSelf))
}

func TestMemberPolicy_Delete(t *testing.T) {
	p := NewMemberPolicy()
	tenantA := uuid.New()
	obj := testObject{entityType: "tenants.TenantMember", tenantID: tenantA, ownerID: uuid.New()}

	require.True(t, p.CanDelete(testActor{superuser: true}, obj))
	require.True(t, p.CanDelete(testActor{tenantID: tenantA, perms: map[string]bool{permissions.DeleteTenantMember: true}}, obj))
	require.False(t, p.CanDelete(testActor{tenantID: tenantA}, obj))
	require.False(t, p.CanDelete(testActor{tenantID: uuid.New(), perms: map[string]bool{permissions.DeleteTenantMember: true}}, obj))
}

func TestMemberPolicy_ViewableClause(t *testing.T) {
	p := NewMemberPolicy()
	tenantA := uuid.New()

	require.Equal(t, policy.AllowAll, p.ViewableClause(testActor{superuser: true}))

	actorID := uuid.New()
	orphan := p.ViewableClause(testActor{id: actorID})
	require.Equal(t, "user_id = $1", orphan.Expr)
	require.Equal(t, []any{actorID}, orphan.Args)

	c := p.ViewableClause(testActor{id: actorID, tenantID: tenantA})
	require.Equal(t, "(tenant_id = $1 OR user_id = $2)", c.Expr)
	require.Equal(t, []any{tenantA, actorID}, c.Args)
}

// The clause must select exactly the rows CanView accepts, including
// for actors holding the tenants wildcard.
func TestMemberPolicy_WildcardClauseEquivalence(t *testing.T) {
	p := NewMemberPolicy()
	tenantA := uuid.New()
	tenantB := uuid.New()
	actor := testActor{id: uuid.New(), tenantID: tenantA, perms: map[string]bool{permissions.TenantsWildcard: true}}

	rows := []member.Member{
		member.New(tenantA, uuid.New()),
		member.New(tenantA, actor.id),
		member.New(tenantB, uuid.New()),
		member.New(tenantB, actor.id),
	}

	clause := p.ViewableClause(actor)
	require.Equal(t, "(tenant_id = $1 OR user_id = $2)", clause.Expr)

	selects := func(m member.Member) bool {
		return m.TenantID() == clause.Args[0] || m.UserID() == clause.Args[1]
	}
	for _, m := range rows {
		require.Equal(t, selects(m), p.CanView(actor, m),
			"predicate and clause disagree for tenant %s user %s", m.TenantID(), m.UserID())
	}
}

func TestUserPolicy(t *testing.T) {
	p := NewUserPolicy()
	tenantA := uuid.New()
	selfID := uuid.New()
	selfObj := testObject{entityType: "core.User", tenantID: tenantA, ownerID: selfID}
	otherObj := testObject{entityType: "core.User", tenantID: tenantA, ownerID: uuid.New()}

	self := testActor{id: selfID, tenantID: tenantA}
	require.True(t, p.CanView(self, selfObj))
	require.True(t, p.CanChange(self, selfObj))
	require.False(t, p.CanView(self, otherObj))
	require.False(t, p.CanDelete(self, selfObj))

	viewer := testActor{id: uuid.New(), tenantID: tenantA, perms: map[string]bool{permissions.ViewUser: true}}
	require.True(t, p.CanView(viewer, otherObj))
	require.False(t, p.CanChange(viewer, otherObj))

	crossViewer := testActor{id: uuid.New(), tenantID: uuid.New(), perms: map[string]bool{permissions.ViewUser: true}}
	require.False(t, p.CanView(crossViewer, otherObj))

	require.True(t, p.CanDelete(testActor{superuser: true}, otherObj))
}

func TestUserPolicy_ViewableClause(t *testing.T) {
	p := NewUserPolicy()
	tenantA := uuid.New()
	selfID := uuid.New()

	require.Equal(t, policy.AllowAll, p.ViewableClause(testActor{superuser: true}))

	own := p.ViewableClause(testActor{id: selfID, tenantID: tenantA})
	require.Equal(t, "id = $1", own.Expr)
	require.Equal(t, []any{selfID}, own.Args)

	granted := p.ViewableClause(testActor{id: selfID, tenantID: tenantA, perms: map[string]bool{permissions.ViewUser: true}})
	require.Equal(t, "(tenant_id = $1 OR id = $2)", granted.Expr)
	require.Equal(t, []any{tenantA, selfID}, granted.Args)
}
