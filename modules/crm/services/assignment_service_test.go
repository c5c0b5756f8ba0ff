package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/account"
	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/kase"
	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/lead"
	"github.com/vantagecrm/vantage/modules/crm/domain/entities/assignmentrule"
	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/policy"
)

// fakeTx satisfies pgx.Tx for contexts; no method is ever invoked
// because RLS is disabled and repositories are in-memory.
type fakeTx struct{ pgx.Tx }

func testCtx(tenantID uuid.UUID) context.Context {
	ctx := composables.WithTx(context.Background(), fakeTx{})
	return composables.WithTenantID(ctx, tenantID)
}

type memAccountRepo struct {
	records map[uuid.UUID]account.Account
	owned   map[uuid.UUID]int64
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{records: map[uuid.UUID]account.Account{}, owned: map[uuid.UUID]int64{}}
}

func (m *memAccountRepo) Count(context.Context) (int64, error) { return int64(len(m.records)), nil }
func (m *memAccountRepo) GetByID(_ context.Context, id uuid.UUID) (account.Account, error) {
	a, ok := m.records[id]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	return a, nil
}
func (m *memAccountRepo) GetPaginated(context.Context, *account.FindParams) ([]account.Account, error) {
	return nil, nil
}
func (m *memAccountRepo) FilterViewable(context.Context, policy.Clause, *account.FindParams) ([]account.Account, error) {
	return nil, nil
}
func (m *memAccountRepo) CountOwnedBy(_ context.Context, ownerID uuid.UUID) (int64, error) {
	return m.owned[ownerID], nil
}
func (m *memAccountRepo) Create(_ context.Context, e account.Account) (account.Account, error) {
	m.records[e.ID()] = e
	return e, nil
}
func (m *memAccountRepo) Update(_ context.Context, e account.Account) (account.Account, error) {
	m.records[e.ID()] = e
	return e, nil
}
func (m *memAccountRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.records, id)
	return nil
}

type memLeadRepo struct{}

func (memLeadRepo) Count(context.Context) (int64, error) { return 0, nil }
func (memLeadRepo) GetByID(context.Context, uuid.UUID) (lead.Lead, error) {
	return lead.Lead{}, lead.ErrNotFound
}
func (memLeadRepo) GetPaginated(context.Context, *lead.FindParams) ([]lead.Lead, error) {
	return nil, nil
}
func (memLeadRepo) FilterViewable(context.Context, policy.Clause, *lead.FindParams) ([]lead.Lead, error) {
	return nil, nil
}
func (memLeadRepo) CountOwnedBy(context.Context, uuid.UUID) (int64, error) { return 0, nil }
func (memLeadRepo) Create(_ context.Context, e lead.Lead) (lead.Lead, error) {
	return e, nil
}
func (memLeadRepo) Update(_ context.Context, e lead.Lead) (lead.Lead, error) {
	return e, nil
}
func (memLeadRepo) Delete(context.Context, uuid.UUID) error { return nil }

type memCaseRepo struct{}

func (memCaseRepo) Count(context.Context) (int64, error) { return 0, nil }
func (memCaseRepo) GetByID(context.Context, uuid.UUID) (kase.Case, error) {
	return kase.Case{}, kase.ErrNotFound
}
func (memCaseRepo) GetPaginated(context.Context, *kase.FindParams) ([]kase.Case, error) {
	return nil, nil
}
func (memCaseRepo) FilterViewable(context.Context, policy.Clause, *kase.FindParams) ([]kase.Case, error) {
	return nil, nil
}
func (memCaseRepo) CountOwnedBy(context.Context, uuid.UUID) (int64, error) { return 0, nil }
func (memCaseRepo) GetSLAOverdue(context.Context, time.Time, int) ([]kase.Case, error) {
	return nil, nil
}
func (memCaseRepo) Create(_ context.Context, e kase.Case) (kase.Case, error)  { return e, nil }
func (memCaseRepo) Update(_ context.Context, e kase.Case) (kase.Case, error)  { return e, nil }
func (memCaseRepo) Delete(context.Context, uuid.UUID) error                   { return nil }

type memRuleRepo struct {
	rules   []assignmentrule.Rule
	cursors map[uuid.UUID]int
}

func newMemRuleRepo(rules ...assignmentrule.Rule) *memRuleRepo {
	return &memRuleRepo{rules: rules, cursors: map[uuid.UUID]int{}}
}

func (m *memRuleRepo) GetByID(_ context.Context, id uuid.UUID) (assignmentrule.Rule, error) {
	for _, r := range m.rules {
		if r.ID() == id {
			return r, nil
		}
	}
	return assignmentrule.Rule{}, assignmentrule.ErrNotFound
}
func (m *memRuleRepo) GetAll(context.Context) ([]assignmentrule.Rule, error) {
	return m.rules, nil
}
func (m *memRuleRepo) GetActiveByRecordType(_ context.Context, recordType string) ([]assignmentrule.Rule, error) {
	var out []assignmentrule.Rule
	for _, r := range m.rules {
		if r.IsActive() && r.RecordType() == recordType {
			out = append(out, r)
		}
	}
	return out, nil
}
func (m *memRuleRepo) Create(_ context.Context, e assignmentrule.Rule) (assignmentrule.Rule, error) {
	m.rules = append(m.rules, e)
	return e, nil
}
func (m *memRuleRepo) Update(_ context.Context, e assignmentrule.Rule) (assignmentrule.Rule, error) {
	return e, nil
}
func (m *memRuleRepo) UpdateCursor(_ context.Context, id uuid.UUID, cursor int) error {
	m.cursors[id] = cursor
	return nil
}
func (m *memRuleRepo) Delete(context.Context, uuid.UUID) error { return nil }

func newAssignmentService(accounts *memAccountRepo, rules *memRuleRepo) *AssignmentService {
	return NewAssignmentService(accounts, memLeadRepo{}, memCaseRepo{}, rules)
}

func TestAssignmentService_SkipsOwnedRecords(t *testing.T) {
	tenantID := uuid.New()
	accounts := newMemAccountRepo()
	existing := uuid.New()
	acc := account.New(tenantID, "owned", account.WithOwnerID(existing))
	accounts.records[acc.ID()] = acc

	rules := newMemRuleRepo(assignmentrule.New(tenantID, "rr", "accounts.Account", assignmentrule.TypeRoundRobin,
		assignmentrule.WithAssignees([]uuid.UUID{uuid.New()}),
	))
	svc := newAssignmentService(accounts, rules)

	owner, err := svc.Evaluate(testCtx(tenantID), "accounts.Account", acc.ID())
	require.NoError(t, err)
	require.Equal(t, uuid.Nil, owner)
	require.Equal(t, existing, accounts.records[acc.ID()].OwnerID())
}

func TestAssignmentService_RoundRobinAdvancesCursor(t *testing.T) {
	tenantID := uuid.New()
	a := uuid.New()
	b := uuid.New()

	rule := assignmentrule.New(tenantID, "rr", "accounts.Account", assignmentrule.TypeRoundRobin,
		assignmentrule.WithAssignees([]uuid.UUID{a, b}),
		assignmentrule.WithCursor(1),
	)
	rules := newMemRuleRepo(rule)

	accounts := newMemAccountRepo()
	acc := account.New(tenantID, "fresh")
	accounts.records[acc.ID()] = acc

	svc := newAssignmentService(accounts, rules)

	owner, err := svc.Evaluate(testCtx(tenantID), "accounts.Account", acc.ID())
	require.NoError(t, err)
	require.Equal(t, b, owner)
	require.Equal(t, b, accounts.records[acc.ID()].OwnerID())
	require.Equal(t, 2, rules.cursors[rule.ID()])
}

func TestAssignmentService_TerritoryMatch(t *testing.T) {
	tenantID := uuid.New()
	de := uuid.New()

	rules := newMemRuleRepo(assignmentrule.New(tenantID, "emea", "accounts.Account", assignmentrule.TypeTerritory,
		assignmentrule.WithTerritories(map[string]uuid.UUID{"DE": de}),
	))

	accounts := newMemAccountRepo()
	german := account.New(tenantID, "german co", account.WithCountry("DE"))
	french := account.New(tenantID, "french co", account.WithCountry("FR"))
	accounts.records[german.ID()] = german
	accounts.records[french.ID()] = french

	svc := newAssignmentService(accounts, rules)

	owner, err := svc.Evaluate(testCtx(tenantID), "accounts.Account", german.ID())
	require.NoError(t, err)
	require.Equal(t, de, owner)

	// No territory covers FR and there is no fallback.
	owner, err = svc.Evaluate(testCtx(tenantID), "accounts.Account", french.ID())
	require.NoError(t, err)
	require.Equal(t, uuid.Nil, owner)
	require.Equal(t, uuid.Nil, accounts.records[french.ID()].OwnerID())
}

func TestAssignmentService_LoadBalanced(t *testing.T) {
	tenantID := uuid.New()
	busy := uuid.New()
	idle := uuid.New()

	rules := newMemRuleRepo(assignmentrule.New(tenantID, "lb", "accounts.Account", assignmentrule.TypeLoadBalanced,
		assignmentrule.WithAssignees([]uuid.UUID{busy, idle}),
	))

	accounts := newMemAccountRepo()
	accounts.owned[busy] = 10
	accounts.owned[idle] = 2
	acc := account.New(tenantID, "fresh")
	accounts.records[acc.ID()] = acc

	svc := newAssignmentService(accounts, rules)

	owner, err := svc.Evaluate(testCtx(tenantID), "accounts.Account", acc.ID())
	require.NoError(t, err)
	require.Equal(t, idle, owner)
}

func TestAssignmentService_PriorityOrderAndCriteria(t *testing.T) {
	tenantID := uuid.New()
	vip := uuid.New()
	catchAll := uuid.New()

	// Repository returns rules already ordered by priority desc.
	vipRule := assignmentrule.New(tenantID, "vip", "accounts.Account", assignmentrule.TypeCriteria,
		assignmentrule.WithPriority(10),
		assignmentrule.WithCriteria([]assignmentrule.Criterion{
			{Field: "annual_revenue", Operator: assignmentrule.OpGt, Value: "1000000"},
		}),
		assignmentrule.WithAssignees([]uuid.UUID{vip}),
	)
	fallback := assignmentrule.New(tenantID, "default", "accounts.Account", assignmentrule.TypeCriteria,
		assignmentrule.WithPriority(1),
		assignmentrule.WithAssignees([]uuid.UUID{catchAll}),
	)
	rules := newMemRuleRepo(vipRule, fallback)

	accounts := newMemAccountRepo()
	whale := account.New(tenantID, "whale", account.WithAnnualRevenue(decimal.NewFromInt(5000000)))
	minnow := account.New(tenantID, "minnow", account.WithAnnualRevenue(decimal.NewFromInt(1000)))
	accounts.records[whale.ID()] = whale
	accounts.records[minnow.ID()] = minnow

	svc := newAssignmentService(accounts, rules)

	owner, err := svc.Evaluate(testCtx(tenantID), "accounts.Account", whale.ID())
	require.NoError(t, err)
	require.Equal(t, vip, owner)

	owner, err = svc.Evaluate(testCtx(tenantID), "accounts.Account", minnow.ID())
	require.NoError(t, err)
	require.Equal(t, catchAll, owner)
}

func TestAssignmentService_NoRulesLeavesUnowned(t *testing.T) {
	tenantID := uuid.New()
	accounts := newMemAccountRepo()
	acc := account.New(tenantID, "fresh")
	accounts.records[acc.ID()] = acc

	svc := newAssignmentService(accounts, newMemRuleRepo())

	owner, err := svc.Evaluate(testCtx(tenantID), "accounts.Account", acc.ID())
	require.NoError(t, err)
	require.Equal(t, uuid.Nil, owner)
	require.Equal(t, uuid.Nil, accounts.records[acc.ID()].OwnerID())
}

func TestAssignmentService_UnknownRecordType(t *testing.T) {
	svc := newAssignmentService(newMemAccountRepo(), newMemRuleRepo())

	_, err := svc.Evaluate(testCtx(uuid.New()), "contacts.Contact", uuid.New())
	require.ErrorIs(t, err, ErrUnknownRecordType)
}
