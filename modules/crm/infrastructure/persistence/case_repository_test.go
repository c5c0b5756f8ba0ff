package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/kase"
	"github.com/vantagecrm/vantage/modules/crm/infrastructure/persistence/models"
	"github.com/vantagecrm/vantage/pkg/composables"
)

// caseRows yields a single stored row in the column order of
// caseFindQuery.
type caseRows struct {
	m    models.Case
	done bool
}

func (r *caseRows) Close()                                       {}
func (r *caseRows) Err() error                                   { return nil }
func (r *caseRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *caseRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *caseRows) Values() ([]any, error)                       { return nil, nil }
func (r *caseRows) RawValues() [][]byte                          { return nil }
func (r *caseRows) Conn() *pgx.Conn                              { return nil }

func (r *caseRows) Next() bool {
	if r.done {
		return false
	}
	r.done = true
	return true
}

func (r *caseRows) Scan(dest ...any) error {
	*(dest[0].(*string)) = r.m.ID
	*(dest[1].(*string)) = r.m.TenantID
	*(dest[2].(*sql.NullString)) = r.m.OwnerID
	*(dest[3].(*sql.NullString)) = r.m.AccountID
	*(dest[4].(*string)) = r.m.Subject
	*(dest[5].(*sql.NullString)) = r.m.Description
	*(dest[6].(*string)) = r.m.Priority
	*(dest[7].(*string)) = r.m.Status
	*(dest[8].(*sql.NullString)) = r.m.Country
	*(dest[9].(*sql.NullTime)) = r.m.SLADueAt
	*(dest[10].(*bool)) = r.m.SLABreached
	*(dest[11].(*time.Time)) = r.m.CreatedAt
	*(dest[12].(*time.Time)) = r.m.UpdatedAt
	return nil
}

// recordingTx captures executed statements and serves the stored case
// back for re-reads.
type recordingTx struct {
	pgx.Tx
	row       models.Case
	execSQL   []string
	execArgs  [][]any
	querySQL  []string
	queryArgs [][]any
}

func (t *recordingTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.execSQL = append(t.execSQL, sql)
	t.execArgs = append(t.execArgs, args)
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (t *recordingTx) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	t.querySQL = append(t.querySQL, sql)
	t.queryArgs = append(t.queryArgs, args)
	return &caseRows{m: t.row}, nil
}

// The SLA sweep runs without a tenant in context; updates must scope
// by the row's own tenant instead.
func TestPgCaseRepository_UpdateOutsideTenantContext(t *testing.T) {
	tenantID := uuid.New()
	id := uuid.New()
	now := time.Now()

	entity := kase.New(tenantID, "Printer on fire",
		kase.WithID(id),
		kase.WithSLADueAt(now.Add(-time.Hour)),
	).MarkSLABreached()

	tx := &recordingTx{row: models.Case{
		ID:          id.String(),
		TenantID:    tenantID.String(),
		Subject:     "Printer on fire",
		Priority:    "normal",
		Status:      "new",
		SLADueAt:    sql.NullTime{Time: now.Add(-time.Hour), Valid: true},
		SLABreached: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}}
	ctx := composables.WithTx(context.Background(), tx)

	updated, err := NewCaseRepository().Update(ctx, entity)
	require.NoError(t, err)
	require.True(t, updated.SLABreached())
	require.Equal(t, tenantID, updated.TenantID())

	require.Len(t, tx.execArgs, 1)
	require.Equal(t, tenantID.String(), tx.execArgs[0][10])
	require.Len(t, tx.queryArgs, 1)
	require.Equal(t, []any{id.String(), tenantID.String()}, tx.queryArgs[0])
}

func TestPgCaseRepository_GetPaginatedFilters(t *testing.T) {
	tenantID := uuid.New()
	tx := &recordingTx{row: models.Case{
		ID:        uuid.New().String(),
		TenantID:  tenantID.String(),
		Subject:   "Printer on fire",
		Priority:  "normal",
		Status:    "new",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}}
	ctx := composables.WithTenantID(composables.WithTx(context.Background(), tx), tenantID)

	_, err := NewCaseRepository().GetPaginated(ctx, &kase.FindParams{
		Status: kase.StatusNew,
		Query:  "printer",
		Limit:  10,
	})
	require.NoError(t, err)

	require.Len(t, tx.querySQL, 1)
	require.Contains(t, tx.querySQL[0], "status = $2")
	require.Contains(t, tx.querySQL[0], "subject ILIKE $3")
	require.Equal(t,
		[]any{tenantID.String(), "new", "%printer%", 10, 0},
		tx.queryArgs[0],
	)
}

func TestPgCaseRepository_GetByIDRequiresTenant(t *testing.T) {
	tx := &recordingTx{}
	ctx := composables.WithTx(context.Background(), tx)

	_, err := NewCaseRepository().GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, composables.ErrNoTenant)
	require.Empty(t, tx.querySQL)
}
