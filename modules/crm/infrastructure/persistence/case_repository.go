package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/kase"
	"github.com/vantagecrm/vantage/modules/crm/infrastructure/persistence/models"
	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/mapping"
	"github.com/vantagecrm/vantage/pkg/policy"
)

const (
	caseFindQuery = `
		SELECT
			id,
			tenant_id,
			owner_id,
			account_id,
			subject,
			description,
			priority,
			status,
			country,
			sla_due_at,
			sla_breached,
			created_at,
			updated_at
		FROM cases`

	caseCountQuery = `SELECT COUNT(id) FROM cases WHERE tenant_id = $1`

	caseCountOwnedQuery = `SELECT COUNT(id) FROM cases WHERE tenant_id = $1 AND owner_id = $2`

	// Runs tenant-agnostic from the SLA sweep worker.
	caseSLAOverdueQuery = caseFindQuery + `
		WHERE sla_breached = FALSE
		  AND sla_due_at IS NOT NULL
		  AND sla_due_at < $1
		  AND status IN ('new', 'in_progress', 'on_hold')
		ORDER BY sla_due_at
		LIMIT $2`

	caseInsertQuery = `
		INSERT INTO cases (id, tenant_id, owner_id, account_id, subject, description, priority, status, country, sla_due_at, sla_breached, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())`

	caseUpdateQuery = `
		UPDATE cases
		SET owner_id = $1, account_id = $2, subject = $3, description = $4, priority = $5, status = $6, country = $7, sla_due_at = $8, sla_breached = $9, updated_at = NOW()
		WHERE id = $10 AND tenant_id = $11`

	caseDeleteQuery = `DELETE FROM cases WHERE id = $1 AND tenant_id = $2`
)

type PgCaseRepository struct{}

func NewCaseRepository() kase.Repository {
	return &PgCaseRepository{}
}

func (g *PgCaseRepository) Count(ctx context.Context) (int64, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := tx.QueryRow(ctx, caseCountQuery, tenantID.String()).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count cases")
	}
	return count, nil
}

func (g *PgCaseRepository) CountOwnedBy(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := tx.QueryRow(ctx, caseCountOwnedQuery, tenantID.String(), ownerID.String()).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count owned cases")
	}
	return count, nil
}

func (g *PgCaseRepository) GetByID(ctx context.Context, id uuid.UUID) (kase.Case, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return kase.Case{}, err
	}
	return g.getInTenant(ctx, id, tenantID)
}

func (g *PgCaseRepository) getInTenant(ctx context.Context, id, tenantID uuid.UUID) (kase.Case, error) {
	rows, err := g.queryCases(ctx, caseFindQuery+" WHERE id = $1 AND tenant_id = $2", id.String(), tenantID.String())
	if err != nil {
		return kase.Case{}, err
	}
	if len(rows) == 0 {
		return kase.Case{}, kase.ErrNotFound
	}
	return rows[0], nil
}

func (g *PgCaseRepository) GetPaginated(ctx context.Context, params *kase.FindParams) ([]kase.Case, error) {
	if params == nil {
		params = &kase.FindParams{}
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	query := caseFindQuery + " WHERE tenant_id = $1"
	args := []interface{}{tenantID.String()}
	query, args = appendEquals(query, args, "status", string(params.Status))
	query, args = appendSearch(query, args, params.Query, "subject", "description")
	query, args = paginate(query+" ORDER BY created_at DESC, id", args, params.Limit, params.Offset)

	return g.queryCases(ctx, query, args...)
}

func (g *PgCaseRepository) FilterViewable(ctx context.Context, clause policy.Clause, params *kase.FindParams) ([]kase.Case, error) {
	if params == nil {
		params = &kase.FindParams{}
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	args := append([]interface{}{}, clause.Args...)
	query := fmt.Sprintf("%s WHERE (%s) AND tenant_id = $%d", caseFindQuery, clause.Expr, len(args)+1)
	args = append(args, tenantID.String())
	query, args = appendEquals(query, args, "status", string(params.Status))
	query, args = appendSearch(query, args, params.Query, "subject", "description")
	query, args = paginate(query+" ORDER BY created_at DESC, id", args, params.Limit, params.Offset)

	return g.queryCases(ctx, query, args...)
}

func (g *PgCaseRepository) GetSLAOverdue(ctx context.Context, asOf time.Time, limit int) ([]kase.Case, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	return g.queryCases(ctx, caseSLAOverdueQuery, asOf, limit)
}

func (g *PgCaseRepository) Create(ctx context.Context, entity kase.Case) (kase.Case, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return kase.Case{}, err
	}

	_, err = tx.Exec(ctx, caseInsertQuery,
		entity.ID().String(),
		entity.TenantID().String(),
		mapping.UUIDToSQLNullString(entity.OwnerID()),
		mapping.UUIDToSQLNullString(entity.AccountID()),
		entity.Subject(),
		mapping.ValueToSQLNullString(entity.Description()),
		string(entity.Priority()),
		string(entity.Status()),
		mapping.ValueToSQLNullString(entity.Country()),
		mapping.ValueToSQLNullTime(entity.SLADueAt()),
		entity.SLABreached(),
	)
	if err != nil {
		return kase.Case{}, errors.Wrap(err, "failed to create case")
	}
	return g.getInTenant(ctx, entity.ID(), entity.TenantID())
}

func (g *PgCaseRepository) Update(ctx context.Context, entity kase.Case) (kase.Case, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return kase.Case{}, err
	}

	_, err = tx.Exec(ctx, caseUpdateQuery,
		mapping.UUIDToSQLNullString(entity.OwnerID()),
		mapping.UUIDToSQLNullString(entity.AccountID()),
		entity.Subject(),
		mapping.ValueToSQLNullString(entity.Description()),
		string(entity.Priority()),
		string(entity.Status()),
		mapping.ValueToSQLNullString(entity.Country()),
		mapping.ValueToSQLNullTime(entity.SLADueAt()),
		entity.SLABreached(),
		entity.ID().String(),
		entity.TenantID().String(),
	)
	if err != nil {
		return kase.Case{}, errors.Wrap(err, "failed to update case")
	}
	// Scoped by the row's own tenant so the tenant-agnostic SLA sweep
	// can write cases across tenants.
	return g.getInTenant(ctx, entity.ID(), entity.TenantID())
}

func (g *PgCaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, caseDeleteQuery, id.String(), tenantID.String())
	return err
}

func (g *PgCaseRepository) queryCases(ctx context.Context, query string, args ...interface{}) ([]kase.Case, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var cases []kase.Case
	for rows.Next() {
		var m models.Case
		if err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&m.OwnerID,
			&m.AccountID,
			&m.Subject,
			&m.Description,
			&m.Priority,
			&m.Status,
			&m.Country,
			&m.SLADueAt,
			&m.SLABreached,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan case row")
		}
		entity, err := toDomainCase(&m)
		if err != nil {
			return nil, err
		}
		cases = append(cases, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return cases, nil
}
