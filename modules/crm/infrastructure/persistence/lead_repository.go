package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/lead"
	"github.com/vantagecrm/vantage/modules/crm/infrastructure/persistence/models"
	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/mapping"
	"github.com/vantagecrm/vantage/pkg/policy"
)

const (
	leadFindQuery = `
		SELECT
			id,
			tenant_id,
			owner_id,
			first_name,
			last_name,
			company,
			email,
			phone,
			source,
			country,
			status,
			created_at,
			updated_at
		FROM leads`

	leadCountQuery = `SELECT COUNT(id) FROM leads WHERE tenant_id = $1`

	leadCountOwnedQuery = `SELECT COUNT(id) FROM leads WHERE tenant_id = $1 AND owner_id = $2`

	leadInsertQuery = `
		INSERT INTO leads (id, tenant_id, owner_id, first_name, last_name, company, email, phone, source, country, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())`

	leadUpdateQuery = `
		UPDATE leads
		SET owner_id = $1, first_name = $2, last_name = $3, company = $4, email = $5, phone = $6, source = $7, country = $8, status = $9, updated_at = NOW()
		WHERE id = $10 AND tenant_id = $11`

	leadDeleteQuery = `DELETE FROM leads WHERE id = $1 AND tenant_id = $2`
)

type PgLeadRepository struct{}

func NewLeadRepository() lead.Repository {
	return &PgLeadRepository{}
}

func (g *PgLeadRepository) Count(ctx context.Context) (int64, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := tx.QueryRow(ctx, leadCountQuery, tenantID.String()).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count leads")
	}
	return count, nil
}

func (g *PgLeadRepository) CountOwnedBy(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := tx.QueryRow(ctx, leadCountOwnedQuery, tenantID.String(), ownerID.String()).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count owned leads")
	}
	return count, nil
}

func (g *PgLeadRepository) GetByID(ctx context.Context, id uuid.UUID) (lead.Lead, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return lead.Lead{}, err
	}

	rows, err := g.queryLeads(ctx, leadFindQuery+" WHERE id = $1 AND tenant_id = $2", id.String(), tenantID.String())
	if err != nil {
		return lead.Lead{}, err
	}
	if len(rows) == 0 {
		return lead.Lead{}, lead.ErrNotFound
	}
	return rows[0], nil
}

func (g *PgLeadRepository) GetPaginated(ctx context.Context, params *lead.FindParams) ([]lead.Lead, error) {
	if params == nil {
		params = &lead.FindParams{}
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	query := leadFindQuery + " WHERE tenant_id = $1"
	args := []interface{}{tenantID.String()}
	query, args = appendEquals(query, args, "status", string(params.Status))
	query, args = appendSearch(query, args, params.Query, "first_name", "last_name", "company", "email")
	query, args = paginate(query+" ORDER BY created_at DESC, id", args, params.Limit, params.Offset)

	return g.queryLeads(ctx, query, args...)
}

func (g *PgLeadRepository) FilterViewable(ctx context.Context, clause policy.Clause, params *lead.FindParams) ([]lead.Lead, error) {
	if params == nil {
		params = &lead.FindParams{}
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	args := append([]interface{}{}, clause.Args...)
	query := fmt.Sprintf("%s WHERE (%s) AND tenant_id = $%d", leadFindQuery, clause.Expr, len(args)+1)
	args = append(args, tenantID.String())
	query, args = appendEquals(query, args, "status", string(params.Status))
	query, args = appendSearch(query, args, params.Query, "first_name", "last_name", "company", "email")
	query, args = paginate(query+" ORDER BY created_at DESC, id", args, params.Limit, params.Offset)

	return g.queryLeads(ctx, query, args...)
}

func (g *PgLeadRepository) Create(ctx context.Context, entity lead.Lead) (lead.Lead, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return lead.Lead{}, err
	}

	_, err = tx.Exec(ctx, leadInsertQuery,
		entity.ID().String(),
		entity.TenantID().String(),
		mapping.UUIDToSQLNullString(entity.OwnerID()),
		mapping.ValueToSQLNullString(entity.FirstName()),
		mapping.ValueToSQLNullString(entity.LastName()),
		entity.Company(),
		mapping.ValueToSQLNullString(entity.Email()),
		mapping.ValueToSQLNullString(entity.Phone()),
		mapping.ValueToSQLNullString(entity.Source()),
		mapping.ValueToSQLNullString(entity.Country()),
		string(entity.Status()),
	)
	if err != nil {
		return lead.Lead{}, errors.Wrap(err, "failed to create lead")
	}
	return g.GetByID(ctx, entity.ID())
}

func (g *PgLeadRepository) Update(ctx context.Context, entity lead.Lead) (lead.Lead, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return lead.Lead{}, err
	}

	_, err = tx.Exec(ctx, leadUpdateQuery,
		mapping.UUIDToSQLNullString(entity.OwnerID()),
		mapping.ValueToSQLNullString(entity.FirstName()),
		mapping.ValueToSQLNullString(entity.LastName()),
		entity.Company(),
		mapping.ValueToSQLNullString(entity.Email()),
		mapping.ValueToSQLNullString(entity.Phone()),
		mapping.ValueToSQLNullString(entity.Source()),
		mapping.ValueToSQLNullString(entity.Country()),
		string(entity.Status()),
		entity.ID().String(),
		entity.TenantID().String(),
	)
	if err != nil {
		return lead.Lead{}, errors.Wrap(err, "failed to update lead")
	}
	return g.GetByID(ctx, entity.ID())
}

func (g *PgLeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, leadDeleteQuery, id.String(), tenantID.String())
	return err
}

func (g *PgLeadRepository) queryLeads(ctx context.Context, query string, args ...interface{}) ([]lead.Lead, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var leads []lead.Lead
	for rows.Next() {
		var m models.Lead
		if err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&m.OwnerID,
			&m.FirstName,
			&m.LastName,
			&m.Company,
			&m.Email,
			&m.Phone,
			&m.Source,
			&m.Country,
			&m.Status,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan lead row")
		}
		entity, err := toDomainLead(&m)
		if err != nil {
			return nil, err
		}
		leads = append(leads, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return leads, nil
}
