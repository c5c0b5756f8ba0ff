package persistence

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/modules/core/domain/entities/tenant"
	"github.com/vantagecrm/vantage/modules/core/infrastructure/persistence/models"
	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/mapping"
)

const (
	tenantFindQuery = `SELECT id, name, subdomain, plan, timezone, currency, is_active, created_at, updated_at FROM tenants`

	tenantInsertQuery = `
		INSERT INTO tenants (id, name, subdomain, plan, timezone, currency, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`

	tenantUpdateQuery = `
		UPDATE tenants
		SET name = $1, subdomain = $2, plan = $3, timezone = $4, currency = $5, is_active = $6, updated_at = NOW()
		WHERE id = $7`
)

type PgTenantRepository struct{}

func NewTenantRepository() tenant.Repository {
	return &PgTenantRepository{}
}

func (g *PgTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	tenants, err := g.queryTenants(ctx, tenantFindQuery+" WHERE id = $1", id.String())
	if err != nil {
		return nil, err
	}
	if len(tenants) == 0 {
		return nil, tenant.ErrNotFound
	}
	return tenants[0], nil
}

func (g *PgTenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*tenant.Tenant, error) {
	tenants, err := g.queryTenants(ctx, tenantFindQuery+" WHERE subdomain = $1", strings.ToLower(strings.TrimSpace(subdomain)))
	if err != nil {
		return nil, err
	}
	if len(tenants) == 0 {
		return nil, tenant.ErrNotFound
	}
	return tenants[0], nil
}

func (g *PgTenantRepository) GetAll(ctx context.Context) ([]*tenant.Tenant, error) {
	return g.queryTenants(ctx, tenantFindQuery+" ORDER BY created_at")
}

func (g *PgTenantRepository) Create(ctx context.Context, t *tenant.Tenant) (*tenant.Tenant, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, tenantInsertQuery,
		t.ID().String(),
		t.Name(),
		mapping.ValueToSQLNullString(strings.ToLower(strings.TrimSpace(t.Subdomain()))),
		t.Plan(),
		t.Timezone(),
		t.Currency(),
		t.IsActive(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create tenant")
	}
	return g.GetByID(ctx, t.ID())
}

func (g *PgTenantRepository) Update(ctx context.Context, t *tenant.Tenant) (*tenant.Tenant, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, tenantUpdateQuery,
		t.Name(),
		mapping.ValueToSQLNullString(strings.ToLower(strings.TrimSpace(t.Subdomain()))),
		t.Plan(),
		t.Timezone(),
		t.Currency(),
		t.IsActive(),
		t.ID().String(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update tenant")
	}
	return g.GetByID(ctx, t.ID())
}

func (g *PgTenantRepository) queryTenants(ctx context.Context, query string, args ...interface{}) ([]*tenant.Tenant, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var tenants []*tenant.Tenant
	for rows.Next() {
		var m models.Tenant
		if err := rows.Scan(
			&m.ID,
			&m.Name,
			&m.Subdomain,
			&m.Plan,
			&m.Timezone,
			&m.Currency,
			&m.IsActive,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan tenant row")
		}
		entity, err := toDomainTenant(&m)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return tenants, nil
}
