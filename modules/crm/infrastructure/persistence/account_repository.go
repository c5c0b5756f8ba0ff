package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/account"
	"github.com/vantagecrm/vantage/modules/crm/infrastructure/persistence/models"
	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/mapping"
	"github.com/vantagecrm/vantage/pkg/policy"
)

const (
	accountFindQuery = `
		SELECT
			id,
			tenant_id,
			owner_id,
			name,
			website,
			industry,
			country,
			annual_revenue,
			status,
			created_at,
			updated_at
		FROM accounts`

	accountCountQuery = `SELECT COUNT(id) FROM accounts WHERE tenant_id = $1`

	accountCountOwnedQuery = `SELECT COUNT(id) FROM accounts WHERE tenant_id = $1 AND owner_id = $2`

	accountInsertQuery = `
		INSERT INTO accounts (id, tenant_id, owner_id, name, website, industry, country, annual_revenue, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())`

	accountUpdateQuery = `
		UPDATE accounts
		SET owner_id = $1, name = $2, website = $3, industry = $4, country = $5, annual_revenue = $6, status = $7, updated_at = NOW()
		WHERE id = $8 AND tenant_id = $9`

	accountDeleteQuery = `DELETE FROM accounts WHERE id = $1 AND tenant_id = $2`
)

type PgAccountRepository struct{}

func NewAccountRepository() account.Repository {
	return &PgAccountRepository{}
}

func (g *PgAccountRepository) Count(ctx context.Context) (int64, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := tx.QueryRow(ctx, accountCountQuery, tenantID.String()).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count accounts")
	}
	return count, nil
}

func (g *PgAccountRepository) CountOwnedBy(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := tx.QueryRow(ctx, accountCountOwnedQuery, tenantID.String(), ownerID.String()).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count owned accounts")
	}
	return count, nil
}

func (g *PgAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (account.Account, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return account.Account{}, err
	}

	rows, err := g.queryAccounts(ctx, accountFindQuery+" WHERE id = $1 AND tenant_id = $2", id.String(), tenantID.String())
	if err != nil {
		return account.Account{}, err
	}
	if len(rows) == 0 {
		return account.Account{}, account.ErrNotFound
	}
	return rows[0], nil
}

func (g *PgAccountRepository) GetPaginated(ctx context.Context, params *account.FindParams) ([]account.Account, error) {
	if params == nil {
		params = &account.FindParams{}
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	query := accountFindQuery + " WHERE tenant_id = $1"
	args := []interface{}{tenantID.String()}
	query, args = appendSearch(query, args, params.Query, "name", "website", "industry")
	query, args = paginate(query+" ORDER BY created_at DESC, id", args, params.Limit, params.Offset)

	return g.queryAccounts(ctx, query, args...)
}

// FilterViewable applies the caller's row predicate on top of tenant
// isolation. The predicate owns placeholders $1..$n, so it leads the
// argument list.
func (g *PgAccountRepository) FilterViewable(ctx context.Context, clause policy.Clause, params *account.FindParams) ([]account.Account, error) {
	if params == nil {
		params = &account.FindParams{}
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	args := append([]interface{}{}, clause.Args...)
	query := fmt.Sprintf("%s WHERE (%s) AND tenant_id = $%d", accountFindQuery, clause.Expr, len(args)+1)
	args = append(args, tenantID.String())
	query, args = appendSearch(query, args, params.Query, "name", "website", "industry")
	query, args = paginate(query+" ORDER BY created_at DESC, id", args, params.Limit, params.Offset)

	return g.queryAccounts(ctx, query, args...)
}

func (g *PgAccountRepository) Create(ctx context.Context, entity account.Account) (account.Account, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return account.Account{}, err
	}

	_, err = tx.Exec(ctx, accountInsertQuery,
		entity.ID().String(),
		entity.TenantID().String(),
		mapping.UUIDToSQLNullString(entity.OwnerID()),
		entity.Name(),
		mapping.ValueToSQLNullString(entity.Website()),
		mapping.ValueToSQLNullString(entity.Industry()),
		mapping.ValueToSQLNullString(entity.Country()),
		entity.AnnualRevenue().String(),
		string(entity.Status()),
	)
	if err != nil {
		return account.Account{}, errors.Wrap(err, "failed to create account")
	}
	return g.GetByID(ctx, entity.ID())
}

func (g *PgAccountRepository) Update(ctx context.Context, entity account.Account) (account.Account, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return account.Account{}, err
	}

	_, err = tx.Exec(ctx, accountUpdateQuery,
		mapping.UUIDToSQLNullString(entity.OwnerID()),
		entity.Name(),
		mapping.ValueToSQLNullString(entity.Website()),
		mapping.ValueToSQLNullString(entity.Industry()),
		mapping.ValueToSQLNullString(entity.Country()),
		entity.AnnualRevenue().String(),
		string(entity.Status()),
		entity.ID().String(),
		entity.TenantID().String(),
	)
	if err != nil {
		return account.Account{}, errors.Wrap(err, "failed to update account")
	}
	return g.GetByID(ctx, entity.ID())
}

func (g *PgAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, accountDeleteQuery, id.String(), tenantID.String())
	return err
}

func (g *PgAccountRepository) queryAccounts(ctx context.Context, query string, args ...interface{}) ([]account.Account, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var accounts []account.Account
	for rows.Next() {
		var m models.Account
		if err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&m.OwnerID,
			&m.Name,
			&m.Website,
			&m.Industry,
			&m.Country,
			&m.AnnualRevenue,
			&m.Status,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan account row")
		}
		entity, err := toDomainAccount(&m)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return accounts, nil
}
