package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/modules/core/domain/entities/member"
	"github.com/vantagecrm/vantage/modules/core/infrastructure/persistence/models"
	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/mapping"
	"github.com/vantagecrm/vantage/pkg/policy"
)

const (
	memberFindQuery = `
		SELECT
			id,
			tenant_id,
			user_id,
			manager_id,
			status,
			is_tenant_admin,
			hire_date,
			quota_amount,
			commission_rate,
			phone,
			created_at,
			updated_at
		FROM tenant_members`

	memberInsertQuery = `
		INSERT INTO tenant_members (id, tenant_id, user_id, manager_id, status, is_tenant_admin, hire_date, quota_amount, commission_rate, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())`

	memberUpdateQuery = `
		UPDATE tenant_members
		SET manager_id = $1, status = $2, is_tenant_admin = $3, hire_date = $4, quota_amount = $5, commission_rate = $6, phone = $7, updated_at = NOW()
		WHERE id = $8 AND tenant_id = $9`

	memberDeleteQuery = `DELETE FROM tenant_members WHERE id = $1 AND tenant_id = $2`
)

type PgMemberRepository struct{}

func NewMemberRepository() member.Repository {
	return &PgMemberRepository{}
}

func (g *PgMemberRepository) GetByID(ctx context.Context, id uuid.UUID) (member.Member, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return member.Member{}, err
	}

	members, err := g.queryMembers(ctx, memberFindQuery+" WHERE id = $1 AND tenant_id = $2", id.String(), tenantID.String())
	if err != nil {
		return member.Member{}, err
	}
	if len(members) == 0 {
		return member.Member{}, member.ErrNotFound
	}
	return members[0], nil
}

func (g *PgMemberRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (member.Member, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return member.Member{}, err
	}

	members, err := g.queryMembers(ctx, memberFindQuery+" WHERE user_id = $1 AND tenant_id = $2", userID.String(), tenantID.String())
	if err != nil {
		return member.Member{}, err
	}
	if len(members) == 0 {
		return member.Member{}, member.ErrNotFound
	}
	return members[0], nil
}

// FilterViewable lists the memberships the clause admits; the clause
// is the whole predicate, including any tenant scoping.
func (g *PgMemberRepository) FilterViewable(ctx context.Context, clause policy.Clause) ([]member.Member, error) {
	query := fmt.Sprintf("%s WHERE %s ORDER BY created_at", memberFindQuery, clause.Expr)
	return g.queryMembers(ctx, query, clause.Args...)
}

func (g *PgMemberRepository) Create(ctx context.Context, m member.Member) (member.Member, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return member.Member{}, err
	}

	_, err = tx.Exec(ctx, memberInsertQuery,
		m.ID().String(),
		m.TenantID().String(),
		m.UserID().String(),
		mapping.UUIDToSQLNullString(m.ManagerID()),
		string(m.Status()),
		m.IsTenantAdmin(),
		mapping.ValueToSQLNullTime(m.HireDate()),
		m.QuotaAmount().String(),
		m.CommissionRate().String(),
		mapping.ValueToSQLNullString(m.Phone()),
	)
	if err != nil {
		return member.Member{}, errors.Wrap(err, "failed to create tenant member")
	}
	return g.GetByID(ctx, m.ID())
}

func (g *PgMemberRepository) Update(ctx context.Context, m member.Member) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, memberUpdateQuery,
		mapping.UUIDToSQLNullString(m.ManagerID()),
		string(m.Status()),
		m.IsTenantAdmin(),
		mapping.ValueToSQLNullTime(m.HireDate()),
		m.QuotaAmount().String(),
		m.CommissionRate().String(),
		mapping.ValueToSQLNullString(m.Phone()),
		m.ID().String(),
		m.TenantID().String(),
	)
	return errors.Wrap(err, "failed to update tenant member")
}

func (g *PgMemberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, memberDeleteQuery, id.String(), tenantID.String())
	return err
}

func (g *PgMemberRepository) queryMembers(ctx context.Context, query string, args ...interface{}) ([]member.Member, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var members []member.Member
	for rows.Next() {
		var m models.TenantMember
		if err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&m.UserID,
			&m.ManagerID,
			&m.Status,
			&m.IsTenantAdmin,
			&m.HireDate,
			&m.QuotaAmount,
			&m.CommissionRate,
			&m.Phone,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan tenant member row")
		}
		entity, err := toDomainMember(&m)
		if err != nil {
			return nil, err
		}
		members = append(members, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return members, nil
}
