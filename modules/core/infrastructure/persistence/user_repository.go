package persistence

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/modules/core/domain/aggregates/user"
	"github.com/vantagecrm/vantage/modules/core/infrastructure/persistence/models"
	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/mapping"
)

const (
	userFindQuery = `
		SELECT
			id,
			tenant_id,
			email,
			first_name,
			last_name,
			is_superuser,
			is_active,
			permissions,
			created_at,
			updated_at
		FROM users`

	userInsertQuery = `
		INSERT INTO users (id, tenant_id, email, first_name, last_name, is_superuser, is_active, permissions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())`

	userUpdateQuery = `
		UPDATE users
		SET tenant_id = $1, email = $2, first_name = $3, last_name = $4, is_superuser = $5, is_active = $6, permissions = $7, updated_at = NOW()
		WHERE id = $8`

	userDeleteQuery = `DELETE FROM users WHERE id = $1`
)

type PgUserRepository struct{}

func NewUserRepository() user.Repository {
	return &PgUserRepository{}
}

func (g *PgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	users, err := g.queryUsers(ctx, userFindQuery+" WHERE id = $1", id.String())
	if err != nil {
		return user.User{}, err
	}
	if len(users) == 0 {
		return user.User{}, user.ErrNotFound
	}
	return users[0], nil
}

func (g *PgUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	users, err := g.queryUsers(ctx, userFindQuery+" WHERE email = $1", strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return user.User{}, err
	}
	if len(users) == 0 {
		return user.User{}, user.ErrNotFound
	}
	return users[0], nil
}

func (g *PgUserRepository) GetAll(ctx context.Context) ([]user.User, error) {
	return g.queryUsers(ctx, userFindQuery+" ORDER BY created_at")
}

func (g *PgUserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, err
	}

	_, err = tx.Exec(ctx, userInsertQuery,
		u.ID().String(),
		mapping.UUIDToSQLNullString(u.TenantID()),
		u.Email(),
		mapping.ValueToSQLNullString(u.FirstName()),
		mapping.ValueToSQLNullString(u.LastName()),
		u.IsSuperuser(),
		u.IsActive(),
		u.Permissions(),
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "failed to create user")
	}
	return g.GetByID(ctx, u.ID())
}

func (g *PgUserRepository) Update(ctx context.Context, u user.User) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, userUpdateQuery,
		mapping.UUIDToSQLNullString(u.TenantID()),
		u.Email(),
		mapping.ValueToSQLNullString(u.FirstName()),
		mapping.ValueToSQLNullString(u.LastName()),
		u.IsSuperuser(),
		u.IsActive(),
		u.Permissions(),
		u.ID().String(),
	)
	return errors.Wrap(err, "failed to update user")
}

func (g *PgUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, userDeleteQuery, id.String())
	return err
}

func (g *PgUserRepository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var m models.User
		if err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&m.Email,
			&m.FirstName,
			&m.LastName,
			&m.IsSuperuser,
			&m.IsActive,
			&m.Permissions,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan user row")
		}
		entity, err := toDomainUser(&m)
		if err != nil {
			return nil, err
		}
		users = append(users, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return users, nil
}
