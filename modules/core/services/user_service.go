package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/modules/core/domain/aggregates/user"
	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/policy"
)

// UserService manages user records. Object-level visibility follows
// the user policy: self always, others per grant.
type UserService struct {
	repo     user.Repository
	policies *policy.Registry
}

func NewUserService(repo user.Repository, policies *policy.Registry) *UserService {
	return &UserService{repo: repo, policies: policies}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	var entity user.User
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		entity, err = s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		return ensureCanView(txCtx, s.policies, entity)
	})
	if err != nil {
		return user.User{}, err
	}
	return entity, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var entity user.User
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		entity, err = s.repo.GetByEmail(txCtx, email)
		if err != nil {
			return err
		}
		return ensureCanView(txCtx, s.policies, entity)
	})
	if err != nil {
		return user.User{}, err
	}
	return entity, nil
}

func (s *UserService) GetAll(ctx context.Context) ([]user.User, error) {
	var entities []user.User
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		entities, err = s.repo.GetAll(txCtx)
		return err
	})
	return entities, err
}

func (s *UserService) Create(ctx context.Context, entity user.User) (user.User, error) {
	if err := authorizeCore(ctx, UsersAuthzObject, "create"); err != nil {
		return user.User{}, err
	}
	var created user.User
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.repo.Create(txCtx, entity)
		return err
	})
	return created, err
}

func (s *UserService) Update(ctx context.Context, entity user.User) error {
	if err := authorizeCore(ctx, UsersAuthzObject, "update"); err != nil {
		return err
	}
	return composables.InTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetByID(txCtx, entity.ID())
		if err != nil {
			return err
		}
		if err := ensureCanChange(txCtx, s.policies, current); err != nil {
			return err
		}
		return s.repo.Update(txCtx, entity)
	})
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := authorizeCore(ctx, UsersAuthzObject, "delete"); err != nil {
		return err
	}
	return composables.InTx(ctx, func(txCtx context.Context) error {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := ensureCanDelete(txCtx, s.policies, entity); err != nil {
			return err
		}
		return s.repo.Delete(txCtx, id)
	})
}
