package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/account"
	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/eventbus"
	"github.com/vantagecrm/vantage/pkg/policy"
)

type AccountService struct {
	repo      account.Repository
	publisher eventbus.EventBus
	policies  *policy.Registry
}

func NewAccountService(repo account.Repository, publisher eventbus.EventBus, policies *policy.Registry) *AccountService {
	return &AccountService{
		repo:      repo,
		publisher: publisher,
		policies:  policies,
	}
}

func (s *AccountService) Count(ctx context.Context) (int64, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (int64, error) {
		return s.repo.Count(txCtx)
	})
}

func (s *AccountService) GetByID(ctx context.Context, id uuid.UUID) (account.Account, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (account.Account, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return account.Account{}, err
		}
		if err := ensureCanView(txCtx, s.policies, entity); err != nil {
			return account.Account{}, err
		}
		return entity, nil
	})
}

// GetViewable lists the rows the caller may see. The filter is a SQL
// predicate resolved from the policy, never a per-row loop.
func (s *AccountService) GetViewable(ctx context.Context, params *account.FindParams) ([]account.Account, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]account.Account, error) {
		clause, err := viewableClause(txCtx, s.policies, "accounts.Account")
		if err != nil {
			return nil, err
		}
		return s.repo.FilterViewable(txCtx, clause, params)
	})
}

func (s *AccountService) Create(ctx context.Context, entity account.Account) (account.Account, error) {
	if err := authorizeCRM(ctx, AccountsAuthzObject, "create"); err != nil {
		return account.Account{}, err
	}
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (account.Account, error) {
		created, err := s.repo.Create(txCtx, entity)
		if err != nil {
			return account.Account{}, err
		}
		s.publisher.Publish(account.CreatedEvent{Result: created})
		return created, nil
	})
}

func (s *AccountService) Update(ctx context.Context, entity account.Account) (account.Account, error) {
	if err := authorizeCRM(ctx, AccountsAuthzObject, "update"); err != nil {
		return account.Account{}, err
	}
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (account.Account, error) {
		current, err := s.repo.GetByID(txCtx, entity.ID())
		if err != nil {
			return account.Account{}, err
		}
		if err := ensureCanChange(txCtx, s.policies, current); err != nil {
			return account.Account{}, err
		}
		updated, err := s.repo.Update(txCtx, entity)
		if err != nil {
			return account.Account{}, err
		}
		s.publisher.Publish(account.UpdatedEvent{Result: updated})
		return updated, nil
	})
}

func (s *AccountService) Delete(ctx context.Context, id uuid.UUID) (account.Account, error) {
	if err := authorizeCRM(ctx, AccountsAuthzObject, "delete"); err != nil {
		return account.Account{}, err
	}
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (account.Account, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return account.Account{}, err
		}
		if err := ensureCanDelete(txCtx, s.policies, entity); err != nil {
			return account.Account{}, err
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return account.Account{}, err
		}
		s.publisher.Publish(account.DeletedEvent{Result: entity})
		return entity, nil
	})
}

// Assign sets the record owner without the caller needing change
// rights; it is used by the assignment engine.
func (s *AccountService) Assign(ctx context.Context, id, ownerID uuid.UUID) (account.Account, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (account.Account, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return account.Account{}, err
		}
		updated, err := s.repo.Update(txCtx, entity.WithOwner(ownerID))
		if err != nil {
			return account.Account{}, err
		}
		s.publisher.Publish(account.UpdatedEvent{Result: updated})
		return updated, nil
	})
}
