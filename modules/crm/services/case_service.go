package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/kase"
	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/eventbus"
	"github.com/vantagecrm/vantage/pkg/policy"
)

type CaseService struct {
	repo      kase.Repository
	publisher eventbus.EventBus
	policies  *policy.Registry
}

func NewCaseService(repo kase.Repository, publisher eventbus.EventBus, policies *policy.Registry) *CaseService {
	return &CaseService{
		repo:      repo,
		publisher: publisher,
		policies:  policies,
	}
}

func (s *CaseService) Count(ctx context.Context) (int64, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (int64, error) {
		return s.repo.Count(txCtx)
	})
}

func (s *CaseService) GetByID(ctx context.Context, id uuid.UUID) (kase.Case, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (kase.Case, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return kase.Case{}, err
		}
		if err := ensureCanView(txCtx, s.policies, entity); err != nil {
			return kase.Case{}, err
		}
		return entity, nil
	})
}

func (s *CaseService) GetViewable(ctx context.Context, params *kase.FindParams) ([]kase.Case, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]kase.Case, error) {
		clause, err := viewableClause(txCtx, s.policies, "cases.Case")
		if err != nil {
			return nil, err
		}
		return s.repo.FilterViewable(txCtx, clause, params)
	})
}

func (s *CaseService) Create(ctx context.Context, entity kase.Case) (kase.Case, error) {
	if err := authorizeCRM(ctx, CasesAuthzObject, "create"); err != nil {
		return kase.Case{}, err
	}
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (kase.Case, error) {
		created, err := s.repo.Create(txCtx, entity)
		if err != nil {
			return kase.Case{}, err
		}
		s.publisher.Publish(kase.CreatedEvent{Result: created})
		return created, nil
	})
}

func (s *CaseService) Update(ctx context.Context, entity kase.Case) (kase.Case, error) {
	if err := authorizeCRM(ctx, CasesAuthzObject, "update"); err != nil {
		return kase.Case{}, err
	}
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (kase.Case, error) {
		current, err := s.repo.GetByID(txCtx, entity.ID())
		if err != nil {
			return kase.Case{}, err
		}
		if err := ensureCanChange(txCtx, s.policies, current); err != nil {
			return kase.Case{}, err
		}
		updated, err := s.repo.Update(txCtx, entity)
		if err != nil {
			return kase.Case{}, err
		}
		s.publisher.Publish(kase.UpdatedEvent{Result: updated})
		return updated, nil
	})
}

func (s *CaseService) Delete(ctx context.Context, id uuid.UUID) (kase.Case, error) {
	if err := authorizeCRM(ctx, CasesAuthzObject, "delete"); err != nil {
		return kase.Case{}, err
	}
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (kase.Case, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return kase.Case{}, err
		}
		if err := ensureCanDelete(txCtx, s.policies, entity); err != nil {
			return kase.Case{}, err
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return kase.Case{}, err
		}
		s.publisher.Publish(kase.DeletedEvent{Result: entity})
		return entity, nil
	})
}

func (s *CaseService) Assign(ctx context.Context, id, ownerID uuid.UUID) (kase.Case, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (kase.Case, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return kase.Case{}, err
		}
		updated, err := s.repo.Update(txCtx, entity.WithOwner(ownerID))
		if err != nil {
			return kase.Case{}, err
		}
		s.publisher.Publish(kase.UpdatedEvent{Result: updated})
		return updated, nil
	})
}
