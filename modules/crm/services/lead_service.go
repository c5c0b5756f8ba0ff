package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/lead"
	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/eventbus"
	"github.com/vantagecrm/vantage/pkg/policy"
)

type LeadService struct {
	repo      lead.Repository
	publisher eventbus.EventBus
	policies  *policy.Registry
}

func NewLeadService(repo lead.Repository, publisher eventbus.EventBus, policies *policy.Registry) *LeadService {
	return &LeadService{
		repo:      repo,
		publisher: publisher,
		policies:  policies,
	}
}

func (s *LeadService) Count(ctx context.Context) (int64, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (int64, error) {
		return s.repo.Count(txCtx)
	})
}

func (s *LeadService) GetByID(ctx context.Context, id uuid.UUID) (lead.Lead, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (lead.Lead, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return lead.Lead{}, err
		}
		if err := ensureCanView(txCtx, s.policies, entity); err != nil {
			return lead.Lead{}, err
		}
		return entity, nil
	})
}

func (s *LeadService) GetViewable(ctx context.Context, params *lead.FindParams) ([]lead.Lead, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]lead.Lead, error) {
		clause, err := viewableClause(txCtx, s.policies, "leads.Lead")
		if err != nil {
			return nil, err
		}
		return s.repo.FilterViewable(txCtx, clause, params)
	})
}

func (s *LeadService) Create(ctx context.Context, entity lead.Lead) (lead.Lead, error) {
	if err := authorizeCRM(ctx, LeadsAuthzObject, "create"); err != nil {
		return lead.Lead{}, err
	}
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (lead.Lead, error) {
		created, err := s.repo.Create(txCtx, entity)
		if err != nil {
			return lead.Lead{}, err
		}
		s.publisher.Publish(lead.CreatedEvent{Result: created})
		return created, nil
	})
}

func (s *LeadService) Update(ctx context.Context, entity lead.Lead) (lead.Lead, error) {
	if err := authorizeCRM(ctx, LeadsAuthzObject, "update"); err != nil {
		return lead.Lead{}, err
	}
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (lead.Lead, error) {
		current, err := s.repo.GetByID(txCtx, entity.ID())
		if err != nil {
			return lead.Lead{}, err
		}
		if err := ensureCanChange(txCtx, s.policies, current); err != nil {
			return lead.Lead{}, err
		}
		updated, err := s.repo.Update(txCtx, entity)
		if err != nil {
			return lead.Lead{}, err
		}
		s.publisher.Publish(lead.UpdatedEvent{Result: updated})
		return updated, nil
	})
}

func (s *LeadService) Delete(ctx context.Context, id uuid.UUID) (lead.Lead, error) {
	if err := authorizeCRM(ctx, LeadsAuthzObject, "delete"); err != nil {
		return lead.Lead{}, err
	}
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (lead.Lead, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return lead.Lead{}, err
		}
		if err := ensureCanDelete(txCtx, s.policies, entity); err != nil {
			return lead.Lead{}, err
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return lead.Lead{}, err
		}
		s.publisher.Publish(lead.DeletedEvent{Result: entity})
		return entity, nil
	})
}

func (s *LeadService) Assign(ctx context.Context, id, ownerID uuid.UUID) (lead.Lead, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (lead.Lead, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return lead.Lead{}, err
		}
		updated, err := s.repo.Update(txCtx, entity.WithOwner(ownerID))
		if err != nil {
			return lead.Lead{}, err
		}
		s.publisher.Publish(lead.UpdatedEvent{Result: updated})
		return updated, nil
	})
}
