package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/modules/core/domain/entities/member"
	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/policy"
)

// MemberService manages tenant memberships. The roster is visible to
// the whole tenant; changes need a grant or tenant-admin standing.
type MemberService struct {
	repo     member.Repository
	policies *policy.Registry
}

func NewMemberService(repo member.Repository, policies *policy.Registry) *MemberService {
	return &MemberService{repo: repo, policies: policies}
}

func (s *MemberService) GetByID(ctx context.Context, id uuid.UUID) (member.Member, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (member.Member, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return member.Member{}, err
		}
		if err := ensureCanView(txCtx, s.policies, entity); err != nil {
			return member.Member{}, err
		}
		return entity, nil
	})
}

func (s *MemberService) GetByUserID(ctx context.Context, userID uuid.UUID) (member.Member, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (member.Member, error) {
		entity, err := s.repo.GetByUserID(txCtx, userID)
		if err != nil {
			return member.Member{}, err
		}
		if err := ensureCanView(txCtx, s.policies, entity); err != nil {
			return member.Member{}, err
		}
		return entity, nil
	})
}

// GetViewable lists the roster rows the caller may see, filtered in
// SQL by the policy clause.
func (s *MemberService) GetViewable(ctx context.Context) ([]member.Member, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]member.Member, error) {
		clause, err := viewableClause(txCtx, s.policies, "tenants.TenantMember")
		if err != nil {
			return nil, err
		}
		return s.repo.FilterViewable(txCtx, clause)
	})
}

func (s *MemberService) Create(ctx context.Context, entity member.Member) (member.Member, error) {
	if err := authorizeCore(ctx, MembersAuthzObject, "create"); err != nil {
		return member.Member{}, err
	}
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (member.Member, error) {
		return s.repo.Create(txCtx, entity)
	})
}

func (s *MemberService) Update(ctx context.Context, entity member.Member) error {
	if err := authorizeCore(ctx, MembersAuthzObject, "update"); err != nil {
		return err
	}
	return composables.InTenantTx(ctx, func(txCtx context.Context) error {
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

func (s *MemberService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := authorizeCore(ctx, MembersAuthzObject, "delete"); err != nil {
		return err
	}
	return composables.InTenantTx(ctx, func(txCtx context.Context) error {
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
