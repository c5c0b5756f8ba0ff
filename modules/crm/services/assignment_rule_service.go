package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/modules/crm/domain/entities/assignmentrule"
	"github.com/vantagecrm/vantage/pkg/composables"
)

type AssignmentRuleService struct {
	repo assignmentrule.Repository
}

func NewAssignmentRuleService(repo assignmentrule.Repository) *AssignmentRuleService {
	return &AssignmentRuleService{repo: repo}
}

func (s *AssignmentRuleService) GetByID(ctx context.Context, id uuid.UUID) (assignmentrule.Rule, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (assignmentrule.Rule, error) {
		return s.repo.GetByID(txCtx, id)
	})
}

func (s *AssignmentRuleService) GetAll(ctx context.Context) ([]assignmentrule.Rule, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]assignmentrule.Rule, error) {
		return s.repo.GetAll(txCtx)
	})
}

func (s *AssignmentRuleService) Create(ctx context.Context, entity assignmentrule.Rule) (assignmentrule.Rule, error) {
	if err := authorizeCRM(ctx, RulesAuthzObject, "create"); err != nil {
		return assignmentrule.Rule{}, err
	}
	if err := validateRule(entity); err != nil {
		return assignmentrule.Rule{}, err
	}
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (assignmentrule.Rule, error) {
		return s.repo.Create(txCtx, entity)
	})
}

func (s *AssignmentRuleService) Update(ctx context.Context, entity assignmentrule.Rule) (assignmentrule.Rule, error) {
	if err := authorizeCRM(ctx, RulesAuthzObject, "update"); err != nil {
		return assignmentrule.Rule{}, err
	}
	if err := validateRule(entity); err != nil {
		return assignmentrule.Rule{}, err
	}
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (assignmentrule.Rule, error) {
		return s.repo.Update(txCtx, entity)
	})
}

func (s *AssignmentRuleService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := authorizeCRM(ctx, RulesAuthzObject, "delete"); err != nil {
		return err
	}
	return composables.InTenantTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
}

// assignableRecordTypes are the record types the evaluator can load
// and write an owner back to. A rule for anything else would never
// fire, so creation rejects it up front.
var assignableRecordTypes = map[string]struct{}{
	"accounts.Account": {},
	"leads.Lead":       {},
	"cases.Case":       {},
}

func validateRule(r assignmentrule.Rule) error {
	if _, ok := assignableRecordTypes[r.RecordType()]; !ok {
		return fmt.Errorf("unsupported record type %q", r.RecordType())
	}
	if !r.Type().IsValid() {
		return fmt.Errorf("invalid rule type %q", r.Type())
	}
	for _, c := range r.Criteria() {
		if !c.Operator.IsValid() {
			return fmt.Errorf("invalid criterion operator %q", c.Operator)
		}
		if c.Field == "" {
			return fmt.Errorf("criterion field is required")
		}
	}
	if r.Type() == assignmentrule.TypeTerritory && len(r.Territories()) == 0 {
		return fmt.Errorf("territory rule requires territories")
	}
	if r.Type() != assignmentrule.TypeTerritory && len(r.Assignees()) == 0 {
		return fmt.Errorf("%s rule requires assignees", r.Type())
	}
	return nil
}
