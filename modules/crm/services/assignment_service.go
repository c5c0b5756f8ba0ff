package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/account"
	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/kase"
	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/lead"
	"github.com/vantagecrm/vantage/modules/crm/domain/entities/assignmentrule"
	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/serrors"
)

var ErrUnknownRecordType = serrors.NewError("UNKNOWN_RECORD_TYPE", "no assignment support for record type", "")

// AssignmentService routes unowned records to an owner by evaluating
// the tenant's active rules in priority order. The first rule that
// matches and yields an assignee wins.
type AssignmentService struct {
	accounts account.Repository
	leads    lead.Repository
	cases    kase.Repository
	rules    assignmentrule.Repository
}

func NewAssignmentService(
	accounts account.Repository,
	leads lead.Repository,
	cases kase.Repository,
	rules assignmentrule.Repository,
) *AssignmentService {
	return &AssignmentService{
		accounts: accounts,
		leads:    leads,
		cases:    cases,
		rules:    rules,
	}
}

// evalRecord is the uniform view of a routable record.
type evalRecord struct {
	ownerID uuid.UUID
	country string
	attrs   map[string]any

	assign     func(ctx context.Context, owner uuid.UUID) error
	countOwned func(ctx context.Context, owner uuid.UUID) (int64, error)
}

// Evaluate resolves and applies an owner for the record. It returns
// uuid.Nil without error when the record is already owned or no rule
// produces an assignee.
func (s *AssignmentService) Evaluate(ctx context.Context, recordType string, recordID uuid.UUID) (uuid.UUID, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (uuid.UUID, error) {
		rec, err := s.load(txCtx, recordType, recordID)
		if err != nil {
			return uuid.Nil, err
		}
		if rec.ownerID != uuid.Nil {
			return uuid.Nil, nil
		}

		rules, err := s.rules.GetActiveByRecordType(txCtx, recordType)
		if err != nil {
			return uuid.Nil, err
		}

		for _, rule := range rules {
			if !rule.MatchesCriteria(rec.attrs) {
				continue
			}

			assignee, cursor, ok, err := s.pickAssignee(txCtx, rule, rec)
			if err != nil {
				return uuid.Nil, err
			}
			if !ok {
				continue
			}

			if err := rec.assign(txCtx, assignee); err != nil {
				return uuid.Nil, err
			}
			if rule.Type() == assignmentrule.TypeRoundRobin {
				if err := s.rules.UpdateCursor(txCtx, rule.ID(), cursor); err != nil {
					return uuid.Nil, err
				}
			}
			return assignee, nil
		}

		return uuid.Nil, nil
	})
}

func (s *AssignmentService) pickAssignee(ctx context.Context, rule assignmentrule.Rule, rec evalRecord) (uuid.UUID, int, bool, error) {
	switch rule.Type() {
	case assignmentrule.TypeRoundRobin:
		assignee, cursor, ok := rule.NextAssignee()
		return assignee, cursor, ok, nil

	case assignmentrule.TypeTerritory:
		assignee, ok := rule.AssigneeForCountry(rec.country)
		return assignee, 0, ok, nil

	case assignmentrule.TypeLoadBalanced:
		assignee, ok, err := s.leastLoaded(ctx, rule.Assignees(), rec)
		return assignee, 0, ok, err

	case assignmentrule.TypeCriteria:
		assignee, ok := rule.FirstAssignee()
		return assignee, 0, ok, nil
	}
	return uuid.Nil, 0, false, nil
}

// leastLoaded picks the assignee owning the fewest records of the same
// type; ties keep configuration order.
func (s *AssignmentService) leastLoaded(ctx context.Context, assignees []uuid.UUID, rec evalRecord) (uuid.UUID, bool, error) {
	if len(assignees) == 0 {
		return uuid.Nil, false, nil
	}

	best := assignees[0]
	bestCount, err := rec.countOwned(ctx, best)
	if err != nil {
		return uuid.Nil, false, err
	}
	for _, candidate := range assignees[1:] {
		count, err := rec.countOwned(ctx, candidate)
		if err != nil {
			return uuid.Nil, false, err
		}
		if count < bestCount {
			best = candidate
			bestCount = count
		}
	}
	return best, true, nil
}

func (s *AssignmentService) load(ctx context.Context, recordType string, recordID uuid.UUID) (evalRecord, error) {
	switch recordType {
	case "accounts.Account":
		entity, err := s.accounts.GetByID(ctx, recordID)
		if err != nil {
			return evalRecord{}, err
		}
		return evalRecord{
			ownerID: entity.OwnerID(),
			country: entity.Country(),
			attrs:   entity.Attributes(),
			assign: func(ctx context.Context, owner uuid.UUID) error {
				_, err := s.accounts.Update(ctx, entity.WithOwner(owner))
				return err
			},
			countOwned: s.accounts.CountOwnedBy,
		}, nil

	case "leads.Lead":
		entity, err := s.leads.GetByID(ctx, recordID)
		if err != nil {
			return evalRecord{}, err
		}
		return evalRecord{
			ownerID: entity.OwnerID(),
			country: entity.Country(),
			attrs:   entity.Attributes(),
			assign: func(ctx context.Context, owner uuid.UUID) error {
				_, err := s.leads.Update(ctx, entity.WithOwner(owner))
				return err
			},
			countOwned: s.leads.CountOwnedBy,
		}, nil

	case "cases.Case":
		entity, err := s.cases.GetByID(ctx, recordID)
		if err != nil {
			return evalRecord{}, err
		}
		return evalRecord{
			ownerID: entity.OwnerID(),
			country: entity.Country(),
			attrs:   entity.Attributes(),
			assign: func(ctx context.Context, owner uuid.UUID) error {
				_, err := s.cases.Update(ctx, entity.WithOwner(owner))
				return err
			},
			countOwned: s.cases.CountOwnedBy,
		}, nil
	}

	return evalRecord{}, fmt.Errorf("%w: %s", ErrUnknownRecordType, recordType)
}
