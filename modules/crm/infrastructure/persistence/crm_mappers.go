package persistence

import (
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/account"
	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/kase"
	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/lead"
	"github.com/vantagecrm/vantage/modules/crm/domain/entities/assignmentrule"
	"github.com/vantagecrm/vantage/modules/crm/infrastructure/persistence/models"
	"github.com/vantagecrm/vantage/pkg/mapping"
)

func toDomainAccount(m *models.Account) (account.Account, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return account.Account{}, errors.Wrap(err, "invalid account id")
	}
	tenantID, err := uuid.Parse(m.TenantID)
	if err != nil {
		return account.Account{}, errors.Wrap(err, "invalid account tenant id")
	}

	opts := []account.Option{
		account.WithID(id),
		account.WithOwnerID(mapping.SQLNullStringToUUID(m.OwnerID)),
		account.WithWebsite(mapping.SQLNullStringToValue(m.Website)),
		account.WithIndustry(mapping.SQLNullStringToValue(m.Industry)),
		account.WithCountry(mapping.SQLNullStringToValue(m.Country)),
		account.WithStatus(account.Status(m.Status)),
		account.WithCreatedAt(m.CreatedAt),
		account.WithUpdatedAt(m.UpdatedAt),
	}
	if m.AnnualRevenue.Valid {
		revenue, err := decimal.NewFromString(m.AnnualRevenue.String)
		if err != nil {
			return account.Account{}, errors.Wrap(err, "invalid account annual revenue")
		}
		opts = append(opts, account.WithAnnualRevenue(revenue))
	}
	return account.New(tenantID, m.Name, opts...), nil
}

func toDomainLead(m *models.Lead) (lead.Lead, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return lead.Lead{}, errors.Wrap(err, "invalid lead id")
	}
	tenantID, err := uuid.Parse(m.TenantID)
	if err != nil {
		return lead.Lead{}, errors.Wrap(err, "invalid lead tenant id")
	}

	return lead.New(tenantID, m.Company,
		lead.WithID(id),
		lead.WithOwnerID(mapping.SQLNullStringToUUID(m.OwnerID)),
		lead.WithName(mapping.SQLNullStringToValue(m.FirstName), mapping.SQLNullStringToValue(m.LastName)),
		lead.WithEmail(mapping.SQLNullStringToValue(m.Email)),
		lead.WithPhone(mapping.SQLNullStringToValue(m.Phone)),
		lead.WithSource(mapping.SQLNullStringToValue(m.Source)),
		lead.WithCountry(mapping.SQLNullStringToValue(m.Country)),
		lead.WithStatus(lead.Status(m.Status)),
		lead.WithCreatedAt(m.CreatedAt),
		lead.WithUpdatedAt(m.UpdatedAt),
	), nil
}

func toDomainCase(m *models.Case) (kase.Case, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return kase.Case{}, errors.Wrap(err, "invalid case id")
	}
	tenantID, err := uuid.Parse(m.TenantID)
	if err != nil {
		return kase.Case{}, errors.Wrap(err, "invalid case tenant id")
	}

	return kase.New(tenantID, m.Subject,
		kase.WithID(id),
		kase.WithOwnerID(mapping.SQLNullStringToUUID(m.OwnerID)),
		kase.WithAccountID(mapping.SQLNullStringToUUID(m.AccountID)),
		kase.WithDescription(mapping.SQLNullStringToValue(m.Description)),
		kase.WithPriority(kase.Priority(m.Priority)),
		kase.WithStatus(kase.Status(m.Status)),
		kase.WithCountry(mapping.SQLNullStringToValue(m.Country)),
		kase.WithSLADueAt(mapping.SQLNullTimeToValue(m.SLADueAt)),
		kase.WithSLABreached(m.SLABreached),
		kase.WithCreatedAt(m.CreatedAt),
		kase.WithUpdatedAt(m.UpdatedAt),
	), nil
}

func toDomainAssignmentRule(m *models.AssignmentRule) (assignmentrule.Rule, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return assignmentrule.Rule{}, errors.Wrap(err, "invalid assignment rule id")
	}
	tenantID, err := uuid.Parse(m.TenantID)
	if err != nil {
		return assignmentrule.Rule{}, errors.Wrap(err, "invalid assignment rule tenant id")
	}

	var criteria []assignmentrule.Criterion
	if len(m.Criteria) > 0 {
		if err := json.Unmarshal(m.Criteria, &criteria); err != nil {
			return assignmentrule.Rule{}, errors.Wrap(err, "invalid assignment rule criteria")
		}
	}
	var assignees []uuid.UUID
	if len(m.Assignees) > 0 {
		if err := json.Unmarshal(m.Assignees, &assignees); err != nil {
			return assignmentrule.Rule{}, errors.Wrap(err, "invalid assignment rule assignees")
		}
	}
	var territories map[string]uuid.UUID
	if len(m.Territories) > 0 {
		if err := json.Unmarshal(m.Territories, &territories); err != nil {
			return assignmentrule.Rule{}, errors.Wrap(err, "invalid assignment rule territories")
		}
	}

	return assignmentrule.New(tenantID, m.Name, m.RecordType, assignmentrule.RuleType(m.RuleType),
		assignmentrule.WithID(id),
		assignmentrule.WithPriority(m.Priority),
		assignmentrule.WithActive(m.IsActive),
		assignmentrule.WithCriteria(criteria),
		assignmentrule.WithAssignees(assignees),
		assignmentrule.WithTerritories(territories),
		assignmentrule.WithCursor(m.Cursor),
		assignmentrule.WithCreatedAt(m.CreatedAt),
		assignmentrule.WithUpdatedAt(m.UpdatedAt),
	), nil
}

func toDBAssignmentRule(e assignmentrule.Rule) (*models.AssignmentRule, error) {
	criteria, err := json.Marshal(e.Criteria())
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode criteria")
	}
	assignees, err := json.Marshal(e.Assignees())
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode assignees")
	}
	territories, err := json.Marshal(e.Territories())
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode territories")
	}

	return &models.AssignmentRule{
		ID:          e.ID().String(),
		TenantID:    e.TenantID().String(),
		Name:        e.Name(),
		RecordType:  e.RecordType(),
		RuleType:    string(e.Type()),
		Priority:    e.Priority(),
		IsActive:    e.IsActive(),
		Criteria:    criteria,
		Assignees:   assignees,
		Territories: territories,
		Cursor:      e.Cursor(),
	}, nil
}
