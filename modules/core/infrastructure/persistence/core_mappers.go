package persistence

import (
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vantagecrm/vantage/modules/core/domain/aggregates/user"
	"github.com/vantagecrm/vantage/modules/core/domain/entities/member"
	"github.com/vantagecrm/vantage/modules/core/domain/entities/tenant"
	"github.com/vantagecrm/vantage/modules/core/infrastructure/persistence/models"
	"github.com/vantagecrm/vantage/pkg/mapping"
)

func toDomainTenant(m *models.Tenant) (*tenant.Tenant, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid tenant id")
	}

	return tenant.New(m.Name,
		tenant.WithID(id),
		tenant.WithSubdomain(mapping.SQLNullStringToValue(m.Subdomain)),
		tenant.WithPlan(m.Plan),
		tenant.WithTimezone(m.Timezone),
		tenant.WithCurrency(m.Currency),
		tenant.WithIsActive(m.IsActive),
		tenant.WithCreatedAt(m.CreatedAt),
		tenant.WithUpdatedAt(m.UpdatedAt),
	), nil
}

func toDomainUser(m *models.User) (user.User, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "invalid user id")
	}

	return user.New(m.Email,
		user.WithID(id),
		user.WithTenantID(mapping.SQLNullStringToUUID(m.TenantID)),
		user.WithName(mapping.SQLNullStringToValue(m.FirstName), mapping.SQLNullStringToValue(m.LastName)),
		user.WithSuperuser(m.IsSuperuser),
		user.WithActive(m.IsActive),
		user.WithPermissions(m.Permissions),
		user.WithCreatedAt(m.CreatedAt),
		user.WithUpdatedAt(m.UpdatedAt),
	), nil
}

func toDomainMember(m *models.TenantMember) (member.Member, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return member.Member{}, errors.Wrap(err, "invalid member id")
	}
	tenantID, err := uuid.Parse(m.TenantID)
	if err != nil {
		return member.Member{}, errors.Wrap(err, "invalid member tenant id")
	}
	userID, err := uuid.Parse(m.UserID)
	if err != nil {
		return member.Member{}, errors.Wrap(err, "invalid member user id")
	}
	quota, err := decimal.NewFromString(m.QuotaAmount)
	if err != nil {
		return member.Member{}, errors.Wrap(err, "invalid member quota")
	}
	commission, err := decimal.NewFromString(m.CommissionRate)
	if err != nil {
		return member.Member{}, errors.Wrap(err, "invalid member commission rate")
	}

	return member.New(tenantID, userID,
		member.WithID(id),
		member.WithManagerID(mapping.SQLNullStringToUUID(m.ManagerID)),
		member.WithStatus(member.Status(m.Status)),
		member.WithTenantAdmin(m.IsTenantAdmin),
		member.WithHireDate(mapping.SQLNullTimeToValue(m.HireDate)),
		member.WithQuota(quota),
		member.WithCommissionRate(commission),
		member.WithPhone(mapping.SQLNullStringToValue(m.Phone)),
		member.WithCreatedAt(m.CreatedAt),
		member.WithUpdatedAt(m.UpdatedAt),
	), nil
}
