package seed

import (
	"context"

	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/modules/core/domain/entities/tenant"
	"github.com/vantagecrm/vantage/modules/core/infrastructure/persistence"
	"github.com/vantagecrm/vantage/pkg/application"
	"github.com/vantagecrm/vantage/pkg/configuration"
)

// DefaultTenantID is stable so repeated seeding is idempotent.
var DefaultTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

func CreateDefaultTenant(ctx context.Context, app application.Application) error {
	logger := configuration.Use().Logger()
	tenantRepository := persistence.NewTenantRepository()

	if _, err := tenantRepository.GetByID(ctx, DefaultTenantID); err == nil {
		logger.Infof("Default tenant already exists")
		return nil
	}

	logger.Infof("Creating default tenant")
	_, err := tenantRepository.Create(ctx, tenant.New(
		"Default",
		tenant.WithID(DefaultTenantID),
		tenant.WithSubdomain("default"),
	))
	return err
}
