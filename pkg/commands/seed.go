package commands

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/vantagecrm/vantage/modules/core/domain/aggregates/user"
	"github.com/vantagecrm/vantage/modules/core/permissions"
	coreseed "github.com/vantagecrm/vantage/modules/core/seed"
	"github.com/vantagecrm/vantage/pkg/application"
	"github.com/vantagecrm/vantage/pkg/composables"
)

// SeedDatabase applies migrations and seeds the default tenant with a
// superuser admin account. Safe to run repeatedly.
func SeedDatabase(mods ...application.Module) error {
	app, pool, err := NewApplicationWithDefaults(mods...)
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx := context.Background()
	if err := app.Migrations().Apply(ctx); err != nil {
		return errors.Wrap(err, "failed to apply migrations")
	}

	ctx = composables.WithPool(ctx, pool)
	if err := coreseed.CreateDefaultTenant(ctx, app); err != nil {
		return errors.Wrap(err, "failed to seed default tenant")
	}

	ctx = composables.WithTenantID(ctx, coreseed.DefaultTenantID)
	admin := user.New(
		"admin@vantage.localhost",
		user.WithName("Admin", "User"),
		user.WithTenantID(coreseed.DefaultTenantID),
		user.WithSuperuser(true),
		user.WithPermissions(permissions.All),
	)
	seedFuncs := []application.SeedFunc{
		coreseed.UserSeedFunc(admin, true),
	}
	for _, fn := range seedFuncs {
		if err := fn(ctx, app); err != nil {
			return err
		}
	}
	return nil
}
