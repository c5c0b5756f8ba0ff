package seed

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/vantagecrm/vantage/modules/core/domain/aggregates/user"
	"github.com/vantagecrm/vantage/modules/core/domain/entities/member"
	"github.com/vantagecrm/vantage/modules/core/infrastructure/persistence"
	"github.com/vantagecrm/vantage/pkg/application"
	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/configuration"
)

// UserSeedFunc creates the given user and their tenant membership if
// they do not exist yet.
func UserSeedFunc(usr user.User, tenantAdmin bool) application.SeedFunc {
	return func(ctx context.Context, app application.Application) error {
		tenantID, err := composables.UseTenantID(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to get tenant from context")
		}
		logger := configuration.Use().Logger()

		userRepository := persistence.NewUserRepository()
		found, err := userRepository.GetByEmail(ctx, usr.Email())
		if err == nil {
			logger.Infof("User %s already exists", usr.Email())
			usr = found
		} else if errors.Is(err, user.ErrNotFound) {
			logger.Infof("Creating user %s", usr.Email())
			usr, err = userRepository.Create(ctx, usr)
			if err != nil {
				return errors.Wrap(err, "failed to create user")
			}
		} else {
			return err
		}

		memberRepository := persistence.NewMemberRepository()
		if _, err := memberRepository.GetByUserID(ctx, usr.ID()); err == nil {
			return nil
		} else if !errors.Is(err, member.ErrNotFound) {
			return err
		}

		logger.Infof("Creating tenant membership for %s", usr.Email())
		_, err = memberRepository.Create(ctx, member.New(tenantID, usr.ID(),
			member.WithStatus(member.StatusActive),
			member.WithTenantAdmin(tenantAdmin),
		))
		return errors.Wrap(err, "failed to create tenant membership")
	}
}
