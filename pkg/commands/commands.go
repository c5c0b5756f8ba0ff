// Package commands holds shared bootstrap for the auxiliary binaries
// (worker, policycheck): building the application container the same
// way the server does, without the HTTP surface.
package commands

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vantagecrm/vantage/pkg/application"
	"github.com/vantagecrm/vantage/pkg/configuration"
	"github.com/vantagecrm/vantage/pkg/eventbus"
	"github.com/vantagecrm/vantage/pkg/policy"
)

// NewApplicationWithDefaults connects the pool, builds the app
// container, registers the given modules, and freezes the policy
// registry. The caller owns the returned pool.
func NewApplicationWithDefaults(mods ...application.Module) (application.Application, *pgxpool.Pool, error) {
	conf := configuration.Use()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to connect to database")
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		Bus:      eventbus.NewEventPublisher(conf.Logger()),
		Policies: policy.NewRegistry(),
	})
	if err := app.RegisterModules(mods...); err != nil {
		pool.Close()
		return nil, nil, errors.Wrap(err, "failed to register modules")
	}
	app.Policies().Freeze()
	return app, pool, nil
}
