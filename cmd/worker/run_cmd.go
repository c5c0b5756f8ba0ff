package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vantagecrm/vantage/modules"
	"github.com/vantagecrm/vantage/modules/crm/handlers"
	"github.com/vantagecrm/vantage/modules/crm/services"
	"github.com/vantagecrm/vantage/pkg/application"
	"github.com/vantagecrm/vantage/pkg/commands"
	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/configuration"
	"github.com/vantagecrm/vantage/pkg/eventbus"
	"github.com/vantagecrm/vantage/pkg/outbox"
	eventbusdispatcher "github.com/vantagecrm/vantage/pkg/outbox/dispatchers/eventbus"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the outbox relay, assignment consumer, and SLA sweep until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf := configuration.Use()
			logger := conf.Logger()

			app, pool, err := commands.NewApplicationWithDefaults(modules.BuiltInModules...)
			if err != nil {
				return err
			}
			defer pool.Close()

			if missing := app.Policies().Verify(modules.ProtectedEntityTypes...); len(missing) > 0 {
				return fmt.Errorf("missing policies for: %s", strings.Join(missing, ", "))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if conf.Worker.AssignmentEnabled {
				handlers.RegisterAssignmentEvaluateHandler(app, logger)
			}

			startOutboxBackground(ctx, conf, pool, logger, app.EventPublisher())

			if conf.Worker.SLASweepEnabled {
				go runSLASweep(ctx, conf, pool, logger, app)
			}

			logger.Info("worker started")
			<-ctx.Done()
			logger.Info("worker stopping")
			return nil
		},
	}
}

func runSLASweep(
	ctx context.Context,
	conf *configuration.Configuration,
	pool *pgxpool.Pool,
	logger *logrus.Logger,
	app application.Application,
) {
	svc := app.Service(services.SLAService{}).(*services.SLAService)
	sweepLog := logger.WithField("component", "sla_sweep")

	ticker := time.NewTicker(conf.Worker.SLASweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			marked, err := svc.Sweep(composables.WithPool(ctx, pool), now.UTC())
			if err != nil {
				sweepLog.WithError(err).Error("sla sweep failed")
				continue
			}
			if marked > 0 {
				sweepLog.WithField("marked", marked).Info("sla sweep flagged overdue cases")
			}
		}
	}
}

func startOutboxBackground(
	ctx context.Context,
	conf *configuration.Configuration,
	pool *pgxpool.Pool,
	logger *logrus.Logger,
	bus eventbus.EventBusWithError,
) {
	outboxLog := logger.WithField("component", "outbox")

	relayTables, relayTablesErr := outbox.ParseIdentifierList(conf.Outbox.RelayTables)
	if relayTablesErr != nil {
		outboxLog.WithError(relayTablesErr).Warn("outbox: invalid OUTBOX_RELAY_TABLES; relay disabled")
		relayTables = nil
	}

	var cleanerTables []pgx.Identifier
	if conf.Outbox.CleanerTables == "" {
		cleanerTables = relayTables
	} else {
		var cleanerTablesErr error
		cleanerTables, cleanerTablesErr = outbox.ParseIdentifierList(conf.Outbox.CleanerTables)
		if cleanerTablesErr != nil {
			outboxLog.WithError(cleanerTablesErr).Warn("outbox: invalid OUTBOX_CLEANER_TABLES; cleaner disabled")
			cleanerTables = nil
		}
	}

	if conf.Outbox.RelayEnabled && len(relayTables) > 0 {
		dispatcher := eventbusdispatcher.New(bus)
		for _, table := range relayTables {
			relay, err := outbox.NewRelay(pool, table, dispatcher, outbox.RelayOptions{
				PollInterval:    conf.Outbox.RelayPollInterval,
				BatchSize:       conf.Outbox.RelayBatchSize,
				LockTTL:         conf.Outbox.RelayLockTTL,
				MaxAttempts:     conf.Outbox.RelayMaxAttempts,
				SingleActive:    conf.Outbox.RelaySingleActive,
				LastErrorMaxLen: conf.Outbox.LastErrorMaxBytes,
				DispatchTimeout: conf.Outbox.RelayDispatchTimeout,
				Logger:          outboxLog.WithField("table", outbox.TableLabel(table)),
			})
			if err != nil {
				outboxLog.WithError(err).Warn("outbox: failed to create relay")
				continue
			}
			go func(r *outbox.Relay) {
				if err := r.Run(ctx); err != nil && ctx.Err() == nil {
					outboxLog.WithError(err).Error("outbox: relay stopped")
				}
			}(relay)
		}
	} else if conf.Outbox.RelayEnabled {
		outboxLog.Info("outbox: relay enabled but no tables configured")
	}

	if conf.Outbox.CleanerEnabled && len(cleanerTables) > 0 {
		for _, table := range cleanerTables {
			cleaner, err := outbox.NewCleaner(pool, table, outbox.CleanerOptions{
				Enabled:               true,
				Interval:              conf.Outbox.CleanerInterval,
				Retention:             conf.Outbox.CleanerRetention,
				DeadRetention:         conf.Outbox.CleanerDeadRetention,
				DeadAttemptsThreshold: conf.Outbox.RelayMaxAttempts,
				Logger:                outboxLog.WithField("table", outbox.TableLabel(table)),
			})
			if err != nil {
				outboxLog.WithError(err).Warn("outbox: failed to create cleaner")
				continue
			}
			go func(c *outbox.Cleaner) {
				if err := c.Run(ctx); err != nil && ctx.Err() == nil {
					outboxLog.WithError(err).Error("outbox: cleaner stopped")
				}
			}(cleaner)
		}
	} else if conf.Outbox.CleanerEnabled {
		outboxLog.Info("outbox: cleaner enabled but no tables configured")
	}
}
