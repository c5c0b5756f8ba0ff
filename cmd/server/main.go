package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/vantagecrm/vantage/modules"
	"github.com/vantagecrm/vantage/modules/crm/handlers"
	"github.com/vantagecrm/vantage/pkg/application"
	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/configuration"
	"github.com/vantagecrm/vantage/pkg/eventbus"
	"github.com/vantagecrm/vantage/pkg/outbox"
	eventbusdispatcher "github.com/vantagecrm/vantage/pkg/outbox/dispatchers/eventbus"
	"github.com/vantagecrm/vantage/pkg/policy"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}
	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		Bus:      eventbus.NewEventPublisher(logger),
		Policies: policy.NewRegistry(),
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}

	app.Policies().Freeze()
	if missing := app.Policies().Verify(modules.ProtectedEntityTypes...); len(missing) > 0 {
		log.Fatalf("missing policies for: %s", strings.Join(missing, ", "))
	}

	if err := app.Migrations().Apply(context.Background()); err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}

	handlers.RegisterAssignmentDispatchHandler(app, logger)

	startOutboxBackground(conf, pool, logger, app.EventPublisher())

	router := mux.NewRouter()
	router.Use(requestContextMiddleware(logger, app.Policies()))
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	router.HandleFunc("/debug/policies", func(w http.ResponseWriter, r *http.Request) {
		reg, err := composables.UsePolicies(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reg.Registered())
	}).Methods(http.MethodGet)
	if conf.Prometheus.Enabled {
		router.Handle(conf.Prometheus.Path, promhttp.Handler()).Methods(http.MethodGet)
	}

	srv := &http.Server{
		Addr:              conf.SocketAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("Listening on: %s\n", conf.SocketAddress)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

// requestContextMiddleware seeds every request context with the
// request-scoped logger, the frozen policy registry, and the request
// parameters the composables read.
func requestContextMiddleware(logger *logrus.Logger, registry *policy.Registry) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := composables.WithPolicies(r.Context(), registry)
			ctx = composables.WithLogger(ctx, logger.WithFields(logrus.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
			}))
			ctx = composables.WithParams(ctx, &composables.Params{
				IP:        r.RemoteAddr,
				UserAgent: r.UserAgent(),
				Request:   r,
				Writer:    w,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func startOutboxBackground(
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

	if conf.Outbox.RelayEnabled {
		if len(relayTables) == 0 {
			if relayTablesErr == nil {
				outboxLog.Info("outbox: relay enabled but OUTBOX_RELAY_TABLES is empty")
			}
		} else {
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
					if err := r.Run(context.Background()); err != nil {
						outboxLog.WithError(err).Error("outbox: relay stopped")
					}
				}(relay)
			}
		}
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
				if err := c.Run(context.Background()); err != nil {
					outboxLog.WithError(err).Error("outbox: cleaner stopped")
				}
			}(cleaner)
		}
	} else if conf.Outbox.CleanerEnabled && len(cleanerTables) == 0 {
		outboxLog.Info("outbox: cleaner enabled but no tables configured")
	}
}
