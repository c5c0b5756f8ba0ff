// Package application wires modules, services, and shared
// infrastructure into a single container handed to every module's
// Register hook.
package application

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"reflect"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vantagecrm/vantage/pkg/eventbus"
	"github.com/vantagecrm/vantage/pkg/policy"
)

// Module is a self-contained feature unit. Register is called once at
// startup and must be side-effect free beyond the app container.
type Module interface {
	Name() string
	Register(app Application) error
}

// SeedFunc populates initial data for development and tests.
type SeedFunc func(ctx context.Context, app Application) error

type Application interface {
	DB() *pgxpool.Pool
	EventPublisher() eventbus.EventBusWithError
	Policies() *policy.Registry

	RegisterServices(services ...interface{})
	Service(service interface{}) interface{}
	Services() map[reflect.Type]interface{}

	Migrations() MigrationManager

	RegisterModules(modules ...Module) error
}

type ApplicationOptions struct {
	Pool     *pgxpool.Pool
	Bus      eventbus.EventBusWithError
	Policies *policy.Registry
}

func New(opts *ApplicationOptions) Application {
	return &application{
		pool:     opts.Pool,
		bus:      opts.Bus,
		policies: opts.Policies,
		services: make(map[reflect.Type]interface{}),
		migrations: &migrationManager{
			pool: opts.Pool,
		},
	}
}

type application struct {
	pool       *pgxpool.Pool
	bus        eventbus.EventBusWithError
	policies   *policy.Registry
	services   map[reflect.Type]interface{}
	migrations *migrationManager
}

func (app *application) DB() *pgxpool.Pool {
	return app.pool
}

func (app *application) EventPublisher() eventbus.EventBusWithError {
	return app.bus
}

func (app *application) Policies() *policy.Registry {
	return app.policies
}

// RegisterServices registers a new service in the application by its type.
func (app *application) RegisterServices(services ...interface{}) {
	for _, service := range services {
		serviceType := reflect.TypeOf(service).Elem()
		app.services[serviceType] = service
	}
}

// Service retrieves a service by its type.
func (app *application) Service(service interface{}) interface{} {
	serviceType := reflect.TypeOf(service)
	svc, exists := app.services[serviceType]
	if !exists {
		panic(fmt.Sprintf("service %s not found", serviceType.Name()))
	}
	return svc
}

func (app *application) Services() map[reflect.Type]interface{} {
	return app.services
}

func (app *application) Migrations() MigrationManager {
	return app.migrations
}

func (app *application) RegisterModules(modules ...Module) error {
	for _, module := range modules {
		if err := module.Register(app); err != nil {
			return fmt.Errorf("register module %s: %w", module.Name(), err)
		}
	}
	return nil
}

// MigrationManager collects embedded schema files from modules and
// applies them in lexical order per module, modules in registration
// order.
type MigrationManager interface {
	RegisterSchema(fs *embed.FS)
	Apply(ctx context.Context) error
}

type migrationManager struct {
	pool    *pgxpool.Pool
	schemas []*embed.FS
}

func (m *migrationManager) RegisterSchema(fsys *embed.FS) {
	m.schemas = append(m.schemas, fsys)
}

func (m *migrationManager) Apply(ctx context.Context) error {
	for _, fsys := range m.schemas {
		var files []string
		err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("walk schema: %w", err)
		}
		sort.Strings(files)

		for _, file := range files {
			sql, err := fs.ReadFile(fsys, file)
			if err != nil {
				return fmt.Errorf("read schema %s: %w", file, err)
			}
			if _, err := m.pool.Exec(ctx, string(sql)); err != nil {
				return fmt.Errorf("apply schema %s: %w", file, err)
			}
		}
	}
	return nil
}
