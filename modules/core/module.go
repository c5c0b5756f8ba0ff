package core

import (
	"embed"

	"github.com/vantagecrm/vantage/modules/core/infrastructure/persistence"
	"github.com/vantagecrm/vantage/modules/core/policies"
	"github.com/vantagecrm/vantage/modules/core/services"
	"github.com/vantagecrm/vantage/pkg/application"
)

//go:embed infrastructure/persistence/schema/core-schema.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&MigrationFiles)

	app.Policies().Register("core.User", policies.NewUserPolicy())
	app.Policies().Register("tenants.TenantMember", policies.NewMemberPolicy())

	app.RegisterServices(
		services.NewTenantService(persistence.NewTenantRepository()),
		services.NewUserService(persistence.NewUserRepository(), app.Policies()),
		services.NewMemberService(persistence.NewMemberRepository(), app.Policies()),
	)
	return nil
}

func (m *Module) Name() string {
	return "core"
}
