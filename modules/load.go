package modules

import (
	"github.com/vantagecrm/vantage/modules/core"
	"github.com/vantagecrm/vantage/modules/crm"
	"github.com/vantagecrm/vantage/pkg/application"
)

var (
	BuiltInModules = []application.Module{
		core.NewModule(),
		crm.NewModule(),
	}

	// ProtectedEntityTypes is the closed set of entity types that must
	// have a registered policy before the application may serve
	// traffic. Startup and policycheck both verify against this list.
	ProtectedEntityTypes = []string{
		"accounts.Account",
		"leads.Lead",
		"cases.Case",
		"tenants.TenantMember",
		"core.User",
	}
)

func Load(app application.Application, externalModules ...application.Module) error {
	return app.RegisterModules(externalModules...)
}
