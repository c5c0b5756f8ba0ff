package crm

import (
	"embed"

	"github.com/vantagecrm/vantage/modules/crm/infrastructure/persistence"
	"github.com/vantagecrm/vantage/modules/crm/policies"
	"github.com/vantagecrm/vantage/modules/crm/services"
	"github.com/vantagecrm/vantage/pkg/application"
)

//go:embed infrastructure/persistence/schema/crm-schema.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&MigrationFiles)

	app.Policies().Register("accounts.Account", policies.NewAccountPolicy())
	app.Policies().Register("leads.Lead", policies.NewLeadPolicy())
	app.Policies().Register("cases.Case", policies.NewCasePolicy())

	accountRepo := persistence.NewAccountRepository()
	leadRepo := persistence.NewLeadRepository()
	caseRepo := persistence.NewCaseRepository()
	ruleRepo := persistence.NewAssignmentRuleRepository()

	app.RegisterServices(
		services.NewAccountService(accountRepo, app.EventPublisher(), app.Policies()),
		services.NewLeadService(leadRepo, app.EventPublisher(), app.Policies()),
		services.NewCaseService(caseRepo, app.EventPublisher(), app.Policies()),
		services.NewAssignmentRuleService(ruleRepo),
		services.NewAssignmentService(accountRepo, leadRepo, caseRepo, ruleRepo),
		services.NewSLAService(caseRepo, app.EventPublisher()),
	)
	return nil
}

func (m *Module) Name() string {
	return "crm"
}
