// Package permissions declares the permission strings evaluated by
// object policies. Two shapes exist: domain wildcards ("accounts:*")
// granting an entire domain, and named permissions
// ("tenants.change_tenantmember") gating one operation.
package permissions

const (
	AccountsWildcard = "accounts:*"
	LeadsWildcard    = "leads:*"
	CasesWildcard    = "cases:*"
	TenantsWildcard  = "tenants:*"
	UsersWildcard    = "users:*"

	ChangeTenantMember = "tenants.change_tenantmember"
	DeleteTenantMember = "tenants.delete_tenantmember"

	ViewUser   = "users.view_user"
	ChangeUser = "users.change_user"

	ChangeAccount = "accounts.change_account"
	DeleteAccount = "accounts.delete_account"
	ChangeLead    = "leads.change_lead"
	DeleteLead    = "leads.delete_lead"
	ChangeCase    = "cases.change_case"
	DeleteCase    = "cases.delete_case"
)

// All lists every permission string known to the system; seeds and
// admin surfaces iterate it.
var All = []string{
	AccountsWildcard,
	LeadsWildcard,
	CasesWildcard,
	TenantsWildcard,
	UsersWildcard,
	ChangeTenantMember,
	DeleteTenantMember,
	ViewUser,
	ChangeUser,
	ChangeAccount,
	DeleteAccount,
	ChangeLead,
	DeleteLead,
	ChangeCase,
	DeleteCase,
}
