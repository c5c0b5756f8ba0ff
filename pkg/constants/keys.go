package constants

type ContextKey string

const (
	PoolKey     ContextKey = "pool"
	TxKey       ContextKey = "tx"
	LoggerKey   ContextKey = "logger"
	UserKey     ContextKey = "user"
	TenantIDKey ContextKey = "tenant_id"
	PoliciesKey ContextKey = "policies"
	ParamsKey   ContextKey = "params"
)
