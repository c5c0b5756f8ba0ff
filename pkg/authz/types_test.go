package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSubjectForUser(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()

	require.Equal(t,
		"tenant:"+tenantID.String()+":user:"+userID.String(),
		SubjectForUser(tenantID, userID),
	)
	require.Equal(t,
		"tenant:global:user:anonymous",
		SubjectForUser(uuid.Nil, uuid.Nil),
	)
}

func TestObjectName(t *testing.T) {
	require.Equal(t, "accounts.account", ObjectName("Accounts", " Account "))
	require.Equal(t, "global.resource", ObjectName("", ""))
}

func TestNormalizeAction(t *testing.T) {
	require.Equal(t, "read", NormalizeAction(" Read "))
	require.Equal(t, "*", NormalizeAction(""))
}

func TestSanitizeMode(t *testing.T) {
	require.Equal(t, ModeEnforce, sanitizeMode("ENFORCE"))
	require.Equal(t, ModeDisabled, sanitizeMode("disabled"))
	require.Equal(t, ModeShadow, sanitizeMode("bogus"))
}
