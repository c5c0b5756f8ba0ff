package configuration

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateRLS(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		dbUser  string
		wantErr bool
		want    string
	}{
		{name: "empty defaults to disabled", mode: "", dbUser: "postgres", want: "disabled"},
		{name: "disabled", mode: "disabled", dbUser: "postgres", want: "disabled"},
		{name: "enforce normalizes case", mode: "Enforce", dbUser: "vantage_app", want: "enforce"},
		{name: "enforce rejects postgres user", mode: "enforce", dbUser: "postgres", wantErr: true},
		{name: "unknown mode rejected", mode: "audit", dbUser: "vantage_app", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Configuration{RLSEnforce: tt.mode}
			c.Database.User = tt.dbUser
			err := c.validateRLS()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, c.RLSEnforce)
		})
	}
}

func TestValidateAuthz(t *testing.T) {
	c := &Configuration{}
	require.NoError(t, c.validateAuthz())
	require.Equal(t, "shadow", c.Authz.Mode)

	c.Authz.Mode = "ENFORCE"
	require.NoError(t, c.validateAuthz())
	require.Equal(t, "enforce", c.Authz.Mode)

	c.Authz.Mode = "permissive"
	require.Error(t, c.validateAuthz())
}

func TestDatabaseConnectionString(t *testing.T) {
	d := DatabaseOptions{Name: "vantage", Host: "db", Port: "5433", User: "app", Password: "secret"}
	require.Equal(t,
		"host=db port=5433 user=app dbname=vantage password=secret sslmode=disable",
		d.ConnectionString(),
	)
}
