package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vantagecrm/vantage/modules/crm/domain/entities/assignmentrule"
)

func TestAssignmentRuleService_CreateValidation(t *testing.T) {
	t.Cleanup(func() { authorizeCRMFn = defaultAuthorizeCRM })
	authorizeCRMFn = func(context.Context, string, string) error { return nil }

	tenantID := uuid.New()
	assignee := uuid.New()

	tests := []struct {
		name    string
		rule    assignmentrule.Rule
		wantErr string
	}{
		{
			name: "valid round robin",
			rule: assignmentrule.New(tenantID, "rr", "leads.Lead", assignmentrule.TypeRoundRobin,
				assignmentrule.WithAssignees([]uuid.UUID{assignee}),
			),
		},
		{
			name: "unsupported record type",
			rule: assignmentrule.New(tenantID, "tickets", "tickets.Ticket", assignmentrule.TypeRoundRobin,
				assignmentrule.WithAssignees([]uuid.UUID{assignee}),
			),
			wantErr: "unsupported record type",
		},
		{
			name:    "unknown rule type",
			rule:    assignmentrule.New(tenantID, "bad", "leads.Lead", assignmentrule.RuleType("random")),
			wantErr: "invalid rule type",
		},
		{
			name: "bad criterion operator",
			rule: assignmentrule.New(tenantID, "bad op", "leads.Lead", assignmentrule.TypeCriteria,
				assignmentrule.WithAssignees([]uuid.UUID{assignee}),
				assignmentrule.WithCriteria([]assignmentrule.Criterion{
					{Field: "status", Operator: assignmentrule.Operator("like"), Value: "new"},
				}),
			),
			wantErr: "invalid criterion operator",
		},
		{
			name: "criterion without field",
			rule: assignmentrule.New(tenantID, "no field", "leads.Lead", assignmentrule.TypeCriteria,
				assignmentrule.WithAssignees([]uuid.UUID{assignee}),
				assignmentrule.WithCriteria([]assignmentrule.Criterion{
					{Operator: assignmentrule.OpEq, Value: "new"},
				}),
			),
			wantErr: "criterion field is required",
		},
		{
			name:    "territory rule without territories",
			rule:    assignmentrule.New(tenantID, "emea", "accounts.Account", assignmentrule.TypeTerritory),
			wantErr: "territory rule requires territories",
		},
		{
			name:    "round robin without assignees",
			rule:    assignmentrule.New(tenantID, "empty", "leads.Lead", assignmentrule.TypeRoundRobin),
			wantErr: "requires assignees",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAssignmentRuleService(newMemRuleRepo())
			_, err := svc.Create(testCtx(tenantID), tt.rule)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAssignmentRuleService_CreateDeniedByGuard(t *testing.T) {
	t.Cleanup(func() { authorizeCRMFn = defaultAuthorizeCRM })

	var gotObject, gotAction string
	authorizeCRMFn = func(_ context.Context, object, action string) error {
		gotObject = object
		gotAction = action
		return errors.New("access denied")
	}

	repo := newMemRuleRepo()
	svc := NewAssignmentRuleService(repo)

	_, err := svc.Create(testCtx(uuid.New()), assignmentrule.New(uuid.New(), "rr", "leads.Lead", assignmentrule.TypeRoundRobin,
		assignmentrule.WithAssignees([]uuid.UUID{uuid.New()}),
	))
	require.Error(t, err)
	require.Equal(t, RulesAuthzObject, gotObject)
	require.Equal(t, "create", gotAction)
	require.Empty(t, repo.rules)
}
