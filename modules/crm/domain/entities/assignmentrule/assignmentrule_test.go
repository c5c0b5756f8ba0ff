package assignmentrule

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCriterionMatches(t *testing.T) {
	attrs := map[string]any{
		"country":        "DE",
		"industry":       "Manufacturing",
		"annual_revenue": decimal.NewFromInt(250000),
		"status":         "active",
	}

	tests := []struct {
		name string
		c    Criterion
		want bool
	}{
		{"eq match", Criterion{Field: "country", Operator: OpEq, Value: "DE"}, true},
		{"eq mismatch", Criterion{Field: "country", Operator: OpEq, Value: "FR"}, false},
		{"ne", Criterion{Field: "country", Operator: OpNe, Value: "FR"}, true},
		{"contains case insensitive", Criterion{Field: "industry", Operator: OpContains, Value: "manu"}, true},
		{"contains mismatch", Criterion{Field: "industry", Operator: OpContains, Value: "retail"}, false},
		{"gt numeric", Criterion{Field: "annual_revenue", Operator: OpGt, Value: "100000"}, true},
		{"gt equal is false", Criterion{Field: "annual_revenue", Operator: OpGt, Value: "250000"}, false},
		{"lt numeric", Criterion{Field: "annual_revenue", Operator: OpLt, Value: "1000000"}, true},
		{"gt on non numeric attr", Criterion{Field: "country", Operator: OpGt, Value: "10"}, false},
		{"in", Criterion{Field: "country", Operator: OpIn, Values: []string{"FR", "DE"}}, true},
		{"in miss", Criterion{Field: "country", Operator: OpIn, Values: []string{"FR", "IT"}}, false},
		{"missing field never matches", Criterion{Field: "region", Operator: OpEq, Value: "x"}, false},
		{"numeric eq ignores formatting", Criterion{Field: "annual_revenue", Operator: OpEq, Value: "250000.00"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.c.Matches(attrs))
		})
	}
}

func TestRuleMatchesCriteria(t *testing.T) {
	tenantID := uuid.New()

	r := New(tenantID, "big german accounts", "accounts.Account", TypeCriteria,
		WithCriteria([]Criterion{
			{Field: "country", Operator: OpEq, Value: "DE"},
			{Field: "annual_revenue", Operator: OpGt, Value: "100000"},
		}),
	)

	require.True(t, r.MatchesCriteria(map[string]any{
		"country":        "DE",
		"annual_revenue": decimal.NewFromInt(200000),
	}))
	require.False(t, r.MatchesCriteria(map[string]any{
		"country":        "DE",
		"annual_revenue": decimal.NewFromInt(50000),
	}))

	empty := New(tenantID, "catch all", "accounts.Account", TypeCriteria)
	require.True(t, empty.MatchesCriteria(map[string]any{"anything": "goes"}))
}

func TestRuleNextAssignee(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	r := New(uuid.New(), "rr", "leads.Lead", TypeRoundRobin, WithAssignees([]uuid.UUID{a, b, c}))

	got, cursor, ok := r.NextAssignee()
	require.True(t, ok)
	require.Equal(t, a, got)
	require.Equal(t, 1, cursor)

	r = New(uuid.New(), "rr", "leads.Lead", TypeRoundRobin, WithAssignees([]uuid.UUID{a, b, c}), WithCursor(2))
	got, cursor, ok = r.NextAssignee()
	require.True(t, ok)
	require.Equal(t, c, got)
	require.Equal(t, 3, cursor)

	// Cursor wraps around the assignee list.
	r = New(uuid.New(), "rr", "leads.Lead", TypeRoundRobin, WithAssignees([]uuid.UUID{a, b, c}), WithCursor(3))
	got, _, ok = r.NextAssignee()
	require.True(t, ok)
	require.Equal(t, a, got)

	empty := New(uuid.New(), "rr", "leads.Lead", TypeRoundRobin)
	_, _, ok = empty.NextAssignee()
	require.False(t, ok)
}

func TestRuleAssigneeForCountry(t *testing.T) {
	de := uuid.New()
	fallback := uuid.New()

	r := New(uuid.New(), "territory", "accounts.Account", TypeTerritory,
		WithTerritories(map[string]uuid.UUID{"DE": de, "*": fallback}),
	)

	got, ok := r.AssigneeForCountry("DE")
	require.True(t, ok)
	require.Equal(t, de, got)

	got, ok = r.AssigneeForCountry("FR")
	require.True(t, ok)
	require.Equal(t, fallback, got)

	noFallback := New(uuid.New(), "territory", "accounts.Account", TypeTerritory,
		WithTerritories(map[string]uuid.UUID{"DE": de}),
	)
	_, ok = noFallback.AssigneeForCountry("FR")
	require.False(t, ok)
}
