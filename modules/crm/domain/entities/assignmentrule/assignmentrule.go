// Package assignmentrule holds the routing rules that pick an owner
// for newly created CRM records.
package assignmentrule

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RuleType string

const (
	TypeRoundRobin   RuleType = "round_robin"
	TypeTerritory    RuleType = "territory"
	TypeLoadBalanced RuleType = "load_balanced"
	TypeCriteria     RuleType = "criteria"
)

func (t RuleType) IsValid() bool {
	switch t {
	case TypeRoundRobin, TypeTerritory, TypeLoadBalanced, TypeCriteria:
		return true
	}
	return false
}

type Operator string

const (
	OpEq       Operator = "eq"
	OpNe       Operator = "ne"
	OpContains Operator = "contains"
	OpGt       Operator = "gt"
	OpLt       Operator = "lt"
	OpIn       Operator = "in"
)

func (o Operator) IsValid() bool {
	switch o {
	case OpEq, OpNe, OpContains, OpGt, OpLt, OpIn:
		return true
	}
	return false
}

// Criterion is a single field predicate. A rule matches a record only
// when every criterion matches.
type Criterion struct {
	Field    string
	Operator Operator
	Value    string
	Values   []string
}

// Matches evaluates the criterion against a record attribute map. A
// missing field never matches.
func (c Criterion) Matches(attrs map[string]any) bool {
	raw, ok := attrs[c.Field]
	if !ok {
		return false
	}

	switch c.Operator {
	case OpEq:
		return compare(raw, c.Value) == 0
	case OpNe:
		return compare(raw, c.Value) != 0
	case OpContains:
		return strings.Contains(strings.ToLower(stringify(raw)), strings.ToLower(c.Value))
	case OpGt:
		av, bv, ok := numericPair(raw, c.Value)
		return ok && av.GreaterThan(bv)
	case OpLt:
		av, bv, ok := numericPair(raw, c.Value)
		return ok && av.LessThan(bv)
	case OpIn:
		for _, v := range c.Values {
			if compare(raw, v) == 0 {
				return true
			}
		}
		return false
	}
	return false
}

// compare returns 0 on equality, treating numeric attributes
// numerically so "1000" equals 1000.00.
func compare(attr any, value string) int {
	if av, bv, ok := numericPair(attr, value); ok {
		return av.Cmp(bv)
	}
	return strings.Compare(stringify(attr), value)
}

func numericPair(attr any, value string) (decimal.Decimal, decimal.Decimal, bool) {
	var av decimal.Decimal
	switch v := attr.(type) {
	case decimal.Decimal:
		av = v
	case int:
		av = decimal.NewFromInt(int64(v))
	case int64:
		av = decimal.NewFromInt(v)
	case float64:
		av = decimal.NewFromFloat(v)
	default:
		parsed, err := decimal.NewFromString(stringify(attr))
		if err != nil {
			return decimal.Decimal{}, decimal.Decimal{}, false
		}
		av = parsed
	}

	bv, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, false
	}
	return av, bv, true
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case decimal.Decimal:
		return s.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Rule routes records of one type to assignees. Territories map a
// record country to an assignee and only apply to territory rules.
type Rule struct {
	id          uuid.UUID
	tenantID    uuid.UUID
	name        string
	recordType  string
	ruleType    RuleType
	priority    int
	active      bool
	criteria    []Criterion
	assignees   []uuid.UUID
	territories map[string]uuid.UUID
	cursor      int
	createdAt   time.Time
	updatedAt   time.Time
}

type Option func(*Rule)

func WithID(id uuid.UUID) Option {
	return func(r *Rule) { r.id = id }
}

func WithPriority(priority int) Option {
	return func(r *Rule) { r.priority = priority }
}

func WithActive(active bool) Option {
	return func(r *Rule) { r.active = active }
}

func WithCriteria(criteria []Criterion) Option {
	return func(r *Rule) { r.criteria = criteria }
}

func WithAssignees(assignees []uuid.UUID) Option {
	return func(r *Rule) { r.assignees = assignees }
}

func WithTerritories(territories map[string]uuid.UUID) Option {
	return func(r *Rule) { r.territories = territories }
}

func WithCursor(cursor int) Option {
	return func(r *Rule) { r.cursor = cursor }
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(r *Rule) { r.createdAt = createdAt }
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(r *Rule) { r.updatedAt = updatedAt }
}

func New(tenantID uuid.UUID, name, recordType string, ruleType RuleType, opts ...Option) Rule {
	r := Rule{
		id:         uuid.New(),
		tenantID:   tenantID,
		name:       strings.TrimSpace(name),
		recordType: recordType,
		ruleType:   ruleType,
		active:     true,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func (r Rule) ID() uuid.UUID                      { return r.id }
func (r Rule) TenantID() uuid.UUID                { return r.tenantID }
func (r Rule) Name() string                       { return r.name }
func (r Rule) RecordType() string                 { return r.recordType }
func (r Rule) Type() RuleType                     { return r.ruleType }
func (r Rule) Priority() int                      { return r.priority }
func (r Rule) IsActive() bool                     { return r.active }
func (r Rule) Criteria() []Criterion              { return r.criteria }
func (r Rule) Assignees() []uuid.UUID             { return r.assignees }
func (r Rule) Territories() map[string]uuid.UUID  { return r.territories }
func (r Rule) Cursor() int                        { return r.cursor }
func (r Rule) CreatedAt() time.Time               { return r.createdAt }
func (r Rule) UpdatedAt() time.Time               { return r.updatedAt }

// MatchesCriteria reports whether every criterion matches. A rule with
// no criteria matches everything.
func (r Rule) MatchesCriteria(attrs map[string]any) bool {
	for _, c := range r.criteria {
		if !c.Matches(attrs) {
			return false
		}
	}
	return true
}

// NextAssignee returns the round robin pick and the advanced cursor.
func (r Rule) NextAssignee() (uuid.UUID, int, bool) {
	if len(r.assignees) == 0 {
		return uuid.Nil, r.cursor, false
	}
	idx := r.cursor % len(r.assignees)
	return r.assignees[idx], idx + 1, true
}

// AssigneeForCountry resolves a territory match, exact then "*".
func (r Rule) AssigneeForCountry(country string) (uuid.UUID, bool) {
	if id, ok := r.territories[country]; ok {
		return id, true
	}
	if id, ok := r.territories["*"]; ok {
		return id, true
	}
	return uuid.Nil, false
}

// FirstAssignee returns the first configured assignee.
func (r Rule) FirstAssignee() (uuid.UUID, bool) {
	if len(r.assignees) == 0 {
		return uuid.Nil, false
	}
	return r.assignees[0], true
}
