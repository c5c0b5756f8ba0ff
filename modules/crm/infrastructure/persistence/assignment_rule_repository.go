package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/vantagecrm/vantage/modules/crm/domain/entities/assignmentrule"
	"github.com/vantagecrm/vantage/modules/crm/infrastructure/persistence/models"
	"github.com/vantagecrm/vantage/pkg/composables"
)

const (
	assignmentRuleFindQuery = `
		SELECT
			id,
			tenant_id,
			name,
			record_type,
			rule_type,
			priority,
			is_active,
			criteria,
			assignees,
			territories,
			cursor,
			created_at,
			updated_at
		FROM assignment_rules`

	// Ordering here is the rule evaluation order.
	assignmentRuleActiveQuery = assignmentRuleFindQuery + `
		WHERE tenant_id = $1 AND record_type = $2 AND is_active = TRUE
		ORDER BY priority DESC, name ASC`

	assignmentRuleInsertQuery = `
		INSERT INTO assignment_rules (id, tenant_id, name, record_type, rule_type, priority, is_active, criteria, assignees, territories, cursor, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())`

	assignmentRuleUpdateQuery = `
		UPDATE assignment_rules
		SET name = $1, record_type = $2, rule_type = $3, priority = $4, is_active = $5, criteria = $6, assignees = $7, territories = $8, updated_at = NOW()
		WHERE id = $9 AND tenant_id = $10`

	assignmentRuleCursorQuery = `
		UPDATE assignment_rules
		SET cursor = $1, updated_at = NOW()
		WHERE id = $2 AND tenant_id = $3`

	assignmentRuleDeleteQuery = `DELETE FROM assignment_rules WHERE id = $1 AND tenant_id = $2`
)

type PgAssignmentRuleRepository struct{}

func NewAssignmentRuleRepository() assignmentrule.Repository {
	return &PgAssignmentRuleRepository{}
}

func (g *PgAssignmentRuleRepository) GetByID(ctx context.Context, id uuid.UUID) (assignmentrule.Rule, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return assignmentrule.Rule{}, err
	}

	rules, err := g.queryRules(ctx, assignmentRuleFindQuery+" WHERE id = $1 AND tenant_id = $2", id.String(), tenantID.String())
	if err != nil {
		return assignmentrule.Rule{}, err
	}
	if len(rules) == 0 {
		return assignmentrule.Rule{}, assignmentrule.ErrNotFound
	}
	return rules[0], nil
}

func (g *PgAssignmentRuleRepository) GetAll(ctx context.Context) ([]assignmentrule.Rule, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	return g.queryRules(ctx, assignmentRuleFindQuery+" WHERE tenant_id = $1 ORDER BY priority DESC, name ASC", tenantID.String())
}

func (g *PgAssignmentRuleRepository) GetActiveByRecordType(ctx context.Context, recordType string) ([]assignmentrule.Rule, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	return g.queryRules(ctx, assignmentRuleActiveQuery, tenantID.String(), recordType)
}

func (g *PgAssignmentRuleRepository) Create(ctx context.Context, entity assignmentrule.Rule) (assignmentrule.Rule, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return assignmentrule.Rule{}, err
	}

	m, err := toDBAssignmentRule(entity)
	if err != nil {
		return assignmentrule.Rule{}, err
	}

	_, err = tx.Exec(ctx, assignmentRuleInsertQuery,
		m.ID,
		m.TenantID,
		m.Name,
		m.RecordType,
		m.RuleType,
		m.Priority,
		m.IsActive,
		m.Criteria,
		m.Assignees,
		m.Territories,
		m.Cursor,
	)
	if err != nil {
		return assignmentrule.Rule{}, errors.Wrap(err, "failed to create assignment rule")
	}
	return g.GetByID(ctx, entity.ID())
}

func (g *PgAssignmentRuleRepository) Update(ctx context.Context, entity assignmentrule.Rule) (assignmentrule.Rule, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return assignmentrule.Rule{}, err
	}

	m, err := toDBAssignmentRule(entity)
	if err != nil {
		return assignmentrule.Rule{}, err
	}

	_, err = tx.Exec(ctx, assignmentRuleUpdateQuery,
		m.Name,
		m.RecordType,
		m.RuleType,
		m.Priority,
		m.IsActive,
		m.Criteria,
		m.Assignees,
		m.Territories,
		m.ID,
		m.TenantID,
	)
	if err != nil {
		return assignmentrule.Rule{}, errors.Wrap(err, "failed to update assignment rule")
	}
	return g.GetByID(ctx, entity.ID())
}

func (g *PgAssignmentRuleRepository) UpdateCursor(ctx context.Context, id uuid.UUID, cursor int) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, assignmentRuleCursorQuery, cursor, id.String(), tenantID.String())
	return errors.Wrap(err, "failed to update assignment rule cursor")
}

func (g *PgAssignmentRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, assignmentRuleDeleteQuery, id.String(), tenantID.String())
	return err
}

func (g *PgAssignmentRuleRepository) queryRules(ctx context.Context, query string, args ...interface{}) ([]assignmentrule.Rule, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var rules []assignmentrule.Rule
	for rows.Next() {
		var m models.AssignmentRule
		if err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&m.Name,
			&m.RecordType,
			&m.RuleType,
			&m.Priority,
			&m.IsActive,
			&m.Criteria,
			&m.Assignees,
			&m.Territories,
			&m.Cursor,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan assignment rule row")
		}
		entity, err := toDomainAssignmentRule(&m)
		if err != nil {
			return nil, err
		}
		rules = append(rules, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return rules, nil
}
