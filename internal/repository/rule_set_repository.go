package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/ajharbinger/churnguard/internal/errors"
	"github.com/ajharbinger/churnguard/internal/scoring"
)

// ruleSetRepository implements RuleSetRepository on the scoring_rule_sets table
type ruleSetRepository struct {
	db dbQuerier
}

// NewRuleSetRepository creates a new rule set repository
func NewRuleSetRepository(db dbQuerier) RuleSetRepository {
	return &ruleSetRepository{db: db}
}

// GetActiveRuleSets returns every active rule set ordered by id.
// A row that fails validation aborts the whole load.
func (r *ruleSetRepository) GetActiveRuleSets(ctx context.Context) ([]scoring.RuleSet, error) {
	query := `
		SELECT id, name, description, version, rules
		FROM scoring_rule_sets
		WHERE is_active = true
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.DatabaseError("failed to query rule sets", err).WithOperation("GetActiveRuleSets")
	}
	defer rows.Close()

	var sets []scoring.RuleSet
	for rows.Next() {
		var id, name, description string
		var version int
		var rulesJSON []byte

		if err := rows.Scan(&id, &name, &description, &version, &rulesJSON); err != nil {
			return nil, errors.DatabaseError("failed to scan rule set", err).WithOperation("GetActiveRuleSets")
		}

		rs, err := scoring.LoadRuleSetFromJSON(id, name, description, version, rulesJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to load rule set %s from JSON: %w", id, err)
		}
		sets = append(sets, *rs)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("failed to iterate rule sets", err).WithOperation("GetActiveRuleSets")
	}

	return sets, nil
}

// GetRuleSetByID returns one rule set regardless of its active flag
func (r *ruleSetRepository) GetRuleSetByID(ctx context.Context, id string) (*scoring.RuleSet, error) {
	query := `
		SELECT id, name, description, version, rules
		FROM scoring_rule_sets
		WHERE id = $1
	`

	var ruleSetID, name, description string
	var version int
	var rulesJSON []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(&ruleSetID, &name, &description, &version, &rulesJSON)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound(fmt.Sprintf("rule set %s not found", id), nil).WithOperation("GetRuleSetByID")
		}
		return nil, errors.DatabaseError("failed to get rule set", err).WithOperation("GetRuleSetByID")
	}

	return scoring.LoadRuleSetFromJSON(ruleSetID, name, description, version, rulesJSON)
}
