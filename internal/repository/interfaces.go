package repository

import (
	"context"
	"database/sql"

	"github.com/ajharbinger/churnguard/internal/scoring"
)

// RuleSetRepository reads rule tables maintained outside the service.
// The service never writes to it.
type RuleSetRepository interface {
	GetActiveRuleSets(ctx context.Context) ([]scoring.RuleSet, error)
	GetRuleSetByID(ctx context.Context, id string) (*scoring.RuleSet, error)
}

// dbQuerier is satisfied by both *sql.DB and *sql.Tx
type dbQuerier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
