package services

import (
	"context"
	"fmt"

	"github.com/ajharbinger/churnguard/internal/errors"
	"github.com/ajharbinger/churnguard/internal/logger"
	"github.com/ajharbinger/churnguard/internal/repository"
	"github.com/ajharbinger/churnguard/internal/scoring"
)

// ruleSetServiceImpl implements RuleSetService over an immutable slice,
// falling back to the repository for stored rule sets that are inactive
type ruleSetServiceImpl struct {
	sets []scoring.RuleSet
	repo repository.RuleSetRepository
}

func newRuleSetService(sets []scoring.RuleSet, repo repository.RuleSetRepository) RuleSetService {
	return &ruleSetServiceImpl{sets: sets, repo: repo}
}

// ListRuleSets returns the loaded rule sets in load order
func (s *ruleSetServiceImpl) ListRuleSets() []scoring.RuleSet {
	out := make([]scoring.RuleSet, len(s.sets))
	copy(out, s.sets)
	return out
}

// GetRuleSet returns one rule set by ID, loaded ones first
func (s *ruleSetServiceImpl) GetRuleSet(ctx context.Context, id string) (*scoring.RuleSet, error) {
	for _, rs := range s.sets {
		if rs.ID == id {
			found := rs
			return &found, nil
		}
	}
	if s.repo != nil {
		rs, err := s.repo.GetRuleSetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return rs, nil
	}
	return nil, errors.NotFound(fmt.Sprintf("rule set %s not found", id), nil).WithOperation("GetRuleSet")
}

// LoadRuleSets builds the rule tables in precedence order: built-ins, then the
// file at path (if any), then active rows from repo (if any). Later sources
// replace earlier ones with the same ID.
func LoadRuleSets(ctx context.Context, path string, repo repository.RuleSetRepository, log logger.Logger) ([]scoring.RuleSet, error) {
	if log == nil {
		log = logger.NewNop()
	}

	var overlays [][]scoring.RuleSet

	if path != "" {
		fromFile, err := scoring.LoadRuleSetsFile(path)
		if err != nil {
			return nil, err
		}
		log.Info("loaded rule sets from file", "path", path, "count", len(fromFile))
		overlays = append(overlays, fromFile)
	}

	if repo != nil {
		fromDB, err := repo.GetActiveRuleSets(ctx)
		if err != nil {
			return nil, err
		}
		log.Info("loaded rule sets from database", "count", len(fromDB))
		overlays = append(overlays, fromDB)
	}

	return scoring.MergeRuleSets(scoring.DefaultRuleSets(), overlays...), nil
}
