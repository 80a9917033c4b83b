package registry

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ai-guards/ai-guards/internal/rules"
	"github.com/ai-guards/ai-guards/internal/utils"
)

// SyncFailure records a rule file that could not be extracted during Sync.
type SyncFailure struct {
	Path string
	Err  error
}

// SyncResult summarizes a Sync run.
type SyncResult struct {
	Registry Registry
	Failures []SyncFailure
}

// AddRule extracts the rule at filePath and upserts it by id. An existing
// entry keeps its position; a new one is appended.
func (s *Store) AddRule(filePath string) (rules.RuleMeta, error) {
	reg := s.Load()

	meta, err := rules.Extract(s.fs, s.root, filePath)
	if err != nil {
		return rules.RuleMeta{}, err
	}

	reg.Rules = upsert(reg.Rules, meta)

	if err := s.Save(reg); err != nil {
		return rules.RuleMeta{}, err
	}

	s.logger.Info("rule added", zap.String("id", meta.ID), zap.String("ruleType", string(meta.RuleType)))
	return meta, nil
}

func upsert(list []rules.RuleMeta, meta rules.RuleMeta) []rules.RuleMeta {
	for i := range list {
		if list[i].ID == meta.ID {
			list[i] = meta
			return list
		}
	}
	return append(list, meta)
}

// Sync rebuilds the registry from every markdown file under the rules root
// and saves it, replacing whatever was there. Files that fail extraction are
// logged and left out; they do not stop the sync.
func (s *Store) Sync() (SyncResult, error) {
	files, err := utils.FindRuleFiles(s.fs, s.RulesDir(), s.logger)
	if err != nil {
		return SyncResult{}, fmt.Errorf("scanning %s: %w", s.RulesDir(), err)
	}

	result := SyncResult{Registry: Empty()}
	for _, file := range files {
		meta, err := rules.Extract(s.fs, s.root, file)
		if err != nil {
			s.logger.Error("failed to parse rule", zap.String("path", file), zap.Error(err))
			result.Failures = append(result.Failures, SyncFailure{Path: file, Err: err})
			continue
		}
		result.Registry.Rules = append(result.Registry.Rules, meta)
	}

	if err := s.Save(result.Registry); err != nil {
		return SyncResult{}, err
	}

	s.logger.Info("registry synced",
		zap.Int("rules", len(result.Registry.Rules)),
		zap.Int("failures", len(result.Failures)))
	return result, nil
}

// Rule looks up a registry entry by id.
func (r Registry) Rule(id string) (rules.RuleMeta, bool) {
	for _, meta := range r.Rules {
		if meta.ID == id {
			return meta, true
		}
	}
	return rules.RuleMeta{}, false
}

// IDs lists rule ids in registry order.
func (r Registry) IDs() []string {
	ids := make([]string, 0, len(r.Rules))
	for _, meta := range r.Rules {
		ids = append(ids, meta.ID)
	}
	return ids
}
