// internal/rules/engine.go
package rules

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"loan-workers/internal/common/logger"
	"loan-workers/internal/models"
)

// Store persists the active rule set. A store that has nothing yet must
// return an empty slice, not an error.
type Store interface {
	Load(ctx context.Context) ([]BusinessRule, error)
	Save(ctx context.Context, rules []BusinessRule) error
}

// Engine evaluates the configured rules against a fact context.
//
// Rule mutation is a globally visible side effect; callers that need a
// read-then-write sequence to be atomic must serialize externally.
type Engine struct {
	rules  []BusinessRule
	store  Store
	logger logger.Logger
}

// NewEngine loads the persisted rule set. An empty store gets the default
// rules installed and persisted once.
func NewEngine(ctx context.Context, store Store, log logger.Logger) (*Engine, error) {
	e := &Engine{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "rules-engine"}),
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	if len(loaded) == 0 {
		e.rules = DefaultRules()
		e.sortRules()
		e.persist(ctx)
		e.logger.Info("installed default rules", map[string]interface{}{
			"count": len(e.rules),
		})
	} else {
		e.rules = loaded
		e.sortRules()
	}

	return e, nil
}

// DefaultRules is the rule set installed on first start.
func DefaultRules() []BusinessRule {
	return []BusinessRule{
		{
			Name:        "Min Credit Score",
			RuleType:    FactCreditScore,
			Operator:    OpGreaterEqual,
			Threshold:   NumberThreshold(700),
			Action:      models.DecisionApprove,
			Priority:    100,
			Description: "Credit score must be at least 700",
			Enabled:     true,
		},
		{
			Name:        "EMI Income Ratio",
			RuleType:    FactEMIIncomeRatio,
			Operator:    OpLessEqual,
			Threshold:   NumberThreshold(50),
			Action:      models.DecisionApprove,
			Priority:    90,
			Description: "EMI should not exceed 50% of monthly income",
			Enabled:     true,
		},
		{
			Name:        "Existing Loan Check",
			RuleType:    FactExistingLoan,
			Operator:    OpEqual,
			Threshold:   TextThreshold("no"),
			Action:      models.DecisionApprove,
			Priority:    80,
			Description: "Prefer customers with no existing loans",
			Enabled:     true,
		},
	}
}

// AddRule inserts a rule, re-sorts by descending priority and persists the
// full set. Equal priorities keep insertion order.
func (e *Engine) AddRule(ctx context.Context, rule BusinessRule) {
	e.rules = append(e.rules, rule)
	e.sortRules()
	e.persist(ctx)
}

// RemoveRule deletes the rule with the given name, if present.
func (e *Engine) RemoveRule(ctx context.Context, name string) bool {
	for i, r := range e.rules {
		if r.Name == name {
			e.rules = append(e.rules[:i], e.rules[i+1:]...)
			e.persist(ctx)
			return true
		}
	}
	return false
}

// RuleUpdate carries the mutable fields of a rule; nil fields are left
// untouched.
type RuleUpdate struct {
	Operator  *Operator
	Threshold *Threshold
	Action    *models.Decision
	Priority  *int
	Enabled   *bool
}

// UpdateRule mutates the named rule in place and persists the set.
func (e *Engine) UpdateRule(ctx context.Context, name string, update RuleUpdate) bool {
	for i := range e.rules {
		if e.rules[i].Name != name {
			continue
		}
		if update.Operator != nil {
			e.rules[i].Operator = *update.Operator
		}
		if update.Threshold != nil {
			e.rules[i].Threshold = *update.Threshold
		}
		if update.Action != nil {
			e.rules[i].Action = *update.Action
		}
		if update.Priority != nil {
			e.rules[i].Priority = *update.Priority
		}
		if update.Enabled != nil {
			e.rules[i].Enabled = *update.Enabled
		}
		e.sortRules()
		e.persist(ctx)
		return true
	}
	return false
}

// Rules returns a copy of the active rule set in evaluation order.
func (e *Engine) Rules() []BusinessRule {
	out := make([]BusinessRule, len(e.rules))
	copy(out, e.rules)
	return out
}

// EvaluateAll runs every enabled rule in priority order and aggregates:
// any firing REJECT rule dominates, else APPROVE if any approval fired,
// else PENDING. Absent facts are skipped, not errors. Pure function of
// (rule set, facts).
func (e *Engine) EvaluateAll(facts Facts) (models.Decision, string) {
	var approvals, rejections []string

	for _, rule := range e.rules {
		if !rule.Fires(facts) {
			continue
		}
		switch rule.Action {
		case models.DecisionApprove:
			approvals = append(approvals, rule.Name)
		case models.DecisionReject:
			rejections = append(rejections, rule.Name)
		}
	}

	if len(rejections) > 0 {
		return models.DecisionReject, "Failed rules: " + strings.Join(rejections, ", ")
	}
	if len(approvals) > 0 {
		return models.DecisionApprove, "Passed rules: " + strings.Join(approvals, ", ")
	}
	return models.DecisionPending, "Insufficient data to evaluate"
}

func (e *Engine) sortRules() {
	sort.SliceStable(e.rules, func(i, j int) bool {
		return e.rules[i].Priority > e.rules[j].Priority
	})
}

// persist rewrites the full rule set. A write failure leaves the in-memory
// set authoritative for the session.
func (e *Engine) persist(ctx context.Context) {
	if err := e.store.Save(ctx, e.rules); err != nil {
		e.logger.WithError(err).Warn("rule persistence failed, in-memory set remains authoritative", map[string]interface{}{
			"count": len(e.rules),
		})
	}
}
