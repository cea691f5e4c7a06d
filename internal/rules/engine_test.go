// internal/rules/engine_test.go
package rules

import (
	"context"
	"testing"

	"loan-workers/internal/common/logger"
	"loan-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }
func strPtr(s string) *string     { return &s }

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(context.Background(), NewMemoryStore(), logger.NewNoOpLogger())
	require.NoError(t, err)
	return engine
}

func approvedFacts() Facts {
	return Facts{
		CreditScore:    floatPtr(750),
		EMIIncomeRatio: floatPtr(30),
		ExistingLoan:   strPtr("no"),
	}
}

func TestNewEngine_InstallsDefaultsOnce(t *testing.T) {
	store := NewMemoryStore()

	engine, err := NewEngine(context.Background(), store, logger.NewNoOpLogger())
	require.NoError(t, err)
	require.Len(t, engine.Rules(), 3)

	persisted, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, persisted, 3, "defaults must be persisted on first start")

	// A second engine over the same store must load, not reinstall.
	engine2, err := NewEngine(context.Background(), store, logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.Equal(t, engine.Rules(), engine2.Rules())
}

func TestEvaluateAll(t *testing.T) {
	tests := []struct {
		name           string
		facts          Facts
		expectDecision models.Decision
		expectReason   string
	}{
		{
			name:           "all defaults pass",
			facts:          approvedFacts(),
			expectDecision: models.DecisionApprove,
			expectReason:   "Passed rules: Min Credit Score, EMI Income Ratio, Existing Loan Check",
		},
		{
			name:           "no facts provided",
			facts:          Facts{},
			expectDecision: models.DecisionPending,
			expectReason:   "Insufficient data to evaluate",
		},
		{
			name: "absent facts are skipped not failed",
			facts: Facts{
				CreditScore: floatPtr(780),
			},
			expectDecision: models.DecisionApprove,
			expectReason:   "Passed rules: Min Credit Score",
		},
		{
			name: "non-firing rules yield pending",
			facts: Facts{
				CreditScore:    floatPtr(600),
				EMIIncomeRatio: floatPtr(80),
				ExistingLoan:   strPtr("yes"),
			},
			expectDecision: models.DecisionPending,
			expectReason:   "Insufficient data to evaluate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t)
			decision, reason := engine.EvaluateAll(tt.facts)
			assert.Equal(t, tt.expectDecision, decision)
			assert.Equal(t, tt.expectReason, reason)
		})
	}
}

func TestEvaluateAll_RejectionDominates(t *testing.T) {
	engine := newTestEngine(t)
	engine.AddRule(context.Background(), BusinessRule{
		Name:      "High Existing Debt",
		RuleType:  FactAmountVsPreApproved,
		Operator:  OpGreaterThan,
		Threshold: NumberThreshold(2),
		Action:    models.DecisionReject,
		Priority:  200,
		Enabled:   true,
	})

	facts := approvedFacts()
	facts.AmountVsPreApproved = floatPtr(3)

	decision, reason := engine.EvaluateAll(facts)
	assert.Equal(t, models.DecisionReject, decision)
	assert.Equal(t, "Failed rules: High Existing Debt", reason)
}

func TestEvaluateAll_Deterministic(t *testing.T) {
	engine := newTestEngine(t)
	facts := approvedFacts()

	d1, r1 := engine.EvaluateAll(facts)
	d2, r2 := engine.EvaluateAll(facts)
	assert.Equal(t, d1, d2)
	assert.Equal(t, r1, r2)
}

func TestPriorityOrdering(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	engine.AddRule(ctx, BusinessRule{
		Name: "Tie A", RuleType: FactCreditScore, Operator: OpGreaterEqual,
		Threshold: NumberThreshold(0), Action: models.DecisionApprove,
		Priority: 100, Enabled: true,
	})
	engine.AddRule(ctx, BusinessRule{
		Name: "Tie B", RuleType: FactCreditScore, Operator: OpGreaterEqual,
		Threshold: NumberThreshold(0), Action: models.DecisionApprove,
		Priority: 100, Enabled: true,
	})
	engine.AddRule(ctx, BusinessRule{
		Name: "Top", RuleType: FactCreditScore, Operator: OpGreaterEqual,
		Threshold: NumberThreshold(0), Action: models.DecisionApprove,
		Priority: 500, Enabled: true,
	})

	names := []string{}
	for _, r := range engine.Rules() {
		names = append(names, r.Name)
	}
	// Highest priority first; equal priorities keep insertion order.
	assert.Equal(t, []string{"Top", "Min Credit Score", "Tie A", "Tie B", "EMI Income Ratio", "Existing Loan Check"}, names)
}

func TestDisabledRuleNeverFires(t *testing.T) {
	engine := newTestEngine(t)
	enabled := false
	ok := engine.UpdateRule(context.Background(), "Min Credit Score", RuleUpdate{Enabled: &enabled})
	require.True(t, ok)

	decision, reason := engine.EvaluateAll(Facts{CreditScore: floatPtr(800)})
	assert.Equal(t, models.DecisionPending, decision)
	assert.Equal(t, "Insufficient data to evaluate", reason)
}

func TestRemoveRule(t *testing.T) {
	engine := newTestEngine(t)
	assert.True(t, engine.RemoveRule(context.Background(), "EMI Income Ratio"))
	assert.False(t, engine.RemoveRule(context.Background(), "EMI Income Ratio"))
	assert.Len(t, engine.Rules(), 2)
}

func TestOperators(t *testing.T) {
	tests := []struct {
		name      string
		operator  Operator
		threshold Threshold
		value     FactValue
		fires     bool
	}{
		{"gt fires", OpGreaterThan, NumberThreshold(10), Number(11), true},
		{"gt boundary", OpGreaterThan, NumberThreshold(10), Number(10), false},
		{"lt fires", OpLessThan, NumberThreshold(10), Number(9), true},
		{"gte boundary", OpGreaterEqual, NumberThreshold(10), Number(10), true},
		{"lte fires", OpLessEqual, NumberThreshold(10), Number(10), true},
		{"eq number", OpEqual, NumberThreshold(5), Number(5), true},
		{"eq text case insensitive", OpEqual, TextThreshold("no"), Text("No"), true},
		{"eq type mismatch", OpEqual, NumberThreshold(5), Text("5"), false},
		{"in membership", OpIn, ListThreshold("Salaried", "Self-Employed"), Text("salaried"), true},
		{"in miss", OpIn, ListThreshold("Salaried"), Text("Student"), false},
		{"in against non-list", OpIn, TextThreshold("Salaried"), Text("Salaried"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, ok := tt.operator.evaluator()
			require.True(t, ok)
			assert.Equal(t, tt.fires, eval.holds(tt.value, tt.threshold))
		})
	}
}

func TestValidateRulePayload(t *testing.T) {
	valid := map[string]interface{}{
		"name":      "Min Credit Score",
		"ruleType":  "credit_score_min",
		"operator":  "gte",
		"threshold": 700,
		"action":    "APPROVE",
		"priority":  100,
		"enabled":   true,
	}
	assert.NoError(t, ValidateRulePayload(valid))

	invalid := map[string]interface{}{
		"name":     "",
		"ruleType": "shoe_size",
		"operator": "gte",
		"action":   "MAYBE",
	}
	err := ValidateRulePayload(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rule")
}
