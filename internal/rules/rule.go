// internal/rules/rule.go

// Package rules implements the dynamic business-rules engine used for loan
// approval decisions. Rules are CRUD'able at runtime and persisted to a
// durable store on every mutation.
package rules

import (
	"encoding/json"
	"fmt"
	"strings"

	"loan-workers/internal/models"
)

// RuleType names the fact a rule evaluates.
type RuleType string

const (
	FactCreditScore         RuleType = "credit_score_min"
	FactAmountVsPreApproved RuleType = "amount_vs_preapproved"
	FactEMIIncomeRatio      RuleType = "emi_income_ratio"
	FactAgeRestriction      RuleType = "age_restriction"
	FactEmploymentType      RuleType = "employment_type"
	FactExistingLoan        RuleType = "existing_loan_check"
)

// Facts enumerates every input the engine can evaluate, as typed optional
// fields. A nil field means the fact is unknown for this evaluation and any
// rule keyed on it is skipped.
type Facts struct {
	CreditScore         *float64
	AmountVsPreApproved *float64
	EMIIncomeRatio      *float64
	Age                 *float64
	EmploymentType      *string
	ExistingLoan        *string
}

func (f Facts) lookup(rt RuleType) (FactValue, bool) {
	switch rt {
	case FactCreditScore:
		if f.CreditScore != nil {
			return Number(*f.CreditScore), true
		}
	case FactAmountVsPreApproved:
		if f.AmountVsPreApproved != nil {
			return Number(*f.AmountVsPreApproved), true
		}
	case FactEMIIncomeRatio:
		if f.EMIIncomeRatio != nil {
			return Number(*f.EMIIncomeRatio), true
		}
	case FactAgeRestriction:
		if f.Age != nil {
			return Number(*f.Age), true
		}
	case FactEmploymentType:
		if f.EmploymentType != nil {
			return Text(*f.EmploymentType), true
		}
	case FactExistingLoan:
		if f.ExistingLoan != nil {
			return Text(*f.ExistingLoan), true
		}
	}
	return FactValue{}, false
}

// FactValue is a numeric or textual fact.
type FactValue struct {
	number  float64
	text    string
	numeric bool
}

func Number(v float64) FactValue { return FactValue{number: v, numeric: true} }
func Text(s string) FactValue    { return FactValue{text: s} }

// Threshold is the rule's comparison operand: a number, a string, or a list
// of strings (for membership rules).
type Threshold struct {
	number  float64
	text    string
	list    []string
	numeric bool
	isList  bool
}

func NumberThreshold(v float64) Threshold  { return Threshold{number: v, numeric: true} }
func TextThreshold(s string) Threshold     { return Threshold{text: s} }
func ListThreshold(vs ...string) Threshold { return Threshold{list: vs, isList: true} }

func (t Threshold) MarshalJSON() ([]byte, error) {
	switch {
	case t.isList:
		return json.Marshal(t.list)
	case t.numeric:
		return json.Marshal(t.number)
	default:
		return json.Marshal(t.text)
	}
}

func (t *Threshold) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*t = NumberThreshold(num)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*t = TextThreshold(str)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = ListThreshold(list...)
		return nil
	}
	return fmt.Errorf("threshold must be a number, string or string list")
}

// Operator is the comparison a rule applies between fact and threshold.
type Operator string

const (
	OpGreaterThan  Operator = "gt"
	OpLessThan     Operator = "lt"
	OpEqual        Operator = "eq"
	OpGreaterEqual Operator = "gte"
	OpLessEqual    Operator = "lte"
	OpIn           Operator = "in"
)

// evaluator is the closed set of comparison variants; operator dispatch
// happens once per evaluation via pattern match, not string comparison in
// the hot path.
type evaluator interface {
	holds(value FactValue, threshold Threshold) bool
}

type (
	greaterThan  struct{}
	lessThan     struct{}
	equal        struct{}
	greaterEqual struct{}
	lessEqual    struct{}
	membership   struct{}
)

func (greaterThan) holds(v FactValue, t Threshold) bool {
	return v.numeric && t.numeric && v.number > t.number
}

func (lessThan) holds(v FactValue, t Threshold) bool {
	return v.numeric && t.numeric && v.number < t.number
}

func (equal) holds(v FactValue, t Threshold) bool {
	if v.numeric && t.numeric {
		return v.number == t.number
	}
	if !v.numeric && !t.numeric && !t.isList {
		return strings.EqualFold(v.text, t.text)
	}
	return false
}

func (greaterEqual) holds(v FactValue, t Threshold) bool {
	return v.numeric && t.numeric && v.number >= t.number
}

func (lessEqual) holds(v FactValue, t Threshold) bool {
	return v.numeric && t.numeric && v.number <= t.number
}

func (membership) holds(v FactValue, t Threshold) bool {
	if v.numeric || !t.isList {
		return false
	}
	for _, candidate := range t.list {
		if strings.EqualFold(v.text, candidate) {
			return true
		}
	}
	return false
}

func (op Operator) evaluator() (evaluator, bool) {
	switch op {
	case OpGreaterThan:
		return greaterThan{}, true
	case OpLessThan:
		return lessThan{}, true
	case OpEqual:
		return equal{}, true
	case OpGreaterEqual:
		return greaterEqual{}, true
	case OpLessEqual:
		return lessEqual{}, true
	case OpIn:
		return membership{}, true
	}
	return nil, false
}

// BusinessRule is one configurable approval rule. Name is the unique key.
type BusinessRule struct {
	Name        string          `json:"name"`
	RuleType    RuleType        `json:"ruleType"`
	Operator    Operator        `json:"operator"`
	Threshold   Threshold       `json:"threshold"`
	Action      models.Decision `json:"action"` // APPROVE or REJECT
	Priority    int             `json:"priority"`
	Description string          `json:"description,omitempty"`
	Enabled     bool            `json:"enabled"`
}

// Fires reports whether the rule's condition holds for the given facts.
// A disabled rule, an absent fact, or an unknown operator never fires.
func (r BusinessRule) Fires(facts Facts) bool {
	if !r.Enabled {
		return false
	}
	value, ok := facts.lookup(r.RuleType)
	if !ok {
		return false
	}
	eval, ok := r.Operator.evaluator()
	if !ok {
		return false
	}
	return eval.holds(value, r.Threshold)
}
