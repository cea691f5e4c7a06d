// internal/workers/rules/manage-business-rules/models.go
package managerules

import "loan-workers/internal/rules"

type Input struct {
	Action   string                 `json:"action"` // add, remove, update, list
	RuleName string                 `json:"ruleName,omitempty"`
	Rule     map[string]interface{} `json:"rule,omitempty"`
	Update   *RuleUpdate            `json:"update,omitempty"`
}

type RuleUpdate struct {
	Operator  *string     `json:"operator,omitempty"`
	Threshold interface{} `json:"threshold,omitempty"`
	Action    *string     `json:"action,omitempty"`
	Priority  *int        `json:"priority,omitempty"`
	Enabled   *bool       `json:"enabled,omitempty"`
}

type Output struct {
	OK    bool                 `json:"ok"`
	Rules []rules.BusinessRule `json:"rules"`
}
