// internal/rules/schema.go
package rules

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ruleSchema validates rule payloads arriving over the wire before they are
// installed into the engine.
var ruleSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"name": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"ruleType": map[string]interface{}{
			"type": "string",
			"enum": []string{
				string(FactCreditScore),
				string(FactAmountVsPreApproved),
				string(FactEMIIncomeRatio),
				string(FactAgeRestriction),
				string(FactEmploymentType),
				string(FactExistingLoan),
			},
		},
		"operator": map[string]interface{}{
			"type": "string",
			"enum": []string{
				string(OpGreaterThan),
				string(OpLessThan),
				string(OpEqual),
				string(OpGreaterEqual),
				string(OpLessEqual),
				string(OpIn),
			},
		},
		"threshold": map[string]interface{}{},
		"action": map[string]interface{}{
			"type": "string",
			"enum": []string{"APPROVE", "REJECT"},
		},
		"priority": map[string]interface{}{
			"type": "integer",
		},
		"enabled": map[string]interface{}{
			"type": "boolean",
		},
		"description": map[string]interface{}{
			"type": "string",
		},
	},
	"required": []string{"name", "ruleType", "operator", "threshold", "action"},
}

// ValidateRulePayload checks an incoming rule document against the schema and
// returns a single error listing every violation.
func ValidateRulePayload(payload map[string]interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(ruleSchema)
	documentLoader := gojsonschema.NewGoLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("rule schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, issue := range result.Errors() {
		issues = append(issues, issue.String())
	}
	return fmt.Errorf("invalid rule: %s", strings.Join(issues, "; "))
}

// RuleFromPayload validates an incoming rule document and decodes it into a
// BusinessRule. Enabled defaults to true and priority to 100 when absent.
func RuleFromPayload(payload map[string]interface{}) (BusinessRule, error) {
	if err := ValidateRulePayload(payload); err != nil {
		return BusinessRule{}, err
	}

	if _, ok := payload["enabled"]; !ok {
		payload["enabled"] = true
	}
	if _, ok := payload["priority"]; !ok {
		payload["priority"] = 100
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return BusinessRule{}, fmt.Errorf("encode rule payload: %w", err)
	}

	var rule BusinessRule
	if err := json.Unmarshal(raw, &rule); err != nil {
		return BusinessRule{}, fmt.Errorf("decode rule payload: %w", err)
	}
	return rule, nil
}
