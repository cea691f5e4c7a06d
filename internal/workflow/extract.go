// internal/workflow/extract.go
package workflow

import (
	"regexp"
	"strconv"
	"strings"
)

// Intent is a coarse classification of a free-text message, detected by
// keyword families. This is a heuristic layer, not language understanding.
type Intent string

const (
	IntentGreeting     Intent = "greeting"
	IntentLoanType     Intent = "loan_type"
	IntentAmount       Intent = "amount"
	IntentConfirmation Intent = "confirmation"
	IntentStatus       Intent = "status"
	IntentCancel       Intent = "cancel"
	IntentUnknown      Intent = "unknown"
)

var intentKeywords = []struct {
	intent Intent
	words  []string
}{
	{IntentCancel, []string{"cancel", "abort", "stop", "start over", "restart"}},
	{IntentStatus, []string{"status", "progress", "update", "where are we"}},
	{IntentGreeting, []string{"hi", "hello", "hey", "start", "begin"}},
	{IntentLoanType, []string{"personal", "home", "business", "education"}},
	{IntentAmount, []string{"amount", "lakh", "lakhs", "crore", "rupee", "rs", "₹"}},
	{IntentConfirmation, []string{"yes", "confirm", "proceed", "ok", "okay", "sure"}},
}

// DetectIntent returns the first intent family whose keyword appears in
// the message. Cancel and status outrank conversational intents so a
// "yes, cancel it" resolves to cancel.
func DetectIntent(message string) Intent {
	lower := strings.ToLower(message)
	words := tokenSet(lower)

	for _, family := range intentKeywords {
		for _, kw := range family.words {
			if strings.Contains(kw, " ") {
				if strings.Contains(lower, kw) {
					return family.intent
				}
			} else if words[kw] {
				return family.intent
			}
		}
	}
	return IntentUnknown
}

func tokenSet(lower string) map[string]bool {
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '₹'
	})
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

var amountPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(k|m|lac|lakhs?|cr|crores?)?\b`)

// ParseAmount extracts a rupee amount from free text. Suffixes k/m/lakh/
// crore scale the number; a bare number below 100 is read as lakhs. That
// last rule is a deliberate ambiguity kept for continuity; it will
// misread legitimate small-rupee amounts.
func ParseAmount(message string) (float64, bool) {
	match := amountPattern.FindStringSubmatch(message)
	if match == nil {
		return 0, false
	}

	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}

	switch strings.ToLower(match[2]) {
	case "k":
		return value * 1_000, true
	case "m":
		return value * 1_000_000, true
	case "lac", "lakh", "lakhs":
		return value * 100_000, true
	case "cr", "crore", "crores":
		return value * 10_000_000, true
	}

	if value < 100 {
		return value * 100_000, true
	}
	return value, true
}

var firstNumberPattern = regexp.MustCompile(`\d+`)

// ExtractAge reads the first numeric token as the customer's age.
func ExtractAge(message string) (int, bool) {
	match := firstNumberPattern.FindString(message)
	if match == "" {
		return 0, false
	}
	age, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return age, true
}

// ExtractEmploymentType matches the salaried/self-employed keyword
// families.
func ExtractEmploymentType(message string) (string, bool) {
	lower := strings.ToLower(message)
	if strings.Contains(lower, "salaried") {
		return "Salaried", true
	}
	if strings.Contains(lower, "self") || strings.Contains(lower, "business") {
		return "Self-Employed", true
	}
	return "", false
}

// ExtractExistingLoan maps yes/no keyword families to the flag value.
// "no"/"none" is checked first so "no loans yet" never reads as yes.
func ExtractExistingLoan(message string) (string, bool) {
	words := tokenSet(strings.ToLower(message))
	if words["no"] || words["none"] || words["nope"] {
		return "no", true
	}
	if words["yes"] || words["yeah"] || words["yep"] {
		return "yes", true
	}
	return "", false
}

// ExtractLoanType picks the product family named in the message.
func ExtractLoanType(message string) (string, bool) {
	lower := strings.ToLower(message)
	for _, lt := range []string{"personal", "home", "business", "education"} {
		if strings.Contains(lower, lt) {
			return strings.ToUpper(lt[:1]) + lt[1:], true
		}
	}
	return "", false
}
