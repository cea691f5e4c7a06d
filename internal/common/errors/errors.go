// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Loan pipeline error codes. Business errors are non-retryable and
// surface as BPMN errors; technical errors retry per GetRetryCount.
const (
	ErrCodeCustomerNotFound  ErrorCode = "CUSTOMER_NOT_FOUND"
	ErrCodeCrmRecordNotFound ErrorCode = "CRM_RECORD_NOT_FOUND"
	ErrCodeOfferNotFound     ErrorCode = "OFFER_NOT_FOUND"

	ErrCodeRequiredFactMissing     ErrorCode = "REQUIRED_FACT_MISSING"
	ErrCodeInvalidLoanApplication  ErrorCode = "INVALID_LOAN_APPLICATION"
	ErrCodeInvalidRulePayload      ErrorCode = "INVALID_RULE_PAYLOAD"
	ErrCodeRulePersistenceFailed   ErrorCode = "RULE_PERSISTENCE_FAILED"
	ErrCodeRuleEvaluationFailed    ErrorCode = "RULE_EVALUATION_FAILED"
	ErrCodeKycVerificationFailed   ErrorCode = "KYC_VERIFICATION_FAILED"
	ErrCodeSanctionGenerationError ErrorCode = "SANCTION_GENERATION_ERROR"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeAuditWriteFailed              ErrorCode = "AUDIT_WRITE_FAILED"
	ErrCodeAuditQueryFailed              ErrorCode = "AUDIT_QUERY_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeGenAITimeout     ErrorCode = "GENAI_TIMEOUT"
	ErrCodeGenAIUnavailable ErrorCode = "GENAI_UNAVAILABLE"
)

// Job input validation codes. Workers reject these without retry.
const (
	ErrCodeInvalidJobVariables  ErrorCode = "INVALID_JOB_VARIABLES"
	ErrCodeCustomerIDRequired   ErrorCode = "CUSTOMER_ID_REQUIRED"
	ErrCodeMessageRequired      ErrorCode = "MESSAGE_REQUIRED"
	ErrCodeRuleNameRequired     ErrorCode = "RULE_NAME_REQUIRED"
	ErrCodeRulePayloadRequired  ErrorCode = "RULE_PAYLOAD_REQUIRED"
	ErrCodeRuleNotFound         ErrorCode = "RULE_NOT_FOUND"
	ErrCodeUnknownRuleAction    ErrorCode = "UNKNOWN_RULE_ACTION"
	ErrCodeInvalidSanctionTerms ErrorCode = "INVALID_SANCTION_TERMS"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewCustomerNotFoundError creates a non-retryable customer lookup error.
func NewCustomerNotFoundError(customerID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCustomerNotFound,
		Message:   "Customer not found",
		Details:   fmt.Sprintf("customerId: %s", customerID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCrmRecordNotFoundError creates a non-retryable CRM lookup error.
func NewCrmRecordNotFoundError(customerID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCrmRecordNotFound,
		Message:   "CRM record not found",
		Details:   fmt.Sprintf("customerId: %s", customerID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOfferNotFoundError creates a non-retryable offer lookup error.
func NewOfferNotFoundError(customerID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOfferNotFound,
		Message:   "No loan offer available for customer",
		Details:   fmt.Sprintf("customerId: %s", customerID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRequiredFactMissingError creates a non-retryable missing fact error.
func NewRequiredFactMissingError(fact string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequiredFactMissing,
		Message:   "Required applicant fact is missing",
		Details:   fmt.Sprintf("fact: %s", fact),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidLoanApplicationError creates a non-retryable application validation error.
func NewInvalidLoanApplicationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidLoanApplication,
		Message:   "Loan application validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRulePayloadError creates a non-retryable rule validation error.
func NewInvalidRulePayloadError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRulePayload,
		Message:   "Business rule payload validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRulePersistenceFailedError creates a retryable rule store error.
func NewRulePersistenceFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRulePersistenceFailed,
		Message:   "Failed to persist business rule set",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRuleEvaluationFailedError creates a retryable rule evaluation error.
func NewRuleEvaluationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRuleEvaluationFailed,
		Message:   "Business rule evaluation error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewKycVerificationFailedError creates a non-retryable KYC outcome error.
// KYC mismatches are a business result, not a technical fault.
func NewKycVerificationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeKycVerificationFailed,
		Message:   "KYC verification failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSanctionGenerationError creates a retryable sanction letter error.
func NewSanctionGenerationError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSanctionGenerationError,
		Message:   "Sanction letter generation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeElasticsearchConnectionFailed,
		Message:   "Elasticsearch connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditWriteFailedError creates a retryable audit index error.
func NewAuditWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditWriteFailed,
		Message:   "Audit trail write failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditQueryFailedError creates a retryable audit query error.
func NewAuditQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditQueryFailed,
		Message:   "Audit trail query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenAITimeoutError creates a retryable text generation timeout error.
func NewGenAITimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeGenAITimeout,
		Message:   "Text generation timeout",
		Details:   "Generation call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenAIUnavailableError creates a retryable text generation error.
// Callers fall back to deterministic templates, so retries stay low.
func NewGenAIUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenAIUnavailable,
		Message:   "Text generation service unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

// NewStandardError builds a coded error with an explicit retry class.
// Suited for package-level sentinels that handlers wrap with %w; the
// timestamp is stamped at BPMN conversion, not here.
func NewStandardError(code ErrorCode, message string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Retryable: retryable,
	}
}

// NewValidationError builds a non-retryable input validation error.
func NewValidationError(code ErrorCode, message string) *StandardError {
	return NewStandardError(code, message, false)
}

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes (same as internal).
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeCustomerNotFound:              "CUSTOMER_NOT_FOUND",
	ErrCodeCrmRecordNotFound:             "CRM_RECORD_NOT_FOUND",
	ErrCodeOfferNotFound:                 "OFFER_NOT_FOUND",
	ErrCodeRequiredFactMissing:           "REQUIRED_FACT_MISSING",
	ErrCodeInvalidLoanApplication:        "INVALID_LOAN_APPLICATION",
	ErrCodeInvalidRulePayload:            "INVALID_RULE_PAYLOAD",
	ErrCodeRulePersistenceFailed:         "RULE_PERSISTENCE_FAILED",
	ErrCodeRuleEvaluationFailed:          "RULE_EVALUATION_FAILED",
	ErrCodeKycVerificationFailed:         "KYC_VERIFICATION_FAILED",
	ErrCodeSanctionGenerationError:       "SANCTION_GENERATION_ERROR",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:          "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:                  "QUERY_TIMEOUT",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeAuditWriteFailed:              "AUDIT_WRITE_FAILED",
	ErrCodeAuditQueryFailed:              "AUDIT_QUERY_FAILED",
	ErrCodeNotificationSendFailed:        "NOTIFICATION_SEND_FAILED",
	ErrCodeGenAITimeout:                  "GENAI_TIMEOUT",
	ErrCodeGenAIUnavailable:              "GENAI_UNAVAILABLE",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeAuditWriteFailed,
		ErrCodeAuditQueryFailed,
		ErrCodeRulePersistenceFailed,
		ErrCodeRuleEvaluationFailed,
		ErrCodeSanctionGenerationError,
		ErrCodeNotificationSendFailed:
		return 3 // Retryable technical errors

	case ErrCodeQueryTimeout:
		return 2 // Partial retry for timeouts

	case ErrCodeGenAITimeout, ErrCodeGenAIUnavailable:
		return 1 // Fallback responses cover the gap

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	// Sentinel errors carry no timestamp; stamp at conversion so the
	// workflow sees the failure time.
	timestamp := stdErr.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CUSTOMER") || strings.Contains(codeStr, "CRM") || strings.Contains(codeStr, "OFFER"):
		return "DIRECTORY"
	case strings.Contains(codeStr, "RULE"):
		return "RULES"
	case strings.Contains(codeStr, "KYC"):
		return "KYC"
	case strings.Contains(codeStr, "SANCTION"):
		return "SANCTION"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "AUDIT"):
		return "AUDIT"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "GENAI"):
		return "AI"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "MISSING"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
