// Package errors provides the standardized error model shared by the lifecycle engine,
// the store adapters and the job workers.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Lifecycle errors
const (
	ErrCodeIneligible           ErrorCode = "INELIGIBLE"
	ErrCodePublishedLock        ErrorCode = "PUBLISHED_LOCK"
	ErrCodeNotFound             ErrorCode = "NOT_FOUND"
	ErrCodeDuplicateApplication ErrorCode = "DUPLICATE_APPLICATION"
	ErrCodeGradesFrozen         ErrorCode = "GRADES_FROZEN"
	ErrCodeInvalidTransition    ErrorCode = "INVALID_TRANSITION"
	ErrCodeInvalidInput         ErrorCode = "INVALID_INPUT"
)

// Infrastructure errors
const (
	ErrCodeStoreWriteFailed       ErrorCode = "STORE_WRITE_FAILED"
	ErrCodeStoreReadFailed        ErrorCode = "STORE_READ_FAILED"
	ErrCodeConcurrentModification ErrorCode = "CONCURRENT_MODIFICATION"
	ErrCodeExternalService        ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout                ErrorCode = "TIMEOUT_ERROR"
)

// Platform errors
const (
	ErrCodeApprovalRejected ErrorCode = "APPROVAL_REJECTED"
	ErrCodeAuthentication   ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeForbidden        ErrorCode = "FORBIDDEN"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key to the error metadata and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
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
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewIneligibleError reports an application-time rule violation. The reason is user facing.
func NewIneligibleError(reason string) *StandardError {
	return newError(ErrCodeIneligible, reason, "", false, nil)
}

// NewPublishedLockError reports that the institution has finalized its admissions.
func NewPublishedLockError(institutionID, details string) *StandardError {
	return newError(ErrCodePublishedLock, "Admissions are published for this institution", details, false, nil).
		WithMetadata("institutionId", institutionID)
}

// NewNotFoundError reports a missing referenced record.
func NewNotFoundError(collection, id string) *StandardError {
	return newError(ErrCodeNotFound, fmt.Sprintf("%s not found", collection), fmt.Sprintf("id: %s", id), false, nil).
		WithMetadata("collection", collection)
}

// NewDuplicateApplicationError reports an application that already exists.
func NewDuplicateApplicationError(details string) *StandardError {
	return newError(ErrCodeDuplicateApplication, "Already applied", details, false, nil)
}

// NewGradesFrozenError reports a second grade submission for the same institution.
func NewGradesFrozenError(institutionID string) *StandardError {
	return newError(ErrCodeGradesFrozen, "Grades were already submitted for this institution",
		fmt.Sprintf("institutionId: %s", institutionID), false, nil)
}

// NewInvalidTransitionError reports a status change the state machine does not allow.
func NewInvalidTransitionError(details string) *StandardError {
	return newError(ErrCodeInvalidTransition, "Invalid status transition", details, false, nil)
}

// NewInvalidInputError reports malformed caller input.
func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid input", details, false, nil)
}

// NewStoreWriteError wraps a transient store write failure.
func NewStoreWriteError(operation string, err error) *StandardError {
	return newError(ErrCodeStoreWriteFailed, "Store write failed",
		fmt.Sprintf("operation: %s, error: %v", operation, err), true, err)
}

// NewStoreReadError wraps a transient store read failure.
func NewStoreReadError(operation string, err error) *StandardError {
	return newError(ErrCodeStoreReadFailed, "Store read failed",
		fmt.Sprintf("operation: %s, error: %v", operation, err), true, err)
}

// NewConcurrentModificationError reports a compare-and-set that kept losing to other writers.
func NewConcurrentModificationError(id string, attempts int) *StandardError {
	return newError(ErrCodeConcurrentModification, "Record changed concurrently",
		fmt.Sprintf("id: %s, attempts: %d", id, attempts), true, nil)
}

// NewApprovalRejectedError carries the webhook's failure message.
func NewApprovalRejectedError(message string) *StandardError {
	return newError(ErrCodeApprovalRejected, "Approval failed", message, false, nil)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err.Error(), true, err)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true, err)
}

func NewAuthenticationError(details string) *StandardError {
	return newError(ErrCodeAuthentication, "Authentication failed", details, false, nil)
}

func NewForbiddenError(details string) *StandardError {
	return newError(ErrCodeForbidden, "Operation not permitted for this role", details, false, nil)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended job retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeStoreWriteFailed,
		ErrCodeStoreReadFailed,
		ErrCodeConcurrentModification,
		ErrCodeExternalService:
		return 3
	case ErrCodeTimeout:
		return 2
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandard finds a StandardError in err's chain.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err's chain contains a StandardError with the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandard(err)
	return ok && stdErr.Code == code
}

// IsRetryable reports whether err is a retryable StandardError.
func IsRetryable(err error) bool {
	stdErr, ok := AsStandard(err)
	return ok && stdErr.Retryable
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case code == ErrCodeIneligible || code == ErrCodeDuplicateApplication || code == ErrCodeGradesFrozen:
		return "ELIGIBILITY"
	case code == ErrCodePublishedLock || code == ErrCodeInvalidTransition:
		return "LIFECYCLE"
	case strings.HasPrefix(codeStr, "STORE") || code == ErrCodeConcurrentModification || code == ErrCodeNotFound:
		return "STORE"
	case code == ErrCodeAuthentication || code == ErrCodeForbidden:
		return "AUTH"
	case code == ErrCodeExternalService || code == ErrCodeTimeout || code == ErrCodeApprovalRejected:
		return "INTEGRATION"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
