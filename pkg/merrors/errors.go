// Package merrors defines the typed error taxonomy shared by every
// component, grounded on the teacher's common/errors.go shape: one struct
// per failure class carrying its context fields, a severity and an
// optional wrapped cause, each satisfying error and Unwrap.
package merrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Severity ranks how serious a failure is for alerting/retry policy (§7).
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// retryable is satisfied by every error type below; callers branch on it
// instead of switching on concrete types.
type retryable interface {
	IsRetryable() bool
}

// StorageError records repository or transaction-manager failures (§7).
type StorageError struct {
	Operation string
	Severity  Severity
	Retryable bool
	Err       error
}

func NewStorageError(operation string, err error) *StorageError {
	return &StorageError{Operation: operation, Severity: SeverityHigh, Retryable: true, Err: errors.WithStack(err)}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Operation, e.Err)
}

func (e *StorageError) Unwrap() error     { return e.Err }
func (e *StorageError) IsRetryable() bool { return e.Retryable }

// LLMServiceError records failures from the LLM gateway (§7). Auth/parse
// failures are never retryable; everything else defaults to retryable.
type LLMServiceError struct {
	Kind      string // timeout|rate_limit|auth|network|parse|unknown
	Severity  Severity
	Retryable bool
	Err       error
}

func NewLLMServiceError(kind string, err error) *LLMServiceError {
	retryable := kind != "auth" && kind != "parse"

	return &LLMServiceError{Kind: kind, Severity: SeverityMedium, Retryable: retryable, Err: errors.WithStack(err)}
}

func (e *LLMServiceError) Error() string {
	return fmt.Sprintf("llm service error (%s): %v", e.Kind, e.Err)
}

func (e *LLMServiceError) Unwrap() error     { return e.Err }
func (e *LLMServiceError) IsRetryable() bool { return e.Retryable }

// ValidationError records malformed inputs to the validator, never a
// content rejection — content rejections are ValidationResult values,
// not errors (§4.2, §7).
type ValidationError struct {
	Field    string
	Message  string
	Severity Severity
	Err      error
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message, Severity: SeverityLow}
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
	}

	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error     { return e.Err }
func (e *ValidationError) IsRetryable() bool { return false }

// ExtractionError wraps an upstream extractor failure as context (§7).
type ExtractionError struct {
	DocID    string
	Severity Severity
	Err      error
}

func NewExtractionError(docID string, err error) *ExtractionError {
	return &ExtractionError{DocID: docID, Severity: SeverityMedium, Err: errors.WithStack(err)}
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction error for doc %s: %v", e.DocID, e.Err)
}

func (e *ExtractionError) Unwrap() error     { return e.Err }
func (e *ExtractionError) IsRetryable() bool { return true }

// ReasoningError records an unrecoverable retrieval/fusion failure (§7).
// A reasoning call with no paths is not an error (§7) — it is a
// Conclusion{Direction: UNKNOWN}.
type ReasoningError struct {
	Stage    string
	Severity Severity
	Err      error
}

func NewReasoningError(stage string, err error) *ReasoningError {
	return &ReasoningError{Stage: stage, Severity: SeverityMedium, Err: errors.WithStack(err)}
}

func (e *ReasoningError) Error() string {
	return fmt.Sprintf("reasoning error in %s: %v", e.Stage, e.Err)
}

func (e *ReasoningError) Unwrap() error     { return e.Err }
func (e *ReasoningError) IsRetryable() bool { return false }

// ConfigError records a missing or malformed configuration file (§7).
type ConfigError struct {
	Path     string
	Severity Severity
	Err      error
}

func NewConfigError(path string, err error) *ConfigError {
	return &ConfigError{Path: path, Severity: SeverityCritical, Err: errors.WithStack(err)}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error loading %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error     { return e.Err }
func (e *ConfigError) IsRetryable() bool { return false }

// IsRetryable reports whether err (or something it wraps) is retryable.
// Non-tagged errors are treated as not retryable.
func IsRetryable(err error) bool {
	var r retryable
	if errors.As(err, &r) {
		return r.IsRetryable()
	}

	return false
}
