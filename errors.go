package vss

import (
	"errors"
	"fmt"
)

// ErrorCategory represents the category of a VSS error
type ErrorCategory string

const (
	ErrorCategoryDecode        ErrorCategory = "decode"
	ErrorCategoryParameter     ErrorCategory = "parameter"
	ErrorCategoryArithmetic    ErrorCategory = "arithmetic"
	ErrorCategoryCommitment    ErrorCategory = "commitment"
	ErrorCategoryCryptographic ErrorCategory = "cryptographic"
	ErrorCategoryEncoding      ErrorCategory = "encoding"
	ErrorCategoryTransport     ErrorCategory = "transport"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	ErrorSeverityLow      ErrorSeverity = "low"      // Non-critical, operation can continue
	ErrorSeverityMedium   ErrorSeverity = "medium"   // Important, may affect functionality
	ErrorSeverityHigh     ErrorSeverity = "high"     // Critical, operation should stop
	ErrorSeverityCritical ErrorSeverity = "critical" // System-level failure
)

// VSSError represents a structured error in the VSS library
type VSSError struct {
	Category    ErrorCategory          `json:"category"`
	Severity    ErrorSeverity          `json:"severity"`
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	Details     string                 `json:"details,omitempty"`
	Cause       error                  `json:"-"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Recoverable bool                   `json:"recoverable"`
}

// Error implements the error interface
func (e *VSSError) Error() string {
	msg := fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *VSSError) Unwrap() error {
	return e.Cause
}

// Is matches any VSSError carrying the same code, so errors derived with
// WithContext or WithDetails still satisfy errors.Is against the sentinel.
func (e *VSSError) Is(target error) bool {
	var other *VSSError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

func (e *VSSError) clone() *VSSError {
	c := &VSSError{
		Category:    e.Category,
		Severity:    e.Severity,
		Code:        e.Code,
		Message:     e.Message,
		Details:     e.Details,
		Cause:       e.Cause,
		Recoverable: e.Recoverable,
		Context:     make(map[string]interface{}, len(e.Context)+1),
	}
	for k, v := range e.Context {
		c.Context[k] = v
	}
	return c
}

// WithContext returns a copy of the error with an extra context entry
func (e *VSSError) WithContext(key string, value interface{}) *VSSError {
	c := e.clone()
	c.Context[key] = value
	return c
}

// WithDetails returns a copy of the error with formatted details
func (e *VSSError) WithDetails(format string, args ...interface{}) *VSSError {
	c := e.clone()
	c.Details = fmt.Sprintf(format, args...)
	return c
}

// WithCause returns a copy of the error wrapping cause
func (e *VSSError) WithCause(cause error) *VSSError {
	c := e.clone()
	c.Cause = cause
	return c
}

// IsRecoverable returns whether the error is recoverable
func (e *VSSError) IsRecoverable() bool {
	return e.Recoverable
}

// NewVSSError creates a new VSS error
func NewVSSError(category ErrorCategory, severity ErrorSeverity, code, message string) *VSSError {
	return &VSSError{
		Category:    category,
		Severity:    severity,
		Code:        code,
		Message:     message,
		Context:     make(map[string]interface{}),
		Recoverable: severity != ErrorSeverityCritical,
	}
}

// Decode errors
var (
	ErrDecode = NewVSSError(
		ErrorCategoryDecode, ErrorSeverityMedium, "DECODE_FAILED",
		"field element is not a valid integer literal")
)

// Parameter errors
var (
	ErrInvalidThreshold = NewVSSError(
		ErrorCategoryParameter, ErrorSeverityHigh, "INVALID_THRESHOLD",
		"threshold must be at least 1")

	ErrThresholdTooHigh = NewVSSError(
		ErrorCategoryParameter, ErrorSeverityHigh, "THRESHOLD_TOO_HIGH",
		"threshold exceeds share count")

	ErrInvalidShareCount = NewVSSError(
		ErrorCategoryParameter, ErrorSeverityHigh, "INVALID_SHARE_COUNT",
		"share count must be at least 1")

	ErrInsufficientShares = NewVSSError(
		ErrorCategoryParameter, ErrorSeverityHigh, "INSUFFICIENT_SHARES",
		"not enough shares to reconstruct")

	ErrInvalidModulus = NewVSSError(
		ErrorCategoryParameter, ErrorSeverityHigh, "INVALID_MODULUS",
		"field modulus must be an odd prime")

	ErrSecretTooLarge = NewVSSError(
		ErrorCategoryParameter, ErrorSeverityHigh, "SECRET_TOO_LARGE",
		"secret must be smaller than the field modulus")

	ErrInvalidIndex = NewVSSError(
		ErrorCategoryParameter, ErrorSeverityMedium, "INVALID_SHARE_INDEX",
		"share index must be a positive integer")

	ErrInvalidShare = NewVSSError(
		ErrorCategoryParameter, ErrorSeverityMedium, "INVALID_SHARE",
		"share value is missing or outside the field")
)

// Arithmetic errors
var (
	ErrDuplicateIndex = NewVSSError(
		ErrorCategoryArithmetic, ErrorSeverityHigh, "DUPLICATE_SHARE_INDEX",
		"duplicate share index makes the Lagrange denominator vanish")

	ErrDegenerateDenominator = NewVSSError(
		ErrorCategoryArithmetic, ErrorSeverityHigh, "DEGENERATE_DENOMINATOR",
		"Lagrange denominator is zero modulo the field")
)

// Commitment and cryptographic errors
var (
	ErrInvalidCommitments = NewVSSError(
		ErrorCategoryCommitment, ErrorSeverityHigh, "INVALID_COMMITMENTS",
		"commitment vector is empty or malformed")

	ErrUnsupportedGroup = NewVSSError(
		ErrorCategoryCommitment, ErrorSeverityHigh, "UNSUPPORTED_GROUP",
		"commitment group is not supported")

	ErrInvalidElement = NewVSSError(
		ErrorCategoryCommitment, ErrorSeverityMedium, "INVALID_GROUP_ELEMENT",
		"group element encoding is invalid")

	ErrSignatureInvalid = NewVSSError(
		ErrorCategoryCryptographic, ErrorSeverityHigh, "COMMITMENT_SIGNATURE_INVALID",
		"dealer signature over commitments does not verify")

	ErrSigningFailed = NewVSSError(
		ErrorCategoryCryptographic, ErrorSeverityHigh, "SIGNING_FAILED",
		"dealer failed to sign commitments")

	ErrRandomnessGeneration = NewVSSError(
		ErrorCategoryCryptographic, ErrorSeverityCritical, "RANDOMNESS_GENERATION_FAILED",
		"failed to generate secure randomness")
)

// Encoding and transport errors
var (
	ErrEncoding = NewVSSError(
		ErrorCategoryEncoding, ErrorSeverityMedium, "ENCODING_FAILED",
		"failed to encode or decode wire message")

	ErrTransport = NewVSSError(
		ErrorCategoryTransport, ErrorSeverityMedium, "TRANSPORT_FAILED",
		"failed to deliver share material")
)

// WrapError wraps an existing error with VSS error context
func WrapError(err error, category ErrorCategory, severity ErrorSeverity, code, message string) *VSSError {
	return NewVSSError(category, severity, code, message).WithCause(err)
}

// IsErrorCategory checks if an error belongs to a specific category
func IsErrorCategory(err error, category ErrorCategory) bool {
	var vssErr *VSSError
	if errors.As(err, &vssErr) {
		return vssErr.Category == category
	}
	return false
}

// IsDecodeError reports whether err is a DecodeError
func IsDecodeError(err error) bool {
	return IsErrorCategory(err, ErrorCategoryDecode)
}

// IsParameterError reports whether err is a ParameterError
func IsParameterError(err error) bool {
	return IsErrorCategory(err, ErrorCategoryParameter)
}

// IsArithmeticDegeneracy reports whether err signals a vanishing Lagrange denominator
func IsArithmeticDegeneracy(err error) bool {
	return IsErrorCategory(err, ErrorCategoryArithmetic)
}

// IsRecoverableError checks if an error is recoverable
func IsRecoverableError(err error) bool {
	var vssErr *VSSError
	if errors.As(err, &vssErr) {
		return vssErr.IsRecoverable()
	}
	return true
}

// GetErrorContext extracts context from a VSS error
func GetErrorContext(err error) map[string]interface{} {
	var vssErr *VSSError
	if errors.As(err, &vssErr) {
		return vssErr.Context
	}
	return nil
}
