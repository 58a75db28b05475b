package vss

import (
	"fmt"
	"math"
)

// SecurityLevel represents the security level of threshold parameters
type SecurityLevel string

const (
	SecurityLevelLow    SecurityLevel = "low"
	SecurityLevelMedium SecurityLevel = "medium"
	SecurityLevelHigh   SecurityLevel = "high"
)

// MaxShares bounds n so that party indices stay small field elements.
const MaxShares = 1 << 20

// ValidationResult contains the result of parameter validation
type ValidationResult struct {
	Valid           bool          `json:"valid"`
	SecurityLevel   SecurityLevel `json:"security_level"`
	FaultTolerance  int           `json:"fault_tolerance"` // shares that may be lost
	Warnings        []string      `json:"warnings,omitempty"`
	Errors          []string      `json:"errors,omitempty"`
	Recommendations []string      `json:"recommendations,omitempty"`
}

// ValidateSplitParameters checks 1 <= threshold <= n <= MaxShares.
func ValidateSplitParameters(n, threshold int) error {
	if threshold < 1 {
		return ErrInvalidThreshold.WithContext("threshold", threshold)
	}
	if n < 1 {
		return ErrInvalidShareCount.WithContext("shares", n)
	}
	if n > MaxShares {
		return ErrInvalidShareCount.WithDetails("share count %d exceeds maximum %d", n, MaxShares)
	}
	if threshold > n {
		return ErrThresholdTooHigh.
			WithDetails("threshold %d, shares %d", threshold, n).
			WithContext("threshold", threshold).
			WithContext("shares", n)
	}
	return nil
}

// ValidateShareSet checks a share subset before interpolation: it must be
// non-empty, every index positive and unique, every value inside the field.
func ValidateShareSet(shares []Share, field *Field) error {
	if len(shares) == 0 {
		return ErrInsufficientShares.WithDetails("no shares supplied")
	}

	seen := make(map[int]struct{}, len(shares))
	for _, share := range shares {
		if share.Index <= 0 {
			return ErrInvalidIndex.WithContext("index", share.Index)
		}
		if !field.Contains(share.Value) {
			return ErrInvalidShare.WithContext("index", share.Index)
		}
		if _, dup := seen[share.Index]; dup {
			return ErrDuplicateIndex.WithContext("index", share.Index)
		}
		seen[share.Index] = struct{}{}
	}
	return nil
}

// AssessParameters grades (n, threshold) beyond the hard limits of
// ValidateSplitParameters.
func AssessParameters(n, threshold int) *ValidationResult {
	result := &ValidationResult{
		Valid:           true,
		SecurityLevel:   SecurityLevelMedium,
		Warnings:        []string{},
		Errors:          []string{},
		Recommendations: []string{},
	}

	if err := ValidateSplitParameters(n, threshold); err != nil {
		result.Valid = false
		result.SecurityLevel = SecurityLevelLow
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	result.FaultTolerance = n - threshold
	ratio := float64(threshold) / float64(n)

	switch {
	case ratio < 0.5:
		result.SecurityLevel = SecurityLevelLow
		result.Recommendations = append(result.Recommendations,
			fmt.Sprintf("a minority of %d shares can reconstruct; consider a threshold of at least %d",
				threshold, int(math.Ceil(float64(n)/2))))
	case ratio >= 2.0/3.0:
		result.SecurityLevel = SecurityLevelHigh
	}

	if threshold == 1 {
		result.SecurityLevel = SecurityLevelLow
		result.Warnings = append(result.Warnings, "threshold of 1 gives every party the secret")
	}

	if threshold == n && n > 1 {
		result.Warnings = append(result.Warnings, "threshold equals share count - losing one share loses the secret")
	}

	return result
}
