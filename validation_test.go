package vss

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSplitParameters(t *testing.T) {
	tests := []struct {
		name      string
		n, thresh int
		want      error
	}{
		{"single", 1, 1, nil},
		{"typical", 5, 3, nil},
		{"all required", 7, 7, nil},
		{"max", MaxShares, 2, nil},
		{"zero threshold", 3, 0, ErrInvalidThreshold},
		{"zero shares", 0, 0, ErrInvalidThreshold},
		{"negative shares", -1, 1, ErrInvalidShareCount},
		{"over max", MaxShares + 1, 1, ErrInvalidShareCount},
		{"threshold above n", 3, 4, ErrThresholdTooHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSplitParameters(tt.n, tt.thresh)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateShareSet(t *testing.T) {
	f := smallField(t, 13)

	assert.NoError(t, ValidateShareSet([]Share{NewShare(1, big.NewInt(4)), NewShare(2, big.NewInt(12))}, f))
	assert.ErrorIs(t, ValidateShareSet(nil, f), ErrInsufficientShares)
	assert.ErrorIs(t, ValidateShareSet([]Share{NewShare(0, big.NewInt(1))}, f), ErrInvalidIndex)
	assert.ErrorIs(t, ValidateShareSet([]Share{NewShare(1, big.NewInt(13))}, f), ErrInvalidShare)
	assert.ErrorIs(t, ValidateShareSet([]Share{NewShare(1, nil)}, f), ErrInvalidShare)
	assert.ErrorIs(t, ValidateShareSet([]Share{NewShare(3, big.NewInt(1)), NewShare(3, big.NewInt(2))}, f), ErrDuplicateIndex)
}

func TestAssessParameters(t *testing.T) {
	bad := AssessParameters(2, 3)
	assert.False(t, bad.Valid)
	assert.Equal(t, SecurityLevelLow, bad.SecurityLevel)
	assert.NotEmpty(t, bad.Errors)

	one := AssessParameters(5, 1)
	assert.True(t, one.Valid)
	assert.Equal(t, SecurityLevelLow, one.SecurityLevel)
	assert.Equal(t, 4, one.FaultTolerance)
	assert.NotEmpty(t, one.Warnings)

	minority := AssessParameters(10, 3)
	assert.Equal(t, SecurityLevelLow, minority.SecurityLevel)
	assert.NotEmpty(t, minority.Recommendations)

	balanced := AssessParameters(5, 3)
	assert.Equal(t, SecurityLevelMedium, balanced.SecurityLevel)
	assert.Empty(t, balanced.Warnings)

	strict := AssessParameters(4, 4)
	assert.Equal(t, SecurityLevelHigh, strict.SecurityLevel)
	assert.Equal(t, 0, strict.FaultTolerance)
	assert.Len(t, strict.Warnings, 1)
}
