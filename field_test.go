package vss

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// secp256k1 base field prime
const testPrime = "115792089237316195423570985008687907853269984665640564039457584007908834671663"

func testModulus(t *testing.T) *big.Int {
	t.Helper()
	q, ok := new(big.Int).SetString(testPrime, 10)
	require.True(t, ok)
	return q
}

func testField(t *testing.T) *Field {
	t.Helper()
	f, err := NewField(testModulus(t))
	require.NoError(t, err)
	return f
}

func smallField(t *testing.T, q int64) *Field {
	t.Helper()
	f, err := NewField(big.NewInt(q))
	require.NoError(t, err)
	return f
}

func TestEncodeDecodeElement(t *testing.T) {
	values := []string{"0", "1", "42", testPrime}
	for _, v := range values {
		t.Run(v, func(t *testing.T) {
			decoded, err := DecodeElement(v)
			require.NoError(t, err)
			assert.Equal(t, v, EncodeElement(decoded))
		})
	}

	assert.Equal(t, "0", EncodeElement(nil))

	decoded, err := DecodeElement("  17 ")
	require.NoError(t, err)
	assert.Equal(t, int64(17), decoded.Int64())
}

func TestDecodeElementRejectsMalformed(t *testing.T) {
	inputs := []string{"", "   ", "12a", "0x10", "-5", "+5", "1.5", "1e3", "seventeen"}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := DecodeElement(in)
			require.Error(t, err)
			assert.True(t, IsDecodeError(err))
			assert.True(t, errors.Is(err, ErrDecode))
		})
	}
}

func TestNewFieldRejectsBadModulus(t *testing.T) {
	tests := []struct {
		name string
		q    *big.Int
	}{
		{"nil", nil},
		{"zero", big.NewInt(0)},
		{"two", big.NewInt(2)},
		{"negative", big.NewInt(-7)},
		{"composite", big.NewInt(15)},
		{"large composite", new(big.Int).Mul(big.NewInt(1000003), big.NewInt(1000033))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewField(tt.q)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidModulus))
			assert.True(t, IsParameterError(err))
		})
	}
}

func TestFieldArithmetic(t *testing.T) {
	f := smallField(t, 7)

	assert.Equal(t, int64(1), f.Add(big.NewInt(3), big.NewInt(5)).Int64())
	assert.Equal(t, int64(5), f.Sub(big.NewInt(3), big.NewInt(5)).Int64())
	assert.Equal(t, int64(1), f.Mul(big.NewInt(3), big.NewInt(5)).Int64())
	assert.Equal(t, int64(4), f.Neg(big.NewInt(3)).Int64())
	assert.Equal(t, int64(0), f.Neg(big.NewInt(0)).Int64())
	assert.Equal(t, int64(6), f.Reduce(big.NewInt(-1)).Int64())
	assert.Equal(t, int64(1), f.Exp(big.NewInt(3), big.NewInt(6)).Int64())

	assert.True(t, f.Contains(big.NewInt(6)))
	assert.False(t, f.Contains(big.NewInt(7)))
	assert.False(t, f.Contains(big.NewInt(-1)))
	assert.False(t, f.Contains(nil))
}

func TestFieldInverse(t *testing.T) {
	f := testField(t)
	for _, v := range []int64{1, 2, 3, 12345, 987654321} {
		a := big.NewInt(v)
		inv, err := f.Inverse(a)
		require.NoError(t, err)
		assert.Equal(t, int64(1), f.Mul(a, inv).Int64())
	}

	_, err := f.Inverse(big.NewInt(0))
	require.Error(t, err)
	assert.True(t, IsArithmeticDegeneracy(err))

	_, err = f.Inverse(f.Modulus())
	assert.True(t, errors.Is(err, ErrDegenerateDenominator))
}

func TestFieldModulusIsCopy(t *testing.T) {
	f := smallField(t, 11)
	f.Modulus().SetInt64(4)
	assert.Equal(t, int64(11), f.Modulus().Int64())
	assert.Equal(t, 4, f.BitLen())
}

func TestFieldRandom(t *testing.T) {
	f := smallField(t, 101)
	for i := 0; i < 200; i++ {
		v, err := f.Random(nil)
		require.NoError(t, err)
		assert.True(t, f.Contains(v))
	}

	_, err := f.Random(bytes.NewReader(nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRandomnessGeneration))
	assert.False(t, IsRecoverableError(err))
}
