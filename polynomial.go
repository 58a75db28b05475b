package vss

import (
	"io"
	"math/big"
)

// Polynomial represents a polynomial over a prime field
type Polynomial struct {
	field        *Field
	coefficients []*big.Int
}

// GenerateCoefficients returns [secret, a1, ..., a(threshold-1)] with every ai
// drawn uniformly from [0, q). The secret is taken as is; callers keep it below q.
func GenerateCoefficients(secret *big.Int, threshold int, field *Field, r io.Reader) ([]*big.Int, error) {
	if threshold < 1 {
		return nil, ErrInvalidThreshold.WithContext("threshold", threshold)
	}
	if secret == nil {
		return nil, ErrInvalidShare.WithDetails("secret is nil")
	}

	coefficients := make([]*big.Int, threshold)
	coefficients[0] = new(big.Int).Set(secret)
	for i := 1; i < threshold; i++ {
		coeff, err := field.Random(r)
		if err != nil {
			return nil, err
		}
		coefficients[i] = coeff
	}
	return coefficients, nil
}

// NewRandomPolynomial creates a random polynomial of degree threshold-1 with the
// secret as constant term
func NewRandomPolynomial(field *Field, threshold int, secret *big.Int, r io.Reader) (*Polynomial, error) {
	coefficients, err := GenerateCoefficients(secret, threshold, field, r)
	if err != nil {
		return nil, err
	}
	return &Polynomial{field: field, coefficients: coefficients}, nil
}

// EvaluatePolynomial computes sum(ai * x^i) mod q.
func EvaluatePolynomial(coefficients []*big.Int, x *big.Int, field *Field) *big.Int {
	// Horner: f(x) = a0 + x(a1 + x(a2 + ...))
	result := new(big.Int)
	for i := len(coefficients) - 1; i >= 0; i-- {
		result.Mul(result, x)
		result.Add(result, coefficients[i])
		result.Mod(result, field.modulus)
	}
	return result
}

// EvaluateCommitments recomputes f(x) from the published commitment vector alone.
func EvaluateCommitments(x *big.Int, commits Commitments, field *Field) *big.Int {
	return EvaluatePolynomial(commits, x, field)
}

// Evaluate evaluates the polynomial at a given point
func (p *Polynomial) Evaluate(x *big.Int) *big.Int {
	return EvaluatePolynomial(p.coefficients, x, p.field)
}

// Degree returns the degree of the polynomial
func (p *Polynomial) Degree() int {
	return len(p.coefficients) - 1
}

// Coefficients returns a copy of the coefficient vector
func (p *Polynomial) Coefficients() []*big.Int {
	out := make([]*big.Int, len(p.coefficients))
	for i, c := range p.coefficients {
		out[i] = new(big.Int).Set(c)
	}
	return out
}

// Zeroize clears the coefficients, the secret included.
func (p *Polynomial) Zeroize() {
	for i, c := range p.coefficients {
		if c != nil {
			zeroizeInt(c)
		}
		p.coefficients[i] = nil
	}
	p.coefficients = nil
}

// zeroizeInt overwrites the limbs backing v before resetting it.
func zeroizeInt(v *big.Int) {
	words := v.Bits()
	for i := range words {
		words[i] = 0
	}
	v.SetInt64(0)
}
