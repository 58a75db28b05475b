package vss

import (
	"crypto/rand"
	"io"
	"math/big"
	"strings"
)

// primalityRounds is the number of Miller-Rabin rounds used to vet a modulus.
const primalityRounds = 20

var (
	zero = big.NewInt(0)
	one  = big.NewInt(1)
	two  = big.NewInt(2)
)

// EncodeElement returns the canonical base-10 representation of a field element.
func EncodeElement(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.Text(10)
}

// DecodeElement parses the base-10 representation produced by EncodeElement.
func DecodeElement(s string) (*big.Int, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, ErrDecode.WithDetails("empty string")
	}
	if trimmed[0] == '-' || trimmed[0] == '+' {
		return nil, ErrDecode.WithDetails("signed literal %q", s)
	}
	v, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, ErrDecode.WithDetails("%q", s)
	}
	return v, nil
}

// Field is the prime field Z_q. All results are reduced into [0, q).
type Field struct {
	modulus *big.Int
	// exponent for Fermat inversion, q-2
	invExp *big.Int
}

// NewField creates a field over the odd prime q.
func NewField(q *big.Int) (*Field, error) {
	if q == nil {
		return nil, ErrInvalidModulus.WithDetails("modulus is nil")
	}
	if q.Cmp(big.NewInt(3)) < 0 {
		return nil, ErrInvalidModulus.WithDetails("modulus %s is too small", q)
	}
	if !q.ProbablyPrime(primalityRounds) {
		return nil, ErrInvalidModulus.WithDetails("modulus %s is not prime", q)
	}
	m := new(big.Int).Set(q)
	return &Field{
		modulus: m,
		invExp:  new(big.Int).Sub(m, two),
	}, nil
}

// Modulus returns a copy of q.
func (f *Field) Modulus() *big.Int {
	return new(big.Int).Set(f.modulus)
}

// BitLen returns the bit length of q.
func (f *Field) BitLen() int {
	return f.modulus.BitLen()
}

// Contains reports whether v is a canonical element, i.e. 0 <= v < q.
func (f *Field) Contains(v *big.Int) bool {
	return v != nil && v.Sign() >= 0 && v.Cmp(f.modulus) < 0
}

// Reduce returns v mod q in [0, q).
func (f *Field) Reduce(v *big.Int) *big.Int {
	return new(big.Int).Mod(v, f.modulus)
}

func (f *Field) Add(a, b *big.Int) *big.Int {
	r := new(big.Int).Add(a, b)
	return r.Mod(r, f.modulus)
}

func (f *Field) Sub(a, b *big.Int) *big.Int {
	r := new(big.Int).Sub(a, b)
	return r.Mod(r, f.modulus)
}

func (f *Field) Mul(a, b *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Mod(r, f.modulus)
}

func (f *Field) Neg(a *big.Int) *big.Int {
	r := new(big.Int).Neg(a)
	return r.Mod(r, f.modulus)
}

// Exp returns base^e mod q. Not constant time.
func (f *Field) Exp(base, e *big.Int) *big.Int {
	return new(big.Int).Exp(f.Reduce(base), e, f.modulus)
}

// Inverse returns a^-1 mod q via Fermat's little theorem, a^(q-2) mod q.
func (f *Field) Inverse(a *big.Int) (*big.Int, error) {
	r := f.Reduce(a)
	if r.Sign() == 0 {
		return nil, ErrDegenerateDenominator.WithDetails("cannot invert zero")
	}
	return r.Exp(r, f.invExp, f.modulus), nil
}

// Random draws an element uniformly from [0, q) using r, or crypto/rand when r is nil.
func (f *Field) Random(r io.Reader) (*big.Int, error) {
	if r == nil {
		r = rand.Reader
	}
	v, err := rand.Int(r, f.modulus)
	if err != nil {
		return nil, ErrRandomnessGeneration.WithCause(err)
	}
	return v, nil
}
