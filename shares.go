package vss

import (
	"io"
	"math/big"
)

// Share is one party's point (x, f(x) mod q) on the secret polynomial.
type Share struct {
	Index int      // x-coordinate, 1..n
	Value *big.Int // y-coordinate
}

// NewShare creates a new share
func NewShare(index int, value *big.Int) Share {
	return Share{Index: index, Value: value}
}

// X returns the share index as a field element.
func (s Share) X() *big.Int {
	return big.NewInt(int64(s.Index))
}

// Commitments is the public vector published alongside the shares. In the prime
// field scheme it is the coefficient vector itself, so it binds the dealer to one
// polynomial but hides nothing; see GroupScheme for exponent commitments.
type Commitments []*big.Int

// Threshold returns the number of shares needed to reconstruct.
func (c Commitments) Threshold() int {
	return len(c)
}

// dealPolynomial validates the split parameters, builds the secret polynomial and
// evaluates it at 1..n. The caller owns the returned polynomial and must zeroize it.
func dealPolynomial(secret *big.Int, n, threshold int, field *Field, r io.Reader) (*Polynomial, []Share, error) {
	if err := ValidateSplitParameters(n, threshold); err != nil {
		return nil, nil, err
	}
	// indices 1..n must stay distinct and nonzero mod q
	if big.NewInt(int64(n)).Cmp(field.modulus) >= 0 {
		return nil, nil, ErrInvalidShareCount.
			WithDetails("share count %d must be below the modulus %s", n, field.modulus).
			WithContext("shares", n)
	}
	if !field.Contains(secret) {
		return nil, nil, ErrSecretTooLarge.
			WithContext("secret_bits", secret.BitLen()).
			WithContext("modulus_bits", field.BitLen())
	}

	polynomial, err := NewRandomPolynomial(field, threshold, secret, r)
	if err != nil {
		return nil, nil, err
	}

	// 1-based indices; x = 0 would hand out the secret
	shares := make([]Share, n)
	for i := 0; i < n; i++ {
		x := big.NewInt(int64(i + 1))
		shares[i] = NewShare(i+1, polynomial.Evaluate(x))
	}
	return polynomial, shares, nil
}

// GenerateShares splits secret into n shares with the given threshold and returns
// them together with the commitment vector.
func GenerateShares(secret []byte, n, threshold int, field *Field, r io.Reader) ([]Share, Commitments, error) {
	secretInt := new(big.Int).SetBytes(secret)
	defer zeroizeInt(secretInt)

	polynomial, shares, err := dealPolynomial(secretInt, n, threshold, field, r)
	if err != nil {
		return nil, nil, err
	}
	defer polynomial.Zeroize()

	return shares, Commitments(polynomial.Coefficients()), nil
}

// VerifyShare reports whether share lies on the polynomial described by commits.
// A false result means a corrupted share, a corrupted commitment, a wrong index
// or a dishonest dealer; it does not say which.
func VerifyShare(share Share, commits Commitments, field *Field) bool {
	if share.Index <= 0 || share.Value == nil || len(commits) == 0 {
		return false
	}
	for _, c := range commits {
		if c == nil {
			return false
		}
	}
	expected := EvaluateCommitments(share.X(), commits, field)
	return expected.Cmp(share.Value) == 0
}

// ReconstructSecret interpolates the polynomial at x = 0 from the given shares.
// It cannot know the threshold: fewer than threshold shares silently produce a
// wrong value. Use ReconstructThreshold when the threshold is known.
func ReconstructSecret(shares []Share, field *Field) ([]byte, error) {
	secret, err := interpolateAtZero(shares, field)
	if err != nil {
		return nil, err
	}
	defer zeroizeInt(secret)
	return secret.Bytes(), nil
}

// ReconstructThreshold is ReconstructSecret with the share count checked against threshold.
func ReconstructThreshold(shares []Share, threshold int, field *Field) ([]byte, error) {
	if threshold < 1 {
		return nil, ErrInvalidThreshold.WithContext("threshold", threshold)
	}
	if len(shares) < threshold {
		return nil, ErrInsufficientShares.
			WithDetails("need %d, got %d", threshold, len(shares)).
			WithContext("threshold", threshold)
	}
	return ReconstructSecret(shares, field)
}

// interpolateAtZero computes sum(yi * Li(0)) with Li(0) = prod(-xj / (xi - xj)).
func interpolateAtZero(shares []Share, field *Field) (*big.Int, error) {
	if err := ValidateShareSet(shares, field); err != nil {
		return nil, err
	}

	secret := new(big.Int)
	for i, share := range shares {
		xi := share.X()
		numerator := big.NewInt(1)
		denominator := big.NewInt(1)

		for j, other := range shares {
			if i == j {
				continue
			}
			xj := other.X()
			numerator = field.Mul(numerator, field.Neg(xj))
			denominator = field.Mul(denominator, field.Sub(xi, xj))
		}

		denomInv, err := field.Inverse(denominator)
		if err != nil {
			return nil, ErrDegenerateDenominator.
				WithContext("index", share.Index).
				WithCause(err)
		}

		coefficient := field.Mul(numerator, denomInv)
		secret = field.Add(secret, field.Mul(share.Value, coefficient))
	}
	return secret, nil
}
