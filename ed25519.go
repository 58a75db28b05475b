package vss

import (
	"math/big"

	"filippo.io/edwards25519"
)

const ed25519ElementSize = 32

// ed25519Order is the prime order l = 2^252 + 27742317777372353535851937790883648493
// of the Ed25519 base point subgroup.
var ed25519Order, _ = new(big.Int).SetString(
	"7237005577332262213973186563042994240857116359379907606001950938285454250989", 10)

// Ed25519Group is the prime-order subgroup generated by the Ed25519 base point.
type Ed25519Group struct{}

// NewEd25519Group creates a new Ed25519 group instance
func NewEd25519Group() *Ed25519Group {
	return &Ed25519Group{}
}

func (g *Ed25519Group) Name() string    { return string(GroupEd25519) }
func (g *Ed25519Group) Order() *big.Int { return new(big.Int).Set(ed25519Order) }

func (g *Ed25519Group) Generator() Element {
	return &ed25519Element{point: edwards25519.NewGeneratorPoint()}
}

func (g *Ed25519Group) Identity() Element {
	return &ed25519Element{point: edwards25519.NewIdentityPoint()}
}

func (g *Ed25519Group) ElementFromBytes(data []byte) (Element, error) {
	if len(data) != ed25519ElementSize {
		return nil, ErrInvalidElement.WithDetails("ed25519 element must be %d bytes, got %d", ed25519ElementSize, len(data))
	}
	point, err := new(edwards25519.Point).SetBytes(data)
	if err != nil {
		return nil, ErrInvalidElement.WithCause(err)
	}
	e := &ed25519Element{point: point}
	// l*P == identity, computed as (l-1)*P + P since scalars reduce mod l
	if !e.ScalarMult(new(big.Int).Sub(ed25519Order, one)).Add(e).IsIdentity() {
		return nil, ErrInvalidElement.WithDetails("point is not in the prime-order subgroup")
	}
	return e, nil
}

type ed25519Element struct {
	point *edwards25519.Point
}

func (e *ed25519Element) Bytes() []byte {
	return e.point.Bytes()
}

func (e *ed25519Element) Add(other Element) Element {
	result := edwards25519.NewIdentityPoint()
	result.Add(e.point, other.(*ed25519Element).point)
	return &ed25519Element{point: result}
}

func (e *ed25519Element) ScalarMult(k *big.Int) Element {
	// edwards25519 scalars are little-endian
	be := scalarBytes(k, ed25519Order, 32)
	le := make([]byte, 32)
	for i := range be {
		le[31-i] = be[i]
	}
	scalar, err := edwards25519.NewScalar().SetCanonicalBytes(le)
	if err != nil {
		// unreachable: le is reduced below the group order
		panic(err)
	}
	result := edwards25519.NewIdentityPoint()
	result.ScalarMult(scalar, e.point)
	return &ed25519Element{point: result}
}

func (e *ed25519Element) Equal(other Element) bool {
	o, ok := other.(*ed25519Element)
	if !ok {
		return false
	}
	return e.point.Equal(o.point) == 1
}

func (e *ed25519Element) IsIdentity() bool {
	return e.point.Equal(edwards25519.NewIdentityPoint()) == 1
}
