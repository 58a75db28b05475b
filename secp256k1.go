package vss

import (
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
)

const secp256k1ElementSize = 33

// Secp256k1Group is the prime-order group of secp256k1 points.
type Secp256k1Group struct {
	order *big.Int
}

// NewSecp256k1Group creates a new secp256k1 group instance
func NewSecp256k1Group() *Secp256k1Group {
	return &Secp256k1Group{order: new(big.Int).Set(btcec.S256().Params().N)}
}

func (g *Secp256k1Group) Name() string    { return string(GroupSecp256k1) }
func (g *Secp256k1Group) Order() *big.Int { return new(big.Int).Set(g.order) }

func (g *Secp256k1Group) Generator() Element {
	return &secp256k1Element{point: btcec.Generator()}
}

func (g *Secp256k1Group) Identity() Element {
	return &secp256k1Element{}
}

// ElementFromBytes parses a compressed point; 33 zero bytes encode the identity.
func (g *Secp256k1Group) ElementFromBytes(data []byte) (Element, error) {
	if len(data) != secp256k1ElementSize {
		return nil, ErrInvalidElement.WithDetails("secp256k1 element must be %d bytes, got %d", secp256k1ElementSize, len(data))
	}
	if isZeroBytes(data) {
		return &secp256k1Element{}, nil
	}
	pub, err := btcec.ParsePubKey(data)
	if err != nil {
		return nil, ErrInvalidElement.WithCause(err)
	}
	return &secp256k1Element{point: pub}, nil
}

// secp256k1Element wraps an affine point; a nil point is the point at infinity.
type secp256k1Element struct {
	point *btcec.PublicKey
}

func (e *secp256k1Element) Bytes() []byte {
	if e.point == nil {
		return make([]byte, secp256k1ElementSize)
	}
	return e.point.SerializeCompressed()
}

// Add uses non-constant-time arithmetic; commitments are public.
func (e *secp256k1Element) Add(other Element) Element {
	o := other.(*secp256k1Element)
	if e.point == nil {
		return o
	}
	if o.point == nil {
		return e
	}

	var a, b, sum btcec.JacobianPoint
	e.point.AsJacobian(&a)
	o.point.AsJacobian(&b)
	btcec.AddNonConst(&a, &b, &sum)
	return fromJacobian(&sum)
}

func (e *secp256k1Element) ScalarMult(k *big.Int) Element {
	if e.point == nil {
		return e
	}

	var scalar btcec.ModNScalar
	scalar.SetByteSlice(scalarBytes(k, btcec.S256().Params().N, 32))
	if scalar.IsZero() {
		return &secp256k1Element{}
	}

	var p, result btcec.JacobianPoint
	e.point.AsJacobian(&p)
	btcec.ScalarMultNonConst(&scalar, &p, &result)
	return fromJacobian(&result)
}

func (e *secp256k1Element) Equal(other Element) bool {
	o, ok := other.(*secp256k1Element)
	if !ok {
		return false
	}
	if e.point == nil || o.point == nil {
		return e.point == nil && o.point == nil
	}
	return e.point.IsEqual(o.point)
}

func (e *secp256k1Element) IsIdentity() bool {
	return e.point == nil
}

func fromJacobian(p *btcec.JacobianPoint) *secp256k1Element {
	if p.Z.IsZero() || (p.X.IsZero() && p.Y.IsZero()) {
		return &secp256k1Element{}
	}
	p.ToAffine()
	return &secp256k1Element{point: btcec.NewPublicKey(&p.X, &p.Y)}
}

func isZeroBytes(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
