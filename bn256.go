package vss

import (
	"bytes"
	"math/big"

	"github.com/fentec-project/bn256"
)

const bn256ElementSize = 64

// BN256Group is G1 of the BN256 pairing-friendly curve.
type BN256Group struct{}

// NewBN256Group creates a new BN256 G1 group instance
func NewBN256Group() *BN256Group {
	return &BN256Group{}
}

func (g *BN256Group) Name() string    { return string(GroupBN256) }
func (g *BN256Group) Order() *big.Int { return new(big.Int).Set(bn256.Order) }

func (g *BN256Group) Generator() Element {
	return &bn256Element{point: new(bn256.G1).ScalarBaseMult(big.NewInt(1))}
}

func (g *BN256Group) Identity() Element {
	return &bn256Element{point: new(bn256.G1).ScalarBaseMult(big.NewInt(0))}
}

// ElementFromBytes parses a marshalled G1 point; 64 zero bytes encode the identity.
func (g *BN256Group) ElementFromBytes(data []byte) (Element, error) {
	if len(data) != bn256ElementSize {
		return nil, ErrInvalidElement.WithDetails("bn256 element must be %d bytes, got %d", bn256ElementSize, len(data))
	}
	point := new(bn256.G1)
	if _, err := point.Unmarshal(data); err != nil {
		return nil, ErrInvalidElement.WithCause(err)
	}
	return &bn256Element{point: point}, nil
}

type bn256Element struct {
	point *bn256.G1
}

func (e *bn256Element) Bytes() []byte {
	return e.point.Marshal()
}

func (e *bn256Element) Add(other Element) Element {
	return &bn256Element{point: new(bn256.G1).Add(e.point, other.(*bn256Element).point)}
}

func (e *bn256Element) ScalarMult(k *big.Int) Element {
	reduced := new(big.Int).Mod(k, bn256.Order)
	return &bn256Element{point: new(bn256.G1).ScalarMult(e.point, reduced)}
}

func (e *bn256Element) Equal(other Element) bool {
	o, ok := other.(*bn256Element)
	if !ok {
		return false
	}
	return bytes.Equal(e.point.Marshal(), o.point.Marshal())
}

func (e *bn256Element) IsIdentity() bool {
	return isZeroBytes(e.point.Marshal())
}
