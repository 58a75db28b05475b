package vss

import (
	"math/big"
)

// Group is a cyclic group of prime order in which discrete logarithms are hard.
// Exponent commitments C_i = a_i*G live here; shares live in Z_order.
type Group interface {
	Name() string
	Order() *big.Int
	Generator() Element
	Identity() Element
	ElementFromBytes([]byte) (Element, error)
}

// Element is a group element, written additively.
type Element interface {
	Bytes() []byte
	Add(Element) Element
	ScalarMult(k *big.Int) Element
	Equal(Element) bool
	IsIdentity() bool
}

// GroupType names a supported commitment group
type GroupType string

const (
	GroupSecp256k1 GroupType = "secp256k1"
	GroupEd25519   GroupType = "ed25519"
	GroupBN256     GroupType = "bn256"
)

// SupportedGroups lists the group names accepted by GroupByName
func SupportedGroups() []GroupType {
	return []GroupType{GroupSecp256k1, GroupEd25519, GroupBN256}
}

// GroupByName returns the group registered under name
func GroupByName(name GroupType) (Group, error) {
	switch name {
	case GroupSecp256k1:
		return NewSecp256k1Group(), nil
	case GroupEd25519:
		return NewEd25519Group(), nil
	case GroupBN256:
		return NewBN256Group(), nil
	default:
		return nil, ErrUnsupportedGroup.WithContext("group", string(name))
	}
}

// scalarBytes reduces k mod order and returns it as a fixed-width big-endian buffer.
func scalarBytes(k, order *big.Int, size int) []byte {
	r := new(big.Int).Mod(k, order)
	buf := make([]byte, size)
	return r.FillBytes(buf)
}
