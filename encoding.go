package vss

import (
	"encoding/hex"
	"math/big"

	"go.dedis.ch/protobuf"
)

// EncodedShare is the wire form of a share. Value is the decimal field element.
type EncodedShare struct {
	Index int64  `json:"index" yaml:"index"`
	Value string `json:"value" yaml:"value"`
}

// EncodedSignature is a dealer signature over a commitment digest
type EncodedSignature struct {
	Algorithm string `json:"algorithm" yaml:"algorithm"`
	PublicKey string `json:"public_key" yaml:"public_key"` // hex
	Value     string `json:"value" yaml:"value"`           // hex
}

// EncodedCommitments is the public half of a split: everything a share holder
// needs to verify a share. Group is PrimeFieldGroup for the coefficient scheme,
// with decimal Values; otherwise Values are hex group elements and Modulus is
// the group order.
type EncodedCommitments struct {
	Group        string            `json:"group" yaml:"group"`
	Modulus      string            `json:"modulus" yaml:"modulus"`
	Threshold    int64             `json:"threshold" yaml:"threshold"`
	SecretLength int64             `json:"secret_length" yaml:"secret_length"`
	Values       []string          `json:"commitments" yaml:"commitments"`
	Signature    *EncodedSignature `json:"signature,omitempty" yaml:"signature,omitempty"`
}

// EncodedBundle is a full split without the plaintext secret
type EncodedBundle struct {
	Public *EncodedCommitments `json:"public" yaml:"public"`
	Shares []EncodedShare      `json:"shares" yaml:"shares"`
}

// EncodeShare converts a share to its wire form
func EncodeShare(s Share) EncodedShare {
	return EncodedShare{Index: int64(s.Index), Value: EncodeElement(s.Value)}
}

// DecodeShare parses a wire share. The value must be a decimal literal.
func DecodeShare(es EncodedShare) (Share, error) {
	if es.Index <= 0 || es.Index > MaxShares {
		return Share{}, ErrInvalidIndex.WithContext("index", es.Index)
	}
	v, err := DecodeElement(es.Value)
	if err != nil {
		return Share{}, err
	}
	return NewShare(int(es.Index), v), nil
}

// EncodeShares converts shares to their wire form
func EncodeShares(shares []Share) []EncodedShare {
	out := make([]EncodedShare, len(shares))
	for i, s := range shares {
		out[i] = EncodeShare(s)
	}
	return out
}

// DecodeShares parses wire shares, failing on the first malformed one
func DecodeShares(encoded []EncodedShare) ([]Share, error) {
	out := make([]Share, len(encoded))
	for i, es := range encoded {
		s, err := DecodeShare(es)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// Public returns the verifiable public half of the bundle
func (b *FeldmanVSS) Public() *EncodedCommitments {
	values := make([]string, len(b.Commits))
	for i, c := range b.Commits {
		values[i] = EncodeElement(c)
	}
	return &EncodedCommitments{
		Group:        PrimeFieldGroup,
		Modulus:      EncodeElement(b.Modulus),
		Threshold:    int64(len(b.Commits)),
		SecretLength: int64(b.SecretLength),
		Values:       values,
	}
}

// Encode returns the bundle's wire form. The plaintext echo is not included.
func (b *FeldmanVSS) Encode() *EncodedBundle {
	return &EncodedBundle{Public: b.Public(), Shares: EncodeShares(b.Shares)}
}

// Public returns the verifiable public half of the bundle
func (b *GroupBundle) Public() *EncodedCommitments {
	values := make([]string, len(b.Commits.elements))
	for i, e := range b.Commits.elements {
		values[i] = hex.EncodeToString(e.Bytes())
	}
	return &EncodedCommitments{
		Group:        b.Commits.group.Name(),
		Modulus:      EncodeElement(b.Commits.group.Order()),
		Threshold:    int64(len(values)),
		SecretLength: int64(b.SecretLength),
		Values:       values,
	}
}

// Encode returns the bundle's wire form. The plaintext echo is not included.
func (b *GroupBundle) Encode() *EncodedBundle {
	return &EncodedBundle{Public: b.Public(), Shares: EncodeShares(b.Shares)}
}

func (ec *EncodedCommitments) validate() error {
	if ec == nil {
		return ErrEncoding.WithDetails("missing commitments")
	}
	if len(ec.Values) == 0 {
		return ErrInvalidCommitments.WithDetails("no commitments")
	}
	if ec.Threshold != int64(len(ec.Values)) {
		return ErrInvalidCommitments.
			WithDetails("threshold %d does not match %d commitments", ec.Threshold, len(ec.Values))
	}
	if ec.SecretLength < 0 {
		return ErrEncoding.WithDetails("negative secret length")
	}
	return nil
}

// DecodeCommitments parses prime field commitments and their modulus
func DecodeCommitments(ec *EncodedCommitments) (Commitments, *big.Int, error) {
	if err := ec.validate(); err != nil {
		return nil, nil, err
	}
	if ec.Group != PrimeFieldGroup {
		return nil, nil, ErrUnsupportedGroup.
			WithDetails("expected %q commitments, got %q", PrimeFieldGroup, ec.Group)
	}
	q, err := DecodeElement(ec.Modulus)
	if err != nil {
		return nil, nil, err
	}
	commits := make(Commitments, len(ec.Values))
	for i, v := range ec.Values {
		c, err := DecodeElement(v)
		if err != nil {
			return nil, nil, err
		}
		commits[i] = c
	}
	return commits, q, nil
}

// DecodeGroupCommitments parses exponent commitments for a named group
func DecodeGroupCommitments(ec *EncodedCommitments) (*GroupCommitments, error) {
	if err := ec.validate(); err != nil {
		return nil, err
	}
	group, err := GroupByName(GroupType(ec.Group))
	if err != nil {
		return nil, err
	}
	elements := make([]Element, len(ec.Values))
	for i, v := range ec.Values {
		raw, err := hex.DecodeString(v)
		if err != nil {
			return nil, ErrInvalidElement.WithContext("position", i).WithCause(err)
		}
		e, err := group.ElementFromBytes(raw)
		if err != nil {
			return nil, err
		}
		elements[i] = e
	}
	return NewGroupCommitments(group, elements)
}

// checkSecretLength bounds a wire secret length by the byte size of the modulus
func checkSecretLength(length int64, q *big.Int) error {
	limit := int64((q.BitLen() + 7) / 8)
	if length > limit {
		return ErrEncoding.
			WithDetails("secret length %d exceeds %d modulus bytes", length, limit).
			WithContext("secret_length", length)
	}
	return nil
}

// DecodeBundle rebuilds a prime field bundle from its wire form. The
// plaintext echo is never transmitted, so Secret is nil.
func DecodeBundle(eb *EncodedBundle) (*FeldmanVSS, error) {
	if eb == nil {
		return nil, ErrEncoding.WithDetails("missing bundle")
	}
	commits, q, err := DecodeCommitments(eb.Public)
	if err != nil {
		return nil, err
	}
	if err := checkSecretLength(eb.Public.SecretLength, q); err != nil {
		return nil, err
	}
	shares, err := DecodeShares(eb.Shares)
	if err != nil {
		return nil, err
	}
	return &FeldmanVSS{
		Shares:       shares,
		Commits:      commits,
		SecretLength: int(eb.Public.SecretLength),
		Modulus:      q,
	}, nil
}

// DecodeGroupBundle rebuilds a group bundle from its wire form
func DecodeGroupBundle(eb *EncodedBundle) (*GroupBundle, error) {
	if eb == nil {
		return nil, ErrEncoding.WithDetails("missing bundle")
	}
	commits, err := DecodeGroupCommitments(eb.Public)
	if err != nil {
		return nil, err
	}
	if err := checkSecretLength(eb.Public.SecretLength, commits.group.Order()); err != nil {
		return nil, err
	}
	shares, err := DecodeShares(eb.Shares)
	if err != nil {
		return nil, err
	}
	return &GroupBundle{
		Shares:       shares,
		Commits:      commits,
		SecretLength: int(eb.Public.SecretLength),
	}, nil
}

// VerifyEncodedShare checks a share given entirely in decimal text: the share
// value, its index, the commitment vector and the modulus. Malformed text is
// a decode error; a well-formed share that does not verify is (false, nil).
func VerifyEncodedShare(share string, x int64, commits []string, q string) (bool, error) {
	value, err := DecodeElement(share)
	if err != nil {
		return false, err
	}
	modulus, err := DecodeElement(q)
	if err != nil {
		return false, err
	}
	decoded := make(Commitments, len(commits))
	for i, c := range commits {
		if decoded[i], err = DecodeElement(c); err != nil {
			return false, err
		}
	}
	field, err := NewField(modulus)
	if err != nil {
		return false, err
	}
	if x <= 0 || x > MaxShares {
		return false, nil
	}
	return VerifyShare(NewShare(int(x), value), decoded, field), nil
}

// MarshalShare encodes a share with the protobuf codec
func MarshalShare(es EncodedShare) ([]byte, error) {
	return marshal(&es)
}

// UnmarshalShare decodes a protobuf encoded share
func UnmarshalShare(data []byte) (EncodedShare, error) {
	var es EncodedShare
	err := unmarshal(data, &es)
	return es, err
}

// MarshalCommitments encodes the public commitments with the protobuf codec
func MarshalCommitments(ec *EncodedCommitments) ([]byte, error) {
	if ec == nil {
		return nil, ErrEncoding.WithDetails("missing commitments")
	}
	return marshal(ec)
}

// UnmarshalCommitments decodes protobuf encoded commitments
func UnmarshalCommitments(data []byte) (*EncodedCommitments, error) {
	ec := &EncodedCommitments{}
	if err := unmarshal(data, ec); err != nil {
		return nil, err
	}
	return ec, nil
}

// MarshalBundle encodes a bundle with the protobuf codec
func MarshalBundle(eb *EncodedBundle) ([]byte, error) {
	if eb == nil {
		return nil, ErrEncoding.WithDetails("missing bundle")
	}
	return marshal(eb)
}

// UnmarshalBundle decodes a protobuf encoded bundle
func UnmarshalBundle(data []byte) (*EncodedBundle, error) {
	eb := &EncodedBundle{}
	if err := unmarshal(data, eb); err != nil {
		return nil, err
	}
	return eb, nil
}

func marshal(v interface{}) ([]byte, error) {
	data, err := protobuf.Encode(v)
	if err != nil {
		return nil, ErrEncoding.WithCause(err)
	}
	return data, nil
}

func unmarshal(data []byte, v interface{}) error {
	if len(data) == 0 {
		return ErrEncoding.WithDetails("empty message")
	}
	if err := protobuf.Decode(data, v); err != nil {
		return ErrEncoding.WithCause(err)
	}
	return nil
}
