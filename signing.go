package vss

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/canopy-network/canopy/lib/crypto"
	"golang.org/x/crypto/blake2b"
)

const commitmentDomain = "VSS_COMMITMENTS_v1"

// Signature algorithms a dealer can authenticate commitments with
const (
	AlgorithmSchnorr = "bip340-schnorr"
	AlgorithmBLS     = "bls12-381"
)

// CommitmentDigest hashes the public commitments into 32 bytes with BLAKE2b-256.
// Every field is length-prefixed; the signature itself is excluded.
func CommitmentDigest(ec *EncodedCommitments) []byte {
	h, _ := blake2b.New256(nil) // only fails for keys longer than 64 bytes

	h.Write([]byte(commitmentDomain))
	writeLengthPrefixed(h, []byte(ec.Group))
	writeLengthPrefixed(h, []byte(ec.Modulus))

	var counts [16]byte
	binary.BigEndian.PutUint64(counts[:8], uint64(ec.Threshold))
	binary.BigEndian.PutUint64(counts[8:], uint64(ec.SecretLength))
	h.Write(counts[:])

	for _, v := range ec.Values {
		writeLengthPrefixed(h, []byte(v))
	}
	return h.Sum(nil)
}

// CommitmentVerifier checks a signature over a commitment digest
type CommitmentVerifier interface {
	VerifyBytes(msg, sig []byte) bool
}

// DealerSigner authenticates the commitments a dealer broadcasts. Feldman VSS
// assumes the broadcast channel is authentic; signing the commitments lets
// share holders check that over an untrusted one.
type DealerSigner interface {
	Algorithm() string
	PublicKey() []byte
	Sign(digest []byte) ([]byte, error)
	Verifier() CommitmentVerifier
}

// SchnorrDealer signs with BIP-340 Schnorr over secp256k1
type SchnorrDealer struct {
	key *btcec.PrivateKey
}

// NewSchnorrDealer generates a fresh secp256k1 signing key
func NewSchnorrDealer() (*SchnorrDealer, error) {
	key, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, ErrRandomnessGeneration.WithCause(err)
	}
	return &SchnorrDealer{key: key}, nil
}

// NewSchnorrDealerFromBytes loads a 32-byte secp256k1 private key
func NewSchnorrDealerFromBytes(raw []byte) (*SchnorrDealer, error) {
	if len(raw) != 32 {
		return nil, ErrSigningFailed.WithDetails("schnorr key must be 32 bytes, got %d", len(raw))
	}
	key, _ := btcec.PrivKeyFromBytes(raw)
	return &SchnorrDealer{key: key}, nil
}

func (d *SchnorrDealer) Algorithm() string { return AlgorithmSchnorr }

// PublicKey returns the 32-byte x-only public key
func (d *SchnorrDealer) PublicKey() []byte {
	return schnorr.SerializePubKey(d.key.PubKey())
}

func (d *SchnorrDealer) Sign(digest []byte) ([]byte, error) {
	sig, err := schnorr.Sign(d.key, digest)
	if err != nil {
		return nil, ErrSigningFailed.WithCause(err)
	}
	return sig.Serialize(), nil
}

func (d *SchnorrDealer) Verifier() CommitmentVerifier {
	return &schnorrVerifier{pub: d.key.PubKey()}
}

type schnorrVerifier struct {
	pub *btcec.PublicKey
}

// SchnorrVerifierFromBytes parses an x-only public key
func SchnorrVerifierFromBytes(raw []byte) (CommitmentVerifier, error) {
	pub, err := schnorr.ParsePubKey(raw)
	if err != nil {
		return nil, ErrSignatureInvalid.WithDetails("invalid schnorr public key").WithCause(err)
	}
	return &schnorrVerifier{pub: pub}, nil
}

func (v *schnorrVerifier) VerifyBytes(msg, sig []byte) bool {
	parsed, err := schnorr.ParseSignature(sig)
	if err != nil {
		return false
	}
	return parsed.Verify(msg, v.pub)
}

// BLSDealer signs with BLS12-381 keys, matching validator keys on canopy
type BLSDealer struct {
	key *crypto.BLS12381PrivateKey
}

// NewBLSDealer generates a fresh BLS12-381 signing key
func NewBLSDealer() (*BLSDealer, error) {
	generated, err := crypto.NewBLS12381PrivateKey()
	if err != nil {
		return nil, ErrRandomnessGeneration.WithCause(err)
	}
	key, ok := generated.(*crypto.BLS12381PrivateKey)
	if !ok {
		return nil, ErrSigningFailed.WithDetails("unexpected bls key type %T", generated)
	}
	return &BLSDealer{key: key}, nil
}

func (d *BLSDealer) Algorithm() string { return AlgorithmBLS }

func (d *BLSDealer) PublicKey() []byte {
	return d.key.PublicKey().Bytes()
}

func (d *BLSDealer) Sign(digest []byte) ([]byte, error) {
	sig := d.key.Sign(digest)
	if len(sig) == 0 {
		return nil, ErrSigningFailed.WithDetails("empty bls signature")
	}
	return sig, nil
}

func (d *BLSDealer) Verifier() CommitmentVerifier {
	return &blsVerifier{dealer: d}
}

type blsVerifier struct {
	dealer *BLSDealer
}

func (v *blsVerifier) VerifyBytes(msg, sig []byte) bool {
	return v.dealer.key.PublicKey().VerifyBytes(msg, sig)
}

// BLSVerifierFromBytes parses a compressed BLS12-381 G1 public key
func BLSVerifierFromBytes(raw []byte) (CommitmentVerifier, error) {
	pub, err := crypto.BytesToBLS12381Public(raw)
	if err != nil {
		return nil, ErrSignatureInvalid.WithDetails("invalid bls public key").WithCause(err)
	}
	return pub, nil
}

// SignCommitments attaches signer's signature over the commitment digest
func SignCommitments(ec *EncodedCommitments, signer DealerSigner) error {
	if ec == nil {
		return ErrEncoding.WithDetails("missing commitments")
	}
	sig, err := signer.Sign(CommitmentDigest(ec))
	if err != nil {
		return err
	}
	ec.Signature = &EncodedSignature{
		Algorithm: signer.Algorithm(),
		PublicKey: hex.EncodeToString(signer.PublicKey()),
		Value:     hex.EncodeToString(sig),
	}
	return nil
}

// VerifyCommitments checks the attached signature with verifier
func VerifyCommitments(ec *EncodedCommitments, verifier CommitmentVerifier) error {
	if ec == nil || ec.Signature == nil {
		return ErrSignatureInvalid.WithDetails("commitments are not signed")
	}
	sig, err := hex.DecodeString(ec.Signature.Value)
	if err != nil {
		return ErrSignatureInvalid.WithCause(err)
	}
	if !verifier.VerifyBytes(CommitmentDigest(ec), sig) {
		return ErrSignatureInvalid.WithContext("algorithm", ec.Signature.Algorithm)
	}
	return nil
}

// VerifyEmbeddedSignature checks the signature against the public key carried
// in the message. It only proves integrity; the caller must still trust that key.
func VerifyEmbeddedSignature(ec *EncodedCommitments) error {
	if ec == nil || ec.Signature == nil {
		return ErrSignatureInvalid.WithDetails("commitments are not signed")
	}
	raw, err := hex.DecodeString(ec.Signature.PublicKey)
	if err != nil {
		return ErrSignatureInvalid.WithCause(err)
	}
	var verifier CommitmentVerifier
	switch ec.Signature.Algorithm {
	case AlgorithmSchnorr:
		verifier, err = SchnorrVerifierFromBytes(raw)
	case AlgorithmBLS:
		verifier, err = BLSVerifierFromBytes(raw)
	default:
		return ErrSignatureInvalid.WithDetails("unsupported embedded algorithm %q", ec.Signature.Algorithm)
	}
	if err != nil {
		return err
	}
	return VerifyCommitments(ec, verifier)
}
