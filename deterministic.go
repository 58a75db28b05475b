package vss

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	deterministicSalt   = "VSS_DETERMINISTIC_COEFFICIENTS_v1"
	deterministicDomain = "VSS_DETERMINISTIC_SEED_v1"

	// hkdf caps a single expansion at 255 hash blocks
	deterministicBlock = 255 * sha256.Size
)

// deterministicReader is an unbounded HKDF-SHA256 stream. Each block of
// deterministicBlock bytes comes from a fresh expansion keyed by a counter.
type deterministicReader struct {
	seed    []byte
	context []byte
	counter uint32
	current io.Reader
	left    int
}

// NewDeterministicReader returns a reproducible byte stream derived from seed
// and context. Passing it to WithRandom makes a split repeatable: the same seed,
// context, and parameters always yield the same shares. It is intended for
// tests and recorded demos; production secrets need crypto/rand.
func NewDeterministicReader(seed []byte, context string) (io.Reader, error) {
	if len(seed) == 0 {
		return nil, ErrRandomnessGeneration.WithDetails("deterministic seed cannot be empty")
	}
	s := make([]byte, len(seed))
	copy(s, seed)
	return &deterministicReader{seed: s, context: []byte(context)}, nil
}

func (r *deterministicReader) Read(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		if r.left == 0 {
			r.next()
		}
		chunk := len(p) - total
		if chunk > r.left {
			chunk = r.left
		}
		n, err := io.ReadFull(r.current, p[total:total+chunk])
		total += n
		r.left -= n
		if err != nil {
			return total, ErrRandomnessGeneration.WithCause(err)
		}
	}
	return total, nil
}

func (r *deterministicReader) next() {
	info := make([]byte, 0, len(r.context)+4)
	info = append(info, r.context...)
	info = binary.BigEndian.AppendUint32(info, r.counter)
	r.counter++

	r.current = hkdf.New(sha256.New, r.seed, []byte(deterministicSalt), info)
	r.left = deterministicBlock
}

// DeriveSeed hashes arbitrary seed material into a 32-byte seed. Each part is
// length-prefixed so that ("ab", "c") and ("a", "bc") differ.
func DeriveSeed(parts ...[]byte) []byte {
	h := sha256.New()
	h.Write([]byte(deterministicDomain))
	for _, part := range parts {
		writeLengthPrefixed(h, part)
	}
	return h.Sum(nil)
}

func writeLengthPrefixed(h hash.Hash, data []byte) {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))
	h.Write(length[:])
	h.Write(data)
}
