package vss

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitVerifyReconstructScenario(t *testing.T) {
	q := testModulus(t)

	bundle, err := Split([]byte("test"), 4, 2, q)
	require.NoError(t, err)
	require.Len(t, bundle.Shares, 4)
	require.Len(t, bundle.Commits, 2)
	assert.Equal(t, 2, bundle.Threshold())
	assert.Equal(t, []byte("test"), bundle.Secret)

	for _, s := range bundle.Shares {
		assert.True(t, Verify(s, bundle.Commits, q), "share %d", s.Index)
	}

	got, err := Reconstruct([]Share{bundle.Shares[0], bundle.Shares[2]}, q)
	require.NoError(t, err)
	assert.Equal(t, []byte("test"), got)

	got, err = Reconstruct([]Share{bundle.Shares[3], bundle.Shares[1]}, q)
	require.NoError(t, err)
	assert.Equal(t, []byte("test"), got)
}

func TestSplitSizeInvariants(t *testing.T) {
	q := testModulus(t)
	for _, n := range []int{1, 4, 10} {
		for _, threshold := range []int{1, 2, n} {
			if threshold > n {
				continue
			}
			bundle, err := Split([]byte("sizes"), n, threshold, q)
			require.NoError(t, err)
			assert.Len(t, bundle.Shares, n)
			assert.Len(t, bundle.Commits, threshold)
			assert.Empty(t, bundle.VerifyAll())
		}
	}
}

func TestNewParameters(t *testing.T) {
	params, err := New()
	require.NoError(t, err)
	assert.Equal(t, DefaultPrimeBits, params.Modulus.BitLen())
	assert.True(t, params.Modulus.ProbablyPrime(20))
	assert.True(t, params.Generator.Sign() >= 0)
	assert.True(t, params.Generator.Cmp(params.Modulus) < 0)

	_, err = GenerateParameters(nil, MinPrimeBits-1)
	assert.ErrorIs(t, err, ErrInvalidModulus)

	small, err := GenerateParameters(nil, 64)
	require.NoError(t, err)
	assert.Equal(t, 64, small.Modulus.BitLen())

	for _, bits := range []int{MinPrimeBits, 61, 127} {
		p, err := GenerateParameters(nil, bits)
		require.NoError(t, err)
		assert.Equal(t, bits, p.Modulus.BitLen())
	}
}

func TestGenerateParametersSeeded(t *testing.T) {
	generate := func() *Parameters {
		r, err := NewDeterministicReader(DeriveSeed([]byte("params")), "setup")
		require.NoError(t, err)
		params, err := GenerateParameters(r, 128)
		require.NoError(t, err)
		return params
	}
	a, b := generate(), generate()
	assert.Equal(t, 0, a.Modulus.Cmp(b.Modulus))
	assert.Equal(t, 0, a.Generator.Cmp(b.Generator))
}

func TestFreshModulusRoundTrip(t *testing.T) {
	params, err := New()
	require.NoError(t, err)

	secret := []byte("fresh modulus")
	bundle, err := Split(secret, 5, 3, params.Modulus)
	require.NoError(t, err)

	got, err := bundle.Reconstruct(bundle.Shares[2:])
	require.NoError(t, err)
	assert.Equal(t, secret, got)
}

func TestBundleReconstructRestoresLength(t *testing.T) {
	q := testModulus(t)
	secret := []byte{0x00, 0x00, 0x2a, 0x01}

	bundle, err := Split(secret, 3, 2, q)
	require.NoError(t, err)
	assert.Equal(t, len(secret), bundle.SecretLength)

	// the raw reconstruction is minimal big-endian
	raw, err := Reconstruct(bundle.Shares[:2], q)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x2a, 0x01}, raw)

	padded, err := bundle.Reconstruct(bundle.Shares[:2])
	require.NoError(t, err)
	assert.Equal(t, secret, padded)

	_, err = bundle.Reconstruct(bundle.Shares[:1])
	assert.ErrorIs(t, err, ErrInsufficientShares)
}

func TestEmptySecret(t *testing.T) {
	q := testModulus(t)
	bundle, err := Split(nil, 3, 2, q)
	require.NoError(t, err)

	got, err := bundle.Reconstruct(bundle.Shares[:2])
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestVerifyAllReportsTampered(t *testing.T) {
	q := testModulus(t)
	bundle, err := Split([]byte("tamper"), 5, 3, q)
	require.NoError(t, err)

	bundle.Shares[1].Value = new(big.Int).Add(bundle.Shares[1].Value, big.NewInt(1))
	bundle.Shares[3].Value = big.NewInt(0)
	assert.Equal(t, []int{2, 4}, bundle.VerifyAll())
	assert.False(t, bundle.Verify(bundle.Shares[1]))
	assert.True(t, bundle.Verify(bundle.Shares[0]))
}

func TestBundleZeroize(t *testing.T) {
	q := testModulus(t)
	bundle, err := Split([]byte("wipe"), 3, 2, q)
	require.NoError(t, err)

	echo := bundle.Secret
	bundle.Zeroize()
	assert.Nil(t, bundle.Secret)
	assert.Equal(t, []byte{0, 0, 0, 0}, echo)
}

func TestPackageFunctionsRejectBadModulus(t *testing.T) {
	_, err := Split([]byte("x"), 3, 2, big.NewInt(15))
	assert.ErrorIs(t, err, ErrInvalidModulus)

	assert.False(t, Verify(NewShare(1, big.NewInt(1)), Commitments{big.NewInt(1)}, big.NewInt(15)))

	_, err = Reconstruct([]Share{NewShare(1, big.NewInt(1))}, nil)
	assert.ErrorIs(t, err, ErrInvalidModulus)
}

func TestPadSecret(t *testing.T) {
	assert.Equal(t, []byte{0, 0, 1}, PadSecret([]byte{1}, 3))
	assert.Equal(t, []byte{1, 2, 3}, PadSecret([]byte{1, 2, 3}, 2))
	assert.Equal(t, []byte{}, PadSecret([]byte{}, 0))
}

type recordingAudit struct {
	splits, verifications, reconstructions, failures []*AuditEvent
}

func (r *recordingAudit) OnSplit(e *AuditEvent) {
	r.splits = append(r.splits, e)
}

func (r *recordingAudit) OnVerification(e *AuditEvent) {
	r.verifications = append(r.verifications, e)
}

func (r *recordingAudit) OnReconstruction(e *AuditEvent) {
	r.reconstructions = append(r.reconstructions, e)
}

func (r *recordingAudit) OnValidationFailure(e *AuditEvent) {
	r.failures = append(r.failures, e)
}

func (r *recordingAudit) OnParameterSetup(e *AuditEvent) {}

func TestSchemeWithOptions(t *testing.T) {
	audit := &recordingAudit{}
	r, err := NewDeterministicReader([]byte("scheme"), "options")
	require.NoError(t, err)

	s, err := NewScheme(testModulus(t), WithRandom(r), WithAuditHandler(audit))
	require.NoError(t, err)

	bundle, err := s.Split([]byte("audited"), 4, 3)
	require.NoError(t, err)
	require.Len(t, audit.splits, 1)
	assert.True(t, audit.splits[0].Success)
	assert.Equal(t, 4, audit.splits[0].ShareCount)
	assert.Equal(t, 3, audit.splits[0].Threshold)
	assert.Equal(t, PrimeFieldGroup, audit.splits[0].Group)

	assert.True(t, s.Verify(bundle.Shares[0], bundle.Commits))
	require.Len(t, audit.verifications, 1)
	assert.Equal(t, true, audit.verifications[0].Metadata["valid"])

	got, err := s.ReconstructThreshold(bundle.Shares[1:], 3)
	require.NoError(t, err)
	assert.Equal(t, []byte("audited"), got)
	require.Len(t, audit.reconstructions, 1)
	assert.Equal(t, []int{2, 3, 4}, audit.reconstructions[0].ShareIndices)

	_, err = s.Split([]byte("bad"), 2, 3)
	assert.ErrorIs(t, err, ErrThresholdTooHigh)
	require.Len(t, audit.failures, 1)
	assert.False(t, audit.failures[0].Success)

	_, err = s.Reconstruct([]Share{bundle.Shares[0], bundle.Shares[0]})
	assert.ErrorIs(t, err, ErrDuplicateIndex)
	require.Len(t, audit.reconstructions, 2)
	assert.False(t, audit.reconstructions[1].Success)
}

func TestSchemeDeterministicSplit(t *testing.T) {
	split := func() *FeldmanVSS {
		r, err := NewDeterministicReader([]byte("repeatable"), "split")
		require.NoError(t, err)
		s, err := NewScheme(testModulus(t), WithRandom(r))
		require.NoError(t, err)
		bundle, err := s.Split([]byte("same"), 5, 3)
		require.NoError(t, err)
		return bundle
	}
	a, b := split(), split()
	assert.Equal(t, a.Encode(), b.Encode())
}
