// Package vss implements Feldman verifiable secret sharing.
//
// A dealer splits a secret into n shares so that any threshold of them
// reconstruct it exactly and fewer reveal nothing. Every share holder can
// check their share against the dealer's public commitments.
//
// Two flavours are provided. Scheme works over a random prime field Z_q and
// publishes the polynomial coefficients as the commitment vector: the check
// is exact but the commitments do not hide the secret. GroupScheme works over
// a prime-order group (secp256k1, ed25519, bn256) and publishes ai*G, which
// is the hiding Feldman construction.
package vss

import (
	"crypto/rand"
	"io"
	"math/big"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultPrimeBits is the bit length of the modulus produced by New
	DefaultPrimeBits = 256

	// MinPrimeBits is the smallest modulus GenerateParameters accepts
	MinPrimeBits = 16

	// PrimeFieldGroup labels the coefficient-commitment scheme in metrics,
	// audit events and wire messages.
	PrimeFieldGroup = "prime"
)

// Parameters are the public setup values every party must agree on.
type Parameters struct {
	Modulus   *big.Int // q
	Generator *big.Int // g, uniform in [0, q); unused by the prime field scheme
}

// New samples a 256-bit prime modulus and a generator below it.
func New() (*Parameters, error) {
	return GenerateParameters(rand.Reader, DefaultPrimeBits)
}

// GenerateParameters samples a random prime of the given bit length from r and
// an independent element below it. Distributing the result over an authenticated
// channel is the dealer's job.
func GenerateParameters(r io.Reader, bits int) (*Parameters, error) {
	if bits < MinPrimeBits {
		return nil, ErrInvalidModulus.WithDetails("bit length %d below minimum %d", bits, MinPrimeBits)
	}
	if r == nil {
		r = rand.Reader
	}
	q, err := randomPrime(r, bits)
	if err != nil {
		return nil, ErrRandomnessGeneration.WithCause(err)
	}
	g, err := rand.Int(r, q)
	if err != nil {
		return nil, ErrRandomnessGeneration.WithCause(err)
	}
	return &Parameters{Modulus: q, Generator: g}, nil
}

// randomPrime draws odd candidates with the top bit set until one passes
// Miller-Rabin. It consumes r directly so a seeded reader gives the same prime.
func randomPrime(r io.Reader, bits int) (*big.Int, error) {
	buf := make([]byte, (bits+7)/8)
	excess := uint(len(buf)*8 - bits)
	p := new(big.Int)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		buf[0] &= byte(0xff >> excess)
		buf[0] |= byte(0x80 >> excess)
		buf[len(buf)-1] |= 1
		p.SetBytes(buf)
		if p.ProbablyPrime(primalityRounds) {
			return p, nil
		}
	}
}

// FeldmanVSS bundles the output of a split.
type FeldmanVSS struct {
	Shares  []Share
	Commits Commitments
	// Secret echoes the plaintext for the dealer's convenience. It is never
	// serialized; call Zeroize once the bundle has been distributed.
	Secret []byte
	// SecretLength is the byte length of the secret at split time, used to
	// restore leading zero bytes on reconstruction.
	SecretLength int
	Modulus      *big.Int
}

// Threshold returns the number of shares needed to reconstruct.
func (b *FeldmanVSS) Threshold() int {
	return len(b.Commits)
}

// Field returns the prime field the bundle was dealt over.
func (b *FeldmanVSS) Field() (*Field, error) {
	return NewField(b.Modulus)
}

// Verify checks a single share against the bundle's commitments.
func (b *FeldmanVSS) Verify(share Share) bool {
	field, err := b.Field()
	if err != nil {
		return false
	}
	return VerifyShare(share, b.Commits, field)
}

// VerifyAll returns the indices of shares that fail verification.
func (b *FeldmanVSS) VerifyAll() []int {
	field, err := b.Field()
	if err != nil {
		invalid := make([]int, len(b.Shares))
		for i, s := range b.Shares {
			invalid[i] = s.Index
		}
		return invalid
	}
	var invalid []int
	for _, s := range b.Shares {
		if !VerifyShare(s, b.Commits, field) {
			invalid = append(invalid, s.Index)
		}
	}
	return invalid
}

// Reconstruct recovers the secret from shares, enforcing the threshold and
// restoring the recorded secret length.
func (b *FeldmanVSS) Reconstruct(shares []Share) ([]byte, error) {
	field, err := b.Field()
	if err != nil {
		return nil, err
	}
	secret, err := ReconstructThreshold(shares, b.Threshold(), field)
	if err != nil {
		return nil, err
	}
	return PadSecret(secret, b.SecretLength), nil
}

// Zeroize clears the plaintext echo.
func (b *FeldmanVSS) Zeroize() {
	for i := range b.Secret {
		b.Secret[i] = 0
	}
	b.Secret = nil
}

// PadSecret left-pads secret with zero bytes up to length. Secrets already at
// least that long are returned unchanged.
func PadSecret(secret []byte, length int) []byte {
	if len(secret) >= length {
		return secret
	}
	padded := make([]byte, length)
	copy(padded[length-len(secret):], secret)
	return padded
}

// Option configures a Scheme or GroupScheme
type Option func(*options)

type options struct {
	random  io.Reader
	logger  *zap.Logger
	audit   AuditEventHandler
	metrics *Metrics
}

func defaultOptions() *options {
	return &options{
		random: rand.Reader,
		logger: zap.NewNop(),
		audit:  &NullAuditHandler{},
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithRandom sets the randomness source for coefficient sampling. It must be a
// CSPRNG outside of tests.
func WithRandom(r io.Reader) Option {
	return func(o *options) {
		if r != nil {
			o.random = r
		}
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAuditHandler sets the audit event handler
func WithAuditHandler(handler AuditEventHandler) Option {
	return func(o *options) {
		if handler != nil {
			o.audit = handler
		}
	}
}

// WithMetrics enables Prometheus instrumentation
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// Scheme is the prime field VSS facade bound to one modulus. It holds no
// mutable state and is safe for concurrent use.
type Scheme struct {
	field *Field
	opts  *options
}

// NewScheme creates a scheme over the prime modulus q
func NewScheme(q *big.Int, opts ...Option) (*Scheme, error) {
	field, err := NewField(q)
	if err != nil {
		return nil, err
	}
	return &Scheme{field: field, opts: applyOptions(opts)}, nil
}

// Field returns the scheme's prime field
func (s *Scheme) Field() *Field {
	return s.field
}

// Split deals secret into n shares with the given threshold.
func (s *Scheme) Split(secret []byte, n, threshold int) (*FeldmanVSS, error) {
	started := time.Now()
	builder := NewAuditEventBuilder(AuditEventSplit).
		WithGroup(PrimeFieldGroup).
		WithField(s.field).
		WithParameters(n, threshold)

	shares, commits, err := GenerateShares(secret, n, threshold, s.field, s.opts.random)
	if err != nil {
		s.opts.metrics.observe(OpSplit, PrimeFieldGroup, StatusError, started)
		s.reportFailure(builder, err)
		s.opts.logger.Debug("split failed",
			zap.Int("shares", n), zap.Int("threshold", threshold), zap.Error(err))
		return nil, err
	}

	s.opts.metrics.observe(OpSplit, PrimeFieldGroup, StatusSuccess, started)
	s.opts.metrics.dealt(PrimeFieldGroup, n)
	s.opts.audit.OnSplit(builder.Build())
	s.opts.logger.Debug("secret split",
		zap.Int("shares", n), zap.Int("threshold", threshold), zap.Int("modulus_bits", s.field.BitLen()))

	echo := make([]byte, len(secret))
	copy(echo, secret)
	return &FeldmanVSS{
		Shares:       shares,
		Commits:      commits,
		Secret:       echo,
		SecretLength: len(secret),
		Modulus:      s.field.Modulus(),
	}, nil
}

// Verify checks share against commits. False is an expected outcome, not an error.
func (s *Scheme) Verify(share Share, commits Commitments) bool {
	started := time.Now()
	ok := VerifyShare(share, commits, s.field)

	status := StatusValid
	if !ok {
		status = StatusInvalid
	}
	s.opts.metrics.observe(OpVerify, PrimeFieldGroup, status, started)
	s.opts.audit.OnVerification(NewAuditEventBuilder(AuditEventVerification).
		WithGroup(PrimeFieldGroup).
		WithField(s.field).
		WithParameters(0, len(commits)).
		WithShares([]Share{share}).
		WithMetadata("valid", ok).
		Build())
	if !ok {
		s.opts.logger.Debug("share failed verification", zap.Int("index", share.Index))
	}
	return ok
}

// Reconstruct recovers the secret from shares; see ReconstructSecret.
func (s *Scheme) Reconstruct(shares []Share) ([]byte, error) {
	return s.reconstruct(shares, func() ([]byte, error) {
		return ReconstructSecret(shares, s.field)
	})
}

// ReconstructThreshold recovers the secret, rejecting fewer than threshold shares.
func (s *Scheme) ReconstructThreshold(shares []Share, threshold int) ([]byte, error) {
	return s.reconstruct(shares, func() ([]byte, error) {
		return ReconstructThreshold(shares, threshold, s.field)
	})
}

func (s *Scheme) reconstruct(shares []Share, run func() ([]byte, error)) ([]byte, error) {
	started := time.Now()
	builder := NewAuditEventBuilder(AuditEventReconstruction).
		WithGroup(PrimeFieldGroup).
		WithField(s.field).
		WithShares(shares)

	secret, err := run()
	if err != nil {
		s.opts.metrics.observe(OpReconstruct, PrimeFieldGroup, StatusError, started)
		s.reportFailure(builder, err)
		return nil, err
	}
	s.opts.metrics.observe(OpReconstruct, PrimeFieldGroup, StatusSuccess, started)
	s.opts.audit.OnReconstruction(builder.Build())
	return secret, nil
}

func (s *Scheme) reportFailure(builder *AuditEventBuilder, err error) {
	reportFailure(s.opts.audit, builder, err)
}

// reportFailure sends parameter errors to OnValidationFailure and anything
// else to the handler for the event's own operation.
func reportFailure(handler AuditEventHandler, builder *AuditEventBuilder, err error) {
	event := builder.WithError(err).Build()
	if IsParameterError(err) {
		handler.OnValidationFailure(event)
		return
	}
	switch event.EventType {
	case AuditEventSplit:
		handler.OnSplit(event)
	case AuditEventReconstruction:
		handler.OnReconstruction(event)
	}
}

// Split deals secret over the prime field q with default options.
func Split(secret []byte, n, threshold int, q *big.Int) (*FeldmanVSS, error) {
	s, err := NewScheme(q)
	if err != nil {
		return nil, err
	}
	return s.Split(secret, n, threshold)
}

// Verify checks share against commits over the prime field q.
func Verify(share Share, commits Commitments, q *big.Int) bool {
	field, err := NewField(q)
	if err != nil {
		return false
	}
	return VerifyShare(share, commits, field)
}

// Reconstruct recovers the secret from shares over the prime field q.
func Reconstruct(shares []Share, q *big.Int) ([]byte, error) {
	field, err := NewField(q)
	if err != nil {
		return nil, err
	}
	return ReconstructSecret(shares, field)
}
