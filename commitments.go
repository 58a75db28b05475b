package vss

import (
	"math/big"
	"time"

	"go.uber.org/zap"
)

// GroupCommitments are Feldman exponent commitments C_i = a_i*G to the
// coefficients of the secret polynomial.
type GroupCommitments struct {
	group    Group
	elements []Element
}

// NewGroupCommitments wraps already-published commitment elements
func NewGroupCommitments(group Group, elements []Element) (*GroupCommitments, error) {
	if group == nil {
		return nil, ErrUnsupportedGroup.WithDetails("group is nil")
	}
	if len(elements) == 0 {
		return nil, ErrInvalidCommitments.WithDetails("no commitments")
	}
	for i, e := range elements {
		if e == nil {
			return nil, ErrInvalidCommitments.WithContext("position", i)
		}
	}
	out := make([]Element, len(elements))
	copy(out, elements)
	return &GroupCommitments{group: group, elements: out}, nil
}

// CommitPolynomial commits to every coefficient of p in group
func CommitPolynomial(group Group, p *Polynomial) *GroupCommitments {
	generator := group.Generator()
	elements := make([]Element, len(p.coefficients))
	for i, coeff := range p.coefficients {
		elements[i] = generator.ScalarMult(coeff)
	}
	return &GroupCommitments{group: group, elements: elements}
}

// Group returns the commitment group
func (c *GroupCommitments) Group() Group {
	return c.group
}

// Elements returns a copy of the commitment vector
func (c *GroupCommitments) Elements() []Element {
	out := make([]Element, len(c.elements))
	copy(out, c.elements)
	return out
}

// Threshold returns the number of shares needed to reconstruct
func (c *GroupCommitments) Threshold() int {
	return len(c.elements)
}

// PublicKey returns C_0 = secret*G.
func (c *GroupCommitments) PublicKey() Element {
	return c.elements[0]
}

// Evaluate computes sum(x^i * C_i), the commitment to f(x), by Horner's rule.
func (c *GroupCommitments) Evaluate(x *big.Int) Element {
	acc := c.group.Identity()
	for i := len(c.elements) - 1; i >= 0; i-- {
		acc = acc.ScalarMult(x).Add(c.elements[i])
	}
	return acc
}

// VerifyGroupShare checks share.Value*G == sum(x^i * C_i).
func VerifyGroupShare(share Share, commits *GroupCommitments) bool {
	if commits == nil || len(commits.elements) == 0 {
		return false
	}
	if share.Index <= 0 || share.Value == nil {
		return false
	}
	order := commits.group.Order()
	if share.Value.Sign() < 0 || share.Value.Cmp(order) >= 0 {
		return false
	}
	expected := commits.Evaluate(share.X())
	actual := commits.group.Generator().ScalarMult(share.Value)
	return expected.Equal(actual)
}

// GroupBundle is the output of a GroupScheme split
type GroupBundle struct {
	Shares       []Share
	Commits      *GroupCommitments
	Secret       []byte
	SecretLength int
}

// Threshold returns the number of shares needed to reconstruct
func (b *GroupBundle) Threshold() int {
	return b.Commits.Threshold()
}

// Verify checks a single share against the bundle's commitments
func (b *GroupBundle) Verify(share Share) bool {
	return VerifyGroupShare(share, b.Commits)
}

// Reconstruct recovers the secret, enforcing the threshold and restoring the
// recorded length
func (b *GroupBundle) Reconstruct(shares []Share) ([]byte, error) {
	field, err := NewField(b.Commits.group.Order())
	if err != nil {
		return nil, err
	}
	secret, err := ReconstructThreshold(shares, b.Threshold(), field)
	if err != nil {
		return nil, err
	}
	return PadSecret(secret, b.SecretLength), nil
}

// Zeroize clears the plaintext echo
func (b *GroupBundle) Zeroize() {
	for i := range b.Secret {
		b.Secret[i] = 0
	}
	b.Secret = nil
}

// GroupScheme deals shares in Z_order of a prime-order group and publishes
// exponent commitments, so the commitment vector hides the secret under the
// discrete logarithm assumption.
type GroupScheme struct {
	group Group
	field *Field
	opts  *options
}

// NewGroupScheme creates a scheme over group
func NewGroupScheme(group Group, opts ...Option) (*GroupScheme, error) {
	if group == nil {
		return nil, ErrUnsupportedGroup.WithDetails("group is nil")
	}
	field, err := NewField(group.Order())
	if err != nil {
		return nil, err
	}
	return &GroupScheme{group: group, field: field, opts: applyOptions(opts)}, nil
}

// Group returns the commitment group
func (gs *GroupScheme) Group() Group {
	return gs.group
}

// Field returns Z_order
func (gs *GroupScheme) Field() *Field {
	return gs.field
}

// Split deals secret into n shares and commits to the polynomial in the group
func (gs *GroupScheme) Split(secret []byte, n, threshold int) (*GroupBundle, error) {
	started := time.Now()
	name := gs.group.Name()
	builder := NewAuditEventBuilder(AuditEventSplit).
		WithGroup(name).
		WithField(gs.field).
		WithParameters(n, threshold)

	secretInt := new(big.Int).SetBytes(secret)
	defer zeroizeInt(secretInt)

	polynomial, shares, err := dealPolynomial(secretInt, n, threshold, gs.field, gs.opts.random)
	if err != nil {
		gs.opts.metrics.observe(OpSplit, name, StatusError, started)
		reportFailure(gs.opts.audit, builder, err)
		return nil, err
	}
	defer polynomial.Zeroize()

	commits := CommitPolynomial(gs.group, polynomial)

	gs.opts.metrics.observe(OpSplit, name, StatusSuccess, started)
	gs.opts.metrics.dealt(name, n)
	gs.opts.audit.OnSplit(builder.Build())
	gs.opts.logger.Debug("secret split with exponent commitments",
		zap.String("group", name), zap.Int("shares", n), zap.Int("threshold", threshold))

	echo := make([]byte, len(secret))
	copy(echo, secret)
	return &GroupBundle{
		Shares:       shares,
		Commits:      commits,
		Secret:       echo,
		SecretLength: len(secret),
	}, nil
}

// Verify checks share against commits
func (gs *GroupScheme) Verify(share Share, commits *GroupCommitments) bool {
	started := time.Now()
	ok := VerifyGroupShare(share, commits)

	status := StatusValid
	if !ok {
		status = StatusInvalid
	}
	gs.opts.metrics.observe(OpVerify, gs.group.Name(), status, started)
	gs.opts.audit.OnVerification(NewAuditEventBuilder(AuditEventVerification).
		WithGroup(gs.group.Name()).
		WithField(gs.field).
		WithParameters(0, commitmentCount(commits)).
		WithShares([]Share{share}).
		WithMetadata("valid", ok).
		Build())
	return ok
}

func commitmentCount(commits *GroupCommitments) int {
	if commits == nil {
		return 0
	}
	return commits.Threshold()
}

// Reconstruct recovers the secret from shares by interpolation in Z_order
func (gs *GroupScheme) Reconstruct(shares []Share) ([]byte, error) {
	started := time.Now()
	builder := NewAuditEventBuilder(AuditEventReconstruction).
		WithGroup(gs.group.Name()).
		WithField(gs.field).
		WithShares(shares)

	secret, err := ReconstructSecret(shares, gs.field)
	if err != nil {
		gs.opts.metrics.observe(OpReconstruct, gs.group.Name(), StatusError, started)
		reportFailure(gs.opts.audit, builder, err)
		return nil, err
	}
	gs.opts.metrics.observe(OpReconstruct, gs.group.Name(), StatusSuccess, started)
	gs.opts.audit.OnReconstruction(builder.Build())
	return secret, nil
}
