package cli

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/canopy-network/canopy/lib/vss"
	"github.com/canopy-network/canopy/lib/vss/internal/config"
)

// dealt is a split of either flavour
type dealt interface {
	Verify(share vss.Share) bool
	Reconstruct(shares []vss.Share) ([]byte, error)
	Encode() *vss.EncodedBundle
	Threshold() int
}

func (a *app) random() (io.Reader, error) {
	if a.cfg.Seed == "" {
		return rand.Reader, nil
	}
	a.logger.Warn("deterministic seed in use; shares are reproducible")
	return vss.NewDeterministicReader(vss.DeriveSeed([]byte(a.cfg.Seed)), "vss-cli")
}

func (a *app) options(r io.Reader) []vss.Option {
	return []vss.Option{
		vss.WithRandom(r),
		vss.WithLogger(a.logger),
		vss.WithAuditHandler(vss.NewLoggingAuditHandler(a.logger)),
	}
}

// modulus returns the configured prime or samples a fresh one
func (a *app) modulus(r io.Reader) (*vss.Parameters, error) {
	if a.cfg.Modulus != "" {
		q, err := vss.DecodeElement(a.cfg.Modulus)
		if err != nil {
			return nil, err
		}
		return &vss.Parameters{Modulus: q}, nil
	}
	return vss.GenerateParameters(r, a.cfg.PrimeBits)
}

// split deals secret according to the loaded configuration
func (a *app) split(secret []byte) (dealt, error) {
	if assessment := vss.AssessParameters(a.cfg.Shares, a.cfg.Threshold); len(assessment.Warnings) > 0 {
		a.logger.Warn("weak split parameters",
			zap.Strings("warnings", assessment.Warnings),
			zap.String("security_level", string(assessment.SecurityLevel)))
	}

	r, err := a.random()
	if err != nil {
		return nil, err
	}

	if a.cfg.Group == vss.PrimeFieldGroup {
		params, err := a.modulus(r)
		if err != nil {
			return nil, err
		}
		scheme, err := vss.NewScheme(params.Modulus, a.options(r)...)
		if err != nil {
			return nil, err
		}
		bundle, err := scheme.Split(secret, a.cfg.Shares, a.cfg.Threshold)
		if err != nil {
			return nil, err
		}
		bundle.Zeroize()
		return bundle, nil
	}

	group, err := vss.GroupByName(vss.GroupType(a.cfg.Group))
	if err != nil {
		return nil, err
	}
	scheme, err := vss.NewGroupScheme(group, a.options(r)...)
	if err != nil {
		return nil, err
	}
	bundle, err := scheme.Split(secret, a.cfg.Shares, a.cfg.Threshold)
	if err != nil {
		return nil, err
	}
	bundle.Zeroize()
	return bundle, nil
}

// sign attaches a dealer signature when a signer is configured
func (a *app) sign(encoded *vss.EncodedBundle) error {
	var (
		signer vss.DealerSigner
		err    error
	)
	switch a.cfg.Signer {
	case config.SignerNone:
		return nil
	case config.SignerSchnorr:
		signer, err = vss.NewSchnorrDealer()
	case config.SignerBLS:
		signer, err = vss.NewBLSDealer()
	default:
		return fmt.Errorf("unknown signer %q", a.cfg.Signer)
	}
	if err != nil {
		return err
	}
	return vss.SignCommitments(encoded.Public, signer)
}

func decodeDealt(eb *vss.EncodedBundle) (dealt, error) {
	if eb == nil || eb.Public == nil {
		return nil, vss.ErrEncoding.WithDetails("bundle has no commitments")
	}
	if eb.Public.Group == vss.PrimeFieldGroup {
		return vss.DecodeBundle(eb)
	}
	return vss.DecodeGroupBundle(eb)
}

// readBundle loads a bundle from a .json, .yaml/.yml or .pb file
func readBundle(path string) (*vss.EncodedBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pb", ".bin":
		return vss.UnmarshalBundle(data)
	case ".yaml", ".yml":
		eb := &vss.EncodedBundle{}
		if err := yaml.Unmarshal(data, eb); err != nil {
			return nil, vss.ErrEncoding.WithCause(err)
		}
		return eb, nil
	default:
		eb := &vss.EncodedBundle{}
		if err := json.Unmarshal(data, eb); err != nil {
			return nil, vss.ErrEncoding.WithCause(err)
		}
		return eb, nil
	}
}

// writeBundle stores a bundle, choosing the codec from the file extension
func writeBundle(path string, eb *vss.EncodedBundle) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pb", ".bin":
		data, err = vss.MarshalBundle(eb)
	case ".yaml", ".yml":
		data, err = yaml.Marshal(eb)
	default:
		data, err = json.MarshalIndent(eb, "", "  ")
	}
	if err != nil {
		return vss.ErrEncoding.WithCause(err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write bundle: %w", err)
	}
	return nil
}

// selectShares picks the shares with the given indices, or all when indices is empty
func selectShares(shares []vss.Share, indices []int) ([]vss.Share, error) {
	if len(indices) == 0 {
		return shares, nil
	}
	byIndex := make(map[int]vss.Share, len(shares))
	for _, s := range shares {
		byIndex[s.Index] = s
	}
	out := make([]vss.Share, 0, len(indices))
	for _, i := range indices {
		s, ok := byIndex[i]
		if !ok {
			return nil, vss.ErrInvalidIndex.WithDetails("no share with index %d", i)
		}
		out = append(out, s)
	}
	return out, nil
}
