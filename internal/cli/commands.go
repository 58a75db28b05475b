package cli

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/canopy-network/canopy/lib/vss"
	"github.com/canopy-network/canopy/lib/vss/internal/config"
)

// Version information (injected at build time via -ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func newParamsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Generate a prime modulus and generator",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.random()
			if err != nil {
				return err
			}
			params, err := vss.GenerateParameters(r, a.cfg.PrimeBits)
			if err != nil {
				return err
			}
			vss.NewLoggingAuditHandler(a.logger).OnParameterSetup(
				vss.NewAuditEventBuilder(vss.AuditEventParameterSetup).
					WithGroup(vss.PrimeFieldGroup).
					WithMetadata("modulus_bits", params.Modulus.BitLen()).
					Build())
			return a.printer().PrintParams(params)
		},
	}
	cmd.Flags().Int("prime-bits", config.Default().PrimeBits, "modulus bit length")
	cmd.Flags().String("seed", "", "deterministic seed (testing only)")
	return cmd
}

func newSplitCmd(a *app) *cobra.Command {
	var outFile string
	cmd := &cobra.Command{
		Use:   "split <secret>",
		Short: "Split a secret into verifiable shares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := a.split([]byte(args[0]))
			if err != nil {
				return err
			}
			encoded := bundle.Encode()
			if err := a.sign(encoded); err != nil {
				return err
			}
			if outFile != "" {
				if err := writeBundle(outFile, encoded); err != nil {
					return err
				}
				a.logger.Info("bundle written", zap.String("path", outFile))
			}
			return a.printer().PrintBundle(encoded)
		},
	}
	addDealerFlags(cmd)
	cmd.Flags().StringVar(&outFile, "out", "", "write the bundle to a .json, .yaml or .pb file")
	return cmd
}

func newVerifyCmd(a *app) *cobra.Command {
	var (
		bundleFile string
		share      string
		index      int64
		commits    string
		modulus    string
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify shares against the dealer's commitments",
		Long: `Verify every share in a bundle file, or a single share given as decimal
text with --share, --index, --commitments and --modulus.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if bundleFile == "" {
				ok, err := vss.VerifyEncodedShare(share, index, splitList(commits), modulus)
				if err != nil {
					return err
				}
				report := &VerifyReport{Group: vss.PrimeFieldGroup, Threshold: len(splitList(commits)), Checked: 1}
				if !ok {
					report.Invalid = []int{int(index)}
				}
				return a.finishVerify(report)
			}

			eb, err := readBundle(bundleFile)
			if err != nil {
				return err
			}
			d, err := decodeDealt(eb)
			if err != nil {
				return err
			}
			shares, err := vss.DecodeShares(eb.Shares)
			if err != nil {
				return err
			}
			report := &VerifyReport{Group: eb.Public.Group, Threshold: d.Threshold(), Checked: len(shares)}
			for _, s := range shares {
				if !d.Verify(s) {
					report.Invalid = append(report.Invalid, s.Index)
				}
			}
			if eb.Public.Signature != nil {
				report.Signature = "valid"
				if err := vss.VerifyEmbeddedSignature(eb.Public); err != nil {
					a.logger.Warn("commitment signature check failed", zap.Error(err))
					report.Signature = "invalid"
				}
			}
			return a.finishVerify(report)
		},
	}
	cmd.Flags().StringVar(&bundleFile, "bundle", "", "bundle file (.json, .yaml or .pb)")
	cmd.Flags().StringVar(&share, "share", "", "share value (decimal)")
	cmd.Flags().Int64Var(&index, "index", 0, "share index")
	cmd.Flags().StringVar(&commits, "commitments", "", "comma separated commitments (decimal)")
	cmd.Flags().StringVar(&modulus, "modulus", "", "prime modulus (decimal)")
	return cmd
}

func (a *app) finishVerify(report *VerifyReport) error {
	if err := a.printer().PrintVerify(report); err != nil {
		return err
	}
	if !report.Valid() {
		return fmt.Errorf("verification failed")
	}
	return nil
}

func newReconstructCmd(a *app) *cobra.Command {
	var (
		bundleFile string
		indices    []int
	)
	cmd := &cobra.Command{
		Use:   "reconstruct",
		Short: "Recover the secret from a threshold of shares",
		RunE: func(cmd *cobra.Command, args []string) error {
			eb, err := readBundle(bundleFile)
			if err != nil {
				return err
			}
			d, err := decodeDealt(eb)
			if err != nil {
				return err
			}
			all, err := vss.DecodeShares(eb.Shares)
			if err != nil {
				return err
			}
			shares, err := selectShares(all, indices)
			if err != nil {
				return err
			}
			secret, err := d.Reconstruct(shares)
			if err != nil {
				return err
			}
			return a.printer().PrintSecret(newSecretReport(secret, shares))
		},
	}
	cmd.Flags().StringVar(&bundleFile, "bundle", "", "bundle file (.json, .yaml or .pb)")
	cmd.Flags().IntSliceVar(&indices, "indices", nil, "share indices to use (default all)")
	_ = cmd.MarkFlagRequired("bundle")
	return cmd
}

func newDemoCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo [secret]",
		Short: "Deal, distribute, verify and reconstruct in process",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := "test"
			if len(args) == 1 {
				secret = args[0]
			}
			report, err := a.demo(cmd.Context(), []byte(secret))
			if err != nil {
				return err
			}
			return a.printer().PrintDemo(report)
		},
	}
	addDealerFlags(cmd)
	return cmd
}

// demo runs a dealer and n in-process parties over a MemoryTransport
func (a *app) demo(ctx context.Context, secret []byte) (*DemoReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	bundle, err := a.split(secret)
	if err != nil {
		return nil, err
	}
	encoded := bundle.Encode()
	if err := a.sign(encoded); err != nil {
		return nil, err
	}

	transport := vss.NewMemoryTransport(a.cfg.Shares)
	if err := vss.Distribute(ctx, transport, staticBundle{encoded}); err != nil {
		return nil, err
	}

	public, err := transport.Commitments(ctx)
	if err != nil {
		return nil, err
	}
	if public.Signature != nil {
		if err := vss.VerifyEmbeddedSignature(public); err != nil {
			return nil, err
		}
	}
	received, err := decodeDealt(&vss.EncodedBundle{Public: public})
	if err != nil {
		return nil, err
	}

	report := &DemoReport{
		Group:     public.Group,
		Modulus:   public.Modulus,
		Shares:    a.cfg.Shares,
		Threshold: a.cfg.Threshold,
		Signed:    public.Signature != nil,
	}
	var held []vss.Share
	for party := 1; party <= a.cfg.Shares; party++ {
		es, err := transport.Receive(ctx, party)
		if err != nil {
			return nil, err
		}
		share, err := vss.DecodeShare(es)
		if err != nil {
			return nil, err
		}
		if !received.Verify(share) {
			a.logger.Warn("party rejected share", zap.Int("party", party))
			continue
		}
		report.Verified = append(report.Verified, party)
		held = append(held, share)
	}

	if len(held) < received.Threshold() {
		return nil, vss.ErrInsufficientShares.WithDetails("only %d shares verified", len(held))
	}
	subset := held[:received.Threshold()]
	recovered, err := received.Reconstruct(subset)
	if err != nil {
		return nil, err
	}
	report.Reconstructed = newSecretReport(recovered, subset)
	return report, nil
}

// staticBundle distributes an already encoded bundle
type staticBundle struct {
	encoded *vss.EncodedBundle
}

func (s staticBundle) Encode() *vss.EncodedBundle { return s.encoded }

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := map[string]interface{}{
				"version":    Version,
				"commit":     GitCommit,
				"build_date": BuildDate,
				"go_version": runtime.Version(),
				"os":         runtime.GOOS,
				"arch":       runtime.GOARCH,
			}
			p := a.printer()
			switch a.cfg.Output {
			case config.OutputJSON:
				return p.printJSON(info)
			case config.OutputYAML:
				return p.printYAML(info)
			}
			fmt.Fprintf(a.out, "vss version %s\n", Version)
			fmt.Fprintf(a.out, "Git commit: %s\n", GitCommit)
			fmt.Fprintf(a.out, "Build date: %s\n", BuildDate)
			fmt.Fprintf(a.out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(a.out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
