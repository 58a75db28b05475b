package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/canopy-network/canopy/lib/vss"
	"github.com/canopy-network/canopy/lib/vss/internal/config"
)

// app carries the state shared by every subcommand of one invocation
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
	out     io.Writer
}

// NewRootCommand builds the vss command tree writing results to out
func NewRootCommand(out io.Writer) *cobra.Command {
	a := &app{v: config.New(), out: out}
	defaults := config.Default()

	root := &cobra.Command{
		Use:   "vss",
		Short: "Feldman verifiable secret sharing",
		Long: `vss splits a secret into n shares so that any threshold of them
recover it and every share can be checked against public commitments.

Supported commitment groups:
  - prime:     random prime field, coefficient commitments
  - secp256k1: exponent commitments on secp256k1
  - ed25519:   exponent commitments on the ed25519 subgroup
  - bn256:     exponent commitments on BN256 G1`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (yaml)")
	root.PersistentFlags().StringP("output", "o", defaults.Output, "output format (text, json, yaml)")
	root.PersistentFlags().String("log-level", defaults.Logging.Level, "log level (debug, info, warn, error)")

	root.AddCommand(
		newParamsCmd(a),
		newSplitCmd(a),
		newVerifyCmd(a),
		newReconstructCmd(a),
		newDemoCmd(a),
		newVersionCmd(a),
	)
	return root
}

// Execute runs the root command against stdout
func Execute() error {
	root := NewRootCommand(os.Stdout)
	if err := root.Execute(); err != nil {
		printer := NewPrinter(config.OutputText, os.Stderr)
		_ = printer.PrintError(err) // best-effort on stderr
		return err
	}
	return nil
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	logger, err := vss.NewLogger(cfg.Logging.Level)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) printer() *Printer {
	return NewPrinter(a.cfg.Output, a.out)
}

// addDealerFlags registers the split parameters shared by split and demo
func addDealerFlags(cmd *cobra.Command) {
	d := config.Default()
	cmd.Flags().String("group", d.Group, "commitment group (prime, secp256k1, ed25519, bn256)")
	cmd.Flags().Int("prime-bits", d.PrimeBits, "modulus bit length for the prime group")
	cmd.Flags().String("modulus", d.Modulus, "fixed decimal prime modulus")
	cmd.Flags().IntP("shares", "n", d.Shares, "number of shares")
	cmd.Flags().IntP("threshold", "t", d.Threshold, "shares needed to reconstruct")
	cmd.Flags().String("seed", d.Seed, "deterministic seed (testing only)")
	cmd.Flags().String("signer", d.Signer, "sign commitments with schnorr or bls")
}
