package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/canopy-network/canopy/lib/vss"
)

// EnvPrefix is the prefix for environment overrides, e.g. VSS_THRESHOLD=3
const EnvPrefix = "VSS"

// Output formats
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Signers
const (
	SignerNone    = ""
	SignerSchnorr = "schnorr"
	SignerBLS     = "bls"
)

// Config holds the dealer settings
type Config struct {
	// Group is "prime" for the prime field scheme or a commitment group name
	Group string `mapstructure:"group" yaml:"group"`

	// PrimeBits is the modulus size when Modulus is empty
	PrimeBits int `mapstructure:"prime_bits" yaml:"prime_bits"`

	// Modulus is a fixed decimal prime; empty means generate one
	Modulus string `mapstructure:"modulus" yaml:"modulus"`

	Shares    int `mapstructure:"shares" yaml:"shares"`
	Threshold int `mapstructure:"threshold" yaml:"threshold"`

	// Seed makes coefficient sampling reproducible. Never set it for real secrets.
	Seed string `mapstructure:"seed" yaml:"seed"`

	// Signer authenticates broadcast commitments: "", "schnorr" or "bls"
	Signer string `mapstructure:"signer" yaml:"signer"`

	Output  string        `mapstructure:"output" yaml:"output"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Group:     vss.PrimeFieldGroup,
		PrimeBits: vss.DefaultPrimeBits,
		Shares:    4,
		Threshold: 2,
		Output:    OutputText,
		Logging:   LoggingConfig{Level: "warn"},
	}
}

// New returns a viper instance carrying the defaults and environment binding
func New() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault("group", d.Group)
	v.SetDefault("prime_bits", d.PrimeBits)
	v.SetDefault("modulus", d.Modulus)
	v.SetDefault("shares", d.Shares)
	v.SetDefault("threshold", d.Threshold)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("signer", d.Signer)
	v.SetDefault("output", d.Output)
	v.SetDefault("logging.level", d.Logging.Level)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds command flags onto config keys. Flag names use dashes.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var errs []error
	flags.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if f.Name == "log-level" {
			key = "logging.level"
		}
		if err := v.BindPFlag(key, f); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}

// Load reads path (if non-empty) into v and decodes and validates the result
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings for consistency
func (c *Config) Validate() error {
	if c.Group != vss.PrimeFieldGroup {
		if _, err := vss.GroupByName(vss.GroupType(c.Group)); err != nil {
			return fmt.Errorf("group %q: %w", c.Group, err)
		}
	} else if c.Modulus == "" && c.PrimeBits < vss.MinPrimeBits {
		return fmt.Errorf("prime_bits must be at least %d, got %d", vss.MinPrimeBits, c.PrimeBits)
	}

	if c.Modulus != "" {
		if c.Group != vss.PrimeFieldGroup {
			return fmt.Errorf("modulus is only used with group %q", vss.PrimeFieldGroup)
		}
		q, err := vss.DecodeElement(c.Modulus)
		if err != nil {
			return fmt.Errorf("modulus: %w", err)
		}
		if _, err := vss.NewField(q); err != nil {
			return fmt.Errorf("modulus: %w", err)
		}
	}

	if err := vss.ValidateSplitParameters(c.Shares, c.Threshold); err != nil {
		return err
	}

	switch c.Signer {
	case SignerNone, SignerSchnorr, SignerBLS:
	default:
		return fmt.Errorf("unknown signer %q", c.Signer)
	}

	switch c.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("unknown output format %q", c.Output)
	}
	return nil
}
