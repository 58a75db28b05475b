package cli

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/canopy-network/canopy/lib/vss"
	"github.com/canopy-network/canopy/lib/vss/internal/config"
)

// Printer handles formatted output
type Printer struct {
	format string
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{format: format, writer: writer}
}

// VerifyReport is the outcome of checking a bundle
type VerifyReport struct {
	Group     string `json:"group" yaml:"group"`
	Threshold int    `json:"threshold" yaml:"threshold"`
	Checked   int    `json:"checked" yaml:"checked"`
	Invalid   []int  `json:"invalid" yaml:"invalid"`
	Signature string `json:"signature,omitempty" yaml:"signature,omitempty"`
}

// Valid reports whether every share verified and any signature checked out
func (r *VerifyReport) Valid() bool {
	return len(r.Invalid) == 0 && r.Signature != "invalid"
}

// SecretReport is a reconstructed secret
type SecretReport struct {
	Secret string `json:"secret" yaml:"secret"`
	Hex    string `json:"hex" yaml:"hex"`
	Shares []int  `json:"shares" yaml:"shares"`
}

func newSecretReport(secret []byte, shares []vss.Share) *SecretReport {
	indices := make([]int, len(shares))
	for i, s := range shares {
		indices[i] = s.Index
	}
	report := &SecretReport{Hex: hex.EncodeToString(secret), Shares: indices}
	if utf8.Valid(secret) {
		report.Secret = string(secret)
	}
	return report
}

// DemoReport summarises a full dealer to party round trip
type DemoReport struct {
	Group         string        `json:"group" yaml:"group"`
	Modulus       string        `json:"modulus" yaml:"modulus"`
	Shares        int           `json:"shares" yaml:"shares"`
	Threshold     int           `json:"threshold" yaml:"threshold"`
	Verified      []int         `json:"verified" yaml:"verified"`
	Signed        bool          `json:"signed" yaml:"signed"`
	Reconstructed *SecretReport `json:"reconstructed" yaml:"reconstructed"`
}

// PrintParams prints public setup values
func (p *Printer) PrintParams(params *vss.Parameters) error {
	out := map[string]interface{}{
		"modulus":      vss.EncodeElement(params.Modulus),
		"generator":    vss.EncodeElement(params.Generator),
		"modulus_bits": params.Modulus.BitLen(),
	}
	switch p.format {
	case config.OutputJSON:
		return p.printJSON(out)
	case config.OutputYAML:
		return p.printYAML(out)
	default:
		fmt.Fprintf(p.writer, "Modulus (%d bits): %s\n", params.Modulus.BitLen(), out["modulus"])
		fmt.Fprintf(p.writer, "Generator: %s\n", out["generator"])
		return nil
	}
}

// PrintBundle prints a split
func (p *Printer) PrintBundle(eb *vss.EncodedBundle) error {
	switch p.format {
	case config.OutputJSON:
		return p.printJSON(eb)
	case config.OutputYAML:
		return p.printYAML(eb)
	default:
		pub := eb.Public
		fmt.Fprintf(p.writer, "Group:     %s\n", pub.Group)
		fmt.Fprintf(p.writer, "Modulus:   %s\n", pub.Modulus)
		fmt.Fprintf(p.writer, "Threshold: %d of %d\n", pub.Threshold, len(eb.Shares))
		fmt.Fprintln(p.writer, "Commitments:")
		for i, c := range pub.Values {
			fmt.Fprintf(p.writer, "  C%d = %s\n", i, c)
		}
		if pub.Signature != nil {
			fmt.Fprintf(p.writer, "Signature: %s by %s\n", pub.Signature.Algorithm, pub.Signature.PublicKey)
		}
		fmt.Fprintln(p.writer, "Shares:")
		for _, s := range eb.Shares {
			fmt.Fprintf(p.writer, "  %d: %s\n", s.Index, s.Value)
		}
		return nil
	}
}

// PrintVerify prints a verification report
func (p *Printer) PrintVerify(r *VerifyReport) error {
	switch p.format {
	case config.OutputJSON:
		return p.printJSON(r)
	case config.OutputYAML:
		return p.printYAML(r)
	default:
		if r.Valid() {
			fmt.Fprintf(p.writer, "OK: %d shares verified against %s commitments\n", r.Checked, r.Group)
		} else {
			fmt.Fprintf(p.writer, "FAILED: invalid shares %v\n", r.Invalid)
		}
		if r.Signature != "" {
			fmt.Fprintf(p.writer, "Signature: %s\n", r.Signature)
		}
		return nil
	}
}

// PrintSecret prints a reconstructed secret
func (p *Printer) PrintSecret(r *SecretReport) error {
	switch p.format {
	case config.OutputJSON:
		return p.printJSON(r)
	case config.OutputYAML:
		return p.printYAML(r)
	default:
		if r.Secret != "" {
			fmt.Fprintln(p.writer, r.Secret)
		} else {
			fmt.Fprintln(p.writer, r.Hex)
		}
		return nil
	}
}

// PrintDemo prints a demo run
func (p *Printer) PrintDemo(r *DemoReport) error {
	switch p.format {
	case config.OutputJSON:
		return p.printJSON(r)
	case config.OutputYAML:
		return p.printYAML(r)
	default:
		fmt.Fprintf(p.writer, "Dealt %d shares (threshold %d) over %s\n", r.Shares, r.Threshold, r.Group)
		fmt.Fprintf(p.writer, "Verified by parties: %v\n", r.Verified)
		if r.Signed {
			fmt.Fprintln(p.writer, "Commitments signed by dealer")
		}
		fmt.Fprintf(p.writer, "Reconstructed from %v: %q\n", r.Reconstructed.Shares, r.Reconstructed.Secret)
		return nil
	}
}

// PrintError prints an error, including the structured fields of a VSSError
func (p *Printer) PrintError(err error) error {
	var vssErr *vss.VSSError
	if p.format == config.OutputJSON && errors.As(err, &vssErr) {
		return p.printJSON(map[string]interface{}{"error": vssErr})
	}
	_, werr := fmt.Fprintf(p.writer, "Error: %v\n", err)
	return werr
}

func (p *Printer) printJSON(v interface{}) error {
	enc := json.NewEncoder(p.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *Printer) printYAML(v interface{}) error {
	enc := yaml.NewEncoder(p.writer)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
