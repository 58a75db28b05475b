package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopy-network/canopy/lib/vss"
)

// mersenne127 is 2^127 - 1
const mersenne127 = "170141183460469231731687303715884105727"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand(&out)
	root.SetArgs(append(args, "--log-level", "error"))
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err)
	return out
}

func TestSplitSeededIsReproducible(t *testing.T) {
	args := []string{"split", "test", "--modulus", mersenne127, "-n", "4", "-t", "2", "--seed", "fixture", "-o", "json"}
	first := mustRun(t, args...)
	assert.Equal(t, first, mustRun(t, args...))

	var eb vss.EncodedBundle
	require.NoError(t, json.Unmarshal([]byte(first), &eb))
	assert.Equal(t, vss.PrimeFieldGroup, eb.Public.Group)
	assert.Equal(t, mersenne127, eb.Public.Modulus)
	assert.Len(t, eb.Public.Values, 2)
	assert.Len(t, eb.Shares, 4)

	bundle, err := vss.DecodeBundle(&eb)
	require.NoError(t, err)
	assert.Empty(t, bundle.VerifyAll())
}

func TestSplitFileRoundTrip(t *testing.T) {
	cases := []struct {
		file   string
		group  string
		signer string
	}{
		{"bundle.json", vss.PrimeFieldGroup, "schnorr"},
		{"bundle.yaml", string(vss.GroupSecp256k1), "schnorr"},
		{"bundle.pb", string(vss.GroupEd25519), "schnorr"},
		{"bundle.json", vss.PrimeFieldGroup, "bls"},
		{"bundle.pb", string(vss.GroupBN256), "bls"},
	}
	for _, tc := range cases {
		t.Run(tc.signer+"/"+tc.file, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tc.file)
			args := []string{"split", "test", "--group", tc.group, "-n", "5", "-t", "3", "--signer", tc.signer, "--out", path}
			if tc.group == vss.PrimeFieldGroup {
				args = append(args, "--modulus", mersenne127)
			}
			mustRun(t, args...)

			out := mustRun(t, "verify", "--bundle", path)
			assert.Contains(t, out, "OK: 5 shares verified")
			assert.Contains(t, out, "Signature: valid")

			out = mustRun(t, "reconstruct", "--bundle", path, "--indices", "2,4,5", "-o", "json")
			var report SecretReport
			require.NoError(t, json.Unmarshal([]byte(out), &report))
			assert.Equal(t, "test", report.Secret)
			assert.Equal(t, []int{2, 4, 5}, report.Shares)

			_, err := run(t, "reconstruct", "--bundle", path, "--indices", "1,2")
			assert.ErrorIs(t, err, vss.ErrInsufficientShares)

			_, err = run(t, "reconstruct", "--bundle", path, "--indices", "9")
			assert.ErrorIs(t, err, vss.ErrInvalidIndex)
		})
	}
}

func TestVerifyTextualShare(t *testing.T) {
	out := mustRun(t, "verify", "--share", "26", "--index", "3", "--commitments", "5, 7", "--modulus", "101")
	assert.Contains(t, out, "OK")

	out, err := run(t, "verify", "--share", "27", "--index", "3", "--commitments", "5,7", "--modulus", "101", "-o", "json")
	require.Error(t, err)
	var report VerifyReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, []int{3}, report.Invalid)

	_, err = run(t, "verify", "--share", "abc", "--index", "3", "--commitments", "5,7", "--modulus", "101")
	assert.True(t, vss.IsDecodeError(err))
}

func TestDemo(t *testing.T) {
	cases := []struct{ group, signer string }{
		{vss.PrimeFieldGroup, "schnorr"},
		{string(vss.GroupBN256), "bls"},
	}
	for _, tc := range cases {
		group := tc.group
		t.Run(group, func(t *testing.T) {
			out := mustRun(t, "demo", "shared", "--group", group, "-n", "4", "-t", "3", "--signer", tc.signer, "-o", "json")
			var report DemoReport
			require.NoError(t, json.Unmarshal([]byte(out), &report))
			assert.Equal(t, group, report.Group)
			assert.Equal(t, []int{1, 2, 3, 4}, report.Verified)
			assert.True(t, report.Signed)
			require.NotNil(t, report.Reconstructed)
			assert.Equal(t, "shared", report.Reconstructed.Secret)
			assert.Equal(t, []int{1, 2, 3}, report.Reconstructed.Shares)
		})
	}

	out := mustRun(t, "demo")
	assert.Contains(t, out, `Reconstructed from [1 2]: "test"`)
}

func TestParams(t *testing.T) {
	out := mustRun(t, "params", "--prime-bits", "64", "--seed", "p", "-o", "json")
	assert.Equal(t, out, mustRun(t, "params", "--prime-bits", "64", "--seed", "p", "-o", "json"))

	var params map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &params))
	assert.Equal(t, 64.0, params["modulus_bits"])

	_, err := run(t, "params", "--prime-bits", "8")
	assert.Error(t, err)
}

func TestInvalidParameters(t *testing.T) {
	_, err := run(t, "split", "test", "-n", "2", "-t", "3")
	require.Error(t, err)
	assert.True(t, vss.IsParameterError(err))

	_, err = run(t, "split", "test", "--group", "p384")
	assert.ErrorIs(t, err, vss.ErrUnsupportedGroup)

	_, err = run(t, "split", "test", "-o", "xml")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out := mustRun(t, "version")
	assert.True(t, strings.HasPrefix(out, "vss version "+Version))

	var info map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, "version", "-o", "json")), &info))
	assert.Equal(t, Version, info["version"])
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter("json", &buf).PrintError(vss.ErrThresholdTooHigh.WithContext("threshold", 3)))
	assert.Contains(t, buf.String(), `"code"`)

	buf.Reset()
	require.NoError(t, NewPrinter("text", &buf).PrintError(vss.ErrThresholdTooHigh))
	assert.True(t, strings.HasPrefix(buf.String(), "Error: "))
}
