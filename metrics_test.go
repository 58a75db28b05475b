package vss

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	s, err := NewScheme(testModulus(t), WithMetrics(m))
	require.NoError(t, err)

	bundle, err := s.Split([]byte("metrics"), 4, 2)
	require.NoError(t, err)
	assert.True(t, s.Verify(bundle.Shares[0], bundle.Commits))
	bad := NewShare(1, bundle.Shares[1].Value)
	assert.False(t, s.Verify(bad, bundle.Commits))
	_, err = s.Split([]byte("metrics"), 1, 2)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(OpSplit, PrimeFieldGroup, StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(OpSplit, PrimeFieldGroup, StatusError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(OpVerify, PrimeFieldGroup, StatusValid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(OpVerify, PrimeFieldGroup, StatusInvalid)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.shares.WithLabelValues(PrimeFieldGroup)))

	gs, err := NewGroupScheme(NewEd25519Group(), WithMetrics(m))
	require.NoError(t, err)
	_, err = gs.Split([]byte("metrics"), 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.shares.WithLabelValues(string(GroupEd25519))))
}

func TestMetricsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)
	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observe(OpSplit, PrimeFieldGroup, StatusSuccess, time.Now())
		m.dealt(PrimeFieldGroup, 3)
	})

	unregistered, err := NewMetrics(nil)
	require.NoError(t, err)
	assert.NotNil(t, unregistered)
}
