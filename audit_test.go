package vss

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAuditEventBuilder(t *testing.T) {
	f := testField(t)
	event := NewAuditEventBuilder(AuditEventSplit).
		WithGroup(PrimeFieldGroup).
		WithField(f).
		WithParameters(5, 3).
		WithShares([]Share{NewShare(1, nil), NewShare(4, nil)}).
		WithMetadata("caller", "test").
		Build()

	_, err := uuid.Parse(event.EventID)
	require.NoError(t, err)
	assert.Equal(t, AuditEventSplit, event.EventType)
	assert.True(t, event.Success)
	assert.Equal(t, 256, event.ModulusBits)
	assert.Equal(t, 5, event.ShareCount)
	assert.Equal(t, 3, event.Threshold)
	assert.Equal(t, []int{1, 4}, event.ShareIndices)
	assert.Equal(t, "test", event.Metadata["caller"])
	assert.False(t, event.Timestamp.IsZero())

	failed := NewAuditEventBuilder(AuditEventReconstruction).WithError(errors.New("boom")).Build()
	assert.False(t, failed.Success)
	assert.Equal(t, "boom", failed.Error)
	assert.NotEqual(t, event.EventID, failed.EventID)
}

func TestAuditEventCarriesNoShareValues(t *testing.T) {
	audit := &recordingAudit{}
	s, err := NewScheme(testModulus(t), WithAuditHandler(audit))
	require.NoError(t, err)

	bundle, err := s.Split([]byte("do not log me"), 3, 2)
	require.NoError(t, err)
	_, err = s.Reconstruct(bundle.Shares[:2])
	require.NoError(t, err)

	for _, event := range append(audit.splits, audit.reconstructions...) {
		raw, err := json.Marshal(event)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "do not log me")
		for _, share := range bundle.Shares {
			assert.NotContains(t, string(raw), share.Value.String())
		}
	}
}

func TestLoggingAuditHandler(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := NewLoggingAuditHandler(zap.New(core))

	handler.OnSplit(NewAuditEventBuilder(AuditEventSplit).WithParameters(4, 2).Build())
	handler.OnValidationFailure(NewAuditEventBuilder(AuditEventValidationFailure).
		WithError(ErrThresholdTooHigh).Build())

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "split", entries[0].ContextMap()["event_type"])
	assert.Equal(t, int64(2), entries[0].ContextMap()["threshold"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Contains(t, entries[1].ContextMap()["error"], "THRESHOLD_TOO_HIGH")
}

func TestNullAuditHandler(t *testing.T) {
	var h AuditEventHandler = &NullAuditHandler{}
	event := NewAuditEventBuilder(AuditEventVerification).Build()
	assert.NotPanics(t, func() {
		h.OnSplit(event)
		h.OnVerification(event)
		h.OnReconstruction(event)
		h.OnValidationFailure(event)
		h.OnParameterSetup(event)
	})
}
