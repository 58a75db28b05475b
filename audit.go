package vss

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditEventType represents the type of audit event
type AuditEventType string

const (
	AuditEventSplit             AuditEventType = "split"
	AuditEventVerification      AuditEventType = "verification"
	AuditEventReconstruction    AuditEventType = "reconstruction"
	AuditEventValidationFailure AuditEventType = "validation_failure"
	AuditEventParameterSetup    AuditEventType = "parameter_setup"
)

// AuditEvent represents a single audit event. It never carries secret
// material: no secret bytes, coefficients or share values.
type AuditEvent struct {
	EventID   string         `json:"event_id"`
	Timestamp time.Time      `json:"timestamp"`
	EventType AuditEventType `json:"event_type"`

	Group        string `json:"group,omitempty"`
	ModulusBits  int    `json:"modulus_bits,omitempty"`
	Threshold    int    `json:"threshold,omitempty"`
	ShareCount   int    `json:"share_count,omitempty"`
	ShareIndices []int  `json:"share_indices,omitempty"`

	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`

	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// AuditEventHandler defines the interface for handling audit events.
// Applications implement it to record events according to their needs.
type AuditEventHandler interface {
	OnSplit(event *AuditEvent)
	OnVerification(event *AuditEvent)
	OnReconstruction(event *AuditEvent)
	OnValidationFailure(event *AuditEvent)
	OnParameterSetup(event *AuditEvent)
}

// NullAuditHandler is a no-op implementation of AuditEventHandler
type NullAuditHandler struct{}

func (n *NullAuditHandler) OnSplit(event *AuditEvent)             {}
func (n *NullAuditHandler) OnVerification(event *AuditEvent)      {}
func (n *NullAuditHandler) OnReconstruction(event *AuditEvent)    {}
func (n *NullAuditHandler) OnValidationFailure(event *AuditEvent) {}
func (n *NullAuditHandler) OnParameterSetup(event *AuditEvent)    {}

// LoggingAuditHandler writes every audit event to a zap logger.
type LoggingAuditHandler struct {
	logger *zap.Logger
}

// NewLoggingAuditHandler creates an audit handler backed by logger
func NewLoggingAuditHandler(logger *zap.Logger) *LoggingAuditHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingAuditHandler{logger: logger.Named("audit")}
}

func (h *LoggingAuditHandler) log(event *AuditEvent) {
	fields := []zap.Field{
		zap.String("event_id", event.EventID),
		zap.String("event_type", string(event.EventType)),
		zap.Bool("success", event.Success),
	}
	if event.Group != "" {
		fields = append(fields, zap.String("group", event.Group))
	}
	if event.ModulusBits > 0 {
		fields = append(fields, zap.Int("modulus_bits", event.ModulusBits))
	}
	if event.Threshold > 0 {
		fields = append(fields, zap.Int("threshold", event.Threshold))
	}
	if event.ShareCount > 0 {
		fields = append(fields, zap.Int("share_count", event.ShareCount))
	}
	if len(event.ShareIndices) > 0 {
		fields = append(fields, zap.Ints("share_indices", event.ShareIndices))
	}
	if event.Duration > 0 {
		fields = append(fields, zap.Duration("duration", event.Duration))
	}
	if event.Error != "" {
		fields = append(fields, zap.String("error", event.Error))
		h.logger.Warn("vss audit event", fields...)
		return
	}
	h.logger.Info("vss audit event", fields...)
}

func (h *LoggingAuditHandler) OnSplit(event *AuditEvent)             { h.log(event) }
func (h *LoggingAuditHandler) OnVerification(event *AuditEvent)      { h.log(event) }
func (h *LoggingAuditHandler) OnReconstruction(event *AuditEvent)    { h.log(event) }
func (h *LoggingAuditHandler) OnValidationFailure(event *AuditEvent) { h.log(event) }
func (h *LoggingAuditHandler) OnParameterSetup(event *AuditEvent)    { h.log(event) }

// AuditEventBuilder helps construct audit events with proper defaults
type AuditEventBuilder struct {
	event *AuditEvent
	start time.Time
}

// NewAuditEventBuilder creates a new audit event builder
func NewAuditEventBuilder(eventType AuditEventType) *AuditEventBuilder {
	now := time.Now()
	return &AuditEventBuilder{
		event: &AuditEvent{
			EventID:   uuid.NewString(),
			Timestamp: now,
			EventType: eventType,
			Success:   true,
			Metadata:  make(map[string]interface{}),
		},
		start: now,
	}
}

// WithGroup sets the commitment group name for the event
func (b *AuditEventBuilder) WithGroup(name string) *AuditEventBuilder {
	b.event.Group = name
	return b
}

// WithField records the bit length of the field modulus
func (b *AuditEventBuilder) WithField(field *Field) *AuditEventBuilder {
	if field != nil {
		b.event.ModulusBits = field.BitLen()
	}
	return b
}

// WithParameters sets the threshold and share count
func (b *AuditEventBuilder) WithParameters(n, threshold int) *AuditEventBuilder {
	b.event.ShareCount = n
	b.event.Threshold = threshold
	return b
}

// WithShares records the indices (never the values) of the shares involved
func (b *AuditEventBuilder) WithShares(shares []Share) *AuditEventBuilder {
	indices := make([]int, len(shares))
	for i, s := range shares {
		indices[i] = s.Index
	}
	b.event.ShareIndices = indices
	return b
}

// WithError marks the event as failed and sets error information
func (b *AuditEventBuilder) WithError(err error) *AuditEventBuilder {
	b.event.Success = false
	if err != nil {
		b.event.Error = err.Error()
	}
	return b
}

// WithMetadata adds metadata to the event
func (b *AuditEventBuilder) WithMetadata(key string, value interface{}) *AuditEventBuilder {
	b.event.Metadata[key] = value
	return b
}

// Build returns the constructed audit event, stamped with the elapsed time
func (b *AuditEventBuilder) Build() *AuditEvent {
	b.event.Duration = time.Since(b.start)
	return b.event
}
