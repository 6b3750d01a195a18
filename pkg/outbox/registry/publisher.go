package registry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/awisniewski/tiredepot-backend/pkg/config"
	"github.com/awisniewski/tiredepot-backend/pkg/db/models"
	"github.com/awisniewski/tiredepot-backend/pkg/enums"
	"github.com/awisniewski/tiredepot-backend/pkg/outbox"
	"github.com/awisniewski/tiredepot-backend/pkg/outbox/payloads"
)

// EventDescriptor links an event type to its aggregate/topic/payload schema.
type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	Topic          string
	PayloadFactory func() interface{}
}

// ResolvedEvent is the result of decoding an outbox row.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    interface{}
}

// EventRegistry maps each supported event type to its descriptor.
type EventRegistry struct {
	entries         map[enums.OutboxEventType]EventDescriptor
	alertDescriptor EventDescriptor
}

// NonRetryableError signals the dispatcher should stop retrying a row.
type NonRetryableError struct {
	Err error
}

// Error implements error.
func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

// Unwrap exposes the wrapped error.
func (e NonRetryableError) Unwrap() error {
	return e.Err
}

// NewEventRegistry builds the registry with the configured topic names.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	if cfg.DomainTopic == "" {
		return nil, fmt.Errorf("domain topic is required")
	}
	if cfg.AlertsTopic == "" {
		return nil, fmt.Errorf("alerts topic is required")
	}

	reg := &EventRegistry{entries: make(map[enums.OutboxEventType]EventDescriptor)}
	domainTopic := cfg.DomainTopic
	alertsTopic := cfg.AlertsTopic

	for _, eventType := range []enums.OutboxEventType{
		enums.OutboxEventDepositIntaken,
		enums.OutboxEventDepositNotified,
		enums.OutboxEventDepositReleased,
		enums.OutboxEventDepositForfeited,
	} {
		reg.register(EventDescriptor{
			EventType:      eventType,
			AggregateType:  enums.OutboxAggregateDeposit,
			Topic:          domainTopic,
			PayloadFactory: func() interface{} { return &payloads.DepositStatusEvent{} },
		})
	}
	for _, eventType := range []enums.OutboxEventType{
		enums.OutboxEventOrderPlaced,
		enums.OutboxEventOrderFulfilled,
		enums.OutboxEventOrderCancelled,
	} {
		reg.register(EventDescriptor{
			EventType:      eventType,
			AggregateType:  enums.OutboxAggregateOrder,
			Topic:          domainTopic,
			PayloadFactory: func() interface{} { return &payloads.OrderEvent{} },
		})
	}
	for _, eventType := range []enums.OutboxEventType{
		enums.OutboxEventAppointmentScheduled,
		enums.OutboxEventAppointmentCancelled,
		enums.OutboxEventAppointmentRebooked,
		enums.OutboxEventAppointmentCompleted,
	} {
		reg.register(EventDescriptor{
			EventType:      eventType,
			AggregateType:  enums.OutboxAggregateAppointment,
			Topic:          domainTopic,
			PayloadFactory: func() interface{} { return &payloads.AppointmentEvent{} },
		})
	}

	reg.alertDescriptor = EventDescriptor{
		EventType:      enums.OutboxEventAlertRaised,
		Topic:          alertsTopic,
		PayloadFactory: func() interface{} { return &payloads.AlertRaisedEvent{} },
	}

	return reg, nil
}

func (r *EventRegistry) register(desc EventDescriptor) {
	if desc.PayloadFactory == nil {
		return
	}
	r.entries[desc.EventType] = desc
}

// Resolve validates the row and decodes its typed payload. alert_raised rows
// are special-cased because the sweep emits them for several aggregate types.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	if event.EventType == enums.OutboxEventAlertRaised {
		if event.AggregateID == uuid.Nil {
			return nil, NewNonRetryableError(fmt.Errorf("missing aggregate_id"))
		}
		if !event.AggregateType.IsValid() {
			return nil, NewNonRetryableError(fmt.Errorf("invalid aggregate type %s", event.AggregateType))
		}
		desc := r.alertDescriptor
		desc.AggregateType = event.AggregateType
		return r.resolvePayload(event, desc)
	}

	desc, ok := r.entries[event.EventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", event.EventType))
	}
	if desc.AggregateType != event.AggregateType {
		return nil, NewNonRetryableError(fmt.Errorf("aggregate mismatch: expected %s got %s", desc.AggregateType, event.AggregateType))
	}
	if event.AggregateID == uuid.Nil {
		return nil, NewNonRetryableError(fmt.Errorf("missing aggregate_id"))
	}
	return r.resolvePayload(event, desc)
}

func (r *EventRegistry) resolvePayload(event models.OutboxEvent, desc EventDescriptor) (*ResolvedEvent, error) {
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode envelope: %w", err))
	}

	trimmed := bytes.TrimSpace(envelope.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, NewNonRetryableError(fmt.Errorf("payload missing for %s", event.EventType))
	}

	payload := desc.PayloadFactory()
	if payload == nil {
		return nil, NewNonRetryableError(fmt.Errorf("payload factory not configured for %s", event.EventType))
	}
	if err := json.Unmarshal(envelope.Data, payload); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode %s payload: %w", event.EventType, err))
	}

	return &ResolvedEvent{
		Descriptor: desc,
		Envelope:   envelope,
		Payload:    payload,
	}, nil
}

// NewNonRetryableError wraps an error to signal no retries.
func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}
