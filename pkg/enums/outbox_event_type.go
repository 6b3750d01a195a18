package enums

import "fmt"

// OutboxEventType is the canonical event_type for outbox rows.
type OutboxEventType string

const (
	OutboxEventDepositIntaken       OutboxEventType = "deposit_intaken"
	OutboxEventDepositNotified      OutboxEventType = "deposit_notified"
	OutboxEventDepositReleased      OutboxEventType = "deposit_released"
	OutboxEventDepositForfeited     OutboxEventType = "deposit_forfeited"
	OutboxEventOrderPlaced          OutboxEventType = "order_placed"
	OutboxEventOrderFulfilled       OutboxEventType = "order_fulfilled"
	OutboxEventOrderCancelled       OutboxEventType = "order_cancelled"
	OutboxEventAlertRaised          OutboxEventType = "alert_raised"
	OutboxEventAppointmentScheduled OutboxEventType = "appointment_scheduled"
	OutboxEventAppointmentCancelled OutboxEventType = "appointment_cancelled"
	OutboxEventAppointmentRebooked  OutboxEventType = "appointment_rebooked"
	OutboxEventAppointmentCompleted OutboxEventType = "appointment_completed"
)

var validOutboxEventTypes = []OutboxEventType{
	OutboxEventDepositIntaken,
	OutboxEventDepositNotified,
	OutboxEventDepositReleased,
	OutboxEventDepositForfeited,
	OutboxEventOrderPlaced,
	OutboxEventOrderFulfilled,
	OutboxEventOrderCancelled,
	OutboxEventAlertRaised,
	OutboxEventAppointmentScheduled,
	OutboxEventAppointmentCancelled,
	OutboxEventAppointmentRebooked,
	OutboxEventAppointmentCompleted,
}

// IsValid reports whether the value matches the canonical outbox event_type enum.
func (o OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts the raw string to OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}
