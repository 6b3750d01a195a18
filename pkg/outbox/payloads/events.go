package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/awisniewski/tiredepot-backend/pkg/enums"
)

// DepositStatusEvent is emitted on every deposit lifecycle transition.
type DepositStatusEvent struct {
	DepositID uuid.UUID           `json:"deposit_id"`
	ClientID  uuid.UUID           `json:"client_id"`
	Location  string              `json:"location"`
	Status    enums.DepositStatus `json:"status"`
	DueAt     time.Time           `json:"due_at"`
}

// OrderEvent is emitted on order lifecycle changes.
type OrderEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	ClientID    uuid.UUID         `json:"client_id"`
	Status      enums.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	LineCount   int               `json:"line_count"`
}

// AppointmentEvent is emitted on scheduling lifecycle changes.
type AppointmentEvent struct {
	AppointmentID uuid.UUID               `json:"appointment_id"`
	ClientID      uuid.UUID               `json:"client_id"`
	Resource      string                  `json:"resource"`
	StartAt       time.Time               `json:"start_at"`
	EndAt         time.Time               `json:"end_at"`
	Status        enums.AppointmentStatus `json:"status"`
}

// AlertRaisedEvent reports an operator alert flagged by the trigger sweep.
type AlertRaisedEvent struct {
	AlertType enums.AlertType `json:"alert_type"`
	SubjectID uuid.UUID       `json:"subject_id"`
	Title     string          `json:"title"`
}
