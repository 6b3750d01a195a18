package enums

import "fmt"

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	OutboxAggregateDeposit     OutboxAggregateType = "deposit"
	OutboxAggregateStockItem   OutboxAggregateType = "stock_item"
	OutboxAggregateAppointment OutboxAggregateType = "appointment"
	OutboxAggregateOrder       OutboxAggregateType = "order"
)

var validOutboxAggregateTypes = []OutboxAggregateType{
	OutboxAggregateDeposit,
	OutboxAggregateStockItem,
	OutboxAggregateAppointment,
	OutboxAggregateOrder,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (o OutboxAggregateType) IsValid() bool {
	for _, candidate := range validOutboxAggregateTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts the raw string to OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validOutboxAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox aggregate type %q", value)
}
