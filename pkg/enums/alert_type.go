package enums

import "fmt"

// AlertType names the pending-alert categories produced by the trigger evaluator.
type AlertType string

const (
	AlertTypeOverdueDeposit      AlertType = "overdue_deposit"
	AlertTypeLowStock            AlertType = "low_stock"
	AlertTypeUpcomingAppointment AlertType = "upcoming_appointment"
)

var validAlertTypes = []AlertType{
	AlertTypeOverdueDeposit,
	AlertTypeLowStock,
	AlertTypeUpcomingAppointment,
}

// String implements fmt.Stringer.
func (a AlertType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AlertType.
func (a AlertType) IsValid() bool {
	for _, candidate := range validAlertTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAlertType converts the raw string to AlertType.
func ParseAlertType(value string) (AlertType, error) {
	for _, candidate := range validAlertTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid alert type %q", value)
}
