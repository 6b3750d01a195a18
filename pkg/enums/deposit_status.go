package enums

import "fmt"

// DepositStatus tracks a tire deposit through its custody lifecycle.
type DepositStatus string

const (
	DepositStatusStored            DepositStatus = "stored"
	DepositStatusNotifiedForPickup DepositStatus = "notified_for_pickup"
	DepositStatusReleased          DepositStatus = "released"
	DepositStatusForfeited         DepositStatus = "forfeited"
)

var validDepositStatuses = []DepositStatus{
	DepositStatusStored,
	DepositStatusNotifiedForPickup,
	DepositStatusReleased,
	DepositStatusForfeited,
}

// allowed lifecycle edges; terminal states have no outgoing edges.
var depositTransitions = map[DepositStatus][]DepositStatus{
	DepositStatusStored:            {DepositStatusNotifiedForPickup, DepositStatusReleased},
	DepositStatusNotifiedForPickup: {DepositStatusReleased, DepositStatusForfeited},
}

// String implements fmt.Stringer.
func (d DepositStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DepositStatus.
func (d DepositStatus) IsValid() bool {
	for _, candidate := range validDepositStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are permitted.
func (d DepositStatus) IsTerminal() bool {
	return d == DepositStatusReleased || d == DepositStatusForfeited
}

// CanTransitionTo reports whether the lifecycle edge d -> target is allowed.
func (d DepositStatus) CanTransitionTo(target DepositStatus) bool {
	for _, next := range depositTransitions[d] {
		if next == target {
			return true
		}
	}
	return false
}

// ParseDepositStatus converts the raw string to DepositStatus.
func ParseDepositStatus(value string) (DepositStatus, error) {
	for _, candidate := range validDepositStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid deposit status %q", value)
}
