package enums

import "testing"

func TestDepositStatusTransitions(t *testing.T) {
	tests := []struct {
		from    DepositStatus
		to      DepositStatus
		allowed bool
	}{
		{DepositStatusStored, DepositStatusNotifiedForPickup, true},
		{DepositStatusStored, DepositStatusReleased, true},
		{DepositStatusStored, DepositStatusForfeited, false},
		{DepositStatusNotifiedForPickup, DepositStatusReleased, true},
		{DepositStatusNotifiedForPickup, DepositStatusForfeited, true},
		{DepositStatusNotifiedForPickup, DepositStatusStored, false},
		{DepositStatusReleased, DepositStatusStored, false},
		{DepositStatusReleased, DepositStatusNotifiedForPickup, false},
		{DepositStatusForfeited, DepositStatusReleased, false},
		{DepositStatusForfeited, DepositStatusStored, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
			t.Fatalf("%s -> %s: expected allowed=%v got %v", tt.from, tt.to, tt.allowed, got)
		}
	}
}

func TestDepositStatusTerminal(t *testing.T) {
	if DepositStatusStored.IsTerminal() || DepositStatusNotifiedForPickup.IsTerminal() {
		t.Fatal("active statuses must not be terminal")
	}
	if !DepositStatusReleased.IsTerminal() || !DepositStatusForfeited.IsTerminal() {
		t.Fatal("released and forfeited must be terminal")
	}
}

func TestParseDepositStatus(t *testing.T) {
	status, err := ParseDepositStatus("stored")
	if err != nil || status != DepositStatusStored {
		t.Fatalf("unexpected parse result %v %v", status, err)
	}
	if _, err := ParseDepositStatus("lost"); err == nil {
		t.Fatal("expected unknown status to fail")
	}
}
