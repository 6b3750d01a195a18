package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/awisniewski/tiredepot-backend/pkg/config"
	"github.com/awisniewski/tiredepot-backend/pkg/db/models"
	"github.com/awisniewski/tiredepot-backend/pkg/enums"
)

type stubDepositSource struct {
	deposits []models.Deposit
	err      error
}

func (s *stubDepositSource) Overdue(ctx context.Context, asOf time.Time) ([]models.Deposit, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Deposit
	for _, d := range s.deposits {
		if d.IsOverdue(asOf) {
			out = append(out, d)
		}
	}
	return out, nil
}

type stubStockSource struct {
	items []models.StockItem
	err   error
}

func (s *stubStockSource) LowStock(ctx context.Context) ([]models.StockItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.StockItem
	for _, item := range s.items {
		if item.QuantityOnHand <= item.ReorderThreshold {
			out = append(out, item)
		}
	}
	return out, nil
}

type stubAppointmentSource struct {
	appointments []models.Appointment
	err          error
}

func (s *stubAppointmentSource) Upcoming(ctx context.Context, from time.Time, window time.Duration) ([]models.Appointment, error) {
	if s.err != nil {
		return nil, s.err
	}
	until := from.Add(window)
	var out []models.Appointment
	for _, a := range s.appointments {
		if a.Status != enums.AppointmentStatusScheduled {
			continue
		}
		if !a.StartAt.Before(from) && a.StartAt.Before(until) {
			out = append(out, a)
		}
	}
	return out, nil
}

func newTestEvaluator(t *testing.T, deposits depositSource, stock stockSource, appts appointmentSource) Evaluator {
	t.Helper()
	eval, err := NewEvaluator(deposits, stock, appts, config.AlertsConfig{UpcomingWindow: 48 * time.Hour})
	if err != nil {
		t.Fatalf("NewEvaluator: %v", err)
	}
	return eval
}

func TestEvaluateCollectsAllThreeCategories(t *testing.T) {
	now := time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC)

	deposits := &stubDepositSource{deposits: []models.Deposit{
		{ID: uuid.New(), Status: enums.DepositStatusStored, DueAt: now.Add(-72 * time.Hour)},
		{ID: uuid.New(), Status: enums.DepositStatusStored, DueAt: now.Add(24 * time.Hour)},
		{ID: uuid.New(), Status: enums.DepositStatusReleased, DueAt: now.Add(-24 * time.Hour)},
	}}
	stock := &stubStockSource{items: []models.StockItem{
		{ID: uuid.New(), QuantityOnHand: 2, ReorderThreshold: 4},
		{ID: uuid.New(), QuantityOnHand: 40, ReorderThreshold: 4},
	}}
	appts := &stubAppointmentSource{appointments: []models.Appointment{
		{ID: uuid.New(), Status: enums.AppointmentStatusScheduled, StartAt: now.Add(6 * time.Hour)},
		{ID: uuid.New(), Status: enums.AppointmentStatusScheduled, StartAt: now.Add(96 * time.Hour)},
		{ID: uuid.New(), Status: enums.AppointmentStatusCancelled, StartAt: now.Add(6 * time.Hour)},
	}}

	report, err := newTestEvaluator(t, deposits, stock, appts).Evaluate(context.Background(), now)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if len(report.OverdueDeposits) != 1 {
		t.Fatalf("expected 1 overdue deposit, got %d", len(report.OverdueDeposits))
	}
	if len(report.LowStockItems) != 1 {
		t.Fatalf("expected 1 low stock item, got %d", len(report.LowStockItems))
	}
	if len(report.UpcomingAppointments) != 1 {
		t.Fatalf("expected 1 upcoming appointment, got %d", len(report.UpcomingAppointments))
	}
	if report.Total() != 3 {
		t.Fatalf("expected total 3, got %d", report.Total())
	}
}

func TestEvaluateIsReadOnlyAndRepeatable(t *testing.T) {
	now := time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC)
	deposits := &stubDepositSource{deposits: []models.Deposit{
		{ID: uuid.New(), Status: enums.DepositStatusNotifiedForPickup, DueAt: now.Add(-time.Hour)},
	}}
	eval := newTestEvaluator(t, deposits, &stubStockSource{}, &stubAppointmentSource{})

	first, err := eval.Evaluate(context.Background(), now)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	second, err := eval.Evaluate(context.Background(), now)
	if err != nil {
		t.Fatalf("evaluate again: %v", err)
	}
	if len(first.OverdueDeposits) != 1 || len(second.OverdueDeposits) != 1 {
		t.Fatalf("expected both sweeps to report the deposit, got %d and %d",
			len(first.OverdueDeposits), len(second.OverdueDeposits))
	}
}

func TestEvaluatePartialFailureKeepsHealthySources(t *testing.T) {
	now := time.Date(2026, 4, 15, 9, 0, 0, 0, time.UTC)
	deposits := &stubDepositSource{err: errors.New("db down")}
	stock := &stubStockSource{items: []models.StockItem{
		{ID: uuid.New(), QuantityOnHand: 0, ReorderThreshold: 2},
	}}

	report, err := newTestEvaluator(t, deposits, stock, &stubAppointmentSource{}).Evaluate(context.Background(), now)
	if err == nil {
		t.Fatal("expected an error from the failing source")
	}
	if report == nil || len(report.LowStockItems) != 1 {
		t.Fatal("expected low stock results despite the deposit failure")
	}
}

func TestEvaluateItemExactlyAtThresholdIsLow(t *testing.T) {
	stock := &stubStockSource{items: []models.StockItem{
		{ID: uuid.New(), QuantityOnHand: 4, ReorderThreshold: 4},
	}}
	report, err := newTestEvaluator(t, &stubDepositSource{}, stock, &stubAppointmentSource{}).
		Evaluate(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(report.LowStockItems) != 1 {
		t.Fatalf("expected item at threshold to be flagged, got %d", len(report.LowStockItems))
	}
}
