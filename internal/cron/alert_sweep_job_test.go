package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/awisniewski/tiredepot-backend/internal/alerts"
	"github.com/awisniewski/tiredepot-backend/internal/notifications"
	"github.com/awisniewski/tiredepot-backend/pkg/db/models"
	"github.com/awisniewski/tiredepot-backend/pkg/enums"
	"github.com/awisniewski/tiredepot-backend/pkg/logger"
	"github.com/awisniewski/tiredepot-backend/pkg/outbox"
)

type fakeEvaluator struct {
	report *alerts.Report
	err    error
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, now time.Time) (*alerts.Report, error) {
	return f.report, f.err
}

type fakeNotifier struct {
	raised     []notifications.RaiseInput
	suppressed map[uuid.UUID]bool
	err        error
}

func (f *fakeNotifier) Raise(ctx context.Context, input notifications.RaiseInput) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.suppressed[input.SubjectID] {
		return false, nil
	}
	f.raised = append(f.raised, input)
	return true, nil
}

type fakeEmitter struct {
	events []outbox.DomainEvent
}

func (f *fakeEmitter) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

type sweepTxRunner struct{}

func (sweepTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func newAlertSweepJob(t *testing.T, evaluator alerts.Evaluator, notifier alertNotifier, emitter alertEmitter) *alertSweepJob {
	t.Helper()
	jobIface, err := NewAlertSweepJob(AlertSweepJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		Evaluator: evaluator,
		Notifier:  notifier,
		DB:        sweepTxRunner{},
		Outbox:    emitter,
	})
	if err != nil {
		t.Fatalf("NewAlertSweepJob: %v", err)
	}
	job, ok := jobIface.(*alertSweepJob)
	if !ok {
		t.Fatalf("expected alertSweepJob, got %T", jobIface)
	}
	return job
}

func TestAlertSweepRaisesAllCategories(t *testing.T) {
	depositID := uuid.New()
	itemID := uuid.New()
	apptID := uuid.New()
	evaluator := &fakeEvaluator{report: &alerts.Report{
		OverdueDeposits: []models.Deposit{
			{ID: depositID, Location: "A1", DueAt: time.Now().Add(-48 * time.Hour)},
		},
		LowStockItems: []models.StockItem{
			{ID: itemID, Name: "205/55R16 All-Season", QuantityOnHand: 1, ReorderThreshold: 4},
		},
		UpcomingAppointments: []models.Appointment{
			{ID: apptID, Resource: "lift-1", StartAt: time.Now().Add(6 * time.Hour)},
		},
	}}
	notifier := &fakeNotifier{}
	emitter := &fakeEmitter{}

	job := newAlertSweepJob(t, evaluator, notifier, emitter)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(notifier.raised) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(notifier.raised))
	}
	if len(emitter.events) != 3 {
		t.Fatalf("expected 3 alert events, got %d", len(emitter.events))
	}
	for _, event := range emitter.events {
		if event.EventType != enums.OutboxEventAlertRaised {
			t.Fatalf("unexpected event type %s", event.EventType)
		}
	}
}

func TestAlertSweepSkipsEventsForSuppressedNotifications(t *testing.T) {
	depositID := uuid.New()
	evaluator := &fakeEvaluator{report: &alerts.Report{
		OverdueDeposits: []models.Deposit{
			{ID: depositID, Location: "B2", DueAt: time.Now().Add(-time.Hour)},
		},
	}}
	notifier := &fakeNotifier{suppressed: map[uuid.UUID]bool{depositID: true}}
	emitter := &fakeEmitter{}

	job := newAlertSweepJob(t, evaluator, notifier, emitter)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(notifier.raised) != 0 {
		t.Fatalf("expected no notifications, got %d", len(notifier.raised))
	}
	if len(emitter.events) != 0 {
		t.Fatalf("expected no events for deduplicated alerts, got %d", len(emitter.events))
	}
}

func TestAlertSweepContinuesPastNotifierErrors(t *testing.T) {
	evaluator := &fakeEvaluator{report: &alerts.Report{
		OverdueDeposits: []models.Deposit{
			{ID: uuid.New(), Location: "C3", DueAt: time.Now().Add(-time.Hour)},
		},
	}}
	notifier := &fakeNotifier{err: errors.New("db down")}

	job := newAlertSweepJob(t, evaluator, notifier, &fakeEmitter{})
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected the notifier error to surface")
	}
}

func TestAlertSweepFailsWhenEvaluatorReturnsNothing(t *testing.T) {
	evaluator := &fakeEvaluator{err: errors.New("boom")}

	job := newAlertSweepJob(t, evaluator, &fakeNotifier{}, &fakeEmitter{})
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
