package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/awisniewski/tiredepot-backend/internal/alerts"
	"github.com/awisniewski/tiredepot-backend/internal/notifications"
	"github.com/awisniewski/tiredepot-backend/pkg/enums"
	"github.com/awisniewski/tiredepot-backend/pkg/logger"
	"github.com/awisniewski/tiredepot-backend/pkg/outbox"
)

type alertNotifier interface {
	Raise(ctx context.Context, input notifications.RaiseInput) (bool, error)
}

type alertEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type AlertSweepJobParams struct {
	Logger    *logger.Logger
	Evaluator alerts.Evaluator
	Notifier  alertNotifier
	DB        txRunner
	Outbox    alertEmitter
}

// NewAlertSweepJob builds the job that turns the evaluator's report into
// operator notifications and alert events.
func NewAlertSweepJob(params AlertSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Evaluator == nil {
		return nil, fmt.Errorf("evaluator required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &alertSweepJob{
		logg:      params.Logger,
		evaluator: params.Evaluator,
		notifier:  params.Notifier,
		db:        params.DB,
		outbox:    params.Outbox,
		now:       time.Now,
	}, nil
}

type alertSweepJob struct {
	logg      *logger.Logger
	evaluator alerts.Evaluator
	notifier  alertNotifier
	db        txRunner
	outbox    alertEmitter
	now       func() time.Time
}

func (j *alertSweepJob) Name() string { return "alert-sweep" }

// Run evaluates pending alerts and raises one notification per new subject.
// The sweep never mutates deposits, stock, or appointments; it only records
// what the operator should look at.
func (j *alertSweepJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	report, err := j.evaluator.Evaluate(ctx, now)
	if report == nil {
		return fmt.Errorf("alert sweep evaluate: %w", err)
	}
	var sweepErr error
	if err != nil {
		sweepErr = multierr.Append(sweepErr, err)
	}
	raised := 0

	for _, deposit := range report.OverdueDeposits {
		days := int(now.Sub(deposit.DueAt).Hours() / 24)
		created, err := j.raise(ctx, raiseParams{
			alertType: enums.AlertTypeOverdueDeposit,
			aggregate: enums.OutboxAggregateDeposit,
			subjectID: deposit.ID,
			title:     "Deposit overdue for pickup",
			message:   fmt.Sprintf("Tires at %s are %d day(s) past their pickup date", deposit.Location, days),
		})
		if err != nil {
			sweepErr = multierr.Append(sweepErr, err)
			continue
		}
		if created {
			raised++
		}
	}

	for _, item := range report.LowStockItems {
		created, err := j.raise(ctx, raiseParams{
			alertType: enums.AlertTypeLowStock,
			aggregate: enums.OutboxAggregateStockItem,
			subjectID: item.ID,
			title:     "Stock below reorder threshold",
			message:   fmt.Sprintf("%s has %d on hand (threshold %d)", item.Name, item.QuantityOnHand, item.ReorderThreshold),
		})
		if err != nil {
			sweepErr = multierr.Append(sweepErr, err)
			continue
		}
		if created {
			raised++
		}
	}

	for _, appt := range report.UpcomingAppointments {
		created, err := j.raise(ctx, raiseParams{
			alertType: enums.AlertTypeUpcomingAppointment,
			aggregate: enums.OutboxAggregateAppointment,
			subjectID: appt.ID,
			title:     "Appointment starting soon",
			message:   fmt.Sprintf("%s is booked at %s", appt.Resource, appt.StartAt.Format(time.RFC3339)),
		})
		if err != nil {
			sweepErr = multierr.Append(sweepErr, err)
			continue
		}
		if created {
			raised++
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"subjects_flagged":     report.Total(),
		"notifications_raised": raised,
	})
	j.logg.Info(logCtx, "alert sweep complete")
	return sweepErr
}

type raiseParams struct {
	alertType enums.AlertType
	aggregate enums.OutboxAggregateType
	subjectID uuid.UUID
	title     string
	message   string
}

func (j *alertSweepJob) raise(ctx context.Context, params raiseParams) (bool, error) {
	created, err := j.notifier.Raise(ctx, notifications.RaiseInput{
		Type:      params.alertType,
		SubjectID: params.subjectID,
		Title:     params.title,
		Message:   params.message,
	})
	if err != nil {
		return false, fmt.Errorf("raise %s alert: %w", params.alertType, err)
	}
	if !created {
		return false, nil
	}

	err = j.db.WithTx(ctx, func(tx *gorm.DB) error {
		return j.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventAlertRaised,
			AggregateType: params.aggregate,
			AggregateID:   params.subjectID,
			Data: map[string]any{
				"alert_type": params.alertType,
				"subject_id": params.subjectID,
				"title":      params.title,
			},
		})
	})
	if err != nil {
		return true, fmt.Errorf("emit %s alert event: %w", params.alertType, err)
	}
	return true, nil
}
