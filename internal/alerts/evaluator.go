package alerts

import (
	"context"
	"time"

	"go.uber.org/multierr"

	"github.com/awisniewski/tiredepot-backend/pkg/config"
	"github.com/awisniewski/tiredepot-backend/pkg/db/models"
	pkgerrors "github.com/awisniewski/tiredepot-backend/pkg/errors"
)

// depositSource yields deposits whose pickup date has passed.
type depositSource interface {
	Overdue(ctx context.Context, asOf time.Time) ([]models.Deposit, error)
}

// stockSource yields stock items at or below their reorder threshold.
type stockSource interface {
	LowStock(ctx context.Context) ([]models.StockItem, error)
}

// appointmentSource yields scheduled appointments starting soon.
type appointmentSource interface {
	Upcoming(ctx context.Context, from time.Time, window time.Duration) ([]models.Appointment, error)
}

// Report carries the three pending-alert lists produced by one sweep. Each
// list keeps its source ordering: deposits most overdue first, stock items by
// deficit, appointments by start time.
type Report struct {
	OverdueDeposits      []models.Deposit     `json:"overdue_deposits"`
	LowStockItems        []models.StockItem   `json:"low_stock_items"`
	UpcomingAppointments []models.Appointment `json:"upcoming_appointments"`
}

// Total returns how many alert subjects the sweep found.
func (r Report) Total() int {
	return len(r.OverdueDeposits) + len(r.LowStockItems) + len(r.UpcomingAppointments)
}

// Evaluator computes the pending-alert report for a point in time. It only
// reads state; raising notifications is the cron sweep's job.
type Evaluator interface {
	Evaluate(ctx context.Context, now time.Time) (*Report, error)
}

type evaluator struct {
	deposits     depositSource
	stock        stockSource
	appointments appointmentSource
	cfg          config.AlertsConfig
}

// NewEvaluator wires the evaluator's read-side dependencies.
func NewEvaluator(deposits depositSource, stock stockSource, appointments appointmentSource, cfg config.AlertsConfig) (Evaluator, error) {
	if deposits == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "deposit source required")
	}
	if stock == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stock source required")
	}
	if appointments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "appointment source required")
	}
	return &evaluator{
		deposits:     deposits,
		stock:        stock,
		appointments: appointments,
		cfg:          cfg,
	}, nil
}

// Evaluate sweeps all three sources. A failing source does not hide the
// others: the report carries whatever succeeded and the error aggregates the
// rest.
func (e *evaluator) Evaluate(ctx context.Context, now time.Time) (*Report, error) {
	report := &Report{}
	var errs error

	overdue, err := e.deposits.Overdue(ctx, now)
	if err != nil {
		errs = multierr.Append(errs, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list overdue deposits"))
	} else {
		report.OverdueDeposits = overdue
	}

	low, err := e.stock.LowStock(ctx)
	if err != nil {
		errs = multierr.Append(errs, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock items"))
	} else {
		report.LowStockItems = low
	}

	upcoming, err := e.appointments.Upcoming(ctx, now, e.cfg.UpcomingLookahead())
	if err != nil {
		errs = multierr.Append(errs, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list upcoming appointments"))
	} else {
		report.UpcomingAppointments = upcoming
	}

	return report, errs
}
