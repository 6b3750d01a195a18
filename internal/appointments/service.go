package appointments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/awisniewski/tiredepot-backend/pkg/db/models"
	"github.com/awisniewski/tiredepot-backend/pkg/enums"
	pkgerrors "github.com/awisniewski/tiredepot-backend/pkg/errors"
	"github.com/awisniewski/tiredepot-backend/pkg/outbox"
	"github.com/awisniewski/tiredepot-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines scheduling operations for shop resources.
type Service interface {
	Schedule(ctx context.Context, input ScheduleInput) (*models.Appointment, error)
	Reschedule(ctx context.Context, appointmentID uuid.UUID, input RescheduleInput) (*models.Appointment, error)
	Cancel(ctx context.Context, appointmentID uuid.UUID) (*models.Appointment, error)
	Complete(ctx context.Context, appointmentID uuid.UUID) (*models.Appointment, error)
	Get(ctx context.Context, appointmentID uuid.UUID) (*models.Appointment, error)
	List(ctx context.Context, params pagination.Params, filters Filters) (*AppointmentList, error)
	Upcoming(ctx context.Context, from time.Time, window time.Duration) ([]models.Appointment, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds an appointments service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("appointments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outboxSvc}, nil
}

func validateWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start and end required")
	}
	if !start.Before(end) {
		return pkgerrors.New(pkgerrors.CodeValidation, "start must precede end")
	}
	return nil
}

// Schedule books the resource for the closed-open window [StartAt, EndAt).
// The conflict check locks any clashing row, so two concurrent bookings of
// the same slot serialize and the loser sees the winner.
func (s *service) Schedule(ctx context.Context, input ScheduleInput) (*models.Appointment, error) {
	if input.ClientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}
	if input.Resource == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "resource required")
	}
	if err := validateWindow(input.StartAt, input.EndAt); err != nil {
		return nil, err
	}

	var created *models.Appointment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := s.ensureFree(ctx, repo, input.Resource, input.StartAt, input.EndAt, uuid.Nil); err != nil {
			return err
		}

		appointment := &models.Appointment{
			ClientID:    input.ClientID,
			VehicleID:   input.VehicleID,
			Resource:    input.Resource,
			ServiceType: input.ServiceType,
			StartAt:     input.StartAt,
			EndAt:       input.EndAt,
			Status:      enums.AppointmentStatusScheduled,
			Notes:       input.Notes,
		}
		if _, err := repo.Create(ctx, appointment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create appointment")
		}

		created = appointment
		return s.emitEvent(ctx, tx, enums.OutboxEventAppointmentScheduled, appointment)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Reschedule moves a scheduled booking to a new window. The moved booking is
// excluded from its own conflict check.
func (s *service) Reschedule(ctx context.Context, appointmentID uuid.UUID, input RescheduleInput) (*models.Appointment, error) {
	if appointmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "appointment id required")
	}
	if err := validateWindow(input.StartAt, input.EndAt); err != nil {
		return nil, err
	}

	var updated *models.Appointment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		appointment, err := repo.FindForUpdate(ctx, appointmentID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load appointment")
		}
		if appointment.Status != enums.AppointmentStatusScheduled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only scheduled appointments can move").
				WithDetails(map[string]any{"status": appointment.Status})
		}

		resource := input.Resource
		if resource == "" {
			resource = appointment.Resource
		}
		if err := s.ensureFree(ctx, repo, resource, input.StartAt, input.EndAt, appointment.ID); err != nil {
			return err
		}

		updates := map[string]any{
			"resource": resource,
			"start_at": input.StartAt,
			"end_at":   input.EndAt,
		}
		if err := repo.Update(ctx, appointment.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update appointment")
		}

		appointment.Resource = resource
		appointment.StartAt = input.StartAt
		appointment.EndAt = input.EndAt
		updated = appointment
		return s.emitEvent(ctx, tx, enums.OutboxEventAppointmentRebooked, appointment)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Cancel releases the window. Cancelling an already cancelled appointment is
// a no-op; completed appointments cannot cancel.
func (s *service) Cancel(ctx context.Context, appointmentID uuid.UUID) (*models.Appointment, error) {
	return s.close(ctx, appointmentID, enums.AppointmentStatusCancelled, enums.OutboxEventAppointmentCancelled)
}

// Complete marks the work done. The window stays attached as history but no
// longer blocks other bookings.
func (s *service) Complete(ctx context.Context, appointmentID uuid.UUID) (*models.Appointment, error) {
	return s.close(ctx, appointmentID, enums.AppointmentStatusCompleted, enums.OutboxEventAppointmentCompleted)
}

func (s *service) close(ctx context.Context, appointmentID uuid.UUID, target enums.AppointmentStatus, eventType enums.OutboxEventType) (*models.Appointment, error) {
	if appointmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "appointment id required")
	}

	var result *models.Appointment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		appointment, err := repo.FindForUpdate(ctx, appointmentID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load appointment")
		}

		// Repeating a cancellation is harmless; repeating a completion is
		// double-booked work and must surface.
		if appointment.Status == target && target == enums.AppointmentStatusCancelled {
			result = appointment
			return nil
		}
		if appointment.Status != enums.AppointmentStatusScheduled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "state transition disallowed").
				WithDetails(map[string]any{
					"appointment_id": appointment.ID,
					"from":           appointment.Status,
					"to":             target,
				})
		}

		if err := repo.Update(ctx, appointment.ID, map[string]any{"status": target}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update appointment status")
		}

		appointment.Status = target
		result = appointment
		return s.emitEvent(ctx, tx, eventType, appointment)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ensureFree(ctx context.Context, repo Repository, resource string, start, end time.Time, excludeID uuid.UUID) error {
	conflict, err := repo.FindConflict(ctx, resource, start, end, excludeID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check for conflicts")
	}
	if conflict != nil {
		return pkgerrors.New(pkgerrors.CodeSchedulingConflict, "appointment overlaps an existing booking").
			WithDetails(map[string]any{
				"conflicting_appointment_id": conflict.ID,
				"resource":                   resource,
				"start_at":                   conflict.StartAt,
				"end_at":                     conflict.EndAt,
			})
	}
	return nil
}

func (s *service) emitEvent(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, appointment *models.Appointment) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.OutboxAggregateAppointment,
		AggregateID:   appointment.ID,
		Version:       1,
		Data: AppointmentEvent{
			AppointmentID: appointment.ID,
			ClientID:      appointment.ClientID,
			Resource:      appointment.Resource,
			StartAt:       appointment.StartAt,
			EndAt:         appointment.EndAt,
			Status:        appointment.Status,
		},
	})
}

func (s *service) Get(ctx context.Context, appointmentID uuid.UUID) (*models.Appointment, error) {
	if appointmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "appointment id required")
	}
	appointment, err := s.repo.Find(ctx, appointmentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load appointment")
	}
	return appointment, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters Filters) (*AppointmentList, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list appointments")
	}
	return list, nil
}

// Upcoming returns scheduled appointments starting within the window, soonest
// first.
func (s *service) Upcoming(ctx context.Context, from time.Time, window time.Duration) ([]models.Appointment, error) {
	if window <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "window must be positive")
	}
	rows, err := s.repo.ListUpcoming(ctx, from, from.Add(window))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list upcoming appointments")
	}
	return rows, nil
}
