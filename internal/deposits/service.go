package deposits

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/awisniewski/tiredepot-backend/pkg/db"
	"github.com/awisniewski/tiredepot-backend/pkg/db/models"
	"github.com/awisniewski/tiredepot-backend/pkg/enums"
	pkgerrors "github.com/awisniewski/tiredepot-backend/pkg/errors"
	"github.com/awisniewski/tiredepot-backend/pkg/outbox"
	"github.com/awisniewski/tiredepot-backend/pkg/pagination"
)

const defaultDepositQuantity = 4

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines the deposit lifecycle operations.
type Service interface {
	Intake(ctx context.Context, input IntakeInput) (*models.Deposit, error)
	MarkNotified(ctx context.Context, depositID uuid.UUID) (*models.Deposit, error)
	Release(ctx context.Context, depositID uuid.UUID, at time.Time) (*models.Deposit, error)
	Forfeit(ctx context.Context, depositID uuid.UUID) (*models.Deposit, error)
	Get(ctx context.Context, depositID uuid.UUID) (*models.Deposit, error)
	List(ctx context.Context, params pagination.Params, filters Filters) (*DepositList, error)
	Overdue(ctx context.Context, asOf time.Time) ([]models.Deposit, error)
	CreateLocation(ctx context.Context, input CreateLocationInput) (*models.StorageLocation, error)
	ListLocations(ctx context.Context) ([]models.StorageLocation, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	now    func() time.Time
}

// NewService builds a deposit service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("deposits repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: outboxSvc,
		now:    time.Now,
	}, nil
}

// Intake stores a new deposit. Location occupancy is checked under a row lock
// and enforced again by the partial unique index, so two concurrent intakes
// for the same slot cannot both succeed.
func (s *service) Intake(ctx context.Context, input IntakeInput) (*models.Deposit, error) {
	if input.ClientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}
	if input.TireSize == "" || input.TireType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tire size and type required")
	}
	if input.Location == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "storage location required")
	}
	if input.DueAt.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing due date")
	}
	now := s.now().UTC()
	if !input.DueAt.After(now) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "due date must be in the future")
	}
	quantity := input.Quantity
	if quantity == 0 {
		quantity = defaultDepositQuantity
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var created *models.Deposit
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		occupant, err := repo.FindStoredByLocation(ctx, input.Location)
		if err != nil && err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check storage location")
		}
		if occupant != nil {
			return pkgerrors.New(pkgerrors.CodeLocationOccupied, "storage location already holds a deposit").
				WithDetails(map[string]any{
					"location":   input.Location,
					"deposit_id": occupant.ID,
				})
		}

		deposit := &models.Deposit{
			ClientID: input.ClientID,
			TireSize: input.TireSize,
			TireType: input.TireType,
			Quantity: quantity,
			Location: input.Location,
			Status:   enums.DepositStatusStored,
			IntakeAt: now,
			DueAt:    input.DueAt,
			Notes:    input.Notes,
		}
		if _, err := repo.Create(ctx, deposit); err != nil {
			if dbpkg.IsUniqueViolation(err, "ux_deposits_location_stored") {
				return pkgerrors.New(pkgerrors.CodeLocationOccupied, "storage location already holds a deposit").
					WithDetails(map[string]any{"location": input.Location})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create deposit")
		}

		created = deposit
		return s.emitStatusEvent(ctx, tx, enums.OutboxEventDepositIntaken, deposit)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// MarkNotified records that the client was asked to pick up. Calling it again
// on an already notified deposit is a no-op.
func (s *service) MarkNotified(ctx context.Context, depositID uuid.UUID) (*models.Deposit, error) {
	return s.transition(ctx, depositID, enums.DepositStatusNotifiedForPickup, enums.OutboxEventDepositNotified, time.Time{})
}

// Release hands the tires back to the client and frees the location. The
// caller may backdate the release; a zero timestamp means now.
func (s *service) Release(ctx context.Context, depositID uuid.UUID, at time.Time) (*models.Deposit, error) {
	return s.transition(ctx, depositID, enums.DepositStatusReleased, enums.OutboxEventDepositReleased, at)
}

// Forfeit marks an unclaimed deposit as shop property. Only notified deposits
// can forfeit; the operator triggers this, the alert sweep merely flags
// candidates.
func (s *service) Forfeit(ctx context.Context, depositID uuid.UUID) (*models.Deposit, error) {
	return s.transition(ctx, depositID, enums.DepositStatusForfeited, enums.OutboxEventDepositForfeited, time.Time{})
}

func (s *service) transition(ctx context.Context, depositID uuid.UUID, target enums.DepositStatus, eventType enums.OutboxEventType, releaseAt time.Time) (*models.Deposit, error) {
	if depositID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deposit id required")
	}

	var result *models.Deposit
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		deposit, err := repo.FindForUpdate(ctx, depositID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "deposit not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deposit")
		}

		// Only the notification nudge is idempotent. Repeating a release or
		// forfeiture must fail so double-handling the same tires is visible.
		if deposit.Status == target && target == enums.DepositStatusNotifiedForPickup {
			result = deposit
			return nil
		}
		if !deposit.Status.CanTransitionTo(target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "state transition disallowed").
				WithDetails(map[string]any{
					"deposit_id": deposit.ID,
					"from":       deposit.Status,
					"to":         target,
				})
		}

		var releasedAt *time.Time
		if target == enums.DepositStatusReleased {
			at := releaseAt
			if at.IsZero() {
				at = s.now()
			}
			at = at.UTC()
			releasedAt = &at
		}
		if err := repo.UpdateStatus(ctx, deposit.ID, target, releasedAt); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update deposit status")
		}

		deposit.Status = target
		deposit.ReleasedAt = releasedAt
		result = deposit
		return s.emitStatusEvent(ctx, tx, eventType, deposit)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) emitStatusEvent(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, deposit *models.Deposit) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.OutboxAggregateDeposit,
		AggregateID:   deposit.ID,
		Version:       1,
		Data: DepositStatusEvent{
			DepositID: deposit.ID,
			ClientID:  deposit.ClientID,
			Location:  deposit.Location,
			Status:    deposit.Status,
			DueAt:     deposit.DueAt,
		},
	})
}

func (s *service) Get(ctx context.Context, depositID uuid.UUID) (*models.Deposit, error) {
	if depositID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deposit id required")
	}
	deposit, err := s.repo.Find(ctx, depositID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deposit not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deposit")
	}
	return deposit, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters Filters) (*DepositList, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list deposits")
	}
	return list, nil
}

// Overdue returns active deposits whose pickup date is before asOf, most
// overdue first. The trigger sweep uses it to flag forfeiture candidates.
func (s *service) Overdue(ctx context.Context, asOf time.Time) ([]models.Deposit, error) {
	rows, err := s.repo.ListOverdue(ctx, asOf)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list overdue deposits")
	}
	return rows, nil
}

func (s *service) CreateLocation(ctx context.Context, input CreateLocationInput) (*models.StorageLocation, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location name required")
	}
	capacity := input.Capacity
	if capacity == 0 {
		capacity = 1
	}
	location := &models.StorageLocation{
		Name:        input.Name,
		Description: input.Description,
		Capacity:    capacity,
	}
	created, err := s.repo.CreateLocation(ctx, location)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "storage location name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create storage location")
	}
	return created, nil
}

func (s *service) ListLocations(ctx context.Context) ([]models.StorageLocation, error) {
	locations, err := s.repo.ListLocations(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list storage locations")
	}
	return locations, nil
}
