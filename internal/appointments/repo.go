package appointments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/awisniewski/tiredepot-backend/pkg/db/models"
	"github.com/awisniewski/tiredepot-backend/pkg/enums"
	"github.com/awisniewski/tiredepot-backend/pkg/pagination"
)

// Repository defines persistence operations for appointments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, appointment *models.Appointment) (*models.Appointment, error)
	Find(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	FindConflict(ctx context.Context, resource string, start, end time.Time, excludeID uuid.UUID) (*models.Appointment, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	List(ctx context.Context, params pagination.Params, filters Filters) (*AppointmentList, error)
	ListUpcoming(ctx context.Context, from time.Time, until time.Time) ([]models.Appointment, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an appointments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, appointment *models.Appointment) (*models.Appointment, error) {
	if err := r.db.WithContext(ctx).Create(appointment).Error; err != nil {
		return nil, err
	}
	return appointment, nil
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	var appointment models.Appointment
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&appointment).Error
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *repository) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	var appointment models.Appointment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&appointment).Error
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

// FindConflict locks and returns a scheduled appointment on the resource whose
// closed-open window intersects [start, end), excluding the given id so a
// reschedule never conflicts with itself. Back-to-back bookings where one ends
// exactly when the next starts do not match.
func (r *repository) FindConflict(ctx context.Context, resource string, start, end time.Time, excludeID uuid.UUID) (*models.Appointment, error) {
	var appointment models.Appointment
	query := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("resource = ?", resource).
		Where("status = ?", enums.AppointmentStatusScheduled).
		Where("start_at < ? AND ? < end_at", end, start)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.
		Order("start_at ASC").
		First(&appointment).Error
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters Filters) (*AppointmentList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Appointment{})
	if filters.ClientID != nil {
		query = query.Where("client_id = ?", *filters.ClientID)
	}
	if filters.Resource != "" {
		query = query.Where("resource = ?", filters.Resource)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.From != nil {
		query = query.Where("start_at >= ?", *filters.From)
	}
	if filters.To != nil {
		query = query.Where("start_at < ?", *filters.To)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	var appointments []models.Appointment
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&appointments).Error; err != nil {
		return nil, err
	}

	list := &AppointmentList{}
	if len(appointments) == limit {
		last := appointments[limit-2]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		appointments = appointments[:limit-1]
	}
	list.Appointments = appointments
	return list, nil
}

// ListUpcoming returns scheduled appointments starting in [from, until),
// ordered by start time with id as the tiebreak. Each call re-reads current
// rows, so bookings made between calls show up.
func (r *repository) ListUpcoming(ctx context.Context, from time.Time, until time.Time) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.AppointmentStatusScheduled).
		Where("start_at >= ? AND start_at < ?", from, until).
		Order("start_at ASC").
		Order("id ASC").
		Find(&appointments).Error
	return appointments, err
}
