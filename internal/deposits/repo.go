package deposits

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

// Repository defines persistence operations for tire deposits and their
// storage locations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, deposit *models.Deposit) (*models.Deposit, error)
	Find(ctx context.Context, id uuid.UUID) (*models.Deposit, error)
	FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Deposit, error)
	FindStoredByLocation(ctx context.Context, location string) (*models.Deposit, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.DepositStatus, releasedAt *time.Time) error
	List(ctx context.Context, params pagination.Params, filters Filters) (*DepositList, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]models.Deposit, error)
	CreateLocation(ctx context.Context, location *models.StorageLocation) (*models.StorageLocation, error)
	ListLocations(ctx context.Context) ([]models.StorageLocation, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a deposits repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, deposit *models.Deposit) (*models.Deposit, error) {
	if err := r.db.WithContext(ctx).Create(deposit).Error; err != nil {
		return nil, err
	}
	return deposit, nil
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.Deposit, error) {
	var deposit models.Deposit
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&deposit).Error
	if err != nil {
		return nil, err
	}
	return &deposit, nil
}

func (r *repository) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Deposit, error) {
	var deposit models.Deposit
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&deposit).Error
	if err != nil {
		return nil, err
	}
	return &deposit, nil
}

// FindStoredByLocation locks and returns the stored deposit occupying the
// location, if any. The partial unique index on (location) WHERE status =
// 'stored' backs this check against concurrent intakes.
func (r *repository) FindStoredByLocation(ctx context.Context, location string) (*models.Deposit, error) {
	var deposit models.Deposit
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("location = ? AND status = ?", location, enums.DepositStatusStored).
		First(&deposit).Error
	if err != nil {
		return nil, err
	}
	return &deposit, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.DepositStatus, releasedAt *time.Time) error {
	updates := map[string]any{"status": status}
	if releasedAt != nil {
		updates["released_at"] = *releasedAt
	}
	return r.db.WithContext(ctx).Model(&models.Deposit{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters Filters) (*DepositList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Deposit{})
	if filters.ClientID != nil {
		query = query.Where("client_id = ?", *filters.ClientID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Location != "" {
		query = query.Where("location = ?", filters.Location)
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

	var deposits []models.Deposit
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&deposits).Error; err != nil {
		return nil, err
	}

	list := &DepositList{}
	if len(deposits) == limit {
		last := deposits[limit-2]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		deposits = deposits[:limit-1]
	}
	list.Deposits = deposits
	return list, nil
}

// ListOverdue returns active deposits whose due date has passed, most overdue
// first with id as the tiebreak.
func (r *repository) ListOverdue(ctx context.Context, asOf time.Time) ([]models.Deposit, error) {
	var deposits []models.Deposit
	err := r.db.WithContext(ctx).
		Where("status IN ?", []enums.DepositStatus{
			enums.DepositStatusStored,
			enums.DepositStatusNotifiedForPickup,
		}).
		Where("due_at < ?", asOf).
		Order("due_at ASC").
		Order("id ASC").
		Find(&deposits).Error
	return deposits, err
}

func (r *repository) CreateLocation(ctx context.Context, location *models.StorageLocation) (*models.StorageLocation, error) {
	if err := r.db.WithContext(ctx).Create(location).Error; err != nil {
		return nil, err
	}
	return location, nil
}

func (r *repository) ListLocations(ctx context.Context) ([]models.StorageLocation, error) {
	var locations []models.StorageLocation
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&locations).Error
	return locations, err
}
