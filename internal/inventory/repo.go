package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/awisniewski/tiredepot-backend/pkg/db/models"
	"github.com/awisniewski/tiredepot-backend/pkg/pagination"
)

// Repository defines persistence operations for stock items and their audit trail.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateStockItem(ctx context.Context, item *models.StockItem) (*models.StockItem, error)
	FindStockItem(ctx context.Context, id uuid.UUID) (*models.StockItem, error)
	FindStockItemForUpdate(ctx context.Context, id uuid.UUID) (*models.StockItem, error)
	UpdateQuantities(ctx context.Context, id uuid.UUID, onHand, reserved int) error
	UpdateStockItem(ctx context.Context, id uuid.UUID, updates map[string]any) error
	CreateAdjustment(ctx context.Context, adjustment *models.StockAdjustment) error
	ListAdjustments(ctx context.Context, itemID uuid.UUID, limit int) ([]models.StockAdjustment, error)
	ListStockItems(ctx context.Context, params pagination.Params, filters ItemFilters) (*ItemList, error)
	ListLowStock(ctx context.Context) ([]models.StockItem, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateStockItem(ctx context.Context, item *models.StockItem) (*models.StockItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) FindStockItem(ctx context.Context, id uuid.UUID) (*models.StockItem, error) {
	var item models.StockItem
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindStockItemForUpdate loads the row under a FOR UPDATE lock so concurrent
// adjustments and reservations serialize per item.
func (r *repository) FindStockItemForUpdate(ctx context.Context, id uuid.UUID) (*models.StockItem, error) {
	var item models.StockItem
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) UpdateQuantities(ctx context.Context, id uuid.UUID, onHand, reserved int) error {
	return r.db.WithContext(ctx).Model(&models.StockItem{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"quantity_on_hand": onHand,
			"reserved_qty":     reserved,
		}).Error
}

func (r *repository) UpdateStockItem(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.StockItem{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) CreateAdjustment(ctx context.Context, adjustment *models.StockAdjustment) error {
	return r.db.WithContext(ctx).Create(adjustment).Error
}

func (r *repository) ListAdjustments(ctx context.Context, itemID uuid.UUID, limit int) ([]models.StockAdjustment, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	var rows []models.StockAdjustment
	err := r.db.WithContext(ctx).
		Where("stock_item_id = ?", itemID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListStockItems(ctx context.Context, params pagination.Params, filters ItemFilters) (*ItemList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.StockItem{})
	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	if q := filters.Query; q != "" {
		like := "%" + q + "%"
		query = query.Where("name LIKE ? OR size LIKE ?", like, like)
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

	var items []models.StockItem
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}

	list := &ItemList{}
	if len(items) == limit {
		last := items[limit-2]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		items = items[:limit-1]
	}
	list.Items = items
	return list, nil
}

// ListLowStock returns items at or below their reorder threshold, most
// depleted first. The deficit ordering keeps repeated calls stable while the
// underlying rows change.
func (r *repository) ListLowStock(ctx context.Context) ([]models.StockItem, error) {
	var items []models.StockItem
	err := r.db.WithContext(ctx).
		Where("quantity_on_hand <= reorder_threshold").
		Order("(quantity_on_hand - reorder_threshold) ASC").
		Order("id ASC").
		Find(&items).Error
	return items, err
}
