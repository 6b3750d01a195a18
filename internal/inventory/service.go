package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/awisniewski/tiredepot-backend/pkg/db/models"
	pkgerrors "github.com/awisniewski/tiredepot-backend/pkg/errors"
	"github.com/awisniewski/tiredepot-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines inventory-level operations beyond repository reads.
type Service interface {
	CreateItem(ctx context.Context, input CreateItemInput) (*models.StockItem, error)
	UpdateItem(ctx context.Context, itemID uuid.UUID, input UpdateItemInput) (*models.StockItem, error)
	GetItem(ctx context.Context, itemID uuid.UUID) (*models.StockItem, error)
	ListItems(ctx context.Context, params pagination.Params, filters ItemFilters) (*ItemList, error)
	Adjust(ctx context.Context, input AdjustInput) (*models.StockItem, error)
	Adjustments(ctx context.Context, itemID uuid.UUID, limit int) ([]models.StockAdjustment, error)
	LowStock(ctx context.Context) ([]models.StockItem, error)
	Reserve(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, qty int) (*models.StockItem, error)
	Release(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, qty int) error
	Commit(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, qty int) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds an inventory service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*models.StockItem, error) {
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid stock category")
	}
	item := &models.StockItem{
		Category:         input.Category,
		Name:             input.Name,
		Size:             input.Size,
		QuantityOnHand:   input.QuantityOnHand,
		ReorderThreshold: input.ReorderThreshold,
		Location:         input.Location,
		UnitPrice:        input.UnitPrice,
	}
	created, err := s.repo.CreateStockItem(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stock item")
	}
	return created, nil
}

func (s *service) UpdateItem(ctx context.Context, itemID uuid.UUID, input UpdateItemInput) (*models.StockItem, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Size != nil {
		updates["size"] = *input.Size
	}
	if input.ReorderThreshold != nil {
		updates["reorder_threshold"] = *input.ReorderThreshold
	}
	if input.Location != nil {
		updates["location"] = *input.Location
	}
	if input.UnitPrice != nil {
		updates["unit_price"] = *input.UnitPrice
	}
	if len(updates) == 0 {
		return s.GetItem(ctx, itemID)
	}
	if _, err := s.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStockItem(ctx, itemID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock item")
	}
	return s.GetItem(ctx, itemID)
}

func (s *service) GetItem(ctx context.Context, itemID uuid.UUID) (*models.StockItem, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	item, err := s.repo.FindStockItem(ctx, itemID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock item")
	}
	return item, nil
}

func (s *service) ListItems(ctx context.Context, params pagination.Params, filters ItemFilters) (*ItemList, error) {
	list, err := s.repo.ListStockItems(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock items")
	}
	return list, nil
}

// Adjust applies a manual stock movement and writes the audit row in the same
// transaction. A delta that would take the on-hand quantity below the reserved
// quantity is rejected, so reservations stay covered.
func (s *service) Adjust(ctx context.Context, input AdjustInput) (*models.StockItem, error) {
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if input.Delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta must be non-zero")
	}
	if input.Reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason required")
	}

	var updated *models.StockItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := repo.FindStockItemForUpdate(ctx, input.ItemID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "stock item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock item")
		}

		newOnHand := item.QuantityOnHand + input.Delta
		if newOnHand < 0 {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "adjustment would take stock negative").
				WithDetails(map[string]any{
					"item_id":          item.ID,
					"quantity_on_hand": item.QuantityOnHand,
					"delta":            input.Delta,
				})
		}
		if newOnHand < item.ReservedQty {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "adjustment would uncover reserved stock").
				WithDetails(map[string]any{
					"item_id":      item.ID,
					"reserved_qty": item.ReservedQty,
					"delta":        input.Delta,
				})
		}

		if err := repo.UpdateQuantities(ctx, item.ID, newOnHand, item.ReservedQty); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock quantities")
		}
		adjustment := &models.StockAdjustment{
			StockItemID:  item.ID,
			Delta:        input.Delta,
			Reason:       input.Reason,
			ResultingQty: newOnHand,
		}
		if err := repo.CreateAdjustment(ctx, adjustment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock adjustment")
		}

		item.QuantityOnHand = newOnHand
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Adjustments(ctx context.Context, itemID uuid.UUID, limit int) ([]models.StockAdjustment, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	rows, err := s.repo.ListAdjustments(ctx, itemID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock adjustments")
	}
	return rows, nil
}

func (s *service) LowStock(ctx context.Context) ([]models.StockItem, error) {
	items, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock items")
	}
	return items, nil
}

// Reserve holds qty units against the item inside the caller's transaction.
// The returned item is the row read under the lock, so callers price lines
// from the same snapshot the reservation was taken against.
func (s *service) Reserve(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, qty int) (*models.StockItem, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reserve quantity must be positive")
	}
	repo := s.repo.WithTx(tx)
	item, err := repo.FindStockItemForUpdate(ctx, itemID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock item")
	}
	if item.AvailableToPromise() < qty {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough unreserved stock").
			WithDetails(map[string]any{
				"item_id":   item.ID,
				"available": item.AvailableToPromise(),
				"requested": qty,
			})
	}
	if err := repo.UpdateQuantities(ctx, item.ID, item.QuantityOnHand, item.ReservedQty+qty); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update reservation")
	}
	item.ReservedQty += qty
	return item, nil
}

// Release returns previously reserved units inside the caller's transaction.
func (s *service) Release(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "release quantity must be positive")
	}
	repo := s.repo.WithTx(tx)
	item, err := repo.FindStockItemForUpdate(ctx, itemID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "stock item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock item")
	}
	if qty > item.ReservedQty {
		return pkgerrors.New(pkgerrors.CodeValidation, "release exceeds reserved quantity").
			WithDetails(map[string]any{
				"item_id":      item.ID,
				"reserved_qty": item.ReservedQty,
				"requested":    qty,
			})
	}
	if err := repo.UpdateQuantities(ctx, item.ID, item.QuantityOnHand, item.ReservedQty-qty); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update reservation")
	}
	return nil
}

// Commit converts a reservation into a real decrement when an order fulfills.
func (s *service) Commit(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "commit quantity must be positive")
	}
	repo := s.repo.WithTx(tx)
	item, err := repo.FindStockItemForUpdate(ctx, itemID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "stock item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock item")
	}
	if qty > item.ReservedQty {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "commit exceeds reserved quantity").
			WithDetails(map[string]any{
				"item_id":      item.ID,
				"reserved_qty": item.ReservedQty,
				"requested":    qty,
			})
	}
	if err := repo.UpdateQuantities(ctx, item.ID, item.QuantityOnHand-qty, item.ReservedQty-qty); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "commit reservation")
	}
	return nil
}
