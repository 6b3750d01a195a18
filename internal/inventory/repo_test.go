package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/awisniewski/tiredepot-backend/pkg/db/models"
	"github.com/awisniewski/tiredepot-backend/pkg/enums"
	"github.com/awisniewski/tiredepot-backend/pkg/pagination"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	stockItems := `
CREATE TABLE IF NOT EXISTS stock_items (
  id TEXT PRIMARY KEY,
  category TEXT NOT NULL,
  name TEXT NOT NULL,
  size TEXT,
  quantity_on_hand INTEGER NOT NULL DEFAULT 0,
  reserved_qty INTEGER NOT NULL DEFAULT 0,
  reorder_threshold INTEGER NOT NULL DEFAULT 1,
  location TEXT,
  unit_price NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	stockAdjustments := `
CREATE TABLE IF NOT EXISTS stock_adjustments (
  id TEXT PRIMARY KEY,
  stock_item_id TEXT NOT NULL,
  delta INTEGER NOT NULL,
  reason TEXT NOT NULL,
  resulting_qty INTEGER NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(stockItems).Error)
	require.NoError(t, db.Exec(stockAdjustments).Error)

	t.Cleanup(func() {
		db.Exec("DELETE FROM stock_adjustments")
		db.Exec("DELETE FROM stock_items")
	})

	return db
}

func seedStockItem(t *testing.T, db *gorm.DB, name string, onHand, threshold int, createdAt time.Time) models.StockItem {
	t.Helper()
	item := models.StockItem{
		ID:               uuid.New(),
		Category:         enums.StockCategoryTire,
		Name:             name,
		QuantityOnHand:   onHand,
		ReorderThreshold: threshold,
		CreatedAt:        createdAt,
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func TestListLowStockOrdersByDeficit(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	healthy := seedStockItem(t, db, "205/55R16 all-season", 20, 4, now)
	nearlyOut := seedStockItem(t, db, "225/45R17 winter", 0, 4, now)
	low := seedStockItem(t, db, "valve stem", 3, 5, now)

	items, err := repo.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, nearlyOut.ID, items[0].ID)
	assert.Equal(t, low.ID, items[1].ID)
	for _, item := range items {
		assert.NotEqual(t, healthy.ID, item.ID)
	}
}

func TestListStockItemsPaginates(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 3; i++ {
		seedStockItem(t, db, "item", 10, 1, base.Add(time.Duration(i)*time.Minute))
	}

	page, err := repo.ListStockItems(ctx, pagination.Params{Limit: 2}, ItemFilters{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)

	rest, err := repo.ListStockItems(ctx, pagination.Params{Limit: 2, Cursor: page.NextCursor}, ItemFilters{})
	require.NoError(t, err)
	require.Len(t, rest.Items, 1)
	assert.Empty(t, rest.NextCursor)
}

func TestListAdjustmentsNewestFirst(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	item := seedStockItem(t, db, "195/65R15 summer", 8, 2, time.Now().UTC())
	first := models.StockAdjustment{
		ID:           uuid.New(),
		StockItemID:  item.ID,
		Delta:        8,
		Reason:       "initial stock",
		ResultingQty: 8,
		CreatedAt:    time.Now().UTC().Add(-time.Minute),
	}
	second := models.StockAdjustment{
		ID:           uuid.New(),
		StockItemID:  item.ID,
		Delta:        -2,
		Reason:       "mounted on customer vehicle",
		ResultingQty: 6,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&second).Error)

	rows, err := repo.ListAdjustments(ctx, item.ID, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, second.ID, rows[0].ID)
	assert.Equal(t, first.ID, rows[1].ID)
}
