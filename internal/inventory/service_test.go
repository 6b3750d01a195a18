package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/awisniewski/tiredepot-backend/pkg/db/models"
	pkgerrors "github.com/awisniewski/tiredepot-backend/pkg/errors"
	"github.com/awisniewski/tiredepot-backend/pkg/pagination"
)

type stubInventoryRepo struct {
	items       map[uuid.UUID]*models.StockItem
	adjustments []models.StockAdjustment
}

func newStubInventoryRepo(items ...*models.StockItem) *stubInventoryRepo {
	repo := &stubInventoryRepo{items: make(map[uuid.UUID]*models.StockItem)}
	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		repo.items[item.ID] = item
	}
	return repo
}

func (s *stubInventoryRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubInventoryRepo) CreateStockItem(ctx context.Context, item *models.StockItem) (*models.StockItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	s.items[item.ID] = item
	return item, nil
}

func (s *stubInventoryRepo) FindStockItem(ctx context.Context, id uuid.UUID) (*models.StockItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *stubInventoryRepo) FindStockItemForUpdate(ctx context.Context, id uuid.UUID) (*models.StockItem, error) {
	return s.FindStockItem(ctx, id)
}

func (s *stubInventoryRepo) UpdateQuantities(ctx context.Context, id uuid.UUID, onHand, reserved int) error {
	item, ok := s.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.QuantityOnHand = onHand
	item.ReservedQty = reserved
	return nil
}

func (s *stubInventoryRepo) UpdateStockItem(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubInventoryRepo) CreateAdjustment(ctx context.Context, adjustment *models.StockAdjustment) error {
	s.adjustments = append(s.adjustments, *adjustment)
	return nil
}

func (s *stubInventoryRepo) ListAdjustments(ctx context.Context, itemID uuid.UUID, limit int) ([]models.StockAdjustment, error) {
	var rows []models.StockAdjustment
	for _, adj := range s.adjustments {
		if adj.StockItemID == itemID {
			rows = append(rows, adj)
		}
	}
	return rows, nil
}

func (s *stubInventoryRepo) ListStockItems(ctx context.Context, params pagination.Params, filters ItemFilters) (*ItemList, error) {
	return &ItemList{}, nil
}

func (s *stubInventoryRepo) ListLowStock(ctx context.Context) ([]models.StockItem, error) {
	var items []models.StockItem
	for _, item := range s.items {
		if item.IsLowStock() {
			items = append(items, *item)
		}
	}
	return items, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func errCode(t *testing.T, err error) pkgerrors.Code {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected app error, got %v", err)
	}
	return appErr.Code()
}

func TestAdjustAppliesDeltaAndWritesAudit(t *testing.T) {
	item := &models.StockItem{QuantityOnHand: 10, ReorderThreshold: 2}
	repo := newStubInventoryRepo(item)
	svc, err := NewService(repo, stubTxRunner{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	updated, err := svc.Adjust(context.Background(), AdjustInput{
		ItemID: item.ID,
		Delta:  -4,
		Reason: "sold over the counter",
	})
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if updated.QuantityOnHand != 6 {
		t.Fatalf("expected on hand 6, got %d", updated.QuantityOnHand)
	}
	if len(repo.adjustments) != 1 {
		t.Fatalf("expected 1 audit row, got %d", len(repo.adjustments))
	}
	audit := repo.adjustments[0]
	if audit.Delta != -4 || audit.ResultingQty != 6 {
		t.Fatalf("unexpected audit row: delta=%d resulting=%d", audit.Delta, audit.ResultingQty)
	}
}

func TestAdjustRejectsNegativeResult(t *testing.T) {
	item := &models.StockItem{QuantityOnHand: 3}
	repo := newStubInventoryRepo(item)
	svc, _ := NewService(repo, stubTxRunner{})

	_, err := svc.Adjust(context.Background(), AdjustInput{
		ItemID: item.ID,
		Delta:  -5,
		Reason: "recount",
	})
	if code := errCode(t, err); code != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %s", code)
	}
	if item.QuantityOnHand != 3 {
		t.Fatalf("quantity should be untouched, got %d", item.QuantityOnHand)
	}
	if len(repo.adjustments) != 0 {
		t.Fatal("no audit row should be written on rejection")
	}
}

func TestAdjustRejectsUncoveringReservedStock(t *testing.T) {
	item := &models.StockItem{QuantityOnHand: 8, ReservedQty: 6}
	repo := newStubInventoryRepo(item)
	svc, _ := NewService(repo, stubTxRunner{})

	_, err := svc.Adjust(context.Background(), AdjustInput{
		ItemID: item.ID,
		Delta:  -4,
		Reason: "damaged in storage",
	})
	if code := errCode(t, err); code != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %s", code)
	}
}

func TestAdjustValidatesInput(t *testing.T) {
	repo := newStubInventoryRepo()
	svc, _ := NewService(repo, stubTxRunner{})

	cases := []struct {
		name  string
		input AdjustInput
	}{
		{"missing item", AdjustInput{Delta: 1, Reason: "x"}},
		{"zero delta", AdjustInput{ItemID: uuid.New(), Delta: 0, Reason: "x"}},
		{"missing reason", AdjustInput{ItemID: uuid.New(), Delta: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Adjust(context.Background(), tc.input)
			if code := errCode(t, err); code != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %s", code)
			}
		})
	}
}

func TestReserveHoldsStock(t *testing.T) {
	item := &models.StockItem{QuantityOnHand: 10, ReservedQty: 3}
	repo := newStubInventoryRepo(item)
	svc, _ := NewService(repo, stubTxRunner{})

	locked, err := svc.Reserve(context.Background(), &gorm.DB{}, item.ID, 5)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if locked != item {
		t.Fatal("expected the locked row back from Reserve")
	}
	if item.ReservedQty != 8 {
		t.Fatalf("expected reserved 8, got %d", item.ReservedQty)
	}
	if item.QuantityOnHand != 10 {
		t.Fatalf("reserve must not touch on hand, got %d", item.QuantityOnHand)
	}
}

func TestReserveRejectsOverAvailable(t *testing.T) {
	item := &models.StockItem{QuantityOnHand: 10, ReservedQty: 7}
	repo := newStubInventoryRepo(item)
	svc, _ := NewService(repo, stubTxRunner{})

	_, err := svc.Reserve(context.Background(), &gorm.DB{}, item.ID, 4)
	if code := errCode(t, err); code != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %s", code)
	}
	if item.ReservedQty != 7 {
		t.Fatalf("reservation should be untouched, got %d", item.ReservedQty)
	}
}

func TestReleaseReturnsReservedStock(t *testing.T) {
	item := &models.StockItem{QuantityOnHand: 10, ReservedQty: 5}
	repo := newStubInventoryRepo(item)
	svc, _ := NewService(repo, stubTxRunner{})

	if err := svc.Release(context.Background(), &gorm.DB{}, item.ID, 5); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if item.ReservedQty != 0 {
		t.Fatalf("expected reserved 0, got %d", item.ReservedQty)
	}
}

func TestReleaseRejectsOverReserved(t *testing.T) {
	item := &models.StockItem{QuantityOnHand: 10, ReservedQty: 2}
	repo := newStubInventoryRepo(item)
	svc, _ := NewService(repo, stubTxRunner{})

	err := svc.Release(context.Background(), &gorm.DB{}, item.ID, 3)
	if code := errCode(t, err); code != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %s", code)
	}
}

func TestCommitDecrementsBothCounts(t *testing.T) {
	item := &models.StockItem{QuantityOnHand: 10, ReservedQty: 4}
	repo := newStubInventoryRepo(item)
	svc, _ := NewService(repo, stubTxRunner{})

	if err := svc.Commit(context.Background(), &gorm.DB{}, item.ID, 4); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if item.QuantityOnHand != 6 || item.ReservedQty != 0 {
		t.Fatalf("expected 6 on hand and 0 reserved, got %d/%d", item.QuantityOnHand, item.ReservedQty)
	}
}

func TestLowStockReflectsAdjustments(t *testing.T) {
	item := &models.StockItem{QuantityOnHand: 1, ReorderThreshold: 2}
	repo := newStubInventoryRepo(item)
	svc, _ := NewService(repo, stubTxRunner{})

	low, err := svc.LowStock(context.Background())
	if err != nil {
		t.Fatalf("LowStock: %v", err)
	}
	if len(low) != 1 {
		t.Fatalf("expected item to be low on stock, got %d rows", len(low))
	}

	if _, err := svc.Adjust(context.Background(), AdjustInput{
		ItemID: item.ID,
		Delta:  10,
		Reason: "restock delivery",
	}); err != nil {
		t.Fatalf("Adjust: %v", err)
	}

	low, err = svc.LowStock(context.Background())
	if err != nil {
		t.Fatalf("LowStock: %v", err)
	}
	if len(low) != 0 {
		t.Fatalf("expected no low stock rows after restock, got %d", len(low))
	}
}
