package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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

// StockKeeper is the slice of the inventory service orders depend on.
// Reservations move through it so the non-negative stock invariant is
// enforced in exactly one place.
type StockKeeper interface {
	Reserve(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, qty int) (*models.StockItem, error)
	Release(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, qty int) error
	Commit(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, qty int) error
}

// Service defines order lifecycle operations.
type Service interface {
	Place(ctx context.Context, input PlaceInput) (*models.Order, error)
	Fulfill(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	Cancel(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters Filters) (*OrderList, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxPublisher
	inventory StockKeeper
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher, inventory StockKeeper) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("stock keeper required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		outbox:    outboxSvc,
		inventory: inventory,
	}, nil
}

// Place creates the order and reserves stock for every line in one
// transaction. Any line that cannot reserve rolls the whole order back.
func (s *service) Place(ctx context.Context, input PlaceInput) (*models.Order, error) {
	if input.ClientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client id required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order needs at least one line")
	}
	seen := make(map[uuid.UUID]bool, len(input.Lines))
	for _, line := range input.Lines {
		if line.StockItemID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line stock item id required")
		}
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
		if seen[line.StockItemID] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate stock item in order lines")
		}
		seen[line.StockItemID] = true
	}

	var placed *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		total := decimal.Zero
		lineItems := make([]models.OrderLineItem, 0, len(input.Lines))
		for _, line := range input.Lines {
			item, err := s.inventory.Reserve(ctx, tx, line.StockItemID, line.Quantity)
			if err != nil {
				return err
			}
			total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
			lineItems = append(lineItems, models.OrderLineItem{
				StockItemID: item.ID,
				Quantity:    line.Quantity,
				UnitPrice:   item.UnitPrice,
			})
		}

		order := &models.Order{
			ClientID:    input.ClientID,
			Status:      enums.OrderStatusPlaced,
			TotalAmount: total,
			Notes:       input.Notes,
		}
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		for i := range lineItems {
			lineItems[i].OrderID = order.ID
		}
		if err := repo.CreateLineItems(ctx, lineItems); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order lines")
		}

		order.LineItems = lineItems
		placed = order
		return s.emitEvent(ctx, tx, enums.OutboxEventOrderPlaced, order)
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

// Fulfill commits every reservation and closes the order. All lines commit or
// none do.
func (s *service) Fulfill(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var fulfilled *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrderForUpdate(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status == enums.OrderStatusFulfilled {
			fulfilled = order
			return nil
		}
		if order.Status != enums.OrderStatusPlaced {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only placed orders can fulfill").
				WithDetails(map[string]any{"status": order.Status})
		}

		items, err := repo.FindLineItems(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order lines")
		}
		for _, item := range items {
			if err := s.inventory.Commit(ctx, tx, item.StockItemID, item.Quantity); err != nil {
				return err
			}
		}
		if err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusFulfilled); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		order.Status = enums.OrderStatusFulfilled
		order.LineItems = items
		fulfilled = order
		return s.emitEvent(ctx, tx, enums.OutboxEventOrderFulfilled, order)
	})
	if err != nil {
		return nil, err
	}
	return fulfilled, nil
}

// Cancel releases every reservation and closes the order. Fulfilled orders
// cannot cancel; repeat cancels are a no-op.
func (s *service) Cancel(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var cancelled *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrderForUpdate(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status == enums.OrderStatusCancelled {
			cancelled = order
			return nil
		}
		if order.Status != enums.OrderStatusPlaced {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "fulfilled orders cannot cancel").
				WithDetails(map[string]any{"status": order.Status})
		}

		items, err := repo.FindLineItems(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order lines")
		}
		for _, item := range items {
			if err := s.inventory.Release(ctx, tx, item.StockItemID, item.Quantity); err != nil {
				return err
			}
		}
		if err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusCancelled); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		order.Status = enums.OrderStatusCancelled
		order.LineItems = items
		cancelled = order
		return s.emitEvent(ctx, tx, enums.OutboxEventOrderCancelled, order)
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

func (s *service) emitEvent(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, order *models.Order) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.OutboxAggregateOrder,
		AggregateID:   order.ID,
		Version:       1,
		Data: OrderEvent{
			OrderID:     order.ID,
			ClientID:    order.ClientID,
			Status:      order.Status,
			TotalAmount: order.TotalAmount,
			LineCount:   len(order.LineItems),
		},
	})
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters Filters) (*OrderList, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}
