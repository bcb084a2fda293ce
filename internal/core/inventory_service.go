package core

import (
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// Catalog is the item-catalog view used inside a unit of work. It enforces
// that every requested item exists and funnels stock changes through the
// repository's non-negative guard.
type Catalog struct {
	items ItemRepository
}

func NewCatalog(items ItemRepository) *Catalog {
	return &Catalog{items: items}
}

// FindMany returns every item in ids keyed by id, or NotFound naming the
// first missing id. Duplicate ids are collapsed.
func (c *Catalog) FindMany(ctx context.Context, ids []int64) (map[int64]Item, error) {
	unique := slices.Clone(ids)
	slices.Sort(unique)
	unique = slices.Compact(unique)

	found, err := c.items.FindMany(ctx, unique)
	if err != nil {
		return nil, err
	}
	for _, id := range unique {
		if _, ok := found[id]; !ok {
			return nil, NotFound("item", id)
		}
	}
	return found, nil
}

// AdjustStock applies delta to one item's on-hand quantity.
func (c *Catalog) AdjustStock(ctx context.Context, id, delta int64) (int64, error) {
	return c.items.AdjustStock(ctx, id, delta)
}

// NewItemInput is the input for registering an item.
type NewItemInput struct {
	Name         string `validate:"required,max=200"`
	Unit         string `validate:"required,max=32"`
	UnitCost     int64  `validate:"gte=0,max=1000000000000000"`
	InitialStock int64  `validate:"gte=0,max=1000000000"`
}

// InventoryService manages the item catalog and inbound stock.
type InventoryService interface {
	ListItems(ctx context.Context) ([]Item, error)
	GetItem(ctx context.Context, id int64) (*Item, error)
	CreateItem(ctx context.Context, in NewItemInput) (*Item, error)
	// ReceiveStock records an inbound delivery, increasing on-hand by qty.
	ReceiveStock(ctx context.Context, itemID, qty int64) (*Item, error)
	// DeleteItem removes an item that no issuance references.
	DeleteItem(ctx context.Context, id int64) error
}

type inventoryService struct {
	store  Store
	audit  AuditPublisher
	clock  Clock
	logger *zap.Logger
}

func NewInventoryService(store Store, audit AuditPublisher, clock Clock, logger *zap.Logger) InventoryService {
	return &inventoryService{store: store, audit: audit, clock: clock, logger: logger.Named("inventory")}
}

func (s *inventoryService) ListItems(ctx context.Context) ([]Item, error) {
	var items []Item
	err := s.store.View(ctx, func(uow UnitOfWork) error {
		var err error
		items, err = uow.Items().List(ctx)
		return err
	})
	if err != nil {
		return nil, logFailure(s.logger, "list items", err)
	}
	return items, nil
}

func (s *inventoryService) GetItem(ctx context.Context, id int64) (*Item, error) {
	var item *Item
	err := s.store.View(ctx, func(uow UnitOfWork) error {
		var err error
		item, err = uow.Items().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, logFailure(s.logger, "get item", err)
	}
	return item, nil
}

func (s *inventoryService) CreateItem(ctx context.Context, in NewItemInput) (*Item, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Unit = strings.TrimSpace(in.Unit)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	var created *Item
	err := s.store.InTx(ctx, func(uow UnitOfWork) error {
		var err error
		created, err = uow.Items().Create(ctx, Item{
			Name:     in.Name,
			Unit:     in.Unit,
			UnitCost: in.UnitCost,
			OnHand:   in.InitialStock,
		})
		return err
	})
	if err != nil {
		return nil, logFailure(s.logger, "create item", err)
	}

	s.publish(ctx, AuditItemCreated, created.ID, nil, created)
	return created, nil
}

func (s *inventoryService) ReceiveStock(ctx context.Context, itemID, qty int64) (*Item, error) {
	if qty <= 0 {
		return nil, Validationf("receive quantity must be positive, got %d", qty)
	}
	if qty > MaxQuantity {
		return nil, Validationf("receive quantity must be at most %d, got %d", MaxQuantity, qty)
	}

	var before, after Item
	err := s.store.InTx(ctx, func(uow UnitOfWork) error {
		items, err := NewCatalog(uow.Items()).FindMany(ctx, []int64{itemID})
		if err != nil {
			return err
		}
		before = items[itemID]
		onHand, err := uow.Items().AdjustStock(ctx, itemID, qty)
		if err != nil {
			return err
		}
		after = before
		after.OnHand = onHand
		return nil
	})
	if err != nil {
		return nil, logFailure(s.logger, "receive stock", err)
	}

	s.logger.Info("stock received",
		zap.Int64("item_id", itemID),
		zap.Int64("quantity", qty),
		zap.Int64("on_hand", after.OnHand),
	)
	s.publish(ctx, AuditItemStockReceived, itemID, before, after)
	return &after, nil
}

func (s *inventoryService) DeleteItem(ctx context.Context, id int64) error {
	var before *Item
	err := s.store.InTx(ctx, func(uow UnitOfWork) error {
		var err error
		before, err = uow.Items().Get(ctx, id)
		if err != nil {
			return err
		}
		referenced, err := uow.Items().IsReferenced(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return Conflictf("item %d is referenced by existing issuances and cannot be deleted", id)
		}
		return uow.Items().Delete(ctx, id)
	})
	if err != nil {
		return logFailure(s.logger, "delete item", err)
	}

	s.publish(ctx, AuditItemDeleted, id, before, nil)
	return nil
}

func (s *inventoryService) publish(ctx context.Context, action AuditAction, id int64, before, after any) {
	s.audit.Publish(ctx, newAuditEvent(ctx, s.clock, action, "item", id, before, after))
}
