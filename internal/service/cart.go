package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pharmacy-storefront/internal/apperr"
	"pharmacy-storefront/internal/model"
	"pharmacy-storefront/internal/repository"
)

// CartService owns the pending-selection aggregate. Every mutation runs
// in one transaction that locks the cart row, so line state and the
// cached total are never observed half-written and cart activity for one
// user is serialized.
type CartService interface {
	AddItem(ctx context.Context, userID, productID uint) error
	RemoveItem(ctx context.Context, userID, productID uint) error
	DecreaseItem(ctx context.Context, userID, productID uint) error
	Items(ctx context.Context, userID uint) ([]*model.CartItem, error)
	Total(ctx context.Context, userID uint) (decimal.Decimal, error)
}

type cartServiceImpl struct {
	db          *gorm.DB
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

func NewCartService(db *gorm.DB, cartRepo repository.CartRepository, productRepo repository.ProductRepository, logger *zap.Logger) CartService {
	return &cartServiceImpl{
		db:          db,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

func (s *cartServiceImpl) AddItem(ctx context.Context, userID, productID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartRepo.FindOrCreateLocked(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}

		product, err := s.productRepo.FindByID(ctx, tx, productID)
		if err != nil {
			return err
		}

		items, err := s.cartRepo.ListItems(ctx, tx, cart.ID)
		if err != nil {
			return fmt.Errorf("list cart items: %w", err)
		}

		// The invariant check runs before any mutation so a rejected add
		// leaves the cart untouched.
		for _, item := range items {
			if item.Product.Type != product.Type {
				return apperr.Validation("cart cannot mix compounded and resale products; finish or empty the current cart first")
			}
		}

		existing, err := s.cartRepo.FindItem(ctx, tx, cart.ID, productID)
		switch {
		case err == nil:
			existing.Quantity++
			if err := s.cartRepo.SaveItem(ctx, tx, existing); err != nil {
				return fmt.Errorf("increment cart item: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			newItem := &model.CartItem{CartID: cart.ID, ProductID: productID, Quantity: 1}
			if err := s.cartRepo.SaveItem(ctx, tx, newItem); err != nil {
				return fmt.Errorf("add cart item: %w", err)
			}
		default:
			return fmt.Errorf("find cart item: %w", err)
		}

		return s.refreshTotal(ctx, tx, cart.ID)
	})
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, userID, productID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartRepo.FindOrCreateLocked(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}

		item, err := s.cartRepo.FindItem(ctx, tx, cart.ID, productID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("item not in cart")
		}
		if err != nil {
			return fmt.Errorf("find cart item: %w", err)
		}

		if err := s.cartRepo.DeleteItem(ctx, tx, item); err != nil {
			return fmt.Errorf("delete cart item: %w", err)
		}

		return s.refreshTotal(ctx, tx, cart.ID)
	})
}

func (s *cartServiceImpl) DecreaseItem(ctx context.Context, userID, productID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.cartRepo.FindOrCreateLocked(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}

		item, err := s.cartRepo.FindItem(ctx, tx, cart.ID, productID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("item not in cart")
		}
		if err != nil {
			return fmt.Errorf("find cart item: %w", err)
		}

		// Decrement never drops below one unit; removing the last unit
		// requires an explicit remove.
		if item.Quantity > 1 {
			item.Quantity--
			if err := s.cartRepo.SaveItem(ctx, tx, item); err != nil {
				return fmt.Errorf("decrement cart item: %w", err)
			}
		}

		return s.refreshTotal(ctx, tx, cart.ID)
	})
}

func (s *cartServiceImpl) Items(ctx context.Context, userID uint) ([]*model.CartItem, error) {
	cart, err := s.cartRepo.FindByUserID(ctx, s.db, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []*model.CartItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return s.cartRepo.ListItems(ctx, s.db, cart.ID)
}

func (s *cartServiceImpl) Total(ctx context.Context, userID uint) (decimal.Decimal, error) {
	cart, err := s.cartRepo.FindByUserID(ctx, s.db, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("load cart: %w", err)
	}
	return cart.TotalValue, nil
}

// refreshTotal recomputes the cart total from its lines inside the
// mutating transaction, never from a cached value.
func (s *cartServiceImpl) refreshTotal(ctx context.Context, tx *gorm.DB, cartID uint) error {
	items, err := s.cartRepo.ListItems(ctx, tx, cartID)
	if err != nil {
		return fmt.Errorf("list cart items: %w", err)
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	if err := s.cartRepo.UpdateTotal(ctx, tx, cartID, total); err != nil {
		return fmt.Errorf("update cart total: %w", err)
	}
	return nil
}
