package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pharmacy-storefront/internal/model"
)

// CartRepository persists the cart aggregate. Mutating calls take the
// transaction handle of the enclosing unit of work so line state and the
// cached total always change atomically.
type CartRepository interface {
	// FindOrCreateLocked returns the user's cart, creating it lazily on
	// first use, with the row locked FOR UPDATE so concurrent cart
	// mutations and order creations for one user are serialized.
	FindOrCreateLocked(ctx context.Context, tx *gorm.DB, userID uint) (*model.Cart, error)
	FindByUserID(ctx context.Context, tx *gorm.DB, userID uint) (*model.Cart, error)
	ListItems(ctx context.Context, tx *gorm.DB, cartID uint) ([]*model.CartItem, error)
	FindItem(ctx context.Context, tx *gorm.DB, cartID, productID uint) (*model.CartItem, error)
	SaveItem(ctx context.Context, tx *gorm.DB, item *model.CartItem) error
	DeleteItem(ctx context.Context, tx *gorm.DB, item *model.CartItem) error
	ClearItems(ctx context.Context, tx *gorm.DB, cartID uint) error
	UpdateTotal(ctx context.Context, tx *gorm.DB, cartID uint, total decimal.Decimal) error
}

type cartRepoImpl struct{}

func NewCartRepository() CartRepository {
	return &cartRepoImpl{}
}

func (r *cartRepoImpl) FindOrCreateLocked(ctx context.Context, tx *gorm.DB, userID uint) (*model.Cart, error) {
	query := tx.WithContext(ctx).Where("user_id = ?", userID)
	// sqlite has no FOR UPDATE; its single-writer model serializes
	// cart mutations on its own.
	if tx.Dialector.Name() == "mysql" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var cart model.Cart
	err := query.First(&cart).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = model.Cart{UserID: userID, TotalValue: decimal.Zero}
		if err := tx.WithContext(ctx).Create(&cart).Error; err != nil {
			return nil, err
		}
		return &cart, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepoImpl) FindByUserID(ctx context.Context, tx *gorm.DB, userID uint) (*model.Cart, error) {
	var cart model.Cart
	err := tx.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepoImpl) ListItems(ctx context.Context, tx *gorm.DB, cartID uint) ([]*model.CartItem, error) {
	var items []*model.CartItem
	err := tx.WithContext(ctx).
		Preload("Product").
		Where("cart_id = ?", cartID).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *cartRepoImpl) FindItem(ctx context.Context, tx *gorm.DB, cartID, productID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := tx.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepoImpl) SaveItem(ctx context.Context, tx *gorm.DB, item *model.CartItem) error {
	return tx.WithContext(ctx).Save(item).Error
}

func (r *cartRepoImpl) DeleteItem(ctx context.Context, tx *gorm.DB, item *model.CartItem) error {
	return tx.WithContext(ctx).Delete(item).Error
}

func (r *cartRepoImpl) ClearItems(ctx context.Context, tx *gorm.DB, cartID uint) error {
	return tx.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&model.CartItem{}).Error
}

func (r *cartRepoImpl) UpdateTotal(ctx context.Context, tx *gorm.DB, cartID uint, total decimal.Decimal) error {
	return tx.WithContext(ctx).Model(&model.Cart{}).
		Where("id = ?", cartID).
		Update("total_value", total).Error
}
