package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"pharmacy-storefront/internal/apperr"
	"pharmacy-storefront/internal/model"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	FindByID(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Order, error)
	FindByUserID(ctx context.Context, tx *gorm.DB, userID uint) ([]*model.Order, error)
	FindAll(ctx context.Context, tx *gorm.DB) ([]*model.Order, error)
	// SetPaymentCorrelation stores the gateway preference id and checkout
	// URL returned at preference-creation time.
	SetPaymentCorrelation(ctx context.Context, tx *gorm.DB, orderID uint, preferenceID, checkoutURL string) error
	// MarkPaid applies the reconciler's guarded transition. The status
	// precondition lives in the WHERE clause so two concurrent calls can
	// never both succeed; the returned bool reports whether this call
	// applied the transition.
	MarkPaid(ctx context.Context, tx *gorm.DB, orderID uint, paymentID int64) (bool, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, orderID uint, status model.OrderStatus) error
	Delete(ctx context.Context, tx *gorm.DB, order *model.Order) error
	SaveQuote(ctx context.Context, tx *gorm.DB, quote *model.OrderQuote) error
}

type orderRepoImpl struct{}

func NewOrderRepository() OrderRepository {
	return &orderRepoImpl{}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, orderID uint) (*model.Order, error) {
	var order model.Order
	err := tx.WithContext(ctx).
		Preload("Items").
		Preload("Neighborhood").
		Preload("Quote").
		First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("order not found")
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepoImpl) FindByUserID(ctx context.Context, tx *gorm.DB, userID uint) ([]*model.Order, error) {
	var orders []*model.Order
	err := tx.WithContext(ctx).
		Preload("Items").
		Preload("Neighborhood").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepoImpl) FindAll(ctx context.Context, tx *gorm.DB) ([]*model.Order, error) {
	var orders []*model.Order
	err := tx.WithContext(ctx).
		Preload("Items").
		Preload("Neighborhood").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepoImpl) SetPaymentCorrelation(ctx context.Context, tx *gorm.DB, orderID uint, preferenceID, checkoutURL string) error {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"preference_id": preferenceID,
			"checkout_url":  checkoutURL,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("order not found")
	}
	return nil
}

func (r *orderRepoImpl) MarkPaid(ctx context.Context, tx *gorm.DB, orderID uint, paymentID int64) (bool, error) {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, model.StatusAwaitingPayment).
		Updates(map[string]interface{}{
			"status":     model.StatusPaid,
			"payment_id": paymentID,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *orderRepoImpl) UpdateStatus(ctx context.Context, tx *gorm.DB, orderID uint, status model.OrderStatus) error {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("order not found")
	}
	return nil
}

func (r *orderRepoImpl) Delete(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	if err := tx.WithContext(ctx).Where("order_id = ?", order.ID).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Where("order_id = ?", order.ID).Delete(&model.OrderQuote{}).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Delete(order).Error
}

func (r *orderRepoImpl) SaveQuote(ctx context.Context, tx *gorm.DB, quote *model.OrderQuote) error {
	return tx.WithContext(ctx).Save(quote).Error
}
