package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"pharmacy-storefront/internal/apperr"
	"pharmacy-storefront/internal/model"
)

type ProductRepository interface {
	FindByID(ctx context.Context, tx *gorm.DB, productID uint) (*model.Product, error)
}

type productRepoImpl struct{}

func NewProductRepository() ProductRepository {
	return &productRepoImpl{}
}

func (r *productRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, productID uint) (*model.Product, error) {
	var product model.Product
	err := tx.WithContext(ctx).First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("product not found")
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}
