package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"pharmacy-storefront/internal/apperr"
	"pharmacy-storefront/internal/model"
)

type NeighborhoodRepository interface {
	FindByName(ctx context.Context, tx *gorm.DB, name string) (*model.Neighborhood, error)
}

type neighborhoodRepoImpl struct{}

func NewNeighborhoodRepository() NeighborhoodRepository {
	return &neighborhoodRepoImpl{}
}

func (r *neighborhoodRepoImpl) FindByName(ctx context.Context, tx *gorm.DB, name string) (*model.Neighborhood, error) {
	var neighborhood model.Neighborhood
	err := tx.WithContext(ctx).
		Where("name = ?", name).
		First(&neighborhood).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("neighborhood not found")
	}
	if err != nil {
		return nil, err
	}
	return &neighborhood, nil
}
