package implementation

import (
	"context"
	"errors"

	"safebites-be/internal/entity"
	"safebites-be/internal/mapper"
	"safebites-be/internal/model"
	"safebites-be/internal/repository/contract"
	"safebites-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RestaurantRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RestaurantMapper
}

func NewRestaurantRepository(db *gorm.DB) contract.RestaurantRepository {
	return &RestaurantRepositoryImpl{
		db:     db,
		mapper: mapper.NewRestaurantMapper(),
	}
}

func (r *RestaurantRepositoryImpl) Create(ctx context.Context, restaurant *entity.Restaurant) error {
	if restaurant.Id == uuid.Nil {
		restaurant.Id = uuid.New()
	}
	m := r.mapper.ToModel(restaurant)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*restaurant = *r.mapper.ToEntity(m)
	return nil
}

func (r *RestaurantRepositoryImpl) Update(ctx context.Context, restaurant *entity.Restaurant) error {
	m := r.mapper.ToModel(restaurant)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*restaurant = *r.mapper.ToEntity(m)
	return nil
}

func (r *RestaurantRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Restaurant{}).Error
}

func (r *RestaurantRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Restaurant, error) {
	var m model.Restaurant
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *RestaurantRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Restaurant, error) {
	var models []*model.Restaurant
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *RestaurantRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Restaurant{}), specs...)
	err := query.Count(&count).Error
	return count, err
}
