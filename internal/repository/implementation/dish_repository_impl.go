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

type DishRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DishMapper
}

func NewDishRepository(db *gorm.DB) contract.DishRepository {
	return &DishRepositoryImpl{
		db:     db,
		mapper: mapper.NewDishMapper(),
	}
}

func (r *DishRepositoryImpl) Create(ctx context.Context, dish *entity.Dish) error {
	if dish.Id == uuid.Nil {
		dish.Id = uuid.New()
	}
	m := r.mapper.ToModel(dish)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*dish = *r.mapper.ToEntity(m)
	return nil
}

func (r *DishRepositoryImpl) Update(ctx context.Context, dish *entity.Dish) error {
	m := r.mapper.ToModel(dish)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*dish = *r.mapper.ToEntity(m)
	return nil
}

func (r *DishRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Dish{}).Error
}

func (r *DishRepositoryImpl) DeleteByRestaurant(ctx context.Context, restaurantId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("restaurant_id = ?", restaurantId).Delete(&model.Dish{}).Error
}

func (r *DishRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Dish, error) {
	var m model.Dish
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DishRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Dish, error) {
	var models []*model.Dish
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DishRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Dish{}), specs...)
	err := query.Count(&count).Error
	return count, err
}
