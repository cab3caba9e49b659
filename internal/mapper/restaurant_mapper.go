package mapper

import (
	"safebites-be/internal/entity"
	"safebites-be/internal/model"

	"gorm.io/datatypes"
)

type RestaurantMapper struct{}

func NewRestaurantMapper() *RestaurantMapper {
	return &RestaurantMapper{}
}

func (m *RestaurantMapper) ToEntity(r *model.Restaurant) *entity.Restaurant {
	if r == nil {
		return nil
	}
	return &entity.Restaurant{
		Id:        r.Id,
		Name:      r.Name,
		Location:  r.Location,
		Cuisine:   nonNilStrings(r.Cuisine),
		Rating:    r.Rating,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (m *RestaurantMapper) ToModel(r *entity.Restaurant) *model.Restaurant {
	if r == nil {
		return nil
	}
	return &model.Restaurant{
		Id:        r.Id,
		Name:      r.Name,
		Location:  r.Location,
		Cuisine:   datatypes.NewJSONSlice(nonNilStrings(r.Cuisine)),
		Rating:    r.Rating,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (m *RestaurantMapper) ToEntities(restaurants []*model.Restaurant) []*entity.Restaurant {
	out := make([]*entity.Restaurant, 0, len(restaurants))
	for _, r := range restaurants {
		out = append(out, m.ToEntity(r))
	}
	return out
}
