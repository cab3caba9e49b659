package mapper

import (
	"safebites-be/internal/entity"
	"safebites-be/internal/model"

	"gorm.io/datatypes"
)

type DishMapper struct{}

func NewDishMapper() *DishMapper {
	return &DishMapper{}
}

func (m *DishMapper) ToEntity(d *model.Dish) *entity.Dish {
	if d == nil {
		return nil
	}

	allergens := make([]entity.AllergenInfo, 0, len(d.Allergens))
	for _, a := range d.Allergens {
		allergens = append(allergens, entity.AllergenInfo{Allergen: a.Allergen, Confidence: a.Confidence, Why: a.Why})
	}

	facts := map[string]entity.NutrientValue{}
	for k, v := range d.NutritionFacts.Data() {
		facts[k] = entity.NutrientValue{Value: v.Value, Confidence: v.Confidence}
	}

	return &entity.Dish{
		Id:             d.Id,
		RestaurantId:   d.RestaurantId,
		Name:           d.Name,
		Description:    d.Description,
		Price:          d.Price,
		Ingredients:    nonNilStrings(d.Ingredients),
		Allergens:      allergens,
		NutritionFacts: facts,
		ServingSize:    d.ServingSize,
		Available:      d.Available,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func (m *DishMapper) ToModel(d *entity.Dish) *model.Dish {
	if d == nil {
		return nil
	}

	allergens := make([]model.DishAllergen, 0, len(d.Allergens))
	for _, a := range d.Allergens {
		allergens = append(allergens, model.DishAllergen{Allergen: a.Allergen, Confidence: a.Confidence, Why: a.Why})
	}

	facts := make(map[string]model.DishNutrient, len(d.NutritionFacts))
	for k, v := range d.NutritionFacts {
		facts[k] = model.DishNutrient{Value: v.Value, Confidence: v.Confidence}
	}

	return &model.Dish{
		Id:             d.Id,
		RestaurantId:   d.RestaurantId,
		Name:           d.Name,
		Description:    d.Description,
		Price:          d.Price,
		Ingredients:    datatypes.NewJSONSlice(nonNilStrings(d.Ingredients)),
		Allergens:      datatypes.NewJSONSlice(allergens),
		NutritionFacts: datatypes.NewJSONType(facts),
		ServingSize:    d.ServingSize,
		Available:      d.Available,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func (m *DishMapper) ToEntities(dishes []*model.Dish) []*entity.Dish {
	out := make([]*entity.Dish, 0, len(dishes))
	for _, d := range dishes {
		out = append(out, m.ToEntity(d))
	}
	return out
}
