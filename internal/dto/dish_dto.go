package dto

import (
	"time"

	"github.com/google/uuid"
)

type AllergenDto struct {
	Allergen   string   `json:"allergen" validate:"required"`
	Confidence *float64 `json:"confidence,omitempty"`
	Why        string   `json:"why,omitempty"`
}

type NutrientDto struct {
	Value      float64  `json:"value"`
	Confidence *float64 `json:"confidence,omitempty"`
}

type CreateDishRequest struct {
	Name           string                 `json:"name" validate:"required"`
	Description    string                 `json:"description"`
	Price          float64                `json:"price" validate:"gte=0"`
	Ingredients    []string               `json:"ingredients"`
	Allergens      []AllergenDto          `json:"allergens" validate:"dive"`
	NutritionFacts map[string]NutrientDto `json:"nutrition_facts"`
	ServingSize    string                 `json:"serving_size"`
	Available      *bool                  `json:"available"`
}

// UpdateDishRequest is merged into the stored dish; nil fields are left untouched.
type UpdateDishRequest struct {
	Name           *string                 `json:"name" validate:"omitempty,min=1"`
	Description    *string                 `json:"description"`
	Price          *float64                `json:"price" validate:"omitempty,gte=0"`
	Ingredients    *[]string               `json:"ingredients"`
	Allergens      *[]AllergenDto          `json:"allergens"`
	NutritionFacts *map[string]NutrientDto `json:"nutrition_facts"`
	ServingSize    *string                 `json:"serving_size"`
	Available      *bool                   `json:"available"`
}

type DishResponse struct {
	Id             uuid.UUID              `json:"id"`
	RestaurantId   uuid.UUID              `json:"restaurant_id"`
	Name           string                 `json:"name"`
	Description    string                 `json:"description"`
	Price          float64                `json:"price"`
	Ingredients    []string               `json:"ingredients"`
	Allergens      []AllergenDto          `json:"allergens"`
	NutritionFacts map[string]NutrientDto `json:"nutrition_facts"`
	ServingSize    string                 `json:"serving_size,omitempty"`
	Available      bool                   `json:"available"`
	SafeForUser    *bool                  `json:"safe_for_user,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

type ListDishesQuery struct {
	RestaurantId *uuid.UUID
	Tags         []string
}

type FilterDishesQuery struct {
	RestaurantId     *uuid.UUID
	MinPrice         *float64
	MaxPrice         *float64
	ExcludeAllergens []string
	Available        *bool
}
