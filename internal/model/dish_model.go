package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type DishAllergen struct {
	Allergen   string   `json:"allergen"`
	Confidence *float64 `json:"confidence,omitempty"`
	Why        string   `json:"why,omitempty"`
}

type DishNutrient struct {
	Value      float64  `json:"value"`
	Confidence *float64 `json:"confidence,omitempty"`
}

type Dish struct {
	Id             uuid.UUID                                    `gorm:"type:uuid;primaryKey"`
	RestaurantId   uuid.UUID                                    `gorm:"type:uuid;not null;uniqueIndex:idx_dishes_restaurant_name"`
	Name           string                                       `gorm:"type:varchar(255);not null;uniqueIndex:idx_dishes_restaurant_name"`
	Description    string                                       `gorm:"type:text"`
	Price          float64                                      `gorm:"not null;default:0;check:price >= 0"`
	Ingredients    datatypes.JSONSlice[string]                  `gorm:"type:json"`
	Allergens      datatypes.JSONSlice[DishAllergen]            `gorm:"type:json"`
	NutritionFacts datatypes.JSONType[map[string]DishNutrient] `gorm:"type:json"`
	ServingSize    string                                       `gorm:"type:varchar(100)"`
	Available      bool                                         `gorm:"not null"`
	CreatedAt      time.Time                                    `gorm:"autoCreateTime"`
	UpdatedAt      time.Time                                    `gorm:"autoUpdateTime"`
}

func (Dish) TableName() string {
	return "dishes"
}
