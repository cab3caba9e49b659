package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByRestaurant struct {
	RestaurantID uuid.UUID
}

func (s ByRestaurant) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("restaurant_id = ?", s.RestaurantID)
}

type ByDishName struct {
	RestaurantID uuid.UUID
	Name         string
}

func (s ByDishName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("restaurant_id = ? AND name = ?", s.RestaurantID, s.Name)
}

// PriceBetween is inclusive; a nil bound is open.
type PriceBetween struct {
	Min *float64
	Max *float64
}

func (s PriceBetween) Apply(db *gorm.DB) *gorm.DB {
	if s.Min != nil {
		db = db.Where("price >= ?", *s.Min)
	}
	if s.Max != nil {
		db = db.Where("price <= ?", *s.Max)
	}
	return db
}

type AvailableOnly struct{}

func (s AvailableOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("available = ?", true)
}
