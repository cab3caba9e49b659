package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Restaurant struct {
	Id        uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	Name      string                      `gorm:"type:varchar(255);not null;index"`
	Location  string                      `gorm:"type:varchar(255)"`
	Cuisine   datatypes.JSONSlice[string] `gorm:"type:json"`
	Rating    float64                     `gorm:"default:0"`
	CreatedAt time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt time.Time                   `gorm:"autoUpdateTime"`
}

func (Restaurant) TableName() string {
	return "restaurants"
}
