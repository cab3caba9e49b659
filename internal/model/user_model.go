package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	Id                  uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	Name                string                      `gorm:"type:varchar(255);not null"`
	Username            string                      `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash        string                      `gorm:"type:varchar(255);not null"`
	AllergenPreferences datatypes.JSONSlice[string] `gorm:"type:json"`
	CreatedAt           time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt           time.Time                   `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
