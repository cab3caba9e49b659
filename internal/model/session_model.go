package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Session rows carry a partial unique index so only one active row can exist per pair.
type Session struct {
	Id           string    `gorm:"type:varchar(32);primaryKey"`
	UserId       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sessions_active_pair,where:active = true"`
	RestaurantId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sessions_active_pair,where:active = true"`
	Active       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (Session) TableName() string {
	return "sessions"
}

type ChatTurn struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	SessionId    string         `gorm:"type:varchar(32);not null;index"`
	UserId       uuid.UUID      `gorm:"type:uuid;not null;index"`
	RestaurantId uuid.UUID      `gorm:"type:uuid;not null"`
	Query        string         `gorm:"type:text;not null"`
	Status       string         `gorm:"type:varchar(20);not null"`
	State        datatypes.JSON `gorm:"type:json"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index"`
}

func (ChatTurn) TableName() string {
	return "chat_turns"
}
