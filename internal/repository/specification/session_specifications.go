package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActiveSessionFor struct {
	UserID       uuid.UUID
	RestaurantID uuid.UUID
}

func (s ActiveSessionFor) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ? AND restaurant_id = ? AND active = ?", s.UserID, s.RestaurantID, true)
}

type BySession struct {
	SessionID string
}

func (s BySession) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}
