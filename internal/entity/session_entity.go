package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session ties a user to a restaurant conversation. Guests use uuid.Nil.
type Session struct {
	Id           string
	UserId       uuid.UUID
	RestaurantId uuid.UUID
	Active       bool
	CreatedAt    time.Time
}

// ChatTurn is one persisted pipeline run.
type ChatTurn struct {
	Id           uuid.UUID
	SessionId    string
	UserId       uuid.UUID
	RestaurantId uuid.UUID
	Query        string
	Status       ChatStatus
	State        ChatState
	CreatedAt    time.Time
}
