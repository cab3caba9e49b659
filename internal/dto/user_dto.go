package dto

import (
	"time"

	"github.com/google/uuid"
)

type SignupRequest struct {
	Name                string   `json:"name" validate:"required"`
	Username            string   `json:"username" validate:"required,min=3,max=50"`
	Password            string   `json:"password" validate:"required,min=6"`
	AllergenPreferences []string `json:"allergen_preferences"`
}

type LoginRequest struct {
	Username string `query:"username" json:"username" validate:"required"`
	Password string `query:"password" json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

// UserResponse never carries the password hash.
type UserResponse struct {
	Id                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	Username            string    `json:"username"`
	AllergenPreferences []string  `json:"allergen_preferences"`
	CreatedAt           time.Time `json:"created_at"`
}

type UpdateUserRequest struct {
	Name                *string   `json:"name" validate:"omitempty,min=1"`
	Username            *string   `json:"username" validate:"omitempty,min=3,max=50"`
	Password            *string   `json:"password" validate:"omitempty,min=6"`
	AllergenPreferences *[]string `json:"allergen_preferences"`
}
