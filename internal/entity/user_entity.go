// FILE: internal/entity/user_entity.go
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id                  uuid.UUID
	Name                string
	Username            string
	PasswordHash        string
	AllergenPreferences []string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NormalizedAllergens returns the preferences lower-cased and trimmed.
func (u *User) NormalizedAllergens() []string {
	out := make([]string, 0, len(u.AllergenPreferences))
	for _, a := range u.AllergenPreferences {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			out = append(out, a)
		}
	}
	return out
}
