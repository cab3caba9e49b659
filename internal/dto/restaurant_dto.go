package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateRestaurantRequest struct {
	Name     string   `json:"name" validate:"required"`
	Location string   `json:"location"`
	Cuisine  []string `json:"cuisine"`
	Rating   float64  `json:"rating"`
}

// UpdateRestaurantRequest is a partial update; nil fields are left untouched.
type UpdateRestaurantRequest struct {
	Name     *string   `json:"name" validate:"omitempty,min=1"`
	Location *string   `json:"location"`
	Cuisine  *[]string `json:"cuisine"`
	Rating   *float64  `json:"rating"`
}

type RestaurantResponse struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Cuisine   []string  `json:"cuisine"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateRestaurantResponse struct {
	Restaurant     RestaurantResponse `json:"restaurant"`
	IngestionState string             `json:"ingestion_state,omitempty"`
}

type IngestionStatusResponse struct {
	RestaurantId uuid.UUID `json:"restaurant_id"`
	State        string    `json:"state"`
	TotalRows    int       `json:"total_rows"`
	Imported     int       `json:"imported"`
	Skipped      int       `json:"skipped"`
	Error        string    `json:"error,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MenuIngestMessage is the payload on the menu.ingest topic.
type MenuIngestMessage struct {
	RestaurantId uuid.UUID `json:"restaurant_id"`
	Csv          []byte    `json:"csv"`
}

const (
	DishIndexUpsert = "upsert"
	DishIndexDelete = "delete"
)

// DishIndexMessage is the payload on the dish.index topic.
type DishIndexMessage struct {
	Action       string      `json:"action"`
	RestaurantId uuid.UUID   `json:"restaurant_id"`
	DishIds      []uuid.UUID `json:"dish_ids"`
}
