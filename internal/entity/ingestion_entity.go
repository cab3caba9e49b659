package entity

import (
	"time"

	"github.com/google/uuid"
)

type IngestionState string

const (
	IngestionQueued    IngestionState = "queued"
	IngestionRunning   IngestionState = "running"
	IngestionCompleted IngestionState = "completed"
	IngestionFailed    IngestionState = "failed"
)

// IngestionStatus tracks one background CSV menu import.
type IngestionStatus struct {
	RestaurantId uuid.UUID      `json:"restaurant_id"`
	State        IngestionState `json:"state"`
	TotalRows    int            `json:"total_rows"`
	Imported     int            `json:"imported"`
	Skipped      int            `json:"skipped"`
	Error        string         `json:"error,omitempty"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
