package contract

import (
	"context"

	"safebites-be/internal/entity"
	"safebites-be/internal/repository/specification"
)

type SessionRepository interface {
	// InsertIfAbsent inserts the session unless an active one already exists for the pair.
	// It reports whether this call created the row.
	InsertIfAbsent(ctx context.Context, session *entity.Session) (bool, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error)
}

type ChatTurnRepository interface {
	Create(ctx context.Context, turn *entity.ChatTurn) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatTurn, error)
	// FindRecent returns the newest limit turns of a session in chronological order.
	FindRecent(ctx context.Context, sessionId string, limit int) ([]*entity.ChatTurn, error)
}
