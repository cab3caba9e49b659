package unitofwork

import (
	"context"

	"safebites-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	RestaurantRepository() contract.RestaurantRepository
	DishRepository() contract.DishRepository
	DishEmbeddingRepository() contract.DishEmbeddingRepository
	SessionRepository() contract.SessionRepository
	ChatTurnRepository() contract.ChatTurnRepository
}
