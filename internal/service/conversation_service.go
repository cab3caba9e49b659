package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"safebites-be/internal/entity"
	"safebites-be/internal/pkg/apperror"
	"safebites-be/internal/pkg/logger"
	"safebites-be/internal/repository/memory"
	"safebites-be/internal/repository/specification"
	"safebites-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const (
	sessionIdPrefix     = "sess_"
	defaultContextLastN = 5
)

type IConversationService interface {
	GetOrCreateSession(ctx context.Context, userId, restaurantId uuid.UUID) (*entity.Session, error)
	SaveTurn(ctx context.Context, state *entity.ChatState) error
	// RebuildContext never fails; missing data yields a shorter list.
	RebuildContext(ctx context.Context, sessionId string, userId uuid.UUID) []entity.ContextItem
	History(ctx context.Context, userId, restaurantId uuid.UUID) ([]*entity.ChatState, error)
}

type conversationService struct {
	uowFactory   unitofwork.RepositoryFactory
	contextCache *memory.ContextCache
	lastN        int
	logger       logger.ILogger
}

func NewConversationService(
	uowFactory unitofwork.RepositoryFactory,
	contextCache *memory.ContextCache,
	lastN int,
	logger logger.ILogger,
) IConversationService {
	if lastN <= 0 {
		lastN = defaultContextLastN
	}
	return &conversationService{
		uowFactory:   uowFactory,
		contextCache: contextCache,
		lastN:        lastN,
		logger:       logger,
	}
}

func newSessionId() string {
	return sessionIdPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

func (s *conversationService) GetOrCreateSession(ctx context.Context, userId, restaurantId uuid.UUID) (*entity.Session, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	active := specification.ActiveSessionFor{UserID: userId, RestaurantID: restaurantId}

	existing, err := uow.SessionRepository().FindOne(ctx, active)
	if err != nil {
		return nil, apperror.Database(err, "failed to look up session")
	}
	if existing != nil {
		return existing, nil
	}

	session := &entity.Session{
		Id:           newSessionId(),
		UserId:       userId,
		RestaurantId: restaurantId,
		Active:       true,
		CreatedAt:    time.Now(),
	}
	created, err := uow.SessionRepository().InsertIfAbsent(ctx, session)
	if err != nil {
		return nil, apperror.Database(err, "failed to create session")
	}
	if created {
		s.logger.Info("ConversationService", "Session created", map[string]interface{}{
			"session_id":    session.Id,
			"restaurant_id": restaurantId.String(),
		})
		return session, nil
	}

	// Lost the race: another request inserted the active row first.
	winner, err := uow.SessionRepository().FindOne(ctx, active)
	if err != nil {
		return nil, apperror.Database(err, "failed to re-read session")
	}
	if winner == nil {
		return nil, apperror.Generic(nil, "session disappeared after upsert")
	}
	return winner, nil
}

func (s *conversationService) SaveTurn(ctx context.Context, state *entity.ChatState) error {
	if state == nil || state.SessionId == "" {
		return apperror.BadRequest("chat state has no session")
	}

	turn := &entity.ChatTurn{
		Id:           uuid.New(),
		SessionId:    state.SessionId,
		UserId:       state.UserId,
		RestaurantId: state.RestaurantId,
		Query:        state.Query,
		Status:       state.Status,
		State:        *state,
		CreatedAt:    state.CreatedAt,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatTurnRepository().Create(ctx, turn); err != nil {
		return apperror.Database(err, "failed to save chat turn")
	}

	s.contextCache.Delete(state.SessionId)
	return nil
}

func (s *conversationService) RebuildContext(ctx context.Context, sessionId string, userId uuid.UUID) []entity.ContextItem {
	items := make([]entity.ContextItem, 0, s.lastN+1)
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if userId != uuid.Nil {
		user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
		switch {
		case err != nil:
			s.logger.Warn("ConversationService", "Allergen lookup failed", map[string]interface{}{
				"user_id": userId.String(),
				"error":   err.Error(),
			})
		case user != nil:
			allergens := user.NormalizedAllergens()
			items = append(items, entity.ContextItem{
				UserAllergens: allergens,
				Message:       allergenMessage(allergens),
			})
		}
	}

	return append(items, s.recentTurns(ctx, uow, sessionId)...)
}

func allergenMessage(allergens []string) string {
	if len(allergens) == 0 {
		return "User has not set any allergen preferences"
	}
	return fmt.Sprintf("User is allergic to: %s", strings.Join(allergens, ", "))
}

func (s *conversationService) recentTurns(ctx context.Context, uow unitofwork.UnitOfWork, sessionId string) []entity.ContextItem {
	if sessionId == "" {
		return nil
	}
	if cached, ok := s.contextCache.Get(sessionId); ok {
		return cached
	}

	turns, err := uow.ChatTurnRepository().FindRecent(ctx, sessionId, s.lastN)
	if err != nil {
		s.logger.Warn("ConversationService", "Failed to load recent turns", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return nil
	}

	items := make([]entity.ContextItem, 0, len(turns))
	for _, t := range turns {
		query := t.State.Query
		if query == "" {
			query = t.Query
		}
		items = append(items, entity.ContextItem{
			Query:       query,
			Intents:     t.State.Intents,
			MenuResults: t.State.MenuResults,
			InfoResults: t.State.InfoResults,
		})
	}

	s.contextCache.Save(sessionId, items)
	return items
}

func (s *conversationService) History(ctx context.Context, userId, restaurantId uuid.UUID) ([]*entity.ChatState, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ActiveSessionFor{UserID: userId, RestaurantID: restaurantId})
	if err != nil {
		return nil, apperror.Database(err, "failed to look up session")
	}
	if session == nil {
		return nil, apperror.NotFound("no conversation found for this user and restaurant")
	}

	turns, err := uow.ChatTurnRepository().FindAll(ctx,
		specification.BySession{SessionID: session.Id},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, apperror.Database(err, "failed to load chat history")
	}

	states := make([]*entity.ChatState, 0, len(turns))
	for _, t := range turns {
		state := t.State
		states = append(states, &state)
	}
	return states, nil
}
