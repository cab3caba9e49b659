package service

import (
	"context"
	"strings"

	"safebites-be/internal/dto"
	"safebites-be/internal/entity"
	"safebites-be/internal/pkg/apperror"
	"safebites-be/internal/pkg/logger"
	"safebites-be/internal/repository/specification"
	"safebites-be/internal/repository/unitofwork"
	"safebites-be/pkg/events"
	"safebites-be/pkg/rag/pipeline"

	"github.com/google/uuid"
)

// ChatPipeline runs one conversational turn.
type ChatPipeline interface {
	Execute(ctx context.Context, in pipeline.Input) (*entity.ChatState, error)
}

type IChatService interface {
	// Search runs a turn for the caller. authUserId wins over the request body; uuid.Nil with
	// no body user means a guest turn.
	Search(ctx context.Context, authUserId uuid.UUID, req *dto.SearchRequest) (*entity.FinalResponse, error)
	History(ctx context.Context, userId, restaurantId uuid.UUID) ([]*entity.ChatState, error)
}

type chatService struct {
	uowFactory          unitofwork.RepositoryFactory
	conversationService IConversationService
	pipeline            ChatPipeline
	eventPublisher      events.Publisher
	logger              logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	conversationService IConversationService,
	pipeline ChatPipeline,
	eventPublisher events.Publisher,
	logger logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:          uowFactory,
		conversationService: conversationService,
		pipeline:            pipeline,
		eventPublisher:      eventPublisher,
		logger:              logger,
	}
}

func (s *chatService) Search(ctx context.Context, authUserId uuid.UUID, req *dto.SearchRequest) (*entity.FinalResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, apperror.BadRequest("query is required")
	}
	restaurantId, err := s.resolveRestaurant(ctx, req.RestaurantId)
	if err != nil {
		return nil, err
	}

	userId, err := s.resolveUser(ctx, authUserId, req.UserId)
	if err != nil {
		return nil, err
	}

	session, err := s.conversationService.GetOrCreateSession(ctx, userId, restaurantId)
	if err != nil {
		return nil, err
	}
	history := s.conversationService.RebuildContext(ctx, session.Id, userId)

	state, runErr := s.pipeline.Execute(ctx, pipeline.Input{
		UserID:       userId,
		SessionID:    session.Id,
		RestaurantID: restaurantId,
		Query:        query,
		History:      history,
	})
	if state != nil {
		if err := s.conversationService.SaveTurn(ctx, state); err != nil {
			s.logger.Error("ChatService", "Failed to persist chat turn", map[string]interface{}{
				"session_id": session.Id,
				"error":      err.Error(),
			})
		}
	}
	if runErr != nil {
		return nil, runErr
	}

	s.publishTurn(ctx, state)
	return state.Response, nil
}

// resolveRestaurant returns uuid.Nil when no restaurant is given; the turn then
// searches every restaurant's menu.
func (s *chatService) resolveRestaurant(ctx context.Context, raw string) (uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil, nil
	}

	restaurantId, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.BadRequest("invalid restaurant id")
	}
	restaurant, err := s.uowFactory.NewUnitOfWork(ctx).RestaurantRepository().FindOne(ctx, specification.ByID{ID: restaurantId})
	if err != nil {
		return uuid.Nil, apperror.Database(err, "failed to load restaurant")
	}
	if restaurant == nil {
		return uuid.Nil, apperror.NotFound("restaurant %s not found", restaurantId)
	}
	return restaurantId, nil
}

// resolveUser returns uuid.Nil for guests. A body user id that does not exist is rejected.
func (s *chatService) resolveUser(ctx context.Context, authUserId uuid.UUID, bodyUserId string) (uuid.UUID, error) {
	if authUserId != uuid.Nil {
		return authUserId, nil
	}
	if bodyUserId == "" {
		return uuid.Nil, nil
	}

	userId, err := uuid.Parse(bodyUserId)
	if err != nil {
		return uuid.Nil, apperror.BadRequest("invalid user id")
	}
	user, err := s.uowFactory.NewUnitOfWork(ctx).UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return uuid.Nil, apperror.Database(err, "failed to load user")
	}
	if user == nil {
		return uuid.Nil, apperror.NotFound("user %s not found", userId)
	}
	return userId, nil
}

func (s *chatService) publishTurn(ctx context.Context, state *entity.ChatState) {
	intents := make([]string, 0, len(state.Intents))
	for _, in := range state.Intents {
		intents = append(intents, string(in.Type))
	}
	err := s.eventPublisher.Publish(ctx, events.New(events.ChatTurnCompleted, map[string]interface{}{
		"session_id":    state.SessionId,
		"restaurant_id": state.RestaurantId.String(),
		"intents":       intents,
		"stage_errors":  len(state.StageErrors),
	}))
	if err != nil {
		s.logger.Warn("ChatService", "Failed to publish turn event", map[string]interface{}{"error": err.Error()})
	}
}

func (s *chatService) History(ctx context.Context, userId, restaurantId uuid.UUID) ([]*entity.ChatState, error) {
	return s.conversationService.History(ctx, userId, restaurantId)
}
