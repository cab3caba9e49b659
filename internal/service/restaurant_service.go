package service

import (
	"context"
	"strings"
	"time"

	"safebites-be/internal/dto"
	"safebites-be/internal/entity"
	"safebites-be/internal/pkg/apperror"
	"safebites-be/internal/pkg/logger"
	"safebites-be/internal/repository/contract"
	"safebites-be/internal/repository/specification"
	"safebites-be/internal/repository/unitofwork"
	"safebites-be/pkg/events"

	"github.com/google/uuid"
)

type IRestaurantService interface {
	// Create stores the restaurant and, when menuCsv is non-empty, queues a menu ingestion job.
	Create(ctx context.Context, req *dto.CreateRestaurantRequest, menuCsv []byte) (*dto.CreateRestaurantResponse, error)
	GetAll(ctx context.Context) ([]*dto.RestaurantResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.RestaurantResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateRestaurantRequest) (*dto.RestaurantResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	IngestionStatus(ctx context.Context, id uuid.UUID) (*dto.IngestionStatusResponse, error)
}

type restaurantService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	indexService     IIndexService
	ingestionRepo    contract.IngestionStatusRepository
	eventPublisher   events.Publisher
	logger           logger.ILogger
}

func NewRestaurantService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	indexService IIndexService,
	ingestionRepo contract.IngestionStatusRepository,
	eventPublisher events.Publisher,
	logger logger.ILogger,
) IRestaurantService {
	return &restaurantService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		indexService:     indexService,
		ingestionRepo:    ingestionRepo,
		eventPublisher:   eventPublisher,
		logger:           logger,
	}
}

func (s *restaurantService) Create(ctx context.Context, req *dto.CreateRestaurantRequest, menuCsv []byte) (*dto.CreateRestaurantResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	restaurant := &entity.Restaurant{
		Id:        uuid.New(),
		Name:      strings.TrimSpace(req.Name),
		Location:  req.Location,
		Cuisine:   cleanList(req.Cuisine),
		Rating:    entity.ClampRating(req.Rating),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if restaurant.Name == "" {
		return nil, apperror.BadRequest("restaurant name is required")
	}

	if err := uow.RestaurantRepository().Create(ctx, restaurant); err != nil {
		return nil, apperror.Database(err, "failed to create restaurant")
	}

	res := &dto.CreateRestaurantResponse{Restaurant: *toRestaurantResponse(restaurant)}

	if len(menuCsv) > 0 {
		status := &entity.IngestionStatus{
			RestaurantId: restaurant.Id,
			State:        entity.IngestionQueued,
			UpdatedAt:    time.Now(),
		}
		if err := s.ingestionRepo.Save(ctx, status); err != nil {
			s.logger.Warn("RestaurantService", "Failed to record ingestion status", map[string]interface{}{
				"restaurant_id": restaurant.Id.String(),
				"error":         err.Error(),
			})
		}

		err := s.publisherService.Publish(ctx, TopicMenuIngest, dto.MenuIngestMessage{
			RestaurantId: restaurant.Id,
			Csv:          menuCsv,
		})
		if err != nil {
			return nil, apperror.Generic(err, "failed to queue menu ingestion")
		}
		res.IngestionState = string(entity.IngestionQueued)
	}

	s.publishEvent(ctx, events.RestaurantCreated, restaurant)
	return res, nil
}

func (s *restaurantService) GetAll(ctx context.Context) ([]*dto.RestaurantResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	restaurants, err := uow.RestaurantRepository().FindAll(ctx, specification.OrderBy{Field: "name"})
	if err != nil {
		return nil, apperror.Database(err, "failed to list restaurants")
	}

	result := make([]*dto.RestaurantResponse, 0, len(restaurants))
	for _, r := range restaurants {
		result = append(result, toRestaurantResponse(r))
	}
	return result, nil
}

func (s *restaurantService) Show(ctx context.Context, id uuid.UUID) (*dto.RestaurantResponse, error) {
	restaurant, err := s.find(ctx, s.uowFactory.NewUnitOfWork(ctx), id)
	if err != nil {
		return nil, err
	}
	return toRestaurantResponse(restaurant), nil
}

func (s *restaurantService) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateRestaurantRequest) (*dto.RestaurantResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	restaurant, err := s.find(ctx, uow, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		restaurant.Name = strings.TrimSpace(*req.Name)
	}
	if req.Location != nil {
		restaurant.Location = *req.Location
	}
	if req.Cuisine != nil {
		restaurant.Cuisine = cleanList(*req.Cuisine)
	}
	if req.Rating != nil {
		restaurant.Rating = entity.ClampRating(*req.Rating)
	}
	restaurant.UpdatedAt = time.Now()

	if err := uow.RestaurantRepository().Update(ctx, restaurant); err != nil {
		return nil, apperror.Database(err, "failed to update restaurant")
	}
	return toRestaurantResponse(restaurant), nil
}

// Delete removes the restaurant and its dishes in one transaction, then drops its index entries.
func (s *restaurantService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.find(ctx, uow, id); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return apperror.Database(err, "failed to begin transaction")
	}
	defer uow.Rollback()

	if err := uow.DishRepository().DeleteByRestaurant(ctx, id); err != nil {
		return apperror.Database(err, "failed to delete dishes")
	}
	if err := uow.RestaurantRepository().Delete(ctx, id); err != nil {
		return apperror.Database(err, "failed to delete restaurant")
	}
	if err := uow.Commit(); err != nil {
		return apperror.Database(err, "failed to commit restaurant delete")
	}

	if err := s.indexService.RemoveRestaurant(ctx, id); err != nil {
		s.logger.Error("RestaurantService", "Failed to drop vector index entries", map[string]interface{}{
			"restaurant_id": id.String(),
			"error":         err.Error(),
		})
	}

	s.publishEvent(ctx, events.RestaurantDeleted, &entity.Restaurant{Id: id})
	return nil
}

func (s *restaurantService) IngestionStatus(ctx context.Context, id uuid.UUID) (*dto.IngestionStatusResponse, error) {
	status, err := s.ingestionRepo.Get(ctx, id)
	if err != nil {
		return nil, apperror.Generic(err, "failed to read ingestion status")
	}
	if status == nil {
		return nil, apperror.NotFound("no ingestion job for restaurant %s", id)
	}
	return &dto.IngestionStatusResponse{
		RestaurantId: status.RestaurantId,
		State:        string(status.State),
		TotalRows:    status.TotalRows,
		Imported:     status.Imported,
		Skipped:      status.Skipped,
		Error:        status.Error,
		UpdatedAt:    status.UpdatedAt,
	}, nil
}

func (s *restaurantService) find(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID) (*entity.Restaurant, error) {
	restaurant, err := uow.RestaurantRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, apperror.Database(err, "failed to load restaurant")
	}
	if restaurant == nil {
		return nil, apperror.NotFound("restaurant %s not found", id)
	}
	return restaurant, nil
}

func (s *restaurantService) publishEvent(ctx context.Context, eventType string, r *entity.Restaurant) {
	err := s.eventPublisher.Publish(ctx, events.New(eventType, map[string]interface{}{
		"restaurant_id": r.Id.String(),
		"name":          r.Name,
	}))
	if err != nil {
		s.logger.Warn("RestaurantService", "Failed to publish event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func toRestaurantResponse(r *entity.Restaurant) *dto.RestaurantResponse {
	cuisine := r.Cuisine
	if cuisine == nil {
		cuisine = []string{}
	}
	return &dto.RestaurantResponse{
		Id:        r.Id,
		Name:      r.Name,
		Location:  r.Location,
		Cuisine:   cuisine,
		Rating:    r.Rating,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
