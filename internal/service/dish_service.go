package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"safebites-be/internal/dto"
	"safebites-be/internal/entity"
	"safebites-be/internal/pkg/apperror"
	"safebites-be/internal/pkg/logger"
	"safebites-be/internal/repository/specification"
	"safebites-be/internal/repository/unitofwork"
	"safebites-be/pkg/events"
	"safebites-be/pkg/rag/filter"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IDishService interface {
	Create(ctx context.Context, restaurantId uuid.UUID, req *dto.CreateDishRequest) (*dto.DishResponse, error)
	Show(ctx context.Context, id uuid.UUID, viewerId uuid.UUID) (*dto.DishResponse, error)
	GetAll(ctx context.Context, query dto.ListDishesQuery, viewerId uuid.UUID) ([]*dto.DishResponse, error)
	Filter(ctx context.Context, query dto.FilterDishesQuery, viewerId uuid.UUID) ([]*dto.DishResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateDishRequest) (*dto.DishResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// DishesByIDs hydrates search hits for the chat pipeline. Unknown ids are skipped and
	// an empty restaurantID accepts dishes from any restaurant.
	DishesByIDs(ctx context.Context, restaurantID string, ids []string) ([]entity.DishData, error)
}

type dishService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   events.Publisher
	logger           logger.ILogger
}

func NewDishService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher events.Publisher,
	logger logger.ILogger,
) IDishService {
	return &dishService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           logger,
	}
}

func (s *dishService) Create(ctx context.Context, restaurantId uuid.UUID, req *dto.CreateDishRequest) (*dto.DishResponse, error) {
	if req.Price < 0 {
		return nil, apperror.BadRequest("price must be greater than or equal to 0")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	restaurant, err := uow.RestaurantRepository().FindOne(ctx, specification.ByID{ID: restaurantId})
	if err != nil {
		return nil, apperror.Database(err, "failed to look up restaurant")
	}
	if restaurant == nil {
		return nil, apperror.NotFound("restaurant %s not found", restaurantId)
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}
	dish := &entity.Dish{
		Id:             uuid.New(),
		RestaurantId:   restaurantId,
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		Price:          req.Price,
		Ingredients:    req.Ingredients,
		Allergens:      toAllergenEntities(req.Allergens),
		NutritionFacts: toNutrientEntities(req.NutritionFacts),
		ServingSize:    req.ServingSize,
		Available:      available,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := uow.DishRepository().Create(ctx, dish); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("dish '%s' already exists for this restaurant", dish.Name)
		}
		return nil, apperror.Database(err, "failed to create dish")
	}

	s.afterWrite(ctx, dish, dto.DishIndexUpsert, events.DishCreated)
	return toDishResponse(dish, nil), nil
}

func (s *dishService) Show(ctx context.Context, id uuid.UUID, viewerId uuid.UUID) (*dto.DishResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	dish, err := uow.DishRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, apperror.Database(err, "failed to load dish")
	}
	if dish == nil {
		return nil, apperror.NotFound("dish %s not found", id)
	}

	prefs := s.viewerAllergens(ctx, uow, viewerId)
	return toDishResponse(dish, prefs), nil
}

func (s *dishService) GetAll(ctx context.Context, query dto.ListDishesQuery, viewerId uuid.UUID) ([]*dto.DishResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{specification.OrderBy{Field: "name"}}
	if query.RestaurantId != nil {
		specs = append(specs, specification.ByRestaurant{RestaurantID: *query.RestaurantId})
	}
	dishes, err := uow.DishRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, apperror.Database(err, "failed to list dishes")
	}

	prefs := s.viewerAllergens(ctx, uow, viewerId)
	result := make([]*dto.DishResponse, 0, len(dishes))
	for _, d := range dishes {
		if !matchesAnyTag(d, query.Tags) {
			continue
		}
		result = append(result, toDishResponse(d, prefs))
	}
	return result, nil
}

// matchesAnyTag treats tags as ingredient names; an empty tag list matches everything.
func matchesAnyTag(d *entity.Dish, tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, ing := range d.Ingredients {
		for _, tag := range tags {
			if strings.EqualFold(strings.TrimSpace(ing), strings.TrimSpace(tag)) {
				return true
			}
		}
	}
	return false
}

func (s *dishService) Filter(ctx context.Context, query dto.FilterDishesQuery, viewerId uuid.UUID) ([]*dto.DishResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{specification.OrderBy{Field: "price"}}
	if query.RestaurantId != nil {
		specs = append(specs, specification.ByRestaurant{RestaurantID: *query.RestaurantId})
	}
	if query.Available != nil {
		specs = append(specs, specification.Filter("available", *query.Available))
	}
	dishes, err := uow.DishRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, apperror.Database(err, "failed to filter dishes")
	}

	f := filter.NewDishFilter()
	if query.MinPrice != nil {
		f.Price.Min = *query.MinPrice
	}
	if query.MaxPrice != nil {
		f.Price.Max = *query.MaxPrice
	}
	f.ExcludeAllergens = query.ExcludeAllergens

	byId := make(map[string]*entity.Dish, len(dishes))
	data := make([]entity.DishData, 0, len(dishes))
	for _, d := range dishes {
		byId[d.Id.String()] = d
		data = append(data, entity.NewDishData(d))
	}

	prefs := s.viewerAllergens(ctx, uow, viewerId)
	kept := filter.Apply(data, f)
	result := make([]*dto.DishResponse, 0, len(kept))
	for _, d := range kept {
		result = append(result, toDishResponse(byId[d.DishId], prefs))
	}
	return result, nil
}

func (s *dishService) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateDishRequest) (*dto.DishResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	dish, err := uow.DishRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, apperror.Database(err, "failed to load dish")
	}
	if dish == nil {
		return nil, apperror.NotFound("dish %s not found", id)
	}

	if req.Name != nil {
		dish.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		dish.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, apperror.BadRequest("price must be greater than or equal to 0")
		}
		dish.Price = *req.Price
	}
	if req.Ingredients != nil {
		dish.Ingredients = *req.Ingredients
	}
	if req.Allergens != nil {
		dish.Allergens = toAllergenEntities(*req.Allergens)
	}
	if req.NutritionFacts != nil {
		dish.NutritionFacts = toNutrientEntities(*req.NutritionFacts)
	}
	if req.ServingSize != nil {
		dish.ServingSize = *req.ServingSize
	}
	if req.Available != nil {
		dish.Available = *req.Available
	}
	dish.UpdatedAt = time.Now()

	if err := uow.DishRepository().Update(ctx, dish); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("dish '%s' already exists for this restaurant", dish.Name)
		}
		return nil, apperror.Database(err, "failed to update dish")
	}

	s.afterWrite(ctx, dish, dto.DishIndexUpsert, events.DishUpdated)
	return toDishResponse(dish, nil), nil
}

func (s *dishService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	dish, err := uow.DishRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return apperror.Database(err, "failed to load dish")
	}
	if dish == nil {
		return apperror.NotFound("dish %s not found", id)
	}

	if err := uow.DishRepository().Delete(ctx, id); err != nil {
		return apperror.Database(err, "failed to delete dish")
	}

	s.afterWrite(ctx, dish, dto.DishIndexDelete, events.DishDeleted)
	return nil
}

// afterWrite queues the index job and announces the change. Both are best effort.
func (s *dishService) afterWrite(ctx context.Context, dish *entity.Dish, action string, eventType string) {
	err := s.publisherService.Publish(ctx, TopicDishIndex, dto.DishIndexMessage{
		Action:       action,
		RestaurantId: dish.RestaurantId,
		DishIds:      []uuid.UUID{dish.Id},
	})
	if err != nil {
		s.logger.Error("DishService", "Failed to queue index job", map[string]interface{}{
			"dish_id": dish.Id.String(),
			"action":  action,
			"error":   err.Error(),
		})
	}

	err = s.eventPublisher.Publish(ctx, events.New(eventType, map[string]interface{}{
		"dish_id":       dish.Id.String(),
		"restaurant_id": dish.RestaurantId.String(),
		"name":          dish.Name,
	}))
	if err != nil {
		s.logger.Warn("DishService", "Failed to publish event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}

func (s *dishService) DishesByIDs(ctx context.Context, restaurantID string, ids []string) ([]entity.DishData, error) {
	specs := make([]specification.Specification, 0, 2)
	if restaurantID != "" {
		restaurantId, err := uuid.Parse(restaurantID)
		if err != nil {
			return nil, apperror.BadRequest("invalid restaurant id %q", restaurantID)
		}
		specs = append(specs, specification.ByRestaurant{RestaurantID: restaurantId})
	}

	parsed := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		if id, err := uuid.Parse(raw); err == nil {
			parsed = append(parsed, id)
		}
	}
	if len(parsed) == 0 {
		return []entity.DishData{}, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	dishes, err := uow.DishRepository().FindAll(ctx, append(specs, specification.ByIDs{IDs: parsed})...)
	if err != nil {
		return nil, apperror.Database(err, "failed to hydrate dishes")
	}

	byId := make(map[uuid.UUID]*entity.Dish, len(dishes))
	for _, d := range dishes {
		byId[d.Id] = d
	}

	out := make([]entity.DishData, 0, len(parsed))
	for _, id := range parsed {
		if d, ok := byId[id]; ok {
			out = append(out, entity.NewDishData(d))
		}
	}
	return out, nil
}

// viewerAllergens returns nil for guests or unknown users, which hides safe_for_user.
func (s *dishService) viewerAllergens(ctx context.Context, uow unitofwork.UnitOfWork, viewerId uuid.UUID) []string {
	if viewerId == uuid.Nil {
		return nil
	}
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: viewerId})
	if err != nil || user == nil {
		return nil
	}
	prefs := user.NormalizedAllergens()
	if prefs == nil {
		prefs = []string{}
	}
	return prefs
}

func toAllergenEntities(in []dto.AllergenDto) []entity.AllergenInfo {
	out := make([]entity.AllergenInfo, 0, len(in))
	for _, a := range in {
		out = append(out, entity.AllergenInfo{Allergen: a.Allergen, Confidence: a.Confidence, Why: a.Why})
	}
	return out
}

func toNutrientEntities(in map[string]dto.NutrientDto) map[string]entity.NutrientValue {
	out := make(map[string]entity.NutrientValue, len(in))
	for k, v := range in {
		out[k] = entity.NutrientValue{Value: v.Value, Confidence: v.Confidence}
	}
	return out
}

// toDishResponse sets safe_for_user only when prefs is non-nil.
func toDishResponse(d *entity.Dish, prefs []string) *dto.DishResponse {
	allergens := make([]dto.AllergenDto, 0, len(d.Allergens))
	for _, a := range d.Allergens {
		allergens = append(allergens, dto.AllergenDto{Allergen: a.Allergen, Confidence: a.Confidence, Why: a.Why})
	}
	nutrition := make(map[string]dto.NutrientDto, len(d.NutritionFacts))
	for k, v := range d.NutritionFacts {
		nutrition[k] = dto.NutrientDto{Value: v.Value, Confidence: v.Confidence}
	}
	ingredients := d.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}

	res := &dto.DishResponse{
		Id:             d.Id,
		RestaurantId:   d.RestaurantId,
		Name:           d.Name,
		Description:    d.Description,
		Price:          d.Price,
		Ingredients:    ingredients,
		Allergens:      allergens,
		NutritionFacts: nutrition,
		ServingSize:    d.ServingSize,
		Available:      d.Available,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	if prefs != nil {
		safe := d.SafeFor(prefs)
		res.SafeForUser = &safe
	}
	return res
}
