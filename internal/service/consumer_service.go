package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"safebites-be/internal/dto"
	"safebites-be/internal/entity"
	"safebites-be/internal/pkg/logger"
	"safebites-be/internal/repository/contract"
	"safebites-be/internal/repository/unitofwork"
	"safebites-be/pkg/events"
	"safebites-be/pkg/menu"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxJobAttempts = 3
	retryBackoff   = 500 * time.Millisecond
)

// errPermanent marks job failures that retrying cannot fix.
var errPermanent = errors.New("permanent job failure")

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber     message.Subscriber
	uowFactory     unitofwork.RepositoryFactory
	enricher       *menu.Enricher
	indexService   IIndexService
	ingestionRepo  contract.IngestionStatusRepository
	eventPublisher events.Publisher
	logger         logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	uowFactory unitofwork.RepositoryFactory,
	enricher *menu.Enricher,
	indexService IIndexService,
	ingestionRepo contract.IngestionStatusRepository,
	eventPublisher events.Publisher,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:     subscriber,
		uowFactory:     uowFactory,
		enricher:       enricher,
		indexService:   indexService,
		ingestionRepo:  ingestionRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Consume subscribes to the job topics and processes messages in the background until ctx ends.
func (cs *consumerService) Consume(ctx context.Context) error {
	handlers := map[string]func(context.Context, *message.Message) error{
		TopicMenuIngest: cs.processMenuIngest,
		TopicDishIndex:  cs.processDishIndex,
	}

	for topic, handle := range handlers {
		messages, err := cs.subscriber.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}

		go func(topic string, handle func(context.Context, *message.Message) error) {
			for msg := range messages {
				cs.dispatch(ctx, topic, msg, handle)
			}
		}(topic, handle)
	}
	return nil
}

// dispatch retries transient failures in-process and always acks, so a poisoned
// message cannot loop on the in-memory bus.
func (cs *consumerService) dispatch(ctx context.Context, topic string, msg *message.Message, handle func(context.Context, *message.Message) error) {
	var err error
	for attempt := 1; attempt <= maxJobAttempts; attempt++ {
		err = handle(ctx, msg)
		if err == nil || errors.Is(err, errPermanent) {
			break
		}
		cs.logger.Warn("ConsumerService", "Job attempt failed", map[string]interface{}{
			"topic":   topic,
			"uuid":    msg.UUID,
			"attempt": attempt,
			"error":   err.Error(),
		})
		time.Sleep(time.Duration(attempt) * retryBackoff)
	}

	if err != nil {
		cs.logger.Error("ConsumerService", "Job dropped", map[string]interface{}{
			"topic": topic,
			"uuid":  msg.UUID,
			"error": err.Error(),
		})
	}
	msg.Ack()
}

func (cs *consumerService) processMenuIngest(ctx context.Context, msg *message.Message) error {
	var payload dto.MenuIngestMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("%w: bad menu.ingest payload: %v", errPermanent, err)
	}

	status := &entity.IngestionStatus{RestaurantId: payload.RestaurantId, State: entity.IngestionRunning}
	cs.saveStatus(ctx, status)

	dishes, report, err := menu.ParseCSV(bytes.NewReader(payload.Csv), payload.RestaurantId, cs.logger)
	if err != nil {
		status.State = entity.IngestionFailed
		status.Error = err.Error()
		cs.saveStatus(ctx, status)
		return fmt.Errorf("%w: %v", errPermanent, err)
	}
	status.TotalRows = report.TotalRows
	status.Skipped = report.Skipped

	enriched := cs.enricher.EnrichAll(ctx, dishes)
	cs.logger.Info("ConsumerService", "Menu parsed", map[string]interface{}{
		"restaurant_id": payload.RestaurantId.String(),
		"rows":          report.TotalRows,
		"dishes":        len(dishes),
		"enriched":      enriched,
	})

	// Rows go in one by one so a duplicate name only skips that row.
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	ids := make([]uuid.UUID, 0, len(dishes))
	for _, d := range dishes {
		if err := uow.DishRepository().Create(ctx, d); err != nil {
			status.Skipped++
			level := cs.logger.Error
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				level = cs.logger.Warn
			}
			level("ConsumerService", "Menu row not imported", map[string]interface{}{
				"restaurant_id": payload.RestaurantId.String(),
				"dish":          d.Name,
				"error":         err.Error(),
			})
			continue
		}
		ids = append(ids, d.Id)
	}
	status.Imported = len(ids)

	if _, err := cs.indexService.IndexDishes(ctx, payload.RestaurantId, ids...); err != nil {
		// Rows are stored; the startup rebuild or cmd/reindex can catch the index up.
		status.Error = fmt.Sprintf("indexing failed: %v", err)
		cs.logger.Error("ConsumerService", "Failed to index imported dishes", map[string]interface{}{
			"restaurant_id": payload.RestaurantId.String(),
			"error":         err.Error(),
		})
	}

	status.State = entity.IngestionCompleted
	cs.saveStatus(ctx, status)

	err = cs.eventPublisher.Publish(ctx, events.New(events.MenuIngested, map[string]interface{}{
		"restaurant_id": payload.RestaurantId.String(),
		"imported":      status.Imported,
		"skipped":       status.Skipped,
	}))
	if err != nil {
		cs.logger.Warn("ConsumerService", "Failed to publish menu event", map[string]interface{}{"error": err.Error()})
	}
	return nil
}

func (cs *consumerService) processDishIndex(ctx context.Context, msg *message.Message) error {
	var payload dto.DishIndexMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("%w: bad dish.index payload: %v", errPermanent, err)
	}

	switch payload.Action {
	case dto.DishIndexUpsert:
		_, err := cs.indexService.IndexDishes(ctx, payload.RestaurantId, payload.DishIds...)
		return err
	case dto.DishIndexDelete:
		return cs.indexService.RemoveDishes(ctx, payload.RestaurantId, payload.DishIds...)
	default:
		return fmt.Errorf("%w: unknown index action %q", errPermanent, payload.Action)
	}
}

func (cs *consumerService) saveStatus(ctx context.Context, status *entity.IngestionStatus) {
	status.UpdatedAt = time.Now()
	if err := cs.ingestionRepo.Save(ctx, status); err != nil {
		cs.logger.Warn("ConsumerService", "Failed to save ingestion status", map[string]interface{}{
			"restaurant_id": status.RestaurantId.String(),
			"error":         err.Error(),
		})
	}
}
