package service

import (
	"context"
	"testing"
	"time"

	"safebites-be/internal/dto"
	"safebites-be/internal/entity"
	"safebites-be/internal/pkg/logger"
	"safebites-be/internal/repository/memory"
	"safebites-be/internal/repository/specification"
	"safebites-be/internal/testutil"
	"safebites-be/pkg/events"
	"safebites-be/pkg/menu"
	"safebites-be/pkg/vectorindex"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const menuCsv = `dish_name,description,price,ingredients,allergens,availability
Margherita Pizza,Classic,12,"tomato, mozzarella",dairy,yes
Pesto Pasta,,14,"basil, pine nuts",tree_nuts,no
Broken Row,,abc,,,
Margherita Pizza,Duplicate,11,,,
`

func TestConsumerService_MenuIngestAndDishIndex(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	uowFactory := newTestFactory(t)
	log := logger.NewNopLogger()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	idx, err := vectorindex.NewChromemIndex("", nil)
	require.NoError(t, err)
	indexSvc := NewIndexService(uowFactory, idx, testutil.NewFakeEmbedder([]float32{1, 0, 0}), log)
	ingestion := memory.NewIngestionStatusRepository()
	bus := &events.RecordingPublisher{}
	// The fake model has no script, so enrichment fails and rows stay as parsed.
	enricher := menu.NewEnricher(testutil.NewFakeLLM(), log, 2)

	consumer := NewConsumerService(pubSub, uowFactory, enricher, indexSvc, ingestion, bus, log)
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService(pubSub)
	restaurant := seedRestaurant(t, uowFactory, "Trattoria")
	require.NoError(t, publisher.Publish(ctx, TopicMenuIngest, dto.MenuIngestMessage{
		RestaurantId: restaurant.Id,
		Csv:          []byte(menuCsv),
	}))

	var status *entity.IngestionStatus
	require.Eventually(t, func() bool {
		status, _ = ingestion.Get(ctx, restaurant.Id)
		return status != nil && status.State == entity.IngestionCompleted
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, 4, status.TotalRows)
	assert.Equal(t, 2, status.Imported)
	assert.Equal(t, 2, status.Skipped)
	assert.Empty(t, status.Error)
	assert.Contains(t, bus.Types(), events.MenuIngested)

	dishes, err := uowFactory.NewUnitOfWork(ctx).DishRepository().FindAll(ctx,
		specification.ByRestaurant{RestaurantID: restaurant.Id},
		specification.OrderBy{Field: "name"},
	)
	require.NoError(t, err)
	require.Len(t, dishes, 2)
	assert.Equal(t, "Margherita Pizza", dishes[0].Name)
	assert.Equal(t, "Classic", dishes[0].Description)
	assert.False(t, dishes[1].Available)

	hits, err := idx.Search(ctx, restaurant.Id.String(), []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	require.NoError(t, publisher.Publish(ctx, TopicDishIndex, dto.DishIndexMessage{
		Action:       dto.DishIndexDelete,
		RestaurantId: restaurant.Id,
		DishIds:      []uuid.UUID{dishes[0].Id},
	}))
	require.Eventually(t, func() bool {
		hits, err := idx.Search(ctx, restaurant.Id.String(), []float32{1, 0, 0}, 10)
		return err == nil && len(hits) == 1
	}, 5*time.Second, 20*time.Millisecond)
}

func TestConsumerService_BadCsvFailsJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	uowFactory := newTestFactory(t)
	log := logger.NewNopLogger()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	idx, err := vectorindex.NewChromemIndex("", nil)
	require.NoError(t, err)
	ingestion := memory.NewIngestionStatusRepository()
	consumer := NewConsumerService(pubSub, uowFactory, menu.NewEnricher(testutil.NewFakeLLM(), log, 1),
		NewIndexService(uowFactory, idx, testutil.NewFakeEmbedder([]float32{1, 0}), log), ingestion, events.NopPublisher{}, log)
	require.NoError(t, consumer.Consume(ctx))

	restaurantId := uuid.New()
	require.NoError(t, NewPublisherService(pubSub).Publish(ctx, TopicMenuIngest, dto.MenuIngestMessage{
		RestaurantId: restaurantId,
		Csv:          []byte("\"dish_name,price\n"),
	}))

	require.Eventually(t, func() bool {
		status, _ := ingestion.Get(ctx, restaurantId)
		return status != nil && status.State == entity.IngestionFailed
	}, 5*time.Second, 20*time.Millisecond)
}
