package service

import (
	"context"
	"encoding/json"
	"testing"

	"safebites-be/internal/dto"
	"safebites-be/internal/entity"
	"safebites-be/internal/pkg/apperror"
	"safebites-be/internal/pkg/logger"
	"safebites-be/internal/repository/memory"
	"safebites-be/internal/repository/specification"
	"safebites-be/internal/testutil"
	"safebites-be/pkg/events"
	"safebites-be/pkg/vectorindex"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestaurantService_CreateQueuesIngestion(t *testing.T) {
	ctx := context.Background()
	uowFactory := newTestFactory(t)
	jobs := &recordingPublisherService{}
	bus := &events.RecordingPublisher{}
	ingestion := memory.NewIngestionStatusRepository()
	idx, err := vectorindex.NewChromemIndex("", nil)
	require.NoError(t, err)
	indexSvc := NewIndexService(uowFactory, idx, testutil.NewFakeEmbedder([]float32{1, 0, 0}), logger.NewNopLogger())
	svc := NewRestaurantService(uowFactory, jobs, indexSvc, ingestion, bus, logger.NewNopLogger())

	csv := []byte("dish_name,price\nMargherita,12\n")
	res, err := svc.Create(ctx, &dto.CreateRestaurantRequest{Name: " Trattoria ", Cuisine: []string{"Italian", " "}, Rating: 9}, csv)
	require.NoError(t, err)
	assert.Equal(t, "Trattoria", res.Restaurant.Name)
	assert.Equal(t, []string{"Italian"}, res.Restaurant.Cuisine)
	assert.Equal(t, 5.0, res.Restaurant.Rating)
	assert.Equal(t, string(entity.IngestionQueued), res.IngestionState)

	queued := jobs.onTopic(TopicMenuIngest)
	require.Len(t, queued, 1)
	var msg dto.MenuIngestMessage
	require.NoError(t, json.Unmarshal(queued[0].payload, &msg))
	assert.Equal(t, res.Restaurant.Id, msg.RestaurantId)
	assert.Equal(t, csv, msg.Csv)

	status, err := svc.IngestionStatus(ctx, res.Restaurant.Id)
	require.NoError(t, err)
	assert.Equal(t, string(entity.IngestionQueued), status.State)
	assert.Equal(t, []string{events.RestaurantCreated}, bus.Types())

	t.Run("no csv means no job", func(t *testing.T) {
		plain, err := svc.Create(ctx, &dto.CreateRestaurantRequest{Name: "Bistro"}, nil)
		require.NoError(t, err)
		assert.Empty(t, plain.IngestionState)
		_, err = svc.IngestionStatus(ctx, plain.Restaurant.Id)
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})
}

func TestRestaurantService_UpdateClampsRating(t *testing.T) {
	ctx := context.Background()
	uowFactory := newTestFactory(t)
	svc := NewRestaurantService(uowFactory, &recordingPublisherService{}, nil, memory.NewIngestionStatusRepository(), events.NopPublisher{}, logger.NewNopLogger())
	r := seedRestaurant(t, uowFactory, "Trattoria")

	rating := -3.0
	location := "Main St"
	updated, err := svc.Update(ctx, r.Id, &dto.UpdateRestaurantRequest{Rating: &rating, Location: &location})
	require.NoError(t, err)
	assert.Equal(t, 0.0, updated.Rating)
	assert.Equal(t, "Main St", updated.Location)
	assert.Equal(t, "Trattoria", updated.Name)

	_, err = svc.Update(ctx, uuid.New(), &dto.UpdateRestaurantRequest{})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestRestaurantService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	uowFactory := newTestFactory(t)
	idx, err := vectorindex.NewChromemIndex("", nil)
	require.NoError(t, err)
	indexSvc := NewIndexService(uowFactory, idx, testutil.NewFakeEmbedder([]float32{1, 0, 0}), logger.NewNopLogger())
	svc := NewRestaurantService(uowFactory, &recordingPublisherService{}, indexSvc, memory.NewIngestionStatusRepository(), events.NopPublisher{}, logger.NewNopLogger())

	r := seedRestaurant(t, uowFactory, "Trattoria")
	dish := &entity.Dish{RestaurantId: r.Id, Name: "Margherita", Price: 12, Available: true}
	require.NoError(t, uowFactory.NewUnitOfWork(ctx).DishRepository().Create(ctx, dish))
	_, err = indexSvc.IndexDishes(ctx, r.Id, dish.Id)
	require.NoError(t, err)

	hits, err := idx.Search(ctx, r.Id.String(), []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	require.NoError(t, svc.Delete(ctx, r.Id))

	count, err := uowFactory.NewUnitOfWork(ctx).DishRepository().Count(ctx, specification.ByRestaurant{RestaurantID: r.Id})
	require.NoError(t, err)
	assert.Zero(t, count)

	hits, err = idx.Search(ctx, r.Id.String(), []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)

	_, err = svc.Show(ctx, r.Id)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
