package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"safebites-be/internal/entity"
	"safebites-be/internal/repository/unitofwork"
	"safebites-be/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type publishedJob struct {
	topic   string
	payload []byte
}

// recordingPublisherService captures job messages instead of sending them to a bus.
type recordingPublisherService struct {
	mu   sync.Mutex
	jobs []publishedJob
}

func (r *recordingPublisherService) Publish(ctx context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, publishedJob{topic: topic, payload: data})
	return nil
}

func (r *recordingPublisherService) onTopic(topic string) []publishedJob {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []publishedJob
	for _, j := range r.jobs {
		if j.topic == topic {
			out = append(out, j)
		}
	}
	return out
}

func newTestFactory(t *testing.T) unitofwork.RepositoryFactory {
	t.Helper()
	return unitofwork.NewRepositoryFactory(testutil.NewTestDB(t))
}

func seedRestaurant(t *testing.T, uowFactory unitofwork.RepositoryFactory, name string) *entity.Restaurant {
	t.Helper()
	ctx := context.Background()
	r := &entity.Restaurant{Id: uuid.New(), Name: name, Cuisine: []string{"Italian"}, Rating: 4}
	require.NoError(t, uowFactory.NewUnitOfWork(ctx).RestaurantRepository().Create(ctx, r))
	return r
}

func seedUser(t *testing.T, uowFactory unitofwork.RepositoryFactory, username string, allergens ...string) *entity.User {
	t.Helper()
	ctx := context.Background()
	u := &entity.User{Id: uuid.New(), Name: username, Username: username, PasswordHash: "x", AllergenPreferences: allergens}
	require.NoError(t, uowFactory.NewUnitOfWork(ctx).UserRepository().Create(ctx, u))
	return u
}
