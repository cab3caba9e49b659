package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingPublisher(t *testing.T) {
	rec := &RecordingPublisher{}
	require.NoError(t, rec.Publish(context.Background(), New(DishCreated, map[string]interface{}{"dish_id": "d1"})))
	require.NoError(t, NopPublisher{}.Publish(context.Background(), New(DishDeleted, nil)))

	assert.Equal(t, []string{DishCreated}, rec.Types())
	assert.Equal(t, "d1", rec.Events[0].Payload()["dish_id"])
	assert.False(t, rec.Events[0].Timestamp().IsZero())
}
