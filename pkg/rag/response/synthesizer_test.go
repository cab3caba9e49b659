package response

import (
	"testing"
	"time"

	"safebites-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesize_EmptyStateFails(t *testing.T) {
	state := &entity.ChatState{UserId: uuid.New(), RestaurantId: uuid.New(), SessionId: "sess_0123456789", Query: "hi"}

	final := Synthesize(state)
	assert.Equal(t, entity.ResponseFailed, final.Status)
	assert.Empty(t, final.Responses)
	assert.Equal(t, "sess_0123456789", final.SessionId)
	assert.Equal(t, "hi", final.OriginalQuery)
}

func TestSynthesize_OrdersByType(t *testing.T) {
	restaurantID := uuid.New()
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	state := &entity.ChatState{
		UserId:       uuid.New(),
		RestaurantId: restaurantID,
		Query:        "pizza, its calories, my allergies and a joke",
		QueryParts: entity.QueryParts{
			entity.IntentIrrelevant: {"tell me a joke"},
		},
		PreferenceResults: []entity.PreferenceResult{{Query: "my allergies", Answer: "dairy"}},
		InfoResults: []entity.InfoResult{{Query: "calories of pizza", Answer: entity.InfoAnswer{RequestedInfo: "800 kcal"}}},
		MenuResults: []entity.MenuResult{
			{Query: "pizza", Dishes: []entity.DishData{{DishId: "d1", Name: "Margherita Pizza", Price: 12, Available: true}}},
			{Query: "sushi", Dishes: []entity.DishData{}},
		},
		CreatedAt: created,
	}

	final := Synthesize(state)
	require.Equal(t, entity.ResponseSuccess, final.Status)
	require.Len(t, final.Responses, 5)

	types := make([]entity.IntentType, 0, len(final.Responses))
	for _, r := range final.Responses {
		types = append(types, r.Type)
	}
	assert.Equal(t, []entity.IntentType{
		entity.IntentMenuSearch, entity.IntentMenuSearch, entity.IntentDishInfo, entity.IntentUserPreferences, entity.IntentIrrelevant,
	}, types)

	dishes, ok := final.Responses[0].Result.([]entity.DishResult)
	require.True(t, ok)
	require.Len(t, dishes, 1)
	assert.Equal(t, restaurantID.String(), dishes[0].RestaurantId)
	assert.Equal(t, []string{}, dishes[0].Allergens)

	assert.Equal(t, entity.IrrelevantResult{Message: "Sorry, I couldn't understand your query. Please rephrase it."}, final.Responses[4].Result)
	assert.Equal(t, created, final.Timestamp)
}
