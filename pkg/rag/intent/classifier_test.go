package intent

import (
	"context"
	"errors"
	"testing"

	"safebites-be/internal/entity"
	"safebites-be/internal/pkg/logger"
	"safebites-be/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const classifierMarker = "splitting complex food-related user queries"

func TestClassify_FlattensInFixedOrder(t *testing.T) {
	fake := testutil.NewFakeLLM().Script("Here you go:\n```json\n"+`{
		"irrelevant": ["tell me a joke"],
		"dish_info": ["calories of the margherita"],
		"opening_hours": ["when do you open"],
		"menu_search": ["pizzas under $15", "vegan desserts"]
	}`+"\n```", classifierMarker)

	out, err := NewClassifier(fake, logger.NewNopLogger()).Classify(context.Background(), "pizzas and a joke")
	require.NoError(t, err)
	assert.False(t, out.Degraded())
	assert.Equal(t, []entity.IntentQuery{
		{Type: entity.IntentMenuSearch, Query: "pizzas under $15"},
		{Type: entity.IntentMenuSearch, Query: "vegan desserts"},
		{Type: entity.IntentDishInfo, Query: "calories of the margherita"},
		{Type: entity.IntentIrrelevant, Query: "tell me a joke"},
	}, out.Value)
}

func TestClassify_EmptyQueryMakesNoCall(t *testing.T) {
	fake := testutil.NewFakeLLM()
	_, err := NewClassifier(fake, logger.NewNopLogger()).Classify(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Zero(t, fake.CallCount())
}

func TestClassify_FallsBackToIrrelevant(t *testing.T) {
	tests := []struct {
		name string
		fake *testutil.FakeLLM
	}{
		{"model error", testutil.NewFakeLLM().Fail(errors.New("rate limited"), classifierMarker)},
		{"invalid json", testutil.NewFakeLLM().Script(`{"menu_search": [`, classifierMarker)},
		{"empty reply", testutil.NewFakeLLM().Script("", classifierMarker)},
		{"no intents", testutil.NewFakeLLM().Script(`{"menu_search": [], "dish_info": []}`, classifierMarker)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewClassifier(tt.fake, logger.NewNopLogger()).Classify(context.Background(), "what's good here?")
			require.NoError(t, err)
			assert.True(t, out.Degraded())
			assert.Equal(t, []entity.IntentQuery{{Type: entity.IntentIrrelevant, Query: "what's good here?"}}, out.Value)
		})
	}
}
