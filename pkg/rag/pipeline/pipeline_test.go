package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"safebites-be/internal/entity"
	"safebites-be/internal/pkg/apperror"
	"safebites-be/internal/pkg/logger"
	"safebites-be/internal/testutil"
	"safebites-be/pkg/rag/contextresolver"
	"safebites-be/pkg/rag/filter"
	"safebites-be/pkg/rag/intent"
	"safebites-be/pkg/rag/retriever"
	"safebites-be/pkg/rag/search"
	"safebites-be/pkg/vectorindex"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	rewriteMarker     = "context resolver for a food delivery assistant"
	summaryMarker     = "summarizing conversation context"
	classifyMarker    = "splitting complex food-related user queries"
	queryIntentMarker = "intent extraction expert"
	extractionMarker  = "filter extraction model"
	validationMarker  = "decide whether it matches the user's request"
)

type mapDishSource map[string]entity.DishData

func (m mapDishSource) DishesByIDs(ctx context.Context, restaurantID string, ids []string) ([]entity.DishData, error) {
	out := make([]entity.DishData, 0, len(ids))
	for _, id := range ids {
		if d, ok := m[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func newExecutor(t *testing.T, fake *testutil.FakeLLM, restaurantID uuid.UUID, cfg Config) *PipelineExecutor {
	t.Helper()
	rid := restaurantID.String()

	dishes := mapDishSource{
		"margherita": {DishId: "margherita", RestaurantId: rid, Name: "Margherita Pizza", Price: 12, Ingredients: []string{"tomato", "mozzarella"}, Allergens: []string{"dairy"}, Available: true},
		"pepperoni":  {DishId: "pepperoni", RestaurantId: rid, Name: "Pepperoni Pizza", Price: 18, Ingredients: []string{"pepperoni", "mozzarella"}, Allergens: []string{"dairy"}, Available: true},
		"caesar":     {DishId: "caesar", RestaurantId: rid, Name: "Caesar Salad", Price: 9, Ingredients: []string{"romaine", "parmesan"}, Available: true},
	}

	idx, err := vectorindex.NewChromemIndex("", nil)
	require.NoError(t, err)
	require.NoError(t, idx.Upsert(context.Background(),
		vectorindex.Document{DishID: "margherita", RestaurantID: rid, Content: "Margherita Pizza", Embedding: []float32{1, 0, 0}},
		vectorindex.Document{DishID: "pepperoni", RestaurantID: rid, Content: "Pepperoni Pizza", Embedding: []float32{0.96, 0.28, 0}},
		vectorindex.Document{DishID: "caesar", RestaurantID: rid, Content: "Caesar Salad", Embedding: []float32{0, 1, 0}},
	))
	embedder := testutil.NewFakeEmbedder(nil).Set("pizza", []float32{1, 0, 0})

	log := logger.NewNopLogger()
	searcher := search.NewOrchestrator(fake, embedder, idx, search.DefaultConfig(), log)
	extractor := filter.NewExtractor(fake, log)
	validator := filter.NewValidator(fake, log)

	return NewPipelineExecutor(
		contextresolver.NewResolver(fake, log),
		intent.NewClassifier(fake, log),
		retriever.NewMenuRetriever(searcher, dishes, extractor, validator, log, 2),
		retriever.NewDishInfoRetriever(fake, searcher, dishes, extractor, validator, log, 2),
		retriever.NewPreferencesRetriever(fake, log),
		cfg,
		log,
	)
}

func TestExecute_PizzaUnderFifteen(t *testing.T) {
	restaurantID := uuid.New()
	fake := testutil.NewFakeLLM().
		Script("pizza under $15", rewriteMarker).
		Script("", summaryMarker).
		Script(`{"menu_search": ["pizza under $15"], "dish_info": [], "user_preferences": [], "irrelevant": []}`, classifyMarker).
		Script(`{"positive": ["pizza"], "negative": []}`, queryIntentMarker).
		Script(`{"price": {"min": 0, "max": 15}, "ingredients": {"include": [], "exclude": []}, "allergens": {}, "nutrition": {}}`, extractionMarker).
		Script(`[{"dish_id": "margherita", "include": true, "reason": "pizza under $15"}]`, validationMarker)

	p := newExecutor(t, fake, restaurantID, Config{StageTimeout: 5 * time.Second})
	state, err := p.Execute(context.Background(), Input{
		UserID:       uuid.New(),
		SessionID:    "sess_abcdef0123",
		RestaurantID: restaurantID,
		Query:        "pizza under $15",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ChatStatusCompleted, state.Status)
	assert.Empty(t, state.StageErrors)

	require.NotNil(t, state.Response)
	final := state.Response
	assert.Equal(t, entity.ResponseSuccess, final.Status)
	require.Len(t, final.Responses, 1)
	assert.Equal(t, entity.IntentMenuSearch, final.Responses[0].Type)

	dishes, ok := final.Responses[0].Result.([]entity.DishResult)
	require.True(t, ok)
	require.Len(t, dishes, 1)
	assert.Equal(t, "Margherita Pizza", dishes[0].Name)
	assert.Equal(t, 12.0, dishes[0].Price)
}

func TestExecute_ResolverPolicy(t *testing.T) {
	script := func() *testutil.FakeLLM {
		return testutil.NewFakeLLM().
			Fail(errors.New("resolver offline"), rewriteMarker).
			Script(`{"irrelevant": ["sing a song"]}`, classifyMarker)
	}

	t.Run("proceed keeps the raw query", func(t *testing.T) {
		p := newExecutor(t, script(), uuid.New(), Config{ResolverFailurePolicy: PolicyProceed})
		state, err := p.Execute(context.Background(), Input{SessionID: "sess_1", RestaurantID: uuid.New(), Query: "sing a song"})
		require.NoError(t, err)

		assert.Equal(t, "sing a song", state.RewrittenQuery)
		assert.Equal(t, "", state.ContextSummary)
		require.Len(t, state.StageErrors, 1)
		assert.Equal(t, StageResolveContext, state.StageErrors[0].Stage)
		assert.Equal(t, entity.ResponseSuccess, state.Response.Status)
		assert.Equal(t, entity.IntentIrrelevant, state.Response.Responses[0].Type)
	})

	t.Run("abort fails the turn", func(t *testing.T) {
		p := newExecutor(t, script(), uuid.New(), Config{ResolverFailurePolicy: PolicyAbort})
		state, err := p.Execute(context.Background(), Input{SessionID: "sess_2", RestaurantID: uuid.New(), Query: "sing a song"})
		require.Error(t, err)
		assert.Equal(t, 500, apperror.StatusOf(err))
		assert.Equal(t, entity.ChatStatusFailed, state.Status)
		assert.Nil(t, state.Response)
	})
}

func TestExecute_ClassifierFallbackIsRecorded(t *testing.T) {
	fake := testutil.NewFakeLLM().
		Script("what's up", rewriteMarker).
		Script("nothing relevant", summaryMarker).
		Script("not json at all", classifyMarker)

	p := newExecutor(t, fake, uuid.New(), Config{})
	state, err := p.Execute(context.Background(), Input{SessionID: "sess_3", RestaurantID: uuid.New(), Query: "what's up"})
	require.NoError(t, err)

	assert.Equal(t, []entity.IntentQuery{{Type: entity.IntentIrrelevant, Query: "what's up"}}, state.Intents)
	require.Len(t, state.StageErrors, 1)
	assert.Equal(t, StageClassifyIntent, state.StageErrors[0].Stage)
	assert.Equal(t, entity.ResponseSuccess, state.Response.Status)
}

func TestExecute_StageTimeoutIsRecorded(t *testing.T) {
	restaurantID := uuid.New()
	fake := testutil.NewFakeLLM().
		Script("pizza", rewriteMarker).
		Script("", summaryMarker).
		Script(`{"menu_search": ["pizza"]}`, classifyMarker).
		Block(queryIntentMarker)

	p := newExecutor(t, fake, restaurantID, Config{StageTimeout: 100 * time.Millisecond})
	state, err := p.Execute(context.Background(), Input{SessionID: "sess_5", RestaurantID: restaurantID, Query: "pizza"})
	require.NoError(t, err)

	assert.Equal(t, entity.ChatStatusCompleted, state.Status)
	require.Len(t, state.StageErrors, 1)
	assert.Equal(t, StageMenuRetrieval, state.StageErrors[0].Stage)
	assert.Contains(t, state.StageErrors[0].Message, context.DeadlineExceeded.Error())
	require.NotNil(t, state.Response)
}

func TestExecute_SearchesEveryRestaurantWithoutScope(t *testing.T) {
	fake := testutil.NewFakeLLM().
		Script("pizza", rewriteMarker).
		Script("", summaryMarker).
		Script(`{"menu_search": ["pizza"]}`, classifyMarker).
		Script(`{"positive": ["pizza"], "negative": []}`, queryIntentMarker).
		Script(`{}`, extractionMarker).
		Script(`[{"dish_id": "margherita", "include": true}]`, validationMarker)

	p := newExecutor(t, fake, uuid.New(), Config{})
	state, err := p.Execute(context.Background(), Input{SessionID: "sess_6", RestaurantID: uuid.Nil, Query: "pizza"})
	require.NoError(t, err)

	assert.Empty(t, state.StageErrors)
	require.Len(t, state.MenuResults, 1)
	require.Len(t, state.MenuResults[0].Dishes, 1)
	assert.Equal(t, "Margherita Pizza", state.MenuResults[0].Dishes[0].Name)
}

func TestExecute_PreferencesUseHistory(t *testing.T) {
	fake := testutil.NewFakeLLM().
		Script("what am I allergic to?", rewriteMarker).
		Script("User is allergic to peanuts.", summaryMarker).
		Script(`{"user_preferences": ["what am I allergic to?"]}`, classifyMarker).
		Script(`{"answer": "You are allergic to peanuts."}`, "Allergen Preferences: peanuts")

	p := newExecutor(t, fake, uuid.New(), Config{})
	state, err := p.Execute(context.Background(), Input{
		SessionID:    "sess_4",
		RestaurantID: uuid.New(),
		Query:        "what am I allergic to?",
		History:      []entity.ContextItem{{UserAllergens: []string{"peanuts"}, Message: "User is allergic to: peanuts"}},
	})
	require.NoError(t, err)
	require.Len(t, state.PreferenceResults, 1)
	assert.Equal(t, "You are allergic to peanuts.", state.PreferenceResults[0].Answer)
	assert.Empty(t, state.MenuResults)
}

func TestGenerateQueryParts(t *testing.T) {
	parts := GenerateQueryParts([]entity.IntentQuery{
		{Type: entity.IntentMenuSearch, Query: "pizza"},
		{Type: entity.IntentDishInfo, Query: "calories"},
		{Type: entity.IntentMenuSearch, Query: "salad"},
		{Type: "order_food", Query: "two pizzas"},
		{Type: entity.IntentIrrelevant, Query: " "},
	})

	assert.Equal(t, entity.QueryParts{
		entity.IntentMenuSearch: {"pizza", "salad"},
		entity.IntentDishInfo:   {"calories"},
	}, parts)
}
