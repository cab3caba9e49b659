package retriever

import (
	"context"
	"errors"
	"testing"

	"safebites-be/internal/entity"
	"safebites-be/internal/pkg/logger"
	"safebites-be/internal/testutil"
	"safebites-be/pkg/rag/filter"
	"safebites-be/pkg/rag/search"
	"safebites-be/pkg/vectorindex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	queryIntentMarker   = "intent extraction expert"
	extractionMarker    = "filter extraction model"
	validationMarker    = "decide whether it matches the user's request"
	infoIntentMarker    = "decide whether restaurant menu data must be fetched"
	generalMarker       = "using general food knowledge only"
	infoSynthesisMarker = "You are a food information assistant"
	preferencesMarker   = "questions about the user's preferences"
)

type mapDishSource map[string]entity.DishData

func (m mapDishSource) DishesByIDs(ctx context.Context, restaurantID string, ids []string) ([]entity.DishData, error) {
	out := make([]entity.DishData, 0, len(ids))
	for _, id := range ids {
		if d, ok := m[id]; ok && d.RestaurantId == restaurantID {
			out = append(out, d)
		}
	}
	return out, nil
}

var dishes = mapDishSource{
	"pizza":  {DishId: "pizza", RestaurantId: "r1", Name: "Margherita Pizza", Price: 12, Ingredients: []string{"tomato", "mozzarella"}, Allergens: []string{"dairy"}},
	"salmon": {DishId: "salmon", RestaurantId: "r1", Name: "Grilled Salmon", Price: 22, Ingredients: []string{"salmon"}, Allergens: []string{"fish"}},
}

type fixture struct {
	llm      *testutil.FakeLLM
	embedder *testutil.FakeEmbedder
	searcher *search.Orchestrator
	extract  *filter.Extractor
	validate *filter.Validator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	idx, err := vectorindex.NewChromemIndex("", nil)
	require.NoError(t, err)
	require.NoError(t, idx.Upsert(context.Background(),
		vectorindex.Document{DishID: "pizza", RestaurantID: "r1", Content: "Margherita Pizza", Embedding: []float32{1, 0}},
		vectorindex.Document{DishID: "salmon", RestaurantID: "r1", Content: "Grilled Salmon", Embedding: []float32{0, 1}},
	))

	fake := testutil.NewFakeLLM()
	embedder := testutil.NewFakeEmbedder(nil).
		Set("pizza", []float32{1, 0}).
		Set("salmon", []float32{0, 1}).
		Set("sushi", []float32{0.6, 0.8})
	log := logger.NewNopLogger()
	return &fixture{
		llm:      fake,
		embedder: embedder,
		searcher: search.NewOrchestrator(fake, embedder, idx, search.DefaultConfig(), log),
		extract:  filter.NewExtractor(fake, log),
		validate: filter.NewValidator(fake, log),
	}
}

func TestWithSummary(t *testing.T) {
	assert.Equal(t, "pizza", WithSummary("pizza", ""))
	assert.Equal(t, "pizza\nContext: user likes cheese", WithSummary("pizza", "user likes cheese"))
}

func TestMenuRetriever_KeepsSubQueryOrder(t *testing.T) {
	f := newFixture(t)
	f.llm.
		Script(`{"positive": ["pizza"], "negative": []}`, queryIntentMarker, "Query: pizza").
		Script(`{"positive": ["salmon"], "negative": []}`, queryIntentMarker, "Query: salmon").
		Fail(errors.New("model down"), queryIntentMarker).
		Script(`{"price": {}, "ingredients": {}, "allergens": {}, "nutrition": {}}`, extractionMarker).
		Script(`[{"dish_id": "pizza", "include": true}]`, validationMarker, "Margherita").
		Script(`[{"dish_id": "salmon", "include": true}]`, validationMarker, "Grilled Salmon")

	r := NewMenuRetriever(f.searcher, dishes, f.extract, f.validate, logger.NewNopLogger(), 2)
	out := r.Retrieve(context.Background(), "r1", []string{"pizza", "salmon"}, "")

	require.Len(t, out.Value, 2)
	assert.Equal(t, "pizza", out.Value[0].Query)
	require.Len(t, out.Value[0].Dishes, 1)
	assert.Equal(t, "Margherita Pizza", out.Value[0].Dishes[0].Name)
	assert.Equal(t, "salmon", out.Value[1].Query)
	require.Len(t, out.Value[1].Dishes, 1)
	assert.Equal(t, "Grilled Salmon", out.Value[1].Dishes[0].Name)
	assert.False(t, out.Degraded())
}

func TestMenuRetriever_FailingSubQueryIsEmpty(t *testing.T) {
	f := newFixture(t)
	f.llm.Script(`{"positive": ["unknown dish"], "negative": []}`, queryIntentMarker)

	r := NewMenuRetriever(f.searcher, dishes, f.extract, f.validate, logger.NewNopLogger(), 2)
	out := r.Retrieve(context.Background(), "r1", []string{"mystery"}, "")

	require.Len(t, out.Value, 1)
	assert.Equal(t, []entity.DishData{}, out.Value[0].Dishes)
	assert.True(t, out.Degraded())
}

func TestMenuRetriever_DegradedSearchKeepsDishes(t *testing.T) {
	f := newFixture(t)
	f.llm.
		Fail(errors.New("model down"), queryIntentMarker).
		Fail(errors.New("extractor down"), extractionMarker).
		Script(`[{"dish_id": "pizza", "include": true}]`, validationMarker)

	r := NewMenuRetriever(f.searcher, dishes, f.extract, f.validate, logger.NewNopLogger(), 2)
	out := r.Retrieve(context.Background(), "r1", []string{"pizza"}, "")

	require.Len(t, out.Value, 1)
	require.Len(t, out.Value[0].Dishes, 1)
	assert.Equal(t, "Margherita Pizza", out.Value[0].Dishes[0].Name)
	require.True(t, out.Degraded())
	assert.Contains(t, out.Err.Error(), "model down")
	assert.Contains(t, out.Err.Error(), "extractor down")
}

func TestDishInfoRetriever(t *testing.T) {
	t.Run("general knowledge", func(t *testing.T) {
		f := newFixture(t)
		f.llm.
			Script(`{"type": "general_knowledge"}`, infoIntentMarker).
			Script(`{"answer": "Mozzarella is a cheese."}`, generalMarker)

		r := NewDishInfoRetriever(f.llm, f.searcher, dishes, f.extract, f.validate, logger.NewNopLogger(), 2)
		out := r.Retrieve(context.Background(), "r1", []string{"what is mozzarella?"}, "")

		require.Len(t, out.Value, 1)
		assert.Nil(t, out.Value[0].Answer.DishName)
		assert.Equal(t, "Mozzarella is a cheese.", out.Value[0].Answer.RequestedInfo)
		assert.Equal(t, []interface{}{}, out.Value[0].Answer.SourceData)
	})

	t.Run("unparseable intent falls back to general knowledge", func(t *testing.T) {
		f := newFixture(t)
		f.llm.
			Script("not sure", infoIntentMarker).
			Script(`{"answer": "Pizza is from Naples."}`, generalMarker)

		r := NewDishInfoRetriever(f.llm, f.searcher, dishes, f.extract, f.validate, logger.NewNopLogger(), 2)
		out := r.Retrieve(context.Background(), "r1", []string{"where is pizza from?"}, "")
		assert.Equal(t, "Pizza is from Naples.", out.Value[0].Answer.RequestedInfo)
	})

	t.Run("intent call failure", func(t *testing.T) {
		f := newFixture(t)
		f.llm.Fail(errors.New("timeout"), infoIntentMarker)

		r := NewDishInfoRetriever(f.llm, f.searcher, dishes, f.extract, f.validate, logger.NewNopLogger(), 2)
		out := r.Retrieve(context.Background(), "r1", []string{"calories in the pizza"}, "")
		assert.Equal(t, "Intent derivation failed", out.Value[0].Answer.RequestedInfo)
		assert.True(t, out.Degraded())
	})

	t.Run("menu data", func(t *testing.T) {
		f := newFixture(t)
		f.llm.
			Script(`{"type": "requires_menu_data"}`, infoIntentMarker).
			Script(`{"positive": ["pizza"], "negative": []}`, queryIntentMarker).
			Script(`{}`, extractionMarker).
			Script(`[{"dish_id": "pizza", "include": true}]`, validationMarker).
			Script(`{"dish_name": "Margherita Pizza", "requested_info": "It costs $12.", "source_data": [{"price": 12}]}`, infoSynthesisMarker, "Price: 12.00")

		r := NewDishInfoRetriever(f.llm, f.searcher, dishes, f.extract, f.validate, logger.NewNopLogger(), 2)
		out := r.Retrieve(context.Background(), "r1", []string{"how much is the pizza?"}, "")

		answer := out.Value[0].Answer
		require.NotNil(t, answer.DishName)
		assert.Equal(t, "Margherita Pizza", *answer.DishName)
		assert.Equal(t, "It costs $12.", answer.RequestedInfo)
		assert.Len(t, answer.SourceData, 1)
		assert.False(t, out.Degraded())
	})

	t.Run("menu data failures", func(t *testing.T) {
		tests := []struct {
			name      string
			synthesis func(f *testutil.FakeLLM)
			want      string
		}{
			{"empty reply", func(f *testutil.FakeLLM) { f.Script("", infoSynthesisMarker) }, "No response generated"},
			{"bad json", func(f *testutil.FakeLLM) { f.Script("It is cheap", infoSynthesisMarker) }, "Could not parse LLM Response"},
			{"call error", func(f *testutil.FakeLLM) { f.Fail(errors.New("quota"), infoSynthesisMarker) }, "Unexpected error: quota"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture(t)
				f.llm.
					Script(`{"type": "requires_menu_data"}`, infoIntentMarker).
					Script(`{"positive": ["pizza"], "negative": []}`, queryIntentMarker).
					Script(`{}`, extractionMarker).
					Script(`[{"dish_id": "pizza", "include": true}]`, validationMarker)
				tt.synthesis(f.llm)

				r := NewDishInfoRetriever(f.llm, f.searcher, dishes, f.extract, f.validate, logger.NewNopLogger(), 2)
				out := r.Retrieve(context.Background(), "r1", []string{"price of pizza"}, "")
				assert.Equal(t, tt.want, out.Value[0].Answer.RequestedInfo)
			})
		}
	})

	t.Run("degraded search is reported", func(t *testing.T) {
		f := newFixture(t)
		f.llm.
			Script(`{"type": "requires_menu_data"}`, infoIntentMarker).
			Fail(errors.New("model down"), queryIntentMarker).
			Script(`{}`, extractionMarker).
			Script(`[{"dish_id": "pizza", "include": true}]`, validationMarker).
			Script(`{"dish_name": "Margherita Pizza", "requested_info": "It costs $12.", "source_data": []}`, infoSynthesisMarker)

		r := NewDishInfoRetriever(f.llm, f.searcher, dishes, f.extract, f.validate, logger.NewNopLogger(), 2)
		out := r.Retrieve(context.Background(), "r1", []string{"pizza"}, "")

		assert.Equal(t, "It costs $12.", out.Value[0].Answer.RequestedInfo)
		require.True(t, out.Degraded())
		assert.Contains(t, out.Err.Error(), "model down")
	})

	t.Run("no hits", func(t *testing.T) {
		f := newFixture(t)
		f.llm.
			Script(`{"type": "requires_menu_data"}`, infoIntentMarker).
			Script(`{"positive": ["pizza"], "negative": ["pizza"]}`, queryIntentMarker)

		r := NewDishInfoRetriever(f.llm, f.searcher, dishes, f.extract, f.validate, logger.NewNopLogger(), 2)
		out := r.Retrieve(context.Background(), "r1", []string{"pizza allergens"}, "")
		assert.Equal(t, "No relevant dishes found for query 'pizza allergens'", out.Value[0].Answer.RequestedInfo)
	})
}

func TestPreferencesRetriever(t *testing.T) {
	history := []entity.ContextItem{
		{UserAllergens: []string{"peanuts", "dairy"}, Message: "User is allergic to: peanuts, dairy"},
		{Query: "show me pizzas"},
	}

	t.Run("answers from context", func(t *testing.T) {
		fake := testutil.NewFakeLLM().Script(`{"answer": "You are allergic to peanuts and dairy."}`, preferencesMarker, "peanuts, dairy")
		out := NewPreferencesRetriever(fake, logger.NewNopLogger()).Retrieve(context.Background(), []string{"what am I allergic to?"}, history)
		assert.Equal(t, []entity.PreferenceResult{{Query: "what am I allergic to?", Answer: "You are allergic to peanuts and dairy."}}, out.Value)
	})

	t.Run("no preferences set", func(t *testing.T) {
		fake := testutil.NewFakeLLM()
		out := NewPreferencesRetriever(fake, logger.NewNopLogger()).Retrieve(context.Background(), []string{"what am I allergic to?"}, nil)
		assert.Equal(t, noPreferencesAnswer, out.Value[0].Answer)
		assert.Zero(t, fake.CallCount())
	})

	t.Run("model failure lists allergens", func(t *testing.T) {
		fake := testutil.NewFakeLLM().Fail(errors.New("down"), preferencesMarker)
		out := NewPreferencesRetriever(fake, logger.NewNopLogger()).Retrieve(context.Background(), []string{"my allergies?"}, history)
		assert.Equal(t, "You are allergic to: peanuts, dairy.", out.Value[0].Answer)
		assert.True(t, out.Degraded())
	})
}
