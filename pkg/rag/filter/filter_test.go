package filter

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"safebites-be/internal/entity"
	"safebites-be/internal/pkg/logger"
	"safebites-be/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	extractionMarker = "filter extraction model"
	validationMarker = "decide whether it matches the user's request"
)

func ptr(v float64) *float64 { return &v }

func dishNames(dishes []entity.DishData) []string {
	names := make([]string, 0, len(dishes))
	for _, d := range dishes {
		names = append(names, d.Name)
	}
	return names
}

var menu = []entity.DishData{
	{DishId: "1", Name: "Free Salad", Price: 0, Ingredients: []string{"lettuce"}},
	{DishId: "2", Name: "Almond Tart", Price: 10, Ingredients: []string{"Almonds", "butter"}, Allergens: []string{"Tree Nuts", "dairy"}},
	{DishId: "3", Name: "Margherita Pizza", Price: 12, Ingredients: []string{"tomato", "mozzarella"}, Allergens: []string{"dairy", "wheat_gluten"},
		NutritionFacts: map[string]entity.NutrientValue{"calories": {Value: 800}, "protein": {Value: 30}}},
	{DishId: "4", Name: "Steak", Price: 10.01, Ingredients: []string{"beef"},
		NutritionFacts: map[string]entity.NutrientValue{"calories": {Value: 600}, "protein": {Value: 50}}},
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		filter func(f *DishFilter)
		want   []string
	}{
		{
			name:   "no constraints",
			filter: func(f *DishFilter) {},
			want:   []string{"Free Salad", "Almond Tart", "Margherita Pizza", "Steak"},
		},
		{
			name:   "price range is inclusive at both ends",
			filter: func(f *DishFilter) { f.Price = PriceRange{Min: 0, Max: 10} },
			want:   []string{"Free Salad", "Almond Tart"},
		},
		{
			name:   "include ingredients must all be present",
			filter: func(f *DishFilter) { f.Ingredients.Include = []string{"almonds", "BUTTER"} },
			want:   []string{"Almond Tart"},
		},
		{
			name:   "exclude ingredient",
			filter: func(f *DishFilter) { f.Ingredients.Exclude = []string{"beef"} },
			want:   []string{"Free Salad", "Almond Tart", "Margherita Pizza"},
		},
		{
			name:   "allergen exclusion ignores case and format",
			filter: func(f *DishFilter) { f.ExcludeAllergens = []string{"tree_nuts", "Wheat Gluten"} },
			want:   []string{"Free Salad", "Steak"},
		},
		{
			name:   "missing nutrition counts as zero",
			filter: func(f *DishFilter) { f.Nutrition.MaxCalories = ptr(700) },
			want:   []string{"Free Salad", "Almond Tart", "Steak"},
		},
		{
			name:   "min protein",
			filter: func(f *DishFilter) { f.Nutrition.MinProtein = ptr(40) },
			want:   []string{"Steak"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewDishFilter()
			tt.filter(&f)
			assert.Equal(t, tt.want, dishNames(Apply(menu, f)))
		})
	}
}

func TestNormalizeAllergen(t *testing.T) {
	assert.Equal(t, "tree_nuts", NormalizeAllergen("Tree Nuts"))
	assert.Equal(t, "tree_nuts", NormalizeAllergen(" tree-nuts "))
	assert.Equal(t, "dairy", NormalizeAllergen("DAIRY"))
}

func TestRawFilter_Defaults(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		min     float64
		max     float64
	}{
		{"empty price", `{"price": {}}`, 0, math.Inf(1)},
		{"null bounds", `{"price": {"min": null, "max": null}}`, 0, math.Inf(1)},
		{"inf string", `{"price": {"min": 5, "max": "inf"}}`, 5, math.Inf(1)},
		{"infinity string", `{"price": {"max": "Infinity"}}`, 0, math.Inf(1)},
		{"numeric strings", `{"price": {"min": "2", "max": "$15"}}`, 2, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw rawFilter
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &raw))
			f := raw.toDishFilter()
			assert.Equal(t, tt.min, f.Price.Min)
			assert.Equal(t, tt.max, f.Price.Max)
			assert.Nil(t, f.Nutrition.MaxCalories)
		})
	}
}

func TestRawFilter_RejectsNonFiniteStrings(t *testing.T) {
	for _, payload := range []string{
		`{"price": {"max": "nan"}}`,
		`{"price": {"min": "NaN"}}`,
		`{"price": {"max": "-inf"}}`,
		`{"nutrition": {"max_calories": "nan"}}`,
	} {
		var raw rawFilter
		assert.Error(t, json.Unmarshal([]byte(payload), &raw), payload)
	}
}

func TestFilterDishes_EmptyInputMakesNoCall(t *testing.T) {
	fake := testutil.NewFakeLLM()
	out := NewExtractor(fake, logger.NewNopLogger()).FilterDishes(context.Background(), "cheap pizza", nil)

	assert.False(t, out.Degraded())
	assert.Equal(t, []entity.DishData{}, out.Value)
	assert.Zero(t, fake.CallCount())
}

func TestFilterDishes(t *testing.T) {
	t.Run("applies extracted filters", func(t *testing.T) {
		fake := testutil.NewFakeLLM().Script("```json\n"+`{"price": {"min": 0, "max": 10}, "ingredients": {"include": [], "exclude": []}, "allergens": {"exclude": ["tree nuts"]}, "nutrition": {}}`+"\n```", extractionMarker)
		out := NewExtractor(fake, logger.NewNopLogger()).FilterDishes(context.Background(), "nut-free under $10", menu)
		assert.False(t, out.Degraded())
		assert.Equal(t, []string{"Free Salad"}, dishNames(out.Value))
	})

	t.Run("nan bound is a reported fallback", func(t *testing.T) {
		fake := testutil.NewFakeLLM().Script(`{"price": {"min": 0, "max": "nan"}}`, extractionMarker)
		out := NewExtractor(fake, logger.NewNopLogger()).FilterDishes(context.Background(), "cheap food", menu)
		assert.True(t, out.Degraded())
		assert.Equal(t, menu, out.Value)
	})

	t.Run("fails open", func(t *testing.T) {
		fake := testutil.NewFakeLLM().Fail(errors.New("boom"), extractionMarker)
		out := NewExtractor(fake, logger.NewNopLogger()).FilterDishes(context.Background(), "anything", menu)
		assert.True(t, out.Degraded())
		assert.Equal(t, menu, out.Value)
	})
}

func TestValidate(t *testing.T) {
	t.Run("keeps included ids in input order", func(t *testing.T) {
		fake := testutil.NewFakeLLM().Script(`[
			{"dish_id": "3", "include": true, "reason": "pizza"},
			{"dish_id": "1", "include": true, "reason": "salad"},
			{"dish_id": "2", "include": false, "reason": "dessert"}
		]`, validationMarker)
		out := NewValidator(fake, logger.NewNopLogger()).Validate(context.Background(), "savoury", menu[:3])
		assert.False(t, out.Degraded())
		assert.Equal(t, []string{"Free Salad", "Margherita Pizza"}, dishNames(out.Value))
	})

	t.Run("empty input makes no call", func(t *testing.T) {
		fake := testutil.NewFakeLLM()
		out := NewValidator(fake, logger.NewNopLogger()).Validate(context.Background(), "x", []entity.DishData{})
		assert.Empty(t, out.Value)
		assert.Zero(t, fake.CallCount())
	})

	t.Run("unparsable reply fails open", func(t *testing.T) {
		fake := testutil.NewFakeLLM().Script("I think they all match!", validationMarker)
		out := NewValidator(fake, logger.NewNopLogger()).Validate(context.Background(), "x", menu)
		assert.True(t, out.Degraded())
		assert.Equal(t, menu, out.Value)
	})
}
