package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDish_SafeFor(t *testing.T) {
	dish := &Dish{
		Id:        uuid.New(),
		Name:      "Peanut Curry",
		Allergens: []AllergenInfo{{Allergen: "Peanuts"}, {Allergen: "soy"}},
	}

	assert.False(t, dish.SafeFor([]string{"peanuts"}))
	assert.False(t, dish.SafeFor([]string{" SOY "}))
	assert.True(t, dish.SafeFor([]string{"dairy"}))
	assert.True(t, dish.SafeFor(nil))

	nutty := &Dish{Allergens: []AllergenInfo{{Allergen: "tree_nuts"}}}
	assert.False(t, nutty.SafeFor([]string{"Tree Nuts"}))
}

func TestDish_DocumentIncludesSearchableFields(t *testing.T) {
	dish := &Dish{
		Name:           "Margherita Pizza",
		Description:    "Classic tomato and mozzarella",
		Price:          12,
		Ingredients:    []string{"tomato", "mozzarella"},
		Allergens:      []AllergenInfo{{Allergen: "dairy"}},
		NutritionFacts: map[string]NutrientValue{"protein": {Value: 20}, "calories": {Value: 800}},
	}

	doc := dish.Document()
	assert.Contains(t, doc, "Margherita Pizza")
	assert.Contains(t, doc, "Ingredients: tomato, mozzarella")
	assert.Contains(t, doc, "Allergens: dairy")
	assert.Contains(t, doc, "Nutrition: calories 800, protein 20")
	assert.Contains(t, doc, "Price: 12.00")
}

func TestClampRating(t *testing.T) {
	assert.Equal(t, 0.0, ClampRating(-2))
	assert.Equal(t, 5.0, ClampRating(7.5))
	assert.Equal(t, 4.2, ClampRating(4.2))
}

func TestIntentType_Valid(t *testing.T) {
	assert.True(t, IntentDishInfo.Valid())
	assert.False(t, IntentType("order_food").Valid())
}
