package entity

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CanonicalAllergens is the closed set the enrichment step may assign.
var CanonicalAllergens = []string{
	"peanuts", "tree_nuts", "dairy", "egg", "soy", "wheat_gluten", "fish", "shellfish", "sesame",
}

type AllergenInfo struct {
	Allergen   string   `json:"allergen"`
	Confidence *float64 `json:"confidence,omitempty"`
	Why        string   `json:"why,omitempty"`
}

type NutrientValue struct {
	Value      float64  `json:"value"`
	Confidence *float64 `json:"confidence,omitempty"`
}

type Dish struct {
	Id             uuid.UUID
	RestaurantId   uuid.UUID
	Name           string
	Description    string
	Price          float64
	Ingredients    []string
	Allergens      []AllergenInfo
	NutritionFacts map[string]NutrientValue
	ServingSize    string
	Available      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (d *Dish) AllergenNames() []string {
	names := make([]string, 0, len(d.Allergens))
	for _, a := range d.Allergens {
		if a.Allergen != "" {
			names = append(names, a.Allergen)
		}
	}
	return names
}

var allergenSeparators = strings.NewReplacer(" ", "_", "-", "_")

// NormalizeAllergen lower-cases and maps spaces and hyphens to underscores,
// so "Tree Nuts" and "tree-nuts" both become "tree_nuts".
func NormalizeAllergen(a string) string {
	return allergenSeparators.Replace(strings.ToLower(strings.TrimSpace(a)))
}

// SafeFor reports whether none of the dish allergens appear in prefs.
func (d *Dish) SafeFor(prefs []string) bool {
	if len(prefs) == 0 {
		return true
	}
	blocked := make(map[string]struct{}, len(prefs))
	for _, p := range prefs {
		blocked[NormalizeAllergen(p)] = struct{}{}
	}
	for _, a := range d.AllergenNames() {
		if _, hit := blocked[NormalizeAllergen(a)]; hit {
			return false
		}
	}
	return true
}

// Document renders the text that gets embedded into the vector index.
func (d *Dish) Document() string {
	var sb strings.Builder
	sb.WriteString(d.Name)
	if d.Description != "" {
		sb.WriteString(". ")
		sb.WriteString(d.Description)
	}
	if len(d.Ingredients) > 0 {
		sb.WriteString(". Ingredients: ")
		sb.WriteString(strings.Join(d.Ingredients, ", "))
	}
	if names := d.AllergenNames(); len(names) > 0 {
		sb.WriteString(". Allergens: ")
		sb.WriteString(strings.Join(names, ", "))
	}
	if len(d.NutritionFacts) > 0 {
		keys := make([]string, 0, len(d.NutritionFacts))
		for k := range d.NutritionFacts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s %.0f", k, d.NutritionFacts[k].Value))
		}
		sb.WriteString(". Nutrition: ")
		sb.WriteString(strings.Join(parts, ", "))
	}
	if d.ServingSize != "" {
		sb.WriteString(". Serving: ")
		sb.WriteString(d.ServingSize)
	}
	sb.WriteString(fmt.Sprintf(". Price: %.2f", d.Price))
	return sb.String()
}

// DishData is the flat, JSON-friendly view of a dish that flows through the chat pipeline.
type DishData struct {
	DishId         string                   `json:"dish_id"`
	RestaurantId   string                   `json:"restaurant_id"`
	Name           string                   `json:"name"`
	Description    string                   `json:"description"`
	Price          float64                  `json:"price"`
	Ingredients    []string                 `json:"ingredients"`
	Allergens      []string                 `json:"allergens"`
	NutritionFacts map[string]NutrientValue `json:"nutrition_facts,omitempty"`
	ServingSize    string                   `json:"serving_size,omitempty"`
	Available      bool                     `json:"available"`
}

func NewDishData(d *Dish) DishData {
	return DishData{
		DishId:         d.Id.String(),
		RestaurantId:   d.RestaurantId.String(),
		Name:           d.Name,
		Description:    d.Description,
		Price:          d.Price,
		Ingredients:    d.Ingredients,
		Allergens:      d.AllergenNames(),
		NutritionFacts: d.NutritionFacts,
		ServingSize:    d.ServingSize,
		Available:      d.Available,
	}
}
