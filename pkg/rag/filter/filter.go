// Package filter turns a query into structured dish constraints and applies them.
package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"safebites-be/internal/entity"
)

type PriceRange struct {
	Min float64
	Max float64
}

type IngredientFilter struct {
	Include []string
	Exclude []string
}

// NutritionBounds holds optional limits; nil means the bound is absent.
type NutritionBounds struct {
	MaxCalories *float64
	MinProtein  *float64
	MaxFat      *float64
	MaxCarbs    *float64
}

type DishFilter struct {
	Price            PriceRange
	Ingredients      IngredientFilter
	ExcludeAllergens []string
	Nutrition        NutritionBounds
}

// NewDishFilter returns a filter that lets every dish through.
func NewDishFilter() DishFilter {
	return DishFilter{Price: PriceRange{Min: 0, Max: math.Inf(1)}}
}

// Apply keeps the dishes that satisfy every constraint, in input order.
func Apply(dishes []entity.DishData, f DishFilter) []entity.DishData {
	include := normalizeSet(f.Ingredients.Include, strings.ToLower)
	exclude := normalizeSet(f.Ingredients.Exclude, strings.ToLower)
	allergens := normalizeSet(f.ExcludeAllergens, NormalizeAllergen)

	out := make([]entity.DishData, 0, len(dishes))
	for _, d := range dishes {
		if d.Price < f.Price.Min || d.Price > f.Price.Max {
			continue
		}

		ingredients := normalizeSet(d.Ingredients, strings.ToLower)
		if !containsAll(ingredients, include) || intersects(ingredients, exclude) {
			continue
		}
		if intersects(normalizeSet(d.Allergens, NormalizeAllergen), allergens) {
			continue
		}
		if !f.Nutrition.satisfiedBy(d.NutritionFacts) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func (n NutritionBounds) satisfiedBy(facts map[string]entity.NutrientValue) bool {
	value := func(key string) float64 {
		return facts[key].Value
	}
	if n.MaxCalories != nil && value("calories") > *n.MaxCalories {
		return false
	}
	if n.MinProtein != nil && value("protein") < *n.MinProtein {
		return false
	}
	if n.MaxFat != nil && value("fat") > *n.MaxFat {
		return false
	}
	if n.MaxCarbs != nil && value("carbohydrates") > *n.MaxCarbs {
		return false
	}
	return true
}

func NormalizeAllergen(a string) string {
	return entity.NormalizeAllergen(a)
}

func normalizeSet(values []string, norm func(string) string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = norm(strings.TrimSpace(v)); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

func containsAll(set, required map[string]struct{}) bool {
	for k := range required {
		if _, ok := set[k]; !ok {
			return false
		}
	}
	return true
}

func intersects(a, b map[string]struct{}) bool {
	for k := range b {
		if _, ok := a[k]; ok {
			return true
		}
	}
	return false
}

// flexFloat accepts numbers, numeric strings, "inf"/"infinity" and null.
// NaN and negative infinity are rejected.
type flexFloat struct {
	value *float64
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		f.value = &n
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unsupported numeric value %s", data)
	}
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "null", "none":
		return nil
	case "inf", "+inf", "infinity", "+infinity":
		v := math.Inf(1)
		f.value = &v
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimPrefix(s, "$"), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("unsupported numeric value %q", s)
	}
	f.value = &v
	return nil
}

// rawFilter mirrors the JSON the extraction prompt asks for.
type rawFilter struct {
	Price struct {
		Min flexFloat `json:"min"`
		Max flexFloat `json:"max"`
	} `json:"price"`
	Ingredients struct {
		Include []string `json:"include"`
		Exclude []string `json:"exclude"`
	} `json:"ingredients"`
	Allergens struct {
		Exclude []string `json:"exclude"`
	} `json:"allergens"`
	Nutrition struct {
		MaxCalories flexFloat `json:"max_calories"`
		MinProtein  flexFloat `json:"min_protein"`
		MaxFat      flexFloat `json:"max_fat"`
		MaxCarbs    flexFloat `json:"max_carbs"`
	} `json:"nutrition"`
}

func (r rawFilter) toDishFilter() DishFilter {
	f := NewDishFilter()
	if r.Price.Min.value != nil && !math.IsInf(*r.Price.Min.value, 0) {
		f.Price.Min = *r.Price.Min.value
	}
	if r.Price.Max.value != nil {
		f.Price.Max = *r.Price.Max.value
	}
	f.Ingredients.Include = r.Ingredients.Include
	f.Ingredients.Exclude = r.Ingredients.Exclude
	f.ExcludeAllergens = r.Allergens.Exclude
	f.Nutrition = NutritionBounds{
		MaxCalories: r.Nutrition.MaxCalories.value,
		MinProtein:  r.Nutrition.MinProtein.value,
		MaxFat:      r.Nutrition.MaxFat.value,
		MaxCarbs:    r.Nutrition.MaxCarbs.value,
	}
	return f
}
