// Package menu turns uploaded menu files into dishes ready to store.
package menu

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"safebites-be/internal/entity"
	"safebites-be/internal/pkg/logger"

	"github.com/google/uuid"
)

const defaultDishName = "Unnamed Dish"

type ParseReport struct {
	TotalRows int
	Skipped   int
}

// ParseCSV reads a menu CSV. The header row names the columns; unknown columns
// are ignored and rows that cannot be parsed are skipped and logged.
func ParseCSV(r io.Reader, restaurantID uuid.UUID, log logger.ILogger) ([]*entity.Dish, ParseReport, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, ParseReport{}, fmt.Errorf("failed to read menu file: %w", err)
	}
	if !utf8.Valid(raw) {
		log.Warn("MenuCSV", "Menu is not valid UTF-8, decoding as latin1", nil)
		raw = latin1ToUTF8(raw)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return []*entity.Dish{}, ParseReport{}, nil
	}
	if err != nil {
		return nil, ParseReport{}, fmt.Errorf("failed to read menu header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var (
		dishes []*entity.Dish
		report ParseReport
	)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		report.TotalRows++
		if err != nil {
			report.Skipped++
			log.Error("MenuCSV", fmt.Sprintf("Error reading row %d", line), map[string]interface{}{"error": err.Error()})
			continue
		}

		dish, err := parseRow(row{columns: columns, values: record}, restaurantID, log, line)
		if err != nil {
			report.Skipped++
			log.Error("MenuCSV", fmt.Sprintf("Error parsing row %d", line), map[string]interface{}{"error": err.Error()})
			continue
		}
		dishes = append(dishes, dish)
	}
	return dishes, report, nil
}

type row struct {
	columns map[string]int
	values  []string
}

func (r row) get(names ...string) string {
	for _, name := range names {
		if i, ok := r.columns[name]; ok && i < len(r.values) {
			if v := strings.TrimSpace(r.values[i]); v != "" && !strings.EqualFold(v, "nan") {
				return v
			}
		}
	}
	return ""
}

func parseRow(r row, restaurantID uuid.UUID, log logger.ILogger, line int) (*entity.Dish, error) {
	name := r.get("dish_name", "name")
	if name == "" {
		name = defaultDishName
	}

	price := 0.0
	if raw := r.get("price"); raw != "" {
		p, err := strconv.ParseFloat(strings.TrimPrefix(raw, "$"), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid price %q", raw)
		}
		price = max(p, 0)
	}

	available := true
	if raw := r.get("availability", "available"); raw != "" {
		switch strings.ToLower(raw) {
		case "true", "1", "yes":
		default:
			available = false
		}
	}

	var allergens []entity.AllergenInfo
	for _, a := range splitList(r.get("allergens")) {
		allergens = append(allergens, entity.AllergenInfo{Allergen: a})
	}

	nutrition := map[string]entity.NutrientValue{}
	if raw := r.get("nutrition_facts"); raw != "" {
		parsed, err := ParseNutrition([]byte(raw))
		if err != nil {
			log.Warn("MenuCSV", fmt.Sprintf("Invalid nutrition JSON in row %d, defaulting to empty", line), map[string]interface{}{"error": err.Error()})
		} else {
			nutrition = parsed
		}
	}

	return &entity.Dish{
		Id:             uuid.New(),
		RestaurantId:   restaurantID,
		Name:           name,
		Description:    r.get("description"),
		Price:          price,
		Ingredients:    splitList(r.get("ingredients")),
		Allergens:      allergens,
		NutritionFacts: nutrition,
		ServingSize:    r.get("serving_size"),
		Available:      available,
	}, nil
}

// ParseNutrition accepts {"calories": 500} as well as {"calories": {"value": 500, "confidence": 0.8}}.
func ParseNutrition(data []byte) (map[string]entity.NutrientValue, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	out := make(map[string]entity.NutrientValue, len(raw))
	for key, payload := range raw {
		var plain float64
		if err := json.Unmarshal(payload, &plain); err == nil {
			out[key] = entity.NutrientValue{Value: plain}
			continue
		}
		var nv entity.NutrientValue
		if err := json.Unmarshal(payload, &nv); err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", key, err)
		}
		out[key] = nv
	}
	return out, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func latin1ToUTF8(b []byte) []byte {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return []byte(string(runes))
}
