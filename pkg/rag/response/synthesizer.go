// Package response assembles the final answer of a chat turn from stage results.
package response

import (
	"safebites-be/internal/constant"
	"safebites-be/internal/entity"
)

// Synthesize is pure: menu results first, then dish info, then preferences,
// then irrelevant parts, each in sub-query order.
func Synthesize(state *entity.ChatState) entity.FinalResponse {
	responses := make([]entity.QueryResponse, 0)

	for _, mr := range state.MenuResults {
		dishes := make([]entity.DishResult, 0, len(mr.Dishes))
		for _, d := range mr.Dishes {
			dishes = append(dishes, toDishResult(d, state.RestaurantId.String()))
		}
		responses = append(responses, entity.QueryResponse{
			Query:  mr.Query,
			Type:   entity.IntentMenuSearch,
			Result: dishes,
		})
	}

	for _, ir := range state.InfoResults {
		responses = append(responses, entity.QueryResponse{
			Query:  ir.Query,
			Type:   entity.IntentDishInfo,
			Result: ir.Answer,
		})
	}

	for _, pr := range state.PreferenceResults {
		responses = append(responses, entity.QueryResponse{
			Query:  pr.Query,
			Type:   entity.IntentUserPreferences,
			Result: pr,
		})
	}

	for _, q := range state.QueryParts[entity.IntentIrrelevant] {
		responses = append(responses, entity.QueryResponse{
			Query:  q,
			Type:   entity.IntentIrrelevant,
			Result: entity.IrrelevantResult{Message: constant.IrrelevantQueryMessage},
		})
	}

	status := entity.ResponseFailed
	if len(responses) > 0 {
		status = entity.ResponseSuccess
	}

	return entity.FinalResponse{
		UserId:        state.UserId.String(),
		SessionId:     state.SessionId,
		RestaurantId:  state.RestaurantId.String(),
		OriginalQuery: state.Query,
		Responses:     responses,
		Status:        status,
		Timestamp:     state.CreatedAt,
	}
}

func toDishResult(d entity.DishData, restaurantID string) entity.DishResult {
	if d.RestaurantId != "" {
		restaurantID = d.RestaurantId
	}
	ingredients := d.Ingredients
	if ingredients == nil {
		ingredients = []string{}
	}
	allergens := d.Allergens
	if allergens == nil {
		allergens = []string{}
	}
	return entity.DishResult{
		DishId:       d.DishId,
		RestaurantId: restaurantID,
		Name:         d.Name,
		Description:  d.Description,
		Price:        d.Price,
		Ingredients:  ingredients,
		Allergens:    allergens,
		ServingSize:  d.ServingSize,
		Available:    d.Available,
	}
}
