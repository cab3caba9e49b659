package dto

type SearchRequest struct {
	Query        string `json:"query" validate:"required"`
	UserId       string `json:"user_id" validate:"omitempty,uuid"`
	RestaurantId string `json:"restaurant_id" validate:"omitempty,uuid"`
}
