package entity

import (
	"time"

	"github.com/google/uuid"
)

type IntentType string

const (
	IntentMenuSearch      IntentType = "menu_search"
	IntentDishInfo        IntentType = "dish_info"
	IntentUserPreferences IntentType = "user_preferences"
	IntentIrrelevant      IntentType = "irrelevant"
)

// IntentTypes is the closed set of intent keys, in response order.
var IntentTypes = []IntentType{IntentMenuSearch, IntentDishInfo, IntentUserPreferences, IntentIrrelevant}

func (t IntentType) Valid() bool {
	for _, known := range IntentTypes {
		if t == known {
			return true
		}
	}
	return false
}

type IntentQuery struct {
	Type  IntentType `json:"type"`
	Query string     `json:"query"`
}

// QueryParts groups sub-queries by intent type.
type QueryParts map[IntentType][]string

type ChatStatus string

const (
	ChatStatusPending    ChatStatus = "pending"
	ChatStatusProcessing ChatStatus = "processing"
	ChatStatusCompleted  ChatStatus = "completed"
	ChatStatusFailed     ChatStatus = "failed"
)

type MenuResult struct {
	Query  string     `json:"query"`
	Dishes []DishData `json:"dishes"`
}

type InfoAnswer struct {
	DishName      *string       `json:"dish_name"`
	RequestedInfo string        `json:"requested_info"`
	SourceData    []interface{} `json:"source_data"`
}

type InfoResult struct {
	Query  string     `json:"query"`
	Answer InfoAnswer `json:"answer"`
}

type PreferenceResult struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`
}

// StageError records a fallback taken by a pipeline stage.
type StageError struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// ContextItem is one grounding entry handed to the context resolver.
type ContextItem struct {
	UserAllergens []string      `json:"user_allergens,omitempty"`
	Message       string        `json:"message,omitempty"`
	Query         string        `json:"query,omitempty"`
	Intents       []IntentQuery `json:"intents,omitempty"`
	MenuResults   []MenuResult  `json:"menu_results,omitempty"`
	InfoResults   []InfoResult  `json:"info_results,omitempty"`
}

type ResponseStatus string

const (
	ResponseSuccess ResponseStatus = "success"
	ResponseFailed  ResponseStatus = "failed"
)

type DishResult struct {
	DishId       string   `json:"dish_id"`
	RestaurantId string   `json:"restaurant_id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	Ingredients  []string `json:"ingredients"`
	Allergens    []string `json:"allergens"`
	ServingSize  string   `json:"serving_size,omitempty"`
	Available    bool     `json:"available"`
}

type IrrelevantResult struct {
	Message string `json:"message"`
}

// QueryResponse is one entry of the synthesized answer. Result holds
// []DishResult, InfoAnswer, PreferenceResult or IrrelevantResult depending on Type.
type QueryResponse struct {
	Query  string      `json:"query"`
	Type   IntentType  `json:"type"`
	Result interface{} `json:"result"`
}

type FinalResponse struct {
	UserId        string          `json:"user_id"`
	SessionId     string          `json:"session_id"`
	RestaurantId  string          `json:"restaurant_id"`
	OriginalQuery string          `json:"original_query"`
	Responses     []QueryResponse `json:"responses"`
	Status        ResponseStatus  `json:"status"`
	Timestamp     time.Time       `json:"timestamp"`
}

// ChatState is the per-turn record built up by the pipeline and persisted once.
type ChatState struct {
	UserId            uuid.UUID          `json:"user_id"`
	SessionId         string             `json:"session_id"`
	RestaurantId      uuid.UUID          `json:"restaurant_id"`
	Query             string             `json:"query"`
	RewrittenQuery    string             `json:"rewritten_query"`
	ContextSummary    string             `json:"context_summary"`
	Intents           []IntentQuery      `json:"intents"`
	QueryParts        QueryParts         `json:"query_parts"`
	MenuResults       []MenuResult       `json:"menu_results"`
	InfoResults       []InfoResult       `json:"info_results"`
	PreferenceResults []PreferenceResult `json:"preference_results"`
	Response          *FinalResponse     `json:"response,omitempty"`
	Status            ChatStatus         `json:"status"`
	StageErrors       []StageError       `json:"stage_errors,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
}
