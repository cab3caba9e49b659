package pipeline

import (
	"time"

	"safebites-be/internal/entity"
)

// turnBuilder is the only writer of a ChatState during a turn.
type turnBuilder struct {
	state   *entity.ChatState
	history []entity.ContextItem
}

func newTurnBuilder(in Input) *turnBuilder {
	return &turnBuilder{
		state: &entity.ChatState{
			UserId:            in.UserID,
			SessionId:         in.SessionID,
			RestaurantId:      in.RestaurantID,
			Query:             in.Query,
			RewrittenQuery:    in.Query,
			Intents:           []entity.IntentQuery{},
			QueryParts:        entity.QueryParts{},
			MenuResults:       []entity.MenuResult{},
			InfoResults:       []entity.InfoResult{},
			PreferenceResults: []entity.PreferenceResult{},
			Status:            entity.ChatStatusPending,
			CreatedAt:         time.Now().UTC(),
		},
		history: in.History,
	}
}

func (b *turnBuilder) start() {
	b.state.Status = entity.ChatStatusProcessing
}

func (b *turnBuilder) setResolution(query, summary string) {
	b.state.RewrittenQuery = query
	b.state.ContextSummary = summary
}

func (b *turnBuilder) setIntents(intents []entity.IntentQuery) {
	b.state.Intents = intents
}

func (b *turnBuilder) setQueryParts(parts entity.QueryParts) {
	b.state.QueryParts = parts
}

func (b *turnBuilder) setRetrieval(menu []entity.MenuResult, info []entity.InfoResult, prefs []entity.PreferenceResult) {
	b.state.MenuResults = menu
	b.state.InfoResults = info
	b.state.PreferenceResults = prefs
}

func (b *turnBuilder) setResponse(final entity.FinalResponse) {
	b.state.Response = &final
}

func (b *turnBuilder) recordFallback(stage string, err error) {
	if err == nil {
		return
	}
	b.state.StageErrors = append(b.state.StageErrors, entity.StageError{Stage: stage, Message: err.Error()})
}

func (b *turnBuilder) complete() *entity.ChatState {
	b.state.Status = entity.ChatStatusCompleted
	return b.state
}

func (b *turnBuilder) fail(stage string, err error) *entity.ChatState {
	b.recordFallback(stage, err)
	b.state.Status = entity.ChatStatusFailed
	return b.state
}
