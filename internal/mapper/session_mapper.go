package mapper

import (
	"encoding/json"

	"safebites-be/internal/entity"
	"safebites-be/internal/model"

	"gorm.io/datatypes"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) ToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}
	return &entity.Session{
		Id:           s.Id,
		UserId:       s.UserId,
		RestaurantId: s.RestaurantId,
		Active:       s.Active,
		CreatedAt:    s.CreatedAt,
	}
}

func (m *SessionMapper) ToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}
	return &model.Session{
		Id:           s.Id,
		UserId:       s.UserId,
		RestaurantId: s.RestaurantId,
		Active:       s.Active,
		CreatedAt:    s.CreatedAt,
	}
}

type ChatTurnMapper struct{}

func NewChatTurnMapper() *ChatTurnMapper {
	return &ChatTurnMapper{}
}

// ToEntity decodes the stored state; a corrupt payload yields an empty state rather than an error.
func (m *ChatTurnMapper) ToEntity(t *model.ChatTurn) *entity.ChatTurn {
	if t == nil {
		return nil
	}
	var state entity.ChatState
	if len(t.State) > 0 {
		_ = json.Unmarshal(t.State, &state)
	}
	return &entity.ChatTurn{
		Id:           t.Id,
		SessionId:    t.SessionId,
		UserId:       t.UserId,
		RestaurantId: t.RestaurantId,
		Query:        t.Query,
		Status:       entity.ChatStatus(t.Status),
		State:        state,
		CreatedAt:    t.CreatedAt,
	}
}

func (m *ChatTurnMapper) ToModel(t *entity.ChatTurn) (*model.ChatTurn, error) {
	if t == nil {
		return nil, nil
	}
	raw, err := json.Marshal(t.State)
	if err != nil {
		return nil, err
	}
	return &model.ChatTurn{
		Id:           t.Id,
		SessionId:    t.SessionId,
		UserId:       t.UserId,
		RestaurantId: t.RestaurantId,
		Query:        t.Query,
		Status:       string(t.Status),
		State:        datatypes.JSON(raw),
		CreatedAt:    t.CreatedAt,
	}, nil
}

func (m *ChatTurnMapper) ToEntities(turns []*model.ChatTurn) []*entity.ChatTurn {
	out := make([]*entity.ChatTurn, 0, len(turns))
	for _, t := range turns {
		out = append(out, m.ToEntity(t))
	}
	return out
}
