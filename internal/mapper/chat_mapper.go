package mapper

import (
	"support-chat-be/internal/entity"
	"support-chat-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	return &entity.ChatSession{
		Id:                 s.Id,
		DeviceToken:        s.DeviceToken,
		Email:              s.Email,
		DisplayName:        s.DisplayName,
		Status:             s.Status,
		Escalated:          s.Escalated,
		Pinned:             s.Pinned,
		LastMessagePreview: s.LastMessagePreview,
		LastUpdatedAt:      s.LastUpdatedAt,
		CreatedAt:          s.CreatedAt,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	return &model.ChatSession{
		Id:                 s.Id,
		DeviceToken:        s.DeviceToken,
		Email:              s.Email,
		DisplayName:        s.DisplayName,
		Status:             s.Status,
		Escalated:          s.Escalated,
		Pinned:             s.Pinned,
		LastMessagePreview: s.LastMessagePreview,
		LastUpdatedAt:      s.LastUpdatedAt,
		CreatedAt:          s.CreatedAt,
	}
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	return &entity.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Author:        msg.Author,
		Text:          msg.Text,
		Seq:           msg.Seq,
		CreatedAt:     msg.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	return &model.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Author:        msg.Author,
		Text:          msg.Text,
		Seq:           msg.Seq,
		CreatedAt:     msg.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessagesToEntities(models []*model.ChatMessage) []*entity.ChatMessage {
	entities := make([]*entity.ChatMessage, len(models))
	for i, msg := range models {
		entities[i] = m.ChatMessageToEntity(msg)
	}
	return entities
}
