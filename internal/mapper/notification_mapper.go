package mapper

import (
	"encoding/json"

	"support-chat-be/internal/entity"
	"support-chat-be/internal/model"

	"gorm.io/datatypes"
)

type NotificationMapper struct{}

func NewNotificationMapper() *NotificationMapper {
	return &NotificationMapper{}
}

func (m *NotificationMapper) ToEntity(n *model.Notification) *entity.Notification {
	if n == nil {
		return nil
	}

	var meta map[string]interface{}
	if len(n.Metadata) > 0 {
		_ = json.Unmarshal(n.Metadata, &meta)
	}

	return &entity.Notification{
		Id:          n.Id,
		TypeCode:    n.TypeCode,
		Viewer:      n.Viewer,
		Title:       n.Title,
		Description: n.Description,
		EntityId:    n.EntityId,
		Metadata:    meta,
		IsRead:      n.IsRead,
		ReadAt:      n.ReadAt,
		CreatedAt:   n.CreatedAt,
	}
}

func (m *NotificationMapper) ToModel(n *entity.Notification) *model.Notification {
	if n == nil {
		return nil
	}

	var meta datatypes.JSON
	if n.Metadata != nil {
		raw, _ := json.Marshal(n.Metadata)
		meta = datatypes.JSON(raw)
	}

	return &model.Notification{
		Id:          n.Id,
		TypeCode:    n.TypeCode,
		Viewer:      n.Viewer,
		Title:       n.Title,
		Description: n.Description,
		EntityId:    n.EntityId,
		Metadata:    meta,
		IsRead:      n.IsRead,
		ReadAt:      n.ReadAt,
		CreatedAt:   n.CreatedAt,
	}
}

func (m *NotificationMapper) ToEntities(models []*model.Notification) []*entity.Notification {
	entities := make([]*entity.Notification, len(models))
	for i, n := range models {
		entities[i] = m.ToEntity(n)
	}
	return entities
}
