package mapper

import (
	"support-chat-be/internal/entity"
	"support-chat-be/internal/model"
)

type KnowledgeMapper struct{}

func NewKnowledgeMapper() *KnowledgeMapper {
	return &KnowledgeMapper{}
}

func (m *KnowledgeMapper) ToEntity(e *model.KnowledgeEntry) *entity.KnowledgeEntry {
	if e == nil {
		return nil
	}

	return &entity.KnowledgeEntry{
		Id:       e.Id,
		Question: e.Question,
		Answer:   e.Answer,
		Tags:     []string(e.Tags),
	}
}

func (m *KnowledgeMapper) ToEntities(models []*model.KnowledgeEntry) []*entity.KnowledgeEntry {
	entities := make([]*entity.KnowledgeEntry, len(models))
	for i, e := range models {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
