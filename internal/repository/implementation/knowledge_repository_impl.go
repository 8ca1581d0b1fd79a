package implementation

import (
	"context"

	"support-chat-be/internal/entity"
	"support-chat-be/internal/mapper"
	"support-chat-be/internal/model"
	"support-chat-be/internal/repository/contract"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type KnowledgeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KnowledgeMapper
}

func NewKnowledgeRepository(db *gorm.DB) contract.KnowledgeRepository {
	return &KnowledgeRepositoryImpl{
		db:     db,
		mapper: mapper.NewKnowledgeMapper(),
	}
}

func (r *KnowledgeRepositoryImpl) FindAllOrdered(ctx context.Context) ([]*entity.KnowledgeEntry, error) {
	var models []*model.KnowledgeEntry
	if err := r.db.WithContext(ctx).
		Order("position ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *KnowledgeRepositoryImpl) Create(ctx context.Context, entry *entity.KnowledgeEntry, position int) error {
	m := &model.KnowledgeEntry{
		Id:       entry.Id,
		Question: entry.Question,
		Answer:   entry.Answer,
		Tags:     datatypes.JSONSlice[string](entry.Tags),
		Position: position,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	entry.Id = m.Id
	return nil
}
