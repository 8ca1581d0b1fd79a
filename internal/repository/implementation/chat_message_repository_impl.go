package implementation

import (
	"context"
	"time"

	"support-chat-be/internal/constant"
	"support-chat-be/internal/entity"
	"support-chat-be/internal/mapper"
	"support-chat-be/internal/model"
	"support-chat-be/internal/repository/contract"
	"support-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatMessageRepository(db *gorm.DB) contract.ChatMessageRepository {
	return &ChatMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatMessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatMessageRepositoryImpl) Append(ctx context.Context, message *entity.ChatMessage) error {
	m := r.mapper.ChatMessageToModel(message)
	// Seq and CreatedAt come back from the database via RETURNING.
	m.Seq = 0
	m.CreatedAt = time.Time{}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.ChatMessageToEntity(m)
	return nil
}

// AppendHumanReply commits the human message and the session's live status
// together. Until the transaction commits neither is visible, so there is no
// window in which a human message exists in a bot-status session.
func (r *ChatMessageRepositoryImpl) AppendHumanReply(ctx context.Context, sessionId uuid.UUID, message *entity.ChatMessage) error {
	m := r.mapper.ChatMessageToModel(message)
	m.ChatSessionId = sessionId
	m.Author = constant.MessageAuthorHuman
	m.Seq = 0
	m.CreatedAt = time.Time{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}

		// Force live while still in bot status; closed stays closed.
		if err := tx.Model(&model.ChatSession{}).
			Where("id = ? AND status = ?", sessionId, constant.SessionStatusBot).
			Updates(map[string]interface{}{
				"status":    constant.SessionStatusLive,
				"escalated": true,
			}).Error; err != nil {
			return err
		}

		// The lock flag and activity fields advance regardless of status.
		return tx.Model(&model.ChatSession{}).
			Where("id = ?", sessionId).
			Updates(map[string]interface{}{
				"escalated":            true,
				"last_message_preview": entity.PreviewOf(m.Text),
				"last_updated_at":      time.Now(),
			}).Error
	})
	if err != nil {
		return err
	}

	*message = *r.mapper.ChatMessageToEntity(m)
	return nil
}

func (r *ChatMessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	var models []*model.ChatMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ChatMessagesToEntities(models), nil
}

func (r *ChatMessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ChatMessage{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
