package implementation

import (
	"context"
	"errors"
	"time"

	"support-chat-be/internal/constant"
	"support-chat-be/internal/entity"
	"support-chat-be/internal/mapper"
	"support-chat-be/internal/model"
	"support-chat-be/internal/repository/contract"
	"support-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChatSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatSessionRepository(db *gorm.DB) contract.ChatSessionRepository {
	return &ChatSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// CreateIfAbsent relies on the unique device_token index: the insert is a
// single conditional write, so two tabs racing to create a session cannot
// both win. The loser adopts the row the winner inserted.
func (r *ChatSessionRepositoryImpl) CreateIfAbsent(ctx context.Context, session *entity.ChatSession) (bool, error) {
	m := r.mapper.ChatSessionToModel(session)

	// DoNothing without a conflict target covers both unique indexes:
	// device token and (non-empty) email.
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m)
	if res.Error != nil {
		return false, res.Error
	}

	if res.RowsAffected > 0 {
		*session = *r.mapper.ChatSessionToEntity(m)
		return true, nil
	}

	// Lost the race: load the winner, by token first, then by email.
	existing, err := r.FindOne(ctx, specification.ByDeviceToken{DeviceToken: session.DeviceToken})
	if err != nil {
		return false, err
	}
	if existing == nil && session.Email != "" {
		existing, err = r.FindOne(ctx, specification.ByEmail{Email: session.Email})
		if err != nil {
			return false, err
		}
	}
	if existing == nil {
		return false, errors.New("conditional create conflicted but no session found for identity")
	}
	*session = *existing
	return false, nil
}

func (r *ChatSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	var m model.ChatSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ChatSessionToEntity(&m), nil
}

func (r *ChatSessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	var models []*model.ChatSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ChatSession, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ChatSessionToEntity(m)
	}
	return entities, nil
}

// MarkLive applies the handoff as an atomic conditional update. The WHERE
// on status makes concurrent handoff triggers converge on one transition.
func (r *ChatSessionRepositoryImpl) MarkLive(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.ChatSession{}).
		Where("id = ? AND status = ?", id, constant.SessionStatusBot).
		Updates(map[string]interface{}{
			"status":          constant.SessionStatusLive,
			"escalated":       true,
			"last_updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ChatSessionRepositoryImpl) Close(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.ChatSession{}).
		Where("id = ? AND status <> ?", id, constant.SessionStatusClosed).
		Updates(map[string]interface{}{
			"status":          constant.SessionStatusClosed,
			"escalated":       true,
			"last_updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ChatSessionRepositoryImpl) SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error {
	return r.db.WithContext(ctx).
		Model(&model.ChatSession{}).
		Where("id = ?", id).
		Update("pinned", pinned).Error
}

func (r *ChatSessionRepositoryImpl) TouchActivity(ctx context.Context, id uuid.UUID, preview string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.ChatSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_message_preview": preview,
			"last_updated_at":      at,
		}).Error
}
