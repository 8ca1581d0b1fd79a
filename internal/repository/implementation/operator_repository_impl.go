package implementation

import (
	"context"
	"errors"

	"support-chat-be/internal/entity"
	"support-chat-be/internal/mapper"
	"support-chat-be/internal/model"
	"support-chat-be/internal/repository/contract"

	"gorm.io/gorm"
)

type OperatorRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.OperatorMapper
}

func NewOperatorRepository(db *gorm.DB) contract.OperatorRepository {
	return &OperatorRepositoryImpl{
		db:     db,
		mapper: mapper.NewOperatorMapper(),
	}
}

func (r *OperatorRepositoryImpl) FindByEmail(ctx context.Context, email string) (*entity.Operator, error) {
	var m model.Operator
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *OperatorRepositoryImpl) Create(ctx context.Context, operator *entity.Operator) error {
	m := &model.Operator{
		Id:           operator.Id,
		Email:        operator.Email,
		FullName:     operator.FullName,
		PasswordHash: operator.PasswordHash,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	operator.Id = m.Id
	operator.CreatedAt = m.CreatedAt
	return nil
}
