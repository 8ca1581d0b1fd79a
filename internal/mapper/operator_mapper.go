package mapper

import (
	"support-chat-be/internal/entity"
	"support-chat-be/internal/model"
)

type OperatorMapper struct{}

func NewOperatorMapper() *OperatorMapper {
	return &OperatorMapper{}
}

func (m *OperatorMapper) ToEntity(o *model.Operator) *entity.Operator {
	if o == nil {
		return nil
	}

	return &entity.Operator{
		Id:           o.Id,
		Email:        o.Email,
		FullName:     o.FullName,
		PasswordHash: o.PasswordHash,
		CreatedAt:    o.CreatedAt,
	}
}
