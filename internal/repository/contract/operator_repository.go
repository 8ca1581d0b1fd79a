package contract

import (
	"context"

	"support-chat-be/internal/entity"
)

type OperatorRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.Operator, error)
	Create(ctx context.Context, operator *entity.Operator) error
}
