package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"support-chat-be/internal/config"
	"support-chat-be/internal/entity"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/pkg/serverutils"
	"support-chat-be/internal/repository/contract"
)

type IAuthService interface {
	Login(ctx context.Context, email, password string) (string, *entity.Operator, error)
}

type AuthServiceImpl struct {
	operators contract.OperatorRepository
	auth      config.AuthConfig
	logger    logger.ILogger
}

func NewAuthService(operators contract.OperatorRepository, auth config.AuthConfig, log logger.ILogger) IAuthService {
	return &AuthServiceImpl{
		operators: operators,
		auth:      auth,
		logger:    log,
	}
}

// Login verifies operator credentials and issues a signed token. The error
// is identical for an unknown email and a wrong password.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, *entity.Operator, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	operator, err := s.operators.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if operator == nil {
		return "", nil, serverutils.UnauthorizedError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(password)); err != nil {
		return "", nil, serverutils.UnauthorizedError("invalid credentials")
	}

	ttl := time.Duration(s.auth.TokenTTLHours) * time.Hour
	claims := jwt.MapClaims{
		"operator_id": operator.Id.String(),
		"email":       operator.Email,
		"exp":         time.Now().Add(ttl).Unix(),
		"iat":         time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.auth.JWTSecret))
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("AUTH", "operator logged in", map[string]interface{}{"operator_id": operator.Id})
	return signed, operator, nil
}
