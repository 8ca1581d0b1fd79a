package serverutils

import "github.com/gofiber/fiber/v2"

type APIResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Message: message,
		Data:    data,
	}
}

// AppError carries an HTTP status through the service layer so the error
// middleware can map it without string matching.
type AppError struct {
	Code    int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func NotFoundError(message string) *AppError {
	return NewAppError(fiber.StatusNotFound, message)
}

func BadRequestError(message string) *AppError {
	return NewAppError(fiber.StatusBadRequest, message)
}

func UnauthorizedError(message string) *AppError {
	return NewAppError(fiber.StatusUnauthorized, message)
}
