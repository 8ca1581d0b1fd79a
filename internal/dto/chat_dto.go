package dto

import (
	"time"

	"github.com/google/uuid"
)

type EnsureSessionRequest struct {
	DeviceToken string `json:"device_token" validate:"required,min=8,max=100"`
	DisplayName string `json:"display_name" validate:"max=100"`
	Email       string `json:"email" validate:"omitempty,email"`
}

type SendMessageRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

type SessionResponse struct {
	Id                 uuid.UUID `json:"id"`
	DisplayName        string    `json:"display_name"`
	Email              string    `json:"email,omitempty"`
	Status             string    `json:"status"`
	Pinned             bool      `json:"pinned"`
	LastMessagePreview string    `json:"last_message_preview"`
	LastUpdatedAt      time.Time `json:"last_updated_at"`
	CreatedAt          time.Time `json:"created_at"`
}

type MessageResponse struct {
	Id        uuid.UUID `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Seq       int64     `json:"seq"`
	CreatedAt time.Time `json:"created_at"`
}
