package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/entity"
	"support-chat-be/internal/pkg/serverutils"
	"support-chat-be/internal/service"
)

type IVisitorController interface {
	RegisterRoutes(r fiber.Router)
	EnsureSession(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	RequestHandoff(ctx *fiber.Ctx) error
	ListMessages(ctx *fiber.Ctx) error
}

type visitorController struct {
	sessionService service.ISessionService
	messageService service.IMessageService
}

func NewVisitorController(sessionService service.ISessionService, messageService service.IMessageService) IVisitorController {
	return &visitorController{
		sessionService: sessionService,
		messageService: messageService,
	}
}

func (c *visitorController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("session", c.EnsureSession)
	h.Post("session/:id/message", c.SendMessage)
	h.Post("session/:id/handoff", c.RequestHandoff)
	h.Get("session/:id/messages", c.ListMessages)
}

func (c *visitorController) EnsureSession(ctx *fiber.Ctx) error {
	var req dto.EnsureSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	session, err := c.sessionService.ResolveOrCreate(ctx.Context(), entity.VisitorIdentity{
		DeviceToken: req.DeviceToken,
		DisplayName: req.DisplayName,
		Email:       req.Email,
	})
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success resolve session", toSessionResponse(session)))
}

func (c *visitorController) SendMessage(ctx *fiber.Ctx) error {
	sessionId, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	msg, err := c.messageService.SendVisitorMessage(ctx.Context(), sessionId, req.Text)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send message", toMessageResponse(msg)))
}

func (c *visitorController) RequestHandoff(ctx *fiber.Ctx) error {
	sessionId, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}
	if _, err := c.sessionService.GetSession(ctx.Context(), sessionId); err != nil {
		return err
	}
	if err := c.sessionService.Handoff(ctx.Context(), sessionId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success request handoff", nil))
}

func (c *visitorController) ListMessages(ctx *fiber.Ctx) error {
	sessionId, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}
	msgs, err := c.messageService.List(ctx.Context(), sessionId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list messages", toMessageResponses(msgs)))
}

func sessionIdParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, serverutils.BadRequestError("invalid session id")
	}
	return id, nil
}

func toSessionResponse(s *entity.ChatSession) dto.SessionResponse {
	return dto.SessionResponse{
		Id:                 s.Id,
		DisplayName:        s.DisplayName,
		Email:              s.Email,
		Status:             s.Status,
		Pinned:             s.Pinned,
		LastMessagePreview: s.LastMessagePreview,
		LastUpdatedAt:      s.LastUpdatedAt,
		CreatedAt:          s.CreatedAt,
	}
}

func toSessionResponses(sessions []*entity.ChatSession) []dto.SessionResponse {
	out := make([]dto.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionResponse(s))
	}
	return out
}

func toMessageResponse(m *entity.ChatMessage) dto.MessageResponse {
	return dto.MessageResponse{
		Id:        m.Id,
		Author:    m.Author,
		Text:      m.Text,
		Seq:       m.Seq,
		CreatedAt: m.CreatedAt,
	}
}

func toMessageResponses(msgs []*entity.ChatMessage) []dto.MessageResponse {
	out := make([]dto.MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}
	return out
}
