package controller

import (
	"github.com/gofiber/fiber/v2"

	"support-chat-be/internal/dto"
	"support-chat-be/internal/pkg/serverutils"
	"support-chat-be/internal/service"
)

type IOperatorController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	Reply(ctx *fiber.Ctx) error
	CloseSession(ctx *fiber.Ctx) error
	SetPinned(ctx *fiber.Ctx) error
}

type operatorController struct {
	authService    service.IAuthService
	sessionService service.ISessionService
	messageService service.IMessageService
	jwtMiddleware  fiber.Handler
}

func NewOperatorController(
	authService service.IAuthService,
	sessionService service.ISessionService,
	messageService service.IMessageService,
	jwtMiddleware fiber.Handler,
) IOperatorController {
	return &operatorController{
		authService:    authService,
		sessionService: sessionService,
		messageService: messageService,
		jwtMiddleware:  jwtMiddleware,
	}
}

func (c *operatorController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/operator/v1")
	h.Post("login", c.Login)

	protected := h.Group("")
	protected.Use(c.jwtMiddleware)
	protected.Get("sessions", c.ListSessions)
	protected.Post("session/:id/reply", c.Reply)
	protected.Post("session/:id/close", c.CloseSession)
	protected.Put("session/:id/pin", c.SetPinned)
}

func (c *operatorController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	token, operator, err := c.authService.Login(ctx.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success login", dto.LoginResponse{
		Token:    token,
		FullName: operator.FullName,
	}))
}

func (c *operatorController) ListSessions(ctx *fiber.Ctx) error {
	filter := service.SessionListFilter{}
	switch ctx.Query("filter") {
	case "pinned":
		filter.PinnedOnly = true
	case "unread":
		filter.UnreadOnly = true
	}

	sessions, err := c.sessionService.ListSessions(ctx.Context(), filter)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list sessions", toSessionResponses(sessions)))
}

func (c *operatorController) Reply(ctx *fiber.Ctx) error {
	sessionId, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.OperatorReplyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	msg, err := c.messageService.SendOperatorReply(ctx.Context(), sessionId, req.Text)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success send reply", toMessageResponse(msg)))
}

func (c *operatorController) CloseSession(ctx *fiber.Ctx) error {
	sessionId, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}
	if _, err := c.sessionService.GetSession(ctx.Context(), sessionId); err != nil {
		return err
	}
	if err := c.sessionService.CloseSession(ctx.Context(), sessionId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success close session", nil))
}

func (c *operatorController) SetPinned(ctx *fiber.Ctx) error {
	sessionId, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.SetPinnedRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := c.sessionService.SetPinned(ctx.Context(), sessionId, req.Pinned); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update pin", nil))
}
