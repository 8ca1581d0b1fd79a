package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"support-chat-be/internal/constant"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/pkg/serverutils"
	"support-chat-be/internal/service"
	internalWS "support-chat-be/internal/websocket"
)

// NotificationHandler owns the realtime endpoints: the visitor widget's
// per-session socket, the operator console socket, and the notification REST
// surface.
type NotificationHandler struct {
	notificationService service.INotificationService
	sessionService      service.ISessionService
	hub                 *internalWS.Hub
	jwtSecret           string
	jwtMiddleware       fiber.Handler
	logger              logger.ILogger
}

func NewNotificationHandler(
	notificationService service.INotificationService,
	sessionService service.ISessionService,
	hub *internalWS.Hub,
	jwtSecret string,
	jwtMiddleware fiber.Handler,
	log logger.ILogger,
) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		sessionService:      sessionService,
		hub:                 hub,
		jwtSecret:           jwtSecret,
		jwtMiddleware:       jwtMiddleware,
		logger:              log,
	}
}

func (h *NotificationHandler) RegisterRoutes(r fiber.Router) {
	chat := r.Group("/chat/v1")
	chat.Get("ws/:id", h.upgradeVisitorWs, websocket.New(h.serveVisitorWs))

	n := r.Group("/notification/v1")
	n.Get("ws", h.upgradeOperatorWs, websocket.New(h.serveOperatorWs))

	rest := n.Group("")
	rest.Use(h.jwtMiddleware)
	rest.Get("/", h.List)
	rest.Get("unread-count", h.UnreadCount)
	rest.Patch("read-all", h.MarkAllRead)
	rest.Patch(":id/read", h.MarkRead)
}

// upgradeVisitorWs rejects handshakes for sessions that don't exist before
// paying for the protocol upgrade.
func (h *NotificationHandler) upgradeVisitorWs(c *fiber.Ctx) error {
	sessionId, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return serverutils.BadRequestError("invalid session id")
	}
	if _, err := h.sessionService.GetSession(c.Context(), sessionId); err != nil {
		return err
	}
	return c.Next()
}

// serveVisitorWs attaches a widget client to its session room. The visitor
// socket is unauthenticated; it only ever receives data for the session id
// it was opened with.
func (h *NotificationHandler) serveVisitorWs(c *websocket.Conn) {
	sessionId, err := uuid.Parse(c.Params("id"))
	if err != nil {
		c.Close()
		return
	}
	internalWS.ServeVisitor(h.hub, c, sessionId)
}

// upgradeOperatorWs validates the operator token before the protocol
// upgrade. Browsers can't set headers on a websocket handshake, so the token
// arrives as a query parameter.
func (h *NotificationHandler) upgradeOperatorWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token"})
	}

	operatorId, err := serverutils.ParseWsToken(tokenStr, h.jwtSecret)
	if err != nil {
		h.logger.Warn("NOTIFICATION", "invalid token on ws handshake", nil)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	c.Locals("operator_id", operatorId)
	return c.Next()
}

func (h *NotificationHandler) serveOperatorWs(c *websocket.Conn) {
	internalWS.ServeOperator(h.hub, c)
}

func (h *NotificationHandler) List(ctx *fiber.Ctx) error {
	notifications, err := h.notificationService.List(ctx.Context(), constant.ViewerOperator)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list notifications", notifications))
}

func (h *NotificationHandler) UnreadCount(ctx *fiber.Ctx) error {
	counts, err := h.notificationService.CountUnread(ctx.Context(), constant.ViewerOperator)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success count unread", counts))
}

func (h *NotificationHandler) MarkRead(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.BadRequestError("invalid notification id")
	}
	if err := h.notificationService.MarkRead(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success mark as read", nil))
}

func (h *NotificationHandler) MarkAllRead(ctx *fiber.Ctx) error {
	if err := h.notificationService.MarkAllRead(ctx.Context(), constant.ViewerOperator); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success mark all as read", nil))
}
