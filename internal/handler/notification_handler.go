package handler

import (
	"context"
	"errors"
	"strconv"

	"smartcity-be/internal/dto"
	"smartcity-be/internal/pkg/logger"
	"smartcity-be/internal/pkg/serverutils"
	"smartcity-be/internal/service"
	internalWS "smartcity-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type NotificationHandler struct {
	service service.INotificationService
	chatbot service.IChatbotService
	hub     *internalWS.Hub
	logger  logger.ILogger
}

// NewNotificationHandler also installs itself as the hub's inbound frame
// handler.
func NewNotificationHandler(svc service.INotificationService, chatbot service.IChatbotService, hub *internalWS.Hub, log logger.ILogger) *NotificationHandler {
	h := &NotificationHandler{
		service: svc,
		chatbot: chatbot,
		hub:     hub,
		logger:  log,
	}
	hub.OnInbound = h.HandleInbound
	return h
}

// ServeWs attaches a console to an existing chat session.
func (h *NotificationHandler) ServeWs(c *fiber.Ctx) error {
	sessionID := c.Query("session")
	if sessionID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing query parameter 'session'")
	}
	if _, err := h.chatbot.GetTranscript(c.UserContext(), sessionID); err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("NotificationHandler", "Starting WebSocket session", map[string]interface{}{"session_id": sessionID})
			internalWS.ServeWs(h.hub, conn, sessionID)
			h.logger.Info("NotificationHandler", "WebSocket session ended", map[string]interface{}{"session_id": sessionID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// GetNotifications returns every alert in feed order with the unread tally.
func (h *NotificationHandler) GetNotifications(c *fiber.Ctx) error {
	ctx := c.UserContext()
	alerts := h.service.GetNotifications(ctx)

	return c.JSON(serverutils.SuccessResponse("Success get notifications", dto.NotificationListResponse{
		Data:   dto.ToAlertResponses(alerts),
		Total:  len(alerts),
		Unread: h.service.GetUnreadCount(ctx),
	}))
}

func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	count := h.service.GetUnreadCount(c.UserContext())
	return c.JSON(serverutils.SuccessResponse("Success get unread count", dto.UnreadCountResponse{Count: count}))
}

// MarkAsRead marks one alert as read. Unknown ids are a no-op.
func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid ID")
	}

	ctx := c.UserContext()
	h.service.MarkAsRead(ctx, id)
	return c.JSON(serverutils.SuccessResponse("Success mark notification as read", dto.UnreadCountResponse{
		Count: h.service.GetUnreadCount(ctx),
	}))
}

func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	ctx := c.UserContext()
	h.service.MarkAllAsRead(ctx)
	return c.JSON(serverutils.SuccessResponse("Success mark all notifications as read", dto.UnreadCountResponse{
		Count: h.service.GetUnreadCount(ctx),
	}))
}

// HandleInbound dispatches a console frame. Frames it cannot use are logged
// and ignored; the connection stays open.
func (h *NotificationHandler) HandleInbound(client *internalWS.Client, message []byte) {
	in, err := internalWS.DecodeInbound(message)
	if err != nil {
		h.logger.Warn("NotificationHandler", "Malformed frame ignored", map[string]interface{}{
			"session_id": client.SessionID,
			"error":      err.Error(),
		})
		return
	}

	ctx := context.Background()
	switch in.Type {
	case internalWS.InboundChat:
		if _, err := h.chatbot.SendChat(ctx, client.SessionID, in.Text); err != nil && !errors.Is(err, service.ErrEmptyChat) {
			h.logger.Warn("NotificationHandler", "Chat frame rejected", map[string]interface{}{
				"session_id": client.SessionID,
				"error":      err.Error(),
			})
		}
	case internalWS.InboundMarkRead:
		h.service.MarkAsRead(ctx, in.ID)
	case internalWS.InboundMarkAllRead:
		h.service.MarkAllAsRead(ctx)
	default:
		h.logger.Warn("NotificationHandler", "Unknown frame type ignored", map[string]interface{}{
			"session_id": client.SessionID,
			"type":       in.Type,
		})
	}
}

// RegisterRoutes registers the notification routes.
func (h *NotificationHandler) RegisterRoutes(router fiber.Router) {
	notif := router.Group("/notifications")
	notif.Get("/", h.GetNotifications)
	notif.Get("/unread-count", h.GetUnreadCount)
	// read-all before :id so it is not taken for an id
	notif.Patch("/read-all", h.MarkAllAsRead)
	notif.Patch("/:id/read", h.MarkAsRead)

	// WebSocket
	router.Get("/ws", h.ServeWs)
}
