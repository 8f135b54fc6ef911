package bootstrap

import (
	"context"
	"fmt"

	"smartcity-be/internal/config"
	"smartcity-be/internal/constant"
	"smartcity-be/internal/controller"
	"smartcity-be/internal/handler"
	"smartcity-be/internal/pkg/logger"
	"smartcity-be/internal/repository/memory"
	"smartcity-be/internal/service"
	"smartcity-be/internal/websocket"
	"smartcity-be/pkg/chatbot"
	"smartcity-be/pkg/events"
	pktNats "smartcity-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
)

type Container struct {
	// Controllers
	ChatbotController controller.IChatbotController

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	Logger logger.ILogger

	sessions *memory.SessionRepository
	bus      *events.Bus
	natsPub  *pktNats.Publisher
	wsLogger logger.ILogger
	cancel   context.CancelFunc
}

func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. Logging
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	wsLogger := logger.NewIsolatedLogger(cfg.App.WsLogFilePath)

	// 2. Event infrastructure
	bus := events.NewBus(watermill.NewStdLogger(false, false))
	publishers := events.MultiPublisher{bus}

	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("Bootstrap", "NATS unavailable, alert events stay in-process", map[string]interface{}{"error": err.Error()})
		} else {
			natsPub = pub
			publishers = append(publishers, natsPub)
		}
	}

	// 3. Repositories
	alertRepo, err := memory.NewAlertRepository(memory.DefaultAlerts())
	if err != nil {
		return nil, fmt.Errorf("failed to seed alerts: %w", err)
	}
	sessions := memory.NewSessionRepository(cfg.Chat.SessionTTL, cfg.Chat.SessionCleanup)

	// 4. WebSocket Hub
	wsHub := websocket.NewHub(wsLogger)

	// 5. Services
	responder := chatbot.NewKeywordResponder(constant.ChatRules, constant.ChatFallback)
	chatbotService := service.NewChatbotService(responder, sessions, wsHub, cfg.Chat.ReplyDelay, sysLogger) // Hub implements TurnDelivery
	notifService := service.NewNotificationService(alertRepo, publishers, sysLogger)

	// Closing the last console tab ends the chat session.
	wsHub.OnSessionEmpty = func(sessionID string) {
		chatbotService.CloseSession(context.Background(), sessionID)
	}

	// 6. Delivery
	notifHandler := handler.NewNotificationHandler(notifService, chatbotService, wsHub, wsLogger)
	chatbotController := controller.NewChatbotController(chatbotService)

	// 7. Background loops
	ctx, cancel := context.WithCancel(context.Background())
	go wsHub.Run(ctx)
	if err := bus.Subscribe(ctx, wsHub.HandleEvent); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to subscribe hub to event bus: %w", err)
	}

	return &Container{
		ChatbotController:   chatbotController,
		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
		Logger:              sysLogger,
		sessions:            sessions,
		bus:                 bus,
		natsPub:             natsPub,
		wsLogger:            wsLogger,
		cancel:              cancel,
	}, nil
}

// Shutdown stops background loops, discards every chat session with its
// pending replies, closes the event sinks and flushes the logs.
func (c *Container) Shutdown() {
	c.cancel()
	c.sessions.CloseAll()

	if err := c.bus.Close(); err != nil {
		c.Logger.Warn("Bootstrap", "Failed to close event bus", map[string]interface{}{"error": err.Error()})
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}

	_ = c.wsLogger.Sync()
	_ = c.Logger.Sync()
}
