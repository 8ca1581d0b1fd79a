package bootstrap

import (
	"context"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"support-chat-be/internal/config"
	"support-chat-be/internal/controller"
	"support-chat-be/internal/handler"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/pkg/mailer"
	"support-chat-be/internal/pkg/serverutils"
	"support-chat-be/internal/repository/implementation"
	"support-chat-be/internal/service"
	"support-chat-be/internal/websocket"
	"support-chat-be/pkg/dedup"
	"support-chat-be/pkg/kb"
	pktNats "support-chat-be/pkg/nats"
	"support-chat-be/pkg/typing"
)

type Container struct {
	// Controllers
	VisitorController  controller.IVisitorController
	OperatorController controller.IOperatorController
	LeadController     controller.ILeadController

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	// Background workers (exposed for main.go lifecycle)
	BotService service.IBotService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	var emailService mailer.IEmailService
	if cfg.SMTP.Host != "" {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.Email,
		)
	}

	// In-process event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Repositories
	sessionRepo := implementation.NewChatSessionRepository(db)
	messageRepo := implementation.NewChatMessageRepository(db)
	knowledgeRepo := implementation.NewKnowledgeRepository(db)
	notifRepo := implementation.NewNotificationRepository(db)
	operatorRepo := implementation.NewOperatorRepository(db)

	// nil when NATS is down; publishing then degrades to the local bus only
	var eventsPub service.EventPublisher
	if natsPub != nil {
		eventsPub = natsPub
	}

	sessionService := service.NewSessionService(sessionRepo, notifRepo, pubSub, eventsPub, wsHub, sysLogger)
	messageService := service.NewMessageService(messageRepo, sessionRepo, pubSub, pubSub, eventsPub, wsHub, sysLogger)
	authService := service.NewAuthService(operatorRepo, cfg.Auth, sysLogger)
	leadService := service.NewLeadService(eventsPub, sysLogger)

	// Bot responder
	knowledgeLoader := kb.NewLoader(knowledgeRepo, sysLogger)
	scheduler := typing.NewScheduler()
	botService := service.NewBotService(sessionService, messageService, knowledgeLoader, scheduler, pubSub, sysLogger)
	if err := botService.Start(context.Background()); err != nil {
		log.Fatalf("[FATAL] Failed to start bot responder: %v", err)
	}

	// Notification worker
	var eventsSub service.EventSubscriber
	if natsSub != nil {
		eventsSub = natsSub
	}
	notifService := service.NewNotificationService(
		notifRepo,
		sessionRepo,
		eventsSub,
		dedup.NewRedisStore(rdb),
		dedup.NewMemoryStore(),
		wsHub,
		emailService,
		cfg.Lead.AlertEmail,
		wsLogger,
	)
	if err := notifService.Start(); err != nil {
		log.Printf("[WARN] Failed to start notification worker: %v", err)
	}

	jwtMiddleware := serverutils.NewJwtMiddleware(cfg.Auth.JWTSecret)
	notifHandler := handler.NewNotificationHandler(notifService, sessionService, wsHub, cfg.Auth.JWTSecret, jwtMiddleware, wsLogger)

	return &Container{
		VisitorController:   controller.NewVisitorController(sessionService, messageService),
		OperatorController:  controller.NewOperatorController(authService, sessionService, messageService, jwtMiddleware),
		LeadController:      controller.NewLeadController(leadService),
		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
		BotService:          botService,
	}
}
