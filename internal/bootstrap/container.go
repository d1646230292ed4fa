package bootstrap

import (
	"context"
	"log"

	"golden-notes-be/internal/config"
	"golden-notes-be/internal/controller"
	"golden-notes-be/internal/handler"
	"golden-notes-be/internal/pkg/logger"
	"golden-notes-be/internal/pkg/mailer"
	"golden-notes-be/internal/pkg/serverutils"
	"golden-notes-be/internal/repository/memory"
	"golden-notes-be/internal/repository/unitofwork"
	"golden-notes-be/internal/service"
	"golden-notes-be/internal/sync"
	"golden-notes-be/internal/websocket"

	pktNats "golden-notes-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	NotebookController controller.INotebookController
	NoteController     controller.INoteController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Exposed so main can flush buffered log entries on shutdown.
	Logger logger.ILogger

	// WebSockets
	SyncHandler  *handler.SyncHandler
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS (audit events; the app works without it)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis (cross-instance websocket relay; optional)
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

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/sync.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Services
	editSessions := memory.NewEditSessionRepository()

	publisherService := service.NewPublisherService(sync.NoteChangesTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, sync.NoteChangesTopic, wsHub)

	authService := service.NewAuthService(uowFactory, emailService, natsPub, cfg.Auth)
	notebookService := service.NewNotebookService(uowFactory, publisherService)
	noteService := service.NewNoteService(uowFactory, publisherService, natsPub)

	sessionMiddleware := serverutils.NewSessionMiddleware(cfg.Auth)

	syncHandler := handler.NewSyncHandler(wsHub, cfg.Auth, wsLogger)

	// 4. Controllers
	return &Container{
		Logger: sysLogger,
		AuthController:     controller.NewAuthController(authService, cfg.Auth),
		NotebookController: controller.NewNotebookController(notebookService, sessionMiddleware),
		NoteController:     controller.NewNoteController(noteService, editSessions, sessionMiddleware),

		ConsumerService: consumerService,

		SyncHandler:  syncHandler,
		WebSocketHub: wsHub,
	}
}
