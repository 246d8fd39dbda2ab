package bootstrap

import (
	"context"
	"log"

	"ai-canvas-be/internal/config"
	"ai-canvas-be/internal/controller"
	"ai-canvas-be/internal/pkg/logger"
	"ai-canvas-be/internal/pkg/mailer"
	"ai-canvas-be/internal/repository/memory"
	redisrepo "ai-canvas-be/internal/repository/redis"
	"ai-canvas-be/internal/repository/unitofwork"
	"ai-canvas-be/internal/service"
	"ai-canvas-be/pkg/agent"
	"ai-canvas-be/pkg/llm/factory"

	pktNats "ai-canvas-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController    controller.IAuthController
	UserController    controller.IUserController
	CanvasController  controller.ICanvasController
	AgentController   controller.IAgentController
	AiController      controller.IAiController
	PaymentController controller.IPaymentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
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
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Initialize LLM Provider based on Config
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Conversation threads survive restarts only with the redis store.
	var threads agent.ThreadStore
	if cfg.App.ThreadStore == "redis" {
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
		threads = redisrepo.NewThreadRepository(rdb)
		log.Printf("[INFO] Using Thread Store: REDIS")
	} else {
		threads = memory.NewThreadRepository()
		log.Printf("[INFO] Using Thread Store: MEMORY")
	}

	// 3. Services
	publisherService := service.NewPublisherService(cfg.Keys.CanvasSavedTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.CanvasSavedTopic,
		uowFactory,
		natsPub,
	)

	canvasStore := service.NewCanvasStore(uowFactory, publisherService, sysLogger)
	creditService := service.NewCreditService(uowFactory, sysLogger)

	authService := service.NewAuthService(uowFactory, natsPub)
	userService := service.NewUserService(uowFactory)
	canvasService := service.NewCanvasService(uowFactory, publisherService, natsPub, sysLogger)
	agentService := service.NewAgentService(uowFactory, llmProvider, canvasStore, threads, creditService, sysLogger)
	aiService := service.NewAiService(uowFactory, llmProvider, creditService, sysLogger)
	paymentService := service.NewPaymentService(uowFactory, natsPub)

	// Transactional emails ride the event bus.
	notifierService := service.NewNotifierService(natsSub, emailService, sysLogger)
	if natsSub != nil {
		notifierService.Start()
	}

	// 4. Controllers
	return &Container{
		AuthController:    controller.NewAuthController(authService),
		UserController:    controller.NewUserController(userService, creditService),
		CanvasController:  controller.NewCanvasController(canvasService),
		AgentController:   controller.NewAgentController(agentService),
		AiController:      controller.NewAiController(aiService),
		PaymentController: controller.NewPaymentController(paymentService),

		ConsumerService: consumerService,
	}
}
