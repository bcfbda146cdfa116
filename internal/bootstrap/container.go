package bootstrap

import (
	"context"
	"log"
	"time"

	"war-room-be/internal/config"
	"war-room-be/internal/controller"
	"war-room-be/internal/handler"
	"war-room-be/internal/pkg/logger"
	"war-room-be/internal/repository/memory"
	"war-room-be/internal/repository/unitofwork"
	"war-room-be/internal/service"
	"war-room-be/internal/websocket"
	"war-room-be/pkg/embedding"
	"war-room-be/pkg/llm/factory"
	"war-room-be/pkg/orchestrator"
	"war-room-be/pkg/persist"
	"war-room-be/pkg/prompt"
	"war-room-be/pkg/retrieval"
	"war-room-be/pkg/suggest"
	"war-room-be/pkg/voice"

	pktNats "war-room-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController
	MissionController  controller.IMissionController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Notices
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

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

	// In-memory scope state per session
	scopeRepo := memory.NewScopeRepository()

	// 4. Infrastructure
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

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. Thread persistence
	var kv persist.KV
	if cfg.Persist.Backend == "file" {
		fileKV, err := persist.NewFileKV(cfg.Persist.FileDir)
		if err != nil {
			log.Fatalf("[FATAL] Failed to open thread persistence dir: %v", err)
		}
		kv = fileKV
		log.Printf("[INFO] Thread snapshots: FILE (%s)", cfg.Persist.FileDir)
	} else {
		kv = persist.NewRedisKV(rdb)
		log.Printf("[INFO] Thread snapshots: REDIS")
	}
	persister := persist.NewAdapter(kv, sysLogger)

	loadCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	threadStore := persister.Load(loadCtx)
	cancel()

	// 6. Exchange pipeline
	retriever := retrieval.NewRetriever(sysLogger)
	assembler := prompt.NewAssembler()
	suggestGen := suggest.NewGenerator(llmProvider, sysLogger)

	chatService := service.NewChatService(uowFactory, scopeRepo, embeddingProvider, natsPub, sysLogger)

	orchOpts := []orchestrator.Option{
		orchestrator.WithMessageSink(chatService),
		orchestrator.WithSuggestions(suggestGen, chatService.DeliverSuggestions),
	}
	if cfg.Voice.Enabled {
		synth := voice.NewHTTPSynthesizer(cfg.Voice.BaseURL, cfg.Voice.VoiceName)
		orchOpts = append(orchOpts, orchestrator.WithSynthesizer(synth, func(sessionID, audioURL string) {
			wsHub.Broadcast(websocket.Notice{
				Type:    "speech.ready",
				Title:   "Voice reply ready",
				Message: "A spoken version of the reply is available.",
				Data: map[string]interface{}{
					"session_id": sessionID,
					"audio_url":  audioURL,
				},
				CreatedAt: time.Now(),
			})
		}))
		log.Printf("[INFO] Voice synthesis: ENABLED (%s)", cfg.Voice.VoiceName)
	}

	orch := orchestrator.New(
		threadStore,
		retriever,
		assembler,
		llmProvider,
		persister,
		sysLogger,
		orchOpts...,
	)
	chatService.SetOrchestrator(orch)

	// 7. Document pipeline
	publisherService := service.NewPublisherService(cfg.Keys.EmbedTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.EmbedTopic,
		uowFactory,
		embeddingProvider,
		llmProvider,
		natsPub,
		sysLogger,
	)

	documentService := service.NewDocumentService(uowFactory, publisherService, embeddingProvider, natsPub, sysLogger)
	missionService := service.NewMissionService(uowFactory)

	// 8. Notices
	notifService := service.NewNotificationService(natsSub, wsHub, wsLogger)
	if natsSub != nil {
		go notifService.Start()
	}
	notifHandler := handler.NewNotificationHandler(wsHub, wsLogger)

	return &Container{
		ChatController:     controller.NewChatController(chatService),
		DocumentController: controller.NewDocumentController(documentService),
		MissionController:  controller.NewMissionController(missionService),

		ConsumerService: consumerService,

		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
	}
}
