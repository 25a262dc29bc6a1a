package bootstrap

import (
	"context"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"whatsapp-ai-bridge/internal/config"
	"whatsapp-ai-bridge/internal/controller"
	"whatsapp-ai-bridge/internal/pkg/logger"
	"whatsapp-ai-bridge/internal/service"
	"whatsapp-ai-bridge/pkg/assistant/deepseek"
	"whatsapp-ai-bridge/pkg/assistant/gemini"
	"whatsapp-ai-bridge/pkg/conversation"
	"whatsapp-ai-bridge/pkg/conversation/badgerstore"
	"whatsapp-ai-bridge/pkg/conversation/gormstore"
	"whatsapp-ai-bridge/pkg/database"
	"whatsapp-ai-bridge/pkg/knowledge"
	natspub "whatsapp-ai-bridge/pkg/nats"
)

const turnEventsTopic = "TURN_COMPLETED"

type Container struct {
	// Controllers
	WebhookController controller.IWebhookController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	closers []func()
}

// Close releases everything the container owns (badger db, SDK clients,
// NATS connection). Call on shutdown.
func (c *Container) Close() {
	for _, fn := range c.closers {
		fn()
	}
}

func NewContainer(cfg *config.Config) *Container {
	c := &Container{}

	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	c.Logger = sysLogger

	// 2. Knowledge base (loaded once, immutable for the process lifetime)
	registry := knowledge.NewRegistry()
	if cfg.Ai.DocumentSupport {
		knowledge.RegisterDocumentExtractors(registry)
	}
	log.Printf("[INFO] Knowledge extractors: %v", registry.Supported())

	geminiKB := knowledge.LoadFromDirectory(cfg.Ai.Gemini.KnowledgeDir, registry, sysLogger)
	deepseekKB := knowledge.LoadFromDirectory(cfg.Ai.DeepSeek.KnowledgeDir, registry, sysLogger)

	// 3. Conversation storage: Postgres when a DSN is configured, local
	// BadgerDB otherwise. Each provider gets its own keyspace.
	var geminiStore, deepseekStore conversation.Store
	if cfg.Database.Connection != "" {
		gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Fatalf("[FATAL] Unable to connect to conversation DB: %v", err)
		}
		if err := gormstore.Migrate(gormDB); err != nil {
			log.Fatalf("[FATAL] Unable to migrate conversation DB: %v", err)
		}
		geminiStore = gormstore.New(gormDB, gemini.ProviderName)
		deepseekStore = gormstore.New(gormDB, deepseek.ProviderName)
		log.Printf("[INFO] Using conversation storage: POSTGRES")
	} else {
		badgerDB, err := badgerstore.Open(cfg.App.DataDir)
		if err != nil {
			log.Fatalf("[FATAL] Unable to open conversation store: %v", err)
		}
		c.closers = append(c.closers, func() { _ = badgerDB.Close() })
		geminiStore = badgerstore.New(badgerDB, gemini.ProviderName)
		deepseekStore = badgerstore.New(badgerDB, deepseek.ProviderName)
		log.Printf("[INFO] Using conversation storage: BADGER (%s)", cfg.App.DataDir)
	}

	// 4. Provider adapters
	geminiAdapter := gemini.New(context.Background(), gemini.Config{
		APIKey:        cfg.Ai.Gemini.APIKey,
		Model:         cfg.Ai.Gemini.Model,
		Instructions:  resolveInstructions(cfg.Ai.Gemini, registry, sysLogger),
		KnowledgeBase: geminiKB,
	}, geminiStore, sysLogger)
	c.closers = append(c.closers, func() { _ = geminiAdapter.Close() })

	deepseekAdapter := deepseek.New(deepseek.Config{
		APIKey:        cfg.Ai.DeepSeek.APIKey,
		BaseURL:       cfg.Ai.DeepSeek.BaseURL,
		Model:         cfg.Ai.DeepSeek.Model,
		Instructions:  resolveInstructions(cfg.Ai.DeepSeek, registry, sysLogger),
		KnowledgeBase: deepseekKB,
	}, deepseekStore, sysLogger)

	responderService := service.NewResponderService(
		cfg.Ai.Provider,
		gemini.ProviderName,
		sysLogger,
		geminiAdapter,
		deepseekAdapter,
	)
	log.Printf("[INFO] Using AI provider: %s", responderService.ActiveProvider())

	// 5. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	var natsPub *natspub.Publisher
	if cfg.App.NatsURL != "" {
		var err error
		natsPub, err = natspub.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
			natsPub = nil
		} else {
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	publisherService := service.NewPublisherService(turnEventsTopic, pubSub, sysLogger)
	c.ConsumerService = service.NewConsumerService(pubSub, turnEventsTopic, natsPub, sysLogger)

	// 6. WhatsApp plumbing + Controllers
	whatsappService := service.NewWhatsAppService(
		cfg.WhatsApp.AccessToken,
		cfg.WhatsApp.PhoneNumberID,
		cfg.WhatsApp.VerifyToken,
		cfg.WhatsApp.APIVersion,
		responderService,
		publisherService,
		sysLogger,
	)

	c.WebhookController = controller.NewWebhookController(whatsappService)
	return c
}

// resolveInstructions picks the static system instructions: a prompt file
// wins over the literal env string when both are set.
func resolveInstructions(p config.ProviderConfig, reg *knowledge.Registry, sysLogger logger.ILogger) string {
	if p.InstructionsFile == "" {
		return p.Instructions
	}

	text, err := knowledge.ExtractFile(p.InstructionsFile, reg)
	if err != nil || text == "" {
		sysLogger.Warn("bootstrap", "Failed to load system prompt file, falling back to literal instructions", map[string]interface{}{
			"path": p.InstructionsFile,
		})
		return p.Instructions
	}
	return text
}
