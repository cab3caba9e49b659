package bootstrap

import (
	"context"
	"log"
	"time"

	"safebites-be/internal/config"
	"safebites-be/internal/controller"
	"safebites-be/internal/pkg/logger"
	"safebites-be/internal/repository/cache"
	"safebites-be/internal/repository/contract"
	"safebites-be/internal/repository/memory"
	"safebites-be/internal/repository/unitofwork"
	"safebites-be/internal/service"
	"safebites-be/pkg/database"
	"safebites-be/pkg/embedding"
	"safebites-be/pkg/events"
	"safebites-be/pkg/llm"
	"safebites-be/pkg/llm/factory"
	"safebites-be/pkg/menu"
	pktNats "safebites-be/pkg/nats"
	"safebites-be/pkg/rag/contextresolver"
	"safebites-be/pkg/rag/filter"
	"safebites-be/pkg/rag/intent"
	"safebites-be/pkg/rag/pipeline"
	"safebites-be/pkg/rag/retriever"
	"safebites-be/pkg/rag/search"
	"safebites-be/pkg/vectorindex"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const contextCacheTTL = 30 * time.Minute

// Per-stage sampling. Structured-output stages run cold.
var (
	structuredOpts = []llm.Option{llm.WithTemperature(0)}
	rewriteOpts    = []llm.Option{llm.WithTemperature(0.2)}
	answerOpts     = []llm.Option{llm.WithTemperature(0.4), llm.WithMaxTokens(600)}
)

type Container struct {
	// Controllers
	UserController       controller.IUserController
	RestaurantController controller.IRestaurantController
	DishController       controller.IDishController
	ChatController       controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	IndexService    service.IIndexService

	Logger  logger.ILogger
	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	ctx := context.Background()

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	usageLogger := logger.NewIsolatedLogger(cfg.App.LLMUsageLogPath)
	c := &Container{Logger: sysLogger}

	// 2. Job Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. AI Providers
	llmProvider, err := factory.NewLLMProvider(ctx, factory.Config{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  llmBaseURL(cfg),
		APIKey:   cfg.Keys.OpenAI,
	}, usageLogger)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	sysLogger.Info("Bootstrap", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	embeddingProvider, err := embedding.NewEmbeddingProvider(ctx, embedding.Config{
		Provider: cfg.Ai.EmbeddingProvider,
		Model:    cfg.Ai.EmbeddingModel,
		BaseURL:  embeddingBaseURL(cfg),
		APIKey:   cfg.Keys.OpenAI,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
	}

	// 4. Vector Index
	index := newVectorIndex(cfg, db, uowFactory, embeddingProvider, sysLogger)

	// 5. Infrastructure
	var eventPublisher events.Publisher = events.NopPublisher{}
	if natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger); err != nil {
		sysLogger.Warn("Bootstrap", "NATS unavailable, domain events disabled", map[string]interface{}{"error": err.Error()})
	} else {
		eventPublisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}

	ingestionRepo := newIngestionStatusRepository(ctx, cfg, sysLogger, c)

	// 6. Services
	publisherService := service.NewPublisherService(pubSub)
	indexService := service.NewIndexService(uowFactory, index, embeddingProvider, sysLogger)
	enricher := menu.NewEnricher(llmProvider, sysLogger, cfg.Ai.EnrichConcurrency, structuredOpts...)

	consumerService := service.NewConsumerService(
		pubSub,
		uowFactory,
		enricher,
		indexService,
		ingestionRepo,
		eventPublisher,
		sysLogger,
	)

	dishService := service.NewDishService(uowFactory, publisherService, eventPublisher, sysLogger)
	restaurantService := service.NewRestaurantService(uowFactory, publisherService, indexService, ingestionRepo, eventPublisher, sysLogger)
	authService := service.NewAuthService(uowFactory, cfg.Keys.JWTSecret, eventPublisher, sysLogger)
	userService := service.NewUserService(uowFactory)
	conversationService := service.NewConversationService(
		uowFactory,
		memory.NewContextCache(contextCacheTTL),
		cfg.Rag.ContextLastN,
		sysLogger,
	)

	// 7. Chat Pipeline
	searcher := search.NewOrchestrator(llmProvider, embeddingProvider, index, search.Config{
		TopK:              cfg.Rag.TopK,
		HitThreshold:      cfg.Rag.HitThreshold,
		CentroidThreshold: cfg.Rag.CentroidThreshold,
	}, sysLogger, structuredOpts...)
	extractor := filter.NewExtractor(llmProvider, sysLogger, structuredOpts...)
	validator := filter.NewValidator(llmProvider, sysLogger, structuredOpts...)

	chatPipeline := pipeline.NewPipelineExecutor(
		contextresolver.NewResolver(llmProvider, sysLogger, rewriteOpts...),
		intent.NewClassifier(llmProvider, sysLogger, structuredOpts...),
		retriever.NewMenuRetriever(searcher, dishService, extractor, validator, sysLogger, cfg.Ai.EnrichConcurrency),
		retriever.NewDishInfoRetriever(llmProvider, searcher, dishService, extractor, validator, sysLogger, cfg.Ai.EnrichConcurrency, answerOpts...),
		retriever.NewPreferencesRetriever(llmProvider, sysLogger, answerOpts...),
		pipeline.Config{
			StageTimeout:          cfg.Rag.StageTimeout,
			ResolverFailurePolicy: cfg.Rag.ResolverFailurePolicy,
		},
		sysLogger,
	)
	chatService := service.NewChatService(uowFactory, conversationService, chatPipeline, eventPublisher, sysLogger)

	// 8. Controllers
	c.UserController = controller.NewUserController(authService, userService, cfg.Keys.JWTSecret)
	c.RestaurantController = controller.NewRestaurantController(restaurantService)
	c.DishController = controller.NewDishController(dishService, cfg.Keys.JWTSecret)
	c.ChatController = controller.NewChatController(chatService, cfg.Keys.JWTSecret)
	c.ConsumerService = consumerService
	c.IndexService = indexService
	return c
}

// Close releases bus and cache connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func newVectorIndex(
	cfg *config.Config,
	db *gorm.DB,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	sysLogger logger.ILogger,
) vectorindex.Index {
	if cfg.Vector.Backend == "pgvector" {
		if database.IsPostgres(db) {
			sysLogger.Info("Bootstrap", "Using pgvector index", nil)
			return vectorindex.NewPgvectorIndex(uowFactory)
		}
		sysLogger.Warn("Bootstrap", "pgvector needs Postgres, falling back to chromem", nil)
	}

	index, err := vectorindex.NewChromemIndex(cfg.Vector.StorePath, vectorindex.EmbeddingFunc(embeddingProvider))
	if err != nil {
		log.Fatalf("[FATAL] Failed to open vector index at %s: %v", cfg.Vector.StorePath, err)
	}
	sysLogger.Info("Bootstrap", "Using chromem index", map[string]interface{}{"path": cfg.Vector.StorePath})
	return index
}

// newIngestionStatusRepository uses Redis when it answers a ping and falls back to process memory.
func newIngestionStatusRepository(ctx context.Context, cfg *config.Config, sysLogger logger.ILogger, c *Container) contract.IngestionStatusRepository {
	if cfg.App.RedisURL == "" {
		return memory.NewIngestionStatusRepository()
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		sysLogger.Warn("Bootstrap", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		sysLogger.Warn("Bootstrap", "Redis unavailable, ingestion status kept in memory", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return memory.NewIngestionStatusRepository()
	}

	c.closers = append(c.closers, func() { _ = rdb.Close() })
	return cache.NewIngestionStatusRepository(rdb)
}

func llmBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMBaseURL == "" && cfg.Ai.LLMProvider == "ollama" {
		return cfg.Ai.OllamaBaseURL
	}
	return cfg.Ai.LLMBaseURL
}

func embeddingBaseURL(cfg *config.Config) string {
	if cfg.Ai.EmbeddingProvider == "ollama" {
		return cfg.Ai.OllamaBaseURL
	}
	return ""
}
