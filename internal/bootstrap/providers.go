package bootstrap

import (
	"context"
	"time"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/ai"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/config"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/embeddings"
	errnoop "github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/errors/noop"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/errors/sentry"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/kafka"
	pgclient "github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/postgres"
	redisclient "github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/redis"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/agents"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/agents/workflows"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/memory"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/events"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/reflection"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/repository/inmemory"
	pgrepo "github.com/tejpal123456789/trading-agnetic-workflow/internal/repository/postgres"
	analysissvc "github.com/tejpal123456789/trading-agnetic-workflow/internal/services/analysis"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/tools/toolkit"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/logger"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/templates"
)

// ========================================
// Phase 1: Configuration & Logging
// ========================================

// InitConfig loads configuration unless one was injected, then sets up logging and error tracking.
func (c *Container) InitConfig() error {
	if c.Config == nil {
		cfg, err := config.Load()
		if err != nil {
			return errors.Wrap(err, "load config")
		}
		c.Config = cfg
	}

	if err := logger.Init(c.Config.App.LogLevel, c.Config.App.Env); err != nil {
		return errors.Wrap(err, "init logger")
	}
	c.Log = logger.Get()
	c.Log.Infof("Starting %s in %s mode", c.Config.App.Name, c.Config.App.Env)

	c.ErrorTracker = provideErrorTracker(c.Config, c.Log)
	logger.SetErrorTracker(c.ErrorTracker)
	return nil
}

// ========================================
// Phase 2: Infrastructure
// ========================================

// InitInfrastructure connects the optional data stores.
func (c *Container) InitInfrastructure() error {
	var err error

	if c.Config.Postgres.Enabled {
		c.Log.Info("Connecting to PostgreSQL...")
		if c.PG, err = pgclient.NewClient(c.Config.Postgres); err != nil {
			return err
		}
		c.Log.Info("PostgreSQL connected")
	}

	if c.Config.Redis.Enabled {
		c.Log.Info("Connecting to Redis...")
		if c.Redis, err = redisclient.NewClient(c.Config.Redis); err != nil {
			return err
		}
		c.Log.Info("Redis connected")
	}
	return nil
}

// ========================================
// Phase 3: External Adapters
// ========================================

func (c *Container) InitAdapters() error {
	if c.Adapters.Chat == nil {
		chat, err := ai.NewChatProvider(c.Config.LLM, c.Config.Timeouts.LLMCall)
		if err != nil {
			return err
		}
		c.Adapters.Chat = chat
	}
	c.Adapters.Usage = ai.NewUsageTracker()
	c.Log.Infow("Chat provider ready",
		"provider", c.Adapters.Chat.Name(),
		"quick_model", c.Config.LLM.QuickModel,
		"deep_model", c.Config.LLM.DeepModel,
	)

	embedder, err := provideEmbeddings(c.Config, c.Redis, c.Log)
	if err != nil {
		return err
	}
	c.Adapters.Embeddings = embedder

	if c.Config.Kafka.Enabled {
		c.Adapters.KafkaProducer = provideKafkaProducer(c.Config, c.Log)
		c.Adapters.Publisher = events.NewPublisher(c.Adapters.KafkaProducer)
	} else {
		c.Adapters.Publisher = events.NewPublisher(nil)
	}
	return nil
}

// ========================================
// Phase 4: Business Logic
// ========================================

func (c *Container) InitBusiness() error {
	bank, err := provideMemoryBank(c.Context, c.Config, c.PG, c.Adapters.Embeddings, c.Log)
	if err != nil {
		return err
	}
	c.Business.Memory = bank

	catalog, err := toolkit.Build(c.Config.Tools, c.Config.Timeouts.ToolCall)
	if err != nil {
		return errors.Wrap(err, "build tool catalog")
	}
	c.Business.Catalog = catalog
	c.Log.Infow("Tool catalog ready", "tools", catalog.Names())

	c.Business.Invoker = agents.NewInvoker(c.Adapters.Chat, agents.InvokerConfig{
		Models:      ai.Models{Quick: c.Config.LLM.QuickModel, Deep: c.Config.LLM.DeepModel},
		Temperature: c.Config.LLM.Temperature,
		MaxTokens:   c.Config.LLM.MaxTokens,
		CallTimeout: c.Config.Timeouts.LLMCall,
	}, c.Adapters.Usage, templates.Get())

	factory, err := workflows.NewFactory(workflows.FactoryDeps{
		Invoker:        c.Business.Invoker,
		Catalog:        catalog,
		Memory:         bank,
		Debate:         c.Config.Debate,
		AnalystTimeout: c.Config.Timeouts.Analyst,
	})
	if err != nil {
		return err
	}
	c.Business.WorkflowFactory = factory

	pipeline, err := factory.CreateTradingPipeline()
	if err != nil {
		return errors.Wrap(err, "assemble trading pipeline")
	}
	c.Business.Pipeline = pipeline
	c.Log.Infow("Trading pipeline assembled", "nodes", len(pipeline.Graph().Nodes()), "recursion_limit", pipeline.Graph().RecursionLimit())
	return nil
}

// ========================================
// Phase 5: Services
// ========================================

func (c *Container) InitServices() error {
	c.Services.Signals = reflection.NewSignalProcessor(c.Business.Invoker)

	deps := analysissvc.Deps{
		Pipeline:  c.Business.Pipeline,
		Signals:   c.Services.Signals,
		Publisher: c.Adapters.Publisher,
	}
	if c.Redis != nil {
		deps.Locker = analysissvc.NewRedisLocker(c.Redis)
		if c.Config.Redis.ResultTTL > 0 {
			deps.Cache = analysissvc.NewRedisResultCache(c.Redis, c.Config.Redis.ResultTTL)
		}
	}

	svc, err := analysissvc.NewService(deps, analysissvc.Config{
		RunTimeout:     c.Config.Timeouts.Run,
		LockTTL:        c.Config.Redis.LockTTL,
		OutputDir:      c.Config.Output.Dir,
		FinalStateFile: c.Config.Output.FinalStateFile,
	})
	if err != nil {
		return err
	}
	c.Services.Analysis = svc

	c.Services.Reflection = reflection.NewService(c.Business.Invoker, c.Business.Memory, c.Adapters.Publisher, reflection.Config{
		Thresholds: reflection.Thresholds{
			HoldCorrectBelow:   c.Config.Reflection.HoldCorrectBelow,
			HoldIncorrectAbove: c.Config.Reflection.HoldIncorrectAbove,
		},
		OutputDir:   c.Config.Reflection.OutputDir,
		Save:        c.Config.Reflection.Save,
		CallTimeout: c.Config.Timeouts.Reflection,
	})
	return nil
}

// ========================================
// Helper Provider Functions
// ========================================

func provideErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Debug("Error tracking disabled")
		return errnoop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return errnoop.New()
	}
	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// provideEmbeddings wraps the configured provider in the redis cache when one is available.
func provideEmbeddings(cfg *config.Config, rdb *redisclient.Client, log *logger.Logger) (embeddings.Provider, error) {
	provider, err := embeddings.NewProvider(embeddings.Config{
		Provider:        embeddings.ProviderType(cfg.Memory.EmbeddingProvider),
		APIKey:          cfg.LLM.OpenAIKey,
		Model:           cfg.Memory.EmbeddingModel,
		LocalDimensions: cfg.Memory.LocalDimensions,
		Timeout:         cfg.Timeouts.Embedding,
	})
	if err != nil {
		return nil, err
	}

	if rdb != nil && cfg.Memory.CacheTTL > 0 {
		log.Infow("Embedding cache enabled", "ttl", cfg.Memory.CacheTTL)
		return embeddings.NewCachedProvider(provider, rdb, cfg.Memory.CacheTTL), nil
	}
	return provider, nil
}

func provideMemoryBank(ctx context.Context, cfg *config.Config, pg *pgclient.Client, embedder embeddings.Provider, log *logger.Logger) (*memory.Bank, error) {
	switch cfg.Memory.Backend {
	case "postgres":
		if pg == nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "memory backend postgres requires a postgres connection")
		}
		schemaCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := pgrepo.EnsureSchema(schemaCtx, pg.DB()); err != nil {
			return nil, err
		}
		log.Infow("Memory bank backed by pgvector", "embedder", embedder.Name())
		return memory.NewBank(pgrepo.MemoryStoreFactory(pg.DB(), embedder))
	default:
		log.Infow("Memory bank kept in process", "embedder", embedder.Name())
		return memory.NewBank(inmemory.Factory(embedder))
	}
}

func provideKafkaProducer(cfg *config.Config, log *logger.Logger) *kafka.Producer {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Warn("Kafka brokers not configured, using default localhost:9092")
		cfg.Kafka.Brokers = []string{"localhost:9092"}
	}
	producer := kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.Kafka.Brokers})
	log.Infow("Kafka producer initialized", "brokers", cfg.Kafka.Brokers)
	return producer
}

func provideKafkaConsumer(cfg *config.Config, topic string, log *logger.Logger) *kafka.Consumer {
	consumer := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.GroupID,
		Topic:   topic,
	})
	log.Infow("Kafka consumer initialized", "topic", topic, "group", cfg.Kafka.GroupID)
	return consumer
}
