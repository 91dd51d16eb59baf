package bootstrap

import (
	"context"
	"sync"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/ai"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/config"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/embeddings"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/kafka"
	pgclient "github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/postgres"
	redisclient "github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/redis"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/agents"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/agents/workflows"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/api"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/memory"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/events"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/reflection"
	analysissvc "github.com/tejpal123456789/trading-agnetic-workflow/internal/services/analysis"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/tools"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/workers"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/logger"
)

// Container holds all application dependencies and their lifecycle.
// Components are organized in initialization order.
type Container struct {
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	// Optional data stores, nil unless enabled in config
	PG    *pgclient.Client
	Redis *redisclient.Client

	Adapters   *Adapters
	Business   *Business
	Services   *Services
	Background *Background

	Lifecycle *Lifecycle
	WG        *sync.WaitGroup
	Context   context.Context
	Cancel    context.CancelFunc
}

// Adapters groups external clients.
type Adapters struct {
	Chat          ai.ChatProvider
	Usage         *ai.UsageTracker
	Embeddings    embeddings.Provider
	KafkaProducer *kafka.Producer
	Publisher     *events.Publisher
}

// Business groups the pipeline and everything it is assembled from.
type Business struct {
	Memory          *memory.Bank
	Catalog         tools.Catalog
	Invoker         *agents.Invoker
	WorkflowFactory *workflows.Factory
	Pipeline        *workflows.Pipeline
}

type Services struct {
	Analysis   *analysissvc.Service
	Reflection *reflection.Service
	Signals    *reflection.SignalProcessor
}

// Background groups the long-running components of serve.
type Background struct {
	Scheduler       *workers.Scheduler
	Watchlist       *workers.WatchlistWorker
	RequestConsumer *kafka.Consumer
	HTTPServer      *api.Server
}

// Option customizes a container before initialization.
type Option func(*Container)

// WithConfig skips environment loading.
func WithConfig(cfg *config.Config) Option {
	return func(c *Container) { c.Config = cfg }
}

// WithChatProvider replaces the configured chat provider.
func WithChatProvider(p ai.ChatProvider) Option {
	return func(c *Container) { c.Adapters.Chat = p }
}

func NewContainer(opts ...Option) *Container {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Container{
		Adapters:   &Adapters{},
		Business:   &Business{},
		Services:   &Services{},
		Background: &Background{},
		Lifecycle:  NewLifecycle(),
		WG:         &sync.WaitGroup{},
		Context:    ctx,
		Cancel:     cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init runs every phase the one-shot commands need.
func (c *Container) Init() error {
	phases := []struct {
		name string
		fn   func() error
	}{
		{"config", c.InitConfig},
		{"infrastructure", c.InitInfrastructure},
		{"adapters", c.InitAdapters},
		{"business", c.InitBusiness},
		{"services", c.InitServices},
	}
	for _, p := range phases {
		if err := p.fn(); err != nil {
			return errors.Wrapf(err, "init %s", p.name)
		}
	}
	return nil
}

// Shutdown releases everything the container opened. Safe after a partial Init.
func (c *Container) Shutdown() {
	c.Cancel()

	log := c.Log
	if log == nil {
		log = logger.Get()
	}
	c.Lifecycle.Shutdown(
		c.WG,
		c.Background.HTTPServer,
		c.Background.Scheduler,
		c.Background.RequestConsumer,
		c.Adapters.KafkaProducer,
		c.PG,
		c.Redis,
		c.ErrorTracker,
		log,
	)
}
