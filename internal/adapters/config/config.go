package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
)

type Config struct {
	App           AppConfig
	LLM           LLMConfig
	Timeouts      TimeoutConfig
	Debate        DebateConfig
	Reflection    ReflectionConfig
	Memory        MemoryConfig
	Postgres      PostgresConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Tools         ToolsConfig
	Metrics       MetricsConfig
	ErrorTracking ErrorTrackingConfig
	Scheduler     SchedulerConfig
	Output        OutputConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"trading-agents"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LLMConfig selects the chat provider and the two model tiers.
// Quick models serve analysts, debaters, the trader and signal extraction;
// deep models serve the managers and reflections.
type LLMConfig struct {
	Provider          string  `envconfig:"LLM_PROVIDER" default:"openai"`
	DeepModel         string  `envconfig:"LLM_DEEP_MODEL" default:"gpt-4o"`
	QuickModel        string  `envconfig:"LLM_QUICK_MODEL" default:"gpt-4o-mini"`
	OpenAIKey         string  `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL     string  `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	GeminiKey         string  `envconfig:"GEMINI_API_KEY"`
	Temperature       float64 `envconfig:"LLM_TEMPERATURE" default:"0.1"`
	MaxTokens         int     `envconfig:"LLM_MAX_TOKENS" default:"4096"`
	RequestsPerMinute int     `envconfig:"LLM_REQUESTS_PER_MINUTE" default:"120"`
}

// TimeoutConfig bounds every external call type. Zero disables the bound.
type TimeoutConfig struct {
	LLMCall    time.Duration `envconfig:"TIMEOUT_LLM_CALL" default:"90s"`
	ToolCall   time.Duration `envconfig:"TIMEOUT_TOOL_CALL" default:"30s"`
	Analyst    time.Duration `envconfig:"TIMEOUT_ANALYST" default:"5m"`
	Embedding  time.Duration `envconfig:"TIMEOUT_EMBEDDING" default:"30s"`
	Reflection time.Duration `envconfig:"TIMEOUT_REFLECTION" default:"2m"`
	Run        time.Duration `envconfig:"TIMEOUT_RUN" default:"30m"`
}

type DebateConfig struct {
	InvestmentMaxRounds int `envconfig:"DEBATE_INVESTMENT_MAX_ROUNDS" default:"1"`
	RiskMaxRounds       int `envconfig:"DEBATE_RISK_MAX_ROUNDS" default:"1"`
	AnalystMaxSteps     int `envconfig:"ANALYST_MAX_STEPS" default:"5"`
	RecursionLimit      int `envconfig:"GRAPH_RECURSION_LIMIT" default:"100"`
	MemoryMatches       int `envconfig:"MEMORY_MATCHES" default:"1"`
}

// RequiredNodeExecutions is the number of pipeline nodes one run executes at these round caps:
// init, analysis, research manager, trader, portfolio manager and consolidation once each,
// plus one node per debate turn.
func (d DebateConfig) RequiredNodeExecutions() int {
	return 6 + 2*d.InvestmentMaxRounds + 3*d.RiskMaxRounds
}

// ReflectionConfig holds the absolute-dollar thresholds of the HOLD verdicts.
type ReflectionConfig struct {
	HoldCorrectBelow   float64 `envconfig:"REFLECTION_HOLD_CORRECT_BELOW" default:"100"`
	HoldIncorrectAbove float64 `envconfig:"REFLECTION_HOLD_INCORRECT_ABOVE" default:"500"`
	OutputDir          string  `envconfig:"REFLECTION_OUTPUT_DIR" default:"."`
	Save               bool    `envconfig:"REFLECTION_SAVE" default:"true"`
}

type MemoryConfig struct {
	Backend           string        `envconfig:"MEMORY_BACKEND" default:"inmemory"`
	EmbeddingProvider string        `envconfig:"EMBEDDING_PROVIDER" default:"local"`
	EmbeddingModel    string        `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	LocalDimensions   int           `envconfig:"EMBEDDING_LOCAL_DIMENSIONS" default:"256"`
	CacheTTL          time.Duration `envconfig:"EMBEDDING_CACHE_TTL" default:"24h"`
}

type PostgresConfig struct {
	Enabled  bool   `envconfig:"POSTGRES_ENABLED" default:"false"`
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"postgres"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	Database string `envconfig:"POSTGRES_DB" default:"trading_agents"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"10"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool          `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string        `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int           `envconfig:"REDIS_PORT" default:"6379"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	LockTTL  time.Duration `envconfig:"REDIS_RUN_LOCK_TTL" default:"45m"`

	// ResultTTL keeps finished runs for repeated requests of the same subject and date. Zero disables it.
	ResultTTL time.Duration `envconfig:"REDIS_RESULT_TTL" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type KafkaConfig struct {
	Enabled bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	Brokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	GroupID string   `envconfig:"KAFKA_GROUP_ID" default:"trading-agents"`
}

type ToolsConfig struct {
	FinnhubKey     string `envconfig:"FINNHUB_API_KEY"`
	FinnhubBaseURL string `envconfig:"FINNHUB_BASE_URL" default:"https://finnhub.io/api/v1"`
	TavilyKey      string `envconfig:"TAVILY_API_KEY"`
	TavilyBaseURL  string `envconfig:"TAVILY_BASE_URL" default:"https://api.tavily.com"`
	MarketDataURL  string `envconfig:"MARKET_DATA_BASE_URL" default:"https://query1.finance.yahoo.com"`
	NewsLimit      int    `envconfig:"TOOLS_NEWS_LIMIT" default:"5"`
	SearchResults  int    `envconfig:"TOOLS_SEARCH_RESULTS" default:"3"`
}

type MetricsConfig struct {
	Addr string `envconfig:"METRICS_ADDR" default:":9090"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// SchedulerConfig drives the serve command: every Interval the pipeline runs for each Watchlist subject.
type SchedulerConfig struct {
	Watchlist []string      `envconfig:"SCHEDULER_WATCHLIST" default:"AAPL,MSFT,NVDA"`
	Interval  time.Duration `envconfig:"SCHEDULER_INTERVAL" default:"24h"`
	Enabled   bool          `envconfig:"SCHEDULER_ENABLED" default:"true"`
}

type OutputConfig struct {
	Dir            string `envconfig:"OUTPUT_DIR" default:"."`
	FinalStateFile string `envconfig:"OUTPUT_FINAL_STATE_FILE" default:"final_state.json"`
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Debate.InvestmentMaxRounds < 1 {
		return errors.Wrapf(errors.ErrInvalidInput, "investment max rounds must be >= 1, got %d", c.Debate.InvestmentMaxRounds)
	}
	if c.Debate.RiskMaxRounds < 1 {
		return errors.Wrapf(errors.ErrInvalidInput, "risk max rounds must be >= 1, got %d", c.Debate.RiskMaxRounds)
	}
	if c.Debate.AnalystMaxSteps < 1 {
		return errors.Wrapf(errors.ErrInvalidInput, "analyst max steps must be >= 1, got %d", c.Debate.AnalystMaxSteps)
	}
	if c.Debate.RecursionLimit < 1 {
		return errors.Wrapf(errors.ErrInvalidInput, "recursion limit must be >= 1, got %d", c.Debate.RecursionLimit)
	}
	if need := c.Debate.RequiredNodeExecutions(); need > c.Debate.RecursionLimit {
		return errors.Wrapf(errors.ErrInvalidInput,
			"recursion limit %d is below the %d node executions the round caps need", c.Debate.RecursionLimit, need)
	}
	if c.Debate.MemoryMatches < 0 {
		return errors.Wrapf(errors.ErrInvalidInput, "memory matches must be >= 0, got %d", c.Debate.MemoryMatches)
	}
	if c.Reflection.HoldCorrectBelow > c.Reflection.HoldIncorrectAbove {
		return errors.Wrapf(errors.ErrInvalidInput,
			"hold thresholds out of order: correct below %.2f > incorrect above %.2f",
			c.Reflection.HoldCorrectBelow, c.Reflection.HoldIncorrectAbove)
	}
	switch c.Memory.Backend {
	case "inmemory", "postgres":
	default:
		return errors.Wrapf(errors.ErrInvalidInput, "unsupported memory backend: %s", c.Memory.Backend)
	}
	if c.Memory.Backend == "postgres" && !c.Postgres.Enabled {
		return errors.Wrapf(errors.ErrInvalidInput, "memory backend postgres requires POSTGRES_ENABLED")
	}
	return nil
}
