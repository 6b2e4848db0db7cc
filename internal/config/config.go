// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds the entire application configuration. It is constructed once
// at process start and passed by reference into the orchestrator, agents and
// judge; nothing reads ambient global state after that.
type Config struct {
	Logger     LoggerConfig             `mapstructure:"logger" yaml:"logger"`
	LLM        LLMConfig                `mapstructure:"llm" yaml:"llm"`
	Retrieval  RetrievalConfig          `mapstructure:"retrieval" yaml:"retrieval"`
	Debate     DebateConfig             `mapstructure:"debate" yaml:"debate"`
	Evaluation EvaluationConfig         `mapstructure:"evaluation" yaml:"evaluation"`
	Personas   map[string]PersonaConfig `mapstructure:"personas" yaml:"personas"`
}

// LoggerConfig configures the zap logger and its file rotation.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// LLMProvider names a supported generation backend.
type LLMProvider string

const ProviderGemini LLMProvider = "gemini"

// LLMConfig defines the generation capability used by the debate agents.
type LLMConfig struct {
	Provider          LLMProvider   `mapstructure:"provider" yaml:"provider"`
	Model             string        `mapstructure:"model" yaml:"model"`
	APIKey            string        `mapstructure:"api_key" yaml:"api_key"`
	Endpoint          string        `mapstructure:"endpoint" yaml:"endpoint"`
	APITimeout        time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	Temperature       float32       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens         int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	EmbedModel        string        `mapstructure:"embed_model" yaml:"embed_model"`
	RequestsPerMinute float64       `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
}

// RetrievalConfig points at the ChromaDB query endpoint that backs grounded
// agents. Ingestion (chunking, embedding, indexing) happens elsewhere; this
// system only issues queries.
type RetrievalConfig struct {
	Enabled    bool          `mapstructure:"enabled" yaml:"enabled"`
	BaseURL    string        `mapstructure:"base_url" yaml:"base_url"`
	Collection string        `mapstructure:"collection" yaml:"collection"`
	TopK       int           `mapstructure:"top_k" yaml:"top_k"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// DebateConfig controls the turn loop: round budget, prompt history window,
// inter-turn cooldowns, and the agent-side retry policy.
type DebateConfig struct {
	MaxRounds     int           `mapstructure:"max_rounds" yaml:"max_rounds"`
	HistoryWindow int           `mapstructure:"history_window" yaml:"history_window"`
	// Cooldowns exist to respect an external quota; they are a hard minimum,
	// not a suggestion. Tests inject a no-op sleeper instead of zeroing them.
	AgentPause     time.Duration `mapstructure:"agent_pause" yaml:"agent_pause"`
	ModeratorPause time.Duration `mapstructure:"moderator_pause" yaml:"moderator_pause"`
	RetryAttempts  int           `mapstructure:"retry_attempts" yaml:"retry_attempts"`
	RateLimitPause time.Duration `mapstructure:"rate_limit_pause" yaml:"rate_limit_pause"`
	TransientPause time.Duration `mapstructure:"transient_pause" yaml:"transient_pause"`
}

// PostgresConfig holds connection details for the optional Postgres audit sink.
type PostgresConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	DBName   string `mapstructure:"dbname" yaml:"dbname"`
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode"`
}

// EvaluationConfig parameterizes the LLM judge. Temperature stays at 0 for
// deterministic decoding; it is a field only so tests can assert it.
type EvaluationConfig struct {
	Model       string         `mapstructure:"model" yaml:"model"`
	Temperature float32        `mapstructure:"temperature" yaml:"temperature"`
	MaxRetries  int            `mapstructure:"max_retries" yaml:"max_retries"`
	RetryDelay  time.Duration  `mapstructure:"retry_delay" yaml:"retry_delay"`
	NRuns       int            `mapstructure:"n_runs" yaml:"n_runs"`
	LogDir      string         `mapstructure:"log_dir" yaml:"log_dir"`
	Store       string         `mapstructure:"store" yaml:"store"`
	Postgres    PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
}

// PersonaConfig overrides one persona's identity and instruction text.
type PersonaConfig struct {
	Name           string `mapstructure:"name" yaml:"name"`
	Instruction    string `mapstructure:"instruction" yaml:"instruction"`
	TargetAudience string `mapstructure:"target_audience" yaml:"target_audience"`
	Grounded       bool   `mapstructure:"grounded" yaml:"grounded"`
}

// SetDefaults initializes default values on the given viper instance.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "debatesim")
	v.SetDefault("logger.log_file", "debatesim.log")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- LLM --
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.model", "gemini-2.5-flash")
	v.SetDefault("llm.api_timeout", "90s")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 1000)
	v.SetDefault("llm.embed_model", "text-embedding-004")
	v.SetDefault("llm.requests_per_minute", 10.0)

	// -- Retrieval --
	v.SetDefault("retrieval.enabled", true)
	v.SetDefault("retrieval.base_url", "http://localhost:8000")
	v.SetDefault("retrieval.collection", "knowledge_base")
	v.SetDefault("retrieval.top_k", 3)
	v.SetDefault("retrieval.timeout", "15s")

	// -- Debate --
	v.SetDefault("debate.max_rounds", 2)
	v.SetDefault("debate.history_window", 6)
	v.SetDefault("debate.agent_pause", "20s")
	v.SetDefault("debate.moderator_pause", "5s")
	v.SetDefault("debate.retry_attempts", 3)
	v.SetDefault("debate.rate_limit_pause", "30s")
	v.SetDefault("debate.transient_pause", "5s")

	// -- Evaluation --
	v.SetDefault("evaluation.model", "gemini-2.5-pro")
	v.SetDefault("evaluation.temperature", 0.0)
	v.SetDefault("evaluation.max_retries", 3)
	v.SetDefault("evaluation.retry_delay", "2s")
	v.SetDefault("evaluation.n_runs", 5)
	v.SetDefault("evaluation.log_dir", "logs/evaluation")
	v.SetDefault("evaluation.store", "file")
	v.SetDefault("evaluation.postgres.host", "localhost")
	v.SetDefault("evaluation.postgres.port", 5432)
	v.SetDefault("evaluation.postgres.user", "postgres")
	v.SetDefault("evaluation.postgres.password", "") // Set via env var.
	v.SetDefault("evaluation.postgres.dbname", "debatesim")
	v.SetDefault("evaluation.postgres.sslmode", "disable")
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with defaults only.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper builds and validates a configuration from a viper
// instance that has already read files, env and flags.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	// Bind environment variables for sensitive data.
	_ = v.BindEnv("llm.api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("evaluation.postgres.password", "DEBATESIM_PG_PASSWORD")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Viper's BindEnv does not always surface values through Unmarshal for
	// keys absent from the config file; read them directly as a fallback.
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Evaluation.Postgres.Password == "" {
		cfg.Evaluation.Postgres.Password = os.Getenv("DEBATESIM_PG_PASSWORD")
	}

	// Expand "~" in paths the user is likely to hand us.
	if expanded, err := homedir.Expand(cfg.Evaluation.LogDir); err == nil {
		cfg.Evaluation.LogDir = expanded
	}
	if expanded, err := homedir.Expand(cfg.Logger.LogFile); err == nil {
		cfg.Logger.LogFile = expanded
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Debate.MaxRounds <= 0 {
		return fmt.Errorf("debate.max_rounds must be a positive integer")
	}
	if c.Debate.HistoryWindow <= 0 {
		return fmt.Errorf("debate.history_window must be a positive integer")
	}
	if c.Debate.RetryAttempts <= 0 {
		return fmt.Errorf("debate.retry_attempts must be a positive integer")
	}
	if c.Retrieval.Enabled && c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be a positive integer")
	}
	if err := c.Evaluation.Validate(); err != nil {
		return fmt.Errorf("evaluation configuration invalid: %w", err)
	}
	return nil
}

// Validate checks the judge settings.
func (e *EvaluationConfig) Validate() error {
	if e.Temperature != 0 {
		return fmt.Errorf("evaluation.temperature must be 0 for reproducible judging")
	}
	if e.MaxRetries <= 0 {
		return fmt.Errorf("evaluation.max_retries must be a positive integer")
	}
	if e.NRuns <= 0 {
		return fmt.Errorf("evaluation.n_runs must be a positive integer")
	}
	switch e.Store {
	case "file", "postgres":
	default:
		return fmt.Errorf("evaluation.store must be 'file' or 'postgres', got %q", e.Store)
	}
	return nil
}
