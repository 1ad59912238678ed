package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/digest/pkg/domain"
)

// Backend names shared by the memory log and the run store.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendLibSQL = "libsql"
)

// Approval modes.
const (
	ApprovalRandom  = "random"
	ApprovalStatic  = "static"
	ApprovalRule    = "rule"
	ApprovalConsole = "console"
	ApprovalLLM     = "llm"
	ApprovalCommand = "command"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "digest.yaml"

// Config is the full runtime configuration.
type Config struct {
	Log      LogConfig      `yaml:"log" json:"log"`
	Search   SearchConfig   `yaml:"search" json:"search"`
	LLM      LLMConfig      `yaml:"llm" json:"llm"`
	Approval ApprovalConfig `yaml:"approval" json:"approval"`
	Feedback FeedbackConfig `yaml:"feedback" json:"feedback"`
	Memory   StoreConfig    `yaml:"memory" json:"memory"`
	Runs     StoreConfig    `yaml:"runs" json:"runs"`
	Redis    RedisConfig    `yaml:"redis" json:"redis"`
	LibSQL   LibSQLConfig   `yaml:"libsql" json:"libsql"`
	Pipeline PipelineConfig `yaml:"pipeline" json:"pipeline"`
	Server   ServerConfig   `yaml:"server" json:"server"`
	Security SecurityConfig `yaml:"security" json:"security"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

type SearchConfig struct {
	APIKey     string `yaml:"api_key" json:"api_key"`
	BaseURL    string `yaml:"base_url" json:"base_url"`
	MaxResults int    `yaml:"max_results" json:"max_results"`
	Depth      string `yaml:"depth" json:"depth"`
}

type LLMConfig struct {
	APIKey      string  `yaml:"api_key" json:"api_key"`
	BaseURL     string  `yaml:"base_url" json:"base_url"`
	Model       string  `yaml:"model" json:"model"`
	Temperature float64 `yaml:"temperature" json:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" json:"max_tokens"`
}

type ApprovalConfig struct {
	Mode        string  `yaml:"mode" json:"mode"`
	Probability float64 `yaml:"probability" json:"probability"`
	Approve     bool    `yaml:"approve" json:"approve"`
	Rule        string  `yaml:"rule" json:"rule"`

	// Command mode runs an external reviewer with the draft on stdin.
	Command string            `yaml:"command" json:"command"`
	Args    []string          `yaml:"args" json:"args"`
	Env     map[string]string `yaml:"env" json:"env"`
	Timeout time.Duration     `yaml:"timeout" json:"timeout"`
}

type FeedbackConfig struct {
	Positive []string `yaml:"positive" json:"positive"`
	Negative []string `yaml:"negative" json:"negative"`
}

// StoreConfig selects a backend for the memory log or the run store.
// Path is used by the file backend.
type StoreConfig struct {
	Backend string `yaml:"backend" json:"backend"`
	Path    string `yaml:"path" json:"path"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr" json:"addr"`
	Password string        `yaml:"password" json:"password"`
	DB       int           `yaml:"db" json:"db"`
	Prefix   string        `yaml:"prefix" json:"prefix"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
}

type LibSQLConfig struct {
	Path string `yaml:"path" json:"path"`
}

type PipelineConfig struct {
	MaxRetries   int `yaml:"max_retries" json:"max_retries"`
	MaxInputSize int `yaml:"max_input_size" json:"max_input_size"`
}

// SecurityConfig protects stored run records. Keys are 32 bytes encoded as
// base64 or hex.
type SecurityConfig struct {
	EncryptionKey  string   `yaml:"encryption_key" json:"encryption_key"`
	FallbackKeys   []string `yaml:"fallback_keys" json:"fallback_keys"`
	Redact         bool     `yaml:"redact" json:"redact"`
	RedactPatterns []string `yaml:"redact_patterns" json:"redact_patterns"`
}

type ServerConfig struct {
	Port    int  `yaml:"port" json:"port"`
	Metrics bool `yaml:"metrics" json:"metrics"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Log:      LogConfig{Level: "info", Format: "text"},
		Search:   SearchConfig{MaxResults: 5, Depth: "advanced"},
		LLM:      LLMConfig{Model: "gemini-2.0-flash", Temperature: 0.7, MaxTokens: 4000},
		Approval: ApprovalConfig{Mode: ApprovalRandom, Probability: 0.9},
		Memory:   StoreConfig{Backend: BackendFile, Path: "research_memory.jsonl"},
		Runs:     StoreConfig{Backend: BackendFile, Path: ".digest/runs"},
		Redis:    RedisConfig{Addr: "localhost:6379", Prefix: "digest:"},
		LibSQL:   LibSQLConfig{Path: "digest.db"},
		Pipeline: PipelineConfig{MaxRetries: domain.DefaultMaxRetries, MaxInputSize: domain.DefaultMaxInputSize},
		Server:   ServerConfig{Port: 8080, Metrics: true},
	}
}

// Load builds the configuration: defaults, then the config file (YAML or JSON,
// optional when path is empty or DefaultPath), then the env file, then the
// environment.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	explicit := path != "" && path != DefaultPath
	if path == "" {
		path = DefaultPath
	}
	if err := cfg.readFile(path, explicit); err != nil {
		return nil, err
	}

	if envFile != "" {
		// Existing environment variables win over the file.
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides fields from environment variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []string
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", key, err))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", key, err))
				return
			}
			*dst = f
		}
	}

	str("TAVILY_API_KEY", &c.Search.APIKey)
	str("GEMINI_API_KEY", &c.LLM.APIKey)
	str("GEMINI_MODEL", &c.LLM.Model)
	str("GEMINI_API_BASE_URL", &c.LLM.BaseURL)

	str("DIGEST_LOG_LEVEL", &c.Log.Level)
	str("DIGEST_LOG_FORMAT", &c.Log.Format)
	num("DIGEST_MAX_RESULTS", &c.Search.MaxResults)
	str("DIGEST_SEARCH_DEPTH", &c.Search.Depth)
	float("DIGEST_TEMPERATURE", &c.LLM.Temperature)
	num("DIGEST_MAX_TOKENS", &c.LLM.MaxTokens)
	str("DIGEST_APPROVAL", &c.Approval.Mode)
	float("DIGEST_APPROVAL_PROBABILITY", &c.Approval.Probability)
	str("DIGEST_APPROVAL_RULE", &c.Approval.Rule)
	str("DIGEST_APPROVAL_COMMAND", &c.Approval.Command)
	str("DIGEST_MEMORY_BACKEND", &c.Memory.Backend)
	str("DIGEST_MEMORY_FILE", &c.Memory.Path)
	str("DIGEST_RUNS_BACKEND", &c.Runs.Backend)
	str("DIGEST_RUNS_DIR", &c.Runs.Path)
	str("DIGEST_REDIS_ADDR", &c.Redis.Addr)
	str("DIGEST_REDIS_PASSWORD", &c.Redis.Password)
	num("DIGEST_REDIS_DB", &c.Redis.DB)
	str("DIGEST_LIBSQL_PATH", &c.LibSQL.Path)
	num("DIGEST_MAX_RETRIES", &c.Pipeline.MaxRetries)
	num("DIGEST_MAX_INPUT_SIZE", &c.Pipeline.MaxInputSize)
	num("DIGEST_PORT", &c.Server.Port)
	str("DIGEST_ENCRYPTION_KEY", &c.Security.EncryptionKey)
	if v, ok := lookup("DIGEST_REDACT"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("DIGEST_REDACT: %v", err))
		} else {
			c.Security.Redact = b
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Validate reports missing credentials and unusable settings as a
// *domain.ConfigError.
func (c *Config) Validate() error {
	var missing []string

	if c.Search.APIKey == "" {
		missing = append(missing, "TAVILY_API_KEY")
	}
	if c.LLM.APIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}

	switch c.Approval.Mode {
	case ApprovalRandom, ApprovalStatic, ApprovalConsole, ApprovalLLM:
	case ApprovalRule:
		if strings.TrimSpace(c.Approval.Rule) == "" {
			missing = append(missing, "approval.rule")
		}
	case ApprovalCommand:
		if strings.TrimSpace(c.Approval.Command) == "" {
			missing = append(missing, "approval.command")
		}
	default:
		missing = append(missing, fmt.Sprintf("approval.mode (unknown %q)", c.Approval.Mode))
	}

	stores := []struct {
		name string
		sc   StoreConfig
	}{{"memory", c.Memory}, {"runs", c.Runs}}
	for _, st := range stores {
		name, sc := st.name, st.sc
		switch sc.Backend {
		case BackendMemory, BackendRedis, BackendLibSQL:
		case BackendFile:
			if sc.Path == "" {
				missing = append(missing, name+".path")
			}
		default:
			missing = append(missing, fmt.Sprintf("%s.backend (unknown %q)", name, sc.Backend))
		}
	}

	if c.Pipeline.MaxRetries < 0 {
		missing = append(missing, "pipeline.max_retries (must be >= 0)")
	}

	if len(missing) > 0 {
		return &domain.ConfigError{Missing: missing}
	}
	return nil
}

// Uses reports whether backend is selected by the memory log or the run store.
func (c *Config) Uses(backend string) bool {
	return c.Memory.Backend == backend || c.Runs.Backend == backend
}
