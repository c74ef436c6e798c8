package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderScripted = "scripted"
	ProviderDeepSeek = "deepseek"
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"

	SourceStatic = "static"
	SourceLive   = "live"
)

type Config struct {
	ProjectDir string `json:"project_dir" yaml:"project_dir"`
	ResultsDir string `json:"results_dir" yaml:"results_dir"`
	DataDir    string `json:"data_dir" yaml:"data_dir"`
	ImagesDir  string `json:"images_dir" yaml:"images_dir"`

	LLMProvider string `json:"llm_provider" yaml:"llm_provider"`
	LLMModel    string `json:"llm_model" yaml:"llm_model"`
	BackendURL  string `json:"backend_url" yaml:"backend_url"`
	MaxTokens   int    `json:"max_tokens" yaml:"max_tokens"`

	CapabilityMaxAttempts int           `json:"capability_max_attempts" yaml:"capability_max_attempts"`
	CapabilityTimeout     time.Duration `json:"capability_timeout" yaml:"capability_timeout"`

	DataSource string        `json:"data_source" yaml:"data_source"`
	Tickers    []string      `json:"tickers" yaml:"tickers"`
	FredSeries []string      `json:"fred_series" yaml:"fred_series"`
	FredURL    string        `json:"fred_url" yaml:"fred_url"`
	QuoteTTL   time.Duration `json:"quote_ttl" yaml:"quote_ttl"`

	MermaidURL string `json:"mermaid_url" yaml:"mermaid_url"`

	HistoryEnabled bool   `json:"history_enabled" yaml:"history_enabled"`
	HistoryDBPath  string `json:"history_db_path" yaml:"history_db_path"`

	Debug bool `json:"debug" yaml:"debug"`

	// Eino Debug configuration
	EinoDebugEnabled bool `json:"eino_debug_enabled" yaml:"eino_debug_enabled"`
	EinoDebugPort    int  `json:"eino_debug_port" yaml:"eino_debug_port"`

	// AI Model API Keys
	DeepSeekAPIKey string `json:"deepseek_api_key" yaml:"deepseek_api_key"`
	OpenAIAPIKey   string `json:"openai_api_key" yaml:"openai_api_key"`
	GeminiAPIKey   string `json:"gemini_api_key" yaml:"gemini_api_key"`

	FredAPIKey string `json:"fred_api_key" yaml:"fred_api_key"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := DefaultConfigWithRoot(currentDir)

	// Load environment variables from .env file
	_ = godotenv.Load()

	// Override with environment variables if they exist
	cfg.loadFromEnv()

	return cfg
}

// DefaultConfigWithRoot returns the built-in defaults rooted at dir, without
// consulting the environment.
func DefaultConfigWithRoot(dir string) *Config {
	return &Config{
		ProjectDir: dir,
		ResultsDir: filepath.Join(dir, "results"),
		DataDir:    filepath.Join(dir, "data"),
		ImagesDir:  filepath.Join(dir, "images"),

		LLMProvider: ProviderScripted,
		LLMModel:    "",
		BackendURL:  "",
		MaxTokens:   2000,

		CapabilityMaxAttempts: 3,
		CapabilityTimeout:     60 * time.Second,

		DataSource: SourceStatic,
		Tickers:    []string{"AAPL", "GOOGL"},
		FredSeries: []string{"DGS10", "DGS30", "DCOILWTICO"},
		FredURL:    "https://api.stlouisfed.org",
		QuoteTTL:   5 * time.Minute,

		MermaidURL: "https://mermaid.ink",

		HistoryEnabled: true,
		HistoryDBPath:  filepath.Join(dir, "data", "hedgehog.db"),

		EinoDebugEnabled: false,
		EinoDebugPort:    52538,
	}
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := os.Getenv("RESULTS_DIR"); val != "" {
		c.ResultsDir = val
	}
	if val := os.Getenv("DATA_DIR"); val != "" {
		c.DataDir = val
	}
	if val := os.Getenv("IMAGES_DIR"); val != "" {
		c.ImagesDir = val
	}

	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		c.LLMProvider = strings.ToLower(val)
	}
	if val := os.Getenv("LLM_MODEL"); val != "" {
		c.LLMModel = val
	}
	if val := os.Getenv("BACKEND_URL"); val != "" {
		c.BackendURL = val
	}
	if val := os.Getenv("LLM_MAX_TOKENS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxTokens = v
		}
	}

	if val := os.Getenv("CAPABILITY_MAX_ATTEMPTS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.CapabilityMaxAttempts = v
		}
	}
	if val := os.Getenv("CAPABILITY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.CapabilityTimeout = d
		}
	}

	if val := os.Getenv("DATA_SOURCE"); val != "" {
		c.DataSource = strings.ToLower(val)
	}
	if val := os.Getenv("HEDGEHOG_TICKERS"); val != "" {
		c.Tickers = SplitList(val)
	}
	if val := os.Getenv("FRED_SERIES"); val != "" {
		c.FredSeries = SplitList(val)
	}
	if val := os.Getenv("FRED_URL"); val != "" {
		c.FredURL = val
	}
	if val := os.Getenv("MERMAID_URL"); val != "" {
		c.MermaidURL = val
	}

	if val := os.Getenv("HISTORY_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.HistoryEnabled = enabled
		}
	}
	if val := os.Getenv("HISTORY_DB_PATH"); val != "" {
		c.HistoryDBPath = val
	}

	if val := os.Getenv("HEDGEHOG_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}

	if val := os.Getenv("EINO_DEBUG_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.EinoDebugEnabled = enabled
		}
	}
	if val := os.Getenv("EINO_DEBUG_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.EinoDebugPort = port
		}
	}

	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" {
		c.DeepSeekAPIKey = val
	}
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		c.OpenAIAPIKey = val
	}
	if val := os.Getenv("GEMINI_API_KEY"); val != "" {
		c.GeminiAPIKey = val
	}
	if val := os.Getenv("FRED_API_KEY"); val != "" {
		c.FredAPIKey = val
	}
}

// Validate checks the settings that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderScripted, ProviderDeepSeek, ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unsupported llm provider %q", c.LLMProvider)
	}
	switch c.DataSource {
	case SourceStatic, SourceLive:
	default:
		return fmt.Errorf("unsupported data source %q", c.DataSource)
	}
	if c.CapabilityMaxAttempts < 1 {
		return fmt.Errorf("capability_max_attempts must be at least 1, got %d", c.CapabilityMaxAttempts)
	}
	if c.CapabilityTimeout <= 0 {
		return fmt.Errorf("capability_timeout must be positive")
	}
	if c.DataSource == SourceLive && len(c.Tickers) == 0 {
		return fmt.Errorf("live data source needs at least one ticker")
	}
	if c.EinoDebugPort < 0 || c.EinoDebugPort > 65535 {
		return fmt.Errorf("invalid eino debug port %d", c.EinoDebugPort)
	}
	return nil
}

// Model returns the configured model name or the provider's default.
func (c *Config) Model() string {
	if c.LLMModel != "" {
		return c.LLMModel
	}
	switch c.LLMProvider {
	case ProviderDeepSeek:
		return "deepseek-chat"
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderGemini:
		return "gemini-2.5-flash"
	}
	return ""
}

// APIKey returns the credential for the configured provider.
func (c *Config) APIKey() string {
	switch c.LLMProvider {
	case ProviderDeepSeek:
		return c.DeepSeekAPIKey
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderGemini:
		return c.GeminiAPIKey
	}
	return ""
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ProjectDir, c.ResultsDir, c.DataDir, c.ImagesDir}
	if c.HistoryEnabled && c.HistoryDBPath != "" {
		dirs = append(dirs, filepath.Dir(c.HistoryDBPath))
	}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
