// Package config loads application settings from config.yaml, .env files,
// and INTEL_-prefixed environment variables.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AppName names the XDG data directory.
const AppName = "company-intel"

// Config holds the full application configuration.
type Config struct {
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Gemini     GeminiConfig     `yaml:"gemini" mapstructure:"gemini"`
	Google     GoogleConfig     `yaml:"google" mapstructure:"google"`
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Crawl      CrawlConfig      `yaml:"crawl" mapstructure:"crawl"`
	Summarize  SummarizeConfig  `yaml:"summarize" mapstructure:"summarize"`
	Profile    ProfileConfig    `yaml:"profile" mapstructure:"profile"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Export     ExportConfig     `yaml:"export" mapstructure:"export"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// LLMConfig selects the completion provider.
type LLMConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider" validate:"oneof=anthropic gemini"`
	Model             string  `yaml:"model" mapstructure:"model"`
	MaxTokens         int64   `yaml:"max_tokens" mapstructure:"max_tokens" validate:"gte=0"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gte=0"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// GeminiConfig holds Google Gemini API settings.
type GeminiConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// GoogleConfig holds Custom Search settings.
type GoogleConfig struct {
	Key        string `yaml:"key" mapstructure:"key"`
	CSEID      string `yaml:"cse_id" mapstructure:"cse_id"`
	NumResults int    `yaml:"num_results" mapstructure:"num_results" validate:"gte=1,lte=10"`
}

// JinaConfig holds Jina AI Reader settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url" validate:"omitempty,url"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// CrawlConfig bounds the website crawl.
type CrawlConfig struct {
	QuickDepth    int      `yaml:"quick_depth" mapstructure:"quick_depth" validate:"gte=0"`
	QuickMaxLinks int      `yaml:"quick_max_links" mapstructure:"quick_max_links" validate:"gte=0"`
	DeepDepth     int      `yaml:"deep_depth" mapstructure:"deep_depth" validate:"gte=0"`
	DeepMaxLinks  int      `yaml:"deep_max_links" mapstructure:"deep_max_links" validate:"gte=0"`
	TimeoutSecs   int      `yaml:"timeout_secs" mapstructure:"timeout_secs" validate:"gte=1"`
	MaxBodyKB     int      `yaml:"max_body_kb" mapstructure:"max_body_kb" validate:"gte=1"`
	MaxChars      int      `yaml:"max_chars" mapstructure:"max_chars" validate:"gte=1"`
	UserAgent     string   `yaml:"user_agent" mapstructure:"user_agent"`
	ExcludePaths  []string `yaml:"exclude_paths" mapstructure:"exclude_paths"`
}

// SummarizeConfig configures the summarizer.
type SummarizeConfig struct {
	RetryDelaySecs int `yaml:"retry_delay_secs" mapstructure:"retry_delay_secs" validate:"gte=0"`
}

// ProfileConfig configures LinkedIn profile extraction.
type ProfileConfig struct {
	RetryDelaySecs int `yaml:"retry_delay_secs" mapstructure:"retry_delay_secs" validate:"gte=0"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port              int      `yaml:"port" mapstructure:"port" validate:"gte=1,lte=65535"`
	AllowedOrigins    []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	SessionTTLMinutes int      `yaml:"session_ttl_minutes" mapstructure:"session_ttl_minutes" validate:"gte=0"`
}

// ExportConfig configures where downloads are written.
type ExportConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=json yaml markdown"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=json console"`
}

// legacyEnv maps config keys to the unprefixed variable names commonly
// found in .env files.
var legacyEnv = map[string]string{
	"anthropic.key":  "ANTHROPIC_API_KEY",
	"gemini.key":     "GEMINI_API_KEY",
	"google.key":     "GOOGLE_API_KEY",
	"google.cse_id":  "GOOGLE_CSE_ID",
	"jina.key":       "JINA_API_KEY",
	"perplexity.key": "PERPLEXITY_API_KEY",
}

// Load reads configuration from .env, config.yaml, and the environment.
// INTEL_-prefixed variables take precedence over unprefixed ones.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path searches
// the working directory, then the XDG config directory, for config.yaml.
func LoadFile(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, AppName))
	}

	// Environment
	v.SetEnvPrefix("INTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		if err := v.BindEnv(key, "INTEL_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), legacy); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	// Defaults
	v.SetDefault("llm.provider", "anthropic")
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.requests_per_second", 2)
	v.SetDefault("google.num_results", 5)
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("crawl.quick_depth", 1)
	v.SetDefault("crawl.quick_max_links", 1)
	v.SetDefault("crawl.deep_depth", 3)
	v.SetDefault("crawl.deep_max_links", 5)
	v.SetDefault("crawl.timeout_secs", 15)
	v.SetDefault("crawl.max_body_kb", 512)
	v.SetDefault("crawl.max_chars", 30000)
	v.SetDefault("crawl.exclude_paths", []string{})
	v.SetDefault("summarize.retry_delay_secs", 10)
	v.SetDefault("profile.retry_delay_secs", 2)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.session_ttl_minutes", 60)
	v.SetDefault("export.format", "json")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = filepath.Join(xdg.DataHome, AppName)
	}

	return &cfg, nil
}

// loadEnvFiles loads .env.local then .env; neither is required and
// variables already set in the process win.
func loadEnvFiles() error {
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return eris.Wrapf(err, "config: load %s", f)
		}
	}
	return nil
}

// Validation modes name the command a config must be able to serve.
const (
	ModeFind    = "find"
	ModeAnalyze = "analyze"
	ModeChat    = "chat"
	ModeServe   = "serve"
)

// Validate checks field constraints, then the credentials mode needs.
func (c *Config) Validate(mode string) error {
	if err := validator.New().Struct(c); err != nil {
		return eris.Wrap(err, "config: validate")
	}

	var errs []string
	needLLM, needSearch := false, false
	switch mode {
	case ModeFind:
		needLLM, needSearch = true, true
	case ModeAnalyze:
		needLLM = true
	case ModeChat, ModeServe:
		needLLM, needSearch = true, true
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if needLLM && c.LLMKey() == "" {
		errs = append(errs, c.LLM.Provider+".key is required")
	}
	if needSearch && !c.HasSearch() {
		errs = append(errs, "google.key and google.cse_id, or jina.key, are required")
	}
	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// LLMKey returns the API key for the configured provider.
func (c *Config) LLMKey() string {
	if c.LLM.Provider == "gemini" {
		return c.Gemini.Key
	}
	return c.Anthropic.Key
}

// HasGoogle reports whether Custom Search is configured.
func (c *Config) HasGoogle() bool {
	return c.Google.Key != "" && c.Google.CSEID != ""
}

// HasSearch reports whether any search provider is configured.
func (c *Config) HasSearch() bool {
	return c.HasGoogle() || c.Jina.Key != ""
}

// CrawlTimeout returns the per-page fetch timeout.
func (c CrawlConfig) CrawlTimeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// SummarizeRetryDelay returns the summarizer's rate-limit wait.
func (c *Config) SummarizeRetryDelay() time.Duration {
	return time.Duration(c.Summarize.RetryDelaySecs) * time.Second
}

// ProfileRetryDelay returns the profile extractor's rate-limit wait.
func (c *Config) ProfileRetryDelay() time.Duration {
	return time.Duration(c.Profile.RetryDelaySecs) * time.Second
}

// SessionTTL returns how long an untouched server session is kept.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Server.SessionTTLMinutes) * time.Minute
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
