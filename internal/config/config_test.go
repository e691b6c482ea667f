package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, int64(4096), cfg.LLM.MaxTokens)
	assert.InDelta(t, 2.0, cfg.LLM.RequestsPerSecond, 0.001)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 1, cfg.Crawl.QuickDepth)
	assert.Equal(t, 1, cfg.Crawl.QuickMaxLinks)
	assert.Equal(t, 3, cfg.Crawl.DeepDepth)
	assert.Equal(t, 5, cfg.Crawl.DeepMaxLinks)
	assert.Equal(t, 15*time.Second, cfg.Crawl.CrawlTimeout())
	assert.Empty(t, cfg.Crawl.ExcludePaths)
	assert.Equal(t, 5, cfg.Google.NumResults)
	assert.Equal(t, "https://r.jina.ai", cfg.Jina.BaseURL)
	assert.Equal(t, "sonar-pro", cfg.Perplexity.Model)
	assert.Equal(t, 10*time.Second, cfg.SummarizeRetryDelay())
	assert.Equal(t, 2*time.Second, cfg.ProfileRetryDelay())
	assert.True(t, filepath.IsAbs(cfg.Export.Dir))
	assert.Equal(t, AppName, filepath.Base(cfg.Export.Dir))
	assert.Equal(t, "json", cfg.Export.Format)
	assert.Equal(t, time.Hour, cfg.SessionTTL())
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
llm:
  provider: gemini
log:
  level: debug
  format: console
server:
  port: 9090
crawl:
  deep_depth: 2
  exclude_paths: ["/blog/*"]
export:
  dir: /tmp/intel
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Crawl.DeepDepth)
	assert.Equal(t, []string{"/blog/*"}, cfg.Crawl.ExcludePaths)
	assert.Equal(t, "/tmp/intel", cfg.Export.Dir)
	// Defaults still apply for unset values
	assert.Equal(t, 5, cfg.Crawl.DeepMaxLinks)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("INTEL_LOG_LEVEL", "warn")
	t.Setenv("INTEL_CRAWL_QUICK_DEPTH", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 2, cfg.Crawl.QuickDepth)
}

func TestLoadLegacyEnvNames(t *testing.T) {
	chdirTemp(t)

	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Setenv("GOOGLE_CSE_ID", "cse")
	t.Setenv("ANTHROPIC_API_KEY", "legacy")
	t.Setenv("INTEL_ANTHROPIC_KEY", "prefixed")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "g-key", cfg.Google.Key)
	assert.Equal(t, "cse", cfg.Google.CSEID)
	assert.Equal(t, "prefixed", cfg.Anthropic.Key)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("INTEL_JINA_KEY=from-dotenv\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("INTEL_JINA_KEY") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Jina.Key)
}

func TestLoadBadYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("llm: [unclosed"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crawl:\n  deep_depth: 4\nexport:\n  format: yaml\n"), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Crawl.DeepDepth)
	assert.Equal(t, "yaml", cfg.Export.Format)
	assert.Equal(t, 1, cfg.Crawl.QuickDepth)
}

func TestLoadFile_Missing(t *testing.T) {
	dir := chdirTemp(t)

	_, err := LoadFile(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.LLM.Provider = "anthropic"
	cfg.Google.NumResults = 5
	cfg.Crawl.TimeoutSecs = 15
	cfg.Crawl.MaxBodyKB = 512
	cfg.Crawl.MaxChars = 30000
	cfg.Server.Port = 8080
	cfg.Export.Format = "json"
	cfg.Log.Format = "json"
	return cfg
}

func TestValidateAnalyze(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate(ModeAnalyze)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key is required")

	cfg.Anthropic.Key = "sk-ant"
	assert.NoError(t, cfg.Validate(ModeAnalyze))
}

func TestValidateFind_NeedsSearch(t *testing.T) {
	cfg := validDefaults()
	cfg.Anthropic.Key = "sk-ant"

	err := cfg.Validate(ModeFind)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "google.key")

	cfg.Jina.Key = "jina"
	assert.NoError(t, cfg.Validate(ModeFind))

	cfg.Jina.Key = ""
	cfg.Google.Key = "g"
	cfg.Google.CSEID = "cx"
	assert.NoError(t, cfg.Validate(ModeServe))
}

func TestValidateGeminiKey(t *testing.T) {
	cfg := validDefaults()
	cfg.LLM.Provider = "gemini"
	cfg.Anthropic.Key = "sk-ant"

	err := cfg.Validate(ModeAnalyze)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini.key is required")

	cfg.Gemini.Key = "g"
	assert.NoError(t, cfg.Validate(ModeAnalyze))
}

func TestValidateFieldConstraints(t *testing.T) {
	cfg := validDefaults()
	cfg.Anthropic.Key = "sk-ant"

	cfg.LLM.Provider = "mistral"
	assert.Error(t, cfg.Validate(ModeAnalyze))
	cfg.LLM.Provider = "anthropic"

	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate(ModeAnalyze))
	cfg.Server.Port = 8080

	cfg.Google.NumResults = 11
	assert.Error(t, cfg.Validate(ModeAnalyze))
	cfg.Google.NumResults = 5

	cfg.Crawl.DeepDepth = -1
	assert.Error(t, cfg.Validate(ModeAnalyze))
	cfg.Crawl.DeepDepth = 3

	cfg.Export.Format = "xml"
	assert.Error(t, cfg.Validate(ModeAnalyze))
	cfg.Export.Format = "yaml"

	cfg.Jina.BaseURL = "not a url"
	assert.Error(t, cfg.Validate(ModeAnalyze))
	cfg.Jina.BaseURL = ""

	assert.NoError(t, cfg.Validate(ModeAnalyze))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
