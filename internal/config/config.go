// Package config handles application configuration from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/predictcheck/hindsight/internal/models"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	LLM        LLMConfig        `yaml:"llm"`
	Search     SearchConfig     `yaml:"search"`
	Verify     VerifyConfig     `yaml:"verify"`
	Transcribe TranscribeConfig `yaml:"transcribe"`
	Download   DownloadConfig   `yaml:"download"`
	RateLimits RateLimitConfig  `yaml:"rate_limits"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LLMConfig struct {
	Provider       string `yaml:"provider"` // openai, perplexity
	Model          string `yaml:"model"`
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	PerplexityKey  string `yaml:"perplexity_api_key"`
	PerplexityURL  string `yaml:"perplexity_base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type SearchConfig struct {
	Provider string        `yaml:"provider"` // serpapi, duckduckgo
	SerpAPI  SerpAPIConfig `yaml:"serpapi"`
}

type SerpAPIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

type VerifyConfig struct {
	Mode              models.VerifyMode `yaml:"mode"` // evidence or integrated
	MaxSnippets       int               `yaml:"max_snippets"`
	Concurrency       int               `yaml:"concurrency"`
	Strict            bool              `yaml:"strict"` // abort batch on first failure
	MaxRetries        uint              `yaml:"max_retries"`
	RequestsPerSecond float64           `yaml:"requests_per_second"`
}

type TranscribeConfig struct {
	Model string `yaml:"model"`
}

type DownloadConfig struct {
	Dir    string `yaml:"dir"`
	Binary string `yaml:"binary"` // yt-dlp executable
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Database: DatabaseConfig{
			Path: "./data/hindsight.db",
		},
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o",
			PerplexityURL:  "https://api.perplexity.ai",
			TimeoutSeconds: 60,
		},
		Search: SearchConfig{
			Provider: "serpapi",
			SerpAPI: SerpAPIConfig{
				BaseURL: "https://serpapi.com/search",
			},
		},
		Verify: VerifyConfig{
			Mode:              models.ModeEvidence,
			MaxSnippets:       3,
			Concurrency:       1,
			MaxRetries:        2,
			RequestsPerSecond: 2,
		},
		Transcribe: TranscribeConfig{
			Model: "whisper-1",
		},
		Download: DownloadConfig{
			Dir:    "./downloads",
			Binary: "yt-dlp",
		},
		RateLimits: RateLimitConfig{
			RequestsPerMinute: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s (run generate-config to create one)", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Interpolate environment variables
	content := interpolateEnvVars(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault reads the config file when present and falls back to
// defaults populated from the environment otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	cfg := DefaultConfig()
	cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	cfg.LLM.PerplexityKey = os.Getenv("PERPLEXITY_API_KEY")
	cfg.Search.SerpAPI.APIKey = os.Getenv("SERPAPI_KEY")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GenerateSample creates a sample configuration file.
func GenerateSample(path string) error {
	sample := `# Hindsight configuration
# Credentials are resolved once at startup; ${VAR} references are replaced
# from the environment.

server:
  port: 8080

database:
  path: ./data/hindsight.db

llm:
  provider: openai  # openai or perplexity
  model: gpt-4o
  api_key: ${OPENAI_API_KEY}
  timeout_seconds: 60

  # For the integrated-retrieval pipeline (verify.mode: integrated):
  # provider: perplexity
  # model: sonar-reasoning-pro
  perplexity_api_key: ${PERPLEXITY_API_KEY}
  perplexity_base_url: https://api.perplexity.ai

search:
  provider: serpapi  # serpapi or duckduckgo
  serpapi:
    api_key: ${SERPAPI_KEY}
    base_url: https://serpapi.com/search

verify:
  mode: evidence     # evidence (search + classify) or integrated (retrieval built in)
  max_snippets: 3
  concurrency: 1     # >1 enables bounded parallel verification
  strict: false      # true aborts the batch on the first claim failure
  max_retries: 2
  requests_per_second: 2

transcribe:
  model: whisper-1

download:
  dir: ./downloads
  binary: yt-dlp

rate_limits:
  requests_per_minute: 60

logging:
  level: info    # debug, info, warn, error
  format: console # json or console
`
	return os.WriteFile(path, []byte(sample), 0644)
}

// Validate checks that the configuration is valid and that every credential
// the selected pipeline needs is present. Missing credentials are reported
// here, before any claim is processed.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	switch c.LLM.Provider {
	case "openai", "perplexity":
	default:
		return fmt.Errorf("unsupported LLM provider: %s", c.LLM.Provider)
	}

	switch c.Verify.Mode {
	case models.ModeEvidence, models.ModeIntegrated:
	default:
		return fmt.Errorf("unsupported verify mode: %s", c.Verify.Mode)
	}

	if c.Verify.MaxSnippets < 1 {
		return fmt.Errorf("verify.max_snippets must be at least 1")
	}
	if c.Verify.Concurrency < 1 {
		return fmt.Errorf("verify.concurrency must be at least 1")
	}

	// Extraction, transcription, and narrative generation always go through
	// OpenAI, so its key is required regardless of mode.
	if unresolved(c.LLM.APIKey) {
		return models.NewConfigurationError("llm.api_key", "OpenAI API key is required (set OPENAI_API_KEY)")
	}

	if c.Verify.Mode == models.ModeIntegrated && unresolved(c.LLM.PerplexityKey) {
		return models.NewConfigurationError("llm.perplexity_api_key", "Perplexity API key is required for integrated mode (set PERPLEXITY_API_KEY)")
	}

	if c.Verify.Mode == models.ModeEvidence && c.Search.Provider == "serpapi" && unresolved(c.Search.SerpAPI.APIKey) {
		return models.NewConfigurationError("search.serpapi.api_key", "SerpAPI key is required for evidence mode (set SERPAPI_KEY)")
	}

	switch c.Search.Provider {
	case "serpapi", "duckduckgo":
	default:
		return fmt.Errorf("unsupported search provider: %s", c.Search.Provider)
	}

	return nil
}

// unresolved reports whether a credential is empty or a ${VAR} reference that
// was never replaced because the variable is unset.
func unresolved(v string) bool {
	return v == "" || strings.HasPrefix(v, "${")
}

// interpolateEnvVars replaces ${VAR_NAME} with environment variable values.
func interpolateEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		varName := strings.TrimPrefix(strings.TrimSuffix(match, "}"), "${")
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return match // Keep original if not set
	})
}
