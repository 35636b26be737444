package di

import (
	"fmt"
	"strings"
	"time"

	"formfill-agent/internal/application/port/output"
)

type Provider string

const (
	ProviderOllama     Provider = "ollama"
	ProviderOpenAI     Provider = "openai"
	ProviderOpenRouter Provider = "openrouter"
)

type Config struct {
	Provider         Provider
	OllamaServerURL  string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenRouterAPIKey string

	BrowserCloudURL   string
	BrowserTimeout    time.Duration
	BrowserSlowMotion time.Duration
	BrowserNoSandbox  bool

	MaxIterations int
	ArtifactDir   string

	LogDir    string
	LogLevel  string
	LogStderr bool
}

// ConfigFromEnv reads Config from cfg. Provider credentials are checked when
// an agent is built, so commands that never start one work without them.
func ConfigFromEnv(cfg output.ConfigPort) (Config, error) {
	c := Config{
		Provider:         Provider(strings.ToLower(cfg.GetWithDefault("FORMFILL_LLM_PROVIDER", string(ProviderOllama)))),
		OllamaServerURL:  cfg.Get("OLLAMA_SERVER_URL"),
		OpenAIAPIKey:     cfg.Get("OPENAI_API_KEY"),
		OpenAIBaseURL:    cfg.Get("OPENAI_BASE_URL"),
		OpenRouterAPIKey: cfg.Get("OPENROUTER_API_KEY"),

		BrowserCloudURL:   cfg.Get("BROWSER_CLOUD_URL"),
		BrowserTimeout:    cfg.GetDuration("BROWSER_TIMEOUT", 10*time.Second),
		BrowserSlowMotion: cfg.GetDuration("BROWSER_SLOW_MOTION", 0),
		BrowserNoSandbox:  cfg.GetBool("BROWSER_NO_SANDBOX", false),

		MaxIterations: cfg.GetInt("AGENT_MAX_ITERATIONS", 50),
		ArtifactDir:   cfg.GetWithDefault("ARTIFACT_DIR", "artifacts"),

		LogDir:    cfg.GetWithDefault("LOG_DIR", "log"),
		LogLevel:  cfg.GetWithDefault("LOG_LEVEL", "info"),
		LogStderr: cfg.GetBool("LOG_STDERR", false),
	}

	switch c.Provider {
	case ProviderOllama, ProviderOpenAI, ProviderOpenRouter:
	default:
		return Config{}, fmt.Errorf("unknown FORMFILL_LLM_PROVIDER %q (want ollama, openai or openrouter)", c.Provider)
	}
	if c.MaxIterations <= 0 {
		return Config{}, fmt.Errorf("AGENT_MAX_ITERATIONS must be positive, got %d", c.MaxIterations)
	}
	return c, nil
}
