package di

import (
	"context"
	"errors"
	"fmt"

	"formfill-agent/internal/adapter/tool"
	"formfill-agent/internal/application/port/input"
	"formfill-agent/internal/application/port/output"
	"formfill-agent/internal/application/service"
	"formfill-agent/internal/domain/entity"
	"formfill-agent/internal/infrastructure/browser/rod"
	"formfill-agent/internal/infrastructure/llm/ollama"
	"formfill-agent/internal/infrastructure/llm/openaicompat"
	"formfill-agent/internal/infrastructure/prompts"
	"formfill-agent/internal/usecase/executor"
)

var _ output.AgentFactory = (*AgentFactory)(nil)

var (
	ErrNoCloudBrowser = errors.New("use_cloud_browser requested but BROWSER_CLOUD_URL is not set")
	ErrMissingAPIKey  = errors.New("api key is not set")
)

type (
	browserFunc func(ctx context.Context, cfg rod.BrowserConfig) (output.BrowserPort, error)
	llmFunc     func(model string) (output.LLMPort, error)
)

// AgentFactory builds a fresh browser agent per request: its own browser,
// model client, tool registry and executor.
type AgentFactory struct {
	cfg        Config
	logger     output.LoggerPort
	progress   output.ProgressPort
	newBrowser browserFunc
	newLLM     llmFunc
}

func NewAgentFactory(cfg Config, logger output.LoggerPort, progress output.ProgressPort) *AgentFactory {
	f := &AgentFactory{
		cfg:      cfg,
		logger:   logger,
		progress: progress,
		newBrowser: func(ctx context.Context, bc rod.BrowserConfig) (output.BrowserPort, error) {
			return rod.NewBrowserAdapter(ctx, bc)
		},
	}
	f.newLLM = f.buildLLM
	return f
}

func (f *AgentFactory) NewAgent(ctx context.Context, settings entity.AgentSettings) (output.AgentPort, error) {
	browserCfg := rod.DefaultConfig()
	browserCfg.Headless = settings.Headless
	browserCfg.Timeout = f.cfg.BrowserTimeout
	browserCfg.SlowMotion = f.cfg.BrowserSlowMotion
	browserCfg.NoSandbox = f.cfg.BrowserNoSandbox
	if settings.UseCloudBrowser {
		if f.cfg.BrowserCloudURL == "" {
			return nil, ErrNoCloudBrowser
		}
		browserCfg.RemoteURL = f.cfg.BrowserCloudURL
	}

	llm, err := f.newLLM(settings.Model)
	if err != nil {
		return nil, err
	}

	browser, err := f.newBrowser(ctx, browserCfg)
	if err != nil {
		return nil, err
	}

	registry := service.NewToolRegistry()
	for _, t := range tool.BrowserTools(browser, f.logger, f.cfg.ArtifactDir) {
		registry.Register(t)
	}

	systemPrompt, err := prompts.GenerateSystemPrompt(prompts.SystemPromptTemplate, registry)
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("render system prompt: %w", err)
	}

	opts := []executor.Option{executor.WithMaxIterations(f.cfg.MaxIterations)}
	if f.progress != nil {
		opts = append(opts, executor.WithProgress(f.progress))
	}

	f.logger.Debug("Agent created",
		"model", settings.Model,
		"provider", f.cfg.Provider,
		"headless", settings.Headless,
		"cloud", settings.UseCloudBrowser,
	)

	return &browserAgent{
		executor: executor.New(llm, registry, f.logger, systemPrompt, opts...),
		browser:  browser,
	}, nil
}

func (f *AgentFactory) buildLLM(model string) (output.LLMPort, error) {
	switch f.cfg.Provider {
	case ProviderOpenAI:
		if f.cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY: %w", ErrMissingAPIKey)
		}
		cfg := openaicompat.DefaultConfig(f.cfg.OpenAIAPIKey, model)
		if f.cfg.OpenAIBaseURL != "" {
			cfg.BaseURL = f.cfg.OpenAIBaseURL
		}
		cfg.Logger = f.logger
		return openaicompat.New(cfg), nil
	case ProviderOpenRouter:
		if f.cfg.OpenRouterAPIKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY: %w", ErrMissingAPIKey)
		}
		cfg := openaicompat.DefaultConfig(f.cfg.OpenRouterAPIKey, model)
		cfg.BaseURL = openaicompat.OpenRouterBaseURL
		cfg.Logger = f.logger
		return openaicompat.New(cfg), nil
	default:
		return ollama.New(ollama.Config{
			ServerURL: f.cfg.OllamaServerURL,
			Model:     model,
			Logger:    f.logger,
		})
	}
}

// browserAgent runs the tool loop against one browser and owns it.
type browserAgent struct {
	executor input.TaskExecutor
	browser  output.BrowserPort
}

func (a *browserAgent) Run(ctx context.Context, task string) (entity.Transcript, error) {
	res, err := a.executor.Execute(ctx, task)
	if err != nil {
		return nil, err
	}
	return res.Transcript, nil
}

func (a *browserAgent) Close() {
	a.browser.Close()
}
