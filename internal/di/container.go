package di

import (
	"fmt"

	"formfill-agent/internal/application/port/output"
	"formfill-agent/internal/infrastructure/logger"
	"formfill-agent/internal/usecase/formfill"
)

type Container struct {
	Config Config
	Logger output.LoggerPort
}

func NewContainer(cfg Config, name string) (*Container, error) {
	log, err := logger.NewLoggerAdapter(logger.Config{
		Dir:    cfg.LogDir,
		Name:   name,
		Level:  cfg.LogLevel,
		Stderr: cfg.LogStderr,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &Container{Config: cfg, Logger: log}, nil
}

// FormFiller returns the fill-form-and-check service. progress may be nil.
func (c *Container) FormFiller(progress output.ProgressPort) *formfill.Service {
	return formfill.New(NewAgentFactory(c.Config, c.Logger, progress), c.Logger)
}

func (c *Container) Close() {
	if c.Logger != nil {
		_ = c.Logger.Close()
	}
}
