// Package cli implements the formfill command line.
package cli

import (
	"context"
	"fmt"

	"formfill-agent/internal/di"
	"formfill-agent/internal/infrastructure/env"
	"formfill-agent/internal/infrastructure/logger"
	"formfill-agent/internal/usecase/formfill"

	"github.com/spf13/cobra"
)

// app holds what the subcommands share after the root has loaded the
// environment.
type app struct {
	version string
	envDir  string
	noColor bool
	cfg     di.Config
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	envService, err := env.NewEnvService(a.envDir)
	if err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	cfg, err := di.ConfigFromEnv(envService)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	return nil
}

func (a *app) container(name string) (*di.Container, error) {
	c, err := di.NewContainer(a.cfg, name)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return c, nil
}

// offline returns a service for commands that never start an agent.
func (a *app) offline() *formfill.Service {
	return formfill.New(nil, logger.NewNopLogger())
}

// NewRootCmd creates the root formfill command
func NewRootCmd(version string) *cobra.Command {
	a := &app{version: version}

	rootCmd := &cobra.Command{
		Use:   "formfill",
		Short: "Fill web forms with a browser agent and report whether it worked",
		Long: `formfill drives a real browser with an LLM agent to fill a web form, submit it
and check the result. It runs as an MCP tool server (serve) or directly on
request files (run).`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}

	rootCmd.PersistentFlags().StringVar(&a.envDir, "env-dir", ".", "Directory holding .env files")
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newRunCmd(a))
	rootCmd.AddCommand(newComposeCmd(a))
	rootCmd.AddCommand(newClassifyCmd(a))

	return rootCmd
}

// Execute runs the root command
func Execute(ctx context.Context, version string) error {
	return NewRootCmd(version).ExecuteContext(ctx)
}
