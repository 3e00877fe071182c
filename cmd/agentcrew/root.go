package main

import (
	"fmt"
	"os"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/fatih/color"
	"github.com/hupe1980/agentcrew"
	"github.com/hupe1980/agentcrew/completion"
	anthropicsvc "github.com/hupe1980/agentcrew/completion/anthropic"
	openaisvc "github.com/hupe1980/agentcrew/completion/openai"
	"github.com/hupe1980/agentcrew/config"
	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/deliverable"
	"github.com/hupe1980/agentcrew/logging"
	"github.com/hupe1980/agentcrew/store/sqlite"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/spf13/cobra"
)

var backendFlag string

var rootCmd = &cobra.Command{
	Use:   "agentcrew",
	Short: "Capability-routed project management agents",
	Long: `AgentCrew routes project management requests to specialist agents:
intent classification picks a capability, the registry resolves it to an
agent, and the agent's output is synthesized into one answer. It also runs
turn-bounded competency assessments.

Configuration is read from ~/.config/agentcrew/config.yaml, a project-level
.agentcrew.yaml, and AGENTCREW_* environment variables.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "completion backend (anthropic, openai, mock)")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(agentsCmd)
}

// buildCrew assembles a Crew from the loaded configuration. The returned
// cleanup closes the persistence store, when one is configured.
func buildCrew() (*agentcrew.Crew, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if backendFlag != "" {
		cfg.Backend = backendFlag
	}

	service, err := buildService(cfg)
	if err != nil {
		return nil, nil, err
	}

	logger := logging.NewSlogLogger(parseLogLevel(cfg.Logging.Level), cfg.Logging.Format, false)

	cleanup := func() {}
	var persistence core.PersistenceStore
	if cfg.Storage.DatabasePath != "" {
		store, err := sqlite.Open(cfg.Storage.DatabasePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open session store: %w", err)
		}
		persistence = store
		cleanup = func() { _ = store.Close() }
	}

	var deliverables core.DeliverableStore
	if cfg.Storage.DeliverableDir != "" {
		fileStore, err := deliverable.NewFileStore(cfg.Storage.DeliverableDir)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("open deliverable store: %w", err)
		}
		deliverables = fileStore
	}

	crew := agentcrew.New(service, func(o *agentcrew.Options) {
		o.Persistence = persistence
		o.Deliverables = deliverables
		o.MaxMessages = cfg.Memory.MaxMessages
		o.MaxQuestions = cfg.Evaluation.MaxQuestions
		o.Logger = logger
	})
	if err := crew.RegisterDefaults(); err != nil {
		cleanup()
		return nil, nil, err
	}

	return crew, cleanup, nil
}

func buildService(cfg *config.Config) (completion.Service, error) {
	switch cfg.Backend {
	case "anthropic":
		return anthropicsvc.New(func(o *anthropicsvc.Options) {
			if cfg.Anthropic.APIKey != "" {
				o.APIKey = cfg.Anthropic.APIKey
			}
			if cfg.Anthropic.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Anthropic.Model)
			}
			if cfg.Anthropic.MaxTokens > 0 {
				o.MaxTokens = cfg.Anthropic.MaxTokens
			}
		}), nil
	case "openai":
		var clientOpts []option.RequestOption
		if cfg.OpenAI.APIKey != "" {
			clientOpts = append(clientOpts, option.WithAPIKey(cfg.OpenAI.APIKey))
		}
		client := openai.NewClient(clientOpts...)
		return openaisvc.NewFromClient(&client, func(o *openaisvc.Options) {
			if cfg.OpenAI.Model != "" {
				o.Model = cfg.OpenAI.Model
			}
		}), nil
	case "mock":
		return completion.NewMockService(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (expected anthropic, openai or mock)", cfg.Backend)
	}
}

func parseLogLevel(level string) logging.LogLevel {
	switch level {
	case "debug":
		return logging.LogLevelDebug
	case "warn":
		return logging.LogLevelWarn
	case "error":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}
