// Command agenthub runs the multi-agent invocation service.
package main

import (
	"fmt"
	"os"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/nextnine/agenthub/agent"
	"github.com/nextnine/agenthub/client"
	"github.com/nextnine/agenthub/config"
	"github.com/nextnine/agenthub/engine"
	"github.com/nextnine/agenthub/history"
	"github.com/nextnine/agenthub/logging"
	"github.com/nextnine/agenthub/model"
	"github.com/nextnine/agenthub/model/anthropic"
	"github.com/nextnine/agenthub/model/openai"
	"github.com/nextnine/agenthub/server"
	"github.com/nextnine/agenthub/tool"
	"github.com/nextnine/agenthub/workdocs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "agenthub: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	logger := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: os.Stderr,
	})

	agentsFile, err := config.LoadAgentsFile(cfg.AgentsFile, logger)
	if err != nil {
		return fmt.Errorf("load agents: %w", err)
	}

	docs, err := workdocs.NewManager(cfg.WorkdocsDir, cfg.ProjectName, logger)
	if err != nil {
		return fmt.Errorf("init workdocs: %w", err)
	}

	store, err := history.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("init history store: %w", err)
	}
	defer store.Close()

	registry := tool.NewRegistry(logger)
	nameOf := func(agentID string) string {
		if def, err := agentsFile.Get(agentID); err == nil {
			return def.Name
		}
		return agentID
	}
	if err := tool.RegisterCommonTools(registry, docs, nameOf); err != nil {
		return err
	}

	backend, err := buildBackend(cfg)
	if err != nil {
		return err
	}
	logger.Info("model.backend", "provider", backend.Info().Provider, "name", backend.Info().Name)

	dispatcher := tool.NewDispatcher(registry, tool.DispatcherConfig{
		MaxParallel: cfg.ToolMaxParallel,
		CallTimeout: cfg.ToolTimeout,
	}, logger)
	eng := engine.New(backend, registry, dispatcher, docs, logger)

	// Delegation sub-calls loop back through our own HTTP API so a delegated
	// invocation gets the full persistence and session handling path.
	invoker := client.New(client.Options{BaseURL: cfg.SelfURL})

	handler := server.NewHandler(server.HandlerOptions{
		AgentsFile: agentsFile,
		Store:      store,
		Docs:       docs,
		Registry:   registry,
		Engine:     eng,
		Deps: agent.ToolsetDeps{
			Docs:    docs,
			Invoker: invoker,
			Logger:  logger,
		},
		Logger: logger,
	})

	e := server.NewEcho(handler)
	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("server.listening", "addr", addr)
	return e.Start(addr)
}

func buildBackend(cfg *config.Config) (model.Model, error) {
	switch cfg.ModelProvider {
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.ModelName != "" {
				o.Model = anthropicsdk.Model(cfg.ModelName)
			}
		}), nil
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			if cfg.ModelName != "" {
				o.Model = cfg.ModelName
			}
		}), nil
	case "mock":
		return model.NewMockModel("mock"), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.ModelProvider)
	}
}
