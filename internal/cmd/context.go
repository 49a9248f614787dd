package cmd

import (
	"context"

	"github.com/jmgilman/execkit/internal/config"
	"github.com/jmgilman/execkit/internal/exec"
	"github.com/jmgilman/execkit/internal/history"
	"github.com/jmgilman/execkit/internal/prompt"
)

type contextKey string

const (
	configKey   contextKey = "config"
	loaderKey   contextKey = "loader"
	executorKey contextKey = "executor"
	storeKey    contextKey = "store"
	prompterKey contextKey = "prompter"
)

// WithConfig adds the config to the context.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// ConfigFromContext retrieves the config from context.
func ConfigFromContext(ctx context.Context) *config.Config {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok {
		return nil
	}
	return cfg
}

// WithLoader adds the config loader to the context.
func WithLoader(ctx context.Context, loader *config.Loader) context.Context {
	return context.WithValue(ctx, loaderKey, loader)
}

// LoaderFromContext retrieves the config loader from context.
func LoaderFromContext(ctx context.Context) *config.Loader {
	loader, ok := ctx.Value(loaderKey).(*config.Loader)
	if !ok {
		return nil
	}
	return loader
}

// WithExecutor adds the executor to the context.
func WithExecutor(ctx context.Context, e exec.Executor) context.Context {
	return context.WithValue(ctx, executorKey, e)
}

// ExecutorFromContext retrieves the executor from context.
func ExecutorFromContext(ctx context.Context) exec.Executor {
	e, ok := ctx.Value(executorKey).(exec.Executor)
	if !ok {
		return nil
	}
	return e
}

// WithStore adds the history store to the context.
func WithStore(ctx context.Context, store history.Store) context.Context {
	return context.WithValue(ctx, storeKey, store)
}

// StoreFromContext retrieves the history store from context.
func StoreFromContext(ctx context.Context) history.Store {
	store, ok := ctx.Value(storeKey).(history.Store)
	if !ok {
		return nil
	}
	return store
}

// WithPrompter adds the prompter to the context.
func WithPrompter(ctx context.Context, p prompt.Prompter) context.Context {
	return context.WithValue(ctx, prompterKey, p)
}

// PrompterFromContext retrieves the prompter from context.
func PrompterFromContext(ctx context.Context) prompt.Prompter {
	p, ok := ctx.Value(prompterKey).(prompt.Prompter)
	if !ok {
		return nil
	}
	return p
}
