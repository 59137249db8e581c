package internal

import "github.com/starford/grove/internal/llm"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	llmClient llm.Client
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLLMClient overrides the model provider client. Used by tests to
// substitute a scripted client.
func WithLLMClient(c llm.Client) Option {
	return func(a *application) {
		a.llmClient = c
	}
}
