package engine

import (
	"context"
	"fmt"
	"io"
)

// SelectConfig carries the settings needed to construct an Engine.
type SelectConfig struct {
	Provider      string // "ollama" (default) or "openai"
	OllamaBaseURL string
	OpenAIBaseURL string
	OpenAIAPIKey  string
}

// Select constructs the Engine named by cfg.Provider.
func Select(cfg SelectConfig) (Engine, error) {
	switch cfg.Provider {
	case "", "ollama":
		return NewOllamaEngine(cfg.OllamaBaseURL), nil
	case "openai":
		return NewOpenAIEngine(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown engine provider %q", cfg.Provider)
	}
}

// EnsureReady checks that the Engine is reachable and the required models are
// available. Missing models are pulled automatically with progress output
// written to w; backends that cannot pull fail with the pull error.
func EnsureReady(ctx context.Context, e Engine, w io.Writer, models ...string) error {
	if !e.IsRunning(ctx) {
		return fmt.Errorf("inference engine is not running; please ensure the backend is started")
	}

	seen := make(map[string]bool, len(models))
	for _, model := range models {
		if model == "" || seen[model] {
			continue
		}
		seen[model] = true

		if e.HasModel(ctx, model) {
			fmt.Fprintf(w, "model %s: ready\n", model)
			continue
		}

		fmt.Fprintf(w, "model %s: pulling...\n", model)
		err := e.PullModel(ctx, model, func(p PullProgress) {
			if p.Total > 0 {
				pct := float64(p.Completed) / float64(p.Total) * 100
				fmt.Fprintf(w, "  %s %.0f%%\n", p.Status, pct)
			} else {
				fmt.Fprintf(w, "  %s\n", p.Status)
			}
		})
		if err != nil {
			return fmt.Errorf("pulling model %s: %w", model, err)
		}
		fmt.Fprintf(w, "model %s: ready\n", model)
	}

	return nil
}
