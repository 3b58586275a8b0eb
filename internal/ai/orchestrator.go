// internal/ai/orchestrator.go
package ai

import (
	"context"
	"time"

	"fleet-backoffice/internal/common/config"
	httpclient "fleet-backoffice/internal/common/http"
	"fleet-backoffice/internal/common/logger"
	"fleet-backoffice/internal/common/observability"
)

const defaultProvider = "groq"

// Orchestrator routes generation tasks to a preferred provider and retries
// once against a fixed fallback partner. It holds no mutable state, so
// concurrent Execute calls are safe and isolated.
type Orchestrator struct {
	cfg      config.AIConfig
	client   httpDoer
	adapters map[string]providerFunc
	logger   logger.Logger
	tracing  *observability.Tracing
}

func NewOrchestrator(cfg config.AIConfig, log logger.Logger, tracing *observability.Tracing) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		client:   httpclient.NewClient(30 * time.Second),
		adapters: providerAdapters,
		logger:   log.WithFields(map[string]interface{}{"component": "ai-orchestrator"}),
		tracing:  tracing,
	}
}

// Execute runs one generation task: primary attempt, then at most one
// fallback attempt. It returns the generated text and true on success, or
// ("", false) when both attempts fail. It never returns an error; callers
// must treat false as "no content produced" and show a static fallback.
func (o *Orchestrator) Execute(ctx context.Context, task TaskType, prompt, systemContext string) (string, bool) {
	fullContext := BuildSystemContext(systemContext)
	params := requestParams{
		Prompt:        prompt,
		SystemContext: fullContext,
		MaxTokens:     o.cfg.MaxTokens,
		Temperature:   o.cfg.Temperature,
	}

	primary := o.cfg.TaskRouting[string(task)]
	if primary == "" {
		o.logger.Warn("unknown task type, using default provider", map[string]interface{}{
			"taskType": task,
			"provider": defaultProvider,
		})
		primary = defaultProvider
	}

	if result := o.attempt(ctx, task, primary, params); result.Success {
		return result.Content, true
	}

	fallback := o.cfg.Fallbacks[primary]
	if fallback == "" {
		fallback = defaultFallback(primary)
	}

	result := o.attempt(ctx, task, fallback, params)
	if !result.Success {
		o.logger.Error("all providers failed", map[string]interface{}{
			"taskType": task,
			"primary":  primary,
			"fallback": fallback,
		})
		return "", false
	}
	return result.Content, true
}

// attempt invokes one provider adapter and records telemetry for the
// attempt regardless of outcome.
func (o *Orchestrator) attempt(ctx context.Context, task TaskType, provider string, params requestParams) Result {
	adapter, ok := o.adapters[provider]
	if !ok {
		o.logger.Error("no adapter registered for provider", map[string]interface{}{"provider": provider})
		return failure(nil)
	}

	spanCtx, span := o.tracing.StartSpan(ctx, "ai.generate", map[string]string{
		"taskType": string(task),
		"provider": provider,
	})
	start := time.Now()
	result := adapter(spanCtx, o.client, o.cfg.Provider(provider), params)
	elapsed := time.Since(start)
	span.End()

	o.recordAttempt(task, provider, result, elapsed)
	return result
}

// defaultFallback is the two-way toggle between the first two providers;
// anything else falls back to openai. Kept as the product behaves today,
// pending an explicit pairing decision for gemini.
func defaultFallback(primary string) string {
	if primary == "openai" {
		return "groq"
	}
	return "openai"
}
