// internal/ai/providers.go
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"fleet-backoffice/internal/common/config"
	stderrors "fleet-backoffice/internal/common/errors"
)

// httpDoer is the minimal client surface the adapters need.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// providerFunc is a stateless adapter: build the provider-specific payload,
// issue it, extract the generated text. Any failure becomes a failed Result.
type providerFunc func(ctx context.Context, client httpDoer, cfg config.ProviderConfig, params requestParams) Result

type requestParams struct {
	Prompt        string
	SystemContext string
	MaxTokens     int
	Temperature   float64
}

var providerAdapters = map[string]providerFunc{
	"groq":   callGroq,
	"openai": callOpenAI,
	"gemini": callGemini,
}

// ==========================
// OpenAI-compatible adapters (Groq, OpenAI)
// ==========================

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func callGroq(ctx context.Context, client httpDoer, cfg config.ProviderConfig, params requestParams) Result {
	return callChatCompletions(ctx, client, "groq", cfg, params)
}

func callOpenAI(ctx context.Context, client httpDoer, cfg config.ProviderConfig, params requestParams) Result {
	return callChatCompletions(ctx, client, "openai", cfg, params)
}

func callChatCompletions(ctx context.Context, client httpDoer, name string, cfg config.ProviderConfig, params requestParams) Result {
	if cfg.APIKey == "" {
		return failure(stderrors.NewProviderMissingKeyError(name))
	}

	requestBody := map[string]interface{}{
		"model": cfg.Model,
		"messages": []map[string]string{
			{"role": "system", "content": params.SystemContext},
			{"role": "user", "content": params.Prompt},
		},
		"max_tokens":  params.MaxTokens,
		"temperature": params.Temperature,
	}

	body, _ := json.Marshal(requestBody)
	req, err := http.NewRequestWithContext(ctx, "POST", cfg.BaseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return failure(stderrors.NewProviderRequestFailedError(name, err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := client.Do(req)
	if err != nil {
		return failure(stderrors.NewProviderRequestFailedError(name, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return failure(stderrors.NewProviderBadStatusError(name, resp.StatusCode))
	}

	var parsed chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return failure(stderrors.NewProviderParseFailedError(name, err))
	}

	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return failure(stderrors.NewProviderParseFailedError(name, fmt.Errorf("empty content field")))
	}

	return Result{Success: true, Content: parsed.Choices[0].Message.Content}
}

// ==========================
// Gemini adapter
// ==========================

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func callGemini(ctx context.Context, client httpDoer, cfg config.ProviderConfig, params requestParams) Result {
	const name = "gemini"

	if cfg.APIKey == "" {
		return failure(stderrors.NewProviderMissingKeyError(name))
	}

	requestBody := map[string]interface{}{
		"system_instruction": map[string]interface{}{
			"parts": []map[string]string{{"text": params.SystemContext}},
		},
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": params.Prompt}}},
		},
		"generationConfig": map[string]interface{}{
			"maxOutputTokens": params.MaxTokens,
			"temperature":     params.Temperature,
		},
	}

	body, _ := json.Marshal(requestBody)
	url := fmt.Sprintf("%s/models/%s:generateContent", cfg.BaseURL, cfg.Model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return failure(stderrors.NewProviderRequestFailedError(name, err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", cfg.APIKey)

	resp, err := client.Do(req)
	if err != nil {
		return failure(stderrors.NewProviderRequestFailedError(name, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return failure(stderrors.NewProviderBadStatusError(name, resp.StatusCode))
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return failure(stderrors.NewProviderParseFailedError(name, err))
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 ||
		strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text) == "" {
		return failure(stderrors.NewProviderParseFailedError(name, fmt.Errorf("empty content field")))
	}

	return Result{Success: true, Content: parsed.Candidates[0].Content.Parts[0].Text}
}
