package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/catalogd/internal/domain"
	"github.com/kailas-cloud/catalogd/internal/metrics"
)

// maxTerms caps the synonyms accepted from one completion.
const maxTerms = 10

const systemPrompt = "You expand search queries for a data catalog of data contracts and data products " +
	"in English and Portuguese. Reply with a JSON array of at most 10 lowercase single-word " +
	"synonyms or closely related terms for the user's query. Reply with the array only."

// Expander asks an OpenAI-compatible chat model for query synonyms.
type Expander struct {
	client   *openai.Client
	model    string
	user     string
	provider string
}

// Config holds the expander provider settings.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	User     string
	Provider string
}

// NewExpander creates an OpenAI-compatible semantic expander.
func NewExpander(cfg *Config) *Expander {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Expander{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		user:     cfg.User,
		provider: cfg.Provider,
	}
}

// Expand returns extra search terms for query and the tokens billed for them.
func (e *Expander) Expand(ctx context.Context, query string) (domain.Expansion, error) {
	req := openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
		Temperature: 0,
		User:        e.user,
	}

	start := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		e.count("error")
		return domain.Expansion{}, parseAPIError(err)
	}
	metrics.ExpanderRequestDuration.WithLabelValues(e.provider, e.model).Observe(time.Since(start).Seconds())
	metrics.ExpanderTokensTotal.WithLabelValues(e.provider, e.model).Add(float64(resp.Usage.TotalTokens))

	out := domain.Expansion{
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}
	if len(resp.Choices) == 0 {
		e.count("error")
		return out, fmt.Errorf("empty completion response: %w", domain.ErrExpanderProviderError)
	}

	out.Terms, err = parseTerms(resp.Choices[0].Message.Content)
	if err != nil {
		e.count("error")
		return out, err
	}
	e.count("success")
	return out, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Expander) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func (e *Expander) count(status string) {
	metrics.ExpanderRequestsTotal.WithLabelValues(e.provider, e.model, status).Inc()
}

// parseTerms decodes the JSON array a model replied with. Models sometimes
// wrap it in a markdown code fence or add prose around it.
func parseTerms(content string) ([]string, error) {
	start := strings.IndexByte(content, '[')
	end := strings.LastIndexByte(content, ']')
	if start < 0 || end < start {
		return nil, fmt.Errorf("completion is not a JSON array: %w", domain.ErrExpanderProviderError)
	}

	var raw []string
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("decode completion terms: %v: %w", err, domain.ErrExpanderProviderError)
	}

	seen := make(map[string]struct{}, len(raw))
	terms := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
		if len(terms) == maxTerms {
			break
		}
	}
	return terms, nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrExpanderProviderError.
func parseAPIError(err error) error {
	wrap := domain.ErrExpanderProviderError

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("expander request: %w: %w", err, wrap)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("expander API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("expander API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("expander API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("expander request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body (Nebius error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
