package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"

// OpenAIAnalyzer implements Analyzer against the OpenAI chat completions API.
type OpenAIAnalyzer struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	rand     Rand
}

// OpenAIOption customizes an OpenAIAnalyzer.
type OpenAIOption func(*OpenAIAnalyzer)

// WithOpenAIEndpoint overrides the completions endpoint, used in tests.
func WithOpenAIEndpoint(endpoint string) OpenAIOption {
	return func(a *OpenAIAnalyzer) { a.endpoint = endpoint }
}

// WithOpenAIRand overrides the confidence random source.
func WithOpenAIRand(r Rand) OpenAIOption {
	return func(a *OpenAIAnalyzer) { a.rand = r }
}

// NewOpenAIAnalyzer constructs an analyzer using the provided API key and model.
func NewOpenAIAnalyzer(apiKey, model string, timeout time.Duration, opts ...OpenAIOption) *OpenAIAnalyzer {
	if strings.TrimSpace(model) == "" {
		model = "gpt-4o-mini"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	a := &OpenAIAnalyzer{
		apiKey:   apiKey,
		model:    model,
		endpoint: defaultOpenAIEndpoint,
		client:   &http.Client{Timeout: timeout},
		rand:     DefaultRand(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeBytes sends the image as a base64 data URL and parses the strict-JSON reply.
func (a *OpenAIAnalyzer) AnalyzeBytes(ctx context.Context, data []byte, mimeType string) (Analysis, error) {
	if len(data) == 0 {
		return Analysis{}, fmt.Errorf("vision: empty image data")
	}
	if len(data) > MaxImageBytes {
		return Analysis{}, fmt.Errorf("vision: image exceeds %d bytes", MaxImageBytes)
	}
	mime := detectMime(data, mimeType)
	dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))

	payload := map[string]any{
		"model": a.model,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": analysisPrompt},
					{"type": "image_url", "image_url": map[string]string{"url": dataURL}},
				},
			},
		},
		"temperature":     0.2,
		"response_format": map[string]string{"type": "json_object"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Analysis{}, fmt.Errorf("vision: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return Analysis{}, fmt.Errorf("vision: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return Analysis{}, fmt.Errorf("vision: perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var failure struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		return Analysis{}, fmt.Errorf("vision: openai status %d: %s", resp.StatusCode, failure.Error.Message)
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return Analysis{}, fmt.Errorf("vision: decode response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return Analysis{}, fmt.Errorf("vision: no choices returned")
	}

	raw, err := parseAnalysisJSON(strings.TrimSpace(completion.Choices[0].Message.Content))
	if err != nil {
		return Analysis{}, fmt.Errorf("vision: %w", err)
	}

	result, _, err := Normalize(raw)
	if err != nil {
		return Analysis{}, fmt.Errorf("vision: %w", err)
	}
	result.Confidence = confidenceScore(a.rand)
	return result, nil
}
