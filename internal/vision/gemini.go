package vision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiAnalyzer implements Analyzer via the Gemini API.
type GeminiAnalyzer struct {
	apiKey  string
	model   string
	timeout time.Duration
	rand    Rand
}

// NewGeminiAnalyzer constructs a Gemini-backed image analyzer.
func NewGeminiAnalyzer(apiKey, model string, timeout time.Duration) *GeminiAnalyzer {
	model = strings.TrimPrefix(strings.TrimSpace(model), "models/")
	if model == "" {
		model = "gemini-1.5-flash-001"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GeminiAnalyzer{
		apiKey:  apiKey,
		model:   model,
		timeout: timeout,
		rand:    DefaultRand(),
	}
}

// AnalyzeBytes runs analysis directly on uploaded image data.
func (g *GeminiAnalyzer) AnalyzeBytes(ctx context.Context, data []byte, mimeType string) (Analysis, error) {
	if g == nil || strings.TrimSpace(g.apiKey) == "" {
		return Analysis{}, fmt.Errorf("vision: gemini analyzer unavailable")
	}
	if len(data) == 0 {
		return Analysis{}, fmt.Errorf("vision: empty image data")
	}
	if len(data) > MaxImageBytes {
		return Analysis{}, fmt.Errorf("vision: image exceeds %d bytes", MaxImageBytes)
	}

	childCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	client, err := genai.NewClient(childCtx, &genai.ClientConfig{APIKey: g.apiKey})
	if err != nil {
		return Analysis{}, fmt.Errorf("vision: create genai client: %w", err)
	}

	parts := []*genai.Part{
		genai.NewPartFromText(analysisPrompt),
		genai.NewPartFromBytes(data, detectMime(data, mimeType)),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.2),
		ResponseMIMEType: "application/json",
	}

	resp, err := client.Models.GenerateContent(childCtx, g.model, contents, config)
	if err != nil {
		return Analysis{}, fmt.Errorf("vision: gemini request: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return Analysis{}, fmt.Errorf("vision: empty gemini response")
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			text = part.Text
			break
		}
	}
	if strings.TrimSpace(text) == "" {
		return Analysis{}, fmt.Errorf("vision: gemini returned no text")
	}

	raw, err := parseAnalysisJSON(strings.TrimSpace(text))
	if err != nil {
		return Analysis{}, fmt.Errorf("vision: %w", err)
	}

	result, _, err := Normalize(raw)
	if err != nil {
		return Analysis{}, fmt.Errorf("vision: %w", err)
	}
	result.Confidence = confidenceScore(g.rand)
	return result, nil
}
