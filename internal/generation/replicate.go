package generation

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

const defaultReplicateBaseURL = "https://api.replicate.com/v1"

// ReplicateTransformer runs image-to-image generation on Replicate.
type ReplicateTransformer struct {
	token        string
	model        string
	baseURL      string
	client       *http.Client
	seeds        SeedSource
	pollInterval time.Duration
}

// ReplicateOption customizes a ReplicateTransformer.
type ReplicateOption func(*ReplicateTransformer)

// WithReplicateBaseURL overrides the API base URL, used in tests.
func WithReplicateBaseURL(url string) ReplicateOption {
	return func(t *ReplicateTransformer) { t.baseURL = strings.TrimSuffix(url, "/") }
}

// WithReplicateSeeds overrides the seed source.
func WithReplicateSeeds(s SeedSource) ReplicateOption {
	return func(t *ReplicateTransformer) { t.seeds = s }
}

// WithReplicatePollInterval overrides the poll delay, used in tests.
func WithReplicatePollInterval(d time.Duration) ReplicateOption {
	return func(t *ReplicateTransformer) { t.pollInterval = d }
}

// NewReplicateTransformer constructs a transformer for the given model,
// e.g. "black-forest-labs/flux-dev".
func NewReplicateTransformer(token, model string, opts ...ReplicateOption) *ReplicateTransformer {
	if strings.TrimSpace(model) == "" {
		model = "black-forest-labs/flux-dev"
	}
	t := &ReplicateTransformer{
		token:        token,
		model:        model,
		baseURL:      defaultReplicateBaseURL,
		client:       &http.Client{Timeout: 120 * time.Second},
		seeds:        DefaultSeeds(),
		pollInterval: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type prediction struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Output any    `json:"output"`
	Error  string `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

// Transform submits a prediction and waits for its output URL.
func (t *ReplicateTransformer) Transform(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return Result{}, fmt.Errorf("generation: prompt is required")
	}
	if len(req.Image) == 0 {
		return Result{}, fmt.Errorf("generation: image is required")
	}

	mime := req.MimeType
	if mime == "" {
		mime = "image/jpeg"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(req.Image))

	payload := map[string]any{
		"input": map[string]any{
			"prompt":              req.Prompt,
			"image":               dataURL,
			"strength":            Strength,
			"guidance":            Guidance,
			"num_inference_steps": InferenceSteps,
			"seed":                t.seeds.IntN(maxSeed),
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("generation: marshal payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s/predictions", t.baseURL, t.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("generation: new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+t.token)
	// Ask the API to hold the connection until the prediction settles.
	httpReq.Header.Set("Prefer", "wait")

	pred, err := t.doPrediction(httpReq)
	if err != nil {
		return Result{}, err
	}

	for !terminal(pred.Status) {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-time.After(t.pollInterval):
		}
		pred, err = t.getPrediction(ctx, pred.URLs.Get)
		if err != nil {
			return Result{}, err
		}
	}

	if pred.Status != "succeeded" {
		msg := pred.Error
		if msg == "" {
			msg = pred.Status
		}
		return Result{}, fmt.Errorf("generation: prediction %s: %s", pred.ID, msg)
	}

	url := firstOutputURL(pred.Output)
	if url == "" {
		return Result{}, fmt.Errorf("generation: %w", ErrNoImage)
	}
	return Result{SourceURL: url}, nil
}

func (t *ReplicateTransformer) doPrediction(req *http.Request) (prediction, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		return prediction{}, fmt.Errorf("generation: perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var failure struct {
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		return prediction{}, fmt.Errorf("generation: replicate status %d: %s", resp.StatusCode, failure.Detail)
	}

	var pred prediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return prediction{}, fmt.Errorf("generation: decode prediction: %w", err)
	}
	return pred, nil
}

func (t *ReplicateTransformer) getPrediction(ctx context.Context, url string) (prediction, error) {
	if url == "" {
		return prediction{}, fmt.Errorf("generation: prediction has no poll URL")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return prediction{}, fmt.Errorf("generation: new poll request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.token)
	return t.doPrediction(req)
}

func terminal(status string) bool {
	switch status {
	case "succeeded", "failed", "canceled":
		return true
	}
	return false
}

// firstOutputURL handles the provider returning either a single URL or a list.
func firstOutputURL(output any) string {
	switch v := output.(type) {
	case string:
		return v
	case []any:
		if len(v) == 0 {
			return ""
		}
		if s, ok := v[0].(string); ok {
			return s
		}
	}
	return ""
}
