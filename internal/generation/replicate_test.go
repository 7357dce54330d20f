package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSeeds struct{ v int }

func (f fixedSeeds) IntN(_ int) int { return f.v }

func TestReplicateTransformer_ImmediateSuccess(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.Equal(t, "wait", r.Header.Get("Prefer"))
		require.True(t, strings.HasSuffix(r.URL.Path, "/models/black-forest-labs/flux-dev/predictions"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "p1",
			"status": "succeeded",
			"output": []string{"https://cdn.example/a.png", "https://cdn.example/b.png"},
		})
	}))
	defer srv.Close()

	tr := NewReplicateTransformer("tok", "",
		WithReplicateBaseURL(srv.URL),
		WithReplicateSeeds(fixedSeeds{424242}))

	result, err := tr.Transform(context.Background(), Request{
		Prompt:   "Transform this building into Gothic.",
		Image:    []byte("imagebytes"),
		MimeType: "image/jpeg",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/a.png", result.SourceURL)

	input := captured["input"].(map[string]any)
	assert.InDelta(t, 0.75, input["strength"].(float64), 1e-9)
	assert.InDelta(t, 4.5, input["guidance"].(float64), 1e-9)
	assert.InDelta(t, 28, input["num_inference_steps"].(float64), 1e-9)
	assert.InDelta(t, 424242, input["seed"].(float64), 1e-9)
	assert.True(t, strings.HasPrefix(input["image"].(string), "data:image/jpeg;base64,"))
}

func TestReplicateTransformer_SingleStringOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "p2",
			"status": "succeeded",
			"output": "https://cdn.example/single.png",
		})
	}))
	defer srv.Close()

	tr := NewReplicateTransformer("tok", "", WithReplicateBaseURL(srv.URL))

	result, err := tr.Transform(context.Background(), Request{Prompt: "p", Image: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/single.png", result.SourceURL)
}

func TestReplicateTransformer_PollsUntilTerminal(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	polls := 0
	mux.HandleFunc("/models/black-forest-labs/flux-dev/predictions", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "p3",
			"status": "processing",
			"urls":   map[string]string{"get": srv.URL + "/predictions/p3"},
		})
	})
	mux.HandleFunc("/predictions/p3", func(w http.ResponseWriter, _ *http.Request) {
		polls++
		status := "processing"
		var output any
		if polls >= 2 {
			status = "succeeded"
			output = []string{"https://cdn.example/done.png"}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "p3",
			"status": status,
			"output": output,
			"urls":   map[string]string{"get": srv.URL + "/predictions/p3"},
		})
	})

	tr := NewReplicateTransformer("tok", "",
		WithReplicateBaseURL(srv.URL),
		WithReplicatePollInterval(time.Millisecond))

	result, err := tr.Transform(context.Background(), Request{Prompt: "p", Image: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/done.png", result.SourceURL)
	assert.GreaterOrEqual(t, polls, 2)
}

func TestReplicateTransformer_EmptyOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "p4",
			"status": "succeeded",
			"output": []string{},
		})
	}))
	defer srv.Close()

	tr := NewReplicateTransformer("tok", "", WithReplicateBaseURL(srv.URL))

	_, err := tr.Transform(context.Background(), Request{Prompt: "p", Image: []byte("x")})
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestReplicateTransformer_FailedPrediction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "p5",
			"status": "failed",
			"error":  "NSFW content detected",
		})
	}))
	defer srv.Close()

	tr := NewReplicateTransformer("tok", "", WithReplicateBaseURL(srv.URL))

	_, err := tr.Transform(context.Background(), Request{Prompt: "p", Image: []byte("x")})
	assert.ErrorContains(t, err, "NSFW content detected")
}

func TestReplicateTransformer_UpstreamErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "billing required"})
	}))
	defer srv.Close()

	tr := NewReplicateTransformer("tok", "", WithReplicateBaseURL(srv.URL))

	_, err := tr.Transform(context.Background(), Request{Prompt: "p", Image: []byte("x")})
	assert.ErrorContains(t, err, "billing required")
}

func TestReplicateTransformer_ValidatesInput(t *testing.T) {
	tr := NewReplicateTransformer("tok", "")

	_, err := tr.Transform(context.Background(), Request{Image: []byte("x")})
	assert.ErrorContains(t, err, "prompt")

	_, err = tr.Transform(context.Background(), Request{Prompt: "p"})
	assert.ErrorContains(t, err, "image")
}

func TestDefaultSeeds_Bounds(t *testing.T) {
	seeds := DefaultSeeds()
	for i := 0; i < 1000; i++ {
		v := seeds.IntN(maxSeed)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, maxSeed)
	}
}
