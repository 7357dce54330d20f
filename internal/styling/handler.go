package styling

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stylematch/internal/events"
	"stylematch/internal/generation"
	"stylematch/internal/media"
	"stylematch/internal/storage"
	"stylematch/internal/vision"
)

// Handler exposes the analyze and style-match pipeline over HTTP.
type Handler struct {
	Analyzer    vision.Analyzer
	Transformer generation.Transformer
	Artifacts   media.Persister
	Store       storage.Store
	Events      *events.Broker

	MaxUploadBytes      int64
	Production          bool
	OpenAIConfigured    bool
	ReplicateConfigured bool

	Log *zap.Logger
}

// AnalyzeResponse is the payload returned by POST /api/analyze.
type AnalyzeResponse struct {
	PhotoType        string   `json:"photoType"`
	Angle            string   `json:"angle"`
	Confidence       float64  `json:"confidence"`
	DetectedElements []string `json:"detectedElements"`
	SuggestedStyles  []string `json:"suggestedStyles"`
}

// StyleMatchResponse is the payload returned by POST /api/style-match.
type StyleMatchResponse struct {
	OutputURL string `json:"outputUrl"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Analyze handles POST /api/analyze.
func (h Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	data, mime, ok := h.readImage(w, r)
	if !ok {
		return
	}

	h.Log.Info("analyzing image", zap.String("mime", mime), zap.Int("bytes", len(data)))

	analysis, err := h.Analyzer.AnalyzeBytes(r.Context(), data, mime)
	if err != nil {
		h.Log.Error("analysis failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, err, "vision analysis pipeline")
		return
	}

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		PhotoType:        analysis.PhotoType,
		Angle:            analysis.Angle,
		Confidence:       analysis.Confidence,
		DetectedElements: analysis.DetectedElements,
		SuggestedStyles:  SuggestStyles(analysis.DetectedElements, analysis.Summary),
	})
}

// StyleMatch handles POST /api/style-match.
func (h Handler) StyleMatch(w http.ResponseWriter, r *http.Request) {
	data, mime, ok := h.readImage(w, r)
	if !ok {
		return
	}

	styleName := strings.TrimSpace(r.FormValue("styleName"))
	if styleName == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing styleName parameter"})
		return
	}

	// The client may echo back an earlier analysis; treat it as opaque and
	// fall back to no context when it does not parse.
	var summary string
	if raw := r.FormValue("analysis"); raw != "" {
		var analysis vision.Analysis
		if err := json.Unmarshal([]byte(raw), &analysis); err == nil {
			summary = analysis.Summary
		}
	}

	requestID := uuid.NewString()
	prompt := BuildPrompt(styleName, summary)
	h.Log.Info("generating style transformation",
		zap.String("request_id", requestID),
		zap.String("style", styleName))
	h.publish(events.Event{RequestID: requestID, StyleName: styleName, Status: events.StatusQueued})

	h.publish(events.Event{RequestID: requestID, StyleName: styleName, Status: events.StatusGenerating})
	result, err := h.Transformer.Transform(r.Context(), generation.Request{
		Prompt:   prompt,
		Image:    data,
		MimeType: mime,
	})
	if err != nil {
		h.Log.Error("style generation failed", zap.String("request_id", requestID), zap.Error(err))
		h.publish(events.Event{RequestID: requestID, StyleName: styleName, Status: events.StatusFailed, Error: err.Error()})
		h.writeError(w, http.StatusInternalServerError, err, "image generation pipeline")
		return
	}

	h.publish(events.Event{RequestID: requestID, StyleName: styleName, Status: events.StatusSaving})
	stored, err := h.Artifacts.Persist(r.Context(), media.Artifact{
		StyleName: styleName,
		SourceURL: result.SourceURL,
		Data:      result.Data,
	})
	if err != nil {
		h.Log.Error("artifact persistence failed", zap.String("request_id", requestID), zap.Error(err))
		h.publish(events.Event{RequestID: requestID, StyleName: styleName, Status: events.StatusFailed, Error: err.Error()})
		h.writeError(w, http.StatusInternalServerError, err, "artifact persistence")
		return
	}

	if h.Store != nil {
		if _, err := h.Store.RecordGeneration(r.Context(), storage.Generation{
			ID:            requestID,
			StyleName:     styleName,
			Prompt:        prompt,
			SourceSummary: summary,
			OutputURL:     stored.URL,
		}); err != nil {
			// History is best effort; the artifact itself is already durable.
			h.Log.Warn("record generation failed", zap.String("request_id", requestID), zap.Error(err))
		}
	}

	h.publish(events.Event{RequestID: requestID, StyleName: styleName, Status: events.StatusDone, OutputURL: stored.URL})
	h.Log.Info("artifact stored", zap.String("request_id", requestID), zap.String("url", stored.URL))

	writeJSON(w, http.StatusOK, StyleMatchResponse{OutputURL: stored.URL})
}

// Health handles GET /api/health.
func (h Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services": map[string]bool{
			"openai":    h.OpenAIConfigured,
			"replicate": h.ReplicateConfigured,
		},
	})
}

// ListGenerations handles GET /api/generations.
func (h Handler) ListGenerations(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeJSON(w, http.StatusOK, map[string]any{"generations": []storage.Generation{}})
		return
	}
	generations, err := h.Store.ListGenerations(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err, "generation history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"generations": generations})
}

// StreamEvents handles GET /api/events as a server-sent event stream.
func (h Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	if h.Events == nil {
		http.Error(w, "event stream inactive", http.StatusServiceUnavailable)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := h.Events.Subscribe()
	defer h.Events.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case evt := <-ch:
			payload, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// readImage extracts and buffers the uploaded image, writing the 400
// response itself when the upload is missing or oversized.
func (h Handler) readImage(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	maxBytes := h.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = vision.MaxImageBytes
	}

	if err := r.ParseMultipartForm(maxBytes + (1 << 20)); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("could not parse form: %v", err)})
		return nil, "", false
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No image uploaded"})
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "could not read file"})
		return nil, "", false
	}
	if len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No image uploaded"})
		return nil, "", false
	}
	if int64(len(data)) > maxBytes {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("file exceeds %d bytes", maxBytes)})
		return nil, "", false
	}

	return data, header.Header.Get("Content-Type"), true
}

func (h Handler) publish(evt events.Event) {
	if h.Events != nil {
		h.Events.Publish(evt)
	}
}

func (h Handler) writeError(w http.ResponseWriter, status int, err error, stage string) {
	resp := errorResponse{Error: err.Error()}
	if !h.Production {
		resp.Details = stage
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
