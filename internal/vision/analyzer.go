package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
)

// MaxImageBytes caps the size of images accepted for analysis.
const MaxImageBytes = 25 * 1024 * 1024

const analysisPrompt = `You are an architectural photo analyst.
Analyze this image and provide:
1. Photo type (interior or exterior)
2. Camera angle (above, below, or eye-level)
3. List 6-10 architectural elements present (materials, facade, columns, arches, roofline, glazing, ornament, etc)
4. Brief summary of the architectural character

Return strict JSON with keys:
- summary (string): brief description
- angle (string): "above", "below", or "eye-level"
- detected_elements (array of strings): architectural elements
- photoType (string): "interior" or "exterior"`

// Analysis captures structured insights about an uploaded photo.
type Analysis struct {
	Summary          string   `json:"summary"`
	Angle            string   `json:"angle"`
	DetectedElements []string `json:"detected_elements"`
	PhotoType        string   `json:"photoType"`
	Confidence       float64  `json:"confidence,omitempty"`

	// DefaultedFields lists fields the model omitted or violated, filled
	// with defaults during normalization. Not serialized.
	DefaultedFields []string `json:"-"`
}

// Analyzer extracts structured insights from building images.
type Analyzer interface {
	AnalyzeBytes(ctx context.Context, data []byte, mimeType string) (Analysis, error)
}

// Rand supplies the randomness behind the cosmetic confidence score.
type Rand interface {
	Float64() float64
}

type defaultRand struct{}

func (defaultRand) Float64() float64 { return rand.Float64() }

// DefaultRand returns the process-wide random source.
func DefaultRand() Rand { return defaultRand{} }

// Normalize validates a raw model analysis and applies defaults.
// summary is required; angle is required and coerced into its allowed set;
// detected_elements defaults to empty; photoType defaults to "exterior".
// The returned slice names every field that was defaulted.
func Normalize(raw Analysis) (Analysis, []string, error) {
	if strings.TrimSpace(raw.Summary) == "" {
		return Analysis{}, nil, fmt.Errorf("analysis missing required field summary")
	}
	if strings.TrimSpace(raw.Angle) == "" {
		return Analysis{}, nil, fmt.Errorf("analysis missing required field angle")
	}

	var defaulted []string
	out := raw

	switch out.Angle {
	case "above", "below", "eye-level":
	default:
		out.Angle = "eye-level"
		defaulted = append(defaulted, "angle")
	}

	if out.DetectedElements == nil {
		out.DetectedElements = []string{}
		defaulted = append(defaulted, "detected_elements")
	}

	switch out.PhotoType {
	case "interior", "exterior":
	default:
		out.PhotoType = "exterior"
		defaulted = append(defaulted, "photoType")
	}

	out.DefaultedFields = defaulted
	return out, defaulted, nil
}

// parseAnalysisJSON decodes the model text, rescuing JSON wrapped in prose.
func parseAnalysisJSON(text string) (Analysis, error) {
	var raw Analysis
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start >= 0 && end > start {
			if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
				return Analysis{}, fmt.Errorf("parse analysis response: %w", err)
			}
		} else {
			return Analysis{}, fmt.Errorf("parse analysis response: %w", err)
		}
	}
	return raw, nil
}

// confidenceScore draws the cosmetic confidence value in [0.85, 0.95).
func confidenceScore(r Rand) float64 {
	if r == nil {
		r = DefaultRand()
	}
	return 0.85 + r.Float64()*0.1
}

func detectMime(data []byte, provided string) string {
	mime := strings.TrimSpace(provided)
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	if !strings.Contains(mime, "image/") {
		return "image/jpeg"
	}
	return mime
}
