package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_RequiredFields(t *testing.T) {
	_, _, err := Normalize(Analysis{Angle: "eye-level"})
	assert.Error(t, err, "summary is required")

	_, _, err = Normalize(Analysis{Summary: "a building"})
	assert.Error(t, err, "angle is required")
}

func TestNormalize_DefaultsApply(t *testing.T) {
	out, defaulted, err := Normalize(Analysis{
		Summary: "a building",
		Angle:   "eye-level",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{}, out.DetectedElements)
	assert.Equal(t, "exterior", out.PhotoType)
	assert.ElementsMatch(t, []string{"detected_elements", "photoType"}, defaulted)
}

func TestNormalize_InvalidEnumsCoerced(t *testing.T) {
	out, defaulted, err := Normalize(Analysis{
		Summary:          "a building",
		Angle:            "sideways",
		DetectedElements: []string{"glass"},
		PhotoType:        "underwater",
	})
	require.NoError(t, err)

	assert.Equal(t, "eye-level", out.Angle)
	assert.Equal(t, "exterior", out.PhotoType)
	assert.ElementsMatch(t, []string{"angle", "photoType"}, defaulted)
}

func TestNormalize_ValidInputUntouched(t *testing.T) {
	in := Analysis{
		Summary:          "a gothic cathedral",
		Angle:            "below",
		DetectedElements: []string{"spires", "tracery"},
		PhotoType:        "exterior",
	}
	out, defaulted, err := Normalize(in)
	require.NoError(t, err)

	assert.Empty(t, defaulted)
	assert.Equal(t, in.Angle, out.Angle)
	assert.Equal(t, in.DetectedElements, out.DetectedElements)
	assert.Equal(t, in.PhotoType, out.PhotoType)
}

func TestParseAnalysisJSON_RescuesWrappedJSON(t *testing.T) {
	text := "Here is the analysis:\n```json\n{\"summary\":\"x\",\"angle\":\"above\"}\n```"
	out, err := parseAnalysisJSON(text)
	require.NoError(t, err)
	assert.Equal(t, "x", out.Summary)
	assert.Equal(t, "above", out.Angle)
}

func TestParseAnalysisJSON_RejectsGarbage(t *testing.T) {
	_, err := parseAnalysisJSON("no json here at all")
	assert.Error(t, err)
}

type fixedRand struct{ v float64 }

func (f fixedRand) Float64() float64 { return f.v }

func TestConfidenceScore_Range(t *testing.T) {
	assert.InDelta(t, 0.85, confidenceScore(fixedRand{0}), 1e-9)
	assert.InDelta(t, 0.95, confidenceScore(fixedRand{0.9999999}), 1e-6)

	for i := 0; i < 100; i++ {
		score := confidenceScore(nil)
		assert.GreaterOrEqual(t, score, 0.85)
		assert.Less(t, score, 0.95)
	}
}
