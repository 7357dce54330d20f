package styling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestStyles_ClassicalElements(t *testing.T) {
	styles := SuggestStyles([]string{"Columns", "Pediment", "marble facade"}, "A symmetric classical building")

	require.NotEmpty(t, styles)
	assert.Equal(t, "Classical Greek", styles[0])
	assert.Contains(t, styles, "Neoclassical")
	assert.Contains(t, styles, "Renaissance")
	assert.Len(t, styles, 5)
}

func TestSuggestStyles_FallbackPadding(t *testing.T) {
	// No rule matches, so the fallback list fills all five slots in order.
	styles := SuggestStyles(nil, "a plain photograph of a field")

	assert.Equal(t, []string{"Art Deco", "Minimalist", "Postmodern", "Victorian", "Tudor Revival"}, styles)
}

func TestSuggestStyles_MissingElementsStillPadsToFive(t *testing.T) {
	styles := SuggestStyles(nil, "")
	assert.Len(t, styles, 5)
	assertNoDuplicates(t, styles)
}

func TestSuggestStyles_NoDuplicates(t *testing.T) {
	// "curved" triggers the arch rule and "curves" the ornate rule; "minimal"
	// and "ornament" overlap with the fallback list entries.
	styles := SuggestStyles(
		[]string{"curved arches", "ornament", "minimal glass", "concrete", "wood", "brick"},
		"elaborate decorative dramatic classical symmetry",
	)

	assert.LessOrEqual(t, len(styles), 5)
	assert.GreaterOrEqual(t, len(styles), 1)
	assertNoDuplicates(t, styles)
}

func TestSuggestStyles_Deterministic(t *testing.T) {
	elements := []string{"glass curtain wall", "steel frame"}
	summary := "a minimal geometric tower"

	first := SuggestStyles(elements, summary)
	second := SuggestStyles(elements, summary)

	assert.Equal(t, first, second)
}

func TestSuggestStyles_OrderOfFirstMatchWins(t *testing.T) {
	// Arch rule runs before the ornate rule, so Roman leads even though the
	// text also matches "dramatic".
	styles := SuggestStyles([]string{"arches"}, "dramatic dome")

	assert.Equal(t, "Roman", styles[0])
	assert.Contains(t, styles, "Baroque")
}

func assertNoDuplicates(t *testing.T, styles []string) {
	t.Helper()
	seen := map[string]bool{}
	for _, s := range styles {
		assert.False(t, seen[s], "duplicate style %q", s)
		seen[s] = true
	}
}
