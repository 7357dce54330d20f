package styling

import (
	"fmt"
	"strings"
)

// stylePrompts maps known style names to their transformation descriptions.
var stylePrompts = map[string]string{
	"Classical Greek":     "Ancient Greek architecture with Doric, Ionic, or Corinthian columns, pediments, entablature, marble materials, symmetrical proportions",
	"Roman":               "Roman architecture with arches, domes, concrete construction, aqueducts, amphitheater elements, classical orders",
	"Gothic":              "Gothic architecture with pointed arches, flying buttresses, ribbed vaults, tall spires, large windows, stone tracery",
	"Renaissance":         "Renaissance architecture with classical proportions, symmetry, domes, pilasters, rusticated stonework, harmonious design",
	"Baroque":             "Baroque architecture with dramatic curves, ornate decoration, gilded details, dynamic movement, theatrical grandeur",
	"Victorian":           "Victorian architecture with ornate details, bay windows, decorative trim, asymmetrical facades, mixed materials",
	"Art Deco":            "Art Deco architecture with geometric patterns, vertical emphasis, metallic accents, stylized ornamentation, luxury materials",
	"Mid-Century Modern":  "Mid-century modern architecture with clean lines, large windows, flat roofs, natural materials, integration with landscape",
	"Brutalist":           "Brutalist architecture with raw concrete, massive geometric forms, repetitive angular elements, fortress-like appearance",
	"International Style": "International style architecture with glass curtain walls, steel frame, minimal ornamentation, functional design",
	"Minimalist":          "Minimalist architecture with simple geometric forms, clean lines, neutral colors, unadorned surfaces, emphasis on space and light",
}

// StyleDescription resolves a style name to its prompt description, falling
// back to a generic period-correct template for unknown styles.
func StyleDescription(styleName string) string {
	if desc, ok := stylePrompts[styleName]; ok {
		return desc
	}
	return fmt.Sprintf("%s architectural style with appropriate period-correct details and materials", styleName)
}

// BuildPrompt assembles the transformation instruction sent to the image
// generator. The segment order is fixed; the context segment appears only
// when a prior analysis summary exists.
func BuildPrompt(styleName, analysisSummary string) string {
	contextSegment := ""
	if strings.TrimSpace(analysisSummary) != "" {
		contextSegment = fmt.Sprintf("Original building context: %s", analysisSummary)
	}

	segments := []string{
		fmt.Sprintf("Transform this building into %s.", StyleDescription(styleName)),
		"Preserve the original building structure, massing, and proportions.",
		"Maintain the camera angle and perspective.",
		"Focus on changing facade materials, architectural details, and ornamental elements.",
		"Keep the surrounding context and landscape unchanged.",
		contextSegment,
		"Ensure architectural accuracy and historical authenticity for the chosen style.",
		"High quality architectural rendering, professional photography style.",
	}

	kept := segments[:0]
	for _, segment := range segments {
		if segment != "" {
			kept = append(kept, segment)
		}
	}
	return strings.Join(kept, " ")
}
