package styling

import (
	"regexp"
	"strings"
)

// maxSuggestions caps how many styles are returned per analysis.
const maxSuggestions = 5

// suggestionRule matches analysis text against one family of styles.
type suggestionRule struct {
	pattern *regexp.Regexp
	styles  []string
}

// Rules run in order; the first rule to add a style wins its position.
var suggestionRules = []suggestionRule{
	{regexp.MustCompile(`columns|pediment|entablature|symmetry|classical`), []string{"Classical Greek", "Neoclassical", "Renaissance"}},
	{regexp.MustCompile(`arches|vault|dome|curved`), []string{"Roman", "Byzantine", "Romanesque", "Gothic"}},
	{regexp.MustCompile(`glass|curtain|minimal|clean|geometric`), []string{"International Style", "Minimalist", "Mid-Century Modern"}},
	{regexp.MustCompile(`ornament|decorative|elaborate|curves|dramatic`), []string{"Baroque", "Victorian", "Art Deco"}},
	{regexp.MustCompile(`concrete|raw|massive|brutalist`), []string{"Brutalist"}},
	{regexp.MustCompile(`wood|timber|natural`), []string{"Craftsman Bungalow", "Arts and Crafts"}},
	{regexp.MustCompile(`brick|traditional`), []string{"Colonial Revival", "Georgian"}},
}

var fallbackStyles = []string{
	"Art Deco", "Minimalist", "Postmodern", "Victorian", "Tudor Revival",
	"Mediterranean Revival", "Prairie School", "Contemporary",
}

// SuggestStyles derives a ranked, deduplicated set of architectural styles
// from the detected elements and summary text. Deterministic: the same
// input always yields the same ordered output.
func SuggestStyles(detectedElements []string, summary string) []string {
	lowered := make([]string, 0, len(detectedElements))
	for _, el := range detectedElements {
		lowered = append(lowered, strings.ToLower(el))
	}
	combined := strings.Join(lowered, " ") + " " + strings.ToLower(summary)

	picks := []string{}
	seen := map[string]bool{}
	push := func(style string) {
		if !seen[style] {
			seen[style] = true
			picks = append(picks, style)
		}
	}

	for _, rule := range suggestionRules {
		if rule.pattern.MatchString(combined) {
			for _, style := range rule.styles {
				push(style)
			}
		}
	}

	for _, style := range fallbackStyles {
		if len(picks) >= maxSuggestions {
			break
		}
		push(style)
	}

	if len(picks) > maxSuggestions {
		picks = picks[:maxSuggestions]
	}
	return picks
}
