package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// ErrEmptyArtifact indicates neither a source URL nor inline bytes were supplied.
var ErrEmptyArtifact = errors.New("artifact has no source URL or data")

// Artifact is a generated image awaiting persistence.
type Artifact struct {
	StyleName string
	SourceURL string
	Data      []byte
}

// Stored captures the canonical key of a persisted artifact and its public URL.
type Stored struct {
	Key string
	URL string
}

// Persister hides the backing implementation for storing generated images.
type Persister interface {
	Persist(ctx context.Context, artifact Artifact) (Stored, error)
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowers the text and collapses non-alphanumeric runs into single
// hyphens, stripping any leading or trailing hyphen.
func Slugify(text string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(text), "-")
	return strings.Trim(slug, "-")
}

// artifactFilename derives the collision-resistant output name,
// e.g. styled_1712345678901_art-deco.png.
func artifactFilename(styleName string, now time.Time) string {
	return fmt.Sprintf("styled_%d_%s.png", now.UnixMilli(), Slugify(styleName))
}

// fetchArtifact downloads the generated image from the provider URL.
func fetchArtifact(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch artifact: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch artifact: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to download generated image: status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return data, nil
}
