package media

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalPersister stores generated images in a flat local directory served
// under /generated/. Artifacts accumulate indefinitely; there is no
// retention or eviction policy.
type LocalPersister struct {
	dir     string
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// LocalOption customizes a LocalPersister.
type LocalOption func(*LocalPersister)

// WithLocalClock overrides the timestamp source, used in tests.
func WithLocalClock(now func() time.Time) LocalOption {
	return func(p *LocalPersister) { p.now = now }
}

// WithLocalHTTPClient overrides the download client.
func WithLocalHTTPClient(client *http.Client) LocalOption {
	return func(p *LocalPersister) { p.client = client }
}

// NewLocalPersister constructs a persister writing into dir, with public
// URLs joined onto baseURL.
func NewLocalPersister(dir, baseURL string, opts ...LocalOption) (*LocalPersister, error) {
	if dir == "" {
		dir = "generated"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	p := &LocalPersister{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Persist downloads the artifact when only a source URL is given, writes it
// to disk under a timestamp+slug name, and returns the public URL.
func (p *LocalPersister) Persist(ctx context.Context, artifact Artifact) (Stored, error) {
	data := artifact.Data
	if len(data) == 0 {
		if artifact.SourceURL == "" {
			return Stored{}, ErrEmptyArtifact
		}
		var err error
		data, err = fetchArtifact(ctx, p.client, artifact.SourceURL)
		if err != nil {
			return Stored{}, err
		}
	}

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return Stored{}, fmt.Errorf("create output dir: %w", err)
	}

	filename := artifactFilename(artifact.StyleName, p.now())
	path := filepath.Join(p.dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Stored{}, fmt.Errorf("write artifact: %w", err)
	}

	return Stored{
		Key: filename,
		URL: fmt.Sprintf("%s/generated/%s", p.baseURL, filename),
	}, nil
}
