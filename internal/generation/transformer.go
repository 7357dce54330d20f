package generation

import (
	"context"
	"errors"
	"math/rand/v2"
)

// Fixed generation parameters for the style transformation.
const (
	Strength       = 0.75
	Guidance       = 4.5
	InferenceSteps = 28

	// maxSeed bounds the randomized seed, exclusive.
	maxSeed = 1_000_000
)

// ErrNoImage indicates the provider returned no usable result.
var ErrNoImage = errors.New("no image generated")

// Request carries everything a provider needs for one transformation.
type Request struct {
	Prompt   string
	Image    []byte
	MimeType string
}

// Result references the generated image, either by URL or inline bytes.
type Result struct {
	SourceURL string
	Data      []byte
}

// Transformer runs an image-to-image style transformation.
type Transformer interface {
	Transform(ctx context.Context, req Request) (Result, error)
}

// SeedSource supplies the randomized generation seed.
type SeedSource interface {
	IntN(n int) int
}

type defaultSeeds struct{}

func (defaultSeeds) IntN(n int) int { return rand.IntN(n) }

// DefaultSeeds returns the process-wide seed source.
func DefaultSeeds() SeedSource { return defaultSeeds{} }
