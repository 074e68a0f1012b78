// Package embedding wraps a langchaingo embedding provider with input
// preprocessing, bounded parallel batch generation and vector math.
package embedding

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"benefits-rag/internal/models"
)

// TruncationMarker is appended to text cut at the provider's input limit.
const TruncationMarker = "..."

// Service converts text into fixed-dimension vectors via an external
// embedding provider.
type Service struct {
	provider  embeddings.Embedder
	dimension int
	maxChars  int
	workers   int
	timeout   time.Duration
}

// Info describes the embedding capability exposed by this service.
type Info struct {
	Dimension     int
	MaxInputChars int
	Workers       int
}

// NewService wraps the provider. dimension is the provider's fixed vector
// size, maxChars its input character limit, workers the parallelism
// bound for batch embedding, timeout the per-call deadline.
func NewService(provider embeddings.Embedder, dimension, maxChars, workers int, timeout time.Duration) *Service {
	if workers <= 0 {
		workers = 1
	}
	return &Service{
		provider:  provider,
		dimension: dimension,
		maxChars:  maxChars,
		workers:   workers,
		timeout:   timeout,
	}
}

// Dimension returns the provider's fixed vector dimension.
func (s *Service) Dimension() int { return s.dimension }

// ModelInfo returns the embedding capability description.
func (s *Service) ModelInfo() Info {
	return Info{Dimension: s.dimension, MaxInputChars: s.maxChars, Workers: s.workers}
}

// Embed generates an embedding for a single text. The text is
// preprocessed first; text that is blank after preprocessing is invalid
// input.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	processed := Preprocess(text, s.maxChars)
	if processed == "" {
		return nil, fmt.Errorf("%w: text is empty after preprocessing", models.ErrInvalidInput)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	log.Debug().Msgf("Generating embedding for text of length %d", len(processed))

	vector, err := s.provider.EmbedQuery(ctx, processed)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding call failed: %v", models.ErrProviderFailure, err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: embedding provider returned no vector", models.ErrProviderFailure)
	}
	return vector, nil
}

// EmbedBatch generates one embedding per input text, preserving order.
// Calls run concurrently on at most the configured number of workers.
// Semantics are all-or-nothing: the call waits for every embedding to
// finish and fails as a whole if any single call failed.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts list is empty", models.ErrInvalidInput)
	}

	log.Debug().Msgf("Generating embeddings for %d texts", len(texts))

	vectors := make([][]float32, len(texts))
	errs := make([]error, len(texts))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	for i, text := range texts {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, text string) {
			defer wg.Done()
			defer func() { <-sem }()
			vectors[i], errs[i] = s.Embed(ctx, text)
		}(i, text)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("embedding text %d of %d: %w", i+1, len(texts), err)
		}
	}
	return vectors, nil
}

// IsValidDimension reports whether the vector has the provider's fixed
// dimension and only finite elements.
func (s *Service) IsValidDimension(vector []float32) bool {
	if len(vector) != s.dimension {
		return false
	}
	for _, v := range vector {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return false
		}
	}
	return true
}

// CosineSimilarity computes dot(a,b) / (|a|*|b|). Vectors of unequal
// length are a dimension mismatch. A zero vector has similarity 0.0 with
// anything; that is defined behavior, not an error.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: vectors have lengths %d and %d", models.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		va, vb := float64(a[i]), float64(b[i])
		dot += va * vb
		normA += va * va
		normB += vb * vb
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Preprocess trims surrounding whitespace, collapses internal whitespace
// runs, strips non-printable control characters and truncates text
// exceeding maxChars, appending a truncation marker.
func Preprocess(text string, maxChars int) string {
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' || r == 0x7F {
			return -1
		}
		return r
	}, text)

	cleaned = strings.Join(strings.Fields(cleaned), " ")

	if maxChars > 0 && len(cleaned) > maxChars {
		log.Warn().Msgf("Text too long (%d), truncating to %d characters", len(cleaned), maxChars)
		cleaned = cleaned[:maxChars] + TruncationMarker
	}
	return cleaned
}
