// Package chunker splits document text into overlapping bounded-size
// chunks used as independent retrieval units.
package chunker

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"benefits-rag/internal/models"
)

// Chunker produces fixed-size character chunks where consecutive chunks
// overlap by a configured number of characters.
type Chunker struct {
	size      int
	overlap   int
	maxChunks int
}

// New validates the chunking parameters. size must be positive and
// overlap must satisfy 0 <= overlap < size. maxChunks <= 0 disables the
// chunk count cap.
func New(size, overlap, maxChunks int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", models.ErrInvalidConfiguration, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap must be in [0, size), got %d", models.ErrInvalidConfiguration, overlap)
	}
	return &Chunker{size: size, overlap: overlap, maxChunks: maxChunks}, nil
}

// Size returns the configured maximum chunk length.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the configured overlap between consecutive chunks.
func (c *Chunker) Overlap() int { return c.overlap }

// MaxChunks returns the configured chunk count cap, or 0 when disabled.
func (c *Chunker) MaxChunks() int { return c.maxChunks }

// Chunk splits text into chunks of at most the configured size. Chunk n+1
// starts size-overlap characters after chunk n, so adjacent chunks share
// exactly overlap characters; the final chunk may be shorter. A result
// exceeding the chunk cap is truncated to the cap, dropping trailing
// chunks.
func (c *Chunker) Chunk(text string) []string {
	if text == "" {
		return nil
	}

	step := c.size - c.overlap
	chunks := make([]string, 0, len(text)/step+1)

	for start := 0; start < len(text); start += step {
		end := start + c.size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
		if end == len(text) {
			break
		}
	}

	if c.maxChunks > 0 && len(chunks) > c.maxChunks {
		log.Warn().Msgf("Text produced %d chunks, truncating to %d", len(chunks), c.maxChunks)
		chunks = chunks[:c.maxChunks]
	}

	return chunks
}
