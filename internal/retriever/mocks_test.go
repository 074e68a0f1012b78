package retriever

import (
	"context"
	"strings"
	"sync"
	"time"

	"benefits-rag/internal/embedding"
)

const mockDimension = 64

// mockProvider assigns each distinct token its own vector axis, so
// similarity reflects token overlap exactly.
type mockProvider struct {
	mu    sync.Mutex
	vocab map[string]int
	err   error
}

func newMockProvider() *mockProvider {
	return &mockProvider{vocab: make(map[string]int)}
}

func (m *mockProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	vec := make([]float32, mockDimension)
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	for _, tok := range tokens {
		idx, ok := m.vocab[tok]
		if !ok {
			idx = len(m.vocab) % mockDimension
			m.vocab[tok] = idx
		}
		vec[idx]++
	}
	return vec, nil
}

func (m *mockProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.EmbedQuery(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func newMockEmbedder(provider *mockProvider) *embedding.Service {
	return embedding.NewService(provider, mockDimension, 10000, 2, time.Second)
}
