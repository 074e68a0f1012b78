package rag

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/tmc/langchaingo/llms"

	"benefits-rag/internal/embedding"
	"benefits-rag/internal/index"
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

// mockModel returns a canned response and records the prompt it was
// called with.
type mockModel struct {
	response string
	err      error
	prompt   string
}

func (m *mockModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				m.prompt = text.Text
			}
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.response}},
	}, nil
}

func (m *mockModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	m.prompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

// flakyDeleteStore fails DeleteByIDs for configured ids and delegates
// everything else.
type flakyDeleteStore struct {
	index.Store
	failIDs map[string]error
}

func (s *flakyDeleteStore) DeleteByIDs(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if err, ok := s.failIDs[id]; ok {
			return err
		}
	}
	return s.Store.DeleteByIDs(ctx, ids)
}

var _ index.Store = (*flakyDeleteStore)(nil)
var _ llms.Model = (*mockModel)(nil)
