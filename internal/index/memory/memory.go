// Package memory is an in-process brute-force vector store. It is the
// reference Store implementation and the default for tests and local use.
package memory

import (
	"context"
	"fmt"
	"sync"

	"benefits-rag/internal/embedding"
	"benefits-rag/internal/helper"
	"benefits-rag/internal/index"
	"benefits-rag/internal/models"
)

type entry struct {
	id       string
	content  string
	metadata models.Metadata
	vector   []float32
}

// Store keeps entries in insertion order and scores searches with exact
// cosine similarity.
type Store struct {
	mu       sync.RWMutex
	embedder *embedding.Service
	entries  []entry
}

// NewStore creates an empty in-memory store backed by the embedder.
func NewStore(embedder *embedding.Service) *Store {
	return &Store{embedder: embedder}
}

// Add embeds content and stores it under a new id.
func (s *Store) Add(ctx context.Context, content string, metadata models.Metadata) (string, error) {
	vector, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return "", err
	}
	if !s.embedder.IsValidDimension(vector) {
		return "", fmt.Errorf("%w: vector of length %d rejected by index", models.ErrDimensionMismatch, len(vector))
	}

	id, err := helper.GenerateUUID()
	if err != nil {
		return "", err
	}

	md := models.NormalizeMetadata(metadata)
	md[models.MetaDocumentID] = id

	s.mu.Lock()
	s.entries = append(s.entries, entry{id: id, content: content, metadata: md, vector: vector})
	s.mu.Unlock()
	return id, nil
}

// AddBatch embeds all entries first (all-or-nothing), then stores each
// under a new id.
func (s *Store) AddBatch(ctx context.Context, entries []index.Entry) ([]string, error) {
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Content
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(entries))
	stored := make([]entry, len(entries))
	for i, e := range entries {
		if !s.embedder.IsValidDimension(vectors[i]) {
			return nil, fmt.Errorf("%w: vector of length %d rejected by index", models.ErrDimensionMismatch, len(vectors[i]))
		}
		id, err := helper.GenerateUUID()
		if err != nil {
			return nil, err
		}
		md := models.NormalizeMetadata(e.Metadata)
		md[models.MetaDocumentID] = id
		ids[i] = id
		stored[i] = entry{id: id, content: e.Content, metadata: md, vector: vectors[i]}
	}

	s.mu.Lock()
	s.entries = append(s.entries, stored...)
	s.mu.Unlock()
	return ids, nil
}

// DeleteByIDs removes matching entries; unknown ids are ignored.
func (s *Store) DeleteByIDs(ctx context.Context, ids []string) error {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0]
	for _, e := range s.entries {
		if _, found := drop[e.id]; !found {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	return nil
}

// Search scores every entry against the query vector and returns the
// ranked, filtered top k.
func (s *Store) Search(ctx context.Context, queryVector []float32, k int, filters []models.SearchFilter, minScore float64) ([]models.RetrievedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates := make([]models.RetrievedDocument, 0, len(s.entries))
	for _, e := range s.entries {
		score, err := embedding.CosineSimilarity(queryVector, e.vector)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, models.RetrievedDocument{
			ID:       e.id,
			Content:  e.content,
			Score:    score,
			Metadata: e.metadata,
		})
	}

	return index.Rank(candidates, k, filters, minScore), nil
}

// Stats reports the entry count and embedding dimension.
func (s *Store) Stats(ctx context.Context) (models.IndexStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.IndexStats{
		DocumentCount:    int64(len(s.entries)),
		Dimension:        s.embedder.Dimension(),
		SimilarityMetric: "cosine",
		StoreType:        "memory",
	}, nil
}
