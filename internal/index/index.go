// Package index defines the vector store capability interface shared by
// the swappable store adapters, plus the ranking rules common to all of
// them.
package index

import (
	"context"
	"sort"

	"benefits-rag/internal/models"
)

// Entry is one document or chunk submitted for indexing.
type Entry struct {
	Content  string
	Metadata models.Metadata
}

// Store holds (vector, text, metadata) triples and supports similarity
// search with metadata filtering. Adds embed their text through the
// store's embedding service; each stored entry carries its assigned id in
// metadata under models.MetaDocumentID.
type Store interface {
	// Add embeds and stores one entry, returning the assigned id.
	Add(ctx context.Context, content string, metadata models.Metadata) (string, error)

	// AddBatch embeds all entries (batch embedding is all-or-nothing)
	// then stores every entry, returning the assigned ids in order.
	AddBatch(ctx context.Context, entries []Entry) ([]string, error)

	// DeleteByIDs removes matching entries. Unknown ids are ignored.
	DeleteByIDs(ctx context.Context, ids []string) error

	// Search returns up to k entries whose metadata satisfies all
	// filters and whose similarity to the query vector is at least
	// minScore, ordered by descending score with ties broken by
	// insertion order.
	Search(ctx context.Context, queryVector []float32, k int, filters []models.SearchFilter, minScore float64) ([]models.RetrievedDocument, error)

	// Stats describes the store. DocumentCount is -1 when the store
	// cannot report it.
	Stats(ctx context.Context) (models.IndexStats, error)
}

// Rank applies the common result contract to scored candidates given in
// insertion order: drop entries failing any filter or scoring below
// minScore, sort by descending score keeping insertion order for ties,
// and cap the result at k.
func Rank(candidates []models.RetrievedDocument, k int, filters []models.SearchFilter, minScore float64) []models.RetrievedDocument {
	kept := make([]models.RetrievedDocument, 0, len(candidates))
	for _, c := range candidates {
		if c.Score < minScore {
			continue
		}
		if !models.MatchesFilters(c.Metadata, filters) {
			continue
		}
		kept = append(kept, c)
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })

	if k > 0 && len(kept) > k {
		kept = kept[:k]
	}
	return kept
}
