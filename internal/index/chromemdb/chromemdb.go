// Package chromemdb adapts the embedded chromem-go database to the
// index.Store interface.
package chromemdb

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"benefits-rag/internal/embedding"
	"benefits-rag/internal/helper"
	"benefits-rag/internal/index"
	"benefits-rag/internal/models"
)

const compress = false

// Store encapsulates chromem-go database operations behind the Store
// interface. Filters and the score threshold are evaluated here; chromem
// only answers the raw nearest-neighbor query.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   *embedding.Service
}

// NewStore opens (or creates) the database and collection. With inMemory
// set, nothing is persisted to disk.
func NewStore(embedder *embedding.Service, dbPath, collectionName string, inMemory bool) (*Store, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to open database: %v", models.ErrProviderFailure, err)
		}
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create/get collection: %v", models.ErrProviderFailure, err)
	}

	return &Store{db: db, collection: collection, embedder: embedder}, nil
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

	doc := chromem.Document{
		ID:        id,
		Content:   content,
		Metadata:  encodeMetadata(md),
		Embedding: vector,
	}
	if err := s.collection.AddDocuments(ctx, []chromem.Document{doc}, runtime.NumCPU()); err != nil {
		return "", fmt.Errorf("%w: failed to add document: %v", models.ErrProviderFailure, err)
	}
	return id, nil
}

// AddBatch embeds all entries first, then writes them in one call.
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
	docs := make([]chromem.Document, len(entries))
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
		docs[i] = chromem.Document{
			ID:        id,
			Content:   e.Content,
			Metadata:  encodeMetadata(md),
			Embedding: vectors[i],
		}
	}

	log.Debug().Msgf("Adding %d documents to collection %s", len(docs), s.collection.Name)
	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return nil, fmt.Errorf("%w: failed to add documents: %v", models.ErrProviderFailure, err)
	}
	return ids, nil
}

// DeleteByIDs removes matching documents; unknown ids are ignored.
func (s *Store) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.collection.Delete(ctx, nil, nil, ids...); err != nil {
		return fmt.Errorf("%w: failed to delete documents: %v", models.ErrProviderFailure, err)
	}
	return nil
}

// Search runs the nearest-neighbor query over the whole collection and
// applies filters, threshold and the k cap on the results.
func (s *Store) Search(ctx context.Context, queryVector []float32, k int, filters []models.SearchFilter, minScore float64) ([]models.RetrievedDocument, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}

	// chromem caps nResults at the collection size. Fetch everything and
	// rank here so filters cannot starve the result list.
	results, err := s.collection.QueryEmbedding(ctx, queryVector, count, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query by similarity: %v", models.ErrProviderFailure, err)
	}

	candidates := make([]models.RetrievedDocument, 0, len(results))
	for _, r := range results {
		candidates = append(candidates, models.RetrievedDocument{
			ID:       r.ID,
			Content:  r.Content,
			Score:    float64(r.Similarity),
			Metadata: decodeMetadata(r.Metadata),
		})
	}
	return index.Rank(candidates, k, filters, minScore), nil
}

// Stats reports the collection size.
func (s *Store) Stats(ctx context.Context) (models.IndexStats, error) {
	return models.IndexStats{
		DocumentCount:    int64(s.collection.Count()),
		Dimension:        s.embedder.Dimension(),
		SimilarityMetric: "cosine",
		StoreType:        "chromem",
	}, nil
}

// chromem metadata is map[string]string. Scalars are stored in their
// string form, lists as JSON arrays.
func encodeMetadata(md models.Metadata) map[string]string {
	out := make(map[string]string, len(md))
	for k, v := range md {
		if list, ok := v.([]string); ok {
			b, err := json.Marshal(list)
			if err == nil {
				out[k] = string(b)
				continue
			}
		}
		out[k] = models.Stringify(v)
	}
	return out
}

func decodeMetadata(md map[string]string) models.Metadata {
	out := make(models.Metadata, len(md))
	for k, v := range md {
		if strings.HasPrefix(v, "[") {
			var list []string
			if err := json.Unmarshal([]byte(v), &list); err == nil {
				out[k] = list
				continue
			}
		}
		out[k] = v
	}
	return out
}
