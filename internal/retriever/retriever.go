// Package retriever composes the chunker, the embedding service and the
// vector store: it indexes new documents and fetches relevant passages
// for a query.
package retriever

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"benefits-rag/internal/chunker"
	"benefits-rag/internal/embedding"
	"benefits-rag/internal/helper"
	"benefits-rag/internal/index"
	"benefits-rag/internal/models"
)

// Retriever decides chunk-or-not at index time and embeds queries at
// search time. Failures from the components propagate unchanged.
type Retriever struct {
	chunker  *chunker.Chunker
	embedder *embedding.Service
	store    index.Store
}

// New wires the retriever components together.
func New(chunker *chunker.Chunker, embedder *embedding.Service, store index.Store) *Retriever {
	return &Retriever{chunker: chunker, embedder: embedder, store: store}
}

// IndexDocument indexes content and returns its document id. Content no
// longer than the chunk size is stored as a single unit; larger content
// is chunked and stored as independent searchable units sharing a parent
// document id.
func (r *Retriever) IndexDocument(ctx context.Context, content string, metadata models.Metadata) (string, error) {
	if content == "" {
		return "", fmt.Errorf("%w: document content is empty", models.ErrInvalidInput)
	}

	enriched := enrichMetadata(metadata)

	if len(content) <= r.chunker.Size() {
		id, err := r.store.Add(ctx, content, enriched)
		if err != nil {
			return "", err
		}
		log.Debug().Msgf("Document %s indexed as single unit", id)
		return id, nil
	}

	parentID, err := helper.GenerateUUID()
	if err != nil {
		return "", err
	}

	chunks := r.chunker.Chunk(content)
	entries := make([]index.Entry, len(chunks))
	for i, chunk := range chunks {
		md := make(models.Metadata, len(enriched)+4)
		for k, v := range enriched {
			md[k] = v
		}
		md[models.MetaParentDocumentID] = parentID
		md[models.MetaChunkIndex] = i
		md[models.MetaTotalChunks] = len(chunks)
		md[models.MetaIsChunk] = true
		entries[i] = index.Entry{Content: chunk, Metadata: md}
	}

	if _, err := r.store.AddBatch(ctx, entries); err != nil {
		return "", err
	}
	log.Info().Msgf("Document %s indexed as %d chunks", parentID, len(chunks))
	return parentID, nil
}

// SearchDocuments embeds the query and returns the ranked relevant
// passages.
func (r *Retriever) SearchDocuments(ctx context.Context, query string, maxResults int, filters []models.SearchFilter, threshold float64) ([]models.RetrievedDocument, error) {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.store.Search(ctx, vector, maxResults, filters, threshold)
}

// Store exposes the underlying index for administrative operations.
func (r *Retriever) Store() index.Store { return r.store }

// Chunker exposes the active chunking configuration.
func (r *Retriever) Chunker() *chunker.Chunker { return r.chunker }

// enrichMetadata copies the caller metadata and adds the standard
// indexing fields, defaulting title, source and content type when absent.
func enrichMetadata(metadata models.Metadata) models.Metadata {
	enriched := make(models.Metadata, len(metadata)+6)
	for k, v := range metadata {
		enriched[k] = v
	}
	enriched[models.MetaIndexedAt] = float64(time.Now().UnixMilli())
	enriched[models.MetaIndexerVersion] = models.IndexerVersion
	if _, ok := enriched[models.MetaTitle]; !ok {
		enriched[models.MetaTitle] = "Untitled Document"
	}
	if _, ok := enriched[models.MetaSource]; !ok {
		enriched[models.MetaSource] = "unknown"
	}
	if _, ok := enriched[models.MetaContentType]; !ok {
		enriched[models.MetaContentType] = "text"
	}
	return enriched
}
