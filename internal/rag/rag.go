// Package rag is the pipeline entry point: it sequences retrieval,
// answer synthesis and confidence scoring, and defines the end-to-end
// result contract. The query path always produces a well-formed response;
// administrative operations surface explicit failures.
package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"benefits-rag/internal/models"
	"benefits-rag/internal/retriever"
	"benefits-rag/internal/synthesizer"
)

// RAG orchestrates one query or document operation at a time. It holds no
// per-request state; concurrent calls are independent.
type RAG struct {
	retriever   *retriever.Retriever
	synthesizer *synthesizer.Synthesizer
}

// NewRAG wires the pipeline.
func NewRAG(retriever *retriever.Retriever, synthesizer *synthesizer.Synthesizer) *RAG {
	return &RAG{retriever: retriever, synthesizer: synthesizer}
}

// ProcessQuery runs the retrieve, synthesize, score sequence. It never
// returns an error: any failure along the way degrades into a fixed
// apologetic answer with no sources and zero confidence rather than
// propagating to the caller.
func (r *RAG) ProcessQuery(ctx context.Context, request models.QueryRequest) models.QueryResponse {
	start := time.Now()
	request.Normalize()

	log.Info().Msgf("Processing RAG query: %s", request.Question)

	docs, err := r.retriever.SearchDocuments(ctx, request.Question, request.MaxResults, request.Filters, request.Threshold)
	if err != nil {
		log.Error().Err(err).Msg("Error retrieving documents")
		return degradedResponse(start)
	}

	if len(docs) == 0 {
		log.Warn().Msg("No documents found for query")
		return models.QueryResponse{
			Answer:         models.NoContextAnswer,
			Sources:        []models.RetrievedDocument{},
			Confidence:     0.0,
			ProcessingTime: time.Since(start),
		}
	}

	answer, err := r.synthesizer.GenerateAnswer(ctx, request.Question, docs)
	if err != nil {
		log.Error().Err(err).Msg("Error generating answer")
		return degradedResponse(start)
	}

	confidence := synthesizer.CalculateConfidence(docs)

	elapsed := time.Since(start)
	log.Info().Msgf("RAG query processed successfully in %s", elapsed)

	return models.QueryResponse{
		Answer:         answer,
		Sources:        docs,
		Confidence:     confidence,
		ProcessingTime: elapsed,
	}
}

// IndexDocument indexes one document. Failures are explicit; this is an
// administrative operation where silent masking would hide data problems.
func (r *RAG) IndexDocument(ctx context.Context, content string, metadata models.Metadata) (string, error) {
	return r.retriever.IndexDocument(ctx, content, metadata)
}

// IndexDocumentsBatch indexes each entry independently. One entry's
// failure is recorded and does not abort the batch.
func (r *RAG) IndexDocumentsBatch(ctx context.Context, entries []models.DocumentEntry) models.BatchIndexResult {
	result := models.BatchIndexResult{Total: len(entries)}
	for _, entry := range entries {
		id, err := r.retriever.IndexDocument(ctx, entry.Content, entry.Metadata)
		if err != nil {
			name := entry.ID
			if name == "" {
				name = "unknown"
			}
			msg := fmt.Sprintf("Failed to index document %s: %v", name, err)
			result.Errors = append(result.Errors, msg)
			log.Warn().Msgf("Failed to index document: %s", msg)
			continue
		}
		result.DocumentIDs = append(result.DocumentIDs, id)
	}
	log.Info().Msgf("Indexed %d/%d documents with %d errors", len(result.DocumentIDs), result.Total, len(result.Errors))
	return result
}

// DeleteDocument removes one document by id. Failures are explicit.
func (r *RAG) DeleteDocument(ctx context.Context, id string) error {
	return r.retriever.Store().DeleteByIDs(ctx, []string{id})
}

// DeleteDocumentsBatch deletes each id independently, aggregating
// per-entry failures like batch indexing.
func (r *RAG) DeleteDocumentsBatch(ctx context.Context, ids []string) models.BatchDeleteResult {
	result := models.BatchDeleteResult{Total: len(ids)}
	for _, id := range ids {
		if err := r.DeleteDocument(ctx, id); err != nil {
			msg := fmt.Sprintf("Failed to delete document %s: %v", id, err)
			result.Errors = append(result.Errors, msg)
			log.Warn().Msgf("Failed to delete document: %s", msg)
			continue
		}
		result.Successful++
	}
	return result
}

// SearchDocuments runs a raw vector search without synthesis and
// summarizes the scores.
func (r *RAG) SearchDocuments(ctx context.Context, request models.QueryRequest) (models.SearchResult, error) {
	start := time.Now()
	request.Normalize()

	docs, err := r.retriever.SearchDocuments(ctx, request.Question, request.MaxResults, request.Filters, request.Threshold)
	if err != nil {
		return models.SearchResult{}, err
	}

	result := models.SearchResult{
		Documents:  docs,
		Count:      len(docs),
		SearchTime: time.Since(start),
	}
	for i, doc := range docs {
		if i == 0 || doc.Score > result.MaxScore {
			result.MaxScore = doc.Score
		}
		if i == 0 || doc.Score < result.MinScore {
			result.MinScore = doc.Score
		}
	}
	return result, nil
}

// Stats reports store statistics together with the active chunking
// parameters. A failing store yields a count of -1 rather than an error.
func (r *RAG) Stats(ctx context.Context) models.DocumentStats {
	c := r.retriever.Chunker()
	stats := models.DocumentStats{
		ChunkSize:            c.Size(),
		ChunkOverlap:         c.Overlap(),
		MaxChunksPerDocument: c.MaxChunks(),
	}

	indexStats, err := r.retriever.Store().Stats(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error getting index stats")
		stats.IndexStats = models.IndexStats{DocumentCount: -1, StoreType: "unknown"}
		return stats
	}
	stats.IndexStats = indexStats
	return stats
}

func degradedResponse(start time.Time) models.QueryResponse {
	return models.QueryResponse{
		Answer:         models.DegradedAnswer,
		Sources:        []models.RetrievedDocument{},
		Confidence:     0.0,
		ProcessingTime: time.Since(start),
	}
}
