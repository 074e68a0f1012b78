package models

import (
	"time"
)

// Metadata is an open-ended document metadata map. Values are normalized
// to one of: string, float64, bool, []string.
type Metadata map[string]any

// NormalizeMetadata coerces arbitrary metadata values into the supported
// arms so filter evaluation stays well-typed. Unsupported values are
// stringified, integer kinds widen to float64.
func NormalizeMetadata(md Metadata) Metadata {
	out := make(Metadata, len(md))
	for k, v := range md {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case string, float64, bool:
		return val
	case int:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case float32:
		return float64(val)
	case []string:
		return val
	case []any:
		items := make([]string, 0, len(val))
		for _, item := range val {
			items = append(items, Stringify(item))
		}
		return items
	default:
		return Stringify(val)
	}
}

// Chunk is a bounded-length piece of a document indexed as an independent
// searchable unit.
type Chunk struct {
	ParentDocumentID string
	Index            int
	TotalChunks      int
	Content          string
	Metadata         Metadata
}

// RetrievedDocument is a single vector search hit.
type RetrievedDocument struct {
	ID       string   `json:"id"`
	Content  string   `json:"content"`
	Score    float64  `json:"score"`
	Metadata Metadata `json:"metadata"`
}

// MetadataString returns the stored metadata value as a string, or the
// default when absent.
func (d RetrievedDocument) MetadataString(key, defaultValue string) string {
	v, ok := d.Metadata[key]
	if !ok {
		return defaultValue
	}
	return Stringify(v)
}

// QueryRequest carries one RAG question with optional retrieval controls.
type QueryRequest struct {
	Question   string         `json:"question"`
	Filters    []SearchFilter `json:"filters,omitempty"`
	MaxResults int            `json:"maxResults"`
	Threshold  float64        `json:"threshold"`
}

// Normalize resets absent or out-of-range request fields to their
// defaults. Out-of-range values are not an error.
func (r *QueryRequest) Normalize() {
	if r.MaxResults < 1 || r.MaxResults > MaxResultsLimit {
		r.MaxResults = DefaultMaxResults
	}
	if r.Threshold < 0.0 || r.Threshold > 1.0 {
		r.Threshold = DefaultThreshold
	}
}

// QueryResponse is the end-to-end result of a RAG query.
type QueryResponse struct {
	Answer         string              `json:"answer"`
	Sources        []RetrievedDocument `json:"sources"`
	Confidence     float64             `json:"confidence"`
	ProcessingTime time.Duration       `json:"processingTimeMs"`
}

// SearchResult summarizes a raw vector search without synthesis.
type SearchResult struct {
	Documents  []RetrievedDocument `json:"documents"`
	Count      int                 `json:"count"`
	MaxScore   float64             `json:"maxScore"`
	MinScore   float64             `json:"minScore"`
	SearchTime time.Duration       `json:"searchTimeMs"`
}

// DocumentEntry is one document submitted for batch indexing.
type DocumentEntry struct {
	ID       string   `json:"id,omitempty"`
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// BatchIndexResult aggregates per-entry outcomes of a batch index call.
type BatchIndexResult struct {
	Total       int      `json:"total"`
	DocumentIDs []string `json:"documentIds"`
	Errors      []string `json:"errors"`
}

// BatchDeleteResult aggregates per-entry outcomes of a batch delete call.
type BatchDeleteResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Errors     []string `json:"errors"`
}

// IndexStats describes the underlying vector store. DocumentCount is -1
// when the store cannot report it.
type IndexStats struct {
	DocumentCount    int64  `json:"documentCount"`
	Dimension        int    `json:"dimension"`
	SimilarityMetric string `json:"similarityMetric"`
	StoreType        string `json:"storeType"`
}

// DocumentStats extends IndexStats with the active chunking parameters.
type DocumentStats struct {
	IndexStats
	ChunkSize            int `json:"chunkSize"`
	ChunkOverlap         int `json:"chunkOverlap"`
	MaxChunksPerDocument int `json:"maxChunksPerDocument"`
}
