package models

const (
	DefaultMaxResults = 5
	MaxResultsLimit   = 20
	DefaultThreshold  = 0.7

	DefaultChunkSize            = 1000
	DefaultChunkOverlap         = 200
	DefaultMaxChunksPerDocument = 50

	// IndexerVersion is recorded in metadata at index time.
	IndexerVersion = "1.0.0"
)

// Metadata keys written by the retriever.
const (
	MetaDocumentID       = "document_id"
	MetaIndexedAt        = "indexed_at"
	MetaIndexerVersion   = "indexer_version"
	MetaTitle            = "title"
	MetaSource           = "source"
	MetaContentType      = "content_type"
	MetaParentDocumentID = "parent_document_id"
	MetaChunkIndex       = "chunk_index"
	MetaTotalChunks      = "total_chunks"
	MetaIsChunk          = "is_chunk"
)

const (
	// NoContextAnswer is returned when retrieval finds nothing relevant.
	NoContextAnswer = "I couldn't find any relevant documents to answer your question. Please try rephrasing your question or check if the relevant documents are available in the knowledge base."

	// DegradedAnswer is returned when any pipeline step fails.
	DegradedAnswer = "I encountered an error while processing your question. Please try again later."
)

var (
	// RagPromptTemplate grounds the generation provider in the retrieved
	// context. Arguments: context block, question.
	RagPromptTemplate = `You are a helpful AI assistant. Answer the user's question based on the provided context documents.
If the context doesn't contain enough information to answer the question, say so clearly.
Be concise but comprehensive in your response.

Context Documents:
%s

User Question: %s

Please provide a clear, accurate answer based on the context documents above:
`
)
