package retriever

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"benefits-rag/internal/chunker"
	"benefits-rag/internal/embedding"
	"benefits-rag/internal/index/memory"
	"benefits-rag/internal/models"
)

func newTestRetriever(t *testing.T, chunkSize, overlap, maxChunks int) (*Retriever, *memory.Store, *embedding.Service) {
	t.Helper()
	provider := newMockProvider()
	embedder := newMockEmbedder(provider)
	store := memory.NewStore(embedder)
	chk, err := chunker.New(chunkSize, overlap, maxChunks)
	require.NoError(t, err)
	return New(chk, embedder, store), store, embedder
}

func TestIndexDocument_SingleUnit(t *testing.T) {
	ctx := context.Background()
	r, store, _ := newTestRetriever(t, 100, 20, 0)

	id, err := r.IndexDocument(ctx, "short benefits text", models.Metadata{"source": "policy-42"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.DocumentCount)

	docs, err := r.SearchDocuments(ctx, "benefits text", 5, nil, 0.0)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, "short benefits text", doc.Content)
	assert.Equal(t, "policy-42", doc.MetadataString(models.MetaSource, ""))
	assert.Equal(t, "Untitled Document", doc.MetadataString(models.MetaTitle, ""))
	assert.Equal(t, "text", doc.MetadataString(models.MetaContentType, ""))
	assert.Equal(t, models.IndexerVersion, doc.MetadataString(models.MetaIndexerVersion, ""))
	assert.NotEmpty(t, doc.MetadataString(models.MetaIndexedAt, ""))
	// single-unit documents carry no chunk markers
	_, isChunk := doc.Metadata[models.MetaIsChunk]
	assert.False(t, isChunk)
}

func TestIndexDocument_Chunked(t *testing.T) {
	ctx := context.Background()
	r, store, _ := newTestRetriever(t, 50, 10, 0)

	content := strings.Repeat("leave accrual words here ", 10) // 250 chars
	parentID, err := r.IndexDocument(ctx, content, models.Metadata{"source": "handbook"})
	require.NoError(t, err)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	require.Greater(t, stats.DocumentCount, int64(1))

	docs, err := r.SearchDocuments(ctx, "leave accrual", 20, nil, 0.0)
	require.NoError(t, err)
	require.NotEmpty(t, docs)

	total := int(stats.DocumentCount)
	seen := make(map[string]bool)
	for _, doc := range docs {
		assert.LessOrEqual(t, len(doc.Content), 50)
		assert.Equal(t, parentID, doc.MetadataString(models.MetaParentDocumentID, ""))
		assert.Equal(t, "true", doc.MetadataString(models.MetaIsChunk, ""))
		assert.Equal(t, models.Stringify(float64(total)), doc.MetadataString(models.MetaTotalChunks, ""))
		assert.Equal(t, "handbook", doc.MetadataString(models.MetaSource, ""))
		seen[doc.MetadataString(models.MetaChunkIndex, "")] = true
	}
	assert.Len(t, seen, len(docs), "chunk indexes should be distinct")
}

func TestIndexDocument_ChunkCap(t *testing.T) {
	ctx := context.Background()
	r, store, _ := newTestRetriever(t, 10, 0, 3)

	_, err := r.IndexDocument(ctx, strings.Repeat("aaaa bbbb ", 20), nil)
	require.NoError(t, err)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.DocumentCount)
}

func TestIndexDocument_EmptyContent(t *testing.T) {
	r, _, _ := newTestRetriever(t, 100, 20, 0)

	_, err := r.IndexDocument(context.Background(), "", nil)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestSearchDocuments_PropagatesEmbedderFailure(t *testing.T) {
	provider := newMockProvider()
	embedder := newMockEmbedder(provider)
	store := memory.NewStore(embedder)
	chk, err := chunker.New(100, 20, 0)
	require.NoError(t, err)
	r := New(chk, embedder, store)

	_, err = r.SearchDocuments(context.Background(), "   ", 5, nil, 0.0)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
