// Package pgvector adapts a Postgres database with the pgvector
// extension to the index.Store interface via bun.
package pgvector

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"benefits-rag/internal/config"
	"benefits-rag/internal/embedding"
	"benefits-rag/internal/helper"
	"benefits-rag/internal/index"
	"benefits-rag/internal/models"
)

// Record is one stored (vector, text, metadata) triple.
type Record struct {
	bun.BaseModel `bun:"table:documents,alias:d"`
	ID            string         `bun:"id,pk"`
	Content       string         `bun:"content,notnull"`
	Metadata      map[string]any `bun:"metadata,type:jsonb"`
	Embedding     string         `bun:"embedding,notnull"`
	Score         float64        `bun:"score,scanonly"`
}

// Store implements index.Store on Postgres/pgvector. The database orders
// candidates by cosine similarity; filters and the threshold are applied
// here with the shared ranking rules.
type Store struct {
	db        *bun.DB
	embedder  *embedding.Service
	dimension int
}

// NewStore connects to the database. Call Init before first use.
func NewStore(embedder *embedding.Service, dbConfig config.DatabaseConfig) (*Store, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dbConfig.DSN),
		pgdriver.WithPassword(dbConfig.Password),
	))
	db := bun.NewDB(sqldb, pgdialect.New())
	if dbConfig.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &Store{db: db, embedder: embedder, dimension: embedder.Dimension()}, nil
}

// Init creates the documents table sized to the embedding dimension.
func (s *Store) Init(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS documents (
		id text PRIMARY KEY,
		content text NOT NULL,
		metadata jsonb,
		embedding vector(%d) NOT NULL
	)`, s.dimension)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("%w: failed to create documents table: %v", models.ErrProviderFailure, err)
	}
	return nil
}

// Close releases the database connection.
func (s *Store) Close() error { return s.db.Close() }

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

	rec := Record{ID: id, Content: content, Metadata: md, Embedding: vectorLiteral(vector)}
	if _, err := s.db.NewInsert().Model(&rec).Exec(ctx); err != nil {
		return "", fmt.Errorf("%w: failed to store document: %v", models.ErrProviderFailure, err)
	}
	return id, nil
}

// AddBatch embeds all entries first, then writes them in one insert.
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
	recs := make([]Record, len(entries))
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
		recs[i] = Record{ID: id, Content: e.Content, Metadata: md, Embedding: vectorLiteral(vectors[i])}
	}

	if _, err := s.db.NewInsert().Model(&recs).Exec(ctx); err != nil {
		return nil, fmt.Errorf("%w: failed to store documents: %v", models.ErrProviderFailure, err)
	}
	return ids, nil
}

// DeleteByIDs removes matching rows; unknown ids are ignored.
func (s *Store) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.db.NewDelete().Model((*Record)(nil)).Where("id IN (?)", bun.In(ids)).Exec(ctx); err != nil {
		return fmt.Errorf("%w: failed to delete documents: %v", models.ErrProviderFailure, err)
	}
	return nil
}

// Search fetches the nearest candidates by cosine similarity and applies
// filters, threshold and the k cap with the shared ranking rules.
func (s *Store) Search(ctx context.Context, queryVector []float32, k int, filters []models.SearchFilter, minScore float64) ([]models.RetrievedDocument, error) {
	var recs []Record
	err := s.db.NewSelect().
		Model(&recs).
		ColumnExpr("d.id, d.content, d.metadata").
		ColumnExpr("1 - (d.embedding <=> ?) AS score", vectorLiteral(queryVector)).
		OrderExpr("score DESC").
		Limit(candidateLimit(k, filters)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to search documents: %v", models.ErrProviderFailure, err)
	}

	candidates := make([]models.RetrievedDocument, 0, len(recs))
	for _, rec := range recs {
		candidates = append(candidates, models.RetrievedDocument{
			ID:       rec.ID,
			Content:  rec.Content,
			Score:    rec.Score,
			Metadata: models.NormalizeMetadata(rec.Metadata),
		})
	}
	return index.Rank(candidates, k, filters, minScore), nil
}

// Stats reports the row count.
func (s *Store) Stats(ctx context.Context) (models.IndexStats, error) {
	count, err := s.db.NewSelect().Model((*Record)(nil)).Count(ctx)
	if err != nil {
		return models.IndexStats{}, fmt.Errorf("%w: failed to count documents: %v", models.ErrProviderFailure, err)
	}
	return models.IndexStats{
		DocumentCount:    int64(count),
		Dimension:        s.dimension,
		SimilarityMetric: "cosine",
		StoreType:        "pgvector",
	}, nil
}

// candidateLimit over-fetches when filters are present, since filters are
// evaluated after the nearest-neighbor query.
func candidateLimit(k int, filters []models.SearchFilter) int {
	if len(filters) == 0 {
		return k
	}
	limit := k * 20
	if limit < 100 {
		limit = 100
	}
	return limit
}

// vectorLiteral renders a vector in pgvector's input syntax.
func vectorLiteral(vector []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vector {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
