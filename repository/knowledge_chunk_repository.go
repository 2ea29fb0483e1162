package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"campusconnect-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// embeddingDimensions must match the vector column width
const embeddingDimensions = 768

// knowledgeChunksSchema is the vector index table. Rebuilding drops and
// recreates it, so the definition lives here rather than in a migration.
const knowledgeChunksSchema = `
CREATE TABLE knowledge_chunks (
    id TEXT PRIMARY KEY,
    doc_id UUID NOT NULL,
    chunk_index INTEGER NOT NULL,
    total_chunks INTEGER NOT NULL,
    chunk_text TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    category VARCHAR(50) NOT NULL,
    source TEXT NOT NULL,
    doc_type VARCHAR(20) NOT NULL,
    crawled_at TIMESTAMPTZ NOT NULL,
    metadata JSONB DEFAULT '{}'::jsonb,
    embedding vector(768) NOT NULL
)`

// KnowledgeChunkRepository handles database operations for the vector index
type KnowledgeChunkRepository struct {
	db *pgxpool.Pool
}

// NewKnowledgeChunkRepository creates a new knowledge chunk repository
func NewKnowledgeChunkRepository(db *pgxpool.Pool) *KnowledgeChunkRepository {
	return &KnowledgeChunkRepository{db: db}
}

// formatVector formats an embedding vector as a string for pgx
func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}
	parts := make([]string, 0, len(embedding))
	for _, v := range embedding {
		parts = append(parts, fmt.Sprintf("%.6f", v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Rebuild drops and recreates the vector index table with its HNSW index.
// A missing table is not an error. Queries arriving between drop and upsert
// see an unavailable index; that window is accepted.
func (r *KnowledgeChunkRepository) Rebuild(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, "DROP TABLE IF EXISTS knowledge_chunks CASCADE"); err != nil {
		return fmt.Errorf("failed to drop knowledge_chunks: %w", err)
	}

	if _, err := r.db.Exec(ctx, knowledgeChunksSchema); err != nil {
		return fmt.Errorf("failed to create knowledge_chunks: %w", err)
	}

	indexes := []string{
		`CREATE INDEX knowledge_chunks_embedding_idx ON knowledge_chunks
			USING hnsw (embedding vector_cosine_ops) WITH (m = 16, ef_construction = 64)`,
		`CREATE INDEX knowledge_chunks_category_idx ON knowledge_chunks (category)`,
		`CREATE INDEX knowledge_chunks_doc_id_idx ON knowledge_chunks (doc_id)`,
	}
	for _, idx := range indexes {
		if _, err := r.db.Exec(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// UpsertBatch inserts chunks transactionally. Chunk IDs are stable, so
// re-ingesting a document overwrites its previous rows.
func (r *KnowledgeChunkRepository) UpsertBatch(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO knowledge_chunks (
			id, doc_id, chunk_index, total_chunks, chunk_text,
			title, category, source, doc_type, crawled_at, metadata, embedding
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::vector
		)
		ON CONFLICT (id) DO UPDATE SET
			doc_id = EXCLUDED.doc_id,
			chunk_index = EXCLUDED.chunk_index,
			total_chunks = EXCLUDED.total_chunks,
			chunk_text = EXCLUDED.chunk_text,
			title = EXCLUDED.title,
			category = EXCLUDED.category,
			source = EXCLUDED.source,
			doc_type = EXCLUDED.doc_type,
			crawled_at = EXCLUDED.crawled_at,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding`

	for _, chunk := range chunks {
		if len(chunk.Embedding) != embeddingDimensions {
			return fmt.Errorf("chunk %s: embedding must be %d dimensions, got %d",
				chunk.ID, embeddingDimensions, len(chunk.Embedding))
		}

		metadataJSON, err := json.Marshal(chunk.Extra)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for chunk %s: %w", chunk.ID, err)
		}

		_, err = tx.Exec(ctx, query,
			chunk.ID, chunk.DocID, chunk.ChunkIndex, chunk.TotalChunks, chunk.Text,
			chunk.Title, chunk.Category, chunk.Source, chunk.DocType, chunk.CrawledAt,
			string(metadataJSON), formatVector(chunk.Embedding),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Search returns the chunks nearest to embedding by cosine distance. When
// category is non-empty only chunks with that exact category are considered.
// Score on each result is 1 - distance.
func (r *KnowledgeChunkRepository) Search(
	ctx context.Context,
	embedding []float64,
	category models.Category,
	limit int,
) ([]models.Chunk, error) {
	if len(embedding) != embeddingDimensions {
		return nil, fmt.Errorf("embedding must be %d dimensions, got %d", embeddingDimensions, len(embedding))
	}

	vectorStr := formatVector(embedding)

	var categoryFilter string
	var args []interface{}
	if category == "" {
		categoryFilter = "TRUE"
		args = []interface{}{vectorStr, limit}
	} else {
		categoryFilter = "category = $2"
		args = []interface{}{vectorStr, category, limit}
	}

	query := fmt.Sprintf(`
		SELECT
			id,
			doc_id,
			chunk_index,
			total_chunks,
			chunk_text,
			title,
			category,
			source,
			doc_type,
			crawled_at,
			metadata,
			embedding <=> $1::vector AS distance
		FROM knowledge_chunks
		WHERE %s
		ORDER BY
			embedding <=> $1::vector
		LIMIT $%d`, categoryFilter, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query knowledge chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.Chunk
	for rows.Next() {
		var chunk models.Chunk
		var distance float64
		err := rows.Scan(
			&chunk.ID,
			&chunk.DocID,
			&chunk.ChunkIndex,
			&chunk.TotalChunks,
			&chunk.Text,
			&chunk.Title,
			&chunk.Category,
			&chunk.Source,
			&chunk.DocType,
			&chunk.CrawledAt,
			&chunk.Extra,
			&distance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan knowledge chunk: %w", err)
		}
		chunk.Score = 1 - distance
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating knowledge chunks: %w", err)
	}

	return chunks, nil
}

// Count returns the number of indexed chunks
func (r *KnowledgeChunkRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM knowledge_chunks").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count knowledge chunks: %w", err)
	}
	return count, nil
}
