package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/arturoeanton/go-web-rag/internal/domain"
	"github.com/arturoeanton/go-web-rag/internal/port"
)

// VectorStore handles pgvector operations on the documents table.
type VectorStore struct {
	store     *PostgresStore
	dimension int
}

// NewVectorStore creates a vector store backed by the given Postgres store.
func NewVectorStore(store *PostgresStore, dimension int) *VectorStore {
	return &VectorStore{store: store, dimension: dimension}
}

// Insert persists a batch of chunks in a single transaction. Either every
// chunk in the batch lands or none does.
func (v *VectorStore) Insert(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %w", port.ErrStorage, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO documents (content, metadata, embedding) VALUES ($1, $2::jsonb, $3::vector)`)
	if err != nil {
		return fmt.Errorf("%w: prepare: %w", port.ErrStorage, err)
	}
	defer stmt.Close()

	for _, doc := range docs {
		metadata, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("%w: marshal metadata: %w", port.ErrStorage, err)
		}
		if _, err := stmt.ExecContext(ctx, doc.Content, metadata, pgvector.NewVector(doc.Embedding)); err != nil {
			return fmt.Errorf("%w: insert document: %w", port.ErrStorage, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", port.ErrStorage, err)
	}
	return nil
}

// Search performs a cosine similarity search over all stored chunks. Ties
// break by id, which follows insertion order.
func (v *VectorStore) Search(ctx context.Context, queryVector []float32, k int) ([]domain.ScoredDocument, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be >= 1, got %d", port.ErrStorage, k)
	}

	query := `SELECT d.id, d.content, d.metadata, d.created_at,
	                 1 - (d.embedding <=> $1) AS similarity
	          FROM documents d
	          ORDER BY d.embedding <=> $1, d.id
	          LIMIT $2`

	rows, err := v.store.db.QueryContext(ctx, query, pgvector.NewVector(queryVector), k)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %w", port.ErrStorage, err)
	}
	defer rows.Close()

	var results []domain.ScoredDocument
	for rows.Next() {
		var sd domain.ScoredDocument
		var metadata []byte
		if err := rows.Scan(&sd.ID, &sd.Content, &metadata, &sd.CreatedAt, &sd.Similarity); err != nil {
			return nil, fmt.Errorf("%w: scan document: %w", port.ErrStorage, err)
		}
		if err := json.Unmarshal(metadata, &sd.Metadata); err != nil {
			return nil, fmt.Errorf("%w: unmarshal metadata: %w", port.ErrStorage, err)
		}
		results = append(results, sd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %w", port.ErrStorage, err)
	}
	return results, nil
}

// Count returns the number of stored chunks.
func (v *VectorStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := v.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count: %w", port.ErrStorage, err)
	}
	return n, nil
}
