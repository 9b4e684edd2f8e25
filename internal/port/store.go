package port

import (
	"context"

	"github.com/arturoeanton/go-web-rag/internal/domain"
)

// DocumentStore abstracts the vector-capable persistence layer.
type DocumentStore interface {
	// Insert persists a batch of chunks atomically.
	Insert(ctx context.Context, docs []domain.Document) error

	// Search returns up to k stored chunks ordered by descending similarity
	// to the query vector. Fewer than k rows means the whole corpus is returned.
	Search(ctx context.Context, queryVector []float32, k int) ([]domain.ScoredDocument, error)
}
