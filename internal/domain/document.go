package domain

import "time"

// Document is a chunk of source text stored with its embedding in pgvector.
// Chunks are immutable once ingested; there is no update or delete path.
type Document struct {
	ID        int64             `json:"id"         db:"id"`
	Content   string            `json:"content"    db:"content"`
	Metadata  map[string]string `json:"metadata"   db:"metadata"`
	Embedding []float32         `json:"-"          db:"embedding"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}

// ScoredDocument is returned by similarity search, including the score.
type ScoredDocument struct {
	Document
	Similarity float64 `json:"similarity"`
}
