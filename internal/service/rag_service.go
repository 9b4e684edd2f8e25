package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/arturoeanton/go-web-rag/internal/domain"
	"github.com/arturoeanton/go-web-rag/internal/port"
)

const ragSystemPrompt = `You are a helpful assistant. Answer the question using the provided context.
If the context does not contain the answer, say so instead of inventing one.`

// Options tunes the ingest and retrieval pipelines.
type Options struct {
	ChunkSize    int // characters per chunk
	ChunkOverlap int // characters shared between consecutive chunks
	Dimension    int // embedding vector length declared by the schema
	TopK         int // chunks retrieved per question
}

// RAGService wires the loader, embeddings, vector store, and chat model into
// the ingest and ask pipelines.
type RAGService struct {
	ai     port.AIProvider
	store  port.DocumentStore
	loader port.Loader
	opts   Options
}

// NewRAGService creates a new RAG service.
func NewRAGService(ai port.AIProvider, store port.DocumentStore, loader port.Loader, opts Options) *RAGService {
	return &RAGService{ai: ai, store: store, loader: loader, opts: opts}
}

// Ingest fetches a URL, splits its text into overlapping chunks, embeds them,
// and persists the batch. It returns the number of chunks stored. The insert
// is a single transaction, so a failed request leaves the corpus untouched.
func (s *RAGService) Ingest(ctx context.Context, url string) (int, error) {
	slog.Info("ingesting document", "url", url)

	blocks, err := s.loader.Load(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("load document: %w", err)
	}

	chunks, err := s.split(blocks)
	if err != nil {
		return 0, fmt.Errorf("split document: %w", err)
	}
	if len(chunks) == 0 {
		slog.Warn("no text extracted", "url", url)
		return 0, nil
	}

	vectors, err := s.ai.EmbedBatch(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("%w: got %d embeddings for %d chunks", port.ErrEmbedding, len(vectors), len(chunks))
	}

	docs := make([]domain.Document, len(chunks))
	for i, chunk := range chunks {
		if err := s.checkDimension(vectors[i]); err != nil {
			return 0, err
		}
		docs[i] = domain.Document{
			Content: chunk,
			Metadata: map[string]string{
				"source": url,
				"chunk":  strconv.Itoa(i),
			},
			Embedding: vectors[i],
		}
	}

	if err := s.store.Insert(ctx, docs); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}

	slog.Info("document ingested", "url", url, "chunks", len(docs))
	return len(docs), nil
}

// Ask embeds the question, retrieves the closest chunks, and asks the chat
// model to answer from them. An empty corpus still produces an answer, just
// one generated without context.
func (s *RAGService) Ask(ctx context.Context, question string) (string, error) {
	queryVector, err := s.ai.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}
	if err := s.checkDimension(queryVector); err != nil {
		return "", err
	}

	results, err := s.store.Search(ctx, queryVector, s.opts.TopK)
	if err != nil {
		return "", fmt.Errorf("search similar: %w", err)
	}
	slog.Info("retrieved context", "question", question, "chunks", len(results), "model", s.ai.ModelName())

	contextParts := make([]string, len(results))
	for i, result := range results {
		contextParts[i] = result.Content
	}

	answer, err := s.ai.Chat(ctx, ragSystemPrompt, question, contextParts)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	return answer, nil
}

// split partitions raw text blocks into overlapping chunks.
func (s *RAGService) split(blocks []string) ([]string, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.opts.ChunkSize),
		textsplitter.WithChunkOverlap(s.opts.ChunkOverlap),
	)

	var chunks []string
	for _, block := range blocks {
		parts, err := splitter.SplitText(block)
		if err != nil {
			return nil, err
		}
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				chunks = append(chunks, part)
			}
		}
	}
	return chunks, nil
}

func (s *RAGService) checkDimension(vector []float32) error {
	if len(vector) != s.opts.Dimension {
		return fmt.Errorf("%w: embedding dimension %d does not match schema dimension %d",
			port.ErrEmbedding, len(vector), s.opts.Dimension)
	}
	return nil
}
