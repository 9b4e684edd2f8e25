package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/arturoeanton/go-web-rag/internal/domain"
	"github.com/arturoeanton/go-web-rag/internal/port"
)

type fakeAI struct {
	dim      int
	answer   string
	embedErr error
	chatErr  error

	batchIn    []string
	chatCalled bool
	lastSystem string
	lastUser   string
	lastCtx    []string
}

func (f *fakeAI) ModelName() string { return "fake-model" }

func (f *fakeAI) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return make([]float32, f.dim), nil
}

func (f *fakeAI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	f.batchIn = texts
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = make([]float32, f.dim)
	}
	return vectors, nil
}

func (f *fakeAI) Chat(ctx context.Context, systemPrompt, userPrompt string, contextChunks []string) (string, error) {
	f.chatCalled = true
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	f.lastCtx = contextChunks
	if f.chatErr != nil {
		return "", f.chatErr
	}
	return f.answer, nil
}

type fakeStore struct {
	inserted  []domain.Document
	results   []domain.ScoredDocument
	insertErr error
	searchErr error
	lastK     int
}

func (f *fakeStore) Insert(ctx context.Context, docs []domain.Document) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, docs...)
	return nil
}

func (f *fakeStore) Search(ctx context.Context, queryVector []float32, k int) ([]domain.ScoredDocument, error) {
	f.lastK = k
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

type fakeLoader struct {
	blocks []string
	err    error
}

func (f *fakeLoader) Load(ctx context.Context, url string) ([]string, error) {
	return f.blocks, f.err
}

func testOptions() Options {
	return Options{ChunkSize: 1000, ChunkOverlap: 200, Dimension: 4, TopK: 3}
}

func TestIngest_StoresOneDocumentPerChunk(t *testing.T) {
	ai := &fakeAI{dim: 4}
	st := &fakeStore{}
	ld := &fakeLoader{blocks: []string{"first block of text", "second block of text"}}
	svc := NewRAGService(ai, st, ld, testOptions())

	count, err := svc.Ingest(context.Background(), "https://example.com/a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 chunks, got %d", count)
	}
	if len(st.inserted) != 2 {
		t.Fatalf("expected 2 stored documents, got %d", len(st.inserted))
	}

	for i, doc := range st.inserted {
		if doc.Content == "" {
			t.Fatalf("document %d has empty content", i)
		}
		if len(doc.Embedding) != 4 {
			t.Fatalf("document %d has embedding of length %d, want 4", i, len(doc.Embedding))
		}
		if doc.Metadata["source"] != "https://example.com/a" {
			t.Fatalf("document %d has source %q", i, doc.Metadata["source"])
		}
	}
	if st.inserted[0].Metadata["chunk"] != "0" || st.inserted[1].Metadata["chunk"] != "1" {
		t.Fatalf("chunk indices not recorded: %v, %v", st.inserted[0].Metadata, st.inserted[1].Metadata)
	}
}

func TestIngest_SplitsLongText(t *testing.T) {
	ai := &fakeAI{dim: 4}
	st := &fakeStore{}
	ld := &fakeLoader{blocks: []string{strings.Repeat("some words about a topic. ", 40)}}
	opts := testOptions()
	opts.ChunkSize = 100
	opts.ChunkOverlap = 20
	svc := NewRAGService(ai, st, ld, opts)

	count, err := svc.Ingest(context.Background(), "https://example.com/long")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count < 2 {
		t.Fatalf("expected the text to split into multiple chunks, got %d", count)
	}
	for i, doc := range st.inserted {
		if strings.TrimSpace(doc.Content) == "" {
			t.Fatalf("chunk %d is empty", i)
		}
	}
}

func TestIngest_EmptyPageIsNoOp(t *testing.T) {
	ai := &fakeAI{dim: 4}
	st := &fakeStore{}
	ld := &fakeLoader{}
	svc := NewRAGService(ai, st, ld, testOptions())

	count, err := svc.Ingest(context.Background(), "https://example.com/empty")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 chunks, got %d", count)
	}
	if len(st.inserted) != 0 {
		t.Fatalf("expected nothing stored, got %d documents", len(st.inserted))
	}
	if ai.batchIn != nil {
		t.Fatalf("expected no embedding call for an empty page")
	}
}

func TestIngest_LoaderFailurePropagates(t *testing.T) {
	ai := &fakeAI{dim: 4}
	st := &fakeStore{}
	ld := &fakeLoader{err: port.ErrFetch}
	svc := NewRAGService(ai, st, ld, testOptions())

	_, err := svc.Ingest(context.Background(), "https://example.com/down")
	if !errors.Is(err, port.ErrFetch) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if len(st.inserted) != 0 {
		t.Fatalf("expected nothing stored after fetch failure")
	}
}

func TestIngest_EmbedFailureStoresNothing(t *testing.T) {
	ai := &fakeAI{dim: 4, embedErr: port.ErrEmbedding}
	st := &fakeStore{}
	ld := &fakeLoader{blocks: []string{"some text"}}
	svc := NewRAGService(ai, st, ld, testOptions())

	_, err := svc.Ingest(context.Background(), "https://example.com/a")
	if !errors.Is(err, port.ErrEmbedding) {
		t.Fatalf("expected embedding error, got %v", err)
	}
	if len(st.inserted) != 0 {
		t.Fatalf("expected nothing stored after embed failure")
	}
}

func TestIngest_DimensionMismatchIsConfigurationError(t *testing.T) {
	ai := &fakeAI{dim: 8}
	st := &fakeStore{}
	ld := &fakeLoader{blocks: []string{"some text"}}
	svc := NewRAGService(ai, st, ld, testOptions()) // schema dimension is 4

	_, err := svc.Ingest(context.Background(), "https://example.com/a")
	if !errors.Is(err, port.ErrEmbedding) {
		t.Fatalf("expected embedding error for dimension mismatch, got %v", err)
	}
	if len(st.inserted) != 0 {
		t.Fatalf("expected nothing stored after dimension mismatch")
	}
}

func TestAsk_BuildsContextFromRetrievedChunks(t *testing.T) {
	ai := &fakeAI{dim: 4, answer: "it is an example page"}
	st := &fakeStore{results: []domain.ScoredDocument{
		{Document: domain.Document{Content: "chunk one"}, Similarity: 0.9},
		{Document: domain.Document{Content: "chunk two"}, Similarity: 0.7},
	}}
	svc := NewRAGService(ai, st, &fakeLoader{}, testOptions())

	answer, err := svc.Ask(context.Background(), "What is this page about?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "it is an example page" {
		t.Fatalf("unexpected answer %q", answer)
	}
	if st.lastK != 3 {
		t.Fatalf("expected top-3 retrieval, got k=%d", st.lastK)
	}
	if len(ai.lastCtx) != 2 || ai.lastCtx[0] != "chunk one" || ai.lastCtx[1] != "chunk two" {
		t.Fatalf("unexpected context chunks: %v", ai.lastCtx)
	}
	if ai.lastUser != "What is this page about?" {
		t.Fatalf("unexpected user prompt %q", ai.lastUser)
	}
}

func TestAsk_EmptyCorpusStillGenerates(t *testing.T) {
	ai := &fakeAI{dim: 4, answer: "I don't know yet"}
	st := &fakeStore{}
	svc := NewRAGService(ai, st, &fakeLoader{}, testOptions())

	answer, err := svc.Ask(context.Background(), "anything ingested?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ai.chatCalled {
		t.Fatalf("expected the chat model to be invoked with empty context")
	}
	if len(ai.lastCtx) != 0 {
		t.Fatalf("expected empty context, got %v", ai.lastCtx)
	}
	if answer == "" {
		t.Fatalf("expected a non-empty answer")
	}
}

func TestAsk_SearchFailurePropagates(t *testing.T) {
	ai := &fakeAI{dim: 4}
	st := &fakeStore{searchErr: port.ErrStorage}
	svc := NewRAGService(ai, st, &fakeLoader{}, testOptions())

	_, err := svc.Ask(context.Background(), "q")
	if !errors.Is(err, port.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if ai.chatCalled {
		t.Fatalf("expected no generation after search failure")
	}
}

func TestAsk_GenerationFailurePropagates(t *testing.T) {
	ai := &fakeAI{dim: 4, chatErr: port.ErrGeneration}
	st := &fakeStore{}
	svc := NewRAGService(ai, st, &fakeLoader{}, testOptions())

	_, err := svc.Ask(context.Background(), "q")
	if !errors.Is(err, port.ErrGeneration) {
		t.Fatalf("expected generation error, got %v", err)
	}
}
