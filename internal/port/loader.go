package port

import "context"

// Loader fetches a document from a URL and returns its raw text blocks,
// one per extracted section. HTML markup is stripped by the implementation.
type Loader interface {
	Load(ctx context.Context, url string) ([]string, error)
}
