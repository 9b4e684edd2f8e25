package port

import "errors"

// Sentinel errors used across ports. Adapters wrap these so callers can
// classify failures with errors.Is without importing adapter packages.
var (
	ErrFetch      = errors.New("document fetch failed")
	ErrSchema     = errors.New("schema initialization failed")
	ErrEmbedding  = errors.New("embedding API failed")
	ErrStorage    = errors.New("vector storage failed")
	ErrGeneration = errors.New("generation API failed")
)
