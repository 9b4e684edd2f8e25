package loader

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/documentloaders"

	"github.com/arturoeanton/go-web-rag/internal/port"
)

// WebLoader fetches a page over HTTP and extracts its text content.
// HTML bodies are stripped of markup; plain text passes through unchanged.
type WebLoader struct {
	httpClient *http.Client
}

// NewWebLoader creates a web page loader.
func NewWebLoader() *WebLoader {
	return &WebLoader{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Load fetches the URL and returns its raw text blocks.
func (l *WebLoader) Load(ctx context.Context, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", port.ErrFetch, err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", port.ErrFetch, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: get %s: status %d", port.ErrFetch, url, resp.StatusCode)
	}

	mediaType := mediaTypeOf(resp.Header.Get("Content-Type"))
	switch {
	case mediaType == "text/html" || mediaType == "application/xhtml+xml" || mediaType == "":
		return extractHTML(ctx, resp.Body)
	case strings.HasPrefix(mediaType, "text/"):
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", port.ErrFetch, url, err)
		}
		if text := strings.TrimSpace(string(body)); text != "" {
			return []string{text}, nil
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: get %s: unsupported content type %q", port.ErrFetch, url, mediaType)
	}
}

// extractHTML strips markup and returns the visible text blocks.
func extractHTML(ctx context.Context, r io.Reader) ([]string, error) {
	docs, err := documentloaders.NewHTML(r).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %w", port.ErrFetch, err)
	}

	var blocks []string
	for _, doc := range docs {
		if text := strings.TrimSpace(doc.PageContent); text != "" {
			blocks = append(blocks, text)
		}
	}
	return blocks, nil
}

// mediaTypeOf extracts the media type from a Content-Type header,
// ignoring parameters like charset.
func mediaTypeOf(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}
	return mediaType
}
