package reader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/japaniel/sentbreak/pkg/document"
)

// MaxBodySize caps fetched and uploaded content.
const MaxBodySize = 10 * 1024 * 1024

// Fetcher downloads pages and turns them into documents.
type Fetcher struct {
	Client *http.Client
	Logger *zap.Logger
}

// NewFetcher returns a Fetcher with a 30 second client timeout.
func NewFetcher(logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		Client: &http.Client{Timeout: 30 * time.Second},
		Logger: logger,
	}
}

// browserHeaders keep sites from answering 403 to a bare Go client.
func browserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,application/pdf,text/markdown;q=0.8,*/*;q=0.7")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,ja;q=0.8")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

// Fetch downloads rawURL and builds a document in the format announced by
// the response Content-Type, or implied by the URL path.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*document.Document, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	browserHeaders(req)

	f.Logger.Info("Fetching", zap.String("url", rawURL))
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("got status code %d", resp.StatusCode)
	}
	body, err := ReadLimited(resp.Body, resp.ContentLength)
	if err != nil {
		return nil, err
	}

	format := FormatFor(resp.Header.Get("Content-Type"), parsedURL.Path)
	doc, err := FromBytes(body, format, parsedURL, f.Logger)
	if err != nil {
		return nil, err
	}
	doc.URL = rawURL
	f.Logger.Info("Fetched document",
		zap.String("format", format),
		zap.String("title", doc.Title),
		zap.Int("regions", len(doc.Regions)))
	return doc, nil
}

// ReadLimited reads r up to MaxBodySize and fails on anything larger.
// contentLength is checked first when known.
func ReadLimited(r io.Reader, contentLength int64) ([]byte, error) {
	if contentLength > MaxBodySize {
		return nil, fmt.Errorf("content length %d exceeds limit of %d bytes", contentLength, MaxBodySize)
	}
	body, err := io.ReadAll(io.LimitReader(r, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if len(body) > MaxBodySize {
		return nil, fmt.Errorf("body exceeded maximum size limit of %d bytes", MaxBodySize)
	}
	return body, nil
}
