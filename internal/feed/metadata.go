package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Metadata is the off-chain token metadata a create event's URI points to.
type Metadata struct {
	Description string `json:"description"`
	Image       string `json:"image"`
	Website     string `json:"website"`
	Twitter     string `json:"twitter"`
	Telegram    string `json:"telegram"`
}

// MetadataFetcher resolves a metadata URI.
type MetadataFetcher interface {
	Fetch(ctx context.Context, uri string) (*Metadata, error)
}

const (
	defaultMetadataTimeout = 3 * time.Second
	maxMetadataBytes       = 64 << 10
	ipfsGateway            = "https://ipfs.io/ipfs/"
)

// HTTPMetadataFetcher fetches metadata JSON over HTTP with a bounded
// timeout and body size.
type HTTPMetadataFetcher struct {
	httpClient *http.Client
	maxBytes   int64
}

// NewHTTPMetadataFetcher creates a fetcher. timeout <= 0 uses the default.
func NewHTTPMetadataFetcher(timeout time.Duration) *HTTPMetadataFetcher {
	if timeout <= 0 {
		timeout = defaultMetadataTimeout
	}
	return &HTTPMetadataFetcher{
		httpClient: &http.Client{Timeout: timeout},
		maxBytes:   maxMetadataBytes,
	}
}

// Fetch downloads and decodes the metadata at uri. ipfs:// URIs go through a
// public gateway.
func (f *HTTPMetadataFetcher) Fetch(ctx context.Context, uri string) (*Metadata, error) {
	target, err := resolveURI(uri)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch metadata: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("metadata larger than %d bytes", f.maxBytes)
	}

	var md Metadata
	if err := json.Unmarshal(body, &md); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &md, nil
}

func resolveURI(uri string) (string, error) {
	uri = strings.TrimSpace(uri)
	switch {
	case strings.HasPrefix(uri, "ipfs://"):
		return ipfsGateway + strings.TrimPrefix(uri, "ipfs://"), nil
	case strings.HasPrefix(uri, "https://"), strings.HasPrefix(uri, "http://"):
		return uri, nil
	default:
		return "", fmt.Errorf("unsupported metadata uri %q", uri)
	}
}

// optional returns nil for blank strings.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
