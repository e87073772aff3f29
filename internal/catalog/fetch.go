package catalog

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	userAgent       = "spigell/internmatch"
	contentEncoding = "gzip"
	fetchTimeout    = 10 * time.Second
)

// Fetcher downloads a CSV catalog over HTTP.
type Fetcher struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
}

func NewFetcher(logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Fetcher{
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: fetchTimeout,
		},
		UserAgent: userAgent,
	}
}

// Fetch makes GET request to url and parses the body as a CSV catalog.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set("Accept", "text/csv")

	f.logger.Debug("make request", zap.String("url", req.URL.String()))

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		body = gz
	}

	c, err := Load(body)
	if err != nil {
		return nil, fmt.Errorf("loading catalog from %s: %w", url, err)
	}

	f.logger.Debug("got catalog", zap.String("url", url), zap.Int("postings", c.Len()))

	return c, nil
}
