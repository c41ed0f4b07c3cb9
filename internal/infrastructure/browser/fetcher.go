package browser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"stock-advisor/internal/application/port/output"
	"stock-advisor/internal/domain/entity"
)

// UserAgent is sent by both fetchers; search pages serve a stripped layout to
// unknown clients.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/102.0.0.0 Safari/537.36"

const maxPageBytes = 8 << 20

var _ output.PageFetcher = (*HTTPFetcher)(nil)

// HTTPFetcher loads pages without running scripts.
type HTTPFetcher struct {
	client *http.Client
	logger output.LoggerPort
}

func NewHTTPFetcher(timeout time.Duration, logger output.LoggerPort) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetch %s: %w", entity.ErrUpstream, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: fetch %s: status %d", entity.ErrUpstream, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", entity.ErrUpstream, url, err)
	}

	if f.logger != nil {
		f.logger.Debug("Page fetched", "url", url, "bytes", len(body))
	}
	return string(body), nil
}
