// Package fetcher retrieves upstream HTML pages.
package fetcher

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"campus_sync/internal/domain"
)

// Config holds fetcher configuration.
type Config struct {
	UserAgent      string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Fetcher performs GET requests with a fixed User-Agent, retrying transport
// failures and 5xx responses with exponential backoff.
type Fetcher struct {
	client *resty.Client
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Fetcher {
	client := resty.New()
	client.SetHeader("User-Agent", cfg.UserAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml")
	client.SetTimeout(cfg.Timeout)

	if cfg.MaxAttempts > 1 {
		client.SetRetryCount(cfg.MaxAttempts - 1)
		client.SetRetryWaitTime(cfg.InitialBackoff)
		client.SetRetryMaxWaitTime(cfg.MaxBackoff)
		client.AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})
	}

	f := &Fetcher{client: client, logger: logger.With("component", "fetcher")}
	client.OnError(func(req *resty.Request, err error) {
		f.logger.Debug("request failed", "url", req.URL, "attempt", req.Attempt, "error", err)
	})

	return f
}

// Get fetches url with the optional query parameters and returns the body.
// Non-2xx responses fail with *domain.FetchError, transport failures with
// *domain.NetworkError.
func (f *Fetcher) Get(ctx context.Context, url string, query map[string]string) (string, error) {
	req := f.client.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(url)
	if err != nil {
		return "", &domain.NetworkError{URL: url, Err: err}
	}

	if !resp.IsSuccess() {
		return "", &domain.FetchError{URL: url, StatusCode: resp.StatusCode()}
	}

	f.logger.Debug("fetched page", "url", url, "status", resp.StatusCode(), "bytes", len(resp.Body()))

	return resp.String(), nil
}
