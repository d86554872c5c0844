// Package source holds what the per-site sync recipes share.
package source

import "context"

// Fetcher retrieves upstream HTML.
type Fetcher interface {
	Get(ctx context.Context, url string, query map[string]string) (string, error)
}
