package domain

import "time"

// SyncStats holds statistics about a sync operation.
type SyncStats struct {
	SourceID  string        `json:"source_id"`
	Fetched   int           `json:"fetched"`
	New       int           `json:"new"`
	Updated   int           `json:"updated"`
	Skipped   int           `json:"skipped"`
	Errors    int           `json:"errors"`
	Published int           `json:"published"`
	Duration  time.Duration `json:"duration"`
	Err       string        `json:"error,omitempty"`
}

// SyncState is the per-source bookkeeping row.
type SyncState struct {
	ID           int64     `db:"id"`
	SourceID     string    `db:"source_id"`
	LastSyncedAt time.Time `db:"last_synced_at"`
	TotalSynced  int64     `db:"total_synced"`
}

// ScrapedItem is one candidate produced by a source. Err is set when the item
// could not be extracted; Card is then only partially filled.
type ScrapedItem struct {
	Card ContentCard
	URL  string
	Err  error
}
