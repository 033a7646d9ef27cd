package pdfcache

import (
	"context"
	"time"
)

// Entry is one cached document blob awaiting download.
type Entry struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Payload     []byte    `json:"payload"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store is a bounded, short-lived blob cache bridging document generation
// and the download endpoint. Implementations evict oldest-by-createdAt once
// the capacity is exceeded.
type Store interface {
	Put(ctx context.Context, entry Entry) error
	Get(ctx context.Context, id string) (*Entry, error)
	Delete(ctx context.Context, id string) error
}
