package library

import (
	"context"
	"errors"
	"time"

	"shelfapi/internal/cover"
	"shelfapi/internal/platform/openlibrary"
)

// ErrNotFound is returned by Store lookups that match no row.
var ErrNotFound = errors.New("not found")

//go:generate mockgen -destination=mock_store_test.go -package=library shelfapi/internal/library Store

// Store persists shared books and ownership rows.
type Store interface {
	// FindByISBN returns ErrNotFound when no book has the ISBN.
	FindByISBN(ctx context.Context, isbn string) (*Book, error)
	// InsertIfAbsent inserts b, or returns the existing row for its ISBN.
	InsertIfAbsent(ctx context.Context, b *Book) (*Book, error)
	OwnsISBN(ctx context.Context, userID, isbn string) (bool, error)
	// AddOwnership returns ErrAlreadyOwned when the user already links the book.
	AddOwnership(ctx context.Context, userID, bookID string) (*Ownership, error)
	ListOwned(ctx context.Context, userID string, page, pageSize int) ([]Item, int, error)
	RemoveOwnership(ctx context.Context, id, userID string) (bool, error)
	GetOwnedDetails(ctx context.Context, id, userID string) (*Details, error)
}

// Catalog looks up book metadata by ISBN.
// Errors match openlibrary.ErrNotFound or openlibrary.ErrUpstream.
type Catalog interface {
	Lookup(ctx context.Context, isbn string) (*openlibrary.Metadata, error)
}

// CoverFetcher stores a cover for an ISBN. nil means no cover.
type CoverFetcher interface {
	Fetch(ctx context.Context, isbn, size string) *cover.Cover
}

// Cache is a JSON key/value cache with expiry.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}
