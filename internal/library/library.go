// Package library keeps the shared book catalog and each user's ownership of
// those books, and orchestrates adding books by ISBN.
package library

import (
	"math"
	"time"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100

	MaxBulkAdd       = 20
	MaxBatchRemove   = 100
	bulkConcurrency  = 3
	batchConcurrency = 5
)

// Book is the shared record for an ISBN. One row per ISBN, referenced by
// every user who owns it.
type Book struct {
	ID            string    `json:"id"`
	ISBN          *string   `json:"isbn"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	CoverPath     *string   `json:"coverPath"`
	CoverBlurHash *string   `json:"coverBlurhash"`
	CatalogKey    string    `json:"catalogKey"`
	WorkKey       *string   `json:"workKey"`
	Description   *string   `json:"description"`
	Subjects      []string  `json:"subjects"`
	PublishDate   *string   `json:"publishDate"`
	Publishers    []string  `json:"publishers"`
	PageCount     *int      `json:"numberOfPages"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Ownership links a user to a shared Book.
type Ownership struct {
	ID      string    `json:"id"`
	UserID  string    `json:"userId"`
	BookID  string    `json:"bookId"`
	AddedAt time.Time `json:"addedAt"`
}

// Item is one entry of a user's library.
type Item struct {
	ID        string    `json:"id"`
	BookID    string    `json:"bookId"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	ISBN      *string   `json:"isbn"`
	CoverPath *string   `json:"coverPath"`
	CoverURL  *string   `json:"coverUrl"`
	AddedAt   time.Time `json:"addedAt"`
}

// Details is an owned book with its full metadata.
type Details struct {
	Item
	Description   *string  `json:"description"`
	Subjects      []string `json:"subjects"`
	PublishDate   *string  `json:"publishDate"`
	Publishers    []string `json:"publishers"`
	NumberOfPages *int     `json:"numberOfPages"`
	CatalogKey    string   `json:"catalogKey"`
	WorkKey       *string  `json:"workKey"`
	CoverBlurHash *string  `json:"coverBlurhash"`
}

// LookupResult is the preview for an ISBN. Found is false when the catalog
// has no record; that is a normal result, not an error.
type LookupResult struct {
	Found         bool     `json:"found"`
	ISBN          string   `json:"isbn"`
	Title         string   `json:"title,omitempty"`
	Author        string   `json:"author,omitempty"`
	CoverURL      *string  `json:"coverUrl,omitempty"`
	Description   string   `json:"description,omitempty"`
	Subjects      []string `json:"subjects,omitempty"`
	PublishDate   string   `json:"publishDate,omitempty"`
	Publishers    []string `json:"publishers,omitempty"`
	NumberOfPages int      `json:"numberOfPages,omitempty"`
	ExistsLocally bool     `json:"existsLocally"`
	Message       string   `json:"message,omitempty"`
}

// BatchRemoveResult lists ids in input order.
type BatchRemoveResult struct {
	RemovedIDs []string `json:"removedIds"`
	FailedIDs  []string `json:"failedIds"`
}

type BulkAdded struct {
	ISBN string `json:"isbn"`
	Item *Item  `json:"item"`
}

type BulkFailed struct {
	ISBN  string `json:"isbn"`
	Error string `json:"error"`
}

// BulkAddResult lists outcomes in input order.
type BulkAddResult struct {
	Added  []BulkAdded  `json:"added"`
	Failed []BulkFailed `json:"failed"`
}

// Page is one page of a user's library.
type Page struct {
	Items    []Item
	Page     int
	PageSize int
	Total    int
}

func (p Page) TotalPages() int {
	if p.PageSize < 1 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

func (p Page) HasMore() bool {
	return p.Page < p.TotalPages()
}

// MaxPage keeps (page-1)*pageSize within a Postgres int4-safe OFFSET.
const MaxPage = math.MaxInt32 / MaxPageSize

// ClampPage bounds page to [1, MaxPage] and pageSize to [1, MaxPageSize].
func ClampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// BlobURL is where the blob handler serves a stored cover.
func BlobURL(path string) string {
	return "/api/blob/" + path
}

func coverURLFor(path *string) *string {
	if path == nil || *path == "" {
		return nil
	}
	u := BlobURL(*path)
	return &u
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func intPtr(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
