package library

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memStore is an in-memory Store with the same uniqueness rules as the
// Postgres schema.
type memStore struct {
	mu         sync.Mutex
	books      map[string]*Book
	ownerships []Ownership
	clock      time.Time
}

func newMemStore() *memStore {
	return &memStore{
		books: map[string]*Book{},
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) bookByID(id string) *Book {
	for _, b := range s.books {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (s *memStore) FindByISBN(_ context.Context, isbn string) (*Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[isbn]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *memStore) InsertIfAbsent(_ context.Context, b *Book) (*Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.books[*b.ISBN]; ok {
		cp := *existing
		return &cp, nil
	}
	cp := *b
	cp.ID = uuid.NewString()
	cp.CreatedAt = s.tick()
	s.books[*b.ISBN] = &cp
	out := cp
	return &out, nil
}

func (s *memStore) OwnsISBN(_ context.Context, userID, isbn string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[isbn]
	if !ok {
		return false, nil
	}
	for _, o := range s.ownerships {
		if o.UserID == userID && o.BookID == b.ID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) AddOwnership(_ context.Context, userID, bookID string) (*Ownership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.ownerships {
		if o.UserID == userID && o.BookID == bookID {
			return nil, ErrAlreadyOwned
		}
	}
	o := Ownership{ID: uuid.NewString(), UserID: userID, BookID: bookID, AddedAt: s.tick()}
	s.ownerships = append(s.ownerships, o)
	return &o, nil
}

func (s *memStore) ListOwned(_ context.Context, userID string, page, pageSize int) ([]Item, int, error) {
	page, pageSize = ClampPage(page, pageSize)
	s.mu.Lock()
	defer s.mu.Unlock()

	var owned []Ownership
	for _, o := range s.ownerships {
		if o.UserID == userID {
			owned = append(owned, o)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].AddedAt.After(owned[j].AddedAt) })

	items := []Item{}
	start := (page - 1) * pageSize
	for i := start; i < len(owned) && i < start+pageSize; i++ {
		b := s.bookByID(owned[i].BookID)
		items = append(items, Item{
			ID:        owned[i].ID,
			BookID:    b.ID,
			Title:     b.Title,
			Author:    b.Author,
			ISBN:      b.ISBN,
			CoverPath: b.CoverPath,
			CoverURL:  coverURLFor(b.CoverPath),
			AddedAt:   owned[i].AddedAt,
		})
	}
	return items, len(owned), nil
}

func (s *memStore) RemoveOwnership(_ context.Context, id, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, o := range s.ownerships {
		if o.ID == id && o.UserID == userID {
			s.ownerships = append(s.ownerships[:i], s.ownerships[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) GetOwnedDetails(_ context.Context, id, userID string) (*Details, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.ownerships {
		if o.ID != id || o.UserID != userID {
			continue
		}
		b := s.bookByID(o.BookID)
		return &Details{
			Item: Item{
				ID:        o.ID,
				BookID:    b.ID,
				Title:     b.Title,
				Author:    b.Author,
				ISBN:      b.ISBN,
				CoverPath: b.CoverPath,
				CoverURL:  coverURLFor(b.CoverPath),
				AddedAt:   o.AddedAt,
			},
			Description:   b.Description,
			Subjects:      b.Subjects,
			PublishDate:   b.PublishDate,
			Publishers:    b.Publishers,
			NumberOfPages: b.PageCount,
			CatalogKey:    b.CatalogKey,
			WorkKey:       b.WorkKey,
			CoverBlurHash: b.CoverBlurHash,
		}, nil
	}
	return nil, ErrNotFound
}

func (s *memStore) bookCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.books)
}

func (s *memStore) ownershipCount(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, o := range s.ownerships {
		if userID == "" || o.UserID == userID {
			n++
		}
	}
	return n
}
