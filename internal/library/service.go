package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"shelfapi/internal/isbn"
	"shelfapi/internal/platform/openlibrary"
)

type Config struct {
	CoverSize string
}

type Service struct {
	store   Store
	catalog Catalog
	covers  CoverFetcher
	cfg     Config
	logger  *slog.Logger
}

func NewService(store Store, catalog Catalog, covers CoverFetcher, cfg Config, logger *slog.Logger) *Service {
	if cfg.CoverSize == "" {
		cfg.CoverSize = "L"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		catalog: catalog,
		covers:  covers,
		cfg:     cfg,
		logger:  logger.With("component", "library"),
	}
}

func (s *Service) normalize(raw string) (string, error) {
	code, err := isbn.Extract(raw)
	if err != nil {
		return "", newError(KindInvalidISBN, raw, "", err)
	}
	return code, nil
}

// AddByISBN adds the book to the user's library. The ownership check runs
// first; an existing shared record is reused; only a full miss reaches the
// catalog and the cover service.
func (s *Service) AddByISBN(ctx context.Context, userID, rawISBN string) (*Item, error) {
	if userID == "" {
		return nil, newError(KindUnauthorized, "", "", nil)
	}
	code, err := s.normalize(rawISBN)
	if err != nil {
		return nil, err
	}

	owned, err := s.store.OwnsISBN(ctx, userID, code)
	if err != nil {
		return nil, newError(KindPersistenceFailure, code, "", err)
	}
	if owned {
		return nil, newError(KindAlreadyOwned, code, "", nil)
	}

	book, err := s.store.FindByISBN(ctx, code)
	switch {
	case errors.Is(err, ErrNotFound):
		book, err = s.createBook(ctx, code)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, newError(KindPersistenceFailure, code, "", err)
	default:
		s.logger.Debug("reusing shared book", "isbn", code, "book_id", book.ID)
	}

	own, err := s.store.AddOwnership(ctx, userID, book.ID)
	if err != nil {
		if errors.Is(err, ErrAlreadyOwned) {
			return nil, newError(KindAlreadyOwned, code, "", nil)
		}
		return nil, newError(KindPersistenceFailure, code, "", err)
	}

	s.logger.Info("book added", "isbn", code, "book_id", book.ID, "user_id", userID)
	return &Item{
		ID:        own.ID,
		BookID:    book.ID,
		Title:     book.Title,
		Author:    book.Author,
		ISBN:      book.ISBN,
		CoverPath: book.CoverPath,
		CoverURL:  coverURLFor(book.CoverPath),
		AddedAt:   own.AddedAt,
	}, nil
}

func (s *Service) createBook(ctx context.Context, code string) (*Book, error) {
	meta, err := s.catalog.Lookup(ctx, code)
	if err != nil {
		if errors.Is(err, openlibrary.ErrNotFound) {
			return nil, newError(KindNotFoundInCatalog, code, "", err)
		}
		return nil, newError(KindUpstreamUnavailable, code, "", err)
	}

	b := &Book{
		ISBN:        &code,
		Title:       meta.Title,
		Author:      meta.Author(),
		CatalogKey:  meta.CatalogKey,
		WorkKey:     strPtr(meta.WorkKey),
		Description: strPtr(meta.Description),
		Subjects:    meta.Subjects,
		PublishDate: strPtr(meta.PublishDate),
		Publishers:  meta.Publishers,
		PageCount:   intPtr(meta.NumberOfPages),
	}
	if c := s.covers.Fetch(ctx, code, s.cfg.CoverSize); c != nil {
		b.CoverPath = strPtr(c.Path)
		b.CoverBlurHash = strPtr(c.BlurHash)
	}

	saved, err := s.store.InsertIfAbsent(ctx, b)
	if err != nil {
		return nil, newError(KindPersistenceFailure, code, "", err)
	}
	return saved, nil
}

// Lookup previews an ISBN without writing anything. A catalog miss is a
// result with Found false, not an error.
func (s *Service) Lookup(ctx context.Context, rawISBN string) (*LookupResult, error) {
	code, err := s.normalize(rawISBN)
	if err != nil {
		return nil, err
	}

	book, err := s.store.FindByISBN(ctx, code)
	switch {
	case err == nil:
		return &LookupResult{
			Found:         true,
			ISBN:          code,
			Title:         book.Title,
			Author:        book.Author,
			CoverURL:      coverURLFor(book.CoverPath),
			Description:   deref(book.Description),
			Subjects:      book.Subjects,
			PublishDate:   deref(book.PublishDate),
			Publishers:    book.Publishers,
			NumberOfPages: derefInt(book.PageCount),
			ExistsLocally: true,
		}, nil
	case !errors.Is(err, ErrNotFound):
		return nil, newError(KindPersistenceFailure, code, "", err)
	}

	meta, err := s.catalog.Lookup(ctx, code)
	if err != nil {
		if errors.Is(err, openlibrary.ErrNotFound) {
			return &LookupResult{
				Found:   false,
				ISBN:    code,
				Message: "Book not found on OpenLibrary",
			}, nil
		}
		return nil, newError(KindUpstreamUnavailable, code, "", err)
	}

	return &LookupResult{
		Found:         true,
		ISBN:          code,
		Title:         meta.Title,
		Author:        meta.Author(),
		CoverURL:      strPtr(meta.CoverURL),
		Description:   meta.Description,
		Subjects:      meta.Subjects,
		PublishDate:   meta.PublishDate,
		Publishers:    meta.Publishers,
		NumberOfPages: meta.NumberOfPages,
	}, nil
}

func (s *Service) List(ctx context.Context, userID string, page, pageSize int) (*Page, error) {
	page, pageSize = ClampPage(page, pageSize)
	items, total, err := s.store.ListOwned(ctx, userID, page, pageSize)
	if err != nil {
		return nil, newError(KindPersistenceFailure, "", "", err)
	}
	return &Page{Items: items, Page: page, PageSize: pageSize, Total: total}, nil
}

func (s *Service) Details(ctx context.Context, id, userID string) (*Details, error) {
	d, err := s.store.GetOwnedDetails(ctx, id, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, newError(KindNotFoundLocal, "", id, nil)
		}
		return nil, newError(KindPersistenceFailure, "", id, err)
	}
	return d, nil
}

// Remove deletes one ownership row. The shared book is kept.
func (s *Service) Remove(ctx context.Context, id, userID string) error {
	removed, err := s.store.RemoveOwnership(ctx, id, userID)
	if err != nil {
		return newError(KindPersistenceFailure, "", id, err)
	}
	if !removed {
		return newError(KindNotFoundLocal, "", id, nil)
	}
	return nil
}

// BatchRemove attempts every id independently. A failing id never stops the
// others; results keep input order.
func (s *Service) BatchRemove(ctx context.Context, ids []string, userID string) BatchRemoveResult {
	removed := make([]bool, len(ids))

	g := new(errgroup.Group)
	g.SetLimit(batchConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			if err := s.Remove(ctx, id, userID); err != nil {
				s.logger.Warn("batch remove item failed", "id", id, "kind", KindOf(err).String(), "error", err)
				return nil
			}
			removed[i] = true
			return nil
		})
	}
	_ = g.Wait()

	res := BatchRemoveResult{RemovedIDs: []string{}, FailedIDs: []string{}}
	for i, id := range ids {
		if removed[i] {
			res.RemovedIDs = append(res.RemovedIDs, id)
		} else {
			res.FailedIDs = append(res.FailedIDs, id)
		}
	}
	s.logger.Info("batch remove finished", "user_id", userID, "removed", len(res.RemovedIDs), "failed", len(res.FailedIDs))
	return res
}

// BulkAdd runs AddByISBN for each ISBN with bounded concurrency. Failures are
// reported by kind; successful adds are kept.
func (s *Service) BulkAdd(ctx context.Context, userID string, isbns []string) (*BulkAddResult, error) {
	if len(isbns) > MaxBulkAdd {
		return nil, fmt.Errorf("bulk add accepts at most %d ISBNs, got %d", MaxBulkAdd, len(isbns))
	}

	items := make([]*Item, len(isbns))
	errs := make([]error, len(isbns))

	g := new(errgroup.Group)
	g.SetLimit(bulkConcurrency)
	for i, raw := range isbns {
		g.Go(func() error {
			items[i], errs[i] = s.AddByISBN(ctx, userID, raw)
			return nil
		})
	}
	_ = g.Wait()

	res := &BulkAddResult{Added: []BulkAdded{}, Failed: []BulkFailed{}}
	for i, raw := range isbns {
		if errs[i] != nil {
			s.logger.Warn("bulk add item failed", "isbn", raw, "kind", KindOf(errs[i]).String(), "error", errs[i])
			res.Failed = append(res.Failed, BulkFailed{ISBN: raw, Error: KindOf(errs[i]).String()})
			continue
		}
		res.Added = append(res.Added, BulkAdded{ISBN: raw, Item: items[i]})
	}
	return res, nil
}
