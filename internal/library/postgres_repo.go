package library

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const bookColumns = `id, isbn, title, author, cover_path, cover_blurhash, catalog_key, work_key,
	description, subjects, publish_date, publishers, page_count, created_at`

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func scanBook(row pgx.Row) (*Book, error) {
	var b Book
	if err := row.Scan(
		&b.ID, &b.ISBN, &b.Title, &b.Author, &b.CoverPath, &b.CoverBlurHash, &b.CatalogKey, &b.WorkKey,
		&b.Description, &b.Subjects, &b.PublishDate, &b.Publishers, &b.PageCount, &b.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PostgresRepo) FindByISBN(ctx context.Context, isbn string) (*Book, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	b, err := scanBook(r.db.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE isbn = $1`, isbn))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find book %s: %w", isbn, err)
	}
	return b, nil
}

// InsertIfAbsent relies on the unique index on books.isbn. A conflicting
// insert returns no row and the existing record is read back.
func (r *PostgresRepo) InsertIfAbsent(ctx context.Context, b *Book) (*Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO books (isbn, title, author, cover_path, cover_blurhash, catalog_key, work_key,
		                   description, subjects, publish_date, publishers, page_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (isbn) DO NOTHING
		RETURNING ` + bookColumns

	inserted, err := scanBook(r.db.QueryRow(timeoutCtx, query,
		b.ISBN, b.Title, b.Author, b.CoverPath, b.CoverBlurHash, b.CatalogKey, b.WorkKey,
		b.Description, b.Subjects, b.PublishDate, b.Publishers, b.PageCount,
	))
	if err == nil {
		return inserted, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("insert book: %w", err)
	}
	if b.ISBN == nil {
		return nil, fmt.Errorf("insert book: no row returned")
	}
	return r.FindByISBN(ctx, *b.ISBN)
}

func (r *PostgresRepo) OwnsISBN(ctx context.Context, userID, isbn string) (bool, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return false, nil
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var owned bool
	err = r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_books ub
			JOIN books b ON b.id = ub.book_id
			WHERE ub.user_id = $1 AND b.isbn = $2
		)`, uid, isbn).Scan(&owned)
	if err != nil {
		return false, fmt.Errorf("check ownership: %w", err)
	}
	return owned, nil
}

func (r *PostgresRepo) AddOwnership(ctx context.Context, userID, bookID string) (*Ownership, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	o := Ownership{UserID: userID, BookID: bookID}
	err := r.db.QueryRow(ctx, `
		INSERT INTO user_books (user_id, book_id)
		VALUES ($1, $2)
		RETURNING id, added_at`, userID, bookID).Scan(&o.ID, &o.AddedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrAlreadyOwned
		}
		return nil, fmt.Errorf("insert ownership: %w", err)
	}
	return &o, nil
}

func (r *PostgresRepo) ListOwned(ctx context.Context, userID string, page, pageSize int) ([]Item, int, error) {
	page, pageSize = ClampPage(page, pageSize)
	uid, err := uuid.Parse(userID)
	if err != nil {
		return []Item{}, 0, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM user_books WHERE user_id = $1`, uid).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count library: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT ub.id, b.id, b.title, b.author, b.isbn, b.cover_path, ub.added_at
		FROM user_books ub
		JOIN books b ON b.id = ub.book_id
		WHERE ub.user_id = $1
		ORDER BY ub.added_at DESC, ub.id DESC
		LIMIT $2 OFFSET $3`, uid, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list library: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.BookID, &it.Title, &it.Author, &it.ISBN, &it.CoverPath, &it.AddedAt); err != nil {
			return nil, 0, fmt.Errorf("scan library item: %w", err)
		}
		it.CoverURL = coverURLFor(it.CoverPath)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list library: %w", err)
	}
	return items, total, nil
}

// RemoveOwnership deletes only when both id and user match. Malformed ids
// match nothing.
func (r *PostgresRepo) RemoveOwnership(ctx context.Context, id, userID string) (bool, error) {
	oid, err := uuid.Parse(id)
	if err != nil {
		return false, nil
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return false, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM user_books WHERE id = $1 AND user_id = $2`, oid, uid)
	if err != nil {
		return false, fmt.Errorf("remove ownership %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresRepo) GetOwnedDetails(ctx context.Context, id, userID string) (*Details, error) {
	oid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrNotFound
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var d Details
	err = r.db.QueryRow(ctx, `
		SELECT ub.id, b.id, b.title, b.author, b.isbn, b.cover_path, ub.added_at,
		       b.description, b.subjects, b.publish_date, b.publishers, b.page_count,
		       b.catalog_key, b.work_key, b.cover_blurhash
		FROM user_books ub
		JOIN books b ON b.id = ub.book_id
		WHERE ub.id = $1 AND ub.user_id = $2`, oid, uid).Scan(
		&d.ID, &d.BookID, &d.Title, &d.Author, &d.ISBN, &d.CoverPath, &d.AddedAt,
		&d.Description, &d.Subjects, &d.PublishDate, &d.Publishers, &d.NumberOfPages,
		&d.CatalogKey, &d.WorkKey, &d.CoverBlurHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get library entry %s: %w", id, err)
	}
	d.CoverURL = coverURLFor(d.CoverPath)
	return &d, nil
}

// Ping reports whether the pool can reach the database.
func (r *PostgresRepo) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.Ping(ctx)
}
