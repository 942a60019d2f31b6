package borrow

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepo implements Repository on a pgx pool.
type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Insert(ctx context.Context, rec *Record) error {
	const query = `
	INSERT INTO borrow_records (id, user_id, book_id, borrowed_date, due_date, returned)
	VALUES (gen_random_uuid(), $1, $2, $3, $4, false)
	RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		rec.UserID, rec.BookID, rec.BorrowedDate, rec.DueDate,
	).Scan(&rec.ID)

	// The partial unique index on (user_id, book_id) WHERE NOT returned
	// backstops the service-level duplicate check under concurrency.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyBorrowed
	}
	return err
}

func (r *PostgresRepo) HasActive(ctx context.Context, userID, bookID string) (bool, error) {
	const query = `
	SELECT 1 FROM borrow_records
	WHERE user_id = $1 AND book_id = $2 AND NOT returned
	LIMIT 1
	`
	var one int
	err := r.db.QueryRow(ctx, query, userID, bookID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PostgresRepo) MarkReturned(ctx context.Context, userID, bookID string, returnedAt time.Time) (bool, error) {
	const query = `
	UPDATE borrow_records
	SET returned = true, return_date = $3
	WHERE user_id = $1 AND book_id = $2 AND NOT returned
	`
	tag, err := r.db.Exec(ctx, query, userID, bookID, returnedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresRepo) ListActive(ctx context.Context, userID string) ([]Record, error) {
	return r.list(ctx, userID, true)
}

func (r *PostgresRepo) ListAll(ctx context.Context, userID string) ([]Record, error) {
	return r.list(ctx, userID, false)
}

// list joins the catalog for display data. LEFT JOIN because a book may
// have been deleted while borrows of it were outstanding; the record
// survives with an empty summary.
func (r *PostgresRepo) list(ctx context.Context, userID string, activeOnly bool) ([]Record, error) {
	query := `
	SELECT r.id, r.user_id, r.book_id, r.borrowed_date, r.due_date, r.returned, r.return_date,
	       b.title, b.author, b.isbn, b.image_url
	FROM borrow_records r
	LEFT JOIN books b ON b.id = r.book_id
	WHERE r.user_id = $1
	`
	if activeOnly {
		query += " AND NOT r.returned"
	}
	query += " ORDER BY r.position ASC"

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var title, author, isbn, imageURL *string
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.BookID, &rec.BorrowedDate, &rec.DueDate,
			&rec.Returned, &rec.ReturnDate,
			&title, &author, &isbn, &imageURL,
		); err != nil {
			return nil, err
		}
		if title != nil {
			summary := BookSummary{Title: *title}
			if author != nil {
				summary.Author = *author
			}
			if isbn != nil {
				summary.ISBN = *isbn
			}
			if imageURL != nil {
				summary.ImageURL = *imageURL
			}
			rec.Book = &summary
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
