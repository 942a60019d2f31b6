package book

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookColumns = `id, isbn, title, author, genre, published_year, publisher,
       description, total_copies, available_copies, image_url, created_at, updated_at`

// PostgresRepo implements Repository on a pgx pool.
type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func scanBook(row pgx.Row, b *Book) error {
	return row.Scan(
		&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Genre, &b.PublishedYear, &b.Publisher,
		&b.Description, &b.TotalCopies, &b.AvailableCopies, &b.ImageURL,
		&b.CreatedAt, &b.UpdatedAt,
	)
}

func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	const query = `
	INSERT INTO books (id, isbn, title, author, genre, published_year, publisher,
	                   description, total_copies, available_copies, image_url)
	VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		b.ISBN, b.Title, b.Author, b.Genre, b.PublishedYear, b.Publisher,
		b.Description, b.TotalCopies, b.AvailableCopies, b.ImageURL,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateISBN
	}
	return err
}

// Update builds the SET list from the non-nil fields. When total_copies
// changes, available_copies moves by the same delta in the same statement,
// floored at zero; every expression sees the pre-update row, so the edit
// cannot race a concurrent borrow into a negative count.
func (r *PostgresRepo) Update(ctx context.Context, id string, in UpdateInput) (Book, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	argn := 2

	set := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argn))
		args = append(args, value)
		argn++
	}

	if in.Title != nil {
		set("title", *in.Title)
	}
	if in.Author != nil {
		set("author", *in.Author)
	}
	if in.Genre != nil {
		set("genre", *in.Genre)
	}
	if in.PublishedYear != nil {
		set("published_year", *in.PublishedYear)
	}
	if in.Publisher != nil {
		set("publisher", *in.Publisher)
	}
	if in.Description != nil {
		set("description", *in.Description)
	}
	if in.ImageURL != nil {
		set("image_url", *in.ImageURL)
	}
	if in.TotalCopies != nil {
		sets = append(sets,
			fmt.Sprintf("total_copies = $%d", argn),
			fmt.Sprintf("available_copies = GREATEST(0, available_copies + ($%d - total_copies))", argn),
		)
		args = append(args, *in.TotalCopies)
		argn++
	}

	query := fmt.Sprintf(`
	UPDATE books SET %s
	WHERE id = $1
	RETURNING %s`, strings.Join(sets, ", "), bookColumns)

	var b Book
	if err := scanBook(r.db.QueryRow(ctx, query, args...), &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books WHERE id = $1 LIMIT 1`, bookColumns)
	var b Book
	if err := scanBook(r.db.QueryRow(ctx, query, id), &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books WHERE isbn = $1 LIMIT 1`, bookColumns)
	var b Book
	if err := scanBook(r.db.QueryRow(ctx, query, isbn), &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

// likeEscaper neutralizes LIKE metacharacters in user-supplied search
// terms so "%" and "_" match themselves instead of acting as wildcards.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Book, int, error) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	if q.Search != "" {
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR author ILIKE $%d)", argn, argn+1))
		pattern := likePattern(q.Search)
		args = append(args, pattern, pattern)
		argn += 2
	}
	if q.Genre != "" {
		clauses = append(clauses, fmt.Sprintf("lower(genre) = lower($%d)", argn))
		args = append(args, q.Genre)
		argn++
	}

	where := "WHERE " + strings.Join(clauses, " AND ")

	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM books %s", where)
	var total int
	if err := r.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := fmt.Sprintf(`
	SELECT %s
	FROM books
	%s
	ORDER BY created_at DESC
	LIMIT $%d OFFSET $%d`, bookColumns, where, argn, argn+1)

	args = append(args, q.PageSize, (q.Page-1)*q.PageSize)
	rows, err := r.db.Query(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(
			&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Genre, &b.PublishedYear, &b.Publisher,
			&b.Description, &b.TotalCopies, &b.AvailableCopies, &b.ImageURL,
			&b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

// DecrementAvailable takes one copy off the shelf. The availability
// check and the decrement are a single conditional write, so two
// concurrent borrows cannot both take the last copy.
func (r *PostgresRepo) DecrementAvailable(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
	UPDATE books
	SET available_copies = available_copies - 1, updated_at = now()
	WHERE id = $1 AND available_copies > 0`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// IncrementAvailable puts one copy back, clamped at total_copies. A
// no-op when the book has been deleted; the borrow history still holds.
func (r *PostgresRepo) IncrementAvailable(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `
	UPDATE books
	SET available_copies = LEAST(available_copies + 1, total_copies), updated_at = now()
	WHERE id = $1`, id)
	return err
}
