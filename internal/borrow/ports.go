package borrow

import (
	"context"
	"time"

	"libraryapi/internal/book"
)

// Repository defines the contract for borrow-record storage. Records
// are their own table keyed by (user_id, book_id), not a list embedded
// in the user document, so history size never bloats the user record.
type Repository interface {
	// Insert persists a new active record and fills in its ID.
	Insert(ctx context.Context, rec *Record) error
	// HasActive reports whether the user holds an unreturned copy of the book.
	HasActive(ctx context.Context, userID, bookID string) (bool, error)
	// MarkReturned flips the active record for (user, book) to returned.
	// Reports false when no active record exists.
	MarkReturned(ctx context.Context, userID, bookID string, returnedAt time.Time) (bool, error)
	// ListActive returns the user's unreturned records in insertion order.
	ListActive(ctx context.Context, userID string) ([]Record, error)
	// ListAll returns the user's full history in insertion order.
	ListAll(ctx context.Context, userID string) ([]Record, error)
}

// BookStore is the slice of the catalog the accounting core needs.
// *book.PostgresRepo satisfies it.
type BookStore interface {
	GetByID(ctx context.Context, id string) (book.Book, error)
	DecrementAvailable(ctx context.Context, id string) (bool, error)
	IncrementAvailable(ctx context.Context, id string) error
}
