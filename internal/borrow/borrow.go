package borrow

import (
	"errors"
	"time"
)

// DefaultLoanPeriod is how long a borrowed copy may be kept.
const DefaultLoanPeriod = 14 * 24 * time.Hour

var (
	// ErrNoCopies is returned when every copy of the book is out.
	ErrNoCopies = errors.New("no copies available for borrowing")
	// ErrAlreadyBorrowed is returned when the user already holds an
	// unreturned copy of the book.
	ErrAlreadyBorrowed = errors.New("book already borrowed by this user")
	// ErrNoActiveBorrow is returned when a return finds no active
	// record for the (user, book) pair.
	ErrNoActiveBorrow = errors.New("no active borrow record found for this book")
	// ErrPartialFailure is returned when one side of the two-record
	// borrow/return write succeeded and the compensating write for the
	// other side failed. Book and borrow state may have diverged.
	ErrPartialFailure = errors.New("borrow state partially updated")
)

// BookSummary is the slice of catalog data carried on borrow listings.
type BookSummary struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	ISBN     string `json:"isbn"`
	ImageURL string `json:"image_url,omitempty"`
}

// Record is one user holding one copy of one book for a bounded period.
// Records are permanent history: a return marks them returned, nothing
// ever deletes them.
type Record struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	BookID       string       `json:"book_id"`
	BorrowedDate time.Time    `json:"borrowed_date"`
	DueDate      time.Time    `json:"due_date"`
	Returned     bool         `json:"returned"`
	ReturnDate   *time.Time   `json:"return_date,omitempty"`
	Book         *BookSummary `json:"book,omitempty"`
}

// ActiveRecord is a Record annotated with the lazily computed overdue
// flag. Overdue is never persisted; it is derived at read time.
type ActiveRecord struct {
	Record
	IsOverdue bool `json:"is_overdue"`
}
