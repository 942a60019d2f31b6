package borrow

import (
	"context"
	"fmt"
	"time"
)

// Service applies the borrow/return state transitions and keeps the
// copy accounting consistent with the borrow history.
type Service struct {
	books      BookStore
	records    Repository
	loanPeriod time.Duration
	now        func() time.Time
}

// NewService creates the accounting service. loanPeriod <= 0 falls back
// to the 14-day default.
func NewService(books BookStore, records Repository, loanPeriod time.Duration) *Service {
	if loanPeriod <= 0 {
		loanPeriod = DefaultLoanPeriod
	}
	return &Service{
		books:      books,
		records:    records,
		loanPeriod: loanPeriod,
		now:        time.Now,
	}
}

// Borrow takes one copy of the book for the user. Precondition order
// matters: an unknown book wins over everything, a duplicate borrow
// wins over an exhausted pool.
//
// The availability check and the decrement happen as one conditional
// write on the book row, so concurrent borrows cannot over-commit the
// last copy. The record insert is its own failure domain: if it fails,
// the decrement is compensated, and a failed compensation is surfaced
// as ErrPartialFailure instead of being swallowed.
func (s *Service) Borrow(ctx context.Context, userID, bookID string) (Record, error) {
	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		return Record{}, err
	}

	active, err := s.records.HasActive(ctx, userID, bookID)
	if err != nil {
		return Record{}, err
	}
	if active {
		return Record{}, ErrAlreadyBorrowed
	}

	decremented, err := s.books.DecrementAvailable(ctx, bookID)
	if err != nil {
		return Record{}, err
	}
	if !decremented {
		return Record{}, ErrNoCopies
	}

	now := s.now()
	rec := Record{
		UserID:       userID,
		BookID:       bookID,
		BorrowedDate: now,
		DueDate:      now.Add(s.loanPeriod),
	}
	if err := s.records.Insert(ctx, &rec); err != nil {
		if cerr := s.books.IncrementAvailable(ctx, bookID); cerr != nil {
			return Record{}, fmt.Errorf("%w: record insert failed (%v), copy compensation failed (%v)", ErrPartialFailure, err, cerr)
		}
		return Record{}, err
	}
	return rec, nil
}

// Return marks the user's active record for the book as returned and
// puts the copy back on the shelf. The increment is clamped at
// total_copies in the store, so a stale or double return can never push
// availability past the pool size.
func (s *Service) Return(ctx context.Context, userID, bookID string) error {
	returned, err := s.records.MarkReturned(ctx, userID, bookID, s.now())
	if err != nil {
		return err
	}
	if !returned {
		return ErrNoActiveBorrow
	}

	if err := s.books.IncrementAvailable(ctx, bookID); err != nil {
		return fmt.Errorf("%w: record marked returned, copy increment failed (%v)", ErrPartialFailure, err)
	}
	return nil
}

// ListActive returns a snapshot of the user's unreturned records in
// insertion order, each annotated with whether it is overdue right now.
func (s *Service) ListActive(ctx context.Context, userID string) ([]ActiveRecord, error) {
	records, err := s.records.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]ActiveRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, ActiveRecord{
			Record:    rec,
			IsOverdue: now.After(rec.DueDate),
		})
	}
	return out, nil
}

// ListHistory returns every record the user ever created, returned or
// not, in insertion order.
func (s *Service) ListHistory(ctx context.Context, userID string) ([]Record, error) {
	return s.records.ListAll(ctx, userID)
}
