package book

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	// DefaultPageSize is used when the caller does not ask for one.
	DefaultPageSize = 10
	// MinPublishedYear bounds how old a catalog entry may claim to be.
	MinPublishedYear = 1000
)

// CreateInput carries the fields required to add a book to the catalog.
type CreateInput struct {
	ISBN          string `json:"isbn"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Genre         string `json:"genre"`
	PublishedYear int    `json:"published_year"`
	Publisher     string `json:"publisher"`
	Description   string `json:"description"`
	TotalCopies   int    `json:"total_copies"`
	ImageURL      string `json:"image_url"`
}

// UpdateInput carries a partial update. Nil fields are left untouched.
// ISBN is immutable after creation, so it is not part of this struct;
// handlers drop it from incoming payloads.
type UpdateInput struct {
	Title         *string `json:"title"`
	Author        *string `json:"author"`
	Genre         *string `json:"genre"`
	PublishedYear *int    `json:"published_year"`
	Publisher     *string `json:"publisher"`
	Description   *string `json:"description"`
	TotalCopies   *int    `json:"total_copies"`
	ImageURL      *string `json:"image_url"`
}

// Service provides catalog business logic.
type Service struct {
	repo        Repository
	maxPageSize int
	now         func() time.Time
}

// NewService creates a catalog service. maxPageSize caps Query.PageSize.
func NewService(repo Repository, maxPageSize int) *Service {
	if maxPageSize <= 0 {
		maxPageSize = 100
	}
	return &Service{repo: repo, maxPageSize: maxPageSize, now: time.Now}
}

// Create validates the input and persists a new book with
// available_copies equal to total_copies.
func (s *Service) Create(ctx context.Context, in CreateInput) (Book, error) {
	if verrs := s.validateCreate(in); len(verrs) > 0 {
		return Book{}, verrs
	}

	if _, err := s.repo.GetByISBN(ctx, strings.TrimSpace(in.ISBN)); err == nil {
		return Book{}, ErrDuplicateISBN
	} else if !errors.Is(err, ErrNotFound) {
		return Book{}, err
	}

	b := Book{
		ISBN:            strings.TrimSpace(in.ISBN),
		Title:           strings.TrimSpace(in.Title),
		Author:          strings.TrimSpace(in.Author),
		Genre:           in.Genre,
		PublishedYear:   in.PublishedYear,
		Publisher:       strings.TrimSpace(in.Publisher),
		Description:     strings.TrimSpace(in.Description),
		TotalCopies:     in.TotalCopies,
		AvailableCopies: in.TotalCopies,
		ImageURL:        strings.TrimSpace(in.ImageURL),
	}
	if err := s.repo.Create(ctx, &b); err != nil {
		return Book{}, err
	}
	return b, nil
}

// Update applies a partial edit. A total_copies change shifts
// available_copies by the same delta, floored at zero, so copies
// currently out on loan are preserved.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Book, error) {
	if verrs := s.validateUpdate(in); len(verrs) > 0 {
		return Book{}, verrs
	}
	return s.repo.Update(ctx, id, in)
}

// Delete removes a book unconditionally. Borrow history referencing the
// book is kept; only the catalog entry goes away.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// GetByID returns a single book.
func (s *Service) GetByID(ctx context.Context, id string) (Book, error) {
	return s.repo.GetByID(ctx, id)
}

// Search returns one page of catalog matches, newest-created first.
// Page and page size are clamped to sane bounds before hitting the store.
func (s *Service) Search(ctx context.Context, q Query) (SearchResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > s.maxPageSize {
		q.PageSize = s.maxPageSize
	}

	books, total, err := s.repo.List(ctx, q)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{
		Books:      books,
		Total:      total,
		TotalPages: (total + q.PageSize - 1) / q.PageSize,
		Page:       q.Page,
		PageSize:   q.PageSize,
	}, nil
}

func validGenre(genre string) bool {
	return genre == GenreAcademic || genre == GenreNonAcademic
}

func (s *Service) validateCreate(in CreateInput) ValidationErrors {
	var verrs ValidationErrors
	if strings.TrimSpace(in.Title) == "" {
		verrs = append(verrs, FieldError{Field: "title", Message: "title is required"})
	}
	if strings.TrimSpace(in.Author) == "" {
		verrs = append(verrs, FieldError{Field: "author", Message: "author is required"})
	}
	if strings.TrimSpace(in.ISBN) == "" {
		verrs = append(verrs, FieldError{Field: "isbn", Message: "isbn is required"})
	}
	if strings.TrimSpace(in.Publisher) == "" {
		verrs = append(verrs, FieldError{Field: "publisher", Message: "publisher is required"})
	}
	if !validGenre(in.Genre) {
		verrs = append(verrs, FieldError{Field: "genre", Message: "genre must be Academic or Non-Academic"})
	}
	if year := s.now().Year(); in.PublishedYear < MinPublishedYear || in.PublishedYear > year {
		verrs = append(verrs, FieldError{Field: "published_year", Message: "published_year is out of range"})
	}
	if in.TotalCopies < 1 {
		verrs = append(verrs, FieldError{Field: "total_copies", Message: "total_copies must be at least 1"})
	}
	return verrs
}

func (s *Service) validateUpdate(in UpdateInput) ValidationErrors {
	var verrs ValidationErrors
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		verrs = append(verrs, FieldError{Field: "title", Message: "title cannot be empty"})
	}
	if in.Author != nil && strings.TrimSpace(*in.Author) == "" {
		verrs = append(verrs, FieldError{Field: "author", Message: "author cannot be empty"})
	}
	if in.Genre != nil && !validGenre(*in.Genre) {
		verrs = append(verrs, FieldError{Field: "genre", Message: "genre must be Academic or Non-Academic"})
	}
	if in.PublishedYear != nil {
		if year := s.now().Year(); *in.PublishedYear < MinPublishedYear || *in.PublishedYear > year {
			verrs = append(verrs, FieldError{Field: "published_year", Message: "published_year is out of range"})
		}
	}
	if in.TotalCopies != nil && *in.TotalCopies < 1 {
		verrs = append(verrs, FieldError{Field: "total_copies", Message: "total_copies must be at least 1"})
	}
	return verrs
}
