package book

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, b *Book) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *mockRepo) Update(ctx context.Context, id string, in UpdateInput) (Book, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(Book), args.Error(1)
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (Book, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Book), args.Error(1)
}

func (m *mockRepo) GetByISBN(ctx context.Context, isbn string) (Book, error) {
	args := m.Called(ctx, isbn)
	return args.Get(0).(Book), args.Error(1)
}

func (m *mockRepo) List(ctx context.Context, q Query) ([]Book, int, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]Book), args.Int(1), args.Error(2)
}

func validCreateInput() CreateInput {
	return CreateInput{
		ISBN:          "9780134190440",
		Title:         "The Go Programming Language",
		Author:        "Alan A. A. Donovan",
		Genre:         GenreAcademic,
		PublishedYear: 2015,
		Publisher:     "Addison-Wesley",
		TotalCopies:   3,
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("available copies start equal to total", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewService(repo, 100)

		repo.On("GetByISBN", ctx, "9780134190440").Return(Book{}, ErrNotFound)
		repo.On("Create", ctx, mock.MatchedBy(func(b *Book) bool {
			return b.AvailableCopies == 3 && b.TotalCopies == 3
		})).Return(nil)

		created, err := s.Create(ctx, validCreateInput())
		assert.NoError(t, err)
		assert.Equal(t, created.TotalCopies, created.AvailableCopies)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate isbn", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewService(repo, 100)

		repo.On("GetByISBN", ctx, "9780134190440").Return(Book{ID: "existing"}, nil)

		_, err := s.Create(ctx, validCreateInput())
		assert.ErrorIs(t, err, ErrDuplicateISBN)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("validation errors are reported per field", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewService(repo, 100)

		in := CreateInput{Genre: "Fiction", PublishedYear: 999, TotalCopies: 0}
		_, err := s.Create(ctx, in)

		var verrs ValidationErrors
		assert.ErrorAs(t, err, &verrs)

		fields := map[string]bool{}
		for _, fe := range verrs {
			fields[fe.Field] = true
		}
		for _, want := range []string{"title", "author", "isbn", "publisher", "genre", "published_year", "total_copies"} {
			assert.True(t, fields[want], "expected a validation error for %s", want)
		}
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("published year in the future", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewService(repo, 100)
		s.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

		in := validCreateInput()
		in.PublishedYear = 2026
		_, err := s.Create(ctx, in)

		var verrs ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("passes partial input through", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewService(repo, 100)

		title := "New Title"
		in := UpdateInput{Title: &title}
		repo.On("Update", ctx, "book-1", in).Return(Book{ID: "book-1", Title: title}, nil)

		updated, err := s.Update(ctx, "book-1", in)
		assert.NoError(t, err)
		assert.Equal(t, title, updated.Title)
	})

	t.Run("rejects invalid genre", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewService(repo, 100)

		genre := "Fiction"
		_, err := s.Update(ctx, "book-1", UpdateInput{Genre: &genre})

		var verrs ValidationErrors
		assert.ErrorAs(t, err, &verrs)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects total copies below one", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewService(repo, 100)

		zero := 0
		_, err := s.Update(ctx, "book-1", UpdateInput{TotalCopies: &zero})

		var verrs ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	})

	t.Run("unknown id", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewService(repo, 100)

		repo.On("Update", ctx, "missing", mock.Anything).Return(Book{}, ErrNotFound)

		_, err := s.Update(ctx, "missing", UpdateInput{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults and total pages", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewService(repo, 100)

		repo.On("List", ctx, Query{Page: 1, PageSize: 10}).Return([]Book{{ID: "b1"}}, 25, nil)

		result, err := s.Search(ctx, Query{})
		assert.NoError(t, err)
		assert.Equal(t, 1, result.Page)
		assert.Equal(t, 10, result.PageSize)
		assert.Equal(t, 25, result.Total)
		assert.Equal(t, 3, result.TotalPages)
	})

	t.Run("page size is clamped to the maximum", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewService(repo, 50)

		repo.On("List", ctx, Query{Page: 1, PageSize: 50}).Return(nil, 0, nil)

		result, err := s.Search(ctx, Query{Page: 1, PageSize: 10000})
		assert.NoError(t, err)
		assert.Equal(t, 50, result.PageSize)
		repo.AssertExpectations(t)
	})

	t.Run("filters are forwarded", func(t *testing.T) {
		repo := new(mockRepo)
		s := NewService(repo, 100)

		want := Query{Search: "tolkien", Genre: GenreNonAcademic, Page: 2, PageSize: 5}
		repo.On("List", ctx, want).Return([]Book{}, 0, nil)

		_, err := s.Search(ctx, want)
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})
}
