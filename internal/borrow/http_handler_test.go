package borrow

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"libraryapi/internal/book"
	"libraryapi/internal/httpx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func authedRequest(method, target, userID string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := httpx.ContextWithUser(req.Context(), userID, "USER")
	return req.WithContext(ctx)
}

func TestHandler_Borrow(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(books *mockBookStore, records *mockRecordRepo)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "success",
			setupMock: func(books *mockBookStore, records *mockRecordRepo) {
				books.On("GetByID", mock.Anything, "book-1").Return(testBook, nil)
				records.On("HasActive", mock.Anything, "user-a", "book-1").Return(false, nil)
				books.On("DecrementAvailable", mock.Anything, "book-1").Return(true, nil)
				records.On("Insert", mock.Anything, mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "book not found",
			setupMock: func(books *mockBookStore, records *mockRecordRepo) {
				books.On("GetByID", mock.Anything, "book-1").Return(book.Book{}, book.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name: "already borrowed",
			setupMock: func(books *mockBookStore, records *mockRecordRepo) {
				books.On("GetByID", mock.Anything, "book-1").Return(testBook, nil)
				records.On("HasActive", mock.Anything, "user-a", "book-1").Return(true, nil)
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "ALREADY_BORROWED",
		},
		{
			name: "no copies",
			setupMock: func(books *mockBookStore, records *mockRecordRepo) {
				books.On("GetByID", mock.Anything, "book-1").Return(testBook, nil)
				records.On("HasActive", mock.Anything, "user-a", "book-1").Return(false, nil)
				books.On("DecrementAvailable", mock.Anything, "book-1").Return(false, nil)
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "NO_COPIES_AVAILABLE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books := new(mockBookStore)
			records := new(mockRecordRepo)
			tt.setupMock(books, records)
			handler := NewHandler(NewService(books, records, 0))

			req := authedRequest(http.MethodPost, "/borrow/book-1", "user-a")
			rec := httptest.NewRecorder()
			handler.Borrow(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedCode != "" {
				assert.Contains(t, rec.Body.String(), tt.expectedCode)
			}
		})
	}
}

func TestHandler_Return(t *testing.T) {
	t.Run("no active borrow", func(t *testing.T) {
		books := new(mockBookStore)
		records := new(mockRecordRepo)
		records.On("MarkReturned", mock.Anything, "user-a", "book-1", mock.Anything).Return(false, nil)
		handler := NewHandler(NewService(books, records, 0))

		req := authedRequest(http.MethodPost, "/borrow/return/book-1", "user-a")
		rec := httptest.NewRecorder()
		handler.Return(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "NO_ACTIVE_BORROW")
	})

	t.Run("method not allowed", func(t *testing.T) {
		handler := NewHandler(NewService(new(mockBookStore), new(mockRecordRepo), 0))

		req := authedRequest(http.MethodGet, "/borrow/return/book-1", "user-a")
		rec := httptest.NewRecorder()
		handler.Return(rec, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestHandler_MyBooks(t *testing.T) {
	books := new(mockBookStore)
	records := new(mockRecordRepo)
	handler := NewHandler(NewService(books, records, 0))

	due := time.Now().Add(-time.Hour)
	records.On("ListActive", mock.Anything, "user-a").Return([]Record{
		{ID: "rec-1", BookID: "book-1", DueDate: due, Book: &BookSummary{Title: "Dune"}},
	}, nil)

	req := authedRequest(http.MethodGet, "/borrow/my-books", "user-a")
	rec := httptest.NewRecorder()
	handler.MyBooks(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"is_overdue":true`)
	assert.Contains(t, rec.Body.String(), "Dune")
}
