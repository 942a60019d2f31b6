package book

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestHandler_List(t *testing.T) {
	repo := new(mockRepo)
	handler := NewHandler(NewService(repo, 100))

	repo.On("List", mock.Anything, Query{Genre: "Academic", Page: 1, PageSize: 10}).
		Return([]Book{{ID: "b1", Genre: GenreAcademic}}, 1, nil)

	req := httptest.NewRequest(http.MethodGet, "/books?genre=Academic", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool   `json:"success"`
		Data    []Book `json:"data"`
		Meta    struct {
			Page       int `json:"page"`
			PageSize   int `json:"page_size"`
			Total      int `json:"total"`
			TotalPages int `json:"total_pages"`
		} `json:"meta"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Len(t, body.Data, 1)
	assert.Equal(t, 1, body.Meta.TotalPages)
}

func TestHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(repo *mockRepo)
		expectedStatus int
	}{
		{
			name: "success",
			body: validCreateInput(),
			setupMock: func(repo *mockRepo) {
				repo.On("GetByISBN", mock.Anything, "9780134190440").Return(Book{}, ErrNotFound)
				repo.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "bad request - invalid JSON",
			body:           "not json",
			setupMock:      func(repo *mockRepo) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "bad request - missing fields",
			body: map[string]interface{}{"title": "Only a Title"},
			setupMock: func(repo *mockRepo) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "bad request - bad genre",
			body: map[string]interface{}{
				"isbn": "9780134190440", "title": "T", "author": "A",
				"genre": "Fiction", "published_year": 2015, "publisher": "P", "total_copies": 1,
			},
			setupMock:      func(repo *mockRepo) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "conflict - duplicate isbn",
			body: validCreateInput(),
			setupMock: func(repo *mockRepo) {
				repo.On("GetByISBN", mock.Anything, "9780134190440").Return(Book{ID: "existing"}, nil)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockRepo)
			tt.setupMock(repo)
			handler := NewHandler(NewService(repo, 100))

			var buf bytes.Buffer
			if s, ok := tt.body.(string); ok {
				buf.WriteString(s)
			} else {
				assert.NoError(t, json.NewEncoder(&buf).Encode(tt.body))
			}

			req := httptest.NewRequest(http.MethodPost, "/books", &buf)
			rec := httptest.NewRecorder()
			handler.Create(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestHandler_Item(t *testing.T) {
	t.Run("get not found", func(t *testing.T) {
		repo := new(mockRepo)
		handler := NewHandler(NewService(repo, 100))

		repo.On("GetByID", mock.Anything, "missing").Return(Book{}, ErrNotFound)

		req := httptest.NewRequest(http.MethodGet, "/books/missing", nil)
		rec := httptest.NewRecorder()
		handler.Item(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("update drops isbn from the payload", func(t *testing.T) {
		repo := new(mockRepo)
		handler := NewHandler(NewService(repo, 100))

		title := "Renamed"
		repo.On("Update", mock.Anything, "book-1", UpdateInput{Title: &title}).
			Return(Book{ID: "book-1", Title: title, ISBN: "9780134190440"}, nil)

		body := bytes.NewBufferString(`{"title":"Renamed","isbn":"1111111111111"}`)
		req := httptest.NewRequest(http.MethodPut, "/books/book-1", body)
		rec := httptest.NewRecorder()
		handler.Item(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		repo.AssertExpectations(t)
	})

	t.Run("delete", func(t *testing.T) {
		repo := new(mockRepo)
		handler := NewHandler(NewService(repo, 100))

		repo.On("Delete", mock.Anything, "book-1").Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/books/book-1", nil)
		rec := httptest.NewRecorder()
		handler.Item(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("nested path is rejected", func(t *testing.T) {
		repo := new(mockRepo)
		handler := NewHandler(NewService(repo, 100))

		req := httptest.NewRequest(http.MethodGet, "/books/a/b", nil)
		rec := httptest.NewRecorder()
		handler.Item(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
