package borrow

import (
	"errors"
	"net/http"
	"strings"

	"libraryapi/internal/book"
	"libraryapi/internal/httpx"
)

// Handler exposes borrow/return and the caller's own borrow listings.
// All routes sit behind the auth middleware; the user ID always comes
// from the token, never from the request.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Borrow handles POST /borrow/{bookId}.
func (h *Handler) Borrow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	bookID, ok := pathParam(r.URL.Path, "/borrow/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	rec, err := h.svc.Borrow(r.Context(), httpx.UserIDFrom(r), bookID)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSONSuccess(w, rec, nil)
}

// Return handles POST /borrow/return/{bookId}.
func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	bookID, ok := pathParam(r.URL.Path, "/borrow/return/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := h.svc.Return(r.Context(), httpx.UserIDFrom(r), bookID); err != nil {
		writeError(w, err)
		return
	}
	httpx.JSONSuccess(w, map[string]string{"message": "Book returned successfully"}, nil)
}

// MyBooks handles GET /borrow/my-books.
func (h *Handler) MyBooks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	records, err := h.svc.ListActive(r.Context(), httpx.UserIDFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSONSuccess(w, records, nil)
}

// History handles GET /borrow/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	records, err := h.svc.ListHistory(r.Context(), httpx.UserIDFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSONSuccess(w, records, nil)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, book.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	case errors.Is(err, ErrNoCopies):
		httpx.JSONError(w, http.StatusConflict, "NO_COPIES_AVAILABLE", "No copies available for borrowing", nil)
	case errors.Is(err, ErrAlreadyBorrowed):
		httpx.JSONError(w, http.StatusConflict, "ALREADY_BORROWED", "You have already borrowed this book", nil)
	case errors.Is(err, ErrNoActiveBorrow):
		httpx.JSONError(w, http.StatusConflict, "NO_ACTIVE_BORROW", "No active borrow record found for this book", nil)
	case errors.Is(err, ErrPartialFailure):
		httpx.JSONError(w, http.StatusInternalServerError, "PARTIAL_FAILURE", "Borrow state partially updated, contact support", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Server error", nil)
	}
}

// crude path param extraction with net/http's ServeMux
func pathParam(path, prefix string) (string, bool) {
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	param := strings.TrimPrefix(path, prefix)
	if param == "" || strings.Contains(param, "/") {
		return "", false
	}
	return param, true
}
