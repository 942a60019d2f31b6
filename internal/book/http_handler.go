package book

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"libraryapi/internal/httpx"
)

// Handler exposes the catalog over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createReq struct {
	ISBN          string `json:"isbn" validate:"required,isbn"`
	Title         string `json:"title" validate:"required"`
	Author        string `json:"author" validate:"required"`
	Genre         string `json:"genre" validate:"required,book_genre"`
	PublishedYear int    `json:"published_year" validate:"required"`
	Publisher     string `json:"publisher" validate:"required"`
	Description   string `json:"description"`
	TotalCopies   int    `json:"total_copies" validate:"required,min=1"`
	ImageURL      string `json:"image_url"`
}

// updateReq mirrors UpdateInput plus the isbn field, which is decoded
// but never forwarded: isbn is immutable after creation.
type updateReq struct {
	UpdateInput
	ISBN *string `json:"isbn"`
}

// List handles GET /books.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := Query{
		Search: r.URL.Query().Get("search"),
		Genre:  r.URL.Query().Get("genre"),
	}
	q.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	q.PageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))

	result, err := h.svc.Search(r.Context(), q)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Server error", nil)
		return
	}

	httpx.JSONSuccess(w, result.Books, map[string]interface{}{
		"page":        result.Page,
		"page_size":   result.PageSize,
		"total":       result.Total,
		"total_pages": result.TotalPages,
	})
}

// Create handles POST /books (admin only).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if details := httpx.ValidateStruct(req); len(details) > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
		return
	}

	created, err := h.svc.Create(r.Context(), CreateInput{
		ISBN:          req.ISBN,
		Title:         req.Title,
		Author:        req.Author,
		Genre:         req.Genre,
		PublishedYear: req.PublishedYear,
		Publisher:     req.Publisher,
		Description:   req.Description,
		TotalCopies:   req.TotalCopies,
		ImageURL:      req.ImageURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSONSuccessCreated(w, created)
}

// Item dispatches GET/PUT/DELETE /books/{id}.
func (h *Handler) Item(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getByID(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) getByID(w http.ResponseWriter, r *http.Request, id string) {
	b, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSONSuccess(w, b, nil)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, id string) {
	var req updateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}

	updated, err := h.svc.Update(r.Context(), id, req.UpdateInput)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.JSONSuccess(w, updated, nil)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}

func writeError(w http.ResponseWriter, err error) {
	var verrs ValidationErrors
	switch {
	case errors.As(err, &verrs):
		details := make([]httpx.ErrorDetail, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, httpx.ErrorDetail{Field: fe.Field, Message: fe.Message})
		}
		httpx.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", details)
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	case errors.Is(err, ErrDuplicateISBN):
		httpx.JSONError(w, http.StatusConflict, "DUPLICATE_ISBN", "Book with this ISBN already exists", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Server error", nil)
	}
}

// crude path param extraction with net/http's ServeMux: /books/{id}
func idFromPath(path string) (string, bool) {
	const prefix = "/books/"
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	id := strings.TrimPrefix(path, prefix)
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
