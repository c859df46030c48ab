package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"taskify/internal/apperrors"
	"taskify/internal/repository"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// CRUDOptions tailors CRUDHandler to one resource.
type CRUDOptions[T any, V any] struct {
	// View projects a stored entity into its response shape.
	View func(*T) V
	// NotFound is returned for missing entities and for entities Owns rejects.
	NotFound error
	// QueryFilters lists query parameters passed through as List filters.
	QueryFilters []string
	// Scope adds filters derived from the request, e.g. the caller's id.
	Scope func(r *http.Request) map[string]any
	// Owns reports whether the caller may see item. Nil means everyone may.
	Owns func(r *http.Request, item *T) bool
}

// CRUDHandler serves list, read and delete for any Store. Resource handlers
// embed it and add their own create and update endpoints.
type CRUDHandler[T any, V any] struct {
	store repository.Store[T]
	opts  CRUDOptions[T, V]
}

func NewCRUDHandler[T any, V any](store repository.Store[T], opts CRUDOptions[T, V]) *CRUDHandler[T, V] {
	if opts.NotFound == nil {
		opts.NotFound = apperrors.NotFound("not_found", "Resource not found")
	}
	return &CRUDHandler[T, V]{store: store, opts: opts}
}

func (h *CRUDHandler[T, V]) List(w http.ResponseWriter, r *http.Request) {
	filter, err := h.listFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items, err := h.store.List(r.Context(), filter)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidFilter) {
			writeError(w, r, apperrors.Validation("invalid_filter", "Unsupported filter"))
			return
		}
		writeError(w, r, err)
		return
	}

	out := make([]V, 0, len(items))
	for i := range items {
		out = append(out, h.opts.View(&items[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CRUDHandler[T, V]) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.load(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.opts.View(item))
}

func (h *CRUDHandler[T, V]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if h.opts.Owns != nil {
		if _, err := h.load(r); err != nil {
			writeError(w, r, err)
			return
		}
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, r, h.opts.NotFound)
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSONMessage(w, http.StatusOK, "Deleted successfully")
}

// load fetches the {id} entity, applying the ownership check.
func (h *CRUDHandler[T, V]) load(r *http.Request) (*T, error) {
	id, err := h.pathID(r)
	if err != nil {
		return nil, err
	}

	item, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, h.opts.NotFound
		}
		return nil, err
	}
	if h.opts.Owns != nil && !h.opts.Owns(r, item) {
		return nil, h.opts.NotFound
	}
	return item, nil
}

// pathID returns the {id} URL parameter. Ids are UUIDs, so anything else
// names no resource.
func (h *CRUDHandler[T, V]) pathID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if id == "" {
		return "", apperrors.Validation("invalid_request", "ID is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", h.opts.NotFound
	}
	return id, nil
}

func (h *CRUDHandler[T, V]) listFilter(r *http.Request) (repository.Filter, error) {
	q := r.URL.Query()
	filter := repository.Filter{Where: map[string]any{}, Limit: defaultListLimit}

	for _, key := range h.opts.QueryFilters {
		if v := q.Get(key); v != "" {
			filter.Where[key] = v
		}
	}
	if h.opts.Scope != nil {
		for k, v := range h.opts.Scope(r) {
			filter.Where[k] = v
		}
	}

	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return filter, apperrors.Validation("validation_error", "limit must be a positive integer")
		}
		filter.Limit = min(n, maxListLimit)
	}
	if s := q.Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return filter, apperrors.Validation("validation_error", "offset must be a non-negative integer")
		}
		filter.Offset = n
	}
	return filter, nil
}
