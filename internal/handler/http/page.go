package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/utafrali/minicart/internal/render"
	"github.com/utafrali/minicart/internal/store"
	apperrors "github.com/utafrali/minicart/pkg/errors"
)

// PageHandler serves the HTML shop page and its form actions.
type PageHandler struct {
	store     *store.CartStore
	formatter render.Formatter
	logger    *slog.Logger
}

// NewPageHandler creates a new HTML page handler.
func NewPageHandler(s *store.CartStore, f render.Formatter, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		store:     s,
		formatter: f,
		logger:    logger,
	}
}

// Index handles GET /
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	if err := render.HTML(w, render.FromStore(h.formatter, h.store)); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render page", slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Add handles POST /cart/add
func (h *PageHandler) Add(w http.ResponseWriter, r *http.Request) {
	name, ok := h.formName(w, r)
	if !ok {
		return
	}

	if _, err := h.store.AddByName(r.Context(), name); err != nil {
		status := apperrors.HTTPStatus(err)
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			http.Error(w, appErr.Message, status)
			return
		}
		http.Error(w, http.StatusText(status), status)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Remove handles POST /cart/remove
func (h *PageHandler) Remove(w http.ResponseWriter, r *http.Request) {
	name, ok := h.formName(w, r)
	if !ok {
		return
	}

	h.store.RemoveFromCart(r.Context(), name)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *PageHandler) formName(w http.ResponseWriter, r *http.Request) (string, bool) {
	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
			return "", false
		}
		http.Error(w, "invalid form", http.StatusBadRequest)
		return "", false
	}
	name := strings.TrimSpace(r.PostFormValue("name"))
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return "", false
	}
	return name, true
}
