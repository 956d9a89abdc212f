package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/minicart/internal/domain"
	"github.com/utafrali/minicart/internal/render"
	"github.com/utafrali/minicart/internal/store"
	apperrors "github.com/utafrali/minicart/pkg/errors"
	"github.com/utafrali/minicart/pkg/httputil"
	"github.com/utafrali/minicart/pkg/validator"
)

// CartHandler handles the JSON cart and catalog endpoints.
type CartHandler struct {
	store     *store.CartStore
	formatter render.Formatter
	logger    *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(s *store.CartStore, f render.Formatter, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		store:     s,
		formatter: f,
		logger:    logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding a product to the cart.
type AddItemRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// --- Response DTOs ---

// ProductResponse is one catalog product.
type ProductResponse struct {
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	FormattedPrice string          `json:"formatted_price"`
}

// EntryResponse is one cart entry.
type EntryResponse struct {
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	Quantity          int             `json:"quantity"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	FormattedSubtotal string          `json:"formatted_subtotal"`
}

// CartResponse is the cart as returned by every cart endpoint.
type CartResponse struct {
	Entries        []EntryResponse `json:"entries"`
	ItemCount      int             `json:"item_count"`
	Total          decimal.Decimal `json:"total"`
	FormattedTotal string          `json:"formatted_total"`
	Empty          bool            `json:"empty"`
}

func (h *CartHandler) cartResponse(c domain.Cart) CartResponse {
	total := domain.CalculateTotal(c)
	resp := CartResponse{
		Entries:        make([]EntryResponse, len(c.Entries)),
		ItemCount:      domain.ItemCount(c),
		Total:          total,
		FormattedTotal: h.formatter.FormatPrice(total),
		Empty:          domain.IsCartEmpty(c),
	}
	for i, e := range c.Entries {
		resp.Entries[i] = EntryResponse{
			Name:              e.Name,
			Price:             e.Price,
			Quantity:          e.Quantity,
			Subtotal:          e.Subtotal(),
			FormattedSubtotal: h.formatter.FormatPrice(e.Subtotal()),
		}
	}
	return resp
}

// --- Handlers ---

// ListCatalog handles GET /api/v1/catalog
func (h *CartHandler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	items := h.store.Catalog()
	out := make([]ProductResponse, len(items))
	for i, item := range items {
		out[i] = ProductResponse{
			Name:           item.Name,
			Price:          item.Price,
			FormattedPrice: h.formatter.FormatPrice(item.Price),
		}
	}
	httputil.WriteData(w, http.StatusOK, out)
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.cartResponse(h.store.Cart()))
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, err := h.store.AddByName(r.Context(), strings.TrimSpace(req.Name))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, h.cartResponse(cart))
}

// IncrementItem handles POST /api/v1/cart/items/{name}/increment
func (h *CartHandler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	name, err := nameParam(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, h.cartResponse(h.store.IncrementQuantity(r.Context(), name)))
}

// RemoveItem handles DELETE /api/v1/cart/items/{name}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	name, err := nameParam(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, h.cartResponse(h.store.RemoveFromCart(r.Context(), name)))
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.cartResponse(h.store.Clear(r.Context())))
}

// --- Helpers ---

// nameParam returns the decoded {name} path parameter. chi matches against
// RawPath when the request carried an escaped slash and against the already
// decoded Path otherwise, so only the former needs unescaping.
func nameParam(r *http.Request) (string, error) {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath != "" {
		var err error
		if name, err = url.PathUnescape(name); err != nil {
			return "", apperrors.InvalidInput("malformed product name")
		}
	}
	if name == "" {
		return "", apperrors.InvalidInput("product name is required")
	}
	return name, nil
}
