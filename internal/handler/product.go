package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/storefront/internal/apperror"
	"github.com/sakif/storefront/internal/model"
	"github.com/sakif/storefront/internal/service"
)

// ProductHandler exposes the catalog. Browsing is public; mutations are
// admin-gated at the route level.
type ProductHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

func NewProductHandler(catalog *service.CatalogService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, logger: logger}
}

type productListResponse struct {
	Products []model.Product `json:"products"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	Limit    int             `json:"limit"`
}

// HandleList returns one catalog page.
//
// HTTP: GET /api/products?search=&category=&minPrice=&maxPrice=&page=&limit=
func (h *ProductHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := service.ListQuery{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		MinPrice: parseFloat(q.Get("minPrice")),
		MaxPrice: parseFloat(q.Get("maxPrice")),
		Page:     parseInt(q.Get("page")),
		Limit:    parseInt(q.Get("limit")),
	}

	products, total, err := h.catalog.List(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}
	if products == nil {
		products = []model.Product{}
	}

	page := query.Page
	if page <= 0 {
		page = 1
	}
	limit := query.Limit
	if limit <= 0 {
		limit = service.DefaultPageSize
	}

	writeJSON(w, http.StatusOK, productListResponse{
		Products: products,
		Total:    total,
		Page:     page,
		Limit:    limit,
	})
}

// HandleGet returns a single product.
//
// HTTP: GET /api/products/{id}
func (h *ProductHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// HandleCreate adds a catalog product.
//
// HTTP: POST /api/products (admin)
func (h *ProductHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var product model.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid request body"))
		return
	}

	created, err := h.catalog.Create(r.Context(), &product)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleUpdate replaces a product's fields.
//
// HTTP: PUT /api/products/{id} (admin)
func (h *ProductHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var product model.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid request body"))
		return
	}

	updated, err := h.catalog.Update(r.Context(), chi.URLParam(r, "id"), &product)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleDelete removes a product from the catalog.
//
// HTTP: DELETE /api/products/{id} (admin)
func (h *ProductHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Product deleted"})
}

// Query params arrive as strings; bad numbers fall back to zero, which the
// service treats as "unset".
func parseInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
