package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/skener/internal/imaging"
	"github.com/erazemk/skener/internal/model"
	"github.com/erazemk/skener/internal/store"
)

// ProductsHandler serves the product catalog the scanner resolves against.
type ProductsHandler struct {
	DB *sql.DB
}

type productRequest struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Brand        string `json:"brand"`
	Status       string `json:"status"`
	Quantity     *int   `json:"quantity"`
	Condition    string `json:"condition"`
	SerialNumber string `json:"serial_number"`
	QRPayload    string `json:"qr_payload"`
}

// List handles GET /api/products. With q it searches, otherwise it lists,
// optionally filtered by status.
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		products []model.Product
		err      error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		products, err = store.SearchProducts(r.Context(), h.DB, q, 50)
	} else {
		products, err = store.ListProducts(r.Context(), h.DB, r.URL.Query().Get("status"))
	}
	if err != nil {
		slog.Error("failed to list products", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	jsonResponse(w, http.StatusOK, products)
}

// Create handles POST /api/products.
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ID == "" || req.Name == "" {
		jsonError(w, http.StatusBadRequest, "id and name required")
		return
	}
	if req.Status != "" && !model.ValidStatus(req.Status) {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}
	if req.Condition != "" && !model.ValidCondition(req.Condition) {
		jsonError(w, http.StatusBadRequest, "invalid condition")
		return
	}

	p := model.Product{
		ID:           req.ID,
		Name:         req.Name,
		Brand:        req.Brand,
		Status:       req.Status,
		Quantity:     1,
		Condition:    req.Condition,
		SerialNumber: req.SerialNumber,
		QRPayload:    req.QRPayload,
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			jsonError(w, http.StatusBadRequest, "quantity must not be negative")
			return
		}
		p.Quantity = *req.Quantity
	}

	existing, err := store.GetProduct(r.Context(), h.DB, p.ID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create product")
		return
	}
	if existing != nil {
		jsonError(w, http.StatusConflict, "product id already exists")
		return
	}

	created, err := store.CreateProduct(r.Context(), h.DB, p)
	if err != nil {
		slog.Error("failed to create product", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	slog.Info("product created", "user", GetClaims(r.Context()).Username, "product", created.ID)
	jsonResponse(w, http.StatusCreated, created)
}

// Get handles GET /api/products/{id}.
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := store.GetProduct(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get product")
		return
	}
	if p == nil || p.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "product not found")
		return
	}
	jsonResponse(w, http.StatusOK, p)
}

// Update handles PUT /api/products/{id}. Omitted fields keep their values.
func (h *ProductsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := store.GetProduct(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update product")
		return
	}
	if p == nil || p.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "product not found")
		return
	}

	merge := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	merge(&p.Name, req.Name)
	merge(&p.Brand, req.Brand)
	merge(&p.Status, req.Status)
	merge(&p.Condition, req.Condition)
	merge(&p.SerialNumber, req.SerialNumber)
	merge(&p.QRPayload, req.QRPayload)
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			jsonError(w, http.StatusBadRequest, "quantity must not be negative")
			return
		}
		p.Quantity = *req.Quantity
	}

	if !model.ValidStatus(p.Status) || !model.ValidCondition(p.Condition) {
		jsonError(w, http.StatusBadRequest, "invalid status or condition")
		return
	}

	if err := store.UpdateProduct(r.Context(), h.DB, *p); err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			jsonError(w, http.StatusNotFound, "product not found")
			return
		}
		slog.Error("failed to update product", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	updated, _ := store.GetProduct(r.Context(), h.DB, id)
	slog.Info("product updated", "user", GetClaims(r.Context()).Username, "product", id)
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/products/{id}. Deleted products no longer resolve
// in new sessions.
func (h *ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	p, err := store.GetProduct(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}
	if p == nil || p.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "product not found")
		return
	}

	if err := store.DeleteProduct(r.Context(), h.DB, id); err != nil {
		slog.Error("failed to delete product", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	slog.Info("product deleted", "user", GetClaims(r.Context()).Username, "product", id)
	jsonResponse(w, http.StatusOK, message{"product deleted"})
}

// UploadImage handles PUT /api/products/{id}/image.
func (h *ProductsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.ProductPhoto(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetProductImage(r.Context(), h.DB, id, photo.Data, photo.MIME); err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			jsonError(w, http.StatusNotFound, "product not found")
			return
		}
		jsonError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	jsonResponse(w, http.StatusOK, message{"image uploaded"})
}

// GetImage handles GET /api/products/{id}/image.
func (h *ProductsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	data, mime, err := store.GetProductImage(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}
