package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/api/request"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/api/response"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/apperrors"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/model"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/service"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/validation"
)

// ProductHandler handles HTTP requests for the product catalog and the sale and return
// actions performed on a product.
type ProductHandler struct {
	productService *service.ProductService
	ledgerService  *service.LedgerService
}

// NewProductHandler creates a new ProductHandler with the provided service dependencies.
func NewProductHandler(productService *service.ProductService, ledgerService *service.LedgerService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		ledgerService:  ledgerService,
	}
}

// ListProducts handles GET requests for the full catalog, newest first.
//
// Endpoint: GET /api/product
// Response: 200 OK with array of Product
// Error: 500 Internal Server Error if retrieval fails
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.ListProducts(r.Context())
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToRetrieveProducts.Error())
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	response.RespondJSON(w, http.StatusOK, products)
}

// GetProduct handles GET requests for a single product.
//
// Endpoint: GET /api/product/{uuid}
// Response: 200 OK with Product
// Error: 404 Not Found if the product does not exist
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.productService.GetProduct(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToRetrieveProducts.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, product)
}

// CreateProduct handles POST requests adding a product to the catalog.
//
// Endpoint: POST /api/product
// Request Body: multipart form (name, stock, purchasePrice, sellingPrice, compatibility,
// optional lastPurchaseDate, image)
// Response: 201 Created with Product
// Error: 400 Bad Request if the form is malformed or validation fails
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	in, err := request.ParseNewProduct(w, r)
	if err != nil {
		respondFormError(w, err)
		return
	}

	product, err := h.productService.CreateProduct(r.Context(), in)
	if err != nil {
		response.RespondServiceError(w, err, "failed to create product")
		return
	}
	response.RespondJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles PUT requests editing a product. Without an image part the
// current image is kept.
//
// Endpoint: PUT /api/product/{uuid}
// Request Body: multipart form, image optional
// Response: 200 OK with updated Product
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the product does not exist
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	edit, err := request.ParseProductEdit(w, r)
	if err != nil {
		respondFormError(w, err)
		return
	}

	product, err := h.productService.UpdateProduct(r.Context(), chi.URLParam(r, "uuid"), edit)
	if err != nil {
		response.RespondServiceError(w, err, "failed to update product")
		return
	}
	response.RespondJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE requests. The product's ledger entries are removed with it.
//
// Endpoint: DELETE /api/product/{uuid}
// Response: 204 No Content
// Error: 404 Not Found if the product does not exist
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.productService.DeleteProduct(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		response.RespondServiceError(w, err, "failed to delete product")
		return
	}
	response.RespondJSON(w, http.StatusNoContent, nil)
}

// RecordSale handles POST requests selling one unit of a product.
//
// Endpoint: POST /api/product/{uuid}/sale
// Response: 201 Created with the Transaction
// Error: 404 Not Found if the product does not exist
// Error: 409 Conflict if the product is out of stock
func (h *ProductHandler) RecordSale(w http.ResponseWriter, r *http.Request) {
	tx, err := h.ledgerService.RecordSale(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		response.RespondServiceError(w, err, "failed to record sale")
		return
	}
	response.RespondJSON(w, http.StatusCreated, tx)
}

// RecordReturn handles POST requests taking one unit of a product back.
//
// Endpoint: POST /api/product/{uuid}/return
// Response: 201 Created with the Transaction
// Error: 404 Not Found if the product does not exist
func (h *ProductHandler) RecordReturn(w http.ResponseWriter, r *http.Request) {
	tx, err := h.ledgerService.RecordReturn(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		response.RespondServiceError(w, err, "failed to record return")
		return
	}
	response.RespondJSON(w, http.StatusCreated, tx)
}

// ExportCSV handles GET requests for the stock list as a CSV download.
//
// Endpoint: GET /api/product/export
// Response: 200 OK with text/csv attachment
func (h *ProductHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.productService.ExportCSV(r.Context(), &buf); err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToRetrieveProducts.Error())
		return
	}

	filename := fmt.Sprintf("stock-%s.csv", time.Now().UTC().Format(time.DateOnly))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// respondFormError reports a product form that could not be parsed or failed field checks.
func respondFormError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		response.RespondServiceError(w, err, "")
		return
	}
	response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
}
