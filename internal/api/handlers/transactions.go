package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/api/response"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/apperrors"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/model"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/service"
)

// TransactionHandler handles HTTP requests for ledger endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the ledgerService.
type TransactionHandler struct {
	ledgerService *service.LedgerService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependency.
func NewTransactionHandler(ledgerService *service.LedgerService) *TransactionHandler {
	return &TransactionHandler{
		ledgerService: ledgerService,
	}
}

// AllTransactions handles GET requests to retrieve the whole ledger, newest first.
// With ?productId= only that product's entries are returned.
//
// Endpoint: GET /api/transaction
// Response: 200 OK with array of Transaction
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) AllTransactions(w http.ResponseWriter, r *http.Request) {
	var (
		transactions []model.Transaction
		err          error
	)
	if productID := r.URL.Query().Get("productId"); productID != "" {
		transactions, err = h.ledgerService.ListProductTransactions(r.Context(), productID)
	} else {
		transactions, err = h.ledgerService.ListTransactions(r.Context())
	}
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToRetrieveTransactions.Error())
		return
	}
	if transactions == nil {
		transactions = []model.Transaction{}
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// GroupedTransactions handles GET requests for the ledger grouped by UTC day.
// Days are ordered newest first; entries without a date come last.
//
// Endpoint: GET /api/transaction/grouped
// Response: 200 OK with array of DayGroup
func (h *TransactionHandler) GroupedTransactions(w http.ResponseWriter, r *http.Request) {
	grouped, err := h.ledgerService.GroupedTransactions(r.Context())
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToRetrieveTransactions.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, grouped.Ordered())
}

// GetTransaction handles GET requests to retrieve a single ledger entry by ID.
//
// Endpoint: GET /api/transaction/{uuid}
// Response: 200 OK with Transaction
// Error: 400 Bad Request if transaction ID is invalid (validated by middleware)
// Error: 404 Not Found if transaction not found
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	transaction, err := h.ledgerService.GetTransaction(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		response.RespondServiceError(w, err, apperrors.ErrFailedToRetrieveTransactions.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}
