// src/handlers/transaction_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/username/centavo/backend/src/logger"
	"github.com/username/centavo/backend/src/models"
	"github.com/username/centavo/backend/src/services"
	"github.com/username/centavo/backend/src/utils"
)

type TransactionHandler struct {
	transactionService services.TransactionService
}

func NewTransactionHandler(service services.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: service,
	}
}

// parsePaginationParam reads a non-negative integer query parameter,
// returning the fallback when absent or malformed.
func parsePaginationParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func (h *TransactionHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	skip := parsePaginationParam(r, "skip", 0)
	take := parsePaginationParam(r, "take", 100)

	transactions, err := h.transactionService.ListUserTransactions(userID, skip, take)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list transactions", "error", err)
		utils.SendJSONError(w, "Failed to retrieve transactions", http.StatusInternalServerError)
		return
	}

	if transactions == nil {
		transactions = []models.Transaction{}
	}

	utils.SendJSON(w, map[string]interface{}{
		"transactions": transactions,
		"skip":         skip,
		"take":         take,
	}, http.StatusOK)
}

func (h *TransactionHandler) HandleGetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid transaction id", http.StatusBadRequest)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(id, userID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to fetch transaction", "transactionID", id, "error", err)
		utils.SendJSONError(w, "Failed to retrieve transaction", http.StatusInternalServerError)
		return
	}
	if transaction == nil {
		utils.SendJSONError(w, "Transaction not found", http.StatusNotFound)
		return
	}

	utils.SendJSON(w, transaction, http.StatusOK)
}

func (h *TransactionHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.transactionService.ListCategories()
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list categories", "error", err)
		utils.SendJSONError(w, "Failed to retrieve categories", http.StatusInternalServerError)
		return
	}

	if categories == nil {
		categories = []models.Category{}
	}

	utils.SendJSON(w, map[string]interface{}{"categories": categories}, http.StatusOK)
}
