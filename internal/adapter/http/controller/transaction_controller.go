package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/nimblebank/core-banking/internal/adapter/http/middleware"
	"github.com/nimblebank/core-banking/internal/adapter/http/models"
	"github.com/nimblebank/core-banking/internal/commons"
	"github.com/nimblebank/core-banking/internal/domain"
	"github.com/nimblebank/core-banking/internal/logger"
)

type TransactionService interface {
	Deposit(ctx context.Context, userID string, req models.DepositRequest) (commons.Response[models.MutationResponse], error)
	Withdraw(ctx context.Context, userID string, req models.WithdrawRequest) (commons.Response[models.MutationResponse], error)
	Transfer(ctx context.Context, userID string, req models.TransferRequest) (commons.Response[models.MutationResponse], error)
	RequestMoney(ctx context.Context, userID string, req models.RequestMoneyRequest) (commons.Response[models.RequestMoneyResponse], error)
	GetHistory(ctx context.Context, userID string, query models.HistoryQuery) (commons.Response[models.HistoryResponse], error)
	GetAnalytics(ctx context.Context, userID string) (commons.Response[models.AnalyticsResponse], error)
}

type TransactionController struct {
	service TransactionService
}

func NewTransactionController(service TransactionService) *TransactionController {
	return &TransactionController{service: service}
}

func (c *TransactionController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	routes := map[string]http.HandlerFunc{
		"/transactions/deposit":   c.deposit,
		"/transactions/withdraw":  c.withdraw,
		"/transactions/transfer":  c.transfer,
		"/transactions/request":   c.requestMoney,
		"/transactions/history":   c.history,
		"/transactions/analytics": c.analytics,
	}
	for path, handler := range routes {
		var h http.Handler = handler
		if authMiddleware != nil {
			h = authMiddleware(h)
		}
		mux.Handle(path, h)
	}
}

func (c *TransactionController) deposit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.MutationResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	var req models.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.MutationResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	response, err := c.service.Deposit(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	c.writeMutationResult(w, r, response, err, start)
}

func (c *TransactionController) withdraw(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.MutationResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	var req models.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.MutationResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	response, err := c.service.Withdraw(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	c.writeMutationResult(w, r, response, err, start)
}

func (c *TransactionController) transfer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.MutationResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	var req models.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.MutationResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	response, err := c.service.Transfer(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	c.writeMutationResult(w, r, response, err, start)
}

func (c *TransactionController) requestMoney(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.RequestMoneyResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	var req models.RequestMoneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.RequestMoneyResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	response, err := c.service.RequestMoney(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusForMutationError(err)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusCreated, response)
	logResponse(r, http.StatusCreated, response, start)
}

func (c *TransactionController) history(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodGet {
		response := commons.ErrorResponse[models.HistoryResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	query := models.HistoryQuery{
		Kind:      r.URL.Query().Get("type"),
		StartDate: r.URL.Query().Get("startDate"),
		EndDate:   r.URL.Query().Get("endDate"),
		Search:    r.URL.Query().Get("search"),
	}

	response, err := c.service.GetHistory(r.Context(), middleware.UserIDFromContext(r.Context()), query)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := http.StatusInternalServerError
		switch {
		case response.Message == "validation failed":
			status = http.StatusBadRequest
		case errors.Is(err, domain.ErrAccountNotFound):
			status = http.StatusNotFound
		}
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *TransactionController) analytics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodGet {
		response := commons.ErrorResponse[models.AnalyticsResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	response, err := c.service.GetAnalytics(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrAccountNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *TransactionController) writeMutationResult(w http.ResponseWriter, r *http.Request, response commons.Response[models.MutationResponse], err error, start time.Time) {
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusForMutationError(err)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func statusForMutationError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrSelfTransferRejected),
		errors.Is(err, domain.ErrSelfRequestRejected):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrCredentialRejected):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrRecipientNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrAccountNotActive):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrTransferFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
