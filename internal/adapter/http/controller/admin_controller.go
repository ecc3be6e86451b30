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

type AdminService interface {
	ListUsers(ctx context.Context) (commons.Response[models.ListUsersResponse], error)
	ListAccounts(ctx context.Context) (commons.Response[models.ListAccountsResponse], error)
	UpdateAccountStatus(ctx context.Context, adminUserID string, accountID string, req models.UpdateAccountStatusRequest, ipAddress string) (commons.Response[models.UpdateAccountStatusResponse], error)
}

type AdminController struct {
	service AdminService
}

func NewAdminController(service AdminService) *AdminController {
	return &AdminController{service: service}
}

func (c *AdminController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	wrap := func(h http.HandlerFunc) http.Handler {
		var handler http.Handler = middleware.RequireAdmin(h)
		if authMiddleware != nil {
			handler = authMiddleware(handler)
		}
		return handler
	}

	mux.Handle("/admin/users", wrap(c.listUsers))
	mux.Handle("/admin/accounts", wrap(c.listAccounts))
	mux.Handle("/admin/accounts/{id}/status", wrap(c.updateAccountStatus))
}

func (c *AdminController) listUsers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodGet {
		response := commons.ErrorResponse[models.ListUsersResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	response, err := c.service.ListUsers(r.Context())
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		writeJSON(w, http.StatusInternalServerError, response)
		logResponse(r, http.StatusInternalServerError, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *AdminController) listAccounts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodGet {
		response := commons.ErrorResponse[models.ListAccountsResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	response, err := c.service.ListAccounts(r.Context())
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		writeJSON(w, http.StatusInternalServerError, response)
		logResponse(r, http.StatusInternalServerError, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *AdminController) updateAccountStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPatch {
		response := commons.ErrorResponse[models.UpdateAccountStatusResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	accountID := r.PathValue("id")
	if accountID == "" {
		response := commons.ErrorResponse[models.UpdateAccountStatusResponse]("validation failed", "account id is required")
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}

	var req models.UpdateAccountStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.UpdateAccountStatusResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	response, err := c.service.UpdateAccountStatus(r.Context(), middleware.UserIDFromContext(r.Context()), accountID, req, r.RemoteAddr)
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
