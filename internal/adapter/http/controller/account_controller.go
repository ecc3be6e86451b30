package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/nimblebank/core-banking/internal/adapter/http/middleware"
	"github.com/nimblebank/core-banking/internal/adapter/http/models"
	"github.com/nimblebank/core-banking/internal/commons"
	"github.com/nimblebank/core-banking/internal/domain"
	"github.com/nimblebank/core-banking/internal/logger"
)

type AccountService interface {
	GetMyAccount(ctx context.Context, userID string) (commons.Response[models.GetAccountResponse], error)
}

type AccountController struct {
	service AccountService
}

func NewAccountController(service AccountService) *AccountController {
	return &AccountController{service: service}
}

func (c *AccountController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	var handler http.Handler = http.HandlerFunc(c.myAccount)
	if authMiddleware != nil {
		handler = authMiddleware(handler)
	}
	mux.Handle("/accounts/my-account", handler)
}

func (c *AccountController) myAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodGet {
		response := commons.ErrorResponse[models.GetAccountResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	response, err := c.service.GetMyAccount(r.Context(), middleware.UserIDFromContext(r.Context()))
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
