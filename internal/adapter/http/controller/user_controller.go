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

type UserService interface {
	GetProfile(ctx context.Context, userID string) (commons.Response[models.ProfileResponse], error)
	UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (commons.Response[models.ProfileResponse], error)
	ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) (commons.Response[models.ChangePasswordResponse], error)
}

type UserController struct {
	service UserService
}

func NewUserController(service UserService) *UserController {
	return &UserController{service: service}
}

func (c *UserController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	wrap := func(h http.HandlerFunc) http.Handler {
		if authMiddleware != nil {
			return authMiddleware(h)
		}
		return h
	}

	mux.Handle("/users/profile", wrap(c.profile))
	mux.Handle("/users/change-password", wrap(c.changePassword))
}

func (c *UserController) profile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		c.getProfile(w, r)
	case http.MethodPatch:
		c.updateProfile(w, r)
	default:
		start := time.Now()
		response := commons.ErrorResponse[models.ProfileResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
	}
}

func (c *UserController) getProfile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	response, err := c.service.GetProfile(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrRecordNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *UserController) updateProfile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response := commons.ErrorResponse[models.ProfileResponse]("invalid request body")
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, logger.Fields{"payload": logger.SanitizePayload(req)})

	response, err := c.service.UpdateProfile(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, domain.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, domain.ErrRecordNotFound):
			status = http.StatusNotFound
		case errors.Is(err, domain.ErrEmailTaken):
			status = http.StatusConflict
		}
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}

func (c *UserController) changePassword(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.ChangePasswordResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	var req models.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response := commons.ErrorResponse[models.ChangePasswordResponse]("invalid request body")
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, logger.Fields{"payload": logger.SanitizePayload(req)})

	response, err := c.service.ChangePassword(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, domain.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, domain.ErrCredentialRejected):
			status = http.StatusUnauthorized
		case errors.Is(err, domain.ErrRecordNotFound):
			status = http.StatusNotFound
		}
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}
