package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"loan-origination/internal/api/handler/dto"
	"loan-origination/internal/domain/user"
	"loan-origination/internal/pkg/apperrors"
)

type UserHandler struct {
	service user.Service
	logger  *slog.Logger
}

func NewUserHandler(s user.Service, l *slog.Logger) *UserHandler {
	return &UserHandler{
		service: s,
		logger:  l.With("component", "UserHandler"),
	}
}

// CreateUser registers a new staff account.
//
// @Summary Create a user
// @Tags Users
// @Accept json
// @Produce json
// @Param request body dto.CreateUserRequest true "User payload"
// @Success 201 {object} user.User "User created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 409 {object} dto.ErrorResponse "Username or email already taken"
// @Router /users [post]
// @Security BearerAuth
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	created, err := h.service.CreateUser(r.Context(), req.ToInput())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// GetUser retrieves one user by id.
//
// @Summary Retrieve a user
// @Tags Users
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {object} user.User "User details"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{userID} [get]
// @Security BearerAuth
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")

	u, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, u)
}

// ListUsers lists staff accounts with optional role and status filters.
//
// @Summary List users
// @Tags Users
// @Produce json
// @Param role query string false "Filter by role"
// @Param status query string false "Filter by account status"
// @Success 200 {array} user.User "Users"
// @Router /users [get]
// @Security BearerAuth
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	users, err := h.service.ListUsers(r.Context(), user.Role(q.Get("role")), user.AccountStatus(q.Get("status")))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, users)
}
