package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"loan-origination/internal/api/handler/dto"
	"loan-origination/internal/domain/organization"
	"loan-origination/internal/pkg/apperrors"
)

type OrganizationHandler struct {
	service organization.Service
	logger  *slog.Logger
}

func NewOrganizationHandler(s organization.Service, l *slog.Logger) *OrganizationHandler {
	return &OrganizationHandler{
		service: s,
		logger:  l.With("component", "OrganizationHandler"),
	}
}

// CreateBranch registers a new branch.
//
// @Summary Create a branch
// @Tags Organization
// @Accept json
// @Produce json
// @Param request body dto.CreateBranchRequest true "Branch payload"
// @Success 201 {object} organization.Branch "Branch created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 409 {object} dto.ErrorResponse "Branch code already taken"
// @Router /branches [post]
// @Security BearerAuth
func (h *OrganizationHandler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBranchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	created, err := h.service.CreateBranch(r.Context(), req.ToDomain())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// GetBranch retrieves one branch by id.
//
// @Summary Retrieve a branch
// @Tags Organization
// @Produce json
// @Param branchID path string true "Branch ID"
// @Success 200 {object} organization.Branch "Branch details"
// @Failure 404 {object} dto.ErrorResponse "Branch not found"
// @Router /branches/{branchID} [get]
// @Security BearerAuth
func (h *OrganizationHandler) GetBranch(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetBranch(r.Context(), chi.URLParam(r, "branchID"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, b)
}

// ListBranches lists branches.
//
// @Summary List branches
// @Tags Organization
// @Produce json
// @Param active_only query bool false "Only active branches"
// @Success 200 {array} organization.Branch "Branches"
// @Router /branches [get]
// @Security BearerAuth
func (h *OrganizationHandler) ListBranches(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active_only") == "true"

	branches, err := h.service.ListBranches(r.Context(), activeOnly)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, branches)
}

// CreateDepartment registers a new department.
//
// @Summary Create a department
// @Tags Organization
// @Accept json
// @Produce json
// @Param request body dto.CreateDepartmentRequest true "Department payload"
// @Success 201 {object} organization.Department "Department created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 409 {object} dto.ErrorResponse "Department code already taken"
// @Router /departments [post]
// @Security BearerAuth
func (h *OrganizationHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDepartmentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	created, err := h.service.CreateDepartment(r.Context(), req.ToDomain())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// GetDepartment retrieves one department by id.
//
// @Summary Retrieve a department
// @Tags Organization
// @Produce json
// @Param departmentID path string true "Department ID"
// @Success 200 {object} organization.Department "Department details"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Router /departments/{departmentID} [get]
// @Security BearerAuth
func (h *OrganizationHandler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.GetDepartment(r.Context(), chi.URLParam(r, "departmentID"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, d)
}

// ListDepartments lists departments.
//
// @Summary List departments
// @Tags Organization
// @Produce json
// @Param active_only query bool false "Only active departments"
// @Success 200 {array} organization.Department "Departments"
// @Router /departments [get]
// @Security BearerAuth
func (h *OrganizationHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active_only") == "true"

	departments, err := h.service.ListDepartments(r.Context(), activeOnly)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, departments)
}
