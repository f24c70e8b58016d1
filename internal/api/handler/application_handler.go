package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"loan-origination/internal/api/handler/dto"
	"loan-origination/internal/api/middleware"
	"loan-origination/internal/domain/application"
	"loan-origination/internal/pkg/apperrors"
)

type ApplicationHandler struct {
	service application.Service
	logger  *slog.Logger
}

func NewApplicationHandler(s application.Service, l *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		service: s,
		logger:  l.With("component", "ApplicationHandler"),
	}
}

func applicationIDFromURL(r *http.Request) (string, error) {
	id := chi.URLParam(r, "applicationID")
	if id == "" {
		return "", fmt.Errorf("applicationID not found in URL path")
	}
	return id, nil
}

// CreateApplication registers a new draft loan application.
//
// @Summary Create a loan application
// @Description Creates a draft loan application for an existing customer. The authenticated user becomes the assigned officer.
// @Tags Loan Applications
// @Accept json
// @Produce json
// @Param request body dto.CreateApplicationRequest true "Application payload"
// @Success 201 {object} dto.ApplicationResponse "Application created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loan-applications [post]
// @Security BearerAuth
func (h *ApplicationHandler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	creatorID := middleware.UserIDFromContext(r.Context())
	created, err := h.service.CreateApplication(r.Context(), req.ToDomain(), creatorID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewApplicationResponse(created))
}

// GetApplication retrieves a single loan application.
//
// @Summary Retrieve a loan application
// @Tags Loan Applications
// @Produce json
// @Param applicationID path string true "Application ID"
// @Success 200 {object} dto.ApplicationResponse "Application details"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /loan-applications/{applicationID} [get]
// @Security BearerAuth
func (h *ApplicationHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	id, err := applicationIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	app, err := h.service.GetApplication(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewApplicationResponse(app))
}

// ListApplications lists applications with optional filters.
//
// @Summary List loan applications
// @Tags Loan Applications
// @Produce json
// @Param status query string false "Filter by status"
// @Param loan_type query string false "Filter by loan type"
// @Param customer_id query string false "Filter by customer"
// @Param assigned_officer_id query string false "Filter by assigned officer"
// @Param branch_id query string false "Filter by branch"
// @Param skip query int false "Pagination offset"
// @Param limit query int false "Page size"
// @Success 200 {array} dto.ApplicationResponse "Applications"
// @Router /loan-applications [get]
// @Security BearerAuth
func (h *ApplicationHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	skip, _ := strconv.Atoi(q.Get("skip"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	filter := application.ListFilter{
		Status:            application.Status(q.Get("status")),
		LoanType:          application.LoanType(q.Get("loan_type")),
		CustomerID:        q.Get("customer_id"),
		AssignedOfficerID: q.Get("assigned_officer_id"),
		BranchID:          q.Get("branch_id"),
		Skip:              skip,
		Limit:             limit,
	}

	apps, err := h.service.ListApplications(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewApplicationListResponse(apps))
}

// UpdateApplication applies a partial update to an editable application.
//
// @Summary Update a loan application
// @Description Partially updates a draft or submitted application. The supplied version must match the stored record.
// @Tags Loan Applications
// @Accept json
// @Produce json
// @Param applicationID path string true "Application ID"
// @Param request body dto.UpdateApplicationRequest true "Update payload"
// @Success 200 {object} dto.ApplicationResponse "Updated application"
// @Failure 400 {object} dto.ErrorResponse "Invalid payload or application not editable"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 409 {object} dto.ErrorResponse "Version conflict"
// @Router /loan-applications/{applicationID} [put]
// @Security BearerAuth
func (h *ApplicationHandler) UpdateApplication(w http.ResponseWriter, r *http.Request) {
	id, err := applicationIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var req dto.UpdateApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	updated, err := h.service.UpdateApplication(r.Context(), id, req.ToPatch(), req.Version)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewApplicationResponse(updated))
}

// UpdateStatus moves an application through the workflow.
//
// @Summary Change application status
// @Description Applies a workflow transition. Approvals require interest_rate; rejections require rejection_reason.
// @Tags Loan Applications
// @Accept json
// @Produce json
// @Param applicationID path string true "Application ID"
// @Param request body dto.StatusUpdateRequest true "Status change payload"
// @Success 200 {object} dto.ApplicationResponse "Application after transition"
// @Failure 400 {object} dto.ErrorResponse "Illegal transition or missing required field"
// @Failure 403 {object} dto.ErrorResponse "Actor may not process loan applications"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 409 {object} dto.ErrorResponse "Version conflict"
// @Router /loan-applications/{applicationID}/status [patch]
// @Security BearerAuth
func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := applicationIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var req dto.StatusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	actorID := middleware.UserIDFromContext(r.Context())
	updated, err := h.service.TransitionStatus(r.Context(), id,
		application.Status(req.NewStatus), actorID, req.ToTransitionInput(), req.Version)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewApplicationResponse(updated))
}

// AssignOfficer reassigns the application's loan officer.
//
// @Summary Assign a loan officer
// @Tags Loan Applications
// @Accept json
// @Produce json
// @Param applicationID path string true "Application ID"
// @Param request body dto.AssignOfficerRequest true "Officer assignment payload"
// @Success 200 {object} dto.ApplicationResponse "Application with new officer"
// @Failure 400 {object} dto.ErrorResponse "Unknown officer"
// @Failure 403 {object} dto.ErrorResponse "Officer role may not process loan applications"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /loan-applications/{applicationID}/assign-officer [patch]
// @Security BearerAuth
func (h *ApplicationHandler) AssignOfficer(w http.ResponseWriter, r *http.Request) {
	id, err := applicationIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var req dto.AssignOfficerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	updated, err := h.service.AssignOfficer(r.Context(), id, req.OfficerID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewApplicationResponse(updated))
}

// DeleteApplication removes a draft application.
//
// @Summary Delete a draft application
// @Tags Loan Applications
// @Param applicationID path string true "Application ID"
// @Success 204 "Application deleted"
// @Failure 400 {object} dto.ErrorResponse "Application is past draft"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /loan-applications/{applicationID} [delete]
// @Security BearerAuth
func (h *ApplicationHandler) DeleteApplication(w http.ResponseWriter, r *http.Request) {
	id, err := applicationIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	if err := h.service.DeleteApplication(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SummaryStats returns portfolio-level aggregates.
//
// @Summary Application summary statistics
// @Tags Loan Applications
// @Produce json
// @Param branch_id query string false "Scope to a branch"
// @Success 200 {object} application.SummaryStats "Aggregated statistics"
// @Router /loan-applications/stats/summary [get]
// @Security BearerAuth
func (h *ApplicationHandler) SummaryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Summary(r.Context(), r.URL.Query().Get("branch_id"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
