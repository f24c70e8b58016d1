package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"loan-origination/internal/api/handler/dto"
	"loan-origination/internal/api/middleware"
	"loan-origination/internal/domain/application"
	"loan-origination/internal/pkg/apperrors"
)

type MockApplicationService struct {
	mock.Mock
}

func (m *MockApplicationService) CreateApplication(ctx context.Context, app *application.Application, creatorID string) (*application.Application, error) {
	args := m.Called(ctx, app, creatorID)
	if created, ok := args.Get(0).(*application.Application); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockApplicationService) GetApplication(ctx context.Context, id string) (*application.Application, error) {
	args := m.Called(ctx, id)
	if app, ok := args.Get(0).(*application.Application); ok {
		return app, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockApplicationService) ListApplications(ctx context.Context, filter application.ListFilter) ([]*application.Application, error) {
	args := m.Called(ctx, filter)
	if apps, ok := args.Get(0).([]*application.Application); ok {
		return apps, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockApplicationService) UpdateApplication(ctx context.Context, id string, patch application.UpdatePatch, expectedVersion int) (*application.Application, error) {
	args := m.Called(ctx, id, patch, expectedVersion)
	if app, ok := args.Get(0).(*application.Application); ok {
		return app, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockApplicationService) TransitionStatus(ctx context.Context, id string, next application.Status, actorID string, input application.TransitionInput, expectedVersion int) (*application.Application, error) {
	args := m.Called(ctx, id, next, actorID, input, expectedVersion)
	if app, ok := args.Get(0).(*application.Application); ok {
		return app, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockApplicationService) AssignOfficer(ctx context.Context, id string, officerID string) (*application.Application, error) {
	args := m.Called(ctx, id, officerID)
	if app, ok := args.Get(0).(*application.Application); ok {
		return app, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockApplicationService) DeleteApplication(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockApplicationService) Summary(ctx context.Context, branchID string) (*application.SummaryStats, error) {
	args := m.Called(ctx, branchID)
	if stats, ok := args.Get(0).(*application.SummaryStats); ok {
		return stats, args.Error(1)
	}
	return nil, args.Error(1)
}

func withApplicationID(req *http.Request, id string) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{Keys: []string{"applicationID"}, Values: []string{id}},
	}))
}

func withActor(req *http.Request, userID, role string) *http.Request {
	return req.WithContext(middleware.ContextWithUser(req.Context(), userID, role))
}

func testStoredApplication() *application.Application {
	return &application.Application{
		ID:                "app-1",
		ApplicationNumber: "LA20250101120000ABCDEF12",
		CustomerID:        "cust-1",
		LoanType:          application.LoanTypePersonal,
		LoanAmount:        100000,
		LoanPurpose:       "home renovation",
		LoanTenureMonths:  12,
		MonthlyIncome:     5000,
		EmploymentType:    "salaried",
		CollateralType:    application.CollateralNone,
		Status:            application.StatusDraft,
		BranchID:          "branch-1",
		DepartmentID:      "dept-1",
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
		Version:           1,
	}
}

func TestApplicationHandlerGetApplication(t *testing.T) {
	mockService := new(MockApplicationService)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	handler := NewApplicationHandler(mockService, logger)

	t.Run("successfully retrieves an application", func(t *testing.T) {
		mockService.On("GetApplication", mock.Anything, "app-1").Return(testStoredApplication(), nil).Once()

		req := withApplicationID(httptest.NewRequest(http.MethodGet, "/loan-applications/app-1", nil), "app-1")
		rec := httptest.NewRecorder()

		handler.GetApplication(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.ApplicationResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "app-1", resp.ID)
		assert.Equal(t, "draft", resp.Status)
		assert.Equal(t, 1, resp.Version)
		mockService.AssertExpectations(t)
	})

	t.Run("returns 404 when the application does not exist", func(t *testing.T) {
		mockService.On("GetApplication", mock.Anything, "missing").Return((*application.Application)(nil), apperrors.ErrNotFound).Once()

		req := withApplicationID(httptest.NewRequest(http.MethodGet, "/loan-applications/missing", nil), "missing")
		rec := httptest.NewRecorder()

		handler.GetApplication(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestApplicationHandlerCreateApplication(t *testing.T) {
	mockService := new(MockApplicationService)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	handler := NewApplicationHandler(mockService, logger)

	t.Run("creates an application and returns 201", func(t *testing.T) {
		created := testStoredApplication()
		mockService.On("CreateApplication", mock.Anything, mock.AnythingOfType("*application.Application"), "officer-1").
			Return(created, nil).Once()

		body := `{
			"customer_id": "cust-1",
			"loan_type": "personal",
			"loan_amount": 100000,
			"loan_purpose": "home renovation",
			"loan_tenure_months": 12,
			"monthly_income": 5000,
			"employment_type": "salaried",
			"branch_id": "branch-1",
			"department_id": "dept-1"
		}`
		req := httptest.NewRequest(http.MethodPost, "/loan-applications", bytes.NewBufferString(body))
		req = withActor(req, "officer-1", "officer")
		rec := httptest.NewRecorder()

		handler.CreateApplication(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var resp dto.ApplicationResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "LA20250101120000ABCDEF12", resp.ApplicationNumber)
		mockService.AssertExpectations(t)
	})

	t.Run("rejects a payload with an out of range tenure", func(t *testing.T) {
		body := `{
			"customer_id": "cust-1",
			"loan_type": "personal",
			"loan_amount": 100000,
			"loan_purpose": "home renovation",
			"loan_tenure_months": 3,
			"monthly_income": 5000,
			"employment_type": "salaried",
			"branch_id": "branch-1",
			"department_id": "dept-1"
		}`
		req := httptest.NewRequest(http.MethodPost, "/loan-applications", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()

		handler.CreateApplication(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var resp dto.ErrorResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Contains(t, resp.Error.Message, "loan_tenure_months")
	})

	t.Run("rejects a payload with unknown fields", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/loan-applications", bytes.NewBufferString(`{"bogus": true}`))
		rec := httptest.NewRecorder()

		handler.CreateApplication(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestApplicationHandlerUpdateStatus(t *testing.T) {
	mockService := new(MockApplicationService)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	handler := NewApplicationHandler(mockService, logger)

	newStatusRequest := func(body string) (*http.Request, *httptest.ResponseRecorder) {
		req := httptest.NewRequest(http.MethodPatch, "/loan-applications/app-1/status", bytes.NewBufferString(body))
		req = withApplicationID(req, "app-1")
		req = withActor(req, "manager-1", "manager")
		return req, httptest.NewRecorder()
	}

	t.Run("applies a valid transition", func(t *testing.T) {
		updated := testStoredApplication()
		updated.Status = application.StatusSubmitted
		updated.Version = 2
		mockService.On("TransitionStatus", mock.Anything, "app-1", application.StatusSubmitted, "manager-1",
			mock.AnythingOfType("application.TransitionInput"), 1).Return(updated, nil).Once()

		req, rec := newStatusRequest(`{"new_status": "submitted", "version": 1}`)
		handler.UpdateStatus(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.ApplicationResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "submitted", resp.Status)
		assert.Equal(t, 2, resp.Version)
		mockService.AssertExpectations(t)
	})

	t.Run("returns 409 on a stale version", func(t *testing.T) {
		mockService.On("TransitionStatus", mock.Anything, "app-1", application.StatusApproved, "manager-1",
			mock.AnythingOfType("application.TransitionInput"), 1).
			Return((*application.Application)(nil), apperrors.ErrVersionConflict).Once()

		req, rec := newStatusRequest(`{"new_status": "approved", "interest_rate": 12.5, "version": 1}`)
		handler.UpdateStatus(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("returns 403 when the actor cannot process loans", func(t *testing.T) {
		mockService.On("TransitionStatus", mock.Anything, "app-1", application.StatusUnderReview, "manager-1",
			mock.AnythingOfType("application.TransitionInput"), 1).
			Return((*application.Application)(nil), apperrors.ErrForbidden).Once()

		req, rec := newStatusRequest(`{"new_status": "under_review", "version": 1}`)
		handler.UpdateStatus(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("returns 400 on an illegal transition", func(t *testing.T) {
		mockService.On("TransitionStatus", mock.Anything, "app-1", application.StatusDisbursed, "manager-1",
			mock.AnythingOfType("application.TransitionInput"), 1).
			Return((*application.Application)(nil), apperrors.ErrInvalidTransition).Once()

		req, rec := newStatusRequest(`{"new_status": "disbursed", "version": 1}`)
		handler.UpdateStatus(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects a request without a version", func(t *testing.T) {
		req, rec := newStatusRequest(`{"new_status": "submitted"}`)
		handler.UpdateStatus(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestApplicationHandlerUpdateApplication(t *testing.T) {
	mockService := new(MockApplicationService)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	handler := NewApplicationHandler(mockService, logger)

	t.Run("returns 409 when the stored version moved on", func(t *testing.T) {
		mockService.On("UpdateApplication", mock.Anything, "app-1",
			mock.AnythingOfType("application.UpdatePatch"), 1).
			Return((*application.Application)(nil), apperrors.ErrVersionConflict).Once()

		body := `{"loan_amount": 150000, "version": 1}`
		req := httptest.NewRequest(http.MethodPut, "/loan-applications/app-1", bytes.NewBufferString(body))
		req = withApplicationID(req, "app-1")
		rec := httptest.NewRecorder()

		handler.UpdateApplication(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("returns 400 when the application is no longer editable", func(t *testing.T) {
		mockService.On("UpdateApplication", mock.Anything, "app-1",
			mock.AnythingOfType("application.UpdatePatch"), 3).
			Return((*application.Application)(nil), apperrors.ErrInvalidState).Once()

		body := `{"loan_amount": 150000, "version": 3}`
		req := httptest.NewRequest(http.MethodPut, "/loan-applications/app-1", bytes.NewBufferString(body))
		req = withApplicationID(req, "app-1")
		rec := httptest.NewRecorder()

		handler.UpdateApplication(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestApplicationHandlerDeleteApplication(t *testing.T) {
	mockService := new(MockApplicationService)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	handler := NewApplicationHandler(mockService, logger)

	t.Run("deletes a draft and returns 204", func(t *testing.T) {
		mockService.On("DeleteApplication", mock.Anything, "app-1").Return(nil).Once()

		req := withApplicationID(httptest.NewRequest(http.MethodDelete, "/loan-applications/app-1", nil), "app-1")
		rec := httptest.NewRecorder()

		handler.DeleteApplication(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("returns 400 for an application past draft", func(t *testing.T) {
		mockService.On("DeleteApplication", mock.Anything, "app-2").Return(apperrors.ErrInvalidState).Once()

		req := withApplicationID(httptest.NewRequest(http.MethodDelete, "/loan-applications/app-2", nil), "app-2")
		rec := httptest.NewRecorder()

		handler.DeleteApplication(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestApplicationHandlerSummaryStats(t *testing.T) {
	mockService := new(MockApplicationService)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	handler := NewApplicationHandler(mockService, logger)

	stats := &application.SummaryStats{
		TotalApplications:    4,
		PendingReview:        2,
		ApprovedApplications: 1,
		RejectedApplications: 1,
	}
	mockService.On("Summary", mock.Anything, "branch-1").Return(stats, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/loan-applications/stats/summary?branch_id=branch-1", nil)
	rec := httptest.NewRecorder()

	handler.SummaryStats(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp application.SummaryStats
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 4, resp.TotalApplications)
	assert.Equal(t, 2, resp.PendingReview)
	mockService.AssertExpectations(t)
}
