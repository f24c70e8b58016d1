package batch

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"loan-origination/internal/domain/application"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, nil))

type MockApplicationRepository struct {
	mock.Mock
}

func (_m *MockApplicationRepository) Create(ctx context.Context, app *application.Application) (*application.Application, error) {
	ret := _m.Called(ctx, app)
	var r0 *application.Application
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*application.Application)
	}
	return r0, ret.Error(1)
}

func (_m *MockApplicationRepository) GetByID(ctx context.Context, id string) (*application.Application, error) {
	ret := _m.Called(ctx, id)
	var r0 *application.Application
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*application.Application)
	}
	return r0, ret.Error(1)
}

func (_m *MockApplicationRepository) List(ctx context.Context, filter application.ListFilter) ([]*application.Application, error) {
	ret := _m.Called(ctx, filter)
	var r0 []*application.Application
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*application.Application)
	}
	return r0, ret.Error(1)
}

func (_m *MockApplicationRepository) Update(ctx context.Context, app *application.Application, expectedVersion int) (*application.Application, error) {
	ret := _m.Called(ctx, app, expectedVersion)
	var r0 *application.Application
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*application.Application)
	}
	return r0, ret.Error(1)
}

func (_m *MockApplicationRepository) UpdateOfficer(ctx context.Context, id string, officerID string) (*application.Application, error) {
	ret := _m.Called(ctx, id, officerID)
	var r0 *application.Application
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*application.Application)
	}
	return r0, ret.Error(1)
}

func (_m *MockApplicationRepository) Delete(ctx context.Context, id string) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

func (_m *MockApplicationRepository) ListForSummary(ctx context.Context, branchID string) ([]application.SummaryRow, error) {
	ret := _m.Called(ctx, branchID)
	var r0 []application.SummaryRow
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]application.SummaryRow)
	}
	return r0, ret.Error(1)
}

func intPtr(v int) *int { return &v }

func TestClassifyRisk(t *testing.T) {
	tests := []struct {
		name string
		app  *application.Application
		want application.RiskCategory
	}{
		{
			name: "low score is high risk",
			app:  &application.Application{LoanAmount: 10000, LoanTenureMonths: 12, MonthlyIncome: 10000, CreditScore: intPtr(500)},
			want: application.RiskHigh,
		},
		{
			name: "high dti is high risk",
			app:  &application.Application{LoanAmount: 120000, LoanTenureMonths: 12, MonthlyIncome: 5000, CreditScore: intPtr(750)},
			want: application.RiskHigh,
		},
		{
			name: "good score and low dti is low risk",
			app:  &application.Application{LoanAmount: 20000, LoanTenureMonths: 24, MonthlyIncome: 5000, CreditScore: intPtr(720)},
			want: application.RiskLow,
		},
		{
			name: "middling score is medium risk",
			app:  &application.Application{LoanAmount: 20000, LoanTenureMonths: 24, MonthlyIncome: 5000, CreditScore: intPtr(600)},
			want: application.RiskMedium,
		},
		{
			name: "no score falls back to dti",
			app:  &application.Application{LoanAmount: 20000, LoanTenureMonths: 24, MonthlyIncome: 5000},
			want: application.RiskLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRisk(tt.app))
		})
	}
}

func TestRiskUpdateJobUpdatesChangedCategories(t *testing.T) {
	mockRepo := new(MockApplicationRepository)
	job := NewRiskUpdateJob(mockRepo, logger)
	ctx := context.Background()

	stale := &application.Application{
		ID: "app-1", Status: application.StatusSubmitted, Version: 2,
		LoanAmount: 120000, LoanTenureMonths: 12, MonthlyIncome: 5000, CreditScore: intPtr(750),
	}
	low := application.RiskLow
	current := &application.Application{
		ID: "app-2", Status: application.StatusUnderReview, Version: 1,
		LoanAmount: 20000, LoanTenureMonths: 24, MonthlyIncome: 5000, CreditScore: intPtr(720),
		RiskCategory: &low,
	}

	mockRepo.On("List", ctx, application.ListFilter{Status: application.StatusSubmitted, Limit: 1000}).
		Return([]*application.Application{stale}, nil)
	mockRepo.On("List", ctx, application.ListFilter{Status: application.StatusUnderReview, Limit: 1000}).
		Return([]*application.Application{current}, nil)
	mockRepo.On("Update", ctx, stale, 2).Return(stale, nil)

	err := job.Run(ctx)

	require.NoError(t, err)
	require.NotNil(t, stale.RiskCategory)
	assert.Equal(t, application.RiskHigh, *stale.RiskCategory)
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "Update", ctx, current, 1)
}
