package application

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"loan-origination/internal/domain/customer"
	"loan-origination/internal/domain/organization"
	"loan-origination/internal/domain/user"
	"loan-origination/internal/event"
	"loan-origination/internal/pkg/apperrors"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, nil))

type MockRepository struct {
	mock.Mock
}

func (_m *MockRepository) Create(ctx context.Context, app *Application) (*Application, error) {
	ret := _m.Called(ctx, app)

	var r0 *Application
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Application)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) GetByID(ctx context.Context, id string) (*Application, error) {
	ret := _m.Called(ctx, id)

	var r0 *Application
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Application)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) List(ctx context.Context, filter ListFilter) ([]*Application, error) {
	ret := _m.Called(ctx, filter)

	var r0 []*Application
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*Application)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) Update(ctx context.Context, app *Application, expectedVersion int) (*Application, error) {
	ret := _m.Called(ctx, app, expectedVersion)

	var r0 *Application
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Application)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) UpdateOfficer(ctx context.Context, id string, officerID string) (*Application, error) {
	ret := _m.Called(ctx, id, officerID)

	var r0 *Application
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Application)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) Delete(ctx context.Context, id string) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

func (_m *MockRepository) ListForSummary(ctx context.Context, branchID string) ([]SummaryRow, error) {
	ret := _m.Called(ctx, branchID)

	var r0 []SummaryRow
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]SummaryRow)
	}
	return r0, ret.Error(1)
}

type MockCustomerService struct {
	mock.Mock
}

func (_m *MockCustomerService) CreateCustomer(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	ret := _m.Called(ctx, c)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerService) GetCustomer(ctx context.Context, id string) (*customer.Customer, error) {
	ret := _m.Called(ctx, id)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerService) ListCustomers(ctx context.Context, skip, limit int) ([]*customer.Customer, error) {
	ret := _m.Called(ctx, skip, limit)

	var r0 []*customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerService) UpdateCustomer(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	ret := _m.Called(ctx, c)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerService) DeleteCustomer(ctx context.Context, id string) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

type MockUserService struct {
	mock.Mock
}

func (_m *MockUserService) CreateUser(ctx context.Context, input user.CreateInput) (*user.User, error) {
	ret := _m.Called(ctx, input)

	var r0 *user.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*user.User)
	}
	return r0, ret.Error(1)
}

func (_m *MockUserService) GetUser(ctx context.Context, id string) (*user.User, error) {
	ret := _m.Called(ctx, id)

	var r0 *user.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*user.User)
	}
	return r0, ret.Error(1)
}

func (_m *MockUserService) ListUsers(ctx context.Context, role user.Role, status user.AccountStatus) ([]*user.User, error) {
	ret := _m.Called(ctx, role, status)

	var r0 []*user.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*user.User)
	}
	return r0, ret.Error(1)
}

func (_m *MockUserService) Authenticate(ctx context.Context, username, password string) (*user.User, error) {
	ret := _m.Called(ctx, username, password)

	var r0 *user.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*user.User)
	}
	return r0, ret.Error(1)
}

type MockOrganizationService struct {
	mock.Mock
}

func (_m *MockOrganizationService) CreateBranch(ctx context.Context, b *organization.Branch) (*organization.Branch, error) {
	ret := _m.Called(ctx, b)

	var r0 *organization.Branch
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*organization.Branch)
	}
	return r0, ret.Error(1)
}

func (_m *MockOrganizationService) GetBranch(ctx context.Context, id string) (*organization.Branch, error) {
	ret := _m.Called(ctx, id)

	var r0 *organization.Branch
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*organization.Branch)
	}
	return r0, ret.Error(1)
}

func (_m *MockOrganizationService) ListBranches(ctx context.Context, activeOnly bool) ([]*organization.Branch, error) {
	ret := _m.Called(ctx, activeOnly)

	var r0 []*organization.Branch
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*organization.Branch)
	}
	return r0, ret.Error(1)
}

func (_m *MockOrganizationService) CreateDepartment(ctx context.Context, d *organization.Department) (*organization.Department, error) {
	ret := _m.Called(ctx, d)

	var r0 *organization.Department
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*organization.Department)
	}
	return r0, ret.Error(1)
}

func (_m *MockOrganizationService) GetDepartment(ctx context.Context, id string) (*organization.Department, error) {
	ret := _m.Called(ctx, id)

	var r0 *organization.Department
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*organization.Department)
	}
	return r0, ret.Error(1)
}

func (_m *MockOrganizationService) ListDepartments(ctx context.Context, activeOnly bool) ([]*organization.Department, error) {
	ret := _m.Called(ctx, activeOnly)

	var r0 []*organization.Department
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*organization.Department)
	}
	return r0, ret.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (_m *MockEventPublisher) PublishApplicationCreated(ctx context.Context, evt event.ApplicationCreatedEvent) error {
	ret := _m.Called(ctx, evt)
	return ret.Error(0)
}

func (_m *MockEventPublisher) PublishApplicationStatusChanged(ctx context.Context, evt event.ApplicationStatusChangedEvent) error {
	ret := _m.Called(ctx, evt)
	return ret.Error(0)
}

type serviceFixture struct {
	repo      *MockRepository
	customers *MockCustomerService
	users     *MockUserService
	org       *MockOrganizationService
	service   Service
}

func newFixture() *serviceFixture {
	f := &serviceFixture{
		repo:      new(MockRepository),
		customers: new(MockCustomerService),
		users:     new(MockUserService),
		org:       new(MockOrganizationService),
	}
	f.service = NewService(f.repo, f.customers, f.users, f.org, nil, logger)
	return f
}

func validDraft() *Application {
	return &Application{
		CustomerID:       "cust-1",
		BranchID:         "branch-1",
		DepartmentID:     "dept-1",
		LoanType:         LoanTypePersonal,
		LoanAmount:       100000,
		LoanPurpose:      "home renovation",
		LoanTenureMonths: 12,
		MonthlyIncome:    8000,
		EmploymentType:   "salaried",
	}
}

func TestCreateApplication(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	app := validDraft()

	f.customers.On("GetCustomer", ctx, "cust-1").Return(&customer.Customer{ID: "cust-1"}, nil)
	f.org.On("GetBranch", ctx, "branch-1").Return(&organization.Branch{ID: "branch-1"}, nil)
	f.org.On("GetDepartment", ctx, "dept-1").Return(&organization.Department{ID: "dept-1"}, nil)
	f.repo.On("Create", ctx, mock.AnythingOfType("*application.Application")).
		Return(app, nil)

	created, err := f.service.CreateApplication(ctx, app, "officer-1")

	require.NoError(t, err)
	assert.Equal(t, StatusDraft, created.Status)
	assert.Equal(t, 1, created.Version)
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.ApplicationNumber)
	require.NotNil(t, created.AssignedOfficerID)
	assert.Equal(t, "officer-1", *created.AssignedOfficerID)
	require.NotNil(t, created.DebtToIncomeRatio)
	assert.InDelta(t, 104.1666, *created.DebtToIncomeRatio, 0.001)
	f.repo.AssertExpectations(t)
}

func TestCreateApplicationUnknownCustomer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.customers.On("GetCustomer", ctx, "cust-1").Return(nil, apperrors.ErrNotFound)

	_, err := f.service.CreateApplication(ctx, validDraft(), "officer-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	f.repo.AssertNotCalled(t, "Create")
}

func TestCreateApplicationInvalidTenure(t *testing.T) {
	f := newFixture()
	app := validDraft()
	app.LoanTenureMonths = 3

	_, err := f.service.CreateApplication(context.Background(), app, "officer-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	f.customers.AssertNotCalled(t, "GetCustomer")
}

func TestUpdateApplicationVersionMismatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stored := validDraft()
	stored.ID = "app-1"
	stored.Status = StatusDraft
	stored.Version = 3

	f.repo.On("GetByID", ctx, "app-1").Return(stored, nil)

	_, err := f.service.UpdateApplication(ctx, "app-1", UpdatePatch{}, 2)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrVersionConflict)
	f.repo.AssertNotCalled(t, "Update")
}

func TestUpdateApplicationNotEditable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stored := validDraft()
	stored.ID = "app-1"
	stored.Status = StatusApproved
	stored.Version = 4

	f.repo.On("GetByID", ctx, "app-1").Return(stored, nil)

	_, err := f.service.UpdateApplication(ctx, "app-1", UpdatePatch{}, 4)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestUpdateApplicationRecomputesDTI(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stored := validDraft()
	stored.ID = "app-1"
	stored.Status = StatusDraft
	stored.Version = 1

	newAmount := 120000.0
	newTenure := 24
	newIncome := 5000.0

	f.repo.On("GetByID", ctx, "app-1").Return(stored, nil)
	f.repo.On("Update", ctx, mock.AnythingOfType("*application.Application"), 1).
		Run(func(args mock.Arguments) {
			app := args.Get(1).(*Application)
			require.NotNil(t, app.DebtToIncomeRatio)
			assert.InDelta(t, 100.0, *app.DebtToIncomeRatio, 1e-9)
		}).
		Return(stored, nil)

	_, err := f.service.UpdateApplication(ctx, "app-1", UpdatePatch{
		LoanAmount:       &newAmount,
		LoanTenureMonths: &newTenure,
		MonthlyIncome:    &newIncome,
	}, 1)

	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestTransitionStatusHappyPath(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stored := validDraft()
	stored.ID = "app-1"
	stored.Status = StatusDraft
	stored.Version = 1

	f.repo.On("GetByID", ctx, "app-1").Return(stored, nil)
	f.users.On("GetUser", ctx, "user-1").Return(&user.User{ID: "user-1", Role: user.RoleViewer}, nil)
	f.repo.On("Update", ctx, mock.AnythingOfType("*application.Application"), 1).
		Run(func(args mock.Arguments) {
			app := args.Get(1).(*Application)
			assert.Equal(t, StatusSubmitted, app.Status)
			assert.NotNil(t, app.SubmittedAt)
		}).
		Return(stored, nil)

	_, err := f.service.TransitionStatus(ctx, "app-1", StatusSubmitted, "user-1", TransitionInput{}, 1)

	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestTransitionStatusStaleVersion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stored := validDraft()
	stored.ID = "app-1"
	stored.Status = StatusSubmitted
	stored.Version = 5

	f.repo.On("GetByID", ctx, "app-1").Return(stored, nil)

	_, err := f.service.TransitionStatus(ctx, "app-1", StatusUnderReview, "officer-1", TransitionInput{}, 4)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrVersionConflict)
	f.users.AssertNotCalled(t, "GetUser")
	f.repo.AssertNotCalled(t, "Update")
}

func TestTransitionStatusUnknownActor(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stored := validDraft()
	stored.ID = "app-1"
	stored.Status = StatusSubmitted
	stored.Version = 2

	f.repo.On("GetByID", ctx, "app-1").Return(stored, nil)
	f.users.On("GetUser", ctx, "ghost").Return(nil, apperrors.ErrNotFound)

	_, err := f.service.TransitionStatus(ctx, "app-1", StatusUnderReview, "ghost", TransitionInput{}, 2)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidActor)
	f.repo.AssertNotCalled(t, "Update")
}

func TestTransitionStatusViewerCannotReview(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stored := validDraft()
	stored.ID = "app-1"
	stored.Status = StatusSubmitted
	stored.Version = 2

	f.repo.On("GetByID", ctx, "app-1").Return(stored, nil)
	f.users.On("GetUser", ctx, "viewer-1").Return(&user.User{ID: "viewer-1", Role: user.RoleViewer}, nil)

	_, err := f.service.TransitionStatus(ctx, "app-1", StatusUnderReview, "viewer-1", TransitionInput{}, 2)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	f.repo.AssertNotCalled(t, "Update")
}

func TestTransitionStatusApproveWithoutRate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stored := validDraft()
	stored.ID = "app-1"
	stored.Status = StatusUnderReview
	stored.Version = 3

	f.repo.On("GetByID", ctx, "app-1").Return(stored, nil)
	f.users.On("GetUser", ctx, "manager-1").Return(&user.User{ID: "manager-1", Role: user.RoleManager}, nil)

	_, err := f.service.TransitionStatus(ctx, "app-1", StatusApproved, "manager-1", TransitionInput{}, 3)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMissingField)
	f.repo.AssertNotCalled(t, "Update")
}

func TestTransitionStatusRepositoryConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stored := validDraft()
	stored.ID = "app-1"
	stored.Status = StatusDraft
	stored.Version = 1

	f.repo.On("GetByID", ctx, "app-1").Return(stored, nil)
	f.users.On("GetUser", ctx, "user-1").Return(&user.User{ID: "user-1", Role: user.RoleOfficer}, nil)
	f.repo.On("Update", ctx, mock.AnythingOfType("*application.Application"), 1).
		Return(nil, apperrors.ErrVersionConflict)

	_, err := f.service.TransitionStatus(ctx, "app-1", StatusSubmitted, "user-1", TransitionInput{}, 1)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrVersionConflict)
}

func TestTransitionStatusPublishesEvent(t *testing.T) {
	f := newFixture()
	publisher := new(MockEventPublisher)
	f.service = NewService(f.repo, f.customers, f.users, f.org, publisher, logger)

	ctx := context.Background()
	stored := validDraft()
	stored.ID = "app-1"
	stored.Status = StatusDraft
	stored.Version = 1

	f.repo.On("GetByID", ctx, "app-1").Return(stored, nil)
	f.users.On("GetUser", ctx, "user-1").Return(&user.User{ID: "user-1", Role: user.RoleOfficer}, nil)
	f.repo.On("Update", ctx, mock.AnythingOfType("*application.Application"), 1).Return(stored, nil)
	publisher.On("PublishApplicationStatusChanged", ctx, mock.AnythingOfType("event.ApplicationStatusChangedEvent")).
		Return(nil)

	_, err := f.service.TransitionStatus(ctx, "app-1", StatusSubmitted, "user-1", TransitionInput{}, 1)

	require.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestAssignOfficerRequiresProcessingRole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.users.On("GetUser", ctx, "viewer-1").Return(&user.User{ID: "viewer-1", Role: user.RoleViewer}, nil)

	_, err := f.service.AssignOfficer(ctx, "app-1", "viewer-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	f.repo.AssertNotCalled(t, "UpdateOfficer")
}

func TestAssignOfficer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stored := validDraft()
	stored.ID = "app-1"

	f.users.On("GetUser", ctx, "officer-2").Return(&user.User{ID: "officer-2", Role: user.RoleOfficer}, nil)
	f.repo.On("UpdateOfficer", ctx, "app-1", "officer-2").Return(stored, nil)

	_, err := f.service.AssignOfficer(ctx, "app-1", "officer-2")

	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestDeleteApplicationOnlyDraft(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stored := validDraft()
	stored.ID = "app-1"
	stored.Status = StatusSubmitted

	f.repo.On("GetByID", ctx, "app-1").Return(stored, nil)

	err := f.service.DeleteApplication(ctx, "app-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	f.repo.AssertNotCalled(t, "Delete")
}

func TestDeleteDraftApplication(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stored := validDraft()
	stored.ID = "app-1"
	stored.Status = StatusDraft

	f.repo.On("GetByID", ctx, "app-1").Return(stored, nil)
	f.repo.On("Delete", ctx, "app-1").Return(nil)

	err := f.service.DeleteApplication(ctx, "app-1")

	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestSummaryEmpty(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.repo.On("ListForSummary", ctx, "").Return([]SummaryRow{}, nil)

	stats, err := f.service.Summary(ctx, "")

	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalApplications)
	assert.Equal(t, 0.0, stats.AverageLoanAmount)
	assert.Empty(t, stats.ByStatus)
}

func TestSummaryAggregates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	high := RiskHigh

	rows := []SummaryRow{
		{Status: StatusSubmitted, LoanType: LoanTypePersonal, LoanAmount: 10000},
		{Status: StatusUnderReview, LoanType: LoanTypeHome, LoanAmount: 50000},
		{Status: StatusApproved, LoanType: LoanTypePersonal, LoanAmount: 20000, RiskCategory: &high},
		{Status: StatusRejected, LoanType: LoanTypeAuto, LoanAmount: 15000},
		{Status: StatusDisbursed, LoanType: LoanTypeHome, LoanAmount: 25000},
	}
	f.repo.On("ListForSummary", ctx, "branch-1").Return(rows, nil)

	stats, err := f.service.Summary(ctx, "branch-1")

	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalApplications)
	assert.Equal(t, 2, stats.PendingReview)
	assert.Equal(t, 1, stats.ApprovedApplications)
	assert.Equal(t, 1, stats.RejectedApplications)
	assert.Equal(t, 1, stats.DisbursedLoans)
	assert.Equal(t, 120000.0, stats.TotalLoanAmount)
	assert.Equal(t, 24000.0, stats.AverageLoanAmount)
	assert.Equal(t, 2, stats.ByStatus[string(StatusSubmitted)]+stats.ByStatus[string(StatusUnderReview)])
	assert.Equal(t, 2, stats.ByLoanType[string(LoanTypePersonal)])
	assert.Equal(t, 1, stats.ByRiskCategory[string(RiskHigh)])
}
