package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"genzip/internal/caching"
	"genzip/internal/models"
	"genzip/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type mockInterviewRepo struct {
	mock.Mock
	repositories.InterviewRepository
}

func (m *mockInterviewRepo) CountByStatus(ctx context.Context, companyID uuid.UUID) ([]models.InterviewCount, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).([]models.InterviewCount), args.Error(1)
}

type mockCreditRepo struct {
	mock.Mock
	repositories.CreditRepository
}

func (m *mockCreditRepo) Summary(ctx context.Context, companyID uuid.UUID) (*models.CreditSummary, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CreditSummary), args.Error(1)
}

type mockSubscriptionRepo struct {
	mock.Mock
	repositories.SubscriptionRepository
}

func (m *mockSubscriptionRepo) GetActive(ctx context.Context, companyID uuid.UUID) (*models.Subscription, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

type mockHRRepo struct {
	mock.Mock
	repositories.HRRepository
}

func (m *mockHRRepo) List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.HR, error) {
	args := m.Called(ctx, companyID, limit, offset)
	return args.Get(0).([]*models.HR), args.Error(1)
}

type mockCache struct {
	mock.Mock
	caching.CacheService
}

func (m *mockCache) GetDashboard(ctx context.Context, companyID uuid.UUID) (*models.Dashboard, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dashboard), args.Error(1)
}

func (m *mockCache) SetDashboard(ctx context.Context, companyID uuid.UUID, dashboard *models.Dashboard, ttl time.Duration) error {
	args := m.Called(ctx, companyID, dashboard, ttl)
	return args.Error(0)
}

func (m *mockCache) InvalidateCompanyCache(ctx context.Context, companyID uuid.UUID) error {
	args := m.Called(ctx, companyID)
	return args.Error(0)
}

type AnalyticsServiceTestSuite struct {
	suite.Suite
	interviews    *mockInterviewRepo
	credits       *mockCreditRepo
	subscriptions *mockSubscriptionRepo
	hrs           *mockHRRepo
	cache         *mockCache
	service       *AnalyticsService
	companyID     uuid.UUID
}

func (suite *AnalyticsServiceTestSuite) SetupTest() {
	suite.interviews = &mockInterviewRepo{}
	suite.credits = &mockCreditRepo{}
	suite.subscriptions = &mockSubscriptionRepo{}
	suite.hrs = &mockHRRepo{}
	suite.cache = &mockCache{}
	suite.service = NewAnalyticsService(suite.interviews, suite.credits, suite.subscriptions, suite.hrs, suite.cache)
	suite.companyID = uuid.New()
}

func (suite *AnalyticsServiceTestSuite) TearDownTest() {
	suite.interviews.AssertExpectations(suite.T())
	suite.credits.AssertExpectations(suite.T())
	suite.subscriptions.AssertExpectations(suite.T())
	suite.hrs.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
}

func TestAnalyticsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AnalyticsServiceTestSuite))
}

func (suite *AnalyticsServiceTestSuite) expectCalculation() {
	suite.interviews.On("CountByStatus", mock.Anything, suite.companyID).Return([]models.InterviewCount{
		{Status: models.StatusScheduled, PaymentStatus: models.PaymentPending, Count: 2},
		{Status: models.StatusScheduled, PaymentStatus: models.PaymentCompleted, Count: 3},
		{Status: models.StatusCompleted, PaymentStatus: models.PaymentCompleted, Count: 4},
	}, nil).Once()
	suite.credits.On("Summary", mock.Anything, suite.companyID).Return(&models.CreditSummary{Added: 23, Used: 7, Available: 16}, nil).Once()
	suite.subscriptions.On("GetActive", mock.Anything, suite.companyID).Return(&models.Subscription{PlanName: "Pro"}, nil).Once()
	suite.hrs.On("List", mock.Anything, suite.companyID, 10000, 0).Return([]*models.HR{{}, {}}, nil).Once()
}

func (suite *AnalyticsServiceTestSuite) TestGetDashboard_CacheHitSkipsRepositories() {
	cached := &models.Dashboard{CompanyID: suite.companyID, TotalInterviews: 42}
	suite.cache.On("GetDashboard", mock.Anything, suite.companyID).Return(cached, nil).Once()

	dashboard, err := suite.service.GetDashboard(context.Background(), suite.companyID)

	require.NoError(suite.T(), err)
	assert.Same(suite.T(), cached, dashboard)
	suite.interviews.AssertNotCalled(suite.T(), "CountByStatus", mock.Anything, mock.Anything)
	suite.credits.AssertNotCalled(suite.T(), "Summary", mock.Anything, mock.Anything)
}

func (suite *AnalyticsServiceTestSuite) TestGetDashboard_MissCalculatesAndCaches() {
	suite.cache.On("GetDashboard", mock.Anything, suite.companyID).Return(nil, nil).Once()
	suite.expectCalculation()
	suite.cache.On("SetDashboard", mock.Anything, suite.companyID, mock.AnythingOfType("*models.Dashboard"), dashboardTTL).Return(nil).Once()

	dashboard, err := suite.service.GetDashboard(context.Background(), suite.companyID)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 9, dashboard.TotalInterviews)
	assert.Equal(suite.T(), 5, dashboard.ByStatus[models.StatusScheduled])
	assert.Equal(suite.T(), 4, dashboard.ByStatus[models.StatusCompleted])
	assert.Equal(suite.T(), 0, dashboard.ByStatus[models.StatusCancelled])
	assert.Equal(suite.T(), 7, dashboard.ByPaymentStatus[models.PaymentCompleted])
	assert.Equal(suite.T(), 16, dashboard.Credits.Available)
	assert.Equal(suite.T(), "Pro", *dashboard.ActivePlan)
	assert.Equal(suite.T(), 2, dashboard.HRCount)
}

func (suite *AnalyticsServiceTestSuite) TestGetDashboard_CacheErrorFallsBackToDatabase() {
	suite.cache.On("GetDashboard", mock.Anything, suite.companyID).Return(nil, errors.New("redis down")).Once()
	suite.expectCalculation()
	suite.cache.On("SetDashboard", mock.Anything, suite.companyID, mock.Anything, dashboardTTL).Return(errors.New("redis down")).Once()

	dashboard, err := suite.service.GetDashboard(context.Background(), suite.companyID)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 9, dashboard.TotalInterviews)
}

func (suite *AnalyticsServiceTestSuite) TestCalculateDashboard_NoActivePlan() {
	suite.interviews.On("CountByStatus", mock.Anything, suite.companyID).Return([]models.InterviewCount{}, nil).Once()
	suite.credits.On("Summary", mock.Anything, suite.companyID).Return(&models.CreditSummary{}, nil).Once()
	suite.subscriptions.On("GetActive", mock.Anything, suite.companyID).Return(nil, repositories.ErrNotFound).Once()
	suite.hrs.On("List", mock.Anything, suite.companyID, 10000, 0).Return([]*models.HR{}, nil).Once()

	dashboard, err := suite.service.CalculateDashboard(context.Background(), suite.companyID)

	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), dashboard.ActivePlan)
	assert.Zero(suite.T(), dashboard.TotalInterviews)
}

func (suite *AnalyticsServiceTestSuite) TestInvalidateDashboard() {
	suite.cache.On("InvalidateCompanyCache", mock.Anything, suite.companyID).Return(nil).Once()

	assert.NoError(suite.T(), suite.service.InvalidateDashboard(context.Background(), suite.companyID))
}
