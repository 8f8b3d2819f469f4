package services

import (
	"context"
	"errors"
	"testing"

	"genzip/internal/models"
	"genzip/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CreditServiceTestSuite struct {
	suite.Suite
	repo      *MockCreditRepository
	cache     *MockCacheService
	service   CreditService
	companyID uuid.UUID
}

func (suite *CreditServiceTestSuite) SetupTest() {
	suite.repo = &MockCreditRepository{}
	suite.cache = &MockCacheService{}
	suite.service = NewCreditService(suite.repo, suite.cache)
	suite.companyID = uuid.New()
}

func (suite *CreditServiceTestSuite) TearDownTest() {
	suite.repo.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
}

func TestCreditServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CreditServiceTestSuite))
}

func (suite *CreditServiceTestSuite) TestSummary_CacheHit() {
	cached := &models.CreditSummary{Added: 10, Used: 4, Available: 6}
	suite.cache.On("GetCreditSummary", mock.Anything, suite.companyID).Return(cached, nil).Once()

	summary, err := suite.service.Summary(context.Background(), suite.companyID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), cached, summary)
	suite.repo.AssertNotCalled(suite.T(), "Summary", mock.Anything, mock.Anything)
}

func (suite *CreditServiceTestSuite) TestSummary_CacheMissLoadsAndStores() {
	fresh := &models.CreditSummary{Added: 23, Used: 0, Available: 23}
	suite.cache.On("GetCreditSummary", mock.Anything, suite.companyID).Return(nil, nil).Once()
	suite.repo.On("Summary", mock.Anything, suite.companyID).Return(fresh, nil).Once()
	suite.cache.On("SetCreditSummary", mock.Anything, suite.companyID, fresh, creditSummaryTTL).Return(nil).Once()

	summary, err := suite.service.Summary(context.Background(), suite.companyID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 23, summary.Available)
}

func (suite *CreditServiceTestSuite) TestSummary_CacheErrorFallsThrough() {
	fresh := &models.CreditSummary{Added: 1, Available: 1}
	suite.cache.On("GetCreditSummary", mock.Anything, suite.companyID).Return(nil, errors.New("redis down")).Once()
	suite.repo.On("Summary", mock.Anything, suite.companyID).Return(fresh, nil).Once()
	suite.cache.On("SetCreditSummary", mock.Anything, suite.companyID, fresh, creditSummaryTTL).Return(errors.New("redis down")).Once()

	summary, err := suite.service.Summary(context.Background(), suite.companyID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, summary.Available)
}

func (suite *CreditServiceTestSuite) TestGrant_RejectsNonPositive() {
	_, created, err := suite.service.Grant(context.Background(), models.GrantRequest{CompanyID: suite.companyID, Credits: 0})

	assert.Error(suite.T(), err)
	assert.False(suite.T(), created)
}

func (suite *CreditServiceTestSuite) TestGrant_InvalidatesOnlyWhenCreated() {
	key := "checkout:cs_test_1"
	req := models.GrantRequest{CompanyID: suite.companyID, Credits: 23, Reason: "Subscription - Starter", IdempotencyKey: &key}

	suite.repo.On("Grant", mock.Anything, req).Return(&models.CreditTransaction{CreditsAdded: 23}, true, nil).Once()
	suite.cache.On("InvalidateCompanyCache", mock.Anything, suite.companyID).Return(nil).Once()
	_, created, err := suite.service.Grant(context.Background(), req)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), created)

	suite.repo.On("Grant", mock.Anything, req).Return(&models.CreditTransaction{CreditsAdded: 23}, false, nil).Once()
	_, created, err = suite.service.Grant(context.Background(), req)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), created)
}

func (suite *CreditServiceTestSuite) TestConsume_InsufficientCreditsUnwrapped() {
	interviewID := uuid.New()
	suite.repo.On("Consume", mock.Anything, suite.companyID, interviewID, "Interview scheduled").
		Return(nil, repositories.ErrInsufficientCredits).Once()

	_, err := suite.service.Consume(context.Background(), suite.companyID, interviewID)

	assert.Equal(suite.T(), repositories.ErrInsufficientCredits, err)
}

func (suite *CreditServiceTestSuite) TestConsume_InvalidatesCache() {
	interviewID := uuid.New()
	suite.repo.On("Consume", mock.Anything, suite.companyID, interviewID, "Interview scheduled").
		Return(&models.CreditTransaction{CreditsUsed: 1, ReferenceID: &interviewID}, nil).Once()
	suite.cache.On("InvalidateCompanyCache", mock.Anything, suite.companyID).Return(nil).Once()

	tx, err := suite.service.Consume(context.Background(), suite.companyID, interviewID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, tx.CreditsUsed)
}

func (suite *CreditServiceTestSuite) TestRelease_NothingToRelease() {
	interviewID := uuid.New()
	suite.repo.On("Release", mock.Anything, interviewID).Return(nil, repositories.ErrNotFound).Once()

	released, err := suite.service.Release(context.Background(), suite.companyID, interviewID)

	assert.NoError(suite.T(), err)
	assert.False(suite.T(), released)
}

func (suite *CreditServiceTestSuite) TestHasActiveUsage() {
	interviewID := uuid.New()
	suite.repo.On("ActiveUsage", mock.Anything, interviewID).Return(&models.CreditTransaction{CreditsUsed: 1}, nil).Once()

	active, err := suite.service.HasActiveUsage(context.Background(), interviewID)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), active)
}
