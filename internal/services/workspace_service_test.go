package services

import (
	"context"
	"testing"

	"genzip/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// Jobs, candidates and interviewers share the same visibility rule: admins
// see the whole company, HRs only the records they created.
type WorkspaceScopeTestSuite struct {
	suite.Suite
	jobs         *MockJobRepository
	candidates   *MockCandidateRepository
	interviewers *MockInterviewerRepository
	admin        Actor
	hr           Actor
}

func (suite *WorkspaceScopeTestSuite) SetupTest() {
	suite.jobs = &MockJobRepository{}
	suite.candidates = &MockCandidateRepository{}
	suite.interviewers = &MockInterviewerRepository{}
	companyID := uuid.New()
	suite.admin = Actor{UserID: uuid.New(), CompanyID: companyID, Role: models.RoleAdmin}
	suite.hr = Actor{UserID: uuid.New(), CompanyID: companyID, Role: models.RoleHR}
}

func (suite *WorkspaceScopeTestSuite) TearDownTest() {
	suite.jobs.AssertExpectations(suite.T())
	suite.candidates.AssertExpectations(suite.T())
	suite.interviewers.AssertExpectations(suite.T())
}

func TestWorkspaceScopeTestSuite(t *testing.T) {
	suite.Run(t, new(WorkspaceScopeTestSuite))
}

func (suite *WorkspaceScopeTestSuite) createdBy(id uuid.UUID) interface{} {
	return mock.MatchedBy(func(scope *uuid.UUID) bool {
		return scope != nil && *scope == id
	})
}

func (suite *WorkspaceScopeTestSuite) TestJobList_HRScopedToOwnRecords() {
	service := NewJobService(suite.jobs)
	suite.jobs.On("List", mock.Anything, suite.hr.CompanyID, suite.createdBy(suite.hr.UserID), 20, 0).
		Return([]*models.Job{{Title: "Backend Engineer"}}, nil).Once()
	suite.jobs.On("List", mock.Anything, suite.admin.CompanyID, (*uuid.UUID)(nil), 20, 0).
		Return([]*models.Job{{}, {}}, nil).Once()

	own, err := service.List(context.Background(), suite.hr, 20, 0)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), own, 1)

	all, err := service.List(context.Background(), suite.admin, 20, 0)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), all, 2)
}

func (suite *WorkspaceScopeTestSuite) TestJobGetByID_HiddenFromOtherHR() {
	service := NewJobService(suite.jobs)
	job := &models.Job{ID: uuid.New(), CompanyID: suite.hr.CompanyID, CreatedBy: suite.admin.UserID}
	suite.jobs.On("GetByID", mock.Anything, suite.hr.CompanyID, job.ID).Return(job, nil).Twice()

	_, err := service.GetByID(context.Background(), suite.hr, job.ID)
	assert.ErrorIs(suite.T(), err, ErrNotFound)

	got, err := service.GetByID(context.Background(), suite.admin, job.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), job, got)
}

func (suite *WorkspaceScopeTestSuite) TestJobDelete_PassesScope() {
	service := NewJobService(suite.jobs)
	id := uuid.New()
	suite.jobs.On("Delete", mock.Anything, suite.hr.CompanyID, id, suite.createdBy(suite.hr.UserID)).Return(nil).Once()

	assert.NoError(suite.T(), service.Delete(context.Background(), suite.hr, id))
}

func (suite *WorkspaceScopeTestSuite) TestCandidateList_HRScopedToOwnRecords() {
	service := NewCandidateService(suite.candidates)
	suite.candidates.On("List", mock.Anything, suite.hr.CompanyID, suite.createdBy(suite.hr.UserID), 50, 10).
		Return([]*models.Candidate{}, nil).Once()

	_, err := service.List(context.Background(), suite.hr, 50, 10)
	assert.NoError(suite.T(), err)
}

func (suite *WorkspaceScopeTestSuite) TestCandidateGetByID_HiddenFromOtherHR() {
	service := NewCandidateService(suite.candidates)
	candidate := &models.Candidate{ID: uuid.New(), CompanyID: suite.hr.CompanyID, CreatedBy: uuid.New()}
	suite.candidates.On("GetByID", mock.Anything, suite.hr.CompanyID, candidate.ID).Return(candidate, nil).Once()

	_, err := service.GetByID(context.Background(), suite.hr, candidate.ID)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *WorkspaceScopeTestSuite) TestCandidateDelete_AdminUnscoped() {
	service := NewCandidateService(suite.candidates)
	id := uuid.New()
	suite.candidates.On("Delete", mock.Anything, suite.admin.CompanyID, id, (*uuid.UUID)(nil)).Return(nil).Once()

	assert.NoError(suite.T(), service.Delete(context.Background(), suite.admin, id))
}

func (suite *WorkspaceScopeTestSuite) TestInterviewerList_HRScopedToOwnRecords() {
	service := NewInterviewerService(suite.interviewers, suite.jobs)
	suite.interviewers.On("List", mock.Anything, suite.hr.CompanyID, suite.createdBy(suite.hr.UserID), 20, 0).
		Return([]*models.Interviewer{{}}, nil).Once()

	got, err := service.List(context.Background(), suite.hr, 20, 0)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), got, 1)
}

func (suite *WorkspaceScopeTestSuite) TestInterviewerGetByID_OwnRecordVisible() {
	service := NewInterviewerService(suite.interviewers, suite.jobs)
	interviewer := &models.Interviewer{ID: uuid.New(), CompanyID: suite.hr.CompanyID, CreatedBy: suite.hr.UserID}
	suite.interviewers.On("GetByID", mock.Anything, suite.hr.CompanyID, interviewer.ID).Return(interviewer, nil).Once()

	got, err := service.GetByID(context.Background(), suite.hr, interviewer.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), interviewer, got)
}

func (suite *WorkspaceScopeTestSuite) TestInterviewerDelete_PassesScope() {
	service := NewInterviewerService(suite.interviewers, suite.jobs)
	id := uuid.New()
	suite.interviewers.On("Delete", mock.Anything, suite.hr.CompanyID, id, suite.createdBy(suite.hr.UserID)).Return(nil).Once()

	assert.NoError(suite.T(), service.Delete(context.Background(), suite.hr, id))
}
