package services

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"genzip/internal/models"
	"genzip/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testMobile = "9876543210"

type AgentServiceTestSuite struct {
	suite.Suite
	users    *MockUserRepository
	agents   *MockFieldAgentRepository
	auth     *MockAuthService
	cache    *MockCacheService
	storage  *MockStorageService
	notifier *MockNotificationService
	service  AgentService
}

func (suite *AgentServiceTestSuite) SetupTest() {
	suite.users = &MockUserRepository{}
	suite.agents = &MockFieldAgentRepository{}
	suite.auth = &MockAuthService{}
	suite.cache = &MockCacheService{}
	suite.storage = &MockStorageService{}
	suite.notifier = &MockNotificationService{}
	suite.service = NewAgentService(suite.users, suite.agents, nil, suite.auth, suite.cache,
		suite.storage, suite.notifier, "", 5*time.Minute)
}

func (suite *AgentServiceTestSuite) TearDownTest() {
	suite.users.AssertExpectations(suite.T())
	suite.agents.AssertExpectations(suite.T())
	suite.auth.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
	suite.storage.AssertExpectations(suite.T())
	suite.notifier.AssertExpectations(suite.T())
}

func TestAgentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AgentServiceTestSuite))
}

func (suite *AgentServiceTestSuite) expectValidOTP(code string) {
	suite.cache.On("IsRateLimited", mock.Anything, "otp-verify:"+testMobile, otpAttemptLimit, 5*time.Minute).Return(false, nil).Once()
	suite.cache.On("GetString", mock.Anything, "genzip:otp:"+testMobile).Return(code, nil).Once()
	suite.cache.On("Delete", mock.Anything, "genzip:otp:"+testMobile).Return(nil).Once()
}

func (suite *AgentServiceTestSuite) TestRequestOTP_GeneratesRandomCode() {
	sixDigits := regexp.MustCompile(`^[0-9]{6}$`)
	var issued []string

	suite.cache.On("IsRateLimited", mock.Anything, "otp-request:"+testMobile, otpRequestLimit, 5*time.Minute).Return(false, nil).Twice()
	suite.cache.On("SetString", mock.Anything, "genzip:otp:"+testMobile, mock.MatchedBy(func(code string) bool {
		return sixDigits.MatchString(code)
	}), 5*time.Minute).Run(func(args mock.Arguments) {
		issued = append(issued, args.String(2))
	}).Return(nil).Twice()

	require.NoError(suite.T(), suite.service.RequestOTP(context.Background(), testMobile))
	require.NoError(suite.T(), suite.service.RequestOTP(context.Background(), " "+testMobile+" "))

	require.Len(suite.T(), issued, 2)
}

func (suite *AgentServiceTestSuite) TestRequestOTP_DevCodeWhenConfigured() {
	service := NewAgentService(suite.users, suite.agents, nil, suite.auth, suite.cache,
		suite.storage, suite.notifier, "424242", 5*time.Minute)
	suite.cache.On("IsRateLimited", mock.Anything, "otp-request:"+testMobile, otpRequestLimit, 5*time.Minute).Return(false, nil).Once()
	suite.cache.On("SetString", mock.Anything, "genzip:otp:"+testMobile, "424242", 5*time.Minute).Return(nil).Once()

	assert.NoError(suite.T(), service.RequestOTP(context.Background(), testMobile))
}

func (suite *AgentServiceTestSuite) TestRequestOTP_RateLimited() {
	suite.cache.On("IsRateLimited", mock.Anything, "otp-request:"+testMobile, otpRequestLimit, 5*time.Minute).Return(true, nil).Once()

	err := suite.service.RequestOTP(context.Background(), testMobile)

	assert.ErrorIs(suite.T(), err, ErrTooManyAttempts)
	suite.cache.AssertNotCalled(suite.T(), "SetString", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AgentServiceTestSuite) TestRequestOTP_InvalidMobile() {
	err := suite.service.RequestOTP(context.Background(), "12345")
	assert.Error(suite.T(), err)
}

func (suite *AgentServiceTestSuite) signupRequest() *AgentSignupRequest {
	email := "Ravi@Agents.test"
	return &AgentSignupRequest{
		FirstName: "Ravi",
		LastName:  "Kumar",
		Email:     &email,
		Mobile:    testMobile,
		City:      "Bengaluru",
		Password:  "Str0ng!Pass",
		OTP:       "482913",
	}
}

func (suite *AgentServiceTestSuite) TestSignup_Success() {
	photo := &Upload{Reader: strings.NewReader("jpeg"), Size: 4, ContentType: "image/jpeg", Filename: "me.JPG"}
	govID := &Upload{Reader: strings.NewReader("pdf"), Size: 3, ContentType: "application/pdf", Filename: "aadhaar.pdf"}
	tokens := &models.TokenResponse{AccessToken: "access", Role: models.RoleAgent}
	var created *models.FieldAgent

	suite.users.On("GetByMobile", mock.Anything, testMobile).Return(nil, repositories.ErrNotFound).Once()
	suite.expectValidOTP("482913")
	suite.agents.On("CodeExists", mock.Anything, mock.MatchedBy(func(code string) bool {
		return regexp.MustCompile(`^EMP-BEN-[0-9]{6}$`).MatchString(code)
	})).Return(false, nil).Once()
	suite.auth.On("HashPassword", "Str0ng!Pass").Return("hashed", nil).Once()
	suite.storage.On("UploadPublic", mock.Anything, mock.MatchedBy(func(name string) bool {
		return strings.HasPrefix(name, "agents/") && strings.HasSuffix(name, "/photo.jpg")
	}), photo).Return("https://cdn.genzip.test/agents/photo.jpg", nil).Once()
	suite.storage.On("UploadPrivate", mock.Anything, mock.MatchedBy(func(name string) bool {
		return strings.HasSuffix(name, "/gov-id.pdf")
	}), govID).Return("agents/x/gov-id.pdf", nil).Once()
	suite.agents.On("CreateWithUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Role == models.RoleAgent && u.PasswordHash == "hashed" && *u.Mobile == testMobile && *u.Email == "ravi@agents.test"
	}), mock.AnythingOfType("*models.FieldAgent")).Run(func(args mock.Arguments) {
		created = args.Get(2).(*models.FieldAgent)
	}).Return(nil).Once()
	suite.notifier.On("AgentWelcome", mock.Anything, "ravi@agents.test", "Ravi", mock.Anything, "Bengaluru").Return(nil).Once()
	suite.auth.On("GenerateTokens", mock.Anything, mock.AnythingOfType("*models.User")).Return(tokens, nil).Once()
	stored := &models.FieldAgent{ID: uuid.New(), AgentCode: "EMP-BEN-000001"}
	suite.agents.On("GetByID", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(stored, nil).Once()

	agent, gotTokens, err := suite.service.Signup(context.Background(), suite.signupRequest(), photo, govID)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), tokens, gotTokens)
	assert.Equal(suite.T(), stored, agent)
	require.NotNil(suite.T(), created)
	assert.Regexp(suite.T(), `^EMP-BEN-[0-9]{6}$`, created.AgentCode)
	assert.Equal(suite.T(), "Bengaluru", created.City)
	assert.Equal(suite.T(), "https://cdn.genzip.test/agents/photo.jpg", *created.PhotoURL)
	assert.Equal(suite.T(), "agents/x/gov-id.pdf", *created.GovIDURL)
}

func (suite *AgentServiceTestSuite) TestSignup_WrongOTP() {
	photo := &Upload{Filename: "me.jpg"}
	govID := &Upload{Filename: "id.pdf"}

	suite.users.On("GetByMobile", mock.Anything, testMobile).Return(nil, repositories.ErrNotFound).Once()
	suite.cache.On("IsRateLimited", mock.Anything, "otp-verify:"+testMobile, otpAttemptLimit, 5*time.Minute).Return(false, nil).Once()
	suite.cache.On("GetString", mock.Anything, "genzip:otp:"+testMobile).Return("111111", nil).Once()

	_, _, err := suite.service.Signup(context.Background(), suite.signupRequest(), photo, govID)

	assert.ErrorIs(suite.T(), err, ErrInvalidOTP)
	suite.agents.AssertNotCalled(suite.T(), "CreateWithUser", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AgentServiceTestSuite) TestSignup_MobileTaken() {
	suite.users.On("GetByMobile", mock.Anything, testMobile).Return(&models.User{ID: uuid.New()}, nil).Once()

	_, _, err := suite.service.Signup(context.Background(), suite.signupRequest(), &Upload{}, &Upload{})

	assert.ErrorIs(suite.T(), err, ErrMobileTaken)
}

func (suite *AgentServiceTestSuite) TestSignup_RequiresUploads() {
	_, _, err := suite.service.Signup(context.Background(), suite.signupRequest(), nil, nil)
	assert.Error(suite.T(), err)
}

func (suite *AgentServiceTestSuite) TestResetPassword_Success() {
	user := &models.User{ID: uuid.New(), Role: models.RoleAgent, IsActive: true}
	suite.users.On("GetByMobile", mock.Anything, testMobile).Return(user, nil).Once()
	suite.expectValidOTP("735001")
	suite.auth.On("HashPassword", "N3w!Passw0rd").Return("new-hash", nil).Once()
	suite.users.On("UpdatePassword", mock.Anything, user.ID, "new-hash", false).Return(nil).Once()

	err := suite.service.ResetPassword(context.Background(), &AgentPasswordResetRequest{
		Mobile: testMobile, OTP: "735001", NewPassword: "N3w!Passw0rd",
	})

	assert.NoError(suite.T(), err)
}

func (suite *AgentServiceTestSuite) TestResetPassword_NotAnAgent() {
	suite.users.On("GetByMobile", mock.Anything, testMobile).Return(&models.User{ID: uuid.New(), Role: models.RoleAdmin}, nil).Once()

	err := suite.service.ResetPassword(context.Background(), &AgentPasswordResetRequest{
		Mobile: testMobile, OTP: "735001", NewPassword: "N3w!Passw0rd",
	})

	assert.ErrorIs(suite.T(), err, ErrInvalidOTP)
}

func (suite *AgentServiceTestSuite) TestResetPassword_TooManyAttempts() {
	suite.users.On("GetByMobile", mock.Anything, testMobile).Return(&models.User{ID: uuid.New(), Role: models.RoleAgent}, nil).Once()
	suite.cache.On("IsRateLimited", mock.Anything, "otp-verify:"+testMobile, otpAttemptLimit, 5*time.Minute).Return(true, nil).Once()

	err := suite.service.ResetPassword(context.Background(), &AgentPasswordResetRequest{
		Mobile: testMobile, OTP: "000000", NewPassword: "N3w!Passw0rd",
	})

	assert.ErrorIs(suite.T(), err, ErrTooManyAttempts)
	suite.users.AssertNotCalled(suite.T(), "UpdatePassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
