package services

import (
	"context"
	"time"

	"genzip/internal/models"
	"genzip/internal/repositories"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
)

// Mock repositories. Wide interfaces are embedded so only the methods a test
// exercises need an implementation; calling anything else panics.

type MockInterviewRepository struct {
	mock.Mock
	repositories.InterviewRepository
}

func (m *MockInterviewRepository) Create(ctx context.Context, interview *models.Interview) error {
	args := m.Called(ctx, interview)
	return args.Error(0)
}

func (m *MockInterviewRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Interview, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Interview), args.Error(1)
}

func (m *MockInterviewRepository) Get(ctx context.Context, id uuid.UUID) (*models.Interview, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Interview), args.Error(1)
}

func (m *MockInterviewRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	args := m.Called(ctx, companyID, id)
	return args.Error(0)
}

func (m *MockInterviewRepository) FindOpen(ctx context.Context, candidateID, jobID uuid.UUID, excludeID *uuid.UUID) (*models.Interview, error) {
	args := m.Called(ctx, candidateID, jobID, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Interview), args.Error(1)
}

func (m *MockInterviewRepository) MarkPaid(ctx context.Context, id uuid.UUID) (*models.Interview, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Interview), args.Error(1)
}

func (m *MockInterviewRepository) Accept(ctx context.Context, id, agentID uuid.UUID) (*models.Interview, error) {
	args := m.Called(ctx, id, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Interview), args.Error(1)
}

func (m *MockInterviewRepository) Transfer(ctx context.Context, id, fromAgentID, toAgentID uuid.UUID) (*models.Interview, error) {
	args := m.Called(ctx, id, fromAgentID, toAgentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Interview), args.Error(1)
}

func (m *MockInterviewRepository) Cancel(ctx context.Context, companyID, id uuid.UUID) (*models.Interview, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Interview), args.Error(1)
}

func (m *MockInterviewRepository) SetLocation(ctx context.Context, id uuid.UUID, latitude, longitude float64) error {
	args := m.Called(ctx, id, latitude, longitude)
	return args.Error(0)
}

type MockJobRepository struct {
	mock.Mock
	repositories.JobRepository
}

func (m *MockJobRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Job, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func (m *MockJobRepository) Delete(ctx context.Context, companyID, id uuid.UUID, createdBy *uuid.UUID) error {
	args := m.Called(ctx, companyID, id, createdBy)
	return args.Error(0)
}

func (m *MockJobRepository) List(ctx context.Context, companyID uuid.UUID, createdBy *uuid.UUID, limit, offset int) ([]*models.Job, error) {
	args := m.Called(ctx, companyID, createdBy, limit, offset)
	return args.Get(0).([]*models.Job), args.Error(1)
}

type MockCandidateRepository struct {
	mock.Mock
	repositories.CandidateRepository
}

func (m *MockCandidateRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Candidate, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Candidate), args.Error(1)
}

func (m *MockCandidateRepository) Delete(ctx context.Context, companyID, id uuid.UUID, createdBy *uuid.UUID) error {
	args := m.Called(ctx, companyID, id, createdBy)
	return args.Error(0)
}

func (m *MockCandidateRepository) List(ctx context.Context, companyID uuid.UUID, createdBy *uuid.UUID, limit, offset int) ([]*models.Candidate, error) {
	args := m.Called(ctx, companyID, createdBy, limit, offset)
	return args.Get(0).([]*models.Candidate), args.Error(1)
}

type MockInterviewerRepository struct {
	mock.Mock
	repositories.InterviewerRepository
}

func (m *MockInterviewerRepository) GetMany(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]*models.Interviewer, error) {
	args := m.Called(ctx, companyID, ids)
	return args.Get(0).([]*models.Interviewer), args.Error(1)
}

func (m *MockInterviewerRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Interviewer, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Interviewer), args.Error(1)
}

func (m *MockInterviewerRepository) Delete(ctx context.Context, companyID, id uuid.UUID, createdBy *uuid.UUID) error {
	args := m.Called(ctx, companyID, id, createdBy)
	return args.Error(0)
}

func (m *MockInterviewerRepository) List(ctx context.Context, companyID uuid.UUID, createdBy *uuid.UUID, limit, offset int) ([]*models.Interviewer, error) {
	args := m.Called(ctx, companyID, createdBy, limit, offset)
	return args.Get(0).([]*models.Interviewer), args.Error(1)
}

type MockCompanyRepository struct {
	mock.Mock
	repositories.CompanyRepository
}

func (m *MockCompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *MockCompanyRepository) CreateWithAdmin(ctx context.Context, company *models.Company, admin *models.User) error {
	args := m.Called(ctx, company, admin)
	return args.Error(0)
}

type MockHRRepository struct {
	mock.Mock
	repositories.HRRepository
}

func (m *MockHRRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.HR, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HR), args.Error(1)
}

func (m *MockHRRepository) CreateWithUser(ctx context.Context, user *models.User, hr *models.HR) error {
	args := m.Called(ctx, user, hr)
	return args.Error(0)
}

func (m *MockHRRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.HR, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HR), args.Error(1)
}

type MockFieldAgentRepository struct {
	mock.Mock
	repositories.FieldAgentRepository
}

func (m *MockFieldAgentRepository) GetByCode(ctx context.Context, code string) (*models.FieldAgent, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FieldAgent), args.Error(1)
}

func (m *MockFieldAgentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.FieldAgent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FieldAgent), args.Error(1)
}

func (m *MockFieldAgentRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockFieldAgentRepository) CreateWithUser(ctx context.Context, user *models.User, agent *models.FieldAgent) error {
	args := m.Called(ctx, user, agent)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
	repositories.UserRepository
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByMobile(ctx context.Context, mobile string) (*models.User, error) {
	args := m.Called(ctx, mobile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, firstLogin bool) error {
	args := m.Called(ctx, id, passwordHash, firstLogin)
	return args.Error(0)
}

type MockCreditRepository struct {
	mock.Mock
}

func (m *MockCreditRepository) Grant(ctx context.Context, req models.GrantRequest) (*models.CreditTransaction, bool, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.CreditTransaction), args.Bool(1), args.Error(2)
}

func (m *MockCreditRepository) Summary(ctx context.Context, companyID uuid.UUID) (*models.CreditSummary, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CreditSummary), args.Error(1)
}

func (m *MockCreditRepository) Consume(ctx context.Context, companyID, interviewID uuid.UUID, reason string) (*models.CreditTransaction, error) {
	args := m.Called(ctx, companyID, interviewID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CreditTransaction), args.Error(1)
}

func (m *MockCreditRepository) Release(ctx context.Context, interviewID uuid.UUID) (*models.CreditTransaction, error) {
	args := m.Called(ctx, interviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CreditTransaction), args.Error(1)
}

func (m *MockCreditRepository) ActiveUsage(ctx context.Context, interviewID uuid.UUID) (*models.CreditTransaction, error) {
	args := m.Called(ctx, interviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CreditTransaction), args.Error(1)
}

func (m *MockCreditRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.CreditTransaction, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CreditTransaction), args.Error(1)
}

func (m *MockCreditRepository) History(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.CreditTransaction, error) {
	args := m.Called(ctx, companyID, limit, offset)
	return args.Get(0).([]*models.CreditTransaction), args.Error(1)
}

// Mock services

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetCreditSummary(ctx context.Context, companyID uuid.UUID) (*models.CreditSummary, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CreditSummary), args.Error(1)
}

func (m *MockCacheService) SetCreditSummary(ctx context.Context, companyID uuid.UUID, summary *models.CreditSummary, ttl time.Duration) error {
	args := m.Called(ctx, companyID, summary, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteCreditSummary(ctx context.Context, companyID uuid.UUID) error {
	args := m.Called(ctx, companyID)
	return args.Error(0)
}

func (m *MockCacheService) GetDashboard(ctx context.Context, companyID uuid.UUID) (*models.Dashboard, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dashboard), args.Error(1)
}

func (m *MockCacheService) SetDashboard(ctx context.Context, companyID uuid.UUID, dashboard *models.Dashboard, ttl time.Duration) error {
	args := m.Called(ctx, companyID, dashboard, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateCompanyCache(ctx context.Context, companyID uuid.UUID) error {
	args := m.Called(ctx, companyID)
	return args.Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockAuthService struct {
	mock.Mock
	AuthService
}

func (m *MockAuthService) GenerateTokens(ctx context.Context, user *models.User) (*models.TokenResponse, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

func (m *MockAuthService) HashPassword(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) CheckPassword(hash, password string) bool {
	args := m.Called(hash, password)
	return args.Bool(0)
}

type MockStorageService struct {
	mock.Mock
	StorageService
}

func (m *MockStorageService) UploadPublic(ctx context.Context, objectName string, upload *Upload) (string, error) {
	args := m.Called(ctx, objectName, upload)
	return args.String(0), args.Error(1)
}

func (m *MockStorageService) UploadPrivate(ctx context.Context, objectName string, upload *Upload) (string, error) {
	args := m.Called(ctx, objectName, upload)
	return args.String(0), args.Error(1)
}

type MockCreditService struct {
	mock.Mock
}

func (m *MockCreditService) Summary(ctx context.Context, companyID uuid.UUID) (*models.CreditSummary, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CreditSummary), args.Error(1)
}

func (m *MockCreditService) Grant(ctx context.Context, req models.GrantRequest) (*models.CreditTransaction, bool, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.CreditTransaction), args.Bool(1), args.Error(2)
}

func (m *MockCreditService) Consume(ctx context.Context, companyID, interviewID uuid.UUID) (*models.CreditTransaction, error) {
	args := m.Called(ctx, companyID, interviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CreditTransaction), args.Error(1)
}

func (m *MockCreditService) Release(ctx context.Context, companyID, interviewID uuid.UUID) (bool, error) {
	args := m.Called(ctx, companyID, interviewID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCreditService) HasActiveUsage(ctx context.Context, interviewID uuid.UUID) (bool, error) {
	args := m.Called(ctx, interviewID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCreditService) GetTransaction(ctx context.Context, companyID, id uuid.UUID) (*models.CreditTransaction, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CreditTransaction), args.Error(1)
}

func (m *MockCreditService) History(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.CreditTransaction, error) {
	args := m.Called(ctx, companyID, limit, offset)
	return args.Get(0).([]*models.CreditTransaction), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) InterviewScheduled(ctx context.Context, mail InterviewMail) error {
	args := m.Called(ctx, mail)
	return args.Error(0)
}

func (m *MockNotificationService) HRWelcome(ctx context.Context, to, name, companyName, tempPassword string) error {
	args := m.Called(ctx, to, name, companyName, tempPassword)
	return args.Error(0)
}

func (m *MockNotificationService) AgentWelcome(ctx context.Context, to, name, agentCode, city string) error {
	args := m.Called(ctx, to, name, agentCode, city)
	return args.Error(0)
}

func (m *MockNotificationService) PaymentReceived(ctx context.Context, to, description string, amount float64, credits int, reference string) error {
	args := m.Called(ctx, to, description, amount, credits, reference)
	return args.Error(0)
}

func (m *MockNotificationService) LocationLink(interviewID string) string {
	args := m.Called(interviewID)
	return args.String(0)
}

func (m *MockNotificationService) WhatsAppLink(phone, message string) string {
	args := m.Called(phone, message)
	return args.String(0)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockPaymentGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CheckoutSession), args.Error(1)
}

func (m *MockPaymentGateway) VerifyPayment(ctx context.Context, proof PaymentProof) (*VerifiedPayment, error) {
	args := m.Called(ctx, proof)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*VerifiedPayment), args.Error(1)
}

func (m *MockPaymentGateway) ParseWebhook(ctx context.Context, payload []byte, signature string) (*VerifiedPayment, error) {
	args := m.Called(ctx, payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*VerifiedPayment), args.Error(1)
}

type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) Plans() []models.Plan {
	args := m.Called()
	return args.Get(0).([]models.Plan)
}

func (m *MockSubscriptionService) Plan(name string) (models.Plan, error) {
	args := m.Called(name)
	return args.Get(0).(models.Plan), args.Error(1)
}

func (m *MockSubscriptionService) Active(ctx context.Context, companyID uuid.UUID) (*models.Subscription, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Subscription, error) {
	args := m.Called(ctx, companyID, limit, offset)
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionService) Activate(ctx context.Context, companyID uuid.UUID, plan models.Plan, paid *VerifiedPayment) (*models.Subscription, bool, error) {
	args := m.Called(ctx, companyID, plan, paid)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Subscription), args.Bool(1), args.Error(2)
}

func (m *MockSubscriptionService) ExpireEnded(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockTaskEnqueuer struct {
	mock.Mock
}

func (m *MockTaskEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}
