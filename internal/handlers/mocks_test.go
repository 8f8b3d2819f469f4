package handlers

import (
	"context"
	"time"

	"genzip/internal/caching"
	"genzip/internal/models"
	"genzip/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockPaymentService struct {
	mock.Mock
	services.PaymentService
}

func (m *MockPaymentService) CreateCheckoutSession(ctx context.Context, actor services.Actor, req *services.CheckoutSessionRequest) (*services.CheckoutSession, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CheckoutSession), args.Error(1)
}

func (m *MockPaymentService) CreateSubscriptionSession(ctx context.Context, actor services.Actor, req *services.SubscriptionSessionRequest) (*services.CheckoutSession, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CheckoutSession), args.Error(1)
}

func (m *MockPaymentService) Confirm(ctx context.Context, actor services.Actor, req *services.ConfirmPaymentRequest) (*services.PaymentConfirmation, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PaymentConfirmation), args.Error(1)
}

func (m *MockPaymentService) HandleWebhook(ctx context.Context, provider string, payload []byte, signature string) error {
	args := m.Called(ctx, provider, payload, signature)
	return args.Error(0)
}

type MockInterviewService struct {
	mock.Mock
	services.InterviewService
}

func (m *MockInterviewService) Schedule(ctx context.Context, actor services.Actor, req *services.ScheduleRequest) (*services.ScheduleResult, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ScheduleResult), args.Error(1)
}

func (m *MockInterviewService) Delete(ctx context.Context, actor services.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockInterviewService) Accept(ctx context.Context, agent *models.FieldAgent, id uuid.UUID) (*models.Interview, error) {
	args := m.Called(ctx, agent, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Interview), args.Error(1)
}

func (m *MockInterviewService) SetLocation(ctx context.Context, id uuid.UUID, latitude, longitude float64) error {
	args := m.Called(ctx, id, latitude, longitude)
	return args.Error(0)
}

type MockCacheService struct {
	mock.Mock
	caching.CacheService
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
	services.AuthService
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

func (m *MockAuthService) RevokeToken(ctx context.Context, token string, tokenType *string) error {
	args := m.Called(ctx, token, tokenType)
	return args.Error(0)
}

type MockCreditService struct {
	mock.Mock
	services.CreditService
}

func (m *MockCreditService) GetTransaction(ctx context.Context, companyID, id uuid.UUID) (*models.CreditTransaction, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CreditTransaction), args.Error(1)
}

type MockAccountService struct {
	mock.Mock
	services.AccountService
}

func (m *MockAccountService) GetCompany(ctx context.Context, actor services.Actor) (*models.Company, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}
