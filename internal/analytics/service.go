package analytics

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"genzip/internal/caching"
	"genzip/internal/models"
	"genzip/internal/repositories"

	"github.com/google/uuid"
)

const dashboardTTL = 10 * time.Minute

// AnalyticsService calculates and caches the admin dashboard of a company.
type AnalyticsService struct {
	interviewRepo    repositories.InterviewRepository
	creditRepo       repositories.CreditRepository
	subscriptionRepo repositories.SubscriptionRepository
	hrRepo           repositories.HRRepository
	cacheService     caching.CacheService
}

func NewAnalyticsService(interviewRepo repositories.InterviewRepository, creditRepo repositories.CreditRepository,
	subscriptionRepo repositories.SubscriptionRepository, hrRepo repositories.HRRepository, cacheService caching.CacheService) *AnalyticsService {
	return &AnalyticsService{
		interviewRepo:    interviewRepo,
		creditRepo:       creditRepo,
		subscriptionRepo: subscriptionRepo,
		hrRepo:           hrRepo,
		cacheService:     cacheService,
	}
}

// GetDashboard returns the cached dashboard, calculating it on a miss.
func (a *AnalyticsService) GetDashboard(ctx context.Context, companyID uuid.UUID) (*models.Dashboard, error) {
	if cached, err := a.cacheService.GetDashboard(ctx, companyID); err != nil {
		log.Printf("Failed to read cached dashboard for company %s: %v", companyID, err)
	} else if cached != nil {
		return cached, nil
	}
	return a.RefreshDashboard(ctx, companyID)
}

// RefreshDashboard recalculates the dashboard and stores it in the cache.
func (a *AnalyticsService) RefreshDashboard(ctx context.Context, companyID uuid.UUID) (*models.Dashboard, error) {
	dashboard, err := a.CalculateDashboard(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if err := a.cacheService.SetDashboard(ctx, companyID, dashboard, dashboardTTL); err != nil {
		log.Printf("Failed to cache dashboard for company %s: %v", companyID, err)
	}
	return dashboard, nil
}

func (a *AnalyticsService) CalculateDashboard(ctx context.Context, companyID uuid.UUID) (*models.Dashboard, error) {
	data := &models.Dashboard{
		CompanyID:       companyID,
		ByStatus:        make(map[models.InterviewStatus]int, len(models.AllInterviewStatuses)),
		ByPaymentStatus: map[models.PaymentStatus]int{models.PaymentPending: 0, models.PaymentCompleted: 0},
		LastUpdated:     time.Now(),
	}
	for _, status := range models.AllInterviewStatuses {
		data.ByStatus[status] = 0
	}

	counts, err := a.interviewRepo.CountByStatus(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to count interviews: %w", err)
	}
	for _, c := range counts {
		data.ByStatus[c.Status] += c.Count
		data.ByPaymentStatus[c.PaymentStatus] += c.Count
		data.TotalInterviews += c.Count
	}

	credits, err := a.creditRepo.Summary(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute credit balance: %w", err)
	}
	data.Credits = *credits

	sub, err := a.subscriptionRepo.GetActive(ctx, companyID)
	switch {
	case err == nil:
		data.ActivePlan = &sub.PlanName
	case !errors.Is(err, repositories.ErrNotFound):
		log.Printf("Failed to load active subscription for company %s: %v", companyID, err)
	}

	hrs, err := a.hrRepo.List(ctx, companyID, 10000, 0)
	if err != nil {
		log.Printf("Failed to count HRs for company %s: %v", companyID, err)
	} else {
		data.HRCount = len(hrs)
	}

	return data, nil
}

// InvalidateDashboard drops the cached dashboard and credit balance.
func (a *AnalyticsService) InvalidateDashboard(ctx context.Context, companyID uuid.UUID) error {
	log.Printf("Invalidating dashboard cache for company %s", companyID)
	return a.cacheService.InvalidateCompanyCache(ctx, companyID)
}
