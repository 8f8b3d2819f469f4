package jobs

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"genzip/internal/analytics"
	"genzip/internal/repositories"

	"github.com/google/uuid"
)

type DashboardRefreshService struct {
	analyticsService *analytics.AnalyticsService
	companyRepo      repositories.CompanyRepository
	concurrency      int
}

type DashboardRefreshResult struct {
	CompaniesProcessed int
	Failed             int
	LastRefreshAt      time.Time
}

func NewDashboardRefreshService(analyticsService *analytics.AnalyticsService, companyRepo repositories.CompanyRepository) *DashboardRefreshService {
	return &DashboardRefreshService{
		analyticsService: analyticsService,
		companyRepo:      companyRepo,
		concurrency:      5,
	}
}

func (a *DashboardRefreshService) RefreshCompany(ctx context.Context, companyID uuid.UUID) error {
	data, err := a.analyticsService.RefreshDashboard(ctx, companyID)
	if err != nil {
		log.Printf("Failed to refresh dashboard for company %s: %v", companyID, err)
		return err
	}

	log.Printf("Dashboard updated for company %s: Interviews=%d, CreditsAvailable=%d, HRs=%d",
		companyID, data.TotalInterviews, data.Credits.Available, data.HRCount)
	return nil
}

// RefreshAll recalculates the dashboard of every active company, a few at a time.
func (a *DashboardRefreshService) RefreshAll(ctx context.Context) (*DashboardRefreshResult, error) {
	log.Println("Starting dashboard refresh for all companies")

	ids, err := a.companyRepo.ListActiveIDs(ctx)
	if err != nil {
		log.Printf("Failed to list companies for dashboard refresh: %v", err)
		return nil, err
	}

	semaphore := make(chan struct{}, a.concurrency)
	var (
		wg     sync.WaitGroup
		failed atomic.Int64
	)
	for _, id := range ids {
		wg.Add(1)
		go func(companyID uuid.UUID) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if err := a.RefreshCompany(ctx, companyID); err != nil {
				failed.Add(1)
			}
		}(id)
	}
	wg.Wait()

	result := &DashboardRefreshResult{
		CompaniesProcessed: len(ids),
		Failed:             int(failed.Load()),
		LastRefreshAt:      time.Now(),
	}
	log.Printf("Completed dashboard refresh for %d companies (%d failed) at %v",
		result.CompaniesProcessed, result.Failed, result.LastRefreshAt.Format("2006-01-02 15:04:05"))
	return result, nil
}
