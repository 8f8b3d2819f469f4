package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"genzip/internal/config"
	"genzip/internal/models"
	"genzip/internal/repositories"

	"github.com/google/uuid"
)

// SubscriptionService handles subscription-related business logic
type SubscriptionService interface {
	Plans() []models.Plan
	Plan(name string) (models.Plan, error)
	Active(ctx context.Context, companyID uuid.UUID) (*models.Subscription, error)
	List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Subscription, error)
	// Activate records a paid plan purchase. A company holds at most one
	// active subscription; the bool reports whether a new one was created.
	Activate(ctx context.Context, companyID uuid.UUID, plan models.Plan, paid *VerifiedPayment) (*models.Subscription, bool, error)
	ExpireEnded(ctx context.Context) (int64, error)
}

type subscriptionService struct {
	subscriptionRepo repositories.SubscriptionRepository
	catalog          *config.Catalog
}

func NewSubscriptionService(subscriptionRepo repositories.SubscriptionRepository, catalog *config.Catalog) SubscriptionService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		catalog:          catalog,
	}
}

func (s *subscriptionService) Plans() []models.Plan {
	plans := make([]models.Plan, len(s.catalog.Plans))
	copy(plans, s.catalog.Plans)
	return plans
}

func (s *subscriptionService) Plan(name string) (models.Plan, error) {
	plan, ok := s.catalog.Plan(name)
	if !ok {
		return models.Plan{}, ErrInvalidPlan
	}
	return plan, nil
}

func (s *subscriptionService) Active(ctx context.Context, companyID uuid.UUID) (*models.Subscription, error) {
	return s.subscriptionRepo.GetActive(ctx, companyID)
}

func (s *subscriptionService) List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Subscription, error) {
	return s.subscriptionRepo.List(ctx, companyID, limit, offset)
}

func (s *subscriptionService) Activate(ctx context.Context, companyID uuid.UUID, plan models.Plan, paid *VerifiedPayment) (*models.Subscription, bool, error) {
	if existing, err := s.subscriptionRepo.GetByGatewayID(ctx, paid.SessionID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, false, err
	}

	if active, err := s.subscriptionRepo.GetActive(ctx, companyID); err == nil {
		log.Printf("Company %s already has active %s subscription; %s purchase tops up credits only", companyID, active.PlanName, plan.Name)
		return active, false, nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, false, err
	}

	now := time.Now()
	end := now.AddDate(0, 0, s.catalog.SubscriptionDays)
	sessionID := paid.SessionID
	sub := &models.Subscription{
		ID:                    uuid.New(),
		CompanyID:             companyID,
		PlanName:              plan.Name,
		TotalPaid:             paid.Amount,
		CreditsAllocated:      plan.Credits,
		BonusCredits:          plan.Bonus,
		FreeKM:                plan.FreeKM,
		Status:                models.SubscriptionActive,
		GatewaySubscriptionID: &sessionID,
		StartDate:             now,
		EndDate:               &end,
	}
	if err := s.subscriptionRepo.Create(ctx, sub); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			active, getErr := s.subscriptionRepo.GetActive(ctx, companyID)
			if getErr != nil {
				return nil, false, getErr
			}
			return active, false, nil
		}
		return nil, false, fmt.Errorf("failed to create subscription: %w", err)
	}
	return sub, true, nil
}

func (s *subscriptionService) ExpireEnded(ctx context.Context) (int64, error) {
	return s.subscriptionRepo.ExpireEnded(ctx, time.Now())
}
