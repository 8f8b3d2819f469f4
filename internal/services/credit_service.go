package services

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

const creditSummaryTTL = 5 * time.Minute

// CreditService wraps the credit ledger and keeps the cached balance in sync.
type CreditService interface {
	Summary(ctx context.Context, companyID uuid.UUID) (*models.CreditSummary, error)
	Grant(ctx context.Context, req models.GrantRequest) (*models.CreditTransaction, bool, error)
	Consume(ctx context.Context, companyID, interviewID uuid.UUID) (*models.CreditTransaction, error)
	Release(ctx context.Context, companyID, interviewID uuid.UUID) (bool, error)
	HasActiveUsage(ctx context.Context, interviewID uuid.UUID) (bool, error)
	GetTransaction(ctx context.Context, companyID, id uuid.UUID) (*models.CreditTransaction, error)
	History(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.CreditTransaction, error)
}

type creditService struct {
	repo     repositories.CreditRepository
	cacheSvc caching.CacheService
}

func NewCreditService(repo repositories.CreditRepository, cacheSvc caching.CacheService) CreditService {
	return &creditService{repo: repo, cacheSvc: cacheSvc}
}

func (s *creditService) Summary(ctx context.Context, companyID uuid.UUID) (*models.CreditSummary, error) {
	if cached, err := s.cacheSvc.GetCreditSummary(ctx, companyID); err != nil {
		log.Printf("Failed to read cached credits for company %s: %v", companyID, err)
	} else if cached != nil {
		return cached, nil
	}

	summary, err := s.repo.Summary(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute credit balance: %w", err)
	}

	if err := s.cacheSvc.SetCreditSummary(ctx, companyID, summary, creditSummaryTTL); err != nil {
		log.Printf("Failed to cache credits for company %s: %v", companyID, err)
	}
	return summary, nil
}

// Grant adds credits. The bool reports whether a new row was written; a
// repeated idempotency key returns false and no error.
func (s *creditService) Grant(ctx context.Context, req models.GrantRequest) (*models.CreditTransaction, bool, error) {
	if req.Credits <= 0 {
		return nil, false, fmt.Errorf("credits must be positive, got %d", req.Credits)
	}
	tx, created, err := s.repo.Grant(ctx, req)
	if err != nil {
		return nil, false, fmt.Errorf("failed to grant credits: %w", err)
	}
	if created {
		s.invalidate(ctx, req.CompanyID)
	}
	return tx, created, nil
}

func (s *creditService) Consume(ctx context.Context, companyID, interviewID uuid.UUID) (*models.CreditTransaction, error) {
	tx, err := s.repo.Consume(ctx, companyID, interviewID, "Interview scheduled")
	if err != nil {
		if errors.Is(err, repositories.ErrInsufficientCredits) || errors.Is(err, repositories.ErrCreditAlreadyUsed) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to consume credit: %w", err)
	}
	s.invalidate(ctx, companyID)
	return tx, nil
}

// Release returns the credit consumed for an interview. It reports false
// when the interview had no active usage.
func (s *creditService) Release(ctx context.Context, companyID, interviewID uuid.UUID) (bool, error) {
	if _, err := s.repo.Release(ctx, interviewID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to release credit: %w", err)
	}
	s.invalidate(ctx, companyID)
	return true, nil
}

func (s *creditService) HasActiveUsage(ctx context.Context, interviewID uuid.UUID) (bool, error) {
	_, err := s.repo.ActiveUsage(ctx, interviewID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *creditService) GetTransaction(ctx context.Context, companyID, id uuid.UUID) (*models.CreditTransaction, error) {
	return s.repo.GetByID(ctx, companyID, id)
}

func (s *creditService) History(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.CreditTransaction, error) {
	return s.repo.History(ctx, companyID, limit, offset)
}

func (s *creditService) invalidate(ctx context.Context, companyID uuid.UUID) {
	if err := s.cacheSvc.InvalidateCompanyCache(ctx, companyID); err != nil {
		log.Printf("Failed to invalidate cache for company %s: %v", companyID, err)
	}
}
