package repositories

import (
	"context"
	"time"

	"genzip/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *models.Subscription) error
	GetActive(ctx context.Context, companyID uuid.UUID) (*models.Subscription, error)
	GetByGatewayID(ctx context.Context, gatewayID string) (*models.Subscription, error)
	List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Subscription, error)
	ExpireEnded(ctx context.Context, now time.Time) (int64, error)
}

type subscriptionRepo struct {
	db DBTX
}

func NewSubscriptionRepository(db DBTX) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

const subscriptionColumns = `id, company_id, plan_name, total_paid, credits_allocated, bonus_credits, free_km, status, auto_renew, gateway_subscription_id, start_date, end_date, created_at, updated_at`

func scanSubscription(row pgx.Row) (*models.Subscription, error) {
	s := &models.Subscription{}
	err := row.Scan(&s.ID, &s.CompanyID, &s.PlanName, &s.TotalPaid, &s.CreditsAllocated, &s.BonusCredits, &s.FreeKM, &s.Status, &s.AutoRenew, &s.GatewaySubscriptionID, &s.StartDate, &s.EndDate, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// Create inserts a subscription. A company holds at most one active
// subscription; a second one yields ErrDuplicate.
func (r *subscriptionRepo) Create(ctx context.Context, s *models.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, company_id, plan_name, total_paid, credits_allocated, bonus_credits, free_km, status, auto_renew, gateway_subscription_id, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, s.ID, s.CompanyID, s.PlanName, s.TotalPaid, s.CreditsAllocated, s.BonusCredits, s.FreeKM, s.Status, s.AutoRenew, s.GatewaySubscriptionID, s.StartDate, s.EndDate)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *subscriptionRepo) GetActive(ctx context.Context, companyID uuid.UUID) (*models.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE company_id = $1 AND status = $2`
	return scanSubscription(r.db.QueryRow(ctx, query, companyID, models.SubscriptionActive))
}

func (r *subscriptionRepo) GetByGatewayID(ctx context.Context, gatewayID string) (*models.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE gateway_subscription_id = $1`
	return scanSubscription(r.db.QueryRow(ctx, query, gatewayID))
}

func (r *subscriptionRepo) List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (r *subscriptionRepo) ExpireEnded(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE subscriptions
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND end_date IS NOT NULL AND end_date < $3
	`
	tag, err := r.db.Exec(ctx, query, models.SubscriptionExpired, models.SubscriptionActive, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
