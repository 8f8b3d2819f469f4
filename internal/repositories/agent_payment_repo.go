package repositories

import (
	"context"

	"genzip/internal/models"

	"github.com/google/uuid"
)

type AgentPaymentRepository interface {
	Create(ctx context.Context, payment *models.AgentPayment) error
	ListByAgent(ctx context.Context, agentID uuid.UUID) ([]*models.AgentPayment, error)
}

type agentPaymentRepo struct {
	db DBTX
}

func NewAgentPaymentRepository(db DBTX) AgentPaymentRepository {
	return &agentPaymentRepo{db: db}
}

// Create records a payout. One payout exists per interview; repeats are ignored.
func (r *agentPaymentRepo) Create(ctx context.Context, p *models.AgentPayment) error {
	query := `
		INSERT INTO agent_payments (id, agent_id, interview_id, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (interview_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, p.ID, p.AgentID, p.InterviewID, p.Amount, p.Status)
	return err
}

func (r *agentPaymentRepo) ListByAgent(ctx context.Context, agentID uuid.UUID) ([]*models.AgentPayment, error) {
	query := `
		SELECT id, agent_id, interview_id, amount, status, paid_at, created_at
		FROM agent_payments
		WHERE agent_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, agentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.AgentPayment
	for rows.Next() {
		p := &models.AgentPayment{}
		if err := rows.Scan(&p.ID, &p.AgentID, &p.InterviewID, &p.Amount, &p.Status, &p.PaidAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
