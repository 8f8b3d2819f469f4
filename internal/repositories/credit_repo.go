package repositories

import (
	"context"
	"errors"

	"genzip/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreditRepository is the company credit ledger. Balances are always
// derived from the rows, never stored.
type CreditRepository interface {
	Grant(ctx context.Context, req models.GrantRequest) (*models.CreditTransaction, bool, error)
	Summary(ctx context.Context, companyID uuid.UUID) (*models.CreditSummary, error)
	Consume(ctx context.Context, companyID, interviewID uuid.UUID, reason string) (*models.CreditTransaction, error)
	Release(ctx context.Context, interviewID uuid.UUID) (*models.CreditTransaction, error)
	ActiveUsage(ctx context.Context, interviewID uuid.UUID) (*models.CreditTransaction, error)
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.CreditTransaction, error)
	History(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.CreditTransaction, error)
}

type creditRepo struct {
	db DBTX
}

func NewCreditRepository(db DBTX) CreditRepository {
	return &creditRepo{db: db}
}

const creditColumns = `id, company_id, credits_added, credits_used, reason, reference_id, idempotency_key, amount_paid, payment_mode, released_at, created_at`

const creditSummarySQL = `
	SELECT COALESCE(SUM(credits_added), 0),
		COALESCE(SUM(credits_used) FILTER (WHERE released_at IS NULL), 0)
	FROM credit_transactions
	WHERE company_id = $1
`

func scanCredit(row pgx.Row) (*models.CreditTransaction, error) {
	t := &models.CreditTransaction{}
	err := row.Scan(&t.ID, &t.CompanyID, &t.CreditsAdded, &t.CreditsUsed, &t.Reason, &t.ReferenceID, &t.IdempotencyKey, &t.AmountPaid, &t.PaymentMode, &t.ReleasedAt, &t.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func summary(ctx context.Context, db DBTX, companyID uuid.UUID) (*models.CreditSummary, error) {
	s := &models.CreditSummary{}
	if err := db.QueryRow(ctx, creditSummarySQL, companyID).Scan(&s.Added, &s.Used); err != nil {
		return nil, err
	}
	s.Available = s.Added - s.Used
	return s, nil
}

// Grant inserts a grant row. When the idempotency key was already used the
// call is a no-op and reports created == false.
func (r *creditRepo) Grant(ctx context.Context, req models.GrantRequest) (*models.CreditTransaction, bool, error) {
	query := `
		INSERT INTO credit_transactions (id, company_id, credits_added, credits_used, reason, reference_id, idempotency_key, amount_paid, payment_mode, created_at)
		VALUES ($1, $2, $3, 0, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (idempotency_key) DO NOTHING
		RETURNING ` + creditColumns
	t, err := scanCredit(r.db.QueryRow(ctx, query, uuid.New(), req.CompanyID, req.Credits, req.Reason, req.ReferenceID, req.IdempotencyKey, req.AmountPaid, req.PaymentMode))
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}

func (r *creditRepo) Summary(ctx context.Context, companyID uuid.UUID) (*models.CreditSummary, error) {
	return summary(ctx, r.db, companyID)
}

// Consume spends one credit on an interview. The company row is locked so
// concurrent consumers serialize on the balance check.
func (r *creditRepo) Consume(ctx context.Context, companyID, interviewID uuid.UUID, reason string) (*models.CreditTransaction, error) {
	var usage *models.CreditTransaction
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		var locked uuid.UUID
		if err := tx.QueryRow(ctx, `SELECT id FROM companies WHERE id = $1 FOR UPDATE`, companyID).Scan(&locked); err != nil {
			return notFound(err)
		}

		balance, err := summary(ctx, tx, companyID)
		if err != nil {
			return err
		}
		if balance.Available < 1 {
			return ErrInsufficientCredits
		}

		query := `
			INSERT INTO credit_transactions (id, company_id, credits_added, credits_used, reason, reference_id, amount_paid, created_at)
			VALUES ($1, $2, 0, 1, $3, $4, 0, NOW())
			RETURNING ` + creditColumns
		usage, err = scanCredit(tx.QueryRow(ctx, query, uuid.New(), companyID, reason, interviewID))
		if isUniqueViolation(err) {
			return ErrCreditAlreadyUsed
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return usage, nil
}

// Release returns the credit consumed by an interview. ErrNotFound means
// no active usage existed.
func (r *creditRepo) Release(ctx context.Context, interviewID uuid.UUID) (*models.CreditTransaction, error) {
	query := `
		UPDATE credit_transactions
		SET released_at = NOW()
		WHERE reference_id = $1 AND credits_used > 0 AND released_at IS NULL
		RETURNING ` + creditColumns
	return scanCredit(r.db.QueryRow(ctx, query, interviewID))
}

func (r *creditRepo) ActiveUsage(ctx context.Context, interviewID uuid.UUID) (*models.CreditTransaction, error) {
	query := `
		SELECT ` + creditColumns + `
		FROM credit_transactions
		WHERE reference_id = $1 AND credits_used > 0 AND released_at IS NULL
	`
	return scanCredit(r.db.QueryRow(ctx, query, interviewID))
}

func (r *creditRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.CreditTransaction, error) {
	query := `SELECT ` + creditColumns + ` FROM credit_transactions WHERE company_id = $1 AND id = $2`
	return scanCredit(r.db.QueryRow(ctx, query, companyID, id))
}

func (r *creditRepo) History(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.CreditTransaction, error) {
	query := `
		SELECT ` + creditColumns + `
		FROM credit_transactions
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []*models.CreditTransaction
	for rows.Next() {
		t, err := scanCredit(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
