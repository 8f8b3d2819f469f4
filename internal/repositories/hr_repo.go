package repositories

import (
	"context"

	"genzip/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type HRRepository interface {
	CreateWithUser(ctx context.Context, user *models.User, hr *models.HR) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.HR, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.HR, error)
	List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.HR, error)
	SetActive(ctx context.Context, companyID, id uuid.UUID, active bool) error
}

type hrRepo struct {
	db DBTX
}

func NewHRRepository(db DBTX) HRRepository {
	return &hrRepo{db: db}
}

const hrColumns = `id, company_id, user_id, first_name, last_name, email, phone, branch, first_login, is_active, created_at, updated_at`

func scanHR(row pgx.Row) (*models.HR, error) {
	hr := &models.HR{}
	err := row.Scan(&hr.ID, &hr.CompanyID, &hr.UserID, &hr.FirstName, &hr.LastName, &hr.Email, &hr.Phone, &hr.Branch, &hr.FirstLogin, &hr.IsActive, &hr.CreatedAt, &hr.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return hr, nil
}

// CreateWithUser inserts the HR login and profile in one transaction.
func (r *hrRepo) CreateWithUser(ctx context.Context, user *models.User, hr *models.HR) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := insertUser(ctx, tx, user); err != nil {
			return err
		}
		query := `
			INSERT INTO hrs (id, company_id, user_id, first_name, last_name, email, phone, branch, first_login, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		`
		_, err := tx.Exec(ctx, query, hr.ID, hr.CompanyID, hr.UserID, hr.FirstName, hr.LastName, hr.Email, hr.Phone, hr.Branch, hr.FirstLogin, hr.IsActive)
		return err
	})
}

func (r *hrRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.HR, error) {
	query := `SELECT ` + hrColumns + ` FROM hrs WHERE company_id = $1 AND id = $2`
	return scanHR(r.db.QueryRow(ctx, query, companyID, id))
}

func (r *hrRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.HR, error) {
	query := `SELECT ` + hrColumns + ` FROM hrs WHERE user_id = $1`
	return scanHR(r.db.QueryRow(ctx, query, userID))
}

func (r *hrRepo) List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.HR, error) {
	query := `
		SELECT ` + hrColumns + `
		FROM hrs
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hrs []*models.HR
	for rows.Next() {
		hr, err := scanHR(rows)
		if err != nil {
			return nil, err
		}
		hrs = append(hrs, hr)
	}
	return hrs, rows.Err()
}

// SetActive toggles the HR profile and the backing login together.
func (r *hrRepo) SetActive(ctx context.Context, companyID, id uuid.UUID, active bool) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		var userID uuid.UUID
		query := `
			UPDATE hrs SET is_active = $1, updated_at = NOW()
			WHERE company_id = $2 AND id = $3
			RETURNING user_id
		`
		if err := tx.QueryRow(ctx, query, active, companyID, id).Scan(&userID); err != nil {
			return notFound(err)
		}
		_, err := tx.Exec(ctx, `UPDATE users SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, userID)
		return err
	})
}
