package repositories

import (
	"context"

	"genzip/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CompanyRepository interface {
	CreateWithAdmin(ctx context.Context, company *models.Company, admin *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	Update(ctx context.Context, company *models.Company) error
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

type companyRepo struct {
	db DBTX
}

func NewCompanyRepository(db DBTX) CompanyRepository {
	return &companyRepo{db: db}
}

// CreateWithAdmin inserts the company and its admin login in one transaction.
func (r *companyRepo) CreateWithAdmin(ctx context.Context, company *models.Company, admin *models.User) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO companies (id, admin_user_id, name, admin_name, email, phone, address, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		`
		_, err := tx.Exec(ctx, query, company.ID, company.AdminUserID, company.Name, company.AdminName, company.Email, company.Phone, company.Address, company.IsActive)
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		if err != nil {
			return err
		}
		return insertUser(ctx, tx, admin)
	})
}

func (r *companyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	company := &models.Company{}
	query := `
		SELECT id, admin_user_id, name, admin_name, email, phone, address, is_active, created_at, updated_at
		FROM companies
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&company.ID, &company.AdminUserID, &company.Name, &company.AdminName, &company.Email, &company.Phone, &company.Address, &company.IsActive, &company.CreatedAt, &company.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return company, nil
}

func (r *companyRepo) Update(ctx context.Context, company *models.Company) error {
	query := `
		UPDATE companies
		SET name = $1, admin_name = $2, phone = $3, address = $4, updated_at = NOW()
		WHERE id = $5
	`
	tag, err := r.db.Exec(ctx, query, company.Name, company.AdminName, company.Phone, company.Address, company.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *companyRepo) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM companies WHERE is_active = TRUE ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
