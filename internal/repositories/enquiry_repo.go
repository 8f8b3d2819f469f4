package repositories

import (
	"context"

	"genzip/internal/models"

	"github.com/google/uuid"
)

type EnquiryRepository interface {
	Create(ctx context.Context, enquiry *models.Enquiry) error
	List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Enquiry, error)
}

type enquiryRepo struct {
	db DBTX
}

func NewEnquiryRepository(db DBTX) EnquiryRepository {
	return &enquiryRepo{db: db}
}

func (r *enquiryRepo) Create(ctx context.Context, e *models.Enquiry) error {
	query := `
		INSERT INTO enquiries (id, company_id, name, email, phone, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query, e.ID, e.CompanyID, e.Name, e.Email, e.Phone, e.Message)
	return err
}

func (r *enquiryRepo) List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Enquiry, error) {
	query := `
		SELECT id, company_id, name, email, phone, message, created_at
		FROM enquiries
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enquiries []*models.Enquiry
	for rows.Next() {
		e := &models.Enquiry{}
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.Name, &e.Email, &e.Phone, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		enquiries = append(enquiries, e)
	}
	return enquiries, rows.Err()
}
