package repositories

import (
	"context"

	"genzip/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CandidateRepository interface {
	Create(ctx context.Context, candidate *models.Candidate) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Candidate, error)
	Update(ctx context.Context, candidate *models.Candidate) error
	Delete(ctx context.Context, companyID, id uuid.UUID, createdBy *uuid.UUID) error
	List(ctx context.Context, companyID uuid.UUID, createdBy *uuid.UUID, limit, offset int) ([]*models.Candidate, error)
}

type candidateRepo struct {
	db DBTX
}

func NewCandidateRepository(db DBTX) CandidateRepository {
	return &candidateRepo{db: db}
}

const candidateColumns = `id, company_id, created_by, first_name, last_name, email, phone, location, country, state, city, added_by, created_at, updated_at`

func scanCandidate(row pgx.Row) (*models.Candidate, error) {
	c := &models.Candidate{}
	err := row.Scan(&c.ID, &c.CompanyID, &c.CreatedBy, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Location, &c.Country, &c.State, &c.City, &c.AddedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (r *candidateRepo) Create(ctx context.Context, c *models.Candidate) error {
	query := `
		INSERT INTO candidates (id, company_id, created_by, first_name, last_name, email, phone, location, country, state, city, added_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, c.ID, c.CompanyID, c.CreatedBy, c.FirstName, c.LastName, c.Email, c.Phone, c.Location, c.Country, c.State, c.City, c.AddedBy)
	return err
}

func (r *candidateRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE company_id = $1 AND id = $2`
	return scanCandidate(r.db.QueryRow(ctx, query, companyID, id))
}

func (r *candidateRepo) Update(ctx context.Context, c *models.Candidate) error {
	query := `
		UPDATE candidates
		SET first_name = $1, last_name = $2, email = $3, phone = $4, location = $5, country = $6, state = $7, city = $8, added_by = $9, updated_at = NOW()
		WHERE company_id = $10 AND id = $11
	`
	tag, err := r.db.Exec(ctx, query, c.FirstName, c.LastName, c.Email, c.Phone, c.Location, c.Country, c.State, c.City, c.AddedBy, c.CompanyID, c.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *candidateRepo) Delete(ctx context.Context, companyID, id uuid.UUID, createdBy *uuid.UUID) error {
	query := `DELETE FROM candidates WHERE company_id = $1 AND id = $2 AND ($3::uuid IS NULL OR created_by = $3)`
	tag, err := r.db.Exec(ctx, query, companyID, id, createdBy)
	if isForeignKeyViolation(err) {
		return ErrInUse
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *candidateRepo) List(ctx context.Context, companyID uuid.UUID, createdBy *uuid.UUID, limit, offset int) ([]*models.Candidate, error) {
	query := `
		SELECT ` + candidateColumns + `
		FROM candidates
		WHERE company_id = $1 AND ($2::uuid IS NULL OR created_by = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, companyID, createdBy, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []*models.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}
