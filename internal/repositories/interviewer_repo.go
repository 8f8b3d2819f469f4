package repositories

import (
	"context"

	"genzip/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type InterviewerRepository interface {
	Create(ctx context.Context, interviewer *models.Interviewer) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Interviewer, error)
	GetMany(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]*models.Interviewer, error)
	Update(ctx context.Context, interviewer *models.Interviewer) error
	Delete(ctx context.Context, companyID, id uuid.UUID, createdBy *uuid.UUID) error
	List(ctx context.Context, companyID uuid.UUID, createdBy *uuid.UUID, limit, offset int) ([]*models.Interviewer, error)
}

type interviewerRepo struct {
	db DBTX
}

func NewInterviewerRepository(db DBTX) InterviewerRepository {
	return &interviewerRepo{db: db}
}

const interviewerColumns = `id, company_id, created_by, job_id, first_name, last_name, email, phone, created_at, updated_at`

func scanInterviewer(row pgx.Row) (*models.Interviewer, error) {
	i := &models.Interviewer{}
	err := row.Scan(&i.ID, &i.CompanyID, &i.CreatedBy, &i.JobID, &i.FirstName, &i.LastName, &i.Email, &i.Phone, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return i, nil
}

func (r *interviewerRepo) Create(ctx context.Context, i *models.Interviewer) error {
	query := `
		INSERT INTO interviewers (id, company_id, created_by, job_id, first_name, last_name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, i.ID, i.CompanyID, i.CreatedBy, i.JobID, i.FirstName, i.LastName, i.Email, i.Phone)
	return err
}

func (r *interviewerRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Interviewer, error) {
	query := `SELECT ` + interviewerColumns + ` FROM interviewers WHERE company_id = $1 AND id = $2`
	return scanInterviewer(r.db.QueryRow(ctx, query, companyID, id))
}

func (r *interviewerRepo) GetMany(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]*models.Interviewer, error) {
	query := `SELECT ` + interviewerColumns + ` FROM interviewers WHERE company_id = $1 AND id = ANY($2) ORDER BY first_name`
	return r.list(ctx, query, companyID, ids)
}

func (r *interviewerRepo) Update(ctx context.Context, i *models.Interviewer) error {
	query := `
		UPDATE interviewers
		SET job_id = $1, first_name = $2, last_name = $3, email = $4, phone = $5, updated_at = NOW()
		WHERE company_id = $6 AND id = $7
	`
	tag, err := r.db.Exec(ctx, query, i.JobID, i.FirstName, i.LastName, i.Email, i.Phone, i.CompanyID, i.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *interviewerRepo) Delete(ctx context.Context, companyID, id uuid.UUID, createdBy *uuid.UUID) error {
	query := `DELETE FROM interviewers WHERE company_id = $1 AND id = $2 AND ($3::uuid IS NULL OR created_by = $3)`
	tag, err := r.db.Exec(ctx, query, companyID, id, createdBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *interviewerRepo) List(ctx context.Context, companyID uuid.UUID, createdBy *uuid.UUID, limit, offset int) ([]*models.Interviewer, error) {
	query := `
		SELECT ` + interviewerColumns + `
		FROM interviewers
		WHERE company_id = $1 AND ($2::uuid IS NULL OR created_by = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	return r.list(ctx, query, companyID, createdBy, limit, offset)
}

func (r *interviewerRepo) list(ctx context.Context, query string, args ...any) ([]*models.Interviewer, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var interviewers []*models.Interviewer
	for rows.Next() {
		i, err := scanInterviewer(rows)
		if err != nil {
			return nil, err
		}
		interviewers = append(interviewers, i)
	}
	return interviewers, rows.Err()
}
