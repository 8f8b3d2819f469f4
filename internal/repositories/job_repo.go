package repositories

import (
	"context"

	"genzip/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Job, error)
	Update(ctx context.Context, job *models.Job) error
	Delete(ctx context.Context, companyID, id uuid.UUID, createdBy *uuid.UUID) error
	List(ctx context.Context, companyID uuid.UUID, createdBy *uuid.UUID, limit, offset int) ([]*models.Job, error)
}

type jobRepo struct {
	db DBTX
}

func NewJobRepository(db DBTX) JobRepository {
	return &jobRepo{db: db}
}

const jobColumns = `id, company_id, created_by, job_code, title, branch, description, closure_date, high_priority, created_at, updated_at`

func scanJob(row pgx.Row) (*models.Job, error) {
	job := &models.Job{}
	err := row.Scan(&job.ID, &job.CompanyID, &job.CreatedBy, &job.JobCode, &job.Title, &job.Branch, &job.Description, &job.ClosureDate, &job.HighPriority, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return job, nil
}

func (r *jobRepo) Create(ctx context.Context, job *models.Job) error {
	query := `
		INSERT INTO jobs (id, company_id, created_by, job_code, title, branch, description, closure_date, high_priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, job.ID, job.CompanyID, job.CreatedBy, job.JobCode, job.Title, job.Branch, job.Description, job.ClosureDate, job.HighPriority)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *jobRepo) GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE company_id = $1 AND id = $2`
	return scanJob(r.db.QueryRow(ctx, query, companyID, id))
}

func (r *jobRepo) Update(ctx context.Context, job *models.Job) error {
	query := `
		UPDATE jobs
		SET job_code = $1, title = $2, branch = $3, description = $4, closure_date = $5, high_priority = $6, updated_at = NOW()
		WHERE company_id = $7 AND id = $8
	`
	tag, err := r.db.Exec(ctx, query, job.JobCode, job.Title, job.Branch, job.Description, job.ClosureDate, job.HighPriority, job.CompanyID, job.ID)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *jobRepo) Delete(ctx context.Context, companyID, id uuid.UUID, createdBy *uuid.UUID) error {
	query := `DELETE FROM jobs WHERE company_id = $1 AND id = $2 AND ($3::uuid IS NULL OR created_by = $3)`
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

func (r *jobRepo) List(ctx context.Context, companyID uuid.UUID, createdBy *uuid.UUID, limit, offset int) ([]*models.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE company_id = $1 AND ($2::uuid IS NULL OR created_by = $2)
		ORDER BY high_priority DESC, created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, companyID, createdBy, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
