package services

import (
	"context"
	"errors"
	"strings"

	"genzip/internal/common"
	"genzip/internal/models"
	"genzip/internal/repositories"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

type JobRequest struct {
	JobCode      string  `json:"job_code"`
	Title        string  `json:"title"`
	Branch       *string `json:"branch"`
	Description  *string `json:"description"`
	ClosureDate  *string `json:"closure_date"`
	HighPriority bool    `json:"high_priority"`
}

func (r *JobRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.JobCode, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Branch, validation.Length(0, 100)),
		validation.Field(&r.Description, validation.Length(0, 5000)),
		validation.Field(&r.ClosureDate, validation.NilOrNotEmpty, validation.Date("2006-01-02")),
	)
}

type JobService interface {
	Create(ctx context.Context, actor Actor, req *JobRequest) (*models.Job, error)
	GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*models.Job, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req *JobRequest) (*models.Job, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	List(ctx context.Context, actor Actor, limit, offset int) ([]*models.Job, error)
}

type jobService struct {
	jobRepo repositories.JobRepository
}

func NewJobService(jobRepo repositories.JobRepository) JobService {
	return &jobService{
		jobRepo: jobRepo,
	}
}

func (s *jobService) Create(ctx context.Context, actor Actor, req *JobRequest) (*models.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	job := &models.Job{
		ID:        uuid.New(),
		CompanyID: actor.CompanyID,
		CreatedBy: actor.UserID,
	}
	if err := applyJob(job, req); err != nil {
		return nil, err
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, validation.Errors{"job_code": errors.New("job code already exists")}
		}
		return nil, err
	}
	return s.jobRepo.GetByID(ctx, actor.CompanyID, job.ID)
}

func (s *jobService) GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*models.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(job.CompanyID, job.CreatedBy) {
		return nil, ErrNotFound
	}
	return job, nil
}

func (s *jobService) Update(ctx context.Context, actor Actor, id uuid.UUID, req *JobRequest) (*models.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	job, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := applyJob(job, req); err != nil {
		return nil, err
	}

	if err := s.jobRepo.Update(ctx, job); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, validation.Errors{"job_code": errors.New("job code already exists")}
		}
		return nil, err
	}
	return s.jobRepo.GetByID(ctx, actor.CompanyID, id)
}

func (s *jobService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	return s.jobRepo.Delete(ctx, actor.CompanyID, id, actor.Scope())
}

func (s *jobService) List(ctx context.Context, actor Actor, limit, offset int) ([]*models.Job, error) {
	return s.jobRepo.List(ctx, actor.CompanyID, actor.Scope(), limit, offset)
}

func applyJob(job *models.Job, req *JobRequest) error {
	job.JobCode = strings.ToUpper(strings.TrimSpace(req.JobCode))
	job.Title = strings.TrimSpace(req.Title)
	job.Branch = common.OptionalString(common.SafeString(req.Branch))
	job.Description = common.OptionalString(common.SafeString(req.Description))
	job.HighPriority = req.HighPriority
	job.ClosureDate = nil
	if req.ClosureDate != nil {
		date, err := common.ParseDate(*req.ClosureDate, "closure_date")
		if err != nil {
			return validation.Errors{"closure_date": err}
		}
		job.ClosureDate = &date
	}
	return nil
}
