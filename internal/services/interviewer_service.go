package services

import (
	"context"
	"errors"
	"strings"

	"genzip/internal/common"
	"genzip/internal/models"
	"genzip/internal/repositories"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

type InterviewerRequest struct {
	JobID     *string `json:"job_id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone"`
}

func (r *InterviewerRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.JobID, validation.NilOrNotEmpty, is.UUID),
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Length(0, 100)),
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Phone, validation.NilOrNotEmpty, validation.Match(phonePattern).Error("must be a valid phone number")),
	)
}

type InterviewerService interface {
	Create(ctx context.Context, actor Actor, req *InterviewerRequest) (*models.Interviewer, error)
	GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*models.Interviewer, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req *InterviewerRequest) (*models.Interviewer, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	List(ctx context.Context, actor Actor, limit, offset int) ([]*models.Interviewer, error)
}

type interviewerService struct {
	interviewerRepo repositories.InterviewerRepository
	jobRepo         repositories.JobRepository
}

func NewInterviewerService(interviewerRepo repositories.InterviewerRepository, jobRepo repositories.JobRepository) InterviewerService {
	return &interviewerService{
		interviewerRepo: interviewerRepo,
		jobRepo:         jobRepo,
	}
}

func (s *interviewerService) Create(ctx context.Context, actor Actor, req *InterviewerRequest) (*models.Interviewer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	interviewer := &models.Interviewer{
		ID:        uuid.New(),
		CompanyID: actor.CompanyID,
		CreatedBy: actor.UserID,
	}
	if err := s.apply(ctx, actor, interviewer, req); err != nil {
		return nil, err
	}

	if err := s.interviewerRepo.Create(ctx, interviewer); err != nil {
		return nil, err
	}
	return s.interviewerRepo.GetByID(ctx, actor.CompanyID, interviewer.ID)
}

func (s *interviewerService) GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*models.Interviewer, error) {
	interviewer, err := s.interviewerRepo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(interviewer.CompanyID, interviewer.CreatedBy) {
		return nil, ErrNotFound
	}
	return interviewer, nil
}

func (s *interviewerService) Update(ctx context.Context, actor Actor, id uuid.UUID, req *InterviewerRequest) (*models.Interviewer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	interviewer, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, actor, interviewer, req); err != nil {
		return nil, err
	}

	if err := s.interviewerRepo.Update(ctx, interviewer); err != nil {
		return nil, err
	}
	return s.interviewerRepo.GetByID(ctx, actor.CompanyID, id)
}

func (s *interviewerService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	return s.interviewerRepo.Delete(ctx, actor.CompanyID, id, actor.Scope())
}

func (s *interviewerService) List(ctx context.Context, actor Actor, limit, offset int) ([]*models.Interviewer, error) {
	return s.interviewerRepo.List(ctx, actor.CompanyID, actor.Scope(), limit, offset)
}

func (s *interviewerService) apply(ctx context.Context, actor Actor, interviewer *models.Interviewer, req *InterviewerRequest) error {
	interviewer.JobID = nil
	if req.JobID != nil {
		jobID := uuid.MustParse(*req.JobID)
		if _, err := s.jobRepo.GetByID(ctx, actor.CompanyID, jobID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return validation.Errors{"job_id": errors.New("job not found")}
			}
			return err
		}
		interviewer.JobID = &jobID
	}
	interviewer.FirstName = strings.TrimSpace(req.FirstName)
	interviewer.LastName = strings.TrimSpace(req.LastName)
	interviewer.Email = strings.ToLower(strings.TrimSpace(req.Email))
	interviewer.Phone = common.OptionalString(common.SafeString(req.Phone))
	return nil
}
