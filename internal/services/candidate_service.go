package services

import (
	"context"
	"strings"

	"genzip/internal/common"
	"genzip/internal/models"
	"genzip/internal/repositories"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

type CandidateRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Location  *string `json:"location"`
	Country   *string `json:"country"`
	State     *string `json:"state"`
	City      string  `json:"city"`
	AddedBy   *string `json:"added_by"`
}

func (r *CandidateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Length(0, 100)),
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Phone, validation.Required, validation.Match(phonePattern).Error("must be a valid phone number")),
		validation.Field(&r.City, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Location, validation.Length(0, 500)),
	)
}

type CandidateService interface {
	Create(ctx context.Context, actor Actor, req *CandidateRequest) (*models.Candidate, error)
	GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*models.Candidate, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req *CandidateRequest) (*models.Candidate, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
	List(ctx context.Context, actor Actor, limit, offset int) ([]*models.Candidate, error)
}

type candidateService struct {
	candidateRepo repositories.CandidateRepository
}

func NewCandidateService(candidateRepo repositories.CandidateRepository) CandidateService {
	return &candidateService{
		candidateRepo: candidateRepo,
	}
}

func (s *candidateService) Create(ctx context.Context, actor Actor, req *CandidateRequest) (*models.Candidate, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	candidate := &models.Candidate{
		ID:        uuid.New(),
		CompanyID: actor.CompanyID,
		CreatedBy: actor.UserID,
	}
	applyCandidate(candidate, req)

	if err := s.candidateRepo.Create(ctx, candidate); err != nil {
		return nil, err
	}
	return s.candidateRepo.GetByID(ctx, actor.CompanyID, candidate.ID)
}

func (s *candidateService) GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*models.Candidate, error) {
	candidate, err := s.candidateRepo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(candidate.CompanyID, candidate.CreatedBy) {
		return nil, ErrNotFound
	}
	return candidate, nil
}

func (s *candidateService) Update(ctx context.Context, actor Actor, id uuid.UUID, req *CandidateRequest) (*models.Candidate, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	candidate, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	applyCandidate(candidate, req)

	if err := s.candidateRepo.Update(ctx, candidate); err != nil {
		return nil, err
	}
	return s.candidateRepo.GetByID(ctx, actor.CompanyID, id)
}

func (s *candidateService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	return s.candidateRepo.Delete(ctx, actor.CompanyID, id, actor.Scope())
}

func (s *candidateService) List(ctx context.Context, actor Actor, limit, offset int) ([]*models.Candidate, error) {
	return s.candidateRepo.List(ctx, actor.CompanyID, actor.Scope(), limit, offset)
}

func applyCandidate(c *models.Candidate, req *CandidateRequest) {
	c.FirstName = strings.TrimSpace(req.FirstName)
	c.LastName = strings.TrimSpace(req.LastName)
	c.Email = strings.ToLower(strings.TrimSpace(req.Email))
	c.Phone = strings.TrimSpace(req.Phone)
	c.Location = common.OptionalString(common.SafeString(req.Location))
	c.Country = common.OptionalString(common.SafeString(req.Country))
	c.State = common.OptionalString(common.SafeString(req.State))
	c.City = strings.TrimSpace(req.City)
	c.AddedBy = common.OptionalString(common.SafeString(req.AddedBy))
}
