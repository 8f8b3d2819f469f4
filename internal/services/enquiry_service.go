package services

import (
	"context"
	"strings"

	"genzip/internal/models"
	"genzip/internal/repositories"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

type EnquiryRequest struct {
	CompanyID *string `json:"company_id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone"`
	Message   string  `json:"message"`
}

func (r *EnquiryRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.CompanyID, validation.NilOrNotEmpty, is.UUID),
		validation.Field(&r.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Phone, validation.NilOrNotEmpty, validation.Match(phonePattern).Error("must be a valid phone number")),
		validation.Field(&r.Message, validation.Required, validation.Length(5, 2000)),
	)
}

type EnquiryService interface {
	Create(ctx context.Context, req *EnquiryRequest) (*models.Enquiry, error)
	List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Enquiry, error)
}

type enquiryService struct {
	enquiryRepo repositories.EnquiryRepository
	companyRepo repositories.CompanyRepository
}

func NewEnquiryService(enquiryRepo repositories.EnquiryRepository, companyRepo repositories.CompanyRepository) EnquiryService {
	return &enquiryService{enquiryRepo: enquiryRepo, companyRepo: companyRepo}
}

func (s *enquiryService) Create(ctx context.Context, req *EnquiryRequest) (*models.Enquiry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	enquiry := &models.Enquiry{
		ID:      uuid.New(),
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   req.Phone,
		Message: strings.TrimSpace(req.Message),
	}
	if req.CompanyID != nil {
		companyID := uuid.MustParse(*req.CompanyID)
		if _, err := s.companyRepo.GetByID(ctx, companyID); err != nil {
			return nil, notFoundAs(err, "company_id", "unknown company")
		}
		enquiry.CompanyID = &companyID
	}

	if err := s.enquiryRepo.Create(ctx, enquiry); err != nil {
		return nil, err
	}
	return enquiry, nil
}

func (s *enquiryService) List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Enquiry, error) {
	return s.enquiryRepo.List(ctx, companyID, limit, offset)
}
