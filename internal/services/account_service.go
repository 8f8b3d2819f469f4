package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"unicode"

	"genzip/internal/common"
	"genzip/internal/models"
	"genzip/internal/repositories"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/labstack/gommon/random"
)

var (
	phonePattern  = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	mobilePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)
)

type AdminSignupRequest struct {
	CompanyName string  `json:"company_name"`
	AdminName   string  `json:"admin_name"`
	Email       string  `json:"email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	Password    string  `json:"password"`
}

func (r *AdminSignupRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.CompanyName, validation.Required, validation.Length(2, 200)),
		validation.Field(&r.AdminName, validation.Required, validation.Length(2, 100)),
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Phone, validation.NilOrNotEmpty, validation.Match(phonePattern).Error("must be a valid phone number")),
		validation.Field(&r.Password, validation.Required),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required),
	)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type HRRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone"`
	Branch    *string `json:"branch"`
}

func (r *HRRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Length(0, 100)),
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Phone, validation.NilOrNotEmpty, validation.Match(phonePattern).Error("must be a valid phone number")),
		validation.Field(&r.Branch, validation.Length(0, 100)),
	)
}

// CreatedHR is returned once to the admin; the temporary password is also
// mailed to the HR.
type CreatedHR struct {
	HR           *models.HR `json:"hr"`
	TempPassword string     `json:"temp_password"`
}

type CompanySettingsRequest struct {
	Name      string  `json:"name"`
	AdminName string  `json:"admin_name"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

func (r *CompanySettingsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, validation.Length(2, 200)),
		validation.Field(&r.AdminName, validation.Required, validation.Length(2, 100)),
		validation.Field(&r.Phone, validation.NilOrNotEmpty, validation.Match(phonePattern).Error("must be a valid phone number")),
		validation.Field(&r.Address, validation.Length(0, 500)),
	)
}

// AccountService manages company accounts: admin signup, logins, HR
// provisioning and company settings.
type AccountService interface {
	SignupAdmin(ctx context.Context, req *AdminSignupRequest) (*models.Company, *models.TokenResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*models.TokenResponse, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error

	CreateHR(ctx context.Context, actor Actor, req *HRRequest) (*CreatedHR, error)
	ListHRs(ctx context.Context, actor Actor, limit, offset int) ([]*models.HR, error)
	SetHRActive(ctx context.Context, actor Actor, id uuid.UUID, active bool) error
	CurrentHR(ctx context.Context, actor Actor) (*models.HR, error)

	GetCompany(ctx context.Context, actor Actor) (*models.Company, error)
	UpdateCompany(ctx context.Context, actor Actor, req *CompanySettingsRequest) (*models.Company, error)
}

type accountService struct {
	users     repositories.UserRepository
	companies repositories.CompanyRepository
	hrs       repositories.HRRepository
	auth      AuthService
	notifier  NotificationService
}

func NewAccountService(users repositories.UserRepository, companies repositories.CompanyRepository, hrs repositories.HRRepository, auth AuthService, notifier NotificationService) AccountService {
	return &accountService{
		users:     users,
		companies: companies,
		hrs:       hrs,
		auth:      auth,
		notifier:  notifier,
	}
}

func (s *accountService) SignupAdmin(ctx context.Context, req *AdminSignupRequest) (*models.Company, *models.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}
	if err := CheckPasswordPolicy(req.Password); err != nil {
		return nil, nil, err
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	companyID := uuid.New()
	admin := &models.User{
		ID:           uuid.New(),
		CompanyID:    &companyID,
		Email:        &email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	company := &models.Company{
		ID:          companyID,
		AdminUserID: admin.ID,
		Name:        strings.TrimSpace(req.CompanyName),
		AdminName:   strings.TrimSpace(req.AdminName),
		Email:       email,
		Phone:       common.OptionalString(common.SafeString(req.Phone)),
		Address:     common.OptionalString(common.SafeString(req.Address)),
		IsActive:    true,
	}

	if err := s.companies.CreateWithAdmin(ctx, company, admin); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, fmt.Errorf("failed to create company: %w", err)
	}

	tokens, err := s.auth.GenerateTokens(ctx, admin)
	if err != nil {
		return nil, nil, err
	}

	created, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, nil, err
	}
	return created, tokens, nil
}

// Login authenticates admin and HR users by email.
func (s *accountService) Login(ctx context.Context, req *LoginRequest) (*models.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Role != models.RoleAdmin && user.Role != models.RoleHR {
		return nil, ErrInvalidCredentials
	}
	if !s.auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	return s.auth.GenerateTokens(ctx, user)
}

// ChangePassword replaces the password of any account and clears the
// first-login flag.
func (s *accountService) ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return ErrInvalidCredentials
	}
	if req.NewPassword == req.CurrentPassword {
		return validation.Errors{"new_password": errors.New("must differ from the current password")}
	}
	if err := CheckPasswordPolicy(req.NewPassword); err != nil {
		return err
	}

	hash, err := s.auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash, false)
}

func (s *accountService) CreateHR(ctx context.Context, actor Actor, req *HRRequest) (*CreatedHR, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	company, err := s.companies.GetByID(ctx, actor.CompanyID)
	if err != nil {
		return nil, err
	}

	tempPassword := GenerateTempPassword()
	hash, err := s.auth.HashPassword(tempPassword)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	companyID := actor.CompanyID
	user := &models.User{
		ID:           uuid.New(),
		CompanyID:    &companyID,
		Email:        &email,
		PasswordHash: hash,
		Role:         models.RoleHR,
		FirstLogin:   true,
		IsActive:     true,
	}
	hr := &models.HR{
		ID:         uuid.New(),
		CompanyID:  companyID,
		UserID:     user.ID,
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		Email:      email,
		Phone:      common.OptionalString(common.SafeString(req.Phone)),
		Branch:     common.OptionalString(common.SafeString(req.Branch)),
		FirstLogin: true,
		IsActive:   true,
	}

	if err := s.hrs.CreateWithUser(ctx, user, hr); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create HR: %w", err)
	}

	if err := s.notifier.HRWelcome(ctx, email, hr.FullName(), company.Name, tempPassword); err != nil {
		log.Printf("Failed to queue welcome mail for HR %s: %v", hr.ID, err)
	}

	created, err := s.hrs.GetByID(ctx, companyID, hr.ID)
	if err != nil {
		return nil, err
	}
	return &CreatedHR{HR: created, TempPassword: tempPassword}, nil
}

func (s *accountService) ListHRs(ctx context.Context, actor Actor, limit, offset int) ([]*models.HR, error) {
	return s.hrs.List(ctx, actor.CompanyID, limit, offset)
}

func (s *accountService) SetHRActive(ctx context.Context, actor Actor, id uuid.UUID, active bool) error {
	return s.hrs.SetActive(ctx, actor.CompanyID, id, active)
}

func (s *accountService) CurrentHR(ctx context.Context, actor Actor) (*models.HR, error) {
	hr, err := s.hrs.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if hr.CompanyID != actor.CompanyID {
		return nil, ErrNotFound
	}
	return hr, nil
}

func (s *accountService) GetCompany(ctx context.Context, actor Actor) (*models.Company, error) {
	return s.companies.GetByID(ctx, actor.CompanyID)
}

func (s *accountService) UpdateCompany(ctx context.Context, actor Actor, req *CompanySettingsRequest) (*models.Company, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	company, err := s.companies.GetByID(ctx, actor.CompanyID)
	if err != nil {
		return nil, err
	}
	company.Name = strings.TrimSpace(req.Name)
	company.AdminName = strings.TrimSpace(req.AdminName)
	company.Phone = common.OptionalString(common.SafeString(req.Phone))
	company.Address = common.OptionalString(common.SafeString(req.Address))

	if err := s.companies.Update(ctx, company); err != nil {
		return nil, err
	}
	return s.companies.GetByID(ctx, actor.CompanyID)
}

// CheckPasswordPolicy requires at least 8 characters with an upper case
// letter, a lower case letter, a digit and a symbol.
func CheckPasswordPolicy(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return ErrWeakPassword
	}
	return nil
}

// GenerateTempPassword returns a random password that satisfies the policy.
func GenerateTempPassword() string {
	return random.String(3, random.Uppercase) +
		random.String(3, random.Lowercase) +
		random.String(3, random.Numeric) +
		random.String(1, "@#$%&*!")
}
