package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	"genzip/internal/caching"
	"genzip/internal/common"
	"genzip/internal/models"
	"genzip/internal/repositories"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/labstack/gommon/random"
)

const (
	govIDLinkTTL = 15 * time.Minute

	otpRequestLimit = 3
	otpAttemptLimit = 5
)

type AgentSignupRequest struct {
	FirstName        string  `json:"first_name" form:"first_name"`
	LastName         string  `json:"last_name" form:"last_name"`
	Email            *string `json:"email" form:"email"`
	Mobile           string  `json:"mobile" form:"mobile"`
	AltPhone         *string `json:"alt_phone" form:"alt_phone"`
	EmergencyContact *string `json:"emergency_contact" form:"emergency_contact"`
	Address          *string `json:"address" form:"address"`
	City             string  `json:"city" form:"city"`
	Password         string  `json:"password" form:"password"`
	OTP              string  `json:"otp" form:"otp"`
}

func (r *AgentSignupRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Length(0, 100)),
		validation.Field(&r.Email, validation.NilOrNotEmpty, is.EmailFormat),
		validation.Field(&r.Mobile, validation.Required, validation.Match(mobilePattern).Error("must be a 10 digit mobile number")),
		validation.Field(&r.AltPhone, validation.NilOrNotEmpty, validation.Match(phonePattern).Error("must be a valid phone number")),
		validation.Field(&r.EmergencyContact, validation.NilOrNotEmpty, validation.Match(phonePattern).Error("must be a valid phone number")),
		validation.Field(&r.City, validation.Required, validation.Length(2, 100)),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.OTP, validation.Required, validation.Length(4, 8)),
	)
}

type AgentLoginRequest struct {
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

type AgentPasswordResetRequest struct {
	Mobile      string `json:"mobile"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

type AgentProfileRequest struct {
	Email            *string `json:"email"`
	AltPhone         *string `json:"alt_phone"`
	EmergencyContact *string `json:"emergency_contact"`
	Address          *string `json:"address"`
	City             string  `json:"city"`
}

func (r *AgentProfileRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.NilOrNotEmpty, is.EmailFormat),
		validation.Field(&r.AltPhone, validation.NilOrNotEmpty, validation.Match(phonePattern).Error("must be a valid phone number")),
		validation.Field(&r.EmergencyContact, validation.NilOrNotEmpty, validation.Match(phonePattern).Error("must be a valid phone number")),
		validation.Field(&r.City, validation.Required, validation.Length(2, 100)),
	)
}

// AgentProfile is the agent's own view of their record. The government ID
// is only reachable through a short-lived link.
type AgentProfile struct {
	*models.FieldAgent
	GovIDLink string `json:"gov_id_link,omitempty"`
}

// AgentService manages field agent accounts and payouts.
type AgentService interface {
	RequestOTP(ctx context.Context, mobile string) error
	Signup(ctx context.Context, req *AgentSignupRequest, photo, govID *Upload) (*models.FieldAgent, *models.TokenResponse, error)
	Login(ctx context.Context, req *AgentLoginRequest) (*models.TokenResponse, error)
	ResetPassword(ctx context.Context, req *AgentPasswordResetRequest) error

	ByUserID(ctx context.Context, userID uuid.UUID) (*models.FieldAgent, error)
	Profile(ctx context.Context, agent *models.FieldAgent) (*AgentProfile, error)
	UpdateProfile(ctx context.Context, agent *models.FieldAgent, req *AgentProfileRequest) (*models.FieldAgent, error)
	Payments(ctx context.Context, agent *models.FieldAgent) (*models.AgentPaymentSummary, error)
}

type agentService struct {
	users    repositories.UserRepository
	agents   repositories.FieldAgentRepository
	payments repositories.AgentPaymentRepository
	auth     AuthService
	cacheSvc caching.CacheService
	storage  StorageService
	notifier NotificationService
	devOTP   string
	otpTTL   time.Duration
}

func NewAgentService(users repositories.UserRepository, agents repositories.FieldAgentRepository, payments repositories.AgentPaymentRepository,
	auth AuthService, cacheSvc caching.CacheService, storage StorageService, notifier NotificationService, devOTP string, otpTTL time.Duration) AgentService {
	return &agentService{
		users:    users,
		agents:   agents,
		payments: payments,
		auth:     auth,
		cacheSvc: cacheSvc,
		storage:  storage,
		notifier: notifier,
		devOTP:   devOTP,
		otpTTL:   otpTTL,
	}
}

// RequestOTP issues a random six digit signup/reset OTP for a mobile number.
// There is no SMS gateway, so the code is written to the server log. A fixed
// development code replaces it when configured.
func (s *agentService) RequestOTP(ctx context.Context, mobile string) error {
	mobile = strings.TrimSpace(mobile)
	if err := validation.Validate(mobile, validation.Required, validation.Match(mobilePattern)); err != nil {
		return validation.Errors{"mobile": err}
	}
	if s.limited(ctx, "otp-request:"+mobile, otpRequestLimit) {
		return ErrTooManyAttempts
	}

	code := s.devOTP
	if code == "" {
		code = random.String(6, random.Numeric)
	}
	if err := s.cacheSvc.SetString(ctx, otpKey(mobile), code, s.otpTTL); err != nil {
		return fmt.Errorf("failed to store OTP: %w", err)
	}
	log.Printf("OTP %s issued for mobile ending %s", code, mobile[len(mobile)-4:])
	return nil
}

func (s *agentService) Signup(ctx context.Context, req *AgentSignupRequest, photo, govID *Upload) (*models.FieldAgent, *models.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}
	if err := CheckPasswordPolicy(req.Password); err != nil {
		return nil, nil, err
	}
	if photo == nil || govID == nil {
		return nil, nil, validation.Errors{"photo": errors.New("photo and government ID are required")}
	}

	mobile := strings.TrimSpace(req.Mobile)
	if _, err := s.users.GetByMobile(ctx, mobile); err == nil {
		return nil, nil, ErrMobileTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, nil, err
	}
	if err := s.consumeOTP(ctx, mobile, req.OTP); err != nil {
		return nil, nil, err
	}

	code, err := s.generateAgentCode(ctx, req.City)
	if err != nil {
		return nil, nil, err
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	var email *string
	if e := common.OptionalString(common.SafeString(req.Email)); e != nil {
		lower := strings.ToLower(*e)
		email = &lower
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Mobile:       &mobile,
		PasswordHash: hash,
		Role:         models.RoleAgent,
		IsActive:     true,
	}
	agent := &models.FieldAgent{
		ID:               uuid.New(),
		UserID:           user.ID,
		AgentCode:        code,
		FirstName:        strings.TrimSpace(req.FirstName),
		LastName:         strings.TrimSpace(req.LastName),
		Email:            email,
		Mobile:           mobile,
		AltPhone:         common.OptionalString(common.SafeString(req.AltPhone)),
		EmergencyContact: common.OptionalString(common.SafeString(req.EmergencyContact)),
		Address:          common.OptionalString(common.SafeString(req.Address)),
		City:             strings.TrimSpace(req.City),
	}

	if s.storage == nil {
		return nil, nil, ErrStorageUnavailable
	}
	photoURL, err := s.storage.UploadPublic(ctx, fmt.Sprintf("agents/%s/photo%s", agent.ID, photo.Ext()), photo)
	if err != nil {
		return nil, nil, err
	}
	govIDObject, err := s.storage.UploadPrivate(ctx, fmt.Sprintf("agents/%s/gov-id%s", agent.ID, govID.Ext()), govID)
	if err != nil {
		return nil, nil, err
	}
	agent.PhotoURL = &photoURL
	agent.GovIDURL = &govIDObject

	if err := s.agents.CreateWithUser(ctx, user, agent); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, nil, ErrMobileTaken
		}
		return nil, nil, fmt.Errorf("failed to create field agent: %w", err)
	}

	if email != nil {
		if err := s.notifier.AgentWelcome(ctx, *email, agent.FirstName, agent.AgentCode, agent.City); err != nil {
			log.Printf("Failed to queue welcome mail for agent %s: %v", agent.ID, err)
		}
	}

	tokens, err := s.auth.GenerateTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	created, err := s.agents.GetByID(ctx, agent.ID)
	if err != nil {
		return nil, nil, err
	}
	return created, tokens, nil
}

func (s *agentService) Login(ctx context.Context, req *AgentLoginRequest) (*models.TokenResponse, error) {
	mobile := strings.TrimSpace(req.Mobile)
	if mobile == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByMobile(ctx, mobile)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Role != models.RoleAgent || !s.auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	return s.auth.GenerateTokens(ctx, user)
}

// ResetPassword is the forgot-password flow: mobile plus OTP.
func (s *agentService) ResetPassword(ctx context.Context, req *AgentPasswordResetRequest) error {
	mobile := strings.TrimSpace(req.Mobile)
	user, err := s.users.GetByMobile(ctx, mobile)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInvalidOTP
		}
		return err
	}
	if user.Role != models.RoleAgent {
		return ErrInvalidOTP
	}
	if err := CheckPasswordPolicy(req.NewPassword); err != nil {
		return err
	}
	if err := s.consumeOTP(ctx, mobile, req.OTP); err != nil {
		return err
	}

	hash, err := s.auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, hash, false)
}

func (s *agentService) ByUserID(ctx context.Context, userID uuid.UUID) (*models.FieldAgent, error) {
	return s.agents.GetByUserID(ctx, userID)
}

func (s *agentService) Profile(ctx context.Context, agent *models.FieldAgent) (*AgentProfile, error) {
	profile := &AgentProfile{FieldAgent: agent}
	if agent.GovIDURL != nil && s.storage != nil {
		link, err := s.storage.GetPresignedURL(ctx, *agent.GovIDURL, govIDLinkTTL)
		if err != nil {
			log.Printf("Failed to sign government ID link for agent %s: %v", agent.ID, err)
		} else {
			profile.GovIDLink = link
		}
	}
	return profile, nil
}

func (s *agentService) UpdateProfile(ctx context.Context, agent *models.FieldAgent, req *AgentProfileRequest) (*models.FieldAgent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	updated := *agent
	updated.Email = common.OptionalString(strings.ToLower(common.SafeString(req.Email)))
	updated.AltPhone = common.OptionalString(common.SafeString(req.AltPhone))
	updated.EmergencyContact = common.OptionalString(common.SafeString(req.EmergencyContact))
	updated.Address = common.OptionalString(common.SafeString(req.Address))
	updated.City = strings.TrimSpace(req.City)

	if err := s.agents.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return s.agents.GetByID(ctx, agent.ID)
}

// Payments lists payouts with totals per payout status.
func (s *agentService) Payments(ctx context.Context, agent *models.FieldAgent) (*models.AgentPaymentSummary, error) {
	payments, err := s.payments.ListByAgent(ctx, agent.ID)
	if err != nil {
		return nil, err
	}
	summary := &models.AgentPaymentSummary{
		Payments: payments,
		Totals: map[string]float64{
			models.AgentPaymentPending: 0,
			models.AgentPaymentPaid:    0,
		},
	}
	for _, p := range payments {
		summary.Totals[p.Status] += p.Amount
	}
	return summary, nil
}

func (s *agentService) consumeOTP(ctx context.Context, mobile, otp string) error {
	if s.limited(ctx, "otp-verify:"+mobile, otpAttemptLimit) {
		return ErrTooManyAttempts
	}
	stored, err := s.cacheSvc.GetString(ctx, otpKey(mobile))
	if err != nil {
		return fmt.Errorf("failed to read OTP: %w", err)
	}
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(otp))) != 1 {
		return ErrInvalidOTP
	}
	if err := s.cacheSvc.Delete(ctx, otpKey(mobile)); err != nil {
		log.Printf("Failed to delete used OTP: %v", err)
	}
	return nil
}

// limited counts one attempt against key. Limiter failures count as limited.
func (s *agentService) limited(ctx context.Context, key string, limit int) bool {
	limited, err := s.cacheSvc.IsRateLimited(ctx, key, limit, s.otpTTL)
	if err != nil {
		log.Printf("OTP rate limiter unavailable: %v", err)
		return true
	}
	return limited
}

func (s *agentService) generateAgentCode(ctx context.Context, city string) (string, error) {
	prefix := CityPrefix(city)
	for attempt := 0; attempt < 5; attempt++ {
		code := fmt.Sprintf("EMP-%s-%s", prefix, random.String(6, random.Numeric))
		exists, err := s.agents.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("could not allocate a unique agent code")
}

// CityPrefix returns the first three letters of city, upper-cased and
// padded with X.
func CityPrefix(city string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(city) {
		if unicode.IsLetter(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
			if b.Len() == 3 {
				break
			}
		}
	}
	for b.Len() < 3 {
		b.WriteByte('X')
	}
	return b.String()
}

func otpKey(mobile string) string {
	return fmt.Sprintf("genzip:otp:%s", mobile)
}
