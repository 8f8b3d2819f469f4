package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"genzip/internal/config"
	"genzip/internal/models"
	"genzip/internal/repositories"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// Metadata keys attached to every checkout.
const (
	metaKind        = "kind"
	metaCompanyID   = "company_id"
	metaInterviewID = "interview_id"
	metaPlan        = "plan"
	metaHREmail     = "hr_email"

	kindInterview    = "interview"
	kindSubscription = "subscription"
)

type CheckoutSessionRequest struct {
	InterviewID string   `json:"interview_id"`
	Amount      *float64 `json:"amount"`
	HREmail     string   `json:"hr_email"`
}

func (r *CheckoutSessionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.InterviewID, validation.Required, is.UUID),
		validation.Field(&r.Amount, validation.NilOrNotEmpty, validation.Min(0.01)),
		validation.Field(&r.HREmail, is.EmailFormat),
	)
}

type SubscriptionSessionRequest struct {
	PlanType string `json:"plan_type"`
	HREmail  string `json:"hr_email"`
}

// ConfirmPaymentRequest carries the success-redirect query parameters.
type ConfirmPaymentRequest struct {
	Plan        string `json:"plan" query:"plan"`
	InterviewID string `json:"interview_id" query:"interviewId"`
	SessionID   string `json:"session_id" query:"session_id"`
	PaymentID   string `json:"payment_id" query:"razorpay_payment_id"`
	Signature   string `json:"signature" query:"razorpay_signature"`
}

// PaymentConfirmation reports what a verified payment changed.
type PaymentConfirmation struct {
	Kind             string                `json:"kind"`
	Interview        *models.Interview     `json:"interview,omitempty"`
	Subscription     *models.Subscription  `json:"subscription,omitempty"`
	CreditsGranted   int                   `json:"credits_granted"`
	AlreadyProcessed bool                  `json:"already_processed"`
	Credits          *models.CreditSummary `json:"credits,omitempty"`
}

// PaymentService opens gateway checkouts and settles verified payments into
// the credit ledger.
type PaymentService interface {
	Provider() string
	CreateCheckoutSession(ctx context.Context, actor Actor, req *CheckoutSessionRequest) (*CheckoutSession, error)
	CreateSubscriptionSession(ctx context.Context, actor Actor, req *SubscriptionSessionRequest) (*CheckoutSession, error)
	Confirm(ctx context.Context, actor Actor, req *ConfirmPaymentRequest) (*PaymentConfirmation, error)
	HandleWebhook(ctx context.Context, provider string, payload []byte, signature string) error
}

type paymentService struct {
	gateway       PaymentGateway
	interviews    repositories.InterviewRepository
	credits       CreditService
	subscriptions SubscriptionService
	notifier      NotificationService
	catalog       *config.Catalog
	publicURL     string
}

func NewPaymentService(gateway PaymentGateway, interviews repositories.InterviewRepository, credits CreditService,
	subscriptions SubscriptionService, notifier NotificationService, catalog *config.Catalog, publicURL string) PaymentService {
	return &paymentService{
		gateway:       gateway,
		interviews:    interviews,
		credits:       credits,
		subscriptions: subscriptions,
		notifier:      notifier,
		catalog:       catalog,
		publicURL:     strings.TrimRight(publicURL, "/"),
	}
}

func (s *paymentService) Provider() string {
	return s.gateway.Name()
}

// CreateCheckoutSession opens a one-time checkout for an unpaid interview.
func (s *paymentService) CreateCheckoutSession(ctx context.Context, actor Actor, req *CheckoutSessionRequest) (*CheckoutSession, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	interviewID := uuid.MustParse(req.InterviewID)
	iv, err := s.interviews.GetByID(ctx, actor.CompanyID, interviewID)
	if err != nil {
		return nil, err
	}
	if iv.Paid() {
		return nil, ErrAlreadyPaid
	}
	if !iv.Open() {
		return nil, ErrInterviewLocked
	}

	amount := s.catalog.PayPerInterviewPrice
	if req.Amount != nil {
		if *req.Amount < s.catalog.PayPerInterviewPrice {
			return nil, validation.Errors{"amount": fmt.Errorf("must be at least %.2f", s.catalog.PayPerInterviewPrice)}
		}
		amount = *req.Amount
	}

	q := url.Values{}
	q.Set("interviewId", iv.ID.String())
	return s.gateway.CreateCheckoutSession(ctx, CheckoutRequest{
		Mode:          CheckoutPayment,
		Description:   "Interview verification",
		Amount:        amount,
		Currency:      s.catalog.Currency,
		CustomerEmail: req.HREmail,
		SuccessURL:    s.successURL(q),
		CancelURL:     s.publicURL + "/payment-cancelled",
		Metadata: map[string]string{
			metaKind:        kindInterview,
			metaCompanyID:   actor.CompanyID.String(),
			metaInterviewID: iv.ID.String(),
			metaHREmail:     req.HREmail,
		},
	})
}

func (s *paymentService) CreateSubscriptionSession(ctx context.Context, actor Actor, req *SubscriptionSessionRequest) (*CheckoutSession, error) {
	plan, err := s.subscriptions.Plan(req.PlanType)
	if err != nil {
		return nil, err
	}
	if req.HREmail != "" {
		if err := validation.Validate(req.HREmail, is.EmailFormat); err != nil {
			return nil, validation.Errors{"hr_email": err}
		}
	}

	q := url.Values{}
	q.Set("plan", plan.Name)
	return s.gateway.CreateCheckoutSession(ctx, CheckoutRequest{
		Mode:          CheckoutSubscription,
		Description:   fmt.Sprintf("GenZip %s plan", plan.Name),
		Amount:        plan.Price,
		Currency:      s.catalog.Currency,
		PriceID:       plan.PriceID,
		CustomerEmail: req.HREmail,
		SuccessURL:    s.successURL(q),
		CancelURL:     s.publicURL + "/payment-cancelled",
		Metadata: map[string]string{
			metaKind:      kindSubscription,
			metaCompanyID: actor.CompanyID.String(),
			metaPlan:      plan.Name,
			metaHREmail:   req.HREmail,
		},
	})
}

// Confirm verifies the payment behind a success redirect and settles it.
// Replaying the same redirect is harmless.
func (s *paymentService) Confirm(ctx context.Context, actor Actor, req *ConfirmPaymentRequest) (*PaymentConfirmation, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, validation.Errors{"session_id": validation.ErrRequired}
	}
	if req.Plan == "" && req.InterviewID == "" {
		return nil, validation.Errors{"plan": errors.New("plan or interview_id is required")}
	}

	paid, err := s.gateway.VerifyPayment(ctx, PaymentProof{
		SessionID: strings.TrimSpace(req.SessionID),
		PaymentID: strings.TrimSpace(req.PaymentID),
		Signature: strings.TrimSpace(req.Signature),
	})
	if err != nil {
		return nil, err
	}

	if company := paid.Metadata[metaCompanyID]; company != "" && company != actor.CompanyID.String() {
		return nil, ErrForbidden
	}
	if paid.Metadata[metaKind] == "" {
		// Sessions created outside this service carry no metadata; fall back
		// to the redirect parameters.
		paid.Metadata = fillMetadata(paid.Metadata, req)
	}
	if req.InterviewID != "" && paid.Metadata[metaInterviewID] != req.InterviewID {
		return nil, ErrPaymentNotVerified
	}
	if req.Plan != "" && !strings.EqualFold(paid.Metadata[metaPlan], req.Plan) {
		return nil, ErrPaymentNotVerified
	}

	return s.settle(ctx, actor.CompanyID, paid)
}

func (s *paymentService) HandleWebhook(ctx context.Context, provider string, payload []byte, signature string) error {
	if provider != s.gateway.Name() {
		return ErrUnsupportedProvider
	}

	paid, err := s.gateway.ParseWebhook(ctx, payload, signature)
	if err != nil {
		return err
	}
	if paid == nil {
		return nil
	}

	companyID, err := uuid.Parse(paid.Metadata[metaCompanyID])
	if err != nil {
		log.Printf("Ignoring %s webhook for session %s: no company metadata", provider, paid.SessionID)
		return nil
	}

	result, err := s.settle(ctx, companyID, paid)
	if err != nil {
		return err
	}
	log.Printf("Settled %s payment %s for company %s (kind=%s, replay=%t)", provider, paid.SessionID, companyID, result.Kind, result.AlreadyProcessed)
	return nil
}

func (s *paymentService) settle(ctx context.Context, companyID uuid.UUID, paid *VerifiedPayment) (*PaymentConfirmation, error) {
	var (
		result *PaymentConfirmation
		err    error
	)
	switch paid.Metadata[metaKind] {
	case kindInterview:
		interviewID, parseErr := uuid.Parse(paid.Metadata[metaInterviewID])
		if parseErr != nil {
			return nil, ErrPaymentNotVerified
		}
		result, err = s.settleInterview(ctx, companyID, interviewID, paid)
	case kindSubscription:
		result, err = s.settleSubscription(ctx, companyID, paid)
	default:
		return nil, ErrPaymentNotVerified
	}
	if err != nil {
		return nil, err
	}

	if summary, err := s.credits.Summary(ctx, companyID); err != nil {
		log.Printf("Failed to load credits for company %s: %v", companyID, err)
	} else {
		result.Credits = summary
	}
	return result, nil
}

// settleInterview grants one credit for the interview, consumes it and marks
// the interview paid.
func (s *paymentService) settleInterview(ctx context.Context, companyID, interviewID uuid.UUID, paid *VerifiedPayment) (*PaymentConfirmation, error) {
	iv, err := s.interviews.GetByID(ctx, companyID, interviewID)
	if errors.Is(err, repositories.ErrNotFound) {
		// Deleted after checkout: keep the credit in the company pool.
		iv = nil
	} else if err != nil {
		return nil, err
	}

	key := "interview-payment:" + interviewID.String()
	mode := paid.Provider
	_, created, err := s.credits.Grant(ctx, models.GrantRequest{
		CompanyID:      companyID,
		Credits:        1,
		Reason:         fmt.Sprintf("PayPerInterview - %.2f", paid.Amount),
		AmountPaid:     paid.Amount,
		PaymentMode:    &mode,
		ReferenceID:    &interviewID,
		IdempotencyKey: &key,
	})
	if err != nil {
		return nil, err
	}

	result := &PaymentConfirmation{Kind: kindInterview, Interview: iv, AlreadyProcessed: !created}
	if created {
		result.CreditsGranted = 1
	}

	if iv == nil {
		log.Printf("Interview %s was deleted before its %s payment %s settled; credit left unused", interviewID, paid.Provider, paid.SessionID)
	} else if !iv.Paid() {
		if _, err := s.credits.Consume(ctx, companyID, interviewID); err != nil && !errors.Is(err, repositories.ErrCreditAlreadyUsed) {
			return nil, err
		}
		updated, err := s.interviews.MarkPaid(ctx, interviewID)
		if err != nil {
			return nil, fmt.Errorf("failed to mark interview paid: %w", err)
		}
		result.Interview = updated
	}

	if created {
		s.receipt(ctx, paid, "Interview verification", 1)
	}
	return result, nil
}

// settleSubscription activates the plan and grants its credits plus bonus
// once per checkout session.
func (s *paymentService) settleSubscription(ctx context.Context, companyID uuid.UUID, paid *VerifiedPayment) (*PaymentConfirmation, error) {
	plan, err := s.subscriptions.Plan(paid.Metadata[metaPlan])
	if err != nil {
		return nil, err
	}
	if paid.Amount > 0 && paid.Amount+0.5 < plan.Price {
		log.Printf("Payment %s of %.2f is below %s plan price %.2f", paid.SessionID, paid.Amount, plan.Name, plan.Price)
		return nil, ErrPaymentNotVerified
	}

	sub, _, err := s.subscriptions.Activate(ctx, companyID, plan, paid)
	if err != nil {
		return nil, err
	}

	key := "checkout:" + paid.SessionID
	mode := paid.Provider
	_, created, err := s.credits.Grant(ctx, models.GrantRequest{
		CompanyID:      companyID,
		Credits:        plan.TotalCredits(),
		Reason:         fmt.Sprintf("Subscription - %s", plan.Name),
		AmountPaid:     paid.Amount,
		PaymentMode:    &mode,
		IdempotencyKey: &key,
	})
	if err != nil {
		return nil, err
	}

	result := &PaymentConfirmation{Kind: kindSubscription, Subscription: sub, AlreadyProcessed: !created}
	if created {
		result.CreditsGranted = plan.TotalCredits()
		s.receipt(ctx, paid, fmt.Sprintf("GenZip %s plan", plan.Name), plan.TotalCredits())
	}
	return result, nil
}

func (s *paymentService) receipt(ctx context.Context, paid *VerifiedPayment, description string, credits int) {
	email := paid.Metadata[metaHREmail]
	if email == "" {
		return
	}
	if err := s.notifier.PaymentReceived(ctx, email, description, paid.Amount, credits, paid.SessionID); err != nil {
		log.Printf("Failed to queue payment receipt for %s: %v", paid.SessionID, err)
	}
}

func (s *paymentService) successURL(q url.Values) string {
	// The placeholder is substituted by Stripe and must stay unescaped.
	return s.publicURL + "/payment-success?" + q.Encode() + "&session_id={CHECKOUT_SESSION_ID}"
}

func fillMetadata(meta map[string]string, req *ConfirmPaymentRequest) map[string]string {
	out := make(map[string]string, len(meta)+2)
	for k, v := range meta {
		out[k] = v
	}
	if req.InterviewID != "" {
		out[metaKind] = kindInterview
		out[metaInterviewID] = req.InterviewID
	} else {
		out[metaKind] = kindSubscription
		out[metaPlan] = req.Plan
	}
	return out
}
