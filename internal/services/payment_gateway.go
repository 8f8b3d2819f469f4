package services

import "context"

// Checkout modes
const (
	CheckoutPayment      = "payment"
	CheckoutSubscription = "subscription"
)

// CheckoutRequest describes a hosted checkout to open with the gateway.
type CheckoutRequest struct {
	Mode          string
	Description   string
	Amount        float64 // major currency units
	Currency      string
	PriceID       string // gateway price for subscription mode, optional
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

type CheckoutSession struct {
	ID       string `json:"id"`
	URL      string `json:"url,omitempty"`
	Provider string `json:"provider"`
}

// PaymentProof is what the browser brings back from the gateway redirect.
type PaymentProof struct {
	SessionID string
	PaymentID string
	Signature string
}

// VerifiedPayment is a payment the gateway confirmed as paid.
type VerifiedPayment struct {
	Provider  string
	SessionID string
	PaymentID string
	Amount    float64
	Metadata  map[string]string
}

// PaymentGateway abstracts the hosted checkout providers.
type PaymentGateway interface {
	Name() string
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	VerifyPayment(ctx context.Context, proof PaymentProof) (*VerifiedPayment, error)
	// ParseWebhook verifies a webhook delivery. It returns nil without error
	// for event types that do not complete a payment.
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*VerifiedPayment, error)
}
