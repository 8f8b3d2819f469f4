package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"github.com/tidwall/gjson"
)

type stripeGateway struct {
	api           *client.API
	webhookSecret string
}

// NewStripeGateway creates a gateway backed by Stripe Checkout.
func NewStripeGateway(secretKey, webhookSecret string) PaymentGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &stripeGateway{api: api, webhookSecret: webhookSecret}
}

func (g *stripeGateway) Name() string {
	return "stripe"
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}
	params.Context = ctx
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}

	if req.Mode == CheckoutSubscription && req.PriceID != "" {
		params.Mode = stripe.String(string(stripe.CheckoutSessionModeSubscription))
		params.LineItems = []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(req.PriceID),
			Quantity: stripe.Int64(1),
		}}
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: req.Metadata,
		}
	} else {
		params.Mode = stripe.String(string(stripe.CheckoutSessionModePayment))
		params.LineItems = []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(strings.ToLower(req.Currency)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(req.Description),
				},
				UnitAmount: stripe.Int64(toMinorUnits(req.Amount)),
			},
			Quantity: stripe.Int64(1),
		}}
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL, Provider: g.Name()}, nil
}

func (g *stripeGateway) VerifyPayment(ctx context.Context, proof PaymentProof) (*VerifiedPayment, error) {
	if proof.SessionID == "" {
		return nil, ErrPaymentNotVerified
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := g.api.CheckoutSessions.Get(proof.SessionID, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentNotVerified, err)
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil, ErrPaymentNotVerified
	}
	return &VerifiedPayment{
		Provider:  g.Name(),
		SessionID: sess.ID,
		Amount:    fromMinorUnits(sess.AmountTotal),
		Metadata:  sess.Metadata,
	}, nil
}

func (g *stripeGateway) ParseWebhook(ctx context.Context, payload []byte, signature string) (*VerifiedPayment, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentNotVerified, err)
	}
	if string(event.Type) != "checkout.session.completed" {
		return nil, nil
	}

	obj := gjson.ParseBytes(event.Data.Raw)
	if obj.Get("payment_status").String() != "paid" {
		return nil, nil
	}

	metadata := make(map[string]string)
	obj.Get("metadata").ForEach(func(key, value gjson.Result) bool {
		metadata[key.String()] = value.String()
		return true
	})

	return &VerifiedPayment{
		Provider:  g.Name(),
		SessionID: obj.Get("id").String(),
		PaymentID: obj.Get("payment_intent").String(),
		Amount:    fromMinorUnits(obj.Get("amount_total").Int()),
		Metadata:  metadata,
	}, nil
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func fromMinorUnits(amount int64) float64 {
	return float64(amount) / 100
}
