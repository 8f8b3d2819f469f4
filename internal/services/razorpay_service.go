package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

type razorpayService struct {
	apiKey        string
	apiSecret     string
	webhookSecret string
	baseURL       string
	http          *http.Client
}

type razorpayOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type razorpayOrder struct {
	ID         string            `json:"id"`
	Entity     string            `json:"entity"`
	Amount     int64             `json:"amount"`
	AmountPaid int64             `json:"amount_paid"`
	Currency   string            `json:"currency"`
	Status     string            `json:"status"`
	Notes      map[string]string `json:"notes"`
}

// NewRazorpayService creates a gateway backed by the Razorpay Orders API.
func NewRazorpayService(apiKey, apiSecret, webhookSecret string) PaymentGateway {
	return newRazorpayService(apiKey, apiSecret, webhookSecret, "https://api.razorpay.com/v1")
}

func newRazorpayService(apiKey, apiSecret, webhookSecret, baseURL string) *razorpayService {
	return &razorpayService{
		apiKey:        apiKey,
		apiSecret:     apiSecret,
		webhookSecret: webhookSecret,
		baseURL:       baseURL,
		http:          &http.Client{Timeout: 20 * time.Second},
	}
}

func (s *razorpayService) Name() string {
	return "razorpay"
}

// CreateCheckoutSession creates an order; the browser opens Razorpay
// Checkout with the returned order id. Razorpay has no hosted price
// objects, so subscriptions are charged as a one-off order for the plan.
func (s *razorpayService) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	receipt := req.Metadata["interview_id"]
	if receipt == "" {
		receipt = req.Metadata["plan"]
	}
	body := razorpayOrderRequest{
		Amount:   toMinorUnits(req.Amount),
		Currency: "INR",
		Receipt:  truncate(receipt, 40),
		Notes:    req.Metadata,
	}

	data, err := s.makeRequest(ctx, http.MethodPost, "/orders", body)
	if err != nil {
		return nil, err
	}

	var order razorpayOrder
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("failed to parse razorpay order: %w", err)
	}
	return &CheckoutSession{ID: order.ID, Provider: s.Name()}, nil
}

// VerifyPayment checks the checkout signature and confirms the order is paid.
func (s *razorpayService) VerifyPayment(ctx context.Context, proof PaymentProof) (*VerifiedPayment, error) {
	if proof.SessionID == "" || proof.PaymentID == "" || proof.Signature == "" {
		return nil, ErrPaymentNotVerified
	}
	expected := hmacHex(s.apiSecret, []byte(proof.SessionID+"|"+proof.PaymentID))
	if !hmac.Equal([]byte(expected), []byte(proof.Signature)) {
		return nil, ErrPaymentNotVerified
	}

	data, err := s.makeRequest(ctx, http.MethodGet, "/orders/"+proof.SessionID, nil)
	if err != nil {
		return nil, err
	}
	var order razorpayOrder
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("failed to parse razorpay order: %w", err)
	}
	if order.Status != "paid" {
		return nil, ErrPaymentNotVerified
	}

	return &VerifiedPayment{
		Provider:  s.Name(),
		SessionID: order.ID,
		PaymentID: proof.PaymentID,
		Amount:    fromMinorUnits(order.AmountPaid),
		Metadata:  order.Notes,
	}, nil
}

// ParseWebhook verifies the X-Razorpay-Signature HMAC and extracts captured payments.
func (s *razorpayService) ParseWebhook(ctx context.Context, payload []byte, signature string) (*VerifiedPayment, error) {
	expected := hmacHex(s.webhookSecret, payload)
	if signature == "" || !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, ErrPaymentNotVerified
	}

	event := gjson.GetBytes(payload, "event").String()
	if event != "payment.captured" && event != "order.paid" {
		return nil, nil
	}

	payment := gjson.GetBytes(payload, "payload.payment.entity")
	notes := gjson.GetBytes(payload, "payload.order.entity.notes")
	if !notes.Exists() {
		notes = payment.Get("notes")
	}
	metadata := make(map[string]string)
	notes.ForEach(func(key, value gjson.Result) bool {
		metadata[key.String()] = value.String()
		return true
	})

	return &VerifiedPayment{
		Provider:  s.Name(),
		SessionID: payment.Get("order_id").String(),
		PaymentID: payment.Get("id").String(),
		Amount:    fromMinorUnits(payment.Get("amount").Int()),
		Metadata:  metadata,
	}, nil
}

func (s *razorpayService) makeRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewBuffer(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(s.apiKey, s.apiSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("razorpay request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		msg := gjson.GetBytes(data, "error.description").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("razorpay %s %s: %d %s", method, path, resp.StatusCode, msg)
	}
	return data, nil
}

func hmacHex(secret string, data []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
