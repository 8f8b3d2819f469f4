package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"genzip/internal/services"

	"github.com/labstack/echo/v4"
)

const maxWebhookBody = 1 << 20

// WebhookHandlers receives payment gateway webhooks
type WebhookHandlers struct {
	paymentService services.PaymentService
}

// NewWebhookHandlers creates a new webhook handlers instance
func NewWebhookHandlers(paymentService services.PaymentService) *WebhookHandlers {
	return &WebhookHandlers{
		paymentService: paymentService,
	}
}

// StripeWebhook handles POST /webhooks/stripe
func (h *WebhookHandlers) StripeWebhook(c echo.Context) error {
	return h.handle(c, "stripe", "Stripe-Signature")
}

// RazorpayWebhook handles POST /webhooks/razorpay
func (h *WebhookHandlers) RazorpayWebhook(c echo.Context) error {
	return h.handle(c, "razorpay", "X-Razorpay-Signature")
}

func (h *WebhookHandlers) handle(c echo.Context, provider, signatureHeader string) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read request body")
	}

	signature := c.Request().Header.Get(signatureHeader)
	if signature == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing webhook signature")
	}

	err = h.paymentService.HandleWebhook(c.Request().Context(), provider, body, signature)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]string{"status": "success"})
	case errors.Is(err, services.ErrUnsupportedProvider):
		return echo.NewHTTPError(http.StatusNotFound, "Payment provider not enabled")
	case errors.Is(err, services.ErrPaymentNotVerified):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid webhook signature")
	}

	// Non-2xx makes the gateway retry delivery.
	log.Printf("Failed to process %s webhook: %v", provider, err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process webhook")
}
