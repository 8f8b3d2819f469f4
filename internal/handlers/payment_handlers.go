package handlers

import (
	"errors"
	"log"
	"net/http"

	"genzip/internal/common"
	"genzip/internal/repositories"
	"genzip/internal/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"
)

// PaymentHandlers opens gateway checkouts, confirms redirects and exposes
// the credit ledger.
type PaymentHandlers struct {
	paymentService services.PaymentService
	creditService  services.CreditService
}

// NewPaymentHandlers creates a new payment handlers instance
func NewPaymentHandlers(paymentService services.PaymentService, creditService services.CreditService) *PaymentHandlers {
	return &PaymentHandlers{
		paymentService: paymentService,
		creditService:  creditService,
	}
}

// CreateCheckoutSession handles POST /payments/checkout-session and answers
// {id} or {error}.
func (h *PaymentHandlers) CreateCheckoutSession(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return checkoutError(c, http.StatusUnauthorized, "Unauthorized access")
	}

	var req services.CheckoutSessionRequest
	if err := c.Bind(&req); err != nil {
		return checkoutError(c, http.StatusBadRequest, "Invalid request format")
	}

	session, err := h.paymentService.CreateCheckoutSession(c.Request().Context(), actor, &req)
	if err != nil {
		return checkoutFailure(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// CreateSubscriptionSession handles POST /payments/subscription-session
func (h *PaymentHandlers) CreateSubscriptionSession(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return checkoutError(c, http.StatusUnauthorized, "Unauthorized access")
	}

	var req services.SubscriptionSessionRequest
	if err := c.Bind(&req); err != nil {
		return checkoutError(c, http.StatusBadRequest, "Invalid request format")
	}

	session, err := h.paymentService.CreateSubscriptionSession(c.Request().Context(), actor, &req)
	if err != nil {
		return checkoutFailure(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// ConfirmPayment handles the success redirect. Parameters may arrive in the
// query string, the JSON body or both.
func (h *PaymentHandlers) ConfirmPayment(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.ConfirmPaymentRequest
	binder := &echo.DefaultBinder{}
	if err := binder.BindQueryParams(c, &req); err != nil {
		return common.SendClientError(c, "Invalid query parameters")
	}
	if c.Request().ContentLength > 0 {
		if err := binder.BindBody(c, &req); err != nil {
			return common.SendClientError(c, "Invalid request format")
		}
	}

	result, err := h.paymentService.Confirm(c.Request().Context(), actor, &req)
	if err != nil {
		return respondError(c, err, "Interview")
	}
	return c.JSON(http.StatusOK, result)
}

// Credits handles GET /credits
func (h *PaymentHandlers) Credits(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	summary, err := h.creditService.Summary(c.Request().Context(), actor.CompanyID)
	if err != nil {
		return respondError(c, err, "Credits")
	}
	return c.JSON(http.StatusOK, summary)
}

// PaymentHistory handles GET /admin/payments, newest first
func (h *PaymentHandlers) PaymentHistory(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := common.Pagination(c)
	history, err := h.creditService.History(c.Request().Context(), actor.CompanyID, limit, offset)
	if err != nil {
		return respondError(c, err, "Payment")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"payments": history,
		"limit":    limit,
		"offset":   offset,
	})
}

func checkoutError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}

// checkoutFailure maps service errors onto the flat {error} body the
// checkout endpoints use.
func checkoutFailure(c echo.Context, err error) error {
	var fieldErrs validation.Errors
	switch {
	case errors.As(err, &fieldErrs):
		return checkoutError(c, http.StatusBadRequest, fieldErrs.Error())
	case errors.Is(err, services.ErrInvalidPlan):
		return checkoutError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, repositories.ErrNotFound):
		return checkoutError(c, http.StatusNotFound, "Interview not found")
	case errors.Is(err, services.ErrAlreadyPaid), errors.Is(err, services.ErrInterviewLocked):
		return checkoutError(c, http.StatusConflict, capitalize(err.Error()))
	}

	log.Printf("Failed to create checkout session: %v", err)
	return checkoutError(c, http.StatusBadGateway, "Failed to create checkout session")
}
