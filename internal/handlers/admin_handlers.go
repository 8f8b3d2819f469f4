package handlers

import (
	"errors"
	"net/http"

	"genzip/internal/analytics"
	"genzip/internal/common"
	"genzip/internal/services"

	"github.com/labstack/echo/v4"
)

// AdminHandlers serves the company admin workspace: HR management, the
// dashboard, company settings, enquiries and subscriptions.
type AdminHandlers struct {
	accountService      services.AccountService
	analyticsService    *analytics.AnalyticsService
	enquiryService      services.EnquiryService
	subscriptionService services.SubscriptionService
}

// NewAdminHandlers creates a new admin handlers instance
func NewAdminHandlers(accountService services.AccountService, analyticsService *analytics.AnalyticsService,
	enquiryService services.EnquiryService, subscriptionService services.SubscriptionService) *AdminHandlers {
	return &AdminHandlers{
		accountService:      accountService,
		analyticsService:    analyticsService,
		enquiryService:      enquiryService,
		subscriptionService: subscriptionService,
	}
}

// CreateHR handles POST /admin/hrs. The temporary password is only returned
// in this response.
func (h *AdminHandlers) CreateHR(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.HRRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	created, err := h.accountService.CreateHR(c.Request().Context(), actor, &req)
	if err != nil {
		return respondError(c, err, "HR")
	}
	return c.JSON(http.StatusCreated, created)
}

// ListHRs handles GET /admin/hrs
func (h *AdminHandlers) ListHRs(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := common.Pagination(c)
	hrs, err := h.accountService.ListHRs(c.Request().Context(), actor, limit, offset)
	if err != nil {
		return respondError(c, err, "HR")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"hrs":    hrs,
		"limit":  limit,
		"offset": offset,
	})
}

// ActivateHR handles POST /admin/hrs/:id/activate
func (h *AdminHandlers) ActivateHR(c echo.Context) error {
	return h.setHRActive(c, true)
}

// DeactivateHR handles POST /admin/hrs/:id/deactivate
func (h *AdminHandlers) DeactivateHR(c echo.Context) error {
	return h.setHRActive(c, false)
}

func (h *AdminHandlers) setHRActive(c echo.Context, active bool) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "HR")
	}

	if err := h.accountService.SetHRActive(c.Request().Context(), actor, id, active); err != nil {
		return respondError(c, err, "HR")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":        id,
		"is_active": active,
	})
}

// Dashboard handles GET /admin/dashboard. ?refresh=true bypasses the cache.
func (h *AdminHandlers) Dashboard(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	ctx := c.Request().Context()

	fetch := h.analyticsService.GetDashboard
	if c.QueryParam("refresh") == "true" {
		fetch = h.analyticsService.RefreshDashboard
	}
	dashboard, err := fetch(ctx, actor.CompanyID)
	if err != nil {
		return respondError(c, err, "Dashboard")
	}
	return c.JSON(http.StatusOK, dashboard)
}

// GetSettings handles GET /admin/settings
func (h *AdminHandlers) GetSettings(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	company, err := h.accountService.GetCompany(c.Request().Context(), actor)
	if err != nil {
		return respondError(c, err, "Company")
	}
	return c.JSON(http.StatusOK, company)
}

// UpdateSettings handles PUT /admin/settings
func (h *AdminHandlers) UpdateSettings(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.CompanySettingsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	company, err := h.accountService.UpdateCompany(c.Request().Context(), actor, &req)
	if err != nil {
		return respondError(c, err, "Company")
	}
	return c.JSON(http.StatusOK, company)
}

// ListEnquiries handles GET /admin/enquiries
func (h *AdminHandlers) ListEnquiries(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := common.Pagination(c)
	enquiries, err := h.enquiryService.List(c.Request().Context(), actor.CompanyID, limit, offset)
	if err != nil {
		return respondError(c, err, "Enquiry")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"enquiries": enquiries,
		"limit":     limit,
		"offset":    offset,
	})
}

// ListSubscriptions handles GET /admin/subscriptions
func (h *AdminHandlers) ListSubscriptions(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	ctx := c.Request().Context()

	limit, offset := common.Pagination(c)
	subscriptions, err := h.subscriptionService.List(ctx, actor.CompanyID, limit, offset)
	if err != nil {
		return respondError(c, err, "Subscription")
	}

	active, err := h.subscriptionService.Active(ctx, actor.CompanyID)
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		return respondError(c, err, "Subscription")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"active":        active,
		"subscriptions": subscriptions,
		"limit":         limit,
		"offset":        offset,
	})
}

// ListPlans handles GET /plans
func (h *AdminHandlers) ListPlans(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"plans": h.subscriptionService.Plans(),
	})
}

// CurrentHR handles GET /hr/profile
func (h *AdminHandlers) CurrentHR(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	hr, err := h.accountService.CurrentHR(c.Request().Context(), actor)
	if err != nil {
		return respondError(c, err, "HR")
	}
	return c.JSON(http.StatusOK, hr)
}
