package handlers

import (
	"net/http"
	"strings"

	"genzip/internal/common"
	"genzip/internal/models"
	"genzip/internal/services"

	"github.com/labstack/echo/v4"
)

// InterviewHandlers serves the HR and admin side of the interview lifecycle
type InterviewHandlers struct {
	interviewService services.InterviewService
}

// NewInterviewHandlers creates a new interview handlers instance
func NewInterviewHandlers(interviewService services.InterviewService) *InterviewHandlers {
	return &InterviewHandlers{
		interviewService: interviewService,
	}
}

// ScheduleInterview handles POST /interviews. It answers 201 when a credit
// paid for the interview and 202 when a one-time payment is still required.
func (h *InterviewHandlers) ScheduleInterview(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.ScheduleRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	result, err := h.interviewService.Schedule(c.Request().Context(), actor, &req)
	if err != nil {
		return respondError(c, err, "Interview")
	}

	status := http.StatusCreated
	if result.PaymentRequired {
		status = http.StatusAccepted
	}
	return c.JSON(status, result)
}

// UpdateInterview handles PUT /interviews/:id
func (h *InterviewHandlers) UpdateInterview(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Interview")
	}

	var req services.ScheduleRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	iv, err := h.interviewService.Update(c.Request().Context(), actor, id, &req)
	if err != nil {
		return respondError(c, err, "Interview")
	}
	return c.JSON(http.StatusOK, iv)
}

// DeleteInterview handles DELETE /interviews/:id
func (h *InterviewHandlers) DeleteInterview(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Interview")
	}

	if err := h.interviewService.Delete(c.Request().Context(), actor, id); err != nil {
		return respondError(c, err, "Interview")
	}
	return c.NoContent(http.StatusNoContent)
}

// CancelInterview handles POST /interviews/:id/cancel
func (h *InterviewHandlers) CancelInterview(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Interview")
	}

	iv, err := h.interviewService.Cancel(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err, "Interview")
	}
	return c.JSON(http.StatusOK, iv)
}

// PayWithCredit handles POST /interviews/:id/pay-with-credit
func (h *InterviewHandlers) PayWithCredit(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Interview")
	}

	iv, err := h.interviewService.PayWithCredit(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err, "Interview")
	}
	return c.JSON(http.StatusOK, iv)
}

// GetInterview handles GET /interviews/:id
func (h *InterviewHandlers) GetInterview(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Interview")
	}

	view, err := h.interviewService.Get(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err, "Interview")
	}
	return c.JSON(http.StatusOK, view)
}

// ListInterviews handles GET /interviews?status=&search=&limit=&offset=
func (h *InterviewHandlers) ListInterviews(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := common.Pagination(c)
	filter := models.InterviewFilter{
		Search: c.QueryParam("search"),
		Limit:  limit,
		Offset: offset,
	}
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		s := models.InterviewStatus(status)
		filter.Status = &s
	}

	interviews, err := h.interviewService.List(c.Request().Context(), actor, filter)
	if err != nil {
		return respondError(c, err, "Interview")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"interviews": interviews,
		"limit":      limit,
		"offset":     offset,
	})
}
