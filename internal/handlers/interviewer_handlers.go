package handlers

import (
	"net/http"

	"genzip/internal/common"
	"genzip/internal/services"

	"github.com/labstack/echo/v4"
)

// InterviewerHandlers handles HTTP requests for interviewers
type InterviewerHandlers struct {
	interviewerService services.InterviewerService
}

// NewInterviewerHandlers creates a new interviewer handlers instance
func NewInterviewerHandlers(interviewerService services.InterviewerService) *InterviewerHandlers {
	return &InterviewerHandlers{
		interviewerService: interviewerService,
	}
}

// CreateInterviewer handles POST /interviewers
func (h *InterviewerHandlers) CreateInterviewer(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.InterviewerRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	interviewer, err := h.interviewerService.Create(c.Request().Context(), actor, &req)
	if err != nil {
		return respondError(c, err, "Interviewer")
	}

	return c.JSON(http.StatusCreated, interviewer)
}

// GetInterviewer handles GET /interviewers/:id
func (h *InterviewerHandlers) GetInterviewer(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Interviewer")
	}

	interviewer, err := h.interviewerService.GetByID(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err, "Interviewer")
	}

	return c.JSON(http.StatusOK, interviewer)
}

// UpdateInterviewer handles PUT /interviewers/:id
func (h *InterviewerHandlers) UpdateInterviewer(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Interviewer")
	}

	var req services.InterviewerRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	interviewer, err := h.interviewerService.Update(c.Request().Context(), actor, id, &req)
	if err != nil {
		return respondError(c, err, "Interviewer")
	}

	return c.JSON(http.StatusOK, interviewer)
}

// DeleteInterviewer handles DELETE /interviewers/:id
func (h *InterviewerHandlers) DeleteInterviewer(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Interviewer")
	}

	if err := h.interviewerService.Delete(c.Request().Context(), actor, id); err != nil {
		return respondError(c, err, "Interviewer")
	}

	return c.NoContent(http.StatusNoContent)
}

// ListInterviewers handles GET /interviewers
func (h *InterviewerHandlers) ListInterviewers(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := common.Pagination(c)
	interviewers, err := h.interviewerService.List(c.Request().Context(), actor, limit, offset)
	if err != nil {
		return respondError(c, err, "Interviewer")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"interviewers":   interviewers,
		"limit":  limit,
		"offset": offset,
	})
}
