package handlers

import (
	"net/http"

	"genzip/internal/common"
	"genzip/internal/services"

	"github.com/labstack/echo/v4"
)

// JobHandlers handles HTTP requests for job openings
type JobHandlers struct {
	jobService services.JobService
}

// NewJobHandlers creates a new job handlers instance
func NewJobHandlers(jobService services.JobService) *JobHandlers {
	return &JobHandlers{
		jobService: jobService,
	}
}

// CreateJob handles POST /jobs
func (h *JobHandlers) CreateJob(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.JobRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	job, err := h.jobService.Create(c.Request().Context(), actor, &req)
	if err != nil {
		return respondError(c, err, "Job")
	}

	return c.JSON(http.StatusCreated, job)
}

// GetJob handles GET /jobs/:id
func (h *JobHandlers) GetJob(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Job")
	}

	job, err := h.jobService.GetByID(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err, "Job")
	}

	return c.JSON(http.StatusOK, job)
}

// UpdateJob handles PUT /jobs/:id
func (h *JobHandlers) UpdateJob(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Job")
	}

	var req services.JobRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	job, err := h.jobService.Update(c.Request().Context(), actor, id, &req)
	if err != nil {
		return respondError(c, err, "Job")
	}

	return c.JSON(http.StatusOK, job)
}

// DeleteJob handles DELETE /jobs/:id
func (h *JobHandlers) DeleteJob(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Job")
	}

	if err := h.jobService.Delete(c.Request().Context(), actor, id); err != nil {
		return respondError(c, err, "Job")
	}

	return c.NoContent(http.StatusNoContent)
}

// ListJobs handles GET /jobs
func (h *JobHandlers) ListJobs(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := common.Pagination(c)
	jobs, err := h.jobService.List(c.Request().Context(), actor, limit, offset)
	if err != nil {
		return respondError(c, err, "Job")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"jobs":   jobs,
		"limit":  limit,
		"offset": offset,
	})
}
