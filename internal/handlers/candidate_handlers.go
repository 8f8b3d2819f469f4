package handlers

import (
	"net/http"

	"genzip/internal/common"
	"genzip/internal/services"

	"github.com/labstack/echo/v4"
)

// CandidateHandlers handles HTTP requests for candidates
type CandidateHandlers struct {
	candidateService services.CandidateService
}

// NewCandidateHandlers creates a new candidate handlers instance
func NewCandidateHandlers(candidateService services.CandidateService) *CandidateHandlers {
	return &CandidateHandlers{
		candidateService: candidateService,
	}
}

// CreateCandidate handles POST /candidates
func (h *CandidateHandlers) CreateCandidate(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.CandidateRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	candidate, err := h.candidateService.Create(c.Request().Context(), actor, &req)
	if err != nil {
		return respondError(c, err, "Candidate")
	}

	return c.JSON(http.StatusCreated, candidate)
}

// GetCandidate handles GET /candidates/:id
func (h *CandidateHandlers) GetCandidate(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Candidate")
	}

	candidate, err := h.candidateService.GetByID(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err, "Candidate")
	}

	return c.JSON(http.StatusOK, candidate)
}

// UpdateCandidate handles PUT /candidates/:id
func (h *CandidateHandlers) UpdateCandidate(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Candidate")
	}

	var req services.CandidateRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	candidate, err := h.candidateService.Update(c.Request().Context(), actor, id, &req)
	if err != nil {
		return respondError(c, err, "Candidate")
	}

	return c.JSON(http.StatusOK, candidate)
}

// DeleteCandidate handles DELETE /candidates/:id
func (h *CandidateHandlers) DeleteCandidate(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Candidate")
	}

	if err := h.candidateService.Delete(c.Request().Context(), actor, id); err != nil {
		return respondError(c, err, "Candidate")
	}

	return c.NoContent(http.StatusNoContent)
}

// ListCandidates handles GET /candidates
func (h *CandidateHandlers) ListCandidates(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := common.Pagination(c)
	candidates, err := h.candidateService.List(c.Request().Context(), actor, limit, offset)
	if err != nil {
		return respondError(c, err, "Candidate")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"candidates":   candidates,
		"limit":  limit,
		"offset": offset,
	})
}
