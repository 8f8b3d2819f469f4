package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"genzip/internal/common"
	"genzip/internal/middleware"
	"genzip/internal/models"
	"genzip/internal/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	maxImageSize = 5 << 20
	maxVideoSize = 500 << 20
)

type (
	agentStep func(ctx context.Context, agent *models.FieldAgent, id uuid.UUID) (*models.Interview, error)
	agentList func(ctx context.Context, agent *models.FieldAgent) ([]*models.InterviewView, error)
)

// AgentHandlers serves field agent accounts and their interview workspace
type AgentHandlers struct {
	agentService     services.AgentService
	interviewService services.InterviewService
}

// NewAgentHandlers creates a new agent handlers instance
func NewAgentHandlers(agentService services.AgentService, interviewService services.InterviewService) *AgentHandlers {
	return &AgentHandlers{
		agentService:     agentService,
		interviewService: interviewService,
	}
}

// RequestOTP handles POST /agents/otp
func (h *AgentHandlers) RequestOTP(c echo.Context) error {
	var req struct {
		Mobile string `json:"mobile"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := h.agentService.RequestOTP(c.Request().Context(), req.Mobile); err != nil {
		return respondError(c, err, "Field agent")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "OTP sent",
	})
}

// Signup handles POST /agents/signup as multipart form with photo and
// gov_id files
func (h *AgentHandlers) Signup(c echo.Context) error {
	var req services.AgentSignupRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	photo, closePhoto, err := formUpload(c, "photo", maxImageSize)
	if err != nil {
		return respondError(c, err, "Upload")
	}
	defer closePhoto()
	govID, closeGovID, err := formUpload(c, "gov_id", maxImageSize)
	if err != nil {
		return respondError(c, err, "Upload")
	}
	defer closeGovID()

	agent, tokens, err := h.agentService.Signup(c.Request().Context(), &req, photo, govID)
	if err != nil {
		return respondError(c, err, "Field agent")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"agent":  agent,
		"tokens": tokens,
	})
}

// Login handles POST /agents/login with mobile and password
func (h *AgentHandlers) Login(c echo.Context) error {
	var req services.AgentLoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	tokens, err := h.agentService.Login(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, err, "Field agent")
	}

	return c.JSON(http.StatusOK, tokens)
}

// ResetPassword handles POST /agents/password/reset
func (h *AgentHandlers) ResetPassword(c echo.Context) error {
	var req services.AgentPasswordResetRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := h.agentService.ResetPassword(c.Request().Context(), &req); err != nil {
		return respondError(c, err, "Field agent")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Password reset successfully",
	})
}

// Profile handles GET /agent/profile
func (h *AgentHandlers) Profile(c echo.Context) error {
	agent, ok := middleware.AgentFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	profile, err := h.agentService.Profile(c.Request().Context(), agent)
	if err != nil {
		return respondError(c, err, "Field agent")
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateProfile handles PUT /agent/profile
func (h *AgentHandlers) UpdateProfile(c echo.Context) error {
	agent, ok := middleware.AgentFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.AgentProfileRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	updated, err := h.agentService.UpdateProfile(c.Request().Context(), agent, &req)
	if err != nil {
		return respondError(c, err, "Field agent")
	}
	return c.JSON(http.StatusOK, updated)
}

// Payments handles GET /agent/payments
func (h *AgentHandlers) Payments(c echo.Context) error {
	agent, ok := middleware.AgentFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	summary, err := h.agentService.Payments(c.Request().Context(), agent)
	if err != nil {
		return respondError(c, err, "Payment")
	}
	return c.JSON(http.StatusOK, summary)
}

// Available handles GET /agent/interviews/available
func (h *AgentHandlers) Available(c echo.Context) error {
	agent, ok := middleware.AgentFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := common.Pagination(c)
	interviews, err := h.interviewService.Available(c.Request().Context(), agent, limit, offset)
	if err != nil {
		return respondError(c, err, "Interview")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"interviews": interviews,
		"limit":      limit,
		"offset":     offset,
	})
}

// GetInterview handles GET /agent/interviews/:id
func (h *AgentHandlers) GetInterview(c echo.Context) error {
	agent, ok := middleware.AgentFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Interview")
	}

	view, err := h.interviewService.AgentView(c.Request().Context(), agent, id)
	if err != nil {
		return respondError(c, err, "Interview")
	}
	return c.JSON(http.StatusOK, view)
}

// Current handles GET /agent/interviews/current
func (h *AgentHandlers) Current(c echo.Context) error {
	return h.list(c, h.interviewService.Current)
}

// Completed handles GET /agent/interviews/completed
func (h *AgentHandlers) Completed(c echo.Context) error {
	return h.list(c, h.interviewService.Completed)
}

// Transferred handles GET /agent/interviews/transferred
func (h *AgentHandlers) Transferred(c echo.Context) error {
	return h.list(c, h.interviewService.Transferred)
}

// Reserve handles POST /agent/interviews/:id/reserve
func (h *AgentHandlers) Reserve(c echo.Context) error {
	return h.transition(c, h.interviewService.Reserve)
}

// Decline handles POST /agent/interviews/:id/decline
func (h *AgentHandlers) Decline(c echo.Context) error {
	return h.transition(c, h.interviewService.Decline)
}

// Accept handles POST /agent/interviews/:id/accept
func (h *AgentHandlers) Accept(c echo.Context) error {
	return h.transition(c, h.interviewService.Accept)
}

// StartTravel handles POST /agent/interviews/:id/start
func (h *AgentHandlers) StartTravel(c echo.Context) error {
	return h.transition(c, h.interviewService.StartTravel)
}

// Finish handles POST /agent/interviews/:id/finish
func (h *AgentHandlers) Finish(c echo.Context) error {
	return h.transition(c, h.interviewService.Finish)
}

// Transfer handles POST /agent/interviews/:id/transfer
func (h *AgentHandlers) Transfer(c echo.Context) error {
	agent, ok := middleware.AgentFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Interview")
	}

	var req struct {
		AgentCode string `json:"agent_code"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if strings.TrimSpace(req.AgentCode) == "" {
		return common.SendValidationError(c, "agent_code", "cannot be blank")
	}

	iv, err := h.interviewService.Transfer(c.Request().Context(), agent, id, strings.TrimSpace(req.AgentCode))
	if err != nil {
		return respondError(c, err, "Interview")
	}
	return c.JSON(http.StatusOK, iv)
}

// UploadCandidatePhoto handles POST /agent/interviews/:id/candidate-photo
func (h *AgentHandlers) UploadCandidatePhoto(c echo.Context) error {
	agent, ok := middleware.AgentFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Interview")
	}

	photo, closePhoto, err := formUpload(c, "photo", maxImageSize)
	if err != nil {
		return respondError(c, err, "Upload")
	}
	defer closePhoto()
	if photo == nil {
		return common.SendValidationError(c, "photo", "cannot be blank")
	}

	iv, err := h.interviewService.UploadCandidatePhoto(c.Request().Context(), agent, id, photo)
	if err != nil {
		return respondError(c, err, "Interview")
	}
	return c.JSON(http.StatusOK, iv)
}

// SubmitVideo handles POST /agent/interviews/:id/video. It accepts either a
// video file upload or a JSON/form video_url link.
func (h *AgentHandlers) SubmitVideo(c echo.Context) error {
	agent, ok := middleware.AgentFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Interview")
	}
	ctx := c.Request().Context()

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		video, closeVideo, err := formUpload(c, "video", maxVideoSize)
		if err != nil {
			return respondError(c, err, "Upload")
		}
		defer closeVideo()
		if video != nil {
			iv, err := h.interviewService.UploadVideo(ctx, agent, id, video)
			if err != nil {
				return respondError(c, err, "Interview")
			}
			return c.JSON(http.StatusOK, iv)
		}
	}

	var req struct {
		VideoURL string `json:"video_url" form:"video_url"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	iv, err := h.interviewService.SubmitVideoLink(ctx, agent, id, req.VideoURL)
	if err != nil {
		return respondError(c, err, "Interview")
	}
	return c.JSON(http.StatusOK, iv)
}

func (h *AgentHandlers) transition(c echo.Context, step agentStep) error {
	agent, ok := middleware.AgentFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Interview")
	}

	iv, err := step(c.Request().Context(), agent, id)
	if err != nil {
		return respondError(c, err, "Interview")
	}
	return c.JSON(http.StatusOK, iv)
}

func (h *AgentHandlers) list(c echo.Context, fetch agentList) error {
	agent, ok := middleware.AgentFromContext(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	interviews, err := fetch(c.Request().Context(), agent)
	if err != nil {
		return respondError(c, err, "Interview")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"interviews": interviews,
	})
}

// formUpload opens an optional multipart file. A missing file yields a nil
// upload. The returned func closes the file.
func formUpload(c echo.Context, field string, maxSize int64) (*services.Upload, func(), error) {
	noop := func() {}
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, validation.Errors{field: errors.New("could not read uploaded file")}
	}
	if header.Size > maxSize {
		return nil, noop, validation.Errors{field: fmt.Errorf("must be at most %d MB", maxSize>>20)}
	}

	file, err := header.Open()
	if err != nil {
		return nil, noop, fmt.Errorf("failed to open uploaded %s: %w", field, err)
	}
	return &services.Upload{
		Reader:      file,
		Size:        header.Size,
		ContentType: header.Header.Get(echo.HeaderContentType),
		Filename:    header.Filename,
	}, func() { file.Close() }, nil
}
