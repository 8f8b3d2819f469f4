package handlers

import (
	"log"
	"net/http"
	"time"

	"genzip/internal/caching"
	"genzip/internal/common"
	"genzip/internal/services"

	"github.com/labstack/echo/v4"
)

// PublicHandlers serves unauthenticated candidate and visitor endpoints
type PublicHandlers struct {
	interviewService services.InterviewService
	enquiryService   services.EnquiryService
	cacheService     caching.CacheService
	rateLimit        int
	rateWindow       time.Duration
}

// NewPublicHandlers creates a new public handlers instance. Location
// submissions are limited to rateLimit per client IP per rateWindow.
func NewPublicHandlers(interviewService services.InterviewService, enquiryService services.EnquiryService,
	cacheService caching.CacheService, rateLimit int, rateWindow time.Duration) *PublicHandlers {
	return &PublicHandlers{
		interviewService: interviewService,
		enquiryService:   enquiryService,
		cacheService:     cacheService,
		rateLimit:        rateLimit,
		rateWindow:       rateWindow,
	}
}

// LocationRequest is what the candidate's browser sends
type LocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// SubmitLocation handles POST /public/interviews/:id/location
func (h *PublicHandlers) SubmitLocation(c echo.Context) error {
	ctx := c.Request().Context()

	limited, err := h.cacheService.IsRateLimited(ctx, "location:"+c.RealIP(), h.rateLimit, h.rateWindow)
	if err != nil {
		log.Printf("Rate limiter unavailable: %v", err)
	} else if limited {
		return c.JSON(http.StatusTooManyRequests, common.CreateErrorResponse("RATE_LIMITED", "Too many requests, try again later", nil))
	}

	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err, "Interview")
	}

	var req LocationRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Latitude == nil || req.Longitude == nil {
		return common.SendValidationErrors(c, map[string]string{
			"latitude":  "cannot be blank",
			"longitude": "cannot be blank",
		})
	}

	if err := h.interviewService.SetLocation(ctx, id, *req.Latitude, *req.Longitude); err != nil {
		return respondError(c, err, "Interview")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Location saved",
	})
}

// CreateEnquiry handles POST /public/enquiries
func (h *PublicHandlers) CreateEnquiry(c echo.Context) error {
	var req services.EnquiryRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	enquiry, err := h.enquiryService.Create(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, err, "Company")
	}
	return c.JSON(http.StatusCreated, enquiry)
}
