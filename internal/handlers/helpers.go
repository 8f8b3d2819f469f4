package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"genzip/internal/common"
	"genzip/internal/repositories"
	"genzip/internal/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// actorFromContext builds the company actor set by the identity middleware.
func actorFromContext(c echo.Context) (services.Actor, bool) {
	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return services.Actor{}, false
	}
	companyID, ok := common.GetCompanyIDFromContext(ctx)
	if !ok {
		return services.Actor{}, false
	}
	role, _ := common.GetRoleFromContext(ctx)
	return services.Actor{UserID: userID, CompanyID: companyID, Role: role}, true
}

// pathID parses a UUID path parameter. Failures are field errors that
// respondError answers with 400.
func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := common.ValidateUUID(c.Param(name), name)
	if err != nil {
		return uuid.Nil, validation.Errors{name: err}
	}
	return id, nil
}

// validationDetails flattens ozzo field errors into a field -> message map.
func validationDetails(errs validation.Errors) map[string]string {
	details := make(map[string]string, len(errs))
	for field, err := range errs {
		if err != nil {
			details[field] = err.Error()
		}
	}
	return details
}

// respondError translates service errors into the standard error JSON.
// resource names the record for not-found responses.
func respondError(c echo.Context, err error, resource string) error {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		return common.SendValidationErrors(c, validationDetails(fieldErrs))
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		return common.SendNotFoundError(c, resource)
	case errors.Is(err, services.ErrUnknownAgent):
		return common.SendNotFoundError(c, "Field agent")
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		return c.JSON(http.StatusUnauthorized, common.CreateErrorResponse("UNAUTHORIZED", capitalize(err.Error()), nil))
	case errors.Is(err, services.ErrAccountDisabled), errors.Is(err, services.ErrForbidden):
		return common.SendForbiddenError(c, capitalize(err.Error()))
	case errors.Is(err, services.ErrWeakPassword):
		return common.SendValidationError(c, "password", err.Error())
	case errors.Is(err, services.ErrInsufficientCredits), errors.Is(err, services.ErrPaymentRequired):
		return common.SendPaymentRequiredError(c, capitalize(err.Error()))
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrMobileTaken),
		errors.Is(err, services.ErrDuplicateInterview),
		errors.Is(err, services.ErrInterviewLocked),
		errors.Is(err, services.ErrInterviewConflict),
		errors.Is(err, services.ErrAlreadyPaid),
		errors.Is(err, repositories.ErrDuplicate),
		errors.Is(err, repositories.ErrStateConflict),
		errors.Is(err, repositories.ErrInUse):
		return common.SendConflictError(c, capitalize(err.Error()))
	case errors.Is(err, services.ErrInvalidOTP),
		errors.Is(err, services.ErrInvalidLocation),
		errors.Is(err, services.ErrInvalidPlan),
		errors.Is(err, services.ErrPaymentNotVerified),
		errors.Is(err, services.ErrUnsupportedProvider):
		return common.SendClientError(c, capitalize(err.Error()))
	case errors.Is(err, services.ErrTooManyAttempts):
		return c.JSON(http.StatusTooManyRequests, common.CreateErrorResponse("RATE_LIMITED", capitalize(err.Error()), nil))
	case errors.Is(err, services.ErrStorageUnavailable):
		return c.JSON(http.StatusServiceUnavailable, common.CreateErrorResponse("UNAVAILABLE", capitalize(err.Error()), nil))
	}

	log.Printf("Unhandled error on %s %s: %v", c.Request().Method, c.Path(), err)
	return common.SendServerError(c, "Internal server error")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
