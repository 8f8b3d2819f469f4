package handlers

import (
	"errors"
	"net/http"
	"strings"

	"genzip/internal/common"
	"genzip/internal/models"
	"genzip/internal/repositories"
	"genzip/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers handles company account sign up, logins and token lifecycle
type AuthHandlers struct {
	accountService services.AccountService
	authService    services.AuthService
	userRepo       repositories.UserRepository
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(accountService services.AccountService, authService services.AuthService, userRepo repositories.UserRepository) *AuthHandlers {
	return &AuthHandlers{
		accountService: accountService,
		authService:    authService,
		userRepo:       userRepo,
	}
}

// Signup handles POST /auth/signup and creates a company with its admin
func (h *AuthHandlers) Signup(c echo.Context) error {
	var req services.AdminSignupRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	company, tokens, err := h.accountService.SignupAdmin(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, err, "Company")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"company": company,
		"tokens":  tokens,
	})
}

// Login handles POST /auth/login for admins and HRs
func (h *AuthHandlers) Login(c echo.Context) error {
	var req services.LoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	tokens, err := h.accountService.Login(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, err, "User")
	}

	return c.JSON(http.StatusOK, tokens)
}

// Refresh handles POST /auth/refresh
func (h *AuthHandlers) Refresh(c echo.Context) error {
	var req models.RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if req.RefreshToken == "" {
		return common.SendValidationError(c, "refresh_token", "cannot be blank")
	}
	if req.GrantType != "" && req.GrantType != "refresh_token" {
		return common.SendValidationError(c, "grant_type", "must be refresh_token")
	}

	tokens, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired refresh token")
	}

	return c.JSON(http.StatusOK, tokens)
}

// Logout revokes the bearer token and, when given, the refresh token
func (h *AuthHandlers) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if tokenString == "" {
		return common.SendClientError(c, "Authorization header missing")
	}

	var req models.RevokeTokenRequest
	if err := c.Bind(&req); err != nil {
		req = models.RevokeTokenRequest{}
	}

	if err := h.authService.RevokeToken(ctx, tokenString, nil); err != nil {
		return common.SendServerError(c, "Failed to revoke token")
	}
	if req.RefreshToken != "" {
		hint := "refresh_token"
		if err := h.authService.RevokeToken(ctx, req.RefreshToken, &hint); err != nil {
			return common.SendServerError(c, "Failed to revoke refresh token")
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Logged out successfully",
	})
}

// ChangePassword handles POST /auth/password. HRs use it on first login to
// replace the temporary password.
func (h *AuthHandlers) ChangePassword(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req services.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if err := h.accountService.ChangePassword(c.Request().Context(), userID, &req); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return common.SendValidationError(c, "current_password", "is incorrect")
		}
		return respondError(c, err, "User")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Password updated successfully",
	})
}

// Me returns the authenticated user
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return respondError(c, err, "User")
	}

	return c.JSON(http.StatusOK, user)
}
