package middleware

import (
	"errors"
	"log"
	"net/http"

	"genzip/internal/common"
	"genzip/internal/repositories"
	"genzip/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTConfig verifies bearer tokens through the auth service, which accepts
// our HS256 tokens and, when configured, JWKS-signed ones.
func JWTConfig(auth services.AuthService) echojwt.Config {
	return echojwt.Config{
		ParseTokenFunc: func(c echo.Context, tokenString string) (interface{}, error) {
			return auth.ParseToken(tokenString)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	}
}

// Identity runs after echo-jwt and copies the caller identity into the
// request context. Revoked tokens and disabled accounts are rejected. Role
// and company always come from the user record, so deactivation takes effect
// on the next request.
func Identity(auth services.AuthService, users repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}
			claims, ok := token.Claims.(*services.TokenClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid claims")
			}

			ctx := c.Request().Context()
			if claims.TokenID != "" {
				revoked, err := auth.IsRevoked(ctx, claims.TokenID)
				if err != nil {
					log.Printf("Failed to check token revocation: %v", err)
				}
				if revoked {
					return echo.NewHTTPError(http.StatusUnauthorized, "Token has been revoked")
				}
			}

			subject := claims.UserID
			if subject == "" || claims.External {
				subject = claims.Subject
			}
			userID, err := uuid.Parse(subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid user_id format")
			}

			user, err := users.GetByID(ctx, userID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load user")
			}
			if !user.IsActive {
				return echo.NewHTTPError(http.StatusForbidden, "Account is disabled")
			}

			var companyID uuid.UUID
			if user.CompanyID != nil {
				companyID = *user.CompanyID
			}

			c.SetRequest(c.Request().WithContext(common.WithIdentity(ctx, userID, companyID, user.Role)))
			return next(c)
		}
	}
}
