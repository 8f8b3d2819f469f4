package middleware

import (
	"errors"
	"net/http"

	"genzip/internal/common"
	"genzip/internal/models"
	"genzip/internal/repositories"
	"genzip/internal/services"

	"github.com/labstack/echo/v4"
)

const agentContextKey = "field_agent"

type RBACMiddleware struct {
	agentService services.AgentService
}

func NewRBACMiddleware(agentService services.AgentService) *RBACMiddleware {
	return &RBACMiddleware{
		agentService: agentService,
	}
}

// RequireRole lets the request through when the caller has one of roles.
func (m *RBACMiddleware) RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := common.GetRoleFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			for _, allowed := range roles {
				if role == allowed {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
		}
	}
}

// RequireAgent restricts the route to field agents and loads their profile.
func (m *RBACMiddleware) RequireAgent() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if role, _ := common.GetRoleFromContext(ctx); role != models.RoleAgent {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			userID, ok := common.GetUserIDFromContext(ctx)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}

			agent, err := m.agentService.ByUserID(ctx, userID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return echo.NewHTTPError(http.StatusForbidden, "Field agent profile not found")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, "Error loading agent profile")
			}

			c.Set(agentContextKey, agent)
			return next(c)
		}
	}
}

// AgentFromContext returns the profile loaded by RequireAgent.
func AgentFromContext(c echo.Context) (*models.FieldAgent, bool) {
	agent, ok := c.Get(agentContextKey).(*models.FieldAgent)
	return agent, ok
}
