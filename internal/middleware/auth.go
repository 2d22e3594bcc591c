package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/suteetoe/krist-shop/internal/model"
	"github.com/suteetoe/krist-shop/pkg/apperror"
	"github.com/suteetoe/krist-shop/pkg/jwtutil"
	"github.com/suteetoe/krist-shop/pkg/logger"
)

const (
	userIDKey   = "user_id"
	userRoleKey = "user_role"
)

// AuthMiddleware validates the bearer access token and stores the caller in the context
func AuthMiddleware(tokens *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				log.Debug("Missing Authorization header")
				return apperror.Unauthorized("Unauthorized")
			}

			// Check if it's a Bearer token
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				log.Warn("Invalid Authorization header format")
				return apperror.Unauthorized("Unauthorized")
			}

			claims, err := tokens.ValidateToken(strings.TrimSpace(parts[1]), jwtutil.TypeAccess)
			if err != nil {
				log.Warn("Invalid JWT token", zap.Error(err))
				return apperror.Unauthorized("Unauthorized")
			}

			c.Set(userIDKey, claims.UserID)
			c.Set(userRoleKey, model.Role(claims.Role))
			userLog := log.With(zap.String("user_id", claims.UserID))
			c.Set("logger", userLog)
			c.SetRequest(c.Request().WithContext(logger.WithContext(c.Request().Context(), userLog)))

			return next(c)
		}
	}
}

// RequireRoles rejects authenticated callers whose role is not listed
func RequireRoles(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := CurrentRole(c)
			for _, r := range roles {
				if role == r {
					return next(c)
				}
			}
			logger.FromEcho(c).Warn("Role not allowed", zap.String("role", string(role)))
			return apperror.Forbidden("Forbidden resource")
		}
	}
}

// CurrentUserID returns the id of the authenticated caller
func CurrentUserID(c echo.Context) (string, bool) {
	id, ok := c.Get(userIDKey).(string)
	return id, ok && id != ""
}

// CurrentRole returns the role of the authenticated caller, empty when anonymous
func CurrentRole(c echo.Context) model.Role {
	role, _ := c.Get(userRoleKey).(model.Role)
	return role
}

// SelfOrAdmin allows the call when the caller owns userID or is an admin
func SelfOrAdmin(c echo.Context, userID string) error {
	id, ok := CurrentUserID(c)
	if !ok {
		return apperror.Unauthorized("Unauthorized")
	}
	if id == userID || CurrentRole(c) == model.RoleAdmin {
		return nil
	}
	return apperror.Forbidden("You can only access your own resources")
}
