package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"pharmacy-storefront/internal/model"
)

const userContextKey = "auth_user"

// AuthUser is the narrow identity the core consumes from the external
// auth collaborator: who is calling and with what role. It is passed
// explicitly through the request context, never read from globals.
type AuthUser struct {
	ID   uint
	Role model.Role
}

// JWTAuth validates a bearer token and puts the caller identity on the
// echo context.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
			}
			userID, ok := claims["user_id"].(float64)
			if !ok || userID <= 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
			}
			role, _ := claims["role"].(string)

			c.Set(userContextKey, AuthUser{
				ID:   uint(userID),
				Role: model.Role(role),
			})
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated identity set by JWTAuth.
func CurrentUser(c echo.Context) (AuthUser, bool) {
	user, ok := c.Get(userContextKey).(AuthUser)
	return user, ok
}

// RequireAdmin gates administrative endpoints. Fine-grained
// authorization stays with the external auth collaborator.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok || user.Role != model.RoleAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "admin role required")
			}
			return next(c)
		}
	}
}
