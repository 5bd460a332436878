package middleware

import (
	"net/http"
	"strings"

	"podm-backend/internal/auth"

	"github.com/labstack/echo/v4"
)

const callerKey = "caller"

// AuthMiddleware verifies the bearer token and stores the resulting
// CallerContext on the request scope.
func AuthMiddleware(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			caller, err := auth.ParseToken(tokenString, jwtSecret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(callerKey, caller)
			return next(c)
		}
	}
}

// Caller returns the verified caller set by AuthMiddleware.
func Caller(c echo.Context) (auth.CallerContext, bool) {
	caller, ok := c.Get(callerKey).(auth.CallerContext)
	return caller, ok
}
