package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole enforces that the authenticated claim carries one of the
// allowed roles. It must run after Auth has attached a claim; a
// missing claim is treated as forbidden, never as anonymous access.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cl, ok := ClaimsFrom(c)
			if !ok || !allowed[cl.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": echo.Map{
					"message": "Forbidden",
					"status":  http.StatusForbidden,
				}})
			}
			return next(c)
		}
	}
}
