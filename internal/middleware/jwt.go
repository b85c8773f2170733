package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"taskhive/internal/token"
)

// claimsKey is the echo context key the verified access claim is
// stored under.
const claimsKey = "claims"

// Auth returns a middleware that authenticates a Bearer access token
// and attaches the verified claim to the request context. The missing
// header, bad scheme and empty token cases get distinct messages; any
// verification failure collapses to one message so callers learn
// nothing about why the token was rejected.
func Auth(codec *token.Codec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if auth == "" {
				return unauthorized(c, "No authorization header provided")
			}
			if !strings.HasPrefix(auth, "Bearer ") {
				return unauthorized(c, "Invalid authorization format. Use: Bearer <token>")
			}
			raw := strings.TrimPrefix(auth, "Bearer ")
			if raw == "" {
				return unauthorized(c, "No token provided")
			}
			cl, err := codec.VerifyAccess(raw)
			if err != nil {
				return unauthorized(c, "Invalid or expired token")
			}
			c.Set(claimsKey, cl)
			return next(c)
		}
	}
}

// ClaimsFrom extracts the claim attached by Auth. The second return is
// false when the guard did not run on this route.
func ClaimsFrom(c echo.Context) (token.Claims, bool) {
	cl, ok := c.Get(claimsKey).(token.Claims)
	return cl, ok
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": echo.Map{
		"message": msg,
		"status":  http.StatusUnauthorized,
	}})
}
