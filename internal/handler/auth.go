package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"taskhive/internal/middleware"
	"taskhive/internal/service"
)

// AuthHandler exposes the authentication endpoints.
type AuthHandler struct {
	Auth *service.AuthService
	Log  *logrus.Logger
}

func NewAuthHandler(auth *service.AuthService, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Log: log}
}

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

// Register creates a new account.
// POST /api/auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if msg := validateUsername(req.Username); msg != "" {
		return badRequest(c, msg)
	}
	if msg := validateEmail(req.Email); msg != "" {
		return badRequest(c, msg)
	}
	if msg := validatePassword(req.Password); msg != "" {
		return badRequest(c, msg)
	}

	u, err := h.Auth.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"data":    toUserView(u),
	})
}

// Login exchanges credentials for a token pair.
// POST /api/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if msg := validateEmail(req.Email); msg != "" {
		return badRequest(c, msg)
	}
	if req.Password == "" {
		return badRequest(c, "Password is required")
	}

	res, err := h.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"data": echo.Map{
			"user":         toUserView(res.User),
			"accessToken":  res.Tokens.AccessToken,
			"refreshToken": res.Tokens.RefreshToken,
		},
	})
}

// Refresh rotates a refresh token.
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return badRequest(c, "Refresh token is required")
	}

	pair, err := h.Auth.Refresh(c.Request().Context(), strings.TrimSpace(req.RefreshToken))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Token refreshed successfully",
		"data":    pair,
	})
}

// Logout revokes one session.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return badRequest(c, "Refresh token is required")
	}
	if err := h.Auth.Logout(c.Request().Context(), strings.TrimSpace(req.RefreshToken)); err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

// LogoutAll revokes every session of the authenticated user.
// POST /api/auth/logout-all (guarded)
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	cl, ok := middleware.ClaimsFrom(c)
	if !ok {
		return badRequest(c, "User not authenticated")
	}
	if err := h.Auth.LogoutAll(c.Request().Context(), cl.UserID); err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out from all sessions"})
}

// Me projects the verified access claim. No store access: the claim is
// authoritative for the token's lifetime.
// GET /api/auth/me (guarded)
func (h *AuthHandler) Me(c echo.Context) error {
	cl, ok := middleware.ClaimsFrom(c)
	if !ok {
		return badRequest(c, "User not authenticated")
	}
	p := h.Auth.Profile(cl)
	return c.JSON(http.StatusOK, echo.Map{
		"data": echo.Map{
			"userId":    p.UserID,
			"email":     p.Email,
			"role":      p.Role,
			"issuedAt":  p.IssuedAt,
			"expiresAt": p.ExpiresAt,
		},
	})
}
