package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sliceworks/pizza-backend/internal/auth"
	"github.com/sliceworks/pizza-backend/internal/config"
	"github.com/sliceworks/pizza-backend/internal/metrics"
	"github.com/sliceworks/pizza-backend/internal/middleware"
	"github.com/sliceworks/pizza-backend/internal/repository"
)

// AuthHandler bundles dependencies for the session endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Sessions *auth.Sessions
	Log      *zap.Logger
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo, sessions *auth.Sessions, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Sessions: sessions, Log: log}
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a diner account and logs it in immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Add(ctx, req.Name, req.Email, req.Password, nil, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		h.Log.Error("register failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	token, err := h.Sessions.Issue(ctx, u)
	if err != nil {
		h.Log.Error("issue token failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	metrics.AuthSuccess()
	return c.JSON(http.StatusCreated, echo.Map{"user": u, "token": token})
}

// Login verifies credentials and issues a fresh session token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCredentials) {
			metrics.AuthFailure()
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		h.Log.Error("login query failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	token, err := h.Sessions.Issue(ctx, u)
	if err != nil {
		h.Log.Error("issue token failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	metrics.AuthSuccess()
	return c.JSON(http.StatusOK, echo.Map{"user": u, "token": token})
}

// Logout revokes the current session token.  Revoking twice is fine;
// the ledger delete is idempotent.
func (h *AuthHandler) Logout(c echo.Context) error {
	raw, ok := middleware.RawToken(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Sessions.Revoke(ctx, raw); err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		h.Log.Error("logout failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logout successful"})
}
