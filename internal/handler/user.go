package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sliceworks/pizza-backend/internal/auth"
	"github.com/sliceworks/pizza-backend/internal/config"
	"github.com/sliceworks/pizza-backend/internal/middleware"
	"github.com/sliceworks/pizza-backend/internal/repository"
)

// UserHandler serves profile endpoints.
type UserHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Sessions *auth.Sessions
	Log      *zap.Logger
}

func NewUserHandler(cfg config.Config, users *repository.UserRepo, sessions *auth.Sessions, log *zap.Logger) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: users, Sessions: sessions, Log: log}
}

// Me returns the authenticated identity as decoded from the token.
func (h *UserHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

type updateUserReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Update changes any subset of name/email/password.  Users may update
// themselves; admins may update anyone.  A fresh token is issued so the
// embedded identity stays current.
func (h *UserHandler) Update(c echo.Context) error {
	targetID, ok := pathID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	actor := middleware.CurrentUser(c)
	if !auth.CanActOnUser(actor, targetID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Update(ctx, targetID, req.Name, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		h.Log.Error("update user failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	token, err := h.Sessions.Issue(ctx, u)
	if err != nil {
		h.Log.Error("issue token failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u, "token": token})
}

// List is the admin-only paginated user directory.
func (h *UserHandler) List(c echo.Context) error {
	page, size := pageParams(c, h.Cfg.ListPageSize)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, more, err := h.Users.List(ctx, page, size, c.QueryParam("name"))
	if err != nil {
		h.Log.Error("list users failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users, "more": more})
}
