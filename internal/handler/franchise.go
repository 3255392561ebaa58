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
	"github.com/sliceworks/pizza-backend/internal/middleware"
	"github.com/sliceworks/pizza-backend/internal/model"
	"github.com/sliceworks/pizza-backend/internal/repository"
)

// FranchiseHandler serves franchise and store administration.
type FranchiseHandler struct {
	Franchises *repository.FranchiseRepo
	Sessions   *auth.Sessions
	Log        *zap.Logger
	PageSize   int
}

func NewFranchiseHandler(franchises *repository.FranchiseRepo, sessions *auth.Sessions, log *zap.Logger, pageSize int) *FranchiseHandler {
	return &FranchiseHandler{Franchises: franchises, Sessions: sessions, Log: log, PageSize: pageSize}
}

// List is publicly browsable.  When the caller presents a valid admin
// token the rows come back fully enriched (admins plus revenue
// rollups); everyone else gets bare store name lists.
func (h *FranchiseHandler) List(c echo.Context) error {
	page, size := pageParams(c, h.PageSize)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	isAdmin := false
	if raw, ok := middleware.RawToken(c); ok {
		if u, err := h.Sessions.Verify(ctx, raw); err == nil {
			isAdmin = u.HasRole(model.RoleAdmin)
		}
	}

	franchises, more, err := h.Franchises.List(ctx, page, size, c.QueryParam("name"), isAdmin)
	if err != nil {
		h.Log.Error("list franchises failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"franchises": franchises, "more": more})
}

// ListForUser returns the franchises a user administers.
func (h *FranchiseHandler) ListForUser(c echo.Context) error {
	userID, ok := pathID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if !auth.CanActOnUser(middleware.CurrentUser(c), userID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	franchises, err := h.Franchises.ListForUser(ctx, userID)
	if err != nil {
		h.Log.Error("list user franchises failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, franchises)
}

type createFranchiseReq struct {
	Name   string `json:"name"`
	Admins []struct {
		Email string `json:"email"`
	} `json:"admins"`
}

// Create makes a franchise with its initial admin list (admin only).
// Every admin email must resolve to an existing user before anything is
// written.
func (h *FranchiseHandler) Create(c echo.Context) error {
	var req createFranchiseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	emails := make([]string, 0, len(req.Admins))
	for _, a := range req.Admins {
		emails = append(emails, a.Email)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	f, err := h.Franchises.Create(ctx, req.Name, emails)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownUser) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		}
		h.Log.Error("create franchise failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create franchise failed"})
	}
	return c.JSON(http.StatusCreated, f)
}

// Delete removes a franchise with its stores and role assignments in
// one transaction (admin only).
func (h *FranchiseHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "franchiseId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid franchise id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Franchises.Delete(ctx, id); err != nil {
		h.Log.Error("delete franchise failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete franchise failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "franchise deleted"})
}

type storeReq struct {
	Name string `json:"name"`
}

// CreateStore adds a store under a franchise.  Global admins and the
// franchise's own admins may do this; the franchise is fetched enriched
// so the policy check reads a resolved admin list.
func (h *FranchiseHandler) CreateStore(c echo.Context) error {
	franchiseID, ok := pathID(c, "franchiseId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid franchise id"})
	}
	var req storeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	f, err := h.authorizeFranchiseAdmin(ctx, c, franchiseID)
	if err != nil || f == nil {
		return err
	}

	store, err := h.Franchises.CreateStore(ctx, franchiseID, req.Name)
	if err != nil {
		h.Log.Error("create store failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create store failed"})
	}
	return c.JSON(http.StatusCreated, store)
}

// DeleteStore removes one store under a franchise, same authorization
// as CreateStore.
func (h *FranchiseHandler) DeleteStore(c echo.Context) error {
	franchiseID, ok := pathID(c, "franchiseId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid franchise id"})
	}
	storeID, ok := pathID(c, "storeId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid store id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	f, err := h.authorizeFranchiseAdmin(ctx, c, franchiseID)
	if err != nil || f == nil {
		return err
	}

	if err := h.Franchises.DeleteStore(ctx, franchiseID, storeID); err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no such store"})
		}
		h.Log.Error("delete store failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete store failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "store deleted"})
}

// authorizeFranchiseAdmin fetches the enriched franchise and enforces
// CanAdminFranchise.  On failure it has already written the response
// and returns a nil franchise.
func (h *FranchiseHandler) authorizeFranchiseAdmin(ctx context.Context, c echo.Context, franchiseID uint64) (*model.Franchise, error) {
	f, err := h.Franchises.Get(ctx, franchiseID)
	if err != nil {
		if errors.Is(err, repository.ErrFranchiseNotFound) {
			return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "no such franchise"})
		}
		h.Log.Error("load franchise failed", zap.Error(err))
		return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !auth.CanAdminFranchise(middleware.CurrentUser(c), f) {
		return nil, c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return f, nil
}
