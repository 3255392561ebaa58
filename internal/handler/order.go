package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sliceworks/pizza-backend/internal/factory"
	"github.com/sliceworks/pizza-backend/internal/metrics"
	"github.com/sliceworks/pizza-backend/internal/middleware"
	"github.com/sliceworks/pizza-backend/internal/model"
	"github.com/sliceworks/pizza-backend/internal/queue"
	"github.com/sliceworks/pizza-backend/internal/repository"
)

// OrderHandler serves the menu and order endpoints.
type OrderHandler struct {
	Menu     *repository.MenuRepo
	Orders   *repository.OrderRepo
	Factory  *factory.Client
	Events   *queue.Publisher
	Log      *zap.Logger
	PageSize int
}

func NewOrderHandler(menu *repository.MenuRepo, orders *repository.OrderRepo, fc *factory.Client, events *queue.Publisher, log *zap.Logger, pageSize int) *OrderHandler {
	return &OrderHandler{Menu: menu, Orders: orders, Factory: fc, Events: events, Log: log, PageSize: pageSize}
}

// GetMenu returns the full menu.  The route sits behind the redis
// response cache.
func (h *OrderHandler) GetMenu(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Menu.List(ctx)
	if err != nil {
		h.Log.Error("list menu failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, items)
}

// AddMenuItem creates one menu item (admin only) and returns the
// updated menu.
func (h *OrderHandler) AddMenuItem(c echo.Context) error {
	var item model.MenuItem
	if err := c.Bind(&item); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(item.Title) == "" || item.Price <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and a positive price are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Menu.Add(ctx, &item); err != nil {
		h.Log.Error("add menu item failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "insert failed"})
	}
	items, err := h.Menu.List(ctx)
	if err != nil {
		h.Log.Error("list menu failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, items)
}

// GetOrders returns one page of the caller's orders with items nested.
func (h *OrderHandler) GetOrders(c echo.Context) error {
	u := middleware.CurrentUser(c)
	page, size := pageParams(c, h.PageSize)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	orders, err := h.Orders.ListForDiner(ctx, u.ID, page, size)
	if err != nil {
		h.Log.Error("list orders failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"dinerId": u.ID,
		"page":    page,
		"orders":  orders,
	})
}

// Create places an order, forwards it to the fulfillment factory and
// publishes an order.placed event.  A factory failure surfaces as 500
// but the order itself stays persisted.
func (h *OrderHandler) Create(c echo.Context) error {
	u := middleware.CurrentUser(c)

	var draft model.Order
	if err := c.Bind(&draft); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if draft.FranchiseID == 0 || draft.StoreID == 0 || len(draft.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "franchiseId, storeId and items are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	order, err := h.Orders.Place(ctx, u.ID, &draft)
	if err != nil {
		if errors.Is(err, repository.ErrMenuItemNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no such menu item"})
		}
		h.Log.Error("place order failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create order failed"})
	}

	total := 0.0
	for _, it := range order.Items {
		total += it.Price
	}
	metrics.OrderPlaced(len(order.Items), total)

	// Best effort; a broker outage must not fail the order.
	_ = h.Events.OrderPlaced(ctx, queue.OrderPlacedEvent{
		OrderID:     order.ID,
		DinerID:     u.ID,
		FranchiseID: order.FranchiseID,
		StoreID:     order.StoreID,
		ItemCount:   len(order.Items),
		Total:       total,
		PlacedAt:    order.Date.Format(time.RFC3339),
	})

	report, err := h.Factory.Fulfill(ctx, u, order)
	if err != nil {
		h.Log.Warn("fulfillment failed", zap.Uint64("order_id", order.ID), zap.Error(err))
		resp := echo.Map{"error": "failed to fulfill order at factory"}
		if report != nil && report.ReportURL != "" {
			resp["reportUrl"] = report.ReportURL
		}
		return c.JSON(http.StatusInternalServerError, resp)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"order":     order,
		"jwt":       report.JWT,
		"reportUrl": report.ReportURL,
	})
}
