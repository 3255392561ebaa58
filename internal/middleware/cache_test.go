package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sliceworks/pizza-backend/internal/middleware"
)

func TestResponseCacheDegradesWithoutRedis(t *testing.T) {
	e := echo.New()
	calls := 0
	e.GET("/menu", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, []string{"veggie"})
	}, middleware.ResponseCache(nil, time.Minute))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/menu", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: got %d", i, rec.Code)
		}
	}
	if calls != 2 {
		t.Fatalf("nil client must not cache; handler ran %d times", calls)
	}
}

func TestLoginRateLimitDisabled(t *testing.T) {
	e := echo.New()
	e.POST("/login", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, middleware.LoginRateLimit(nil, 5))

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("attempt %d blocked without a limiter backend: %d", i, rec.Code)
		}
	}
}
