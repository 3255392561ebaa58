package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpReqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Count of HTTP requests"},
		[]string{"path", "method", "status"},
	)
	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"},
	)
	authAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "auth_attempts_total", Help: "Login and register attempts by outcome"},
		[]string{"outcome"},
	)
	pizzasSold = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "pizzas_sold_total", Help: "Order items sold"},
	)
	orderRevenue = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "order_revenue_total", Help: "Revenue across all placed orders"},
	)
)

func init() {
	prometheus.MustRegister(httpReqTotal, httpLatency, authAttempts, pizzasSold, orderRevenue)
}

// AuthSuccess and AuthFailure track credential checks.
func AuthSuccess() { authAttempts.WithLabelValues("success").Inc() }
func AuthFailure() { authAttempts.WithLabelValues("failure").Inc() }

// OrderPlaced records a successful order: item count and revenue.
func OrderPlaced(items int, total float64) {
	pizzasSold.Add(float64(items))
	orderRevenue.Add(total)
}

// Middleware observes every request's status and latency.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			method := c.Request().Method
			httpReqTotal.WithLabelValues(path, method, strconv.Itoa(c.Response().Status)).Inc()
			httpLatency.WithLabelValues(path, method).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

// Handler exposes the prometheus scrape endpoint.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
