// Package middleware provides shared request processing: session
// verification, role gating, the redis response cache and the login
// rate limiter.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sliceworks/pizza-backend/internal/auth"
	"github.com/sliceworks/pizza-backend/internal/model"
)

const userKey = "user"

// SessionAuth returns a middleware that requires a valid, unrevoked
// bearer token.  The verified identity is stored in the echo context
// for handlers to read via CurrentUser.
func SessionAuth(sessions *auth.Sessions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			u, err := sessions.Verify(c.Request().Context(), raw)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrTokenRevoked) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verify failed"})
			}
			c.Set(userKey, u)
			return next(c)
		}
	}
}

// RequireAdmin rejects authenticated requests whose identity lacks the
// admin role.  It assumes SessionAuth ran earlier in the chain.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := CurrentUser(c)
			if u == nil || !u.HasRole(model.RoleAdmin) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// CurrentUser returns the identity stored by SessionAuth, or nil.
func CurrentUser(c echo.Context) *model.User {
	u, _ := c.Get(userKey).(*model.User)
	return u
}

// RawToken returns the bearer token of the current request, if any.
func RawToken(c echo.Context) (string, bool) {
	return bearerToken(c)
}

func bearerToken(c echo.Context) (string, bool) {
	h := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return raw, raw != ""
}
