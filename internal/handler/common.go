// Package handler implements the HTTP endpoints.  Handlers parse
// request parameters, call into the repositories and translate the
// sentinel errors into status codes; no business logic lives here.
package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// pageParams reads ?page and ?limit with defaults.  Page numbering is
// 1-based; out-of-range values fall back rather than erroring.
func pageParams(c echo.Context, defaultSize int) (page, size int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	size, _ = strconv.Atoi(c.QueryParam("limit"))
	if size < 1 || size > 100 {
		size = defaultSize
	}
	return page, size
}
