package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sal22/qanda-api/internal/api/middleware"
	"github.com/sal22/qanda-api/internal/core/domain"
)

// viewer returns the caller on routes with optional auth; nil means anonymous.
func viewer(c echo.Context) *domain.Principal {
	return middleware.Principal(c)
}

// actor returns the caller on routes that require auth. A missing principal
// means the route was registered without the Auth middleware.
func actor(c echo.Context) (*domain.Principal, error) {
	p := middleware.Principal(c)
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}
	return p, nil
}

// pageParam reads ?page=; anything unparsable falls back to the first page.
func pageParam(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// bindAndValidate decodes the request body into req and validates it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
