package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sal22/qanda-api/internal/core/domain"
	"github.com/sal22/qanda-api/internal/core/ports"
)

// PrincipalKey is the echo.Context key holding the *domain.Principal.
const PrincipalKey = "principal"

// Auth verifies the bearer credential and injects the principal into context.
// With optional set, requests without a usable credential continue
// anonymously; an unreachable revocation store still fails the request.
func Auth(verifier ports.TokenVerifier, optional bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				if optional {
					return next(c)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				if optional {
					return next(c)
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			p, err := verifier.Verify(c.Request().Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				if optional && errors.Is(err, domain.ErrUnauthenticated) {
					return next(c)
				}
				return err
			}

			c.Set(PrincipalKey, p)
			return next(c)
		}
	}
}

// Principal returns the identity injected by Auth, or nil for anonymous requests.
func Principal(c echo.Context) *domain.Principal {
	p, _ := c.Get(PrincipalKey).(*domain.Principal)
	return p
}
