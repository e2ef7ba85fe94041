package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sal22/qanda-api/internal/core/domain"
)

type stubVerifier struct {
	principal *domain.Principal
	err       error
	gotToken  string
}

func (s *stubVerifier) Verify(_ context.Context, token string) (*domain.Principal, error) {
	s.gotToken = token
	return s.principal, s.err
}

func runAuth(t *testing.T, verifier *stubVerifier, optional bool, header string) (*httptest.ResponseRecorder, *domain.Principal, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *domain.Principal
	called := false
	handler := Auth(verifier, optional)(func(c echo.Context) error {
		called = true
		seen = Principal(c)
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, seen, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	verifier := &stubVerifier{principal: &domain.Principal{UserID: "u1", Username: "alice"}}

	rec, p, called := runAuth(t, verifier, false, "Bearer abc.def.ghi")

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if p == nil || p.Username != "alice" {
		t.Fatalf("principal not set: %+v", p)
	}
	if verifier.gotToken != "abc.def.ghi" {
		t.Fatalf("unexpected token passed to verifier: %q", verifier.gotToken)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	rec, _, called := runAuth(t, &stubVerifier{}, false, "")

	if called {
		t.Fatalf("should not reach next")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	rec, _, called := runAuth(t, &stubVerifier{}, false, "Token abc")

	if called {
		t.Fatalf("should not reach next")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_RejectedToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer expired")
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Auth(&stubVerifier{err: domain.ErrUnauthenticated}, false)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthMiddleware_OptionalFallsBackToAnonymous(t *testing.T) {
	cases := map[string]string{
		"no header":      "",
		"bad scheme":     "Basic Zm9vOmJhcg==",
		"rejected token": "Bearer expired",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec, p, called := runAuth(t, &stubVerifier{err: domain.ErrUnauthenticated}, true, header)
			if !called {
				t.Fatalf("next not called")
			}
			if p != nil {
				t.Fatalf("expected anonymous request, got %+v", p)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
		})
	}
}

func TestAuthMiddleware_OptionalStillFailsWhenStoreDown(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	c := e.NewContext(req, httptest.NewRecorder())

	handler := Auth(&stubVerifier{err: domain.ErrUnavailable}, true)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
