package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/talenthub/competency-api/internal/model"
	"github.com/talenthub/competency-api/internal/utils"
)

func okHandler(c echo.Context) error {
	id, _ := UserID(c)
	return c.JSON(http.StatusOK, echo.Map{"user_id": id, "role": Role(c)})
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := mw(okHandler)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec
}

func TestJWTAuthValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken("secret", 42, model.RoleManager, time.Minute, time.Now().UTC())
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	rec := doRequest(t, JWTAuth("secret"), "Bearer "+tok.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestJWTAuthRejections(t *testing.T) {
	expired, _ := utils.NewAccessToken("secret", 1, model.RoleEmployee, time.Minute,
		time.Now().UTC().Add(-time.Hour))
	wrongSecret, _ := utils.NewAccessToken("other", 1, model.RoleEmployee, time.Minute,
		time.Now().UTC())

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + expired.Token},
		{"wrong secret", "Bearer " + wrongSecret.Token},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, JWTAuth("secret"), tc.header)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	run := func(role string, allowed ...string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != "" {
			c.Set(CtxRole, role)
		}
		if err := RequireRole(allowed...)(okHandler)(c); err != nil {
			t.Fatalf("middleware returned error: %v", err)
		}
		return rec.Code
	}

	if code := run(model.RoleAdmin, model.RoleAdmin); code != http.StatusOK {
		t.Fatalf("admin on admin route: status = %d, want 200", code)
	}
	if code := run(model.RoleEmployee, model.RoleAdmin, model.RoleManager); code != http.StatusForbidden {
		t.Fatalf("employee on manager route: status = %d, want 403", code)
	}
	if code := run("", model.RoleAdmin); code != http.StatusForbidden {
		t.Fatalf("missing role: status = %d, want 403", code)
	}
}
