package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
	}{
		{"Admin", RoleAdmin},
		{"Doctor", RoleDoctor},
		{"Patient", RolePatient},
		{"", RoleUnset},
		{"admin", RoleUnset},
		{"Superuser", RoleUnset},
	}
	for _, tc := range cases {
		if got := ParseRole(tc.in); got != tc.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)

	signed, err := issuer.Issue("user-123", RolePatient)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := issuer.Parse(signed)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Errorf("subject = %q, want user-123", claims.Subject)
	}
	if ParseRole(claims.Role) != RolePatient {
		t.Errorf("role = %q, want Patient", claims.Role)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	signed, err := NewTokenIssuer([]byte("secret-a"), time.Hour).Issue("u", RoleAdmin)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := NewTokenIssuer([]byte("secret-b"), time.Hour).Parse(signed); err == nil {
		t.Fatal("token signed with another secret should not parse")
	}
}

func TestTokenExpired(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"), -time.Minute)
	signed, err := issuer.Issue("u", RolePatient)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := issuer.Parse(signed); err == nil {
		t.Fatal("expired token should not parse")
	}
}

func callWithRole(t *testing.T, mw echo.MiddlewareFunc, p *Principal) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if p != nil {
		req = req.WithContext(ContextWithPrincipal(req.Context(), *p))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestRequireRole(t *testing.T) {
	mw := RequireRole(RoleDoctor)

	cases := []struct {
		name string
		p    *Principal
		want int
	}{
		{"no principal", nil, http.StatusUnauthorized},
		{"matching role", &Principal{UserID: "d", Role: RoleDoctor}, http.StatusOK},
		{"admin passes", &Principal{UserID: "a", Role: RoleAdmin}, http.StatusOK},
		{"wrong role", &Principal{UserID: "p", Role: RolePatient}, http.StatusForbidden},
		{"unset role", &Principal{UserID: "x", Role: RoleUnset}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rec := callWithRole(t, mw, tc.p); rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestMiddlewareBearerToken(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"), time.Hour)
	signed, err := issuer.Issue("user-1", RoleDoctor)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		p, ok := PrincipalFromContext(c.Request().Context())
		if !ok {
			return echo.NewHTTPError(http.StatusInternalServerError, "no principal")
		}
		return c.String(http.StatusOK, p.UserID+"/"+p.Role.String())
	}, Middleware(issuer))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body)
	}
	if rec.Body.String() != "user-1/Doctor" {
		t.Errorf("body = %q", rec.Body.String())
	}

	for name, header := range map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"garbage token":  "Bearer not.a.token",
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", name, rec.Code)
		}
	}
}
