package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"edupay-service/pkg/jwtutil"

	"github.com/labstack/echo/v4"
)

func newGuardedServer(tokens *jwtutil.JWTUtil, roles ...string) *echo.Echo {
	e := echo.New()
	e.GET("/guarded", func(c echo.Context) error {
		identity, ok := IdentityFrom(c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.JSON(http.StatusOK, identity)
	}, RequireRoles(tokens, roles...))
	return e
}

func doGuarded(e *echo.Echo, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body["error"]
}

func TestRequireRolesRejectsBadHeaders(t *testing.T) {
	tokens := jwtutil.NewJWTUtil("secret", time.Hour)
	e := newGuardedServer(tokens, jwtutil.RoleParent)
	valid, _ := tokens.IssueDefault("p-1", jwtutil.RoleParent)
	expired, _ := tokens.Issue("p-1", jwtutil.RoleParent, -time.Minute)

	cases := []struct {
		name    string
		header  string
		message string
	}{
		{"missing", "", "Token manquant"},
		{"no scheme", valid, "Token invalide"},
		{"wrong scheme", "Basic " + valid, "Token invalide"},
		{"extra part", "Bearer " + valid + " extra", "Token invalide"},
		{"garbage token", "Bearer not-a-jwt", "Token invalide ou expiré"},
		{"expired", "Bearer " + expired, "Token expiré"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doGuarded(e, tc.header)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if msg := errorMessage(t, rec); msg != tc.message {
				t.Fatalf("expected %q, got %q", tc.message, msg)
			}
		})
	}
}

func TestRequireRolesGating(t *testing.T) {
	tokens := jwtutil.NewJWTUtil("secret", time.Hour)
	e := newGuardedServer(tokens, jwtutil.RoleSchool, jwtutil.RoleAdmin)

	for _, role := range []string{jwtutil.RoleSchool, jwtutil.RoleAdmin} {
		token, _ := tokens.IssueDefault("id-"+role, role)
		rec := doGuarded(e, "Bearer "+token)
		if rec.Code != http.StatusOK {
			t.Fatalf("role %s: expected 200, got %d", role, rec.Code)
		}
		var identity jwtutil.Identity
		if err := json.Unmarshal(rec.Body.Bytes(), &identity); err != nil {
			t.Fatalf("decode identity: %v", err)
		}
		if identity.SubjectID != "id-"+role || identity.Role != role {
			t.Fatalf("unexpected identity %+v", identity)
		}
	}

	token, _ := tokens.IssueDefault("p-1", jwtutil.RoleParent)
	rec := doGuarded(e, "bearer "+token)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for parent, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Accès refusé" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestRequireRolesEmptySetAdmitsAnyRole(t *testing.T) {
	tokens := jwtutil.NewJWTUtil("secret", time.Hour)
	e := newGuardedServer(tokens)

	for _, role := range []string{jwtutil.RoleAdmin, jwtutil.RoleSchool, jwtutil.RoleParent} {
		token, _ := tokens.IssueDefault("x", role)
		if rec := doGuarded(e, "Bearer "+token); rec.Code != http.StatusOK {
			t.Fatalf("role %s: expected 200, got %d", role, rec.Code)
		}
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(RequestIDMiddleware)
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected a generated request id")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc" {
		t.Fatalf("expected propagated request id, got %q", got)
	}
}
