package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/testportal/portal/internal/rbac"
)

func TestIssueAndParse(t *testing.T) {
	a := NewAuthService("test-secret")

	tok, err := a.IssueJWT("alice@example.com", "Alice", "student")
	if err != nil {
		t.Fatalf("IssueJWT: %v", err)
	}
	c, err := a.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Sub != "alice@example.com" || c.Name != "Alice" || c.Role != "student" {
		t.Errorf("claims = %+v", c)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, err := NewAuthService("secret-a").IssueJWT("bob", "Bob", "admin")
	if err != nil {
		t.Fatalf("IssueJWT: %v", err)
	}
	if _, err := NewAuthService("secret-b").Parse(tok); err == nil {
		t.Fatal("token signed with another secret must not parse")
	}
}

func TestJWTMiddleware(t *testing.T) {
	a := NewAuthService("test-secret")
	tok, err := a.IssueJWT("alice@example.com", "Alice", "student")
	if err != nil {
		t.Fatalf("IssueJWT: %v", err)
	}

	var gotSub, gotName, gotRole string
	h := JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub = SubjectFromContext(r.Context())
		gotName = DisplayNameFromContext(r.Context())
		gotRole = rbac.RoleFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if gotSub != "alice@example.com" || gotName != "Alice" || gotRole != "student" {
		t.Errorf("context = %q %q %q", gotSub, gotName, gotRole)
	}
}

func TestJWTMiddlewareRejects(t *testing.T) {
	a := NewAuthService("test-secret")
	h := JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run")
	}))

	for name, header := range map[string]string{
		"missing":    "",
		"not bearer": "Basic abc",
		"garbage":    "Bearer not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}
