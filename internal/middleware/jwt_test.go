package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cosmic-sparc/backend/internal/auth"
)

func newTestRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/protected", handlers...)
	return r
}

func doGet(t *testing.T, r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTMiddleware(t *testing.T) {
	svc := auth.NewJWTService("test-secret", 24)
	r := newTestRouter(JWT(svc))

	if w := doGet(t, r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no header: code = %d, want 401", w.Code)
	}
	if w := doGet(t, r, "Basic abc"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong scheme: code = %d, want 401", w.Code)
	}
	if w := doGet(t, r, "Bearer garbage"); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: code = %d, want 401", w.Code)
	}

	token, err := svc.Generate(uuid.New(), "a@b.co", "public")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if w := doGet(t, r, "Bearer "+token); w.Code != http.StatusOK {
		t.Errorf("valid token: code = %d, want 200", w.Code)
	}
}

func TestOptionalJWTMiddleware(t *testing.T) {
	svc := auth.NewJWTService("test-secret", 24)
	userID := uuid.New()

	var gotID any
	var present bool
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/open", OptionalJWT(svc), func(c *gin.Context) {
		gotID, present = c.Get(auth.ContextUserID)
		c.Status(http.StatusOK)
	})

	// Anonymous passes through with no identity set.
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || present {
		t.Errorf("anonymous: code = %d present = %v", w.Code, present)
	}

	// Invalid token also passes through anonymously.
	req = httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || present {
		t.Errorf("bad token: code = %d present = %v", w.Code, present)
	}

	// Valid token sets the identity.
	token, err := svc.Generate(userID, "a@b.co", "public")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if !present || gotID != userID {
		t.Errorf("valid token: present = %v id = %v, want %v", present, gotID, userID)
	}
}

func TestRequireRole(t *testing.T) {
	svc := auth.NewJWTService("test-secret", 24)

	tests := []struct {
		name     string
		role     string
		allowed  []string
		wantCode int
	}{
		{"admin allowed", "admin", []string{"admin"}, http.StatusOK},
		{"ticketeer allowed among several", "ticketeer", []string{"admin", "ticketeer"}, http.StatusOK},
		{"public denied", "public", []string{"admin"}, http.StatusForbidden},
		{"ticketeer denied admin route", "ticketeer", []string{"admin"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(JWT(svc), RequireRole(tt.allowed...))
			token, err := svc.Generate(uuid.New(), "a@b.co", tt.role)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if w := doGet(t, r, "Bearer "+token); w.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", w.Code, tt.wantCode)
			}
		})
	}

	// No JWT middleware before it: no role in context.
	r := newTestRouter(RequireRole("admin"))
	if w := doGet(t, r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("missing claims: code = %d, want 401", w.Code)
	}
}
