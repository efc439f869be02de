package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fichaje/models"
	"fichaje/session"
)

func init() {
	SetJWTSecret("test-secret")
}

func TestTokenRoundTrip(t *testing.T) {
	sess := &models.Session{ID: "abc", Role: models.RoleAdmin}
	token, err := GenerateToken(sess, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.SessionID != "abc" || claims.Role != models.RoleAdmin {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	token, _ := GenerateToken(&models.Session{ID: "abc"}, -time.Minute)
	if _, err := ValidateToken(token); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestAuthMiddleware(t *testing.T) {
	store := session.NewMemoryStore()
	live := &models.Session{ID: "live", AuthToken: "tok", Role: models.RoleWorker}
	store.Create(context.Background(), live)

	var seen *models.Session
	h := AuthMiddleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetSessionFromContext(r.Context())
	}))

	liveToken, _ := GenerateToken(live, time.Hour)
	goneToken, _ := GenerateToken(&models.Session{ID: "gone"}, time.Hour)

	tests := []struct {
		name         string
		cookie       string
		wantRedirect bool
	}{
		{"no cookie", "", true},
		{"garbage", "not-a-jwt", true},
		{"unknown session", goneToken, true},
		{"live session", liveToken, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if tt.wantRedirect {
				if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
					t.Fatalf("got %d %q", rec.Code, rec.Header().Get("Location"))
				}
				return
			}
			if seen == nil || seen.ID != "live" {
				t.Fatalf("session not in context: %+v", seen)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/admin/estado", nil)
	req = req.WithContext(WithSession(req.Context(), &models.Session{Role: models.RoleWorker}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("worker got %d", rec.Code)
	}

	req = req.WithContext(WithSession(req.Context(), &models.Session{Role: models.RoleAdmin}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin got %d", rec.Code)
	}
}
