package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/McKadeW/COS498-FinalForum/internal/auth"
	"github.com/McKadeW/COS498-FinalForum/internal/models"
	"github.com/McKadeW/COS498-FinalForum/internal/services"
)

func newAuthHandler(service AuthServiceInterface) *AuthHandler {
	return NewAuthHandler(service, nil, auth.CookieConfig{Secure: false, SameSite: "lax"})
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestLogin_SuccessSetsSessionCookie(t *testing.T) {
	service := &mockAuthService{
		LoginFunc: func(ctx context.Context, username, password, ip string) (*services.LoginResult, error) {
			if username != "alice" || password != "hunter2!" {
				t.Errorf("unexpected credentials (%q, %q)", username, password)
			}
			return &services.LoginResult{
				SessionID: "sess-abc",
				User:      &models.User{ID: "u1", Username: "alice", DisplayName: "Alice"},
			}, nil
		},
	}
	handler := newAuthHandler(service)

	req := httptest.NewRequest("POST", "/api/login", strings.NewReader(`{"username":"alice","password":"hunter2!"}`))
	w := httptest.NewRecorder()
	handler.Login(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	cookie := sessionCookie(w)
	if cookie == nil {
		t.Fatal("session cookie not set")
	}
	if cookie.Value != "sess-abc" {
		t.Errorf("cookie value = %q, want sess-abc", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	var resp UserResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Username != "alice" {
		t.Errorf("username = %q", resp.Username)
	}
	if strings.Contains(w.Body.String(), "sess-abc") {
		t.Error("session id must not appear in the response body")
	}
}

func TestLogin_InvalidCredentialsReturns401(t *testing.T) {
	service := &mockAuthService{
		LoginFunc: func(ctx context.Context, username, password, ip string) (*services.LoginResult, error) {
			return nil, models.ErrUnauthorized
		},
	}
	handler := newAuthHandler(service)

	req := httptest.NewRequest("POST", "/api/login", strings.NewReader(`{"username":"alice","password":"wrong"}`))
	w := httptest.NewRecorder()
	handler.Login(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
	if sessionCookie(w) != nil {
		t.Error("no cookie should be set on failed login")
	}
}

func TestLogin_LockedPairReturns429(t *testing.T) {
	service := &mockAuthService{
		LoginFunc: func(ctx context.Context, username, password, ip string) (*services.LoginResult, error) {
			return nil, models.ErrAccountLocked
		},
	}
	handler := newAuthHandler(service)

	req := httptest.NewRequest("POST", "/api/login", strings.NewReader(`{"username":"alice","password":"x"}`))
	w := httptest.NewRecorder()
	handler.Login(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", w.Code)
	}
}

func TestLogin_StorageOutageReturns503(t *testing.T) {
	service := &mockAuthService{
		LoginFunc: func(ctx context.Context, username, password, ip string) (*services.LoginResult, error) {
			return nil, models.ErrStorageUnavailable
		},
	}
	handler := newAuthHandler(service)

	req := httptest.NewRequest("POST", "/api/login", strings.NewReader(`{"username":"alice","password":"x"}`))
	w := httptest.NewRecorder()
	handler.Login(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
}

func TestLogin_MalformedBodyReturns400(t *testing.T) {
	handler := newAuthHandler(&mockAuthService{})

	req := httptest.NewRequest("POST", "/api/login", strings.NewReader(`{`))
	w := httptest.NewRecorder()
	handler.Login(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestLogout_ClearsCookieEvenWhenDestroyFails(t *testing.T) {
	service := &mockAuthService{
		LogoutFunc: func(ctx context.Context, sessionID string) error {
			return models.ErrInternalServer
		},
	}
	handler := newAuthHandler(service)

	req := httptest.NewRequest("POST", "/api/logout", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "sess-abc"})
	w := httptest.NewRecorder()
	handler.Logout(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
	cookie := sessionCookie(w)
	if cookie == nil {
		t.Fatal("clearing cookie should still be set")
	}
	if cookie.MaxAge >= 0 {
		t.Errorf("cookie should be expired, MaxAge = %d", cookie.MaxAge)
	}
}

func TestLogout_WithoutCookieSucceeds(t *testing.T) {
	called := false
	service := &mockAuthService{
		LogoutFunc: func(ctx context.Context, sessionID string) error {
			called = true
			return nil
		},
	}
	handler := newAuthHandler(service)

	req := httptest.NewRequest("POST", "/api/logout", nil)
	w := httptest.NewRecorder()
	handler.Logout(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if called {
		t.Error("store should not be touched without a session cookie")
	}
}

func TestRegister_ConflictReturns409(t *testing.T) {
	service := &mockAuthService{
		RegisterFunc: func(ctx context.Context, username, password, email, displayName string) (*models.User, error) {
			return nil, models.ErrConflict
		},
	}
	handler := newAuthHandler(service)

	body := `{"username":"alice","password":"longenough1","email":"alice@example.com"}`
	req := httptest.NewRequest("POST", "/api/register", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.Register(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", w.Code)
	}
}

func TestRegister_WeakPasswordRejected(t *testing.T) {
	handler := newAuthHandler(&mockAuthService{
		RegisterFunc: func(ctx context.Context, username, password, email, displayName string) (*models.User, error) {
			t.Fatal("service should not be reached with an invalid request")
			return nil, errors.New("unreachable")
		},
	})

	body := `{"username":"alice","password":"short","email":"alice@example.com"}`
	req := httptest.NewRequest("POST", "/api/register", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}
