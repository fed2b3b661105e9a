package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Lixing-Zhang/restaurant-pos/internal/auth"
	"github.com/Lixing-Zhang/restaurant-pos/internal/config"
	"github.com/Lixing-Zhang/restaurant-pos/pkg/logger"
	"github.com/go-chi/chi/v5"
)

func newAuthRouter(t *testing.T) http.Handler {
	t.Helper()
	log := logger.New("error")
	svc, err := auth.NewService(config.AuthConfig{
		AdminEmail:    "admin@posapp.com",
		AdminPassword: "Admin@123",
		AdminMobile:   "9999999999",
		OTP:           "123456",
		JWTSecret:     "test-secret",
		TokenTTL:      time.Hour,
	}, auth.NewMemoryStore(), log)
	if err != nil {
		t.Fatalf("failed to create auth service: %v", err)
	}
	h := NewAuthHandler(svc, log)

	r := chi.NewRouter()
	r.Post("/api/auth/login", h.Login)
	r.Post("/api/auth/login/mobile", h.LoginMobile)
	r.Post("/api/auth/signup", h.Signup)
	r.Post("/api/auth/password/forgot", h.ForgotPassword)
	r.Post("/api/auth/password/reset", h.ResetPassword)
	r.Get("/api/auth/session", h.Session)
	r.Post("/api/auth/logout", h.Logout)
	return r
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) auth.Result {
	t.Helper()
	var res auth.Result
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	return res
}

func TestAuthHandler_Forms(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		body           interface{}
		expectedStatus int
		wantMessage    string
	}{
		{"email login", "/api/auth/login", map[string]string{"email": "admin@posapp.com", "password": "Admin@123"}, http.StatusOK, ""},
		{"email login bad password", "/api/auth/login", map[string]string{"email": "admin@posapp.com", "password": "nope"}, http.StatusUnauthorized, "Invalid email or password"},
		{"mobile login", "/api/auth/login/mobile", map[string]string{"mobile": "9999999999", "otp": "123456"}, http.StatusOK, ""},
		{"mobile login bad otp", "/api/auth/login/mobile", map[string]string{"mobile": "9999999999", "otp": "000000"}, http.StatusUnauthorized, "Invalid mobile or OTP"},
		{"email signup", "/api/auth/signup", map[string]string{"email": "chef@posapp.com", "password": "secret1"}, http.StatusOK, ""},
		{"email signup short password", "/api/auth/signup", map[string]string{"email": "chef@posapp.com", "password": "abc"}, http.StatusBadRequest, "Password must be at least 6 characters"},
		{"mobile signup", "/api/auth/signup", map[string]string{"mobile": "5551234567", "otp": "123456"}, http.StatusOK, ""},
		{"mobile signup bad number", "/api/auth/signup", map[string]string{"mobile": "555", "otp": "123456"}, http.StatusBadRequest, "Invalid mobile number"},
		{"forgot password", "/api/auth/password/forgot", map[string]string{"identifier": "anyone@posapp.com"}, http.StatusOK, "OTP sent successfully"},
		{"reset mismatch", "/api/auth/password/reset", map[string]string{"newPassword": "secret1", "confirmPassword": "secret2"}, http.StatusBadRequest, "Passwords do not match"},
		{"reset", "/api/auth/password/reset", map[string]string{"newPassword": "secret1", "confirmPassword": "secret1"}, http.StatusOK, "Password reset successfully"},
	}

	router := newAuthRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, tt.path, tt.body)
			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			res := decodeResult(t, w)
			if res.Success != (tt.expectedStatus == http.StatusOK) {
				t.Errorf("unexpected success flag in %+v", res)
			}
			if res.Message != tt.wantMessage {
				t.Errorf("expected message %q, got %q", tt.wantMessage, res.Message)
			}
		})
	}
}

func TestAuthHandler_MissingFields(t *testing.T) {
	w := doJSON(t, newAuthRouter(t), http.MethodPost, "/api/auth/login", map[string]string{"email": "admin@posapp.com"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if msg := errorMessage(t, w); msg != "password is required" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestAuthHandler_SessionAndLogout(t *testing.T) {
	router := newAuthRouter(t)
	res := decodeResult(t, doJSON(t, router, http.MethodPost, "/api/auth/login", map[string]string{"email": "admin@posapp.com", "password": "Admin@123"}))
	if res.Token == "" {
		t.Fatal("expected a token")
	}

	withToken := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Bearer "+res.Token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := withToken(http.MethodGet, "/api/auth/session")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var session struct {
		User struct {
			Name string `json:"name"`
		} `json:"user"`
	}
	json.NewDecoder(w.Body).Decode(&session)
	if session.User.Name != "Admin User" {
		t.Errorf("unexpected session %+v", session)
	}

	if w := withToken(http.MethodPost, "/api/auth/logout"); w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}
	if w := withToken(http.MethodGet, "/api/auth/session"); w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401 after logout, got %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, "/api/auth/session", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401 without a token, got %d", w.Code)
	}
}
