package auth

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/Lixing-Zhang/restaurant-pos/internal/config"
	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/Lixing-Zhang/restaurant-pos/pkg/logger"
	"github.com/redis/go-redis/v9"
)

func testConfig() config.AuthConfig {
	return config.AuthConfig{
		AdminEmail:    "admin@posapp.com",
		AdminPassword: "Admin@123",
		AdminMobile:   "9999999999",
		OTP:           "123456",
		JWTSecret:     "test-secret",
		TokenTTL:      time.Hour,
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(testConfig(), NewMemoryStore(), logger.New("error"))
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		login       func() (Result, error)
		wantSuccess bool
		wantMessage string
	}{
		{
			name:        "email success",
			login:       func() (Result, error) { return svc.LoginWithEmail(ctx, "admin@posapp.com", "Admin@123") },
			wantSuccess: true,
		},
		{
			name:        "email wrong password",
			login:       func() (Result, error) { return svc.LoginWithEmail(ctx, "admin@posapp.com", "admin") },
			wantMessage: "Invalid email or password",
		},
		{
			name:        "email unknown account",
			login:       func() (Result, error) { return svc.LoginWithEmail(ctx, "chef@posapp.com", "Admin@123") },
			wantMessage: "Invalid email or password",
		},
		{
			name:        "mobile success",
			login:       func() (Result, error) { return svc.LoginWithMobile(ctx, "9999999999", "123456") },
			wantSuccess: true,
		},
		{
			name:        "mobile wrong otp",
			login:       func() (Result, error) { return svc.LoginWithMobile(ctx, "9999999999", "000000") },
			wantMessage: "Invalid mobile or OTP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.login()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Success != tt.wantSuccess {
				t.Fatalf("success = %v, want %v (%s)", res.Success, tt.wantSuccess, res.Message)
			}
			if res.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", res.Message, tt.wantMessage)
			}
			if tt.wantSuccess {
				if res.Token == "" || res.User == nil {
					t.Fatal("expected token and user")
				}
				if res.User.Role != RoleAdmin || res.User.Name != "Admin User" {
					t.Errorf("unexpected user %+v", res.User)
				}
			}
		})
	}
}

func TestSignup(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res, err := svc.SignupWithEmail(ctx, "jane@posapp.com", "secret1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success || res.User.Name != "jane" {
		t.Errorf("expected name from email prefix, got %+v", res)
	}

	res, _ = svc.SignupWithMobile(ctx, "5551234567", "123456")
	if !res.Success || res.User.Name != "User 4567" {
		t.Errorf("expected mobile signup, got %+v", res)
	}

	rejections := []struct {
		name    string
		signup  func() (Result, error)
		message string
	}{
		{"missing password", func() (Result, error) { return svc.SignupWithEmail(ctx, "a@b.c", "", "") }, "Email and password are required"},
		{"short password", func() (Result, error) { return svc.SignupWithEmail(ctx, "a@b.c", "12345", "") }, "Password must be at least 6 characters"},
		{"short mobile", func() (Result, error) { return svc.SignupWithMobile(ctx, "12345", "123456") }, "Invalid mobile number"},
		{"non digit mobile", func() (Result, error) { return svc.SignupWithMobile(ctx, "99999x9999", "123456") }, "Invalid mobile number"},
		{"wrong otp", func() (Result, error) { return svc.SignupWithMobile(ctx, "5551234567", "111111") }, "Invalid OTP. Use 123456"},
	}
	for _, tt := range rejections {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.signup()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Success || res.Message != tt.message {
				t.Errorf("got %+v, want failure %q", res, tt.message)
			}
		})
	}
}

func TestPasswordReset(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if res := svc.InitiatePasswordReset(ctx, "anyone@example.com"); !res.Success || res.Message != "OTP sent successfully" {
		t.Errorf("unexpected initiate result %+v", res)
	}

	tests := []struct {
		newPassword string
		confirm     string
		wantSuccess bool
		wantMessage string
	}{
		{"abc", "abc", false, "Password must be at least 6 characters"},
		{"secret1", "secret2", false, "Passwords do not match"},
		{"secret1", "secret1", true, "Password reset successfully"},
	}
	for _, tt := range tests {
		res := svc.ResetPassword(ctx, tt.newPassword, tt.confirm)
		if res.Success != tt.wantSuccess || res.Message != tt.wantMessage {
			t.Errorf("ResetPassword(%q, %q) = %+v", tt.newPassword, tt.confirm, res)
		}
	}
}

func TestSessionLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res, err := svc.LoginWithEmail(ctx, "admin@posapp.com", "Admin@123")
	if err != nil || !res.Success {
		t.Fatalf("login failed: %+v %v", res, err)
	}

	session, err := svc.Session(ctx, res.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.User.Email != "admin@posapp.com" || session.Token != res.Token {
		t.Errorf("unexpected session %+v", session)
	}

	if err := svc.Logout(ctx, res.Token); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Session(ctx, res.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken after logout, got %v", err)
	}
}

func TestSession_RejectsBadTokens(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res, _ := svc.LoginWithMobile(ctx, "9999999999", "123456")

	other, err := NewService(config.AuthConfig{
		AdminEmail: "admin@posapp.com", AdminPassword: "Admin@123", JWTSecret: "other-secret", TokenTTL: time.Hour,
	}, NewMemoryStore(), logger.New("error"))
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	foreign, _ := other.LoginWithEmail(ctx, "admin@posapp.com", "Admin@123")

	for name, token := range map[string]string{
		"empty":          "",
		"garbage":        "not-a-token",
		"tampered":       res.Token + "x",
		"foreign secret": foreign.Token,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Session(ctx, token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestSession_Expires(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res, _ := svc.LoginWithEmail(ctx, "admin@posapp.com", "Admin@123")

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.Session(ctx, res.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected expired token to be rejected, got %v", err)
	}
}

func TestRevocationList(t *testing.T) {
	now := time.Now()
	l := newRevocationList(2)

	l.Add("a", now.Add(time.Minute), now)
	l.Add("b", now.Add(-time.Minute), now)
	if !l.Contains("a", now) {
		t.Error("expected a to be revoked")
	}
	if l.Contains("b", now) {
		t.Error("expired ids must not count as revoked")
	}

	// reaching capacity prunes b and keeps a
	l.Add("c", now.Add(time.Minute), now)
	if _, ok := l.expiries["b"]; ok {
		t.Error("expected expired id to be pruned")
	}
	if !l.Contains("a", now) || !l.Contains("c", now) {
		t.Error("pruning lost a live revocation")
	}
	if l.Contains("d", now) {
		t.Error("unknown id reported as revoked")
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	session := models.Session{User: models.User{ID: "u1", Name: "A"}, Token: "tok"}

	if err := store.Save(ctx, "id1", session, time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := store.Load(ctx, "id1")
	if err != nil || got.Token != "tok" {
		t.Fatalf("unexpected load %+v %v", got, err)
	}

	store.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := store.Load(ctx, "id1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected expired session to be gone, got %v", err)
	}

	_ = store.Delete(ctx, "id1")
	if _, ok := store.entries[SessionKeyPrefix+"id1"]; ok {
		t.Error("expected entry to be deleted")
	}
}

func TestIntegration_RedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping Redis integration test")
	}

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client)
	session := models.Session{User: models.User{ID: "u1", Name: "Admin User", Role: RoleAdmin}, Token: "tok"}

	if err := store.Save(ctx, "integration", session, time.Minute); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	got, err := store.Load(ctx, "integration")
	if err != nil || got.User.Name != "Admin User" {
		t.Fatalf("unexpected load %+v %v", got, err)
	}
	if ttl := client.TTL(ctx, SessionKeyPrefix+"integration").Val(); ttl <= 0 {
		t.Errorf("expected key ttl, got %s", ttl)
	}

	if err := store.Delete(ctx, "integration"); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if _, err := store.Load(ctx, "integration"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}
