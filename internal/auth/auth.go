// Package auth is the console's sign-in gate.
//
// Credentials are the fixed demo account from configuration. Every
// successful sign-in gets an HS256 token whose session is kept in a
// SessionStore until the token expires or the user signs out.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Lixing-Zhang/restaurant-pos/internal/config"
	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidToken = errors.New("invalid or expired session token")

const (
	RoleAdmin      = "admin"
	adminName      = "Admin User"
	minPasswordLen = 6
	mobileLen      = 10
)

// Result is the outcome of a sign-in style operation. Rejections are
// reported in Message with Success false; only infrastructure failures
// are returned as errors.
type Result struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	User    *models.User `json:"user,omitempty"`
	Token   string       `json:"token,omitempty"`
}

func failure(msg string) Result {
	return Result{Message: msg}
}

// Claims carried by session tokens
type Claims struct {
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Mobile string `json:"mobile,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type Service struct {
	cfg          config.AuthConfig
	passwordHash []byte
	secret       []byte
	store        SessionStore
	revoked      *revocationList
	now          func() time.Time
	logger       *slog.Logger
}

// NewService hashes the configured admin password and returns the gate
func NewService(cfg config.AuthConfig, store SessionStore, logger *slog.Logger) (*Service, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	return &Service{
		cfg:          cfg,
		passwordHash: hash,
		secret:       []byte(cfg.JWTSecret),
		store:        store,
		revoked:      newRevocationList(1024),
		now:          time.Now,
		logger:       logger,
	}, nil
}

func (s *Service) LoginWithEmail(ctx context.Context, email, password string) (Result, error) {
	email = strings.TrimSpace(email)
	if !strings.EqualFold(email, s.cfg.AdminEmail) ||
		bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) != nil {
		s.logger.Warn("email login rejected", "email", email)
		return failure("Invalid email or password"), nil
	}

	return s.issue(ctx, models.User{ID: RoleAdmin, Name: adminName, Email: s.cfg.AdminEmail, Role: RoleAdmin})
}

func (s *Service) LoginWithMobile(ctx context.Context, mobile, otp string) (Result, error) {
	if mobile != s.cfg.AdminMobile || otp != s.cfg.OTP {
		s.logger.Warn("mobile login rejected", "mobile", mobile)
		return failure("Invalid mobile or OTP"), nil
	}

	return s.issue(ctx, models.User{ID: RoleAdmin, Name: adminName, Mobile: mobile, Role: RoleAdmin})
}

// SignupWithEmail creates an admin account. Name defaults to the part of
// the email before the @.
func (s *Service) SignupWithEmail(ctx context.Context, email, password, name string) (Result, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return failure("Email and password are required"), nil
	}
	if len(password) < minPasswordLen {
		return failure("Password must be at least 6 characters"), nil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	return s.issue(ctx, models.User{ID: uuid.NewString(), Name: name, Email: email, Role: RoleAdmin})
}

func (s *Service) SignupWithMobile(ctx context.Context, mobile, otp string) (Result, error) {
	if !validMobile(mobile) {
		return failure("Invalid mobile number"), nil
	}
	if otp != s.cfg.OTP {
		return failure("Invalid OTP. Use " + s.cfg.OTP), nil
	}

	name := "User " + mobile[len(mobile)-4:]
	return s.issue(ctx, models.User{ID: uuid.NewString(), Name: name, Mobile: mobile, Role: RoleAdmin})
}

// InitiatePasswordReset accepts any email or mobile
func (s *Service) InitiatePasswordReset(ctx context.Context, identifier string) Result {
	s.logger.Info("password reset requested", "identifier", identifier)
	return Result{Success: true, Message: "OTP sent successfully"}
}

func (s *Service) ResetPassword(ctx context.Context, newPassword, confirmPassword string) Result {
	if len(newPassword) < minPasswordLen {
		return failure("Password must be at least 6 characters")
	}
	if newPassword != confirmPassword {
		return failure("Passwords do not match")
	}
	return Result{Success: true, Message: "Password reset successfully"}
}

// Session returns the session a token belongs to
func (s *Service) Session(ctx context.Context, token string) (models.Session, error) {
	claims, err := s.parse(token)
	if err != nil {
		return models.Session{}, err
	}
	if s.revoked.Contains(claims.ID, s.now()) {
		return models.Session{}, ErrInvalidToken
	}

	session, err := s.store.Load(ctx, claims.ID)
	if errors.Is(err, ErrSessionNotFound) {
		return models.Session{}, ErrInvalidToken
	}
	if err != nil {
		return models.Session{}, err
	}
	if session.Token != token {
		return models.Session{}, ErrInvalidToken
	}
	return session, nil
}

// Logout ends the session of token. The token stays rejected until it expires.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, claims.ID); err != nil {
		return err
	}
	s.revoked.Add(claims.ID, claims.ExpiresAt.Time, s.now())
	s.logger.Info("signed out", "user_id", claims.Subject)
	return nil
}

func (s *Service) issue(ctx context.Context, user models.User) (Result, error) {
	now := s.now()
	claims := Claims{
		Name:   user.Name,
		Email:  user.Email,
		Mobile: user.Mobile,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Result{}, fmt.Errorf("failed to sign token: %w", err)
	}

	if err := s.store.Save(ctx, claims.ID, models.Session{User: user, Token: token}, s.cfg.TokenTTL); err != nil {
		return Result{}, err
	}

	s.logger.Info("signed in", "user_id", user.ID, "name", user.Name)
	return Result{Success: true, User: &user, Token: token}, nil
}

func (s *Service) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func validMobile(mobile string) bool {
	if len(mobile) != mobileLen {
		return false
	}
	for _, r := range mobile {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
