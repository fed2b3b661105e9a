package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/restaurant-pos/internal/auth"
	"github.com/Lixing-Zhang/restaurant-pos/internal/middleware"
)

// AuthHandler handles sign-in, sign-up and password reset for the console
type AuthHandler struct {
	auth *auth.Service
	log  *slog.Logger
}

func NewAuthHandler(auth *auth.Service, log *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

type emailLoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type mobileLoginRequest struct {
	Mobile string `json:"mobile" validate:"required"`
	OTP    string `json:"otp" validate:"required"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Mobile   string `json:"mobile"`
	OTP      string `json:"otp"`
}

type forgotPasswordRequest struct {
	Identifier string `json:"identifier" validate:"required"`
}

type resetPasswordRequest struct {
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req emailLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	res, err := h.auth.LoginWithEmail(r.Context(), req.Email, req.Password)
	h.writeResult(w, res, err, http.StatusUnauthorized)
}

// LoginMobile handles POST /api/auth/login/mobile
func (h *AuthHandler) LoginMobile(w http.ResponseWriter, r *http.Request) {
	var req mobileLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	res, err := h.auth.LoginWithMobile(r.Context(), req.Mobile, req.OTP)
	h.writeResult(w, res, err, http.StatusUnauthorized)
}

// Signup handles POST /api/auth/signup with either email and password or
// mobile and OTP
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	var (
		res auth.Result
		err error
	)
	if req.Mobile != "" {
		res, err = h.auth.SignupWithMobile(r.Context(), req.Mobile, req.OTP)
	} else {
		res, err = h.auth.SignupWithEmail(r.Context(), req.Email, req.Password, req.Name)
	}
	h.writeResult(w, res, err, http.StatusBadRequest)
}

// ForgotPassword handles POST /api/auth/password/forgot
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}
	h.writeResult(w, h.auth.InitiatePasswordReset(r.Context(), req.Identifier), nil, http.StatusBadRequest)
}

// ResetPassword handles POST /api/auth/password/reset
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}
	h.writeResult(w, h.auth.ResetPassword(r.Context(), req.NewPassword, req.ConfirmPassword), nil, http.StatusBadRequest)
}

// Session handles GET /api/auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	session, err := h.auth.Session(r.Context(), middleware.BearerToken(r))
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Not signed in", h.log)
		return
	}
	WriteJSON(w, http.StatusOK, session, h.log)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), middleware.BearerToken(r)); err != nil {
		WriteError(w, http.StatusUnauthorized, "Not signed in", h.log)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeResult answers 200 for a successful result and failStatus for a
// rejected one. Infrastructure errors become 500.
func (h *AuthHandler) writeResult(w http.ResponseWriter, res auth.Result, err error, failStatus int) {
	if err != nil {
		h.log.Error("auth request failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}
	if !res.Success {
		WriteJSON(w, failStatus, res, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, res, h.log)
}
