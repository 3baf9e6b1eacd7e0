package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/contactdir/contact-server-go/internal/audit"
	apperrors "github.com/contactdir/contact-server-go/internal/errors"
	"github.com/contactdir/contact-server-go/internal/service"
	"github.com/contactdir/contact-server-go/internal/util"
)

const (
	forgotPasswordSent    = "Password reset email sent successfully"
	forgotPasswordDevNote = "Check server logs for reset link (development mode)"
	forgotPasswordGeneric = "If an account exists with this email, you will receive a password reset link"
	invalidResetToken     = "Invalid or expired token"
)

type UserHandler struct {
	authService  *service.AuthService
	resetService *service.PasswordResetService
	// revealOutcome distinguishes known from unknown emails in the
	// forgot-password reply. Only enabled outside production.
	revealOutcome bool
	limit         func(http.Handler) http.Handler
}

// NewUserHandler wires the account endpoints. limit, when not nil, wraps the
// unauthenticated password reset routes.
func NewUserHandler(
	authService *service.AuthService,
	resetService *service.PasswordResetService,
	revealOutcome bool,
	limit func(http.Handler) http.Handler,
) *UserHandler {
	return &UserHandler{
		authService:   authService,
		resetService:  resetService,
		revealOutcome: revealOutcome,
		limit:         limit,
	}
}

func (h *UserHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/profile", h.Profile)
	r.Put("/change-password", h.ChangePassword)

	r.Group(func(r chi.Router) {
		if h.limit != nil {
			r.Use(h.limit)
		}
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)
		r.Get("/validate-reset-token/{token}", h.ValidateResetToken)
	})

	return r
}

type profileResponse struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
}

// GET /api/user/profile
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	account, err := h.authService.Profile(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{ID: account.ID, Email: account.Email, Phone: account.Phone})
}

// PUT /api/user/change-password
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	account, err := h.authService.ChangePassword(r.Context(), req.NewPassword)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventPasswordChange, AccountID: account.ID})
	writeText(w, http.StatusOK, "Password changed")
}

// POST /api/user/forgot-password
// Always 200; unknown emails are never reported as such in production.
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if !util.IsValidEmail(req.Email) {
		writeError(w, apperrors.InvalidInput("email", "must be a valid email address"))
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventResetRequested, Email: req.Email})

	err := h.resetService.InitiateReset(r.Context(), req.Email)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodeAccountNotFound) {
			log.Info().Str("email", util.MaskEmail(req.Email)).Msg("password reset requested for unknown email")
		} else {
			log.Error().Err(err).Msg("password reset request failed")
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": forgotPasswordGeneric})
		return
	}

	if !h.revealOutcome {
		writeJSON(w, http.StatusOK, map[string]string{"message": forgotPasswordGeneric})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": forgotPasswordSent,
		"note":    forgotPasswordDevNote,
	})
}

// POST /api/user/reset-password
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	account, err := h.resetService.CompleteReset(r.Context(), req.Token, req.NewPassword)
	if err != nil {
		audit.LogFromRequest(r, audit.Event{
			Type:    audit.EventResetFailed,
			Details: map[string]interface{}{"reason": string(apperrors.GetCode(err))},
		})
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventResetCompleted, AccountID: account.ID})
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Password has been reset successfully",
		"status":  "success",
	})
}

// GET /api/user/validate-reset-token/{token}
// Always 200; an unknown token is reported as invalid.
func (h *UserHandler) ValidateResetToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	status, err := h.resetService.ValidateToken(r.Context(), token)
	if err != nil {
		if !apperrors.HasCode(err, apperrors.ErrCodeResetTokenNotFound) {
			log.Error().Err(err).Msg("reset token validation failed")
		}
		writeJSON(w, http.StatusOK, map[string]any{"valid": false, "message": invalidResetToken})
		return
	}

	writeJSON(w, http.StatusOK, status)
}
