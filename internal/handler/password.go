package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/centsible/centsible-go/internal/crypto"
	"github.com/centsible/centsible-go/internal/service"
)

// resetRequestedNotice is returned whether or not the email matched an
// account. Enumeration protection lives or dies on this message being
// identical in both cases.
const resetRequestedNotice = "If an account exists for that email, password reset instructions have been sent."

// PasswordResetHandler handles the reset-request and reset-completion entry
// points.
type PasswordResetHandler struct {
	resets *service.PasswordResetService
	flash  *flashCodec
}

// NewPasswordResetHandler creates a new PasswordResetHandler.
func NewPasswordResetHandler(resets *service.PasswordResetService, hashKey []byte, secure bool) *PasswordResetHandler {
	return &PasswordResetHandler{
		resets: resets,
		flash:  newFlashCodec(hashKey, secure),
	}
}

// HandleCreate handles POST /password_resets form submissions.
func (h *PasswordResetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid form body"))
		return
	}

	if err := h.resets.Request(r.Context(), r.FormValue("email")); err != nil {
		slog.ErrorContext(r.Context(), "password reset request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	h.flash.set(w, Flash{Notice: resetRequestedNotice})
	http.Redirect(w, r, "/signin", http.StatusSeeOther)
}

// HandleComplete handles POST /password_resets/{token} form submissions.
func (h *PasswordResetHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid form body"))
		return
	}

	token := chi.URLParam(r, "token")
	err := h.resets.Complete(r.Context(), token, r.FormValue("password"), r.FormValue("password_confirmation"))
	if err != nil {
		if errors.Is(err, crypto.ErrInvalidToken) {
			h.flash.set(w, Flash{Alert: "That password reset link is invalid or has expired. Please request a new one."})
			http.Redirect(w, r, "/password_resets/new", http.StatusSeeOther)
			return
		}
		var verrs service.ValidationErrors
		if errors.As(err, &verrs) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": verrs})
			return
		}
		slog.ErrorContext(r.Context(), "password reset completion failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	h.flash.set(w, Flash{Notice: "Your password has been reset. Please sign in."})
	http.Redirect(w, r, "/signin", http.StatusSeeOther)
}

// HandleNew handles GET /password_resets/new, the redirect target for dead
// reset links. The form itself belongs to the view collaborator.
func (h *PasswordResetHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"flash": h.flash.consume(w, r)})
}
