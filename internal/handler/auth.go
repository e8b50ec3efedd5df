package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/centsible/centsible-go/internal/middleware"
	"github.com/centsible/centsible-go/internal/model"
	"github.com/centsible/centsible-go/internal/service"
)

// defaultLandingPath is where a fresh session ends up when no return URL was
// captured before sign-in.
const defaultLandingPath = "/"

// AuthHandler handles registration, sign-in, and sign-out entry points.
type AuthHandler struct {
	auth     *service.AuthService
	sessions *service.SessionService
	gate     *middleware.Gate
	flash    *flashCodec
	secure   bool
}

// NewAuthHandler creates a new AuthHandler. hashKey signs the flash cookie;
// secure marks cookies transport-secure-only.
func NewAuthHandler(auth *service.AuthService, sessions *service.SessionService, gate *middleware.Gate, hashKey []byte, secure bool) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
		gate:     gate,
		flash:    newFlashCodec(hashKey, secure),
		secure:   secure,
	}
}

// HandleSignup handles POST /signup form submissions. On success the new
// user gets a session immediately; validation failures come back as 422
// field errors for the rendering layer.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid form body"))
		return
	}

	req := model.SignupRequest{
		Email:                r.FormValue("email"),
		Password:             r.FormValue("password"),
		PasswordConfirmation: r.FormValue("password_confirmation"),
	}

	user, err := h.auth.Register(r.Context(), req)
	if err != nil {
		var verrs service.ValidationErrors
		if errors.As(err, &verrs) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": verrs})
			return
		}
		slog.ErrorContext(r.Context(), "signup failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	if !h.startSession(w, r, user) {
		return
	}
	h.flash.set(w, Flash{Notice: "Welcome! Your account has been created."})
	http.Redirect(w, r, defaultLandingPath, http.StatusSeeOther)
}

// HandleSignin handles POST /signin form submissions. The failure path never
// says which of email or password was wrong.
func (h *AuthHandler) HandleSignin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid form body"))
		return
	}

	user, err := h.auth.Authenticate(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.flash.set(w, Flash{Alert: "Invalid email or password."})
			http.Redirect(w, r, "/signin", http.StatusSeeOther)
			return
		}
		slog.ErrorContext(r.Context(), "signin failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	if !h.startSession(w, r, user) {
		return
	}

	target := h.gate.ConsumeReturnTo(w, r)
	if target == "" {
		target = defaultLandingPath
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// HandleSignout handles POST /signout. Destroys the current session and
// clears the carrier; idempotent from the client's point of view.
func (h *AuthHandler) HandleSignout(w http.ResponseWriter, r *http.Request) {
	if session, ok := middleware.CurrentSession(r.Context()); ok {
		if err := h.sessions.Terminate(r.Context(), session); err != nil {
			slog.ErrorContext(r.Context(), "signout failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
			return
		}
	}

	h.clearCarrierCookie(w)
	h.flash.set(w, Flash{Notice: "You have been signed out."})
	http.Redirect(w, r, "/signin", http.StatusSeeOther)
}

// HandleSigninPage handles GET /signin. The HTML form belongs to the view
// collaborator; this endpoint hands it any pending flash message.
func (h *AuthHandler) HandleSigninPage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"flash": h.flash.consume(w, r)})
}

// HandleMe handles GET /me for the authenticated user.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	writeJSON(w, http.StatusOK, model.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}

// HandleDeleteAccount handles DELETE /me. Destroys the account and, with it,
// every session it owns.
func (h *AuthHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	if err := h.auth.DeleteAccount(r.Context(), user); err != nil {
		slog.ErrorContext(r.Context(), "account deletion failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	h.clearCarrierCookie(w)
	h.flash.set(w, Flash{Notice: "Your account has been deleted."})
	http.Redirect(w, r, "/signup", http.StatusSeeOther)
}

// startSession creates a session for the user and sets the carrier cookie.
// Reports false after writing an error response.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *model.User) bool {
	meta := model.RequestMetadata{
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}

	_, carrier, err := h.sessions.Start(r.Context(), user, meta)
	if err != nil {
		slog.ErrorContext(r.Context(), "session start failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     service.CarrierCookieName,
		Value:    carrier,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return true
}

func (h *AuthHandler) clearCarrierCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     service.CarrierCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
