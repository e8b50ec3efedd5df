package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/securecookie"

	"github.com/centsible/centsible-go/internal/model"
	"github.com/centsible/centsible-go/internal/service"
)

type contextKey string

const (
	currentUserKey    contextKey = "currentUser"
	currentSessionKey contextKey = "currentSession"
)

const returnToCookieName = "_centsible_return_to"

// returnToMaxAge bounds how long a captured URL stays replayable.
const returnToMaxAge = 10 * 60

// GateConfig declares which routes may be reached without a session. The
// allow-list is resolved once at construction, not per request.
type GateConfig struct {
	// SignInPath is where unauthenticated requests are redirected.
	SignInPath string
	// ExemptPaths are exact request paths reachable without a session.
	ExemptPaths []string
	// ExemptPrefixes are path prefixes reachable without a session.
	ExemptPrefixes []string
	// ExemptAll disables enforcement entirely; sessions still resolve.
	ExemptAll bool
	// Secure marks the return-to cookie transport-secure-only.
	Secure bool
}

// Gate is the per-request authorization boundary. It resolves the session
// carrier once, binds the current user into the request context, and
// redirects unauthenticated requests for non-exempt routes to sign-in,
// remembering where they were headed.
type Gate struct {
	sessions       *service.SessionService
	codec          *securecookie.SecureCookie
	signInPath     string
	exemptPaths    map[string]bool
	exemptPrefixes []string
	exemptAll      bool
	secure         bool
}

// NewGate creates a Gate. hashKey signs the return-to cookie.
func NewGate(sessions *service.SessionService, hashKey []byte, cfg GateConfig) *Gate {
	if cfg.SignInPath == "" {
		cfg.SignInPath = "/signin"
	}
	paths := make(map[string]bool, len(cfg.ExemptPaths))
	for _, p := range cfg.ExemptPaths {
		paths[p] = true
	}

	codec := securecookie.New(hashKey, nil)
	codec.MaxAge(returnToMaxAge)

	return &Gate{
		sessions:       sessions,
		codec:          codec,
		signInPath:     cfg.SignInPath,
		exemptPaths:    paths,
		exemptPrefixes: cfg.ExemptPrefixes,
		exemptAll:      cfg.ExemptAll,
		secure:         cfg.Secure,
	}
}

// Handler resolves the carrier cookie and enforces authentication. A request
// with a valid session proceeds with the user bound in context, exempt or
// not. An unauthenticated request proceeds only if its route is exempt;
// otherwise it is redirected to sign-in, with the original URL captured for
// idempotent (GET) requests.
func (g *Gate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(service.CarrierCookieName); err == nil {
			if user, session := g.sessions.Resolve(r.Context(), cookie.Value); user != nil {
				ctx := context.WithValue(r.Context(), currentUserKey, user)
				ctx = context.WithValue(ctx, currentSessionKey, session)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}

		if g.exempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if r.Method == http.MethodGet {
			g.storeReturnTo(w, r)
		}
		http.Redirect(w, r, g.signInPath, http.StatusSeeOther)
	})
}

func (g *Gate) exempt(path string) bool {
	if g.exemptAll || g.exemptPaths[path] {
		return true
	}
	for _, prefix := range g.exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// storeReturnTo captures the requested URL in a signed, short-lived cookie
// so a later sign-in can send the user back where they were headed.
func (g *Gate) storeReturnTo(w http.ResponseWriter, r *http.Request) {
	encoded, err := g.codec.Encode(returnToCookieName, r.URL.RequestURI())
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     returnToCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   returnToMaxAge,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ConsumeReturnTo returns the stored return URL, if any, and clears it.
// Only same-origin paths come back; anything else is discarded.
func (g *Gate) ConsumeReturnTo(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(returnToCookieName)
	if err != nil {
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     returnToCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})

	var target string
	if err := g.codec.Decode(returnToCookieName, cookie.Value, &target); err != nil {
		return ""
	}
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return ""
	}
	return target
}

// CurrentUser extracts the authenticated user bound by the Gate.
func CurrentUser(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(currentUserKey).(*model.User)
	return user, ok
}

// CurrentSession extracts the resolved session bound by the Gate.
func CurrentSession(ctx context.Context) (*model.Session, bool) {
	session, ok := ctx.Value(currentSessionKey).(*model.Session)
	return session, ok
}
