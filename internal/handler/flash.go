package handler

import (
	"net/http"

	"github.com/gorilla/securecookie"
)

const flashCookieName = "_centsible_flash"

// Flash is a one-shot notice or alert carried across a redirect. The view
// layer (an external collaborator) decides how to present it.
type Flash struct {
	Notice string `json:"notice,omitempty"`
	Alert  string `json:"alert,omitempty"`
}

// flashCodec signs the flash cookie so clients cannot plant messages.
type flashCodec struct {
	codec  *securecookie.SecureCookie
	secure bool
}

func newFlashCodec(hashKey []byte, secure bool) *flashCodec {
	codec := securecookie.New(hashKey, nil)
	codec.MaxAge(300)
	return &flashCodec{codec: codec, secure: secure}
}

func (f *flashCodec) set(w http.ResponseWriter, flash Flash) {
	encoded, err := f.codec.Encode(flashCookieName, flash)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   f.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// consume reads and clears the flash cookie.
func (f *flashCodec) consume(w http.ResponseWriter, r *http.Request) Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return Flash{}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   f.secure,
		SameSite: http.SameSiteLaxMode,
	})

	var flash Flash
	if err := f.codec.Decode(flashCookieName, cookie.Value, &flash); err != nil {
		return Flash{}
	}
	return flash
}
