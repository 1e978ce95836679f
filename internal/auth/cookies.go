package auth

import (
	"net/http"
)

// SessionCookieName is the cookie carrying the opaque session identifier
const SessionCookieName = "forum_session"

// CookieConfig holds session cookie settings
type CookieConfig struct {
	Secure   bool   // HTTPS only
	SameSite string // "strict", "lax", or "none"
	// MaxAge is the cookie lifetime in seconds, normally the session
	// TTL. Zero makes it a browser-session cookie; expiry is enforced
	// server-side either way.
	MaxAge int
}

// SetSessionCookie attaches the session identifier to the response in an
// httpOnly cookie. The cookie holds only the opaque id; all session state
// stays server-side.
func SetSessionCookie(w http.ResponseWriter, sessionID string, config CookieConfig) {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   config.MaxAge,
		HttpOnly: true, // no JavaScript access
		Secure:   config.Secure,
		SameSite: parseSameSite(config.SameSite),
	}
	http.SetCookie(w, cookie)
}

// ClearSessionCookie removes the session cookie. Called on logout whether
// or not the server-side destroy succeeded.
func ClearSessionCookie(w http.ResponseWriter, config CookieConfig) {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: parseSameSite(config.SameSite),
	}
	http.SetCookie(w, cookie)
}

// GetSessionCookie retrieves the session identifier from the request
func GetSessionCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

// parseSameSite converts string to http.SameSite constant
func parseSameSite(sameSite string) http.SameSite {
	switch sameSite {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteDefaultMode
	}
}
