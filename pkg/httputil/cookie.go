package httputil

import (
	"errors"
	"net/http"
	"strings"

	"github.com/iamasit07/othello/backend/internal/config"
)

const AuthCookieName = "auth_token"

var ErrNoToken = errors.New("no auth token found in cookie, header or query")

func SetAuthCookie(w http.ResponseWriter, token string) {
	cfg := config.AppConfig
	cookie := &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   cfg.AccessTokenTTLMinutes * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	// SameSite=None requires Secure, which needs HTTPS
	if cfg.IsProduction() {
		cookie.SameSite = http.SameSiteNoneMode
		cookie.Secure = true
	}

	http.SetCookie(w, cookie)
}

func ClearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// GetTokenFromRequest looks in the auth cookie, then a Bearer header, then ?token=
// (browsers cannot set headers on a websocket upgrade).
func GetTokenFromRequest(r *http.Request) (string, error) {
	if cookie, err := r.Cookie(AuthCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	if header := r.Header.Get("Authorization"); header != "" {
		return strings.TrimPrefix(header, "Bearer "), nil
	}

	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}

	return "", ErrNoToken
}
