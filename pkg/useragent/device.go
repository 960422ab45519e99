package useragent

import (
	"net/http"
	"strings"
)

type marker struct {
	token   string
	exclude string
	name    string
}

// order matters: Edge and Chrome both claim Safari
var browsers = []marker{
	{"Edg/", "", "Edge"},
	{"Firefox/", "", "Firefox"},
	{"Chrome/", "", "Chrome"},
	{"Safari/", "Chrome", "Safari"},
}

var systems = []marker{
	{"Android", "", "Android"},
	{"iPhone", "", "iOS"},
	{"iPad", "", "iOS"},
	{"Windows", "", "Windows"},
	{"Mac OS X", "", "macOS"},
	{"Linux", "", "Linux"},
}

func match(ua string, markers []marker) (marker, bool) {
	for _, m := range markers {
		if strings.Contains(ua, m.token) && (m.exclude == "" || !strings.Contains(ua, m.exclude)) {
			return m, true
		}
	}
	return marker{}, false
}

// majorVersion reads the digits right after token, e.g. "Chrome/120.0" -> "120"
func majorVersion(ua, token string) string {
	idx := strings.Index(ua, token)
	if idx == -1 {
		return ""
	}
	rest := ua[idx+len(token):]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	return rest[:end]
}

// ExtractDeviceInfo turns the User-Agent header into e.g. "Firefox 121 on Linux"
func ExtractDeviceInfo(r *http.Request) string {
	ua := r.Header.Get("User-Agent")
	if ua == "" {
		return "Unknown Device"
	}

	browser := "Unknown Browser"
	if b, ok := match(ua, browsers); ok {
		browser = b.name
		if v := majorVersion(ua, b.token); v != "" {
			browser += " " + v
		}
	}

	os := "Unknown OS"
	if s, ok := match(ua, systems); ok {
		os = s.name
	}
	return browser + " on " + os
}

// ExtractIPAddress prefers proxy headers over the socket address
func ExtractIPAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
