package server

import (
	"net/http"
	"net/url"
	"strings"
)

// csrfMiddleware rejects cross-site browser requests to mutating endpoints.
// Browsers always send Origin (or at least Referer) on cross-site POSTs, so
// a request carrying neither comes from a non-browser client such as curl
// or a chat bot and is let through.
func csrfMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Allow safe methods
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}

		if !isValidOrigin(r) {
			http.Error(w, "Forbidden: Invalid origin", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// isValidOrigin reports whether the request's Origin or Referer, when
// present, names the host the request was sent to.
func isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = r.Header.Get("Referer")
	}
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	requestHost := r.Host
	if requestHost == "" {
		requestHost = r.URL.Host
	}

	return normalizeHost(originURL.Host) == normalizeHost(requestHost)
}

// normalizeHost treats localhost and 127.0.0.1 as equivalent.
func normalizeHost(host string) string {
	// Remove port if present
	if idx := strings.LastIndex(host, ":"); idx != -1 && !strings.HasSuffix(host, "]") {
		host = host[:idx]
	}

	// Normalize localhost
	if host == "localhost" || host == "127.0.0.1" || host == "[::1]" {
		return "localhost"
	}

	return strings.ToLower(host)
}
