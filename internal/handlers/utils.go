package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/jason-s-yu/monopoly/internal/auth"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// sessionToken reads the session cookie, falling back to the "session" query
// parameter for clients that cannot set cookies on a socket.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(auth.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return r.URL.Query().Get("session")
}

// originPatterns turns CORS origins into the host patterns the websocket
// upgrader matches against.
func originPatterns(origins []string) []string {
	var out []string
	for _, o := range origins {
		if o == "*" {
			return []string{"*"}
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			out = append(out, u.Host)
			continue
		}
		out = append(out, strings.TrimSuffix(o, "/"))
	}
	return out
}
