package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowHeaders  = "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms, X-Request-Id, X-User-Agent, Connect-Content-Encoding, Connect-Accept-Encoding"
	corsExposeHeaders = "X-Request-Id, X-Sanogenic-Error-Kind, X-Sanogenic-Diagnostic, Connect-Content-Encoding, Connect-Accept-Encoding"
)

// OriginAllowed reports whether a non-empty Origin may use the API. "*" or
// an empty list allows any origin.
func OriginAllowed(allowed []string) func(origin string) bool {
	allowAll := allowsAny(allowed)
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[strings.TrimSpace(o)] = struct{}{}
	}
	return func(origin string) bool {
		if allowAll {
			return true
		}
		_, ok := set[strings.TrimSpace(origin)]
		return ok
	}
}

// CORS allows the listed origins; "*" or an empty list allows any origin.
func CORS(allowed []string) func(http.Handler) http.Handler {
	allow := OriginAllowed(allowed)
	allowAll := allowsAny(allowed)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			switch {
			case origin != "" && allow(origin):
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			case origin == "" && allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
			w.Header().Set("Access-Control-Expose-Headers", corsExposeHeaders)
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func allowsAny(allowed []string) bool {
	for _, o := range allowed {
		if strings.TrimSpace(o) == "*" {
			return true
		}
	}
	return len(allowed) == 0
}
