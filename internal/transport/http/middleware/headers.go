package middleware

import "net/http"

// Headers stamps the CORS and content-type headers every endpoint answers with,
// and ends OPTIONS requests with an empty 200.
// Access-Control-Allow-Origin is left alone when an earlier CORS handler already set it.
func Headers(allowOrigin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if h.Get("Access-Control-Allow-Origin") == "" {
				h.Set("Access-Control-Allow-Origin", allowOrigin)
			}
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			h.Set("Content-Type", "application/json")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
