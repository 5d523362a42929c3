package server

import "net/http"

// corsMiddleware applies the service's open cross-origin policy: any origin,
// any method, any header, credentials allowed. The requesting origin is
// echoed back instead of wildcarded because browsers reject a literal "*"
// on credentialed responses. Preflight requests are answered directly,
// reflecting whatever method and headers the browser asked about.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Add("Vary", "Origin")

		if r.Method == http.MethodOptions {
			if m := r.Header.Get("Access-Control-Request-Method"); m != "" {
				h.Set("Access-Control-Allow-Methods", m)
			} else {
				h.Set("Access-Control-Allow-Methods", "*")
			}
			if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
				h.Set("Access-Control-Allow-Headers", reqHeaders)
			} else {
				h.Set("Access-Control-Allow-Headers", "*")
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
