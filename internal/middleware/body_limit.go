package middleware

import "net/http"

// MaxRequestBody caps how many bytes of the request body the server will
// read. It must run before anything parses the form: once ParseMultipartForm
// has consumed the body, a size check only fires after the whole upload has
// already been received.
func MaxRequestBody(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
