package middleware

import "net/http"

// NewMaxBodySizeHandler returns a middleware that limits incoming request
// bodies to limit bytes. Photo uploads are the only large payloads this API
// accepts, so the limit doubles as the upload size cap. Reads past the limit
// fail inside the handler, which surfaces as a 413 via the multipart parser.
func NewMaxBodySizeHandler(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
