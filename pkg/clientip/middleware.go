package clientip

import "net/http"

// Middleware stores the resolved client IP in the request context.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx := SetIPToContext(req.Context(), r.GetIP(req))
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}
