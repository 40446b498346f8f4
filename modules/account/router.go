package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Mountable interface {
	Handle() http.Handler
}

// RouterOptions configures which services to mount. Each is optional.
type RouterOptions struct {
	// Auth serves the credential and second-factor endpoints at the root.
	Auth Mountable
	// Health serves liveness and readiness probes.
	Health map[string]http.Handler
}

// Router assembles the account routes.
//
// Example:
//
//	r := chi.NewRouter()
//	r.Mount("/", account.Router(account.RouterOptions{
//	    Auth:   account.NewAuthHandler(svc, errorHandler),
//	    Health: map[string]http.Handler{"/live": live, "/ready": ready},
//	}))
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	for path, h := range opts.Health {
		r.Method(http.MethodGet, path, h)
	}
	if opts.Auth != nil {
		r.Mount("/", opts.Auth.Handle())
	}

	return r
}
