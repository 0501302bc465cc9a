package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIOpts configures [NewAPI].
type APIOpts struct {
	Auth     Authenticator
	Sessions SessionResolver
	Logger   *log.Logger
	Registry *prometheus.Registry // collectors served at /metrics; nil disables the route
	Secure   bool                 // set Secure on the session cookie
}

// NewAPI builds the router for the likeswap HTTP API.
func NewAPI(opts APIOpts) *BasicRouter {
	r := NewBasicRouter()
	r.Use(Recover(opts.Logger), Logging(opts.Logger))
	if opts.Registry != nil {
		r.Use(Instrument(NewHTTPMetrics(opts.Registry)))
	}

	r.HandleFunc("/{$}", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "likeswap API"})
	})
	r.Handler(NewAuthHandler(opts.Auth, opts.Sessions, opts.Logger, opts.Secure))

	if opts.Registry != nil {
		r.Handle(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}
	return r
}
