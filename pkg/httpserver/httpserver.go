// Package httpserver is the shared /healthz, /readyz, /metrics listener
// used by all three control planes: one plain net/http listener per
// component rather than a web framework.
package httpserver

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadyFunc reports whether the component is ready to serve traffic.
type ReadyFunc func() bool

// Server is a minimal HTTP listener serving the three standard probes.
type Server struct {
	httpServer *http.Server
	tls        bool
}

// Route registers an additional handler alongside the standard probes,
// used by the webhook to mount its admission-review endpoint on the same
// listener.
type Route struct {
	Path    string
	Handler http.Handler
}

func newMux(registry *prometheus.Registry, ready ReadyFunc, routes []Route) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if ready != nil && !ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	for _, route := range routes {
		mux.Handle(route.Path, route.Handler)
	}
	return mux
}

// New builds a Server bound to addr. ready is polled on every /readyz
// request; a nil ready always reports 200 (used by non-leader watch
// controller replicas, which must keep passing probes).
func New(addr string, registry *prometheus.Registry, ready ReadyFunc, routes ...Route) *Server {
	mux := newMux(registry, ready, routes)
	return &Server{httpServer: &http.Server{Addr: addr, Handler: mux}}
}

// NewTLS builds a Server identical to New but serving HTTPS, using a
// certificate loaded once at start-up. Spec.md §4.6 accepts that
// certificate rotation requires a process restart, so the key pair is
// read once here rather than reloaded on every handshake.
func NewTLS(addr string, registry *prometheus.Registry, ready ReadyFunc, cert tls.Certificate, routes ...Route) *Server {
	mux := newMux(registry, ready, routes)
	return &Server{
		tls: true,
		httpServer: &http.Server{
			Addr:    addr,
			Handler: mux,
			TLSConfig: &tls.Config{
				Certificates: []tls.Certificate{cert},
				MinVersion:   tls.VersionTLS12,
			},
		},
	}
}

// Run serves until ctx is cancelled, then shuts down within a 30s grace
// period.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		var err error
		if s.tls {
			err = s.httpServer.ListenAndServeTLS("", "")
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
