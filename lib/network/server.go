package network

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"golang.org/x/net/http2"

	"boscoin.io/feedback/lib/common"
)

//
// HTTP2Server serves the routes of `Router()` over HTTP/2, or HTTP/1.1 when
// the endpoint is plain http. Until `Ready()` is called every request gets
// `503 Service Unavailable`.
//
type HTTP2Server struct {
	sync.RWMutex

	config *HTTP2ServerConfig
	server *http.Server
	router *mux.Router

	handler http.Handler
	ready   bool
}

func NewHTTP2Server(config *HTTP2ServerConfig) *HTTP2Server {
	server := &http.Server{
		Addr:              config.Addr,
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		WriteTimeout:      config.WriteTimeout,
		ErrorLog:          newHTTP2ErrorLogger(log),
	}
	server.SetKeepAlivesEnabled(true)

	http2.ConfigureServer(
		server,
		&http2.Server{
			IdleTimeout: config.IdleTimeout,
		},
	)

	s := &HTTP2Server{
		config: config,
		server: server,
		router: mux.NewRouter(),
	}
	server.Handler = s

	return s
}

func (s *HTTP2Server) Router() *mux.Router {
	return s.router
}

func (s *HTTP2Server) Endpoint() *common.Endpoint {
	return s.config.Endpoint
}

func (s *HTTP2Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.RLock()
	ready, handler := s.ready, s.handler
	s.RUnlock()

	if !ready {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}

	handler.ServeHTTP(w, r)
}

// Ready starts serving the routes added to `Router()` so far.
func (s *HTTP2Server) Ready() {
	s.Lock()
	defer s.Unlock()

	s.handler = NewHTTP2Log15Handler(log, s.router)
	s.ready = true
}

func (s *HTTP2Server) IsReady() bool {
	s.RLock()
	defer s.RUnlock()

	return s.ready
}

// Start blocks until the server is stopped.
func (s *HTTP2Server) Start() (err error) {
	log.Debug("starting server", "config", s.config.String())

	if s.config.IsHTTPS() {
		err = s.server.ListenAndServeTLS(s.config.TLSCertFile, s.config.TLSKeyFile)
	} else {
		err = s.server.ListenAndServe()
	}

	if err == http.ErrServerClosed {
		return nil
	}

	return err
}

// Stop closes the listener and waits the active requests until `ctx` is
// done; the connections still open after that, like event streams, are
// closed.
func (s *HTTP2Server) Stop(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		s.server.Close()
		return err
	}

	return nil
}
