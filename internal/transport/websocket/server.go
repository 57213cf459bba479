// Package websocket serves gateway sessions over WebSocket connections.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/sandevgo/devterm/internal/config"
	"github.com/sandevgo/devterm/internal/core"
	"github.com/sandevgo/devterm/internal/service/gateway"
	"github.com/sandevgo/devterm/pkg/log"
)

type Server struct {
	cfg      *config.AppConfig
	gateway  *gateway.Gateway
	upgrader websocket.Upgrader

	mu       sync.Mutex
	srv      *http.Server
	sessions sync.WaitGroup
}

func NewServer(cfg *config.AppConfig, gw *gateway.Gateway) *Server {
	return &Server{
		cfg:     cfg,
		gateway: gw,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors(s.cfg.AllowedOrigins))

	r.Get("/", s.handleStatus)
	r.Get("/ws/{deviceID}", s.handleSession)

	return r
}

// Start serves until Shutdown. Sessions inherit ctx, so cancelling it ends
// every open session.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.ListenAddr, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	s.mu.Lock()
	s.srv = srv
	s.mu.Unlock()

	log.FromCtx(ctx).Info().Str("addr", ln.Addr().String()).Msg("websocket gateway listening")

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for open sessions, which
// end once the context passed to Start is cancelled.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	done := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("sessions still open: %w", ctx.Err())
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"message": core.DevtermName + " gateway is running.",
	})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	logger := log.FromCtx(r.Context())
	deviceID := chi.URLParam(r, "deviceID")

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		logger.Warn().Err(err).Str("device", deviceID).Msg("websocket upgrade failed")
		return
	}

	s.sessions.Add(1)
	defer s.sessions.Done()

	if err := s.gateway.Serve(r.Context(), deviceID, newConn(ws)); err != nil {
		logger.Warn().Err(err).Str("device", deviceID).Msg("session ended with error")
	}
}
