package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/franckalain/fitplan/internal/logger"
	"github.com/franckalain/fitplan/internal/metrics"
	"github.com/franckalain/fitplan/internal/ml"
	"github.com/franckalain/fitplan/internal/session"
	"github.com/franckalain/fitplan/internal/store"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
)

// Options configures the HTTP side of the server.
type Options struct {
	StaticDir string
	// AllowedOrigins limits CORS and websocket upgrades. Empty allows any.
	AllowedOrigins []string
}

type Server struct {
	model    ml.Model
	accounts *store.Accounts
	history  *store.History
	admin    *store.AdminGate
	metrics  *metrics.Metrics
	opts     Options

	upgrader websocket.Upgrader
	clients  sync.Map

	// wg tracks in-flight generations. Add is only called under mu while
	// closing is false.
	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

func New(model ml.Model, accounts *store.Accounts, history *store.History, admin *store.AdminGate, m *metrics.Metrics, opts Options) *Server {
	if m == nil {
		m = metrics.New()
	}
	s := &Server{
		model:    model,
		accounts: accounts,
		history:  history,
		admin:    admin,
		metrics:  m,
		opts:     opts,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if len(s.opts.AllowedOrigins) == 0 || origin == "" {
		return true
	}
	for _, o := range s.opts.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// Handler returns the routed HTTP handler with CORS applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleWebSocket)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	if s.opts.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.opts.StaticDir)))
	}

	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(r)
}

// Start serves on port until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start(port string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Serve(ctx, port)
}

// Serve runs until ctx is done.
func (s *Server) Serve(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", port, "static", s.opts.StaticDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	// Hijacked websocket connections are not closed by Shutdown.
	s.clients.Range(func(_, v any) bool {
		v.(*client).close()
		return true
	})
	s.drain()
	return err
}

// track registers a background generation. It reports false once the
// server has started draining.
func (s *Server) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.wg.Add(1)
	return true
}

// drain refuses new generations and waits for running ones.
func (s *Server) drain() {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := newClient(conn, session.New(s.model, s.history))
	s.clients.Store(c.id, c)
	s.metrics.Connections.Inc()
	defer func() {
		c.close()
		s.clients.Delete(c.id)
		s.metrics.Connections.Dec()
	}()
	logger.Debug("client connected", "client", c.id)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("error reading message", "client", c.id, "error", err)
			}
			break
		}

		var msg inbound
		if err := json.Unmarshal(message, &msg); err != nil || msg.Type == "" {
			c.sendError(codeInvalidMessage, "Invalid message format")
			continue
		}
		s.metrics.Message(msg.Type)
		s.handleWebSocketMessage(c, msg)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func newConnID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
