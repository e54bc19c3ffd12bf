package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"power_chess/internal/game"
)

// Config configures a Server. The zero value serves randomly seeded matches
// and logs nowhere.
type Config struct {
	Logger logrus.FieldLogger
	// Seed, when non-zero, makes every match reproducible: the n-th match
	// created without an explicit seed uses Seed+n.
	Seed            uint64
	DisableSpawning bool
}

// Server wires the HTTP layer to a registry of running matches.
type Server struct {
	cfg     Config
	log     logrus.FieldLogger
	matches *registry
	created atomic.Uint64
	srvMu   sync.Mutex
	srv     *http.Server
}

const (
	maxJSONBodyBytes int64 = 1 << 20
	apiCSP                 = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"
)

func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		silent := logrus.New()
		silent.SetOutput(io.Discard)
		logger = silent
	}
	return &Server{
		cfg:     cfg,
		log:     logger,
		matches: newRegistry(),
	}
}

// Handler returns the router, for tests and for embedding in another server.
func (s *Server) Handler() http.Handler { return s.routes() }

// Listen starts the HTTP server.
func (s *Server) Listen(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	s.srvMu.Lock()
	s.srv = srv
	s.srvMu.Unlock()
	defer func() {
		s.srvMu.Lock()
		s.srv = nil
		s.srvMu.Unlock()
	}()

	s.log.WithField("addr", addr).Info("http listening")
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close attempts a graceful shutdown of the HTTP server and drops every
// websocket subscriber.
func (s *Server) Close(ctx context.Context) error {
	s.srvMu.Lock()
	srv := s.srv
	s.srvMu.Unlock()
	for _, m := range s.matches.drain() {
		m.hub.Close()
	}
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/api/matches", s.withJSON(s.handleCreate))
	r.Get("/api/matches/{id}", s.withJSON(s.handleState))
	r.Delete("/api/matches/{id}", s.withJSON(s.handleDelete))
	for _, kind := range []string{cmdMove, cmdPromote, cmdChoose, cmdAction, cmdSpawn, cmdResign} {
		r.Post("/api/matches/{id}/"+kind, s.withJSON(s.handleCommand(kind)))
	}
	r.Get("/api/matches/{id}/ws", s.handleWS)
	return r
}

// requestLogger is middleware.Logger with logrus fields instead of a
// formatted line.
func requestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.WithFields(logrus.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
			}).Debug("request")
		})
	}
}

// ---- JSON helpers ----

func (s *Server) withJSON(h func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		applyAPISecurityHeaders(w.Header())
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if r.Body != nil && r.Body != http.NoBody {
			r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	writeJSON(w, map[string]string{"error": msg})
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func applyAPISecurityHeaders(h http.Header) {
	h.Set("Content-Security-Policy", apiCSP)
	h.Set("Cross-Origin-Opener-Policy", "same-origin")
	h.Set("Cross-Origin-Embedder-Policy", "require-corp")
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// readBody returns the raw request body, or false after answering the
// request itself.
func readBody(w http.ResponseWriter, r *http.Request) (json.RawMessage, bool) {
	if r.Body == nil {
		return nil, true
	}
	defer r.Body.Close()
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		if isBodyTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "request too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "unreadable body")
		return nil, false
	}
	return raw, true
}

// ---- API: matches ----

type createBody struct {
	Seed *uint64 `json:"seed"`
}

type matchResponse struct {
	ID    string          `json:"id"`
	State game.BoardState `json:"state"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	raw, ok := readBody(w, r)
	if !ok {
		return
	}
	var body createBody
	if err := decodePayload(raw, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	m := s.newMatch(body.Seed)
	m.mu.Lock()
	state := m.game.State()
	m.mu.Unlock()
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, matchResponse{ID: m.id, State: state})
}

func (s *Server) newMatch(seed *uint64) *match {
	id := uuid.NewString()
	logger := s.log.WithField("match", id)
	opts := game.Options{Logger: logger, DisableSpawning: s.cfg.DisableSpawning}
	if src, ok := s.seedFor(seed); ok {
		opts.Rand = rand.New(rand.NewPCG(src, src^0x9e3779b97f4a7c15))
	}
	m := &match{id: id, game: game.NewGame(opts), hub: NewHub(), log: logger}
	s.matches.add(m)
	logger.Info("match created")
	return m
}

func (s *Server) seedFor(explicit *uint64) (uint64, bool) {
	n := s.created.Add(1) - 1
	switch {
	case explicit != nil:
		return *explicit, true
	case s.cfg.Seed != 0:
		return s.cfg.Seed + n, true
	default:
		return 0, false
	}
}

// lookup resolves the {id} URL parameter, answering 404 when it is unknown.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*match, bool) {
	m, ok := s.matches.get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown match")
		return nil, false
	}
	return m, true
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	m, ok := s.lookup(w, r)
	if !ok {
		return
	}
	m.mu.Lock()
	state := m.game.State()
	m.mu.Unlock()
	writeJSON(w, map[string]any{"state": state})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	m, ok := s.matches.remove(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown match")
		return
	}
	m.hub.Close()
	m.log.Info("match deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCommand(kind string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := s.lookup(w, r)
		if !ok {
			return
		}
		raw, ok := readBody(w, r)
		if !ok {
			return
		}
		upd, err := m.execute(kind, raw)
		if err != nil {
			m.log.WithError(err).WithField("command", kind).Debug("command rejected")
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, upd)
	}
}
