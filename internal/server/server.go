package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/example/go-ttstokenizer/internal/config"
	"github.com/example/go-ttstokenizer/internal/phonetic"
	"github.com/example/go-ttstokenizer/internal/tokenizer"
	"github.com/example/go-ttstokenizer/internal/tts"
)

// ParseLogLevel maps a level name to slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// Frontend is the text front end the handler serves. *tts.Service
// implements it.
type Frontend interface {
	Normalize(text string) (string, error)
	Symbolize(text string) ([]string, error)
	Tokenize(text string) ([]int64, error)
	TokenizeBatch(ctx context.Context, texts []string) ([][]int64, error)
	HasVocabulary() bool
	Backend() string
}

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxTextBytes   int
	workers        int
	requestTimeout time.Duration
	corsOrigins    []string
	logger         *slog.Logger
}

func defaultOptions() options {
	return options{
		maxTextBytes:   4096,
		workers:        2,
		requestTimeout: 60 * time.Second,
		corsOrigins:    []string{"*"},
		logger:         slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxTextBytes sets the maximum allowed size in bytes of each text.
func WithMaxTextBytes(n int) Option {
	return func(o *options) { o.maxTextBytes = n }
}

// WithWorkers sets the maximum number of concurrently processed requests.
// Zero disables throttling.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithRequestTimeout sets the per-request processing deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins ...string) Option {
	return func(o *options) { o.corsOrigins = origins }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

// handler holds the dependencies needed to serve HTTP requests.
type handler struct {
	fe   Frontend
	opts options
	sem  chan struct{} // semaphore for worker pool
	log  *slog.Logger
}

// NewHandler returns an http.Handler that serves GET /health and
// POST /normalize, /symbolize, /tokenize and /tokenize/batch.
func NewHandler(fe Frontend, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		fe:   fe,
		opts: opts,
		log:  opts.logger,
	}
	if opts.workers > 0 {
		h.sem = make(chan struct{}, opts.workers)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", h.handleHealth)
	r.Post("/normalize", h.handleNormalize)
	r.Post("/symbolize", h.handleSymbolize)
	r.Post("/tokenize", h.handleTokenize)
	r.Post("/tokenize/batch", h.handleTokenizeBatch)

	return r
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

type healthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Backend    string `json:"backend"`
	Vocabulary bool   `json:"vocabulary"`
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Version:    buildVersion(),
		Backend:    h.fe.Backend(),
		Vocabulary: h.fe.HasVocabulary(),
	})
}

func (h *handler) handleNormalize(w http.ResponseWriter, r *http.Request) {
	serveText(h, w, r, "normalize", h.fe.Normalize, func(s string) any {
		return map[string]string{"text": s}
	})
}

func (h *handler) handleSymbolize(w http.ResponseWriter, r *http.Request) {
	serveText(h, w, r, "symbolize", h.fe.Symbolize, func(syms []string) any {
		return map[string][]string{"symbols": syms}
	})
}

func (h *handler) handleTokenize(w http.ResponseWriter, r *http.Request) {
	serveText(h, w, r, "tokenize", h.fe.Tokenize, func(ids []int64) any {
		return map[string][]int64{"ids": ids}
	})
}

func (h *handler) handleTokenizeBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !h.bind(w, r, int64(maxBatchTexts*(h.opts.maxTextBytes+16)+1024), &req) {
		return
	}

	total := 0
	for i, text := range req.Texts {
		if len(text) > h.opts.maxTextBytes {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("texts[%d] exceeds maximum size of %d bytes", i, h.opts.maxTextBytes))
			return
		}
		total += len(text)
	}

	h.serve(w, r, "tokenize batch", total, func(ctx context.Context) (any, error) {
		ids, err := h.fe.TokenizeBatch(ctx, req.Texts)
		if err != nil {
			return nil, err
		}
		return map[string][][]int64{"ids": ids}, nil
	})
}

// serveText decodes a {"text": ...} body, runs fn under the worker and
// timeout limits and writes wrap(result).
func serveText[T any](h *handler, w http.ResponseWriter, r *http.Request, op string, fn func(string) (T, error), wrap func(T) any) {
	var req textRequest
	if !h.bind(w, r, int64(h.opts.maxTextBytes+1024), &req) {
		return
	}

	if len(req.Text) > h.opts.maxTextBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("text exceeds maximum size of %d bytes", h.opts.maxTextBytes))
		return
	}

	h.serve(w, r, op, len(req.Text), func(context.Context) (any, error) {
		v, err := fn(req.Text)
		if err != nil {
			return nil, err
		}
		return wrap(v), nil
	})
}

func (h *handler) bind(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) bool {
	err := decodeJSON(w, r, maxBytes, dst)
	if err == nil {
		return true
	}

	var be *bindError
	if errors.As(err, &be) {
		writeError(w, be.status, be.msg)
	} else {
		writeError(w, http.StatusBadRequest, err.Error())
	}

	return false
}

// serve acquires a worker slot, applies the request timeout, runs fn and
// writes its result or the mapped error.
func (h *handler) serve(w http.ResponseWriter, r *http.Request, op string, textLen int, fn func(context.Context) (any, error)) {
	// Acquire a worker slot, honouring context cancellation while waiting.
	// The slot is held until fn returns, even after a timeout response.
	var release func()
	if h.sem != nil {
		select {
		case h.sem <- struct{}{}:
			release = func() { <-h.sem }
		case <-r.Context().Done():
			writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for worker")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.requestTimeout)
	defer cancel()

	start := time.Now()
	body, err := await(ctx, release, func() (any, error) { return fn(ctx) })
	durationMS := time.Since(start).Milliseconds()

	attrs := []any{
		slog.String("op", op),
		slog.String("request_id", chimw.GetReqID(r.Context())),
		slog.Int("text_len", textLen),
		slog.Int64("duration_ms", durationMS),
	}

	if err != nil {
		status := statusFor(err)
		attrs = append(attrs, slog.Int("status", status), slog.String("error", err.Error()))
		switch {
		case status == http.StatusGatewayTimeout:
			h.log.WarnContext(r.Context(), "request timed out", attrs...)
			writeError(w, status, op+" timed out")
		case status >= http.StatusInternalServerError:
			h.log.ErrorContext(r.Context(), "request failed", attrs...)
			writeError(w, status, err.Error())
		default:
			h.log.InfoContext(r.Context(), "request rejected", attrs...)
			writeError(w, status, err.Error())
		}
		return
	}

	h.log.InfoContext(r.Context(), "request complete", attrs...)
	writeJSON(w, http.StatusOK, body)
}

// await runs fn in its own goroutine so that a blocking call still honours
// ctx. The goroutine finishes in the background after a timeout and calls
// done, if non-nil, once fn has returned. A panic in fn is returned as an
// error.
func await[T any](ctx context.Context, done func(), fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}

	ch := make(chan result, 1)
	go func() {
		if done != nil {
			defer done()
		}
		defer func() {
			if p := recover(); p != nil {
				ch <- result{err: fmt.Errorf("panic: %v", p)}
			}
		}()

		v, err := fn()
		ch <- result{v: v, err: err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-ch:
		return res.v, res.err
	}
}

// statusFor maps front-end errors to HTTP status codes.
func statusFor(err error) int {
	var (
		unknownSym  *tokenizer.UnknownSymbolError
		unknownWord *phonetic.UnknownWordError
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	case errors.As(err, &unknownSym), errors.As(err, &unknownWord):
		return http.StatusUnprocessableEntity
	case errors.Is(err, tokenizer.ErrNoVocabulary), errors.Is(err, tts.ErrNoSymbols):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server wires handler into net/http.Server with graceful shutdown
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	cfg             config.Config
	svc             *tts.Service
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

// New returns a Server for cfg. A nil svc is built from cfg on Start.
func New(cfg config.Config, svc *tts.Service) *Server {
	shutdown := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	if shutdown <= 0 {
		shutdown = 30 * time.Second
	}

	return &Server{
		cfg:             cfg,
		svc:             svc,
		logger:          slog.Default(),
		shutdownTimeout: shutdown,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

// WithLogger sets the request logger.
func (s *Server) WithLogger(l *slog.Logger) *Server {
	s.logger = l
	return s
}

// Handler builds the HTTP handler, constructing the service if needed.
func (s *Server) Handler() (http.Handler, error) {
	svc := s.svc
	if svc == nil {
		var err error
		svc, err = tts.NewService(s.cfg)
		if err != nil {
			return nil, fmt.Errorf("initialize service: %w", err)
		}
		s.svc = svc
	}

	return NewHandler(svc,
		WithWorkers(s.cfg.Server.Workers),
		WithMaxTextBytes(s.cfg.Server.MaxTextBytes),
		WithRequestTimeout(time.Duration(s.cfg.Server.RequestTimeout)*time.Second),
		WithLogger(s.logger),
	), nil
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	h, err := s.Handler()
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	s.logger.Info("listening",
		slog.String("addr", s.cfg.Server.ListenAddr),
		slog.String("backend", s.svc.Backend()),
	)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}

// CheckHealth checks GET /health on addr.
func CheckHealth(addr string) error {
	resp, err := http.Get("http://" + addr + "/health") //nolint:noctx
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %s", resp.Status)
	}
	return nil
}
