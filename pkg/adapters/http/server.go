package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/tapestry"
	"github.com/aretw0/tapestry/internal/logging"
	"github.com/aretw0/tapestry/pkg/domain"
	"github.com/aretw0/tapestry/pkg/schema"
	"github.com/aretw0/tapestry/pkg/session"
)

// MaxBodyBytes bounds request bodies, including imported documents.
const MaxBodyBytes = 10 << 20

// Server exposes editor sessions over HTTP.
type Server struct {
	Sessions *session.Manager
	Streams  *StreamManager

	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithStreams shares a StreamManager with the session factory, so that
// editor hooks can broadcast to subscribers.
func WithStreams(streams *StreamManager) Option {
	return func(s *Server) {
		s.Streams = streams
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger configures request and error logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for a session manager.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Sessions: sessions,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}
	return s.Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.CreateSession)
		r.Get("/", s.ListSessions)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Delete("/", s.DeleteSession)
			r.Get("/events", s.SubscribeEvents)

			r.Get("/document", s.GetDocument)
			r.Put("/document", s.PutDocument)
			r.Post("/merge", s.MergeDocument)

			r.Post("/nodes", s.AddNode)
			r.Patch("/nodes/{nodeID}", s.UpdateNode)
			r.Put("/nodes/{nodeID}/position", s.MoveNode)
			r.Delete("/nodes/{nodeID}", s.DeleteNode)

			r.Post("/edges", s.Connect)
			r.Delete("/edges/{edgeID}", s.Disconnect)

			r.Put("/selection", s.Select)
			r.Post("/copy", s.Copy)
			r.Post("/paste", s.Paste)

			r.Get("/variables", s.ListVariables)
			r.Put("/variables/{name}", s.SetVariable)
			r.Delete("/variables/{name}", s.DeleteVariable)
			r.Get("/variables/{name}/usages", s.FindUsages)
			r.Post("/variables/rename", s.RenameVariable)

			r.Post("/record", s.Record)
			r.Post("/undo", s.Undo)
			r.Post("/redo", s.Redo)

			r.Post("/logs", s.AddLogs)
			r.Get("/logs", s.GetLogs)
			r.Post("/rows", s.AddRows)
			r.Get("/rows", s.GetRows)
			r.Get("/telemetry", s.GetTelemetry)
			r.Delete("/telemetry", s.ClearTelemetry)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	})
}

// withEditor runs fn on the session named in the URL, under its lock.
func (s *Server) withEditor(w http.ResponseWriter, r *http.Request, fn func(ed *tapestry.Editor) (int, any, error)) {
	sessionID := chi.URLParam(r, "sessionID")
	var (
		status int
		body   any
	)
	err := s.Sessions.WithEditor(r.Context(), sessionID, func(_ context.Context, ed *tapestry.Editor) error {
		var err error
		status, body, err = fn(ed)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, status, body)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	if status == http.StatusNoContent || body == nil {
		if status == 0 {
			status = http.StatusNoContent
		}
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		s.logger.Warn("request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// StatusFor maps engine errors onto HTTP status codes.
func StatusFor(err error) int {
	var (
		validation *schema.ValidationError
		aggregate  *schema.AggregateError
		maxBytes   *http.MaxBytesError
	)
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, domain.ErrNodeNotFound),
		errors.Is(err, domain.ErrEdgeNotFound),
		errors.Is(err, domain.ErrVariableNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrVariableExists),
		errors.Is(err, domain.ErrClipboardEmpty):
		return http.StatusConflict
	case errors.Is(err, domain.ErrSelfLoop),
		errors.Is(err, domain.ErrMalformedDocument),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrUnsupportedValue),
		errors.As(err, &validation),
		errors.As(err, &aggregate):
		return http.StatusUnprocessableEntity
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, tapestry.ErrNoClipboardStore):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

var errBadRequest = errors.New("bad request")

func errBadRequestf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errBadRequest}, args...)...)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			// empty body: keep the zero value
			return nil
		}
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return errBadRequestf("invalid request body: %v", err)
	}
	return nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	return io.ReadAll(r.Body)
}

// positionQuery reads an optional ?x=&y= drop point.
func positionQuery(r *http.Request) (*domain.Position, error) {
	qx, qy := r.URL.Query().Get("x"), r.URL.Query().Get("y")
	if qx == "" && qy == "" {
		return nil, nil
	}
	x, err := strconv.ParseFloat(qx, 64)
	if err != nil {
		return nil, errBadRequestf("x: %v", err)
	}
	y, err := strconv.ParseFloat(qy, 64)
	if err != nil {
		return nil, errBadRequestf("y: %v", err)
	}
	return &domain.Position{X: x, Y: y}, nil
}
