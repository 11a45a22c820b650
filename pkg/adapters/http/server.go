package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/manager"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed openapi.yaml
var openAPISpec []byte

// OpenAPISpec returns the OpenAPI document describing the HTTP API.
func OpenAPISpec() []byte {
	return openAPISpec
}

// ArgParam is the form or query parameter carrying the argument of a
// parameterised event.
const ArgParam = "arg"

// Server exposes a journey manager over HTTP.
type Server struct {
	Manager *manager.Manager
	Streams *StreamManager

	events  map[string]domain.EventKey
	metrics http.Handler
	cookie  cookieConfig
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithEvents registers the events clients may fire. Unregistered mnemonics
// are fired as simple events; parameterised events must be registered so
// their argument can be decoded.
func WithEvents(events ...domain.EventKey) Option {
	return func(s *Server) {
		for _, e := range events {
			s.events[e.Mnemonic()] = e
		}
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithSecureCookies marks the session cookie Secure.
func WithSecureCookies(secure bool) Option {
	return func(s *Server) {
		s.cookie.secure = secure
	}
}

// WithLogger configures the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler of mgr.
func NewHandler(mgr *manager.Manager, opts ...Option) http.Handler {
	s := &Server{
		Manager: mgr,
		Streams: NewStreamManager(),
		events:  make(map[string]domain.EventKey),
		cookie:  cookieConfig{name: SessionCookie},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.withSession)
	r.Use(withToken)

	s.mount(r)

	return enableCORS(r)
}

// mount registers every route of the API on r.
func (s *Server) mount(r chi.Router) {
	r.Get("/health", s.GetHealth)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(openAPISpec)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/journeys/{name}", func(r chi.Router) {
		r.Post("/start", s.StartJourney)
		r.Get("/restore", s.RestoreJourney)
		r.Get("/graph", s.GetGraph)
	})
	r.Route("/journey", func(r chi.Router) {
		r.Post("/events/{event}", s.FireEvent)
		r.Post("/back", s.NavigateBack)
		r.Get("/backlink", s.GetBackLink)
		r.Get("/stream", s.SubscribeEvents)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StageResponse is the JSON view of a manager outcome.
type StageResponse struct {
	Journey     string          `json:"journey,omitempty"`
	Token       string          `json:"token,omitempty"`
	Stage       string          `json:"stage,omitempty"`
	DisplayName string          `json:"display_name,omitempty"`
	BackLink    domain.BackLink `json:"back_link"`
	Response    any             `json:"response,omitempty"`
	Redirect    string          `json:"redirect,omitempty"`
	Exited      bool            `json:"exited,omitempty"`
}

func newStageResponse(out *manager.Outcome) StageResponse {
	resp := StageResponse{
		Token:    out.Token,
		BackLink: out.BackLink,
		Response: out.Response,
		Redirect: out.RedirectURL,
		Exited:   out.Exited,
	}
	if out.Journey != nil {
		resp.Journey = out.Journey.Name
	}
	if out.Stage != nil {
		resp.Stage = out.Stage.Name
		resp.DisplayName = out.Stage.DisplayName
	}
	return resp
}

// StartJourney handles POST /journeys/{name}/start.
func (s *Server) StartJourney(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.run(w, r, func(ctx context.Context) (*manager.Outcome, error) {
		return s.Manager.StartJourney(ctx, name)
	})
}

// FireEvent handles POST /journey/events/{event}.
func (s *Server) FireEvent(w http.ResponseWriter, r *http.Request) {
	mnemonic := chi.URLParam(r, "event")
	token := tokenFrom(r.Context())

	event, ok := s.events[mnemonic]
	if !ok {
		event = domain.NewEvent(mnemonic)
	}

	var arg any
	hasArg := event.Parameterised()
	if hasArg {
		parser, ok := event.(domain.ArgParser)
		if !ok {
			s.writeError(w, fmt.Errorf("event '%s' cannot decode its argument: %w", mnemonic, domain.ErrArgumentMismatch))
			return
		}
		raw := r.FormValue(ArgParam)
		v, err := parser.ParseArg(raw)
		if err != nil {
			s.logger.Warn("FireEvent: Invalid argument", "event", mnemonic, "err", err)
			s.writeError(w, fmt.Errorf("invalid argument: %w: %w", domain.ErrArgumentMismatch, err))
			return
		}
		arg = v
	}

	s.run(w, r, func(ctx context.Context) (*manager.Outcome, error) {
		return s.Manager.PerformEvent(ctx, token, event, arg, hasArg)
	})
}

// NavigateBack handles POST /journey/back.
func (s *Server) NavigateBack(w http.ResponseWriter, r *http.Request) {
	token := tokenFrom(r.Context())
	s.run(w, r, func(ctx context.Context) (*manager.Outcome, error) {
		out, err := s.Manager.NavigateBack(ctx, token)
		if err != nil || !out.Exited || s.Manager.Sessions() == nil {
			return out, err
		}
		// Token was parsed by NavigateBack, so it holds a journey name.
		journey, _ := domain.ParseJourney(token)
		if err := s.Manager.DiscardJourney(ctx, sessionFrom(ctx), journey.Name); err != nil {
			return nil, err
		}
		return out, nil
	})
}

// RestoreJourney handles GET /journeys/{name}/restore.
func (s *Server) RestoreJourney(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.run(w, r, func(ctx context.Context) (*manager.Outcome, error) {
		return s.Manager.RestoreCurrentStage(ctx, sessionFrom(ctx), name)
	})
}

// GetBackLink handles GET /journey/backlink.
func (s *Server) GetBackLink(w http.ResponseWriter, r *http.Request) {
	link, err := s.Manager.BackLinkFor(tokenFrom(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, link, s.logger)
}

// GetGraph handles GET /journeys/{name}/graph, highlighting the journey of
// the request token when it belongs to the same journey.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	def, err := s.Manager.Definition(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var body string
	switch r.URL.Query().Get("format") {
	case "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		body = graph.GenerateMarkdown(def)
	case "", "mermaid":
		var overlay *graph.GraphOverlay
		if journey, err := domain.ParseJourney(tokenFrom(r.Context())); err == nil && journey.Name == def.Name() {
			overlay = graph.OverlayFor(journey)
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		body = graph.GenerateMermaid(def, overlay)
	default:
		http.Error(w, "unknown graph format", http.StatusBadRequest)
		return
	}

	if _, err := fmt.Fprint(w, body); err != nil {
		s.logger.Error("GetGraph response write failed", "err", err)
	}
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"journeys": s.Manager.Journeys(),
	}, s.logger)
}

// run performs op and writes its outcome. With a store configured, the
// whole operation holds the session lock and the resulting journey is saved.
func (s *Server) run(w http.ResponseWriter, r *http.Request, op func(context.Context) (*manager.Outcome, error)) {
	ctx := r.Context()
	sessionID := sessionFrom(ctx)

	var out *manager.Outcome
	exec := func(ctx context.Context) error {
		var err error
		out, err = op(ctx)
		if err != nil {
			return err
		}
		if out.Journey != nil && s.Manager.Sessions() != nil {
			return s.Manager.SaveJourney(ctx, sessionID, out.Journey)
		}
		return nil
	}

	var err error
	if sessions := s.Manager.Sessions(); sessions != nil {
		err = sessions.WithLock(ctx, sessionID, exec)
	} else {
		err = exec(ctx)
	}
	if err != nil {
		s.logger.Warn("Journey request failed", "path", r.URL.Path, "session_id", sessionID, "err", err)
		s.writeError(w, err)
		return
	}

	resp := newStageResponse(out)
	if payload, err := json.Marshal(resp); err == nil {
		s.Streams.Broadcast(sessionID, string(payload))
	}

	if out.Redirect() {
		w.Header().Set("Location", out.RedirectURL)
		writeJSON(w, http.StatusSeeOther, resp, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, resp, s.logger)
}

// StatusFor maps engine errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrFormat), errors.Is(err, domain.ErrNoJourney), errors.Is(err, domain.ErrArgumentMismatch):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownJourney), errors.Is(err, domain.ErrJourneyNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCannotGoBack):
		return http.StatusConflict
	case errors.Is(err, domain.ErrResolution):
		return http.StatusUnprocessableEntity
	case errors.Is(err, manager.ErrNoStore):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Journey request error", "err", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()}, s.logger)
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Response encode failed", "err", err)
	}
}
