// Package mcp exposes journeys to AI agents as Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/manager"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// StageResponse is the structured result of every journey tool.
type StageResponse struct {
	Token    string `json:"token,omitempty" jsonschema_description:"Journey token to pass to the next call"`
	Stage    string `json:"stage,omitempty" jsonschema_description:"Name of the current stage"`
	Title    string `json:"title,omitempty" jsonschema_description:"Display name of the current stage"`
	BackLink string `json:"back_link,omitempty" jsonschema_description:"Prompt of the back link, empty when suppressed"`
	Redirect string `json:"redirect,omitempty" jsonschema_description:"URL to follow for callable stages or exits"`
	Response any    `json:"response,omitempty" jsonschema_description:"What the stage rendered"`
	Exited   bool   `json:"exited,omitempty" jsonschema_description:"The journey was left through its exit link"`
}

// Server wraps a journey manager and exposes it as an MCP Server.
type Server struct {
	manager   *manager.Manager
	events    map[string]domain.EventKey
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithEvents registers the events agents may fire, so parameterised
// arguments can be decoded.
func WithEvents(events ...domain.EventKey) Option {
	return func(s *Server) {
		for _, e := range events {
			s.events[e.Mnemonic()] = e
		}
	}
}

// WithLogger configures the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(mgr *manager.Manager, version string, opts ...Option) *Server {
	s := &Server{
		manager:   mgr,
		events:    make(map[string]domain.EventKey),
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("waypoint-mcp", version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_journey",
		mcp.WithDescription("Start a journey and return its first stage."),
		mcp.WithString("journey", mcp.Required(), mcp.Description("Name of the journey")),
		mcp.WithOutputSchema[StageResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("fire_event",
		mcp.WithDescription("Fire an event at the current stage of a journey."),
		mcp.WithString("token", mcp.Required(), mcp.Description("Journey token returned by the previous call")),
		mcp.WithString("event", mcp.Required(), mcp.Description("Event mnemonic, e.g. _NEXT")),
		mcp.WithString("arg", mcp.Description("Argument of a parameterised event")),
		mcp.WithOutputSchema[StageResponse](),
	), mcp.NewStructuredToolHandler(s.handleFire))

	s.mcpServer.AddTool(mcp.NewTool("navigate_back",
		mcp.WithDescription("Go back to the previous stage, or exit the journey from its first stage."),
		mcp.WithString("token", mcp.Required(), mcp.Description("Journey token returned by the previous call")),
		mcp.WithOutputSchema[StageResponse](),
	), mcp.NewStructuredToolHandler(s.handleBack))

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the Mermaid graph of a journey."),
		mcp.WithString("journey", mcp.Required(), mcp.Description("Name of the journey")),
		mcp.WithString("token", mcp.Description("Journey token whose history is highlighted")),
	), s.handleGraph)
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (StageResponse, error) {
	name, _ := args["journey"].(string)
	out, err := s.manager.StartJourney(ctx, name)
	if err != nil {
		return StageResponse{}, err
	}
	return newStageResponse(out), nil
}

func (s *Server) handleFire(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (StageResponse, error) {
	token, _ := args["token"].(string)
	mnemonic, _ := args["event"].(string)
	if mnemonic == "" {
		return StageResponse{}, errors.New("event is required")
	}

	event, ok := s.events[mnemonic]
	if !ok {
		event = domain.NewEvent(mnemonic)
	}

	var arg any
	hasArg := event.Parameterised()
	if hasArg {
		parser, ok := event.(domain.ArgParser)
		if !ok {
			return StageResponse{}, fmt.Errorf("event '%s' cannot decode its argument: %w", mnemonic, domain.ErrArgumentMismatch)
		}
		raw, _ := args["arg"].(string)
		v, err := parser.ParseArg(raw)
		if err != nil {
			s.logger.Warn("MCP fire_event: Invalid argument", "event", mnemonic, "err", err)
			return StageResponse{}, fmt.Errorf("invalid argument: %w: %w", domain.ErrArgumentMismatch, err)
		}
		arg = v
	}

	out, err := s.manager.PerformEvent(ctx, token, event, arg, hasArg)
	if err != nil {
		return StageResponse{}, err
	}
	return newStageResponse(out), nil
}

func (s *Server) handleBack(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (StageResponse, error) {
	token, _ := args["token"].(string)
	out, err := s.manager.NavigateBack(ctx, token)
	if err != nil {
		return StageResponse{}, err
	}
	return newStageResponse(out), nil
}

func (s *Server) handleGraph(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("journey", "")
	def, err := s.manager.Definition(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var overlay *graph.GraphOverlay
	if journey, err := domain.ParseJourney(request.GetString("token", "")); err == nil && journey.Name == name {
		overlay = graph.OverlayFor(journey)
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(def, overlay)), nil
}

func (s *Server) registerResources() {
	for _, name := range s.manager.Journeys() {
		uri := "waypoint://journeys/" + name
		s.mcpServer.AddResource(mcp.NewResource(uri, "Journey "+name,
			mcp.WithMIMEType("text/markdown"),
		), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			def, err := s.manager.Definition(name)
			if err != nil {
				return nil, err
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     graph.GenerateMarkdown(def),
				},
			}, nil
		})
	}
}

func newStageResponse(out *manager.Outcome) StageResponse {
	resp := StageResponse{
		Token:    out.Token,
		Redirect: out.RedirectURL,
		Response: out.Response,
		Exited:   out.Exited,
	}
	if !out.BackLink.Suppressed {
		resp.BackLink = out.BackLink.Prompt
	}
	if out.Stage != nil {
		resp.Stage = out.Stage.Name
		resp.Title = out.Stage.DisplayName
	}
	return resp
}
