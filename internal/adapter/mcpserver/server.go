// Package mcpserver exposes the form filler as MCP tools over stdio or
// streamable HTTP.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"formfill-agent/internal/adapter/transcript"
	"formfill-agent/internal/application/port/input"
	"formfill-agent/internal/application/port/output"
	"formfill-agent/internal/domain/entity"
	"formfill-agent/internal/usecase/classifier"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	ServerName = "formfill"

	ToolFillFormAndCheck   = "fill_form_and_check"
	ToolComposeFormTask    = "compose_form_task"
	ToolClassifyTranscript = "classify_transcript"

	EndpointPath    = "/mcp"
	shutdownTimeout = 5 * time.Second
)

type Server struct {
	filler input.FormFiller
	logger output.LoggerPort
	server *mcp.Server
}

func New(filler input.FormFiller, logger output.LoggerPort, version string) *Server {
	s := &Server{
		filler: filler,
		logger: logger,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    ServerName,
			Version: version,
		}, &mcp.ServerOptions{HasTools: true}),
	}
	s.registerTools()
	return s
}

func (s *Server) MCP() *mcp.Server {
	return s.server
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name: ToolFillFormAndCheck,
		Description: "Open a web page, fill the form fields in order, submit it and report " +
			"PASS, FAIL, DONE, TIMEOUT or ERROR together with the agent's step notes.",
		InputSchema: requestSchema(),
	}, s.fillFormAndCheck)

	s.server.AddTool(&mcp.Tool{
		Name:        ToolComposeFormTask,
		Description: "Render the instruction lines the browser agent would receive for a request, without running it.",
		InputSchema: requestSchema(),
	}, s.composeFormTask)

	s.server.AddTool(&mcp.Tool{
		Name:        ToolClassifyTranscript,
		Description: "Classify an existing agent transcript into a result tag and bounded step notes.",
		InputSchema: transcriptSchema(),
	}, s.classifyTranscript)
}

func (s *Server) fillFormAndCheck(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var formReq entity.FormFillRequest
	if err := decodeArguments(req.Params.Arguments, &formReq); err != nil {
		s.logger.Warn("Invalid tool arguments", "tool", ToolFillFormAndCheck, "error", err)
		res := classifier.ClassifyError(fmt.Errorf("invalid arguments: %w", err))
		return jsonResult(entity.NewFormFillResponse(res, entity.DefaultModel))
	}

	s.logger.Info("Tool call", "tool", ToolFillFormAndCheck, "url", formReq.URL, "model", formReq.Model)
	resp := s.filler.FillFormAndCheck(ctx, formReq)
	s.logger.Info("Tool result", "tool", ToolFillFormAndCheck, "result", resp.Result, "steps", len(resp.Steps))
	return jsonResult(resp)
}

type composeResult struct {
	Lines []string `json:"lines"`
	Task  string   `json:"task"`
}

func (s *Server) composeFormTask(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var formReq entity.FormFillRequest
	if err := decodeArguments(req.Params.Arguments, &formReq); err != nil {
		return errorResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}

	task, err := s.filler.ComposeTask(formReq)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(composeResult{Lines: task.Lines(), Task: task.String()})
}

type classifyArgs struct {
	Transcript json.RawMessage `json:"transcript"`
	Model      string          `json:"model"`
}

func (s *Server) classifyTranscript(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args classifyArgs
	if err := decodeArguments(req.Params.Arguments, &args); err != nil {
		return errorResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	if len(args.Transcript) == 0 {
		return errorResult(errors.New("transcript is required")), nil
	}

	t, err := transcript.Decode(args.Transcript)
	if err != nil {
		return errorResult(err), nil
	}
	model := args.Model
	if model == "" {
		model = entity.DefaultModel
	}
	return jsonResult(s.filler.ClassifyTranscript(t, model))
}

// decodeArguments accepts raw JSON or any value that marshals to a JSON object.
func decodeArguments(args any, dst any) error {
	var data []byte
	switch a := args.(type) {
	case nil:
	case json.RawMessage:
		data = a
	case []byte:
		data = a
	default:
		b, err := json.Marshal(a)
		if err != nil {
			return err
		}
		data = b
	}
	if len(data) == 0 || string(data) == "null" {
		data = []byte("{}")
	}
	return json.Unmarshal(data, dst)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: string(data)}},
		StructuredContent: v,
	}, nil
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		IsError: true,
	}
}

// RunStdio serves a single session on stdin/stdout until the client
// disconnects or ctx is cancelled.
func (s *Server) RunStdio(ctx context.Context) error {
	s.logger.Info("Serving MCP over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the HTTP routes: the streamable MCP endpoint and a health
// probe.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(httplog.RequestLogger(httplog.NewLogger(ServerName, httplog.Options{
		JSON:    true,
		Concise: true,
	})))

	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, &mcp.StreamableHTTPOptions{})
	r.Handle(EndpointPath, mcpHandler)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// RunHTTP blocks until ctx is cancelled, then shuts the listener down
// gracefully.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.serve(ctx, listener)
}

func (s *Server) serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Serving MCP over HTTP", "addr", listener.Addr().String(), "path", EndpointPath)

	serverErr := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-serverErr:
		return err
	}
}
