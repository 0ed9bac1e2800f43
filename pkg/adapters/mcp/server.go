package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/mbtassist/internal/presentation/graph"
	"github.com/aretw0/mbtassist/internal/validator"
	"github.com/aretw0/mbtassist/pkg/adapters/file"
	"github.com/aretw0/mbtassist/pkg/domain"
	"github.com/aretw0/mbtassist/pkg/generator"
	"github.com/aretw0/mbtassist/pkg/ports"
	"github.com/aretw0/mbtassist/pkg/project"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ProjectsURI lists the stored projects.
const ProjectsURI = "mbt://projects"

// ModelArgs selects the model a tool works on: a stored project by name,
// or an inline JSON/YAML document.
type ModelArgs struct {
	Project  string `json:"project,omitempty"`
	Document string `json:"document,omitempty"`
}

// GenerateArgs are the arguments of generate_test_cases.
type GenerateArgs struct {
	ModelArgs
	MaxPaths int     `json:"max_paths,omitempty"`
	Sentinel *string `json:"sentinel,omitempty"`
}

// MermaidArgs are the arguments of render_mermaid.
type MermaidArgs struct {
	ModelArgs
	Case int `json:"case,omitempty"`
}

// GenerateResponse is the structured output of generate_test_cases.
type GenerateResponse struct {
	StartNode string            `json:"start_node,omitempty" jsonschema_description:"Name of the initial state"`
	NoStart   bool              `json:"no_start" jsonschema_description:"True when no state is flagged initial"`
	Truncated bool              `json:"truncated" jsonschema_description:"True when max_paths cut the enumeration short"`
	TestCases []domain.TestCase `json:"test_cases" jsonschema_description:"Generated test cases, numbered from 1"`
}

// Server exposes generation, validation and rendering as MCP tools.
type Server struct {
	store     ports.ProjectStore
	logger    *slog.Logger
	genOpts   []generator.Option
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*options)

type options struct {
	version string
	store   ports.ProjectStore
	logger  *slog.Logger
	genOpts []generator.Option
}

// WithVersion sets the version reported to clients.
func WithVersion(v string) Option {
	return func(o *options) { o.version = strings.TrimSpace(v) }
}

// WithStore lets tools refer to stored projects by name and enables the projects resource.
func WithStore(store ports.ProjectStore) Option {
	return func(o *options) { o.store = store }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithGeneratorOptions applies opts to every generation run.
func WithGeneratorOptions(opts ...generator.Option) Option {
	return func(o *options) { o.genOpts = append(o.genOpts, opts...) }
}

// NewServer creates a new MCP Server instance.
func NewServer(opts ...Option) *Server {
	o := options{
		version: "dev",
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		store:     o.store,
		logger:    o.logger,
		genOpts:   append([]generator.Option{generator.WithLogger(o.logger)}, o.genOpts...),
		mcpServer: server.NewMCPServer("mbt-mcp", o.version, server.WithResourceCapabilities(false, false)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying server, e.g. to drive it in-process.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and shuts it down
// when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

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
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		// Create a timeout context for the graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	modelParams := []mcp.ToolOption{
		mcp.WithString("project", mcp.Description("Name of a stored project")),
		mcp.WithString("document", mcp.Description("Inline project document, JSON or YAML (used when project is empty)")),
	}

	// TOOL: generate_test_cases
	generateTool := mcp.NewTool("generate_test_cases", append([]mcp.ToolOption{
		mcp.WithDescription("Enumerate every path from the initial state and return one test case per path."),
		mcp.WithNumber("max_paths", mcp.Description("Stop after this many paths (0 = unlimited)")),
		mcp.WithString("sentinel", mcp.Description("Placeholder for missing input or expected result (default N/A)")),
		mcp.WithOutputSchema[GenerateResponse](),
	}, modelParams...)...)
	s.mcpServer.AddTool(generateTool, mcp.NewStructuredToolHandler(s.handleGenerate))

	// TOOL: validate_model
	validateTool := mcp.NewTool("validate_model", append([]mcp.ToolOption{
		mcp.WithDescription("Lint the model: initial state, dangling transitions, unreachable states."),
		mcp.WithOutputSchema[validator.Report](),
	}, modelParams...)...)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	// TOOL: render_mermaid
	mermaidTool := mcp.NewTool("render_mermaid", append([]mcp.ToolOption{
		mcp.WithDescription("Render the model as a Mermaid flowchart, optionally highlighting one test case."),
		mcp.WithNumber("case", mcp.Description("Test case number to highlight (optional)")),
	}, modelParams...)...)
	s.mcpServer.AddTool(mermaidTool, mcp.NewTypedToolHandler(s.handleMermaid))
}

func (s *Server) handleGenerate(ctx context.Context, request mcp.CallToolRequest, args GenerateArgs) (GenerateResponse, error) {
	g, err := s.model(ctx, args.ModelArgs)
	if err != nil {
		return GenerateResponse{}, err
	}

	opts := append([]generator.Option{}, s.genOpts...)
	if args.MaxPaths > 0 {
		opts = append(opts, generator.WithMaxPaths(args.MaxPaths))
	}
	if args.Sentinel != nil {
		opts = append(opts, generator.WithSentinel(*args.Sentinel))
	}
	res := generator.New(g, opts...).Generate()

	resp := GenerateResponse{
		NoStart:   res.NoStart,
		Truncated: res.Truncated,
		TestCases: res.TestCases,
	}
	if res.StartNode != nil {
		resp.StartNode = res.StartNode.Name
	}
	if resp.TestCases == nil {
		resp.TestCases = []domain.TestCase{}
	}
	return resp, nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args ModelArgs) (validator.Report, error) {
	doc, err := s.document(ctx, args)
	if err != nil {
		return validator.Report{}, err
	}
	report := validator.ValidateDocument(doc)
	if report.Issues == nil {
		report.Issues = []validator.Issue{}
	}
	return report, nil
}

func (s *Server) handleMermaid(ctx context.Context, request mcp.CallToolRequest, args MermaidArgs) (*mcp.CallToolResult, error) {
	g, err := s.model(ctx, args.ModelArgs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var overlay *graph.Overlay
	if args.Case > 0 {
		paths := generator.New(g, s.genOpts...).GenerateAllPaths()
		if args.Case > len(paths) {
			return mcp.NewToolResultError(fmt.Sprintf("test case %d does not exist (%d generated)", args.Case, len(paths))), nil
		}
		overlay = graph.OverlayFor(paths[args.Case-1])
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(g, overlay)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: mbt://projects
	s.mcpServer.AddResource(mcp.NewResource(ProjectsURI, "Stored Projects",
		mcp.WithResourceDescription("Names of the projects in the configured store"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		names := []string{}
		if s.store != nil {
			listed, err := s.store.List(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to list projects: %w", err)
			}
			names = append(names, listed...)
		}
		jsonBytes, _ := json.Marshal(names)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      ProjectsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

// document resolves the model arguments to a project document.
func (s *Server) document(ctx context.Context, args ModelArgs) (*project.Document, error) {
	switch {
	case args.Project != "":
		if s.store == nil {
			return nil, errors.New("no project store configured")
		}
		doc, err := s.store.Load(ctx, args.Project)
		if err != nil {
			return nil, fmt.Errorf("failed to load project %q: %w", args.Project, err)
		}
		return doc, nil
	case strings.TrimSpace(args.Document) != "":
		data := []byte(args.Document)
		format := file.FormatYAML
		if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
			format = file.FormatJSON
		}
		doc, err := file.Decode(data, format)
		if err != nil {
			return nil, fmt.Errorf("invalid document: %w", err)
		}
		return doc, nil
	default:
		return nil, errors.New("either project or document is required")
	}
}

func (s *Server) model(ctx context.Context, args ModelArgs) (*domain.Graph, error) {
	doc, err := s.document(ctx, args)
	if err != nil {
		return nil, err
	}
	g, _, err := doc.Graph()
	if err != nil {
		return nil, err
	}
	return g, nil
}
