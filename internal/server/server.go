// Package server exposes pipeline analysis and editing over HTTP.
//
// Routes:
//
//	POST   /pipelines/parse                  snapshot in, {num_nodes, num_edges, is_dag} out
//	POST   /nodes/ports                      {id, type, data} in, {ports, layout} out
//	GET    /health                           liveness and build info
//	GET    /metrics                          Prometheus exposition
//	POST   /workspaces                       create a workspace, optionally from a snapshot
//	GET    /workspaces/{ws}                  current snapshot
//	DELETE /workspaces/{ws}
//	GET    /workspaces/{ws}/analysis         full analysis report
//	POST   /workspaces/{ws}/nodes            add a node
//	PUT    /workspaces/{ws}/nodes/{node}     replace a node's content
//	DELETE /workspaces/{ws}/nodes/{node}
//	POST   /workspaces/{ws}/edges            add an edge
//	DELETE /workspaces/{ws}/edges/{edge}
//
// Errors are JSON objects {"error": {"code": ..., "message": ...}} with the
// codes from pkg/errors.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/pipegraph/pkg/analysis"
	"github.com/matzehuels/pipegraph/pkg/observability"
)

// Options configures a [Server]. Zero values select defaults.
type Options struct {
	Addr           string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxBodyBytes   int64
	MaxWorkspaces  int

	// WorkspaceTTL drops workspaces idle for longer than this. Zero keeps
	// them until deleted.
	WorkspaceTTL time.Duration
}

func (o Options) withDefaults() Options {
	if o.Addr == "" {
		o.Addr = ":8000"
	}
	if len(o.AllowedOrigins) == 0 {
		o.AllowedOrigins = []string{"*"}
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 15 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 30 * time.Second
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 1 << 20
	}
	return o
}

// Server is the HTTP front end. Create with [New].
type Server struct {
	opts       Options
	runner     *analysis.Runner
	workspaces *Workspaces
	metrics    *observability.Prometheus
	logger     *log.Logger
}

// New creates a server. A nil runner analyzes locally without caching; a
// nil metrics disables /metrics and request metrics.
func New(opts Options, runner *analysis.Runner, metrics *observability.Prometheus, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = analysis.NewRunner(nil, nil, nil, logger)
	}
	opts = opts.withDefaults()
	return &Server{
		opts:       opts,
		runner:     runner,
		workspaces: NewWorkspaces(opts.MaxWorkspaces),
		metrics:    metrics,
		logger:     logger,
	}
}

// Workspaces returns the server's workspace store.
func (s *Server) Workspaces() *Workspaces { return s.workspaces }

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", headerAnalysisSource},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Post("/pipelines/parse", s.parsePipeline)
	r.Post("/nodes/ports", s.resolvePorts)

	r.Route("/workspaces", func(r chi.Router) {
		r.Post("/", s.createWorkspace)
		r.Route("/{ws}", func(r chi.Router) {
			r.Get("/", s.getWorkspace)
			r.Delete("/", s.deleteWorkspace)
			r.Get("/analysis", s.analyzeWorkspace)
			r.Post("/nodes", s.addNode)
			r.Put("/nodes/{node}", s.updateNode)
			r.Delete("/nodes/{node}", s.removeNode)
			r.Post("/edges", s.addEdge)
			r.Delete("/edges/{edge}", s.removeEdge)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, ErrRouteNotFound)
	})
	return r
}

// ErrRouteNotFound answers requests for unknown paths.
var ErrRouteNotFound = errors.New("no such route")

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is [Server.ListenAndServe] on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: s.opts.ReadTimeout,
		WriteTimeout:      s.opts.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	if s.opts.WorkspaceTTL > 0 {
		go s.pruneLoop(ctx, s.opts.WorkspaceTTL)
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) pruneLoop(ctx context.Context, ttl time.Duration) {
	t := time.NewTicker(max(ttl/4, time.Second))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.workspaces.Prune(ttl); n > 0 {
				s.logger.Debug("pruned idle workspaces", "count", n)
			}
		}
	}
}
