package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarxCha/poa-dashboard/internal/infrastructure/logger"
	"github.com/MarxCha/poa-dashboard/internal/interfaces/http/middleware"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes under /api/<version>
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// EngineConfig configures the shared middleware chain
type EngineConfig struct {
	Logger      *zap.Logger
	CORSOrigins []string
	Health      gin.HandlerFunc
	Metrics     http.Handler // nil disables the metrics endpoint
	MetricsPath string
	ReleaseMode bool
}

// NewEngine builds a gin engine with recovery, request ids, request
// logging and CORS, plus the /healthz and metrics endpoints
func NewEngine(cfg EngineConfig) *gin.Engine {
	if cfg.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	engine := gin.New()
	engine.Use(
		logger.Recovery(cfg.Logger),
		middleware.RequestID(),
		logger.GinMiddleware(cfg.Logger),
		middleware.CORSWithConfig(middleware.DefaultCORSConfig(cfg.CORSOrigins...)),
	)

	if cfg.Health != nil {
		engine.GET("/healthz", cfg.Health)
	}
	if cfg.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		engine.GET(path, gin.WrapH(cfg.Metrics))
	}
	return engine
}
