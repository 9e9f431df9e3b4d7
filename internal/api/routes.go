package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gotrs-io/gotrs-desk/internal/metrics"
	"github.com/gotrs-io/gotrs-desk/internal/middleware"
	"github.com/gotrs-io/gotrs-desk/internal/version"
)

// Pinger reports whether a backend is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterOptions carries the collaborators of the HTTP surface.
type RouterOptions struct {
	Tickets  TicketLister
	Auth     *middleware.AuthMiddleware
	Database Pinger
	Logger   *slog.Logger
	// Gatherer enables the metrics endpoint at MetricsPath when set.
	Gatherer    prometheus.Gatherer
	MetricsPath string
	HTTPMetrics *metrics.HTTP
}

// Router serves the HTTP API.
type Router struct {
	engine        *gin.Engine
	opts          RouterOptions
	ticketHandler *TicketHandler
}

// NewRouter builds the gin engine with its middleware and routes.
func NewRouter(opts RouterOptions) *Router {
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.RequestID(opts.Logger), middleware.AccessLog())
	if opts.HTTPMetrics != nil {
		engine.Use(opts.HTTPMetrics.Middleware())
	}

	r := &Router{
		engine:        engine,
		opts:          opts,
		ticketHandler: NewTicketHandler(opts.Tickets),
	}
	r.SetupRoutes()
	return r
}

// SetupRoutes registers the health, metrics and ticket routes.
func (r *Router) SetupRoutes() {
	r.engine.GET("/health", r.healthCheck)
	if r.opts.Gatherer != nil {
		r.engine.GET(r.opts.MetricsPath, gin.WrapH(promhttp.HandlerFor(r.opts.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.engine.Group("/api/v1")
	{
		ticketGroup := v1.Group("/tickets")
		ticketGroup.Use(r.opts.Auth.RequireAuth())
		{
			ticketGroup.GET("", r.ticketHandler.HandleListTickets)
		}
	}
}

func (r *Router) healthCheck(c *gin.Context) {
	if r.opts.Database != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := r.opts.Database.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "version": version.Get().Version})
}

// Engine returns the gin engine serving the routes.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// ServeHTTP makes Router an http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.engine.ServeHTTP(w, req)
}
