package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/openlibraryenvironment/dcb-clustering/internal/dbpool"
	"github.com/openlibraryenvironment/dcb-clustering/internal/domain"
	"github.com/openlibraryenvironment/dcb-clustering/internal/middleware"
	"github.com/openlibraryenvironment/dcb-clustering/internal/ws"
)

// CatalogReader combines the cluster and bib read surfaces used by the
// REST handlers.
type CatalogReader interface {
	domain.ClusterReader
	domain.BibReader
}

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log         *logrus.Logger
	Pool        *dbpool.Pool
	Hub         *ws.Hub
	Catalog     CatalogReader
	Ingest      domain.Ingestor
	CORSOrigins []string
	Version     string
}

// Router-level limits.
const (
	maxBodySize = 10 << 20 // 10 MB
	rateLimit   = 100      // requests per second per IP
	rateBurst   = 200      // token bucket burst size
)

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(ctx, rateLimit, rateBurst).Handler())
	r.Use(middleware.PrometheusMiddleware())

	// Metrics endpoint (unauthenticated, like health).
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.Pool, deps.Hub, deps.Ingest, log, deps.Version)
	clusters := NewClusterHandler(deps.Catalog, deps.Catalog, log)
	ingest := NewIngestHandler(deps.Ingest, log)

	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// Clusters.
	api.GET("/clusters/:id", clusters.Get)
	api.GET("/clusters/:id/bibs", clusters.Bibs)

	// Bibs.
	api.GET("/bibs/:id", clusters.GetBib)
	api.GET("/bibs/:id/cluster", clusters.ClusterForBib)
	api.GET("/bibs/:id/identifiers", clusters.Identifiers)

	// Ingest.
	api.POST("/ingest", ingest.Ingest)
	api.POST("/ingest/batch", ingest.IngestBatch)

	// WebSocket change feed.
	api.GET("/ws", wsHandler(ctx, log, deps.Hub, deps.CORSOrigins))
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}
